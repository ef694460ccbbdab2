package openai

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/promptdeck/promptdeck/internal/llm"
)

// Client for openai.
type Client struct {
	client *openai.Client
}

// NewClient instantiates and returns a new client.
func NewClient(apiKey, apiHost string, options ...any) *Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = apiHost
	for _, option := range options {
		switch t := option.(type) {
		case *http.Client:
			config.HTTPClient = t
		default:
			panic(fmt.Errorf("unknown option type %T", option))
		}
	}

	client := openai.NewClientWithConfig(config)
	return &Client{client: client}
}

type chatCompletionStreamWrapper struct {
	stream *openai.ChatCompletionStream
}

func (s *chatCompletionStreamWrapper) Close() { s.stream.Close() }
func (s *chatCompletionStreamWrapper) Recv() (*llm.StreamEvent, error) {
	response, err := s.stream.Recv()
	if err != nil {
		return nil, err
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("ChatCompletionResponse returned no choice: %+v", response)
	}
	return &llm.StreamEvent{
		Token:        response.Choices[0].Delta.Content,
		FinishReason: string(response.Choices[0].FinishReason),
	}, nil
}

// CreateChatStream opens a streaming completion call.
func (c *Client) CreateChatStream(ctx context.Context, request *llm.CreateChatStreamRequest) (llm.Stream, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(request.Messages))
	for _, message := range request.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    message.Role,
			Content: message.Content,
		})
	}
	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    request.Model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating completion stream: %v", err)
	}
	return &chatCompletionStreamWrapper{stream}, nil
}
