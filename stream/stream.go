// Package stream turns a backend token stream into a handle the view shell
// can observe: accumulated text, terminal error and streaming state, with
// mid-flight cancellation.
package stream

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/promptdeck/promptdeck/chat"
	"github.com/promptdeck/promptdeck/internal/llm"
)

// State of a handle. Completed, Failed and Cancelled are absorbing.
type State int

const (
	StateStreaming State = iota
	StateCompleted
	StateFailed
	StateCancelled
)

// Request describes one streaming answer.
type Request struct {
	// Exchanges of the conversation, most recent first. The most recent
	// exchange holds the question being answered.
	Exchanges []*chat.Exchange
	// Model identifier sent to the backend.
	Model string
	// OnToken, if set, is invoked synchronously for every inbound token with
	// the token and the accumulated text so far.
	OnToken func(token, accumulated string)
}

// Handle represents one in-flight streaming answer. A handle owns exactly one
// backend stream; it never retries.
type Handle struct {
	mu        sync.Mutex
	text      strings.Builder
	state     State
	err       error
	onToken   func(token, accumulated string)
	cancel    context.CancelFunc
	cancelled bool
	done      chan struct{}
}

// Answer opens a stream for the most recent exchange of the request and
// returns its handle. Failures to open the stream surface as the handle's
// terminal error, exactly like a mid-stream failure.
func Answer(ctx context.Context, client llm.Client, request *Request) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	handle := &Handle{
		state:   StateStreaming,
		onToken: request.OnToken,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	messages := historyMessages(request.Exchanges)
	go handle.run(ctx, client, &llm.CreateChatStreamRequest{
		Model:    request.Model,
		Messages: messages,
	})
	return handle
}

// historyMessages flattens exchanges into backend messages. Exchanges are
// stored most-recent-first; backends expect oldest-first.
func historyMessages(exchanges []*chat.Exchange) []*llm.Message {
	messages := make([]*llm.Message, 0, 2*len(exchanges))
	for i := len(exchanges) - 1; i >= 0; i-- {
		exchange := exchanges[i]
		messages = append(messages, &llm.Message{
			Role:    openai.ChatMessageRoleUser,
			Content: exchange.Question.Content,
		})
		if exchange.Answer != nil {
			messages = append(messages, &llm.Message{
				Role:    openai.ChatMessageRoleAssistant,
				Content: exchange.Answer.Content,
			})
		}
	}
	return messages
}

func (h *Handle) run(ctx context.Context, client llm.Client, request *llm.CreateChatStreamRequest) {
	defer close(h.done)
	defer h.cancel()

	backendStream, err := client.CreateChatStream(ctx, request)
	if err != nil {
		h.terminate(err)
		return
	}
	defer backendStream.Close()

	for {
		event, err := backendStream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				h.terminate(nil)
				return
			}
			h.terminate(err)
			return
		}
		h.publish(event.Token)
	}
}

// publish appends a token and notifies the observer with the new accumulated
// text. Tokens are delivered in arrival order, one callback per token.
func (h *Handle) publish(token string) {
	h.mu.Lock()
	if h.state != StateStreaming {
		h.mu.Unlock()
		return
	}
	h.text.WriteString(token)
	accumulated := h.text.String()
	onToken := h.onToken
	h.mu.Unlock()

	if onToken != nil {
		onToken(token, accumulated)
	}
}

// terminate moves the handle into its terminal state. A cancelled handle
// terminates without error regardless of what the aborted stream returned.
func (h *Handle) terminate(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StateStreaming {
		return
	}
	switch {
	case h.cancelled:
		h.state = StateCancelled
	case err != nil:
		h.state = StateFailed
		h.err = errors.Wrap(err, "streaming answer")
	default:
		h.state = StateCompleted
	}
}

// Cancel aborts the underlying stream. Calling it after completion, or a
// second time, is a no-op.
func (h *Handle) Cancel() {
	h.mu.Lock()
	if h.state != StateStreaming || h.cancelled {
		h.mu.Unlock()
		return
	}
	h.cancelled = true
	h.mu.Unlock()
	h.cancel()
}

// Text returns the accumulated answer text so far. It remains readable after
// a failure so the caller may keep partial progress.
func (h *Handle) Text() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.text.String()
}

// Err returns the terminal error, if the handle failed.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// State returns the current state of the handle.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// IsStreaming returns true until the handle reaches a terminal state.
func (h *Handle) IsStreaming() bool {
	return h.State() == StateStreaming
}

// Done returns a channel closed once the handle reaches a terminal state.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the handle terminates or the context expires.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return nil
	}
}
