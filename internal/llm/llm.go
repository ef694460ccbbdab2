package llm

import (
	"context"
)

// Message is one turn of a conversation, oldest-first when sent to a backend.
type Message struct {
	Role    string
	Content string
}

// CreateChatStreamRequest describes one streaming completion call.
type CreateChatStreamRequest struct {
	Model    string
	Messages []*Message
}

// StreamEvent carries one token emitted by a backend stream.
type StreamEvent struct {
	Token        string
	FinishReason string
}

// Stream is an incremental token stream. Recv returns io.EOF once the backend
// signals completion. Close aborts the underlying call; it is safe to call
// more than once.
type Stream interface {
	Recv() (*StreamEvent, error)
	Close()
}

// Client is a chat generation backend.
type Client interface {
	CreateChatStream(context.Context, *CreateChatStreamRequest) (Stream, error)
}
