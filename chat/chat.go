package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrEmptyQuestion is returned when a question contains no text. Callers are
// expected to reject empty submissions before reaching this package.
var ErrEmptyQuestion = errors.New("question is empty")

// Title length bound, in runes.
const maxTitleLength = 50

// Key returns the storage key of a chat.
func Key(chatID string) string {
	return "chat/" + chatID
}

// Question is the user half of an exchange.
type Question struct {
	Content           string `json:"content"`
	CreationTimestamp int64  `json:"creation_timestamp"`
}

// Answer is the assistant half of an exchange. A nil answer means the
// exchange is still pending.
type Answer struct {
	Content         string `json:"content"`
	UpdateTimestamp int64  `json:"update_timestamp"`
}

// Exchange is one question/answer pair within a chat.
type Exchange struct {
	// ID of this exchange.
	ID string `json:"id"`
	// The model used for this specific exchange.
	Model string `json:"model"`
	// The question asked.
	Question *Question `json:"question"`
	// The answer, once one has streamed to completion.
	Answer *Answer `json:"answer,omitempty"`
	// Time at which the exchange was created.
	CreationTimestamp int64 `json:"creation_timestamp"`
}

// Pending returns true while the exchange has no answer.
func (e *Exchange) Pending() bool {
	return e.Answer == nil
}

// Chat represents a conversation. Exchanges are ordered most-recent-first.
type Chat struct {
	// ID of this chat.
	ID string `json:"id"`
	// Title derived from the first question.
	Title string `json:"title"`
	// Default model for new exchanges of this chat.
	Model string `json:"model"`
	// The exchanges of this chat, most recent first.
	Exchanges []*Exchange `json:"exchanges"`
	// Time at which the chat was created.
	CreationTimestamp int64 `json:"creation_timestamp"`
	// Time at which the chat was last updated.
	UpdateTimestamp int64 `json:"update_timestamp"`
}

// NewExchange instantiates and returns a new pending exchange.
func NewExchange(questionText, model string) (*Exchange, error) {
	if strings.TrimSpace(questionText) == "" {
		return nil, ErrEmptyQuestion
	}
	now := time.Now().UnixMicro()
	return &Exchange{
		ID:    uuid.New().String(),
		Model: model,
		Question: &Question{
			Content:           questionText,
			CreationTimestamp: now,
		},
		CreationTimestamp: now,
	}, nil
}

// NewChat instantiates and returns a new chat holding a single pending
// exchange built from the question.
func NewChat(questionText, model string) (*Chat, error) {
	exchange, err := NewExchange(questionText, model)
	if err != nil {
		return nil, err
	}
	now := time.Now().UnixMicro()
	return &Chat{
		ID:                uuid.New().String(),
		Title:             makeTitle(questionText),
		Model:             model,
		Exchanges:         []*Exchange{exchange},
		CreationTimestamp: now,
		UpdateTimestamp:   now,
	}, nil
}

// FindExchange returns the exchange with the given id, or nil.
func (c *Chat) FindExchange(exchangeID string) *Exchange {
	for _, exchange := range c.Exchanges {
		if exchange.ID == exchangeID {
			return exchange
		}
	}
	return nil
}

// ModelFor returns the model of an exchange, falling back to the chat's
// model for records written before exchanges carried one.
func (c *Chat) ModelFor(exchange *Exchange) string {
	if exchange.Model != "" {
		return exchange.Model
	}
	return c.Model
}

// makeTitle derives a single-line title from the question text.
func makeTitle(questionText string) string {
	title := strings.ReplaceAll(questionText, "\n", " ")
	title = strings.ReplaceAll(title, "\r", "")
	title = strings.TrimSpace(title)
	runes := []rune(title)
	if len(runes) > maxTitleLength {
		title = string(runes[:maxTitleLength-3]) + "..."
	}
	return title
}
