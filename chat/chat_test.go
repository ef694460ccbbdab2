package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChat(t *testing.T) {
	c, err := NewChat("What is a monad?", "gpt-4o")
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "What is a monad?", c.Title)
	assert.Equal(t, "gpt-4o", c.Model)
	require.Len(t, c.Exchanges, 1)

	exchange := c.Exchanges[0]
	assert.Equal(t, "What is a monad?", exchange.Question.Content)
	assert.True(t, exchange.Pending())
	assert.Equal(t, c.CreationTimestamp, c.UpdateTimestamp)
}

func TestNewChatEmptyQuestion(t *testing.T) {
	_, err := NewChat("   \n\t", "gpt-4o")
	assert.ErrorIs(t, err, ErrEmptyQuestion)

	_, err = NewExchange("", "gpt-4o")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestMakeTitle(t *testing.T) {
	assert.Equal(t, "hello world", makeTitle("  hello\nworld \r\n"))

	long := strings.Repeat("a", 80)
	title := makeTitle(long)
	assert.Len(t, []rune(title), maxTitleLength)
	assert.True(t, strings.HasSuffix(title, "..."))

	short := strings.Repeat("b", maxTitleLength)
	assert.Equal(t, short, makeTitle(short))
}

func TestFindExchange(t *testing.T) {
	c, err := NewChat("first", "gpt-4o")
	require.NoError(t, err)
	exchange := c.Exchanges[0]

	assert.Equal(t, exchange, c.FindExchange(exchange.ID))
	assert.Nil(t, c.FindExchange("missing"))
}

func TestModelFor(t *testing.T) {
	c, err := NewChat("first", "gpt-4o")
	require.NoError(t, err)

	tagged := c.Exchanges[0]
	assert.Equal(t, "gpt-4o", c.ModelFor(tagged))

	// Records written before exchanges carried a model.
	legacy := &Exchange{ID: "legacy", Question: &Question{Content: "hi"}}
	assert.Equal(t, "gpt-4o", c.ModelFor(legacy))

	tagged.Model = "gpt-4-turbo"
	assert.Equal(t, "gpt-4-turbo", c.ModelFor(tagged))
}
