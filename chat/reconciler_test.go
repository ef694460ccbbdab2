package chat

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/store"
)

func newTestReconciler(t *testing.T) *Reconciler {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewReconciler(s)
}

func TestPersistExchangeReplacesInPlace(t *testing.T) {
	reconciler := newTestReconciler(t)

	c, err := NewChat("first question", "gpt-4o")
	require.NoError(t, err)
	second, err := NewExchange("second question", "gpt-4o")
	require.NoError(t, err)
	c.Exchanges = append([]*Exchange{second}, c.Exchanges...)
	require.NoError(t, reconciler.UpsertChat(c))

	// Answer the older exchange; it must keep its position.
	answered := *c.Exchanges[1]
	answered.Answer = &Answer{Content: "an answer", UpdateTimestamp: time.Now().UnixMicro()}
	updated, err := reconciler.PersistExchange(&answered, c.ID)
	require.NoError(t, err)

	require.Len(t, updated.Exchanges, 2)
	assert.Equal(t, second.ID, updated.Exchanges[0].ID)
	assert.Equal(t, answered.ID, updated.Exchanges[1].ID)
	assert.Equal(t, "an answer", updated.Exchanges[1].Answer.Content)

	// The write is persisted.
	stored, err := reconciler.GetChat(c.ID)
	require.NoError(t, err)
	require.Len(t, stored.Exchanges, 2)
	assert.Equal(t, "an answer", stored.Exchanges[1].Answer.Content)
}

func TestPersistExchangePrependsUnknown(t *testing.T) {
	reconciler := newTestReconciler(t)

	c, err := NewChat("first question", "gpt-4o")
	require.NoError(t, err)
	require.NoError(t, reconciler.UpsertChat(c))

	exchange, err := NewExchange("a new question", "gpt-4o")
	require.NoError(t, err)
	updated, err := reconciler.PersistExchange(exchange, c.ID)
	require.NoError(t, err)

	require.Len(t, updated.Exchanges, 2)
	assert.Equal(t, exchange.ID, updated.Exchanges[0].ID)
}

func TestPersistExchangeOrphan(t *testing.T) {
	reconciler := newTestReconciler(t)

	exchange, err := NewExchange("a question", "gpt-4o")
	require.NoError(t, err)
	_, err = reconciler.PersistExchange(exchange, "no-such-chat")
	assert.ErrorIs(t, err, ErrOrphanExchange)
}

func TestPersistExchangeCollapsesDuplicates(t *testing.T) {
	reconciler := newTestReconciler(t)

	c, err := NewChat("first question", "gpt-4o")
	require.NoError(t, err)
	// A duplicated record, as left behind by an interrupted write.
	duplicate := *c.Exchanges[0]
	c.Exchanges = append(c.Exchanges, &duplicate)
	require.NoError(t, reconciler.UpsertChat(c))

	updated, err := reconciler.PersistExchange(c.Exchanges[0], c.ID)
	require.NoError(t, err)
	assert.Len(t, updated.Exchanges, 1)
}

func TestDeleteExchange(t *testing.T) {
	reconciler := newTestReconciler(t)

	c, err := NewChat("first question", "gpt-4o")
	require.NoError(t, err)
	require.NoError(t, reconciler.UpsertChat(c))

	updated, err := reconciler.DeleteExchange(c.Exchanges[0].ID, c.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Exchanges)

	// Deleting the last exchange leaves an empty chat behind.
	stored, err := reconciler.GetChat(c.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Exchanges)
	assert.Equal(t, c.Title, stored.Title)
}

func TestDeleteChat(t *testing.T) {
	reconciler := newTestReconciler(t)

	c, err := NewChat("first question", "gpt-4o")
	require.NoError(t, err)
	require.NoError(t, reconciler.UpsertChat(c))
	require.NoError(t, reconciler.DeleteChat(c.ID))

	_, err = reconciler.GetChat(c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListChatsOrder(t *testing.T) {
	reconciler := newTestReconciler(t)

	older, err := NewChat("older chat", "gpt-4o")
	require.NoError(t, err)
	older.UpdateTimestamp = time.Now().Add(time.Hour).UnixMicro()
	newer, err := NewChat("newer chat", "gpt-4o")
	require.NoError(t, err)
	newer.UpdateTimestamp = time.Now().Add(2 * time.Hour).UnixMicro()

	require.NoError(t, reconciler.UpsertChat(older))
	require.NoError(t, reconciler.UpsertChat(newer))

	chats, err := reconciler.ListChats()
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, newer.ID, chats[0].ID)
	assert.Equal(t, older.ID, chats[1].ID)
}

func TestUpsertChatTimestampMonotonic(t *testing.T) {
	reconciler := newTestReconciler(t)

	c, err := NewChat("a question", "gpt-4o")
	require.NoError(t, err)

	// A record stamped in the future keeps its timestamp.
	future := time.Now().Add(time.Hour).UnixMicro()
	c.UpdateTimestamp = future
	require.NoError(t, reconciler.UpsertChat(c))
	assert.Equal(t, future, c.UpdateTimestamp)

	// A stale record is refreshed.
	c.UpdateTimestamp = 1
	require.NoError(t, reconciler.UpsertChat(c))
	assert.Greater(t, c.UpdateTimestamp, int64(1))
}
