package chat

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/scylladb/go-set/strset"

	"github.com/promptdeck/promptdeck/store"
)

// ErrOrphanExchange is returned when an exchange is reconciled against a chat
// that does not exist. Exchanges are never persisted before their owning chat.
var ErrOrphanExchange = errors.New("exchange has no owning chat")

// Reconciler merges exchanges back into their owning chat's persisted record.
// Writes are whole-record upserts: concurrent reconciliations against the
// same chat are last-write-wins.
type Reconciler struct {
	store *store.Store
}

// NewReconciler instantiates and returns a new reconciler.
func NewReconciler(s *store.Store) *Reconciler {
	return &Reconciler{store: s}
}

// PersistExchange upserts an exchange into its owning chat and writes the
// chat back. An exchange already present is replaced in place; a new one is
// prepended, keeping the sequence most-recent-first.
func (r *Reconciler) PersistExchange(exchange *Exchange, chatID string) (*Chat, error) {
	chat, err := r.GetChat(chatID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errors.Wrapf(ErrOrphanExchange, "chat (%s)", chatID)
	}
	if err != nil {
		return nil, err
	}

	replaced := false
	for i, existing := range chat.Exchanges {
		if existing.ID == exchange.ID {
			chat.Exchanges[i] = exchange
			replaced = true
			break
		}
	}
	if !replaced {
		chat.Exchanges = append([]*Exchange{exchange}, chat.Exchanges...)
	}
	chat.Exchanges = collapseDuplicates(chat.Exchanges)

	if err := r.UpsertChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// DeleteExchange removes an exchange from its owning chat and writes the chat
// back. Deleting the last exchange leaves an empty chat, not a deleted one.
func (r *Reconciler) DeleteExchange(exchangeID, chatID string) (*Chat, error) {
	chat, err := r.GetChat(chatID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errors.Wrapf(ErrOrphanExchange, "chat (%s)", chatID)
	}
	if err != nil {
		return nil, err
	}

	exchanges := chat.Exchanges[:0]
	for _, exchange := range chat.Exchanges {
		if exchange.ID != exchangeID {
			exchanges = append(exchanges, exchange)
		}
	}
	chat.Exchanges = exchanges

	if err := r.UpsertChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// UpsertChat writes a chat whole, refreshing its update timestamp.
func (r *Reconciler) UpsertChat(chat *Chat) error {
	now := time.Now().UnixMicro()
	// The update timestamp never moves backwards.
	if now < chat.UpdateTimestamp {
		now = chat.UpdateTimestamp
	}
	chat.UpdateTimestamp = now
	return r.store.Put(Key(chat.ID), chat)
}

// GetChat reads a chat from the store.
func (r *Reconciler) GetChat(chatID string) (*Chat, error) {
	chat := &Chat{}
	if err := r.store.Get(Key(chatID), chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// DeleteChat removes a chat from the store.
func (r *Reconciler) DeleteChat(chatID string) error {
	return r.store.Delete(Key(chatID))
}

// ListChats returns all chats, most recently updated first.
func (r *Reconciler) ListChats() ([]*Chat, error) {
	records, err := r.store.GetAll(Key(""))
	if err != nil {
		return nil, err
	}

	chats := make([]*Chat, 0, len(records))
	for _, record := range records {
		chat := &Chat{}
		if err := json.Unmarshal(record, chat); err != nil {
			return nil, errors.Wrap(err, "unmarshaling chat")
		}
		chats = append(chats, chat)
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].UpdateTimestamp > chats[j].UpdateTimestamp
	})
	return chats, nil
}

// collapseDuplicates drops exchanges sharing an id, keeping the first
// occurrence in sequence order.
func collapseDuplicates(exchanges []*Exchange) []*Exchange {
	seen := strset.NewWithSize(len(exchanges))
	collapsed := exchanges[:0]
	for _, exchange := range exchanges {
		if seen.Has(exchange.ID) {
			continue
		}
		seen.Add(exchange.ID)
		collapsed = append(collapsed, exchange)
	}
	return collapsed
}
