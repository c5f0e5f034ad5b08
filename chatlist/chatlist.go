// Package chatlist drives the conversation-list screen: a live subscription
// to every conversation containing the current user, plus resolution of the
// counterpart display names shown per row.
package chatlist

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mlevkov/duochat/log"
	"github.com/mlevkov/duochat/store"
)

// Placeholders shown while a counterpart name is unresolved or unresolvable.
const (
	PlaceholderLoading = "Loading..."
	PlaceholderUnknown = "Unknown"
)

// Row is one selectable entry of the list.
type Row struct {
	ConversationID string
	Title          string
}

type Controller struct {
	store    store.Store
	uid      string
	onChange func()

	mu            sync.Mutex
	conversations []store.Conversation
	names         map[string]string // counterpart uid → resolved display name
	loading       bool
	cancel        store.CancelFunc
}

// New builds a controller for the given signed-in user. onChange fires after
// every applied snapshot; it may be nil.
func New(st store.Store, uid string, onChange func()) *Controller {
	if onChange == nil {
		onChange = func() {}
	}
	return &Controller{
		store:    st,
		uid:      uid,
		onChange: onChange,
		names:    map[string]string{},
		loading:  true,
	}
}

// Mount opens the live subscription. Without a signed-in user it settles into
// an empty state and never subscribes.
func (c *Controller) Mount(ctx context.Context) error {
	if c.uid == "" {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
		return nil
	}

	cancel, err := c.store.WatchConversations(ctx, c.uid, func(conversations []store.Conversation) {
		c.apply(ctx, conversations)
	})
	if err != nil {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
		return err
	}
	c.cancel = cancel
	return nil
}

// apply replaces the local list wholesale and resolves any counterpart names
// not yet cached. The cache only grows; transient fetch failures leave the
// entry unresolved so a later snapshot retries it.
func (c *Controller) apply(ctx context.Context, conversations []store.Conversation) {
	c.mu.Lock()
	c.conversations = conversations
	c.loading = false

	unresolved := make([]string, 0)
	seen := map[string]bool{}
	for _, conv := range conversations {
		counterpart, ok := store.Counterpart(conv.Participants, c.uid)
		if !ok || seen[counterpart] {
			continue
		}
		seen[counterpart] = true
		if _, cached := c.names[counterpart]; !cached {
			unresolved = append(unresolved, counterpart)
		}
	}
	c.mu.Unlock()

	logger := log.LoggerFromContext(ctx)
	for _, counterpart := range unresolved {
		profile, err := c.store.Profile(ctx, counterpart)
		name := ""
		switch {
		case errors.Is(err, store.ErrNotFound):
			name = PlaceholderUnknown
		case err != nil:
			logger.Error("resolving counterpart name",
				slog.String("userID", counterpart),
				slog.String("errorMsg", err.Error()),
			)
			continue
		case profile.DisplayName == "":
			name = PlaceholderUnknown
		default:
			name = profile.DisplayName
		}
		c.mu.Lock()
		c.names[counterpart] = name
		c.mu.Unlock()
	}

	c.onChange()
}

// Rows renders the current list, one row per conversation.
func (c *Controller) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows := make([]Row, 0, len(c.conversations))
	for _, conv := range c.conversations {
		title := PlaceholderUnknown
		if counterpart, ok := store.Counterpart(conv.Participants, c.uid); ok {
			if name, cached := c.names[counterpart]; cached {
				title = name
			} else {
				title = PlaceholderLoading
			}
		}
		rows = append(rows, Row{ConversationID: conv.ID, Title: title})
	}
	return rows
}

// Loading reports whether the first snapshot is still outstanding.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Unmount releases the subscription.
func (c *Controller) Unmount() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
