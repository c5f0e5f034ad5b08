// Package conversation drives a single message thread: resolve the
// counterpart once, follow the ordered transcript live, and append messages
// with a one-in-flight send guard.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mlevkov/duochat/log"
	"github.com/mlevkov/duochat/store"
)

// MaxMessageLen caps the message body, enforced at the input layer.
const MaxMessageLen = 500

var (
	ErrBlankMessage   = errors.New("message is blank")
	ErrMessageTooLong = fmt.Errorf("message exceeds %d characters", MaxMessageLen)
	ErrNoCounterpart  = errors.New("no recipient resolved")
	ErrSendInFlight   = errors.New("a send is already in flight")
)

// ValidateDraft applies the input-control rules: non-blank after trimming and
// at most MaxMessageLen characters.
func ValidateDraft(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrBlankMessage
	}
	if utf8.RuneCountInString(trimmed) > MaxMessageLen {
		return ErrMessageTooLong
	}
	return nil
}

type Controller struct {
	store    store.Store
	chatID   string
	uid      string
	onChange func()

	mu          sync.Mutex
	counterpart string
	title       string
	messages    []store.Message
	loading     bool
	sending     bool
	cancel      store.CancelFunc
}

// New builds a controller for one conversation. An empty chatID or uid puts
// the controller into the terminal no-chat-selected state.
func New(st store.Store, chatID, uid string, onChange func()) *Controller {
	if onChange == nil {
		onChange = func() {}
	}
	return &Controller{
		store:    st,
		chatID:   chatID,
		uid:      uid,
		onChange: onChange,
		title:    PlaceholderLoading,
		loading:  true,
	}
}

// Placeholders for the header title while the counterpart is unresolved.
const (
	PlaceholderLoading = "Loading..."
	PlaceholderUnknown = "Unknown"
)

// NoChatSelected reports the terminal state entered when no conversation
// identifier was supplied; nothing is subscribed in that state.
func (c *Controller) NoChatSelected() bool {
	return c.chatID == "" || c.uid == ""
}

// Mount resolves the counterpart and opens the transcript subscription. A
// failed resolve is logged, not retried; the view then stays without a
// counterpart, which permanently disables sending.
func (c *Controller) Mount(ctx context.Context) error {
	if c.NoChatSelected() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
		return nil
	}

	c.resolveCounterpart(ctx)

	cancel, err := c.store.WatchMessages(ctx, c.chatID, c.apply)
	if err != nil {
		return fmt.Errorf("subscribing to messages: %w", err)
	}
	c.cancel = cancel
	return nil
}

func (c *Controller) resolveCounterpart(ctx context.Context) {
	logger := log.LoggerFromContext(ctx).With(slog.String("chatID", c.chatID))

	conv, err := c.store.Conversation(ctx, c.chatID)
	if err != nil {
		logger.Error("fetching conversation", slog.String("errorMsg", err.Error()))
		return
	}

	counterpart, ok := store.Counterpart(conv.Participants, c.uid)
	if !ok {
		c.setTitle(PlaceholderUnknown)
		return
	}

	title := PlaceholderUnknown
	profile, err := c.store.Profile(ctx, counterpart)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		logger.Error("fetching counterpart profile", slog.String("errorMsg", err.Error()))
	case profile.DisplayName != "":
		title = profile.DisplayName
	}

	c.mu.Lock()
	c.counterpart = counterpart
	c.title = title
	c.mu.Unlock()
}

func (c *Controller) setTitle(title string) {
	c.mu.Lock()
	c.title = title
	c.mu.Unlock()
}

// apply replaces the transcript wholesale on every snapshot.
func (c *Controller) apply(messages []store.Message) {
	c.mu.Lock()
	c.messages = messages
	c.loading = false
	c.mu.Unlock()
	c.onChange()
}

// CanSend reports whether a submit with the given draft would be accepted.
func (c *Controller) CanSend(draft string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counterpart != "" && !c.sending && strings.TrimSpace(draft) != ""
}

// Send appends the trimmed draft to the conversation. At most one send is in
// flight; a second submit is rejected, not queued. The caller clears its
// input only when Send returns nil.
func (c *Controller) Send(ctx context.Context, draft string) error {
	trimmed := strings.TrimSpace(draft)

	c.mu.Lock()
	switch {
	case c.sending:
		c.mu.Unlock()
		return ErrSendInFlight
	case c.counterpart == "":
		c.mu.Unlock()
		return ErrNoCounterpart
	case trimmed == "":
		c.mu.Unlock()
		return ErrBlankMessage
	}
	c.sending = true
	counterpart := c.counterpart
	c.mu.Unlock()

	err := c.store.SendMessage(ctx, c.chatID, store.Message{
		Text: trimmed,
		From: c.uid,
		To:   counterpart,
	})

	c.mu.Lock()
	c.sending = false
	c.mu.Unlock()

	if err != nil {
		log.LoggerFromContext(ctx).Error("sending message",
			slog.String("chatID", c.chatID),
			slog.String("errorMsg", err.Error()),
		)
		return err
	}
	return nil
}

// Transcript returns the messages in timestamp order.
func (c *Controller) Transcript() []store.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	messages := make([]store.Message, len(c.messages))
	copy(messages, c.messages)
	return messages
}

// Title is the counterpart display name, or a placeholder.
func (c *Controller) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Unmount releases the transcript subscription.
func (c *Controller) Unmount() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
