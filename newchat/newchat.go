// Package newchat implements the chat-creation flow: look up a user by
// display name, guard against self-chats, and reuse an existing conversation
// between the pair before creating a new one.
package newchat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mlevkov/duochat/auth"
	"github.com/mlevkov/duochat/store"
)

var (
	ErrBlankName  = errors.New("display name is blank")
	ErrSelfChat   = errors.New("cannot create a chat with yourself")
	ErrNoSuchUser = errors.New("no user with that display name")
)

// Result names the conversation to navigate to. Existing is true when an
// earlier conversation between the pair was reused.
type Result struct {
	ConversationID string
	Existing       bool
}

type Controller struct {
	store store.Store
}

func New(st store.Store) *Controller {
	return &Controller{store: st}
}

// Create resolves displayName to a counterpart and returns the conversation
// to open, creating one only when none exists yet between the pair.
//
// The duplicate check is a client-side scan with no backend uniqueness
// constraint, so two racing creations between the same pair can still
// produce duplicate records.
func (c *Controller) Create(ctx context.Context, uid, email, displayName string) (Result, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return Result{}, ErrBlankName
	}
	if uid == "" {
		return Result{}, auth.ErrNotSignedIn
	}
	// approximate self-chat guard: the entered name against the own email
	if strings.EqualFold(name, email) {
		return Result{}, ErrSelfChat
	}

	counterpart, _, err := c.store.ProfileByDisplayName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return Result{}, ErrNoSuchUser
	}
	if err != nil {
		return Result{}, fmt.Errorf("looking up %q: %w", name, err)
	}
	if counterpart == uid {
		return Result{}, ErrSelfChat
	}

	conversations, err := c.store.ConversationsWith(ctx, uid)
	if err != nil {
		return Result{}, fmt.Errorf("scanning existing conversations: %w", err)
	}
	for _, conv := range conversations {
		if store.Contains(conv.Participants, counterpart) {
			return Result{ConversationID: conv.ID, Existing: true}, nil
		}
	}

	id, err := c.store.CreateConversation(ctx, uid, counterpart)
	if err != nil {
		return Result{}, fmt.Errorf("creating conversation: %w", err)
	}
	return Result{ConversationID: id}, nil
}
