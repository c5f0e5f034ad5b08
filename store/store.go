// Package store is the document-database boundary of the client. It exposes
// the three record kinds (profiles, conversations, messages) and real-time
// subscriptions over them, behind an interface so every screen can be tested
// against the in-memory implementation.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports an absent document. It is not a failure: callers branch
// on it (seed a profile, report "no such user").
var ErrNotFound = errors.New("store: not found")

// Profile is the users/{uid} record.
type Profile struct {
	Email       string
	DisplayName string
}

// Conversation is the chats/{id} record. Participants always holds exactly
// two account identifiers once a record passes decoding.
type Conversation struct {
	ID           string
	Participants []string
}

// Message is one chats/{id}/messages/{msgID} record. Timestamp is
// server-assigned; a missing or still-pending value decodes to local now.
type Message struct {
	ID        string
	Text      string
	From      string
	To        string
	Timestamp time.Time
}

// CancelFunc releases a live subscription. Calling it more than once is safe.
type CancelFunc func()

// Store is the backend document surface consumed by the screens.
//
// Watch methods deliver every emission as a complete replacement of the
// observed set, never a delta. The callback stops firing after the returned
// CancelFunc runs or the subscribe context is cancelled, whichever happens
// first. One-shot calls have no cancellation beyond their context.
type Store interface {
	// Profile fetches users/{uid}; ErrNotFound when the record is absent.
	Profile(ctx context.Context, uid string) (Profile, error)

	// SaveProfile upserts users/{uid} with merge semantics: fields not in
	// the Profile struct are left untouched.
	SaveProfile(ctx context.Context, uid string, p Profile) error

	// ProfileByDisplayName returns the first profile whose display name
	// equals name exactly, along with its account identifier.
	ProfileByDisplayName(ctx context.Context, name string) (string, Profile, error)

	// Conversation fetches chats/{id}; ErrNotFound when absent.
	Conversation(ctx context.Context, id string) (Conversation, error)

	// ConversationsWith lists all conversations whose participant set
	// contains uid (one-shot).
	ConversationsWith(ctx context.Context, uid string) ([]Conversation, error)

	// CreateConversation creates a conversation with exactly the two given
	// participants and returns its server-assigned key.
	CreateConversation(ctx context.Context, a, b string) (string, error)

	// SendMessage appends m to the conversation's message sub-collection.
	// The timestamp is assigned by the backend; m.Timestamp is ignored.
	SendMessage(ctx context.Context, conversationID string, m Message) error

	// WatchConversations subscribes to all conversations containing uid.
	WatchConversations(ctx context.Context, uid string, fn func([]Conversation)) (CancelFunc, error)

	// WatchMessages subscribes to a conversation's messages ordered by
	// timestamp ascending.
	WatchMessages(ctx context.Context, conversationID string, fn func([]Message)) (CancelFunc, error)
}

// Counterpart returns the participant that is not uid. ok is false when the
// set has no other participant, e.g. a malformed record or a uid that is not
// a member.
func Counterpart(participants []string, uid string) (string, bool) {
	for _, p := range participants {
		if p != uid && p != "" {
			return p, true
		}
	}
	return "", false
}

// Contains reports whether uid is in the participant set.
func Contains(participants []string, uid string) bool {
	for _, p := range participants {
		if p == uid {
			return true
		}
	}
	return false
}
