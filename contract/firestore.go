// Package contract defines the Firestore document layout shared with the
// mobile clients. Field names must not change: every client reads and writes
// the same collections.
package contract

import "time"

const (
	UsersCollection    = "users"
	ChatsCollection    = "chats"
	MessagesCollection = "messages"

	ParticipantsField = "participants"
	DisplayNameField  = "displayName"
	TimestampField    = "timestamp"
)

// User lives at users/{uid}. Created lazily on first profile save.
type User struct {
	Email       string `firestore:"email"`
	DisplayName string `firestore:"displayName"`
}

// Chat lives at chats/{chatID}. Participants holds exactly two account
// identifiers; the record is immutable after creation.
type Chat struct {
	Participants []string `firestore:"participants"`
}

// Message lives at chats/{chatID}/messages/{msgID}. Timestamp is assigned by
// the server on write and orders the transcript.
type Message struct {
	Text      string    `firestore:"text"`
	From      string    `firestore:"from"`
	To        string    `firestore:"to"`
	Timestamp time.Time `firestore:"timestamp,serverTimestamp"`
}
