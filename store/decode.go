package store

import (
	"fmt"
	"time"

	"github.com/mlevkov/duochat/contract"
)

// Decoding is strict: a record that does not match the shared schema is an
// error, not a silent default. The one exception is a message timestamp that
// is absent or still pending server assignment, which resolves to local now.

func decodeConversation(id string, data map[string]any) (Conversation, error) {
	raw, ok := data[contract.ParticipantsField]
	if !ok {
		return Conversation{}, fmt.Errorf("conversation %s: missing participants", id)
	}
	list, ok := raw.([]any)
	if !ok {
		return Conversation{}, fmt.Errorf("conversation %s: participants is not an array", id)
	}
	if len(list) != 2 {
		return Conversation{}, fmt.Errorf("conversation %s: expected 2 participants, got %d", id, len(list))
	}

	participants := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok || s == "" {
			return Conversation{}, fmt.Errorf("conversation %s: invalid participant %v", id, v)
		}
		participants = append(participants, s)
	}
	return Conversation{ID: id, Participants: participants}, nil
}

func decodeMessage(id string, data map[string]any, now func() time.Time) (Message, error) {
	text, err := stringField(id, data, "text")
	if err != nil {
		return Message{}, err
	}
	from, err := stringField(id, data, "from")
	if err != nil {
		return Message{}, err
	}
	to, err := stringField(id, data, "to")
	if err != nil {
		return Message{}, err
	}

	timestamp := now()
	if raw, ok := data[contract.TimestampField]; ok && raw != nil {
		t, ok := raw.(time.Time)
		if !ok {
			return Message{}, fmt.Errorf("message %s: timestamp is not a time", id)
		}
		timestamp = t
	}

	return Message{ID: id, Text: text, From: from, To: to, Timestamp: timestamp}, nil
}

func stringField(id string, data map[string]any, field string) (string, error) {
	raw, ok := data[field]
	if !ok {
		return "", fmt.Errorf("message %s: missing %s", id, field)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("message %s: %s is not a string", id, field)
	}
	return s, nil
}
