package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Memory is an in-process Store with the same observable semantics as the
// Firestore implementation: server-assigned keys, server-assigned strictly
// increasing message timestamps, and full-replace watcher emissions. It backs
// tests and the memory demo mode.
type Memory struct {
	mu            sync.Mutex
	profiles      map[string]Profile
	conversations map[string]Conversation
	order         []string             // conversation IDs in creation order
	messages      map[string][]Message // per conversation, timestamp order
	convWatchers  map[int]*convWatcher
	msgWatchers   map[int]*msgWatcher
	nextKey       int
	nextWatcher   int
	lastTimestamp time.Time
	now           func() time.Time
}

type convWatcher struct {
	uid string
	fn  func([]Conversation)
}

type msgWatcher struct {
	conversationID string
	fn             func([]Message)
}

func NewMemory() *Memory {
	return &Memory{
		profiles:      map[string]Profile{},
		conversations: map[string]Conversation{},
		messages:      map[string][]Message{},
		convWatchers:  map[int]*convWatcher{},
		msgWatchers:   map[int]*msgWatcher{},
		now:           time.Now,
	}
}

func (m *Memory) Profile(_ context.Context, uid string) (Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[uid]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) SaveProfile(_ context.Context, uid string, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// merge semantics: empty fields leave existing values untouched
	existing := m.profiles[uid]
	if p.Email != "" {
		existing.Email = p.Email
	}
	if p.DisplayName != "" {
		existing.DisplayName = p.DisplayName
	}
	m.profiles[uid] = existing
	return nil
}

func (m *Memory) ProfileByDisplayName(_ context.Context, name string) (string, Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for uid, p := range m.profiles {
		if p.DisplayName == name {
			return uid, p, nil
		}
	}
	return "", Profile{}, ErrNotFound
}

func (m *Memory) Conversation(_ context.Context, id string) (Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.conversations[id]
	if !ok {
		return Conversation{}, ErrNotFound
	}
	return conv, nil
}

func (m *Memory) ConversationsWith(_ context.Context, uid string) ([]Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conversationsWithLocked(uid), nil
}

func (m *Memory) CreateConversation(_ context.Context, a, b string) (string, error) {
	m.mu.Lock()
	id := m.newKey("chat")
	m.conversations[id] = Conversation{ID: id, Participants: []string{a, b}}
	m.order = append(m.order, id)
	notify := m.conversationNotificationsLocked([]string{a, b})
	m.mu.Unlock()

	runAll(notify)
	return id, nil
}

func (m *Memory) SendMessage(_ context.Context, conversationID string, msg Message) error {
	m.mu.Lock()
	if _, ok := m.conversations[conversationID]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("sending message: conversation %s: %w", conversationID, ErrNotFound)
	}
	msg.ID = m.newKey("msg")
	msg.Timestamp = m.nextTimestampLocked()
	m.messages[conversationID] = append(m.messages[conversationID], msg)
	notify := m.messageNotificationsLocked(conversationID)
	m.mu.Unlock()

	runAll(notify)
	return nil
}

func (m *Memory) WatchConversations(_ context.Context, uid string, fn func([]Conversation)) (CancelFunc, error) {
	m.mu.Lock()
	id := m.nextWatcher
	m.nextWatcher++
	m.convWatchers[id] = &convWatcher{uid: uid, fn: fn}
	initial := m.conversationsWithLocked(uid)
	m.mu.Unlock()

	fn(initial)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.convWatchers, id)
	}, nil
}

func (m *Memory) WatchMessages(_ context.Context, conversationID string, fn func([]Message)) (CancelFunc, error) {
	m.mu.Lock()
	id := m.nextWatcher
	m.nextWatcher++
	m.msgWatchers[id] = &msgWatcher{conversationID: conversationID, fn: fn}
	initial := m.transcriptLocked(conversationID)
	m.mu.Unlock()

	fn(initial)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.msgWatchers, id)
	}, nil
}

func (m *Memory) newKey(prefix string) string {
	m.nextKey++
	return fmt.Sprintf("%s-%06d", prefix, m.nextKey)
}

// nextTimestampLocked plays the server's role: assigned timestamps are
// strictly increasing so transcript order is total.
func (m *Memory) nextTimestampLocked() time.Time {
	ts := m.now()
	if !ts.After(m.lastTimestamp) {
		ts = m.lastTimestamp.Add(time.Millisecond)
	}
	m.lastTimestamp = ts
	return ts
}

func (m *Memory) conversationsWithLocked(uid string) []Conversation {
	result := make([]Conversation, 0)
	for _, id := range m.order {
		conv := m.conversations[id]
		if Contains(conv.Participants, uid) {
			result = append(result, conv)
		}
	}
	return result
}

func (m *Memory) transcriptLocked(conversationID string) []Message {
	msgs := m.messages[conversationID]
	result := make([]Message, len(msgs))
	copy(result, msgs)
	return result
}

// Notification closures are built under the lock but run outside it, since
// watcher callbacks are free to call back into the store.
func (m *Memory) conversationNotificationsLocked(changed []string) []func() {
	var notify []func()
	for _, w := range m.convWatchers {
		if !Contains(changed, w.uid) {
			continue
		}
		w := w
		snapshot := m.conversationsWithLocked(w.uid)
		notify = append(notify, func() { w.fn(snapshot) })
	}
	return notify
}

func (m *Memory) messageNotificationsLocked(conversationID string) []func() {
	var notify []func()
	for _, w := range m.msgWatchers {
		if w.conversationID != conversationID {
			continue
		}
		w := w
		snapshot := m.transcriptLocked(conversationID)
		notify = append(notify, func() { w.fn(snapshot) })
	}
	return notify
}

func runAll(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
