package store

import (
	"testing"
	"time"
)

func TestDecodeConversation(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]any
		want    []string
		wantErr bool
	}{
		{
			name: "valid",
			data: map[string]any{"participants": []any{"uid-a", "uid-b"}},
			want: []string{"uid-a", "uid-b"},
		},
		{
			name:    "missing participants",
			data:    map[string]any{},
			wantErr: true,
		},
		{
			name:    "participants not an array",
			data:    map[string]any{"participants": "uid-a"},
			wantErr: true,
		},
		{
			name:    "one participant",
			data:    map[string]any{"participants": []any{"uid-a"}},
			wantErr: true,
		},
		{
			name:    "three participants",
			data:    map[string]any{"participants": []any{"a", "b", "c"}},
			wantErr: true,
		},
		{
			name:    "non-string participant",
			data:    map[string]any{"participants": []any{"uid-a", 42}},
			wantErr: true,
		},
		{
			name:    "empty participant",
			data:    map[string]any{"participants": []any{"uid-a", ""}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv, err := decodeConversation("c1", tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("decodeConversation(%v) succeeded; want error", tt.data)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeConversation(%v) failed: %v", tt.data, err)
			}
			if conv.ID != "c1" || len(conv.Participants) != len(tt.want) {
				t.Errorf("decodeConversation(%v) = %+v; want participants %v", tt.data, conv, tt.want)
			}
		})
	}
}

func TestDecodeMessage(t *testing.T) {
	sent := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	local := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)
	now := func() time.Time { return local }

	tests := []struct {
		name     string
		data     map[string]any
		wantTime time.Time
		wantErr  bool
	}{
		{
			name: "valid",
			data: map[string]any{
				"text": "hi", "from": "uid-a", "to": "uid-b", "timestamp": sent,
			},
			wantTime: sent,
		},
		{
			name: "missing timestamp falls back to local now",
			data: map[string]any{
				"text": "hi", "from": "uid-a", "to": "uid-b",
			},
			wantTime: local,
		},
		{
			name: "pending timestamp falls back to local now",
			data: map[string]any{
				"text": "hi", "from": "uid-a", "to": "uid-b", "timestamp": nil,
			},
			wantTime: local,
		},
		{
			name: "timestamp of wrong type",
			data: map[string]any{
				"text": "hi", "from": "uid-a", "to": "uid-b", "timestamp": "yesterday",
			},
			wantErr: true,
		},
		{
			name:    "missing body",
			data:    map[string]any{"from": "uid-a", "to": "uid-b", "timestamp": sent},
			wantErr: true,
		},
		{
			name:    "missing sender",
			data:    map[string]any{"text": "hi", "to": "uid-b", "timestamp": sent},
			wantErr: true,
		},
		{
			name:    "non-string body",
			data:    map[string]any{"text": 7, "from": "uid-a", "to": "uid-b"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := decodeMessage("m1", tt.data, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("decodeMessage(%v) succeeded; want error", tt.data)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeMessage(%v) failed: %v", tt.data, err)
			}
			if !msg.Timestamp.Equal(tt.wantTime) {
				t.Errorf("timestamp = %v; want %v", msg.Timestamp, tt.wantTime)
			}
		})
	}
}

func TestCounterpart(t *testing.T) {
	tests := []struct {
		name         string
		participants []string
		uid          string
		want         string
		wantOK       bool
	}{
		{name: "other is second", participants: []string{"me", "you"}, uid: "me", want: "you", wantOK: true},
		{name: "other is first", participants: []string{"you", "me"}, uid: "me", want: "you", wantOK: true},
		{name: "not a member", participants: []string{"a", "b"}, uid: "me", want: "a", wantOK: true},
		{name: "only self", participants: []string{"me", "me"}, uid: "me", wantOK: false},
		{name: "empty set", participants: nil, uid: "me", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Counterpart(tt.participants, tt.uid)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("Counterpart(%v, %q) = %q, %v; want %q, %v",
					tt.participants, tt.uid, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
