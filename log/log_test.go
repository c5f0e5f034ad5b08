package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestClientHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewClientHandler(&buf))

	logger.Info("message sent", slog.String("chatID", "c1"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON record: %v", err)
	}
	if entry["severity"] != "INFO" {
		t.Errorf("severity = %v; want INFO", entry["severity"])
	}
	if entry["message"] != "message sent" {
		t.Errorf("message = %v; want %q", entry["message"], "message sent")
	}
	if entry["chatID"] != "c1" {
		t.Errorf("chatID = %v; want c1", entry["chatID"])
	}
}

func TestClientHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewClientHandler(&buf)).With(slog.String("userID", "u1"))

	logger.Error("send failed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON record: %v", err)
	}
	if entry["userID"] != "u1" {
		t.Errorf("userID = %v; want u1", entry["userID"])
	}
	if entry["severity"] != "ERROR" {
		t.Errorf("severity = %v; want ERROR", entry["severity"])
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewClientHandler(&buf))

	ctx := WithLogger(context.Background(), logger)
	got := LoggerFromContext(ctx)
	if got != logger {
		t.Error("expected the logger stored in the context")
	}

	if LoggerFromContext(context.Background()) == nil {
		t.Error("expected a fallback logger for a bare context")
	}
}
