package log

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

type ctxKey struct{}

// ClientHandler is a slog.Handler that writes one JSON object per record,
// using Cloud Logging field names so records stay queryable whether they
// land in a local file or in Cloud Logging.
type ClientHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	attrs []slog.Attr
}

// NewClientHandler creates a handler writing structured records to w.
func NewClientHandler(w io.Writer) *ClientHandler {
	return &ClientHandler{mu: &sync.Mutex{}, w: w}
}

// Handle processes log records.
func (h *ClientHandler) Handle(_ context.Context, r slog.Record) error {
	entry := map[string]any{
		"severity": r.Level.String(),
		"time":     time.Now().Format(time.RFC3339),
		"message":  r.Message,
	}

	for _, attr := range h.attrs {
		entry[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(attr slog.Attr) bool {
		entry[attr.Key] = attr.Value.Any()
		return true
	})

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.w.Write(jsonData); err != nil {
		return err
	}
	_, err = h.w.Write([]byte("\n"))
	return err
}

// Enabled always returns true, so all log levels are handled.
func (h *ClientHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// WithAttrs returns a new handler with additional attributes.
func (h *ClientHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &ClientHandler{mu: h.mu, w: h.w, attrs: newAttrs}
}

// WithGroup returns the same handler, as grouping is not implemented.
func (h *ClientHandler) WithGroup(_ string) slog.Handler {
	return h
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.New(NewClientHandler(os.Stderr))
}
