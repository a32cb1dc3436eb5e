package testutils

import (
	"context"
	"log/slog"
	"sync"
)

// LogEntry is a captured log record flattened into a map. The message is
// stored under "message" and the level under "level".
type LogEntry map[string]any

// TestSlogHandler is a memory-backed slog.Handler for asserting on log output.
type TestSlogHandler struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	attrs   []slog.Attr
}

// NewTestSlogHandler creates an empty handler.
func NewTestSlogHandler() *TestSlogHandler {
	entries := make([]LogEntry, 0)
	return &TestSlogHandler{mu: &sync.Mutex{}, entries: &entries}
}

// NewTestLogger returns a logger writing to a new TestSlogHandler.
func NewTestLogger() (*slog.Logger, *TestSlogHandler) {
	h := NewTestSlogHandler()
	return slog.New(h), h
}

// Enabled satisfies slog.Handler.
func (h *TestSlogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// Handle satisfies slog.Handler.
func (h *TestSlogHandler) Handle(_ context.Context, r slog.Record) error {
	entry := make(LogEntry, len(h.attrs)+r.NumAttrs()+2)
	for _, a := range h.attrs {
		entry[a.Key] = a.Value.Any()
	}
	entry["level"] = r.Level.String()
	entry["message"] = r.Message
	r.Attrs(func(a slog.Attr) bool {
		entry[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	*h.entries = append(*h.entries, entry)
	return nil
}

// WithAttrs satisfies slog.Handler. The returned handler shares storage with h.
func (h *TestSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &TestSlogHandler{mu: h.mu, entries: h.entries, attrs: merged}
}

// WithGroup satisfies slog.Handler. Groups are flattened.
func (h *TestSlogHandler) WithGroup(string) slog.Handler {
	return h
}

// Entries returns a copy of the captured entries.
func (h *TestSlogHandler) Entries() []LogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]LogEntry, len(*h.entries))
	copy(result, *h.entries)
	return result
}

// Messages returns the captured messages in order.
func (h *TestSlogHandler) Messages() []string {
	entries := h.Entries()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if msg, ok := e["message"].(string); ok {
			out = append(out, msg)
		}
	}
	return out
}

// Find returns the first entry with the given message.
func (h *TestSlogHandler) Find(message string) (LogEntry, bool) {
	for _, e := range h.Entries() {
		if e["message"] == message {
			return e, true
		}
	}
	return nil, false
}

// Clear drops all captured entries.
func (h *TestSlogHandler) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	*h.entries = (*h.entries)[:0]
}
