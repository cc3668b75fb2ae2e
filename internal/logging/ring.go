package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Entry is one captured record.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %s %s", e.Time.Format(time.TimeOnly), e.Level, e.Message)
}

// Ring keeps the most recent records at or above a level.
type Ring struct {
	state    *ringState
	minLevel slog.Level
	attrs    string
}

type ringState struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

// NewRing creates a ring holding up to size entries.
func NewRing(size int, minLevel slog.Level) *Ring {
	if size < 1 {
		size = 1
	}
	return &Ring{state: &ringState{entries: make([]Entry, size)}, minLevel: minLevel}
}

// Enabled implements slog.Handler.
func (r *Ring) Enabled(_ context.Context, level slog.Level) bool {
	return level >= r.minLevel
}

// Handle implements slog.Handler. Attributes are folded into the message.
func (r *Ring) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder
	b.WriteString(record.Message)
	b.WriteString(r.attrs)
	record.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Resolve())
		return true
	})

	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[s.next] = Entry{Time: record.Time, Level: record.Level.String(), Message: b.String()}
	s.next = (s.next + 1) % len(s.entries)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (r *Ring) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return r
	}
	var b strings.Builder
	b.WriteString(r.attrs)
	for _, a := range attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Resolve())
	}
	return &Ring{state: r.state, minLevel: r.minLevel, attrs: b.String()}
}

// WithGroup implements slog.Handler. Groups are not rendered.
func (r *Ring) WithGroup(string) slog.Handler {
	return r
}

// Entries returns captured entries, oldest first.
func (r *Ring) Entries() []Entry {
	s := r.state
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.full {
		return append([]Entry(nil), s.entries[:s.next]...)
	}
	out := make([]Entry, 0, len(s.entries))
	out = append(out, s.entries[s.next:]...)
	return append(out, s.entries[:s.next]...)
}
