// Package logging wires the process-wide slog logger: a text log file, a
// colored console when attached to a terminal, and an in-memory ring of
// recent warnings reported over the control pipe.
package logging

import (
	"context"
	"errors"
	"log/slog"
)

// FanoutHandler forwards each record to every child handler that is enabled
// for its level.
type FanoutHandler struct {
	handlers []slog.Handler
}

// NewFanoutHandler drops nil handlers.
func NewFanoutHandler(handlers ...slog.Handler) *FanoutHandler {
	out := make([]slog.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return &FanoutHandler{handlers: out}
}

// Enabled reports whether any child accepts level.
func (h *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, child := range h.handlers {
		if child.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle dispatches a clone of record to each enabled child. Child errors are
// joined; one failing sink does not stop the others.
func (h *FanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, child := range h.handlers {
		if !child.Enabled(ctx, record.Level) {
			continue
		}
		if err := child.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WithAttrs applies attrs to every child.
func (h *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	out := make([]slog.Handler, len(h.handlers))
	for i, child := range h.handlers {
		out[i] = child.WithAttrs(attrs)
	}
	return &FanoutHandler{handlers: out}
}

// WithGroup applies the group to every child.
func (h *FanoutHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	out := make([]slog.Handler, len(h.handlers))
	for i, child := range h.handlers {
		out[i] = child.WithGroup(name)
	}
	return &FanoutHandler{handlers: out}
}
