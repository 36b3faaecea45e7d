package logging

import (
	"context"
	"log/slog"
)

// prettyHandler adapts the charm handler: it applies the level gate and
// secret redaction that charm cannot do itself, and clamps trace records
// onto charm's debug level.
type prettyHandler struct {
	next    slog.Handler
	level   slog.Level
	replace func([]string, slog.Attr) slog.Attr
	groups  []string
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *prettyHandler) Handle(ctx context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler interface requires value
	out := slog.NewRecord(r.Time, slog.Level(slogToCharmLevel(r.Level)), r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.replace(h.groups, a))
		return true
	})

	return h.next.Handle(ctx, out)
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.replace(h.groups, a)
	}

	return &prettyHandler{
		next:    h.next.WithAttrs(redacted),
		level:   h.level,
		replace: h.replace,
		groups:  h.groups,
	}
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	groups := make([]string, len(h.groups), len(h.groups)+1)
	copy(groups, h.groups)

	return &prettyHandler{
		next:    h.next.WithGroup(name),
		level:   h.level,
		replace: h.replace,
		groups:  append(groups, name),
	}
}
