package logging

import (
	"context"
	"log/slog"
)

// ContextProvider returns the attributes describing what the planner is doing
// right now, e.g. the tick frame and controlled player.
type ContextProvider func() []slog.Attr

// ContextHandler adds the provider's attributes to every record it handles.
// A record that already sets a key, or a logger bound to it with With, keeps
// its own value: "frame" logged by the parser about a rejected payload must not
// be shadowed by the frame of the last good tick.
type ContextHandler struct {
	inner    slog.Handler
	provider ContextProvider
	bound    map[string]struct{}
	grouped  bool
}

// NewContextHandler wraps inner. A nil provider adds nothing.
func NewContextHandler(inner slog.Handler, provider ContextProvider) *ContextHandler {
	return &ContextHandler{inner: inner, provider: provider}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider == nil {
		return h.inner.Handle(ctx, r)
	}
	attrs := h.provider()
	if len(attrs) == 0 {
		return h.inner.Handle(ctx, r)
	}

	own := make(map[string]struct{}, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		own[a.Key] = struct{}{}
		return true
	})
	for _, a := range attrs {
		if _, ok := own[a.Key]; ok {
			continue
		}
		if _, ok := h.bound[a.Key]; ok && !h.grouped {
			continue
		}
		r.AddAttrs(a)
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := h.bound
	if !h.grouped {
		bound = make(map[string]struct{}, len(h.bound)+len(attrs))
		for k := range h.bound {
			bound[k] = struct{}{}
		}
		for _, a := range attrs {
			bound[a.Key] = struct{}{}
		}
	}
	return &ContextHandler{
		inner:    h.inner.WithAttrs(attrs),
		provider: h.provider,
		bound:    bound,
		grouped:  h.grouped,
	}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ContextHandler{
		inner:    h.inner.WithGroup(name),
		provider: h.provider,
		bound:    h.bound,
		grouped:  true,
	}
}
