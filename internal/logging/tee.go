package logging

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler sends each record to a primary handler (the console) and a
// mirror (the log file). Each side applies its own level.
type teeHandler struct {
	primary slog.Handler
	mirror  slog.Handler
}

// TeeLogger mirrors every record logged through base into mirror. A nil base
// returns a logger over mirror alone.
func TeeLogger(base *slog.Logger, mirror slog.Handler) *slog.Logger {
	switch {
	case mirror == nil && base == nil:
		return NewNop()
	case mirror == nil:
		return base
	case base == nil:
		return slog.New(mirror)
	}
	return slog.New(&teeHandler{primary: base.Handler(), mirror: mirror})
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.primary.Enabled(ctx, level) || h.mirror.Enabled(ctx, level)
}

func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var primaryErr, mirrorErr error
	if h.primary.Enabled(ctx, record.Level) {
		primaryErr = h.primary.Handle(ctx, record.Clone())
	}
	if h.mirror.Enabled(ctx, record.Level) {
		mirrorErr = h.mirror.Handle(ctx, record)
	}
	return errors.Join(primaryErr, mirrorErr)
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{primary: h.primary.WithAttrs(attrs), mirror: h.mirror.WithAttrs(attrs)}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{primary: h.primary.WithGroup(name), mirror: h.mirror.WithGroup(name)}
}
