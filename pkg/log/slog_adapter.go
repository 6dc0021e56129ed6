package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes events to an slog.Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at the matching slog level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("set_id", event.SetID),
		slog.String("category", event.Category.String()),
	}
	if event.Source != "" {
		attrs = append(attrs, slog.String("source", event.Source))
	}

	switch {
	case event.Mutation != nil:
		m := event.Mutation
		attrs = append(attrs,
			slog.String("op", m.Operation.String()),
			slog.String("oid", m.OID),
			slog.Int("index", m.Index),
			slog.Int("count", m.Count),
		)
		if m.Added > 0 {
			attrs = append(attrs, slog.Int("added", m.Added), slog.Int("total", m.Total))
		}
	case event.Encoding != nil:
		attrs = append(attrs,
			slog.String("format", event.Encoding.Format),
			slog.Int("size", event.Encoding.Size),
			slog.Int("attributes", event.Encoding.Attributes),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("op", event.Error.Operation.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.OID != "" {
			attrs = append(attrs, slog.String("oid", event.Error.OID))
		}
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slogLevel(event.Level), "attrset", attrs...)
}

func slogLevel(l Level) slog.Level {
	switch l {
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
