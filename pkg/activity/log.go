package activity

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/dealdocs/pkg/logger"
)

// LogRecorder writes events to a structured logger. Failed outcomes are
// logged at warn level.
type LogRecorder struct {
	log *slog.Logger
}

func NewLogRecorder(l *slog.Logger) *LogRecorder {
	if l == nil {
		l = logger.Nop()
	}
	return &LogRecorder{log: l}
}

func (r *LogRecorder) Record(ctx context.Context, e Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	e = e.Stamp()

	level := slog.LevelInfo
	if e.Error != "" {
		level = slog.LevelWarn
	}
	attrs := []slog.Attr{
		slog.String("event_id", e.ID),
		logger.DealID(e.DealID),
		logger.DocumentKind(e.DocumentKind),
		slog.String("action", string(e.Action)),
		logger.Status(e.Status),
	}
	if e.MailClient != "" {
		attrs = append(attrs, logger.MailClient(e.MailClient))
	}
	if e.Error != "" {
		attrs = append(attrs, slog.String("error", e.Error))
	}
	r.log.LogAttrs(ctx, level, "document activity", attrs...)
	return nil
}
