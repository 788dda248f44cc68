package logx

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

const (
	FieldAction       = "action"
	FieldAppID        = "appid"
	FieldDecision     = "decision"
	FieldDurationMs   = "duration-ms"
	FieldError        = "error"
	FieldHTTPMethod   = "http-method"
	FieldItems        = "items"
	FieldItemsToGive  = "items-to-give"
	FieldMarketName   = "market-name"
	FieldOfferID      = "offer-id"
	FieldPartner      = "partner"
	FieldRequestID    = "request-id"
	FieldResponseCode = "response-status"
	FieldURL          = "url"
)

var Error = tint.Err //nolint:gochecknoglobals

type contextKeyLogger struct{}

// New builds the process logger on top of a tint handler.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
	}))
}

func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default when there is none.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKeyLogger{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
