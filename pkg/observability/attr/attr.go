// Package attr holds slog attribute helpers shared by every module so log
// keys stay consistent across services, handlers and workers.
package attr

import (
	"context"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type ctxKey string

// CorrelationIDKey is the context key (and message metadata key) for the
// correlation id.
const CorrelationIDKey ctxKey = "correlation_id"

// CorrelationIDMetadataKey is the watermill metadata key.
const CorrelationIDMetadataKey = "correlation_id"

func String(key, value string) slog.Attr             { return slog.String(key, value) }
func Int(key string, value int) slog.Attr            { return slog.Int(key, value) }
func Int64(key string, value int64) slog.Attr        { return slog.Int64(key, value) }
func Bool(key string, value bool) slog.Attr          { return slog.Bool(key, value) }
func Any(key string, value any) slog.Attr            { return slog.Any(key, value) }
func Duration(key string, d time.Duration) slog.Attr { return slog.Duration(key, d) }

// Error renders err under the "error" key. A nil error renders as an empty string.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

func UserID(id uuid.UUID) slog.Attr       { return slog.String("user_id", id.String()) }
func PuzzleTypeID(id uuid.UUID) slog.Attr { return slog.String("puzzle_type_id", id.String()) }
func AttemptID(id uuid.UUID) slog.Attr    { return slog.String("attempt_id", id.String()) }

// WithCorrelationID stores id in ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// CorrelationIDFromContext returns the stored correlation id or "".
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return v
	}
	return ""
}

// ExtractCorrelationID returns the correlation id from ctx as an attribute.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	return slog.String(CorrelationIDMetadataKey, CorrelationIDFromContext(ctx))
}

// CorrelationIDFromMsg returns the correlation id carried by a watermill message.
func CorrelationIDFromMsg(msg *message.Message) slog.Attr {
	if msg == nil {
		return slog.String(CorrelationIDMetadataKey, "")
	}
	return slog.String(CorrelationIDMetadataKey, msg.Metadata.Get(CorrelationIDMetadataKey))
}
