package audit

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"recordvault.org/internal/auth"
)

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context for audit
// logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the audit request id from the context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// Logger writes append-only audit events for security-relevant actions:
// logins, refreshes, sign-ups and authorization denials. Entries are
// enriched with the request id and authenticated identity from the context.
type Logger struct {
	log *zap.Logger
}

// New wraps a zap logger for audit use. A nil logger yields a no-op.
func New(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{log: log}
}

// Event records one audit entry.
func (l *Logger) Event(ctx context.Context, event string, fields ...zap.Field) {
	event = strings.TrimSpace(event)
	if event == "" {
		return
	}
	entry := make([]zap.Field, 0, len(fields)+4)
	entry = append(entry, zap.String("type", "audit"))
	if rid := RequestIDFromContext(ctx); rid != "" {
		entry = append(entry, zap.String("request_id", rid))
	}
	if authCtx, ok := auth.FromContext(ctx); ok {
		entry = append(entry, zap.String("username", authCtx.Username), zap.String("role", string(authCtx.Role)))
	}
	entry = append(entry, fields...)
	l.log.Info(event, entry...)
}
