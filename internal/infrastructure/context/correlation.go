package context

import (
	"context"
	"strings"
)

type contextKey string

// CorrelationIDKey is the context key for correlation IDs.
const CorrelationIDKey contextKey = "correlation_id"

// CorrelationIDHeader carries a caller-supplied correlation ID. When present it
// takes precedence over the router-generated request ID.
const CorrelationIDHeader = "X-Correlation-ID"

// MaxCorrelationIDLength bounds caller-supplied ids; the ledger column is
// VARCHAR(64).
const MaxCorrelationIDLength = 64

// WithCorrelationID adds a correlation ID to the context.
// The correlation ID follows a request from the HTTP edge down to the
// issuance ledger, so an issued number can be traced back to its caller.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, correlationID)
}

// GetCorrelationID retrieves the correlation ID from the context.
// Returns an empty string if no correlation ID is present.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// SanitizeCorrelationID returns raw trimmed when it is a usable id, "" otherwise.
// Only letters, digits and '-', '_', '.', ':' are accepted so the value is
// safe to echo in headers and write to logs.
func SanitizeCorrelationID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > MaxCorrelationIDLength {
		return ""
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == ':':
		default:
			return ""
		}
	}
	return id
}
