package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"time"
)

// ContextKey is the private key type for values this package stores in a
// request context.
type ContextKey string

const (
	// UserIDContextKey holds the authenticated user's ID, set by the auth
	// middleware.
	UserIDContextKey ContextKey = "userID"

	// TraceIDKey holds the per-request trace ID.
	TraceIDKey ContextKey = "traceID"

	// traceIDBytes is the trace ID entropy; 16 bytes renders as 32 hex chars.
	traceIDBytes = 16
)

// SetTraceID attaches a fresh trace ID to the context. Logs and error
// responses for the request carry it for correlation.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, newTraceID())
}

// GetTraceID returns the context's trace ID, or "" when none was set.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// newTraceID returns a random hex trace ID. If the random source fails it
// falls back to a timestamp-derived ID rather than a constant, so IDs stay
// usable for correlation.
func newTraceID() string {
	b := make([]byte, traceIDBytes)
	if n, err := rand.Read(b); err != nil || n != traceIDBytes {
		slog.Error("failed to generate random trace ID, using time-based fallback",
			"error", err, "bytes_read", n)
		now := time.Now()
		binary.BigEndian.PutUint64(b[:8], uint64(now.UnixNano()))
		binary.BigEndian.PutUint64(b[8:], uint64(now.Unix())<<32|uint64(now.Nanosecond()))
	}
	return hex.EncodeToString(b)
}
