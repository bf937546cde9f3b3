package shared

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAndGetTraceID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	withTrace := SetTraceID(ctx)
	traceID := GetTraceID(withTrace)
	assert.Len(t, traceID, 32)

	_, err := hex.DecodeString(traceID)
	assert.NoError(t, err)

	// The parent context stays untouched.
	assert.Empty(t, GetTraceID(ctx))
}

func TestGetTraceID_WrongValueType(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), TraceIDKey, 123)
	assert.Empty(t, GetTraceID(ctx))
}

func TestNewTraceID_Unique(t *testing.T) {
	t.Parallel()

	const iterations = 1000
	seen := make(map[string]bool, iterations)
	for i := 0; i < iterations; i++ {
		id := newTraceID()
		assert.Len(t, id, 32)
		assert.False(t, seen[id], "trace IDs must not repeat")
		seen[id] = true
	}
}
