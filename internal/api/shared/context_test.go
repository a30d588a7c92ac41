package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx), "no trace ID expected before SetTraceID")

	ctxWithTrace := SetTraceID(ctx)
	traceID := GetTraceID(ctxWithTrace)
	assert.Len(t, traceID, 32, "trace ID should be 32 hex characters (16 bytes)")

	_, err := hex.DecodeString(traceID)
	assert.NoError(t, err, "trace ID should be valid hex")

	// The original context must stay untouched.
	assert.Empty(t, GetTraceID(ctx))
}

func TestGetTraceIDWithInvalidContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDKey, 123) // not a string
	assert.Empty(t, GetTraceID(ctx))
}

func TestGenerateTraceIDUniqueness(t *testing.T) {
	const iterations = 1000
	seen := make(map[string]bool, iterations)

	for i := 0; i < iterations; i++ {
		id := generateTraceID()
		require.Len(t, id, 32)
		assert.False(t, seen[id], "trace IDs must not repeat")
		seen[id] = true
	}
}

// failingReader simulates an exhausted entropy source.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("simulated rand failure")
}

// testableGenerateTraceID mirrors generateTraceID but takes the random source
// as a parameter; rand.Reader itself cannot be swapped out since Go 1.20.
func testableGenerateTraceID(reader io.Reader) string {
	b := make([]byte, TraceIDLength)
	n, err := reader.Read(b)
	if err != nil || n != TraceIDLength {
		return generateFallbackTraceID()
	}
	return hex.EncodeToString(b)
}

func TestGenerateTraceIDFallback(t *testing.T) {
	tests := []struct {
		name   string
		reader io.Reader
	}{
		{name: "rand failure", reader: failingReader{}},
		{name: "partial read", reader: io.LimitReader(rand.Reader, TraceIDLength/2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := testableGenerateTraceID(tt.reader)
			assert.Len(t, id, 32, "fallback ID should still be 32 hex characters")

			_, err := hex.DecodeString(id)
			assert.NoError(t, err, "fallback ID should be valid hex")
		})
	}
}

func TestFallbackTraceIDUniqueness(t *testing.T) {
	const iterations = 50
	seen := make(map[string]bool, iterations)

	for i := 0; i < iterations; i++ {
		id := generateFallbackTraceID()
		require.Len(t, id, 32)
		assert.False(t, seen[id], "fallback IDs must not repeat")
		seen[id] = true

		// The fallback mixes timestamps, so give them room to advance.
		time.Sleep(time.Millisecond)
	}
}
