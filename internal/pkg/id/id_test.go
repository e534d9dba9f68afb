package id

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAt_EncodesTimestamp(t *testing.T) {
	at := time.UnixMilli(1_700_000_000_123)
	parsed, err := ulid.Parse(NewAt(at))
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(at), parsed.Time())
}

func TestNewAt_UniqueWithinSameMillisecond(t *testing.T) {
	at := time.Now()
	a, b := NewAt(at), NewAt(at)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 26)
}
