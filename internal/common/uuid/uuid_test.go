package uuid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsV7(t *testing.T) {
	u := New()
	assert.Equal(t, 7, int(u.Version()))
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Truncate(time.Millisecond)
	u := New()
	after := time.Now()

	ts := Timestamp(u)
	require.False(t, ts.IsZero())
	assert.False(t, ts.Before(before))
	assert.False(t, ts.After(after))
}

func TestTimestampNonV7(t *testing.T) {
	u := MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8") // v1
	assert.True(t, Timestamp(u).IsZero())
}

func TestParse(t *testing.T) {
	u := New()
	parsed, err := Parse(u.String())
	require.NoError(t, err)
	assert.Equal(t, u, parsed)

	_, err = Parse("not-a-uuid")
	assert.Error(t, err)
}
