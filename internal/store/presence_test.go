package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock returns a Clock reading from *current, so tests advance time by
// reassigning it.
func stepClock(current *time.Time) Clock {
	return func() time.Time { return *current }
}

func TestPresenceUpdateGet(t *testing.T) {
	current := time.Now()
	s := NewPresenceStore(stepClock(&current))

	ts := int64(1700000000)
	require.NoError(t, s.Update("alice-12345", "active", "mac", &ts))

	p, ok := s.Get("alice-12345")
	require.True(t, ok)
	assert.Equal(t, "active", p.State)
	assert.Equal(t, "mac", p.Device)
	assert.Equal(t, ts, p.Timestamp)
	assert.Equal(t, "alice-12345", p.Identity)
}

func TestPresenceDefaults(t *testing.T) {
	current := time.Now()
	s := NewPresenceStore(stepClock(&current))

	require.NoError(t, s.Update("alice-12345", "away", "", nil))

	p, ok := s.Get("alice-12345")
	require.True(t, ok)
	assert.Equal(t, "unknown", p.Device)
	assert.Equal(t, current.Unix(), p.Timestamp)
}

func TestPresenceBadState(t *testing.T) {
	s := NewPresenceStore(nil)
	assert.ErrorIs(t, s.Update("alice-12345", "offline", "", nil), ErrBadState)
}

func TestPresenceOverwrite(t *testing.T) {
	s := NewPresenceStore(nil)

	require.NoError(t, s.Update("alice-12345", "active", "mac", nil))
	require.NoError(t, s.Update("alice-12345", "asleep", "iphone", nil))

	p, ok := s.Get("alice-12345")
	require.True(t, ok)
	assert.Equal(t, "asleep", p.State)
	assert.Equal(t, "iphone", p.Device)
}

func TestPresenceStaleness(t *testing.T) {
	current := time.Now()
	s := NewPresenceStore(stepClock(&current))

	require.NoError(t, s.Update("alice-12345", "active", "mac", nil))

	_, ok := s.Get("alice-12345")
	assert.True(t, ok)

	// Staleness is evaluated at read time, before any sweep runs.
	current = current.Add(PresenceTTL + time.Second)
	_, ok = s.Get("alice-12345")
	assert.False(t, ok)
}

func TestPresenceGetAbsent(t *testing.T) {
	s := NewPresenceStore(nil)
	_, ok := s.Get("nobody-12345")
	assert.False(t, ok)
}

func TestPresenceSweep(t *testing.T) {
	current := time.Now()
	s := NewPresenceStore(stepClock(&current))

	require.NoError(t, s.Update("alice-12345", "active", "mac", nil))
	current = current.Add(PresenceTTL / 2)
	require.NoError(t, s.Update("bob-678901", "away", "mac", nil))

	current = current.Add(PresenceTTL/2 + time.Second)
	assert.Equal(t, 1, s.Sweep())

	_, ok := s.Get("bob-678901")
	assert.True(t, ok)
	assert.Len(t, s.data, 1)
}
