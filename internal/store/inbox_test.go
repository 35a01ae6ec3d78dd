package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statussync/presence-relay/pkg/schema"
)

func grantAt(from, tok string, now time.Time, ttl time.Duration) schema.TokenGrant {
	return schema.TokenGrant{
		From:      from,
		Token:     tok,
		IssuedAt:  now.UnixMilli(),
		ExpiresAt: now.Add(ttl).UnixMilli(),
	}
}

func TestInboxPushList(t *testing.T) {
	current := time.Now()
	s := NewTokenInbox(stepClock(&current))

	s.Push("alice-12345", grantAt("bob-678901", "tok-1", current, time.Hour))
	s.Push("alice-12345", grantAt("carol-9999", "tok-2", current, time.Hour))

	grants := s.List("alice-12345")
	require.Len(t, grants, 2)
	assert.Equal(t, "tok-1", grants[0].Token)
	assert.Equal(t, "tok-2", grants[1].Token)

	assert.Empty(t, s.List("bob-678901"))
}

func TestInboxListFiltersExpired(t *testing.T) {
	current := time.Now()
	s := NewTokenInbox(stepClock(&current))

	s.Push("alice-12345", grantAt("bob-678901", "tok-1", current, time.Minute))
	s.Push("alice-12345", grantAt("carol-9999", "tok-2", current, time.Hour))

	current = current.Add(30 * time.Minute)
	grants := s.List("alice-12345")
	require.Len(t, grants, 1)
	assert.Equal(t, "tok-2", grants[0].Token)
}

func TestInboxAck(t *testing.T) {
	current := time.Now()
	s := NewTokenInbox(stepClock(&current))

	// Duplicate grants with the same token are all removed by one ack.
	s.Push("alice-12345", grantAt("bob-678901", "tok-1", current, time.Hour))
	s.Push("alice-12345", grantAt("bob-678901", "tok-1", current, time.Hour))
	s.Push("alice-12345", grantAt("carol-9999", "tok-2", current, time.Hour))

	s.Ack("alice-12345", "tok-1")
	grants := s.List("alice-12345")
	require.Len(t, grants, 1)
	assert.Equal(t, "tok-2", grants[0].Token)
}

func TestInboxAckIdempotent(t *testing.T) {
	s := NewTokenInbox(nil)

	// Unknown token, unknown recipient: both are no-ops.
	s.Ack("alice-12345", "tok-1")

	s.Push("alice-12345", grantAt("bob-678901", "tok-1", time.Now(), time.Hour))
	s.Ack("alice-12345", "tok-1")
	s.Ack("alice-12345", "tok-1")
	assert.Empty(t, s.List("alice-12345"))

	// Acking the last grant drops the queue itself.
	_, ok := s.byUser["alice-12345"]
	assert.False(t, ok)
}

func TestInboxSweep(t *testing.T) {
	current := time.Now()
	s := NewTokenInbox(stepClock(&current))

	s.Push("alice-12345", grantAt("bob-678901", "tok-1", current, time.Minute))
	s.Push("dave-55555", grantAt("bob-678901", "tok-2", current, time.Hour))

	current = current.Add(30 * time.Minute)
	assert.Equal(t, 1, s.Sweep())

	_, ok := s.byUser["alice-12345"]
	assert.False(t, ok)
	assert.Len(t, s.List("dave-55555"), 1)
}
