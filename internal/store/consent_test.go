package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsentCreateAndInbox(t *testing.T) {
	current := time.Now()
	s := NewConsentStore(stepClock(&current))

	req := s.Create("AAAAAAAA", "BBBBBBBB")
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, StatusPending, req.Status)
	assert.Equal(t, current.UnixMilli()+RequestTTL.Milliseconds(), req.ExpiresAt)

	inbox := s.Inbox("BBBBBBBB")
	require.Len(t, inbox, 1)
	assert.Equal(t, "AAAAAAAA", inbox[0].From)

	// The requester's own inbox stays empty.
	assert.Empty(t, s.Inbox("AAAAAAAA"))
}

func TestConsentNoDeduplication(t *testing.T) {
	s := NewConsentStore(nil)

	a := s.Create("AAAAAAAA", "BBBBBBBB")
	b := s.Create("AAAAAAAA", "BBBBBBBB")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, s.Inbox("BBBBBBBB"), 2)
}

func TestConsentRespondAllow(t *testing.T) {
	s := NewConsentStore(nil)
	req := s.Create("AAAAAAAA", "BBBBBBBB")

	got, err := s.Respond("BBBBBBBB", req.ID, true)
	require.NoError(t, err)
	assert.Equal(t, StatusAllowed, got.Status)
	assert.Equal(t, "AAAAAAAA", got.From)

	// A responded request disappears from the inbox view.
	assert.Empty(t, s.Inbox("BBBBBBBB"))
}

func TestConsentRespondDeny(t *testing.T) {
	s := NewConsentStore(nil)
	req := s.Create("AAAAAAAA", "BBBBBBBB")

	got, err := s.Respond("BBBBBBBB", req.ID, false)
	require.NoError(t, err)
	assert.Equal(t, StatusDenied, got.Status)
}

func TestConsentDecisionIsFinal(t *testing.T) {
	s := NewConsentStore(nil)
	req := s.Create("AAAAAAAA", "BBBBBBBB")

	_, err := s.Respond("BBBBBBBB", req.ID, true)
	require.NoError(t, err)

	got, err := s.Respond("BBBBBBBB", req.ID, false)
	assert.ErrorIs(t, err, ErrAlreadyResponded)
	assert.Equal(t, StatusAllowed, got.Status)
}

func TestConsentRespondNotFound(t *testing.T) {
	s := NewConsentStore(nil)
	req := s.Create("AAAAAAAA", "BBBBBBBB")

	_, err := s.Respond("BBBBBBBB", "no-such-id", true)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	// A request addressed to B is invisible to anyone else.
	_, err = s.Respond("CCCCCCCC", req.ID, true)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestConsentRespondExpired(t *testing.T) {
	current := time.Now()
	s := NewConsentStore(stepClock(&current))
	req := s.Create("AAAAAAAA", "BBBBBBBB")

	current = current.Add(RequestTTL + time.Second)

	_, err := s.Respond("BBBBBBBB", req.ID, true)
	assert.ErrorIs(t, err, ErrRequestExpired)

	// Expired access deletes the request outright.
	_, err = s.Respond("BBBBBBBB", req.ID, true)
	assert.ErrorIs(t, err, ErrRequestNotFound)
	assert.Empty(t, s.Inbox("BBBBBBBB"))
}

func TestConsentExpiredHiddenFromInbox(t *testing.T) {
	current := time.Now()
	s := NewConsentStore(stepClock(&current))
	s.Create("AAAAAAAA", "BBBBBBBB")

	current = current.Add(RequestTTL + time.Second)
	assert.Empty(t, s.Inbox("BBBBBBBB"))
}

func TestConsentSweep(t *testing.T) {
	current := time.Now()
	s := NewConsentStore(stepClock(&current))

	old := s.Create("AAAAAAAA", "BBBBBBBB")
	_, err := s.Respond("BBBBBBBB", old.ID, false)
	require.NoError(t, err)

	current = current.Add(RequestTTL / 2)
	s.Create("CCCCCCCC", "DDDDDDDD")

	current = current.Add(RequestTTL/2 + time.Second)
	assert.Equal(t, 1, s.Sweep())

	// B's map emptied out and was dropped entirely.
	_, ok := s.byTo["BBBBBBBB"]
	assert.False(t, ok)
	_, ok = s.byTo["DDDDDDDD"]
	assert.True(t, ok)
}
