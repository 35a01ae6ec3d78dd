// Package store implements the relay's in-memory state: presence snapshots,
// consent requests, token delivery inboxes, and profiles. Every store is a
// mutex-guarded map keyed by identity or request id. Expiry is enforced
// twice: lazily at read time, and physically by the Sweeper, so correctness
// never depends on sweep timing.
package store

import (
	"errors"
	"time"
)

// TTLs for the three expiring stores, plus the sweep cadence. Profiles do
// not expire.
const (
	PresenceTTL   = 3 * time.Minute
	RequestTTL    = 24 * time.Hour
	SweepInterval = 30 * time.Second
)

// Consent request statuses. Once a request leaves pending it never changes
// again.
const (
	StatusPending = "pending"
	StatusAllowed = "allowed"
	StatusDenied  = "denied"
)

var (
	// ErrBadState is returned by PresenceStore.Update for a state outside
	// the allowed set.
	ErrBadState = errors.New("bad presence state")
	// ErrRequestNotFound is returned when no request with the given id is
	// addressed to the caller.
	ErrRequestNotFound = errors.New("request not found")
	// ErrRequestExpired is returned when a request is past its window.
	ErrRequestExpired = errors.New("request expired")
	// ErrAlreadyResponded is returned when a request already has a terminal
	// decision.
	ErrAlreadyResponded = errors.New("request already responded")
)

// Clock supplies the current time to a store. A nil Clock means time.Now;
// tests inject a fixed or stepped clock so TTL behavior is deterministic.
type Clock func() time.Time

func orNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// IsValidState reports whether s is one of the three presence states a
// client may report.
func IsValidState(s string) bool {
	switch s {
	case "active", "away", "asleep":
		return true
	}
	return false
}
