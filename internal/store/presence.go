package store

import (
	"sync"

	"github.com/statussync/presence-relay/pkg/schema"
)

// presenceRecord pairs the wire snapshot with the server receipt time used
// for staleness checks.
type presenceRecord struct {
	schema.Presence
	updatedAt int64 // server receipt time, epoch ms
}

// PresenceStore holds the latest presence snapshot per identity. Updates are
// unconditional overwrites; there is no history.
type PresenceStore struct {
	mu   sync.RWMutex
	data map[string]presenceRecord
	now  Clock
}

func NewPresenceStore(now Clock) *PresenceStore {
	return &PresenceStore{
		data: make(map[string]presenceRecord),
		now:  orNow(now),
	}
}

// Update upserts the snapshot for identity. device defaults to "unknown"
// and timestamp (client clock, epoch seconds) defaults to the server's now
// when absent.
func (s *PresenceStore) Update(identity, state, device string, timestamp *int64) error {
	if !IsValidState(state) {
		return ErrBadState
	}

	t := s.now()
	if device == "" {
		device = "unknown"
	}
	ts := t.Unix()
	if timestamp != nil {
		ts = *timestamp
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[identity] = presenceRecord{
		Presence: schema.Presence{
			Identity:  identity,
			State:     state,
			Device:    device,
			Timestamp: ts,
		},
		updatedAt: t.UnixMilli(),
	}
	return nil
}

// Get returns the snapshot for identity, or false if none exists or the
// record is older than PresenceTTL.
func (s *PresenceStore) Get(identity string) (schema.Presence, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[identity]
	if !ok {
		return schema.Presence{}, false
	}
	if s.now().UnixMilli()-rec.updatedAt > PresenceTTL.Milliseconds() {
		return schema.Presence{}, false
	}
	return rec.Presence, true
}

// Sweep removes records past PresenceTTL and reports how many were evicted.
func (s *PresenceStore) Sweep() int {
	t := s.now().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for identity, rec := range s.data {
		if t-rec.updatedAt > PresenceTTL.Milliseconds() {
			delete(s.data, identity)
			removed++
		}
	}
	return removed
}
