package store

import (
	"strings"
	"sync"

	"github.com/statussync/presence-relay/pkg/schema"
)

type profileRecord struct {
	schema.Profile
	updatedAt int64 // server receipt time, epoch ms
}

// ProfileStore holds public display metadata per identity. Profiles are
// whole-record upserts with no expiry and, deliberately, no authorization:
// identities are self-chosen and unguessable, and presence itself stays
// consent-gated.
type ProfileStore struct {
	mu   sync.RWMutex
	data map[string]profileRecord
	now  Clock
}

func NewProfileStore(now Clock) *ProfileStore {
	return &ProfileStore{
		data: make(map[string]profileRecord),
		now:  orNow(now),
	}
}

// Update replaces the profile for identity. displayName and handle are
// trimmed of surrounding whitespace.
func (s *ProfileStore) Update(identity, displayName, handle string, avatar []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[identity] = profileRecord{
		Profile: schema.Profile{
			Identity:    identity,
			DisplayName: strings.TrimSpace(displayName),
			Handle:      strings.TrimSpace(handle),
			AvatarBlob:  avatar,
		},
		updatedAt: s.now().UnixMilli(),
	}
}

// Get returns the profile for identity, or false if none was ever set.
func (s *ProfileStore) Get(identity string) (schema.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[identity]
	if !ok {
		return schema.Profile{}, false
	}
	return rec.Profile, true
}
