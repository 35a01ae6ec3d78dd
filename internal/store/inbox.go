package store

import (
	"sync"

	"github.com/statussync/presence-relay/pkg/schema"
)

// TokenInbox queues freshly issued capability tokens per recipient until the
// client picks them up and acknowledges them. A recipient may accumulate
// multiple grants for the same peer; the client supersedes stale ones
// locally.
type TokenInbox struct {
	mu     sync.Mutex
	byUser map[string][]schema.TokenGrant
	now    Clock
}

func NewTokenInbox(now Clock) *TokenInbox {
	return &TokenInbox{
		byUser: make(map[string][]schema.TokenGrant),
		now:    orNow(now),
	}
}

// Push appends a grant to the recipient's queue.
func (s *TokenInbox) Push(recipient string, grant schema.TokenGrant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[recipient] = append(s.byUser[recipient], grant)
}

// List returns the recipient's unexpired grants in insertion order.
func (s *TokenInbox) List(recipient string) []schema.TokenGrant {
	t := s.now().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []schema.TokenGrant{}
	for _, g := range s.byUser[recipient] {
		if t <= g.ExpiresAt {
			out = append(out, g)
		}
	}
	return out
}

// Ack removes every grant whose token exactly equals the given value.
// Acknowledging an unknown or already-removed token is a no-op.
func (s *TokenInbox) Ack(recipient, tok string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := s.byUser[recipient]
	kept := queue[:0]
	for _, g := range queue {
		if g.Token != tok {
			kept = append(kept, g)
		}
	}
	if len(kept) == 0 {
		delete(s.byUser, recipient)
		return
	}
	s.byUser[recipient] = kept
}

// Sweep removes expired grants and drops queues that empty out.
func (s *TokenInbox) Sweep() int {
	t := s.now().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for recipient, queue := range s.byUser {
		kept := queue[:0]
		for _, g := range queue {
			if t <= g.ExpiresAt {
				kept = append(kept, g)
			} else {
				removed++
			}
		}
		if len(kept) == 0 {
			delete(s.byUser, recipient)
		} else {
			s.byUser[recipient] = kept
		}
	}
	return removed
}
