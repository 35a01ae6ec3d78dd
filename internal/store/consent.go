package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/statussync/presence-relay/pkg/schema"
)

// ConsentStore tracks access requests, grouped by the identity they are
// addressed to. A request is mutated exactly once: pending to allowed or
// pending to denied.
type ConsentStore struct {
	mu   sync.Mutex
	byTo map[string]map[string]*schema.ConsentRequest
	now  Clock
}

func NewConsentStore(now Clock) *ConsentStore {
	return &ConsentStore{
		byTo: make(map[string]map[string]*schema.ConsentRequest),
		now:  orNow(now),
	}
}

// Create records a new pending request from one identity to another and
// returns it. Duplicate pending requests for the same pair are allowed; any
// one allow satisfies the requester, so creation never deduplicates.
func (s *ConsentStore) Create(from, to string) schema.ConsentRequest {
	t := s.now().UnixMilli()
	req := schema.ConsentRequest{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		CreatedAt: t,
		ExpiresAt: t + RequestTTL.Milliseconds(),
		Status:    StatusPending,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.byTo[to]
	if m == nil {
		m = make(map[string]*schema.ConsentRequest)
		s.byTo[to] = m
	}
	m[req.ID] = &req
	return req
}

// Inbox returns the pending, unexpired requests addressed to identity.
// Order is unspecified.
func (s *ConsentStore) Inbox(identity string) []schema.ConsentRequest {
	t := s.now().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []schema.ConsentRequest{}
	for _, req := range s.byTo[identity] {
		if req.Status == StatusPending && t <= req.ExpiresAt {
			out = append(out, *req)
		}
	}
	return out
}

// Respond applies a terminal decision to a pending request addressed to
// identity. The read-check-transition sequence runs under the store lock, so
// at most one decision ever wins a race on the same id. An expired request
// is deleted on access. On ErrAlreadyResponded the returned copy carries the
// existing status so callers can report it.
func (s *ConsentStore) Respond(identity, requestID string, allow bool) (schema.ConsentRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.byTo[identity]
	req, ok := m[requestID]
	if !ok || req.To != identity {
		return schema.ConsentRequest{}, ErrRequestNotFound
	}
	if s.now().UnixMilli() > req.ExpiresAt {
		delete(m, requestID)
		if len(m) == 0 {
			delete(s.byTo, identity)
		}
		return schema.ConsentRequest{}, ErrRequestExpired
	}
	if req.Status != StatusPending {
		return *req, ErrAlreadyResponded
	}

	if allow {
		req.Status = StatusAllowed
	} else {
		req.Status = StatusDenied
	}
	return *req, nil
}

// Sweep removes requests past their window, regardless of status, and drops
// per-recipient maps that empty out.
func (s *ConsentStore) Sweep() int {
	t := s.now().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for to, m := range s.byTo {
		for id, req := range m {
			if t > req.ExpiresAt {
				delete(m, id)
				removed++
			}
		}
		if len(m) == 0 {
			delete(s.byTo, to)
		}
	}
	return removed
}
