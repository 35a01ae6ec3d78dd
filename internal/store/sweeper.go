package store

import (
	"log/slog"
	"time"
)

// Sweeper periodically evicts expired entries from the three expiring
// stores so identities that stop polling do not accumulate state forever.
// It is owned by the service root: Start launches the ticker loop, Stop
// halts it deterministically, and Sweep runs one pass synchronously so
// tests never wait on wall-clock timers.
type Sweeper struct {
	presence *PresenceStore
	consent  *ConsentStore
	inbox    *TokenInbox
	interval time.Duration
	log      *slog.Logger
	stop     chan struct{}
	done     chan struct{}
}

func NewSweeper(p *PresenceStore, c *ConsentStore, i *TokenInbox, interval time.Duration, log *slog.Logger) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{
		presence: p,
		consent:  c,
		inbox:    i,
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Sweep runs a single eviction pass across all stores and returns the total
// number of entries removed. Each store takes its own mutex, so a sweep
// never observes a record mid-write by a live handler.
func (s *Sweeper) Sweep() int {
	return s.presence.Sweep() + s.consent.Sweep() + s.inbox.Sweep()
}

// Start launches the background sweep loop.
func (s *Sweeper) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					s.log.Debug("sweep evicted expired entries", "count", n)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the sweep loop and waits for it to exit.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}
