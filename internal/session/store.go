package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrVisitNotFound is returned for an unknown or evicted visit id.
var ErrVisitNotFound = errors.New("visit not found")

// Store keeps the live visits in memory.
type Store struct {
	log             zerolog.Logger
	notificationTTL time.Duration
	idleTTL         time.Duration
	now             func() time.Time

	mu     sync.RWMutex
	visits map[uuid.UUID]*Visit
}

// NewStore returns an empty Store. Visits notify for notificationTTL and are
// evicted after idleTTL without a request.
func NewStore(log zerolog.Logger, notificationTTL, idleTTL time.Duration) *Store {
	return &Store{
		log:             log,
		notificationTTL: notificationTTL,
		idleTTL:         idleTTL,
		now:             time.Now,
		visits:          make(map[uuid.UUID]*Visit),
	}
}

// Create starts a new visit.
func (s *Store) Create() *Visit {
	v := newVisit(s.notificationTTL, s.now)

	s.mu.Lock()
	s.visits[v.ID] = v
	s.mu.Unlock()

	return v
}

// Get returns the visit with id and marks it as seen.
func (s *Store) Get(id uuid.UUID) (*Visit, error) {
	s.mu.RLock()
	v, ok := s.visits[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrVisitNotFound
	}
	v.touch()
	return v, nil
}

// Len returns the number of live visits.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.visits)
}

// Sweep evicts visits idle for longer than the idle TTL and returns how many
// were removed. Visits waiting on the backend are kept.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, v := range s.visits {
		idle, busy := v.idleSince(now)
		if busy || idle <= s.idleTTL {
			continue
		}
		v.Close()
		delete(s.visits, id)
		removed++
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", interval).Dur("idle_ttl", s.idleTTL).Msg("visit sweeper started")
	defer s.log.Info().Msg("visit sweeper stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.log.Debug().Int("evicted", n).Int("live", s.Len()).Msg("evicted idle visits")
			}
		}
	}
}
