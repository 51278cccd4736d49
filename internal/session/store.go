// Package session keeps the live wizard sessions in memory.
//
// A session lives until it finishes or sits idle for longer than the
// store's TTL. Nothing survives a restart.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliamunaev/quote-wizard/internal/apperr"
	"github.com/iliamunaev/quote-wizard/internal/wizard"
)

type entry struct {
	c    *wizard.Controller
	seen time.Time
}

// Store maps session IDs to wizard controllers.
type Store struct {
	ttl time.Duration
	log *zap.Logger
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// New returns a Store that expires sessions idle for longer than ttl.
func New(ttl time.Duration, log *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		ttl:     ttl,
		log:     log,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Put stores c under a new random ID and returns the ID.
func (s *Store) Put(c *wizard.Controller) string {
	id := uuid.NewString()

	s.mu.Lock()
	s.entries[id] = &entry{c: c, seen: s.now()}
	s.mu.Unlock()

	return id
}

// Get returns the controller stored under id and marks it used. Unknown
// and expired IDs fail with apperr.ErrSessionNotFound.
func (s *Store) Get(id string) (*wizard.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, apperr.ErrSessionNotFound
	}
	now := s.now()
	if now.Sub(e.seen) > s.ttl {
		delete(s.entries, id)
		return nil, apperr.ErrSessionNotFound
	}
	e.seen = now
	return e.c, nil
}

// Delete removes id. It reports whether id was present.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[id]
	delete(s.entries, id)
	return ok
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes every expired session and returns how many it removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, e := range s.entries {
		if now.Sub(e.seen) > s.ttl {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx ends.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				s.log.Info("abandoned sessions removed", zap.Int("count", n), zap.Int("live", s.Len()))
			}
		}
	}
}
