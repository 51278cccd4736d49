package options

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/iliamunaev/quote-wizard/internal/model"
)

// Fetcher loads the raw option document from the configuration service.
type Fetcher interface {
	GetFormOptions(ctx context.Context) ([]model.FormField, error)
}

const defaultFetchTimeout = 5 * time.Second

// Timing controls how a Source caches and waits.
type Timing struct {
	TTL   time.Duration // reuse of a fetched set; zero disables caching
	Retry time.Duration // reuse of the defaults after a failed fetch
	Fetch time.Duration // deadline of one fetch
	Wait  time.Duration // how long Load waits for a fetch; zero waits for it
}

// Source serves resolved option sets. Concurrent loads share one fetch,
// which runs detached from the callers and outlives the ones that stop
// waiting for it.
type Source struct {
	fetch    Fetcher
	defaults Set
	timing   Timing
	log      *zap.Logger
	now      func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	cached  Set
	expires time.Time
}

// NewSource returns a Source over fetch. A nil logger is replaced by a
// no-op logger.
func NewSource(fetch Fetcher, timing Timing, log *zap.Logger) *Source {
	if fetch == nil {
		panic("options.NewSource: nil fetcher")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if timing.Fetch <= 0 {
		timing.Fetch = defaultFetchTimeout
	}
	return &Source{
		fetch:    fetch,
		defaults: Defaults(),
		timing:   timing,
		log:      log,
		now:      time.Now,
	}
}

// Load returns the current option set. It never fails. When no fresh set
// is cached it waits for a fetch up to the wait budget or until ctx ends,
// then serves the last known set, or the defaults.
func (s *Source) Load(ctx context.Context) Set {
	set, fresh := s.current()
	if fresh {
		return set
	}

	ch := s.group.DoChan("form-options", func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx)), nil
	})

	var budget <-chan time.Time
	if s.timing.Wait > 0 {
		t := time.NewTimer(s.timing.Wait)
		defer t.Stop()
		budget = t.C
	}

	select {
	case r := <-ch:
		return r.Val.(Set)
	case <-budget:
	case <-ctx.Done():
	}
	s.log.Debug("form options still loading, serving fallback")
	return set
}

// refresh fetches and caches the option set. A failure caches the
// defaults for the retry period.
func (s *Source) refresh(ctx context.Context) Set {
	ctx, cancel := context.WithTimeout(ctx, s.timing.Fetch)
	defer cancel()

	fields, err := s.fetch.GetFormOptions(ctx)
	if err != nil {
		s.log.Warn("form options unavailable, using defaults", zap.Error(err))
		s.store(s.defaults, s.timing.Retry)
		return s.defaults
	}

	set := ResolveAll(fields, s.defaults)
	s.store(set, s.timing.TTL)
	s.log.Debug("form options loaded", zap.Int("fields", len(fields)))
	return set
}

func (s *Source) store(set Set, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = set
	s.expires = s.now().Add(ttl)
}

// current returns the cached set, or the defaults when nothing is cached,
// and whether it is still fresh.
func (s *Source) current() (Set, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached == nil {
		return s.defaults, false
	}
	return s.cached, s.now().Before(s.expires)
}
