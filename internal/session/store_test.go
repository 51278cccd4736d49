package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/iliamunaev/quote-wizard/internal/apperr"
	"github.com/iliamunaev/quote-wizard/internal/model"
	"github.com/iliamunaev/quote-wizard/internal/options"
	"github.com/iliamunaev/quote-wizard/internal/service/payment"
	"github.com/iliamunaev/quote-wizard/internal/service/zipcheck"
	"github.com/iliamunaev/quote-wizard/internal/wizard"
)

type nopZip struct{}

func (nopZip) Check(context.Context, string) (zipcheck.Result, error) { return zipcheck.Result{}, nil }

type nopPricing struct{}

func (nopPricing) Resolve(context.Context, model.PricingQuery) (model.PricingQuote, error) {
	return model.PricingQuote{}, nil
}

type nopPayment struct{}

func (nopPayment) Tokenize(context.Context, model.PaymentForm) (payment.Token, error) {
	return payment.Token{}, nil
}

type nopRegistrar struct{}

func (nopRegistrar) Submit(context.Context, model.RegistrationRequest) error { return nil }

func newController() *wizard.Controller {
	return wizard.NewController(wizard.Deps{
		Zip:          nopZip{},
		Pricing:      nopPricing{},
		Payment:      nopPayment{},
		Registration: nopRegistrar{},
	}, options.Defaults())
}

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newStore(ttl time.Duration) (*Store, *clock) {
	clk := &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := New(ttl, nil)
	s.now = clk.Now
	return s, clk
}

func TestPutGetDelete(t *testing.T) {
	t.Parallel()

	s, _ := newStore(time.Minute)
	c := newController()

	id := s.Put(c)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected a uuid, got %q", id)
	}

	got, err := s.Get(id)
	if err != nil || got != c {
		t.Fatalf("expected stored controller, got %v %v", got, err)
	}

	if !s.Delete(id) {
		t.Fatal("expected delete to find the session")
	}
	if s.Delete(id) {
		t.Fatal("expected second delete to miss")
	}
	if _, err := s.Get(id); !errors.Is(err, apperr.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetExpiresIdleSessions(t *testing.T) {
	t.Parallel()

	s, clk := newStore(time.Minute)
	id := s.Put(newController())

	clk.Advance(50 * time.Second)
	if _, err := s.Get(id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Get refreshed the session.
	clk.Advance(50 * time.Second)
	if _, err := s.Get(id); err != nil {
		t.Fatalf("expected refreshed session, got %v", err)
	}

	clk.Advance(61 * time.Second)
	if _, err := s.Get(id); !errors.Is(err, apperr.ErrSessionNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected expired session removed, got %d", s.Len())
	}
}

func TestSweep(t *testing.T) {
	t.Parallel()

	s, clk := newStore(time.Minute)
	old := s.Put(newController())
	clk.Advance(45 * time.Second)
	fresh := s.Put(newController())
	clk.Advance(30 * time.Second)

	if n := s.Sweep(); n != 1 {
		t.Fatalf("expected 1 removed, got %d", n)
	}
	if _, err := s.Get(old); !errors.Is(err, apperr.ErrSessionNotFound) {
		t.Fatalf("expected old session gone, got %v", err)
	}
	if _, err := s.Get(fresh); err != nil {
		t.Fatalf("expected fresh session kept, got %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	s, _ := newStore(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, time.Millisecond) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
