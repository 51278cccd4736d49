package wizard

import (
	"fmt"

	"github.com/iliamunaev/quote-wizard/internal/apperr"
	"github.com/iliamunaev/quote-wizard/internal/model"
	"github.com/iliamunaev/quote-wizard/internal/options"
)

// PaymentToken is a card token created on the payment step. A token is
// single-use: it is marked Spent when a final submission takes it and is
// never sent again.
type PaymentToken struct {
	Token          string
	CardholderName string
	Brand          string
	Last4          string
	Attempt        int
	Spent          bool
}

// Session is everything one wizard instance has collected.
//
// A Session is a value: transitions return a new Session and never modify
// the one they were given. Pointer fields are replaced, never written
// through.
type Session struct {
	State State

	ZipCode       string
	InServiceArea *bool
	AreaMessage   string

	Service       *model.ServiceSelection
	Quote         *model.PricingQuote
	Contact       *model.ContactInfo
	Dogs          []model.DogRecord
	Notifications *model.NotificationPrefs

	Card     model.CardField
	Payment  *PaymentToken
	Attempts int

	Options options.Set

	Error       string
	FieldErrors map[string]string

	// Revision increases with every state change.
	Revision uint64
}

// Step returns the current step.
func (s Session) Step() Step { return s.State.Step }

func (s Session) clone() Session {
	s.State.Dogs = s.State.Dogs.clone()
	s.Dogs = cloneDogs(s.Dogs)
	if s.FieldErrors != nil {
		fe := make(map[string]string, len(s.FieldErrors))
		for k, v := range s.FieldErrors {
			fe[k] = v
		}
		s.FieldErrors = fe
	}
	return s
}

func cloneDogs(in []model.DogRecord) []model.DogRecord {
	if in == nil {
		return nil
	}
	out := make([]model.DogRecord, len(in))
	copy(out, in)
	return out
}

// Validate reports whether the data the current step depends on is
// present. Every transition keeps it true.
func (s Session) Validate() error {
	step := s.State.Step

	if (step == StepDogs) != (s.State.Dogs != nil) {
		return invalid("dogs sub-state on step %s", step)
	}

	if step == StepOutOfArea {
		if s.ZipCode == "" || s.InServiceArea == nil || *s.InServiceArea {
			return invalid("out-of-area without a failed area check")
		}
		return nil
	}
	if position(step) < 0 {
		return invalid("unknown step %q", step)
	}

	if at(step, StepService) && (s.InServiceArea == nil || !*s.InServiceArea) {
		return invalid("%s without an in-area zip", step)
	}
	if at(step, StepQuote) && (s.Service == nil || s.Quote == nil) {
		return invalid("%s without a priced service selection", step)
	}
	if at(step, StepDogs) && s.Contact == nil {
		return invalid("%s without contact info", step)
	}
	if step == StepDogs {
		d := s.State.Dogs
		if len(d.Records) != s.Service.NumberOfDogs {
			return invalid("dogs sized %d for %d dogs", len(d.Records), s.Service.NumberOfDogs)
		}
		if d.Index < 0 || d.Index >= len(d.Records) {
			return invalid("dog index %d out of range", d.Index)
		}
	}
	if at(step, StepNotifications) {
		if len(s.Dogs) != s.Service.NumberOfDogs {
			return invalid("%d dog records for %d dogs", len(s.Dogs), s.Service.NumberOfDogs)
		}
		for i, d := range s.Dogs {
			if !d.Complete() {
				return invalid("dog %d incomplete", i)
			}
		}
	}
	if at(step, StepPayment) && s.Notifications == nil {
		return invalid("%s without notification preferences", step)
	}
	if at(step, StepReview) && s.Payment == nil {
		return invalid("%s without a payment token", step)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperr.ErrInvalidTransition, fmt.Sprintf(format, args...))
}
