// Package registration performs the final signup submission.
package registration

import (
	"context"
	"fmt"

	"github.com/iliamunaev/quote-wizard/internal/apperr"
	"github.com/iliamunaev/quote-wizard/internal/model"
	"github.com/iliamunaev/quote-wizard/internal/service/tracker"
)

// Client is the registration collaborator.
type Client interface {
	SubmitQuote(ctx context.Context, req model.RegistrationRequest) (model.SubmitQuoteResponse, error)
}

// Submitter sends composed registrations.
type Submitter struct {
	client Client
	tr     *tracker.Tracker
}

// New returns a Submitter. It panics if client is nil.
func New(client Client, tr *tracker.Tracker) *Submitter {
	if client == nil {
		panic("registration.New: nil client")
	}
	return &Submitter{client: client, tr: tr}
}

// Submit sends req once. Transport failures and unsuccessful answers wrap
// apperr.ErrSubmissionFailed; the service's own error text, when present,
// becomes the user-facing message.
func (s *Submitter) Submit(ctx context.Context, req model.RegistrationRequest) error {
	defer s.tr.Track()()

	resp, err := s.client.SubmitQuote(ctx, req)
	if err != nil {
		return fmt.Errorf("submit quote: %w: %w", apperr.ErrSubmissionFailed, err)
	}
	if !resp.Success {
		return apperr.WithMessage(fmt.Errorf("submit quote: %w: %s", apperr.ErrSubmissionFailed, resp.Error), resp.Error)
	}
	return nil
}
