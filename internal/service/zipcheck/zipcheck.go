// Package zipcheck decides whether a ZIP code is inside the service area.
package zipcheck

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliamunaev/quote-wizard/internal/apperr"
	"github.com/iliamunaev/quote-wizard/internal/model"
	"github.com/iliamunaev/quote-wizard/internal/schema"
	"github.com/iliamunaev/quote-wizard/internal/service/tracker"
)

// Client is the area-check collaborator.
type Client interface {
	CheckZip(ctx context.Context, req model.CheckZipRequest) (model.CheckZipResponse, error)
}

// Result is the outcome of a successful check.
type Result struct {
	ZipCode       string
	InServiceArea bool
	Message       string
}

// Checker runs the eligibility check.
type Checker struct {
	client Client
	tr     *tracker.Tracker
}

// New returns a Checker. It panics if client is nil.
func New(client Client, tr *tracker.Tracker) *Checker {
	if client == nil {
		panic("zipcheck.New: nil client")
	}
	return &Checker{client: client, tr: tr}
}

// Check validates zip locally and asks the area-check service about it.
// Malformed input fails with apperr.ErrInvalidZip before any network call;
// service failures wrap apperr.ErrZipCheckFailed.
func (c *Checker) Check(ctx context.Context, zip string) (Result, error) {
	zip = strings.TrimSpace(zip)
	if err := schema.Zip(model.ZipForm{ZipCode: zip}); err != nil {
		return Result{}, fmt.Errorf("%w: %w", apperr.ErrInvalidZip, err)
	}

	defer c.tr.Track()()

	resp, err := c.client.CheckZip(ctx, model.CheckZipRequest{ZipCode: zip})
	if err != nil {
		return Result{}, fmt.Errorf("check zip %s: %w: %w", zip, apperr.ErrZipCheckFailed, err)
	}

	return Result{
		ZipCode:       zip,
		InServiceArea: resp.InServiceArea,
		Message:       resp.Message,
	}, nil
}
