// Package pricing resolves the price of a service selection.
package pricing

import (
	"context"
	"fmt"

	"github.com/iliamunaev/quote-wizard/internal/apperr"
	"github.com/iliamunaev/quote-wizard/internal/model"
	"github.com/iliamunaev/quote-wizard/internal/service/tracker"
)

// Client is the pricing collaborator.
type Client interface {
	GetPricing(ctx context.Context, q model.PricingQuery) (model.PricingResponse, error)
}

// Resolver fetches quotes.
type Resolver struct {
	client Client
	tr     *tracker.Tracker
}

// New returns a Resolver. It panics if client is nil.
func New(client Client, tr *tracker.Tracker) *Resolver {
	if client == nil {
		panic("pricing.New: nil client")
	}
	return &Resolver{client: client, tr: tr}
}

// Resolve asks the pricing service for q. Every failure, including an
// unsuccessful answer, wraps apperr.ErrPricingUnavailable.
func (r *Resolver) Resolve(ctx context.Context, q model.PricingQuery) (model.PricingQuote, error) {
	defer r.tr.Track()()

	resp, err := r.client.GetPricing(ctx, q)
	if err != nil {
		return model.PricingQuote{}, fmt.Errorf("pricing: %w: %w", apperr.ErrPricingUnavailable, err)
	}
	if !resp.Success || resp.Pricing == nil {
		err := fmt.Errorf("pricing: %w", apperr.ErrPricingUnavailable)
		if resp.Error != "" {
			err = apperr.WithMessage(fmt.Errorf("pricing: %w: %s", apperr.ErrPricingUnavailable, resp.Error), resp.Error)
		}
		return model.PricingQuote{}, err
	}

	quote := *resp.Pricing
	if quote.MonthlyPrice != nil {
		m := *quote.MonthlyPrice
		quote.MonthlyPrice = &m
	}
	return quote, nil
}

// QueryFor builds the pricing query of a selection in zip.
func QueryFor(zip string, sel model.ServiceSelection) model.PricingQuery {
	return model.PricingQuery{
		ZipCode:      zip,
		NumberOfDogs: sel.NumberOfDogs,
		Frequency:    sel.Frequency,
		LastCleaned:  sel.LastCleaned,
	}
}
