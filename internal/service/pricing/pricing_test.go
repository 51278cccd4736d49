package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/iliamunaev/quote-wizard/internal/apperr"
	"github.com/iliamunaev/quote-wizard/internal/model"
	"github.com/iliamunaev/quote-wizard/internal/service/tracker"
)

type stubClient struct {
	got  model.PricingQuery
	resp model.PricingResponse
	err  error
}

func (s *stubClient) GetPricing(_ context.Context, q model.PricingQuery) (model.PricingResponse, error) {
	s.got = q
	return s.resp, s.err
}

func TestResolve(t *testing.T) {
	t.Parallel()

	monthly := 86.6
	tests := []struct {
		name    string
		resp    model.PricingResponse
		err     error
		wantErr bool
	}{
		{
			name: "success",
			resp: model.PricingResponse{Success: true, Pricing: &model.PricingQuote{
				RecurringPrice: 20, MonthlyPrice: &monthly, InitialCleanupFee: 45, BillingInterval: "week", Category: "standard",
			}},
		},
		{
			name: "price_not_configured",
			resp: model.PricingResponse{Success: true, Pricing: &model.PricingQuote{PriceNotConfigured: true}},
		},
		{name: "unsuccessful", resp: model.PricingResponse{Success: false}, wantErr: true},
		{name: "unsuccessful_with_reason", resp: model.PricingResponse{Success: false, Error: "zone missing"}, wantErr: true},
		{name: "success_without_pricing", resp: model.PricingResponse{Success: true}, wantErr: true},
		{name: "transport", err: errors.New("dial tcp: refused"), wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := &tracker.Tracker{}
			client := &stubClient{resp: tt.resp, err: tt.err}
			q := model.PricingQuery{ZipCode: "91701", NumberOfDogs: 3, Frequency: "once_a_week", LastCleaned: "one_week"}

			quote, err := New(client, tr).Resolve(context.Background(), q)
			if client.got != q {
				t.Fatalf("expected query %+v, got %+v", q, client.got)
			}
			if tr.Running() != 0 {
				t.Fatalf("expected tracker to settle, got %d", tr.Running())
			}
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrPricingUnavailable) {
					t.Fatalf("expected pricing unavailable, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if quote.PriceNotConfigured != tt.resp.Pricing.PriceNotConfigured ||
				quote.RecurringPrice != tt.resp.Pricing.RecurringPrice {
				t.Fatalf("unexpected quote %+v", quote)
			}
		})
	}
}

func TestResolveKeepsBackendReason(t *testing.T) {
	t.Parallel()

	client := &stubClient{resp: model.PricingResponse{Success: false, Error: "No pricing for this zone"}}
	_, err := New(client, nil).Resolve(context.Background(), model.PricingQuery{})
	if !errors.Is(err, apperr.ErrPricingUnavailable) {
		t.Fatalf("expected pricing unavailable, got %v", err)
	}
	if got := apperr.Message(err); got != "No pricing for this zone" {
		t.Fatalf("expected backend reason to reach the user, got %q", got)
	}

	_, err = New(&stubClient{resp: model.PricingResponse{Success: false}}, nil).Resolve(context.Background(), model.PricingQuery{})
	if got := apperr.Message(err); got != apperr.Message(apperr.ErrPricingUnavailable) {
		t.Fatalf("expected generic message without a reason, got %q", got)
	}
}

func TestResolveCopiesMonthlyPrice(t *testing.T) {
	t.Parallel()

	monthly := 50.0
	client := &stubClient{resp: model.PricingResponse{Success: true, Pricing: &model.PricingQuote{MonthlyPrice: &monthly}}}

	quote, err := New(client, nil).Resolve(context.Background(), model.PricingQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	monthly = 99
	if *quote.MonthlyPrice != 50 {
		t.Fatalf("quote must not alias the response, got %v", *quote.MonthlyPrice)
	}
}

func TestQueryFor(t *testing.T) {
	t.Parallel()

	sel := model.ServiceSelection{FirstName: "Ana", NumberOfDogs: 2, Frequency: "bi_weekly", LastCleaned: "one_month"}
	got := QueryFor("91701", sel)
	want := model.PricingQuery{ZipCode: "91701", NumberOfDogs: 2, Frequency: "bi_weekly", LastCleaned: "one_month"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}
