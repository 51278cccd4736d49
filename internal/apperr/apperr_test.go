package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKind(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("pricing: %w", ErrPricingUnavailable)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "invalid_zip", err: ErrInvalidZip, want: "invalid_zip"},
		{name: "pricing_wrapped", err: wrapped, want: "pricing_unavailable"},
		{name: "with_message", err: WithMessage(ErrSubmissionFailed, "card declined"), want: "submission_failed"},
		{name: "fields", err: FieldErrors{"name": "required"}, want: "validation_failed"},
		{name: "deadline", err: context.DeadlineExceeded, want: "timeout"},
		{name: "canceled", err: context.Canceled, want: "canceled"},
		{name: "unknown", err: errors.New("unknown"), want: "internal"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Kind(tt.err); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "validation", err: FieldErrors{"email": "invalid"}, want: http.StatusUnprocessableEntity},
		{name: "zip_check", err: fmt.Errorf("zip: %w", ErrZipCheckFailed), want: http.StatusBadGateway},
		{name: "stale_token", err: ErrStalePaymentToken, want: http.StatusConflict},
		{name: "not_found", err: ErrSessionNotFound, want: http.StatusNotFound},
		{name: "deadline", err: context.DeadlineExceeded, want: http.StatusGatewayTimeout},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := HTTPStatus(tt.err); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	t.Parallel()

	if got := Message(WithMessage(ErrSubmissionFailed, "card declined")); got != "card declined" {
		t.Fatalf("expected service message, got %q", got)
	}
	if got := Message(fmt.Errorf("zip: %w", ErrInvalidZip)); got != "Please enter a valid 5-digit ZIP code" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := Message(errors.New("dial tcp: refused")); got != "Something went wrong. Please try again." {
		t.Fatalf("expected generic message, got %q", got)
	}
	if WithMessage(ErrTokenizationFailed, "") != ErrTokenizationFailed {
		t.Fatal("expected empty message to keep the original error")
	}
}

func TestFields(t *testing.T) {
	t.Parallel()

	fe := FieldErrors{"name": "Name is required"}
	got := Fields(fmt.Errorf("dog: %w", fe))
	if got["name"] != "Name is required" {
		t.Fatalf("expected wrapped field errors, got %v", got)
	}
	if Fields(ErrInvalidZip) != nil {
		t.Fatal("expected no field errors")
	}
}
