// Package apperr classifies wizard errors.
//
// Every domain error carries a kind used by the transport to pick a
// status code and by the wizard view to decide where the message renders.
package apperr

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
)

// Error is a classified domain error. Its text is safe to show to the user.
type Error struct {
	kind string
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Kind returns the classification of the error.
func (e *Error) Kind() string { return e.kind }

func newError(kind, msg string) *Error { return &Error{kind: kind, msg: msg} }

var (
	ErrInvalidZip         = newError("invalid_zip", "Please enter a valid 5-digit ZIP code")
	ErrZipCheckFailed     = newError("zip_check_failed", "We couldn't check your ZIP code. Please try again.")
	ErrPricingUnavailable = newError("pricing_unavailable", "We couldn't load pricing right now. Please try again.")
	ErrCardIncomplete     = newError("card_incomplete", "Please complete your card details")
	ErrTermsNotAccepted   = newError("terms_not_accepted", "You must accept the terms of service to continue")
	ErrTokenizationFailed = newError("tokenization_failed", "We couldn't verify your card. Please try again.")
	ErrSubmissionFailed   = newError("submission_failed", "We couldn't complete your signup. Please try again.")
	ErrStalePaymentToken  = newError("stale_payment_token", "Please re-enter your payment details before submitting again")
	ErrInvalidTransition  = newError("invalid_transition", "That action isn't available on this step")
	ErrActionInFlight     = newError("action_in_flight", "Please wait, we're still working on your last request")
	ErrSuperseded         = newError("superseded", "Your request was replaced by a newer one")
	ErrSessionNotFound    = newError("session_not_found", "Your session has expired. Please start again.")
)

const kindValidation = "validation_failed"

// FieldErrors maps a field name to the message shown next to its input.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Kind reports validation_failed.
func (fe FieldErrors) Kind() string { return kindValidation }

// detailed attaches a user-facing message to a classified error.
type detailed struct {
	msg string
	err error
}

func (d *detailed) Error() string { return d.msg }
func (d *detailed) Unwrap() error { return d.err }

// WithMessage keeps err's classification but replaces the text shown to
// the user. An empty msg returns err unchanged.
func WithMessage(err error, msg string) error {
	if err == nil || msg == "" {
		return err
	}
	return &detailed{msg: msg, err: err}
}

type kinder interface {
	Kind() string
}

// Kind returns the classification of err.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var k kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}

// Message returns the text shown to the user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var d *detailed
	if errors.As(err, &d) {
		return d.msg
	}
	var e *Error
	if errors.As(err, &e) {
		return e.msg
	}
	var fe FieldErrors
	if errors.As(err, &fe) {
		return "Please fix the highlighted fields"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The request took too long. Please try again."
	}
	return "Something went wrong. Please try again."
}

// Fields returns the field errors carried by err, if any.
func Fields(err error) FieldErrors {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

var kindToStatus = map[string]int{
	kindValidation:        http.StatusUnprocessableEntity,
	"invalid_zip":         http.StatusUnprocessableEntity,
	"card_incomplete":     http.StatusUnprocessableEntity,
	"terms_not_accepted":  http.StatusUnprocessableEntity,
	"zip_check_failed":    http.StatusBadGateway,
	"pricing_unavailable": http.StatusBadGateway,
	"tokenization_failed": http.StatusBadGateway,
	"submission_failed":   http.StatusBadGateway,
	"stale_payment_token": http.StatusConflict,
	"invalid_transition":  http.StatusConflict,
	"action_in_flight":    http.StatusConflict,
	"superseded":          http.StatusConflict,
	"session_not_found":   http.StatusNotFound,
	"timeout":             http.StatusGatewayTimeout,
	"canceled":            http.StatusRequestTimeout,
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if s, ok := kindToStatus[Kind(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}
