// Package payment bridges the wizard to the third-party card tokenizer.
//
// The embedded card widget reports its state as a model.CardField; the
// bridge checks the step's preconditions and exchanges the widget handle
// for a single-use token. Raw card data never passes through here.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliamunaev/quote-wizard/internal/apperr"
	"github.com/iliamunaev/quote-wizard/internal/model"
	"github.com/iliamunaev/quote-wizard/internal/schema"
	"github.com/iliamunaev/quote-wizard/internal/service/tracker"
)

// TokenizationError is a rejection returned by the tokenizer. Its message
// is shown to the user as is.
type TokenizationError struct {
	Code    string
	Message string
}

func (e *TokenizationError) Error() string { return e.Message }

// Kind classifies the rejection as a tokenization failure.
func (e *TokenizationError) Kind() string { return apperr.Kind(apperr.ErrTokenizationFailed) }

// Tokenizer creates single-use card tokens.
type Tokenizer interface {
	CreateToken(ctx context.Context, req model.TokenRequest) (string, error)
}

// Token is a freshly created card token.
type Token struct {
	Value          string
	CardholderName string
	Brand          string
	Last4          string
}

// Bridge runs the payment step.
type Bridge struct {
	tokenizer Tokenizer
	tr        *tracker.Tracker
}

// New returns a Bridge. It panics if tokenizer is nil.
func New(tokenizer Tokenizer, tr *tracker.Tracker) *Bridge {
	if tokenizer == nil {
		panic("payment.New: nil tokenizer")
	}
	return &Bridge{tokenizer: tokenizer, tr: tr}
}

// CanContinue reports whether the payment step's continue action is
// enabled. It is disabled whenever the card widget is incomplete,
// whatever the other fields hold.
func CanContinue(card model.CardField, inFlight bool) bool {
	return card.Complete && !inFlight
}

// Tokenize checks the payment form and creates a token for it.
//
// Failures are reported separately: a missing cardholder name as a field
// error, an incomplete card as apperr.ErrCardIncomplete (no network call),
// unaccepted terms as apperr.ErrTermsNotAccepted, and a tokenizer
// rejection carrying the tokenizer's own message.
func (b *Bridge) Tokenize(ctx context.Context, form model.PaymentForm) (Token, error) {
	if err := schema.Payment(form); err != nil {
		return Token{}, err
	}
	if !form.Card.Complete {
		return Token{}, apperr.ErrCardIncomplete
	}
	if !form.TermsAccepted {
		return Token{}, apperr.ErrTermsNotAccepted
	}

	name := strings.TrimSpace(form.CardholderName)

	defer b.tr.Track()()

	tok, err := b.tokenizer.CreateToken(ctx, model.TokenRequest{Handle: form.Card.Handle, CardholderName: name})
	if err != nil {
		var te *TokenizationError
		if errors.As(err, &te) && te.Message != "" {
			return Token{}, apperr.WithMessage(fmt.Errorf("tokenize: %w: %w", apperr.ErrTokenizationFailed, err), te.Message)
		}
		return Token{}, fmt.Errorf("tokenize: %w: %w", apperr.ErrTokenizationFailed, err)
	}
	if tok == "" {
		return Token{}, fmt.Errorf("tokenize: %w: empty token", apperr.ErrTokenizationFailed)
	}

	return Token{
		Value:          tok,
		CardholderName: name,
		Brand:          form.Card.Brand,
		Last4:          form.Card.Last4,
	}, nil
}
