package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iliamunaev/quote-wizard/internal/model"
)

// HTTPTokenizer calls the tokenization service's POST /tokens endpoint.
type HTTPTokenizer struct {
	Base    string
	Key     string
	Timeout time.Duration
	HTTP    *http.Client
}

// NewHTTP returns an HTTPTokenizer for base authenticated with key.
func NewHTTP(base, key string, timeout time.Duration) *HTTPTokenizer {
	return &HTTPTokenizer{
		Base:    strings.TrimRight(base, "/"),
		Key:     key,
		Timeout: timeout,
		HTTP:    http.DefaultClient,
	}
}

var _ Tokenizer = (*HTTPTokenizer)(nil)

// CreateToken exchanges a card widget handle for a token. A rejection
// reported in the response body is returned as *TokenizationError.
func (t *HTTPTokenizer) CreateToken(ctx context.Context, req model.TokenRequest) (string, error) {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	b, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Base+"/tokens", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	hreq.Header.Set("Content-Type", "application/json")
	if t.Key != "" {
		hreq.Header.Set("Authorization", "Bearer "+t.Key)
	}

	hc := t.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(hreq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out model.TokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("tokenizer: status %d: %w", resp.StatusCode, err)
	}
	if out.Error != nil {
		return "", &TokenizationError{Code: out.Error.Code, Message: out.Error.Message}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("tokenizer: unexpected status %d", resp.StatusCode)
	}
	return out.Token, nil
}
