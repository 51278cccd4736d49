// Package backend is the HTTP client for the collaborator endpoints the
// wizard consumes: zip check, pricing, quote-lead capture, form options
// and final registration.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iliamunaev/quote-wizard/internal/model"
)

// Call names, used as keys of the per-call timeout table.
const (
	CallCheckZip        = "check-zip"
	CallGetPricing      = "get-pricing"
	CallSubmitFreeQuote = "submit-free-quote"
	CallGetFormOptions  = "get-form-options"
	CallSubmitQuote     = "submit-quote"
)

const (
	defaultTimeout = 10 * time.Second
	maxBody        = 1 << 20
)

// StatusError is returned when a collaborator answers with a non-2xx status
// and no usable body.
type StatusError struct {
	Call   string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Call, e.Status)
}

// Client talks to the backend collaborators.
type Client struct {
	base     string
	http     *http.Client
	timeouts map[string]time.Duration
}

// New returns a Client rooted at base. A nil hc uses http.DefaultClient.
// timeouts overrides the per-call deadline by call name.
func New(base string, hc *http.Client, timeouts map[string]time.Duration) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		base:     strings.TrimRight(base, "/"),
		http:     hc,
		timeouts: timeouts,
	}
}

// CheckZip calls POST /check-zip.
func (c *Client) CheckZip(ctx context.Context, req model.CheckZipRequest) (model.CheckZipResponse, error) {
	var out model.CheckZipResponse
	err := c.do(ctx, CallCheckZip, http.MethodPost, "/check-zip", nil, req, &out, false)
	return out, err
}

// GetPricing calls GET /get-pricing. A {success:false} answer is returned
// as is, whatever its status code.
func (c *Client) GetPricing(ctx context.Context, q model.PricingQuery) (model.PricingResponse, error) {
	v := url.Values{}
	v.Set("zipCode", q.ZipCode)
	v.Set("numberOfDogs", strconv.Itoa(q.NumberOfDogs))
	v.Set("frequency", q.Frequency)
	v.Set("lastCleaned", q.LastCleaned)

	var out model.PricingResponse
	err := c.do(ctx, CallGetPricing, http.MethodGet, "/get-pricing", v, nil, &out, true)
	return out, err
}

// SubmitFreeQuote calls POST /submit-free-quote. The response body is ignored.
func (c *Client) SubmitFreeQuote(ctx context.Context, req model.FreeQuoteRequest) error {
	return c.do(ctx, CallSubmitFreeQuote, http.MethodPost, "/submit-free-quote", nil, req, nil, false)
}

// GetFormOptions calls GET /get-form-options and returns the raw fields.
func (c *Client) GetFormOptions(ctx context.Context) ([]model.FormField, error) {
	var out model.FormOptionsResponse
	if err := c.do(ctx, CallGetFormOptions, http.MethodGet, "/get-form-options", nil, nil, &out, false); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("%s: unsuccessful response", CallGetFormOptions)
	}
	return out.FormOptions.FormFields, nil
}

// SubmitQuote calls POST /submit-quote. A {success:false} answer is
// returned as is, whatever its status code.
func (c *Client) SubmitQuote(ctx context.Context, req model.RegistrationRequest) (model.SubmitQuoteResponse, error) {
	var out model.SubmitQuoteResponse
	err := c.do(ctx, CallSubmitQuote, http.MethodPost, "/submit-quote", nil, req, &out, true)
	return out, err
}

// do performs one call. With envelope set, a non-2xx response whose body
// decodes into out is treated as an answer rather than a transport error.
func (c *Client) do(ctx context.Context, call, method, path string, query url.Values, body, out any, envelope bool) error {
	ctx, cancel := context.WithTimeout(ctx, timeoutFor(c.timeouts, call, defaultTimeout))
	defer cancel()

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode: %w", call, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("%s: %w", call, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", call, err)
	}
	defer resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		if !ok {
			return &StatusError{Call: call, Status: resp.StatusCode}
		}
		return nil
	}

	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out)
	switch {
	case ok && decodeErr != nil:
		return fmt.Errorf("%s: decode: %w", call, decodeErr)
	case !ok && (!envelope || decodeErr != nil):
		return &StatusError{Call: call, Status: resp.StatusCode}
	}
	return nil
}

// timeoutFor returns the configured timeout for call when positive,
// otherwise def.
func timeoutFor(timeouts map[string]time.Duration, call string, def time.Duration) time.Duration {
	if d, ok := timeouts[call]; ok && d > 0 {
		return d
	}
	return def
}
