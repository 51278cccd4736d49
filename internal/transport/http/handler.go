// Package httptransport exposes the signup wizard over JSON HTTP.
package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/iliamunaev/quote-wizard/internal/apperr"
	"github.com/iliamunaev/quote-wizard/internal/model"
	"github.com/iliamunaev/quote-wizard/internal/wizard"
)

const maxBody = 64 << 10

// Wizards owns the live wizard sessions.
type Wizards interface {
	// Mount starts a session and returns its ID and first view.
	Mount(ctx context.Context) (string, model.View)
	Lookup(id string) (*wizard.Controller, error)
	// Finish drops a session that reached success.
	Finish(id string)
	// Abandon drops a session at the user's request.
	Abandon(id string) bool
}

// Handler serves the wizard routes.
type Handler struct {
	wizards        Wizards
	requestTimeout time.Duration
	log            *zap.Logger
}

// New returns a Handler over wizards.
//
// It panics if wizards is nil. If requestTimeout is non-positive, a
// default timeout is applied.
func New(wizards Wizards, requestTimeout time.Duration, log *zap.Logger) *Handler {
	if wizards == nil {
		panic("httptransport.New: nil wizards")
	}
	if requestTimeout <= 0 {
		requestTimeout = 25 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		wizards:        wizards,
		requestTimeout: requestTimeout,
		log:            log,
	}
}

// Routes returns the route table.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("POST /wizard", h.handleMount)
	mux.HandleFunc("GET /wizard/{id}", h.action(func(_ context.Context, c *wizard.Controller, _ *http.Request) (model.View, error) {
		return c.View(), nil
	}))
	mux.HandleFunc("DELETE /wizard/{id}", h.handleAbandon)

	mux.HandleFunc("POST /wizard/{id}/zip", h.action(withBody(func(ctx context.Context, c *wizard.Controller, f model.ZipForm) (model.View, error) {
		return c.CheckZip(ctx, f.ZipCode)
	})))
	mux.HandleFunc("POST /wizard/{id}/retry-zip", h.action(func(_ context.Context, c *wizard.Controller, _ *http.Request) (model.View, error) {
		return c.RetryZip()
	}))
	mux.HandleFunc("POST /wizard/{id}/service", h.action(withBody(func(ctx context.Context, c *wizard.Controller, f model.ServiceForm) (model.View, error) {
		return c.SubmitService(ctx, f)
	})))
	mux.HandleFunc("POST /wizard/{id}/quote", h.action(func(_ context.Context, c *wizard.Controller, _ *http.Request) (model.View, error) {
		return c.AcceptQuote()
	}))
	mux.HandleFunc("POST /wizard/{id}/contact", h.action(withBody(func(_ context.Context, c *wizard.Controller, f model.ContactForm) (model.View, error) {
		return c.SubmitContact(f)
	})))
	mux.HandleFunc("POST /wizard/{id}/dogs/next", h.action(withBody(func(_ context.Context, c *wizard.Controller, f model.DogForm) (model.View, error) {
		return c.NextDog(f)
	})))
	mux.HandleFunc("POST /wizard/{id}/dogs/previous", h.action(withBody(func(_ context.Context, c *wizard.Controller, f model.DogForm) (model.View, error) {
		return c.PreviousDog(f)
	})))
	mux.HandleFunc("POST /wizard/{id}/notifications", h.action(withBody(func(_ context.Context, c *wizard.Controller, f model.NotificationsForm) (model.View, error) {
		return c.SubmitNotifications(f)
	})))
	mux.HandleFunc("POST /wizard/{id}/payment/card", h.action(withBody(func(_ context.Context, c *wizard.Controller, f model.CardField) (model.View, error) {
		return c.UpdateCard(f)
	})))
	mux.HandleFunc("POST /wizard/{id}/payment", h.action(withBody(func(ctx context.Context, c *wizard.Controller, f model.PaymentForm) (model.View, error) {
		return c.SubmitPayment(ctx, f)
	})))
	mux.HandleFunc("POST /wizard/{id}/submit", h.action(func(ctx context.Context, c *wizard.Controller, _ *http.Request) (model.View, error) {
		return c.Submit(ctx)
	}))
	mux.HandleFunc("POST /wizard/{id}/back", h.action(func(_ context.Context, c *wizard.Controller, _ *http.Request) (model.View, error) {
		return c.Back()
	}))

	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.WizardResponse{Status: "ok"})
}

// handleMount starts a session. Option loading never fails the mount.
func (h *Handler) handleMount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	id, view := h.wizards.Mount(ctx)
	writeJSON(w, http.StatusCreated, model.WizardResponse{
		Status:    "ok",
		SessionID: id,
		View:      &view,
	})
}

func (h *Handler) handleAbandon(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.wizards.Abandon(id) {
		h.writeError(w, id, nil, apperr.ErrSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type actionFunc func(ctx context.Context, c *wizard.Controller, r *http.Request) (model.View, error)

// action resolves the session of the request, runs fn under the request
// timeout and writes the resulting view. A session that reached success
// is dropped after its final view is rendered.
func (h *Handler) action(fn actionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		c, err := h.wizards.Lookup(id)
		if err != nil {
			h.writeError(w, id, nil, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
		defer cancel()

		view, err := fn(ctx, c, r)
		if err != nil {
			h.writeError(w, id, &view, err)
			return
		}
		if c.Done() {
			h.wizards.Finish(id)
			h.log.Info("wizard finished", zap.String("session_id", id))
		}
		writeJSON(w, http.StatusOK, model.WizardResponse{
			Status:    "ok",
			SessionID: id,
			View:      &view,
		})
	}
}

// withBody decodes the request body into T before calling fn.
func withBody[T any](fn func(context.Context, *wizard.Controller, T) (model.View, error)) actionFunc {
	return func(ctx context.Context, c *wizard.Controller, r *http.Request) (model.View, error) {
		var form T
		if err := decode(r, &form); err != nil {
			return c.View(), err
		}
		return fn(ctx, c, form)
	}
}

// decode reads exactly one JSON value with no unknown fields.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &badRequest{msg: "invalid JSON"}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &badRequest{msg: "invalid JSON"}
	}
	return nil
}

func (h *Handler) writeError(w http.ResponseWriter, id string, view *model.View, err error) {
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Warn("wizard action failed", zap.String("session_id", id), zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, model.WizardResponse{
		Status:    "error",
		SessionID: id,
		View:      view,
		Error:     errorPayload(err),
	})
}

// writeJSON writes v as a JSON response with the given status code.
// The Content-Type is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
