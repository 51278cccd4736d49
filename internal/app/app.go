// Package app wires the wizard's collaborators, sessions and transport.
package app

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/iliamunaev/quote-wizard/internal/backend"
	"github.com/iliamunaev/quote-wizard/internal/config"
	"github.com/iliamunaev/quote-wizard/internal/middleware"
	"github.com/iliamunaev/quote-wizard/internal/model"
	"github.com/iliamunaev/quote-wizard/internal/options"
	"github.com/iliamunaev/quote-wizard/internal/service/lead"
	"github.com/iliamunaev/quote-wizard/internal/service/payment"
	"github.com/iliamunaev/quote-wizard/internal/service/pricing"
	"github.com/iliamunaev/quote-wizard/internal/service/registration"
	"github.com/iliamunaev/quote-wizard/internal/service/tracker"
	"github.com/iliamunaev/quote-wizard/internal/service/zipcheck"
	"github.com/iliamunaev/quote-wizard/internal/session"
	httptransport "github.com/iliamunaev/quote-wizard/internal/transport/http"
	"github.com/iliamunaev/quote-wizard/internal/wizard"
)

// App holds the long-lived parts of the service.
type App struct {
	cfg      *config.Config
	log      *zap.Logger
	tr       *tracker.Tracker
	options  *options.Source
	leads    *lead.Notifier
	sessions *session.Store
	deps     wizard.Deps
}

// New builds the App described by cfg. A nil log is replaced by a no-op
// logger.
func New(cfg *config.Config, log *zap.Logger) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}

	tr := &tracker.Tracker{}
	be := backend.New(cfg.Backend.BaseURL, &http.Client{}, cfg.Backend.Timeouts)
	tz := payment.NewHTTP(cfg.Tokenizer.BaseURL, cfg.Tokenizer.APIKey, cfg.Tokenizer.Timeout)
	leads := lead.New(be, cfg.Leads.Slots, cfg.Leads.Timeout, tr, log.Named("lead"))

	return &App{
		cfg:      cfg,
		log:      log,
		tr:       tr,
		options:  options.NewSource(be, options.Timing{
			TTL:   cfg.Options.CacheTTL,
			Retry: cfg.Options.RetryAfter,
			Fetch: cfg.Options.FetchTimeout,
			Wait:  cfg.Options.MountWait,
		}, log.Named("options")),
		leads:    leads,
		sessions: session.New(cfg.Session.TTL, log.Named("session")),
		deps: wizard.Deps{
			Zip:          zipcheck.New(be, tr),
			Pricing:      pricing.New(be, tr),
			Leads:        leads,
			Payment:      payment.New(tz, tr),
			Registration: registration.New(be, tr),
			Log:          log,
		},
	}
}

// Mount starts a wizard session with the current option set.
func (a *App) Mount(ctx context.Context) (string, model.View) {
	c := wizard.NewController(a.deps, a.options.Load(ctx))
	id := a.sessions.Put(c)
	a.log.Debug("wizard mounted", zap.String("session_id", id), zap.Int("live", a.sessions.Len()))
	return id, c.View()
}

// Lookup returns the controller of session id.
func (a *App) Lookup(id string) (*wizard.Controller, error) {
	return a.sessions.Get(id)
}

// Finish drops a completed session.
func (a *App) Finish(id string) {
	a.sessions.Delete(id)
}

// Abandon drops a session the user walked away from.
func (a *App) Abandon(id string) bool {
	return a.sessions.Delete(id)
}

// Options returns the resolved option set.
func (a *App) Options(ctx context.Context) options.Set {
	return a.options.Load(ctx)
}

// Running returns the number of collaborator calls in progress.
func (a *App) Running() int64 {
	return a.tr.Running()
}

// Handler returns the HTTP handler with request logging.
func (a *App) Handler() http.Handler {
	h := httptransport.New(a, a.cfg.Server.RequestTimeout, a.log.Named("http"))
	return middleware.Logging(a.log.Named("access"))(h.Routes())
}

// Sweep removes abandoned sessions every sweep interval until ctx ends.
func (a *App) Sweep(ctx context.Context) error {
	return a.sessions.Run(ctx, a.cfg.Session.SweepInterval)
}

// Shutdown waits for in-flight quote leads until ctx ends.
func (a *App) Shutdown(ctx context.Context) error {
	return a.leads.Wait(ctx)
}
