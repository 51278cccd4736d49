// Package wizard implements the quote and signup wizard.
//
// A Session holds what one wizard instance has collected and the step it
// is on. Transitions are pure functions over Session values. Controller
// owns one Session, runs the collaborator calls between transitions and
// allows one in-flight call per action.
package wizard

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/iliamunaev/quote-wizard/internal/apperr"
	"github.com/iliamunaev/quote-wizard/internal/model"
	"github.com/iliamunaev/quote-wizard/internal/options"
	"github.com/iliamunaev/quote-wizard/internal/service/lead"
	"github.com/iliamunaev/quote-wizard/internal/service/payment"
	"github.com/iliamunaev/quote-wizard/internal/service/pricing"
	"github.com/iliamunaev/quote-wizard/internal/service/zipcheck"
)

// Action names an operation that calls out to a collaborator.
type Action string

const (
	ActionZip     Action = "zip"
	ActionPricing Action = "pricing"
	ActionPayment Action = "payment"
	ActionSubmit  Action = "submit"
)

// ZipChecker checks service-area eligibility.
type ZipChecker interface {
	Check(ctx context.Context, zip string) (zipcheck.Result, error)
}

// PriceResolver fetches quotes.
type PriceResolver interface {
	Resolve(ctx context.Context, q model.PricingQuery) (model.PricingQuote, error)
}

// LeadNotifier sends quote leads without blocking.
type LeadNotifier interface {
	Notify(ctx context.Context, req model.FreeQuoteRequest)
}

// CardTokenizer runs the payment step.
type CardTokenizer interface {
	Tokenize(ctx context.Context, form model.PaymentForm) (payment.Token, error)
}

// Registrar submits the final registration.
type Registrar interface {
	Submit(ctx context.Context, req model.RegistrationRequest) error
}

// Deps are the collaborators of a Controller. Leads and Log may be nil.
type Deps struct {
	Zip          ZipChecker
	Pricing      PriceResolver
	Leads        LeadNotifier
	Payment      CardTokenizer
	Registration Registrar
	Log          *zap.Logger
}

// Controller drives one wizard session. It is safe for concurrent use;
// collaborator calls run outside the lock.
type Controller struct {
	deps Deps
	log  *zap.Logger

	mu       sync.Mutex
	s        Session
	inflight map[Action]bool
}

// NewController returns a Controller on the zip step using opts for
// every option-backed field.
func NewController(deps Deps, opts options.Set) *Controller {
	if deps.Zip == nil || deps.Pricing == nil || deps.Payment == nil || deps.Registration == nil {
		panic("wizard.NewController: missing collaborator")
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		deps:     deps,
		log:      log,
		s:        New(opts),
		inflight: make(map[Action]bool),
	}
}

// Session returns a copy of the current session.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.clone()
}

// View renders the current step.
func (c *Controller) View() model.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view()
}

// Done reports whether the wizard reached success.
func (c *Controller) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.State.Step == StepSuccess
}

// CheckZip checks zip and routes to the service or out-of-area step.
func (c *Controller) CheckZip(ctx context.Context, zip string) (model.View, error) {
	rev, err := c.begin(ActionZip, func(s Session) error {
		return require(s, "zip check", StepZip, StepOutOfArea)
	})
	if err != nil {
		return c.View(), err
	}

	res, cerr := c.deps.Zip.Check(ctx, zip)

	return c.finish(ActionZip, rev, func(s Session) (Session, error) {
		if cerr != nil {
			return ZipFailed(s, zip, cerr), cerr
		}
		return ApplyZip(s, res)
	})
}

// RetryZip returns from out-of-area to the zip step.
func (c *Controller) RetryZip() (model.View, error) {
	return c.apply(RetryZip)
}

// SubmitService validates the service details and fetches their price.
// On success the quote is shown and a quote lead is sent in the
// background.
func (c *Controller) SubmitService(ctx context.Context, form model.ServiceForm) (model.View, error) {
	var sel model.ServiceSelection
	var zip string
	rev, err := c.beginWith(ActionPricing, func(s Session) (Session, error) {
		next, picked, err := SubmitService(s, form)
		sel, zip = picked, next.ZipCode
		return next, err
	})
	if err != nil {
		return c.View(), err
	}

	quote, perr := c.deps.Pricing.Resolve(ctx, pricing.QueryFor(zip, sel))

	view, err := c.finish(ActionPricing, rev, func(s Session) (Session, error) {
		if perr != nil {
			return fail(s, perr), perr
		}
		return ApplyQuote(s, quote)
	})
	if err == nil && c.deps.Leads != nil {
		c.deps.Leads.Notify(ctx, lead.FromSelection(zip, sel))
	}
	return view, err
}

// AcceptQuote moves on to contact details.
func (c *Controller) AcceptQuote() (model.View, error) {
	return c.apply(AcceptQuote)
}

// SubmitContact validates the contact details and starts the per-dog
// sub-wizard.
func (c *Controller) SubmitContact(form model.ContactForm) (model.View, error) {
	return c.apply(func(s Session) (Session, error) { return SubmitContact(s, form) })
}

// NextDog validates and stores the current dog.
func (c *Controller) NextDog(form model.DogForm) (model.View, error) {
	return c.apply(func(s Session) (Session, error) { return NextDog(s, form) })
}

// PreviousDog stores the current dog as is and steps back.
func (c *Controller) PreviousDog(form model.DogForm) (model.View, error) {
	return c.apply(func(s Session) (Session, error) { return PreviousDog(s, form) })
}

// SubmitNotifications validates the notification preferences.
func (c *Controller) SubmitNotifications(form model.NotificationsForm) (model.View, error) {
	return c.apply(func(s Session) (Session, error) { return SubmitNotifications(s, form) })
}

// UpdateCard records the card widget state.
func (c *Controller) UpdateCard(card model.CardField) (model.View, error) {
	return c.apply(func(s Session) (Session, error) { return UpdateCard(s, card) })
}

// SubmitPayment tokenizes the card and moves to review.
func (c *Controller) SubmitPayment(ctx context.Context, form model.PaymentForm) (model.View, error) {
	rev, err := c.beginWith(ActionPayment, func(s Session) (Session, error) {
		return UpdateCard(s, form.Card)
	})
	if err != nil {
		return c.View(), err
	}

	tok, terr := c.deps.Payment.Tokenize(ctx, form)

	return c.finish(ActionPayment, rev, func(s Session) (Session, error) {
		if terr != nil {
			return fail(s, terr), terr
		}
		return ApplyToken(s, tok)
	})
}

// Submit sends the final registration. The payment token is spent before
// the call, whatever its outcome.
func (c *Controller) Submit(ctx context.Context) (model.View, error) {
	var req model.RegistrationRequest
	_, err := c.beginWith(ActionSubmit, func(s Session) (Session, error) {
		next, composed, err := PrepareSubmit(s)
		req = composed
		return next, err
	})
	if err != nil {
		return c.View(), err
	}

	err = c.deps.Registration.Submit(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, ActionSubmit)

	// Back is refused while the submission runs, so its outcome always
	// applies to the session that started it.
	if err != nil {
		c.s = SubmitFailed(c.s, err)
		c.log.Info("registration failed", zap.String("zip", req.ZipCode), zap.String("kind", apperr.Kind(err)))
		return c.view(), err
	}
	next, aerr := ApplySubmitted(c.s)
	if aerr != nil {
		return c.view(), aerr
	}
	c.s = next
	c.log.Info("registration submitted", zap.String("zip", req.ZipCode), zap.Int("dogs", len(req.Dogs)))
	return c.view(), nil
}

// Back moves to the previous step. It is refused while the final
// submission is in flight.
func (c *Controller) Back() (model.View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight[ActionSubmit] {
		return c.view(), apperr.ErrActionInFlight
	}
	next, err := Back(c.s)
	if err != nil {
		return c.view(), err
	}
	c.s = next
	return c.view(), nil
}

// apply runs a synchronous transition.
func (c *Controller) apply(fn func(Session) (Session, error)) (model.View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(c.s)
	c.s = next
	if err == nil {
		c.log.Debug("wizard step", zap.String("step", string(next.State.Step)), zap.Uint64("revision", next.Revision))
	}
	return c.view(), err
}

// begin marks action in flight after check passes and returns the
// revision the call starts from.
func (c *Controller) begin(action Action, check func(Session) error) (uint64, error) {
	return c.beginWith(action, func(s Session) (Session, error) {
		return s, check(s)
	})
}

// beginWith is begin with a transition applied before the call starts.
func (c *Controller) beginWith(action Action, prepare func(Session) (Session, error)) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight[action] {
		return 0, apperr.ErrActionInFlight
	}
	next, err := prepare(c.s)
	c.s = next
	if err != nil {
		return 0, err
	}
	c.inflight[action] = true
	return c.s.Revision, nil
}

// finish clears action and applies the call's outcome unless the session
// moved on while it ran.
func (c *Controller) finish(action Action, rev uint64, fn func(Session) (Session, error)) (model.View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.inflight, action)
	if c.s.Revision != rev {
		c.log.Debug("stale result dropped", zap.String("action", string(action)),
			zap.Uint64("started", rev), zap.Uint64("current", c.s.Revision))
		return c.view(), apperr.ErrSuperseded
	}

	next, err := fn(c.s)
	c.s = next
	return c.view(), err
}

func (c *Controller) view() model.View {
	var busy []string
	for a, on := range c.inflight {
		if on {
			busy = append(busy, string(a))
		}
	}
	sort.Strings(busy)
	return render(c.s, c.inflight, busy)
}
