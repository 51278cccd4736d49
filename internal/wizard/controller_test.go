package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliamunaev/quote-wizard/internal/apperr"
	"github.com/iliamunaev/quote-wizard/internal/model"
	"github.com/iliamunaev/quote-wizard/internal/options"
	"github.com/iliamunaev/quote-wizard/internal/service/payment"
	"github.com/iliamunaev/quote-wizard/internal/service/pricing"
	"github.com/iliamunaev/quote-wizard/internal/service/registration"
	"github.com/iliamunaev/quote-wizard/internal/service/zipcheck"
)

// gate blocks a stub call until released. A nil gate never blocks.
type gate struct {
	started chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gate) wait(ctx context.Context) {
	if g == nil {
		return
	}
	g.started <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
	}
}

type zipClient struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (z *zipClient) CheckZip(_ context.Context, req model.CheckZipRequest) (model.CheckZipResponse, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.calls++
	if z.err != nil {
		return model.CheckZipResponse{}, z.err
	}
	return model.CheckZipResponse{InServiceArea: req.ZipCode != "00000"}, nil
}

type pricingClient struct {
	mu   sync.Mutex
	gate *gate
	resp model.PricingResponse
}

func (p *pricingClient) GetPricing(ctx context.Context, _ model.PricingQuery) (model.PricingResponse, error) {
	p.mu.Lock()
	g, resp := p.gate, p.resp
	p.mu.Unlock()

	g.wait(ctx)
	return resp, nil
}

type leadRecorder struct {
	mu   sync.Mutex
	sent []model.FreeQuoteRequest
}

func (l *leadRecorder) Notify(_ context.Context, req model.FreeQuoteRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = append(l.sent, req)
}

func (l *leadRecorder) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sent)
}

type tokenizer struct {
	mu     sync.Mutex
	calls  int
	tokens []string
}

func (tz *tokenizer) CreateToken(_ context.Context, _ model.TokenRequest) (string, error) {
	tz.mu.Lock()
	defer tz.mu.Unlock()
	tok := tz.tokens[tz.calls]
	tz.calls++
	return tok, nil
}

type registrationClient struct {
	mu    sync.Mutex
	gate  *gate
	resps []model.SubmitQuoteResponse
	got   []model.RegistrationRequest
}

func (r *registrationClient) SubmitQuote(ctx context.Context, req model.RegistrationRequest) (model.SubmitQuoteResponse, error) {
	r.mu.Lock()
	g := r.gate
	resp := r.resps[len(r.got)]
	r.got = append(r.got, req)
	r.mu.Unlock()

	g.wait(ctx)
	return resp, nil
}

func (r *registrationClient) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

type harness struct {
	zip     *zipClient
	pricing *pricingClient
	leads   *leadRecorder
	tok     *tokenizer
	reg     *registrationClient
	c       *Controller
}

func newHarness() *harness {
	h := &harness{
		zip: &zipClient{},
		pricing: &pricingClient{resp: model.PricingResponse{Success: true, Pricing: &model.PricingQuote{
			RecurringPrice: 20, InitialCleanupFee: 45, BillingInterval: "week", Category: "standard",
		}}},
		leads: &leadRecorder{},
		tok:   &tokenizer{tokens: []string{"tok_1", "tok_2"}},
		reg:   &registrationClient{resps: []model.SubmitQuoteResponse{{Success: true}}},
	}
	h.c = NewController(Deps{
		Zip:          zipcheck.New(h.zip, nil),
		Pricing:      pricing.New(h.pricing, nil),
		Leads:        h.leads,
		Payment:      payment.New(h.tok, nil),
		Registration: registration.New(h.reg, nil),
	}, options.Defaults())
	return h
}

func paymentForm(complete bool) model.PaymentForm {
	return model.PaymentForm{
		CardholderName: "Ana Lopez",
		Card:           model.CardField{Complete: complete, Handle: "el", Brand: "visa", Last4: "4242"},
		TermsAccepted:  true,
	}
}

func noErr(t *testing.T) func(model.View, error) model.View {
	t.Helper()

	return func(v model.View, err error) model.View {
		t.Helper()

		if err != nil {
			t.Fatalf("unexpected error on %s: %v", v.Step, err)
		}
		return v
	}
}

// drive walks h to the payment step with two dogs.
func (h *harness) drive(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	ok := noErr(t)
	ok(h.c.CheckZip(ctx, "91701"))
	ok(h.c.SubmitService(ctx, serviceForm("2")))
	ok(h.c.AcceptQuote())
	ok(h.c.SubmitContact(contactForm()))
	ok(h.c.NextDog(dogForm("Rex", true)))
	ok(h.c.NextDog(dogForm("Bella", false)))
	v := ok(h.c.SubmitNotifications(model.NotificationsForm{Types: []string{"completed"}, Channel: "email"}))
	if v.Step != string(StepPayment) {
		t.Fatalf("expected payment step, got %s", v.Step)
	}
}

func TestControllerZipScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		zip  string
		want Step
	}{
		{zip: "91701", want: StepService},
		{zip: "00000", want: StepOutOfArea},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.zip, func(t *testing.T) {
			t.Parallel()

			h := newHarness()
			v := noErr(t)(h.c.CheckZip(context.Background(), tt.zip))
			if v.Step != string(tt.want) {
				t.Fatalf("expected %s, got %s", tt.want, v.Step)
			}
			if tt.want == StepOutOfArea {
				if !v.Controls.Back || v.Controls.Continue {
					t.Fatalf("out-of-area must offer only the way back, got %+v", v.Controls)
				}
				v = noErr(t)(h.c.RetryZip())
				if v.Step != string(StepZip) {
					t.Fatalf("expected zip after retry, got %s", v.Step)
				}
			}
		})
	}
}

func TestControllerRejectsMalformedZipLocally(t *testing.T) {
	t.Parallel()

	h := newHarness()
	v, err := h.c.CheckZip(context.Background(), "9170a")
	if !errors.Is(err, apperr.ErrInvalidZip) {
		t.Fatalf("expected invalid zip, got %v", err)
	}
	if h.zip.calls != 0 {
		t.Fatalf("expected no area check, got %d", h.zip.calls)
	}
	if v.Step != string(StepZip) || v.FieldErrors["zipCode"] != "Please enter a valid 5-digit ZIP code" {
		t.Fatalf("unexpected view %+v", v)
	}
}

func TestControllerZipServiceFailure(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.zip.err = errors.New("boom")

	v, err := h.c.CheckZip(context.Background(), "91701")
	if !errors.Is(err, apperr.ErrZipCheckFailed) {
		t.Fatalf("expected zip check failure, got %v", err)
	}
	if v.Step != string(StepZip) || v.InServiceArea != nil || v.Error == "" {
		t.Fatalf("unexpected view %+v", v)
	}
}

func TestControllerPricingFailureStaysOnService(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.pricing.resp = model.PricingResponse{Success: false}
	noErr(t)(h.c.CheckZip(context.Background(), "91701"))

	v, err := h.c.SubmitService(context.Background(), serviceForm("2"))
	if !errors.Is(err, apperr.ErrPricingUnavailable) {
		t.Fatalf("expected pricing unavailable, got %v", err)
	}
	if v.Step != string(StepService) || v.Quote != nil {
		t.Fatalf("expected to stay on service without a quote, got %+v", v)
	}
	if v.Error != apperr.ErrPricingUnavailable.Error() {
		t.Fatalf("unexpected inline error %q", v.Error)
	}
	if h.leads.count() != 0 {
		t.Fatal("no lead may be sent without a quote")
	}
}

func TestControllerSendsLeadAfterQuote(t *testing.T) {
	t.Parallel()

	h := newHarness()
	noErr(t)(h.c.CheckZip(context.Background(), "91701"))
	v := noErr(t)(h.c.SubmitService(context.Background(), serviceForm("2")))

	if v.Step != string(StepQuote) || v.Quote == nil || v.Quote.RecurringPrice != 20 {
		t.Fatalf("unexpected view %+v", v)
	}
	if h.leads.count() != 1 {
		t.Fatalf("expected one lead, got %d", h.leads.count())
	}
	if got := h.leads.sent[0]; got.ZipCode != "91701" || got.NumberOfDogs != 2 || got.FirstName != "Ana" {
		t.Fatalf("unexpected lead %+v", got)
	}
}

func TestControllerIncompleteCardKeepsContinueDisabled(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.drive(t)

	v, err := h.c.SubmitPayment(context.Background(), paymentForm(false))
	if !errors.Is(err, apperr.ErrCardIncomplete) {
		t.Fatalf("expected card incomplete, got %v", err)
	}
	if h.tok.calls != 0 {
		t.Fatalf("expected no tokenizer call, got %d", h.tok.calls)
	}
	if v.Step != string(StepPayment) || v.Controls.Continue {
		t.Fatalf("continue must stay disabled, got %+v", v.Controls)
	}

	v = noErr(t)(h.c.UpdateCard(model.CardField{Complete: true, Handle: "el"}))
	if !v.Controls.Continue {
		t.Fatal("continue must enable once the card is complete")
	}
}

func TestControllerTermsAreRequired(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.drive(t)

	form := paymentForm(true)
	form.TermsAccepted = false
	v, err := h.c.SubmitPayment(context.Background(), form)
	if !errors.Is(err, apperr.ErrTermsNotAccepted) {
		t.Fatalf("expected terms error, got %v", err)
	}
	if v.Error != apperr.ErrTermsNotAccepted.Error() || h.tok.calls != 0 {
		t.Fatalf("unexpected view %+v", v)
	}
}

func TestControllerDeclinedSubmissionForcesNewToken(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.reg.resps = []model.SubmitQuoteResponse{{Success: false, Error: "card declined"}, {Success: true}}
	h.drive(t)
	ctx := context.Background()

	v := noErr(t)(h.c.SubmitPayment(ctx, paymentForm(true)))
	if v.Step != string(StepReview) || !v.Controls.Continue {
		t.Fatalf("unexpected view %+v", v)
	}

	v, err := h.c.Submit(ctx)
	if !errors.Is(err, apperr.ErrSubmissionFailed) {
		t.Fatalf("expected submission failure, got %v", err)
	}
	if v.Step != string(StepReview) || v.Error != "card declined" {
		t.Fatalf("expected review with the service message, got %+v", v)
	}
	if v.Payment == nil || !v.Payment.Stale || v.Controls.Continue {
		t.Fatalf("expected a stale token and disabled submit, got %+v", v)
	}

	if _, err := h.c.Submit(ctx); !errors.Is(err, apperr.ErrStalePaymentToken) {
		t.Fatalf("expected stale token, got %v", err)
	}
	if h.reg.calls() != 1 {
		t.Fatalf("stale token must not be sent, got %d calls", h.reg.calls())
	}

	noErr(t)(h.c.Back())
	noErr(t)(h.c.SubmitPayment(ctx, paymentForm(true)))
	v = noErr(t)(h.c.Submit(ctx))

	if v.Step != string(StepSuccess) || !h.c.Done() {
		t.Fatalf("expected success, got %s", v.Step)
	}
	if got := h.reg.got[1].PaymentToken; got != "tok_2" {
		t.Fatalf("expected a fresh token, got %q", got)
	}
	if h.tok.calls != 2 {
		t.Fatalf("expected two tokenizations, got %d", h.tok.calls)
	}
}

func TestControllerActionInFlight(t *testing.T) {
	t.Parallel()

	h := newHarness()
	g := newGate()
	h.pricing.gate = g
	noErr(t)(h.c.CheckZip(context.Background(), "91701"))

	type result struct {
		v   model.View
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := h.c.SubmitService(context.Background(), serviceForm("2"))
		done <- result{v, err}
	}()

	select {
	case <-g.started:
	case <-time.After(time.Second):
		t.Fatal("pricing call never started")
	}

	v, err := h.c.SubmitService(context.Background(), serviceForm("3"))
	if !errors.Is(err, apperr.ErrActionInFlight) {
		t.Fatalf("expected action in flight, got %v", err)
	}
	if v.Controls.Continue || len(v.Controls.InFlight) != 1 || v.Controls.InFlight[0] != string(ActionPricing) {
		t.Fatalf("unexpected controls %+v", v.Controls)
	}

	close(g.release)
	r := <-done
	if r.err != nil || r.v.Step != string(StepQuote) {
		t.Fatalf("expected quote, got %s %v", r.v.Step, r.err)
	}
	if r.v.Service.NumberOfDogs != 2 {
		t.Fatalf("the second submission must not have applied, got %d", r.v.Service.NumberOfDogs)
	}
}

func TestControllerDropsSupersededResult(t *testing.T) {
	t.Parallel()

	h := newHarness()
	g := newGate()
	h.pricing.gate = g
	noErr(t)(h.c.CheckZip(context.Background(), "91701"))

	done := make(chan error, 1)
	go func() {
		_, err := h.c.SubmitService(context.Background(), serviceForm("2"))
		done <- err
	}()
	<-g.started

	v := noErr(t)(h.c.Back())
	if v.Step != string(StepZip) {
		t.Fatalf("expected zip, got %s", v.Step)
	}

	close(g.release)
	if err := <-done; !errors.Is(err, apperr.ErrSuperseded) {
		t.Fatalf("expected superseded, got %v", err)
	}

	s := h.c.Session()
	if s.State.Step != StepZip || s.Quote != nil {
		t.Fatalf("stale quote applied: step %s quote %v", s.State.Step, s.Quote)
	}
	if h.leads.count() != 0 {
		t.Fatal("no lead may be sent for a dropped quote")
	}
}

func TestControllerBackBlockedDuringSubmit(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.drive(t)
	noErr(t)(h.c.SubmitPayment(context.Background(), paymentForm(true)))

	g := newGate()
	h.reg.mu.Lock()
	h.reg.gate = g
	h.reg.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := h.c.Submit(context.Background())
		done <- err
	}()
	<-g.started

	v, err := h.c.Back()
	if !errors.Is(err, apperr.ErrActionInFlight) {
		t.Fatalf("expected back to be refused, got %v", err)
	}
	if v.Controls.Back {
		t.Fatal("back control must be disabled during submission")
	}

	close(g.release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.c.Done() {
		t.Fatal("expected success")
	}
}
