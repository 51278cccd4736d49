package wizard

import (
	"github.com/iliamunaev/quote-wizard/internal/apperr"
	"github.com/iliamunaev/quote-wizard/internal/model"
	"github.com/iliamunaev/quote-wizard/internal/options"
	"github.com/iliamunaev/quote-wizard/internal/schema"
	"github.com/iliamunaev/quote-wizard/internal/service/payment"
	"github.com/iliamunaev/quote-wizard/internal/service/zipcheck"
)

// New returns a fresh session on the zip step.
func New(opts options.Set) Session {
	if opts == nil {
		opts = options.Defaults()
	}
	return Session{State: At(StepZip), Options: opts}
}

// require fails unless s is on one of steps.
func require(s Session, action string, steps ...Step) error {
	for _, st := range steps {
		if s.State.Step == st {
			return nil
		}
	}
	return invalid("%s on step %s", action, s.State.Step)
}

// advance clears the inline errors and bumps the revision.
func advance(s Session) Session {
	s.Error = ""
	s.FieldErrors = nil
	s.Revision++
	return s
}

// fail records err on s the way the step renders it: field errors next to
// their inputs, anything else as one inline message.
func fail(s Session, err error) Session {
	s = s.clone()
	s.Error = ""
	s.FieldErrors = nil
	if fe := apperr.Fields(err); len(fe) > 0 {
		s.FieldErrors = make(map[string]string, len(fe))
		for k, v := range fe {
			s.FieldErrors[k] = v
		}
		return s
	}
	s.Error = apperr.Message(err)
	return s
}

// ApplyZip records a completed area check and routes to the service step
// or to out-of-area.
func ApplyZip(s Session, res zipcheck.Result) (Session, error) {
	if err := require(s, "zip check", StepZip, StepOutOfArea); err != nil {
		return s, err
	}
	s = advance(s.clone())

	if s.ZipCode != res.ZipCode {
		// Prices depend on the zip.
		s.Quote = nil
	}
	in := res.InServiceArea
	s.ZipCode = res.ZipCode
	s.InServiceArea = &in
	s.AreaMessage = res.Message

	if in {
		s.State = At(StepService)
	} else {
		s.State = At(StepOutOfArea)
	}
	return s, nil
}

// ZipFailed records a failed check. The area stays unknown and the wizard
// stays on the zip step.
func ZipFailed(s Session, zip string, err error) Session {
	s = fail(s, err)
	s.ZipCode = zip
	s.InServiceArea = nil
	s.AreaMessage = ""
	s.State = At(StepZip)
	return s
}

// RetryZip leaves out-of-area for another zip.
func RetryZip(s Session) (Session, error) {
	if err := require(s, "retry zip", StepOutOfArea); err != nil {
		return s, err
	}
	s = advance(s.clone())
	s.State = At(StepZip)
	return s, nil
}

// SubmitService validates the service-details form and records the
// selection. Any resubmission drops the current quote; the caller fetches
// a new one and applies it with ApplyQuote.
func SubmitService(s Session, form model.ServiceForm) (Session, model.ServiceSelection, error) {
	if err := require(s, "submit service", StepService); err != nil {
		return s, model.ServiceSelection{}, err
	}
	sel, err := schema.Service(form, s.Options)
	if err != nil {
		return fail(s, err), model.ServiceSelection{}, err
	}

	s = advance(s.clone())
	s.Service = &sel
	s.Quote = nil
	return s, sel, nil
}

// ApplyQuote stores a fetched quote and shows it.
func ApplyQuote(s Session, q model.PricingQuote) (Session, error) {
	if err := require(s, "apply quote", StepService); err != nil {
		return s, err
	}
	if s.Service == nil {
		return s, invalid("quote without a service selection")
	}
	s = advance(s.clone())
	s.Quote = &q
	s.State = At(StepQuote)
	return s, nil
}

// AcceptQuote moves from the quote to the contact step.
func AcceptQuote(s Session) (Session, error) {
	if err := require(s, "accept quote", StepQuote); err != nil {
		return s, err
	}
	s = advance(s.clone())
	s.State = At(StepContact)
	return s, nil
}

// SubmitContact validates the contact form and enters the per-dog
// sub-wizard at index 0. Records kept from an earlier pass are reused
// when they still match the number of dogs; otherwise every dog starts
// empty.
func SubmitContact(s Session, form model.ContactForm) (Session, error) {
	if err := require(s, "submit contact", StepContact); err != nil {
		return s, err
	}
	info, err := schema.Contact(form, s.Options)
	if err != nil {
		return fail(s, err), err
	}

	s = advance(s.clone())
	s.Contact = &info

	n := s.Service.NumberOfDogs
	records := cloneDogs(s.Dogs)
	if len(records) != n {
		records = make([]model.DogRecord, n)
	}
	s.State = InDogs(0, records)
	return s, nil
}

// SubmitNotifications validates the notification preferences and moves
// to payment.
func SubmitNotifications(s Session, form model.NotificationsForm) (Session, error) {
	if err := require(s, "submit notifications", StepNotifications); err != nil {
		return s, err
	}
	prefs, err := schema.Notifications(form, s.Options)
	if err != nil {
		return fail(s, err), err
	}

	s = advance(s.clone())
	s.Notifications = &prefs
	s.State = At(StepPayment)
	return s, nil
}

// UpdateCard records the latest state reported by the card widget.
func UpdateCard(s Session, card model.CardField) (Session, error) {
	if err := require(s, "update card", StepPayment); err != nil {
		return s, err
	}
	s = s.clone()
	s.Card = card
	s.Revision++
	return s, nil
}

// ApplyToken stores a fresh payment token and moves to review. Any
// earlier token is replaced.
func ApplyToken(s Session, tok payment.Token) (Session, error) {
	if err := require(s, "apply token", StepPayment); err != nil {
		return s, err
	}
	s = advance(s.clone())
	s.Attempts++
	s.Payment = &PaymentToken{
		Token:          tok.Value,
		CardholderName: tok.CardholderName,
		Brand:          tok.Brand,
		Last4:          tok.Last4,
		Attempt:        s.Attempts,
	}
	s.State = At(StepReview)
	return s, nil
}

// PrepareSubmit marks the payment token spent and composes the final
// registration. A token that is already spent is refused with
// apperr.ErrStalePaymentToken; the user must tokenize again.
func PrepareSubmit(s Session) (Session, model.RegistrationRequest, error) {
	if err := require(s, "submit", StepReview); err != nil {
		return s, model.RegistrationRequest{}, err
	}
	if s.Payment == nil || s.Payment.Spent {
		return fail(s, apperr.ErrStalePaymentToken), model.RegistrationRequest{}, apperr.ErrStalePaymentToken
	}

	req, err := Compose(s)
	if err != nil {
		return s, model.RegistrationRequest{}, err
	}

	s = advance(s.clone())
	spent := *s.Payment
	spent.Spent = true
	s.Payment = &spent
	return s, req, nil
}

// ApplySubmitted finishes the wizard.
func ApplySubmitted(s Session) (Session, error) {
	if err := require(s, "finish", StepReview); err != nil {
		return s, err
	}
	s = advance(s.clone())
	s.State = At(StepSuccess)
	return s, nil
}

// SubmitFailed records a failed final submission. The wizard stays on
// review with the spent token, so retrying goes back through payment.
func SubmitFailed(s Session, err error) Session {
	return fail(s, err)
}

// Back moves to the logical predecessor of the current step without
// validating anything. Data collected on earlier steps is kept.
func Back(s Session) (Session, error) {
	from := s.State.Step
	switch from {
	case StepZip, StepSuccess:
		return s, invalid("back from %s", from)
	}

	s = advance(s.clone())
	switch from {
	case StepOutOfArea, StepService:
		s.State = At(StepZip)
	case StepQuote:
		s.State = At(StepService)
	case StepContact:
		s.State = At(StepQuote)
	case StepDogs:
		d := s.State.Dogs
		if d.Index > 0 {
			d.Index--
			return s, nil
		}
		s.Dogs = d.Records
		s.State = At(StepContact)
	case StepNotifications:
		s.State = InDogs(len(s.Dogs)-1, cloneDogs(s.Dogs))
	case StepPayment:
		s.State = At(StepNotifications)
	case StepReview:
		s.State = At(StepPayment)
	}
	return s, nil
}
