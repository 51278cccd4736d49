package wizard

import (
	"github.com/iliamunaev/quote-wizard/internal/model"
	"github.com/iliamunaev/quote-wizard/internal/service/payment"
)

// render builds the view of s. busy lists the in-flight actions in order.
func render(s Session, inflight map[Action]bool, busy []string) model.View {
	v := model.View{
		Step:          string(s.State.Step),
		ZipCode:       s.ZipCode,
		AreaMessage:   s.AreaMessage,
		Service:       s.Service,
		Quote:         s.Quote,
		Contact:       s.Contact,
		DogRecords:    cloneDogs(s.Dogs),
		Notifications: s.Notifications,
		Options:       s.Options.Export(),
		Error:         s.Error,
		FieldErrors:   s.FieldErrors,
		Controls: model.Controls{
			Back:     canGoBack(s.State.Step) && !inflight[ActionSubmit],
			Continue: canContinue(s, inflight),
			InFlight: busy,
		},
	}
	if s.InServiceArea != nil {
		in := *s.InServiceArea
		v.InServiceArea = &in
	}
	if d := s.State.Dogs; d != nil {
		v.Dogs = &model.DogProgress{
			Index:   d.Index,
			Total:   len(d.Records),
			Current: d.Current(),
		}
	}
	if p := s.Payment; p != nil {
		v.Payment = &model.PaymentSummary{
			CardholderName: p.CardholderName,
			Brand:          p.Brand,
			Last4:          p.Last4,
			Stale:          p.Spent,
		}
	}
	return v
}

func canGoBack(step Step) bool {
	return step != StepZip && step != StepSuccess
}

// canContinue reports whether the step's forward control is enabled.
func canContinue(s Session, inflight map[Action]bool) bool {
	switch s.State.Step {
	case StepZip:
		return !inflight[ActionZip]
	case StepService:
		return !inflight[ActionPricing]
	case StepPayment:
		return payment.CanContinue(s.Card, inflight[ActionPayment])
	case StepReview:
		return s.Payment != nil && !s.Payment.Spent && !inflight[ActionSubmit]
	case StepOutOfArea, StepSuccess:
		return false
	default:
		return true
	}
}
