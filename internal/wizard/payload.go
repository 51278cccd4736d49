package wizard

import (
	"github.com/iliamunaev/quote-wizard/internal/model"
)

// lastCleanedRecently is the only last-cleaned answer that needs no
// initial cleanup.
const lastCleanedRecently = "one_week"

// Compose builds the registration payload from a session on the review
// step.
func Compose(s Session) (model.RegistrationRequest, error) {
	if err := require(s, "compose", StepReview); err != nil {
		return model.RegistrationRequest{}, err
	}
	if err := s.Validate(); err != nil {
		return model.RegistrationRequest{}, err
	}

	sel, c, q := s.Service, s.Contact, s.Quote

	dogs := make([]model.RegistrationDog, len(s.Dogs))
	for i, d := range s.Dogs {
		safe := "no"
		if d.IsSafe != nil && *d.IsSafe {
			safe = "yes"
		}
		dogs[i] = model.RegistrationDog{
			Name:     d.Name,
			Breed:    d.Breed,
			SafeDog:  safe,
			Comments: d.Comments,
		}
	}

	pricing := model.RegistrationPricing{
		RecurringPrice:     q.RecurringPrice,
		InitialCleanupFee:  q.InitialCleanupFee,
		BillingInterval:    q.BillingInterval,
		Category:           q.Category,
		PriceNotConfigured: q.PriceNotConfigured,
	}
	if q.MonthlyPrice != nil {
		m := *q.MonthlyPrice
		pricing.MonthlyPrice = &m
	}

	return model.RegistrationRequest{
		ZipCode:                s.ZipCode,
		FirstName:              sel.FirstName,
		NumberOfDogs:           sel.NumberOfDogs,
		Frequency:              sel.Frequency,
		LastCleaned:            sel.LastCleaned,
		InitialCleanupRequired: sel.LastCleaned != lastCleanedRecently,
		FullName:               c.FullName,
		Email:                  c.Email,
		Phone:                  c.Phone,
		Address:                c.Address,
		City:                   c.City,
		GateLocation:           c.GateLocation,
		GateCode:               c.GateCode,
		Dogs:                   dogs,
		NotificationTypes:      append([]string(nil), s.Notifications.Types...),
		NotificationChannel:    s.Notifications.Channel,
		PaymentToken:           s.Payment.Token,
		CardholderName:         s.Payment.CardholderName,
		Pricing:                pricing,
		TermsAccepted:          true,
	}, nil
}
