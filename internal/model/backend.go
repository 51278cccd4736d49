package model

// CheckZipRequest is the body of POST /check-zip.
type CheckZipRequest struct {
	ZipCode string `json:"zipCode"`
}

// CheckZipResponse is returned by POST /check-zip.
type CheckZipResponse struct {
	InServiceArea bool   `json:"inServiceArea"`
	Message       string `json:"message,omitempty"`
}

// PricingQuery is sent as the query string of GET /get-pricing.
type PricingQuery struct {
	ZipCode      string
	NumberOfDogs int
	Frequency    string
	LastCleaned  string
}

// PricingResponse is returned by GET /get-pricing.
type PricingResponse struct {
	Success bool          `json:"success"`
	Pricing *PricingQuote `json:"pricing,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// FreeQuoteRequest is the quote-lead body of POST /submit-free-quote.
type FreeQuoteRequest struct {
	ZipCode      string `json:"zipCode"`
	FirstName    string `json:"firstName"`
	Phone        string `json:"phone"`
	NumberOfDogs int    `json:"numberOfDogs"`
	Frequency    string `json:"frequency"`
	LastCleaned  string `json:"lastCleaned"`
}

// FormField is one raw option entry. Value holds comma-separated tokens.
type FormField struct {
	Slug  string `json:"slug"`
	Value string `json:"value"`
}

// FormOptionsResponse is returned by GET /get-form-options.
type FormOptionsResponse struct {
	Success     bool `json:"success"`
	FormOptions struct {
		FormFields []FormField `json:"form_fields"`
	} `json:"formOptions"`
}

// RegistrationDog is one dog entry of the final submission.
type RegistrationDog struct {
	Name     string `json:"name"`
	Breed    string `json:"breed"`
	SafeDog  string `json:"safe_dog"` // "yes" | "no"
	Comments string `json:"comments"`
}

// RegistrationPricing is the quote metadata attached to the final submission.
type RegistrationPricing struct {
	RecurringPrice     float64  `json:"recurringPrice"`
	MonthlyPrice       *float64 `json:"monthlyPrice,omitempty"`
	InitialCleanupFee  float64  `json:"initialCleanupFee"`
	BillingInterval    string   `json:"billingInterval"`
	Category           string   `json:"category"`
	PriceNotConfigured bool     `json:"priceNotConfigured"`
}

// RegistrationRequest is the composed body of POST /submit-quote.
type RegistrationRequest struct {
	ZipCode                string              `json:"zipCode"`
	FirstName              string              `json:"firstName"`
	NumberOfDogs           int                 `json:"numberOfDogs"`
	Frequency              string              `json:"frequency"`
	LastCleaned            string              `json:"lastCleaned"`
	InitialCleanupRequired bool                `json:"initialCleanupRequired"`
	FullName               string              `json:"fullName"`
	Email                  string              `json:"email"`
	Phone                  string              `json:"phone"`
	Address                string              `json:"address"`
	City                   string              `json:"city"`
	GateLocation           string              `json:"gateLocation"`
	GateCode               string              `json:"gateCode"`
	Dogs                   []RegistrationDog   `json:"dogs"`
	NotificationTypes      []string            `json:"notificationTypes"`
	NotificationChannel    string              `json:"notificationChannel"`
	PaymentToken           string              `json:"paymentToken"`
	CardholderName         string              `json:"cardholderName"`
	Pricing                RegistrationPricing `json:"pricing"`
	TermsAccepted          bool                `json:"termsAccepted"`
}

// SubmitQuoteResponse is returned by POST /submit-quote.
type SubmitQuoteResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// TokenRequest is sent to the card tokenization service.
type TokenRequest struct {
	Handle         string `json:"handle"`
	CardholderName string `json:"cardholderName"`
}

// TokenResponse is returned by the card tokenization service.
type TokenResponse struct {
	Token string `json:"token,omitempty"`
	Error *struct {
		Code    string `json:"code,omitempty"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
