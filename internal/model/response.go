package model

// WizardResponse is the output payload of every wizard endpoint.
type WizardResponse struct {
	Status    string        `json:"status"` // "ok" | "error"
	SessionID string        `json:"session_id,omitempty"`
	View      *View         `json:"view,omitempty"`
	Error     *ErrorPayload `json:"error,omitempty"`
}

// ErrorPayload describes an error response.
type ErrorPayload struct {
	Kind    string            `json:"kind"`              // "validation_failed", "pricing_unavailable"
	Message string            `json:"message,omitempty"` // inline, user-facing
	Fields  map[string]string `json:"fields,omitempty"`
}

// View is what the wizard renders for its current step.
type View struct {
	Step          string              `json:"step"`
	Dogs          *DogProgress        `json:"dogs,omitempty"`
	ZipCode       string              `json:"zipCode,omitempty"`
	InServiceArea *bool               `json:"inServiceArea,omitempty"`
	AreaMessage   string              `json:"areaMessage,omitempty"`
	Service       *ServiceSelection   `json:"service,omitempty"`
	Quote         *PricingQuote       `json:"quote,omitempty"`
	Contact       *ContactInfo        `json:"contact,omitempty"`
	DogRecords    []DogRecord         `json:"dogRecords,omitempty"`
	Notifications *NotificationPrefs  `json:"notifications,omitempty"`
	Payment       *PaymentSummary     `json:"payment,omitempty"`
	Options       map[string][]Option `json:"options,omitempty"`
	Error         string              `json:"error,omitempty"`
	FieldErrors   map[string]string   `json:"fieldErrors,omitempty"`
	Controls      Controls            `json:"controls"`
}

// DogProgress is the per-dog sub-wizard position.
type DogProgress struct {
	Index   int       `json:"index"`
	Total   int       `json:"total"`
	Current DogRecord `json:"current"`
}

// PaymentSummary is the displayable part of the payment token.
type PaymentSummary struct {
	CardholderName string `json:"cardholderName"`
	Brand          string `json:"brand,omitempty"`
	Last4          string `json:"last4,omitempty"`
	Stale          bool   `json:"stale"`
}

// Controls reports which actions the current step allows.
type Controls struct {
	Back     bool     `json:"back"`
	Continue bool     `json:"continue"`
	InFlight []string `json:"inFlight,omitempty"`
}
