// Package model defines the records collected by the signup wizard, the
// forms submitted for each step and the payloads exchanged with the
// backend collaborators. It keeps transport-level types in one place.
package model

// ServiceSelection is the service-details step: who is asking and what
// kind of service they want priced.
type ServiceSelection struct {
	FirstName    string `json:"firstName"`
	Phone        string `json:"phone"`
	NumberOfDogs int    `json:"numberOfDogs"`
	Frequency    string `json:"frequency"`
	LastCleaned  string `json:"lastCleaned"`
}

// ContactInfo is the contact step.
type ContactInfo struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	GateLocation string `json:"gateLocation"`
	GateCode     string `json:"gateCode,omitempty"`
}

// DogRecord describes one dog on the property.
type DogRecord struct {
	Name     string `json:"name"`
	Breed    string `json:"breed,omitempty"`
	IsSafe   *bool  `json:"isSafe,omitempty"`
	Comments string `json:"comments,omitempty"`
}

// Complete reports whether the record carries every required field.
func (d DogRecord) Complete() bool {
	return d.Name != "" && d.IsSafe != nil
}

// NotificationPrefs is the notifications step.
type NotificationPrefs struct {
	Types   []string `json:"types"`
	Channel string   `json:"channel"`
}

// PricingQuote is the price computed for a service selection.
type PricingQuote struct {
	RecurringPrice     float64  `json:"recurringPrice"`
	MonthlyPrice       *float64 `json:"monthlyPrice,omitempty"`
	InitialCleanupFee  float64  `json:"initialCleanupFee"`
	BillingInterval    string   `json:"billingInterval"`
	Category           string   `json:"category"`
	PriceNotConfigured bool     `json:"priceNotConfigured"`
}

// Option is one selectable value of a dynamic option category.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
