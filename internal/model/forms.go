package model

// ZipForm is the entry step.
type ZipForm struct {
	ZipCode string `json:"zipCode" validate:"zip5"`
}

// ServiceForm is submitted on the service-details step. NumberOfDogs holds
// the selected option value.
type ServiceForm struct {
	FirstName    string `json:"firstName" validate:"required,max=100"`
	Phone        string `json:"phone" validate:"required,phone"`
	NumberOfDogs string `json:"numberOfDogs" validate:"required,positive_int"`
	Frequency    string `json:"frequency" validate:"required"`
	LastCleaned  string `json:"lastCleaned" validate:"required"`
}

// ContactForm is submitted on the contact step. GateCode is free-form.
type ContactForm struct {
	FullName     string `json:"fullName" validate:"required,max=200"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,phone"`
	Address      string `json:"address" validate:"required,max=300"`
	City         string `json:"city" validate:"required,max=100"`
	GateLocation string `json:"gateLocation" validate:"required"`
	GateCode     string `json:"gateCode"`
}

// DogForm is submitted for the dog at the current sub-wizard index.
type DogForm struct {
	Name     string `json:"name" validate:"required,max=100"`
	Breed    string `json:"breed" validate:"max=100"`
	IsSafe   *bool  `json:"isSafe" validate:"required"`
	Comments string `json:"comments" validate:"max=1000"`
}

// NotificationsForm is submitted on the notifications step.
type NotificationsForm struct {
	Types   []string `json:"types" validate:"required,min=1,dive,required"`
	Channel string   `json:"channel" validate:"required"`
}

// CardField is the state reported by the embedded card widget. Handle is
// the widget's opaque element reference; raw card data never reaches us.
type CardField struct {
	Complete bool   `json:"complete"`
	Handle   string `json:"handle,omitempty"`
	Brand    string `json:"brand,omitempty"`
	Last4    string `json:"last4,omitempty"`
}

// PaymentForm is submitted on the payment step.
type PaymentForm struct {
	CardholderName string    `json:"cardholderName" validate:"required,max=200"`
	Card           CardField `json:"card"`
	TermsAccepted  bool      `json:"termsAccepted"`
}
