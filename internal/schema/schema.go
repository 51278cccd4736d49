// Package schema validates the form submitted for each wizard step.
//
// Structural rules live in struct tags on the model forms and are checked
// with go-playground/validator; enum membership is checked against the
// resolved option set. Validation is synchronous and has no side effects.
package schema

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliamunaev/quote-wizard/internal/apperr"
	"github.com/iliamunaev/quote-wizard/internal/model"
	"github.com/iliamunaev/quote-wizard/internal/options"
)

var zipPattern = regexp.MustCompile(`^\d{5}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	must(v.RegisterValidation("zip5", func(fl validator.FieldLevel) bool {
		return ValidZip(fl.Field().String())
	}))
	must(v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	}))
	must(v.RegisterValidation("positive_int", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
		return err == nil && n > 0
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// ValidZip reports whether zip is exactly five digits.
func ValidZip(zip string) bool {
	return zipPattern.MatchString(zip)
}

// ValidPhone accepts a 10-digit US number, optionally prefixed with 1 and
// punctuated with spaces, dots, dashes, parentheses or a leading plus.
func ValidPhone(phone string) bool {
	var digits strings.Builder
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case strings.ContainsRune(" ().-+", r):
		default:
			return false
		}
	}
	d := digits.String()
	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}
	return len(d) == 10
}

// Zip validates the entry step.
func Zip(form model.ZipForm) error {
	return check(form, nil)
}

// Service validates the service-details step and returns the selection it
// describes.
func Service(form model.ServiceForm, opts options.Set) (model.ServiceSelection, error) {
	form.FirstName = strings.TrimSpace(form.FirstName)
	form.NumberOfDogs = strings.TrimSpace(form.NumberOfDogs)

	fe := apperr.FieldErrors{}
	member(fe, opts, options.Dogs, "numberOfDogs", form.NumberOfDogs)
	member(fe, opts, options.Frequency, "frequency", form.Frequency)
	member(fe, opts, options.LastCleaned, "lastCleaned", form.LastCleaned)
	if err := check(form, fe); err != nil {
		return model.ServiceSelection{}, err
	}

	n, _ := strconv.Atoi(form.NumberOfDogs)
	return model.ServiceSelection{
		FirstName:    form.FirstName,
		Phone:        strings.TrimSpace(form.Phone),
		NumberOfDogs: n,
		Frequency:    form.Frequency,
		LastCleaned:  form.LastCleaned,
	}, nil
}

// Contact validates the contact step. GateCode is accepted as given.
func Contact(form model.ContactForm, opts options.Set) (model.ContactInfo, error) {
	form.FullName = strings.TrimSpace(form.FullName)
	form.Email = strings.TrimSpace(form.Email)
	form.Address = strings.TrimSpace(form.Address)
	form.City = strings.TrimSpace(form.City)

	fe := apperr.FieldErrors{}
	member(fe, opts, options.GateLocation, "gateLocation", form.GateLocation)
	if err := check(form, fe); err != nil {
		return model.ContactInfo{}, err
	}

	return model.ContactInfo{
		FullName:     form.FullName,
		Email:        form.Email,
		Phone:        strings.TrimSpace(form.Phone),
		Address:      form.Address,
		City:         form.City,
		GateLocation: form.GateLocation,
		GateCode:     form.GateCode,
	}, nil
}

// Dog validates the form of one dog.
func Dog(form model.DogForm) (model.DogRecord, error) {
	form.Name = strings.TrimSpace(form.Name)
	if err := check(form, nil); err != nil {
		return model.DogRecord{}, err
	}
	return DogRecord(form), nil
}

// DogRecord copies a dog form into a record without validating it.
func DogRecord(form model.DogForm) model.DogRecord {
	rec := model.DogRecord{
		Name:     strings.TrimSpace(form.Name),
		Breed:    strings.TrimSpace(form.Breed),
		Comments: strings.TrimSpace(form.Comments),
	}
	if form.IsSafe != nil {
		safe := *form.IsSafe
		rec.IsSafe = &safe
	}
	return rec
}

// Notifications validates the notifications step.
func Notifications(form model.NotificationsForm, opts options.Set) (model.NotificationPrefs, error) {
	fe := apperr.FieldErrors{}
	for _, t := range form.Types {
		if t != "" && !opts.Has(options.NotificationType, t) {
			fe["types"] = "Please choose a valid notification type"
			break
		}
	}
	member(fe, opts, options.NotificationChannel, "channel", form.Channel)
	if err := check(form, fe); err != nil {
		return model.NotificationPrefs{}, err
	}

	return model.NotificationPrefs{
		Types:   append([]string(nil), form.Types...),
		Channel: form.Channel,
	}, nil
}

// Payment validates the fields of the payment step that are ours to check.
// Card completeness and terms acceptance belong to the payment bridge.
func Payment(form model.PaymentForm) error {
	form.CardholderName = strings.TrimSpace(form.CardholderName)
	return check(form, nil)
}

// member records an error for a non-empty value outside category c.
// Empty values are left to the required rule.
func member(fe apperr.FieldErrors, opts options.Set, c options.Category, field, value string) {
	if value == "" || opts.Has(c, value) {
		return
	}
	fe[field] = "Please choose one of the available options"
}

// check runs the struct rules of form and merges their messages into fe.
// Struct rule messages win over membership messages for the same field.
func check(form any, fe apperr.FieldErrors) error {
	if fe == nil {
		fe = apperr.FieldErrors{}
	}
	if err := validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, v := range verrs {
			fe[fieldName(v)] = message(v)
		}
	}
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// fieldName strips the dive index so errors attach to the input, e.g.
// "types[0]" becomes "types".
func fieldName(v validator.FieldError) string {
	name := v.Field()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

var labels = map[string]string{
	"zipCode":        "ZIP code",
	"firstName":      "First name",
	"phone":          "Phone number",
	"numberOfDogs":   "Number of dogs",
	"frequency":      "Service frequency",
	"lastCleaned":    "Last cleaned",
	"fullName":       "Full name",
	"email":          "Email",
	"address":        "Address",
	"city":           "City",
	"gateLocation":   "Gate location",
	"name":           "Dog name",
	"breed":          "Breed",
	"isSafe":         "Safety answer",
	"comments":       "Comments",
	"types":          "Notification type",
	"channel":        "Notification channel",
	"cardholderName": "Cardholder name",
}

func message(v validator.FieldError) string {
	label, ok := labels[fieldName(v)]
	if !ok {
		label = "This field"
	}

	switch v.Tag() {
	case "required":
		if fieldName(v) == "types" {
			return "Please choose at least one notification type"
		}
		return label + " is required"
	case "min":
		return "Please choose at least one notification type"
	case "max":
		return label + " is too long"
	case "email":
		return "Please enter a valid email address"
	case "phone":
		return "Please enter a valid 10-digit phone number"
	case "zip5":
		return "Please enter a valid 5-digit ZIP code"
	case "positive_int":
		return "Please select the number of dogs"
	default:
		return label + " is invalid"
	}
}
