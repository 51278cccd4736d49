// Package options resolves the externally configured selectable values
// used by the wizard forms, falling back to built-in tables.
package options

import (
	"strconv"
	"strings"

	"github.com/iliamunaev/quote-wizard/internal/model"
)

// Category names an option table. Its value is the slug used by the
// form-options collaborator.
type Category string

const (
	Dogs                Category = "number_of_dogs"
	Frequency           Category = "frequency"
	LastCleaned         Category = "last_cleaned"
	GateLocation        Category = "gate_location"
	NotificationType    Category = "notification_type"
	NotificationChannel Category = "notification_channel"
)

// Categories lists every option table in display order.
var Categories = []Category{Dogs, Frequency, LastCleaned, GateLocation, NotificationType, NotificationChannel}

// Set holds the resolved options of every category.
type Set map[Category][]model.Option

// Has reports whether value is selectable in category c.
func (s Set) Has(c Category, value string) bool {
	for _, o := range s[c] {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Export returns the set keyed by slug, for rendering.
func (s Set) Export() map[string][]model.Option {
	out := make(map[string][]model.Option, len(s))
	for c, opts := range s {
		out[string(c)] = append([]model.Option(nil), opts...)
	}
	return out
}

var defaultValues = map[Category]string{
	Dogs:                "1,2,3,4,5,6",
	Frequency:           "once_a_week,twice_a_week,bi_weekly,once_a_month,one_time",
	LastCleaned:         "one_week,two_weeks,three_weeks,one_month,two_months,three_months_plus",
	GateLocation:        "left,right,front,back,no_gate",
	NotificationType:    "completed,on_the_way,off_schedule",
	NotificationChannel: "sms,email,call",
}

// Defaults returns the built-in tables used when the collaborator has no
// usable value for a category.
func Defaults() Set {
	out := make(Set, len(defaultValues))
	for c, raw := range defaultValues {
		out[c] = parse(c, raw)
	}
	return out
}

// Resolve parses raw, a comma-separated list of option tokens, into
// labelled options. Blank and duplicate tokens are dropped. When nothing
// usable remains, fallback is returned.
func Resolve(c Category, raw string, fallback []model.Option) []model.Option {
	if out := parse(c, raw); len(out) > 0 {
		return out
	}
	return append([]model.Option(nil), fallback...)
}

// ResolveAll builds a Set from raw form fields. Categories absent from
// fields, or yielding no options, take the matching table of defaults.
func ResolveAll(fields []model.FormField, defaults Set) Set {
	raw := make(map[Category]string, len(fields))
	for _, f := range fields {
		raw[Category(strings.TrimSpace(f.Slug))] = f.Value
	}

	out := make(Set, len(Categories))
	for _, c := range Categories {
		out[c] = Resolve(c, raw[c], defaults[c])
	}
	return out
}

func parse(c Category, raw string) []model.Option {
	var out []model.Option
	seen := make(map[string]bool)
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" || seen[tok] {
			continue
		}
		label, ok := Label(c, tok)
		if !ok {
			continue
		}
		seen[tok] = true
		out = append(out, model.Option{Value: tok, Label: label})
	}
	return out
}

var frequencyLabels = map[string]string{
	"once_a_week":     "Weekly",
	"twice_a_week":    "Twice a Week",
	"bi_weekly":       "Bi-Weekly",
	"every_two_weeks": "Every Two Weeks",
	"once_a_month":    "Monthly",
	"one_time":        "One Time",
}

var lastCleanedLabels = map[string]string{
	"one_week":          "1 Week",
	"two_weeks":         "2 Weeks",
	"three_weeks":       "3 Weeks",
	"one_month":         "1 Month",
	"two_months":        "2 Months",
	"three_months_plus": "3+ Months",
}

var channelLabels = map[string]string{
	"sms":   "SMS",
	"email": "Email",
	"call":  "Phone Call",
}

// Label formats the display label of token for category c. It reports
// false for tokens the category cannot accept.
func Label(c Category, token string) (string, bool) {
	switch c {
	case Dogs:
		n, err := strconv.Atoi(token)
		if err != nil || n <= 0 {
			return "", false
		}
		if n == 1 {
			return "1 Dog", true
		}
		return token + " Dogs", true
	case Frequency:
		return lookup(frequencyLabels, token)
	case LastCleaned:
		return lookup(lastCleanedLabels, token)
	case NotificationChannel:
		return lookup(channelLabels, token)
	default:
		l := humanize(token)
		return l, l != ""
	}
}

func lookup(labels map[string]string, token string) (string, bool) {
	if l, ok := labels[token]; ok {
		return l, true
	}
	l := humanize(token)
	return l, l != ""
}

// humanize turns "on_the_way" into "On The Way".
func humanize(token string) string {
	words := strings.FieldsFunc(token, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
