package wizard

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"consultly/models"
)

// Step validators are pure: each checks only the fields its step owns and
// returns a field → message mapping. An empty mapping means the step is valid.
// Failing validation blocks the sequencer's Next and has no side effects.

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	// Loose international phone grammar: digits, spaces, +, -, parentheses.
	phonePattern = regexp.MustCompile(`^[0-9+\-() ]+$`)
	vatPattern   = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]+$`)
	fiveDigits   = regexp.MustCompile(`^[0-9]{5}$`)
)

// strictPostalFormats lists countries whose postal codes must match an exact
// domestic format.
var strictPostalFormats = map[string]*regexp.Regexp{
	"DE": fiveDigits,
	"US": fiveDigits,
	"FR": fiveDigits,
	"IT": fiveDigits,
	"ES": fiveDigits,
}

// SupportedPaymentMethods enumerates the methods the payment step accepts.
var SupportedPaymentMethods = []string{"card", "invoice"}

const maxNameLength = 100

// ValidateConsultantStep checks the consultant selection step.
func ValidateConsultantStep(d models.BookingDraft) map[string]string {
	errs := map[string]string{}
	if d.Consultant == nil || d.Consultant.ID == "" {
		errs["consultant"] = "please select a consultant"
	}
	return errs
}

// ValidateTimeSlotStep checks the appointment step. The available set must be
// the one most recently fetched for the draft's consultant and date.
func ValidateTimeSlotStep(d models.BookingDraft, available []string) map[string]string {
	errs := map[string]string{}
	if d.SelectedDate == "" {
		errs["date"] = "please select a date"
	}
	if d.SelectedSlot == "" {
		errs["slot"] = "please select a time slot"
	}
	if len(errs) > 0 {
		return errs
	}
	for _, slot := range available {
		if slot == d.SelectedSlot {
			return errs
		}
	}
	errs["slot"] = "the selected time slot is not available on this date"
	return errs
}

// ValidateContactStep checks the contact step.
func ValidateContactStep(d models.BookingDraft) map[string]string {
	errs := map[string]string{}
	c := d.Contact

	if name := strings.TrimSpace(c.FirstName); name == "" {
		errs["firstName"] = "first name is required"
	} else if utf8.RuneCountInString(name) > maxNameLength {
		errs["firstName"] = "first name is too long"
	}
	if name := strings.TrimSpace(c.LastName); name == "" {
		errs["lastName"] = "last name is required"
	} else if utf8.RuneCountInString(name) > maxNameLength {
		errs["lastName"] = "last name is too long"
	}

	if c.Email == "" {
		errs["email"] = "email is required"
	} else if !emailPattern.MatchString(c.Email) {
		errs["email"] = "please enter a valid email address"
	}

	if phone := strings.TrimSpace(c.Phone); phone == "" {
		errs["phone"] = "phone number is required"
	} else if !validPhone(phone) {
		errs["phone"] = "please enter a valid phone number"
	}

	if c.Website != "" && !strings.HasPrefix(c.Website, "http://") && !strings.HasPrefix(c.Website, "https://") {
		errs["website"] = "website must start with http:// or https://"
	}

	if !d.TermsAccepted {
		errs["termsAccepted"] = "please accept the terms and conditions"
	}
	return errs
}

// validPhone accepts the loose international grammar and requires at least 8
// significant (digit) characters.
func validPhone(phone string) bool {
	if !phonePattern.MatchString(phone) {
		return false
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 8
}

// ValidateBillingStep checks the billing step.
func ValidateBillingStep(d models.BookingDraft) map[string]string {
	errs := map[string]string{}
	b := d.Billing

	if strings.TrimSpace(b.FirstName) == "" {
		errs["firstName"] = "billing first name is required"
	}
	if strings.TrimSpace(b.LastName) == "" {
		errs["lastName"] = "billing last name is required"
	}
	if strings.TrimSpace(b.Street) == "" {
		errs["street"] = "street is required"
	}
	if strings.TrimSpace(b.City) == "" {
		errs["city"] = "city is required"
	}

	postal := strings.TrimSpace(b.PostalCode)
	if postal == "" {
		errs["postalCode"] = "postal code is required"
	} else if format, ok := strictPostalFormats[strings.ToUpper(b.CountryCode)]; ok && !format.MatchString(postal) {
		errs["postalCode"] = "postal code does not match the format for the selected country"
	}

	if b.VATNumber != "" {
		vat := strings.ToUpper(strings.Join(strings.Fields(b.VATNumber), ""))
		if !vatPattern.MatchString(vat) {
			errs["vatNumber"] = "VAT number must start with a two-letter country prefix"
		}
	}
	return errs
}

// ValidatePaymentStep checks that a supported payment method was chosen.
func ValidatePaymentStep(method string) map[string]string {
	errs := map[string]string{}
	if method == "" {
		errs["method"] = "please choose a payment method"
		return errs
	}
	for _, m := range SupportedPaymentMethods {
		if m == method {
			return errs
		}
	}
	errs["method"] = "unsupported payment method"
	return errs
}
