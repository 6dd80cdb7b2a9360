package models

import "time"

// ConsultantSummary is the display snapshot of the chosen consultant carried
// inside a draft. It is captured when the consultant is selected so the wizard
// can render the remaining steps without re-querying the directory.
type ConsultantSummary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Title      string  `json:"title,omitempty"`
	HourlyRate float64 `json:"hourlyRate,omitempty"`
	Currency   string  `json:"currency,omitempty"`
	PhotoURL   string  `json:"photoUrl,omitempty"`
}

// ContactInfo holds the contact step fields.
type ContactInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company,omitempty"`
	Website   string `json:"website,omitempty"`
}

// BillingInfo holds the billing step fields.
type BillingInfo struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Company     string `json:"company,omitempty"`
	Street      string `json:"street"`
	PostalCode  string `json:"postalCode"`
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`
	VATNumber   string `json:"vatNumber,omitempty"`
}

// PaymentData records the chosen payment method. Provider and confirmation are
// filled in only after the payment call succeeds.
type PaymentData struct {
	Method       string `json:"method"`
	Provider     string `json:"provider,omitempty"`
	Confirmation string `json:"confirmation,omitempty"`
}

// BookingDraft is the single accumulating record threaded through all wizard
// steps. Steps never mutate a draft in place: each submission produces a new
// value via the With* merge functions, so the session and draft stores can
// snapshot at any point.
type BookingDraft struct {
	Consultant    *ConsultantSummary `json:"consultant,omitempty"`
	SelectedDate  string             `json:"selectedDate,omitempty"` // "2006-01-02"
	SelectedSlot  string             `json:"selectedSlot,omitempty"` // e.g. "10:00"
	Contact       ContactInfo        `json:"contact"`
	Billing       BillingInfo        `json:"billing"`
	Payment       *PaymentData       `json:"payment,omitempty"`
	BookingID     string             `json:"bookingId,omitempty"`
	TermsAccepted bool               `json:"termsAccepted"`
}

// WithConsultant returns a copy of the draft with the consultant replaced.
// Selecting a different consultant invalidates the previously chosen date and
// slot; contact and billing data entered so far survive.
func (d BookingDraft) WithConsultant(c ConsultantSummary) BookingDraft {
	if d.Consultant == nil || d.Consultant.ID != c.ID {
		d.SelectedDate = ""
		d.SelectedSlot = ""
	}
	d.Consultant = &c
	return d
}

// WithSchedule returns a copy with the appointment date and slot set. Changing
// the date clears a slot chosen for another day.
func (d BookingDraft) WithSchedule(date, slot string) BookingDraft {
	if d.SelectedDate != date {
		d.SelectedSlot = ""
	}
	d.SelectedDate = date
	d.SelectedSlot = slot
	return d
}

// WithContact returns a copy with the contact step fields and terms flag set.
func (d BookingDraft) WithContact(contact ContactInfo, termsAccepted bool) BookingDraft {
	d.Contact = contact
	d.TermsAccepted = termsAccepted
	return d
}

// WithBilling returns a copy with the billing step fields set.
func (d BookingDraft) WithBilling(billing BillingInfo) BookingDraft {
	d.Billing = billing
	return d
}

// WithBookingID returns a copy with the server-assigned booking ID set. The ID
// is a durable marker: once present it is never overwritten, so a retried
// create call can never detach the draft from the booking that already exists.
func (d BookingDraft) WithBookingID(id string) BookingDraft {
	if d.BookingID == "" {
		d.BookingID = id
	}
	return d
}

// WithPayment returns a copy with the payment outcome recorded.
func (d BookingDraft) WithPayment(p PaymentData) BookingDraft {
	d.Payment = &p
	return d
}

// HasProgress reports whether the user entered anything beyond the empty
// initial state. Exit requests on a draft without progress skip the
// confirmation dialog.
func (d BookingDraft) HasProgress() bool {
	return d.Consultant != nil ||
		d.SelectedDate != "" ||
		d.SelectedSlot != "" ||
		d.Contact != (ContactInfo{}) ||
		d.Billing != (BillingInfo{}) ||
		d.BookingID != "" ||
		d.TermsAccepted
}

// PersistedDraftRecord is the saved-draft slot contents. It is created only by
// an explicit save-and-exit, read once when the wizard starts, and deleted on
// completion, discard, or found-but-expired at read time.
type PersistedDraftRecord struct {
	Draft   BookingDraft `json:"draft"`
	Step    string       `json:"step"`
	SavedAt time.Time    `json:"savedAt"`
}
