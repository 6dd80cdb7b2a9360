package models

import "time"

// Consultant is a directory entry for a bookable consultant. The directory is
// read-only from this service's point of view; profiles are managed elsewhere.
type Consultant struct {
	ID          string   `bson:"id" json:"id"`
	Name        string   `bson:"name" json:"name"`
	Title       string   `bson:"title" json:"title"`
	Bio         string   `bson:"bio,omitempty" json:"bio,omitempty"`
	Expertise   []string `bson:"expertise,omitempty" json:"expertise,omitempty"`
	Languages   []string `bson:"languages,omitempty" json:"languages,omitempty"`
	HourlyRate  float64  `bson:"hourly_rate" json:"hourlyRate"`
	Currency    string   `bson:"currency" json:"currency"`
	PhotoURL    string   `bson:"photo_url,omitempty" json:"photoUrl,omitempty"`
	CalendarRef string   `bson:"calendar_ref,omitempty" json:"-"`
	Active      bool     `bson:"active" json:"active"`
}

// Summary converts a directory entry into the display snapshot stored in a
// booking draft.
func (c Consultant) Summary() ConsultantSummary {
	return ConsultantSummary{
		ID:         c.ID,
		Name:       c.Name,
		Title:      c.Title,
		HourlyRate: c.HourlyRate,
		Currency:   c.Currency,
		PhotoURL:   c.PhotoURL,
	}
}

// BookingConfirmation is the terminal-step payload returned after the payment
// call succeeds.
type BookingConfirmation struct {
	BookingID     string    `json:"bookingId"`
	ConsultantID  string    `json:"consultantId"`
	Date          string    `json:"date"`
	Slot          string    `json:"slot"`
	PaymentMethod string    `json:"paymentMethod"`
	Confirmation  string    `json:"confirmation"`
	CreatedAt     time.Time `json:"createdAt"`
}
