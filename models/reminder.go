package models

// ReminderPayload is the asynq task body for an appointment reminder.
type ReminderPayload struct {
	BookingID  string `json:"bookingId"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	Consultant string `json:"consultant"`
	Date       string `json:"date"`
	Slot       string `json:"slot"`
	FireDate   string `json:"fireDate"`
}
