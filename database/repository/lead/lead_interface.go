package leadRepo

import "consultly/models"

// LeadRepository defines persistence for captured marketing leads.
type LeadRepository interface {
	// Upsert inserts the lead, or refreshes an existing one with the same
	// email and source (repeat downloads must not create duplicates).
	Upsert(lead *models.Lead) error
	// GetByEmail retrieves every lead captured for an email address.
	GetByEmail(email string) ([]models.Lead, error)
}
