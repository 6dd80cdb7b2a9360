package consultantRepo

import "consultly/models"

// ConsultantRepository defines read access to the consultant directory. The
// directory is managed by the back office; this service never mutates it.
type ConsultantRepository interface {
	// GetByID retrieves a consultant by its unique ID.
	GetByID(id string) (*models.Consultant, error)
	// GetAllActive retrieves every consultant currently open for bookings.
	GetAllActive() ([]models.Consultant, error)
}
