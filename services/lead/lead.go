package lead

import (
	"errors"
	"fmt"
	"strings"
	"time"

	leadRepo "consultly/database/repository/lead"
	"consultly/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FieldErrors maps a submitted field to a human-readable problem.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return "invalid lead: " + strings.Join(parts, "; ")
}

// Service captures marketing leads from webinar, whitepaper, newsletter, and
// contact forms.
type Service interface {
	// Capture validates and stores a lead. A repeat submission with the same
	// email and source refreshes the existing record.
	Capture(lead *models.Lead) error
}

// DefaultLeadService implements Service.
type DefaultLeadService struct {
	Repo     leadRepo.LeadRepository
	Validate *validator.Validate
	Logger   *zap.Logger
}

// NewDefaultLeadService wires the lead capture service.
func NewDefaultLeadService(repo leadRepo.LeadRepository, logger *zap.Logger) *DefaultLeadService {
	return &DefaultLeadService{
		Repo:     repo,
		Validate: validator.New(),
		Logger:   logger,
	}
}

func (s *DefaultLeadService) Capture(lead *models.Lead) error {
	lead.Email = strings.ToLower(strings.TrimSpace(lead.Email))

	if err := s.Validate.Struct(lead); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fieldErrorsFrom(verrs)
		}
		return fmt.Errorf("failed to validate lead: %w", err)
	}

	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	now := time.Now()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.UpdatedAt = now

	if err := s.Repo.Upsert(lead); err != nil {
		return fmt.Errorf("failed to store lead: %w", err)
	}
	s.Logger.Info("lead captured",
		zap.String("source", lead.Source),
		zap.String("resource", lead.Resource))
	return nil
}

func fieldErrorsFrom(verrs validator.ValidationErrors) FieldErrors {
	out := FieldErrors{}
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "required":
			out[field] = "this field is required"
		case "email":
			out[field] = "please enter a valid email address"
		case "max":
			out[field] = fmt.Sprintf("must be at most %s characters", fe.Param())
		case "oneof":
			out[field] = "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
		case "eq":
			out[field] = "consent is required to store your details"
		default:
			out[field] = "invalid value"
		}
	}
	return out
}
