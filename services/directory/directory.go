package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	consultantRepo "consultly/database/repository/consultant"
	"consultly/models"
	"consultly/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	activeListingKey = "directory:consultants:active"
	listingTTL       = 5 * time.Minute
)

// Service exposes the consultant directory to the wizard and the public
// listing endpoints.
type Service interface {
	// ListActive returns every consultant open for bookings.
	ListActive(ctx context.Context) ([]models.Consultant, error)
	// GetByID returns one consultant.
	GetByID(ctx context.Context, id string) (*models.Consultant, error)
}

// DefaultDirectoryService implements Service with a short-lived Redis cache
// in front of the Mongo-backed directory. The listing backs the first wizard
// step and is read far more often than the directory changes.
type DefaultDirectoryService struct {
	Repo   consultantRepo.ConsultantRepository
	Cache  *redis.Client
	Logger *zap.Logger
}

// NewDefaultDirectoryService wires the directory service over the shared
// cache client.
func NewDefaultDirectoryService(repo consultantRepo.ConsultantRepository, logger *zap.Logger) *DefaultDirectoryService {
	return &DefaultDirectoryService{
		Repo:   repo,
		Cache:  utils.GetCacheClient(),
		Logger: logger,
	}
}

func (s *DefaultDirectoryService) ListActive(ctx context.Context) ([]models.Consultant, error) {
	if cached, err := s.Cache.Get(ctx, activeListingKey).Result(); err == nil {
		var consultants []models.Consultant
		if err := json.Unmarshal([]byte(cached), &consultants); err == nil {
			return consultants, nil
		}
		// A corrupt cache entry is dropped and the listing rebuilt.
		s.Cache.Del(ctx, activeListingKey)
	}

	consultants, err := s.Repo.GetAllActive()
	if err != nil {
		return nil, fmt.Errorf("failed to list consultants: %w", err)
	}

	if b, err := json.Marshal(consultants); err == nil {
		if err := s.Cache.Set(ctx, activeListingKey, b, listingTTL).Err(); err != nil {
			s.Logger.Warn("failed to cache consultant listing", zap.Error(err))
		}
	}
	return consultants, nil
}

func (s *DefaultDirectoryService) GetByID(ctx context.Context, id string) (*models.Consultant, error) {
	return s.Repo.GetByID(id)
}
