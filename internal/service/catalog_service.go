package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/repository"
	"github.com/spec-kit/frontline-service/internal/scheduling"
	apperrors "github.com/spec-kit/frontline-service/pkg/util"
)

// CreateServiceInput carries a new provider registration.
type CreateServiceInput struct {
	Name             string
	Category         string
	Department       string
	Location         string
	CapacityPerHour  int
	OperatingHours   string
	ContactInfo      string
	EmergencyCapable bool
}

// CatalogService manages the provider directory.
type CatalogService struct {
	services repository.ServiceRepository
	logger   *zap.Logger
}

// NewCatalogService constructs the service.
func NewCatalogService(services repository.ServiceRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{services: services, logger: logger}
}

// Create registers a provider after validating its category, capacity and
// operating window.
func (s *CatalogService) Create(ctx context.Context, input CreateServiceInput) (*domain.Service, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	category := domain.ServiceCategory(strings.ToUpper(strings.TrimSpace(input.Category)))
	if !category.Valid() {
		return nil, apperrors.NewValidationError("unknown service category", map[string]any{
			"category": input.Category,
		})
	}
	// Zero capacity is a valid, never-bookable provider; only negative
	// values are malformed.
	if input.CapacityPerHour < 0 {
		return nil, apperrors.NewValidationError("capacity per hour must not be negative", nil)
	}
	if _, err := scheduling.ParseWindow(input.OperatingHours); err != nil {
		return nil, apperrors.NewValidationError("invalid operating hours", map[string]any{
			"operating_hours": input.OperatingHours,
		})
	}

	svc := &domain.Service{
		Name:             strings.TrimSpace(input.Name),
		Category:         category,
		Department:       strings.TrimSpace(input.Department),
		Location:         strings.TrimSpace(input.Location),
		CapacityPerHour:  input.CapacityPerHour,
		OperatingHours:   strings.TrimSpace(input.OperatingHours),
		ContactInfo:      strings.TrimSpace(input.ContactInfo),
		EmergencyCapable: input.EmergencyCapable,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, err
	}

	s.logger.Info("service registered",
		zap.String("service_id", svc.ID),
		zap.String("category", string(svc.Category)))
	return svc, nil
}

// List returns providers, optionally narrowed to one category.
func (s *CatalogService) List(ctx context.Context, category string) ([]domain.Service, error) {
	filter := repository.ServiceFilter{}
	if category != "" {
		parsed := domain.ServiceCategory(strings.ToUpper(category))
		if !parsed.Valid() {
			return nil, apperrors.NewValidationError("unknown service category", map[string]any{
				"category": category,
			})
		}
		filter.Category = &parsed
	}
	return s.services.List(ctx, filter)
}

// Get returns one provider.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Service, error) {
	return s.services.GetByID(ctx, id)
}
