package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/repository"
	apperrors "github.com/spec-kit/frontline-service/pkg/util"
)

// RegisterCitizenInput carries a citizen registration.
type RegisterCitizenInput struct {
	Name             string
	Email            string
	Phone            string
	Address          string
	EmergencyContact string
}

// CitizenService owns citizen registration and lookup.
type CitizenService struct {
	citizens repository.CitizenRepository
	logger   *zap.Logger
}

// NewCitizenService constructs the service.
func NewCitizenService(citizens repository.CitizenRepository, logger *zap.Logger) *CitizenService {
	return &CitizenService{citizens: citizens, logger: logger}
}

// Register creates a citizen record. Email addresses are unique.
func (s *CitizenService) Register(ctx context.Context, input RegisterCitizenInput) (*domain.Citizen, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("a valid email is required", nil)
	}

	if _, err := s.citizens.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{
			"email": email,
		})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	citizen := &domain.Citizen{
		Name:             name,
		Email:            email,
		Phone:            strings.TrimSpace(input.Phone),
		Address:          strings.TrimSpace(input.Address),
		EmergencyContact: strings.TrimSpace(input.EmergencyContact),
	}
	if err := s.citizens.Create(ctx, citizen); err != nil {
		return nil, err
	}

	s.logger.Info("citizen registered", zap.String("citizen_id", citizen.ID))
	return citizen, nil
}

// Get returns a citizen by ID.
func (s *CitizenService) Get(ctx context.Context, id string) (*domain.Citizen, error) {
	return s.citizens.GetByID(ctx, id)
}
