package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/repository"
)

type citizenRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Citizen
}

// NewCitizenRepo creates an in-memory citizen repository.
func NewCitizenRepo() repository.CitizenRepository {
	return &citizenRepo{byID: make(map[string]domain.Citizen)}
}

func (r *citizenRepo) Create(ctx context.Context, citizen *domain.Citizen) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if strings.EqualFold(existing.Email, citizen.Email) {
			return errors.New("citizen email already exists")
		}
	}
	if citizen.ID == "" {
		citizen.ID = uuid.NewString()
	}
	citizen.CreatedAt = now()
	citizen.UpdatedAt = citizen.CreatedAt
	r.byID[citizen.ID] = *citizen
	return nil
}

func (r *citizenRepo) GetByID(ctx context.Context, id string) (*domain.Citizen, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	citizen, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &citizen, nil
}

func (r *citizenRepo) GetByEmail(ctx context.Context, email string) (*domain.Citizen, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, citizen := range r.byID {
		if strings.EqualFold(citizen.Email, email) {
			c := citizen
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *citizenRepo) UpdateContact(ctx context.Context, citizen *domain.Citizen) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[citizen.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	existing.Phone = citizen.Phone
	existing.Address = citizen.Address
	existing.EmergencyContact = citizen.EmergencyContact
	existing.UpdatedAt = now()
	r.byID[citizen.ID] = existing
	return nil
}
