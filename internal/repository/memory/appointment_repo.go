package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/repository"
)

type appointmentRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Appointment
}

// NewAppointmentRepo creates an in-memory appointment repository.
func NewAppointmentRepo() repository.AppointmentRepository {
	return &appointmentRepo{byID: make(map[string]domain.Appointment)}
}

func (r *appointmentRepo) Create(ctx context.Context, appt *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	appt.CreatedAt = now()
	r.byID[appt.ID] = *appt
	return nil
}

func (r *appointmentRepo) Update(ctx context.Context, appt *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[appt.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.byID[appt.ID] = *appt
	return nil
}

func (r *appointmentRepo) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &appt, nil
}

func (r *appointmentRepo) GetByCase(ctx context.Context, caseID string) (*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.Appointment
	for _, appt := range r.byID {
		if appt.CaseID != caseID {
			continue
		}
		a := appt
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = &a
		}
	}
	if latest == nil {
		return nil, pgx.ErrNoRows
	}
	return latest, nil
}
