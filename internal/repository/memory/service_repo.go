package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/repository"
)

type serviceRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Service
}

// NewServiceRepo creates an in-memory service repository.
func NewServiceRepo() repository.ServiceRepository {
	return &serviceRepo{byID: make(map[string]domain.Service)}
}

func (r *serviceRepo) Create(ctx context.Context, svc *domain.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	svc.CreatedAt = now()
	r.byID[svc.ID] = *svc
	return nil
}

func (r *serviceRepo) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &svc, nil
}

func (r *serviceRepo) List(ctx context.Context, filter repository.ServiceFilter) ([]domain.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Service, 0)
	for _, svc := range r.byID {
		if filter.Category != nil && svc.Category != *filter.Category {
			continue
		}
		if filter.EmergencyOnly && !svc.EmergencyCapable {
			continue
		}
		out = append(out, svc)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out, nil
}
