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

type caseRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Case
}

// NewCaseRepo creates an in-memory case repository.
func NewCaseRepo() repository.CaseRepository {
	return &caseRepo{byID: make(map[string]domain.Case)}
}

func (r *caseRepo) Create(ctx context.Context, c *domain.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	r.byID[c.ID] = *c
	return nil
}

func (r *caseRepo) Update(ctx context.Context, c *domain.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	c.UpdatedAt = now()
	r.byID[c.ID] = *c
	return nil
}

func (r *caseRepo) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (r *caseRepo) GetByReferenceKey(ctx context.Context, key string) (*domain.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.byID {
		if c.ReferenceKey == key {
			found := c
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *caseRepo) ListWithFilter(ctx context.Context, filter repository.CaseFilter) ([]domain.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Case, 0)
	for _, c := range r.byID {
		if filter.CitizenID != nil && c.CitizenID != *filter.CitizenID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, c.Status) {
			continue
		}
		if len(filter.Urgencies) > 0 && !containsUrgency(filter.Urgencies, c.Urgency) {
			continue
		}
		if filter.CreatedFrom != nil && c.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && c.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return []domain.Case{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r *caseRepo) CountByStatus(ctx context.Context) (map[domain.CaseStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[domain.CaseStatus]int64)
	for _, c := range r.byID {
		counts[c.Status]++
	}
	return counts, nil
}

func containsStatus(list []domain.CaseStatus, status domain.CaseStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

func containsUrgency(list []domain.UrgencyLevel, urgency domain.UrgencyLevel) bool {
	for _, u := range list {
		if u == urgency {
			return true
		}
	}
	return false
}
