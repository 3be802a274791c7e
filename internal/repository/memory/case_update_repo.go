package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/repository"
)

type caseUpdateRepo struct {
	mu     sync.RWMutex
	byCase map[string][]domain.CaseUpdate
}

// NewCaseUpdateRepo creates an in-memory audit trail repository. Entries are
// appended in call order, which is the trail order.
func NewCaseUpdateRepo() repository.CaseUpdateRepository {
	return &caseUpdateRepo{byCase: make(map[string][]domain.CaseUpdate)}
}

func (r *caseUpdateRepo) Create(ctx context.Context, update *domain.CaseUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if update.ID == "" {
		update.ID = uuid.NewString()
	}
	update.CreatedAt = now()
	r.byCase[update.CaseID] = append(r.byCase[update.CaseID], *update)
	return nil
}

func (r *caseUpdateRepo) ListByCase(ctx context.Context, caseID string) ([]domain.CaseUpdate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	updates := r.byCase[caseID]
	out := make([]domain.CaseUpdate, len(updates))
	copy(out, updates)
	return out, nil
}
