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

type workerRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.WorkerAccount
}

// NewWorkerAccountRepo creates an in-memory worker account repository.
func NewWorkerAccountRepo() repository.WorkerAccountRepository {
	return &workerRepo{byID: make(map[string]domain.WorkerAccount)}
}

func (r *workerRepo) Create(ctx context.Context, worker *domain.WorkerAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if strings.EqualFold(existing.Email, worker.Email) {
			return errors.New("worker email already exists")
		}
	}
	if worker.ID == "" {
		worker.ID = uuid.NewString()
	}
	worker.CreatedAt = now()
	worker.UpdatedAt = worker.CreatedAt
	r.byID[worker.ID] = *worker
	return nil
}

func (r *workerRepo) GetByID(ctx context.Context, id string) (*domain.WorkerAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	worker, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &worker, nil
}

func (r *workerRepo) GetByEmail(ctx context.Context, email string) (*domain.WorkerAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, worker := range r.byID {
		if strings.EqualFold(worker.Email, email) {
			w := worker
			return &w, nil
		}
	}
	return nil, pgx.ErrNoRows
}
