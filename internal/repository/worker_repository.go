package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/frontline-service/internal/domain"
)

// WorkerAccountRepository encapsulates console account persistence.
type WorkerAccountRepository interface {
	Create(ctx context.Context, worker *domain.WorkerAccount) error
	GetByID(ctx context.Context, id string) (*domain.WorkerAccount, error)
	GetByEmail(ctx context.Context, email string) (*domain.WorkerAccount, error)
}

type workerAccountRepository struct {
	pool *pgxpool.Pool
}

// NewWorkerAccountRepository instantiates repository.
func NewWorkerAccountRepository(pool *pgxpool.Pool) WorkerAccountRepository {
	return &workerAccountRepository{pool: pool}
}

func (r *workerAccountRepository) Create(ctx context.Context, worker *domain.WorkerAccount) error {
	const query = `
        INSERT INTO worker_accounts (name, email, password_hash, role, active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		worker.Name,
		worker.Email,
		worker.PasswordHash,
		worker.Role,
		worker.Active,
	).Scan(&worker.ID, &worker.CreatedAt, &worker.UpdatedAt)
}

func (r *workerAccountRepository) GetByID(ctx context.Context, id string) (*domain.WorkerAccount, error) {
	const query = `
        SELECT id, name, email, password_hash, role, active, created_at, updated_at
        FROM worker_accounts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *workerAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.WorkerAccount, error) {
	const query = `
        SELECT id, name, email, password_hash, role, active, created_at, updated_at
        FROM worker_accounts WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *workerAccountRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.WorkerAccount, error) {
	var worker domain.WorkerAccount
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&worker.ID,
		&worker.Name,
		&worker.Email,
		&worker.PasswordHash,
		&worker.Role,
		&worker.Active,
		&worker.CreatedAt,
		&worker.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &worker, nil
}
