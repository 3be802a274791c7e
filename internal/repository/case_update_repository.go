package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/frontline-service/internal/domain"
)

// CaseUpdateRepository stores append-only audit entries. There is no update
// or delete path; the trail is the system of record for what happened.
type CaseUpdateRepository interface {
	Create(ctx context.Context, update *domain.CaseUpdate) error
	ListByCase(ctx context.Context, caseID string) ([]domain.CaseUpdate, error)
}

type caseUpdateRepository struct {
	pool *pgxpool.Pool
}

// NewCaseUpdateRepository builds repository.
func NewCaseUpdateRepository(pool *pgxpool.Pool) CaseUpdateRepository {
	return &caseUpdateRepository{pool: pool}
}

func (r *caseUpdateRepository) Create(ctx context.Context, update *domain.CaseUpdate) error {
	const query = `
        INSERT INTO case_updates (case_id, stage, outcome, detail)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		update.CaseID,
		update.Stage,
		update.Outcome,
		update.Detail,
	).Scan(&update.ID, &update.CreatedAt)
}

func (r *caseUpdateRepository) ListByCase(ctx context.Context, caseID string) ([]domain.CaseUpdate, error) {
	const query = `
        SELECT id, case_id, stage, outcome, detail, created_at
        FROM case_updates WHERE case_id=$1 ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CaseUpdate
	for rows.Next() {
		var update domain.CaseUpdate
		if err := rows.Scan(
			&update.ID,
			&update.CaseID,
			&update.Stage,
			&update.Outcome,
			&update.Detail,
			&update.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, update)
	}
	return result, rows.Err()
}
