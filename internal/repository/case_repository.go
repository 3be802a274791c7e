package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/frontline-service/internal/domain"
)

// CaseFilter captures listing parameters.
type CaseFilter struct {
	CitizenID   *string
	Statuses    []domain.CaseStatus
	Urgencies   []domain.UrgencyLevel
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// CaseRepository encapsulates case persistence.
type CaseRepository interface {
	Create(ctx context.Context, c *domain.Case) error
	Update(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	GetByReferenceKey(ctx context.Context, key string) (*domain.Case, error)
	ListWithFilter(ctx context.Context, filter CaseFilter) ([]domain.Case, error)
	CountByStatus(ctx context.Context) (map[domain.CaseStatus]int64, error)
}

type caseRepository struct {
	pool *pgxpool.Pool
}

// NewCaseRepository instantiates repository.
func NewCaseRepository(pool *pgxpool.Pool) CaseRepository {
	return &caseRepository{pool: pool}
}

const caseColumns = `id, reference_key, citizen_id, title, description, declared_urgency,
               urgency, status, service_category, service_id, appointment_id,
               triage_notes, estimated_minutes, terminal_stage, terminal_reason,
               created_at, updated_at, closed_at`

func (r *caseRepository) Create(ctx context.Context, c *domain.Case) error {
	const query = `
        INSERT INTO cases (reference_key, citizen_id, title, description, declared_urgency, urgency, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		c.ReferenceKey,
		c.CitizenID,
		c.Title,
		c.Description,
		c.DeclaredUrgency,
		c.Urgency,
		c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *caseRepository) Update(ctx context.Context, c *domain.Case) error {
	const query = `
        UPDATE cases SET urgency=$1, status=$2, service_category=$3, service_id=$4,
            appointment_id=$5, triage_notes=$6, estimated_minutes=$7,
            terminal_stage=$8, terminal_reason=$9, closed_at=$10, updated_at=NOW()
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		c.Urgency,
		c.Status,
		c.ServiceCategory,
		c.ServiceID,
		c.AppointmentID,
		c.TriageNotes,
		c.EstimatedMins,
		c.TerminalStage,
		c.TerminalReason,
		c.ClosedAt,
		c.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *caseRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	query := fmt.Sprintf(`SELECT %s FROM cases WHERE id=$1`, caseColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *caseRepository) GetByReferenceKey(ctx context.Context, key string) (*domain.Case, error) {
	query := fmt.Sprintf(`SELECT %s FROM cases WHERE reference_key=$1`, caseColumns)
	return r.fetchSingle(ctx, query, key)
}

func (r *caseRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Case, error) {
	var c domain.Case
	if err := scanCase(r.pool.QueryRow(ctx, query, arg), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caseRepository) ListWithFilter(ctx context.Context, filter CaseFilter) ([]domain.Case, error) {
	base := fmt.Sprintf(`SELECT %s FROM cases`, caseColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CitizenID != nil {
		args = append(args, *filter.CitizenID)
		clauses = append(clauses, fmt.Sprintf("citizen_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Urgencies) > 0 {
		placeholders := make([]string, len(filter.Urgencies))
		for i, urgency := range filter.Urgencies {
			args = append(args, urgency)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("urgency IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Case
	for rows.Next() {
		var c domain.Case
		if err := scanCase(rows, &c); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *caseRepository) CountByStatus(ctx context.Context) (map[domain.CaseStatus]int64, error) {
	const query = `SELECT status, COUNT(*) FROM cases GROUP BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.CaseStatus]int64)
	for rows.Next() {
		var status domain.CaseStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func scanCase(row pgx.Row, c *domain.Case) error {
	return row.Scan(
		&c.ID,
		&c.ReferenceKey,
		&c.CitizenID,
		&c.Title,
		&c.Description,
		&c.DeclaredUrgency,
		&c.Urgency,
		&c.Status,
		&c.ServiceCategory,
		&c.ServiceID,
		&c.AppointmentID,
		&c.TriageNotes,
		&c.EstimatedMins,
		&c.TerminalStage,
		&c.TerminalReason,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.ClosedAt,
	)
}
