package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/frontline-service/internal/domain"
)

// ServiceFilter narrows service listings.
type ServiceFilter struct {
	Category      *domain.ServiceCategory
	EmergencyOnly bool
}

// ServiceRepository encapsulates service provider persistence.
type ServiceRepository interface {
	Create(ctx context.Context, svc *domain.Service) error
	GetByID(ctx context.Context, id string) (*domain.Service, error)
	List(ctx context.Context, filter ServiceFilter) ([]domain.Service, error)
}

type serviceRepository struct {
	pool *pgxpool.Pool
}

// NewServiceRepository instantiates repository.
func NewServiceRepository(pool *pgxpool.Pool) ServiceRepository {
	return &serviceRepository{pool: pool}
}

const serviceColumns = `id, name, category, department, location, capacity_per_hour,
               operating_hours, contact_info, emergency_capable, created_at`

func (r *serviceRepository) Create(ctx context.Context, svc *domain.Service) error {
	const query = `
        INSERT INTO services (name, category, department, location, capacity_per_hour, operating_hours, contact_info, emergency_capable)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		svc.Name,
		svc.Category,
		svc.Department,
		svc.Location,
		svc.CapacityPerHour,
		svc.OperatingHours,
		svc.ContactInfo,
		svc.EmergencyCapable,
	).Scan(&svc.ID, &svc.CreatedAt)
}

func (r *serviceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	query := fmt.Sprintf(`SELECT %s FROM services WHERE id=$1`, serviceColumns)
	var svc domain.Service
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&svc.ID,
		&svc.Name,
		&svc.Category,
		&svc.Department,
		&svc.Location,
		&svc.CapacityPerHour,
		&svc.OperatingHours,
		&svc.ContactInfo,
		&svc.EmergencyCapable,
		&svc.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *serviceRepository) List(ctx context.Context, filter ServiceFilter) ([]domain.Service, error) {
	base := fmt.Sprintf(`SELECT %s FROM services`, serviceColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.EmergencyOnly {
		clauses = append(clauses, "emergency_capable=TRUE")
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY id ASC`, base, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Service
	for rows.Next() {
		var svc domain.Service
		if err := rows.Scan(
			&svc.ID,
			&svc.Name,
			&svc.Category,
			&svc.Department,
			&svc.Location,
			&svc.CapacityPerHour,
			&svc.OperatingHours,
			&svc.ContactInfo,
			&svc.EmergencyCapable,
			&svc.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, svc)
	}
	return result, rows.Err()
}
