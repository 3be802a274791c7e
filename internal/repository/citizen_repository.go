package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/frontline-service/internal/domain"
)

// CitizenRepository encapsulates citizen persistence. Citizens are immutable
// once created except for contact fields.
type CitizenRepository interface {
	Create(ctx context.Context, citizen *domain.Citizen) error
	GetByID(ctx context.Context, id string) (*domain.Citizen, error)
	GetByEmail(ctx context.Context, email string) (*domain.Citizen, error)
	UpdateContact(ctx context.Context, citizen *domain.Citizen) error
}

type citizenRepository struct {
	pool *pgxpool.Pool
}

// NewCitizenRepository instantiates repository.
func NewCitizenRepository(pool *pgxpool.Pool) CitizenRepository {
	return &citizenRepository{pool: pool}
}

func (r *citizenRepository) Create(ctx context.Context, citizen *domain.Citizen) error {
	const query = `
        INSERT INTO citizens (name, email, phone, address, emergency_contact)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		citizen.Name,
		citizen.Email,
		citizen.Phone,
		citizen.Address,
		citizen.EmergencyContact,
	).Scan(&citizen.ID, &citizen.CreatedAt, &citizen.UpdatedAt)
}

func (r *citizenRepository) GetByID(ctx context.Context, id string) (*domain.Citizen, error) {
	const query = `
        SELECT id, name, email, phone, address, emergency_contact, created_at, updated_at
        FROM citizens WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *citizenRepository) GetByEmail(ctx context.Context, email string) (*domain.Citizen, error) {
	const query = `
        SELECT id, name, email, phone, address, emergency_contact, created_at, updated_at
        FROM citizens WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *citizenRepository) UpdateContact(ctx context.Context, citizen *domain.Citizen) error {
	const query = `
        UPDATE citizens SET phone=$1, address=$2, emergency_contact=$3, updated_at=NOW()
        WHERE id=$4`
	_, err := r.pool.Exec(ctx, query,
		citizen.Phone,
		citizen.Address,
		citizen.EmergencyContact,
		citizen.ID,
	)
	return err
}

func (r *citizenRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Citizen, error) {
	var citizen domain.Citizen
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&citizen.ID,
		&citizen.Name,
		&citizen.Email,
		&citizen.Phone,
		&citizen.Address,
		&citizen.EmergencyContact,
		&citizen.CreatedAt,
		&citizen.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &citizen, nil
}
