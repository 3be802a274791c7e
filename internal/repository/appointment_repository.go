package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/frontline-service/internal/domain"
)

// AppointmentRepository encapsulates appointment persistence.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	Update(ctx context.Context, appt *domain.Appointment) error
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	GetByCase(ctx context.Context, caseID string) (*domain.Appointment, error)
}

type appointmentRepository struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepository instantiates repository.
func NewAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

func (r *appointmentRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        INSERT INTO appointments (case_id, service_id, scheduled_at, duration_minutes, status, confirmation_sent, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		appt.CaseID,
		appt.ServiceID,
		appt.ScheduledAt,
		appt.DurationMins,
		appt.Status,
		appt.ConfirmationSent,
		appt.Notes,
	).Scan(&appt.ID, &appt.CreatedAt)
}

func (r *appointmentRepository) Update(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        UPDATE appointments SET scheduled_at=$1, duration_minutes=$2, status=$3, confirmation_sent=$4, notes=$5
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		appt.ScheduledAt,
		appt.DurationMins,
		appt.Status,
		appt.ConfirmationSent,
		appt.Notes,
		appt.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	const query = `
        SELECT id, case_id, service_id, scheduled_at, duration_minutes, status, confirmation_sent, notes, created_at
        FROM appointments WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *appointmentRepository) GetByCase(ctx context.Context, caseID string) (*domain.Appointment, error) {
	const query = `
        SELECT id, case_id, service_id, scheduled_at, duration_minutes, status, confirmation_sent, notes, created_at
        FROM appointments WHERE case_id=$1 ORDER BY created_at DESC LIMIT 1`
	return r.fetchSingle(ctx, query, caseID)
}

func (r *appointmentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Appointment, error) {
	var appt domain.Appointment
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&appt.ID,
		&appt.CaseID,
		&appt.ServiceID,
		&appt.ScheduledAt,
		&appt.DurationMins,
		&appt.Status,
		&appt.ConfirmationSent,
		&appt.Notes,
		&appt.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &appt, nil
}
