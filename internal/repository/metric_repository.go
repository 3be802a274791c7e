package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/frontline-service/internal/domain"
)

// MetricRepository stores additive daily counters plus the per-case
// idempotence guard. Increment never recomputes from scratch and never
// rewrites history; MarkCaseRecorded returns false when the case+status
// pair was already recorded.
type MetricRepository interface {
	Increment(ctx context.Context, date time.Time, serviceID *string, delta domain.MetricDelta) error
	MarkCaseRecorded(ctx context.Context, caseID string, status domain.CaseStatus) (bool, error)
	ListRange(ctx context.Context, from, to time.Time) ([]domain.SystemMetric, error)
}

type metricRepository struct {
	pool *pgxpool.Pool
}

// NewMetricRepository builds repository.
func NewMetricRepository(pool *pgxpool.Pool) MetricRepository {
	return &metricRepository{pool: pool}
}

func (r *metricRepository) Increment(ctx context.Context, date time.Time, serviceID *string, delta domain.MetricDelta) error {
	const query = `
        INSERT INTO system_metrics (service_id, date, total_processed, completed_count, escalated_count,
            failed_count, cancelled_count, reservation_count, pipeline_seconds)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (service_key, date) DO UPDATE SET
            total_processed = system_metrics.total_processed + EXCLUDED.total_processed,
            completed_count = system_metrics.completed_count + EXCLUDED.completed_count,
            escalated_count = system_metrics.escalated_count + EXCLUDED.escalated_count,
            failed_count = system_metrics.failed_count + EXCLUDED.failed_count,
            cancelled_count = system_metrics.cancelled_count + EXCLUDED.cancelled_count,
            reservation_count = system_metrics.reservation_count + EXCLUDED.reservation_count,
            pipeline_seconds = system_metrics.pipeline_seconds + EXCLUDED.pipeline_seconds`
	_, err := r.pool.Exec(ctx, query,
		serviceID,
		date.Format("2006-01-02"),
		delta.TotalProcessed,
		delta.CompletedCount,
		delta.EscalatedCount,
		delta.FailedCount,
		delta.CancelledCount,
		delta.ReservationCount,
		delta.PipelineSeconds,
	)
	return err
}

func (r *metricRepository) MarkCaseRecorded(ctx context.Context, caseID string, status domain.CaseStatus) (bool, error) {
	const query = `
        INSERT INTO metric_case_guard (case_id, final_status)
        VALUES ($1,$2)
        ON CONFLICT (case_id, final_status) DO NOTHING`
	cmd, err := r.pool.Exec(ctx, query, caseID, status)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *metricRepository) ListRange(ctx context.Context, from, to time.Time) ([]domain.SystemMetric, error) {
	const query = `
        SELECT id, service_id, date, total_processed, completed_count, escalated_count,
               failed_count, cancelled_count, reservation_count, pipeline_seconds
        FROM system_metrics WHERE date >= $1 AND date <= $2 ORDER BY date ASC`
	rows, err := r.pool.Query(ctx, query, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SystemMetric
	for rows.Next() {
		var metric domain.SystemMetric
		if err := rows.Scan(
			&metric.ID,
			&metric.ServiceID,
			&metric.Date,
			&metric.TotalProcessed,
			&metric.CompletedCount,
			&metric.EscalatedCount,
			&metric.FailedCount,
			&metric.CancelledCount,
			&metric.ReservationCount,
			&metric.PipelineSeconds,
		); err != nil {
			return nil, err
		}
		result = append(result, metric)
	}
	return result, rows.Err()
}
