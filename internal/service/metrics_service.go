package service

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/repository"
	"github.com/spec-kit/frontline-service/internal/scheduling"
	apperrors "github.com/spec-kit/frontline-service/pkg/util"
)

// MetricsService maintains the append-only daily counters. Each case is
// counted at most once per terminal status: a guard row is claimed first,
// and the counter increments only run on a fresh claim, so a re-entered
// pipeline never double-counts.
type MetricsService struct {
	metrics  repository.MetricRepository
	cases    repository.CaseRepository
	services repository.ServiceRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewMetricsService constructs the service.
func NewMetricsService(metrics repository.MetricRepository, cases repository.CaseRepository, services repository.ServiceRepository, logger *zap.Logger) *MetricsService {
	return &MetricsService{
		metrics:  metrics,
		cases:    cases,
		services: services,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (m *MetricsService) SetClock(now func() time.Time) {
	m.now = now
}

// Record accounts for a case reaching the given terminal status. Safe to
// call repeatedly with the same case and status.
func (m *MetricsService) Record(ctx context.Context, c *domain.Case, final domain.CaseStatus) error {
	fresh, err := m.metrics.MarkCaseRecorded(ctx, c.ID, final)
	if err != nil {
		return err
	}
	if !fresh {
		return nil
	}

	delta := domain.MetricDelta{TotalProcessed: 1}
	switch final {
	case domain.CaseStatusComplete:
		delta.CompletedCount = 1
	case domain.CaseStatusEscalated:
		delta.EscalatedCount = 1
	case domain.CaseStatusFailed:
		delta.FailedCount = 1
	case domain.CaseStatusCancelled:
		delta.CancelledCount = 1
	}
	if c.AppointmentID != nil {
		delta.ReservationCount = 1
	}

	end := m.now()
	if c.ClosedAt != nil {
		end = *c.ClosedAt
	}
	if elapsed := end.Sub(c.CreatedAt).Seconds(); elapsed > 0 {
		delta.PipelineSeconds = elapsed
	}

	date := m.now()
	if err := m.metrics.Increment(ctx, date, nil, delta); err != nil {
		return err
	}
	if c.ServiceID != nil {
		if err := m.metrics.Increment(ctx, date, c.ServiceID, delta); err != nil {
			return err
		}
	}

	m.logger.Debug("case accounted",
		zap.String("case_id", c.ID),
		zap.String("final_status", string(final)))
	return nil
}

// DashboardStats is the operator console overview.
type DashboardStats struct {
	ByStatus           map[domain.CaseStatus]int64
	TotalProcessed     int64
	CompletedCount     int64
	EscalatedCount     int64
	FailedCount        int64
	CancelledCount     int64
	ReservationCount   int64
	AvgPipelineSeconds float64
	Daily              []domain.SystemMetric
	ServiceUtilization []ServiceUtilization
}

// ServiceUtilization is one provider's share of its booking budget over
// the dashboard range.
type ServiceUtilization struct {
	ServiceID        string
	Name             string
	ReservationCount int64
	UtilizationPct   float64
}

// Dashboard aggregates the global counters over the given range, plus a
// live status breakdown of all cases.
func (m *MetricsService) Dashboard(ctx context.Context, from, to time.Time) (*DashboardStats, error) {
	if to.Before(from) {
		return nil, apperrors.NewValidationError("range end precedes start", nil)
	}

	byStatus, err := m.cases.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := m.metrics.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{ByStatus: byStatus}
	var pipelineSeconds float64
	reserved := make(map[string]int64)
	for _, row := range rows {
		// Per-service rows feed the utilization view; only the global
		// rows count toward the totals.
		if row.ServiceID != nil {
			reserved[*row.ServiceID] += row.ReservationCount
			continue
		}
		stats.TotalProcessed += row.TotalProcessed
		stats.CompletedCount += row.CompletedCount
		stats.EscalatedCount += row.EscalatedCount
		stats.FailedCount += row.FailedCount
		stats.CancelledCount += row.CancelledCount
		stats.ReservationCount += row.ReservationCount
		pipelineSeconds += row.PipelineSeconds
		stats.Daily = append(stats.Daily, row)
	}
	if stats.TotalProcessed > 0 {
		stats.AvgPipelineSeconds = pipelineSeconds / float64(stats.TotalProcessed)
	}

	utilization, err := m.utilization(ctx, from, to, reserved)
	if err != nil {
		return nil, err
	}
	stats.ServiceUtilization = utilization
	return stats, nil
}

// utilization scores every provider's reservations against its slot
// budget for the range, capped at 100 percent. Providers with no budget
// (zero capacity or unparseable hours) read as fully utilized the moment
// they hold a reservation.
func (m *MetricsService) utilization(ctx context.Context, from, to time.Time, reserved map[string]int64) ([]ServiceUtilization, error) {
	providers, err := m.services.List(ctx, repository.ServiceFilter{})
	if err != nil {
		return nil, err
	}

	days := int64(to.Sub(from).Hours()/24) + 1
	out := make([]ServiceUtilization, 0, len(providers))
	for _, svc := range providers {
		u := ServiceUtilization{
			ServiceID:        svc.ID,
			Name:             svc.Name,
			ReservationCount: reserved[svc.ID],
		}
		budget := int64(dailySlotBudget(svc)) * days
		switch {
		case budget > 0:
			u.UtilizationPct = math.Min(float64(u.ReservationCount)/float64(budget)*100, 100)
		case u.ReservationCount > 0:
			u.UtilizationPct = 100
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServiceID < out[j].ServiceID })
	return out, nil
}

// dailySlotBudget is the bookable slots per day, zero when the operating
// hours cannot be parsed.
func dailySlotBudget(svc domain.Service) int {
	window, err := scheduling.ParseWindow(svc.OperatingHours)
	if err != nil {
		return 0
	}
	return svc.CapacityPerHour * (window.CloseHour - window.OpenHour)
}
