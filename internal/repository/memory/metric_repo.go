package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/repository"
)

type metricRepo struct {
	mu       sync.Mutex
	byKey    map[string]*domain.SystemMetric
	recorded map[string]struct{}
}

// NewMetricRepo creates an in-memory metric repository.
func NewMetricRepo() repository.MetricRepository {
	return &metricRepo{
		byKey:    make(map[string]*domain.SystemMetric),
		recorded: make(map[string]struct{}),
	}
}

func metricKey(date time.Time, serviceID *string) string {
	key := date.Format("2006-01-02") + "|"
	if serviceID != nil {
		key += *serviceID
	}
	return key
}

func (r *metricRepo) Increment(ctx context.Context, date time.Time, serviceID *string, delta domain.MetricDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := metricKey(date, serviceID)
	metric, ok := r.byKey[key]
	if !ok {
		day, _ := time.Parse("2006-01-02", date.Format("2006-01-02"))
		metric = &domain.SystemMetric{
			ID:        uuid.NewString(),
			ServiceID: serviceID,
			Date:      day,
		}
		r.byKey[key] = metric
	}
	metric.TotalProcessed += delta.TotalProcessed
	metric.CompletedCount += delta.CompletedCount
	metric.EscalatedCount += delta.EscalatedCount
	metric.FailedCount += delta.FailedCount
	metric.CancelledCount += delta.CancelledCount
	metric.ReservationCount += delta.ReservationCount
	metric.PipelineSeconds += delta.PipelineSeconds
	return nil
}

func (r *metricRepo) MarkCaseRecorded(ctx context.Context, caseID string, status domain.CaseStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := caseID + "|" + string(status)
	if _, exists := r.recorded[key]; exists {
		return false, nil
	}
	r.recorded[key] = struct{}{}
	return true, nil
}

func (r *metricRepo) ListRange(ctx context.Context, from, to time.Time) ([]domain.SystemMetric, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.SystemMetric, 0)
	for _, metric := range r.byKey {
		if metric.Date.Before(from.Truncate(24*time.Hour)) || metric.Date.After(to) {
			continue
		}
		out = append(out, *metric)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}
