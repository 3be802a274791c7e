package domain

import "time"

// SystemMetric aggregates daily counters, optionally scoped to a service.
// Counters are only ever incremented; historical rows are never rewritten.
type SystemMetric struct {
	ID               string
	ServiceID        *string
	Date             time.Time
	TotalProcessed   int64
	CompletedCount   int64
	EscalatedCount   int64
	FailedCount      int64
	CancelledCount   int64
	ReservationCount int64
	PipelineSeconds  float64
}

// AvgPipelineSeconds returns the rolling average time in pipeline.
func (m *SystemMetric) AvgPipelineSeconds() float64 {
	if m.TotalProcessed == 0 {
		return 0
	}
	return m.PipelineSeconds / float64(m.TotalProcessed)
}

// MetricDelta is an additive update applied to a metric row.
type MetricDelta struct {
	TotalProcessed   int64
	CompletedCount   int64
	EscalatedCount   int64
	FailedCount      int64
	CancelledCount   int64
	ReservationCount int64
	PipelineSeconds  float64
}
