package dto

import (
	"time"

	"github.com/spec-kit/frontline-service/internal/domain"
)

// WorkerLoginRequest payload.
type WorkerLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// WorkerLoginResponse response.
type WorkerLoginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Role      domain.WorkerRole `json:"role"`
	WorkerID  string            `json:"worker_id"`
}

// CreateWorkerRequest payload.
type CreateWorkerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// WorkerResponse response.
type WorkerResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Role      domain.WorkerRole `json:"role"`
	Active    bool              `json:"active"`
	CreatedAt time.Time         `json:"created_at"`
}

// DashboardResponse is the operator console overview.
type DashboardResponse struct {
	ByStatus           map[domain.CaseStatus]int64  `json:"by_status"`
	TotalProcessed     int64                        `json:"total_processed"`
	CompletedCount     int64                        `json:"completed_count"`
	EscalatedCount     int64                        `json:"escalated_count"`
	FailedCount        int64                        `json:"failed_count"`
	CancelledCount     int64                        `json:"cancelled_count"`
	ReservationCount   int64                        `json:"reservation_count"`
	AvgPipelineSeconds float64                      `json:"avg_pipeline_seconds"`
	Daily              []DailyMetricResponse        `json:"daily"`
	ServiceUtilization []ServiceUtilizationResponse `json:"services_utilization"`
}

// ServiceUtilizationResponse is one provider's booking load over the
// dashboard range.
type ServiceUtilizationResponse struct {
	ServiceID        string  `json:"service_id"`
	Name             string  `json:"name"`
	ReservationCount int64   `json:"reservation_count"`
	UtilizationPct   float64 `json:"utilization_pct"`
}

// DailyMetricResponse is one day of global counters.
type DailyMetricResponse struct {
	Date               string  `json:"date"`
	TotalProcessed     int64   `json:"total_processed"`
	CompletedCount     int64   `json:"completed_count"`
	EscalatedCount     int64   `json:"escalated_count"`
	FailedCount        int64   `json:"failed_count"`
	CancelledCount     int64   `json:"cancelled_count"`
	ReservationCount   int64   `json:"reservation_count"`
	AvgPipelineSeconds float64 `json:"avg_pipeline_seconds"`
}
