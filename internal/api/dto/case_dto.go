package dto

import (
	"time"

	"github.com/spec-kit/frontline-service/internal/domain"
)

// SubmitCaseRequest payload.
type SubmitCaseRequest struct {
	CitizenID       string  `json:"citizen_id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	DeclaredUrgency *string `json:"declared_urgency"`
}

// CancelCaseRequest payload.
type CancelCaseRequest struct {
	Reason string `json:"reason"`
}

// CaseSummary response.
type CaseSummary struct {
	ID            string                  `json:"id"`
	ReferenceKey  string                  `json:"reference_key"`
	CitizenID     string                  `json:"citizen_id"`
	Title         string                  `json:"title"`
	Urgency       domain.UrgencyLevel     `json:"urgency"`
	Status        domain.CaseStatus       `json:"status"`
	Category      *domain.ServiceCategory `json:"service_category,omitempty"`
	ServiceID     *string                 `json:"service_id,omitempty"`
	AppointmentID *string                 `json:"appointment_id,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// CaseUpdateResponse is one audit trail entry.
type CaseUpdateResponse struct {
	ID        string               `json:"id"`
	Stage     domain.CaseStage     `json:"stage"`
	Outcome   domain.UpdateOutcome `json:"outcome"`
	Detail    string               `json:"detail,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// AppointmentResponse response.
type AppointmentResponse struct {
	ID               string                   `json:"id"`
	ServiceID        string                   `json:"service_id"`
	ScheduledAt      time.Time                `json:"scheduled_at"`
	DurationMins     int                      `json:"duration_minutes"`
	Status           domain.AppointmentStatus `json:"status"`
	ConfirmationSent bool                     `json:"confirmation_sent"`
	Notes            string                   `json:"notes,omitempty"`
}

// CaseDetailResponse provides full case info with trail and booking.
type CaseDetailResponse struct {
	ID              string                  `json:"id"`
	ReferenceKey    string                  `json:"reference_key"`
	CitizenID       string                  `json:"citizen_id"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	DeclaredUrgency *domain.UrgencyLevel    `json:"declared_urgency,omitempty"`
	Urgency         domain.UrgencyLevel     `json:"urgency"`
	Status          domain.CaseStatus       `json:"status"`
	Category        *domain.ServiceCategory `json:"service_category,omitempty"`
	ServiceID       *string                 `json:"service_id,omitempty"`
	TriageNotes     string                  `json:"triage_notes,omitempty"`
	EstimatedMins   int                     `json:"estimated_minutes"`
	TerminalStage   *domain.CaseStage       `json:"terminal_stage,omitempty"`
	TerminalReason  *string                 `json:"terminal_reason,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
	ClosedAt        *time.Time              `json:"closed_at,omitempty"`
	Updates         []CaseUpdateResponse    `json:"updates"`
	Appointment     *AppointmentResponse    `json:"appointment,omitempty"`
}
