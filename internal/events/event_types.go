package events

import (
	"time"

	"github.com/spec-kit/frontline-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCaseSubmitted     EventType = "case_submitted"
	EventCaseStageAdvanced EventType = "case_stage_advanced"
	EventCaseEscalated     EventType = "case_escalated"
	EventCaseFailed        EventType = "case_failed"
	EventCaseCancelled     EventType = "case_cancelled"
	EventAppointmentBooked EventType = "appointment_booked"
)

// Event represents a domain event emitted once per case update.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	CaseID    string      `json:"case_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CaseSubmittedPayload payload.
type CaseSubmittedPayload struct {
	CitizenID       string               `json:"citizen_id"`
	Title           string               `json:"title"`
	DeclaredUrgency *domain.UrgencyLevel `json:"declared_urgency,omitempty"`
}

// CaseStageAdvancedPayload payload.
type CaseStageAdvancedPayload struct {
	Stage     domain.CaseStage     `json:"stage"`
	Outcome   domain.UpdateOutcome `json:"outcome"`
	OldStatus domain.CaseStatus    `json:"old_status"`
	NewStatus domain.CaseStatus    `json:"new_status"`
	Detail    string               `json:"detail,omitempty"`
}

// CaseEscalatedPayload payload.
type CaseEscalatedPayload struct {
	Stage  domain.CaseStage `json:"stage"`
	Reason string           `json:"reason"`
}

// CaseFailedPayload payload.
type CaseFailedPayload struct {
	Stage  domain.CaseStage `json:"stage"`
	Detail string           `json:"detail"`
}

// CaseCancelledPayload payload.
type CaseCancelledPayload struct {
	Reason string `json:"reason,omitempty"`
}

// AppointmentBookedPayload payload.
type AppointmentBookedPayload struct {
	AppointmentID string    `json:"appointment_id"`
	ServiceID     string    `json:"service_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	DurationMins  int       `json:"duration_minutes"`
}
