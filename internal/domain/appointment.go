package domain

import "time"

// AppointmentStatus enumerates booking states.
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
)

// Appointment binds one case to one service at a specific hour slot.
type Appointment struct {
	ID               string
	CaseID           string
	ServiceID        string
	ScheduledAt      time.Time
	DurationMins     int
	Status           AppointmentStatus
	ConfirmationSent bool
	Notes            string
	CreatedAt        time.Time
}
