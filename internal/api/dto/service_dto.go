package dto

import (
	"time"

	"github.com/spec-kit/frontline-service/internal/domain"
)

// CreateServiceRequest payload.
type CreateServiceRequest struct {
	Name             string `json:"name"`
	Category         string `json:"category"`
	Department       string `json:"department"`
	Location         string `json:"location"`
	CapacityPerHour  int    `json:"capacity_per_hour"`
	OperatingHours   string `json:"operating_hours"`
	ContactInfo      string `json:"contact_info"`
	EmergencyCapable bool   `json:"emergency_capable"`
}

// ServiceResponse response.
type ServiceResponse struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	Category         domain.ServiceCategory `json:"category"`
	Department       string                 `json:"department,omitempty"`
	Location         string                 `json:"location,omitempty"`
	CapacityPerHour  int                    `json:"capacity_per_hour"`
	OperatingHours   string                 `json:"operating_hours"`
	ContactInfo      string                 `json:"contact_info,omitempty"`
	EmergencyCapable bool                   `json:"emergency_capable"`
	CreatedAt        time.Time              `json:"created_at"`
}
