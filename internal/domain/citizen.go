package domain

import "time"

// Citizen is the domain model for people who submit cases.
type Citizen struct {
	ID               string
	Name             string
	Email            string
	Phone            string
	Address          string
	EmergencyContact string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
