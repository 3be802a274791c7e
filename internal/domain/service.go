package domain

import "time"

// ServiceCategory enumerates the kind of care a provider offers.
type ServiceCategory string

const (
	CategoryMedical        ServiceCategory = "MEDICAL"
	CategoryEmergency      ServiceCategory = "EMERGENCY"
	CategorySocial         ServiceCategory = "SOCIAL"
	CategoryAdministrative ServiceCategory = "ADMINISTRATIVE"
)

// Valid reports whether the value is a known category.
func (c ServiceCategory) Valid() bool {
	switch c {
	case CategoryMedical, CategoryEmergency, CategorySocial, CategoryAdministrative:
		return true
	}
	return false
}

// Service is a provider of a category of care with bookable hourly capacity.
// OperatingHours uses the "9:00-17:00" form; appointments are booked on
// whole-hour slots inside that window.
type Service struct {
	ID               string
	Name             string
	Category         ServiceCategory
	Department       string
	Location         string
	CapacityPerHour  int
	OperatingHours   string
	ContactInfo      string
	EmergencyCapable bool
	CreatedAt        time.Time
}
