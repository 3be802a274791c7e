package domain

import "time"

// CaseStatus enumerates lifecycle states for cases.
type CaseStatus string

const (
	CaseStatusSubmitted CaseStatus = "SUBMITTED"
	CaseStatusTriaged   CaseStatus = "TRIAGED"
	CaseStatusMatched   CaseStatus = "MATCHED"
	CaseStatusScheduled CaseStatus = "SCHEDULED"
	CaseStatusNotified  CaseStatus = "NOTIFIED"
	CaseStatusComplete  CaseStatus = "COMPLETE"
	CaseStatusEscalated CaseStatus = "ESCALATED"
	CaseStatusFailed    CaseStatus = "FAILED"
	CaseStatusCancelled CaseStatus = "CANCELLED"
)

// IsTerminal reports whether the status is absorbing.
func (s CaseStatus) IsTerminal() bool {
	switch s {
	case CaseStatusComplete, CaseStatusEscalated, CaseStatusFailed, CaseStatusCancelled:
		return true
	}
	return false
}

// UrgencyLevel enumerates case severity.
type UrgencyLevel string

const (
	UrgencyCritical UrgencyLevel = "CRITICAL"
	UrgencyHigh     UrgencyLevel = "HIGH"
	UrgencyMedium   UrgencyLevel = "MEDIUM"
	UrgencyLow      UrgencyLevel = "LOW"
)

// urgencyRanks orders urgencies for tie-breaks (higher is more urgent).
var urgencyRanks = map[UrgencyLevel]int{
	UrgencyCritical: 4,
	UrgencyHigh:     3,
	UrgencyMedium:   2,
	UrgencyLow:      1,
}

// Rank returns the ordinal rank of the urgency; unknown values rank lowest.
func (u UrgencyLevel) Rank() int {
	return urgencyRanks[u]
}

// Valid reports whether the value is one of the known urgency levels.
func (u UrgencyLevel) Valid() bool {
	_, ok := urgencyRanks[u]
	return ok
}

// Case is the aggregate for citizen service requests.
type Case struct {
	ID              string
	ReferenceKey    string
	CitizenID       string
	Title           string
	Description     string
	DeclaredUrgency *UrgencyLevel
	Urgency         UrgencyLevel
	Status          CaseStatus
	ServiceCategory *ServiceCategory
	ServiceID       *string
	AppointmentID   *string
	TriageNotes     string
	EstimatedMins   int
	TerminalStage   *CaseStage
	TerminalReason  *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ClosedAt        *time.Time
}
