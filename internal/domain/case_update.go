package domain

import "time"

// CaseStage identifies which pipeline stage produced an update.
type CaseStage string

const (
	StageSubmission   CaseStage = "SUBMISSION"
	StageTriage       CaseStage = "TRIAGE"
	StageMatching     CaseStage = "MATCHING"
	StageBooking      CaseStage = "BOOKING"
	StageNotification CaseStage = "NOTIFICATION"
	StageCompletion   CaseStage = "COMPLETION"
	StageCancellation CaseStage = "CANCELLATION"
)

// UpdateOutcome classifies how a stage ended.
type UpdateOutcome string

const (
	OutcomeOK        UpdateOutcome = "OK"
	OutcomeDegraded  UpdateOutcome = "DEGRADED"
	OutcomeEscalated UpdateOutcome = "ESCALATED"
	OutcomeFailed    UpdateOutcome = "FAILED"
)

// CaseUpdate is an append-only audit record. Entries are never mutated or
// deleted; a case's updates form the record of every stage attempted, in
// the order attempted.
type CaseUpdate struct {
	ID        string
	CaseID    string
	Stage     CaseStage
	Outcome   UpdateOutcome
	Detail    string
	CreatedAt time.Time
}
