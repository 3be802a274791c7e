package domain

import "time"

// WorkerRole enumerates console access levels.
type WorkerRole string

const (
	WorkerRoleAdmin    WorkerRole = "ADMIN"
	WorkerRoleOperator WorkerRole = "OPERATOR"
)

// WorkerAccount is a frontline worker with console access.
type WorkerAccount struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         WorkerRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
