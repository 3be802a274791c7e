package classify

import (
	"context"

	"github.com/spec-kit/frontline-service/internal/domain"
)

// Result is a classification of a case description.
type Result struct {
	Urgency    domain.UrgencyLevel
	Category   domain.ServiceCategory
	Confidence float64
	Notes      string
}

// Strategy maps a raw case description to urgency and category. The rule
// strategy never returns an error; the oracle strategy may.
type Strategy interface {
	Classify(ctx context.Context, description string) (Result, error)
}

// Outcome reports how a classification was obtained.
type Outcome struct {
	Degraded bool
	Detail   string
}
