package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/frontline-service/internal/domain"
)

const (
	keywordConfidence = 0.7
	defaultConfidence = 0.4
)

var urgencyKeywords = []struct {
	urgency domain.UrgencyLevel
	words   []string
}{
	{domain.UrgencyCritical, []string{"emergency", "urgent", "critical", "severe", "life-threatening"}},
	{domain.UrgencyHigh, []string{"pain", "injury", "bleeding", "fever"}},
	{domain.UrgencyMedium, []string{"appointment", "consultation", "check-up"}},
}

var categoryKeywords = []struct {
	category domain.ServiceCategory
	words    []string
}{
	{domain.CategoryMedical, []string{"medical", "doctor", "hospital", "health", "pain", "injury"}},
	{domain.CategoryEmergency, []string{"emergency", "police", "fire", "ambulance"}},
	{domain.CategorySocial, []string{"social", "welfare", "benefits", "housing"}},
}

// RuleClassifier is the deterministic keyword strategy. It is total and
// pure: every input string, including the empty string, yields a result,
// and no external calls are made. This is the mandatory fallback path.
type RuleClassifier struct{}

// NewRuleClassifier constructs the strategy.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

// Classify never returns an error.
func (r *RuleClassifier) Classify(ctx context.Context, description string) (Result, error) {
	lower := strings.ToLower(description)

	urgency := domain.UrgencyLow
	urgencyHit := false
	for _, entry := range urgencyKeywords {
		if containsAny(lower, entry.words) {
			urgency = entry.urgency
			urgencyHit = true
			break
		}
	}

	category := domain.CategoryAdministrative
	categoryHit := false
	for _, entry := range categoryKeywords {
		if containsAny(lower, entry.words) {
			category = entry.category
			categoryHit = true
			break
		}
	}

	confidence := defaultConfidence
	if urgencyHit && categoryHit {
		confidence = keywordConfidence
	}

	return Result{
		Urgency:    urgency,
		Category:   category,
		Confidence: confidence,
		Notes:      fmt.Sprintf("rule triage: %s priority, %s service", urgency, category),
	}, nil
}

func containsAny(haystack string, words []string) bool {
	for _, word := range words {
		if strings.Contains(haystack, word) {
			return true
		}
	}
	return false
}

// EstimateDuration maps urgency to an expected appointment length in minutes.
func EstimateDuration(urgency domain.UrgencyLevel) int {
	switch urgency {
	case domain.UrgencyCritical:
		return 60
	case domain.UrgencyHigh:
		return 45
	case domain.UrgencyMedium:
		return 30
	default:
		return 15
	}
}
