package classify

import (
	"context"

	"go.uber.org/zap"
)

// Fallback composes an optional oracle strategy over the rule strategy.
// Classification never fails the pipeline: any oracle fault degrades to the
// rule result with the fault recorded in the outcome detail.
type Fallback struct {
	primary Strategy
	rules   *RuleClassifier
	logger  *zap.Logger
}

// NewFallback builds the composed classifier. primary may be nil, in which
// case the rule strategy runs alone and the outcome is never degraded.
func NewFallback(primary Strategy, rules *RuleClassifier, logger *zap.Logger) *Fallback {
	return &Fallback{primary: primary, rules: rules, logger: logger}
}

// Classify returns a result for every input.
func (f *Fallback) Classify(ctx context.Context, description string) (Result, Outcome) {
	if f.primary != nil {
		result, err := f.primary.Classify(ctx, description)
		if err == nil {
			return result, Outcome{}
		}
		f.logger.Warn("oracle unavailable, using rule classification", zap.Error(err))
		fallback, _ := f.rules.Classify(ctx, description)
		return fallback, Outcome{
			Degraded: true,
			Detail:   "oracle unavailable: " + err.Error(),
		}
	}

	result, _ := f.rules.Classify(ctx, description)
	return result, Outcome{}
}
