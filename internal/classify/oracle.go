package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spec-kit/frontline-service/internal/domain"
)

// OracleClassifier delegates classification to the external reasoning
// backend. Every call is bounded by the configured timeout; any failure is
// returned to the caller, never swallowed here, so the fallback decorator
// can decide what degradation looks like.
type OracleClassifier struct {
	url    string
	client *http.Client
}

// NewOracleClassifier constructs the strategy.
func NewOracleClassifier(url string, timeout time.Duration) *OracleClassifier {
	return &OracleClassifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type oracleRequest struct {
	Description string `json:"description"`
}

type oracleResponse struct {
	Urgency    string  `json:"urgency"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Classify calls the oracle and validates its answer.
func (o *OracleClassifier) Classify(ctx context.Context, description string) (Result, error) {
	body, err := json.Marshal(oracleRequest{Description: description})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("oracle call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("oracle call: status %d", resp.StatusCode)
	}

	var parsed oracleResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, fmt.Errorf("oracle call: malformed response: %w", err)
	}

	urgency := domain.UrgencyLevel(parsed.Urgency)
	category := domain.ServiceCategory(parsed.Category)
	if !urgency.Valid() || !category.Valid() {
		return Result{}, fmt.Errorf("oracle call: unknown urgency %q or category %q", parsed.Urgency, parsed.Category)
	}

	return Result{
		Urgency:    urgency,
		Category:   category,
		Confidence: parsed.Confidence,
		Notes:      fmt.Sprintf("oracle triage: %s priority, %s service", urgency, category),
	}, nil
}
