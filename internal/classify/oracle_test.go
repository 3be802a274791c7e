package classify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spec-kit/frontline-service/internal/domain"
)

func TestOracleClassifier(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"urgency":"HIGH","category":"MEDICAL","confidence":0.91}`))
	}))
	defer server.Close()

	oracle := NewOracleClassifier(server.URL, 2*time.Second)
	result, err := oracle.Classify(context.Background(), "knee injury")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if result.Urgency != domain.UrgencyHigh || result.Category != domain.CategoryMedical {
		t.Errorf("unexpected result %+v", result)
	}
	if result.Confidence != 0.91 {
		t.Errorf("confidence = %.2f, want 0.91", result.Confidence)
	}
}

func TestOracleClassifierRejectsBadEnum(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"urgency":"WHENEVER","category":"MEDICAL","confidence":0.5}`))
	}))
	defer server.Close()

	oracle := NewOracleClassifier(server.URL, 2*time.Second)
	if _, err := oracle.Classify(context.Background(), "anything"); err == nil {
		t.Fatal("unknown urgency enum must be rejected")
	}
}

func TestOracleClassifierStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	oracle := NewOracleClassifier(server.URL, 2*time.Second)
	if _, err := oracle.Classify(context.Background(), "anything"); err == nil {
		t.Fatal("non-2xx status must be an error")
	}
}
