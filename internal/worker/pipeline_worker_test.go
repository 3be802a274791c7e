package worker

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/frontline-service/internal/classify"
	"github.com/spec-kit/frontline-service/internal/config"
	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/events"
	"github.com/spec-kit/frontline-service/internal/pipeline"
	"github.com/spec-kit/frontline-service/internal/repository"
	"github.com/spec-kit/frontline-service/internal/repository/memory"
	"github.com/spec-kit/frontline-service/internal/scheduling"
)

type noopMatcher struct{ svc domain.Service }

func (m *noopMatcher) Match(ctx context.Context, category domain.ServiceCategory, urgency domain.UrgencyLevel, location string) ([]domain.Service, error) {
	return []domain.Service{m.svc}, nil
}

type noopNotifier struct{}

func (noopNotifier) SendConfirmation(ctx context.Context, c *domain.Case, citizen *domain.Citizen, svc *domain.Service, appt *domain.Appointment) error {
	return nil
}

type noopRecorder struct{}

func (noopRecorder) Record(ctx context.Context, c *domain.Case, final domain.CaseStatus) error {
	return nil
}

func newTestPipeline(t *testing.T) (*pipeline.Orchestrator, repository.CaseRepository, string) {
	t.Helper()
	ctx := context.Background()

	cases := memory.NewCaseRepo()
	citizens := memory.NewCitizenRepo()
	services := memory.NewServiceRepo()

	citizen := &domain.Citizen{Name: "Ada Smith", Email: "ada@example.com"}
	if err := citizens.Create(ctx, citizen); err != nil {
		t.Fatalf("seed citizen: %v", err)
	}
	svc := &domain.Service{
		Name:             "City Clinic",
		Category:         domain.CategoryMedical,
		CapacityPerHour:  4,
		OperatingHours:   "0:00-23:00",
		EmergencyCapable: true,
	}
	if err := services.Create(ctx, svc); err != nil {
		t.Fatalf("seed service: %v", err)
	}

	ledger := scheduling.NewMemoryLedger()
	orchestrator := pipeline.NewOrchestrator(pipeline.Dependencies{
		CaseRepo:        cases,
		CitizenRepo:     citizens,
		ServiceRepo:     services,
		AppointmentRepo: memory.NewAppointmentRepo(),
		UpdateRepo:      memory.NewCaseUpdateRepo(),
		Classifier:      classify.NewFallback(nil, classify.NewRuleClassifier(), zap.NewNop()),
		Matcher:         &noopMatcher{svc: *svc},
		Allocator:       scheduling.NewAllocator(ledger, config.SchedulingConfig{HorizonDays: 2}, zap.NewNop()),
		Ledger:          ledger,
		Notifier:        noopNotifier{},
		Metrics:         noopRecorder{},
		Dispatcher:      events.NewInMemoryDispatcher(),
		Logger:          zap.NewNop(),
	})

	c := &domain.Case{
		ReferenceKey: "CSE-POOLTEST",
		CitizenID:    citizen.ID,
		Title:        "help",
		Description:  "severe pain, need a doctor",
		Urgency:      domain.UrgencyLow,
		Status:       domain.CaseStatusSubmitted,
	}
	if err := cases.Create(ctx, c); err != nil {
		t.Fatalf("seed case: %v", err)
	}
	return orchestrator, cases, c.ID
}

func TestPoolProcessesEnqueuedCase(t *testing.T) {
	orchestrator, cases, caseID := newTestPipeline(t)
	pool := NewPool(orchestrator, 2, 4, zap.NewNop())
	defer pool.Stop()

	if !pool.Enqueue(caseID) {
		t.Fatal("enqueue should succeed")
	}

	deadline := time.After(5 * time.Second)
	for {
		c, err := cases.GetByID(context.Background(), caseID)
		if err != nil {
			t.Fatalf("reload case: %v", err)
		}
		if c.Status == domain.CaseStatusComplete {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("case stuck in %s", c.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestPoolStopDrainsAndRefuses(t *testing.T) {
	orchestrator, cases, caseID := newTestPipeline(t)
	pool := NewPool(orchestrator, 1, 4, zap.NewNop())

	if !pool.Enqueue(caseID) {
		t.Fatal("enqueue should succeed")
	}
	pool.Stop()

	c, err := cases.GetByID(context.Background(), caseID)
	if err != nil {
		t.Fatalf("reload case: %v", err)
	}
	if c.Status != domain.CaseStatusComplete {
		t.Errorf("stop should drain in-flight work, case is %s", c.Status)
	}

	if pool.Enqueue(caseID) {
		t.Error("enqueue after stop must be refused")
	}
	// Stop is idempotent.
	pool.Stop()
}
