package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/frontline-service/internal/classify"
	"github.com/spec-kit/frontline-service/internal/config"
	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/events"
	"github.com/spec-kit/frontline-service/internal/repository"
	"github.com/spec-kit/frontline-service/internal/repository/memory"
	"github.com/spec-kit/frontline-service/internal/scheduling"
)

type fakeMatcher struct {
	services []domain.Service
	err      error
}

func (f *fakeMatcher) Match(ctx context.Context, category domain.ServiceCategory, urgency domain.UrgencyLevel, location string) ([]domain.Service, error) {
	return f.services, f.err
}

type fakeNotifier struct {
	err   error
	calls int
}

func (f *fakeNotifier) SendConfirmation(ctx context.Context, c *domain.Case, citizen *domain.Citizen, svc *domain.Service, appt *domain.Appointment) error {
	f.calls++
	return f.err
}

type fakeRecorder struct {
	recorded []domain.CaseStatus
}

func (f *fakeRecorder) Record(ctx context.Context, c *domain.Case, final domain.CaseStatus) error {
	f.recorded = append(f.recorded, final)
	return nil
}

// flakyUpdateRepo fails the OK write for one stage; failure records for
// that stage still go through so terminal bookkeeping works.
type flakyUpdateRepo struct {
	repository.CaseUpdateRepository
	failStage domain.CaseStage
}

func (r *flakyUpdateRepo) Create(ctx context.Context, update *domain.CaseUpdate) error {
	if update.Stage == r.failStage && update.Outcome == domain.OutcomeOK {
		return errors.New("update store offline")
	}
	return r.CaseUpdateRepository.Create(ctx, update)
}

type fixture struct {
	orchestrator *Orchestrator
	cases        repository.CaseRepository
	citizens     repository.CitizenRepository
	services     repository.ServiceRepository
	appointments repository.AppointmentRepository
	updates      *flakyUpdateRepo
	ledger       scheduling.Ledger
	matcher      *fakeMatcher
	notifier     *fakeNotifier
	recorder     *fakeRecorder

	citizen *domain.Citizen
	service *domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		cases:        memory.NewCaseRepo(),
		citizens:     memory.NewCitizenRepo(),
		services:     memory.NewServiceRepo(),
		appointments: memory.NewAppointmentRepo(),
		updates:      &flakyUpdateRepo{CaseUpdateRepository: memory.NewCaseUpdateRepo()},
		ledger:       scheduling.NewMemoryLedger(),
		matcher:      &fakeMatcher{},
		notifier:     &fakeNotifier{},
		recorder:     &fakeRecorder{},
	}

	f.citizen = &domain.Citizen{Name: "Ada Smith", Email: "ada@example.com", Address: "North District"}
	if err := f.citizens.Create(ctx, f.citizen); err != nil {
		t.Fatalf("seed citizen: %v", err)
	}
	f.service = &domain.Service{
		Name:             "City Clinic",
		Category:         domain.CategoryMedical,
		Location:         "North District",
		CapacityPerHour:  2,
		OperatingHours:   "9:00-17:00",
		EmergencyCapable: true,
	}
	if err := f.services.Create(ctx, f.service); err != nil {
		t.Fatalf("seed service: %v", err)
	}
	f.matcher.services = []domain.Service{*f.service}

	cfg := config.SchedulingConfig{HorizonDays: 2}
	allocator := scheduling.NewAllocator(f.ledger, cfg, zap.NewNop())

	f.orchestrator = NewOrchestrator(Dependencies{
		CaseRepo:        f.cases,
		CitizenRepo:     f.citizens,
		ServiceRepo:     f.services,
		AppointmentRepo: f.appointments,
		UpdateRepo:      f.updates,
		Classifier:      classify.NewFallback(nil, classify.NewRuleClassifier(), zap.NewNop()),
		Matcher:         f.matcher,
		Allocator:       allocator,
		Ledger:          f.ledger,
		Notifier:        f.notifier,
		Metrics:         f.recorder,
		Dispatcher:      events.NewInMemoryDispatcher(),
		Logger:          zap.NewNop(),
	})
	return f
}

func (f *fixture) submitCase(t *testing.T, description string) *domain.Case {
	t.Helper()
	c := &domain.Case{
		ReferenceKey: "CSE-TEST0001",
		CitizenID:    f.citizen.ID,
		Title:        "help request",
		Description:  description,
		Urgency:      domain.UrgencyLow,
		Status:       domain.CaseStatusSubmitted,
	}
	if err := f.cases.Create(context.Background(), c); err != nil {
		t.Fatalf("seed case: %v", err)
	}
	return c
}

func stagesOf(updates []domain.CaseUpdate) []domain.CaseStage {
	stages := make([]domain.CaseStage, 0, len(updates))
	for _, u := range updates {
		stages = append(stages, u.Stage)
	}
	return stages
}

func TestProcessHappyPath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.submitCase(t, "severe pain, need a doctor urgently")

	if err := f.orchestrator.Process(ctx, c.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, err := f.cases.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("reload case: %v", err)
	}
	if got.Status != domain.CaseStatusComplete {
		t.Fatalf("status = %s, want COMPLETE", got.Status)
	}
	if got.Urgency != domain.UrgencyCritical {
		t.Errorf("urgency = %s, want CRITICAL", got.Urgency)
	}
	if got.ServiceID == nil || *got.ServiceID != f.service.ID {
		t.Error("case should carry the matched service")
	}
	if got.EstimatedMins != 60 {
		t.Errorf("estimated minutes = %d, want 60", got.EstimatedMins)
	}
	if got.ClosedAt == nil {
		t.Error("complete case should carry a close time")
	}

	if got.AppointmentID == nil {
		t.Fatal("case should carry a booking")
	}
	appt, err := f.appointments.GetByID(ctx, *got.AppointmentID)
	if err != nil {
		t.Fatalf("reload appointment: %v", err)
	}
	if appt.Status != domain.AppointmentStatusConfirmed {
		t.Errorf("appointment status = %s, want CONFIRMED", appt.Status)
	}
	if appt.DurationMins != 60 {
		t.Errorf("appointment duration = %d, want 60", appt.DurationMins)
	}

	updates, err := f.updates.ListByCase(ctx, c.ID)
	if err != nil {
		t.Fatalf("list updates: %v", err)
	}
	wantStages := []domain.CaseStage{
		domain.StageTriage,
		domain.StageMatching,
		domain.StageBooking,
		domain.StageNotification,
		domain.StageCompletion,
	}
	gotStages := stagesOf(updates)
	if len(gotStages) != len(wantStages) {
		t.Fatalf("trail stages = %v, want %v", gotStages, wantStages)
	}
	for i := range wantStages {
		if gotStages[i] != wantStages[i] {
			t.Fatalf("trail stages = %v, want %v", gotStages, wantStages)
		}
		if updates[i].Outcome != domain.OutcomeOK {
			t.Errorf("stage %s outcome = %s, want OK", updates[i].Stage, updates[i].Outcome)
		}
	}

	if f.notifier.calls != 1 {
		t.Errorf("notifier called %d times, want 1", f.notifier.calls)
	}
	if len(f.recorder.recorded) != 1 || f.recorder.recorded[0] != domain.CaseStatusComplete {
		t.Errorf("recorded = %v, want one COMPLETE", f.recorder.recorded)
	}
}

func TestProcessEscalatesWhenNoService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.matcher.services = nil
	c := f.submitCase(t, "severe pain, need a doctor")

	if err := f.orchestrator.Process(ctx, c.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, _ := f.cases.GetByID(ctx, c.ID)
	if got.Status != domain.CaseStatusEscalated {
		t.Fatalf("status = %s, want ESCALATED", got.Status)
	}
	if got.TerminalStage == nil || *got.TerminalStage != domain.StageMatching {
		t.Error("terminal stage should be MATCHING")
	}
	if got.TerminalReason == nil || *got.TerminalReason != "no matching service" {
		t.Errorf("terminal reason = %v", got.TerminalReason)
	}

	updates, _ := f.updates.ListByCase(ctx, c.ID)
	last := updates[len(updates)-1]
	if last.Stage != domain.StageMatching || last.Outcome != domain.OutcomeEscalated {
		t.Errorf("last update = %s/%s, want MATCHING/ESCALATED", last.Stage, last.Outcome)
	}
	if len(f.recorder.recorded) != 1 || f.recorder.recorded[0] != domain.CaseStatusEscalated {
		t.Errorf("recorded = %v, want one ESCALATED", f.recorder.recorded)
	}
}

func TestProcessEscalatesWhenCapacityExhausted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.submitCase(t, "severe pain, need a doctor")

	// Saturate every bookable slot well past the two-day horizon.
	now := time.Now()
	for day := 0; day < 5; day++ {
		date := now.AddDate(0, 0, day).Format("2006-01-02")
		for hour := 0; hour < 24; hour++ {
			slot := scheduling.Slot{ServiceID: f.service.ID, Date: date, Hour: hour}
			for i := 0; i < f.service.CapacityPerHour; i++ {
				if _, err := f.ledger.Reserve(ctx, slot, f.service.CapacityPerHour); err != nil {
					t.Fatalf("seed reserve: %v", err)
				}
			}
		}
	}

	if err := f.orchestrator.Process(ctx, c.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, _ := f.cases.GetByID(ctx, c.ID)
	if got.Status != domain.CaseStatusEscalated {
		t.Fatalf("status = %s, want ESCALATED", got.Status)
	}
	if got.TerminalReason == nil || *got.TerminalReason != "capacity exhausted" {
		t.Errorf("terminal reason = %v, want capacity exhausted", got.TerminalReason)
	}
	if got.AppointmentID != nil {
		t.Error("escalated case must not hold a booking")
	}
}

func TestProcessDegradedNotificationStillCompletes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.notifier.err = errors.New("smtp relay down")
	c := f.submitCase(t, "severe pain, need a doctor")

	if err := f.orchestrator.Process(ctx, c.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, _ := f.cases.GetByID(ctx, c.ID)
	if got.Status != domain.CaseStatusComplete {
		t.Fatalf("status = %s, want COMPLETE despite failed delivery", got.Status)
	}
	if got.AppointmentID == nil {
		t.Fatal("booking must survive a failed delivery")
	}

	updates, _ := f.updates.ListByCase(ctx, c.ID)
	var notification *domain.CaseUpdate
	for i := range updates {
		if updates[i].Stage == domain.StageNotification {
			notification = &updates[i]
		}
	}
	if notification == nil {
		t.Fatal("missing notification update")
	}
	if notification.Outcome != domain.OutcomeDegraded {
		t.Errorf("notification outcome = %s, want DEGRADED", notification.Outcome)
	}
	if !strings.Contains(notification.Detail, "smtp relay down") {
		t.Errorf("notification detail should carry the fault, got %q", notification.Detail)
	}
}

func TestProcessResumesFromPersistedStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.submitCase(t, "severe pain, need a doctor")

	// Simulate a prior run that stopped after triage.
	category := domain.CategoryMedical
	c.Urgency = domain.UrgencyCritical
	c.ServiceCategory = &category
	c.EstimatedMins = 60
	c.Status = domain.CaseStatusTriaged
	if err := f.cases.Update(ctx, c); err != nil {
		t.Fatalf("seed triaged case: %v", err)
	}

	if err := f.orchestrator.Process(ctx, c.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got, _ := f.cases.GetByID(ctx, c.ID)
	if got.Status != domain.CaseStatusComplete {
		t.Fatalf("status = %s, want COMPLETE", got.Status)
	}
	updates, _ := f.updates.ListByCase(ctx, c.ID)
	for _, u := range updates {
		if u.Stage == domain.StageTriage {
			t.Error("resumed run must not repeat the triage stage")
		}
	}
}

func TestProcessTerminalCaseIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.submitCase(t, "severe pain, need a doctor")

	if err := f.orchestrator.Process(ctx, c.ID); err != nil {
		t.Fatalf("first process: %v", err)
	}
	trailBefore, _ := f.updates.ListByCase(ctx, c.ID)

	if err := f.orchestrator.Process(ctx, c.ID); err != nil {
		t.Fatalf("second process: %v", err)
	}
	trailAfter, _ := f.updates.ListByCase(ctx, c.ID)
	if len(trailAfter) != len(trailBefore) {
		t.Errorf("terminal case reprocessing grew the trail from %d to %d entries", len(trailBefore), len(trailAfter))
	}
}

func TestCancelReleasesSlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.submitCase(t, "severe pain, need a doctor")

	// Drive to SCHEDULED by hand: reserve the slot and attach a booking.
	scheduledAt := time.Now().AddDate(0, 0, 1).Truncate(time.Hour)
	slot := scheduling.SlotFor(f.service.ID, scheduledAt)
	if ok, err := f.ledger.Reserve(ctx, slot, 1); err != nil || !ok {
		t.Fatalf("seed reserve: ok=%v err=%v", ok, err)
	}
	appt := &domain.Appointment{
		CaseID:       c.ID,
		ServiceID:    f.service.ID,
		ScheduledAt:  scheduledAt,
		DurationMins: 60,
		Status:       domain.AppointmentStatusConfirmed,
	}
	if err := f.appointments.Create(ctx, appt); err != nil {
		t.Fatalf("seed appointment: %v", err)
	}
	c.AppointmentID = &appt.ID
	c.ServiceID = &f.service.ID
	c.Status = domain.CaseStatusScheduled
	if err := f.cases.Update(ctx, c); err != nil {
		t.Fatalf("seed scheduled case: %v", err)
	}

	cancelled, err := f.orchestrator.Cancel(ctx, c.ID, "citizen recovered")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.CaseStatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", cancelled.Status)
	}

	gotAppt, _ := f.appointments.GetByID(ctx, appt.ID)
	if gotAppt.Status != domain.AppointmentStatusCancelled {
		t.Errorf("appointment status = %s, want CANCELLED", gotAppt.Status)
	}

	// The freed slot is reservable again at capacity one.
	ok, err := f.ledger.Reserve(ctx, slot, 1)
	if err != nil {
		t.Fatalf("re-reserve: %v", err)
	}
	if !ok {
		t.Error("cancelled booking should free its slot")
	}

	if len(f.recorder.recorded) != 1 || f.recorder.recorded[0] != domain.CaseStatusCancelled {
		t.Errorf("recorded = %v, want one CANCELLED", f.recorder.recorded)
	}
}

func TestCancelTerminalCaseConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.submitCase(t, "severe pain, need a doctor")

	if err := f.orchestrator.Process(ctx, c.ID); err != nil {
		t.Fatalf("process: %v", err)
	}
	if _, err := f.orchestrator.Cancel(ctx, c.ID, "too late"); err == nil {
		t.Fatal("cancelling a terminal case must conflict")
	}
}

func TestProcessInternalFaultFailsCase(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.matcher.err = errors.New("directory offline")
	c := f.submitCase(t, "severe pain, need a doctor")

	if err := f.orchestrator.Process(ctx, c.ID); err == nil {
		t.Fatal("internal fault should surface an error")
	}

	got, _ := f.cases.GetByID(ctx, c.ID)
	if got.Status != domain.CaseStatusFailed {
		t.Fatalf("status = %s, want FAILED", got.Status)
	}
	if got.TerminalStage == nil || *got.TerminalStage != domain.StageMatching {
		t.Error("terminal stage should be MATCHING")
	}
	if len(f.recorder.recorded) != 1 || f.recorder.recorded[0] != domain.CaseStatusFailed {
		t.Errorf("recorded = %v, want one FAILED", f.recorder.recorded)
	}
}

func TestBookingPersistFaultReleasesSlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.updates.failStage = domain.StageBooking
	c := f.submitCase(t, "severe pain, need a doctor")

	if err := f.orchestrator.Process(ctx, c.ID); err == nil {
		t.Fatal("persist fault should surface an error")
	}

	got, _ := f.cases.GetByID(ctx, c.ID)
	if got.Status != domain.CaseStatusFailed {
		t.Fatalf("status = %s, want FAILED", got.Status)
	}
	if got.AppointmentID != nil {
		t.Error("failed case must not keep the booking")
	}

	appt, err := f.appointments.GetByCase(ctx, c.ID)
	if err != nil {
		t.Fatalf("load appointment: %v", err)
	}
	if appt.Status != domain.AppointmentStatusCancelled {
		t.Errorf("appointment status = %s, want CANCELLED", appt.Status)
	}

	// The reservation was handed back the moment the advance failed.
	usage, err := f.ledger.DayUsage(ctx, f.service.ID, appt.ScheduledAt.Format("2006-01-02"))
	if err != nil {
		t.Fatalf("day usage: %v", err)
	}
	if usage != 0 {
		t.Errorf("day usage = %d after rollback, want 0", usage)
	}
}
