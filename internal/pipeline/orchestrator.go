package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/frontline-service/internal/classify"
	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/events"
	"github.com/spec-kit/frontline-service/internal/repository"
	"github.com/spec-kit/frontline-service/internal/scheduling"
	apperrors "github.com/spec-kit/frontline-service/pkg/util"
)

// Matcher ranks compatible services for a classified case.
type Matcher interface {
	Match(ctx context.Context, category domain.ServiceCategory, urgency domain.UrgencyLevel, location string) ([]domain.Service, error)
}

// Notifier delivers the plain-language confirmation for a scheduled case.
// A delivery error degrades the notification stage; it never rolls back
// the booking.
type Notifier interface {
	SendConfirmation(ctx context.Context, c *domain.Case, citizen *domain.Citizen, svc *domain.Service, appt *domain.Appointment) error
}

// MetricsRecorder accounts for a case reaching a terminal state. Must be
// safe to call more than once per case+status.
type MetricsRecorder interface {
	Record(ctx context.Context, c *domain.Case, final domain.CaseStatus) error
}

// Dependencies bundles orchestrator collaborators.
type Dependencies struct {
	CaseRepo        repository.CaseRepository
	CitizenRepo     repository.CitizenRepository
	ServiceRepo     repository.ServiceRepository
	AppointmentRepo repository.AppointmentRepository
	UpdateRepo      repository.CaseUpdateRepository
	Classifier      *classify.Fallback
	Matcher         Matcher
	Allocator       *scheduling.Allocator
	Ledger          scheduling.Ledger
	Notifier        Notifier
	Metrics         MetricsRecorder
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// Orchestrator drives a case through the triage, matching, booking,
// notification and completion stages. Stages for one case always run
// sequentially; exactly one CaseUpdate is written per transition, before
// the status advances, so the trail is gap-free and ordered.
type Orchestrator struct {
	cases        repository.CaseRepository
	citizens     repository.CitizenRepository
	services     repository.ServiceRepository
	appointments repository.AppointmentRepository
	updates      repository.CaseUpdateRepository
	classifier   *classify.Fallback
	matcher      Matcher
	allocator    *scheduling.Allocator
	ledger       scheduling.Ledger
	notifier     Notifier
	metrics      MetricsRecorder
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// NewOrchestrator constructs the pipeline.
func NewOrchestrator(deps Dependencies) *Orchestrator {
	return &Orchestrator{
		cases:        deps.CaseRepo,
		citizens:     deps.CitizenRepo,
		services:     deps.ServiceRepo,
		appointments: deps.AppointmentRepo,
		updates:      deps.UpdateRepo,
		classifier:   deps.Classifier,
		matcher:      deps.Matcher,
		allocator:    deps.Allocator,
		ledger:       deps.Ledger,
		notifier:     deps.Notifier,
		metrics:      deps.Metrics,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
	}
}

// Process runs a case from its current status to a terminal or fully
// notified state. Re-entering a partially processed case resumes at the
// last persisted status. Business exhaustion (no service, no slot) ends in
// ESCALATED; only unexpected faults end in FAILED.
func (o *Orchestrator) Process(ctx context.Context, caseID string) (err error) {
	c, err := o.cases.GetByID(ctx, caseID)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("pipeline panic",
				zap.String("case_id", caseID),
				zap.Any("panic", r))
			err = o.markFailed(ctx, c, stageFor(c.Status), fmt.Sprintf("internal fault: %v", r))
		}
	}()

	for !c.Status.IsTerminal() {
		var stageErr error
		entered := c.Status
		switch c.Status {
		case domain.CaseStatusSubmitted:
			stageErr = o.triage(ctx, c)
		case domain.CaseStatusTriaged:
			stageErr = o.match(ctx, c)
		case domain.CaseStatusMatched:
			stageErr = o.book(ctx, c)
		case domain.CaseStatusScheduled:
			stageErr = o.notify(ctx, c)
		case domain.CaseStatusNotified:
			return o.complete(ctx, c)
		default:
			return apperrors.NewConflict("case in unknown status", map[string]any{
				"case_id": c.ID,
				"status":  c.Status,
			})
		}
		if stageErr != nil {
			return o.markFailed(ctx, c, stageFor(entered), stageErr.Error())
		}
	}
	return nil
}

func (o *Orchestrator) triage(ctx context.Context, c *domain.Case) error {
	result, outcome := o.classifier.Classify(ctx, c.Description)

	urgency := result.Urgency
	if c.DeclaredUrgency != nil && c.DeclaredUrgency.Rank() > urgency.Rank() {
		urgency = *c.DeclaredUrgency
	}

	c.Urgency = urgency
	c.ServiceCategory = &result.Category
	c.EstimatedMins = classify.EstimateDuration(urgency)
	c.TriageNotes = result.Notes

	detail := fmt.Sprintf("triaged as %s priority requiring %s service (confidence %.2f)",
		urgency, result.Category, result.Confidence)
	updateOutcome := domain.OutcomeOK
	if outcome.Degraded {
		updateOutcome = domain.OutcomeDegraded
		detail += "; " + outcome.Detail
	}

	return o.advance(ctx, c, domain.StageTriage, updateOutcome, detail, domain.CaseStatusTriaged)
}

func (o *Orchestrator) match(ctx context.Context, c *domain.Case) error {
	category := domain.CategoryAdministrative
	if c.ServiceCategory != nil {
		category = *c.ServiceCategory
	}

	citizen, err := o.citizens.GetByID(ctx, c.CitizenID)
	if err != nil {
		return fmt.Errorf("load citizen: %w", err)
	}

	candidates, err := o.matcher.Match(ctx, category, c.Urgency, citizen.Address)
	if err != nil {
		return fmt.Errorf("match services: %w", err)
	}
	if len(candidates) == 0 {
		return o.escalate(ctx, c, domain.StageMatching, "no matching service")
	}

	selected := candidates[0]
	c.ServiceID = &selected.ID

	detail := fmt.Sprintf("assigned to %s at %s", selected.Name, selected.Location)
	return o.advance(ctx, c, domain.StageMatching, domain.OutcomeOK, detail, domain.CaseStatusMatched)
}

func (o *Orchestrator) book(ctx context.Context, c *domain.Case) error {
	if c.ServiceID == nil {
		return fmt.Errorf("case %s matched without service", c.ID)
	}
	svc, err := o.services.GetByID(ctx, *c.ServiceID)
	if err != nil {
		return fmt.Errorf("load service: %w", err)
	}

	slot, found, err := o.allocator.FindSlot(ctx, svc, c.Urgency, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("allocate slot: %w", err)
	}
	if !found {
		return o.escalate(ctx, c, domain.StageBooking, "capacity exhausted")
	}

	scheduledAt, err := slot.StartTime(time.Local)
	if err != nil {
		o.releaseSlot(ctx, slot)
		return fmt.Errorf("slot start time: %w", err)
	}

	appt := &domain.Appointment{
		CaseID:       c.ID,
		ServiceID:    svc.ID,
		ScheduledAt:  scheduledAt,
		DurationMins: c.EstimatedMins,
		Status:       domain.AppointmentStatusPending,
		Notes:        fmt.Sprintf("auto-booked %s priority appointment", c.Urgency),
	}
	if err := o.appointments.Create(ctx, appt); err != nil {
		o.releaseSlot(ctx, slot)
		return fmt.Errorf("create appointment: %w", err)
	}
	appt.Status = domain.AppointmentStatusConfirmed
	if err := o.appointments.Update(ctx, appt); err != nil {
		o.releaseSlot(ctx, slot)
		return fmt.Errorf("confirm appointment: %w", err)
	}

	c.AppointmentID = &appt.ID
	o.publish(ctx, events.Event{
		Type:   events.EventAppointmentBooked,
		CaseID: c.ID,
		Payload: events.AppointmentBookedPayload{
			AppointmentID: appt.ID,
			ServiceID:     svc.ID,
			ScheduledAt:   scheduledAt,
			DurationMins:  appt.DurationMins,
		},
	})

	detail := fmt.Sprintf("appointment scheduled for %s at %s",
		scheduledAt.Format("2006-01-02 15:04"), svc.Name)
	if err := o.advance(ctx, c, domain.StageBooking, domain.OutcomeOK, detail, domain.CaseStatusScheduled); err != nil {
		// The booking never made it onto the case. Give the reservation
		// back; a FAILED case cannot be cancelled later to free it.
		appt.Status = domain.AppointmentStatusCancelled
		if uerr := o.appointments.Update(ctx, appt); uerr != nil {
			o.logger.Warn("appointment rollback failed",
				zap.String("appointment_id", appt.ID),
				zap.Error(uerr))
		}
		c.AppointmentID = nil
		o.releaseSlot(ctx, slot)
		return err
	}
	return nil
}

func (o *Orchestrator) notify(ctx context.Context, c *domain.Case) error {
	citizen, err := o.citizens.GetByID(ctx, c.CitizenID)
	if err != nil {
		return fmt.Errorf("load citizen: %w", err)
	}
	var svc *domain.Service
	if c.ServiceID != nil {
		if svc, err = o.services.GetByID(ctx, *c.ServiceID); err != nil {
			return fmt.Errorf("load service: %w", err)
		}
	}
	var appt *domain.Appointment
	if c.AppointmentID != nil {
		if appt, err = o.appointments.GetByID(ctx, *c.AppointmentID); err != nil {
			return fmt.Errorf("load appointment: %w", err)
		}
	}

	// Best-effort: a failed delivery is recorded but never rolls back the
	// booking, and the case still advances.
	if err := o.notifier.SendConfirmation(ctx, c, citizen, svc, appt); err != nil {
		o.logger.Warn("confirmation delivery failed",
			zap.String("case_id", c.ID),
			zap.Error(err))
		detail := "confirmation delivery failed: " + err.Error()
		return o.advance(ctx, c, domain.StageNotification, domain.OutcomeDegraded, detail, domain.CaseStatusNotified)
	}

	return o.advance(ctx, c, domain.StageNotification, domain.OutcomeOK, "confirmation sent to citizen", domain.CaseStatusNotified)
}

func (o *Orchestrator) complete(ctx context.Context, c *domain.Case) error {
	now := time.Now()
	c.ClosedAt = &now
	if err := o.advance(ctx, c, domain.StageCompletion, domain.OutcomeOK, "case complete", domain.CaseStatusComplete); err != nil {
		return err
	}
	o.record(ctx, c, domain.CaseStatusComplete)
	return nil
}

// Cancel terminates a non-terminal case at an external actor's request,
// releasing any held reservation.
func (o *Orchestrator) Cancel(ctx context.Context, caseID, reason string) (*domain.Case, error) {
	c, err := o.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status.IsTerminal() {
		return nil, apperrors.NewConflict("case already in terminal status", map[string]any{
			"case_id": c.ID,
			"status":  c.Status,
		})
	}

	if c.AppointmentID != nil {
		appt, err := o.appointments.GetByID(ctx, *c.AppointmentID)
		if err != nil {
			return nil, err
		}
		if appt.Status != domain.AppointmentStatusCancelled {
			appt.Status = domain.AppointmentStatusCancelled
			if err := o.appointments.Update(ctx, appt); err != nil {
				return nil, err
			}
			o.releaseSlot(ctx, scheduling.SlotFor(appt.ServiceID, appt.ScheduledAt))
		}
	}

	detail := "case cancelled"
	if reason != "" {
		detail = "case cancelled: " + reason
	}
	now := time.Now()
	c.ClosedAt = &now
	stage := domain.StageCancellation
	c.TerminalStage = &stage
	if reason != "" {
		c.TerminalReason = &reason
	}
	if err := o.advance(ctx, c, domain.StageCancellation, domain.OutcomeOK, detail, domain.CaseStatusCancelled); err != nil {
		return nil, err
	}
	o.record(ctx, c, domain.CaseStatusCancelled)
	return c, nil
}

func (o *Orchestrator) escalate(ctx context.Context, c *domain.Case, stage domain.CaseStage, reason string) error {
	now := time.Now()
	c.ClosedAt = &now
	c.TerminalStage = &stage
	c.TerminalReason = &reason
	if err := o.advance(ctx, c, stage, domain.OutcomeEscalated, reason, domain.CaseStatusEscalated); err != nil {
		return err
	}
	o.record(ctx, c, domain.CaseStatusEscalated)
	return nil
}

func (o *Orchestrator) markFailed(ctx context.Context, c *domain.Case, stage domain.CaseStage, detail string) error {
	o.logger.Error("pipeline stage failed",
		zap.String("case_id", c.ID),
		zap.String("stage", string(stage)),
		zap.String("detail", detail))

	now := time.Now()
	c.ClosedAt = &now
	c.TerminalStage = &stage
	c.TerminalReason = &detail
	if err := o.advance(ctx, c, stage, domain.OutcomeFailed, detail, domain.CaseStatusFailed); err != nil {
		// The fault detail could not be persisted either; surface both.
		return fmt.Errorf("%s (persist failed-state: %w)", detail, err)
	}
	o.record(ctx, c, domain.CaseStatusFailed)
	return fmt.Errorf("case %s failed at %s: %s", c.ID, stage, detail)
}

// advance writes the stage's CaseUpdate, then moves the case to newStatus.
// The update-before-status order is what keeps the audit trail gap-free.
func (o *Orchestrator) advance(ctx context.Context, c *domain.Case, stage domain.CaseStage, outcome domain.UpdateOutcome, detail string, newStatus domain.CaseStatus) error {
	update := &domain.CaseUpdate{
		CaseID:  c.ID,
		Stage:   stage,
		Outcome: outcome,
		Detail:  detail,
	}
	if err := o.updates.Create(ctx, update); err != nil {
		return fmt.Errorf("write case update: %w", err)
	}

	oldStatus := c.Status
	c.Status = newStatus
	if err := o.cases.Update(ctx, c); err != nil {
		return fmt.Errorf("advance case: %w", err)
	}

	o.publishTransition(ctx, c, stage, outcome, oldStatus, newStatus, detail)
	return nil
}

func (o *Orchestrator) publishTransition(ctx context.Context, c *domain.Case, stage domain.CaseStage, outcome domain.UpdateOutcome, oldStatus, newStatus domain.CaseStatus, detail string) {
	switch newStatus {
	case domain.CaseStatusEscalated:
		o.publish(ctx, events.Event{
			Type:    events.EventCaseEscalated,
			CaseID:  c.ID,
			Payload: events.CaseEscalatedPayload{Stage: stage, Reason: detail},
		})
	case domain.CaseStatusFailed:
		o.publish(ctx, events.Event{
			Type:    events.EventCaseFailed,
			CaseID:  c.ID,
			Payload: events.CaseFailedPayload{Stage: stage, Detail: detail},
		})
	case domain.CaseStatusCancelled:
		o.publish(ctx, events.Event{
			Type:    events.EventCaseCancelled,
			CaseID:  c.ID,
			Payload: events.CaseCancelledPayload{Reason: detail},
		})
	default:
		o.publish(ctx, events.Event{
			Type:   events.EventCaseStageAdvanced,
			CaseID: c.ID,
			Payload: events.CaseStageAdvancedPayload{
				Stage:     stage,
				Outcome:   outcome,
				OldStatus: oldStatus,
				NewStatus: newStatus,
				Detail:    detail,
			},
		})
	}
}

func (o *Orchestrator) publish(ctx context.Context, event events.Event) {
	if o.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = o.dispatcher.Publish(ctx, event)
}

// record is fire-and-forget: metric faults never change a case outcome.
func (o *Orchestrator) record(ctx context.Context, c *domain.Case, final domain.CaseStatus) {
	if o.metrics == nil {
		return
	}
	if err := o.metrics.Record(ctx, c, final); err != nil {
		o.logger.Warn("metric recording failed",
			zap.String("case_id", c.ID),
			zap.Error(err))
	}
}

func (o *Orchestrator) releaseSlot(ctx context.Context, slot scheduling.Slot) {
	if err := o.ledger.Release(ctx, slot); err != nil {
		o.logger.Warn("slot release failed",
			zap.String("slot", slot.Key()),
			zap.Error(err))
	}
}

// stageFor maps a pre-transition status to the stage that runs from it.
func stageFor(status domain.CaseStatus) domain.CaseStage {
	switch status {
	case domain.CaseStatusSubmitted:
		return domain.StageTriage
	case domain.CaseStatusTriaged:
		return domain.StageMatching
	case domain.CaseStatusMatched:
		return domain.StageBooking
	case domain.CaseStatusScheduled:
		return domain.StageNotification
	default:
		return domain.StageCompletion
	}
}
