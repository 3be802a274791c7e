package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/events"
	"github.com/spec-kit/frontline-service/internal/pipeline"
	"github.com/spec-kit/frontline-service/internal/repository"
	apperrors "github.com/spec-kit/frontline-service/pkg/util"
)

// PipelineQueue hands submitted cases to the background workers.
type PipelineQueue interface {
	Enqueue(caseID string) bool
}

// SubmitCaseInput carries a citizen's request.
type SubmitCaseInput struct {
	CitizenID       string
	Title           string
	Description     string
	DeclaredUrgency *string
}

// CaseDetail is a case with its audit trail and booking, if any.
type CaseDetail struct {
	Case        *domain.Case
	Updates     []domain.CaseUpdate
	Appointment *domain.Appointment
}

// CaseService owns the case intake and read paths. Stage processing itself
// lives in the pipeline; this layer validates, persists the initial record
// and hands the case to the queue.
type CaseService struct {
	cases        repository.CaseRepository
	citizens     repository.CitizenRepository
	updates      repository.CaseUpdateRepository
	appointments repository.AppointmentRepository
	orchestrator *pipeline.Orchestrator
	queue        PipelineQueue
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// NewCaseService constructs the service.
func NewCaseService(
	cases repository.CaseRepository,
	citizens repository.CitizenRepository,
	updates repository.CaseUpdateRepository,
	appointments repository.AppointmentRepository,
	orchestrator *pipeline.Orchestrator,
	queue PipelineQueue,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *CaseService {
	return &CaseService{
		cases:        cases,
		citizens:     citizens,
		updates:      updates,
		appointments: appointments,
		orchestrator: orchestrator,
		queue:        queue,
		dispatcher:   dispatcher,
		logger:       logger,
	}
}

// Submit validates and records a new case, then queues it for processing.
// The returned case is in SUBMITTED status; the pipeline advances it
// asynchronously.
func (s *CaseService) Submit(ctx context.Context, input SubmitCaseInput) (*domain.Case, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("description is required", nil)
	}

	var declared *domain.UrgencyLevel
	if input.DeclaredUrgency != nil && *input.DeclaredUrgency != "" {
		level := domain.UrgencyLevel(strings.ToUpper(*input.DeclaredUrgency))
		if !level.Valid() {
			return nil, apperrors.NewValidationError("unknown urgency level", map[string]any{
				"declared_urgency": *input.DeclaredUrgency,
			})
		}
		declared = &level
	}

	if _, err := s.citizens.GetByID(ctx, input.CitizenID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("unknown citizen", map[string]any{
				"citizen_id": input.CitizenID,
			})
		}
		return nil, err
	}

	c := &domain.Case{
		ReferenceKey:    generateReferenceKey(),
		CitizenID:       input.CitizenID,
		Title:           strings.TrimSpace(input.Title),
		Description:     strings.TrimSpace(input.Description),
		DeclaredUrgency: declared,
		Urgency:         domain.UrgencyLow,
		Status:          domain.CaseStatusSubmitted,
	}
	if err := s.cases.Create(ctx, c); err != nil {
		return nil, err
	}

	update := &domain.CaseUpdate{
		CaseID:  c.ID,
		Stage:   domain.StageSubmission,
		Outcome: domain.OutcomeOK,
		Detail:  "case received",
	}
	if err := s.updates.Create(ctx, update); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventCaseSubmitted,
		CaseID:    c.ID,
		Timestamp: time.Now(),
		Payload: events.CaseSubmittedPayload{
			CitizenID:       c.CitizenID,
			Title:           c.Title,
			DeclaredUrgency: c.DeclaredUrgency,
		},
	})

	if !s.queue.Enqueue(c.ID) {
		// The case stays SUBMITTED; an operator can requeue it.
		s.logger.Warn("pipeline queue saturated",
			zap.String("case_id", c.ID))
	}

	s.logger.Info("case submitted",
		zap.String("case_id", c.ID),
		zap.String("reference_key", c.ReferenceKey))
	return c, nil
}

// GetDetail returns the case with its full audit trail and latest booking.
func (s *CaseService) GetDetail(ctx context.Context, caseID string) (*CaseDetail, error) {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	updates, err := s.updates.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	detail := &CaseDetail{Case: c, Updates: updates}
	if c.AppointmentID != nil {
		appt, err := s.appointments.GetByID(ctx, *c.AppointmentID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		detail.Appointment = appt
	}
	return detail, nil
}

// GetByReferenceKey resolves the citizen-facing key to full detail.
func (s *CaseService) GetByReferenceKey(ctx context.Context, key string) (*CaseDetail, error) {
	c, err := s.cases.GetByReferenceKey(ctx, strings.ToUpper(strings.TrimSpace(key)))
	if err != nil {
		return nil, err
	}
	return s.GetDetail(ctx, c.ID)
}

// List returns cases matching the filter.
func (s *CaseService) List(ctx context.Context, filter repository.CaseFilter) ([]domain.Case, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.cases.ListWithFilter(ctx, filter)
}

// Cancel terminates a case on behalf of the citizen or an operator.
func (s *CaseService) Cancel(ctx context.Context, caseID, reason string) (*domain.Case, error) {
	return s.orchestrator.Cancel(ctx, caseID, reason)
}

// Requeue pushes an already submitted, non-terminal case back onto the
// pipeline queue.
func (s *CaseService) Requeue(ctx context.Context, caseID string) error {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	if c.Status.IsTerminal() {
		return apperrors.NewConflict("case already in terminal status", map[string]any{
			"case_id": c.ID,
			"status":  c.Status,
		})
	}
	if !s.queue.Enqueue(c.ID) {
		return apperrors.NewConflict("pipeline queue saturated", nil)
	}
	return nil
}

func generateReferenceKey() string {
	return "CSE-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
