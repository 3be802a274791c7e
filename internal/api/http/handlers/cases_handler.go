package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/frontline-service/internal/api/dto"
	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/repository"
	"github.com/spec-kit/frontline-service/internal/service"
	apperrors "github.com/spec-kit/frontline-service/pkg/util"
)

// CasesHandler manages case intake and read endpoints.
type CasesHandler struct {
	service *service.CaseService
}

// NewCasesHandler constructs handler.
func NewCasesHandler(caseService *service.CaseService) *CasesHandler {
	return &CasesHandler{service: caseService}
}

// Submit POST /cases.
func (h *CasesHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CitizenID == "" {
		return apperrors.NewValidationError("citizen_id required", nil)
	}

	result, err := h.service.Submit(c.Context(), service.SubmitCaseInput{
		CitizenID:       req.CitizenID,
		Title:           req.Title,
		Description:     req.Description,
		DeclaredUrgency: req.DeclaredUrgency,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": caseSummary(result)})
}

// Get GET /cases/:id.
func (h *CasesHandler) Get(c *fiber.Ctx) error {
	detail, err := h.service.GetDetail(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseDetail(detail)})
}

// GetByReference GET /cases/reference/:key.
func (h *CasesHandler) GetByReference(c *fiber.Ctx) error {
	detail, err := h.service.GetByReferenceKey(c.Context(), c.Params("key"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseDetail(detail)})
}

// List GET /cases.
func (h *CasesHandler) List(c *fiber.Ctx) error {
	cases, err := h.service.List(c.Context(), parseCaseQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.CaseSummary, 0, len(cases))
	for i := range cases {
		items = append(items, caseSummary(&cases[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Cancel POST /cases/:id/cancel.
func (h *CasesHandler) Cancel(c *fiber.Ctx) error {
	var req dto.CancelCaseRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.Cancel(c.Context(), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseSummary(result)})
}

// Requeue POST /cases/:id/requeue.
func (h *CasesHandler) Requeue(c *fiber.Ctx) error {
	if err := h.service.Requeue(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"queued": true}})
}

func parseCaseQuery(c *fiber.Ctx) repository.CaseFilter {
	filter := repository.CaseFilter{}
	if citizenID := c.Query("citizen_id"); citizenID != "" {
		filter.CitizenID = &citizenID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.CaseStatus(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if urgencyStr := c.Query("urgency"); urgencyStr != "" {
		for _, part := range strings.Split(urgencyStr, ",") {
			filter.Urgencies = append(filter.Urgencies, domain.UrgencyLevel(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func caseSummary(c *domain.Case) dto.CaseSummary {
	return dto.CaseSummary{
		ID:            c.ID,
		ReferenceKey:  c.ReferenceKey,
		CitizenID:     c.CitizenID,
		Title:         c.Title,
		Urgency:       c.Urgency,
		Status:        c.Status,
		Category:      c.ServiceCategory,
		ServiceID:     c.ServiceID,
		AppointmentID: c.AppointmentID,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func caseDetail(detail *service.CaseDetail) dto.CaseDetailResponse {
	c := detail.Case
	updates := make([]dto.CaseUpdateResponse, 0, len(detail.Updates))
	for _, u := range detail.Updates {
		updates = append(updates, dto.CaseUpdateResponse{
			ID:        u.ID,
			Stage:     u.Stage,
			Outcome:   u.Outcome,
			Detail:    u.Detail,
			CreatedAt: u.CreatedAt,
		})
	}
	resp := dto.CaseDetailResponse{
		ID:              c.ID,
		ReferenceKey:    c.ReferenceKey,
		CitizenID:       c.CitizenID,
		Title:           c.Title,
		Description:     c.Description,
		DeclaredUrgency: c.DeclaredUrgency,
		Urgency:         c.Urgency,
		Status:          c.Status,
		Category:        c.ServiceCategory,
		ServiceID:       c.ServiceID,
		TriageNotes:     c.TriageNotes,
		EstimatedMins:   c.EstimatedMins,
		TerminalStage:   c.TerminalStage,
		TerminalReason:  c.TerminalReason,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		ClosedAt:        c.ClosedAt,
		Updates:         updates,
	}
	if detail.Appointment != nil {
		appt := detail.Appointment
		resp.Appointment = &dto.AppointmentResponse{
			ID:               appt.ID,
			ServiceID:        appt.ServiceID,
			ScheduledAt:      appt.ScheduledAt,
			DurationMins:     appt.DurationMins,
			Status:           appt.Status,
			ConfirmationSent: appt.ConfirmationSent,
			Notes:            appt.Notes,
		}
	}
	return resp
}
