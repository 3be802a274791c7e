package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/frontline-service/internal/api/dto"
	"github.com/spec-kit/frontline-service/internal/service"
	apperrors "github.com/spec-kit/frontline-service/pkg/util"
)

// WorkersHandler manages console authentication and the dashboard.
type WorkersHandler struct {
	workers *service.WorkerService
	metrics *service.MetricsService
}

// NewWorkersHandler constructs handler.
func NewWorkersHandler(workerService *service.WorkerService, metricsService *service.MetricsService) *WorkersHandler {
	return &WorkersHandler{workers: workerService, metrics: metricsService}
}

// Login POST /console/login.
func (h *WorkersHandler) Login(c *fiber.Ctx) error {
	var req dto.WorkerLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	session, err := h.workers.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.WorkerLoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Role:      session.Worker.Role,
		WorkerID:  session.Worker.ID,
	}})
}

// CreateAccount POST /console/workers.
func (h *WorkersHandler) CreateAccount(c *fiber.Ctx) error {
	var req dto.CreateWorkerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	worker, err := h.workers.CreateAccount(c.Context(), service.CreateAccountInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.WorkerResponse{
		ID:        worker.ID,
		Name:      worker.Name,
		Email:     worker.Email,
		Role:      worker.Role,
		Active:    worker.Active,
		CreatedAt: worker.CreatedAt,
	}})
}

// Dashboard GET /console/dashboard.
func (h *WorkersHandler) Dashboard(c *fiber.Ctx) error {
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if t := parseTime(c.Query("from")); t != nil {
		from = *t
	}
	if t := parseTime(c.Query("to")); t != nil {
		to = *t
	}

	stats, err := h.metrics.Dashboard(c.Context(), from, to)
	if err != nil {
		return err
	}

	daily := make([]dto.DailyMetricResponse, 0, len(stats.Daily))
	for i := range stats.Daily {
		row := &stats.Daily[i]
		daily = append(daily, dto.DailyMetricResponse{
			Date:               row.Date.Format("2006-01-02"),
			TotalProcessed:     row.TotalProcessed,
			CompletedCount:     row.CompletedCount,
			EscalatedCount:     row.EscalatedCount,
			FailedCount:        row.FailedCount,
			CancelledCount:     row.CancelledCount,
			ReservationCount:   row.ReservationCount,
			AvgPipelineSeconds: row.AvgPipelineSeconds(),
		})
	}
	utilization := make([]dto.ServiceUtilizationResponse, 0, len(stats.ServiceUtilization))
	for _, u := range stats.ServiceUtilization {
		utilization = append(utilization, dto.ServiceUtilizationResponse{
			ServiceID:        u.ServiceID,
			Name:             u.Name,
			ReservationCount: u.ReservationCount,
			UtilizationPct:   u.UtilizationPct,
		})
	}
	return c.JSON(fiber.Map{"data": dto.DashboardResponse{
		ByStatus:           stats.ByStatus,
		TotalProcessed:     stats.TotalProcessed,
		CompletedCount:     stats.CompletedCount,
		EscalatedCount:     stats.EscalatedCount,
		FailedCount:        stats.FailedCount,
		CancelledCount:     stats.CancelledCount,
		ReservationCount:   stats.ReservationCount,
		AvgPipelineSeconds: stats.AvgPipelineSeconds,
		Daily:              daily,
		ServiceUtilization: utilization,
	}})
}
