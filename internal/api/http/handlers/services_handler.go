package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/frontline-service/internal/api/dto"
	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/service"
	apperrors "github.com/spec-kit/frontline-service/pkg/util"
)

// ServicesHandler manages the provider directory endpoints.
type ServicesHandler struct {
	service *service.CatalogService
}

// NewServicesHandler constructs handler.
func NewServicesHandler(catalogService *service.CatalogService) *ServicesHandler {
	return &ServicesHandler{service: catalogService}
}

// List GET /services.
func (h *ServicesHandler) List(c *fiber.Ctx) error {
	services, err := h.service.List(c.Context(), c.Query("category"))
	if err != nil {
		return err
	}
	items := make([]dto.ServiceResponse, 0, len(services))
	for i := range services {
		items = append(items, serviceResponse(&services[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /services/:id.
func (h *ServicesHandler) Get(c *fiber.Ctx) error {
	svc, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(svc)})
}

// Create POST /console/services.
func (h *ServicesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	svc, err := h.service.Create(c.Context(), service.CreateServiceInput{
		Name:             req.Name,
		Category:         req.Category,
		Department:       req.Department,
		Location:         req.Location,
		CapacityPerHour:  req.CapacityPerHour,
		OperatingHours:   req.OperatingHours,
		ContactInfo:      req.ContactInfo,
		EmergencyCapable: req.EmergencyCapable,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": serviceResponse(svc)})
}

func serviceResponse(svc *domain.Service) dto.ServiceResponse {
	return dto.ServiceResponse{
		ID:               svc.ID,
		Name:             svc.Name,
		Category:         svc.Category,
		Department:       svc.Department,
		Location:         svc.Location,
		CapacityPerHour:  svc.CapacityPerHour,
		OperatingHours:   svc.OperatingHours,
		ContactInfo:      svc.ContactInfo,
		EmergencyCapable: svc.EmergencyCapable,
		CreatedAt:        svc.CreatedAt,
	}
}
