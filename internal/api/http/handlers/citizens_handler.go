package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/frontline-service/internal/api/dto"
	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/service"
	apperrors "github.com/spec-kit/frontline-service/pkg/util"
)

// CitizensHandler manages citizen registration endpoints.
type CitizensHandler struct {
	service *service.CitizenService
}

// NewCitizensHandler constructs handler.
func NewCitizensHandler(citizenService *service.CitizenService) *CitizensHandler {
	return &CitizensHandler{service: citizenService}
}

// Register POST /citizens.
func (h *CitizensHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterCitizenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	citizen, err := h.service.Register(c.Context(), service.RegisterCitizenInput{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": citizenResponse(citizen)})
}

// Get GET /citizens/:id.
func (h *CitizensHandler) Get(c *fiber.Ctx) error {
	citizen, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": citizenResponse(citizen)})
}

func citizenResponse(citizen *domain.Citizen) dto.CitizenResponse {
	return dto.CitizenResponse{
		ID:               citizen.ID,
		Name:             citizen.Name,
		Email:            citizen.Email,
		Phone:            citizen.Phone,
		Address:          citizen.Address,
		EmergencyContact: citizen.EmergencyContact,
		CreatedAt:        citizen.CreatedAt,
	}
}
