package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-marketplace/internal/api/dto"
	apperrors "github.com/spec-kit/service-marketplace/pkg/util/errorutil"
)

// AdminHandler exposes administrator endpoints. Routes must sit behind auth.RequireAdmin.
type AdminHandler struct {
	requests RequestService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(requests RequestService) *AdminHandler {
	return &AdminHandler{requests: requests}
}

// ListRequests GET /admin/requests.
func (h *AdminHandler) ListRequests(c *fiber.Ctx) error {
	requests, err := h.requests.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewServiceRequestList(requests)})
}

// UpdateStatus PATCH /admin/requests/:id/status.
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	id := c.Params("id")
	if err := h.requests.SetStatus(c.UserContext(), id, req.Status); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "status": req.Status}})
}
