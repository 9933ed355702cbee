package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-marketplace/internal/api/dto"
	"github.com/spec-kit/service-marketplace/internal/auth"
	"github.com/spec-kit/service-marketplace/internal/domain"
	"github.com/spec-kit/service-marketplace/internal/service"
	apperrors "github.com/spec-kit/service-marketplace/pkg/util/errorutil"
)

// RequestService is the subset of the request service the handlers need.
type RequestService interface {
	Submit(ctx context.Context, input service.SubmitInput) (*domain.ServiceRequest, error)
	SetStatus(ctx context.Context, id string, status domain.RequestStatus) error
	Cancel(ctx context.Context, input service.CancelInput) (int, error)
	ListForUser(ctx context.Context, telephone, name string) ([]domain.ServiceRequest, error)
	ListAll(ctx context.Context) ([]domain.ServiceRequest, error)
}

// RequestsHandler manages end-user request endpoints.
type RequestsHandler struct {
	requests RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requests RequestService) *RequestsHandler {
	return &RequestsHandler{requests: requests}
}

// Catalog GET /catalog/services.
func (h *RequestsHandler) Catalog(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": domain.ServiceCatalog})
}

// Submit POST /requests.
func (h *RequestsHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SubmitRequestPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	created, err := h.requests.Submit(c.UserContext(), service.SubmitInput{
		ServiceName:        req.ServiceName,
		RequesterName:      principal.Identity.Name,
		RequesterTelephone: principal.Identity.Telephone,
		RequestText:        req.RequestText,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewServiceRequestResponse(created)})
}

// List GET /requests. Only the caller's own requests.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	requests, err := h.requests.ListForUser(c.UserContext(), principal.Identity.Telephone, principal.Identity.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewServiceRequestList(requests)})
}

// Cancel POST /requests/cancel.
func (h *RequestsHandler) Cancel(c *fiber.Ctx) error {
	var req dto.CancelRequestPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	deleted, err := h.requests.Cancel(c.UserContext(), service.CancelInput{
		ServiceName: req.ServiceName,
		RequestText: req.RequestText,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": deleted}})
}
