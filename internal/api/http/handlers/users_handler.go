package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-marketplace/internal/api/dto"
	"github.com/spec-kit/service-marketplace/internal/domain"
	"github.com/spec-kit/service-marketplace/internal/service"
	apperrors "github.com/spec-kit/service-marketplace/pkg/util/errorutil"
)

// IdentityService is the subset of the identity service the handler needs.
type IdentityService interface {
	Register(ctx context.Context, input service.RegisterInput) (*domain.UserAccount, error)
	SignIn(ctx context.Context, telephone, pin string) (*domain.Identity, error)
	ResetPIN(ctx context.Context, telephone string) error
	CheckTelephone(ctx context.Context, telephone string) error
	StartSignUp(ctx context.Context, firstName, surname string) (*domain.SignUpDraft, error)
	SubmitSignUpTelephone(ctx context.Context, draftID, telephone string) (*domain.SignUpDraft, error)
	CompleteSignUp(ctx context.Context, draftID, pin, confirmPIN string) (*domain.UserAccount, error)
	IssueToken(identity domain.Identity) (string, time.Time, error)
}

// UsersHandler exposes auth endpoints for end-users.
type UsersHandler struct {
	identity IdentityService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(identity IdentityService) *UsersHandler {
	return &UsersHandler{identity: identity}
}

// Register handles POST /auth/users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.identity.Register(c.UserContext(), service.RegisterInput{
		FirstName:  req.FirstName,
		Surname:    req.Surname,
		Telephone:  req.Telephone,
		PIN:        req.PIN,
		ConfirmPIN: req.ConfirmPIN,
	})
	if err != nil {
		return err
	}
	return h.respondWithSession(c, http.StatusCreated, user.Identity())
}

// Login handles POST /auth/users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	identity, err := h.identity.SignIn(c.UserContext(), req.Telephone, req.PIN)
	if err != nil {
		return err
	}
	return h.respondWithSession(c, http.StatusOK, *identity)
}

// CheckTelephone handles POST /auth/users/check-telephone.
func (h *UsersHandler) CheckTelephone(c *fiber.Ctx) error {
	var req dto.TelephoneRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.identity.CheckTelephone(c.UserContext(), req.Telephone); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"available": true}})
}

// ResetPIN handles POST /auth/pin/reset.
func (h *UsersHandler) ResetPIN(c *fiber.Ctx) error {
	var req dto.TelephoneRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.identity.ResetPIN(c.UserContext(), req.Telephone); err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{"message": "A new PIN has been sent to your phone"},
	})
}

// StartSignUp handles POST /auth/signup/drafts.
func (h *UsersHandler) StartSignUp(c *fiber.Ctx) error {
	var req dto.SignUpNamesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	draft, err := h.identity.StartSignUp(c.UserContext(), req.FirstName, req.Surname)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": draftResponse(draft)})
}

// SubmitSignUpTelephone handles POST /auth/signup/drafts/:id/telephone.
func (h *UsersHandler) SubmitSignUpTelephone(c *fiber.Ctx) error {
	var req dto.TelephoneRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	draft, err := h.identity.SubmitSignUpTelephone(c.UserContext(), c.Params("id"), req.Telephone)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": draftResponse(draft)})
}

// CompleteSignUp handles POST /auth/signup/drafts/:id/pin.
func (h *UsersHandler) CompleteSignUp(c *fiber.Ctx) error {
	var req dto.SignUpPINRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.identity.CompleteSignUp(c.UserContext(), c.Params("id"), req.PIN, req.ConfirmPIN)
	if err != nil {
		return err
	}
	return h.respondWithSession(c, http.StatusCreated, user.Identity())
}

func (h *UsersHandler) respondWithSession(c *fiber.Ctx, status int, identity domain.Identity) error {
	token, exp, err := h.identity.IssueToken(identity)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Status(status).JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.IdentityResponse{
				Name:      identity.Name,
				Telephone: identity.Telephone,
				IsAdmin:   identity.IsAdmin,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

func draftResponse(draft *domain.SignUpDraft) dto.SignUpDraftResponse {
	return dto.SignUpDraftResponse{
		ID:        draft.ID,
		Stage:     string(draft.Stage),
		FirstName: draft.FirstName,
		Surname:   draft.Surname,
		Telephone: draft.Telephone,
	}
}
