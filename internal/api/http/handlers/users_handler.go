package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/helpr-dev/helpr/internal/api/dto"
	"github.com/helpr-dev/helpr/internal/domain"
	"github.com/helpr-dev/helpr/internal/service"
	apperrors "github.com/helpr-dev/helpr/pkg/util/errorutil"
)

// UsersHandler exposes registration, login, the user directory, and the
// admin role-management endpoints.
type UsersHandler struct {
	auth      *service.AuthService
	lifecycle *service.LifecycleService
	queries   *service.QueryService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, lifecycle *service.LifecycleService, queries *service.QueryService) *UsersHandler {
	return &UsersHandler{auth: authService, lifecycle: lifecycle, queries: queries}
}

// Register handles POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	user, token, exp, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	user, token, exp, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	actor := actingUser(c)
	if actor == nil {
		return apperrors.NewUnauthorized("user required")
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(actor)})
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	users, err := h.queries.ListUsers(c.UserContext(), actingUser(c), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SetAdmin handles PUT /users/:id/admin.
func (h *UsersHandler) SetAdmin(c *fiber.Ctx) error {
	return h.setRole(c, h.lifecycle.SetAdminStatus)
}

// SetMentor handles PUT /users/:id/mentor.
func (h *UsersHandler) SetMentor(c *fiber.Ctx) error {
	return h.setRole(c, h.lifecycle.SetMentorStatus)
}

func (h *UsersHandler) setRole(c *fiber.Ctx, op func(ctx context.Context, actor *domain.User, targetID string, enabled bool) (*domain.User, error)) error {
	targetID, err := parseID("user id", c.Params("id"))
	if err != nil {
		return err
	}
	var req dto.SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	user, err := op(c.UserContext(), actingUser(c), targetID, *req.Enabled)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}
