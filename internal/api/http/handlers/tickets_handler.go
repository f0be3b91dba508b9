package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/helpr-dev/helpr/internal/api/dto"
	"github.com/helpr-dev/helpr/internal/auth"
	"github.com/helpr-dev/helpr/internal/domain"
	"github.com/helpr-dev/helpr/internal/service"
	apperrors "github.com/helpr-dev/helpr/pkg/util/errorutil"
)

// TicketsHandler exposes the ticket lifecycle and query endpoints.
type TicketsHandler struct {
	lifecycle *service.LifecycleService
	queries   *service.QueryService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(lifecycle *service.LifecycleService, queries *service.QueryService) *TicketsHandler {
	return &TicketsHandler{lifecycle: lifecycle, queries: queries}
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	actor := actingUser(c)
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	ticket, err := h.lifecycle.CreateTicket(c.UserContext(), actor, service.TicketCreateInput{
		Description: req.Description,
		Location:    req.Location,
		Contact:     req.Contact,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListActive handles GET /tickets/active.
func (h *TicketsHandler) ListActive(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	tickets, err := h.queries.ListActiveTickets(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// ListMine handles GET /tickets/mine.
func (h *TicketsHandler) ListMine(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	tickets, err := h.queries.ListAuthoredTickets(c.UserContext(), actingUser(c), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// Get handles GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticketID, err := parseID("ticket id", c.Params("id"))
	if err != nil {
		return err
	}
	ticket, err := h.queries.GetTicket(c.UserContext(), actingUser(c), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Claim handles POST /tickets/:id/claim.
func (h *TicketsHandler) Claim(c *fiber.Ctx) error {
	return h.transition(c, h.lifecycle.ClaimTicket)
}

// Unclaim handles POST /tickets/:id/unclaim.
func (h *TicketsHandler) Unclaim(c *fiber.Ctx) error {
	return h.transition(c, h.lifecycle.UnclaimTicket)
}

// Resolve handles POST /tickets/:id/resolve.
func (h *TicketsHandler) Resolve(c *fiber.Ctx) error {
	return h.transition(c, h.lifecycle.ResolveTicket)
}

// Unresolve handles POST /tickets/:id/unresolve.
func (h *TicketsHandler) Unresolve(c *fiber.Ctx) error {
	return h.transition(c, h.lifecycle.UnresolveTicket)
}

// Review handles POST /tickets/:id/review.
func (h *TicketsHandler) Review(c *fiber.Ctx) error {
	ticketID, err := parseID("ticket id", c.Params("id"))
	if err != nil {
		return err
	}
	var req dto.SubmitReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	ticket, err := h.lifecycle.SubmitReview(c.UserContext(), ticketID, actingUser(c), service.ReviewInput{
		Description: req.Description,
		Stars:       req.Stars,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

type transitionFunc func(ctx context.Context, ticketID string, actor *domain.User) (*domain.Ticket, error)

func (h *TicketsHandler) transition(c *fiber.Ctx, op transitionFunc) error {
	ticketID, err := parseID("ticket id", c.Params("id"))
	if err != nil {
		return err
	}
	ticket, err := op(c.UserContext(), ticketID, actingUser(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

func actingUser(c *fiber.Ctx) *domain.User {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil
	}
	return principal.User
}

const maxPageSize = 100

func pagination(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return pageSize, (page - 1) * pageSize
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

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return items
}
