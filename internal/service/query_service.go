package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/helpr-dev/helpr/internal/domain"
	"github.com/helpr-dev/helpr/internal/repository"
	apperrors "github.com/helpr-dev/helpr/pkg/util/errorutil"
)

// QueryService serves the read side: ticket queues, ticket detail, and the
// user directory. Reads run outside the transactional unit of work.
type QueryService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
}

// QueryDependencies bundles repositories for the query service.
type QueryDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
}

// NewQueryService constructs the service.
func NewQueryService(deps QueryDependencies) *QueryService {
	return &QueryService{
		tickets: deps.TicketRepo,
		users:   deps.UserRepo,
	}
}

// ListActiveTickets returns the queue of open, unclaimed tickets.
func (s *QueryService) ListActiveTickets(ctx context.Context, limit, offset int) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListActive(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListAuthoredTickets returns the caller's own tickets, newest first.
func (s *QueryService) ListAuthoredTickets(ctx context.Context, viewer *domain.User, limit, offset int) ([]domain.Ticket, error) {
	if viewer == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	tickets, err := s.tickets.ListByAuthor(ctx, viewer.ID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket fetches a single ticket. Visible to its author, its claimant, and
// to any mentor or admin.
func (s *QueryService) GetTicket(ctx context.Context, viewer *domain.User, ticketID string) (*domain.Ticket, error) {
	if viewer == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if !canViewTicket(viewer, ticket) {
		return nil, apperrors.NewUnauthorized("access denied")
	}
	return ticket, nil
}

// ListUsers returns the user directory. Admin only.
func (s *QueryService) ListUsers(ctx context.Context, viewer *domain.User, limit, offset int) ([]domain.User, error) {
	if viewer == nil || !viewer.IsAdmin {
		return nil, apperrors.NewUnauthorized("admin role required")
	}
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

func canViewTicket(viewer *domain.User, ticket *domain.Ticket) bool {
	if viewer.IsAdmin || viewer.IsMentor {
		return true
	}
	if viewer.ID == ticket.AuthorID {
		return true
	}
	return ticket.IsClaimedBy(viewer.ID)
}
