package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helpr-dev/helpr/internal/domain"
	"github.com/helpr-dev/helpr/internal/events"
	"github.com/helpr-dev/helpr/internal/observability"
	"github.com/helpr-dev/helpr/internal/repository"
	apperrors "github.com/helpr-dev/helpr/pkg/util/errorutil"
)

// LifecycleService is the ticket lifecycle engine. Every transition runs its
// precondition checks and writes inside one unit of work, with the ticket row
// and the affected user rows locked, so the one-active-ticket invariants hold
// under concurrent requests.
type LifecycleService struct {
	uow        repository.UnitOfWork
	dispatcher events.Dispatcher
	now        func() time.Time
}

// LifecycleDependencies bundles collaborators for the lifecycle service.
type LifecycleDependencies struct {
	UnitOfWork repository.UnitOfWork
	Dispatcher events.Dispatcher
	Clock      func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Description string
	Location    string
	Contact     string
}

// ReviewInput describes a post-resolution review payload.
type ReviewInput struct {
	Description string
	Stars       int
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &LifecycleService{
		uow:        deps.UnitOfWork,
		dispatcher: deps.Dispatcher,
		now:        clock,
	}
}

// CreateTicket opens a new ticket for the author and points the author's
// currently-opened reference at it.
func (s *LifecycleService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	op := events.OpCreateTicket
	if actor == nil {
		return nil, s.reject(op, apperrors.NewUnauthorized("user required"))
	}
	if err := validateTicketInput(&input); err != nil {
		return nil, s.reject(op, err)
	}

	var ticket *domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, st repository.Stores) error {
		author, err := st.Users.GetByIDForUpdate(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewUnauthorized("unknown user")
			}
			return err
		}
		if author.IsSilenced {
			return apperrors.NewUnauthorized("silenced users cannot open tickets")
		}
		if author.HasOpenTicket() {
			return apperrors.NewUnauthorized("user already has an open ticket")
		}

		ticket = &domain.Ticket{
			AuthorID:    author.ID,
			Description: input.Description,
			Location:    input.Location,
			Contact:     input.Contact,
		}
		if err := st.Tickets.Create(ctx, ticket); err != nil {
			return err
		}
		author.OpenedTicketID = &ticket.ID
		return st.Users.Update(ctx, author)
	})
	if err != nil {
		return nil, s.reject(op, err)
	}
	s.recordSuccess(op)
	observability.TicketsCreatedTotal.Inc()
	s.publishChange(ctx, op, ticket.ID, actor.ID, events.EventTicketsChanged, events.EventUsersChanged)
	return ticket, nil
}

// ClaimTicket moves an open ticket to claimed by the acting mentor.
func (s *LifecycleService) ClaimTicket(ctx context.Context, ticketID string, actor *domain.User) (*domain.Ticket, error) {
	op := events.OpClaimTicket
	if actor == nil {
		return nil, s.reject(op, apperrors.NewUnauthorized("user required"))
	}

	var ticket *domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, st repository.Stores) error {
		var err error
		ticket, err = lockTicket(ctx, st, ticketID)
		if err != nil {
			return err
		}
		mentor, err := st.Users.GetByIDForUpdate(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewUnauthorized("unknown user")
			}
			return err
		}
		if !mentor.IsMentor {
			return apperrors.NewUnauthorized("mentor role required")
		}
		if ticket.State() != domain.TicketStateOpen {
			return apperrors.NewInvalidTransition("ticket is not open", transitionDetails(ticket))
		}
		if mentor.HasClaimedTicket() {
			return apperrors.NewInvalidTransition("mentor already has a claimed ticket", nil)
		}

		now := s.now()
		ticket.ClaimantID = &mentor.ID
		ticket.TimeClaimed = &now
		ticket.TimeLastUpdated = now
		if err := st.Tickets.Update(ctx, ticket); err != nil {
			return err
		}
		mentor.ClaimedTicketID = &ticket.ID
		return st.Users.Update(ctx, mentor)
	})
	if err != nil {
		return nil, s.reject(op, err)
	}
	s.recordSuccess(op)
	s.publishChange(ctx, op, ticket.ID, actor.ID, events.EventTicketsChanged, events.EventUsersChanged)
	return ticket, nil
}

// UnclaimTicket releases a claimed ticket back to open. Only the current
// claimant may release it; losing the mentor role after claiming does not
// block the release.
func (s *LifecycleService) UnclaimTicket(ctx context.Context, ticketID string, actor *domain.User) (*domain.Ticket, error) {
	op := events.OpUnclaimTicket
	if actor == nil {
		return nil, s.reject(op, apperrors.NewUnauthorized("user required"))
	}

	var ticket *domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, st repository.Stores) error {
		var err error
		ticket, err = lockTicket(ctx, st, ticketID)
		if err != nil {
			return err
		}
		claimant, err := st.Users.GetByIDForUpdate(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewUnauthorized("unknown user")
			}
			return err
		}
		if ticket.State() != domain.TicketStateClaimed {
			return apperrors.NewInvalidTransition("ticket is not claimed", transitionDetails(ticket))
		}
		if !ticket.IsClaimedBy(claimant.ID) {
			return apperrors.NewInvalidTransition("only the claimant may unclaim", nil)
		}

		ticket.ClaimantID = nil
		ticket.TimeClaimed = nil
		ticket.TimeLastUpdated = s.now()
		if err := st.Tickets.Update(ctx, ticket); err != nil {
			return err
		}
		claimant.ClaimedTicketID = nil
		return st.Users.Update(ctx, claimant)
	})
	if err != nil {
		return nil, s.reject(op, err)
	}
	s.recordSuccess(op)
	s.publishChange(ctx, op, ticket.ID, actor.ID, events.EventTicketsChanged, events.EventUsersChanged)
	return ticket, nil
}

// ResolveTicket marks a ticket resolved and clears the author's and the
// claimant's active references. The author may self-resolve an unclaimed
// ticket; no mentor-role check applies.
func (s *LifecycleService) ResolveTicket(ctx context.Context, ticketID string, actor *domain.User) (*domain.Ticket, error) {
	op := events.OpResolveTicket
	if actor == nil {
		return nil, s.reject(op, apperrors.NewUnauthorized("user required"))
	}

	var ticket *domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, st repository.Stores) error {
		var err error
		ticket, err = lockTicket(ctx, st, ticketID)
		if err != nil {
			return err
		}
		if ticket.State() == domain.TicketStateResolved {
			return apperrors.NewInvalidTransition("ticket already resolved", transitionDetails(ticket))
		}
		if actor.ID != ticket.AuthorID && !ticket.IsClaimedBy(actor.ID) {
			return apperrors.NewInvalidTransition("only the author or the claimant may resolve", nil)
		}

		participants, err := lockParticipants(ctx, st, ticket)
		if err != nil {
			return err
		}

		now := s.now()
		ticket.TimeResolved = &now
		ticket.TimeLastUpdated = now
		if err := st.Tickets.Update(ctx, ticket); err != nil {
			return err
		}
		for _, user := range participants {
			changed := false
			if user.OpenedTicketID != nil && *user.OpenedTicketID == ticket.ID {
				user.OpenedTicketID = nil
				changed = true
			}
			if user.ClaimedTicketID != nil && *user.ClaimedTicketID == ticket.ID {
				user.ClaimedTicketID = nil
				changed = true
			}
			if !changed {
				continue
			}
			if err := st.Users.Update(ctx, user); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.reject(op, err)
	}
	s.recordSuccess(op)
	s.publishChange(ctx, op, ticket.ID, actor.ID, events.EventTicketsChanged, events.EventUsersChanged)
	return ticket, nil
}

// UnresolveTicket reopens a resolved ticket, restoring it to whichever state
// preceded resolution. Reopening is refused when either party has since
// acquired a different active ticket: restoring the references would break
// the one-active-ticket invariant.
func (s *LifecycleService) UnresolveTicket(ctx context.Context, ticketID string, actor *domain.User) (*domain.Ticket, error) {
	op := events.OpUnresolveTicket
	if actor == nil {
		return nil, s.reject(op, apperrors.NewUnauthorized("user required"))
	}

	var ticket *domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, st repository.Stores) error {
		var err error
		ticket, err = lockTicket(ctx, st, ticketID)
		if err != nil {
			return err
		}
		if ticket.State() != domain.TicketStateResolved {
			return apperrors.NewInvalidTransition("ticket is not resolved", transitionDetails(ticket))
		}
		if actor.ID != ticket.AuthorID && !ticket.IsClaimedBy(actor.ID) {
			return apperrors.NewInvalidTransition("only the author or the claimant may reopen", nil)
		}

		participants, err := lockParticipants(ctx, st, ticket)
		if err != nil {
			return err
		}
		for _, user := range participants {
			if user.ID == ticket.AuthorID && user.OpenedTicketID != nil && *user.OpenedTicketID != ticket.ID {
				return apperrors.NewInvalidTransition("author already has another open ticket", nil)
			}
			if ticket.IsClaimedBy(user.ID) && user.ClaimedTicketID != nil && *user.ClaimedTicketID != ticket.ID {
				return apperrors.NewInvalidTransition("claimant already has another claimed ticket", nil)
			}
		}

		ticket.TimeResolved = nil
		ticket.TimeLastUpdated = s.now()
		if err := st.Tickets.Update(ctx, ticket); err != nil {
			return err
		}
		for _, user := range participants {
			if user.ID == ticket.AuthorID {
				user.OpenedTicketID = &ticket.ID
			}
			if ticket.IsClaimedBy(user.ID) {
				user.ClaimedTicketID = &ticket.ID
			}
			if err := st.Users.Update(ctx, user); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.reject(op, err)
	}
	s.recordSuccess(op)
	s.publishChange(ctx, op, ticket.ID, actor.ID, events.EventTicketsChanged, events.EventUsersChanged)
	return ticket, nil
}

// SubmitReview records the author's one-time review of a resolved ticket.
func (s *LifecycleService) SubmitReview(ctx context.Context, ticketID string, actor *domain.User, input ReviewInput) (*domain.Ticket, error) {
	op := events.OpSubmitReview
	if actor == nil {
		return nil, s.reject(op, apperrors.NewUnauthorized("user required"))
	}
	if actor.IsSilenced {
		return nil, s.reject(op, apperrors.NewUnauthorized("silenced users cannot submit reviews"))
	}
	if input.Stars < 1 || input.Stars > 5 {
		return nil, s.reject(op, apperrors.NewValidationError("stars must be between 1 and 5", nil))
	}

	var ticket *domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, st repository.Stores) error {
		var err error
		ticket, err = lockTicket(ctx, st, ticketID)
		if err != nil {
			return err
		}
		if actor.ID != ticket.AuthorID {
			return apperrors.NewUnauthorized("only the author may review")
		}
		if ticket.State() != domain.TicketStateResolved {
			return apperrors.NewInvalidTransition("ticket is not resolved", transitionDetails(ticket))
		}
		if ticket.HasReview() {
			return apperrors.NewInvalidTransition("review already submitted", nil)
		}

		stars := input.Stars
		ticket.ReviewStars = &stars
		if desc := strings.TrimSpace(input.Description); desc != "" {
			ticket.ReviewDescription = &desc
		}
		ticket.TimeLastUpdated = s.now()
		return st.Tickets.Update(ctx, ticket)
	})
	if err != nil {
		return nil, s.reject(op, err)
	}
	s.recordSuccess(op)
	s.publishChange(ctx, op, ticket.ID, actor.ID, events.EventTicketsChanged)
	return ticket, nil
}

// SetAdminStatus grants or revokes the admin flag on the target user.
// Granting admin implicitly grants mentor. Users may never change their own
// admin flag.
func (s *LifecycleService) SetAdminStatus(ctx context.Context, actor *domain.User, targetID string, isAdmin bool) (*domain.User, error) {
	return s.setRole(ctx, events.OpSetAdminStatus, actor, targetID, func(target *domain.User) {
		target.IsAdmin = isAdmin
		if isAdmin {
			target.IsMentor = true
		}
	})
}

// SetMentorStatus grants or revokes the mentor flag on the target user.
// Revoking mentor does not release a ticket the target already holds.
func (s *LifecycleService) SetMentorStatus(ctx context.Context, actor *domain.User, targetID string, isMentor bool) (*domain.User, error) {
	return s.setRole(ctx, events.OpSetMentorStatus, actor, targetID, func(target *domain.User) {
		target.IsMentor = isMentor
	})
}

func (s *LifecycleService) setRole(ctx context.Context, op events.Operation, actor *domain.User, targetID string, apply func(*domain.User)) (*domain.User, error) {
	if actor == nil || !actor.IsAdmin {
		return nil, s.reject(op, apperrors.NewUnauthorized("admin role required"))
	}
	if actor.ID == targetID {
		return nil, s.reject(op, apperrors.NewInvalidTransition("users may not change their own role", nil))
	}

	var target *domain.User
	err := s.uow.Do(ctx, func(ctx context.Context, st repository.Stores) error {
		var err error
		target, err = st.Users.GetByIDForUpdate(ctx, targetID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("user", map[string]any{"user_id": targetID})
			}
			return err
		}
		apply(target)
		return st.Users.Update(ctx, target)
	})
	if err != nil {
		return nil, s.reject(op, err)
	}
	s.recordSuccess(op)
	s.publishChange(ctx, op, "", actor.ID, events.EventUsersChanged)
	return target, nil
}

func lockTicket(ctx context.Context, st repository.Stores, ticketID string) (*domain.Ticket, error) {
	ticket, err := st.Tickets.GetByIDForUpdate(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	return ticket, nil
}

// lockParticipants loads the author and, when present, the claimant with row
// locks. Rows are locked in id order so two transitions touching the same
// pair of users cannot deadlock.
func lockParticipants(ctx context.Context, st repository.Stores, ticket *domain.Ticket) ([]*domain.User, error) {
	ids := []string{ticket.AuthorID}
	if ticket.ClaimantID != nil && *ticket.ClaimantID != ticket.AuthorID {
		ids = append(ids, *ticket.ClaimantID)
	}
	if len(ids) == 2 && ids[1] < ids[0] {
		ids[0], ids[1] = ids[1], ids[0]
	}

	users := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		user, err := st.Users.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
			}
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func validateTicketInput(input *TicketCreateInput) error {
	input.Description = strings.TrimSpace(input.Description)
	input.Location = strings.TrimSpace(input.Location)
	input.Contact = strings.TrimSpace(input.Contact)

	fields := map[string]string{
		"description": input.Description,
		"location":    input.Location,
		"contact":     input.Contact,
	}
	for name, value := range fields {
		if value == "" {
			return apperrors.NewValidationError(name+" required", nil)
		}
		if utf8.RuneCountInString(value) > domain.MaxFieldLength {
			return apperrors.NewValidationError(name+" too long", map[string]any{
				"max_length": domain.MaxFieldLength,
			})
		}
	}
	return nil
}

func transitionDetails(ticket *domain.Ticket) map[string]any {
	return map[string]any{"state": ticket.State()}
}

func (s *LifecycleService) reject(op events.Operation, err error) error {
	observability.TransitionsTotal.WithLabelValues(string(op), apperrors.ToDomainError(err).Code).Inc()
	return err
}

func (s *LifecycleService) recordSuccess(op events.Operation) {
	observability.TransitionsTotal.WithLabelValues(string(op), "success").Inc()
}

func (s *LifecycleService) publishChange(ctx context.Context, op events.Operation, ticketID, actorID string, types ...events.EventType) {
	if s.dispatcher == nil {
		return
	}
	for _, eventType := range types {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      eventType,
			Operation: op,
			TicketID:  ticketID,
			ActorID:   actorID,
			Timestamp: s.now(),
		})
	}
}
