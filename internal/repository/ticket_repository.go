package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/helpr-dev/helpr/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error)
	ListActive(ctx context.Context, limit, offset int) ([]domain.Ticket, error)
	ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]domain.Ticket, error)
}

const ticketColumns = `id, author_id, claimant_id, description, location, contact,
               time_opened, time_claimed, time_resolved, time_last_updated,
               review_description, review_stars`

type ticketRepository struct {
	db Querier
}

// NewTicketRepository instantiates the repository bound to the given querier.
func NewTicketRepository(db Querier) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (author_id, description, location, contact)
        VALUES ($1, $2, $3, $4)
        RETURNING id, time_opened, time_last_updated`
	return r.db.QueryRow(ctx, query,
		ticket.AuthorID,
		ticket.Description,
		ticket.Location,
		ticket.Contact,
	).Scan(&ticket.ID, &ticket.TimeOpened, &ticket.TimeLastUpdated)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET claimant_id=$1, time_claimed=$2, time_resolved=$3,
            time_last_updated=$4, review_description=$5, review_stars=$6
        WHERE id=$7`
	cmd, err := r.db.Exec(ctx, query,
		ticket.ClaimantID,
		ticket.TimeClaimed,
		ticket.TimeResolved,
		ticket.TimeLastUpdated,
		ticket.ReviewDescription,
		ticket.ReviewStars,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

// GetByIDForUpdate locks the ticket row so concurrent transitions on the same
// ticket serialize: of two simultaneous claims, exactly one observes OPEN.
func (r *ticketRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1 FOR UPDATE`
	return r.fetchSingle(ctx, query, id)
}

// ListActive returns unclaimed tickets, oldest first.
func (r *ticketRepository) ListActive(ctx context.Context, limit, offset int) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + `
        FROM tickets WHERE time_claimed IS NULL AND time_resolved IS NULL
        ORDER BY time_opened LIMIT $1 OFFSET $2`
	return r.list(ctx, query, clampLimit(limit), clampOffset(offset))
}

func (r *ticketRepository) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + `
        FROM tickets WHERE author_id=$1
        ORDER BY time_opened DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, authorID, clampLimit(limit), clampOffset(offset))
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := scanTicket(r.db.QueryRow(ctx, query, arg), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) list(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.AuthorID,
		&ticket.ClaimantID,
		&ticket.Description,
		&ticket.Location,
		&ticket.Contact,
		&ticket.TimeOpened,
		&ticket.TimeClaimed,
		&ticket.TimeResolved,
		&ticket.TimeLastUpdated,
		&ticket.ReviewDescription,
		&ticket.ReviewStars,
	)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
