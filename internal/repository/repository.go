package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx operations the repositories need. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so the same repository code serves
// plain reads and transactional transitions.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Stores bundles the repositories visible inside one transactional scope.
type Stores struct {
	Users   UserRepository
	Tickets TicketRepository
}

// UnitOfWork runs fn with repositories bound to a single atomic scope.
// A lifecycle transition performs its precondition reads and its writes,
// including the active-pointer updates on user rows, inside one call so that
// concurrent transitions on the same ticket serialize.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
