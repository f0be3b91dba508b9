package domain

import "time"

// TicketState enumerates the derived lifecycle states for tickets.
type TicketState string

const (
	TicketStateOpen     TicketState = "OPEN"
	TicketStateClaimed  TicketState = "CLAIMED"
	TicketStateResolved TicketState = "RESOLVED"
)

// MaxFieldLength bounds the description, location and contact fields.
const MaxFieldLength = 60

// Ticket is the aggregate for help requests. The persisted shape keeps the
// nullable timestamps; State derives the lifecycle state from them.
type Ticket struct {
	ID                string
	AuthorID          string
	ClaimantID        *string
	Description       string
	Location          string
	Contact           string
	TimeOpened        time.Time
	TimeClaimed       *time.Time
	TimeResolved      *time.Time
	TimeLastUpdated   time.Time
	ReviewDescription *string
	ReviewStars       *int
}

// State returns the lifecycle state derived from the timestamps.
func (t *Ticket) State() TicketState {
	switch {
	case t.TimeResolved != nil:
		return TicketStateResolved
	case t.TimeClaimed != nil:
		return TicketStateClaimed
	default:
		return TicketStateOpen
	}
}

// IsClaimedBy reports whether userID currently holds the ticket as claimant.
func (t *Ticket) IsClaimedBy(userID string) bool {
	return t.ClaimantID != nil && *t.ClaimantID == userID
}

// HasReview reports whether a post-resolution review has been recorded.
func (t *Ticket) HasReview() bool {
	return t.ReviewStars != nil || t.ReviewDescription != nil
}
