package events

import "time"

// EventType enumerates supported event identifiers. The change events carry
// no state beyond identifiers: subscribers re-fetch whatever they care about.
type EventType string

const (
	EventTicketsChanged EventType = "tickets_changed"
	EventUsersChanged   EventType = "users_changed"
)

// Operation names the lifecycle transition that produced an event.
type Operation string

const (
	OpCreateTicket    Operation = "create_ticket"
	OpClaimTicket     Operation = "claim_ticket"
	OpUnclaimTicket   Operation = "unclaim_ticket"
	OpResolveTicket   Operation = "resolve_ticket"
	OpUnresolveTicket Operation = "unresolve_ticket"
	OpSubmitReview    Operation = "submit_review"
	OpSetAdminStatus  Operation = "set_admin_status"
	OpSetMentorStatus Operation = "set_mentor_status"
)

// Event represents a change notification emitted after a successful mutation.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Operation Operation `json:"operation"`
	TicketID  string    `json:"ticket_id,omitempty"`
	ActorID   string    `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
