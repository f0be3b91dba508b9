package domain

import "time"

// User is the domain model for everyone who interacts with tickets, whether
// as an author asking for help or as a mentor volunteering it. A user may
// have at most one currently open authored ticket and at most one currently
// claimed ticket at any time; the two pointer fields are maintained solely by
// the ticket lifecycle transitions.
type User struct {
	ID              string
	Email           string
	Name            string
	PasswordHash    string
	IsAdmin         bool
	IsMentor        bool
	IsSilenced      bool
	OpenedTicketID  *string
	ClaimedTicketID *string
	CreatedAt       time.Time
}

// HasOpenTicket reports whether the user currently has an open authored ticket.
func (u *User) HasOpenTicket() bool {
	return u.OpenedTicketID != nil
}

// HasClaimedTicket reports whether the user currently holds a claimed ticket.
func (u *User) HasClaimedTicket() bool {
	return u.ClaimedTicketID != nil
}
