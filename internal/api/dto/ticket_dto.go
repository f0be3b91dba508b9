package dto

import (
	"time"

	"github.com/helpr-dev/helpr/internal/domain"
)

// CreateTicketRequest payload for opening a ticket.
type CreateTicketRequest struct {
	Description string `json:"description" validate:"required,max=60"`
	Location    string `json:"location"    validate:"required,max=60"`
	Contact     string `json:"contact"     validate:"required,max=60"`
}

// SubmitReviewRequest payload for reviewing a resolved ticket.
type SubmitReviewRequest struct {
	Description string `json:"description" validate:"max=500"`
	Stars       int    `json:"stars"       validate:"required,min=1,max=5"`
}

// ReviewResponse is the post-resolution review, when present.
type ReviewResponse struct {
	Description *string `json:"description,omitempty"`
	Stars       int     `json:"stars"`
}

// TicketResponse is the wire representation of a ticket.
type TicketResponse struct {
	ID              string             `json:"id"`
	State           domain.TicketState `json:"state"`
	AuthorID        string             `json:"author_id"`
	ClaimantID      *string            `json:"claimant_id,omitempty"`
	Description     string             `json:"description"`
	Location        string             `json:"location"`
	Contact         string             `json:"contact"`
	TimeOpened      time.Time          `json:"time_opened"`
	TimeClaimed     *time.Time         `json:"time_claimed,omitempty"`
	TimeResolved    *time.Time         `json:"time_resolved,omitempty"`
	TimeLastUpdated time.Time          `json:"time_last_updated"`
	Review          *ReviewResponse    `json:"review,omitempty"`
}

// NewTicketResponse maps a domain ticket to its wire shape.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:              ticket.ID,
		State:           ticket.State(),
		AuthorID:        ticket.AuthorID,
		ClaimantID:      ticket.ClaimantID,
		Description:     ticket.Description,
		Location:        ticket.Location,
		Contact:         ticket.Contact,
		TimeOpened:      ticket.TimeOpened,
		TimeClaimed:     ticket.TimeClaimed,
		TimeResolved:    ticket.TimeResolved,
		TimeLastUpdated: ticket.TimeLastUpdated,
	}
	if ticket.ReviewStars != nil {
		resp.Review = &ReviewResponse{
			Description: ticket.ReviewDescription,
			Stars:       *ticket.ReviewStars,
		}
	}
	return resp
}
