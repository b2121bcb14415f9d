package domain

import "time"

// TicketFeedback records optional customer feedback captured at closure.
type TicketFeedback struct {
	ID            int64
	TicketID      int64
	SubmittedByID int64
	Feedback      string
	Rating        *int
	CreatedAt     time.Time
}
