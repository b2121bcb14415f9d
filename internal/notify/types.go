package notify

import "time"

// Kind enumerates outbound notification types.
type Kind string

const (
	KindOpened       Kind = "ticket_opened"
	KindAssigned     Kind = "ticket_assigned"
	KindPending      Kind = "ticket_pending"
	KindVisitPlanned Kind = "visit_planned"
)

// Message is one human-facing notification. ScheduledAt, when set, defers
// delivery until that instant (visit reminders).
type Message struct {
	ID          string         `json:"id"`
	Kind        Kind           `json:"kind"`
	TicketID    int64          `json:"ticket_id"`
	RecipientID int64          `json:"recipient_id"`
	Payload     map[string]any `json:"payload,omitempty"`
	ScheduledAt *time.Time     `json:"scheduled_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
