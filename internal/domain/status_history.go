package domain

import "time"

// StatusHistoryEntry is an immutable record of one transition. Entries are
// append-only and ordered by ChangedAt ascending; together they form the
// ticket's full path through the lifecycle graph.
type StatusHistoryEntry struct {
	ID            int64
	TicketID      int64
	Status        TicketStatus
	ChangedByID   int64
	ChangedAt     time.Time
	Notes         string
	TimeInStatus  int64
	TotalTimeOpen int64
}
