package audit

import (
	"context"
	"time"
)

// Entry is one durable record of a mutating action.
type Entry struct {
	ID         string
	ActorID    int64
	Action     string
	EntityType string
	EntityID   int64
	Details    map[string]any
	CreatedAt  time.Time
}

// Sink is an append-only destination for audit entries. Writes are
// best-effort from the caller's point of view: a failure is logged and
// reported but never rolls back the action that produced the entry.
type Sink interface {
	Record(ctx context.Context, entry Entry) error
}

// NopSink discards entries.
type NopSink struct{}

func (NopSink) Record(ctx context.Context, entry Entry) error {
	return nil
}
