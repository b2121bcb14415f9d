package notify

import (
	"context"
	"errors"
	"testing"
)

func TestInMemoryDispatcher_RoutesByKind(t *testing.T) {
	d := NewInMemoryDispatcher()

	var assigned, opened []Message
	d.Subscribe(KindAssigned, func(ctx context.Context, msg Message) error {
		assigned = append(assigned, msg)
		return nil
	})
	d.Subscribe(KindOpened, func(ctx context.Context, msg Message) error {
		opened = append(opened, msg)
		return nil
	})

	ctx := context.Background()
	if err := d.Notify(ctx, Message{ID: "1", Kind: KindAssigned, TicketID: 7}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := d.Notify(ctx, Message{ID: "2", Kind: KindOpened, TicketID: 7}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := d.Notify(ctx, Message{ID: "3", Kind: KindPending, TicketID: 7}); err != nil {
		t.Fatalf("notify without subscribers: %v", err)
	}

	if len(assigned) != 1 || assigned[0].ID != "1" {
		t.Errorf("assigned handler saw %+v", assigned)
	}
	if len(opened) != 1 || opened[0].ID != "2" {
		t.Errorf("opened handler saw %+v", opened)
	}
}

func TestInMemoryDispatcher_HandlerErrorDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()

	calls := 0
	d.Subscribe(KindAssigned, func(ctx context.Context, msg Message) error {
		calls++
		return errors.New("boom")
	})
	d.Subscribe(KindAssigned, func(ctx context.Context, msg Message) error {
		calls++
		return nil
	})

	if err := d.Notify(context.Background(), Message{Kind: KindAssigned}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}
