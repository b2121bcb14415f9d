package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/field-service/internal/clock"
	"github.com/spec-kit/field-service/internal/domain"
	"github.com/spec-kit/field-service/internal/notify"
	apperrors "github.com/spec-kit/field-service/pkg/util"
)

func newTicketFixture(users ...domain.User) (*TicketService, *fakeTicketRepo, *captureNotifier) {
	tickets := newFakeTicketRepo()
	userRepo := newFakeUserRepo(users...)
	notifier := &captureNotifier{}
	engine := NewLifecycleEngine(LifecycleDependencies{
		TicketRepo: tickets,
		UserRepo:   userRepo,
		Notifier:   notifier,
		Clock:      clock.NewFixed(testNow),
	})
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		HistoryRepo: &fakeHistoryRepo{tickets: tickets},
		ZoneRepo:    newFakeZoneRepo(domain.Zone{ID: 5, Name: "north", Active: true}, domain.Zone{ID: 6, Name: "south"}),
		Engine:      engine,
		Notifier:    notifier,
		Clock:       clock.NewFixed(testNow),
	})
	return svc, tickets, notifier
}

func TestCreateTicket_StartsOpenWithInitialHistory(t *testing.T) {
	svc, tickets, notifier := newTicketFixture(adminUser())

	ticket, err := svc.CreateTicket(context.Background(), 100, TicketCreateInput{
		Title:      "  boiler leaking  ",
		Priority:   domain.TicketPriorityHigh,
		CustomerID: 100,
		ZoneID:     5,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Errorf("status = %s, want OPEN", ticket.Status)
	}
	if ticket.Title != "boiler leaking" {
		t.Errorf("title = %q, want trimmed", ticket.Title)
	}
	if ticket.ID == 0 {
		t.Error("ticket ID not assigned")
	}
	history := tickets.historyFor(ticket.ID)
	if len(history) != 1 || history[0].Status != domain.TicketStatusOpen {
		t.Fatalf("unexpected initial history %+v", history)
	}
	opened := notifier.byKind(notify.KindOpened)
	if len(opened) != 1 || opened[0].RecipientID != 100 {
		t.Fatalf("opened notifications = %+v, want one to customer 100", opened)
	}
}

func TestCreateTicket_Validation(t *testing.T) {
	svc, _, _ := newTicketFixture(adminUser())
	ctx := context.Background()

	if _, err := svc.CreateTicket(ctx, 100, TicketCreateInput{CustomerID: 100, ZoneID: 5}); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("missing title: got %v", err)
	}
	if _, err := svc.CreateTicket(ctx, 100, TicketCreateInput{Title: "x"}); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("missing refs: got %v", err)
	}
	if _, err := svc.CreateTicket(ctx, 100, TicketCreateInput{Title: "x", CustomerID: 100, ZoneID: 99}); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("unknown zone: got %v", err)
	}
	if _, err := svc.CreateTicket(ctx, 100, TicketCreateInput{Title: "x", CustomerID: 100, ZoneID: 6}); !apperrors.IsCode(err, "CONFLICT") {
		t.Fatalf("inactive zone: got %v", err)
	}
}

func TestCreateTicket_DefaultsPriority(t *testing.T) {
	svc, _, _ := newTicketFixture(adminUser())

	ticket, err := svc.CreateTicket(context.Background(), 100, TicketCreateInput{
		Title: "no priority set", CustomerID: 100, ZoneID: 5,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.Priority != domain.TicketPriorityMedium {
		t.Errorf("priority = %s, want MEDIUM default", ticket.Priority)
	}
}

func TestGetTicket_EnforcesAccessPolicy(t *testing.T) {
	owner := domain.User{ID: 100, Role: domain.RoleCustomer, Active: true}
	stranger := domain.User{ID: 200, Role: domain.RoleCustomer, Active: true}
	svc, tickets, _ := newTicketFixture(owner, stranger)
	tickets.put(domain.Ticket{
		ID: 1, Status: domain.TicketStatusOpen, CustomerID: 100, ZoneID: 5, OwnerID: 100,
		CreatedAt: testNow.Add(-time.Hour), LastStatusChange: testNow.Add(-time.Hour),
	})

	if _, _, err := svc.GetTicket(context.Background(), 100, 1); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if _, _, err := svc.GetTicket(context.Background(), 200, 1); !apperrors.IsCode(err, "FORBIDDEN") {
		t.Fatalf("stranger read: got %v, want FORBIDDEN", err)
	}
	if _, _, err := svc.GetTicket(context.Background(), 100, 42); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("missing ticket: got %v, want NOT_FOUND", err)
	}
}

func TestListTickets_RequiresActor(t *testing.T) {
	svc, _, _ := newTicketFixture(adminUser())
	if _, err := svc.ListTickets(context.Background(), nil, TicketListFilter{}); !apperrors.IsCode(err, "UNAUTHORIZED") {
		t.Fatalf("got %v, want UNAUTHORIZED", err)
	}
}

func TestListTickets_ZoneUserWithNoZonesSeesNothing(t *testing.T) {
	zoneUser := domain.User{ID: 40, Role: domain.RoleZoneUser, Active: true}
	svc, tickets, _ := newTicketFixture(zoneUser)
	tickets.put(domain.Ticket{ID: 1, Status: domain.TicketStatusOpen, ZoneID: 5, OwnerID: 100, CustomerID: 100})

	list, err := svc.ListTickets(context.Background(), &zoneUser, TicketListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("zone user with no zones got %d tickets", len(list))
	}
}

func TestAddNote_AppendsHistoryWithoutStatusChange(t *testing.T) {
	svc, tickets, _ := newTicketFixture(adminUser())
	tickets.put(domain.Ticket{
		ID: 1, Status: domain.TicketStatusInProcess, CustomerID: 100, ZoneID: 5, OwnerID: 100,
		CreatedAt: testNow.Add(-time.Hour), LastStatusChange: testNow.Add(-time.Hour),
	})

	ticket, err := svc.AddNote(context.Background(), 1, 1, "  awaiting part number  ")
	if err != nil {
		t.Fatalf("add note: %v", err)
	}
	if ticket.Status != domain.TicketStatusInProcess {
		t.Errorf("status = %s, want IN_PROCESS", ticket.Status)
	}
	history := tickets.historyFor(1)
	if len(history) != 1 || history[0].Notes != "awaiting part number" {
		t.Fatalf("unexpected history %+v", history)
	}
}
