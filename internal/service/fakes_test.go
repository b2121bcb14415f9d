package service

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/field-service/internal/audit"
	"github.com/spec-kit/field-service/internal/domain"
	"github.com/spec-kit/field-service/internal/notify"
	"github.com/spec-kit/field-service/internal/repository"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[int64]domain.Ticket
	history map[int64][]domain.StatusHistoryEntry
	nextID  int64

	saveErr error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets: make(map[int64]domain.Ticket),
		history: make(map[int64][]domain.StatusHistoryEntry),
		nextID:  1,
	}
}

func (r *fakeTicketRepo) put(ticket domain.Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket.ID >= r.nextID {
		r.nextID = ticket.ID + 1
	}
	r.tickets[ticket.ID] = ticket
}

func (r *fakeTicketRepo) get(id int64) domain.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tickets[id]
}

func (r *fakeTicketRepo) historyFor(id int64) []domain.StatusHistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.StatusHistoryEntry, len(r.history[id]))
	copy(out, r.history[id])
	return out
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket, initial *domain.StatusHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = r.nextID
	r.nextID++
	r.tickets[ticket.ID] = *ticket
	if initial != nil {
		initial.TicketID = ticket.ID
		initial.ID = int64(len(r.history[ticket.ID]) + 1)
		r.history[ticket.ID] = append(r.history[ticket.ID], *initial)
	}
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := ticket
	return &copied, nil
}

func (r *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		out = append(out, ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) SaveTransition(ctx context.Context, ticket *domain.Ticket, expectedStatus domain.TicketStatus, entry *domain.StatusHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Status != expectedStatus {
		return repository.ErrStatusConflict
	}
	r.tickets[ticket.ID] = *ticket
	entry.ID = int64(len(r.history[ticket.ID]) + 1)
	r.history[ticket.ID] = append(r.history[ticket.ID], *entry)
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int64]domain.User
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[int64]domain.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = int64(len(r.users) + 1)
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeZoneRepo struct {
	zones map[int64]domain.Zone
}

func newFakeZoneRepo(zones ...domain.Zone) *fakeZoneRepo {
	repo := &fakeZoneRepo{zones: make(map[int64]domain.Zone)}
	for _, zone := range zones {
		repo.zones[zone.ID] = zone
	}
	return repo
}

func (r *fakeZoneRepo) GetByID(ctx context.Context, id int64) (*domain.Zone, error) {
	zone, ok := r.zones[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := zone
	return &copied, nil
}

func (r *fakeZoneRepo) List(ctx context.Context) ([]domain.Zone, error) {
	out := make([]domain.Zone, 0, len(r.zones))
	for _, zone := range r.zones {
		out = append(out, zone)
	}
	return out, nil
}

type fakeHistoryRepo struct {
	tickets *fakeTicketRepo
}

func (r *fakeHistoryRepo) ListByTicket(ctx context.Context, ticketID int64) ([]domain.StatusHistoryEntry, error) {
	return r.tickets.historyFor(ticketID), nil
}

type fakePORepo struct {
	mu     sync.Mutex
	orders map[int64]domain.PurchaseOrderRequest
	nextID int64
}

func newFakePORepo() *fakePORepo {
	return &fakePORepo{orders: make(map[int64]domain.PurchaseOrderRequest), nextID: 1}
}

func (r *fakePORepo) Create(ctx context.Context, po *domain.PurchaseOrderRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	po.ID = r.nextID
	r.nextID++
	r.orders[po.ID] = *po
	return nil
}

func (r *fakePORepo) GetPendingByTicket(ctx context.Context, ticketID int64) (*domain.PurchaseOrderRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, po := range r.orders {
		if po.TicketID == ticketID && po.Status == domain.PurchaseOrderPending {
			copied := po
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakePORepo) Approve(ctx context.Context, po *domain.PurchaseOrderRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[po.ID] = *po
	return nil
}

func (r *fakePORepo) ListByTicket(ctx context.Context, ticketID int64) ([]domain.PurchaseOrderRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.PurchaseOrderRequest{}
	for _, po := range r.orders {
		if po.TicketID == ticketID {
			out = append(out, po)
		}
	}
	return out, nil
}

func (r *fakePORepo) get(id int64) domain.PurchaseOrderRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[id]
}

type fakeFeedbackRepo struct {
	mu      sync.Mutex
	records []domain.TicketFeedback
	err     error
}

func (r *fakeFeedbackRepo) Create(ctx context.Context, feedback *domain.TicketFeedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	feedback.ID = int64(len(r.records) + 1)
	r.records = append(r.records, *feedback)
	return nil
}

type captureSink struct {
	mu      sync.Mutex
	entries []audit.Entry
	err     error
}

func (s *captureSink) Record(ctx context.Context, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

type captureNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
	err      error
}

func (n *captureNotifier) Notify(ctx context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.messages = append(n.messages, msg)
	return nil
}

func (n *captureNotifier) byKind(kind notify.Kind) []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := []notify.Message{}
	for _, msg := range n.messages {
		if msg.Kind == kind {
			out = append(out, msg)
		}
	}
	return out
}
