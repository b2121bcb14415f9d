package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/field-service/internal/audit"
	"github.com/spec-kit/field-service/internal/clock"
	"github.com/spec-kit/field-service/internal/domain"
	"github.com/spec-kit/field-service/internal/notify"
	"github.com/spec-kit/field-service/internal/repository"
	apperrors "github.com/spec-kit/field-service/pkg/util"
)

// TicketService covers intake and the read side: creation, fetch, listing
// and note addition. All status changes go through the lifecycle engine.
type TicketService struct {
	tickets  repository.TicketRepository
	history  repository.StatusHistoryRepository
	zones    repository.ZoneRepository
	engine   *LifecycleEngine
	auditor  audit.Sink
	notifier notify.Dispatcher
	clock    clock.Clock
	logger   *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.StatusHistoryRepository
	ZoneRepo    repository.ZoneRepository
	Engine      *LifecycleEngine
	Auditor     audit.Sink
	Notifier    notify.Dispatcher
	Clock       clock.Clock
	Logger      *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	c := deps.Clock
	if c == nil {
		c = clock.NewSystem()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	auditor := deps.Auditor
	if auditor == nil {
		auditor = audit.NopSink{}
	}
	return &TicketService{
		tickets:  deps.TicketRepo,
		history:  deps.HistoryRepo,
		zones:    deps.ZoneRepo,
		engine:   deps.Engine,
		auditor:  auditor,
		notifier: deps.Notifier,
		clock:    c,
		logger:   logger,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	CustomerID  int64
	ZoneID      int64
}

// TicketListFilter describes listing filters; zone scoping is applied on
// top of it from the actor's role.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Limit      int
	Offset     int
}

// CreateTicket opens a new ticket. Tickets always start at OPEN with an
// initial history entry, and the customer is notified.
func (s *TicketService) CreateTicket(ctx context.Context, ownerID int64, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	if input.CustomerID == 0 || input.ZoneID == 0 {
		return nil, apperrors.NewValidationError("customer_id and zone_id required", nil)
	}
	zone, err := s.zones.GetByID(ctx, input.ZoneID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Zone", map[string]any{"zone_id": input.ZoneID})
		}
		return nil, apperrors.NewStorageError(err)
	}
	if !zone.Active {
		return nil, apperrors.NewConflict("zone inactive", map[string]any{"zone_id": zone.ID})
	}

	ticket := &domain.Ticket{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
		Priority:    input.Priority,
		CustomerID:  input.CustomerID,
		ZoneID:      input.ZoneID,
		OwnerID:     ownerID,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	now := s.clock.Now()
	initial := &domain.StatusHistoryEntry{
		Status:      domain.TicketStatusOpen,
		ChangedByID: ownerID,
		ChangedAt:   now,
		Notes:       "ticket created",
	}
	if err := s.tickets.Create(ctx, ticket, initial); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	s.recordAudit(ctx, ownerID, "ticket.create", ticket.ID, map[string]any{
		"priority": ticket.Priority,
		"zone_id":  ticket.ZoneID,
	})
	s.dispatchOpened(ctx, ticket)
	return ticket, nil
}

// GetTicket fetches a ticket with its history, enforcing the access policy.
func (s *TicketService) GetTicket(ctx context.Context, actorID, ticketID int64) (*domain.Ticket, []domain.StatusHistoryEntry, error) {
	ticket, err := s.engine.Authorize(ctx, ticketID, actorID)
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, apperrors.NewStorageError(err)
	}
	return ticket, entries, nil
}

// ListTickets returns tickets visible to the actor, zone-scoped by role.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("actor required")
	}
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	switch actor.Role {
	case domain.RoleAdmin:
		// unrestricted
	case domain.RoleZoneUser:
		if len(actor.ZoneIDs) == 0 {
			return []domain.Ticket{}, nil
		}
		repoFilter.ZoneIDs = actor.ZoneIDs
	case domain.RoleServicePerson:
		repoFilter.AssignedToID = &actor.ID
	default:
		repoFilter.CustomerID = &actor.ID
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return tickets, nil
}

// History returns the ordered transition trail, enforcing the access policy.
func (s *TicketService) History(ctx context.Context, actorID, ticketID int64) ([]domain.StatusHistoryEntry, error) {
	if _, err := s.engine.Authorize(ctx, ticketID, actorID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return entries, nil
}

// AddNote appends a free-text note to the ticket's history.
func (s *TicketService) AddNote(ctx context.Context, actorID, ticketID int64, note string) (*domain.Ticket, error) {
	return s.engine.AppendNote(ctx, ticketID, actorID, strings.TrimSpace(note))
}

func (s *TicketService) recordAudit(ctx context.Context, actorID int64, action string, ticketID int64, details map[string]any) {
	entry := audit.Entry{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		EntityType: "ticket",
		EntityID:   ticketID,
		Details:    details,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.auditor.Record(ctx, entry); err != nil {
		s.logger.Error("audit record failed",
			zap.Int64("ticket_id", ticketID),
			zap.String("action", action),
			zap.Error(err))
	}
}

func (s *TicketService) dispatchOpened(ctx context.Context, ticket *domain.Ticket) {
	if s.notifier == nil {
		return
	}
	msg := notify.Message{
		ID:          uuid.NewString(),
		Kind:        notify.KindOpened,
		TicketID:    ticket.ID,
		RecipientID: ticket.CustomerID,
		Payload: map[string]any{
			"priority": ticket.Priority,
		},
		CreatedAt: s.clock.Now(),
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.logger.Warn("notification dispatch failed",
			zap.Int64("ticket_id", ticket.ID),
			zap.String("kind", string(notify.KindOpened)),
			zap.Error(err))
	}
}
