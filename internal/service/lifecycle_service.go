package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/field-service/internal/audit"
	"github.com/spec-kit/field-service/internal/clock"
	"github.com/spec-kit/field-service/internal/domain"
	"github.com/spec-kit/field-service/internal/notify"
	"github.com/spec-kit/field-service/internal/observability"
	"github.com/spec-kit/field-service/internal/repository"
	apperrors "github.com/spec-kit/field-service/pkg/util"
)

// LifecycleEngine validates and applies status transitions. It is the only
// component that writes ticket status: it checks the transition table and
// the access policy, computes time tracking snapshots, persists the new
// state together with its history entry atomically, then emits the audit
// entry and any notification the target state requires.
type LifecycleEngine struct {
	tickets  repository.TicketRepository
	users    repository.UserRepository
	auditor  audit.Sink
	notifier notify.Dispatcher
	clock    clock.Clock
	logger   *zap.Logger
	metrics  *observability.Metrics
	locks    ticketLocks
}

// LifecycleDependencies bundles engine collaborators.
type LifecycleDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Auditor    audit.Sink
	Notifier   notify.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewLifecycleEngine constructs the engine.
func NewLifecycleEngine(deps LifecycleDependencies) *LifecycleEngine {
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
	return &LifecycleEngine{
		tickets:  deps.TicketRepo,
		users:    deps.UserRepo,
		auditor:  auditor,
		notifier: deps.Notifier,
		clock:    c,
		logger:   logger,
		metrics:  deps.Metrics,
	}
}

// TransitionRequest describes one requested status change.
type TransitionRequest struct {
	TicketID int64
	ActorID  int64
	Target   domain.TicketStatus
	Notes    string

	// AssignTo / SubOwner, when set, are persisted in the same atomic write
	// as the status change. Used by workflow actions only.
	AssignTo *int64
	SubOwner *int64
}

// Transition applies a validated status change and returns the updated
// ticket. Validation failures surface before any mutation; once the
// persistence step begins, only a storage failure can abort, leaving the
// ticket unchanged.
func (e *LifecycleEngine) Transition(ctx context.Context, req TransitionRequest) (*domain.Ticket, error) {
	if !domain.ValidStatus(req.Target) {
		return nil, apperrors.NewInvalidInput("unknown target status", map[string]any{"status": string(req.Target)})
	}

	unlock := e.locks.acquire(req.TicketID)
	defer unlock()

	ticket, actor, err := e.loadAndAuthorize(ctx, req.TicketID, req.ActorID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(ticket.Status, req.Target) {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(req.Target))
	}

	previous := ticket.Status
	now := e.clock.Now()
	ticket.TimeInStatus, ticket.TotalTimeOpen = domain.TrackTime(ticket.CreatedAt, ticket.LastStatusChange, now)
	ticket.Status = req.Target
	ticket.LastStatusChange = now
	if req.Target == domain.TicketStatusResolved && ticket.ResolvedAt == nil {
		resolvedAt := now
		ticket.ResolvedAt = &resolvedAt
	}
	if req.AssignTo != nil {
		ticket.AssignedToID = req.AssignTo
	}
	if req.SubOwner != nil {
		ticket.SubOwnerID = req.SubOwner
	}

	entry := &domain.StatusHistoryEntry{
		TicketID:      ticket.ID,
		Status:        req.Target,
		ChangedByID:   actor.ID,
		ChangedAt:     now,
		Notes:         req.Notes,
		TimeInStatus:  ticket.TimeInStatus,
		TotalTimeOpen: ticket.TotalTimeOpen,
	}
	if err := e.tickets.SaveTransition(ctx, ticket, previous, entry); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperrors.NewConflict("ticket changed concurrently", map[string]any{"ticket_id": ticket.ID})
		}
		return nil, apperrors.NewStorageError(err)
	}

	if e.metrics != nil {
		e.metrics.RecordTransition(string(previous), string(req.Target))
	}
	e.recordAudit(ctx, actor.ID, "ticket.transition", ticket.ID, map[string]any{
		"old_status": previous,
		"new_status": req.Target,
		"notes":      req.Notes,
	})
	e.notifyForTarget(ctx, ticket, req.Target)

	return ticket, nil
}

// Reassign performs the self-loop permitted for ownership changes only: the
// status stays put, a history entry is appended and the new sub-owner is
// persisted. LastStatusChange does not advance since no state was left.
func (e *LifecycleEngine) Reassign(ctx context.Context, ticketID, actorID, subOwnerID int64, notes string) (*domain.Ticket, error) {
	return e.selfLoop(ctx, ticketID, actorID, notes, func(ticket *domain.Ticket) {
		ticket.SubOwnerID = &subOwnerID
	})
}

// AppendNote writes a policy-gated free-text note into the history trail
// without touching status or ownership.
func (e *LifecycleEngine) AppendNote(ctx context.Context, ticketID, actorID int64, notes string) (*domain.Ticket, error) {
	if notes == "" {
		return nil, apperrors.NewInvalidInput("notes required", nil)
	}
	return e.selfLoop(ctx, ticketID, actorID, notes, nil)
}

func (e *LifecycleEngine) selfLoop(ctx context.Context, ticketID, actorID int64, notes string, mutate func(*domain.Ticket)) (*domain.Ticket, error) {
	unlock := e.locks.acquire(ticketID)
	defer unlock()

	ticket, actor, err := e.loadAndAuthorize(ctx, ticketID, actorID)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	timeInStatus, totalTimeOpen := domain.TrackTime(ticket.CreatedAt, ticket.LastStatusChange, now)
	ticket.TimeInStatus = timeInStatus
	ticket.TotalTimeOpen = totalTimeOpen
	if mutate != nil {
		mutate(ticket)
	}

	entry := &domain.StatusHistoryEntry{
		TicketID:      ticket.ID,
		Status:        ticket.Status,
		ChangedByID:   actor.ID,
		ChangedAt:     now,
		Notes:         notes,
		TimeInStatus:  timeInStatus,
		TotalTimeOpen: totalTimeOpen,
	}
	if err := e.tickets.SaveTransition(ctx, ticket, ticket.Status, entry); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperrors.NewConflict("ticket changed concurrently", map[string]any{"ticket_id": ticket.ID})
		}
		return nil, apperrors.NewStorageError(err)
	}

	e.recordAudit(ctx, actor.ID, "ticket.reassign", ticket.ID, map[string]any{
		"status": ticket.Status,
		"notes":  notes,
	})
	return ticket, nil
}

// Authorize exposes the access policy for read paths (ticket fetch, history,
// note listing); it never mutates.
func (e *LifecycleEngine) Authorize(ctx context.Context, ticketID, actorID int64) (*domain.Ticket, error) {
	ticket, _, err := e.loadAndAuthorize(ctx, ticketID, actorID)
	return ticket, err
}

func (e *LifecycleEngine) loadAndAuthorize(ctx context.Context, ticketID, actorID int64) (*domain.Ticket, *domain.User, error) {
	ticket, err := e.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("Ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, nil, apperrors.NewStorageError(err)
	}
	actor, err := e.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("Actor", map[string]any{"actor_id": actorID})
		}
		return nil, nil, apperrors.NewStorageError(err)
	}
	if decision := domain.CanAct(actor, ticket); !decision.Allowed {
		return nil, nil, apperrors.NewForbidden(decision.Reason)
	}
	return ticket, actor, nil
}

func (e *LifecycleEngine) recordAudit(ctx context.Context, actorID int64, action string, ticketID int64, details map[string]any) {
	entry := audit.Entry{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		EntityType: "ticket",
		EntityID:   ticketID,
		Details:    details,
		CreatedAt:  e.clock.Now(),
	}
	if err := e.auditor.Record(ctx, entry); err != nil {
		e.logger.Error("audit record failed",
			zap.Int64("ticket_id", ticketID),
			zap.String("action", action),
			zap.Error(err))
	}
}

// notifyForTarget dispatches the state-driven notification kinds. Delivery
// failures are logged and never fail the transition.
func (e *LifecycleEngine) notifyForTarget(ctx context.Context, ticket *domain.Ticket, target domain.TicketStatus) {
	if e.notifier == nil {
		return
	}
	var kind notify.Kind
	switch target {
	case domain.TicketStatusOpen:
		kind = notify.KindOpened
	case domain.TicketStatusClosedPending:
		kind = notify.KindPending
	default:
		return
	}
	msg := notify.Message{
		ID:          uuid.NewString(),
		Kind:        kind,
		TicketID:    ticket.ID,
		RecipientID: ticket.CustomerID,
		Payload: map[string]any{
			"status": ticket.Status,
		},
		CreatedAt: e.clock.Now(),
	}
	if err := e.notifier.Notify(ctx, msg); err != nil {
		e.logger.Warn("notification dispatch failed",
			zap.Int64("ticket_id", ticket.ID),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
}

// ticketLocks serializes transitions per ticket. Distinct tickets proceed
// fully in parallel; entries are dropped once the last holder releases.
type ticketLocks struct {
	mu    sync.Mutex
	locks map[int64]*ticketLock
}

type ticketLock struct {
	mu   sync.Mutex
	refs int
}

func (l *ticketLocks) acquire(id int64) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int64]*ticketLock)
	}
	entry, ok := l.locks[id]
	if !ok {
		entry = &ticketLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
