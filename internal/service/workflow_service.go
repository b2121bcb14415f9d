package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/field-service/internal/clock"
	"github.com/spec-kit/field-service/internal/domain"
	"github.com/spec-kit/field-service/internal/notify"
	"github.com/spec-kit/field-service/internal/repository"
	apperrors "github.com/spec-kit/field-service/pkg/util"
)

// WorkflowService exposes the named operations built atop the lifecycle
// engine. Each action validates its own preconditions, computes the target
// status and may create or update a secondary record.
type WorkflowService struct {
	engine         *LifecycleEngine
	users          repository.UserRepository
	purchaseOrders repository.PurchaseOrderRepository
	feedback       repository.FeedbackRepository
	notifier       notify.Dispatcher
	clock          clock.Clock
	logger         *zap.Logger
}

// WorkflowDependencies bundles collaborators for workflow actions.
type WorkflowDependencies struct {
	Engine            *LifecycleEngine
	UserRepo          repository.UserRepository
	PurchaseOrderRepo repository.PurchaseOrderRepository
	FeedbackRepo      repository.FeedbackRepository
	Notifier          notify.Dispatcher
	Clock             clock.Clock
	Logger            *zap.Logger
}

// NewWorkflowService constructs the service.
func NewWorkflowService(deps WorkflowDependencies) *WorkflowService {
	c := deps.Clock
	if c == nil {
		c = clock.NewSystem()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkflowService{
		engine:         deps.Engine,
		users:          deps.UserRepo,
		purchaseOrders: deps.PurchaseOrderRepo,
		feedback:       deps.FeedbackRepo,
		notifier:       deps.Notifier,
		clock:          c,
		logger:         logger,
	}
}

// AssignToTechnician moves the ticket to ASSIGNED and records the acting
// technician. The technician is notified of the new assignment.
func (s *WorkflowService) AssignToTechnician(ctx context.Context, ticketID, technicianID, actorID int64) (*domain.Ticket, error) {
	technician, err := s.requireActiveServicePerson(ctx, technicianID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.engine.Transition(ctx, TransitionRequest{
		TicketID: ticketID,
		ActorID:  actorID,
		Target:   domain.TicketStatusAssigned,
		Notes:    "assigned to technician",
		AssignTo: &technician.ID,
	})
	if err != nil {
		return nil, err
	}
	s.dispatch(ctx, notify.Message{
		Kind:        notify.KindAssigned,
		TicketID:    ticket.ID,
		RecipientID: technician.ID,
		Payload: map[string]any{
			"ticket_id": ticket.ID,
			"priority":  ticket.Priority,
		},
	})
	return ticket, nil
}

// PlanOnsiteVisit schedules a technician visit: the ticket moves to
// ONSITE_VISIT_PLANNED and a reminder is queued for the visit date.
// Reminder delivery timing is outside the engine's guarantee.
func (s *WorkflowService) PlanOnsiteVisit(ctx context.Context, ticketID, technicianID int64, visitDate time.Time, actorID int64) (*domain.Ticket, error) {
	technician, err := s.requireActiveServicePerson(ctx, technicianID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.engine.Transition(ctx, TransitionRequest{
		TicketID: ticketID,
		ActorID:  actorID,
		Target:   domain.TicketStatusOnsiteVisitPlanned,
		Notes:    "onsite visit planned for " + visitDate.Format(time.RFC3339),
		AssignTo: &technician.ID,
	})
	if err != nil {
		return nil, err
	}
	s.dispatch(ctx, notify.Message{
		Kind:        notify.KindVisitPlanned,
		TicketID:    ticket.ID,
		RecipientID: technician.ID,
		ScheduledAt: &visitDate,
		Payload: map[string]any{
			"ticket_id":  ticket.ID,
			"visit_date": visitDate,
		},
	})
	return ticket, nil
}

// AssignToZoneUser sets the ticket's sub-owner without changing status: a
// self-loop permitted for ownership reassignment only.
func (s *WorkflowService) AssignToZoneUser(ctx context.Context, ticketID, zoneUserID, actorID int64) (*domain.Ticket, error) {
	zoneUser, err := s.loadUser(ctx, zoneUserID, "Zone user")
	if err != nil {
		return nil, err
	}
	if !zoneUser.Active {
		return nil, apperrors.NewConflict("zone user inactive", map[string]any{"user_id": zoneUserID})
	}
	ticket, err := s.engine.Reassign(ctx, ticketID, actorID, zoneUser.ID, "reassigned to zone user")
	if err != nil {
		return nil, err
	}
	s.dispatch(ctx, notify.Message{
		Kind:        notify.KindAssigned,
		TicketID:    ticket.ID,
		RecipientID: zoneUser.ID,
		Payload: map[string]any{
			"ticket_id": ticket.ID,
			"role":      "sub_owner",
		},
	})
	return ticket, nil
}

// OnsiteVisitOutcome captures the result of a completed visit. Exactly one
// outcome applies per call; resolution takes precedence over spare parts.
type OnsiteVisitOutcome struct {
	IsResolved        bool
	SparePartsNeeded  bool
	ResolutionSummary string
}

// CompleteOnsiteVisit finishes a visit and routes the ticket to RESOLVED,
// SPARE_PARTS_NEEDED or IN_PROCESS depending on the outcome flags.
func (s *WorkflowService) CompleteOnsiteVisit(ctx context.Context, ticketID, actorID int64, outcome OnsiteVisitOutcome) (*domain.Ticket, error) {
	target := domain.TicketStatusInProcess
	switch {
	case outcome.IsResolved:
		target = domain.TicketStatusResolved
	case outcome.SparePartsNeeded:
		target = domain.TicketStatusSparePartsNeeded
	}
	return s.engine.Transition(ctx, TransitionRequest{
		TicketID: ticketID,
		ActorID:  actorID,
		Target:   target,
		Notes:    outcome.ResolutionSummary,
	})
}

// RequestPurchaseOrder moves the ticket to PO_NEEDED and opens a PENDING
// purchase order request.
func (s *WorkflowService) RequestPurchaseOrder(ctx context.Context, ticketID int64, amount float64, description string, actorID int64) (*domain.PurchaseOrderRequest, error) {
	if amount <= 0 {
		return nil, apperrors.NewInvalidInput("amount must be positive", map[string]any{"amount": amount})
	}
	if strings.TrimSpace(description) == "" {
		return nil, apperrors.NewInvalidInput("description required", nil)
	}
	if _, err := s.engine.Transition(ctx, TransitionRequest{
		TicketID: ticketID,
		ActorID:  actorID,
		Target:   domain.TicketStatusPONeeded,
		Notes:    "purchase order requested",
	}); err != nil {
		return nil, err
	}
	po := &domain.PurchaseOrderRequest{
		TicketID:      ticketID,
		Amount:        amount,
		Description:   strings.TrimSpace(description),
		Status:        domain.PurchaseOrderPending,
		RequestedByID: actorID,
	}
	if err := s.purchaseOrders.Create(ctx, po); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return po, nil
}

// ApprovePurchaseOrder is admin-only: it marks the pending purchase order
// APPROVED and moves the ticket to PO_RECEIVED.
func (s *WorkflowService) ApprovePurchaseOrder(ctx context.Context, ticketID int64, poNumber string, actorID int64) (*domain.PurchaseOrderRequest, error) {
	actor, err := s.loadUser(ctx, actorID, "Actor")
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin role required")
	}
	po, err := s.purchaseOrders.GetPendingByTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Purchase order", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewStorageError(err)
	}
	if _, err := s.engine.Transition(ctx, TransitionRequest{
		TicketID: ticketID,
		ActorID:  actorID,
		Target:   domain.TicketStatusPOReceived,
		Notes:    "purchase order " + poNumber + " approved",
	}); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	po.Status = domain.PurchaseOrderApproved
	po.PONumber = &poNumber
	po.ApprovedByID = &actorID
	po.ApprovedAt = &now
	if err := s.purchaseOrders.Approve(ctx, po); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return po, nil
}

// UpdateSparePartsStatus maps a procurement update onto the corresponding
// lifecycle state.
func (s *WorkflowService) UpdateSparePartsStatus(ctx context.Context, ticketID int64, status domain.SparePartsStatus, actorID int64) (*domain.Ticket, error) {
	var target domain.TicketStatus
	switch status {
	case domain.SparePartsBooked:
		target = domain.TicketStatusSparePartsBooked
	case domain.SparePartsDelivered:
		target = domain.TicketStatusSparePartsDelivered
	default:
		return nil, apperrors.NewInvalidInput("unknown spare parts status", map[string]any{"status": string(status)})
	}
	return s.engine.Transition(ctx, TransitionRequest{
		TicketID: ticketID,
		ActorID:  actorID,
		Target:   target,
		Notes:    "spare parts " + strings.ToLower(string(status)),
	})
}

// CloseTicket runs the two-step closure: CLOSED_PENDING then CLOSED, each
// with its own history entry. The intermediate state is observable by
// concurrent readers; that is intentional, modeling a human review gate.
func (s *WorkflowService) CloseTicket(ctx context.Context, ticketID, actorID int64, feedbackText string, rating *int) (*domain.Ticket, error) {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, apperrors.NewInvalidInput("rating must be between 1 and 5", map[string]any{"rating": *rating})
	}
	if _, err := s.engine.Transition(ctx, TransitionRequest{
		TicketID: ticketID,
		ActorID:  actorID,
		Target:   domain.TicketStatusClosedPending,
		Notes:    "closure requested",
	}); err != nil {
		return nil, err
	}
	ticket, err := s.engine.Transition(ctx, TransitionRequest{
		TicketID: ticketID,
		ActorID:  actorID,
		Target:   domain.TicketStatusClosed,
		Notes:    "ticket closed",
	})
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(feedbackText) != "" || rating != nil {
		record := &domain.TicketFeedback{
			TicketID:      ticket.ID,
			SubmittedByID: actorID,
			Feedback:      strings.TrimSpace(feedbackText),
			Rating:        rating,
		}
		if err := s.feedback.Create(ctx, record); err != nil {
			s.logger.Warn("feedback record failed",
				zap.Int64("ticket_id", ticket.ID),
				zap.Error(err))
		}
	}
	return ticket, nil
}

func (s *WorkflowService) requireActiveServicePerson(ctx context.Context, technicianID int64) (*domain.User, error) {
	technician, err := s.loadUser(ctx, technicianID, "Technician")
	if err != nil {
		return nil, err
	}
	if technician.Role != domain.RoleServicePerson {
		return nil, apperrors.NewInvalidInput("user is not a service person", map[string]any{"user_id": technicianID})
	}
	if !technician.Active {
		return nil, apperrors.NewConflict("technician inactive", map[string]any{"user_id": technicianID})
	}
	return technician, nil
}

func (s *WorkflowService) loadUser(ctx context.Context, id int64, resource string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound(resource, map[string]any{"user_id": id})
		}
		return nil, apperrors.NewStorageError(err)
	}
	return user, nil
}

// dispatch sends an action-driven notification, swallowing delivery errors.
func (s *WorkflowService) dispatch(ctx context.Context, msg notify.Message) {
	if s.notifier == nil {
		return
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.clock.Now()
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.logger.Warn("notification dispatch failed",
			zap.Int64("ticket_id", msg.TicketID),
			zap.String("kind", string(msg.Kind)),
			zap.Error(err))
	}
}
