package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/field-service/internal/api/dto"
	"github.com/spec-kit/field-service/internal/auth"
	"github.com/spec-kit/field-service/internal/domain"
	"github.com/spec-kit/field-service/internal/service"
	apperrors "github.com/spec-kit/field-service/pkg/util"
)

// TicketsHandler manages ticket and workflow endpoints.
type TicketsHandler struct {
	tickets  *service.TicketService
	workflow *service.WorkflowService
	engine   *service.LifecycleEngine
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, workflow *service.WorkflowService, engine *service.LifecycleEngine) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, workflow: workflow, engine: engine}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.CreateTicket(c.Context(), principal.User.ID, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		CustomerID:  req.CustomerID,
		ZoneID:      req.ZoneID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	filter := parseTicketQuery(c)
	tickets, err := h.tickets.ListTickets(c.Context(), principal.User, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}
	ticket, history, err := h.tickets.GetTicket(c.Context(), principal.User.ID, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":    ticketResponse(ticket),
		"history": historyResponses(history),
	})
}

// History GET /tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}
	entries, err := h.tickets.History(c.Context(), principal.User.ID, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": historyResponses(entries)})
}

// AddNote POST /tickets/:id/notes.
func (h *TicketsHandler) AddNote(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.AddNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.AddNote(c.Context(), principal.User.ID, ticketID, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Transition POST /tickets/:id/transition.
func (h *TicketsHandler) Transition(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.engine.Transition(c.Context(), service.TransitionRequest{
		TicketID: ticketID,
		ActorID:  principal.User.ID,
		Target:   req.Target,
		Notes:    req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// AssignTechnician POST /tickets/:id/assign.
func (h *TicketsHandler) AssignTechnician(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.AssignTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.workflow.AssignToTechnician(c.Context(), ticketID, req.TechnicianID, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// PlanVisit POST /tickets/:id/visits.
func (h *TicketsHandler) PlanVisit(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.PlanVisitRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.VisitDate.IsZero() {
		return apperrors.NewValidationError("visit_date required", nil)
	}
	ticket, err := h.workflow.PlanOnsiteVisit(c.Context(), ticketID, req.TechnicianID, req.VisitDate, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// AssignZoneUser POST /tickets/:id/zone-user.
func (h *TicketsHandler) AssignZoneUser(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.AssignZoneUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.workflow.AssignToZoneUser(c.Context(), ticketID, req.ZoneUserID, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// CompleteVisit POST /tickets/:id/visits/complete.
func (h *TicketsHandler) CompleteVisit(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.CompleteVisitRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.workflow.CompleteOnsiteVisit(c.Context(), ticketID, principal.User.ID, service.OnsiteVisitOutcome{
		IsResolved:        req.IsResolved,
		SparePartsNeeded:  req.SparePartsNeeded,
		ResolutionSummary: req.ResolutionSummary,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// RequestPO POST /tickets/:id/purchase-orders.
func (h *TicketsHandler) RequestPO(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.RequestPORequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	po, err := h.workflow.RequestPurchaseOrder(c.Context(), ticketID, req.Amount, req.Description, principal.User.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": purchaseOrderResponse(po)})
}

// ApprovePO POST /tickets/:id/purchase-orders/approve.
func (h *TicketsHandler) ApprovePO(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.ApprovePORequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.PONumber) == "" {
		return apperrors.NewValidationError("po_number required", nil)
	}
	po, err := h.workflow.ApprovePurchaseOrder(c.Context(), ticketID, req.PONumber, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": purchaseOrderResponse(po)})
}

// UpdateSpareParts POST /tickets/:id/spare-parts.
func (h *TicketsHandler) UpdateSpareParts(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.SparePartsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.workflow.UpdateSparePartsStatus(c.Context(), ticketID, req.Status, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// CloseTicket POST /tickets/:id/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.CloseTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.workflow.CloseTicket(c.Context(), ticketID, principal.User.ID, req.Feedback, req.Rating)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", nil)
	}
	return id, nil
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:               ticket.ID,
		Title:            ticket.Title,
		Description:      ticket.Description,
		Status:           ticket.Status,
		Priority:         ticket.Priority,
		CustomerID:       ticket.CustomerID,
		ZoneID:           ticket.ZoneID,
		OwnerID:          ticket.OwnerID,
		AssignedToID:     ticket.AssignedToID,
		SubOwnerID:       ticket.SubOwnerID,
		CreatedAt:        ticket.CreatedAt,
		UpdatedAt:        ticket.UpdatedAt,
		LastStatusChange: ticket.LastStatusChange,
		ResolvedAt:       ticket.ResolvedAt,
		TimeInStatus:     ticket.TimeInStatus,
		TotalTimeOpen:    ticket.TotalTimeOpen,
	}
}

func historyResponses(entries []domain.StatusHistoryEntry) []dto.HistoryEntryResponse {
	resp := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.HistoryEntryResponse{
			ID:            entry.ID,
			Status:        entry.Status,
			ChangedByID:   entry.ChangedByID,
			ChangedAt:     entry.ChangedAt,
			Notes:         entry.Notes,
			TimeInStatus:  entry.TimeInStatus,
			TotalTimeOpen: entry.TotalTimeOpen,
		})
	}
	return resp
}

func purchaseOrderResponse(po *domain.PurchaseOrderRequest) dto.PurchaseOrderResponse {
	return dto.PurchaseOrderResponse{
		ID:            po.ID,
		TicketID:      po.TicketID,
		Amount:        po.Amount,
		Description:   po.Description,
		Status:        po.Status,
		PONumber:      po.PONumber,
		RequestedByID: po.RequestedByID,
		ApprovedByID:  po.ApprovedByID,
		ApprovedAt:    po.ApprovedAt,
		CreatedAt:     po.CreatedAt,
	}
}
