package dto

import (
	"time"

	"github.com/spec-kit/field-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	CustomerID  int64                 `json:"customer_id"`
	ZoneID      int64                 `json:"zone_id"`
}

// TransitionRequest payload for generic status changes.
type TransitionRequest struct {
	Target domain.TicketStatus `json:"target"`
	Notes  string              `json:"notes"`
}

// AssignTechnicianRequest payload.
type AssignTechnicianRequest struct {
	TechnicianID int64 `json:"technician_id"`
}

// PlanVisitRequest payload.
type PlanVisitRequest struct {
	TechnicianID int64     `json:"technician_id"`
	VisitDate    time.Time `json:"visit_date"`
}

// AssignZoneUserRequest payload.
type AssignZoneUserRequest struct {
	ZoneUserID int64 `json:"zone_user_id"`
}

// CompleteVisitRequest payload.
type CompleteVisitRequest struct {
	IsResolved        bool   `json:"is_resolved"`
	SparePartsNeeded  bool   `json:"spare_parts_needed"`
	ResolutionSummary string `json:"resolution_summary"`
}

// RequestPORequest payload.
type RequestPORequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// ApprovePORequest payload.
type ApprovePORequest struct {
	PONumber string `json:"po_number"`
}

// SparePartsRequest payload.
type SparePartsRequest struct {
	Status domain.SparePartsStatus `json:"status"`
}

// CloseTicketRequest payload.
type CloseTicketRequest struct {
	Feedback string `json:"feedback"`
	Rating   *int   `json:"rating"`
}

// AddNoteRequest payload.
type AddNoteRequest struct {
	Note string `json:"note"`
}

// TicketResponse provides full ticket info.
type TicketResponse struct {
	ID               int64                 `json:"id"`
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	Status           domain.TicketStatus   `json:"status"`
	Priority         domain.TicketPriority `json:"priority"`
	CustomerID       int64                 `json:"customer_id"`
	ZoneID           int64                 `json:"zone_id"`
	OwnerID          int64                 `json:"owner_id"`
	AssignedToID     *int64                `json:"assigned_to_id"`
	SubOwnerID       *int64                `json:"sub_owner_id"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	LastStatusChange time.Time             `json:"last_status_change"`
	ResolvedAt       *time.Time            `json:"resolved_at"`
	TimeInStatus     int64                 `json:"time_in_status"`
	TotalTimeOpen    int64                 `json:"total_time_open"`
}

// HistoryEntryResponse represents one transition record.
type HistoryEntryResponse struct {
	ID            int64               `json:"id"`
	Status        domain.TicketStatus `json:"status"`
	ChangedByID   int64               `json:"changed_by_id"`
	ChangedAt     time.Time           `json:"changed_at"`
	Notes         string              `json:"notes"`
	TimeInStatus  int64               `json:"time_in_status"`
	TotalTimeOpen int64               `json:"total_time_open"`
}

// PurchaseOrderResponse represents a procurement request.
type PurchaseOrderResponse struct {
	ID            int64                      `json:"id"`
	TicketID      int64                      `json:"ticket_id"`
	Amount        float64                    `json:"amount"`
	Description   string                     `json:"description"`
	Status        domain.PurchaseOrderStatus `json:"status"`
	PONumber      *string                    `json:"po_number"`
	RequestedByID int64                      `json:"requested_by_id"`
	ApprovedByID  *int64                     `json:"approved_by_id"`
	ApprovedAt    *time.Time                 `json:"approved_at"`
	CreatedAt     time.Time                  `json:"created_at"`
}
