package domain

import "time"

// PurchaseOrderStatus enumerates procurement request states.
type PurchaseOrderStatus string

const (
	PurchaseOrderPending  PurchaseOrderStatus = "PENDING"
	PurchaseOrderApproved PurchaseOrderStatus = "APPROVED"
)

// PurchaseOrderRequest is created when a ticket enters PO_NEEDED and
// approved by an admin, which moves the ticket to PO_RECEIVED.
type PurchaseOrderRequest struct {
	ID            int64
	TicketID      int64
	Amount        float64
	Description   string
	Status        PurchaseOrderStatus
	PONumber      *string
	RequestedByID int64
	ApprovedByID  *int64
	ApprovedAt    *time.Time
	CreatedAt     time.Time
}

// SparePartsStatus is the caller-facing input for spare-parts updates.
type SparePartsStatus string

const (
	SparePartsBooked    SparePartsStatus = "BOOKED"
	SparePartsDelivered SparePartsStatus = "DELIVERED"
)
