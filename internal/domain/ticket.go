package domain

import "time"

// TicketStatus enumerates lifecycle states for service tickets.
type TicketStatus string

const (
	TicketStatusOpen                TicketStatus = "OPEN"
	TicketStatusAssigned            TicketStatus = "ASSIGNED"
	TicketStatusInProcess           TicketStatus = "IN_PROCESS"
	TicketStatusWaitingCustomer     TicketStatus = "WAITING_CUSTOMER"
	TicketStatusOnsiteVisit         TicketStatus = "ONSITE_VISIT"
	TicketStatusOnsiteVisitPlanned  TicketStatus = "ONSITE_VISIT_PLANNED"
	TicketStatusPONeeded            TicketStatus = "PO_NEEDED"
	TicketStatusPOReceived          TicketStatus = "PO_RECEIVED"
	TicketStatusSparePartsNeeded    TicketStatus = "SPARE_PARTS_NEEDED"
	TicketStatusSparePartsBooked    TicketStatus = "SPARE_PARTS_BOOKED"
	TicketStatusSparePartsDelivered TicketStatus = "SPARE_PARTS_DELIVERED"
	TicketStatusClosedPending       TicketStatus = "CLOSED_PENDING"
	TicketStatusClosed              TicketStatus = "CLOSED"
	TicketStatusCancelled           TicketStatus = "CANCELLED"
	TicketStatusReopened            TicketStatus = "REOPENED"
	TicketStatusInProgress          TicketStatus = "IN_PROGRESS"
	TicketStatusOnHold              TicketStatus = "ON_HOLD"
	TicketStatusEscalated           TicketStatus = "ESCALATED"
	TicketStatusResolved            TicketStatus = "RESOLVED"
	TicketStatusPending             TicketStatus = "PENDING"
)

// TicketPriority enumerates urgency levels set at creation.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// Ticket is the aggregate for field-repair requests. Status is owned by the
// lifecycle engine; every other field is read-only to it except the
// assignment references set by workflow actions.
type Ticket struct {
	ID               int64
	Title            string
	Description      string
	Status           TicketStatus
	Priority         TicketPriority
	CustomerID       int64
	ZoneID           int64
	OwnerID          int64
	AssignedToID     *int64
	SubOwnerID       *int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	LastStatusChange time.Time
	ResolvedAt       *time.Time
	TimeInStatus     int64
	TotalTimeOpen    int64
}
