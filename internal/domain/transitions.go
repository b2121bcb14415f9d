package domain

// allowedTransitions is the single source of truth for the lifecycle graph.
// Every workflow action validates against this table; no call site declares
// its own copy.
var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:     {TicketStatusAssigned, TicketStatusCancelled, TicketStatusPending},
	TicketStatusAssigned: {TicketStatusInProcess, TicketStatusOnsiteVisit, TicketStatusCancelled, TicketStatusPending},
	TicketStatusInProcess: {
		TicketStatusWaitingCustomer, TicketStatusOnsiteVisit, TicketStatusPONeeded,
		TicketStatusSparePartsNeeded, TicketStatusClosedPending, TicketStatusCancelled,
		TicketStatusResolved, TicketStatusInProgress, TicketStatusOnHold,
		TicketStatusEscalated, TicketStatusPending,
	},
	TicketStatusWaitingCustomer: {TicketStatusInProcess, TicketStatusClosedPending, TicketStatusCancelled, TicketStatusPending},
	TicketStatusOnsiteVisit:     {TicketStatusOnsiteVisitPlanned, TicketStatusInProcess, TicketStatusCancelled, TicketStatusPending},
	TicketStatusOnsiteVisitPlanned: {
		TicketStatusInProcess, TicketStatusPONeeded, TicketStatusSparePartsNeeded,
		TicketStatusClosedPending, TicketStatusCancelled, TicketStatusPending,
	},
	TicketStatusPONeeded:            {TicketStatusPOReceived, TicketStatusCancelled, TicketStatusPending},
	TicketStatusPOReceived:          {TicketStatusInProcess, TicketStatusCancelled, TicketStatusPending},
	TicketStatusSparePartsNeeded:    {TicketStatusSparePartsBooked, TicketStatusCancelled, TicketStatusPending},
	TicketStatusSparePartsBooked:    {TicketStatusSparePartsDelivered, TicketStatusCancelled, TicketStatusPending},
	TicketStatusSparePartsDelivered: {TicketStatusInProcess, TicketStatusCancelled, TicketStatusPending},
	TicketStatusClosedPending:       {TicketStatusClosed, TicketStatusReopened, TicketStatusPending},
	TicketStatusClosed:              {TicketStatusReopened},
	TicketStatusCancelled:           {TicketStatusReopened, TicketStatusPending},
	TicketStatusReopened:            {TicketStatusAssigned, TicketStatusInProcess, TicketStatusCancelled, TicketStatusPending},
	TicketStatusInProgress:          {TicketStatusInProcess, TicketStatusOnHold, TicketStatusEscalated, TicketStatusPending},
	TicketStatusOnHold:              {TicketStatusInProcess, TicketStatusInProgress, TicketStatusPending},
	TicketStatusEscalated:           {TicketStatusInProcess, TicketStatusInProgress, TicketStatusPending},
	TicketStatusResolved:            {TicketStatusClosed, TicketStatusReopened, TicketStatusPending},
	TicketStatusPending:             {TicketStatusOpen, TicketStatusAssigned, TicketStatusInProcess},
}

// CanTransition reports whether the table permits moving from current to next.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// AllowedTargets returns the legal successor states for a status. The result
// is a copy; callers may not mutate the table.
func AllowedTargets(status TicketStatus) []TicketStatus {
	targets := allowedTransitions[status]
	out := make([]TicketStatus, len(targets))
	copy(out, targets)
	return out
}

// AllStatuses lists every lifecycle state, for exhaustive validation.
func AllStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusOpen, TicketStatusAssigned, TicketStatusInProcess,
		TicketStatusWaitingCustomer, TicketStatusOnsiteVisit, TicketStatusOnsiteVisitPlanned,
		TicketStatusPONeeded, TicketStatusPOReceived, TicketStatusSparePartsNeeded,
		TicketStatusSparePartsBooked, TicketStatusSparePartsDelivered, TicketStatusClosedPending,
		TicketStatusClosed, TicketStatusCancelled, TicketStatusReopened,
		TicketStatusInProgress, TicketStatusOnHold, TicketStatusEscalated,
		TicketStatusResolved, TicketStatusPending,
	}
}

// ValidStatus reports whether s is one of the enumerated lifecycle states.
func ValidStatus(s TicketStatus) bool {
	_, ok := allowedTransitions[s]
	return ok
}
