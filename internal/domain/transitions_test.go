package domain

import "testing"

func TestCanTransition_TableMatchesAllowedTargets(t *testing.T) {
	for _, from := range AllStatuses() {
		allowed := make(map[TicketStatus]bool)
		for _, target := range AllowedTargets(from) {
			allowed[target] = true
		}
		for _, to := range AllStatuses() {
			got := CanTransition(from, to)
			if got != allowed[to] {
				t.Errorf("CanTransition(%s, %s) = %v, table says %v", from, to, got, allowed[to])
			}
		}
	}
}

func TestCanTransition_RejectsEveryPairNotInTable(t *testing.T) {
	rejected := 0
	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			if !CanTransition(from, to) {
				rejected++
			}
		}
	}
	total := len(AllStatuses()) * len(AllStatuses())
	if rejected == 0 || rejected == total {
		t.Fatalf("expected a mix of allowed and rejected pairs, rejected %d of %d", rejected, total)
	}
}

func TestCanTransition_ClosedOnlyReopens(t *testing.T) {
	for _, to := range AllStatuses() {
		got := CanTransition(TicketStatusClosed, to)
		want := to == TicketStatusReopened
		if got != want {
			t.Errorf("CanTransition(CLOSED, %s) = %v, want %v", to, got, want)
		}
	}
}

func TestAllowedTargets_EveryStatusHasAnExit(t *testing.T) {
	for _, status := range AllStatuses() {
		if len(AllowedTargets(status)) == 0 {
			t.Errorf("status %s has no exit", status)
		}
	}
}

func TestAllowedTargets_ReturnsCopy(t *testing.T) {
	first := AllowedTargets(TicketStatusOpen)
	if len(first) == 0 {
		t.Fatal("expected OPEN to have targets")
	}
	first[0] = TicketStatusClosed
	second := AllowedTargets(TicketStatusOpen)
	if second[0] == TicketStatusClosed && second[0] != allowedTransitions[TicketStatusOpen][0] {
		t.Fatal("mutating the returned slice leaked into the table")
	}
	if !CanTransition(TicketStatusOpen, TicketStatusAssigned) {
		t.Fatal("table corrupted by caller mutation")
	}
}

func TestValidStatus(t *testing.T) {
	for _, status := range AllStatuses() {
		if !ValidStatus(status) {
			t.Errorf("expected %s to be valid", status)
		}
	}
	if ValidStatus(TicketStatus("BOGUS")) {
		t.Error("BOGUS should not be a valid status")
	}
	if ValidStatus(TicketStatus("")) {
		t.Error("empty status should not be valid")
	}
}

func TestCanTransition_SpecificEdges(t *testing.T) {
	cases := []struct {
		from, to TicketStatus
		want     bool
	}{
		{TicketStatusOpen, TicketStatusAssigned, true},
		{TicketStatusOpen, TicketStatusResolved, false},
		{TicketStatusAssigned, TicketStatusOnsiteVisit, true},
		{TicketStatusOnsiteVisit, TicketStatusOnsiteVisitPlanned, true},
		{TicketStatusOnsiteVisitPlanned, TicketStatusSparePartsNeeded, true},
		{TicketStatusOnsiteVisitPlanned, TicketStatusResolved, false},
		{TicketStatusPONeeded, TicketStatusPOReceived, true},
		{TicketStatusPOReceived, TicketStatusPONeeded, false},
		{TicketStatusSparePartsNeeded, TicketStatusSparePartsBooked, true},
		{TicketStatusSparePartsBooked, TicketStatusSparePartsDelivered, true},
		{TicketStatusSparePartsDelivered, TicketStatusInProcess, true},
		{TicketStatusInProcess, TicketStatusResolved, true},
		{TicketStatusResolved, TicketStatusClosed, true},
		{TicketStatusClosedPending, TicketStatusClosed, true},
		{TicketStatusClosedPending, TicketStatusReopened, true},
		{TicketStatusCancelled, TicketStatusReopened, true},
		{TicketStatusReopened, TicketStatusAssigned, true},
		{TicketStatusPending, TicketStatusOpen, true},
		{TicketStatusClosed, TicketStatusOpen, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
