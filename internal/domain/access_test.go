package domain

import "testing"

func ptr(v int64) *int64 { return &v }

func TestCanAct_AdminAlwaysAllowed(t *testing.T) {
	admin := &User{ID: 1, Role: RoleAdmin}
	ticket := &Ticket{ID: 10, ZoneID: 99, OwnerID: 2, CustomerID: 3}
	if decision := CanAct(admin, ticket); !decision.Allowed {
		t.Fatalf("admin denied: %s", decision.Reason)
	}
}

func TestCanAct_ZoneUserScopedToZones(t *testing.T) {
	ticket := &Ticket{ID: 10, ZoneID: 5, OwnerID: 2}

	inZone := &User{ID: 7, Role: RoleZoneUser, ZoneIDs: []int64{1, 5, 9}}
	if decision := CanAct(inZone, ticket); !decision.Allowed {
		t.Fatalf("zone user in zone denied: %s", decision.Reason)
	}

	outOfZone := &User{ID: 8, Role: RoleZoneUser, ZoneIDs: []int64{1, 2}}
	decision := CanAct(outOfZone, ticket)
	if decision.Allowed {
		t.Fatal("zone user outside zone allowed")
	}
	if decision.Reason != ReasonAccessDenied {
		t.Fatalf("reason = %q, want %q", decision.Reason, ReasonAccessDenied)
	}

	noZones := &User{ID: 9, Role: RoleZoneUser}
	if CanAct(noZones, ticket).Allowed {
		t.Fatal("zone user with no zones allowed")
	}
}

func TestCanAct_ServicePersonNeedsAssignment(t *testing.T) {
	tech := &User{ID: 20, Role: RoleServicePerson}

	assigned := &Ticket{ID: 10, ZoneID: 5, AssignedToID: ptr(20)}
	if !CanAct(tech, assigned).Allowed {
		t.Fatal("assigned technician denied")
	}

	subOwned := &Ticket{ID: 11, ZoneID: 5, SubOwnerID: ptr(20)}
	if !CanAct(tech, subOwned).Allowed {
		t.Fatal("sub-owner technician denied")
	}

	unrelated := &Ticket{ID: 12, ZoneID: 5, AssignedToID: ptr(21)}
	decision := CanAct(tech, unrelated)
	if decision.Allowed {
		t.Fatal("unrelated technician allowed")
	}
	if decision.Reason != ReasonAccessDenied {
		t.Fatalf("reason = %q, want %q", decision.Reason, ReasonAccessDenied)
	}

	// being the ticket owner does not help a service person; rule 3 binds
	owned := &Ticket{ID: 13, ZoneID: 5, OwnerID: 20}
	if CanAct(tech, owned).Allowed {
		t.Fatal("service person allowed through ownership")
	}
}

func TestCanAct_CustomerNeedsOwnership(t *testing.T) {
	customer := &User{ID: 30, Role: RoleCustomer}

	owned := &Ticket{ID: 10, OwnerID: 30}
	if !CanAct(customer, owned).Allowed {
		t.Fatal("owner denied")
	}

	subOwned := &Ticket{ID: 11, OwnerID: 2, SubOwnerID: ptr(30)}
	if !CanAct(customer, subOwned).Allowed {
		t.Fatal("sub-owner denied")
	}

	other := &Ticket{ID: 12, OwnerID: 2, CustomerID: 30}
	decision := CanAct(customer, other)
	if decision.Allowed {
		t.Fatal("non-owner customer allowed")
	}
	if decision.Reason != ReasonAccessDenied {
		t.Fatalf("reason = %q, want %q", decision.Reason, ReasonAccessDenied)
	}
}

func TestCanAct_NilInputsDenied(t *testing.T) {
	if CanAct(nil, &Ticket{ID: 1}).Allowed {
		t.Fatal("nil actor allowed")
	}
	if CanAct(&User{ID: 1, Role: RoleAdmin}, nil).Allowed {
		t.Fatal("nil ticket allowed")
	}
}
