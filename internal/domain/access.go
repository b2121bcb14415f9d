package domain

// AccessDecision is the result of an access policy evaluation.
type AccessDecision struct {
	Allowed bool
	Reason  string
}

// ReasonAccessDenied is returned for every policy denial except a missing
// ticket, which callers check before evaluating the policy.
const ReasonAccessDenied = "Access denied"

// CanAct decides whether an actor may read or mutate the ticket. Rules are
// evaluated in order, first match wins:
//  1. ADMIN always may.
//  2. ZONE_USER may iff the ticket's zone is in their zone set.
//  3. SERVICE_PERSON may iff they are the assignee or sub-owner.
//  4. Anyone else may iff they are the owner or sub-owner.
func CanAct(actor *User, ticket *Ticket) AccessDecision {
	if actor == nil || ticket == nil {
		return AccessDecision{Allowed: false, Reason: ReasonAccessDenied}
	}
	switch actor.Role {
	case RoleAdmin:
		return AccessDecision{Allowed: true}
	case RoleZoneUser:
		if actor.InZone(ticket.ZoneID) {
			return AccessDecision{Allowed: true}
		}
	case RoleServicePerson:
		if matchesRef(ticket.AssignedToID, actor.ID) || matchesRef(ticket.SubOwnerID, actor.ID) {
			return AccessDecision{Allowed: true}
		}
	default:
		if ticket.OwnerID == actor.ID || matchesRef(ticket.SubOwnerID, actor.ID) {
			return AccessDecision{Allowed: true}
		}
	}
	return AccessDecision{Allowed: false, Reason: ReasonAccessDenied}
}

func matchesRef(ref *int64, id int64) bool {
	return ref != nil && *ref == id
}
