package domain

import "time"

// Role enumerates actor roles.
type Role string

const (
	RoleAdmin         Role = "ADMIN"
	RoleZoneUser      Role = "ZONE_USER"
	RoleServicePerson Role = "SERVICE_PERSON"
	RoleCustomer      Role = "CUSTOMER"
)

// User models any actor in the system: administrators, zone coordinators,
// field technicians and customers. ZoneIDs is populated for ZONE_USER only.
type User struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	ZoneIDs      []int64
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// InZone reports whether the user may act within the given zone.
func (u *User) InZone(zoneID int64) bool {
	for _, id := range u.ZoneIDs {
		if id == zoneID {
			return true
		}
	}
	return false
}
