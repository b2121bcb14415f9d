package domain

import "time"

// Zone is a geographic partition used for access scoping.
type Zone struct {
	ID        int64
	Name      string
	Active    bool
	CreatedAt time.Time
}
