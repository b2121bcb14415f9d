package domain

import "time"

// TrackTime computes the minute-resolution durations recorded on every
// transition: time spent in the current status and total time the ticket has
// been open. Both floor to whole minutes.
func TrackTime(createdAt, lastStatusChange, now time.Time) (timeInStatus, totalTimeOpen int64) {
	timeInStatus = flooredMinutes(lastStatusChange, now)
	totalTimeOpen = flooredMinutes(createdAt, now)
	return timeInStatus, totalTimeOpen
}

func flooredMinutes(from, to time.Time) int64 {
	if to.Before(from) {
		return 0
	}
	return int64(to.Sub(from) / time.Minute)
}
