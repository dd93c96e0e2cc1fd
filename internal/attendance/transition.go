package attendance

import "github.com/alecgard/clubhive/internal/apperr"

// Status is the state of a participation row.
type Status string

const (
	StatusRegistered Status = "registered"
	StatusAttended   Status = "attended"
	StatusAbsent     Status = "absent"
)

// ErrInvalidStatus is returned for a status outside the state machine.
var ErrInvalidStatus = apperr.Invalid(`status must be "attended", "absent" or "registered"`)

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusRegistered, StatusAttended, StatusAbsent:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// PointDelta is the change to the participant's balance when their row moves
// from one status to another at an event worth points. Entering attended
// credits the points, leaving it debits them, anything else is free.
func PointDelta(from, to Status, points int) int {
	switch {
	case from != StatusAttended && to == StatusAttended:
		return points
	case from == StatusAttended && to != StatusAttended:
		return -points
	}
	return 0
}

// ApplyDelta returns the balance after delta, floored at zero.
func ApplyDelta(balance, delta int) int {
	if balance+delta < 0 {
		return 0
	}
	return balance + delta
}

// AwardedFor is the pointsAwarded value a row carries once in status to.
func AwardedFor(to Status, points int) int {
	if to == StatusAttended {
		return points
	}
	return 0
}
