// Package attendance validates class check-ins and keeps the reward ledger.
package attendance

import (
	"context"
	"errors"
	"time"
)

var ErrConstraintViolation = errors.New("attendance references a missing user or class")

type Attendance struct {
	ID         int       `json:"id" db:"id"`
	UserID     int       `json:"user_id" db:"user_id"`
	ClassID    int       `json:"class_id" db:"class_id"`
	Reward     int       `json:"reward" db:"reward"`
	AttendedAt time.Time `json:"attended_at" db:"attended_at"` // UTC
}

// Result is the outcome of a successful check-in.
type Result struct {
	Attendance   Attendance
	Reward       int
	TotalRewards int
}

// Ledger stores attendance rows. Rows are never updated; they go away only when their user or class is deleted.
type Ledger interface {
	// HasRecentAttendance reports whether the user checked in to the class after `since`.
	HasRecentAttendance(ctx context.Context, userID, classID int, since time.Time) (bool, error)
	// RecordAttendance inserts `att` without checking the cooldown.
	// Returns ErrConstraintViolation if the user or class does not exist.
	RecordAttendance(ctx context.Context, att Attendance) (Attendance, error)
	// RecordAttendanceOnce inserts `att` unless the user checked in to the class after `since`,
	// in which case a *ConflictError holding the most recent row is returned.
	// The check and the insert are atomic with respect to other calls for the same (user, class).
	RecordAttendanceOnce(ctx context.Context, att Attendance, since time.Time) (Attendance, error)
	// TotalRewards sums the rewards of all the user's rows, 0 if none.
	TotalRewards(ctx context.Context, userID int) (int, error)
	// QueryAttendance returns the user's rows, newest first.
	QueryAttendance(ctx context.Context, userID int) ([]Attendance, error)
}

// ConflictError is returned by Ledger.RecordAttendanceOnce when a recent row blocks the insert.
type ConflictError struct {
	Existing Attendance
}

func (err *ConflictError) Error() string {
	return "attendance already recorded at " + err.Existing.AttendedAt.UTC().Format(time.RFC3339)
}
