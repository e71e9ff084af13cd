package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/classpig/backend/core/attendance"
)

type attendanceLedger struct {
	db *DB
}

var _ attendance.Ledger = (*attendanceLedger)(nil)

func NewAttendanceLedger(db *DB) attendance.Ledger {
	return &attendanceLedger{db: db}
}

// latest must be called with the lock held.
func (l *attendanceLedger) latest(userID, classID int, since time.Time) (attendance.Attendance, bool) {
	var found *attendance.Attendance
	for _, att := range l.db.attendance {
		if att.UserID != userID || att.ClassID != classID || !att.AttendedAt.After(since) {
			continue
		}
		if found == nil || att.AttendedAt.After(found.AttendedAt) {
			found = att
		}
	}
	if found == nil {
		return attendance.Attendance{}, false
	}
	return *found, true
}

func (l *attendanceLedger) HasRecentAttendance(_ context.Context, userID, classID int, since time.Time) (bool, error) {
	l.db.RLock()
	defer l.db.RUnlock()
	_, found := l.latest(userID, classID, since)
	return found, nil
}

func (l *attendanceLedger) RecordAttendance(_ context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	l.db.Lock()
	defer l.db.Unlock()
	return l.insert(att)
}

func (l *attendanceLedger) RecordAttendanceOnce(_ context.Context, att attendance.Attendance, since time.Time) (attendance.Attendance, error) {
	l.db.Lock()
	defer l.db.Unlock()

	if existing, found := l.latest(att.UserID, att.ClassID, since); found {
		return attendance.Attendance{}, &attendance.ConflictError{Existing: existing}
	}
	return l.insert(att)
}

// insert must be called with the write lock held.
func (l *attendanceLedger) insert(att attendance.Attendance) (attendance.Attendance, error) {
	if _, ok := l.db.users[att.UserID]; !ok {
		return attendance.Attendance{}, attendance.ErrConstraintViolation
	}
	if _, ok := l.db.classes[att.ClassID]; !ok {
		return attendance.Attendance{}, attendance.ErrConstraintViolation
	}
	l.db.attendanceSeq++
	att.ID = l.db.attendanceSeq
	l.db.attendance[att.ID] = &att
	return att, nil
}

func (l *attendanceLedger) TotalRewards(_ context.Context, userID int) (int, error) {
	l.db.RLock()
	defer l.db.RUnlock()

	var total int
	for _, att := range l.db.attendance {
		if att.UserID == userID {
			total += att.Reward
		}
	}
	return total, nil
}

func (l *attendanceLedger) QueryAttendance(_ context.Context, userID int) ([]attendance.Attendance, error) {
	l.db.RLock()
	defer l.db.RUnlock()

	rows := make([]attendance.Attendance, 0)
	for _, att := range l.db.attendance {
		if att.UserID == userID {
			rows = append(rows, *att)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AttendedAt.Equal(rows[j].AttendedAt) {
			return rows[i].ID > rows[j].ID
		}
		return rows[i].AttendedAt.After(rows[j].AttendedAt)
	})
	return rows, nil
}
