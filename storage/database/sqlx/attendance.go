package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/classpig/backend/core"
	"github.com/classpig/backend/core/attendance"
)

const attendanceColumns = "id, user_id, class_id, reward, attended_at"

type attendanceLedger struct {
	db core.DB
}

var _ attendance.Ledger = (*attendanceLedger)(nil)

func NewAttendanceLedger(db core.DB) attendance.Ledger {
	return &attendanceLedger{db: db}
}

func (l *attendanceLedger) HasRecentAttendance(ctx context.Context, userID, classID int, since time.Time) (bool, error) {
	_, found, err := latestAttendance(ctx, l.db, userID, classID, since)
	return found, err
}

func (l *attendanceLedger) RecordAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	return insertAttendance(ctx, l.db, att)
}

// RecordAttendanceOnce serializes check-ins of a (user, class) pair with a transaction-scoped advisory lock,
// so two requests cannot both pass the recent attendance check.
func (l *attendanceLedger) RecordAttendanceOnce(ctx context.Context, att attendance.Attendance, since time.Time) (attendance.Attendance, error) {
	var created attendance.Attendance
	err := inTx(ctx, l.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1, $2)", att.UserID, att.ClassID); err != nil {
			return errors.Wrap(err, "locking (user, class)")
		}
		existing, found, err := latestAttendance(ctx, tx, att.UserID, att.ClassID, since)
		if err != nil {
			return err
		}
		if found {
			return &attendance.ConflictError{Existing: existing}
		}
		created, err = insertAttendance(ctx, tx, att)
		return err
	})
	if err != nil {
		return attendance.Attendance{}, err
	}
	return created, nil
}

func (l *attendanceLedger) TotalRewards(ctx context.Context, userID int) (int, error) {
	var total int
	q := "SELECT COALESCE(SUM(reward), 0) FROM attendance WHERE user_id = $1"
	if err := l.db.GetContext(ctx, &total, q, userID); err != nil {
		return 0, errors.Wrap(err, "summing rewards")
	}
	return total, nil
}

func (l *attendanceLedger) QueryAttendance(ctx context.Context, userID int) ([]attendance.Attendance, error) {
	rows := make([]attendance.Attendance, 0)
	q := "SELECT " + attendanceColumns + " FROM attendance WHERE user_id = $1 ORDER BY attended_at DESC, id DESC"
	if err := l.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "selecting attendance")
	}
	return rows, nil
}

func latestAttendance(ctx context.Context, db core.DBExecutor, userID, classID int, since time.Time) (attendance.Attendance, bool, error) {
	var att attendance.Attendance
	q := "SELECT " + attendanceColumns + ` FROM attendance
		WHERE user_id = $1 AND class_id = $2 AND attended_at > $3
		ORDER BY attended_at DESC LIMIT 1`
	if err := db.GetContext(ctx, &att, q, userID, classID, since); err != nil {
		if err == sql.ErrNoRows {
			return attendance.Attendance{}, false, nil
		}
		return attendance.Attendance{}, false, errors.Wrap(err, "selecting recent attendance")
	}
	return att, true, nil
}

func insertAttendance(ctx context.Context, db core.DBExecutor, att attendance.Attendance) (attendance.Attendance, error) {
	q := `INSERT INTO attendance (user_id, class_id, reward, attended_at)
		VALUES ($1, $2, $3, $4) RETURNING ` + attendanceColumns
	var created attendance.Attendance
	if err := db.GetContext(ctx, &created, q, att.UserID, att.ClassID, att.Reward, att.AttendedAt); err != nil {
		if pqCode(err) == foreignKeyViolation {
			return attendance.Attendance{}, attendance.ErrConstraintViolation
		}
		return attendance.Attendance{}, errors.Wrap(err, "inserting attendance")
	}
	return created, nil
}
