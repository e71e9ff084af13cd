package sqlxrepos

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpig/backend/core/attendance"
	"github.com/classpig/backend/core/schedule"
	"github.com/classpig/backend/core/user"
	"github.com/classpig/backend/storage/database"
)

// openTestDB connects to TEST_DATABASE_URL, migrates it and empties every table.
// Tests are skipped when the variable is not set.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db.DB, "up"))
	_, err = db.Exec("TRUNCATE users, classes, attendance RESTART IDENTITY CASCADE")
	require.NoError(t, err)
	return db
}

func createUser(t *testing.T, repo user.Repository, uname string) user.User {
	t.Helper()
	usr, err := repo.CreateUser(context.Background(), user.User{Username: uname, PasswordHash: []byte("hash"), CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	return usr
}

func createClass(t *testing.T, repo schedule.Repository, userID int, name string) schedule.Class {
	t.Helper()
	cls, err := repo.CreateClass(context.Background(), schedule.Class{
		UserID: userID, Name: name, Location: "Gates", StartTime: "10:00 AM", EndTime: "11:20 AM", CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return cls
}

func TestUserRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	piglet := createUser(t, repo, "piglet")
	hamlet := createUser(t, repo, "hamlet")

	assert.Equal(t, user.ErrUsernameExists, repo.CheckUsernameUniqueness(ctx, "piglet"))
	assert.NoError(t, repo.CheckUsernameUniqueness(ctx, "piglet", piglet))
	_, err := repo.CreateUser(ctx, user.User{Username: "piglet", PasswordHash: []byte("x"), CreatedAt: time.Now()})
	assert.Equal(t, user.ErrUsernameExists, err)

	got, err := repo.GetUser(ctx, user.GetFilter{Username: "hamlet"})
	require.NoError(t, err)
	assert.Equal(t, hamlet.ID, got.ID)
	assert.Equal(t, []byte("hash"), got.PasswordHash)
	_, err = repo.GetUser(ctx, user.GetFilter{ID: 999})
	assert.Equal(t, user.ErrNotFound, err)

	// nil hash keeps the current one
	renamed, err := repo.UpdateUser(ctx, user.User{ID: piglet.ID, Username: "babe"})
	require.NoError(t, err)
	assert.Equal(t, "babe", renamed.Username)
	assert.Equal(t, []byte("hash"), renamed.PasswordHash)
	_, err = repo.UpdateUser(ctx, user.User{ID: piglet.ID, Username: "hamlet"})
	assert.Equal(t, user.ErrUsernameExists, err)

	require.NoError(t, repo.DeleteUsersByID(ctx, piglet.ID, hamlet.ID))
	_, err = repo.GetUser(ctx, user.GetFilter{ID: hamlet.ID})
	assert.Equal(t, user.ErrNotFound, err)
}

func TestClassRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	repo := NewClassRepository(db)
	ledger := NewAttendanceLedger(db)

	piglet := createUser(t, users, "piglet")
	hamlet := createUser(t, users, "hamlet")
	algo := createClass(t, repo, piglet.ID, "Algorithms")

	_, err := repo.GetClass(ctx, hamlet.ID, algo.ID)
	assert.Equal(t, schedule.ErrNotFound, err)
	assert.Equal(t, schedule.ErrNotFound, repo.DeleteClass(ctx, hamlet.ID, algo.ID))
	_, err = repo.CreateClass(ctx, schedule.Class{UserID: 999, Name: "Ghost"})
	assert.Equal(t, schedule.ErrNotFound, err)

	algo.Location = "Wean"
	updated, err := repo.UpdateClass(ctx, algo)
	require.NoError(t, err)
	assert.Equal(t, "Wean", updated.Location)

	_, err = ledger.RecordAttendance(ctx, attendance.Attendance{UserID: piglet.ID, ClassID: algo.ID, Reward: 2, AttendedAt: time.Now()})
	require.NoError(t, err)

	created, err := repo.ReplaceClasses(ctx, piglet.ID, []schedule.Class{{Name: "Compilers"}, {Name: "Databases"}})
	require.NoError(t, err)
	require.Len(t, created, 2)

	classes, err := repo.QueryClasses(ctx, piglet.ID)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, "Compilers", classes[0].Name)

	total, err := ledger.TotalRewards(ctx, piglet.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, total, "history of replaced classes is gone")
}

func TestAttendanceLedger(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	classes := NewClassRepository(db)
	ledger := NewAttendanceLedger(db)

	piglet := createUser(t, users, "piglet")
	cls := createClass(t, classes, piglet.ID, "Algorithms")
	t0 := time.Now().UTC().Truncate(time.Second)

	total, err := ledger.TotalRewards(ctx, piglet.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	_, err = ledger.RecordAttendance(ctx, attendance.Attendance{UserID: piglet.ID, ClassID: 999, Reward: 1, AttendedAt: t0})
	assert.Equal(t, attendance.ErrConstraintViolation, err)

	first, err := ledger.RecordAttendanceOnce(ctx, attendance.Attendance{UserID: piglet.ID, ClassID: cls.ID, Reward: 3, AttendedAt: t0}, t0.Add(-23*time.Hour))
	require.NoError(t, err)

	recent, err := ledger.HasRecentAttendance(ctx, piglet.ID, cls.ID, t0.Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, recent)

	later := t0.Add(time.Hour)
	_, err = ledger.RecordAttendanceOnce(ctx, attendance.Attendance{UserID: piglet.ID, ClassID: cls.ID, Reward: 4, AttendedAt: later}, later.Add(-23*time.Hour))
	var conflict *attendance.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, first.ID, conflict.Existing.ID)

	nextDay := t0.Add(24 * time.Hour)
	_, err = ledger.RecordAttendanceOnce(ctx, attendance.Attendance{UserID: piglet.ID, ClassID: cls.ID, Reward: 4, AttendedAt: nextDay}, nextDay.Add(-23*time.Hour))
	require.NoError(t, err)

	rows, err := ledger.QueryAttendance(ctx, piglet.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].AttendedAt.Equal(nextDay))

	total, err = ledger.TotalRewards(ctx, piglet.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
}

func TestAttendanceLedger_RecordOnceConcurrent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	piglet := createUser(t, NewUserRepository(db), "piglet")
	cls := createClass(t, NewClassRepository(db), piglet.ID, "Algorithms")
	ledger := NewAttendanceLedger(db)
	now := time.Now().UTC()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var inserted, conflicts int
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			att := attendance.Attendance{UserID: piglet.ID, ClassID: cls.ID, Reward: 5, AttendedAt: now}
			_, err := ledger.RecordAttendanceOnce(ctx, att, now.Add(-23*time.Hour))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				inserted++
			} else if _, ok := err.(*attendance.ConflictError); ok {
				conflicts++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, inserted)
	assert.Equal(t, 7, conflicts)
}
