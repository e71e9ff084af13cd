// Package inmemdb implements the repositories in memory. It backs the tests.
package inmemdb

import (
	"sync"

	"github.com/classpig/backend/core/attendance"
	"github.com/classpig/backend/core/schedule"
	"github.com/classpig/backend/core/user"
)

// DB holds every table behind a single lock, so deletes can cascade atomically.
type DB struct {
	sync.RWMutex

	users      map[int]*user.User
	classes    map[int]*schedule.Class
	attendance map[int]*attendance.Attendance

	userSeq, classSeq, attendanceSeq int
}

func Open() *DB {
	return &DB{
		users:      make(map[int]*user.User),
		classes:    make(map[int]*schedule.Class),
		attendance: make(map[int]*attendance.Attendance),
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.Lock()
	defer db.Unlock()
	db.users = make(map[int]*user.User)
	db.classes = make(map[int]*schedule.Class)
	db.attendance = make(map[int]*attendance.Attendance)
}

// deleteClasses must be called with the write lock held.
func (db *DB) deleteClasses(match func(cls *schedule.Class) bool) {
	for id, cls := range db.classes {
		if match(cls) {
			delete(db.classes, id)
		}
	}
	for id, att := range db.attendance {
		if _, ok := db.classes[att.ClassID]; !ok {
			delete(db.attendance, id)
		}
	}
}
