// Package inmemdb keeps the identity, roster and academic stores in process memory.
// All tables share one lock, so a multi-table write is atomic.
package inmemdb

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/academic"
	"github.com/trezcool/gradebook/core/roster"
	"github.com/trezcool/gradebook/core/user"
)

// DB tables keep insertion order.
type DB struct {
	sync.RWMutex
	users     []*user.User
	classes   []*roster.Class
	teachers  []*roster.Teacher
	students  []*roster.Student
	grades    []academic.Grade
	schedules []academic.Schedule
	homework  []academic.Homework
}

func Open() (*DB, error) {
	return &DB{}, nil
}

var newID = func() string { return uuid.New().String() } // mockable

func (db *DB) userIndex(id string) int {
	for i, usr := range db.users {
		if usr.ID == id {
			return i
		}
	}
	return -1
}

func (db *DB) classIndex(id string) int {
	for i, cls := range db.classes {
		if cls.ID == id {
			return i
		}
	}
	return -1
}

func (db *DB) teacherIndex(id string) int {
	for i, t := range db.teachers {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (db *DB) studentIndex(id string) int {
	for i, s := range db.students {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (db *DB) loginTaken(loginName string, excludedIDs ...string) bool {
	for _, usr := range db.users {
		if usr.LoginName == loginName && !core.ContainsString(excludedIDs, usr.ID) {
			return true
		}
	}
	return false
}

func (db *DB) deleteUser(id string) {
	if i := db.userIndex(id); i >= 0 {
		db.users = append(db.users[:i], db.users[i+1:]...)
	}
}

// mirrorUser copies the shared account fields of a roster record into its User.
func (db *DB) mirrorUser(id, loginName, secret, displayName, avatar string, t time.Time) {
	if i := db.userIndex(id); i >= 0 {
		usr := db.users[i]
		usr.LoginName = loginName
		usr.Secret = secret
		usr.DisplayName = displayName
		usr.AvatarGlyph = avatar
		usr.UpdatedAt = t
	}
}

func copyStrings(ss []string) []string {
	if ss == nil {
		return nil
	}
	return append(make([]string, 0, len(ss)), ss...)
}

func cloneTeacher(t roster.Teacher) roster.Teacher {
	t.Subjects = copyStrings(t.Subjects)
	t.ClassIDs = copyStrings(t.ClassIDs)
	return t
}
