// Package policy decides which actor may perform which mutation.
// A denied mutation must leave every store untouched.
package policy

import (
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

// ErrNotAllowed is returned for any mutation the actor's role does not permit.
var ErrNotAllowed = errors.New("permission denied")

type Policy struct {
	rosterMode string
}

// New returns the Policy for the given roster mode (core.RosterModeAdmin or core.RosterModeTeacher).
// Unknown modes fall back to core.RosterModeAdmin.
func New(rosterMode string) *Policy {
	if rosterMode != core.RosterModeTeacher {
		rosterMode = core.RosterModeAdmin
	}
	return &Policy{rosterMode: rosterMode}
}

func (p *Policy) RosterMode() string { return p.rosterMode }

func (p *Policy) teachersManageRoster() bool { return p.rosterMode == core.RosterModeTeacher }

func deny() error { return ErrNotAllowed }

func allowAdmin(Admin) error     { return nil }
func allowTeacher(Teacher) error { return nil }
func denyAdmin(Admin) error      { return deny() }
func denyTeacher(Teacher) error  { return deny() }
func denyStudent(Student) error  { return deny() }

// CanCreateClass: admins; teachers too in teacher roster mode.
func (p *Policy) CanCreateClass(a Actor) error {
	return Match(a,
		allowAdmin,
		func(Teacher) error {
			if p.teachersManageRoster() {
				return nil
			}
			return deny()
		},
		denyStudent,
	)
}

// CanDeleteClass: admins.
func (p *Policy) CanDeleteClass(a Actor) error {
	return Match(a, allowAdmin, denyTeacher, denyStudent)
}

// CanListUsers: admins.
func (p *Policy) CanListUsers(a Actor) error {
	return Match(a, allowAdmin, denyTeacher, denyStudent)
}

// CanManageTeachers covers create, update and delete of teachers: admins.
func (p *Policy) CanManageTeachers(a Actor) error {
	return Match(a, allowAdmin, denyTeacher, denyStudent)
}

// CanCreateStudent: admins; in teacher roster mode, teachers enrolling into one of their classes.
func (p *Policy) CanCreateStudent(a Actor, classID string) error {
	return Match(a,
		allowAdmin,
		func(t Teacher) error {
			if p.teachersManageRoster() && t.Profile.HasClass(classID) {
				return nil
			}
			return deny()
		},
		denyStudent,
	)
}

// CanManageStudents covers update and delete of students: admins.
func (p *Policy) CanManageStudents(a Actor) error {
	return Match(a, allowAdmin, denyTeacher, denyStudent)
}

// CanRecordGrade: teachers, for one of their subjects.
func (p *Policy) CanRecordGrade(a Actor, subject string) error {
	return Match(a,
		denyAdmin,
		func(t Teacher) error {
			if t.Profile.Teaches(subject) {
				return nil
			}
			return deny()
		},
		denyStudent,
	)
}

// CanPlanLessons covers schedules and homework: staff (admins and teachers).
func (p *Policy) CanPlanLessons(a Actor) error {
	return Match(a, allowAdmin, allowTeacher, denyStudent)
}

// CanUpdateProfile: anyone, on their own profile only.
func (p *Policy) CanUpdateProfile(a Actor, userID string) error {
	if a == nil || a.Account().ID != userID {
		return ErrNotAllowed
	}
	return nil
}
