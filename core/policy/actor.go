package policy

import (
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/roster"
	"github.com/trezcool/gradebook/core/user"
)

var errUnknownActor = errors.New("unknown actor")

// Actor is the authenticated user acting on the gradebook: one of Admin, Teacher or Student.
type Actor interface {
	Account() user.User
	actor()
}

type Admin struct {
	User user.User
}

type Teacher struct {
	User    user.User
	Profile roster.Teacher
}

type Student struct {
	User    user.User
	Profile roster.Student
}

func (a Admin) Account() user.User   { return a.User }
func (a Teacher) Account() user.User { return a.User }
func (a Student) Account() user.User { return a.User }

func (Admin) actor()   {}
func (Teacher) actor() {}
func (Student) actor() {}

// Match dispatches on the actor's role. Every role needs a handler.
// A nil actor is never allowed anything.
func Match(a Actor, admin func(Admin) error, teacher func(Teacher) error, student func(Student) error) error {
	switch act := a.(type) {
	case Admin:
		return admin(act)
	case Teacher:
		return teacher(act)
	case Student:
		return student(act)
	}
	return ErrNotAllowed
}

// NewActor pairs an account with its roster payload.
// t is used for teachers and s for students; both are ignored for admins.
func NewActor(usr user.User, t roster.Teacher, s roster.Student) (Actor, error) {
	switch {
	case usr.IsAdmin():
		return Admin{User: usr}, nil
	case usr.IsTeacher():
		return Teacher{User: usr, Profile: t}, nil
	case usr.IsStudent():
		return Student{User: usr, Profile: s}, nil
	}
	return nil, errors.Wrapf(errUnknownActor, "role %q", usr.Role)
}
