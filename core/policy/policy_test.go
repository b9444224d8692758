package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/roster"
	"github.com/trezcool/gradebook/core/user"
)

var (
	admin   = Admin{User: user.User{ID: "a1", Role: user.RoleAdmin}}
	teacher = Teacher{
		User:    user.User{ID: "t1", Role: user.RoleTeacher},
		Profile: roster.Teacher{ID: "t1", Subjects: []string{"Math"}, ClassIDs: []string{"9a"}},
	}
	student = Student{
		User:    user.User{ID: "s1", Role: user.RoleStudent},
		Profile: roster.Student{ID: "s1", ClassID: "9a"},
	}
)

func TestPolicy_adminMode(t *testing.T) {
	p := New(core.RosterModeAdmin)
	tests := []struct {
		name  string
		check func(a Actor) error
		want  [3]bool // admin, teacher, student
	}{
		{name: "create class", check: p.CanCreateClass, want: [3]bool{true, false, false}},
		{name: "delete class", check: p.CanDeleteClass, want: [3]bool{true, false, false}},
		{name: "list users", check: p.CanListUsers, want: [3]bool{true, false, false}},
		{name: "manage teachers", check: p.CanManageTeachers, want: [3]bool{true, false, false}},
		{name: "create student in own class", check: func(a Actor) error { return p.CanCreateStudent(a, "9a") }, want: [3]bool{true, false, false}},
		{name: "manage students", check: p.CanManageStudents, want: [3]bool{true, false, false}},
		{name: "grade own subject", check: func(a Actor) error { return p.CanRecordGrade(a, "Math") }, want: [3]bool{false, true, false}},
		{name: "grade other subject", check: func(a Actor) error { return p.CanRecordGrade(a, "Physics") }, want: [3]bool{false, false, false}},
		{name: "plan lessons", check: p.CanPlanLessons, want: [3]bool{true, true, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, a := range []Actor{admin, teacher, student} {
				err := tt.check(a)
				if tt.want[i] {
					assert.NoError(t, err, a.Account().Role)
				} else {
					assert.Equal(t, ErrNotAllowed, err, a.Account().Role)
				}
			}
		})
	}
}

func TestPolicy_teacherMode(t *testing.T) {
	p := New(core.RosterModeTeacher)
	assert.Equal(t, core.RosterModeTeacher, p.RosterMode())

	assert.NoError(t, p.CanCreateClass(teacher))
	assert.Equal(t, ErrNotAllowed, p.CanCreateClass(student))

	assert.NoError(t, p.CanCreateStudent(teacher, "9a"))
	assert.Equal(t, ErrNotAllowed, p.CanCreateStudent(teacher, "9b"))
	assert.Equal(t, ErrNotAllowed, p.CanCreateStudent(student, "9a"))

	// the rest of the roster stays admin only
	assert.Equal(t, ErrNotAllowed, p.CanDeleteClass(teacher))
	assert.Equal(t, ErrNotAllowed, p.CanManageTeachers(teacher))
	assert.Equal(t, ErrNotAllowed, p.CanManageStudents(teacher))
}

func TestNew_unknownMode(t *testing.T) {
	assert.Equal(t, core.RosterModeAdmin, New("").RosterMode())
	assert.Equal(t, core.RosterModeAdmin, New("anarchy").RosterMode())
}

func TestPolicy_CanUpdateProfile(t *testing.T) {
	p := New(core.RosterModeAdmin)
	for _, a := range []Actor{admin, teacher, student} {
		assert.NoError(t, p.CanUpdateProfile(a, a.Account().ID))
		assert.Equal(t, ErrNotAllowed, p.CanUpdateProfile(a, "someone-else"))
	}
	assert.Equal(t, ErrNotAllowed, p.CanUpdateProfile(nil, ""))
}

func TestMatch(t *testing.T) {
	var got string
	tests := []struct {
		actor Actor
		want  string
	}{
		{actor: admin, want: "admin"},
		{actor: teacher, want: "teacher"},
		{actor: student, want: "student"},
	}
	for _, tt := range tests {
		err := Match(tt.actor,
			func(Admin) error { got = "admin"; return nil },
			func(Teacher) error { got = "teacher"; return nil },
			func(Student) error { got = "student"; return nil },
		)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	err := Match(nil,
		func(Admin) error { return nil },
		func(Teacher) error { return nil },
		func(Student) error { return nil },
	)
	assert.Equal(t, ErrNotAllowed, err)
}

func TestNewActor(t *testing.T) {
	tch := roster.Teacher{ID: "t1"}
	std := roster.Student{ID: "s1"}

	a, err := NewActor(user.User{ID: "t1", Role: user.RoleTeacher}, tch, std)
	require.NoError(t, err)
	assert.Equal(t, Teacher{User: user.User{ID: "t1", Role: user.RoleTeacher}, Profile: tch}, a)

	a, err = NewActor(user.User{ID: "s1", Role: user.RoleStudent}, tch, std)
	require.NoError(t, err)
	assert.Equal(t, std, a.(Student).Profile)

	a, err = NewActor(user.User{ID: "a1", Role: user.RoleAdmin}, tch, std)
	require.NoError(t, err)
	assert.IsType(t, Admin{}, a)

	_, err = NewActor(user.User{Role: "janitor"}, tch, std)
	assert.Error(t, err)
}
