package roster

import (
	"errors"

	"github.com/trezcool/gradebook/core/user"
)

var (
	// errors
	ErrClassNotFound   = errors.New("class not found")
	ErrTeacherNotFound = errors.New("teacher not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrClassInUse      = errors.New("class is still referenced by students, schedules or homework")
)

type (
	// ClassFilter selects classes by ID. A nil IDs selects every class.
	ClassFilter struct {
		IDs []string
	}

	// TeacherFilter applies AND on the set fields.
	TeacherFilter struct {
		ClassID string
		Subject string
	}

	// StudentFilter selects students by class. A nil ClassIDs selects every student,
	// an empty non-nil ClassIDs selects none.
	StudentFilter struct {
		ClassIDs []string
	}

	// Repository is the Roster Store. Every method returns records in insertion order.
	// Teacher and Student records are written together with their user.User in one transaction.
	Repository interface {
		// CreateClass appends the class; if ownerID is set, the class is also assigned to that teacher.
		CreateClass(cls Class, ownerID string) (Class, error)
		GetClassByID(id string) (Class, error)
		QueryClasses(filter ClassFilter) ([]Class, error)
		// DeleteClass returns ErrClassInUse while a student, schedule or homework references the class.
		// The class is pruned from every teacher's ClassIDs.
		DeleteClass(id string) error

		CreateTeacher(usr user.User, t Teacher) (Teacher, error)
		GetTeacherByID(id string) (Teacher, error)
		QueryTeachers(filter TeacherFilter) ([]Teacher, error)
		UpdateTeacher(t Teacher) (Teacher, error)
		DeleteTeacher(id string) error

		CreateStudent(usr user.User, s Student) (Student, error)
		GetStudentByID(id string) (Student, error)
		QueryStudents(filter StudentFilter) ([]Student, error)
		UpdateStudent(s Student) (Student, error)
		// DeleteStudent also deletes every grade of the student.
		DeleteStudent(id string) error
	}
)

func (f StudentFilter) Match(s Student) bool {
	if f.ClassIDs == nil {
		return true
	}
	for _, id := range f.ClassIDs {
		if s.ClassID == id {
			return true
		}
	}
	return false
}

func (f TeacherFilter) Match(t Teacher) bool {
	if f.ClassID != "" && !t.HasClass(f.ClassID) {
		return false
	}
	if f.Subject != "" && !t.Teaches(f.Subject) {
		return false
	}
	return true
}

func (f ClassFilter) Match(cls Class) bool {
	if f.IDs == nil {
		return true
	}
	for _, id := range f.IDs {
		if cls.ID == id {
			return true
		}
	}
	return false
}
