package academic

import "github.com/trezcool/gradebook/core"

type (
	// GradeFilter applies AND on the set fields. A nil StudentIDs selects every student.
	GradeFilter struct {
		StudentIDs []string
		Subject    string
		TeacherID  string
	}

	// ClassFilter selects schedules or homework by class. A nil ClassIDs selects everything.
	ClassFilter struct {
		ClassIDs []string
	}

	// Repository is the Academic Record Store. Every query returns records in insertion order.
	Repository interface {
		CreateGrade(g Grade) (Grade, error)
		QueryGrades(filter GradeFilter) ([]Grade, error)

		CreateSchedule(s Schedule) (Schedule, error)
		QuerySchedules(filter ClassFilter) ([]Schedule, error)

		CreateHomework(hw Homework) (Homework, error)
		QueryHomework(filter ClassFilter) ([]Homework, error)
	}
)

func (f GradeFilter) Match(g Grade) bool {
	if f.StudentIDs != nil && !core.ContainsString(f.StudentIDs, g.StudentID) {
		return false
	}
	if f.Subject != "" && g.Subject != f.Subject {
		return false
	}
	if f.TeacherID != "" && g.TeacherID != f.TeacherID {
		return false
	}
	return true
}

func (f ClassFilter) MatchID(classID string) bool {
	return f.ClassIDs == nil || core.ContainsString(f.ClassIDs, classID)
}

