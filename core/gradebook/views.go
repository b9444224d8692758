package gradebook

import (
	"github.com/trezcool/gradebook/core/academic"
	"github.com/trezcool/gradebook/core/policy"
	"github.com/trezcool/gradebook/core/roster"
	"github.com/trezcool/gradebook/core/stats"
	"github.com/trezcool/gradebook/core/user"
)

// scope is the part of the roster an actor may read. nil IDs mean everything.
type scope struct {
	classIDs   []string
	studentIDs []string
}

func (gb *Gradebook) scopeOf(a policy.Actor) (scope, error) {
	var sc scope
	err := policy.Match(a,
		func(policy.Admin) error { return nil },
		func(t policy.Teacher) error {
			sc.classIDs = append([]string{}, t.Profile.ClassIDs...)
			students, err := gb.roster.QueryStudents(roster.StudentFilter{ClassIDs: sc.classIDs})
			if err != nil {
				return err
			}
			sc.studentIDs = make([]string, 0, len(students))
			for _, s := range students {
				sc.studentIDs = append(sc.studentIDs, s.ID)
			}
			return nil
		},
		func(s policy.Student) error {
			sc.classIDs = []string{s.Profile.ClassID}
			sc.studentIDs = []string{s.Profile.ID}
			return nil
		},
	)
	return sc, err
}

// Classes returns the classes visible to the actor.
func (gb *Gradebook) Classes(a policy.Actor) ([]roster.Class, error) {
	sc, err := gb.scopeOf(a)
	if err != nil {
		return nil, err
	}
	return gb.roster.QueryClasses(roster.ClassFilter{IDs: sc.classIDs})
}

// Teachers returns every teacher to staff, and the teachers of their class to students.
func (gb *Gradebook) Teachers(a policy.Actor) ([]roster.Teacher, error) {
	var filter roster.TeacherFilter
	err := policy.Match(a,
		func(policy.Admin) error { return nil },
		func(policy.Teacher) error { return nil },
		func(s policy.Student) error {
			filter.ClassID = s.Profile.ClassID
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return gb.roster.QueryTeachers(filter)
}

// Students returns the students visible to the actor.
func (gb *Gradebook) Students(a policy.Actor) ([]roster.Student, error) {
	sc, err := gb.scopeOf(a)
	if err != nil {
		return nil, err
	}
	if sc.studentIDs == nil {
		return gb.roster.QueryStudents(roster.StudentFilter{})
	}
	students, err := gb.roster.QueryStudents(roster.StudentFilter{ClassIDs: sc.classIDs})
	if err != nil {
		return nil, err
	}
	if _, ok := a.(policy.Student); ok {
		return onlyStudents(students, sc.studentIDs), nil
	}
	return students, nil
}

func onlyStudents(students []roster.Student, ids []string) []roster.Student {
	filtered := make([]roster.Student, 0, len(ids))
	for _, s := range students {
		for _, id := range ids {
			if s.ID == id {
				filtered = append(filtered, s)
				break
			}
		}
	}
	return filtered
}

// StudentsInClass lists the students of a class the actor can see.
func (gb *Gradebook) StudentsInClass(a policy.Actor, classID string) ([]roster.Student, error) {
	if _, err := gb.roster.GetClassByID(classID); err != nil {
		return nil, err
	}
	err := policy.Match(a,
		func(policy.Admin) error { return nil },
		func(t policy.Teacher) error {
			if t.Profile.HasClass(classID) {
				return nil
			}
			return policy.ErrNotAllowed
		},
		func(s policy.Student) error {
			if s.Profile.ClassID == classID {
				return nil
			}
			return policy.ErrNotAllowed
		},
	)
	if err != nil {
		return nil, err
	}
	return gb.roster.QueryStudents(roster.StudentFilter{ClassIDs: []string{classID}})
}

// Grades returns the grades of the students visible to the actor, in the order recorded.
func (gb *Gradebook) Grades(a policy.Actor) ([]academic.Grade, error) {
	sc, err := gb.scopeOf(a)
	if err != nil {
		return nil, err
	}
	return gb.academic.QueryGrades(academic.GradeFilter{StudentIDs: sc.studentIDs})
}

// Schedules returns the visible lesson slots ordered by weekday, then time.
func (gb *Gradebook) Schedules(a policy.Actor) ([]academic.Schedule, error) {
	sc, err := gb.scopeOf(a)
	if err != nil {
		return nil, err
	}
	schedules, err := gb.academic.QuerySchedules(academic.ClassFilter{ClassIDs: sc.classIDs})
	if err != nil {
		return nil, err
	}
	academic.SortSchedules(schedules)
	return schedules, nil
}

func (gb *Gradebook) Homework(a policy.Actor) ([]academic.Homework, error) {
	sc, err := gb.scopeOf(a)
	if err != nil {
		return nil, err
	}
	return gb.academic.QueryHomework(academic.ClassFilter{ClassIDs: sc.classIDs})
}

// Snapshot reads the whole store for the statistics engine.
func (gb *Gradebook) Snapshot() (stats.Snapshot, error) {
	classes, err := gb.roster.QueryClasses(roster.ClassFilter{})
	if err != nil {
		return stats.Snapshot{}, err
	}
	students, err := gb.roster.QueryStudents(roster.StudentFilter{})
	if err != nil {
		return stats.Snapshot{}, err
	}
	grades, err := gb.academic.QueryGrades(academic.GradeFilter{})
	if err != nil {
		return stats.Snapshot{}, err
	}
	return stats.Snapshot{Classes: classes, Students: students, Grades: grades}, nil
}

// Statistics returns the snapshot restricted to what the actor can see.
func (gb *Gradebook) Statistics(a policy.Actor) (stats.Snapshot, error) {
	classes, err := gb.Classes(a)
	if err != nil {
		return stats.Snapshot{}, err
	}
	students, err := gb.Students(a)
	if err != nil {
		return stats.Snapshot{}, err
	}
	grades, err := gb.Grades(a)
	if err != nil {
		return stats.Snapshot{}, err
	}
	return stats.Snapshot{Classes: classes, Students: students, Grades: grades}, nil
}

// TopStudents ranks the visible students; n <= 0 uses the configured length.
func (gb *Gradebook) TopStudents(a policy.Actor, n int) ([]stats.StudentStats, error) {
	snap, err := gb.Statistics(a)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = gb.conf.TopStudents
	}
	return snap.TopStudents(n), nil
}

// Summary summarizes the statistics visible to the actor.
func (gb *Gradebook) Summary(a policy.Actor) (Summary, error) {
	snap, err := gb.Statistics(a)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(snap, gb.conf.TopStudents), nil
}

// Summary is the statistics block of the staff dashboards.
type Summary struct {
	Overall      float64              `json:"overall"`
	OverallText  string               `json:"overall_text"`
	Top          []stats.StudentStats `json:"top"`
	Subjects     []stats.SubjectStats `json:"subjects"`
	Classes      []stats.ClassStats   `json:"classes"`
	Distribution stats.Distribution   `json:"distribution"`
}

func Summarize(snap stats.Snapshot, top int) Summary {
	overall := snap.OverallAverage()
	return Summary{
		Overall:      overall,
		OverallText:  stats.Format(overall),
		Top:          snap.TopStudents(top),
		Subjects:     snap.SubjectAverages(),
		Classes:      snap.ClassAverages(),
		Distribution: snap.Distribution(),
	}
}

// Dashboard is one of AdminDashboard, TeacherDashboard or StudentDashboard.
type Dashboard interface {
	Account() user.User
}

type (
	AdminDashboard struct {
		Role      user.Role           `json:"role"`
		User      user.User           `json:"user"`
		Classes   []roster.Class      `json:"classes"`
		Teachers  []roster.Teacher    `json:"teachers"`
		Students  []roster.Student    `json:"students"`
		Grades    []academic.Grade    `json:"grades"`
		Schedules []academic.Schedule `json:"schedules"`
		Homework  []academic.Homework `json:"homework"`
		Stats     Summary             `json:"stats"`
	}

	TeacherDashboard struct {
		Role      user.Role           `json:"role"`
		User      user.User           `json:"user"`
		Teacher   roster.Teacher      `json:"teacher"`
		Classes   []roster.Class      `json:"classes"`
		Students  []roster.Student    `json:"students"`
		Grades    []academic.Grade    `json:"grades"`
		Schedules []academic.Schedule `json:"schedules"`
		Homework  []academic.Homework `json:"homework"`
		Stats     Summary             `json:"stats"`
	}

	StudentDashboard struct {
		Role        user.Role            `json:"role"`
		User        user.User            `json:"user"`
		Student     roster.Student       `json:"student"`
		Class       roster.Class         `json:"class"`
		Grades      []academic.Grade     `json:"grades"`
		Average     float64              `json:"average"`
		AverageText string               `json:"average_text"`
		Subjects    []stats.SubjectStats `json:"subjects"`
		Schedules   []academic.Schedule  `json:"schedules"`
		Homework    []academic.Homework  `json:"homework"`
	}
)

func (d AdminDashboard) Account() user.User   { return d.User }
func (d TeacherDashboard) Account() user.User { return d.User }
func (d StudentDashboard) Account() user.User { return d.User }

// staffView holds the scoped collections shared by the staff dashboards.
type staffView struct {
	classes   []roster.Class
	students  []roster.Student
	grades    []academic.Grade
	schedules []academic.Schedule
	homework  []academic.Homework
}

func (gb *Gradebook) staffView(a policy.Actor) (staffView, error) {
	var v staffView
	var err error
	if v.classes, err = gb.Classes(a); err != nil {
		return v, err
	}
	if v.students, err = gb.Students(a); err != nil {
		return v, err
	}
	if v.grades, err = gb.Grades(a); err != nil {
		return v, err
	}
	if v.schedules, err = gb.Schedules(a); err != nil {
		return v, err
	}
	if v.homework, err = gb.Homework(a); err != nil {
		return v, err
	}
	return v, nil
}

func (v staffView) snapshot() stats.Snapshot {
	return stats.Snapshot{Classes: v.classes, Students: v.students, Grades: v.grades}
}

// Dashboard builds the role-specific view of the actor.
func (gb *Gradebook) Dashboard(a policy.Actor) (Dashboard, error) {
	var dash Dashboard
	err := policy.Match(a,
		func(adm policy.Admin) error {
			v, err := gb.staffView(a)
			if err != nil {
				return err
			}
			teachers, err := gb.Teachers(a)
			if err != nil {
				return err
			}
			dash = AdminDashboard{
				Role:      user.RoleAdmin,
				User:      adm.User,
				Classes:   v.classes,
				Teachers:  teachers,
				Students:  v.students,
				Grades:    v.grades,
				Schedules: v.schedules,
				Homework:  v.homework,
				Stats:     Summarize(v.snapshot(), gb.conf.TopStudents),
			}
			return nil
		},
		func(t policy.Teacher) error {
			v, err := gb.staffView(a)
			if err != nil {
				return err
			}
			dash = TeacherDashboard{
				Role:      user.RoleTeacher,
				User:      t.User,
				Teacher:   t.Profile,
				Classes:   v.classes,
				Students:  v.students,
				Grades:    v.grades,
				Schedules: v.schedules,
				Homework:  v.homework,
				Stats:     Summarize(v.snapshot(), gb.conf.TopStudents),
			}
			return nil
		},
		func(s policy.Student) error {
			cls, err := gb.roster.GetClassByID(s.Profile.ClassID)
			if err != nil {
				return err
			}
			grades, err := gb.Grades(a)
			if err != nil {
				return err
			}
			schedules, err := gb.Schedules(a)
			if err != nil {
				return err
			}
			homework, err := gb.Homework(a)
			if err != nil {
				return err
			}
			snap := stats.Snapshot{Classes: []roster.Class{cls}, Students: []roster.Student{s.Profile}, Grades: grades}
			avg := snap.StudentAverage(s.Profile.ID)
			dash = StudentDashboard{
				Role:        user.RoleStudent,
				User:        s.User,
				Student:     s.Profile,
				Class:       cls,
				Grades:      grades,
				Average:     avg,
				AverageText: stats.Format(avg),
				Subjects:    snap.StudentSubjectAverages(s.Profile.ID),
				Schedules:   schedules,
				Homework:    homework,
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return dash, nil
}
