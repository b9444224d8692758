package academic

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

// Grade bounds
const (
	MinGrade = 2
	MaxGrade = 5

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Weekday is one of the six school days.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
)

// Weekdays in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// Index returns the position of d in Weekdays, or -1.
func (d Weekday) Index() int {
	for i, wd := range Weekdays {
		if d == wd {
			return i
		}
	}
	return -1
}

func (d Weekday) IsValid() bool { return d.Index() >= 0 }

// Grade is immutable once recorded.
type Grade struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Subject   string    `json:"subject"`
	Value     int       `json:"value"`
	Date      time.Time `json:"date"` // UTC
	TeacherID string    `json:"teacher_id"`
}

// Schedule is a weekly lesson slot.
type Schedule struct {
	ID      string  `json:"id"`
	ClassID string  `json:"class_id"`
	Weekday Weekday `json:"weekday"`
	Time    string  `json:"time"` // HH:MM
	Subject string  `json:"subject"`
}

type Homework struct {
	ID          string    `json:"id"`
	ClassID     string    `json:"class_id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
}

// SortSchedules orders slots by weekday, then time. Equal slots keep their insertion order.
func SortSchedules(schedules []Schedule) {
	sort.SliceStable(schedules, func(i, j int) bool {
		di, dj := schedules[i].Weekday.Index(), schedules[j].Weekday.Index()
		if di != dj {
			return di < dj
		}
		return schedules[i].Time < schedules[j].Time
	})
}

// NewGrade contains information needed to record a Grade.
// The teacher and the date are set by the gradebook.
type NewGrade struct {
	StudentID string `json:"student_id" validate:"required"`
	Subject   string `json:"subject" validate:"required"`
	Value     int    `json:"value" validate:"min=2,max=5"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.StudentID = core.CleanString(ng.StudentID)
	ng.Subject = core.CleanString(ng.Subject)
	return validate.Struct(ng)
}

// NewSchedule contains information needed to create a lesson slot.
type NewSchedule struct {
	ClassID string `json:"class_id" validate:"required"`
	Weekday string `json:"weekday" validate:"required,weekday"`
	Time    string `json:"time" validate:"required,datetime=15:04"`
	Subject string `json:"subject" validate:"required"`
}

func (ns *NewSchedule) Validate(validate *validator.Validate) error {
	ns.ClassID = core.CleanString(ns.ClassID)
	ns.Weekday = core.CleanString(ns.Weekday, true /* lower */)
	ns.Time = core.CleanString(ns.Time)
	ns.Subject = core.CleanString(ns.Subject)
	return validate.Struct(ns)
}

// NewHomework contains information needed to create a Homework.
type NewHomework struct {
	ClassID     string `json:"class_id" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	Description string `json:"description" validate:"required"`
	DueDate     string `json:"due_date" validate:"required,datetime=2006-01-02"`
}

func (nh *NewHomework) Validate(validate *validator.Validate) error {
	nh.ClassID = core.CleanString(nh.ClassID)
	nh.Subject = core.CleanString(nh.Subject)
	nh.Description = core.CleanString(nh.Description)
	nh.DueDate = core.CleanString(nh.DueDate)
	return validate.Struct(nh)
}

// Due parses the validated DueDate.
func (nh *NewHomework) Due() time.Time {
	due, _ := time.Parse(DateLayout, nh.DueDate)
	return due
}
