package inmemdb

import (
	"github.com/trezcool/gradebook/core/academic"
	"github.com/trezcool/gradebook/core/roster"
)

type academicRepository struct {
	db *DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *DB) academic.Repository {
	return &academicRepository{db: db}
}

func (repo *academicRepository) CreateGrade(g academic.Grade) (academic.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.db.studentIndex(g.StudentID) < 0 {
		return academic.Grade{}, roster.ErrStudentNotFound
	}
	g.ID = newID()
	repo.db.grades = append(repo.db.grades, g)
	return g, nil
}

func (repo *academicRepository) QueryGrades(filter academic.GradeFilter) ([]academic.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	grades := make([]academic.Grade, 0, len(repo.db.grades))
	for _, g := range repo.db.grades {
		if filter.Match(g) {
			grades = append(grades, g)
		}
	}
	return grades, nil
}

func (repo *academicRepository) CreateSchedule(s academic.Schedule) (academic.Schedule, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.db.classIndex(s.ClassID) < 0 {
		return academic.Schedule{}, roster.ErrClassNotFound
	}
	s.ID = newID()
	repo.db.schedules = append(repo.db.schedules, s)
	return s, nil
}

func (repo *academicRepository) QuerySchedules(filter academic.ClassFilter) ([]academic.Schedule, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	schedules := make([]academic.Schedule, 0, len(repo.db.schedules))
	for _, s := range repo.db.schedules {
		if filter.MatchID(s.ClassID) {
			schedules = append(schedules, s)
		}
	}
	return schedules, nil
}

func (repo *academicRepository) CreateHomework(hw academic.Homework) (academic.Homework, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.db.classIndex(hw.ClassID) < 0 {
		return academic.Homework{}, roster.ErrClassNotFound
	}
	hw.ID = newID()
	repo.db.homework = append(repo.db.homework, hw)
	return hw, nil
}

func (repo *academicRepository) QueryHomework(filter academic.ClassFilter) ([]academic.Homework, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	homework := make([]academic.Homework, 0, len(repo.db.homework))
	for _, hw := range repo.db.homework {
		if filter.MatchID(hw.ClassID) {
			homework = append(homework, hw)
		}
	}
	return homework, nil
}
