package inmemdb

import (
	"github.com/trezcool/gradebook/core/roster"
	"github.com/trezcool/gradebook/core/user"
)

type rosterRepository struct {
	db *DB
}

var _ roster.Repository = (*rosterRepository)(nil) // interface compliance check

func NewRosterRepository(db *DB) roster.Repository {
	return &rosterRepository{db: db}
}

func (repo *rosterRepository) CreateClass(cls roster.Class, ownerID string) (roster.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var owner *roster.Teacher
	if ownerID != "" {
		i := repo.db.teacherIndex(ownerID)
		if i < 0 {
			return roster.Class{}, roster.ErrTeacherNotFound
		}
		owner = repo.db.teachers[i]
	}

	cls.ID = newID()
	repo.db.classes = append(repo.db.classes, &cls)
	if owner != nil {
		owner.ClassIDs = append(copyStrings(owner.ClassIDs), cls.ID)
	}
	return cls, nil
}

func (repo *rosterRepository) GetClassByID(id string) (roster.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if i := repo.db.classIndex(id); i >= 0 {
		return *repo.db.classes[i], nil
	}
	return roster.Class{}, roster.ErrClassNotFound
}

func (repo *rosterRepository) QueryClasses(filter roster.ClassFilter) ([]roster.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]roster.Class, 0, len(repo.db.classes))
	for _, cls := range repo.db.classes {
		if filter.Match(*cls) {
			classes = append(classes, *cls)
		}
	}
	return classes, nil
}

func (repo *rosterRepository) DeleteClass(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	i := repo.db.classIndex(id)
	if i < 0 {
		return roster.ErrClassNotFound
	}
	if repo.classInUse(id) {
		return roster.ErrClassInUse
	}

	repo.db.classes = append(repo.db.classes[:i], repo.db.classes[i+1:]...)
	for _, t := range repo.db.teachers {
		if !t.HasClass(id) {
			continue
		}
		ids := make([]string, 0, len(t.ClassIDs)-1)
		for _, clsID := range t.ClassIDs {
			if clsID != id {
				ids = append(ids, clsID)
			}
		}
		t.ClassIDs = ids
	}
	return nil
}

func (repo *rosterRepository) classInUse(id string) bool {
	for _, s := range repo.db.students {
		if s.ClassID == id {
			return true
		}
	}
	for _, sch := range repo.db.schedules {
		if sch.ClassID == id {
			return true
		}
	}
	for _, hw := range repo.db.homework {
		if hw.ClassID == id {
			return true
		}
	}
	return false
}

func (repo *rosterRepository) CreateTeacher(usr user.User, t roster.Teacher) (roster.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.db.loginTaken(usr.LoginName) {
		return roster.Teacher{}, user.ErrLoginExists
	}

	usr.ID = newID()
	usr.Role = user.RoleTeacher
	t = cloneTeacher(t)
	t.ID = usr.ID
	repo.db.users = append(repo.db.users, &usr)
	repo.db.teachers = append(repo.db.teachers, &t)
	return cloneTeacher(t), nil
}

func (repo *rosterRepository) GetTeacherByID(id string) (roster.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if i := repo.db.teacherIndex(id); i >= 0 {
		return cloneTeacher(*repo.db.teachers[i]), nil
	}
	return roster.Teacher{}, roster.ErrTeacherNotFound
}

func (repo *rosterRepository) QueryTeachers(filter roster.TeacherFilter) ([]roster.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	teachers := make([]roster.Teacher, 0, len(repo.db.teachers))
	for _, t := range repo.db.teachers {
		if filter.Match(*t) {
			teachers = append(teachers, cloneTeacher(*t))
		}
	}
	return teachers, nil
}

func (repo *rosterRepository) UpdateTeacher(t roster.Teacher) (roster.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	i := repo.db.teacherIndex(t.ID)
	if i < 0 {
		return roster.Teacher{}, roster.ErrTeacherNotFound
	}
	if repo.db.loginTaken(t.LoginName, t.ID) {
		return roster.Teacher{}, user.ErrLoginExists
	}

	t = cloneTeacher(t)
	repo.db.teachers[i] = &t
	repo.db.mirrorUser(t.ID, t.LoginName, t.Secret, t.DisplayName, t.AvatarGlyph, t.UpdatedAt)
	return cloneTeacher(t), nil
}

func (repo *rosterRepository) DeleteTeacher(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	i := repo.db.teacherIndex(id)
	if i < 0 {
		return roster.ErrTeacherNotFound
	}
	repo.db.teachers = append(repo.db.teachers[:i], repo.db.teachers[i+1:]...)
	repo.db.deleteUser(id)
	return nil
}

func (repo *rosterRepository) CreateStudent(usr user.User, s roster.Student) (roster.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.db.classIndex(s.ClassID) < 0 {
		return roster.Student{}, roster.ErrClassNotFound
	}
	if repo.db.loginTaken(usr.LoginName) {
		return roster.Student{}, user.ErrLoginExists
	}

	usr.ID = newID()
	usr.Role = user.RoleStudent
	s.ID = usr.ID
	repo.db.users = append(repo.db.users, &usr)
	repo.db.students = append(repo.db.students, &s)
	return s, nil
}

func (repo *rosterRepository) GetStudentByID(id string) (roster.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if i := repo.db.studentIndex(id); i >= 0 {
		return *repo.db.students[i], nil
	}
	return roster.Student{}, roster.ErrStudentNotFound
}

func (repo *rosterRepository) QueryStudents(filter roster.StudentFilter) ([]roster.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]roster.Student, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		if filter.Match(*s) {
			students = append(students, *s)
		}
	}
	return students, nil
}

func (repo *rosterRepository) UpdateStudent(s roster.Student) (roster.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	i := repo.db.studentIndex(s.ID)
	if i < 0 {
		return roster.Student{}, roster.ErrStudentNotFound
	}
	if repo.db.classIndex(s.ClassID) < 0 {
		return roster.Student{}, roster.ErrClassNotFound
	}
	if repo.db.loginTaken(s.LoginName, s.ID) {
		return roster.Student{}, user.ErrLoginExists
	}

	repo.db.students[i] = &s
	repo.db.mirrorUser(s.ID, s.LoginName, s.Secret, s.DisplayName, s.AvatarGlyph, s.UpdatedAt)
	return s, nil
}

func (repo *rosterRepository) DeleteStudent(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	i := repo.db.studentIndex(id)
	if i < 0 {
		return roster.ErrStudentNotFound
	}
	repo.db.students = append(repo.db.students[:i], repo.db.students[i+1:]...)
	repo.db.deleteUser(id)

	grades := repo.db.grades[:0]
	for _, g := range repo.db.grades {
		if g.StudentID != id {
			grades = append(grades, g)
		}
	}
	repo.db.grades = grades
	return nil
}
