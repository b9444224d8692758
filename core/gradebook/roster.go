package gradebook

import (
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/policy"
	"github.com/trezcool/gradebook/core/roster"
	"github.com/trezcool/gradebook/core/user"
)

// AddClass creates a class. A teacher creating a class is assigned to it.
func (gb *Gradebook) AddClass(a policy.Actor, nc roster.NewClass) (roster.Class, error) {
	const op = "add class"
	if err := gb.check(a, op, gb.policy.CanCreateClass(a), func() error {
		return nc.Validate(gb.validate)
	}); err != nil {
		return roster.Class{}, err
	}

	var ownerID string
	if t, ok := a.(policy.Teacher); ok {
		ownerID = t.Profile.ID
	}
	cls, err := gb.roster.CreateClass(roster.Class{Name: nc.Name, CreatedAt: nowFunc().UTC()}, ownerID)
	if err != nil {
		return roster.Class{}, errors.Wrap(err, op)
	}
	gb.accepted(a, op, map[string]interface{}{"class": cls.ID, "name": cls.Name})
	return cls, nil
}

// DeleteClass removes a class nothing refers to anymore.
func (gb *Gradebook) DeleteClass(a policy.Actor, id string) error {
	const op = "delete class"
	if err := gb.check(a, op, gb.policy.CanDeleteClass(a), nil); err != nil {
		return err
	}
	if err := gb.roster.DeleteClass(id); err != nil {
		if errors.Cause(err) == roster.ErrClassInUse {
			return gb.invalid(a, op, fieldError("id", roster.ErrClassInUse))
		}
		return err
	}
	gb.accepted(a, op, map[string]interface{}{"class": id})
	return nil
}

// AddTeacher creates a Teacher together with its User.
func (gb *Gradebook) AddTeacher(a policy.Actor, nt roster.NewTeacher) (roster.Teacher, error) {
	const op = "add teacher"
	if err := gb.check(a, op, gb.policy.CanManageTeachers(a), func() error {
		if err := nt.Validate(gb.validate, gb.usrSvc); err != nil {
			return err
		}
		return gb.checkClasses(nt.ClassIDs)
	}); err != nil {
		return roster.Teacher{}, err
	}

	t, err := gb.createTeacher(nt)
	if err != nil {
		return roster.Teacher{}, err
	}
	gb.accepted(a, op, map[string]interface{}{"teacher": t.ID, "login": t.LoginName})
	return t, nil
}

// createTeacher writes a validated NewTeacher.
func (gb *Gradebook) createTeacher(nt roster.NewTeacher) (roster.Teacher, error) {
	now := nowFunc().UTC()
	usr := user.User{
		LoginName:   nt.LoginName,
		Secret:      nt.Secret,
		Role:        user.RoleTeacher,
		DisplayName: nt.DisplayName,
		AvatarGlyph: nt.AvatarGlyph,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t := roster.Teacher{
		DisplayName: nt.DisplayName,
		LoginName:   nt.LoginName,
		Secret:      nt.Secret,
		Subjects:    nt.Subjects,
		ClassIDs:    nt.ClassIDs,
		AvatarGlyph: nt.AvatarGlyph,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.ClassIDs == nil {
		t.ClassIDs = []string{}
	}
	t, err := gb.roster.CreateTeacher(usr, t)
	if err != nil {
		return roster.Teacher{}, asValidation(err)
	}
	return t, nil
}

// UpdateTeacher merges ut into the teacher; blank fields keep their value.
func (gb *Gradebook) UpdateTeacher(a policy.Actor, id string, ut roster.UpdateTeacher) (roster.Teacher, error) {
	const op = "update teacher"
	if err := gb.check(a, op, gb.policy.CanManageTeachers(a), nil); err != nil {
		return roster.Teacher{}, err
	}

	orig, err := gb.roster.GetTeacherByID(id)
	if err != nil {
		return roster.Teacher{}, err
	}
	if err := ut.Validate(orig, gb.validate, gb.usrSvc); err != nil {
		return roster.Teacher{}, gb.invalid(a, op, err)
	}
	if err := gb.checkClasses(ut.ClassIDs); err != nil {
		return roster.Teacher{}, gb.invalid(a, op, err)
	}

	t := ut.Apply(orig)
	t.UpdatedAt = nowFunc().UTC()
	if t, err = gb.roster.UpdateTeacher(t); err != nil {
		return roster.Teacher{}, asValidation(err)
	}
	gb.accepted(a, op, map[string]interface{}{"teacher": t.ID})
	return t, nil
}

func (gb *Gradebook) DeleteTeacher(a policy.Actor, id string) error {
	const op = "delete teacher"
	if err := gb.check(a, op, gb.policy.CanManageTeachers(a), nil); err != nil {
		return err
	}
	if err := gb.roster.DeleteTeacher(id); err != nil {
		return err
	}
	gb.accepted(a, op, map[string]interface{}{"teacher": id})
	return nil
}

// AddStudent creates a Student together with its User.
func (gb *Gradebook) AddStudent(a policy.Actor, ns roster.NewStudent) (roster.Student, error) {
	const op = "add student"
	allowed := gb.policy.CanCreateStudent(a, core.CleanString(ns.ClassID))
	if err := gb.check(a, op, allowed, func() error {
		if err := ns.Validate(gb.validate, gb.usrSvc); err != nil {
			return err
		}
		return gb.checkClass("class_id", ns.ClassID)
	}); err != nil {
		return roster.Student{}, err
	}

	now := nowFunc().UTC()
	usr := user.User{
		LoginName:   ns.LoginName,
		Secret:      ns.Secret,
		Role:        user.RoleStudent,
		DisplayName: ns.DisplayName,
		AvatarGlyph: ns.AvatarGlyph,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s, err := gb.roster.CreateStudent(usr, roster.Student{
		DisplayName: ns.DisplayName,
		LoginName:   ns.LoginName,
		Secret:      ns.Secret,
		ClassID:     ns.ClassID,
		AvatarGlyph: ns.AvatarGlyph,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return roster.Student{}, asValidation(err)
	}
	gb.accepted(a, op, map[string]interface{}{"student": s.ID, "class": s.ClassID})
	return s, nil
}

// UpdateStudent merges us into the student; blank fields keep their value.
func (gb *Gradebook) UpdateStudent(a policy.Actor, id string, us roster.UpdateStudent) (roster.Student, error) {
	const op = "update student"
	if err := gb.check(a, op, gb.policy.CanManageStudents(a), nil); err != nil {
		return roster.Student{}, err
	}

	orig, err := gb.roster.GetStudentByID(id)
	if err != nil {
		return roster.Student{}, err
	}
	if err := us.Validate(orig, gb.validate, gb.usrSvc); err != nil {
		return roster.Student{}, gb.invalid(a, op, err)
	}
	if err := gb.checkClass("class_id", us.ClassID); err != nil {
		return roster.Student{}, gb.invalid(a, op, err)
	}

	s := us.Apply(orig)
	s.UpdatedAt = nowFunc().UTC()
	if s, err = gb.roster.UpdateStudent(s); err != nil {
		return roster.Student{}, asValidation(err)
	}
	gb.accepted(a, op, map[string]interface{}{"student": s.ID})
	return s, nil
}

// DeleteStudent removes the student, its User and its grades.
func (gb *Gradebook) DeleteStudent(a policy.Actor, id string) error {
	const op = "delete student"
	if err := gb.check(a, op, gb.policy.CanManageStudents(a), nil); err != nil {
		return err
	}
	if err := gb.roster.DeleteStudent(id); err != nil {
		return err
	}
	gb.accepted(a, op, map[string]interface{}{"student": id})
	return nil
}

func (gb *Gradebook) checkClass(field, id string) error {
	if _, err := gb.roster.GetClassByID(id); err != nil {
		if errors.Cause(err) == roster.ErrClassNotFound {
			return fieldError(field, roster.ErrClassNotFound)
		}
		return err
	}
	return nil
}

func (gb *Gradebook) checkClasses(ids []string) error {
	for _, id := range ids {
		if err := gb.checkClass("class_ids", id); err != nil {
			return err
		}
	}
	return nil
}
