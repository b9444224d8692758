package gradebook

import (
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/academic"
	"github.com/trezcool/gradebook/core/policy"
	"github.com/trezcool/gradebook/core/roster"
	"github.com/trezcool/gradebook/core/user"
)

// AddGrade appends a grade to the ledger. The acting teacher and today's date are recorded with it.
func (gb *Gradebook) AddGrade(a policy.Actor, ng academic.NewGrade) (academic.Grade, error) {
	const op = "add grade"
	allowed := gb.policy.CanRecordGrade(a, core.CleanString(ng.Subject))
	if err := gb.check(a, op, allowed, func() error {
		if err := ng.Validate(gb.validate); err != nil {
			return err
		}
		if _, err := gb.roster.GetStudentByID(ng.StudentID); err != nil {
			if errors.Cause(err) == roster.ErrStudentNotFound {
				return fieldError("student_id", roster.ErrStudentNotFound)
			}
			return err
		}
		return nil
	}); err != nil {
		return academic.Grade{}, err
	}

	g, err := gb.academic.CreateGrade(academic.Grade{
		StudentID: ng.StudentID,
		Subject:   ng.Subject,
		Value:     ng.Value,
		Date:      nowFunc().UTC(),
		TeacherID: a.Account().ID,
	})
	if err != nil {
		return academic.Grade{}, errors.Wrap(err, op)
	}
	gb.accepted(a, op, map[string]interface{}{"student": g.StudentID, "subject": g.Subject, "value": g.Value})
	return g, nil
}

// AddSchedule adds a weekly lesson slot to a class.
func (gb *Gradebook) AddSchedule(a policy.Actor, ns academic.NewSchedule) (academic.Schedule, error) {
	const op = "add schedule"
	if err := gb.check(a, op, gb.policy.CanPlanLessons(a), func() error {
		if err := ns.Validate(gb.validate); err != nil {
			return err
		}
		return gb.checkClass("class_id", ns.ClassID)
	}); err != nil {
		return academic.Schedule{}, err
	}

	sch, err := gb.academic.CreateSchedule(academic.Schedule{
		ClassID: ns.ClassID,
		Weekday: academic.Weekday(ns.Weekday),
		Time:    ns.Time,
		Subject: ns.Subject,
	})
	if err != nil {
		return academic.Schedule{}, errors.Wrap(err, op)
	}
	gb.accepted(a, op, map[string]interface{}{"class": sch.ClassID, "weekday": sch.Weekday, "time": sch.Time})
	return sch, nil
}

// AddHomework assigns homework to a class.
func (gb *Gradebook) AddHomework(a policy.Actor, nh academic.NewHomework) (academic.Homework, error) {
	const op = "add homework"
	if err := gb.check(a, op, gb.policy.CanPlanLessons(a), func() error {
		if err := nh.Validate(gb.validate); err != nil {
			return err
		}
		return gb.checkClass("class_id", nh.ClassID)
	}); err != nil {
		return academic.Homework{}, err
	}

	hw, err := gb.academic.CreateHomework(academic.Homework{
		ClassID:     nh.ClassID,
		Subject:     nh.Subject,
		Description: nh.Description,
		DueDate:     nh.Due(),
	})
	if err != nil {
		return academic.Homework{}, errors.Wrap(err, op)
	}
	gb.accepted(a, op, map[string]interface{}{"class": hw.ClassID, "subject": hw.Subject})
	return hw, nil
}

// UpdateProfile changes the name and avatar of the actor's own account.
func (gb *Gradebook) UpdateProfile(a policy.Actor, userID string, pu user.ProfileUpdate) (user.User, error) {
	const op = "update profile"
	if err := gb.check(a, op, gb.policy.CanUpdateProfile(a, userID), nil); err != nil {
		return user.User{}, err
	}

	orig, err := gb.usrSvc.GetByID(userID)
	if err != nil {
		return user.User{}, err
	}
	if err := pu.Validate(orig, gb.validate); err != nil {
		return user.User{}, gb.invalid(a, op, err)
	}

	usr, err := gb.usrSvc.UpdateProfile(userID, pu)
	if err != nil {
		return user.User{}, errors.Wrap(err, op)
	}
	gb.accepted(a, op, nil)
	return usr, nil
}
