// Package gradebook is the application state shared by every presentation layer.
// Each mutation is checked by the access policy, then validated, then written through
// the repositories; a rejected mutation has no effect.
package gradebook

import (
	"fmt"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/academic"
	"github.com/trezcool/gradebook/core/policy"
	"github.com/trezcool/gradebook/core/roster"
	"github.com/trezcool/gradebook/core/user"
)

var nowFunc = time.Now // mockable

type (
	Deps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		UserRepo   user.Repository
		RosterRepo roster.Repository
		AcadRepo   academic.Repository
	}

	Gradebook struct {
		conf       *core.Config
		logger     core.Logger
		validate   *validator.Validate
		translator ut.Translator
		usrSvc     *user.Service
		roster     roster.Repository
		academic   academic.Repository
		policy     *policy.Policy
	}
)

// NewValidator returns a validator with every gradebook tag and translation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	roster.InitValidators(validate, translator)
	academic.InitValidators(validate, translator)
	return validate, translator
}

func New(deps Deps) *Gradebook {
	return &Gradebook{
		conf:       deps.Conf,
		logger:     deps.Logger,
		validate:   deps.Validate,
		translator: deps.Translator,
		usrSvc:     user.NewService(deps.UserRepo),
		roster:     deps.RosterRepo,
		academic:   deps.AcadRepo,
		policy:     policy.New(deps.Conf.Policy.RosterMode),
	}
}

func (gb *Gradebook) Translator() ut.Translator { return gb.translator }

// Subjects is the subject vocabulary offered to the presentation layer. It is not enforced.
func (gb *Gradebook) Subjects() []string {
	if len(gb.conf.Subjects) == 0 {
		return core.DefaultSubjects
	}
	return gb.conf.Subjects
}

// Seed creates the configured accounts whose login is not taken yet.
func (gb *Gradebook) Seed() error {
	if acc := gb.conf.Seed.Admin; acc.LoginName != "" {
		if err := gb.usrSvc.CheckUniqueness(acc.LoginName); err == nil {
			na := user.NewAdmin{
				DisplayName: acc.DisplayName,
				LoginName:   acc.LoginName,
				Secret:      acc.Secret,
				AvatarGlyph: acc.AvatarGlyph,
			}
			if err := na.Validate(gb.validate, gb.usrSvc); err != nil {
				return errors.Wrap(err, "seeding admin")
			}
			if _, err := gb.usrSvc.CreateAdmin(na); err != nil {
				return errors.Wrap(err, "seeding admin")
			}
			gb.logger.Info(fmt.Sprintf("seeded admin %q", acc.LoginName))
		}
	}

	if acc := gb.conf.Seed.Teacher; acc.LoginName != "" {
		if err := gb.usrSvc.CheckUniqueness(acc.LoginName); err == nil {
			nt := roster.NewTeacher{
				DisplayName: acc.DisplayName,
				LoginName:   acc.LoginName,
				Secret:      acc.Secret,
				Subjects:    acc.Subjects,
				ClassIDs:    []string{},
				AvatarGlyph: acc.AvatarGlyph,
			}
			if err := nt.Validate(gb.validate, gb.usrSvc); err != nil {
				return errors.Wrap(err, "seeding teacher")
			}
			if _, err := gb.createTeacher(nt); err != nil {
				return errors.Wrap(err, "seeding teacher")
			}
			gb.logger.Info(fmt.Sprintf("seeded teacher %q", acc.LoginName))
		}
	}
	return nil
}

// denied logs and returns a policy denial.
func (gb *Gradebook) denied(a policy.Actor, op string, err error) error {
	if a != nil {
		gb.logger.Warn(fmt.Sprintf("%s: %v", op, err), a.Account())
	} else {
		gb.logger.Warn(fmt.Sprintf("%s: %v", op, err))
	}
	return err
}

// invalid logs and returns a validation failure.
func (gb *Gradebook) invalid(a policy.Actor, op string, err error) error {
	if flds := core.FieldErrors(err, gb.translator); flds != nil {
		fields := make(map[string]interface{}, len(flds))
		for f, msg := range flds {
			fields[f] = msg
		}
		gb.logger.Debug(fmt.Sprintf("%s: invalid input", op), fields, a.Account())
	} else {
		gb.logger.Debug(fmt.Sprintf("%s: %v", op, err), a.Account())
	}
	return err
}

// accepted logs a successful mutation.
func (gb *Gradebook) accepted(a policy.Actor, op string, fields map[string]interface{}) {
	gb.logger.Info(op, fields, a.Account())
}

// check runs the policy rule, then the validation.
func (gb *Gradebook) check(a policy.Actor, op string, allowed error, validate func() error) error {
	if allowed != nil {
		return gb.denied(a, op, allowed)
	}
	if validate != nil {
		if err := validate(); err != nil {
			return gb.invalid(a, op, err)
		}
	}
	return nil
}

func fieldError(field string, err error) error {
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

// asValidation turns store-level conflicts into field errors.
func asValidation(err error) error {
	switch errors.Cause(err) {
	case user.ErrLoginExists:
		return fieldError("login", user.ErrLoginExists)
	}
	return err
}
