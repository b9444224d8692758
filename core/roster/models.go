package roster

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/user"
)

// Default avatars
const (
	DefaultTeacherAvatar = "👨‍🏫"
	DefaultStudentAvatar = "👨‍🎓"
)

// AvatarOptions are the glyphs offered by the presentation layer.
var AvatarOptions = []string{"👨‍🏫", "👩‍🏫", "🧑‍🏫", "👨‍🎓", "👩‍🎓", "🧑‍🎓", "😊", "🤓", "📚"}

type Class struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Teacher shares its ID with the paired user.User.
type Teacher struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"name"`
	LoginName   string    `json:"login"`
	Secret      string    `json:"-"`
	Subjects    []string  `json:"subjects"`
	ClassIDs    []string  `json:"class_ids"`
	AvatarGlyph string    `json:"avatar,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Teaches reports whether subject is one of the teacher's subjects.
func (t *Teacher) Teaches(subject string) bool {
	return core.ContainsString(t.Subjects, subject)
}

// HasClass reports whether the teacher is assigned to the class.
func (t *Teacher) HasClass(classID string) bool {
	return core.ContainsString(t.ClassIDs, classID)
}

// Student shares its ID with the paired user.User.
type Student struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"name"`
	LoginName   string    `json:"login"`
	Secret      string    `json:"-"`
	ClassID     string    `json:"class_id"`
	AvatarGlyph string    `json:"avatar,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Name string `json:"name" validate:"required"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// NewTeacher contains information needed to create a new Teacher and its User.
type NewTeacher struct {
	DisplayName string   `json:"name" validate:"required"`
	LoginName   string   `json:"login" validate:"required"`
	Secret      string   `json:"secret" validate:"required"`
	Subjects    []string `json:"subjects" validate:"required,min=1,subjectset"`
	ClassIDs    []string `json:"class_ids" validate:"dive,required"`
	AvatarGlyph string   `json:"avatar"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate, usrSvc *user.Service) error {
	nt.DisplayName = core.CleanString(nt.DisplayName)
	nt.LoginName = core.CleanString(nt.LoginName)
	nt.Subjects = core.TrimStrings(nt.Subjects)
	nt.ClassIDs = core.CleanStrings(nt.ClassIDs)
	if nt.AvatarGlyph = core.CleanString(nt.AvatarGlyph); nt.AvatarGlyph == "" {
		nt.AvatarGlyph = DefaultTeacherAvatar
	}

	if err := validate.Struct(nt); err != nil {
		return err
	}
	return usrSvc.CheckUniqueness(nt.LoginName)
}

// UpdateTeacher defines what information may be provided to modify an existing Teacher.
// Blank strings and nil slices retain their previous value.
type UpdateTeacher struct {
	DisplayName string   `json:"name"`
	LoginName   string   `json:"login"`
	Secret      string   `json:"secret"`
	Subjects    []string `json:"subjects" validate:"required,min=1,subjectset"`
	ClassIDs    []string `json:"class_ids" validate:"dive,required"`
	AvatarGlyph string   `json:"avatar"`
}

func (ut *UpdateTeacher) Validate(orig Teacher, validate *validator.Validate, usrSvc *user.Service) error {
	ut.DisplayName = cleanOr(ut.DisplayName, orig.DisplayName)
	ut.LoginName = cleanOr(ut.LoginName, orig.LoginName)
	ut.AvatarGlyph = cleanOr(ut.AvatarGlyph, orig.AvatarGlyph)
	if ut.Secret == "" {
		ut.Secret = orig.Secret
	}
	if ut.Subjects != nil {
		ut.Subjects = core.TrimStrings(ut.Subjects)
	} else {
		ut.Subjects = orig.Subjects
	}
	if ut.ClassIDs != nil {
		ut.ClassIDs = core.CleanStrings(ut.ClassIDs)
	} else {
		ut.ClassIDs = orig.ClassIDs
	}

	if err := validate.Struct(ut); err != nil {
		return err
	}
	return usrSvc.CheckUniqueness(ut.LoginName, orig.ID)
}

// Apply merges the (validated) update into t.
func (ut UpdateTeacher) Apply(t Teacher) Teacher {
	t.DisplayName = ut.DisplayName
	t.LoginName = ut.LoginName
	t.Secret = ut.Secret
	t.Subjects = ut.Subjects
	t.ClassIDs = ut.ClassIDs
	t.AvatarGlyph = ut.AvatarGlyph
	return t
}

// NewStudent contains information needed to create a new Student and its User.
type NewStudent struct {
	DisplayName string `json:"name" validate:"required"`
	LoginName   string `json:"login" validate:"required"`
	Secret      string `json:"secret" validate:"required"`
	ClassID     string `json:"class_id" validate:"required"`
	AvatarGlyph string `json:"avatar"`
}

func (ns *NewStudent) Validate(validate *validator.Validate, usrSvc *user.Service) error {
	ns.DisplayName = core.CleanString(ns.DisplayName)
	ns.LoginName = core.CleanString(ns.LoginName)
	ns.ClassID = core.CleanString(ns.ClassID)
	if ns.AvatarGlyph = core.CleanString(ns.AvatarGlyph); ns.AvatarGlyph == "" {
		ns.AvatarGlyph = DefaultStudentAvatar
	}

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return usrSvc.CheckUniqueness(ns.LoginName)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Blank fields retain their previous value.
type UpdateStudent struct {
	DisplayName string `json:"name"`
	LoginName   string `json:"login"`
	Secret      string `json:"secret"`
	ClassID     string `json:"class_id"`
	AvatarGlyph string `json:"avatar"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate, usrSvc *user.Service) error {
	us.DisplayName = cleanOr(us.DisplayName, orig.DisplayName)
	us.LoginName = cleanOr(us.LoginName, orig.LoginName)
	us.ClassID = cleanOr(us.ClassID, orig.ClassID)
	us.AvatarGlyph = cleanOr(us.AvatarGlyph, orig.AvatarGlyph)
	if us.Secret == "" {
		us.Secret = orig.Secret
	}

	if err := validate.Struct(us); err != nil {
		return err
	}
	return usrSvc.CheckUniqueness(us.LoginName, orig.ID)
}

// Apply merges the (validated) update into s.
func (us UpdateStudent) Apply(s Student) Student {
	s.DisplayName = us.DisplayName
	s.LoginName = us.LoginName
	s.Secret = us.Secret
	s.ClassID = us.ClassID
	s.AvatarGlyph = us.AvatarGlyph
	return s
}

func cleanOr(s, orig string) string {
	if s = core.CleanString(s); s != "" {
		return s
	}
	return orig
}
