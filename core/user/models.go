package user

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

// Role is fixed when the User is created.
type Role string

// Roles
const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

var (
	AllRoles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

	Roles = []RoleInfo{
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Student", Value: RoleStudent},
	}
)

func (r Role) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type RoleInfo struct {
	Name  string `json:"name"`
	Value Role   `json:"value"`
}

type User struct {
	ID          string    `json:"id"`
	LoginName   string    `json:"login"`
	Secret      string    `json:"-"`
	Role        Role      `json:"role"`
	DisplayName string    `json:"name"`
	AvatarGlyph string    `json:"avatar,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// CheckSecret compares secrets as plain values.
func (u *User) CheckSecret(secret string) bool {
	return u.Secret == secret
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// NewAdmin contains information needed to create a new admin User.
// Teachers and Students are created together with their roster record.
type NewAdmin struct {
	DisplayName string `json:"name" validate:"required"`
	LoginName   string `json:"login" validate:"required"`
	Secret      string `json:"secret" validate:"required"`
	AvatarGlyph string `json:"avatar"`
}

func (na *NewAdmin) Validate(validate *validator.Validate, svc *Service) error {
	na.DisplayName = core.CleanString(na.DisplayName)
	na.LoginName = core.CleanString(na.LoginName)
	na.AvatarGlyph = core.CleanString(na.AvatarGlyph)

	if err := validate.Struct(na); err != nil {
		return err
	}
	return svc.CheckUniqueness(na.LoginName)
}

// ProfileUpdate defines what a User may change on their own profile.
// Blank fields retain their previous value.
type ProfileUpdate struct {
	DisplayName string `json:"name"`
	AvatarGlyph string `json:"avatar"`
}

func (pu *ProfileUpdate) Validate(origUsr User, validate *validator.Validate) error {
	if name := core.CleanString(pu.DisplayName); name != "" {
		pu.DisplayName = name
	} else {
		pu.DisplayName = origUsr.DisplayName
	}

	if avatar := core.CleanString(pu.AvatarGlyph); avatar != "" {
		pu.AvatarGlyph = avatar
	} else {
		pu.AvatarGlyph = origUsr.AvatarGlyph
	}
	return validate.Struct(pu)
}

type QueryFilter struct {
	Search string `query:"search" json:"search"`
	Role   Role   `query:"role" json:"role" validate:"omitempty,role"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Role == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search, true /* lower */)
}

// Match applies AND on the set QueryFilter fields.
// Search does a case-insensitive match on one of User.DisplayName or User.LoginName.
func (qf *QueryFilter) Match(usr User) bool {
	if qf.Role != "" && usr.Role != qf.Role {
		return false
	}
	if qf.Search != "" &&
		!strings.Contains(strings.ToLower(usr.DisplayName), qf.Search) &&
		!strings.Contains(strings.ToLower(usr.LoginName), qf.Search) {
		return false
	}
	return true
}
