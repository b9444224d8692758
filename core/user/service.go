package user

import (
	"errors"
	"time"

	"github.com/trezcool/gradebook/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrLoginExists        = errors.New("a user with this login already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	// Repository is the Identity Store.
	Repository interface {
		CheckLoginUniqueness(loginName string, excludedIDs ...string) error
		CreateUser(usr User) (User, error)
		// QueryAllUsers returns users in insertion order.
		QueryAllUsers() ([]User, error)
		GetUserByID(id string) (User, error)
		// UpdateProfile updates the User and mirrors the change into the paired roster record
		// (if any) in a single transaction.
		UpdateProfile(id string, pu ProfileUpdate, updatedAt time.Time) (User, error)
	}

	Service struct {
		repo Repository
	}
)

var nowFunc = time.Now // mockable

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckUniqueness(loginName string, excludedIDs ...string) error {
	if err := svc.repo.CheckLoginUniqueness(loginName, excludedIDs...); err != nil {
		if err == ErrLoginExists {
			return core.NewValidationError(err, core.FieldError{Field: "login", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Authenticate scans the identity store in insertion order; the first User matching both
// loginName and secret wins. Unknown logins and wrong secrets are not distinguished.
func (svc *Service) Authenticate(loginName, secret string) (User, error) {
	users, err := svc.repo.QueryAllUsers()
	if err != nil {
		return User{}, err
	}
	for _, usr := range users {
		if usr.LoginName == loginName && usr.CheckSecret(secret) {
			return usr, nil
		}
	}
	return User{}, ErrInvalidCredentials
}

func (svc *Service) CreateAdmin(na NewAdmin) (User, error) {
	now := nowFunc().UTC()
	return svc.repo.CreateUser(User{
		LoginName:   na.LoginName,
		Secret:      na.Secret,
		Role:        RoleAdmin,
		DisplayName: na.DisplayName,
		AvatarGlyph: na.AvatarGlyph,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *Service) GetByID(id string) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *Service) UpdateProfile(id string, pu ProfileUpdate) (User, error) {
	return svc.repo.UpdateProfile(id, pu, nowFunc().UTC())
}

// Filter returns the users matching filter; an empty filter matches everyone.
func (svc *Service) Filter(filter QueryFilter) ([]User, error) {
	users, err := svc.QueryAll()
	if err != nil {
		return nil, err
	}
	filter.Clean()
	if filter.IsEmpty() {
		return users, nil
	}
	filtered := make([]User, 0, len(users))
	for _, usr := range users {
		if filter.Match(usr) {
			filtered = append(filtered, usr)
		}
	}
	return filtered, nil
}
