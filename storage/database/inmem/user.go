package inmemdb

import (
	"time"

	"github.com/trezcool/gradebook/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckLoginUniqueness(loginName string, excludedIDs ...string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if repo.db.loginTaken(loginName, excludedIDs...) {
		return user.ErrLoginExists
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.db.loginTaken(usr.LoginName) {
		return user.User{}, user.ErrLoginExists
	}
	usr.ID = newID()
	repo.db.users = append(repo.db.users, &usr)
	return usr, nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		users = append(users, *usr)
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(id string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if i := repo.db.userIndex(id); i >= 0 {
		return *repo.db.users[i], nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateProfile(id string, pu user.ProfileUpdate, updatedAt time.Time) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	i := repo.db.userIndex(id)
	if i < 0 {
		return user.User{}, user.ErrNotFound
	}
	usr := repo.db.users[i]
	usr.DisplayName = pu.DisplayName
	usr.AvatarGlyph = pu.AvatarGlyph
	usr.UpdatedAt = updatedAt

	// keep the roster record in sync
	if j := repo.db.teacherIndex(id); j >= 0 {
		t := repo.db.teachers[j]
		t.DisplayName, t.AvatarGlyph, t.UpdatedAt = pu.DisplayName, pu.AvatarGlyph, updatedAt
	}
	if j := repo.db.studentIndex(id); j >= 0 {
		s := repo.db.students[j]
		s.DisplayName, s.AvatarGlyph, s.UpdatedAt = pu.DisplayName, pu.AvatarGlyph, updatedAt
	}
	return *usr, nil
}
