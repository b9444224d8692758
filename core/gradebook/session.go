package gradebook

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/policy"
	"github.com/trezcool/gradebook/core/roster"
	"github.com/trezcool/gradebook/core/user"
)

// ErrNotAuthenticated is returned by a Session nobody is logged into.
var ErrNotAuthenticated = errors.New("not authenticated")

// Login checks the credentials against the identity store.
// The first User matching both login and secret wins.
func (gb *Gradebook) Login(loginName, secret string) (user.User, error) {
	usr, err := gb.usrSvc.Authenticate(loginName, secret)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			gb.logger.Debug(fmt.Sprintf("login %q: %v", loginName, err))
		}
		return user.User{}, err
	}
	gb.logger.Info("logged in", usr)
	return usr, nil
}

// ActorFor loads the User and its current roster record.
func (gb *Gradebook) ActorFor(userID string) (policy.Actor, error) {
	usr, err := gb.usrSvc.GetByID(userID)
	if err != nil {
		return nil, err
	}

	var (
		t roster.Teacher
		s roster.Student
	)
	switch {
	case usr.IsTeacher():
		if t, err = gb.roster.GetTeacherByID(usr.ID); err != nil {
			return nil, errors.Wrap(err, "loading teacher profile")
		}
	case usr.IsStudent():
		if s, err = gb.roster.GetStudentByID(usr.ID); err != nil {
			return nil, errors.Wrap(err, "loading student profile")
		}
	}
	return policy.NewActor(usr, t, s)
}

// Users lists the accounts matching qf; an empty filter lists everyone.
func (gb *Gradebook) Users(a policy.Actor, qf user.QueryFilter) ([]user.User, error) {
	const op = "list users"
	if err := gb.check(a, op, gb.policy.CanListUsers(a), func() error {
		qf.Clean()
		return gb.validate.Struct(qf)
	}); err != nil {
		return nil, err
	}
	return gb.usrSvc.Filter(qf)
}

// Session holds the user logged into one presentation session.
type Session struct {
	gb     *Gradebook
	mu     sync.Mutex
	userID string
}

func (gb *Gradebook) NewSession() *Session {
	return &Session{gb: gb}
}

func (s *Session) Gradebook() *Gradebook { return s.gb }

// Login replaces the current user on success and leaves the session unchanged on failure.
func (s *Session) Login(loginName, secret string) (user.User, error) {
	usr, err := s.gb.Login(loginName, secret)
	if err != nil {
		return user.User{}, err
	}
	s.mu.Lock()
	s.userID = usr.ID
	s.mu.Unlock()
	return usr, nil
}

// Logout is idempotent.
func (s *Session) Logout() {
	s.mu.Lock()
	s.userID = ""
	s.mu.Unlock()
}

// CurrentUser returns the logged in User, reloaded from the identity store.
func (s *Session) CurrentUser() (user.User, bool) {
	s.mu.Lock()
	id := s.userID
	s.mu.Unlock()
	if id == "" {
		return user.User{}, false
	}
	usr, err := s.gb.usrSvc.GetByID(id)
	if err != nil {
		return user.User{}, false
	}
	return usr, true
}

// Actor resolves the logged in user with a fresh roster payload.
func (s *Session) Actor() (policy.Actor, error) {
	usr, ok := s.CurrentUser()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return s.gb.ActorFor(usr.ID)
}
