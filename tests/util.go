package testutil

import (
	"io/ioutil"
	"log"
	"testing"
	"time"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/academic"
	"github.com/trezcool/gradebook/core/gradebook"
	"github.com/trezcool/gradebook/core/roster"
	"github.com/trezcool/gradebook/core/user"
	"github.com/trezcool/gradebook/services/logger"
	"github.com/trezcool/gradebook/storage/database/inmem"
)

// Env is a fresh gradebook over an empty in-memory store.
type Env struct {
	Conf       *core.Config
	Logger     core.Logger
	UserRepo   user.Repository
	RosterRepo roster.Repository
	AcadRepo   academic.Repository
	Gradebook  *gradebook.Gradebook
}

// NewConfig returns the defaults of core.NewConfig without reading the environment.
func NewConfig(rosterMode string) *core.Config {
	return &core.Config{
		AppName:     "Gradebook",
		Env:         "TEST",
		Build:       "test",
		TestMode:    true,
		SecretKey:   "test-secret",
		TopStudents: 5,
		Subjects:    core.DefaultSubjects,
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 10 * time.Minute,
		},
		Policy: core.PolicyConfig{RosterMode: rosterMode},
		Seed: core.SeedConfig{
			Teacher: core.SeedAccount{
				LoginName:   "RomanYarg",
				Secret:      "1qaz2wsx",
				DisplayName: "Роман Ярославович",
				AvatarGlyph: "👨‍🏫",
				Subjects:    []string{"Math"},
			},
			Admin: core.SeedAccount{
				LoginName:   "admin",
				Secret:      "admin",
				DisplayName: "Administrator",
			},
		},
	}
}

func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
}

// Setup builds an unseeded gradebook. rosterMode defaults to core.RosterModeTeacher.
func Setup(t *testing.T, rosterMode ...string) *Env {
	mode := core.RosterModeTeacher
	if len(rosterMode) > 0 {
		mode = rosterMode[0]
	}
	conf := NewConfig(mode)

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("Setup() failed: %v", err)
	}
	env := &Env{
		Conf:       conf,
		Logger:     NewLogger(conf),
		UserRepo:   inmemdb.NewUserRepository(db),
		RosterRepo: inmemdb.NewRosterRepository(db),
		AcadRepo:   inmemdb.NewAcademicRepository(db),
	}
	validate, translator := gradebook.NewValidator()
	env.Gradebook = gradebook.New(gradebook.Deps{
		Conf:       conf,
		Logger:     env.Logger,
		Validate:   validate,
		Translator: translator,
		UserRepo:   env.UserRepo,
		RosterRepo: env.RosterRepo,
		AcadRepo:   env.AcadRepo,
	})
	return env
}

func CreateAdmin(t *testing.T, repo user.Repository, login, secret string) user.User {
	now := time.Now().UTC()
	usr, err := repo.CreateUser(user.User{
		LoginName:   login,
		Secret:      secret,
		Role:        user.RoleAdmin,
		DisplayName: login,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateAdmin() failed: %v", err)
	}
	return usr
}

func CreateClass(t *testing.T, repo roster.Repository, name string, ownerID ...string) roster.Class {
	var owner string
	if len(ownerID) > 0 {
		owner = ownerID[0]
	}
	cls, err := repo.CreateClass(roster.Class{Name: name, CreatedAt: time.Now().UTC()}, owner)
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateTeacher(t *testing.T, repo roster.Repository, login, secret string, subjects []string, classIDs ...string) roster.Teacher {
	now := time.Now().UTC()
	if classIDs == nil {
		classIDs = []string{}
	}
	teacher, err := repo.CreateTeacher(
		user.User{LoginName: login, Secret: secret, DisplayName: login, CreatedAt: now, UpdatedAt: now},
		roster.Teacher{
			DisplayName: login,
			LoginName:   login,
			Secret:      secret,
			Subjects:    subjects,
			ClassIDs:    classIDs,
			AvatarGlyph: roster.DefaultTeacherAvatar,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	)
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return teacher
}

func CreateStudent(t *testing.T, repo roster.Repository, login, secret, classID string) roster.Student {
	now := time.Now().UTC()
	student, err := repo.CreateStudent(
		user.User{LoginName: login, Secret: secret, DisplayName: login, CreatedAt: now, UpdatedAt: now},
		roster.Student{
			DisplayName: login,
			LoginName:   login,
			Secret:      secret,
			ClassID:     classID,
			AvatarGlyph: roster.DefaultStudentAvatar,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return student
}

func CreateGrade(t *testing.T, repo academic.Repository, studentID, subject string, value int, teacherID string) academic.Grade {
	g, err := repo.CreateGrade(academic.Grade{
		StudentID: studentID,
		Subject:   subject,
		Value:     value,
		Date:      time.Now().UTC(),
		TeacherID: teacherID,
	})
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	return g
}
