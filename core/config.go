package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Roster modes
const (
	// RosterModeAdmin restricts roster management to admins.
	RosterModeAdmin = "admin"
	// RosterModeTeacher also lets a teacher open classes and enrol students into them.
	RosterModeTeacher = "teacher"
)

type (
	ServerConfig struct {
		Address                   string
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	PolicyConfig struct {
		RosterMode string
	}

	SeedAccount struct {
		LoginName   string
		Secret      string
		DisplayName string
		AvatarGlyph string
		Subjects    []string // teachers only
	}

	SeedConfig struct {
		Teacher SeedAccount
		Admin   SeedAccount
	}

	Config struct {
		AppName      string
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		SecretKey    string
		RollbarToken string
		TopStudents  int
		Subjects     []string
		Server       ServerConfig
		Policy       PolicyConfig
		Seed         SeedConfig
	}
)

// DefaultSubjects is the subject vocabulary offered to the presentation layer.
var DefaultSubjects = []string{
	"Math",
	"Russian",
	"Literature",
	"English",
	"History",
	"Social Studies",
	"Geography",
	"Biology",
	"Physics",
	"Chemistry",
	"Computer Science",
	"Physical Education",
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("appName", "Gradebook")
	conf.SetDefault("build", "develop")
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("topStudents", 5)
	conf.SetDefault("subjects", DefaultSubjects)
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.debugHost", "localhost:4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	conf.SetDefault("policy.rosterMode", RosterModeTeacher)
	conf.SetDefault("seed.teacher.loginName", "RomanYarg")
	conf.SetDefault("seed.teacher.secret", "1qaz2wsx")
	conf.SetDefault("seed.teacher.displayName", "Роман Ярославович")
	conf.SetDefault("seed.teacher.avatarGlyph", "👨‍🏫")
	conf.SetDefault("seed.teacher.subjects", []string{"Math"})
	conf.SetDefault("seed.admin.loginName", "")
	conf.SetDefault("seed.admin.secret", "")
	conf.SetDefault("seed.admin.displayName", "Administrator")
	conf.SetDefault("seed.admin.avatarGlyph", "👔")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:      conf.GetString("appName"),
		Env:          env,
		Build:        conf.GetString("build"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		SecretKey:    conf.GetString("secretKey"),
		RollbarToken: conf.GetString("rollbarToken"),
		TopStudents:  conf.GetInt("topStudents"),
		Subjects:     conf.GetStringSlice("subjects"),
		Server: ServerConfig{
			Address:                   conf.GetString("server.address"),
			Host:                      conf.GetString("server.host"),
			DebugHost:                 conf.GetString("server.debugHost"),
			ShutdownTimeout:           conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Policy: PolicyConfig{
			RosterMode: conf.GetString("policy.rosterMode"),
		},
		Seed: SeedConfig{
			Teacher: seedAccount(conf, "seed.teacher"),
			Admin:   seedAccount(conf, "seed.admin"),
		},
	}
}

func seedAccount(conf *viper.Viper, key string) SeedAccount {
	return SeedAccount{
		LoginName:   conf.GetString(key + ".loginName"),
		Secret:      conf.GetString(key + ".secret"),
		DisplayName: conf.GetString(key + ".displayName"),
		AvatarGlyph: conf.GetString(key + ".avatarGlyph"),
		Subjects:    conf.GetStringSlice(key + ".subjects"),
	}
}
