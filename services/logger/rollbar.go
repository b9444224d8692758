package logsvc

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/user"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[Level]struct{ name, rollbar string }{
	LevelDebug: {"DEBUG", rollbar.DEBUG},
	LevelInfo:  {"INFO", rollbar.INFO},
	LevelWarn:  {"WARN", rollbar.WARN},
	LevelError: {"ERROR", rollbar.ERR},
	LevelFatal: {"FATAL", rollbar.CRIT},
}

func (lvl Level) String() string { return levelNames[lvl].name }

// RollbarLogger prints one line per event to a std logger and reports it to Rollbar.
type RollbarLogger struct {
	std *log.Logger
	min Level
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewRollbarLogger drops debug events unless conf is in debug or test mode.
func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.TestMode)

	min := LevelInfo
	if conf.Debug || conf.TestMode {
		min = LevelDebug
	}
	return &RollbarLogger{std: std, min: min}
}

// Enable overrides the reporting switch; reporting starts enabled only with a token outside test mode.
func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// SetLevel sets the lowest level that gets logged.
func (l *RollbarLogger) SetLevel(lvl Level) {
	l.min = lvl
}

// expected fmt: msg | error, map[string]interface{}, user.User
func (l *RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var usrSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		// the acting User is reported as the Rollbar person
		if usr, ok := arg.(user.User); ok {
			if !usrSet { // only set one User
				rollbar.SetPerson(usr.ID, usr.LoginName, "")
				usrSet = true
			}
		} else {
			newArgs = append(newArgs, arg)
		}
	}
	if !usrSet {
		rollbar.ClearPerson()
	}
	return newArgs
}

// format renders `LEVEL msg key=value...`; map keys are sorted.
func format(lvl Level, msg string, args []interface{}) string {
	var b strings.Builder
	b.WriteString(lvl.String())
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case user.User:
			fmt.Fprintf(&b, " user=%s(%s)", a.LoginName, a.Role)
		case error:
			fmt.Fprintf(&b, " error=%q", a.Error())
		case map[string]interface{}:
			keys := make([]string, 0, len(a))
			for k := range a {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, " %s=%v", k, a[k])
			}
		default:
			fmt.Fprintf(&b, " %+v", a)
		}
	}
	return b.String()
}

func (l *RollbarLogger) log(lvl Level, msg string, args []interface{}) {
	if lvl < l.min {
		return
	}
	rollbar.Log(levelNames[lvl].rollbar, l.prepare(msg, args)...)
	l.std.Println(format(lvl, msg, args))
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) { l.log(LevelDebug, msg, args) }

func (l *RollbarLogger) Info(msg string, args ...interface{}) { l.log(LevelInfo, msg, args) }

func (l *RollbarLogger) Warn(msg string, args ...interface{}) { l.log(LevelWarn, msg, args) }

func (l *RollbarLogger) Error(msg string, args ...interface{}) { l.log(LevelError, msg, args) }

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(LevelFatal, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
