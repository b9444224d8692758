package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/user"
)

func TestRollbarLogger_format(t *testing.T) {
	usr := user.User{ID: "42", LoginName: "RomanYarg", Role: user.RoleTeacher}

	tests := []struct {
		name string
		lvl  Level
		msg  string
		args []interface{}
		want string
	}{
		{name: "bare", lvl: LevelInfo, msg: "started", want: "INFO started"},
		{
			name: "fields are sorted", lvl: LevelInfo, msg: "add grade",
			args: []interface{}{map[string]interface{}{"value": 5, "subject": "Math"}, usr},
			want: "INFO add grade subject=Math value=5 user=RomanYarg(teacher)",
		},
		{
			name: "error", lvl: LevelWarn, msg: "add class denied",
			args: []interface{}{errors.New("permission denied")},
			want: `WARN add class denied error="permission denied"`,
		},
		{name: "other", lvl: LevelDebug, msg: "n", args: []interface{}{3}, want: "DEBUG n 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, format(tt.lvl, tt.msg, tt.args))
		})
	}
}

func TestRollbarLogger_levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{TestMode: true})

	logger.Debug("invalid input")
	logger.Info("accepted")
	assert.Equal(t, "DEBUG invalid input\nINFO accepted\n", buf.String())

	buf.Reset()
	logger.SetLevel(LevelWarn)
	logger.Info("accepted")
	logger.Warn("denied")
	logger.Error("failed")
	assert.Equal(t, "WARN denied\nERROR failed\n", buf.String())

	buf.Reset()
	quiet := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{})
	quiet.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger := NewRollbarLogger(log.New(&bytes.Buffer{}, "", 0), &core.Config{TestMode: true})

	err := errors.New("boom")
	args := logger.prepare("msg", []interface{}{err, user.User{ID: "1"}, user.User{ID: "2"}})
	assert.Equal(t, []interface{}{"msg", err}, args)
}
