package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/gradebook/apps/api/echo"
	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/academic"
	"github.com/trezcool/gradebook/core/gradebook"
	"github.com/trezcool/gradebook/core/policy"
	"github.com/trezcool/gradebook/core/roster"
	"github.com/trezcool/gradebook/core/stats"
	"github.com/trezcool/gradebook/core/user"
	"github.com/trezcool/gradebook/tests"
)

var errDenied = httpErr{Error: policy.ErrNotAllowed.Error()}

func Test_home(t *testing.T) {
	srv, _ := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Gradebook API!", rec.Body.String())
}

func Test_sessionApi_vocabulary(t *testing.T) {
	srv, env := setup(t)

	rec := do(srv, http.MethodGet, "/v1/vocabulary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var vocab echoapi.VocabularyResponse
	unmarshall(t, rec, &vocab)
	assert.Equal(t, env.Conf.Subjects, vocab.Subjects)
	assert.Equal(t, []int{2, 3, 4, 5}, vocab.Grades)
	assert.Len(t, vocab.Weekdays, len(academic.Weekdays))
	assert.Len(t, vocab.Roles, len(user.Roles))
}

func Test_sessionApi_login(t *testing.T) {
	srv, _ := setup(t)

	tests := []httpTest{
		{
			name: "unknown login", method: http.MethodPost, path: "/v1/login",
			body:     marchallObj(t, echoapi.LoginRequest{LoginName: "ghost", Secret: "1qaz2wsx"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: user.ErrInvalidCredentials.Error()}),
		},
		{
			name: "wrong secret", method: http.MethodPost, path: "/v1/login",
			body:     marchallObj(t, echoapi.LoginRequest{LoginName: "RomanYarg", Secret: "nope"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: user.ErrInvalidCredentials.Error()}),
		},
		{
			name: "padded secret", method: http.MethodPost, path: "/v1/login",
			body:     marchallObj(t, echoapi.LoginRequest{LoginName: "RomanYarg", Secret: " 1qaz2wsx "}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: user.ErrInvalidCredentials.Error()}),
		},
		{
			name: "padded login", method: http.MethodPost, path: "/v1/login",
			body:     marchallObj(t, echoapi.LoginRequest{LoginName: "  RomanYarg ", Secret: "1qaz2wsx"}),
			wantCode: http.StatusOK,
		},
		{name: "auth required", path: "/v1/me", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "bad token", path: "/v1/me", token: "not.a.token",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
	}
	runHTTPTests(t, srv, tests)

	t.Run("me", func(t *testing.T) {
		token := login(t, srv, "RomanYarg", "1qaz2wsx")
		rec := do(srv, http.MethodGet, "/v1/me", token)
		require.Equal(t, http.StatusOK, rec.Code)

		var usr user.User
		unmarshall(t, rec, &usr)
		assert.Equal(t, "RomanYarg", usr.LoginName)
		assert.Equal(t, user.RoleTeacher, usr.Role)
		assert.NotContains(t, rec.Body.String(), "1qaz2wsx")
	})

	t.Run("token refresh", func(t *testing.T) {
		token := login(t, srv, "admin", "admin")
		rec := do(srv, http.MethodPost, "/v1/token-refresh", token)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp echoapi.LoginResponse
		unmarshall(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Nil(t, resp.User)
	})
}

func Test_sessionApi_updateProfile(t *testing.T) {
	srv, _ := setup(t)
	token := login(t, srv, "RomanYarg", "1qaz2wsx")

	rec := do(srv, http.MethodPut, "/v1/me", token, marchallObj(t, user.ProfileUpdate{DisplayName: "  Роман  "}))
	require.Equal(t, http.StatusOK, rec.Code)

	var usr user.User
	unmarshall(t, rec, &usr)
	assert.Equal(t, "Роман", usr.DisplayName)
	assert.Equal(t, "👨‍🏫", usr.AvatarGlyph)

	rec = do(srv, http.MethodGet, "/v1/teachers", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var teachers []roster.Teacher
	unmarshall(t, rec, &teachers)
	require.Len(t, teachers, 1)
	assert.Equal(t, "Роман", teachers[0].DisplayName)
}

func Test_sessionApi_listUsers(t *testing.T) {
	srv, env := setup(t)
	adminToken := login(t, srv, "admin", "admin")
	teacherToken := login(t, srv, "RomanYarg", "1qaz2wsx")
	cls := testutil.CreateClass(t, env.RosterRepo, "5A")
	testutil.CreateStudent(t, env.RosterRepo, "petya", "pw", cls.ID)

	tests := []httpTest{
		{name: "admins only", path: "/v1/users", token: teacherToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errDenied)},
		{
			name: "unknown role", path: "/v1/users?role=janitor", token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"role": "invalid role"}),
		},
		{name: "no match", path: "/v1/users?search=rom&role=student", token: adminToken, wantCode: http.StatusOK, wantData: []byte("[]")},
	}
	runHTTPTests(t, srv, tests)

	logins := func(t *testing.T, query string) []string {
		rec := do(srv, http.MethodGet, "/v1/users"+query, adminToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var users []user.User
		unmarshall(t, rec, &users)
		names := make([]string, len(users))
		for i, usr := range users {
			names[i] = usr.LoginName
		}
		return names
	}
	assert.Equal(t, []string{"admin", "RomanYarg", "petya"}, logins(t, ""))
	assert.Equal(t, []string{"RomanYarg"}, logins(t, "?role=teacher"))
	assert.Equal(t, []string{"RomanYarg"}, logins(t, "?search=%20ROM%20"))
	assert.Equal(t, []string{"petya"}, logins(t, "?search=pet&role=student"))
}

func Test_rosterApi(t *testing.T) {
	srv, env := setup(t, core.RosterModeAdmin)
	adminToken := login(t, srv, "admin", "admin")
	teacherToken := login(t, srv, "RomanYarg", "1qaz2wsx")

	cls := testutil.CreateClass(t, env.RosterRepo, "5A")
	testutil.CreateStudent(t, env.RosterRepo, "petya", "pw", cls.ID)
	studentToken := login(t, srv, "petya", "pw")

	tests := []httpTest{
		{
			name: "teacher cannot add class in admin mode", method: http.MethodPost, path: "/v1/classes", token: teacherToken,
			body: marchallObj(t, roster.NewClass{Name: "6B"}), wantCode: http.StatusForbidden, wantData: marchallObj(t, errDenied),
		},
		{
			name: "student cannot add class", method: http.MethodPost, path: "/v1/classes", token: studentToken,
			body: marchallObj(t, roster.NewClass{Name: "6B"}), wantCode: http.StatusForbidden, wantData: marchallObj(t, errDenied),
		},
		{
			name: "denial precedes validation", method: http.MethodPost, path: "/v1/classes", token: studentToken,
			body: marchallObj(t, roster.NewClass{}), wantCode: http.StatusForbidden, wantData: marchallObj(t, errDenied),
		},
		{
			name: "blank class name", method: http.MethodPost, path: "/v1/classes", token: adminToken,
			body:     marchallObj(t, roster.NewClass{Name: "   "}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{name: "admin adds class", method: http.MethodPost, path: "/v1/classes", token: adminToken, body: marchallObj(t, roster.NewClass{Name: "6B"}), wantCode: http.StatusCreated},
		{
			name: "unknown class", method: http.MethodDelete, path: "/v1/classes/nope", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: roster.ErrClassNotFound.Error()}),
		},
		{
			name: "class in use", method: http.MethodDelete, path: "/v1/classes/" + cls.ID, token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"id": roster.ErrClassInUse.Error()}),
		},
		{
			name: "students of unknown class", path: "/v1/classes/nope/students", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: roster.ErrClassNotFound.Error()}),
		},
		{
			name: "student lists teachers of own class", path: "/v1/teachers", token: studentToken,
			wantCode: http.StatusOK, wantData: []byte("[]"),
		},
		{
			name: "teacher cannot add teacher", method: http.MethodPost, path: "/v1/teachers", token: teacherToken,
			body:     marchallObj(t, roster.NewTeacher{DisplayName: "X", LoginName: "x", Secret: "x", Subjects: []string{"Math"}}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errDenied),
		},
		{
			name: "duplicate subjects", method: http.MethodPost, path: "/v1/teachers", token: adminToken,
			body:     marchallObj(t, roster.NewTeacher{DisplayName: "X", LoginName: "x", Secret: "x", Subjects: []string{"Math", " Math"}}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"subjects": "subjects must hold distinct, non-blank subjects"}),
		},
		{
			name: "taken login", method: http.MethodPost, path: "/v1/students", token: adminToken,
			body:     marchallObj(t, roster.NewStudent{DisplayName: "P", LoginName: "RomanYarg", Secret: "x", ClassID: cls.ID}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"login": user.ErrLoginExists.Error()}),
		},
		{
			name: "student in unknown class", method: http.MethodPost, path: "/v1/students", token: adminToken,
			body:     marchallObj(t, roster.NewStudent{DisplayName: "P", LoginName: "vasya", Secret: "x", ClassID: "nope"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"class_id": roster.ErrClassNotFound.Error()}),
		},
		{
			name: "unknown student", method: http.MethodDelete, path: "/v1/students/nope", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: roster.ErrStudentNotFound.Error()}),
		},
	}
	runHTTPTests(t, srv, tests)

	t.Run("teacher lifecycle", func(t *testing.T) {
		rec := do(srv, http.MethodPost, "/v1/teachers", adminToken, marchallObj(t, roster.NewTeacher{
			DisplayName: "Анна",
			LoginName:   "anna",
			Secret:      "pw",
			Subjects:    []string{"Physics", "Math"},
			ClassIDs:    []string{cls.ID},
		}))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var teacher roster.Teacher
		unmarshall(t, rec, &teacher)
		assert.Equal(t, []string{cls.ID}, teacher.ClassIDs)
		assert.Equal(t, roster.DefaultTeacherAvatar, teacher.AvatarGlyph)

		rec = do(srv, http.MethodGet, "/v1/teachers", studentToken)
		require.Equal(t, http.StatusOK, rec.Code)
		var visible []roster.Teacher
		unmarshall(t, rec, &visible)
		require.Len(t, visible, 1)
		assert.Equal(t, teacher.ID, visible[0].ID)

		rec = do(srv, http.MethodPut, "/v1/teachers/"+teacher.ID, adminToken, marchallObj(t, roster.UpdateTeacher{
			Subjects: []string{"Chemistry"},
			ClassIDs: []string{},
		}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		unmarshall(t, rec, &teacher)
		assert.Equal(t, []string{"Chemistry"}, teacher.Subjects)
		assert.Equal(t, "anna", teacher.LoginName)

		rec = do(srv, http.MethodDelete, "/v1/teachers/"+teacher.ID, adminToken)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		rec = do(srv, http.MethodPost, "/v1/login", "", marchallObj(t, echoapi.LoginRequest{LoginName: "anna", Secret: "pw"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("deleted account token", func(t *testing.T) {
		other := testutil.CreateStudent(t, env.RosterRepo, "kolya", "pw", cls.ID)
		token := login(t, srv, "kolya", "pw")

		rec := do(srv, http.MethodDelete, "/v1/students/"+other.ID, adminToken)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = do(srv, http.MethodGet, "/v1/me", token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func Test_gradebookFlow(t *testing.T) {
	srv, _ := setup(t)
	teacherToken := login(t, srv, "RomanYarg", "1qaz2wsx")

	// teacher opens a class and enrols a student into it
	rec := do(srv, http.MethodPost, "/v1/classes", teacherToken, marchallObj(t, roster.NewClass{Name: " 7В "}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var cls roster.Class
	unmarshall(t, rec, &cls)
	assert.Equal(t, "7В", cls.Name)

	rec = do(srv, http.MethodPost, "/v1/students", teacherToken, marchallObj(t, roster.NewStudent{
		DisplayName: "Маша",
		LoginName:   "masha",
		Secret:      "pw",
		ClassID:     cls.ID,
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var student roster.Student
	unmarshall(t, rec, &student)
	studentToken := login(t, srv, "masha", "pw")

	tests := []httpTest{
		{
			name: "grade for untaught subject", method: http.MethodPost, path: "/v1/grades", token: teacherToken,
			body:     marchallObj(t, academic.NewGrade{StudentID: student.ID, Subject: "Physics", Value: 5}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errDenied),
		},
		{
			name: "student cannot grade", method: http.MethodPost, path: "/v1/grades", token: studentToken,
			body:     marchallObj(t, academic.NewGrade{StudentID: student.ID, Subject: "Math", Value: 5}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errDenied),
		},
		{
			name: "grade out of scale", method: http.MethodPost, path: "/v1/grades", token: teacherToken,
			body:     marchallObj(t, academic.NewGrade{StudentID: student.ID, Subject: "Math", Value: 6}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "grade for unknown student", method: http.MethodPost, path: "/v1/grades", token: teacherToken,
			body:     marchallObj(t, academic.NewGrade{StudentID: "nope", Subject: "Math", Value: 4}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"student_id": roster.ErrStudentNotFound.Error()}),
		},
		{name: "math 5", method: http.MethodPost, path: "/v1/grades", token: teacherToken, body: marchallObj(t, academic.NewGrade{StudentID: student.ID, Subject: "Math", Value: 5}), wantCode: http.StatusCreated},
		{name: "math 4", method: http.MethodPost, path: "/v1/grades", token: teacherToken, body: marchallObj(t, academic.NewGrade{StudentID: student.ID, Subject: "Math", Value: 4}), wantCode: http.StatusCreated},
		{
			name: "bad lesson time", method: http.MethodPost, path: "/v1/schedules", token: teacherToken,
			body:     marchallObj(t, academic.NewSchedule{ClassID: cls.ID, Weekday: "Monday", Time: "25:00", Subject: "Math"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "lesson", method: http.MethodPost, path: "/v1/schedules", token: teacherToken,
			body:     marchallObj(t, academic.NewSchedule{ClassID: cls.ID, Weekday: "Monday", Time: "09:00", Subject: "Math"}),
			wantCode: http.StatusCreated,
		},
		{
			name: "student cannot plan lessons", method: http.MethodPost, path: "/v1/homework", token: studentToken,
			body:     marchallObj(t, academic.NewHomework{ClassID: cls.ID, Subject: "Math", Description: "p. 12", DueDate: "2026-10-20"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errDenied),
		},
		{
			name: "homework", method: http.MethodPost, path: "/v1/homework", token: teacherToken,
			body:     marchallObj(t, academic.NewHomework{ClassID: cls.ID, Subject: "Math", Description: "p. 12", DueDate: "2026-10-20"}),
			wantCode: http.StatusCreated,
		},
		{name: "bad top count", path: "/v1/stats/top?n=zero", token: teacherToken, wantCode: http.StatusBadRequest},
		{
			name: "stats of unknown class", path: "/v1/stats/classes/nope", token: teacherToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: roster.ErrClassNotFound.Error()}),
		},
	}
	runHTTPTests(t, srv, tests)

	t.Run("student sees own grades", func(t *testing.T) {
		rec := do(srv, http.MethodGet, "/v1/grades", studentToken)
		require.Equal(t, http.StatusOK, rec.Code)
		var grades []academic.Grade
		unmarshall(t, rec, &grades)
		require.Len(t, grades, 2)
		for _, g := range grades {
			assert.Equal(t, student.ID, g.StudentID)
			assert.Equal(t, "Math", g.Subject)
		}
	})

	t.Run("student sees class lessons", func(t *testing.T) {
		rec := do(srv, http.MethodGet, "/v1/schedules", studentToken)
		require.Equal(t, http.StatusOK, rec.Code)
		var schedules []academic.Schedule
		unmarshall(t, rec, &schedules)
		require.Len(t, schedules, 1)
		assert.Equal(t, "09:00", schedules[0].Time)

		rec = do(srv, http.MethodGet, "/v1/homework", studentToken)
		require.Equal(t, http.StatusOK, rec.Code)
		var homework []academic.Homework
		unmarshall(t, rec, &homework)
		require.Len(t, homework, 1)
	})

	t.Run("stats", func(t *testing.T) {
		rec := do(srv, http.MethodGet, "/v1/stats/top?n=1", teacherToken)
		require.Equal(t, http.StatusOK, rec.Code)
		var top []stats.StudentStats
		unmarshall(t, rec, &top)
		require.Len(t, top, 1)
		assert.Equal(t, student.ID, top[0].Student.ID)
		assert.InDelta(t, 4.5, top[0].Average, 0.001)

		rec = do(srv, http.MethodGet, "/v1/stats/students/"+student.ID, studentToken)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp echoapi.StudentStatsResponse
		unmarshall(t, rec, &resp)
		assert.InDelta(t, 4.5, resp.Average, 0.001)
		assert.Equal(t, "4.50", resp.AverageText)
		require.Len(t, resp.Subjects, 1)
		assert.Equal(t, 1, resp.Subjects[0].Distribution.Count(5))
		assert.Equal(t, 1, resp.Subjects[0].Distribution.Count(4))

		rec = do(srv, http.MethodGet, "/v1/stats/classes/"+cls.ID, teacherToken)
		require.Equal(t, http.StatusOK, rec.Code)
		var clsStats stats.ClassStats
		unmarshall(t, rec, &clsStats)
		assert.InDelta(t, 4.5, clsStats.Average, 0.001)

		rec = do(srv, http.MethodGet, "/v1/stats", teacherToken)
		require.Equal(t, http.StatusOK, rec.Code)
		var summary gradebook.Summary
		unmarshall(t, rec, &summary)
		assert.Equal(t, "4.50", summary.OverallText)
		assert.Equal(t, 2, summary.Distribution.Total())
	})

	t.Run("dashboards", func(t *testing.T) {
		for _, token := range []string{teacherToken, studentToken, login(t, srv, "admin", "admin")} {
			rec := do(srv, http.MethodGet, "/v1/dashboard", token)
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		}
	})

	t.Run("metrics", func(t *testing.T) {
		rec := do(srv, http.MethodGet, "/metrics", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.True(t, strings.Contains(body, "gradebook_http_requests_total"))
		assert.True(t, strings.Contains(body, `gradebook_mutations_total{operation="add grade",outcome="denied"}`))
	})
}
