package stats

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core/academic"
	"github.com/trezcool/gradebook/core/roster"
)

func grade(studentID, subject string, value int) academic.Grade {
	return academic.Grade{StudentID: studentID, Subject: subject, Value: value}
}

func snapshot() Snapshot {
	return Snapshot{
		Classes: []roster.Class{{ID: "9a", Name: "9A"}, {ID: "9b", Name: "9B"}, {ID: "10a", Name: "10A"}},
		Students: []roster.Student{
			{ID: "ivan", ClassID: "9a"},
			{ID: "olga", ClassID: "9a"},
			{ID: "petr", ClassID: "9b"},
			{ID: "anna", ClassID: "9b"},
			{ID: "lazy", ClassID: "9a"},
		},
		Grades: []academic.Grade{
			grade("ivan", "Math", 5),
			grade("ivan", "Physics", 4),
			grade("olga", "Math", 3),
			grade("petr", "Math", 5),
			grade("petr", "History", 4),
			grade("anna", "Math", 5),
			grade("anna", "Physics", 4),
			grade("olga", "History", 2),
		},
	}
}

func TestSnapshot_StudentAverage(t *testing.T) {
	snap := snapshot()

	tests := []struct {
		name      string
		studentID string
		want      float64
	}{
		{name: "two grades", studentID: "ivan", want: 4.5},
		{name: "low grades", studentID: "olga", want: 2.5},
		{name: "no grades", studentID: "lazy", want: 0},
		{name: "unknown student", studentID: "nobody", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, snap.StudentAverage(tt.studentID))
		})
	}

	t.Run("other students do not count", func(t *testing.T) {
		before := snap.StudentAverage("ivan")
		snap.Grades = append(snap.Grades, grade("olga", "Math", 2))
		assert.Equal(t, before, snap.StudentAverage("ivan"))
	})
}

func TestSnapshot_ClassAverage(t *testing.T) {
	snap := snapshot()

	// 9a: ivan 4.5, olga 2.5, lazy excluded
	assert.Equal(t, 3.5, snap.ClassAverage("9a"))
	// 9b: petr 4.5, anna 4.5
	assert.Equal(t, 4.5, snap.ClassAverage("9b"))
	assert.Equal(t, 0.0, snap.ClassAverage("10a"))
	assert.Equal(t, 0.0, snap.ClassAverage("unknown"))
}

func TestSnapshot_SubjectAverage(t *testing.T) {
	snap := snapshot()

	math := snap.SubjectAverage("Math")
	assert.Equal(t, 4.5, math.Average)
	assert.Equal(t, 4, math.Count)
	assert.Equal(t, 3, math.Distribution.Count(5))
	assert.Equal(t, 1, math.Distribution.Count(3))
	assert.Equal(t, 0, math.Distribution.Count(2))
	assert.Equal(t, 0, math.Distribution.Count(1))

	empty := snap.SubjectAverage("Chemistry")
	assert.Equal(t, 0.0, empty.Average)
	assert.Equal(t, 0, empty.Count)
	assert.Equal(t, 0, empty.Distribution.Total())
}

func TestSnapshot_SubjectAverages(t *testing.T) {
	snap := snapshot()

	got := snap.SubjectAverages()
	subjects := make([]string, 0, len(got))
	for _, s := range got {
		subjects = append(subjects, s.Subject)
	}
	// Math 4.5, Physics 4, History 3
	assert.Equal(t, []string{"Math", "Physics", "History"}, subjects)

	perStudent := snap.StudentSubjectAverages("olga")
	if assert.Len(t, perStudent, 2) {
		assert.Equal(t, "Math", perStudent[0].Subject)
		assert.Equal(t, 3.0, perStudent[0].Average)
		assert.Equal(t, "History", perStudent[1].Subject)
		assert.Equal(t, 2.0, perStudent[1].Average)
	}
}

func TestSnapshot_TopStudents(t *testing.T) {
	snap := snapshot()

	tests := []struct {
		name string
		n    int
		want []string
	}{
		// ivan, petr, anna tie at 4.5: insertion order
		{name: "top 5", n: 5, want: []string{"ivan", "petr", "anna", "olga"}},
		{name: "top 2", n: 2, want: []string{"ivan", "petr"}},
		{name: "default", n: 0, want: []string{"ivan", "petr", "anna", "olga"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := snap.TopStudents(tt.n)
			ids := make([]string, 0, len(got))
			for i, st := range got {
				ids = append(ids, st.Student.ID)
				if i > 0 {
					assert.LessOrEqual(t, st.Average, got[i-1].Average)
				}
				assert.Greater(t, st.Average, 0.0)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	t.Run("nobody graded", func(t *testing.T) {
		snap := Snapshot{Students: []roster.Student{{ID: "lazy"}}}
		assert.Empty(t, snap.TopStudents(5))
	})
}

func TestSnapshot_ClassAverages(t *testing.T) {
	snap := snapshot()

	got := snap.ClassAverages()
	if assert.Len(t, got, 2) {
		assert.Equal(t, "9b", got[0].Class.ID)
		assert.Equal(t, "9a", got[1].Class.ID)
	}
}

func TestSnapshot_OverallAverageAndDistribution(t *testing.T) {
	snap := snapshot()

	assert.Equal(t, 32.0/8, snap.OverallAverage())
	assert.Equal(t, 0.0, Snapshot{}.OverallAverage())

	d := snap.Distribution()
	assert.Equal(t, 8, d.Total())
	assert.Equal(t, 3, d.Count(5))
	assert.Equal(t, 3, d.Count(4))
	assert.Equal(t, 1, d.Count(3))
	assert.Equal(t, 1, d.Count(2))
	assert.Equal(t, 37.5, d.Percentage(5))
	assert.Equal(t, 0.0, Distribution{}.Percentage(5))

	data, err := json.Marshal(d)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"2":1,"3":1,"4":3,"5":3}`, string(data))
}

func TestDistribution_UnmarshalJSON(t *testing.T) {
	want := snapshot().Distribution()
	data, err := json.Marshal(want)
	require.NoError(t, err)

	var got Distribution
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want, got)

	tests := []struct {
		name    string
		data    string
		want    Distribution
		wantErr bool
	}{
		{name: "partial", data: `{"5":2}`, want: Distribution{0, 0, 0, 2}},
		{name: "empty", data: `{}`},
		{name: "out of scale", data: `{"6":1}`, wantErr: true},
		{name: "not a number", data: `{"five":1}`, wantErr: true},
		{name: "not an object", data: `[1,2,3,4]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Distribution
			err := json.Unmarshal([]byte(tt.data), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestStats_JSON(t *testing.T) {
	snap := snapshot()
	subj := snap.SubjectAverage("Math")

	data, err := json.Marshal(subj)
	require.NoError(t, err)
	assert.JSONEq(t, `{"subject":"Math","average":4.5,"average_text":"4.50","count":4,"distribution":{"2":0,"3":1,"4":0,"5":3}}`, string(data))

	var decoded SubjectStats
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, subj, decoded)

	data, err = json.Marshal(ClassStats{Class: roster.Class{ID: "9a", Name: "9A"}, Average: 13.0 / 3})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"average_text":"4.33"`)

	top := snap.TopStudents(1)
	require.Len(t, top, 1)
	data, err = json.Marshal(top)
	require.NoError(t, err)
	var decodedTop []StudentStats
	require.NoError(t, json.Unmarshal(data, &decodedTop))
	assert.Equal(t, top[0].Student.ID, decodedTop[0].Student.ID)
	assert.Equal(t, top[0].Average, decodedTop[0].Average)
	assert.Contains(t, string(data), `"average_text":"`+Format(top[0].Average)+`"`)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		avg  float64
		want string
	}{
		{avg: 5, want: "5.00"},
		{avg: 0, want: "0.00"},
		{avg: 13.0 / 3, want: "4.33"},
		{avg: 11.0 / 3, want: "3.67"},
		{avg: 107.0 / 40, want: "2.68"}, // 2.675 rounds away from zero
		{avg: 4.125, want: "4.13"},
		{avg: -2.675, want: "-2.68"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.avg))
		})
	}

	assert.Equal(t, "37.5", FormatPercentage(37.5))
	assert.Equal(t, "33.3", FormatPercentage(100.0/3))
}
