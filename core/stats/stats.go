// Package stats derives averages and grade distributions from a store snapshot.
// Every figure is recomputed on each call; nothing is cached.
package stats

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/academic"
	"github.com/trezcool/gradebook/core/roster"
)

// DefaultTop is the default length of the TopStudents ranking.
const DefaultTop = 5

// Snapshot is the read-only input of the engine.
type Snapshot struct {
	Classes  []roster.Class
	Students []roster.Student
	Grades   []academic.Grade
}

// Distribution counts grades per value; index 0 holds the 2s, index 3 the 5s.
type Distribution [academic.MaxGrade - academic.MinGrade + 1]int

func (d *Distribution) add(value int) {
	if value >= academic.MinGrade && value <= academic.MaxGrade {
		d[value-academic.MinGrade]++
	}
}

// Count returns the number of grades equal to value.
func (d Distribution) Count(value int) int {
	if value < academic.MinGrade || value > academic.MaxGrade {
		return 0
	}
	return d[value-academic.MinGrade]
}

func (d Distribution) Total() int {
	var total int
	for _, n := range d {
		total += n
	}
	return total
}

// Percentage returns the share of grades equal to value, in percent; 0 if empty.
func (d Distribution) Percentage(value int) float64 {
	total := d.Total()
	if total == 0 {
		return 0
	}
	return float64(d.Count(value)) / float64(total) * 100
}

// MarshalJSON renders the histogram keyed by grade value.
func (d Distribution) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, len(d))
	for value := academic.MinGrade; value <= academic.MaxGrade; value++ {
		m[strconv.Itoa(value)] = d.Count(value)
	}
	return json.Marshal(m)
}

// UnmarshalJSON reads the value-keyed histogram written by MarshalJSON.
func (d *Distribution) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var parsed Distribution
	for key, n := range m {
		value, err := strconv.Atoi(key)
		if err != nil || value < academic.MinGrade || value > academic.MaxGrade {
			return errors.Errorf("stats: %q is not a grade value", key)
		}
		parsed[value-academic.MinGrade] = n
	}
	*d = parsed
	return nil
}

// The JSON form of every stats record carries its average formatted to 2 decimals
// next to the raw value.
type (
	SubjectStats struct {
		Subject      string       `json:"subject"`
		Average      float64      `json:"average"`
		Count        int          `json:"count"`
		Distribution Distribution `json:"distribution"`
	}

	StudentStats struct {
		Student roster.Student `json:"student"`
		Average float64        `json:"average"`
	}

	ClassStats struct {
		Class   roster.Class `json:"class"`
		Average float64      `json:"average"`
	}
)

func (s SubjectStats) MarshalJSON() ([]byte, error) {
	type plain SubjectStats
	return json.Marshal(struct {
		plain
		AverageText string `json:"average_text"`
	}{plain(s), Format(s.Average)})
}

func (s StudentStats) MarshalJSON() ([]byte, error) {
	type plain StudentStats
	return json.Marshal(struct {
		plain
		AverageText string `json:"average_text"`
	}{plain(s), Format(s.Average)})
}

func (s ClassStats) MarshalJSON() ([]byte, error) {
	type plain ClassStats
	return json.Marshal(struct {
		plain
		AverageText string `json:"average_text"`
	}{plain(s), Format(s.Average)})
}

// StudentAverage is the mean of the student's grades, or 0 if the student has none.
func (s Snapshot) StudentAverage(studentID string) float64 {
	var sum, count int
	for _, g := range s.Grades {
		if g.StudentID == studentID {
			sum += g.Value
			count++
		}
	}
	return mean(sum, count)
}

// ClassAverage is the mean of the non-zero student averages of the class, or 0.
func (s Snapshot) ClassAverage(classID string) float64 {
	var sum float64
	var count int
	for _, st := range s.Students {
		if st.ClassID != classID {
			continue
		}
		if avg := s.StudentAverage(st.ID); avg > 0 {
			sum += avg
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// SubjectAverage returns the mean and the histogram of the grades in subject.
func (s Snapshot) SubjectAverage(subject string) SubjectStats {
	stats := SubjectStats{Subject: subject}
	var sum int
	for _, g := range s.Grades {
		if g.Subject == subject {
			sum += g.Value
			stats.Count++
			stats.Distribution.add(g.Value)
		}
	}
	stats.Average = mean(sum, stats.Count)
	return stats
}

// SubjectAverages returns the stats of every graded subject, best average first.
// Ties keep the order in which subjects were first graded.
func (s Snapshot) SubjectAverages() []SubjectStats {
	all := s.subjectAverages(s.Grades)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Average > all[j].Average })
	return all
}

// StudentSubjectAverages returns the per-subject stats of one student,
// in the order the subjects were first graded.
func (s Snapshot) StudentSubjectAverages(studentID string) []SubjectStats {
	grades := make([]academic.Grade, 0)
	for _, g := range s.Grades {
		if g.StudentID == studentID {
			grades = append(grades, g)
		}
	}
	return s.subjectAverages(grades)
}

func (s Snapshot) subjectAverages(grades []academic.Grade) []SubjectStats {
	idx := make(map[string]int)
	sums := make([]int, 0)
	all := make([]SubjectStats, 0)
	for _, g := range grades {
		i, ok := idx[g.Subject]
		if !ok {
			i = len(all)
			idx[g.Subject] = i
			all = append(all, SubjectStats{Subject: g.Subject})
			sums = append(sums, 0)
		}
		sums[i] += g.Value
		all[i].Count++
		all[i].Distribution.add(g.Value)
	}
	for i := range all {
		all[i].Average = mean(sums[i], all[i].Count)
	}
	return all
}

// TopStudents ranks graded students by average, best first, keeping insertion order on ties.
// Students without grades are never ranked. n <= 0 uses DefaultTop.
func (s Snapshot) TopStudents(n int) []StudentStats {
	if n <= 0 {
		n = DefaultTop
	}
	ranked := make([]StudentStats, 0, len(s.Students))
	for _, st := range s.Students {
		if avg := s.StudentAverage(st.ID); avg > 0 {
			ranked = append(ranked, StudentStats{Student: st, Average: avg})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Average > ranked[j].Average })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// ClassAverages returns the classes having a non-zero average, best first.
func (s Snapshot) ClassAverages() []ClassStats {
	ranked := make([]ClassStats, 0, len(s.Classes))
	for _, cls := range s.Classes {
		if avg := s.ClassAverage(cls.ID); avg > 0 {
			ranked = append(ranked, ClassStats{Class: cls, Average: avg})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Average > ranked[j].Average })
	return ranked
}

// OverallAverage is the mean of every grade, or 0 if there is none.
func (s Snapshot) OverallAverage() float64 {
	var sum int
	for _, g := range s.Grades {
		sum += g.Value
	}
	return mean(sum, len(s.Grades))
}

// Distribution counts every grade by value.
func (s Snapshot) Distribution() Distribution {
	var d Distribution
	for _, g := range s.Grades {
		d.add(g.Value)
	}
	return d
}

func mean(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}

// Round rounds x to the given decimal places, halves away from zero.
// Values within 1e-9 of a half are treated as the half, so 2.675 rounds to 2.68.
func Round(x float64, places int) float64 {
	pow := math.Pow10(places)
	v := x * pow
	if frac := math.Abs(v - math.Trunc(v)); math.Abs(frac-0.5) < 1e-9 {
		return (math.Trunc(v) + math.Copysign(1, v)) / pow
	}
	return math.Round(v) / pow
}

// Format renders an average with 2 decimals.
func Format(avg float64) string {
	return strconv.FormatFloat(Round(avg, 2), 'f', 2, 64)
}

// FormatPercentage renders a percentage with 1 decimal.
func FormatPercentage(p float64) string {
	return strconv.FormatFloat(Round(p, 1), 'f', 1, 64)
}
