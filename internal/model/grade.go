package model

import "fmt"

// Grade is the learner's assessment of a recall attempt.
type Grade int

const (
	GradeAgain Grade = iota + 1 // failed to recall
	GradeHard                   // recalled with real difficulty
	GradeGood                   // recalled with some effort
	GradeEasy                   // recalled effortlessly
)

var (
	gradeNames = [...]string{
		GradeAgain: "again",
		GradeHard:  "hard",
		GradeGood:  "good",
		GradeEasy:  "easy",
	}
	gradeByName = map[string]Grade{
		"again": GradeAgain,
		"hard":  GradeHard,
		"good":  GradeGood,
		"easy":  GradeEasy,
	}
)

// String returns the grade name. Invalid values render as "grade(n)".
func (g Grade) String() string {
	if g.IsValid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("grade(%d)", int(g))
}

// IsValid reports whether g is one of the four grades.
func (g Grade) IsValid() bool {
	return g >= GradeAgain && g <= GradeEasy
}

// ParseGrade converts a stored grade name back to a Grade.
func ParseGrade(s string) (Grade, error) {
	g, ok := gradeByName[s]
	if !ok {
		return 0, fmt.Errorf("model: unknown grade %q", s)
	}
	return g, nil
}

// Grades lists all grades in ascending order, for iteration.
var Grades = []Grade{GradeAgain, GradeHard, GradeGood, GradeEasy}
