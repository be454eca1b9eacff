package model

import "fmt"

// Phase is the scheduling lifecycle stage of a card. It selects which
// transition rules the scheduler applies.
type Phase int

const (
	PhaseNew        Phase = iota + 1 // never reviewed
	PhaseLearning                    // first reviews, short re-queues
	PhaseReviewing                   // graduated, interval-scheduled
	PhaseRelearning                  // lapsed, being recovered
)

var (
	phaseNames = [...]string{
		PhaseNew:        "new",
		PhaseLearning:   "learning",
		PhaseReviewing:  "reviewing",
		PhaseRelearning: "relearning",
	}
	phaseByName = map[string]Phase{
		"new":        PhaseNew,
		"learning":   PhaseLearning,
		"reviewing":  PhaseReviewing,
		"relearning": PhaseRelearning,
	}
)

// String returns the phase name. Invalid values render as "phase(n)".
func (p Phase) String() string {
	if p.IsValid() {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// IsValid reports whether p is one of the four phases.
func (p Phase) IsValid() bool {
	return p >= PhaseNew && p <= PhaseRelearning
}

// ParsePhase converts a stored phase name back to a Phase.
func ParsePhase(s string) (Phase, error) {
	p, ok := phaseByName[s]
	if !ok {
		return 0, fmt.Errorf("model: unknown phase %q", s)
	}
	return p, nil
}
