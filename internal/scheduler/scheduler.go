// Package scheduler computes a card's next review state from its
// current state and a grade, using the FSRS v6 memory model behind a
// swappable Curve.
package scheduler

import (
	"fmt"
	"time"

	"github.com/verte-zerg/tuica/internal/model"
)

const (
	defaultRetention       = 0.9
	defaultLearningStep    = 10 * time.Minute
	defaultRelearningStep  = 10 * time.Minute
	defaultMaxIntervalDays = 36500
)

// Config configures a Scheduler. Zero values fall back to defaults;
// out-of-range values fail New.
type Config struct {
	// Curve overrides the memory model. Nil builds an FSRS curve from
	// Weights.
	Curve Curve

	// Weights parameterize the FSRS curve. A zero array means
	// DefaultWeights. Ignored when Curve is set.
	Weights [21]float64

	// DesiredRetention is the recall probability targeted when turning
	// stability into an interval. Zero means 0.9; anything else must lie
	// strictly between 0 and 1.
	DesiredRetention float64

	// LearningStep is the re-queue delay for cards still being learned.
	// Zero means 10 minutes.
	LearningStep time.Duration

	// RelearningStep is the re-queue delay after a lapse. Zero means
	// 10 minutes.
	RelearningStep time.Duration

	// MaximumIntervalDays caps scheduled intervals. Zero means 36500.
	MaximumIntervalDays int

	// EnableFuzz jitters reviewing intervals of 2.5 days or more.
	EnableFuzz bool
}

// Scheduler maps (state, grade, now) to the card's next state. It holds
// no clock and no storage; callers pass now explicitly and persist the
// results themselves, so concurrent use needs no locking.
type Scheduler struct {
	curve          Curve
	retention      float64
	learningStep   time.Duration
	relearningStep time.Duration
	maxDays        int
	fuzz           bool
}

// New validates cfg and builds a Scheduler.
func New(cfg Config) (*Scheduler, error) {
	curve := cfg.Curve
	if curve == nil {
		weights := cfg.Weights
		if weights == ([21]float64{}) {
			weights = DefaultWeights
		}
		fsrs, err := NewFSRS(weights)
		if err != nil {
			return nil, err
		}
		curve = fsrs
	}

	retention := cfg.DesiredRetention
	if retention == 0 {
		retention = defaultRetention
	}
	if retention <= 0 || retention >= 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRetention, retention)
	}

	learning := cfg.LearningStep
	if learning == 0 {
		learning = defaultLearningStep
	}
	relearning := cfg.RelearningStep
	if relearning == 0 {
		relearning = defaultRelearningStep
	}
	if learning < 0 || relearning < 0 {
		return nil, fmt.Errorf("%w: learning %v, relearning %v", ErrInvalidStep, learning, relearning)
	}

	maxDays := cfg.MaximumIntervalDays
	if maxDays == 0 {
		maxDays = defaultMaxIntervalDays
	}
	if maxDays < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxInterval, maxDays)
	}

	return &Scheduler{
		curve:          curve,
		retention:      retention,
		learningStep:   learning,
		relearningStep: relearning,
		maxDays:        maxDays,
		fuzz:           cfg.EnableFuzz,
	}, nil
}

// Grade reviews the card: it evolves the memory model, applies the phase
// transition for the grade, and stamps the next due time. The input
// state is not mutated; the returned log carries a snapshot of the new
// state. The due time is always strictly after now.
func (s *Scheduler) Grade(state model.ReviewState, grade model.Grade, now time.Time) (model.ReviewState, model.ReviewLog) {
	out := state.Clone()

	var elapsedDays float64
	if out.LastReviewedAt != nil {
		elapsedDays = now.Sub(*out.LastReviewedAt).Hours() / 24
	}

	s.updateMemory(&out, grade, elapsedDays)
	interval := s.transition(&out, grade)
	out.Reps++

	if s.fuzz && out.Phase == model.PhaseReviewing {
		if days := int(interval.Hours() / 24); days >= 1 {
			fuzzed := fuzzInterval(days, s.maxDays, out.CardID, out.Reps)
			interval = time.Duration(fuzzed) * 24 * time.Hour
		}
	}

	due := now.Add(interval)
	out.DueAt = &due
	out.LastReviewedAt = &now

	log := model.ReviewLog{
		CardID:     out.CardID,
		Grade:      grade,
		ReviewedAt: now,
		Result:     out.Clone(),
	}
	return out, log
}

// Preview returns the state each grade would produce at the given time,
// keyed by grade. Used for interval hints before the learner commits.
func (s *Scheduler) Preview(state model.ReviewState, now time.Time) map[model.Grade]model.ReviewState {
	out := make(map[model.Grade]model.ReviewState, len(model.Grades))
	for _, g := range model.Grades {
		next, _ := s.Grade(state, g, now)
		out[g] = next
	}
	return out
}

// Retrievability reports the modeled recall probability for the state
// at the given time, or 0 for a card that was never reviewed.
func (s *Scheduler) Retrievability(state model.ReviewState, now time.Time) float64 {
	if state.Stability == nil || state.LastReviewedAt == nil {
		return 0
	}
	elapsed := now.Sub(*state.LastReviewedAt).Hours() / 24
	return s.curve.Retrievability(elapsed, *state.Stability)
}

func (s *Scheduler) updateMemory(state *model.ReviewState, grade model.Grade, elapsedDays float64) {
	if state.Stability == nil || state.Difficulty == nil {
		// First review.
		m := s.curve.InitialMemory(grade)
		state.Stability = &m.Stability
		state.Difficulty = &m.Difficulty
		return
	}
	next := s.curve.NextMemory(Memory{
		Stability:  *state.Stability,
		Difficulty: *state.Difficulty,
	}, elapsedDays, grade)
	state.Stability = &next.Stability
	state.Difficulty = &next.Difficulty
}

// transition applies the phase rules for the grade and returns the
// scheduling interval. Memory has already been updated.
func (s *Scheduler) transition(state *model.ReviewState, grade model.Grade) time.Duration {
	switch state.Phase {
	case model.PhaseReviewing:
		if grade == model.GradeAgain {
			// A lapse. Prior stability stays in play for the next
			// interval rather than being discarded.
			state.Phase = model.PhaseRelearning
			state.Lapses++
			return s.relearningStep
		}
		return s.reviewInterval(state)
	case model.PhaseRelearning:
		return s.stepOrGraduate(state, grade, s.relearningStep)
	default:
		// New, Learning, or a state loaded with no phase at all.
		return s.stepOrGraduate(state, grade, s.learningStep)
	}
}

// stepOrGraduate handles the learning phases with a single step: Again
// restarts the step, Hard stretches it, Good and Easy graduate the card
// to Reviewing.
func (s *Scheduler) stepOrGraduate(state *model.ReviewState, grade model.Grade, step time.Duration) time.Duration {
	switch grade {
	case model.GradeAgain:
		s.enterLearning(state)
		return step
	case model.GradeHard:
		s.enterLearning(state)
		return time.Duration(float64(step) * 1.5)
	default:
		state.Phase = model.PhaseReviewing
		return s.reviewInterval(state)
	}
}

// enterLearning moves a New card into Learning on its first review.
// Learning and Relearning cards keep their phase.
func (s *Scheduler) enterLearning(state *model.ReviewState) {
	if state.Phase != model.PhaseRelearning {
		state.Phase = model.PhaseLearning
	}
}

func (s *Scheduler) reviewInterval(state *model.ReviewState) time.Duration {
	days := s.curve.IntervalDays(*state.Stability, s.retention, s.maxDays)
	return time.Duration(days) * 24 * time.Hour
}
