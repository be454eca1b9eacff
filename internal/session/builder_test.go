package session

import (
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/tuica/internal/model"
)

var t0 = time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)

func f64p(v float64) *float64      { return &v }
func timep(v time.Time) *time.Time { return &v }

func testSettings(micro, newPerDay, reviewsPerDay int) model.DeckSettings {
	return model.DeckSettings{
		NewPerDay:       newPerDay,
		ReviewsPerDay:   reviewsPerDay,
		MicroSession:    micro,
		Retention:       0.85,
		MaxIntervalDays: 365,
	}
}

func mustBuilder(t *testing.T, settings model.DeckSettings) *Builder {
	t.Helper()
	b, err := NewBuilder(settings)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	return b
}

// stateIn builds a reviewed card in the given phase with the given due
// time.
func stateIn(id model.CardID, phase model.Phase, due time.Time) model.ReviewState {
	return model.ReviewState{
		CardID:         id,
		DeckID:         1,
		Phase:          phase,
		Stability:      f64p(3),
		Difficulty:     f64p(5),
		DueAt:          timep(due),
		LastReviewedAt: timep(due.Add(-24 * time.Hour)),
		Reps:           2,
	}
}

func assertCards(t *testing.T, plan Plan, want ...model.CardID) {
	t.Helper()
	if len(plan.Cards) != len(want) {
		t.Fatalf("plan = %v, want %v", plan.Cards, want)
	}
	for i := range want {
		if plan.Cards[i] != want[i] {
			t.Fatalf("plan = %v, want %v", plan.Cards, want)
		}
	}
}

func TestNewBuilderRejectsInvalidSettings(t *testing.T) {
	_, err := NewBuilder(model.DeckSettings{})
	if !errors.Is(err, model.ErrInvalidSettings) {
		t.Fatalf("err = %v, want ErrInvalidSettings", err)
	}
}

func TestDueAndNewFillsRemainingSlotsWithNew(t *testing.T) {
	b := mustBuilder(t, testSettings(5, 5, 30))
	states := []model.ReviewState{
		stateIn(11, model.PhaseReviewing, t0.Add(-3*time.Hour)),
		stateIn(12, model.PhaseReviewing, t0.Add(-2*time.Hour)),
		stateIn(13, model.PhaseReviewing, t0.Add(-time.Hour)),
	}
	for id := model.CardID(1); id <= 10; id++ {
		states = append(states, model.NewReviewState(id, 1))
	}

	plan, err := b.Build(model.ModeDueAndNew, states, Quota{}, t0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	assertCards(t, plan, 11, 12, 13, 1, 2)
}

func TestDueOrderedOldestFirst(t *testing.T) {
	b := mustBuilder(t, testSettings(10, 5, 30))
	states := []model.ReviewState{
		stateIn(5, model.PhaseReviewing, t0.Add(-time.Hour)),
		stateIn(9, model.PhaseRelearning, t0.Add(-3*time.Hour)),
		stateIn(2, model.PhaseReviewing, t0.Add(-2*time.Hour)),
		stateIn(7, model.PhaseReviewing, t0.Add(-30*time.Minute)),
		stateIn(3, model.PhaseReviewing, t0.Add(-30*time.Minute)),
	}

	plan, err := b.Build(model.ModeDueAndNew, states, Quota{}, t0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// Oldest due first; equal due times fall back to card id.
	assertCards(t, plan, 9, 2, 5, 3, 7)
}

func TestLearningComesFirst(t *testing.T) {
	b := mustBuilder(t, testSettings(10, 5, 30))
	states := []model.ReviewState{
		stateIn(10, model.PhaseReviewing, t0.Add(-2*time.Hour)),
		stateIn(20, model.PhaseLearning, t0.Add(-time.Minute)),
	}

	plan, err := b.Build(model.ModeDueAndNew, states, Quota{}, t0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	assertCards(t, plan, 20, 10)
}

func TestMicroSessionBound(t *testing.T) {
	b := mustBuilder(t, testSettings(5, 30, 30))
	var states []model.ReviewState
	for id := model.CardID(1); id <= 10; id++ {
		states = append(states, stateIn(id, model.PhaseLearning, t0.Add(-time.Minute)))
	}
	for id := model.CardID(11); id <= 20; id++ {
		states = append(states, stateIn(id, model.PhaseReviewing, t0.Add(-time.Hour)))
	}
	for id := model.CardID(21); id <= 30; id++ {
		states = append(states, model.NewReviewState(id, 1))
	}

	plan, err := b.Build(model.ModeDueAndNew, states, Quota{}, t0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(plan.Cards) != 5 {
		t.Fatalf("plan has %d cards, want 5", len(plan.Cards))
	}
}

func TestNewQuotaSpentToday(t *testing.T) {
	b := mustBuilder(t, testSettings(10, 5, 30))
	var states []model.ReviewState
	for id := model.CardID(1); id <= 6; id++ {
		states = append(states, model.NewReviewState(id, 1))
	}

	plan, err := b.Build(model.ModeDueAndNew, states, Quota{IntroducedToday: 3}, t0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	assertCards(t, plan, 1, 2)

	plan, err = b.Build(model.ModeDueAndNew, states, Quota{IntroducedToday: 5}, t0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(plan.Cards) != 0 {
		t.Fatalf("plan = %v, want empty once the intro quota is spent", plan.Cards)
	}
}

func TestReviewQuotaCapsDueButNotLearning(t *testing.T) {
	b := mustBuilder(t, testSettings(10, 5, 2))
	states := []model.ReviewState{
		stateIn(1, model.PhaseReviewing, t0.Add(-3*time.Hour)),
		stateIn(2, model.PhaseReviewing, t0.Add(-2*time.Hour)),
		stateIn(3, model.PhaseReviewing, t0.Add(-time.Hour)),
		stateIn(4, model.PhaseLearning, t0.Add(-time.Minute)),
	}

	plan, err := b.Build(model.ModeDueAndNew, states, Quota{ReviewsToday: 1}, t0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// One review slot left: the oldest due card. Learning is exempt.
	assertCards(t, plan, 4, 1)

	plan, err = b.Build(model.ModeDueAndNew, states, Quota{ReviewsToday: 2}, t0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	assertCards(t, plan, 4)
}

func TestNotYetDueExcluded(t *testing.T) {
	b := mustBuilder(t, testSettings(10, 5, 30))
	states := []model.ReviewState{
		stateIn(1, model.PhaseReviewing, t0.Add(time.Hour)),
		stateIn(2, model.PhaseLearning, t0.Add(5*time.Minute)),
	}

	plan, err := b.Build(model.ModeDueAndNew, states, Quota{}, t0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(plan.Cards) != 0 {
		t.Fatalf("plan = %v, want empty when nothing is due", plan.Cards)
	}
}

func TestFullDeckIsCompletePass(t *testing.T) {
	b := mustBuilder(t, testSettings(2, 1, 1))
	states := []model.ReviewState{
		model.NewReviewState(1, 1),
		stateIn(2, model.PhaseLearning, t0.Add(2*time.Hour)),
		stateIn(3, model.PhaseReviewing, t0.Add(-time.Hour)),
		stateIn(4, model.PhaseReviewing, t0.Add(5*24*time.Hour)),
		stateIn(5, model.PhaseRelearning, t0.Add(time.Minute)),
	}

	// Quotas and the micro-session bound are ignored on a full pass.
	plan, err := b.Build(model.ModeFullDeck, states, Quota{IntroducedToday: 99, ReviewsToday: 99}, t0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	assertCards(t, plan, 2, 3, 5, 4, 1)
}

func TestMistakesOnlyRelearning(t *testing.T) {
	b := mustBuilder(t, testSettings(5, 5, 30))
	states := []model.ReviewState{
		model.NewReviewState(1, 1),
		stateIn(2, model.PhaseReviewing, t0.Add(-time.Hour)),
		stateIn(3, model.PhaseRelearning, t0.Add(2*time.Hour)),
		stateIn(4, model.PhaseRelearning, t0.Add(-time.Hour)),
	}

	plan, err := b.Build(model.ModeMistakes, states, Quota{}, t0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// Exactly the relearning cards, oldest due first, due or not.
	assertCards(t, plan, 4, 3)
}

func TestResetModeRejected(t *testing.T) {
	b := mustBuilder(t, testSettings(5, 5, 30))
	_, err := b.Build(model.ModeReset, nil, Quota{}, t0)
	if !errors.Is(err, ErrResetMode) {
		t.Fatalf("err = %v, want ErrResetMode", err)
	}
}

func TestUnknownModeRejected(t *testing.T) {
	b := mustBuilder(t, testSettings(5, 5, 30))
	_, err := b.Build(model.SessionMode(99), nil, Quota{}, t0)
	if !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("err = %v, want ErrUnknownMode", err)
	}
}

func TestEmptySelectionIsNotAnError(t *testing.T) {
	b := mustBuilder(t, testSettings(5, 5, 30))
	plan, err := b.Build(model.ModeDueAndNew, nil, Quota{}, t0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(plan.Cards) != 0 {
		t.Fatalf("plan = %v, want empty", plan.Cards)
	}
}

func TestMissingPhaseTreatedAsNew(t *testing.T) {
	b := mustBuilder(t, testSettings(5, 5, 30))
	states := []model.ReviewState{{CardID: 7, DeckID: 1}}

	plan, err := b.Build(model.ModeDueAndNew, states, Quota{}, t0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	assertCards(t, plan, 7)
}

func TestShuffleNewIsDeterministic(t *testing.T) {
	var states []model.ReviewState
	for id := model.CardID(1); id <= 10; id++ {
		states = append(states, model.NewReviewState(id, 1))
	}

	a := mustBuilder(t, testSettings(10, 10, 30))
	a.ShuffleNew(42)
	b := mustBuilder(t, testSettings(10, 10, 30))
	b.ShuffleNew(42)

	planA, err := a.Build(model.ModeDueAndNew, states, Quota{}, t0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	planB, err := b.Build(model.ModeDueAndNew, states, Quota{}, t0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(planA.Cards) != 10 {
		t.Fatalf("plan has %d cards, want 10", len(planA.Cards))
	}
	seen := make(map[model.CardID]bool)
	for i := range planA.Cards {
		if planA.Cards[i] != planB.Cards[i] {
			t.Fatalf("same seed built different plans: %v vs %v", planA.Cards, planB.Cards)
		}
		seen[planA.Cards[i]] = true
	}
	if len(seen) != 10 {
		t.Fatalf("shuffled plan is not a permutation: %v", planA.Cards)
	}
}
