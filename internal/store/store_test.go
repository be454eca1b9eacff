package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tuica/internal/model"
)

var t0 = time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tuica.db")
	st, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func newTestDeck(t *testing.T, st *Store, name string) model.Deck {
	t.Helper()
	deck, err := st.CreateDeck(context.Background(), name, model.DefaultDeckSettings())
	if err != nil {
		t.Fatalf("create deck %q: %v", name, err)
	}
	return deck
}

func addTestCard(t *testing.T, st *Store, deckID model.DeckID, front, back string) model.Card {
	t.Helper()
	card, err := st.AddCard(context.Background(), deckID, front, back)
	if err != nil {
		t.Fatalf("add card %q: %v", front, err)
	}
	return card
}

func f64p(v float64) *float64 {
	return &v
}

func timep(v time.Time) *time.Time {
	return &v
}

// applyTestReview writes a review outcome for the card: the resulting
// state plus its log row, reviewed at the given instant and due again
// at the given time.
func applyTestReview(t *testing.T, st *Store, card model.Card, phase model.Phase, reps, lapses int, grade model.Grade, at, due time.Time) model.ReviewState {
	t.Helper()
	state := model.ReviewState{
		CardID:         card.ID,
		DeckID:         card.DeckID,
		Phase:          phase,
		Stability:      f64p(2.5),
		Difficulty:     f64p(5.0),
		DueAt:          timep(due),
		LastReviewedAt: timep(at),
		Reps:           reps,
		Lapses:         lapses,
	}
	log := model.ReviewLog{CardID: card.ID, Grade: grade, ReviewedAt: at, Result: state}
	if err := st.ApplyReview(context.Background(), state, log); err != nil {
		t.Fatalf("apply review for card %v: %v", card.ID, err)
	}
	return state
}

func TestOpenCreatesParentDirs(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "deep", "tuica.db")
	st, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}
}

func TestCreateAndGetDeck(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	settings := model.DeckSettings{
		NewPerDay:       7,
		ReviewsPerDay:   40,
		MicroSession:    9,
		Retention:       0.9,
		MaxIntervalDays: 180,
	}
	deck, err := st.CreateDeck(ctx, "spanish", settings)
	if err != nil {
		t.Fatalf("create deck: %v", err)
	}
	if deck.ID == 0 {
		t.Fatalf("expected a non-zero deck id")
	}
	if deck.Settings != settings {
		t.Fatalf("returned settings %+v, want %+v", deck.Settings, settings)
	}

	got, err := st.GetDeckByName(ctx, "spanish")
	if err != nil {
		t.Fatalf("get deck: %v", err)
	}
	if got.ID != deck.ID || got.Name != "spanish" || got.Settings != settings {
		t.Fatalf("unexpected deck: %+v", got)
	}
	if !got.CreatedAt.Equal(deck.CreatedAt) {
		t.Fatalf("created_at changed in round trip: %v vs %v", got.CreatedAt, deck.CreatedAt)
	}
}

func TestCreateDeckDuplicate(t *testing.T) {
	st := newTestStore(t)
	newTestDeck(t, st, "spanish")

	_, err := st.CreateDeck(context.Background(), "spanish", model.DefaultDeckSettings())
	if !errors.Is(err, ErrDeckExists) {
		t.Fatalf("expected ErrDeckExists, got %v", err)
	}
}

func TestGetDeckByNameMissing(t *testing.T) {
	st := newTestStore(t)
	_, err := st.GetDeckByName(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListDecks(t *testing.T) {
	st := newTestStore(t)
	newTestDeck(t, st, "alpha")
	newTestDeck(t, st, "beta")
	newTestDeck(t, st, "gamma")

	decks, err := st.ListDecks(context.Background())
	if err != nil {
		t.Fatalf("list decks: %v", err)
	}
	if len(decks) != 3 {
		t.Fatalf("expected 3 decks, got %d", len(decks))
	}
	for i, want := range []string{"alpha", "beta", "gamma"} {
		if decks[i].Name != want {
			t.Fatalf("deck %d: got %q, want %q", i, decks[i].Name, want)
		}
	}
}

func TestUpdateDeckSettings(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	deck := newTestDeck(t, st, "spanish")

	updated := deck.Settings
	updated.NewPerDay = 12
	updated.Retention = 0.92
	if err := st.UpdateDeckSettings(ctx, deck.ID, updated); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	got, err := st.GetDeckByName(ctx, "spanish")
	if err != nil {
		t.Fatalf("get deck: %v", err)
	}
	if got.Settings != updated {
		t.Fatalf("settings %+v, want %+v", got.Settings, updated)
	}

	err = st.UpdateDeckSettings(ctx, deck.ID+99, updated)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing deck, got %v", err)
	}
}

func TestAddCardCreatesNewState(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	deck := newTestDeck(t, st, "spanish")

	card := addTestCard(t, st, deck.ID, "hola", "hello")
	if card.ID == 0 {
		t.Fatalf("expected a non-zero card id")
	}

	cards, err := st.ListCards(ctx, deck.ID)
	if err != nil {
		t.Fatalf("list cards: %v", err)
	}
	if len(cards) != 1 || cards[0].Front != "hola" || cards[0].Back != "hello" {
		t.Fatalf("unexpected cards: %+v", cards)
	}

	states, err := st.ListReviewStates(ctx, deck.ID)
	if err != nil {
		t.Fatalf("list states: %v", err)
	}
	if len(states) != 1 {
		t.Fatalf("expected 1 state, got %d", len(states))
	}
	s := states[0]
	if s.CardID != card.ID || s.DeckID != deck.ID {
		t.Fatalf("state ids %v/%v, want %v/%v", s.CardID, s.DeckID, card.ID, deck.ID)
	}
	if s.Phase != model.PhaseNew {
		t.Fatalf("expected phase new, got %v", s.Phase)
	}
	if s.Stability != nil || s.Difficulty != nil || s.DueAt != nil || s.LastReviewedAt != nil {
		t.Fatalf("expected nil scheduling fields on a new card: %+v", s)
	}
	if s.Reps != 0 || s.Lapses != 0 {
		t.Fatalf("expected zero counters, got reps=%d lapses=%d", s.Reps, s.Lapses)
	}
}

func TestAddCardsBatch(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	deck := newTestDeck(t, st, "spanish")

	entries := []model.Card{
		{Front: "uno", Back: "one"},
		{Front: "dos", Back: "two"},
		{Front: "tres", Back: "three"},
	}
	cards, err := st.AddCards(ctx, deck.ID, entries)
	if err != nil {
		t.Fatalf("add cards: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(cards))
	}
	for i := 1; i < len(cards); i++ {
		if cards[i].ID <= cards[i-1].ID {
			t.Fatalf("card ids not increasing: %v", cards)
		}
	}

	states, err := st.ListReviewStates(ctx, deck.ID)
	if err != nil {
		t.Fatalf("list states: %v", err)
	}
	if len(states) != 3 {
		t.Fatalf("expected 3 states, got %d", len(states))
	}
	for _, s := range states {
		if s.Phase != model.PhaseNew {
			t.Fatalf("card %v: expected phase new, got %v", s.CardID, s.Phase)
		}
	}
}

func TestApplyReviewRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	deck := newTestDeck(t, st, "spanish")
	card := addTestCard(t, st, deck.ID, "hola", "hello")

	due := t0.AddDate(0, 0, 3)
	state := model.ReviewState{
		CardID:         card.ID,
		DeckID:         deck.ID,
		Phase:          model.PhaseReviewing,
		Stability:      f64p(3.4),
		Difficulty:     f64p(5.2),
		DueAt:          timep(due),
		LastReviewedAt: timep(t0),
		Reps:           1,
		Lapses:         0,
	}
	log := model.ReviewLog{CardID: card.ID, Grade: model.GradeGood, ReviewedAt: t0, Result: state}
	if err := st.ApplyReview(ctx, state, log); err != nil {
		t.Fatalf("apply review: %v", err)
	}

	states, err := st.ListReviewStates(ctx, deck.ID)
	if err != nil {
		t.Fatalf("list states: %v", err)
	}
	if len(states) != 1 {
		t.Fatalf("expected 1 state, got %d", len(states))
	}
	got := states[0]
	if got.Phase != model.PhaseReviewing || got.Reps != 1 || got.Lapses != 0 {
		t.Fatalf("unexpected state: %+v", got)
	}
	if got.Stability == nil || *got.Stability != 3.4 {
		t.Fatalf("stability did not round trip: %v", got.Stability)
	}
	if got.Difficulty == nil || *got.Difficulty != 5.2 {
		t.Fatalf("difficulty did not round trip: %v", got.Difficulty)
	}
	if got.DueAt == nil || !got.DueAt.Equal(due) {
		t.Fatalf("due_at did not round trip: %v", got.DueAt)
	}
	if got.LastReviewedAt == nil || !got.LastReviewedAt.Equal(t0) {
		t.Fatalf("last_reviewed_at did not round trip: %v", got.LastReviewedAt)
	}

	// A second review must replace the state row, not add one.
	state.Reps = 2
	state.Stability = f64p(7.8)
	state.LastReviewedAt = timep(t0.AddDate(0, 0, 3))
	log.ReviewedAt = t0.AddDate(0, 0, 3)
	log.Result = state
	if err := st.ApplyReview(ctx, state, log); err != nil {
		t.Fatalf("apply second review: %v", err)
	}
	states, err = st.ListReviewStates(ctx, deck.ID)
	if err != nil {
		t.Fatalf("list states: %v", err)
	}
	if len(states) != 1 {
		t.Fatalf("expected 1 state after upsert, got %d", len(states))
	}
	if states[0].Reps != 2 || *states[0].Stability != 7.8 {
		t.Fatalf("upsert did not replace state: %+v", states[0])
	}
}

func TestIntroducedAndReviewCounts(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	deck := newTestDeck(t, st, "spanish")
	a := addTestCard(t, st, deck.ID, "uno", "one")
	b := addTestCard(t, st, deck.ID, "dos", "two")

	// Card a: introduced at t0, reviewed again an hour later.
	applyTestReview(t, st, a, model.PhaseReviewing, 1, 0, model.GradeGood, t0, t0.AddDate(0, 0, 2))
	applyTestReview(t, st, a, model.PhaseReviewing, 2, 0, model.GradeGood, t0.Add(time.Hour), t0.AddDate(0, 0, 5))
	// Card b: introduced with a lapse into learning, then re-queued
	// within the learning loop. Neither grade consumes review quota.
	applyTestReview(t, st, b, model.PhaseLearning, 1, 0, model.GradeAgain, t0.Add(2*time.Hour), t0.Add(2*time.Hour+10*time.Minute))
	applyTestReview(t, st, b, model.PhaseLearning, 2, 0, model.GradeAgain, t0.Add(3*time.Hour), t0.Add(3*time.Hour+10*time.Minute))

	introduced, err := st.CountIntroducedSince(ctx, deck.ID, t0)
	if err != nil {
		t.Fatalf("count introduced: %v", err)
	}
	if introduced != 2 {
		t.Fatalf("expected 2 introduced since t0, got %d", introduced)
	}

	introduced, err = st.CountIntroducedSince(ctx, deck.ID, t0.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("count introduced: %v", err)
	}
	if introduced != 1 {
		t.Fatalf("expected 1 introduced since t0+90m, got %d", introduced)
	}

	reviews, err := st.CountReviewsSince(ctx, deck.ID, t0)
	if err != nil {
		t.Fatalf("count reviews: %v", err)
	}
	if reviews != 1 {
		t.Fatalf("expected 1 quota review since t0, got %d", reviews)
	}
}

func TestResetDeck(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	deck := newTestDeck(t, st, "spanish")
	a := addTestCard(t, st, deck.ID, "uno", "one")
	addTestCard(t, st, deck.ID, "dos", "two")
	applyTestReview(t, st, a, model.PhaseReviewing, 1, 0, model.GradeGood, t0, t0.AddDate(0, 0, 2))

	n, err := st.ResetDeck(ctx, deck.ID)
	if err != nil {
		t.Fatalf("reset deck: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 states reset, got %d", n)
	}

	states, err := st.ListReviewStates(ctx, deck.ID)
	if err != nil {
		t.Fatalf("list states: %v", err)
	}
	for _, s := range states {
		if s.Phase != model.PhaseNew || s.Reps != 0 || s.Lapses != 0 {
			t.Fatalf("card %v not reset: %+v", s.CardID, s)
		}
		if s.Stability != nil || s.Difficulty != nil || s.DueAt != nil || s.LastReviewedAt != nil {
			t.Fatalf("card %v kept scheduling fields after reset: %+v", s.CardID, s)
		}
	}

	// History survives a reset.
	introduced, err := st.CountIntroducedSince(ctx, deck.ID, t0)
	if err != nil {
		t.Fatalf("count introduced: %v", err)
	}
	if introduced != 1 {
		t.Fatalf("reset should not touch logs, introduced=%d", introduced)
	}

	// Resetting again is harmless.
	n, err = st.ResetDeck(ctx, deck.ID)
	if err != nil {
		t.Fatalf("second reset: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 states on second reset, got %d", n)
	}
}

func TestDeckCounts(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	deck := newTestDeck(t, st, "spanish")
	addTestCard(t, st, deck.ID, "uno", "one")
	b := addTestCard(t, st, deck.ID, "dos", "two")
	c := addTestCard(t, st, deck.ID, "tres", "three")
	d := addTestCard(t, st, deck.ID, "cuatro", "four")

	applyTestReview(t, st, b, model.PhaseLearning, 1, 0, model.GradeAgain, t0.Add(-2*time.Hour), t0.Add(-time.Hour))
	applyTestReview(t, st, c, model.PhaseReviewing, 1, 0, model.GradeGood, t0.Add(-time.Hour), t0.Add(24*time.Hour))
	applyTestReview(t, st, d, model.PhaseRelearning, 3, 1, model.GradeAgain, t0.Add(-time.Hour), t0)

	counts, err := st.DeckCounts(ctx, deck.ID, t0)
	if err != nil {
		t.Fatalf("deck counts: %v", err)
	}
	want := model.DeckCounts{New: 1, Learning: 1, Reviewing: 1, Relearning: 1, DueNow: 2}
	if counts != want {
		t.Fatalf("counts %+v, want %+v", counts, want)
	}
	if counts.Total() != 4 {
		t.Fatalf("total %d, want 4", counts.Total())
	}
}

func TestSummaries(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alpha := newTestDeck(t, st, "alpha")
	beta := newTestDeck(t, st, "beta")

	mkSummary := func(uid string, deckID model.DeckID, finished time.Time) model.SessionSummary {
		return model.SessionSummary{
			UID:        uid,
			DeckID:     deckID,
			Mode:       model.ModeDueAndNew,
			StartedAt:  finished.Add(-10 * time.Minute),
			FinishedAt: finished,
			DurationMs: 600000,
			Again:      1,
			Hard:       0,
			Good:       3,
			Easy:       1,
		}
	}

	// Inserted out of finish order to exercise sorting.
	for _, s := range []model.SessionSummary{
		mkSummary("a2", alpha.ID, t0.Add(2*time.Hour)),
		mkSummary("a1", alpha.ID, t0.Add(time.Hour)),
		mkSummary("a3", alpha.ID, t0.Add(3*time.Hour)),
		mkSummary("b1", beta.ID, t0.Add(30*time.Minute)),
	} {
		id, err := st.InsertSummary(ctx, s)
		if err != nil {
			t.Fatalf("insert summary %s: %v", s.UID, err)
		}
		if id == 0 {
			t.Fatalf("expected a non-zero summary id for %s", s.UID)
		}
	}

	all, err := st.ListSummaries(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list summaries: %v", err)
	}
	gotUIDs := make([]string, 0, len(all))
	for _, s := range all {
		gotUIDs = append(gotUIDs, s.UID)
	}
	wantUIDs := []string{"b1", "a1", "a2", "a3"}
	if len(gotUIDs) != len(wantUIDs) {
		t.Fatalf("expected %d summaries, got %v", len(wantUIDs), gotUIDs)
	}
	for i := range wantUIDs {
		if gotUIDs[i] != wantUIDs[i] {
			t.Fatalf("summaries out of order: got %v, want %v", gotUIDs, wantUIDs)
		}
	}

	first := all[0]
	if first.Mode != model.ModeDueAndNew || first.Total() != 5 || first.DurationMs != 600000 {
		t.Fatalf("summary did not round trip: %+v", first)
	}
	if !first.FinishedAt.Equal(t0.Add(30 * time.Minute)) {
		t.Fatalf("finished_at did not round trip: %v", first.FinishedAt)
	}

	forAlpha, err := st.ListSummaries(ctx, model.StatsConfig{Deck: "alpha"})
	if err != nil {
		t.Fatalf("list alpha summaries: %v", err)
	}
	if len(forAlpha) != 3 {
		t.Fatalf("expected 3 alpha summaries, got %d", len(forAlpha))
	}

	lastTwo, err := st.ListSummaries(ctx, model.StatsConfig{Deck: "alpha", Last: 2})
	if err != nil {
		t.Fatalf("list last summaries: %v", err)
	}
	if len(lastTwo) != 2 || lastTwo[0].UID != "a2" || lastTwo[1].UID != "a3" {
		t.Fatalf("unexpected last-two summaries: %+v", lastTwo)
	}

	since := t0.Add(90 * time.Minute)
	recent, err := st.ListSummaries(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list recent summaries: %v", err)
	}
	if len(recent) != 2 || recent[0].UID != "a2" || recent[1].UID != "a3" {
		t.Fatalf("unexpected recent summaries: %+v", recent)
	}
}

func TestListReviewTimes(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alpha := newTestDeck(t, st, "alpha")
	beta := newTestDeck(t, st, "beta")
	a := addTestCard(t, st, alpha.ID, "uno", "one")
	b := addTestCard(t, st, beta.ID, "ichi", "one")

	// Out of order on purpose.
	applyTestReview(t, st, a, model.PhaseReviewing, 2, 0, model.GradeGood, t0.Add(2*time.Hour), t0.AddDate(0, 0, 4))
	applyTestReview(t, st, a, model.PhaseReviewing, 1, 0, model.GradeGood, t0, t0.AddDate(0, 0, 2))
	applyTestReview(t, st, b, model.PhaseReviewing, 1, 0, model.GradeGood, t0.Add(time.Hour), t0.AddDate(0, 0, 2))

	times, err := st.ListReviewTimes(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list review times: %v", err)
	}
	if len(times) != 3 {
		t.Fatalf("expected 3 times, got %d", len(times))
	}
	for i := 1; i < len(times); i++ {
		if times[i].Before(times[i-1]) {
			t.Fatalf("times not ascending: %v", times)
		}
	}

	times, err = st.ListReviewTimes(ctx, model.StatsConfig{Deck: "alpha"})
	if err != nil {
		t.Fatalf("list alpha times: %v", err)
	}
	if len(times) != 2 {
		t.Fatalf("expected 2 alpha times, got %d", len(times))
	}

	since := t0.Add(time.Hour)
	times, err = st.ListReviewTimes(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list recent times: %v", err)
	}
	if len(times) != 2 {
		t.Fatalf("expected 2 times since t0+1h, got %d", len(times))
	}
	if !times[0].Equal(t0.Add(time.Hour)) {
		t.Fatalf("since filter should include the boundary, got %v", times[0])
	}
}

func TestListCardsEmptyDeck(t *testing.T) {
	st := newTestStore(t)
	deck := newTestDeck(t, st, "empty")

	cards, err := st.ListCards(context.Background(), deck.ID)
	if err != nil {
		t.Fatalf("list cards: %v", err)
	}
	if len(cards) != 0 {
		t.Fatalf("expected no cards, got %d", len(cards))
	}

	states, err := st.ListReviewStates(context.Background(), deck.ID)
	if err != nil {
		t.Fatalf("list states: %v", err)
	}
	if len(states) != 0 {
		t.Fatalf("expected no states, got %d", len(states))
	}
}
