package stats

import (
	"testing"

	"github.com/verte-zerg/tuica/internal/model"
)

func TestHardestCards(t *testing.T) {
	f64 := func(v float64) *float64 { return &v }
	cards := []model.Card{
		{ID: 1, Front: "gato"},
		{ID: 2, Front: "perro"},
		{ID: 3, Front: "pájaro"},
		{ID: 4, Front: "pez"},
		{ID: 5, Front: "vaca"},
	}
	states := []model.ReviewState{
		{CardID: 1, Lapses: 2, Difficulty: f64(5.0)},
		{CardID: 2, Lapses: 2, Difficulty: f64(8.0)},
		{CardID: 3, Lapses: 0, Difficulty: f64(9.0)},
		// Card 4 was never reviewed and has no difficulty yet.
		{CardID: 4},
	}

	top := HardestCards(cards, states, 10)
	if len(top) != 3 {
		t.Fatalf("expected 3 standings, got %d", len(top))
	}
	ids := []model.CardID{top[0].Card.ID, top[1].Card.ID, top[2].Card.ID}
	if ids[0] != 2 || ids[1] != 1 || ids[2] != 3 {
		t.Fatalf("unexpected order: %v", ids)
	}
}

func TestHardestCardsTiesBreakByID(t *testing.T) {
	f64 := func(v float64) *float64 { return &v }
	cards := []model.Card{
		{ID: 7, Front: "b"},
		{ID: 3, Front: "a"},
	}
	states := []model.ReviewState{
		{CardID: 7, Lapses: 1, Difficulty: f64(6.0)},
		{CardID: 3, Lapses: 1, Difficulty: f64(6.0)},
	}

	top := HardestCards(cards, states, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 standings, got %d", len(top))
	}
	if top[0].Card.ID != 3 || top[1].Card.ID != 7 {
		t.Fatalf("unexpected order: %v, %v", top[0].Card.ID, top[1].Card.ID)
	}
}

func TestHardestCardsLimit(t *testing.T) {
	f64 := func(v float64) *float64 { return &v }
	cards := []model.Card{
		{ID: 1, Front: "a"},
		{ID: 2, Front: "b"},
		{ID: 3, Front: "c"},
	}
	states := []model.ReviewState{
		{CardID: 1, Lapses: 3, Difficulty: f64(7.0)},
		{CardID: 2, Lapses: 2, Difficulty: f64(7.0)},
		{CardID: 3, Lapses: 1, Difficulty: f64(7.0)},
	}

	top := HardestCards(cards, states, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 standings, got %d", len(top))
	}
	if top[0].Card.ID != 1 || top[1].Card.ID != 2 {
		t.Fatalf("unexpected order: %v, %v", top[0].Card.ID, top[1].Card.ID)
	}
}
