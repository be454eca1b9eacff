package statsui

import (
	"testing"
	"time"

	"github.com/verte-zerg/tuica/internal/model"
	"github.com/verte-zerg/tuica/internal/stats"
)

func TestApplyFilterParsesInputs(t *testing.T) {
	m := &Model{}
	m.initInputs()
	m.filterInputs[0].SetValue("  spanish ")
	m.filterInputs[1].SetValue("2025-04-01")
	m.filterInputs[2].SetValue("5")

	if err := m.applyFilter(); err != nil {
		t.Fatalf("applyFilter: %v", err)
	}
	if m.cfg.Deck != "spanish" {
		t.Fatalf("deck = %q, want spanish", m.cfg.Deck)
	}
	if m.cfg.Since == nil {
		t.Fatal("since not set")
	}
	want := time.Date(2025, 4, 1, 0, 0, 0, 0, time.Local)
	if !m.cfg.Since.Equal(want) {
		t.Fatalf("since = %v, want %v", m.cfg.Since, want)
	}
	if m.cfg.Last != 5 {
		t.Fatalf("last = %d, want 5", m.cfg.Last)
	}

	m.filterInputs[1].SetValue("yesterday")
	if err := m.applyFilter(); err == nil {
		t.Fatal("expected error for bad since date")
	}
	m.filterInputs[1].SetValue("")
	m.filterInputs[2].SetValue("-1")
	if err := m.applyFilter(); err == nil {
		t.Fatal("expected error for negative last")
	}
}

func TestBuildCardTableData(t *testing.T) {
	now := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)
	due := now.Add(5 * time.Hour)
	difficulty := 6.4
	rows := []cardRow{
		{
			deck: "spanish",
			card: model.Card{ID: 1, Front: "gato", Back: "cat"},
			state: model.ReviewState{
				CardID:     1,
				Phase:      model.PhaseReviewing,
				Difficulty: &difficulty,
				DueAt:      &due,
				Reps:       3,
				Lapses:     1,
			},
		},
		{
			deck: "spanish",
			card: model.Card{ID: 2, Front: "perro", Back: "dog"},
		},
	}

	cols, tableRows := buildCardTableData(rows, now)
	if len(cols) != 7 {
		t.Fatalf("got %d columns, want 7", len(cols))
	}
	if len(tableRows) != 2 {
		t.Fatalf("got %d rows, want 2", len(tableRows))
	}
	want := []string{"spanish", "gato", "reviewing", "5h", "3", "1", "6.4"}
	for i, cell := range want {
		if tableRows[0][i] != cell {
			t.Fatalf("row 0 col %d = %q, want %q", i, tableRows[0][i], cell)
		}
	}
	// Cards without a review record render as fresh.
	if tableRows[1][2] != "new" {
		t.Fatalf("phase = %q, want new", tableRows[1][2])
	}
	if tableRows[1][3] != "-" {
		t.Fatalf("due = %q, want -", tableRows[1][3])
	}
	if tableRows[1][6] != "-" {
		t.Fatalf("difficulty = %q, want -", tableRows[1][6])
	}
}

func TestRenderOverviewEmpty(t *testing.T) {
	out := renderOverview(stats.Report{}, 100)
	if out != "No decks found." {
		t.Fatalf("got %q", out)
	}
}
