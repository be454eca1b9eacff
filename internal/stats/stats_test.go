package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuica/internal/model"
)

var statsNow = time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)

func TestSessionAccuracy(t *testing.T) {
	if got := SessionAccuracy(model.SessionSummary{Again: 1, Good: 3}); got != 0.75 {
		t.Fatalf("expected 0.75, got %v", got)
	}
	if got := SessionAccuracy(model.SessionSummary{Easy: 2}); got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
	if got := SessionAccuracy(model.SessionSummary{}); got != 0 {
		t.Fatalf("expected 0 for empty session, got %v", got)
	}
}

func TestCountByDay(t *testing.T) {
	times := []time.Time{
		statsNow,
		statsNow.Add(-23 * time.Hour),
		statsNow.Add(-25 * time.Hour),
		statsNow.Add(-73 * time.Hour),
		statsNow.Add(time.Hour),
	}
	got := CountByDay(times, 3, statsNow)
	want := []float64{0, 1, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %d buckets, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bucket %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if out := CountByDay(times, 0, statsNow); out != nil {
		t.Fatalf("expected nil for zero days, got %v", out)
	}
}

func TestDueForecast(t *testing.T) {
	due := func(d time.Duration) *time.Time {
		v := statsNow.Add(d)
		return &v
	}
	states := []model.ReviewState{
		{CardID: 1, DueAt: due(-time.Hour)},
		{CardID: 2, DueAt: due(time.Hour)},
		{CardID: 3, DueAt: due(30 * time.Hour)},
		{CardID: 4, DueAt: due(71 * time.Hour)},
		{CardID: 5, DueAt: due(73 * time.Hour)},
		{CardID: 6},
	}
	got := DueForecast(states, 3, statsNow)
	want := []float64{2, 1, 1}
	if len(got) != len(want) {
		t.Fatalf("expected %d buckets, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bucket %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 3, 5}, 2)
	want := []float64{1, 2, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	passthrough := MovingAverage([]float64{1, 2}, 1)
	if passthrough[0] != 1 || passthrough[1] != 2 {
		t.Fatalf("expected passthrough for window 1, got %v", passthrough)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
	if got := Sparkline([]float64{2, 2}); got != "++" {
		t.Fatalf("expected flat sparkline, got %q", got)
	}
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("expected ramp sparkline, got %q", got)
	}
}

func TestFormatDue(t *testing.T) {
	due := func(d time.Duration) *time.Time {
		v := statsNow.Add(d)
		return &v
	}
	cases := []struct {
		due  *time.Time
		want string
	}{
		{nil, "-"},
		{due(0), "now"},
		{due(-5 * time.Minute), "now"},
		{due(30 * time.Minute), "30m"},
		{due(90 * time.Minute), "1h"},
		{due(5 * time.Hour), "5h"},
		{due(36 * time.Hour), "1d"},
		{due(72 * time.Hour), "3d"},
	}
	for _, tc := range cases {
		if got := FormatDue(tc.due, statsNow); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(600000); got != "10m00s" {
		t.Fatalf("expected 10m00s, got %q", got)
	}
	if got := formatDuration(125000); got != "2m05s" {
		t.Fatalf("expected 2m05s, got %q", got)
	}
	if got := formatDuration(59999); got != "0m59s" {
		t.Fatalf("expected 0m59s, got %q", got)
	}
}

func TestRenderDeckTable(t *testing.T) {
	var buf bytes.Buffer
	err := RenderDeckTable(&buf, []DeckRow{
		{
			Deck:   model.Deck{Name: "spanish"},
			Counts: model.DeckCounts{New: 3, Learning: 1, Reviewing: 5, Relearning: 2, DueNow: 4},
		},
	})
	if err != nil {
		t.Fatalf("render deck table: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Deck", "Due now", "spanish", "11"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := RenderDeckTable(&buf, nil); err != nil {
		t.Fatalf("render empty deck table: %v", err)
	}
	if buf.String() != "No decks found.\n" {
		t.Fatalf("unexpected empty output: %q", buf.String())
	}
}

func TestRenderCardTable(t *testing.T) {
	longFront := strings.Repeat("x", 40)
	cards := []model.Card{
		{ID: 1, Front: "gato", Back: "cat"},
		{ID: 2, Front: longFront, Back: "long"},
	}
	diff := 6.4
	due := statsNow.Add(5 * time.Hour)
	states := []model.ReviewState{
		{CardID: 2, Phase: model.PhaseReviewing, Reps: 4, Lapses: 1, Difficulty: &diff, DueAt: &due},
	}

	var buf bytes.Buffer
	if err := RenderCardTable(&buf, cards, states, statsNow); err != nil {
		t.Fatalf("render card table: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Front", "gato", "new", "reviewing", "5h", "6.4", "…"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, longFront) {
		t.Fatalf("expected long front to be truncated:\n%s", out)
	}

	buf.Reset()
	if err := RenderCardTable(&buf, nil, nil, statsNow); err != nil {
		t.Fatalf("render empty card table: %v", err)
	}
	if buf.String() != "No cards found.\n" {
		t.Fatalf("unexpected empty output: %q", buf.String())
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	err := RenderSummary(&buf, []model.SessionSummary{
		{
			Mode:       model.ModeDueAndNew,
			FinishedAt: statsNow,
			DurationMs: 600000,
			Again:      1,
			Good:       3,
		},
	})
	if err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Finished", "2025-04-02 08:00", "due", "75%", "10m00s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render empty summary: %v", err)
	}
	if buf.String() != "No sessions found.\n" {
		t.Fatalf("unexpected empty output: %q", buf.String())
	}
}
