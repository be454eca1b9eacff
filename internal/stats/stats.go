// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuica/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionAccuracy is the share of grades in a session that recalled
// the card, counting every grade but Again as a recall.
func SessionAccuracy(s model.SessionSummary) float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return float64(total-s.Again) / float64(total)
}

// CountByDay buckets instants into consecutive 24-hour windows ending
// at now, oldest window first. Instants older than the range fall off;
// instants after now land in the newest bucket.
func CountByDay(times []time.Time, days int, now time.Time) []float64 {
	if days <= 0 {
		return nil
	}
	out := make([]float64, days)
	for _, t := range times {
		age := now.Sub(t)
		if age < 0 {
			age = 0
		}
		idx := int(age / (24 * time.Hour))
		if idx >= days {
			continue
		}
		out[days-1-idx]++
	}
	return out
}

// DueForecast buckets cards by how many days until they come due:
// bucket 0 holds everything due within 24 hours, overdue included.
// Cards without a due date are not scheduled and are left out.
func DueForecast(states []model.ReviewState, days int, now time.Time) []float64 {
	if days <= 0 {
		return nil
	}
	out := make([]float64, days)
	for _, s := range states {
		if s.DueAt == nil {
			continue
		}
		until := s.DueAt.Sub(now)
		if until < 0 {
			until = 0
		}
		idx := int(until / (24 * time.Hour))
		if idx >= days {
			continue
		}
		out[idx]++
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// FormatDue renders a due instant relative to now, compactly.
func FormatDue(due *time.Time, now time.Time) string {
	if due == nil {
		return "-"
	}
	d := due.Sub(now)
	switch {
	case d <= 0:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// DeckRow pairs a deck with its card counts for rendering.
type DeckRow struct {
	Deck   model.Deck
	Counts model.DeckCounts
}

// RenderDeckTable prints one line per deck with its phase counts.
func RenderDeckTable(w io.Writer, rows []DeckRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No decks found.")
		return err
	}
	headers := []string{"Deck", "Cards", "New", "Learning", "Reviewing", "Relearning", "Due now"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.Deck.Name,
			fmt.Sprintf("%d", r.Counts.Total()),
			fmt.Sprintf("%d", r.Counts.New),
			fmt.Sprintf("%d", r.Counts.Learning),
			fmt.Sprintf("%d", r.Counts.Reviewing),
			fmt.Sprintf("%d", r.Counts.Relearning),
			fmt.Sprintf("%d", r.Counts.DueNow),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCardTable prints a deck's cards with their scheduling state.
func RenderCardTable(w io.Writer, cards []model.Card, states []model.ReviewState, now time.Time) error {
	if len(cards) == 0 {
		_, err := fmt.Fprintln(w, "No cards found.")
		return err
	}
	byCard := make(map[model.CardID]model.ReviewState, len(states))
	for _, s := range states {
		byCard[s.CardID] = s
	}

	headers := []string{"ID", "Front", "Phase", "Due", "Reps", "Lapses", "Difficulty"}
	tableRows := make([][]string, 0, len(cards))
	for _, card := range cards {
		state := byCard[card.ID]
		phase := state.Phase
		if !phase.IsValid() {
			phase = model.PhaseNew
		}
		difficulty := "-"
		if state.Difficulty != nil {
			difficulty = fmt.Sprintf("%.1f", *state.Difficulty)
		}
		tableRows = append(tableRows, []string{
			card.ID.String(),
			runewidth.Truncate(card.Front, 30, "…"),
			phase.String(),
			FormatDue(state.DueAt, now),
			fmt.Sprintf("%d", state.Reps),
			fmt.Sprintf("%d", state.Lapses),
			difficulty,
		})
	}
	rightAlign := map[int]bool{0: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSummary prints a history table for completed sessions.
func RenderSummary(w io.Writer, sums []model.SessionSummary) error {
	if len(sums) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	headers := []string{"Finished", "Mode", "Cards", "Again", "Hard", "Good", "Easy", "Accuracy", "Time"}
	tableRows := make([][]string, 0, len(sums))
	for _, s := range sums {
		tableRows = append(tableRows, []string{
			s.FinishedAt.Format("2006-01-02 15:04"),
			s.Mode.String(),
			fmt.Sprintf("%d", s.Total()),
			fmt.Sprintf("%d", s.Again),
			fmt.Sprintf("%d", s.Hard),
			fmt.Sprintf("%d", s.Good),
			fmt.Sprintf("%d", s.Easy),
			fmt.Sprintf("%.0f%%", SessionAccuracy(s)*100),
			formatDuration(s.DurationMs),
		})
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true, 7: true, 8: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%02ds", minutes, seconds)
}
