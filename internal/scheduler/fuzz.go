package scheduler

import (
	"math"
	"math/rand"

	"github.com/verte-zerg/tuica/internal/model"
)

// Interval jitter spreads out cards that were introduced together so
// they do not stay pinned to the same review day forever. Ranges and
// factors follow the FSRS reference implementation.
type fuzzRange struct {
	start, end float64
	factor     float64
}

var fuzzRanges = []fuzzRange{
	{2.5, 7.0, 0.15},
	{7.0, 20.0, 0.10},
	{20.0, math.Inf(1), 0.05},
}

// fuzzDelta computes the jitter half-width for an interval:
// delta = 1.0 + sum(factor * max(min(days, end) - start, 0)).
func fuzzDelta(days float64) float64 {
	delta := 1.0
	for _, r := range fuzzRanges {
		delta += r.factor * math.Max(math.Min(days, r.end)-r.start, 0)
	}
	return delta
}

// fuzzInterval jitters an interval of the given length in days.
// Intervals under 2.5 days pass through unchanged. The generator is
// seeded from the card id and repetition count, so grading the same
// state twice lands on the same day.
func fuzzInterval(days, maxDays int, cardID model.CardID, reps int) int {
	if float64(days) < 2.5 {
		return days
	}

	ivl := float64(days)
	delta := fuzzDelta(ivl)

	lo := max(2, int(math.Round(ivl-delta)))
	hi := min(int(math.Round(ivl+delta)), maxDays)
	lo = min(lo, hi)

	rng := rand.New(rand.NewSource(fuzzSeed(cardID, reps)))
	fuzzed := lo + int(rng.Float64()*float64(hi-lo+1))
	return min(fuzzed, maxDays)
}

func fuzzSeed(cardID model.CardID, reps int) int64 {
	return int64(cardID)*1000003 + int64(reps)
}
