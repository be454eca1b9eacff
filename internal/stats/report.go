// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"
	"time"

	"github.com/verte-zerg/tuica/internal/model"
	"github.com/verte-zerg/tuica/internal/store"
)

// History and forecast horizons for the default report.
const (
	HistoryDays  = 30
	ForecastDays = 14
	HardestTop   = 10
)

// DeckOverview bundles one deck's scheduling picture.
type DeckOverview struct {
	Deck     model.Deck
	Counts   model.DeckCounts
	Forecast []float64 // cards coming due per day, today first
	Hardest  []CardStanding
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Decks         []DeckOverview
	Sessions      []model.SessionSummary
	ReviewsPerDay []float64 // grades per day, oldest day first
	Accuracy      []float64 // per-session recall share, oldest first
}

// BuildReport loads and prepares data for stats rendering. The deck,
// since and last filters of the config narrow every part of it.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig, now time.Time) (Report, error) {
	decks, err := scopedDecks(ctx, st, cfg)
	if err != nil {
		return Report{}, err
	}

	overviews := make([]DeckOverview, 0, len(decks))
	for _, deck := range decks {
		counts, err := st.DeckCounts(ctx, deck.ID, now)
		if err != nil {
			return Report{}, err
		}
		states, err := st.ListReviewStates(ctx, deck.ID)
		if err != nil {
			return Report{}, err
		}
		cards, err := st.ListCards(ctx, deck.ID)
		if err != nil {
			return Report{}, err
		}
		overviews = append(overviews, DeckOverview{
			Deck:     deck,
			Counts:   counts,
			Forecast: DueForecast(states, ForecastDays, now),
			Hardest:  HardestCards(cards, states, HardestTop),
		})
	}

	sessions, err := st.ListSummaries(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	accuracy := make([]float64, len(sessions))
	for i, s := range sessions {
		accuracy[i] = SessionAccuracy(s) * 100
	}

	times, err := st.ListReviewTimes(ctx, cfg)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Decks:         overviews,
		Sessions:      sessions,
		ReviewsPerDay: CountByDay(times, HistoryDays, now),
		Accuracy:      accuracy,
	}, nil
}

func scopedDecks(ctx context.Context, st *store.Store, cfg model.StatsConfig) ([]model.Deck, error) {
	if cfg.Deck != "" {
		deck, err := st.GetDeckByName(ctx, cfg.Deck)
		if err != nil {
			return nil, err
		}
		return []model.Deck{deck}, nil
	}
	return st.ListDecks(ctx)
}
