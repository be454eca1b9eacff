// Package stats contains statistics calculations and reporting.
package stats

import (
	"sort"

	"github.com/verte-zerg/tuica/internal/model"
)

// CardStanding pairs a card with its scheduling state for ranking.
type CardStanding struct {
	Card  model.Card
	State model.ReviewState
}

// HardestCards ranks reviewed cards by lapse count, then difficulty,
// and returns the top n. Cards that were never graded have no record
// to rank on and are skipped.
func HardestCards(cards []model.Card, states []model.ReviewState, n int) []CardStanding {
	if n <= 0 || len(cards) == 0 {
		return nil
	}
	byCard := make(map[model.CardID]model.ReviewState, len(states))
	for _, s := range states {
		byCard[s.CardID] = s
	}

	standings := make([]CardStanding, 0, len(cards))
	for _, card := range cards {
		state, ok := byCard[card.ID]
		if !ok || state.Difficulty == nil {
			continue
		}
		standings = append(standings, CardStanding{Card: card, State: state})
	}
	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.State.Lapses != b.State.Lapses {
			return a.State.Lapses > b.State.Lapses
		}
		if *a.State.Difficulty != *b.State.Difficulty {
			return *a.State.Difficulty > *b.State.Difficulty
		}
		return a.Card.ID < b.Card.ID
	})
	if n > len(standings) {
		n = len(standings)
	}
	return standings[:n]
}
