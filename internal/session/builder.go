package session

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/verte-zerg/tuica/internal/model"
)

// Quota is today's consumption against the deck's daily limits. The
// caller derives it from the review log before building.
type Quota struct {
	IntroducedToday int // cards that had their first review today
	ReviewsToday    int // reviewing or relearning cards graded today
}

// Plan is an ordered card selection for one practice run.
type Plan struct {
	Mode  model.SessionMode
	Cards []model.CardID
}

// Builder selects and orders a bounded card set for a deck. It reads
// no clock and no storage; callers pass review states and now
// explicitly, so builds are replayable.
type Builder struct {
	settings    model.DeckSettings
	shuffleSeed *int64
}

// NewBuilder validates the deck settings and returns a Builder.
func NewBuilder(settings model.DeckSettings) (*Builder, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Builder{settings: settings}, nil
}

// ShuffleNew randomizes the order in which new cards are introduced.
// The seed is fixed so the same inputs always build the same plan.
func (b *Builder) ShuffleNew(seed int64) {
	b.shuffleSeed = &seed
}

// Build selects and orders cards for the mode at the given instant. An
// empty plan is a valid outcome, never an error. Reset is not a
// selection; callers apply it through the store and get ErrResetMode
// here.
func (b *Builder) Build(mode model.SessionMode, states []model.ReviewState, quota Quota, now time.Time) (Plan, error) {
	switch mode {
	case model.ModeDueAndNew:
		return Plan{Mode: mode, Cards: b.dueAndNew(states, quota, now)}, nil
	case model.ModeFullDeck:
		return Plan{Mode: mode, Cards: b.fullDeck(states)}, nil
	case model.ModeMistakes:
		return Plan{Mode: mode, Cards: mistakes(states)}, nil
	case model.ModeReset:
		return Plan{}, ErrResetMode
	default:
		return Plan{}, fmt.Errorf("%w: %v", ErrUnknownMode, mode)
	}
}

// dueAndNew is the default micro-session: learning cards first (they
// are mid-flight and time-sensitive), then due cards oldest first under
// the daily review quota, then new cards under the daily intro quota,
// all truncated to the micro-session size.
func (b *Builder) dueAndNew(states []model.ReviewState, quota Quota, now time.Time) []model.CardID {
	var learning, due, fresh []model.ReviewState
	for _, s := range states {
		switch {
		case isNew(s):
			fresh = append(fresh, s)
		case s.Phase == model.PhaseLearning && s.Due(now):
			learning = append(learning, s)
		case (s.Phase == model.PhaseReviewing || s.Phase == model.PhaseRelearning) && s.Due(now):
			due = append(due, s)
		}
	}
	sortByDue(learning)
	sortByDue(due)
	b.orderNew(fresh)

	due = capLen(due, remaining(b.settings.ReviewsPerDay, quota.ReviewsToday))

	size := b.settings.MicroSession
	slots := size - len(learning) - len(due)
	intro := remaining(b.settings.NewPerDay, quota.IntroducedToday)
	if slots < intro {
		intro = slots
	}
	fresh = capLen(fresh, intro)

	ids := collectIDs(learning, due, fresh)
	if len(ids) > size {
		ids = ids[:size]
	}
	return ids
}

// fullDeck is a complete pass: every card in the deck in the same
// bucket order as the default mode, with no truncation and no daily
// quotas. Cards not yet due are included.
func (b *Builder) fullDeck(states []model.ReviewState) []model.CardID {
	var learning, review, fresh []model.ReviewState
	for _, s := range states {
		switch {
		case isNew(s):
			fresh = append(fresh, s)
		case s.Phase == model.PhaseLearning:
			learning = append(learning, s)
		default:
			review = append(review, s)
		}
	}
	sortByDue(learning)
	sortByDue(review)
	b.orderNew(fresh)
	return collectIDs(learning, review, fresh)
}

// mistakes selects exactly the relearning cards, oldest due first,
// regardless of whether they are due yet.
func mistakes(states []model.ReviewState) []model.CardID {
	var lapsed []model.ReviewState
	for _, s := range states {
		if s.Phase == model.PhaseRelearning {
			lapsed = append(lapsed, s)
		}
	}
	sortByDue(lapsed)
	return collectIDs(lapsed)
}

// isNew reports whether the card should enter through the new-card
// quota. Cards with no recorded phase count as new rather than being
// dropped.
func isNew(s model.ReviewState) bool {
	return s.Phase == model.PhaseNew || !s.Phase.IsValid()
}

// sortByDue orders by due time ascending with the card id as a
// deterministic tie-break. States without a due time sort first.
func sortByDue(states []model.ReviewState) {
	sort.Slice(states, func(i, j int) bool {
		a, b := states[i], states[j]
		switch {
		case a.DueAt == nil && b.DueAt == nil:
			return a.CardID < b.CardID
		case a.DueAt == nil:
			return true
		case b.DueAt == nil:
			return false
		case a.DueAt.Equal(*b.DueAt):
			return a.CardID < b.CardID
		default:
			return a.DueAt.Before(*b.DueAt)
		}
	})
}

// orderNew puts new cards in creation order, then shuffles them when a
// seed was set.
func (b *Builder) orderNew(states []model.ReviewState) {
	sort.Slice(states, func(i, j int) bool { return states[i].CardID < states[j].CardID })
	if b.shuffleSeed != nil {
		rng := rand.New(rand.NewSource(*b.shuffleSeed))
		rng.Shuffle(len(states), func(i, j int) { states[i], states[j] = states[j], states[i] })
	}
}

func remaining(limit, used int) int {
	r := limit - used
	if r < 0 {
		return 0
	}
	return r
}

func capLen(states []model.ReviewState, n int) []model.ReviewState {
	if n < 0 {
		n = 0
	}
	if len(states) > n {
		return states[:n]
	}
	return states
}

func collectIDs(groups ...[]model.ReviewState) []model.CardID {
	var ids []model.CardID
	for _, g := range groups {
		for _, s := range g {
			ids = append(ids, s.CardID)
		}
	}
	return ids
}
