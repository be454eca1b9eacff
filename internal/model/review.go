package model

import "time"

// ReviewState is a card's scheduling snapshot. Stability, Difficulty,
// DueAt and LastReviewedAt are nil exactly while the card is new and
// unreviewed; after the first review all four are set and DueAt is
// strictly after LastReviewedAt.
//
// The scheduler and builder receive copies and return new values; a
// ReviewState is never mutated in place by the core.
type ReviewState struct {
	CardID         CardID
	DeckID         DeckID
	Phase          Phase
	Stability      *float64
	Difficulty     *float64
	DueAt          *time.Time
	LastReviewedAt *time.Time
	Reps           int
	Lapses         int
}

// NewReviewState returns the state a card carries from creation until
// its first review.
func NewReviewState(cardID CardID, deckID DeckID) ReviewState {
	return ReviewState{
		CardID: cardID,
		DeckID: deckID,
		Phase:  PhaseNew,
	}
}

// Clone returns a deep copy. Pointer fields are copied by value so the
// copy shares nothing with the original.
func (s ReviewState) Clone() ReviewState {
	out := s
	if s.Stability != nil {
		v := *s.Stability
		out.Stability = &v
	}
	if s.Difficulty != nil {
		v := *s.Difficulty
		out.Difficulty = &v
	}
	if s.DueAt != nil {
		v := *s.DueAt
		out.DueAt = &v
	}
	if s.LastReviewedAt != nil {
		v := *s.LastReviewedAt
		out.LastReviewedAt = &v
	}
	return out
}

// Due reports whether the card is due at the given instant. Unreviewed
// cards carry no due date and are never "due"; they enter sessions
// through the new-card quota instead.
func (s ReviewState) Due(now time.Time) bool {
	return s.DueAt != nil && !s.DueAt.After(now)
}

// ReviewLog records one grading event and the state it produced.
// Logs are append-only: once written they are never mutated or deleted.
type ReviewLog struct {
	ID         int64 // storage rowid, zero until persisted
	CardID     CardID
	Grade      Grade
	ReviewedAt time.Time
	Result     ReviewState // snapshot of the state this review produced
}
