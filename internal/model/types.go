// Package model defines the flashcard domain data model.
package model

import (
	"errors"
	"fmt"
	"time"
)

// CardID identifies a card. IDs are never reused across cards and
// increase in creation order.
type CardID int64

func (id CardID) String() string {
	return fmt.Sprintf("%d", int64(id))
}

// DeckID identifies a deck.
type DeckID int64

func (id DeckID) String() string {
	return fmt.Sprintf("%d", int64(id))
}

// Card holds a card's content. Scheduling state lives in ReviewState;
// the scheduler and builder never read card content.
type Card struct {
	ID        CardID
	DeckID    DeckID
	Front     string
	Back      string
	CreatedAt time.Time
}

// Deck is a named collection of cards with its own practice settings.
type Deck struct {
	ID        DeckID
	Name      string
	CreatedAt time.Time
	Settings  DeckSettings
}

// ErrInvalidSettings reports deck settings that violate their invariants.
var ErrInvalidSettings = errors.New("model: invalid deck settings")

// DeckSettings bounds daily work for a deck.
type DeckSettings struct {
	NewPerDay       int     // new cards introduced per day
	ReviewsPerDay   int     // due reviews per day
	MicroSession    int     // card cap for a default practice session
	Retention       float64 // desired recall probability at review time
	MaxIntervalDays int     // upper bound for scheduled intervals
}

// DefaultDeckSettings returns settings tuned for short, low-pressure
// sessions: few new cards, a small review batch, and a modest retention
// target so intervals stay forgiving.
func DefaultDeckSettings() DeckSettings {
	return DeckSettings{
		NewPerDay:       5,
		ReviewsPerDay:   30,
		MicroSession:    5,
		Retention:       0.85,
		MaxIntervalDays: 365,
	}
}

// Validate reports whether the settings satisfy their invariants.
// Violations are returned, never clamped.
func (s DeckSettings) Validate() error {
	if s.NewPerDay <= 0 {
		return fmt.Errorf("%w: new cards per day must be > 0, got %d", ErrInvalidSettings, s.NewPerDay)
	}
	if s.ReviewsPerDay <= 0 {
		return fmt.Errorf("%w: reviews per day must be > 0, got %d", ErrInvalidSettings, s.ReviewsPerDay)
	}
	if s.MicroSession <= 0 {
		return fmt.Errorf("%w: micro-session size must be > 0, got %d", ErrInvalidSettings, s.MicroSession)
	}
	if s.Retention <= 0 || s.Retention >= 1 {
		return fmt.Errorf("%w: retention must be inside (0, 1), got %g", ErrInvalidSettings, s.Retention)
	}
	if s.MaxIntervalDays < 1 {
		return fmt.Errorf("%w: max interval must be >= 1 day, got %d", ErrInvalidSettings, s.MaxIntervalDays)
	}
	return nil
}

// DeckCounts groups a deck's cards by phase at a point in time.
type DeckCounts struct {
	New        int
	Learning   int
	Reviewing  int
	Relearning int
	DueNow     int // learning/reviewing/relearning cards with due_at <= now
}

// Total returns the number of cards counted.
func (c DeckCounts) Total() int {
	return c.New + c.Learning + c.Reviewing + c.Relearning
}

// SessionSummary aggregates a completed practice session.
type SessionSummary struct {
	ID         int64  // storage rowid, zero until persisted
	UID        string // session id
	DeckID     DeckID
	Mode       SessionMode
	StartedAt  time.Time
	FinishedAt time.Time
	DurationMs int64
	Again      int
	Hard       int
	Good       int
	Easy       int
}

// Total returns the number of cards graded in the session.
func (s SessionSummary) Total() int {
	return s.Again + s.Hard + s.Good + s.Easy
}

// StatsConfig defines filters for stats output.
type StatsConfig struct {
	Deck  string
	Since *time.Time
	Last  int // limit to last N sessions, 0 = all
}
