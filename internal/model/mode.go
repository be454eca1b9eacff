package model

import "fmt"

// SessionMode selects how a practice session is assembled.
type SessionMode int

const (
	// ModeDueAndNew is the default: due learning cards, then due reviews,
	// then new cards under the daily quotas, capped at the micro-session
	// size.
	ModeDueAndNew SessionMode = iota + 1
	// ModeFullDeck is a complete pass over the deck, ignoring quotas and
	// the micro-session cap.
	ModeFullDeck
	// ModeMistakes practices only cards currently in relearning.
	ModeMistakes
	// ModeReset is not a selection: it wipes a deck's scheduling state
	// back to new. Handled by the store, rejected by the builder.
	ModeReset
)

var (
	modeNames = [...]string{
		ModeDueAndNew: "due",
		ModeFullDeck:  "full",
		ModeMistakes:  "mistakes",
		ModeReset:     "reset",
	}
	modeByName = map[string]SessionMode{
		"due":      ModeDueAndNew,
		"full":     ModeFullDeck,
		"mistakes": ModeMistakes,
		"reset":    ModeReset,
	}
)

// String returns the mode name. Invalid values render as "mode(n)".
func (m SessionMode) String() string {
	if m.IsValid() {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// IsValid reports whether m is one of the four modes.
func (m SessionMode) IsValid() bool {
	return m >= ModeDueAndNew && m <= ModeReset
}

// ParseMode converts a mode name ("due", "full", "mistakes", "reset")
// to a SessionMode.
func ParseMode(s string) (SessionMode, error) {
	m, ok := modeByName[s]
	if !ok {
		return 0, fmt.Errorf("model: unknown session mode %q", s)
	}
	return m, nil
}
