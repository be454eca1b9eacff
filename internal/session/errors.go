package session

import "errors"

// Build errors.
var (
	ErrResetMode   = errors.New("session: reset wipes scheduling state, it does not build a session")
	ErrUnknownMode = errors.New("session: unknown session mode")
)

// Lifecycle misuse. These signal orchestration bugs, never scheduling
// outcomes; an empty selection is a valid session, not an error.
var (
	ErrNotStarted       = errors.New("session: not started")
	ErrAlreadyStarted   = errors.New("session: already started")
	ErrCompleted        = errors.New("session: already completed")
	ErrNotCompleted     = errors.New("session: not completed")
	ErrAlreadyFinished  = errors.New("session: already finished")
	ErrCardMismatch     = errors.New("session: grade targets a card other than the current one")
	ErrInvalidTimeRange = errors.New("session: finish time precedes start time")
)
