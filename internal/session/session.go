// Package session selects the cards for a practice run and walks the
// learner through grading them.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuica/internal/model"
	"github.com/verte-zerg/tuica/internal/scheduler"
)

// Status is the lifecycle position of a Session. Transitions are
// one-way: NotStarted to InProgress to Completed.
type Status int

const (
	NotStarted Status = iota + 1
	InProgress
	Completed
)

var statusNames = [...]string{"not started", "in progress", "completed"}

func (s Status) String() string {
	if s < NotStarted || s > Completed {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s-1]
}

// Session walks a learner through one practice run. It is a transient,
// single-owner object: exactly one exists per run and its transitions
// are sequential. Grading delegates to the scheduler and accumulates
// logs and grade counts for the summary; persistence stays with the
// caller.
type Session struct {
	id        string
	deckID    model.DeckID
	mode      model.SessionMode
	cards     []model.CardID
	cursor    int
	status    Status
	revealed  bool
	sched     *scheduler.Scheduler
	logs      []model.ReviewLog
	counts    map[model.Grade]int
	startedAt time.Time
	finished  bool
}

// New wraps a built plan in a session over the deck.
func New(deckID model.DeckID, plan Plan, sched *scheduler.Scheduler) *Session {
	return &Session{
		id:     uuid.NewString(),
		deckID: deckID,
		mode:   plan.Mode,
		cards:  plan.Cards,
		status: NotStarted,
		sched:  sched,
		counts: make(map[model.Grade]int, 4),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// DeckID returns the deck the session runs over.
func (s *Session) DeckID() model.DeckID { return s.deckID }

// Mode returns the mode the plan was built with.
func (s *Session) Mode() model.SessionMode { return s.mode }

// Status returns the lifecycle position.
func (s *Session) Status() Status { return s.status }

// Len returns the number of cards in the plan.
func (s *Session) Len() int { return len(s.cards) }

// Remaining returns how many cards are left to grade.
func (s *Session) Remaining() int { return len(s.cards) - s.cursor }

// Start begins the run at the given instant. An empty plan completes
// immediately; there is nothing to show.
func (s *Session) Start(now time.Time) error {
	if s.status != NotStarted {
		return ErrAlreadyStarted
	}
	s.startedAt = now
	if len(s.cards) == 0 {
		s.status = Completed
		return nil
	}
	s.status = InProgress
	return nil
}

// Current returns the card waiting to be graded.
func (s *Session) Current() (model.CardID, error) {
	if err := s.inProgress(); err != nil {
		return 0, err
	}
	return s.cards[s.cursor], nil
}

// Reveal marks the current card's answer as shown. It carries no
// scheduling meaning and grading does not require it.
func (s *Session) Reveal() error {
	if err := s.inProgress(); err != nil {
		return err
	}
	s.revealed = true
	return nil
}

// Revealed reports whether the current card's answer is shown.
func (s *Session) Revealed() bool { return s.revealed }

// Grade grades the current card and advances the cursor. The state
// must belong to the current card; grading any other card, grading
// past the end, or grading before Start is a usage error. The last
// grade completes the session.
func (s *Session) Grade(state model.ReviewState, grade model.Grade, now time.Time) (model.ReviewState, model.ReviewLog, error) {
	if err := s.inProgress(); err != nil {
		return model.ReviewState{}, model.ReviewLog{}, err
	}
	if state.CardID != s.cards[s.cursor] {
		return model.ReviewState{}, model.ReviewLog{},
			fmt.Errorf("%w: got %v, current %v", ErrCardMismatch, state.CardID, s.cards[s.cursor])
	}

	next, log := s.sched.Grade(state, grade, now)
	s.logs = append(s.logs, log)
	s.counts[grade]++
	s.cursor++
	s.revealed = false
	if s.cursor == len(s.cards) {
		s.status = Completed
	}
	return next, log, nil
}

// Logs returns the review logs accumulated so far, in grading order.
func (s *Session) Logs() []model.ReviewLog { return s.logs }

// Finish closes a completed session and produces its summary. It can
// be called once, and the finish time must not precede the start time.
func (s *Session) Finish(now time.Time) (model.SessionSummary, error) {
	if s.status != Completed {
		return model.SessionSummary{}, ErrNotCompleted
	}
	if s.finished {
		return model.SessionSummary{}, ErrAlreadyFinished
	}
	if now.Before(s.startedAt) {
		return model.SessionSummary{}, fmt.Errorf("%w: started %v, finished %v",
			ErrInvalidTimeRange, s.startedAt, now)
	}
	s.finished = true
	return model.SessionSummary{
		UID:        s.id,
		DeckID:     s.deckID,
		Mode:       s.mode,
		StartedAt:  s.startedAt,
		FinishedAt: now,
		DurationMs: now.Sub(s.startedAt).Milliseconds(),
		Again:      s.counts[model.GradeAgain],
		Hard:       s.counts[model.GradeHard],
		Good:       s.counts[model.GradeGood],
		Easy:       s.counts[model.GradeEasy],
	}, nil
}

func (s *Session) inProgress() error {
	switch s.status {
	case NotStarted:
		return ErrNotStarted
	case Completed:
		return ErrCompleted
	}
	return nil
}
