// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuica/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

var (
	ErrNotFound   = errors.New("store: not found")
	ErrDeckExists = errors.New("store: deck already exists")
)

// Store wraps SQLite access for decks, cards and review history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS decks (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			new_per_day INTEGER NOT NULL,
			reviews_per_day INTEGER NOT NULL,
			micro_session INTEGER NOT NULL,
			retention REAL NOT NULL,
			max_interval_days INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS cards (
			id INTEGER PRIMARY KEY,
			deck_id INTEGER NOT NULL REFERENCES decks(id),
			front TEXT NOT NULL,
			back TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS review_states (
			card_id INTEGER PRIMARY KEY REFERENCES cards(id),
			deck_id INTEGER NOT NULL,
			phase TEXT NOT NULL,
			stability REAL,
			difficulty REAL,
			due_at TEXT,
			last_reviewed_at TEXT,
			reps INTEGER NOT NULL,
			lapses INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS review_logs (
			id INTEGER PRIMARY KEY,
			card_id INTEGER NOT NULL REFERENCES cards(id),
			deck_id INTEGER NOT NULL,
			grade TEXT NOT NULL,
			reviewed_at TEXT NOT NULL,
			phase TEXT NOT NULL,
			stability REAL,
			difficulty REAL,
			due_at TEXT,
			reps INTEGER NOT NULL,
			lapses INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_summaries (
			id INTEGER PRIMARY KEY,
			uid TEXT NOT NULL,
			deck_id INTEGER NOT NULL REFERENCES decks(id),
			mode TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			again INTEGER NOT NULL,
			hard INTEGER NOT NULL,
			good INTEGER NOT NULL,
			easy INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_cards_deck ON cards(deck_id);`,
		`CREATE INDEX IF NOT EXISTS idx_review_states_deck_due ON review_states(deck_id, due_at);`,
		`CREATE INDEX IF NOT EXISTS idx_review_logs_deck_reviewed ON review_logs(deck_id, reviewed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_review_logs_card ON review_logs(card_id);`,
		`CREATE INDEX IF NOT EXISTS idx_session_summaries_deck_finished ON session_summaries(deck_id, finished_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateDeck inserts a deck with its settings.
func (s *Store) CreateDeck(ctx context.Context, name string, settings model.DeckSettings) (model.Deck, error) {
	if _, err := s.GetDeckByName(ctx, name); err == nil {
		return model.Deck{}, fmt.Errorf("%w: %s", ErrDeckExists, name)
	} else if !errors.Is(err, ErrNotFound) {
		return model.Deck{}, err
	}

	createdAt := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO decks (name, created_at, new_per_day, reviews_per_day, micro_session, retention, max_interval_days)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name,
		createdAt.Format(time.RFC3339Nano),
		settings.NewPerDay,
		settings.ReviewsPerDay,
		settings.MicroSession,
		settings.Retention,
		settings.MaxIntervalDays,
	)
	if err != nil {
		return model.Deck{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Deck{}, err
	}
	return model.Deck{
		ID:        model.DeckID(id),
		Name:      name,
		CreatedAt: createdAt,
		Settings:  settings,
	}, nil
}

// GetDeckByName looks a deck up by its unique name.
func (s *Store) GetDeckByName(ctx context.Context, name string) (model.Deck, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, new_per_day, reviews_per_day, micro_session, retention, max_interval_days
		 FROM decks WHERE name = ?`, name)
	deck, err := scanDeck(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Deck{}, fmt.Errorf("%w: deck %q", ErrNotFound, name)
	}
	return deck, err
}

// ListDecks returns all decks in creation order.
func (s *Store) ListDecks(ctx context.Context) ([]model.Deck, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, new_per_day, reviews_per_day, micro_session, retention, max_interval_days
		 FROM decks ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var decks []model.Deck
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, err
		}
		decks = append(decks, deck)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return decks, nil
}

// UpdateDeckSettings replaces a deck's settings.
func (s *Store) UpdateDeckSettings(ctx context.Context, deckID model.DeckID, settings model.DeckSettings) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE decks SET new_per_day = ?, reviews_per_day = ?, micro_session = ?, retention = ?, max_interval_days = ?
		 WHERE id = ?`,
		settings.NewPerDay,
		settings.ReviewsPerDay,
		settings.MicroSession,
		settings.Retention,
		settings.MaxIntervalDays,
		int64(deckID),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: deck %v", ErrNotFound, deckID)
	}
	return nil
}

// AddCard inserts a card together with its new review state in one
// transaction, so a card is never observable without a state.
func (s *Store) AddCard(ctx context.Context, deckID model.DeckID, front, back string) (model.Card, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Card{}, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	card, err := insertCard(ctx, tx, deckID, front, back)
	if err != nil {
		return model.Card{}, err
	}
	if err = tx.Commit(); err != nil {
		return model.Card{}, err
	}
	return card, nil
}

// AddCards inserts a batch of cards with new review states in one
// transaction. Only Front and Back are read from the entries.
func (s *Store) AddCards(ctx context.Context, deckID model.DeckID, entries []model.Card) ([]model.Card, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	cards := make([]model.Card, 0, len(entries))
	for _, e := range entries {
		var card model.Card
		card, err = insertCard(ctx, tx, deckID, e.Front, e.Back)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return cards, nil
}

func insertCard(ctx context.Context, tx *sql.Tx, deckID model.DeckID, front, back string) (model.Card, error) {
	createdAt := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO cards (deck_id, front, back, created_at) VALUES (?, ?, ?, ?)`,
		int64(deckID), front, back, createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return model.Card{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Card{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO review_states (card_id, deck_id, phase, reps, lapses) VALUES (?, ?, ?, 0, 0)`,
		id, int64(deckID), model.PhaseNew.String()); err != nil {
		return model.Card{}, err
	}
	return model.Card{
		ID:        model.CardID(id),
		DeckID:    deckID,
		Front:     front,
		Back:      back,
		CreatedAt: createdAt,
	}, nil
}

// ListCards returns a deck's cards in creation order.
func (s *Store) ListCards(ctx context.Context, deckID model.DeckID) ([]model.Card, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, deck_id, front, back, created_at FROM cards WHERE deck_id = ? ORDER BY id ASC`,
		int64(deckID))
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var cards []model.Card
	for rows.Next() {
		var card model.Card
		var createdAt string
		if err := rows.Scan(&card.ID, &card.DeckID, &card.Front, &card.Back, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		card.CreatedAt = parsed
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

// ListReviewStates returns a review state for every card in the deck.
// Cards whose state row is missing come back as new, never dropped.
func (s *Store) ListReviewStates(ctx context.Context, deckID model.DeckID) ([]model.ReviewState, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.deck_id, COALESCE(rs.phase, 'new'), rs.stability, rs.difficulty,
			rs.due_at, rs.last_reviewed_at, COALESCE(rs.reps, 0), COALESCE(rs.lapses, 0)
		 FROM cards c
		 LEFT JOIN review_states rs ON rs.card_id = c.id
		 WHERE c.deck_id = ?
		 ORDER BY c.id ASC`,
		int64(deckID))
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var states []model.ReviewState
	for rows.Next() {
		state, err := scanState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return states, nil
}

// ApplyReview writes a grading outcome: the card's new state and its
// log entry land in one transaction, so history and state never
// diverge.
func (s *Store) ApplyReview(ctx context.Context, state model.ReviewState, log model.ReviewLog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO review_states (card_id, deck_id, phase, stability, difficulty, due_at, last_reviewed_at, reps, lapses)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(card_id) DO UPDATE SET
			phase = excluded.phase,
			stability = excluded.stability,
			difficulty = excluded.difficulty,
			due_at = excluded.due_at,
			last_reviewed_at = excluded.last_reviewed_at,
			reps = excluded.reps,
			lapses = excluded.lapses`,
		int64(state.CardID),
		int64(state.DeckID),
		state.Phase.String(),
		nullFloat(state.Stability),
		nullFloat(state.Difficulty),
		nullTime(state.DueAt),
		nullTime(state.LastReviewedAt),
		state.Reps,
		state.Lapses,
	)
	if err != nil {
		return err
	}

	res := log.Result
	_, err = tx.ExecContext(ctx,
		`INSERT INTO review_logs (card_id, deck_id, grade, reviewed_at, phase, stability, difficulty, due_at, reps, lapses)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(log.CardID),
		int64(res.DeckID),
		log.Grade.String(),
		log.ReviewedAt.UTC().Format(time.RFC3339Nano),
		res.Phase.String(),
		nullFloat(res.Stability),
		nullFloat(res.Difficulty),
		nullTime(res.DueAt),
		res.Reps,
		res.Lapses,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// ResetDeck wipes every review state in the deck back to new in a
// single statement, so readers never observe a half-reset deck. It
// returns the number of states reset. Logs and summaries are history
// and stay untouched.
func (s *Store) ResetDeck(ctx context.Context, deckID model.DeckID) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE review_states
		 SET phase = ?, stability = NULL, difficulty = NULL, due_at = NULL, last_reviewed_at = NULL, reps = 0, lapses = 0
		 WHERE deck_id = ?`,
		model.PhaseNew.String(), int64(deckID))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountIntroducedSince counts cards that had their first-ever review
// at or after the given instant. Used against the daily new-card
// quota; callers pass the local start of day.
func (s *Store) CountIntroducedSince(ctx context.Context, deckID model.DeckID, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM review_logs WHERE deck_id = ? AND reps = 1 AND reviewed_at >= ?`,
		int64(deckID), since.UTC().Format(time.RFC3339Nano)).Scan(&n)
	return n, err
}

// CountReviewsSince counts grades at or after the given instant that
// consumed the daily review quota: repeat reviews whose outcome landed
// in reviewing or relearning. Learning re-queues are exempt.
func (s *Store) CountReviewsSince(ctx context.Context, deckID model.DeckID, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM review_logs
		 WHERE deck_id = ? AND reviewed_at >= ? AND reps > 1 AND phase IN (?, ?)`,
		int64(deckID), since.UTC().Format(time.RFC3339Nano),
		model.PhaseReviewing.String(), model.PhaseRelearning.String()).Scan(&n)
	return n, err
}

// ListReviewTimes returns review instants for histograms, oldest
// first. Deck and since filters follow the stats config; Last is not
// meaningful for raw times and is ignored.
func (s *Store) ListReviewTimes(ctx context.Context, cfg model.StatsConfig) ([]time.Time, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Deck != "" {
		clauses = append(clauses, "d.name = ?")
		args = append(args, cfg.Deck)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "l.reviewed_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT l.reviewed_at
		FROM review_logs l
		JOIN decks d ON d.id = l.deck_id
		WHERE %s
		ORDER BY l.reviewed_at ASC`, strings.Join(clauses, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var times []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, err
		}
		times = append(times, parsed)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return times, nil
}

// DeckCounts aggregates a deck's cards by phase, plus how many are due
// at the given instant.
func (s *Store) DeckCounts(ctx context.Context, deckID model.DeckID, now time.Time) (model.DeckCounts, error) {
	var counts model.DeckCounts
	err := s.db.QueryRowContext(ctx,
		`SELECT
			COALESCE(SUM(CASE WHEN phase = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN phase = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN phase = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN phase = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN due_at IS NOT NULL AND due_at <= ? THEN 1 ELSE 0 END), 0)
		 FROM review_states WHERE deck_id = ?`,
		model.PhaseNew.String(),
		model.PhaseLearning.String(),
		model.PhaseReviewing.String(),
		model.PhaseRelearning.String(),
		now.UTC().Format(time.RFC3339Nano),
		int64(deckID),
	).Scan(&counts.New, &counts.Learning, &counts.Reviewing, &counts.Relearning, &counts.DueNow)
	return counts, err
}

// InsertSummary stores a finished session's summary.
func (s *Store) InsertSummary(ctx context.Context, sum model.SessionSummary) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO session_summaries (uid, deck_id, mode, started_at, finished_at, duration_ms, again, hard, good, easy)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.UID,
		int64(sum.DeckID),
		sum.Mode.String(),
		sum.StartedAt.UTC().Format(time.RFC3339Nano),
		sum.FinishedAt.UTC().Format(time.RFC3339Nano),
		sum.DurationMs,
		sum.Again,
		sum.Hard,
		sum.Good,
		sum.Easy,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSummaries returns session summaries filtered by the stats
// config, oldest first. Last limits the result to the most recent N.
func (s *Store) ListSummaries(ctx context.Context, cfg model.StatsConfig) ([]model.SessionSummary, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Deck != "" {
		clauses = append(clauses, "d.name = ?")
		args = append(args, cfg.Deck)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "s.finished_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}

	const fields = `s.id, s.uid, s.deck_id, s.mode, s.started_at, s.finished_at, s.duration_ms, s.again, s.hard, s.good, s.easy`
	var query string
	if cfg.Last > 0 {
		query = fmt.Sprintf(`WITH recent AS (
			SELECT s.id FROM session_summaries s
			JOIN decks d ON d.id = s.deck_id
			WHERE %s
			ORDER BY s.finished_at DESC
			LIMIT ?
		)
		SELECT %s FROM session_summaries s
		JOIN recent r ON r.id = s.id
		ORDER BY s.finished_at ASC`, strings.Join(clauses, " AND "), fields)
		args = append(args, cfg.Last)
	} else {
		query = fmt.Sprintf(`SELECT %s FROM session_summaries s
		JOIN decks d ON d.id = s.deck_id
		WHERE %s
		ORDER BY s.finished_at ASC`, fields, strings.Join(clauses, " AND "))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sums []model.SessionSummary
	for rows.Next() {
		var sum model.SessionSummary
		var mode, startedAt, finishedAt string
		if err := rows.Scan(&sum.ID, &sum.UID, &sum.DeckID, &mode, &startedAt, &finishedAt,
			&sum.DurationMs, &sum.Again, &sum.Hard, &sum.Good, &sum.Easy); err != nil {
			return nil, err
		}
		parsedMode, err := model.ParseMode(mode)
		if err != nil {
			return nil, err
		}
		sum.Mode = parsedMode
		if sum.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if sum.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
			return nil, err
		}
		sums = append(sums, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sums, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDeck(row scanner) (model.Deck, error) {
	var deck model.Deck
	var createdAt string
	err := row.Scan(&deck.ID, &deck.Name, &createdAt,
		&deck.Settings.NewPerDay, &deck.Settings.ReviewsPerDay, &deck.Settings.MicroSession,
		&deck.Settings.Retention, &deck.Settings.MaxIntervalDays)
	if err != nil {
		return model.Deck{}, err
	}
	deck.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.Deck{}, err
	}
	return deck, nil
}

func scanState(row scanner) (model.ReviewState, error) {
	var state model.ReviewState
	var phase string
	var stability, difficulty sql.NullFloat64
	var dueAt, lastReviewedAt sql.NullString
	if err := row.Scan(&state.CardID, &state.DeckID, &phase, &stability, &difficulty,
		&dueAt, &lastReviewedAt, &state.Reps, &state.Lapses); err != nil {
		return model.ReviewState{}, err
	}
	parsed, err := model.ParsePhase(phase)
	if err != nil {
		return model.ReviewState{}, err
	}
	state.Phase = parsed
	if stability.Valid {
		state.Stability = &stability.Float64
	}
	if difficulty.Valid {
		state.Difficulty = &difficulty.Float64
	}
	if state.DueAt, err = parseNullTime(dueAt); err != nil {
		return model.ReviewState{}, err
	}
	if state.LastReviewedAt, err = parseNullTime(lastReviewedAt); err != nil {
		return model.ReviewState{}, err
	}
	return state, nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// nullTime normalizes to UTC so stored strings compare correctly with
// SQL string ordering.
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
