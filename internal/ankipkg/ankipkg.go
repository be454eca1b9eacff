// Package ankipkg exports decks as Anki .apkg packages.
//
// An .apkg is a zip holding a collection.anki2 SQLite database (schema
// version 11) plus a media manifest. Scheduling state is mapped onto
// Anki card types and queues so progress survives the trip.
package ankipkg

import (
	"archive/zip"
	"crypto/sha1"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/tuica/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Anki card types and queues, collection schema v11.
const (
	ankiTypeNew        = 0
	ankiTypeLearning   = 1
	ankiTypeReview     = 2
	ankiTypeRelearning = 3

	ankiQueueNew      = 0
	ankiQueueLearning = 1
	ankiQueueReview   = 2
)

// fieldSep separates note fields in the flds column.
const fieldSep = "\x1f"

// defaultFactor is Anki's default SM-2 ease. The memory model here has
// no SM-2 counterpart, so every exported card carries the default.
const defaultFactor = 2500

// Export writes a .apkg package for the deck's cards. States are
// matched to cards by id; a card without a state exports as new.
func Export(w io.Writer, deck model.Deck, cards []model.Card, states []model.ReviewState, now time.Time) error {
	tmpDir, err := os.MkdirTemp("", "tuica-apkg-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if rerr := os.RemoveAll(tmpDir); rerr != nil {
			// Best-effort temp dir cleanup.
			_ = rerr
		}
	}()

	byCard := make(map[model.CardID]model.ReviewState, len(states))
	for _, st := range states {
		byCard[st.CardID] = st
	}

	dbPath := filepath.Join(tmpDir, "collection.anki2")
	if err := buildCollection(dbPath, deck, cards, byCard, now); err != nil {
		return fmt.Errorf("build collection: %w", err)
	}

	mediaPath := filepath.Join(tmpDir, "media")
	if err := os.WriteFile(mediaPath, []byte("{}"), 0o644); err != nil {
		return fmt.Errorf("write media manifest: %w", err)
	}

	zw := zip.NewWriter(w)
	if err := addFileToZip(zw, dbPath, "collection.anki2"); err != nil {
		return fmt.Errorf("add collection to zip: %w", err)
	}
	if err := addFileToZip(zw, mediaPath, "media"); err != nil {
		return fmt.Errorf("add media to zip: %w", err)
	}
	return zw.Close()
}

func buildCollection(path string, deck model.Deck, cards []model.Card, states map[model.CardID]model.ReviewState, now time.Time) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	if err := writeCollection(db, deck, cards, states, now); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on a failed build.
			_ = cerr
		}
		return err
	}
	return db.Close()
}

func writeCollection(db *sql.DB, deck model.Deck, cards []model.Card, states map[model.CardID]model.ReviewState, now time.Time) error {
	if _, err := db.Exec(collectionSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	const deckID = 1
	const modelID = 1
	nowMs := now.UnixMilli()

	conf, err := json.Marshal(map[string]any{
		"curModel":    modelID,
		"activeDecks": []int64{deckID},
	})
	if err != nil {
		return err
	}
	models, err := json.Marshal(basicModel(modelID, deckID, nowMs))
	if err != nil {
		return err
	}
	decks, err := json.Marshal(map[string]any{
		fmt.Sprintf("%d", deckID): map[string]any{
			"id":               deckID,
			"name":             deck.Name,
			"desc":             "",
			"mod":              nowMs,
			"usn":              -1,
			"collapsed":        false,
			"browserCollapsed": false,
			"dyn":              0,
			"newToday":         []int{0, 0},
			"revToday":         []int{0, 0},
			"lrnToday":         []int{0, 0},
			"timeToday":        []int{0, 0},
			"conf":             1,
		},
	})
	if err != nil {
		return err
	}
	dconf, err := json.Marshal(deckConf(deck.Settings, nowMs))
	if err != nil {
		return err
	}

	_, err = db.Exec(
		`INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		1, nowMs/1000, nowMs, nowMs, 11, 0, 0, 0,
		string(conf), string(models), string(decks), string(dconf), "{}")
	if err != nil {
		return fmt.Errorf("insert collection row: %w", err)
	}

	newPosition := 0
	for i, card := range cards {
		state := states[card.ID]
		position := 0
		if exportPhase(state) == model.PhaseNew {
			position = newPosition
			newPosition++
		}
		if err := insertCard(db, deck.ID, int64(i), card, state, position, modelID, deckID, now); err != nil {
			return fmt.Errorf("card %v: %w", card.ID, err)
		}
	}
	return nil
}

func insertCard(db *sql.DB, srcDeck model.DeckID, idx int64, card model.Card, state model.ReviewState, position int, modelID, deckID int64, now time.Time) error {
	nowMs := now.UnixMilli()
	noteID := nowMs + idx*2
	cardID := noteID + 1

	fields := card.Front + fieldSep + card.Back
	guid := fmt.Sprintf("tuica-%v-%v", srcDeck, card.ID)

	_, err := db.Exec(
		`INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		noteID, guid, modelID, nowMs/1000, -1, "", fields, card.Front, fieldChecksum(card.Front), 0, "")
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}

	typ, queue, due, ivl := ankiSchedule(state, position, now)
	_, err = db.Exec(
		`INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cardID, noteID, deckID, 0, nowMs/1000, -1, typ, queue, due, ivl,
		defaultFactor, state.Reps, state.Lapses, 0, 0, 0, 0, "")
	if err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

// ankiSchedule maps a review state onto Anki's card type, queue, due
// and interval columns. Review queue dues count in days from now;
// learning queue dues are epoch seconds.
func ankiSchedule(state model.ReviewState, position int, now time.Time) (typ, queue int, due, ivl int64) {
	switch exportPhase(state) {
	case model.PhaseLearning:
		return ankiTypeLearning, ankiQueueLearning, dueEpoch(state, now), 0
	case model.PhaseRelearning:
		return ankiTypeRelearning, ankiQueueLearning, dueEpoch(state, now), 0
	case model.PhaseReviewing:
		dueDays := int64(0)
		if state.DueAt != nil {
			dueDays = int64(state.DueAt.Sub(now).Hours() / 24)
			if dueDays < 0 {
				dueDays = 0
			}
		}
		ivlDays := int64(1)
		if state.DueAt != nil && state.LastReviewedAt != nil {
			ivlDays = max(1, int64(state.DueAt.Sub(*state.LastReviewedAt).Hours()/24))
		}
		return ankiTypeReview, ankiQueueReview, dueDays, ivlDays
	default:
		return ankiTypeNew, ankiQueueNew, int64(position), 0
	}
}

// exportPhase treats a missing or invalid state as new.
func exportPhase(state model.ReviewState) model.Phase {
	if !state.Phase.IsValid() {
		return model.PhaseNew
	}
	return state.Phase
}

func dueEpoch(state model.ReviewState, now time.Time) int64 {
	if state.DueAt == nil {
		return now.Unix()
	}
	return state.DueAt.Unix()
}

// fieldChecksum is the first 32 bits of the SHA-1 of the sort field,
// the csum Anki keeps for duplicate detection.
func fieldChecksum(s string) int64 {
	sum := sha1.Sum([]byte(s))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}

func basicModel(modelID, deckID, nowMs int64) map[string]any {
	return map[string]any{
		fmt.Sprintf("%d", modelID): map[string]any{
			"id":    modelID,
			"name":  "Basic",
			"type":  0,
			"mod":   nowMs,
			"usn":   -1,
			"sortf": 0,
			"did":   deckID,
			"tmpls": []map[string]any{
				{
					"name":  "Card 1",
					"ord":   0,
					"qfmt":  "{{Front}}",
					"afmt":  "{{FrontSide}}<hr id=\"answer\">{{Back}}",
					"bqfmt": "",
					"bafmt": "",
					"did":   nil,
					"bfont": "Arial",
					"bsize": 20,
				},
			},
			"flds": []map[string]any{
				{"name": "Front", "ord": 0, "sticky": false, "rtl": false, "font": "Arial", "size": 20, "media": []string{}},
				{"name": "Back", "ord": 1, "sticky": false, "rtl": false, "font": "Arial", "size": 20, "media": []string{}},
			},
			"css":       ".card { font-family: arial; font-size: 20px; text-align: center; color: black; background-color: white; }",
			"latexPre":  "\\documentclass[12pt]{article}\n\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n\\begin{document}",
			"latexPost": "\\end{document}",
			"latexsvg":  false,
			"req":       []any{[]any{0, "all", []int{0}}},
			"tags":      []string{},
			"vers":      []int{},
		},
	}
}

// deckConf carries the deck's daily limits into Anki's deck options.
func deckConf(settings model.DeckSettings, nowMs int64) map[string]any {
	return map[string]any{
		"1": map[string]any{
			"id":       1,
			"mod":      nowMs,
			"usn":      -1,
			"maxTaken": 60,
			"autoplay": true,
			"timer":    0,
			"replayq":  true,
			"new": map[string]any{
				"delays":        []float64{1, 10},
				"ints":          []int{1, 4, 7},
				"initialFactor": defaultFactor,
				"separate":      true,
				"order":         1,
				"perDay":        settings.NewPerDay,
			},
			"rev": map[string]any{
				"perDay":   settings.ReviewsPerDay,
				"fuzz":     0.05,
				"minSpace": 1,
				"ivlFct":   1,
				"maxIvl":   settings.MaxIntervalDays,
			},
			"lapse": map[string]any{
				"delays":      []float64{10},
				"mult":        0,
				"minInt":      1,
				"leechFails":  8,
				"leechAction": 0,
			},
		},
	}
}

func addFileToZip(zw *zip.Writer, filePath, nameInZip string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for read-only input.
			_ = cerr
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = nameInZip
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

const collectionSchema = `
CREATE TABLE col (
	id INTEGER PRIMARY KEY,
	crt INTEGER NOT NULL,
	mod INTEGER NOT NULL,
	scm INTEGER NOT NULL,
	ver INTEGER NOT NULL,
	dty INTEGER NOT NULL,
	usn INTEGER NOT NULL,
	ls INTEGER NOT NULL,
	conf TEXT NOT NULL,
	models TEXT NOT NULL,
	decks TEXT NOT NULL,
	dconf TEXT NOT NULL,
	tags TEXT NOT NULL
);
CREATE TABLE notes (
	id INTEGER PRIMARY KEY,
	guid TEXT NOT NULL,
	mid INTEGER NOT NULL,
	mod INTEGER NOT NULL,
	usn INTEGER NOT NULL,
	tags TEXT NOT NULL,
	flds TEXT NOT NULL,
	sfld INTEGER NOT NULL,
	csum INTEGER NOT NULL,
	flags INTEGER NOT NULL,
	data TEXT NOT NULL
);
CREATE TABLE cards (
	id INTEGER PRIMARY KEY,
	nid INTEGER NOT NULL,
	did INTEGER NOT NULL,
	ord INTEGER NOT NULL,
	mod INTEGER NOT NULL,
	usn INTEGER NOT NULL,
	type INTEGER NOT NULL,
	queue INTEGER NOT NULL,
	due INTEGER NOT NULL,
	ivl INTEGER NOT NULL,
	factor INTEGER NOT NULL,
	reps INTEGER NOT NULL,
	lapses INTEGER NOT NULL,
	left INTEGER NOT NULL,
	odue INTEGER NOT NULL,
	odid INTEGER NOT NULL,
	flags INTEGER NOT NULL,
	data TEXT NOT NULL
);
CREATE TABLE revlog (
	id INTEGER PRIMARY KEY,
	cid INTEGER NOT NULL,
	usn INTEGER NOT NULL,
	ease INTEGER NOT NULL,
	ivl INTEGER NOT NULL,
	lastIvl INTEGER NOT NULL,
	factor INTEGER NOT NULL,
	time INTEGER NOT NULL,
	type INTEGER NOT NULL
);
CREATE INDEX ix_notes_csum ON notes (csum);
CREATE INDEX ix_cards_nid ON cards (nid);
CREATE INDEX ix_cards_sched ON cards (did, queue, due);
CREATE INDEX ix_revlog_cid ON revlog (cid);
`
