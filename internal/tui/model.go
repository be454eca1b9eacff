// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuica/internal/model"
	"github.com/verte-zerg/tuica/internal/scheduler"
	"github.com/verte-zerg/tuica/internal/session"
	statsPkg "github.com/verte-zerg/tuica/internal/stats"
	"github.com/verte-zerg/tuica/internal/store"
)

// Model implements the Bubble Tea practice UI. It walks an in-progress
// session card by card: show the front, reveal on space, grade on 1-4,
// then a summary screen. Every grade is persisted as it happens.
type Model struct {
	store  *store.Store
	sched  *scheduler.Scheduler
	sess   *session.Session
	deck   model.Deck
	cards  map[model.CardID]model.Card
	states map[model.CardID]model.ReviewState

	width  int
	height int

	summary model.SessionSummary
	done    bool
}

var (
	frontStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	backStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	dividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

var gradeKeys = map[rune]model.Grade{
	'1': model.GradeAgain,
	'2': model.GradeHard,
	'3': model.GradeGood,
	'4': model.GradeEasy,
}

// NewModel constructs a practice TUI model. The session must already be
// started and non-empty; the caller handles empty plans before ever
// opening the UI.
func NewModel(st *store.Store, sched *scheduler.Scheduler, sess *session.Session, deck model.Deck, cards []model.Card, states []model.ReviewState) *Model {
	cardsByID := make(map[model.CardID]model.Card, len(cards))
	for _, c := range cards {
		cardsByID[c.ID] = c
	}
	statesByID := make(map[model.CardID]model.ReviewState, len(states))
	for _, s := range states {
		statesByID[s.CardID] = s
	}
	return &Model{
		store:  st,
		sched:  sched,
		sess:   sess,
		deck:   deck,
		cards:  cardsByID,
		states: statesByID,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.done {
			// Any key leaves the summary screen.
			return m, tea.Quit
		}
		switch msg.Type {
		case tea.KeySpace, tea.KeyEnter:
			m.reveal()
			return m, nil
		case tea.KeyRunes:
			m.handleRunes(msg.Runes)
			return m, nil
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	contentWidth := int(float64(m.width) * 0.70)
	if m.width > 0 && contentWidth < 1 {
		contentWidth = 1
	}
	var content string
	if m.done {
		content = m.renderSummary()
	} else {
		content = m.renderCard(contentWidth)
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	styled := lipgloss.NewStyle().Width(contentWidth).Render(content)
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, styled)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, styled)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) reveal() {
	if m.sess.Revealed() {
		return
	}
	if err := m.sess.Reveal(); err != nil {
		logErrf("failed to reveal card: %v\n", err)
	}
}

func (m *Model) handleRunes(runes []rune) {
	for _, r := range runes {
		if grade, ok := gradeKeys[r]; ok {
			m.grade(grade)
		}
	}
}

func (m *Model) grade(grade model.Grade) {
	if !m.sess.Revealed() {
		// The answer must be on screen before it can be judged.
		return
	}
	id, err := m.sess.Current()
	if err != nil {
		logErrf("failed to read current card: %v\n", err)
		return
	}
	state, ok := m.states[id]
	if !ok {
		state = model.ReviewState{CardID: id, DeckID: m.deck.ID, Phase: model.PhaseNew}
	}
	next, log, err := m.sess.Grade(state, grade, time.Now())
	if err != nil {
		logErrf("failed to grade card: %v\n", err)
		return
	}
	m.states[id] = next

	ctx := context.Background()
	if err := m.store.ApplyReview(ctx, next, log); err != nil {
		logErrf("failed to save review: %v\n", err)
	}
	if m.sess.Status() == session.Completed {
		m.finishSession()
	}
}

func (m *Model) finishSession() {
	sum, err := m.sess.Finish(time.Now())
	if err != nil {
		logErrf("failed to finish session: %v\n", err)
		return
	}
	ctx := context.Background()
	if _, err := m.store.InsertSummary(ctx, sum); err != nil {
		logErrf("failed to save session: %v\n", err)
	}
	m.summary = sum
	m.done = true
}

func (m *Model) renderCard(width int) string {
	id, err := m.sess.Current()
	if err != nil {
		return ""
	}
	card := m.cards[id]
	parts := []string{frontStyle.Render(wrapText(card.Front, width))}
	if m.sess.Revealed() {
		divider := 24
		if width > 0 && width < divider {
			divider = width
		}
		parts = append(parts,
			dividerStyle.Render(strings.Repeat("─", divider)),
			backStyle.Render(wrapText(card.Back, width)))
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderSummary() string {
	sum := m.summary
	duration := (time.Duration(sum.DurationMs) * time.Millisecond).Round(time.Second)
	lines := []string{
		titleStyle.Render("Session complete"),
		fmt.Sprintf("%s  %s  %d cards  %s", m.deck.Name, sum.Mode, sum.Total(), duration),
		fmt.Sprintf("Again %d  Hard %d  Good %d  Easy %d", sum.Again, sum.Hard, sum.Good, sum.Easy),
		fmt.Sprintf("Accuracy %.0f%%", statsPkg.SessionAccuracy(sum)*100),
	}
	return strings.Join(lines, "\n\n")
}

func (m *Model) renderFooter() string {
	if m.done {
		return footerStyle.Render("press any key to exit")
	}
	position := m.sess.Len() - m.sess.Remaining() + 1
	segments := []string{
		fmt.Sprintf("Card %d/%d", position, m.sess.Len()),
		m.deck.Name,
	}
	if m.sess.Revealed() {
		segments = append(segments, m.gradeHints())
	} else {
		segments = append(segments, "space to reveal")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

// gradeHints previews when the card would come back for each grade.
func (m *Model) gradeHints() string {
	id, err := m.sess.Current()
	if err != nil {
		return ""
	}
	state, ok := m.states[id]
	if !ok {
		state = model.ReviewState{CardID: id, DeckID: m.deck.ID, Phase: model.PhaseNew}
	}
	now := time.Now()
	previews := m.sched.Preview(state, now)
	return fmt.Sprintf("1 again %s  2 hard %s  3 good %s  4 easy %s",
		statsPkg.FormatDue(previews[model.GradeAgain].DueAt, now),
		statsPkg.FormatDue(previews[model.GradeHard].DueAt, now),
		statsPkg.FormatDue(previews[model.GradeGood].DueAt, now),
		statsPkg.FormatDue(previews[model.GradeEasy].DueAt, now))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
