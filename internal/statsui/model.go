// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuica/internal/model"
	"github.com/verte-zerg/tuica/internal/stats"
	"github.com/verte-zerg/tuica/internal/store"
)

const (
	tabOverview = iota
	tabCards
	tabHistory
)

const (
	plotHeight = 10
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig

	report     stats.Report
	errMsg     string
	cardErrMsg string

	tabs       []string
	activeTab  int
	viewports  []viewport.Model
	cardRows   []cardRow
	cardTable  table.Model
	cardLayout tableLayout

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// cardRow is one card's scheduling state on the Cards tab.
type cardRow struct {
	deck  string
	card  model.Card
	state model.ReviewState
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
	colCount int
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store: st,
		cfg:   cfg,
		tabs:  []string{"Overview", "Cards", "History"},
	}
	m.initInputs()
	m.initCardTable()
	m.initViewports()
	m.refreshReport()
	return m
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
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		// "q" stays typeable inside the filter inputs; ctrl+c always quits.
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.activeTab == tabCards {
			m.cardTable.Focus()
		} else {
			m.cardTable.Blur()
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startFilter()
		case "g", "home":
			if m.activeTab == tabCards {
				m.cardTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabCards {
				m.cardTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabCards {
				var cmd tea.Cmd
				m.cardTable, cmd = m.cardTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Deck: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
	}
	m.setInputsFromConfig()
}

func (m *Model) initCardTable() {
	cols, _ := buildCardTableData(nil, time.Now())
	t := table.New(
		table.WithColumns(cols),
		table.WithHeight(1),
	)
	t.SetStyles(cardTableStyles())
	m.cardTable = t
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	if len(m.filterInputs) == 0 {
		return
	}
	m.filterInputs[0].SetValue(strings.TrimSpace(m.cfg.Deck))
	if m.cfg.Since != nil {
		m.filterInputs[1].SetValue(m.cfg.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[1].SetValue("")
	}
	if m.cfg.Last > 0 {
		m.filterInputs[2].SetValue(strconv.Itoa(m.cfg.Last))
	} else {
		m.filterInputs[2].SetValue("")
	}
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setCardTableSize(m.width, vpHeight)
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabCards {
		m.cardTable.Focus()
	} else {
		m.cardTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	deck := m.cfg.Deck
	if deck == "" {
		deck = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: deck=%s  since=%s  last=%s", deck, since, last)
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Settings: /  Quit: q")
}

func (m *Model) renderFilterHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel  quit: ctrl+c")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.renderFilterHelp()
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabCards {
		switch {
		case m.cardErrMsg != "":
			return fitLines("Failed to load cards: "+m.cardErrMsg, m.width, height)
		case len(m.cardRows) == 0:
			return fitLines("No cards found.", m.width, height)
		default:
			view := tableMutedStyle.Render(m.cardTable.View())
			return fitLines(view, m.width, height)
		}
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg, time.Now())
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	m.loadCardRows()
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	applyCardTable(m, width, bodyHeight, true)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, width))
	m.viewports[tabHistory].SetContent(renderHistory(m.report.Sessions))
}

// loadCardRows pulls every scoped deck's cards for the Cards tab. The
// report itself only carries aggregates.
func (m *Model) loadCardRows() {
	m.cardErrMsg = ""
	m.cardRows = nil
	ctx := context.Background()
	for _, d := range m.report.Decks {
		cards, err := m.store.ListCards(ctx, d.Deck.ID)
		if err != nil {
			m.cardErrMsg = err.Error()
			return
		}
		states, err := m.store.ListReviewStates(ctx, d.Deck.ID)
		if err != nil {
			m.cardErrMsg = err.Error()
			return
		}
		byID := make(map[model.CardID]model.ReviewState, len(states))
		for _, s := range states {
			byID[s.CardID] = s
		}
		for _, c := range cards {
			m.cardRows = append(m.cardRows, cardRow{deck: d.Deck.Name, card: c, state: byID[c.ID]})
		}
	}
}

func renderOverview(report stats.Report, width int) string {
	if len(report.Decks) == 0 {
		return "No decks found."
	}
	sections := []string{
		renderMetricCards(report, width),
		renderDeckSection(report),
		renderActivity(report),
		renderForecast(report, width),
		renderAccuracy(report, width),
	}
	if len(report.Decks) == 1 {
		sections = append(sections, renderHardest(report.Decks[0]))
	}
	kept := make([]string, 0, len(sections))
	for _, s := range sections {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return strings.TrimRight(strings.Join(kept, "\n\n"), "\n")
}

func renderMetricCards(report stats.Report, width int) string {
	var cardCount, dueNow int
	for _, d := range report.Decks {
		cardCount += d.Counts.Total()
		dueNow += d.Counts.DueNow
	}
	avgAcc := 0.0
	for _, a := range report.Accuracy {
		avgAcc += a
	}
	if len(report.Accuracy) > 0 {
		avgAcc /= float64(len(report.Accuracy))
	}
	cards := []string{
		metricCard("Decks", fmt.Sprintf("%d", len(report.Decks))),
		metricCard("Cards", fmt.Sprintf("%d", cardCount)),
		metricCard("Due now", fmt.Sprintf("%d", dueNow)),
		metricCard("Sessions", fmt.Sprintf("%d", len(report.Sessions))),
		metricCard("Avg accuracy", fmt.Sprintf("%.1f%%", avgAcc)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderDeckSection(report stats.Report) string {
	rows := make([]stats.DeckRow, 0, len(report.Decks))
	for _, d := range report.Decks {
		rows = append(rows, stats.DeckRow{Deck: d.Deck, Counts: d.Counts})
	}
	var buf bytes.Buffer
	if err := stats.RenderDeckTable(&buf, rows); err != nil {
		return fmt.Sprintf("Failed to render decks: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderActivity(report stats.Report) string {
	total := 0
	for _, v := range report.ReviewsPerDay {
		total += int(v)
	}
	title := headerStyle.Render(fmt.Sprintf("Reviews, last %d days (%d total)", stats.HistoryDays, total))
	return title + "\n" + stats.Sparkline(report.ReviewsPerDay)
}

func renderForecast(report stats.Report, width int) string {
	series := make([]stats.Series, 0, len(report.Decks))
	for _, d := range report.Decks {
		series = append(series, stats.Series{Name: d.Deck.Name, Values: d.Forecast})
	}
	title := fmt.Sprintf("Cards due, next %d days", stats.ForecastDays)
	var buf bytes.Buffer
	if err := stats.PlotSeriesWithColor(&buf, title, series, stats.PlotWidthFor(width), plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render forecast: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderAccuracy(report stats.Report, width int) string {
	if len(report.Accuracy) == 0 {
		return ""
	}
	series := []stats.Series{{Name: "per session", Values: report.Accuracy}}
	if len(report.Accuracy) >= 5 {
		series = append(series, stats.Series{Name: "trend", Values: stats.MovingAverage(report.Accuracy, 5)})
	}
	var buf bytes.Buffer
	if err := stats.PlotSeriesWithColor(&buf, "Session accuracy %", series, stats.PlotWidthFor(width), plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render accuracy: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderHardest(overview stats.DeckOverview) string {
	if len(overview.Hardest) == 0 {
		return ""
	}
	lines := []string{headerStyle.Render("Hardest cards")}
	for _, cs := range overview.Hardest {
		difficulty := "-"
		if cs.State.Difficulty != nil {
			difficulty = fmt.Sprintf("%.1f", *cs.State.Difficulty)
		}
		front := runewidth.Truncate(cs.Card.Front, 30, "…")
		lines = append(lines, fmt.Sprintf("%s  lapses %d  difficulty %s", front, cs.State.Lapses, difficulty))
	}
	return strings.Join(lines, "\n")
}

func renderHistory(sums []model.SessionSummary) string {
	var buf bytes.Buffer
	if err := stats.RenderSummary(&buf, sums); err != nil {
		return fmt.Sprintf("Failed to render sessions: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func buildCardTableData(rows []cardRow, now time.Time) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Deck", Width: 12},
		{Title: "Front", Width: 28},
		{Title: "Phase", Width: 10},
		{Title: "Due", Width: 5},
		{Title: "Reps", Width: 5},
		{Title: "Lapses", Width: 6},
		{Title: "Difficulty", Width: 10},
	}
	tableRows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		phase := r.state.Phase
		if !phase.IsValid() {
			phase = model.PhaseNew
		}
		difficulty := "-"
		if r.state.Difficulty != nil {
			difficulty = fmt.Sprintf("%.1f", *r.state.Difficulty)
		}
		tableRows = append(tableRows, table.Row{
			r.deck,
			r.card.Front,
			phase.String(),
			stats.FormatDue(r.state.DueAt, now),
			fmt.Sprintf("%d", r.state.Reps),
			fmt.Sprintf("%d", r.state.Lapses),
			difficulty,
		})
	}
	return columns, tableRows
}

func applyCardTable(m *Model, width, height int, force bool) {
	cols, rows := buildCardTableData(m.cardRows, time.Now())
	viewportHeight := maxInt(1, height-1)
	if !force &&
		m.cardLayout.width == width &&
		m.cardLayout.height == viewportHeight &&
		m.cardLayout.rowCount == len(rows) &&
		m.cardLayout.colCount == len(cols) {
		return
	}
	m.cardTable.SetColumns(cols)
	m.cardTable.SetRows(rows)
	m.cardLayout.rowCount = len(rows)
	m.cardLayout.colCount = len(cols)
	m.setCardTableSize(width, height)
}

func (m *Model) setCardTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.cardLayout.width == width && m.cardLayout.height == viewportHeight {
		return
	}
	m.cardLayout.width = width
	m.cardLayout.height = viewportHeight
	m.cardTable.SetWidth(width)
	m.cardTable.SetHeight(viewportHeight)
	viewportHeight = m.adjustCardTableHeight(height)
	if m.cardLayout.height != viewportHeight {
		m.cardLayout.height = viewportHeight
		m.cardTable.SetHeight(viewportHeight)
	}
}

func cardTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// adjustCardTableHeight nudges the bubbles table until its rendered
// height matches the body height; borders make the two disagree.
func (m *Model) adjustCardTableHeight(bodyHeight int) int {
	target := maxInt(1, bodyHeight)
	height := m.cardTable.Height()
	viewHeight := lipgloss.Height(m.cardTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	m.cardTable.SetHeight(height)
	viewHeight = lipgloss.Height(m.cardTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	return height
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	deck := strings.TrimSpace(m.filterInputs[0].Value())

	sinceInput := strings.TrimSpace(m.filterInputs[1].Value())
	var since *time.Time
	if sinceInput != "" {
		parsed, err := time.ParseInLocation("2006-01-02", sinceInput, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}

	lastInput := strings.TrimSpace(m.filterInputs[2].Value())
	last := 0
	if lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}

	m.cfg = model.StatsConfig{
		Deck:  deck,
		Since: since,
		Last:  last,
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
