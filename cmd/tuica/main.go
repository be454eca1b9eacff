// Package main provides the CLI entrypoint for tuica.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuica/internal/ankipkg"
	"github.com/verte-zerg/tuica/internal/config"
	"github.com/verte-zerg/tuica/internal/deckfile"
	"github.com/verte-zerg/tuica/internal/gitsource"
	"github.com/verte-zerg/tuica/internal/model"
	"github.com/verte-zerg/tuica/internal/scheduler"
	"github.com/verte-zerg/tuica/internal/session"
	"github.com/verte-zerg/tuica/internal/stats"
	"github.com/verte-zerg/tuica/internal/statsui"
	"github.com/verte-zerg/tuica/internal/store"
	"github.com/verte-zerg/tuica/internal/tui"
)

const defaultMode = "due"

var (
	practiceDeck    string
	practiceMode    string
	practiceShuffle bool
	practiceFuzz    bool

	deckNewPerDay     int
	deckReviewsPerDay int
	deckMicroSession  int
	deckRetention     float64
	deckMaxInterval   int
	deckResetYes      bool

	exportOut string

	statsDeck  string
	statsSince string
	statsLast  int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuica",
		Short:         "TUI flashcards with spaced repetition",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceDeck, "deck", "", "deck to practice (default: the only deck, if one exists)")
	rootCmd.Flags().StringVar(&practiceMode, "mode", defaultMode, "session mode: due, full, mistakes")
	rootCmd.Flags().BoolVar(&practiceShuffle, "shuffle-new", false, "shuffle the order new cards are introduced")
	rootCmd.Flags().BoolVar(&practiceFuzz, "fuzz", false, "jitter long intervals to spread reviews out")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDeckCmd())
	rootCmd.AddCommand(newCardCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newPullCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "deck", &practiceDeck, fileCfg.Practice.Deck)
	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyBoolConfig(cmd, "shuffle-new", &practiceShuffle, fileCfg.Practice.ShuffleNew)
	applyBoolConfig(cmd, "fuzz", &practiceFuzz, fileCfg.Scheduler.Fuzz)

	mode, err := model.ParseMode(practiceMode)
	if err != nil {
		return fmt.Errorf("invalid --mode value: %w", err)
	}
	if mode == model.ModeReset {
		return fmt.Errorf("reset is not a practice mode (run: tuica deck reset <name>)")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	deck, err := resolveDeck(ctx, st, practiceDeck)
	if err != nil {
		return err
	}

	sched, err := scheduler.New(scheduler.Config{
		DesiredRetention:    deck.Settings.Retention,
		MaximumIntervalDays: deck.Settings.MaxIntervalDays,
		EnableFuzz:          practiceFuzz,
	})
	if err != nil {
		return fmt.Errorf("failed to build scheduler: %w", err)
	}

	now := time.Now()
	states, err := st.ListReviewStates(ctx, deck.ID)
	if err != nil {
		return fmt.Errorf("failed to load review states: %w", err)
	}
	quota, err := quotaFor(ctx, st, deck.ID, now)
	if err != nil {
		return err
	}

	builder, err := session.NewBuilder(deck.Settings)
	if err != nil {
		return fmt.Errorf("invalid deck settings: %w", err)
	}
	if practiceShuffle {
		builder.ShuffleNew(now.UnixNano())
	}
	plan, err := builder.Build(mode, states, quota, now)
	if err != nil {
		return fmt.Errorf("failed to build session: %w", err)
	}
	if len(plan.Cards) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to practice right now.")
		if next := nextDue(states, now); next != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Next card due in %s.\n", stats.FormatDue(next, now))
		}
		return nil
	}

	cards, err := st.ListCards(ctx, deck.ID)
	if err != nil {
		return fmt.Errorf("failed to load cards: %w", err)
	}

	sess := session.New(deck.ID, plan, sched)
	if err := sess.Start(now); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	model := tui.NewModel(st, sched, sess, deck, cards, states)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// nextDue finds the earliest future due time, if any.
func nextDue(states []model.ReviewState, now time.Time) *time.Time {
	var next *time.Time
	for _, s := range states {
		if s.DueAt == nil || !s.DueAt.After(now) {
			continue
		}
		if next == nil || s.DueAt.Before(*next) {
			due := *s.DueAt
			next = &due
		}
	}
	return next
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newDeckCmd() *cobra.Command {
	deckCmd := &cobra.Command{
		Use:   "deck",
		Short: "Manage decks",
	}
	deckCmd.AddCommand(newDeckAddCmd())
	deckCmd.AddCommand(newDeckListCmd())
	deckCmd.AddCommand(newDeckSetCmd())
	deckCmd.AddCommand(newDeckResetCmd())
	return deckCmd
}

func newDeckAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a deck",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeckAddCmd,
	}
	registerSettingsFlags(cmd)
	return cmd
}

func runDeckAddCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "new-per-day", &deckNewPerDay, fileCfg.Decks.NewPerDay)
	applyIntConfig(cmd, "reviews-per-day", &deckReviewsPerDay, fileCfg.Decks.ReviewsPerDay)
	applyIntConfig(cmd, "micro-session", &deckMicroSession, fileCfg.Decks.MicroSession)
	applyFloatConfig(cmd, "retention", &deckRetention, fileCfg.Decks.Retention)
	applyIntConfig(cmd, "max-interval-days", &deckMaxInterval, fileCfg.Decks.MaxIntervalDays)

	settings := model.DeckSettings{
		NewPerDay:       deckNewPerDay,
		ReviewsPerDay:   deckReviewsPerDay,
		MicroSession:    deckMicroSession,
		Retention:       deckRetention,
		MaxIntervalDays: deckMaxInterval,
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	deck, err := st.CreateDeck(context.Background(), args[0], settings)
	if err != nil {
		if errors.Is(err, store.ErrDeckExists) {
			return fmt.Errorf("deck %q already exists", args[0])
		}
		return fmt.Errorf("failed to create deck: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created deck %q\n", deck.Name)
	return nil
}

func newDeckListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List decks with card counts",
		Args:  cobra.NoArgs,
		RunE:  runDeckListCmd,
	}
}

func runDeckListCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	decks, err := st.ListDecks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list decks: %w", err)
	}
	now := time.Now()
	rows := make([]stats.DeckRow, 0, len(decks))
	for _, deck := range decks {
		counts, err := st.DeckCounts(ctx, deck.ID, now)
		if err != nil {
			return fmt.Errorf("failed to count cards in %q: %w", deck.Name, err)
		}
		rows = append(rows, stats.DeckRow{Deck: deck, Counts: counts})
	}
	return stats.RenderDeckTable(cmd.OutOrStdout(), rows)
}

func newDeckSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Change a deck's settings",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeckSetCmd,
	}
	registerSettingsFlags(cmd)
	return cmd
}

func runDeckSetCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	deck, err := st.GetDeckByName(ctx, args[0])
	if err != nil {
		return deckLookupError(args[0], err)
	}

	settings := deck.Settings
	if cmd.Flags().Changed("new-per-day") {
		settings.NewPerDay = deckNewPerDay
	}
	if cmd.Flags().Changed("reviews-per-day") {
		settings.ReviewsPerDay = deckReviewsPerDay
	}
	if cmd.Flags().Changed("micro-session") {
		settings.MicroSession = deckMicroSession
	}
	if cmd.Flags().Changed("retention") {
		settings.Retention = deckRetention
	}
	if cmd.Flags().Changed("max-interval-days") {
		settings.MaxIntervalDays = deckMaxInterval
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := st.UpdateDeckSettings(ctx, deck.ID, settings); err != nil {
		return fmt.Errorf("failed to update deck settings: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated settings for %q\n", deck.Name)
	return nil
}

func newDeckResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset <name>",
		Short: "Reset all scheduling progress for a deck",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeckResetCmd,
	}
	cmd.Flags().BoolVar(&deckResetYes, "yes", false, "skip the confirmation prompt")
	return cmd
}

func runDeckResetCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	deck, err := st.GetDeckByName(ctx, args[0])
	if err != nil {
		return deckLookupError(args[0], err)
	}

	if !deckResetYes {
		fmt.Fprintf(cmd.OutOrStdout(), "Reset all progress for deck %q? [y/N]: ", deck.Name)
		reader := bufio.NewReader(cmd.InOrStdin())
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	n, err := st.ResetDeck(ctx, deck.ID)
	if err != nil {
		return fmt.Errorf("failed to reset deck: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reset %d cards in %q\n", n, deck.Name)
	return nil
}

func newCardCmd() *cobra.Command {
	cardCmd := &cobra.Command{
		Use:   "card",
		Short: "Manage cards",
	}
	cardCmd.AddCommand(newCardAddCmd())
	cardCmd.AddCommand(newCardListCmd())
	return cardCmd
}

func newCardAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <deck> <front> <back>",
		Short: "Add a card to a deck",
		Args:  cobra.ExactArgs(3),
		RunE:  runCardAddCmd,
	}
}

func runCardAddCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	deck, err := st.GetDeckByName(ctx, args[0])
	if err != nil {
		return deckLookupError(args[0], err)
	}
	card, err := st.AddCard(ctx, deck.ID, args[1], args[2])
	if err != nil {
		return fmt.Errorf("failed to add card: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added card %d to %q\n", card.ID, deck.Name)
	return nil
}

func newCardListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <deck>",
		Short: "List a deck's cards with their scheduling state",
		Args:  cobra.ExactArgs(1),
		RunE:  runCardListCmd,
	}
}

func runCardListCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	deck, err := st.GetDeckByName(ctx, args[0])
	if err != nil {
		return deckLookupError(args[0], err)
	}
	cards, err := st.ListCards(ctx, deck.ID)
	if err != nil {
		return fmt.Errorf("failed to list cards: %w", err)
	}
	states, err := st.ListReviewStates(ctx, deck.ID)
	if err != nil {
		return fmt.Errorf("failed to load review states: %w", err)
	}
	return stats.RenderCardTable(cmd.OutOrStdout(), cards, states, time.Now())
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Import YAML deck files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	settings := deckSettingsFromConfig(fileCfg.Decks)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	for _, path := range args {
		if err := importDeckFile(ctx, st, cmd.OutOrStdout(), path, settings); err != nil {
			return err
		}
	}
	return nil
}

// importDeckFile loads one deck file into the store, creating the deck
// when needed. Cards whose front already exists in the deck are
// skipped, so imports are re-runnable.
func importDeckFile(ctx context.Context, st *store.Store, out io.Writer, path string, settings model.DeckSettings) error {
	file, err := deckfile.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load deck file: %w", err)
	}

	deck, err := st.GetDeckByName(ctx, file.Name)
	if errors.Is(err, store.ErrNotFound) {
		deck, err = st.CreateDeck(ctx, file.Name, settings)
	}
	if err != nil {
		return fmt.Errorf("failed to open deck %q: %w", file.Name, err)
	}

	existing, err := st.ListCards(ctx, deck.ID)
	if err != nil {
		return fmt.Errorf("failed to list cards: %w", err)
	}
	fronts := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		fronts[c.Front] = struct{}{}
	}

	var fresh []model.Card
	for _, entry := range file.Cards {
		if _, ok := fronts[entry.Front]; ok {
			continue
		}
		fresh = append(fresh, model.Card{Front: entry.Front, Back: entry.Back})
	}
	if len(fresh) > 0 {
		if _, err := st.AddCards(ctx, deck.ID, fresh); err != nil {
			return fmt.Errorf("failed to add cards: %w", err)
		}
	}
	fmt.Fprintf(out, "%s: %d cards into %q (%d already present)\n",
		filepath.Base(path), len(fresh), file.Name, len(file.Cards)-len(fresh))
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <deck>",
		Short: "Export a deck as an Anki .apkg package",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportOut, "out", "", "output path (default: <deck>.apkg)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	deck, err := st.GetDeckByName(ctx, args[0])
	if err != nil {
		return deckLookupError(args[0], err)
	}
	cards, err := st.ListCards(ctx, deck.ID)
	if err != nil {
		return fmt.Errorf("failed to list cards: %w", err)
	}
	states, err := st.ListReviewStates(ctx, deck.ID)
	if err != nil {
		return fmt.Errorf("failed to load review states: %w", err)
	}

	outPath := exportOut
	if outPath == "" {
		outPath = deck.Name + ".apkg"
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	if err := ankipkg.Export(f, deck, cards, states, time.Now()); err != nil {
		_ = f.Close()
		_ = os.Remove(outPath)
		return fmt.Errorf("failed to export deck: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d cards)\n", outPath, len(cards))
	return nil
}

func newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <url>",
		Short: "Sync a git repository of deck files and import them",
		Args:  cobra.ExactArgs(1),
		RunE:  runPullCmd,
	}
}

func runPullCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	settings := deckSettingsFromConfig(fileCfg.Decks)

	url := args[0]
	dir := gitsource.CheckoutDir(config.DefaultSourcesDir(), url)
	changed, err := gitsource.Sync(context.Background(), url, dir)
	if err != nil {
		return fmt.Errorf("failed to sync %s: %w", url, err)
	}
	if changed {
		logErrf("Synced %s\n", dir)
	} else {
		logErrln("Already up to date")
	}

	paths, err := deckfile.Discover(dir)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no deck files found in %s", dir)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	for _, path := range paths {
		if err := importDeckFile(ctx, st, cmd.OutOrStdout(), path, settings); err != nil {
			return err
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsDeck, "deck", "", "deck filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	return cmd
}

func runStatsCmd(_ *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	cfg := model.StatsConfig{
		Deck:  statsDeck,
		Since: sinceTime,
		Last:  statsLast,
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	model := statsui.NewModel(st, cfg)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
}

func quotaFor(ctx context.Context, st *store.Store, deckID model.DeckID, now time.Time) (session.Quota, error) {
	y, m, d := now.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	introduced, err := st.CountIntroducedSince(ctx, deckID, dayStart)
	if err != nil {
		return session.Quota{}, fmt.Errorf("failed to count introduced cards: %w", err)
	}
	reviews, err := st.CountReviewsSince(ctx, deckID, dayStart)
	if err != nil {
		return session.Quota{}, fmt.Errorf("failed to count reviews: %w", err)
	}
	return session.Quota{IntroducedToday: introduced, ReviewsToday: reviews}, nil
}

// resolveDeck picks the deck to practice. An empty name falls through
// to the only deck when exactly one exists.
func resolveDeck(ctx context.Context, st *store.Store, name string) (model.Deck, error) {
	name = strings.TrimSpace(name)
	if name != "" {
		deck, err := st.GetDeckByName(ctx, name)
		if err != nil {
			return model.Deck{}, deckLookupError(name, err)
		}
		return deck, nil
	}

	decks, err := st.ListDecks(ctx)
	if err != nil {
		return model.Deck{}, fmt.Errorf("failed to list decks: %w", err)
	}
	switch len(decks) {
	case 0:
		return model.Deck{}, fmt.Errorf("no decks yet (run: tuica deck add <name>)")
	case 1:
		return decks[0], nil
	default:
		names := make([]string, 0, len(decks))
		for _, d := range decks {
			names = append(names, d.Name)
		}
		return model.Deck{}, fmt.Errorf("multiple decks exist, pick one with --deck (%s)", strings.Join(names, ", "))
	}
}

func deckLookupError(name string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("deck %q not found (run: tuica deck list)", name)
	}
	return fmt.Errorf("failed to look up deck %q: %w", name, err)
}

func registerSettingsFlags(cmd *cobra.Command) {
	defaults := model.DefaultDeckSettings()
	cmd.Flags().IntVar(&deckNewPerDay, "new-per-day", defaults.NewPerDay, "new cards introduced per day")
	cmd.Flags().IntVar(&deckReviewsPerDay, "reviews-per-day", defaults.ReviewsPerDay, "due reviews per day")
	cmd.Flags().IntVar(&deckMicroSession, "micro-session", defaults.MicroSession, "card cap for a practice session")
	cmd.Flags().Float64Var(&deckRetention, "retention", defaults.Retention, "desired recall probability (0-1, exclusive)")
	cmd.Flags().IntVar(&deckMaxInterval, "max-interval-days", defaults.MaxIntervalDays, "upper bound for scheduled intervals")
}

func deckSettingsFromConfig(cfg config.DecksConfig) model.DeckSettings {
	settings := model.DefaultDeckSettings()
	if cfg.NewPerDay != nil {
		settings.NewPerDay = *cfg.NewPerDay
	}
	if cfg.ReviewsPerDay != nil {
		settings.ReviewsPerDay = *cfg.ReviewsPerDay
	}
	if cfg.MicroSession != nil {
		settings.MicroSession = *cfg.MicroSession
	}
	if cfg.Retention != nil {
		settings.Retention = *cfg.Retention
	}
	if cfg.MaxIntervalDays != nil {
		settings.MaxIntervalDays = *cfg.MaxIntervalDays
	}
	return settings
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	defaults := model.DefaultDeckSettings()
	return fmt.Sprintf(`# tuica configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# deck = ""                # Deck to practice (default: the only deck, if one exists)
# mode = %q              # Session mode: due, full, mistakes
# shuffle-new = false      # Shuffle the order new cards are introduced

[decks]
# new-per-day = %d          # New cards introduced per day
# reviews-per-day = %d     # Due reviews per day
# micro-session = %d        # Card cap for a practice session
# retention = %.2f         # Desired recall probability (0-1, exclusive)
# max-interval-days = %d  # Upper bound for scheduled intervals

[scheduler]
# fuzz = false             # Jitter long intervals to spread reviews out
`,
		defaultMode,
		defaults.NewPerDay,
		defaults.ReviewsPerDay,
		defaults.MicroSession,
		defaults.Retention,
		defaults.MaxIntervalDays,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
