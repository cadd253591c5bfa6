package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clara-labs/walkthrough/internal/config"
	"github.com/clara-labs/walkthrough/internal/document"
	"github.com/clara-labs/walkthrough/internal/logging"
	"github.com/clara-labs/walkthrough/internal/narrate"
	"github.com/clara-labs/walkthrough/internal/session"
	"github.com/clara-labs/walkthrough/internal/sound"
	"github.com/clara-labs/walkthrough/internal/tui"
)

// flags mirror config.Config. Only flags the user actually set override the
// environment.
type flags struct {
	ratio       int
	topK        int
	mute        bool
	pace        float64
	doc         string
	stage       string
	noAltScreen bool
	logFile     string
	logLevel    string
	seed        int64

	flow    bool
	noColor bool
	sound   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:          "clara",
		Short:        "Interactive walkthrough of CLaRa document compression and retrieval",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, f)
		},
	}

	pf := root.PersistentFlags()
	pf.IntVar(&f.ratio, "ratio", 16, "compression ratio (8-64, step 4)")
	pf.IntVar(&f.topK, "top-k", 4, "retrieved tokens (1-8)")
	pf.Float64Var(&f.pace, "pace", 1, "animation speed multiplier, 0 runs instantly")
	pf.StringVar(&f.doc, "doc", "", "load the initial document from a text or PDF file")
	pf.StringVar(&f.stage, "stage", "", "start on a stage ("+stageList()+")")
	pf.StringVar(&f.logFile, "log-file", "", "write JSON logs to this file")
	pf.StringVar(&f.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.Flags().BoolVar(&f.mute, "mute", false, "disable audio cues")
	root.Flags().BoolVar(&f.noAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")
	root.Flags().Int64Var(&f.seed, "seed", 0, "fix the latent-space layout (0 picks one at random)")

	root.AddCommand(newNarrateCmd(f))
	return root
}

func newNarrateCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "narrate",
		Short: "Print the walkthrough as text without the interactive UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNarrate(cmd, f)
		},
	}
	cmd.Flags().BoolVar(&f.flow, "flow", false, "take the full-flow detour after the latent space")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "disable coloured output")
	cmd.Flags().BoolVar(&f.sound, "sound", false, "ring the terminal bell on cues")
	return cmd
}

func stageList() string {
	names := make([]string, 0, len(session.Stages()))
	for _, s := range session.Stages() {
		names = append(names, s.String())
	}
	return strings.Join(names, ", ")
}

// loadConfig layers explicitly set flags over the environment.
func loadConfig(cmd *cobra.Command, f *flags) (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, err
	}
	changed := cmd.Flags().Changed
	if changed("ratio") {
		cfg.CompressionRatio = f.ratio
	}
	if changed("top-k") {
		cfg.TopK = f.topK
	}
	if changed("mute") {
		cfg.Mute = f.mute
	}
	if changed("pace") {
		cfg.Pace = f.pace
	}
	if changed("doc") {
		cfg.DocumentPath = f.doc
	}
	if changed("no-alt-screen") {
		cfg.NoAltScreen = f.noAltScreen
	}
	if changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	cfg.Normalize()
	return cfg, nil
}

// setup builds the logger and the session shared by both commands.
func setup(cfg config.Config, stage string) (*zap.Logger, *session.Session, error) {
	log, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	var doc string
	if cfg.DocumentPath != "" {
		doc, err = document.Load(cfg.DocumentPath)
		if err != nil {
			_ = log.Sync()
			return nil, nil, fmt.Errorf("load document: %w", err)
		}
	}

	sess := session.New(session.Options{
		Document:         doc,
		CompressionRatio: cfg.CompressionRatio,
		TopK:             cfg.TopK,
	})
	if stage != "" {
		s, err := session.ParseStage(stage)
		if err != nil {
			_ = log.Sync()
			return nil, nil, err
		}
		sess.GoTo(s)
	}
	log.Info("session started",
		zap.String("session", sess.ID()),
		zap.Stringer("stage", sess.Current()),
		zap.Int("compression_ratio", sess.CompressionRatio()),
		zap.Int("top_k", sess.TopK()),
		zap.Float64("pace", cfg.Pace),
		zap.Bool("document_loaded", doc != ""),
	)
	return log, sess, nil
}

func runTUI(cmd *cobra.Command, f *flags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	log, sess, err := setup(cfg, f.stage)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var player sound.Player = sound.Mute{}
	if !cfg.Mute {
		player = sound.NewBell(os.Stderr, log)
	}

	opts := []tea.ProgramOption{}
	if !cfg.NoAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Session: sess,
			Sound:   player,
			Log:     log,
			Pace:    cfg.Pace,
			Seed:    f.seed,
		}),
		opts...,
	)
	if _, err := program.Run(); err != nil {
		log.Error("program error", zap.Error(err))
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

func runNarrate(cmd *cobra.Command, f *flags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	log, sess, err := setup(cfg, f.stage)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var player sound.Player = sound.Mute{}
	if f.sound {
		player = sound.NewBell(cmd.ErrOrStderr(), log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = narrate.Run(ctx, narrate.Options{
		Out:     cmd.OutOrStdout(),
		Session: sess,
		Sound:   player,
		Log:     log,
		Pace:    cfg.Pace,
		Flow:    f.flow,
		NoColor: f.noColor,
	})
	if err != nil && ctx.Err() == nil {
		log.Error("narration failed", zap.Error(err))
		return err
	}
	return nil
}
