package tui

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/clara-labs/walkthrough/internal/content"
	"github.com/clara-labs/walkthrough/internal/session"
	"github.com/clara-labs/walkthrough/internal/sound"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Session *session.Session
	Content *content.Content
	Sound   sound.Player
	Log     *zap.Logger
	// Pace scales every animation delay. Zero fires timers immediately,
	// which is what headless tests want; the CLI defaults to 1.
	Pace float64
	// Seed fixes the point layouts. Zero seeds from the clock.
	Seed int64
	// Plain renders markdown without colour styling.
	Plain bool
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	log := config.Log
	if log == nil {
		log = zap.NewNop()
	}
	sess := config.Session
	if sess == nil {
		sess = session.New(session.Options{})
	}
	script := config.Content
	var errorMessage string
	if script == nil {
		var err error
		script, err = content.Default()
		if err != nil {
			log.Error("embedded content invalid", zap.Error(err))
			script = &content.Content{}
			errorMessage = "Walkthrough copy failed to load: " + err.Error()
		}
	}
	player := config.Sound
	if player == nil {
		player = sound.Mute{}
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	m := &model{
		config:       config,
		layout:       newPageLayout(),
		help:         help.New(),
		jobs:         map[string]jobSnapshot{},
		errorMessage: errorMessage,
	}
	m.env = &env{
		sess:   sess,
		script: script,
		sound:  sound.Safe(player, log),
		log:    log.With(zap.String("component", "tui"), zap.String("session", sess.ID())),
		pace:   config.Pace,
		rng:    rand.New(rand.NewSource(seed)),
		md:     newMarkdown(config.Plain, log),
		jobs:   newJobBus(log),
	}
	m.env.request = m.requestStage
	m.env.restart = m.requestRestart

	prev := sess.OnTransition
	sess.OnTransition = func(from, to session.Stage) {
		m.env.log.Info("stage transition", zap.Stringer("from", from), zap.Stringer("to", to))
		if prev != nil {
			prev(from, to)
		}
	}

	m.screen = newScreen(m.env, sess.Current())
	return m
}

type model struct {
	config Config
	env    *env
	screen screen
	layout pageLayout
	help   help.Model

	// pending holds a stage requested during the current update. Screens
	// never switch themselves: the root applies the request afterwards.
	pending        session.Stage
	pendingSet     bool
	restartPending bool

	jobs         map[string]jobSnapshot
	infoMessage  string
	errorMessage string
	helpVisible  bool
}

func newScreen(e *env, stage session.Stage) screen {
	switch stage {
	case session.StageSystem:
		return newSystemScreen(e)
	case session.StageDocument:
		return newDocumentScreen(e)
	case session.StageCompression:
		return newCompressionScreen(e)
	case session.StageLatent:
		return newLatentScreen(e)
	case session.StageQuery:
		return newQueryScreen(e)
	case session.StageFlow:
		return newFlowScreen(e)
	case session.StageGeneration:
		return newGenerationScreen(e)
	default:
		return newIntroScreen(e)
	}
}

func (m *model) requestStage(stage session.Stage) {
	if !stage.Valid() {
		m.env.log.Warn("ignoring invalid stage request", zap.Int("stage", int(stage)))
		return
	}
	m.pending = stage
	m.pendingSet = true
}

func (m *model) requestRestart() {
	m.restartPending = true
}

func (m *model) Init() tea.Cmd {
	return m.screen.Init()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		cmd = m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		cmd = m.screen.Update(msg)
	case jobSignalMsg:
		m.jobs[msg.Snapshot.ID] = msg.Snapshot
		return m, nil
	case jobResultEnvelope:
		m.jobs[msg.Snapshot.ID] = msg.Snapshot
		if msg.Payload == nil {
			return m, nil
		}
		next, payloadCmd := m.Update(msg.Payload)
		return next, payloadCmd
	case documentLoadedMsg:
		m.handleDocumentLoaded(msg)
		cmd = m.screen.Update(msg)
	default:
		cmd = m.screen.Update(msg)
	}
	return m, tea.Batch(cmd, m.applyPending())
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.screen.Capturing() {
		return m.screen.Update(msg)
	}
	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit
	case key.Matches(msg, keys.Help):
		m.helpVisible = !m.helpVisible
		return nil
	case key.Matches(msg, keys.NextStage):
		m.navigate(1)
		return nil
	case key.Matches(msg, keys.PrevStage):
		m.navigate(-1)
		return nil
	}
	m.errorMessage = ""
	return m.screen.Update(msg)
}

// navigate moves along the persistent menu. The full-flow screen sits
// between the latent space and the query for this purpose.
func (m *model) navigate(delta int) {
	nav := session.NavStages()
	current := m.env.sess.Current()
	if current == session.StageFlow {
		current = session.StageLatent
		if delta < 0 {
			delta = 0
		}
	}
	idx := 0
	for i, s := range nav {
		if s == current {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 || idx >= len(nav) {
		return
	}
	m.requestStage(nav[idx])
}

func (m *model) handleDocumentLoaded(msg documentLoadedMsg) {
	if msg.err != nil {
		m.errorMessage = fmt.Sprintf("Could not load %s: %v", filepath.Base(msg.path), msg.err)
		m.env.log.Warn("document load failed", zap.String("path", msg.path), zap.Error(msg.err))
		return
	}
	m.env.sess.SetDocument(msg.text)
	words := len(strings.Fields(msg.text))
	m.infoMessage = fmt.Sprintf("Loaded %s (%d words).", filepath.Base(msg.path), words)
	m.errorMessage = ""
	m.env.log.Info("document loaded", zap.String("path", msg.path), zap.Int("words", words))
}

// applyPending performs a stage change requested during this update: the
// old screen is torn down before the new one is built and started.
func (m *model) applyPending() tea.Cmd {
	switch {
	case m.restartPending:
		m.restartPending = false
		m.pendingSet = false
		m.screen.Teardown()
		m.env.sess.Restart()
		m.infoMessage = ""
		m.errorMessage = ""
	case m.pendingSet:
		m.pendingSet = false
		if m.pending == m.env.sess.Current() {
			return nil
		}
		m.screen.Teardown()
		m.env.sess.GoTo(m.pending)
		m.errorMessage = ""
	default:
		return nil
	}
	m.screen = newScreen(m.env, m.env.sess.Current())
	return m.screen.Init()
}

// Stage is the stage whose screen is showing.
func (m *model) Stage() session.Stage {
	return m.screen.Stage()
}
