package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/clara-labs/walkthrough/internal/content"
	"github.com/clara-labs/walkthrough/internal/sequence"
	"github.com/clara-labs/walkthrough/internal/session"
	"github.com/clara-labs/walkthrough/internal/timeline"
)

type generationScreen struct {
	base
	machine *sequence.Generation
	spinner spinner.Model
}

func newGenerationScreen(e *env) *generationScreen {
	spin := spinner.New()
	spin.Spinner = spinner.Line
	spin.Style = orbStyle
	timers := e.newTimers()
	return &generationScreen{
		base:    base{env: e, stage: session.StageGeneration, timers: timers},
		machine: sequence.NewGeneration(timers, e.hooks()),
		spinner: spin,
	}
}

func (s *generationScreen) answer() string {
	return s.env.script.Responder(content.ResponderFull).Answer(s.env.sess.Query())
}

func (s *generationScreen) Init() tea.Cmd {
	return tea.Batch(s.machine.Reset(s.answer()), s.spinner.Tick)
}

func (s *generationScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case timeline.Fired:
		return s.machine.Update(msg)
	case documentLoadedMsg:
		if msg.err != nil {
			return nil
		}
		return tea.Batch(s.machine.Reset(s.answer()), s.spinner.Tick)
	case spinner.TickMsg:
		if s.machine.Phase() == sequence.GenerationDone {
			return nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd
	case tea.KeyMsg:
		if key.Matches(msg, keys.Restart) || key.Matches(msg, keys.Confirm) {
			s.env.restart()
		}
	}
	return nil
}

func (s *generationScreen) Teardown() {
	s.machine.Teardown()
}

func (s *generationScreen) View(layout pageLayout) string {
	width := layout.bodyWidth
	k := s.env.sess.TopK()

	var phase string
	switch s.machine.Phase() {
	case sequence.GenerationRetrieving:
		phase = s.spinner.View() + " " + stepActiveStyle.Render(fmt.Sprintf("Retrieving top-%d memory tokens…", k))
	case sequence.GenerationGenerating:
		phase = s.spinner.View() + " " + stepActiveStyle.Render("Generating answer…")
	default:
		phase = stepDoneStyle.Render("✓ Answer ready")
	}

	query := strings.TrimSpace(s.env.sess.Query())
	if query == "" {
		query = "(no question asked)"
	}
	answer := s.machine.Displayed()
	if s.machine.Phase() == sequence.GenerationGenerating {
		answer += "▌"
	}

	callout := fmt.Sprintf("The generator conditions on your query plus the top-%d retrieved memory tokens.", k)
	parts := []string{
		s.header(width),
		helperStyle.Render(wordwrap.String(callout, width)),
		phase,
		queryEchoStyle.Render(hanging(query, "Q: ", width)),
	}
	if answer != "" {
		parts = append(parts, panelStyle.Width(width-2).Render(answerStyle.Render(wordwrap.String(answer, width-6))))
	}
	if s.machine.Phase() == sequence.GenerationDone {
		parts = append(parts,
			helperStyle.Render(wordwrap.String(s.env.script.Grounding, width)),
			ctaStyle.Render("r  Start over"))
	}
	return joinNonEmpty(parts)
}

func (s *generationScreen) Keys() []key.Binding {
	return []key.Binding{keys.Restart}
}
