package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/clara-labs/walkthrough/internal/sequence"
	"github.com/clara-labs/walkthrough/internal/session"
	"github.com/clara-labs/walkthrough/internal/timeline"
)

type queryScreen struct {
	base
	machine *sequence.Query
	input   textinput.Model
	spinner spinner.Model
	bar     progress.Model

	// suggestion is the highlighted entry, -1 when none is.
	suggestion int
	err        string
}

func newQueryScreen(e *env) *queryScreen {
	input := textinput.New()
	input.Prompt = "› "
	input.Placeholder = "Ask something about the document…"
	input.CharLimit = 280
	input.SetValue(e.sess.Query())
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = queryStyle

	timers := e.newTimers()
	return &queryScreen{
		base:       base{env: e, stage: session.StageQuery, timers: timers},
		machine:    sequence.NewQuery(timers, e.hooks()),
		input:      input,
		spinner:    spin,
		bar:        newBar(),
		suggestion: -1,
	}
}

func (s *queryScreen) Init() tea.Cmd {
	return textinput.Blink
}

func (s *queryScreen) Capturing() bool {
	return s.input.Focused()
}

func (s *queryScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case timeline.Fired:
		return s.machine.Update(msg)
	case spinner.TickMsg:
		if s.machine.Phase() != sequence.QueryThinking {
			return nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd
	case tea.KeyMsg:
		if s.machine.Phase() != sequence.QueryIdle {
			return nil
		}
		return s.updateKey(msg)
	}
	if s.input.Focused() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd
	}
	return nil
}

func (s *queryScreen) updateKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Up):
		s.cycle(-1)
		return nil
	case key.Matches(msg, keys.Down):
		s.cycle(1)
		return nil
	case key.Matches(msg, keys.Confirm):
		return s.submit()
	case key.Matches(msg, keys.Leave) && s.input.Focused():
		s.input.Blur()
		return nil
	case !s.input.Focused():
		if key.Matches(msg, keys.Edit) {
			return s.input.Focus()
		}
		return nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.env.sess.SetQuery(s.input.Value())
	s.err = ""
	return cmd
}

// cycle moves the highlighted suggestion and copies it into the input.
func (s *queryScreen) cycle(delta int) {
	list := s.env.script.Suggestions
	if len(list) == 0 {
		return
	}
	switch {
	case s.suggestion < 0 && delta < 0:
		s.suggestion = len(list) - 1
	case s.suggestion < 0:
		s.suggestion = 0
	default:
		s.suggestion = (s.suggestion + delta + len(list)) % len(list)
	}
	s.input.SetValue(list[s.suggestion])
	s.input.CursorEnd()
	s.env.sess.SetQuery(list[s.suggestion])
	s.err = ""
}

func (s *queryScreen) submit() tea.Cmd {
	q := strings.TrimSpace(s.input.Value())
	s.env.sess.SetQuery(q)
	cmd, ok := s.machine.Start(q)
	if !ok {
		s.err = "Type a question or pick a suggestion first."
		return nil
	}
	s.err = ""
	s.input.Blur()
	return tea.Batch(cmd, s.spinner.Tick)
}

func (s *queryScreen) Teardown() {
	s.machine.Teardown()
}

func (s *queryScreen) View(layout pageLayout) string {
	width := layout.bodyWidth
	s.input.Width = width - 6

	frame := panelStyle
	if s.input.Focused() {
		frame = activePanelStyle
	}
	parts := []string{s.header(width), frame.Width(width - 2).Render(s.input.View())}

	switch s.machine.Phase() {
	case sequence.QueryIdle:
		parts = append(parts, s.suggestionsView(), errorStyle.Render(s.err), ctaStyle.Render("enter  Search the latent space"))
	default:
		steps := s.env.script.QueryThinking
		rows := make([]string, 0, len(steps)+1)
		for i, step := range steps {
			rows = append(rows, thinkingRow(i, s.machine.Step(), step.Label, step.Desc))
		}
		s.bar.Width = minInt(48, width-8)
		rows = append(rows, s.spinner.View()+" "+s.bar.ViewAs(s.machine.Progress()))
		parts = append(parts, activePanelStyle.Width(width-2).Render(strings.Join(rows, "\n")))
	}
	return joinNonEmpty(parts)
}

func (s *queryScreen) suggestionsView() string {
	list := s.env.script.Suggestions
	if len(list) == 0 {
		return ""
	}
	rows := []string{helperStyle.Render("Try one (↑/↓):")}
	for i, q := range list {
		if i == s.suggestion {
			rows = append(rows, selectedStyle.Render("› "+q))
			continue
		}
		rows = append(rows, helperStyle.Render("  "+q))
	}
	return strings.Join(rows, "\n")
}

func (s *queryScreen) Keys() []key.Binding {
	if s.machine.Phase() != sequence.QueryIdle {
		return nil
	}
	bindings := []key.Binding{keys.Up, keys.Down, withHelp(keys.Confirm, "search")}
	if s.input.Focused() {
		return append(bindings, withHelp(keys.Leave, "leave input"))
	}
	return append(bindings, withHelp(keys.Edit, "type"))
}
