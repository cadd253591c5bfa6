package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/clara-labs/walkthrough/internal/content"
	"github.com/clara-labs/walkthrough/internal/sequence"
	"github.com/clara-labs/walkthrough/internal/session"
	"github.com/clara-labs/walkthrough/internal/timeline"
	"github.com/clara-labs/walkthrough/internal/viz"
)

// flowScreen is the six-step projector walkthrough of one retrieval.
type flowScreen struct {
	base
	machine *sequence.Flow
	memo    *viz.Memo
	query   string
}

func newFlowScreen(e *env) *flowScreen {
	query := strings.TrimSpace(e.sess.Query())
	if query == "" {
		query = e.script.DefaultFlowQuery
	}
	answer := e.script.Responder(content.ResponderBrief).Answer(query)
	timers := e.newTimers()
	return &flowScreen{
		base:    base{env: e, stage: session.StageFlow, timers: timers},
		machine: sequence.NewFlow(timers, answer, e.hooks()),
		memo:    viz.NewMemo(viz.LayoutRing2D, e.rng),
		query:   query,
	}
}

func (s *flowScreen) Init() tea.Cmd { return nil }

func (s *flowScreen) points() []viz.Point {
	n := viz.TargetTokenCount(s.env.sess.DocumentWordCount(), viz.FlowCompressionRatio, viz.LatentFloor)
	return viz.Points(s.memo.Get(n), viz.TopKIndices(s.env.sess.TopK(), n))
}

func (s *flowScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case timeline.Fired:
		return s.machine.Update(msg)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Prev):
			return s.machine.Prev()
		case key.Matches(msg, keys.Next):
			return s.machine.Next()
		case key.Matches(msg, keys.Jump):
			n, err := strconv.Atoi(msg.String())
			if err != nil {
				return nil
			}
			return s.machine.Jump(n)
		case key.Matches(msg, keys.Autoplay):
			return s.machine.ToggleAutoplay()
		case key.Matches(msg, keys.Speed):
			return s.machine.ToggleSpeed()
		case key.Matches(msg, keys.Confirm):
			s.machine.Continue()
		}
	}
	return nil
}

func (s *flowScreen) Teardown() {
	s.machine.Teardown()
}

func (s *flowScreen) View(layout pageLayout) string {
	width := layout.bodyWidth
	step := s.machine.Step()

	parts := []string{s.header(width), s.stepperView()}
	if card := s.cardView(step); card != "" {
		parts = append(parts, activePanelStyle.Width(width-2).Render(wordwrap.String(card, width-6)))
	}

	label := ""
	if s.machine.Reached(2) {
		label = "Q: " + s.query
	}
	space := panelStyle.Render(projector2D(s.points(), step, label, layout.projectorWidth, layout.projectorHeight))
	side := s.sideView(step)
	if sideWidth := width - lipgloss.Width(space) - 2; sideWidth >= 20 {
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, space, "  ", lipgloss.NewStyle().Width(sideWidth).Render(side)))
	} else {
		parts = append(parts, space, side)
	}

	if s.machine.Reached(6) {
		answer := s.machine.Displayed()
		if s.machine.Typing() {
			answer += "▌"
		}
		parts = append(parts,
			panelStyle.Width(width-2).Render(answerStyle.Render(wordwrap.String(answer, width-6))),
			ctaStyle.Render("enter  See full generation"))
	}
	return joinNonEmpty(parts)
}

func (s *flowScreen) stepperView() string {
	step := s.machine.Step()
	cells := make([]string, 0, sequence.FlowSteps)
	for i := 1; i <= sequence.FlowSteps; i++ {
		text := fmt.Sprintf(" %d ", i)
		switch {
		case i == step:
			cells = append(cells, navCurrentStyle.Render(text))
		case i < step:
			cells = append(cells, stepDoneStyle.Render(text))
		default:
			cells = append(cells, stepPendingStyle.Render(text))
		}
	}
	state := "paused"
	if s.machine.Autoplay() {
		state = "playing"
	}
	meta := helperStyle.Render(fmt.Sprintf("  %d/%d · %s · %s", step, sequence.FlowSteps, state, s.machine.Speed()))
	return strings.Join(cells, helperStyle.Render("─")) + meta
}

func (s *flowScreen) cardView(step int) string {
	steps := s.env.script.FlowSteps
	if step < 1 || step > len(steps) {
		return ""
	}
	card := steps[step-1]
	return sectionHeaderStyle.Render(card.Label) + "\n" + bodyStyle.Render(card.Desc)
}

// sideView shows where the query and the retrieved tokens go.
func (s *flowScreen) sideView(step int) string {
	rows := []string{}
	if s.machine.Reached(2) {
		rows = append(rows, queryStyle.Render("◆ Query")+helperStyle.Render(" → same space"))
	}
	if s.machine.Reached(4) {
		rows = append(rows, selectedStyle.Render(fmt.Sprintf("◉ Top-%d", s.env.sess.TopK())))
	}
	zone := stepPendingStyle
	if s.machine.Reached(5) {
		rows = append(rows, helperStyle.Render("Top-K → Generator (LLM)"))
		zone = stepActiveStyle
	}
	llm := "Generator (LLM)"
	if step >= 6 {
		llm += "\n" + helperStyle.Render("query + retrieved tokens")
	}
	rows = append(rows, legendBoxStyle.Render(zone.Render(llm)))
	return strings.Join(rows, "\n\n")
}

func (s *flowScreen) Keys() []key.Binding {
	play := "auto-play"
	if s.machine.Autoplay() {
		play = "pause"
	}
	bindings := []key.Binding{
		keys.Prev,
		keys.Next,
		keys.Jump,
		withHelp(keys.Autoplay, play),
		withHelp(keys.Speed, "speed: "+s.machine.Speed().String()),
	}
	if s.machine.AtLastStep() {
		bindings = append(bindings, withHelp(keys.Confirm, "generation"))
	}
	return bindings
}
