package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/clara-labs/walkthrough/internal/sequence"
	"github.com/clara-labs/walkthrough/internal/session"
	"github.com/clara-labs/walkthrough/internal/timeline"
	"github.com/clara-labs/walkthrough/internal/viz"
)

type compressionScreen struct {
	base
	machine *sequence.Compression
	bar     progress.Model
}

func newCompressionScreen(e *env) *compressionScreen {
	timers := e.newTimers()
	s := &compressionScreen{
		base: base{env: e, stage: session.StageCompression, timers: timers},
		bar:  newBar(),
	}
	s.machine = sequence.NewCompression(timers, s.target(), e.hooks())
	return s
}

func newBar() progress.Model {
	return progress.New(
		progress.WithGradient(string(neonPurple), string(neonCyan)),
		progress.WithoutPercentage(),
	)
}

// target is the memory-token count for the current document and ratio.
func (s *compressionScreen) target() int {
	words := viz.WordsOf(s.env.sess.Document(), viz.MaxCompressionWords)
	return viz.TargetTokenCount(len(words), s.env.sess.CompressionRatio(), viz.CompressionFloor)
}

func (s *compressionScreen) Init() tea.Cmd { return nil }

func (s *compressionScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case timeline.Fired:
		return s.machine.Update(msg)
	case documentLoadedMsg:
		return s.machine.SetTarget(s.target())
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Less):
			s.env.sess.StepCompressionRatio(-1)
			return s.machine.SetTarget(s.target())
		case key.Matches(msg, keys.More):
			s.env.sess.StepCompressionRatio(1)
			return s.machine.SetTarget(s.target())
		case key.Matches(msg, keys.Confirm):
			switch s.machine.Phase() {
			case sequence.CompressionWords:
				return s.machine.Start()
			case sequence.CompressionFlying:
				return s.machine.FormTokens()
			case sequence.CompressionOrbs:
				s.machine.Continue()
			}
		}
	}
	return nil
}

func (s *compressionScreen) Teardown() {
	s.machine.Teardown()
}

func (s *compressionScreen) View(layout pageLayout) string {
	width := layout.bodyWidth
	parts := []string{s.header(width), s.sliderView(width)}

	switch s.machine.Phase() {
	case sequence.CompressionWords:
		parts = append(parts, s.cloudView(width), ctaStyle.Render("enter  Compress"))
	case sequence.CompressionThinking:
		parts = append(parts, s.thinkingView(width))
	case sequence.CompressionFlying:
		parts = append(parts, s.flyingView(width), ctaStyle.Render("enter  Form memory tokens"))
	case sequence.CompressionOrbs:
		parts = append(parts, s.orbsView(width), ctaStyle.Render("enter  Into the latent space"))
	}
	return joinNonEmpty(parts)
}

func (s *compressionScreen) sliderView(width int) string {
	r := session.CompressionRange
	ratio := s.env.sess.CompressionRatio()
	s.bar.Width = minInt(40, width-24)
	return fmt.Sprintf("%s %2d %s %d   %s",
		helperStyle.Render("ratio"),
		r.Min,
		s.bar.ViewAs(viz.Fraction(ratio-r.Min, r.Max-r.Min)),
		r.Max,
		orbStyle.Render(fmt.Sprintf("%dx", ratio)))
}

func (s *compressionScreen) cloudView(width int) string {
	all := viz.WordsOf(s.env.sess.Document(), viz.MaxCompressionWords)
	shown := all
	if len(shown) > viz.CloudWords {
		shown = shown[:viz.CloudWords]
	}
	chips := make([]string, 0, len(shown)+1)
	for _, w := range shown {
		chips = append(chips, wordStyle.Render(w))
	}
	if extra := len(all) - len(shown); extra > 0 {
		chips = append(chips, helperStyle.Render(fmt.Sprintf("+%d more", extra)))
	}
	return flowChips(chips, width)
}

func (s *compressionScreen) thinkingView(width int) string {
	steps := s.env.script.CompressionThinking
	current := s.machine.ThinkingStep()
	rows := make([]string, 0, len(steps)+1)
	for i, step := range steps {
		rows = append(rows, thinkingRow(i, current, step.Label, step.Desc))
	}
	s.bar.Width = minInt(48, width-4)
	rows = append(rows, s.bar.ViewAs(s.machine.Progress()))
	return activePanelStyle.Width(width - 2).Render(strings.Join(rows, "\n"))
}

func (s *compressionScreen) flyingView(width int) string {
	words := viz.WordsOf(s.env.sess.Document(), viz.FlyingWords)
	line := flyingStyle.Render(strings.Join(words, " ")) + "  " + orbStyle.Render("→ → →")
	return wordwrap.String(line, width)
}

func (s *compressionScreen) orbsView(width int) string {
	orbs := strings.Repeat("● ", s.machine.Orbs())
	summary := fmt.Sprintf("%d memory tokens at %dx", s.machine.Target(), s.env.sess.CompressionRatio())
	return joinNonEmpty([]string{
		orbStyle.Render(wordwrap.String(strings.TrimSpace(orbs), width)),
		helperStyle.Render(summary),
	})
}

// thinkingRow marks step i done, active or pending relative to current.
func thinkingRow(i, current int, label, desc string) string {
	switch {
	case i < current:
		return stepDoneStyle.Render("✓ " + label)
	case i == current:
		row := stepActiveStyle.Render("› " + label)
		if desc != "" {
			row += "  " + helperStyle.Render(desc)
		}
		return row
	default:
		return stepPendingStyle.Render("  " + label)
	}
}

// flowChips lays rendered chips out left to right, wrapping at width.
func flowChips(chips []string, width int) string {
	var (
		lines []string
		row   []string
		used  int
	)
	for _, c := range chips {
		w := lipgloss.Width(c) + 1
		if used+w > width && len(row) > 0 {
			lines = append(lines, strings.Join(row, " "))
			row, used = nil, 0
		}
		row = append(row, c)
		used += w
	}
	if len(row) > 0 {
		lines = append(lines, strings.Join(row, " "))
	}
	return strings.Join(lines, "\n")
}

func (s *compressionScreen) Keys() []key.Binding {
	confirm := map[sequence.CompressionPhase]string{
		sequence.CompressionWords:  "compress",
		sequence.CompressionFlying: "form tokens",
		sequence.CompressionOrbs:   "latent space",
	}
	bindings := []key.Binding{withHelp(keys.Less, "lower ratio"), withHelp(keys.More, "higher ratio")}
	if desc, ok := confirm[s.machine.Phase()]; ok {
		bindings = append(bindings, withHelp(keys.Confirm, desc))
	}
	return bindings
}
