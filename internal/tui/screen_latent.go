package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clara-labs/walkthrough/internal/session"
	"github.com/clara-labs/walkthrough/internal/sound"
	"github.com/clara-labs/walkthrough/internal/timeline"
	"github.com/clara-labs/walkthrough/internal/viz"
)

const (
	rotateInterval = 120 * time.Millisecond
	rotateStep     = 0.04
	kindRotate     = "rotate"
)

// latentScreen shows the memory tokens as a slowly rotating cloud with the
// top-K selection highlighted.
type latentScreen struct {
	base
	memo     *viz.Memo
	angle    float64
	showCode bool
}

func newLatentScreen(e *env) *latentScreen {
	return &latentScreen{
		base: base{env: e, stage: session.StageLatent, timers: e.newTimers()},
		memo: viz.NewMemo(viz.LayoutSphere3D, e.rng),
	}
}

// Init starts the rotation. With pace zero timers fire immediately, so the
// cloud stays still rather than spinning the update loop.
func (s *latentScreen) Init() tea.Cmd {
	if s.env.pace <= 0 {
		return nil
	}
	_, cmd := s.timers.Arm(rotateInterval, kindRotate)
	return cmd
}

func (s *latentScreen) count() int {
	return viz.TargetTokenCount(s.env.sess.DocumentWordCount(), s.env.sess.CompressionRatio(), viz.LatentFloor)
}

func (s *latentScreen) points() []viz.Point {
	n := s.count()
	return viz.Points(s.memo.Get(n), viz.TopKIndices(s.env.sess.TopK(), n))
}

func (s *latentScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case timeline.Fired:
		if _, ok := s.timers.Accept(msg); !ok {
			return nil
		}
		s.angle += rotateStep
		_, cmd := s.timers.Arm(rotateInterval, kindRotate)
		return cmd
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Less):
			s.env.sess.StepTopK(-1)
		case key.Matches(msg, keys.More):
			s.env.sess.StepTopK(1)
		case key.Matches(msg, keys.Code):
			s.showCode = !s.showCode
		case key.Matches(msg, keys.Flow):
			s.env.cue(sound.Whoosh)
			s.env.request(session.StageFlow)
		case key.Matches(msg, keys.Confirm):
			s.env.cue(sound.Step)
			s.env.request(session.StageQuery)
		}
	}
	return nil
}

func (s *latentScreen) Teardown() {
	s.timers.CancelAll()
}

func (s *latentScreen) View(layout pageLayout) string {
	width := layout.bodyWidth
	points := s.points()
	cloud := panelStyle.Render(projector3D(points, s.angle, layout.projectorWidth, layout.projectorHeight))

	k := s.env.sess.TopK()
	var selected []string
	for _, p := range points {
		if p.Selected {
			selected = append(selected, selectedStyle.Render("◉ "+p.Label))
		}
	}
	side := []string{
		sectionHeaderStyle.Render(fmt.Sprintf("%d memory tokens", len(points))),
		fmt.Sprintf("%s %s", helperStyle.Render("top-K"), orbStyle.Render(fmt.Sprintf("%d", k))),
		strings.Join(selected, "\n"),
		helperStyle.Render("Queries land in this same space.\nRetrieval is proximity."),
	}
	sideWidth := width - lipgloss.Width(cloud) - 2
	var body string
	if sideWidth >= 20 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, cloud, "  ", lipgloss.NewStyle().Width(sideWidth).Render(joinNonEmpty(side)))
	} else {
		body = joinNonEmpty(append([]string{cloud}, side...))
	}

	parts := []string{s.header(width), body}
	if s.showCode {
		parts = append(parts, codeStyle.Render(strings.TrimRight(s.env.script.Snippet(k), "\n")))
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		ctaStyle.Render("enter  Ask a question"),
		"   ",
		secondaryStyle.Render("f  Watch the full flow"),
	)
	return joinNonEmpty(append(parts, buttons))
}

func (s *latentScreen) Keys() []key.Binding {
	code := "show code"
	if s.showCode {
		code = "hide code"
	}
	return []key.Binding{
		withHelp(keys.Less, "fewer top-K"),
		withHelp(keys.More, "more top-K"),
		withHelp(keys.Code, code),
		keys.Flow,
		withHelp(keys.Confirm, "query"),
	}
}
