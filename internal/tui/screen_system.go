package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/clara-labs/walkthrough/internal/session"
	"github.com/clara-labs/walkthrough/internal/sound"
	"github.com/clara-labs/walkthrough/internal/viz"
)

// systemScreen is the static end-to-end overview: pipeline, embeddings
// explainer and what the generator does.
type systemScreen struct {
	base
	sample []viz.Point
}

func newSystemScreen(e *env) *systemScreen {
	layout := viz.LayoutRing2D(e.rng, 8)
	return &systemScreen{
		base:   base{env: e, stage: session.StageSystem},
		sample: viz.Points(layout, viz.TopKIndices(3, len(layout))),
	}
}

func (s *systemScreen) Init() tea.Cmd { return nil }

func (s *systemScreen) Update(msg tea.Msg) tea.Cmd {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, keys.Confirm) {
		s.env.cue(sound.Step)
		s.env.request(session.StageDocument)
	}
	return nil
}

func (s *systemScreen) View(layout pageLayout) string {
	script := s.env.script
	width := layout.bodyWidth

	var pipeline strings.Builder
	for i, step := range script.Pipeline {
		if i > 0 {
			pipeline.WriteString(helperStyle.Render("   ↓") + "\n")
		}
		fmt.Fprintf(&pipeline, "%s %s  %s\n",
			stepDoneStyle.Render(fmt.Sprintf("%2d", i+1)),
			sectionHeaderStyle.Render(step.Label),
			helperStyle.Render(step.Desc))
	}

	inner := width - 4
	explainer := joinNonEmpty([]string{
		sectionHeaderStyle.Render(script.Embeddings.Title),
		bodyStyle.Render(wordwrap.String(strings.TrimSpace(script.Embeddings.Body), inner)),
		projector2D(s.sample, 3, "query", minInt(inner, 40), 9),
		helperStyle.Render(wordwrap.String(strings.TrimSpace(script.Embeddings.Note), inner)),
	})

	callouts := []string{sectionHeaderStyle.Render("Generator (LLM)")}
	for _, c := range script.LLMCallouts {
		callouts = append(callouts, hanging(c, "• ", inner))
	}

	return joinNonEmpty([]string{
		s.header(width),
		strings.TrimRight(pipeline.String(), "\n"),
		panelStyle.Width(width - 2).Render(explainer),
		panelStyle.Width(width - 2).Render(strings.Join(callouts, "\n")),
		ctaStyle.Render("enter  Start with a document"),
	})
}

func (s *systemScreen) Keys() []key.Binding {
	return []key.Binding{withHelp(keys.Confirm, "document")}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
