package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clara-labs/walkthrough/internal/session"
	"github.com/clara-labs/walkthrough/internal/sound"
)

type introScreen struct {
	base
}

func newIntroScreen(e *env) *introScreen {
	return &introScreen{base: base{env: e, stage: session.StageIntro}}
}

func (s *introScreen) Init() tea.Cmd { return nil }

func (s *introScreen) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(km, keys.Confirm):
		s.env.cue(sound.Step)
		s.env.request(session.StageSystem)
	case key.Matches(km, keys.Skip):
		s.env.cue(sound.Step)
		s.env.request(session.StageDocument)
	}
	return nil
}

func (s *introScreen) View(layout pageLayout) string {
	script := s.env.script
	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		ctaStyle.Render("enter  See how it works"),
		"   ",
		secondaryStyle.Render("d  Skip to the document"),
	)
	return joinNonEmpty([]string{
		renderLogo(),
		sectionHeaderStyle.Render(script.Subtitle),
		taglineStyle.Width(layout.bodyWidth).Render(script.Tagline),
		buttons,
	})
}

func (s *introScreen) Keys() []key.Binding {
	return []key.Binding{withHelp(keys.Confirm, "system overview"), keys.Skip}
}
