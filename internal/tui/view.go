package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/clara-labs/walkthrough/internal/session"
	"github.com/clara-labs/walkthrough/internal/sound"
)

func (m *model) View() string {
	parts := []string{}
	if m.screen.Stage() != session.StageIntro {
		parts = append(parts, m.heroView())
	}
	parts = append(parts, m.navView(), m.screen.View(m.layout))
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(m.infoMessage))
	}
	parts = append(parts, m.footerView())
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	script := m.env.script
	return titleStyle.Render(script.Title) + " " + taglineStyle.Render(script.Subtitle)
}

func (m *model) navView() string {
	current := m.screen.Stage()
	items := make([]string, 0, len(session.NavStages()))
	for _, s := range session.NavStages() {
		label := s.Label()
		if s == current || (current == session.StageFlow && s == session.StageLatent) {
			items = append(items, navCurrentStyle.Render(label))
			continue
		}
		items = append(items, navItemStyle.Render(label))
	}
	nav := strings.Join(items, "")
	if current == session.StageFlow {
		nav += " " + navCurrentStyle.Render("↬ "+current.Label())
	}
	return nav
}

func (m *model) footerView() string {
	footer := []string{m.sessionMeterView()}
	if m.helpVisible {
		footer = append(footer, m.keyLegendView())
	} else {
		m.help.Width = m.layout.bodyWidth
		bindings := append(m.screen.Keys(), keys.NextStage, keys.Help)
		footer = append(footer, m.help.ShortHelpView(bindings))
	}
	return strings.Join(footer, "\n")
}

func (m *model) sessionMeterView() string {
	sess := m.env.sess
	stats := []string{
		fmt.Sprintf("Stage %s", sess.Current().Label()),
		fmt.Sprintf("Ratio %dx", sess.CompressionRatio()),
		fmt.Sprintf("Top-K %d", sess.TopK()),
	}
	if _, muted := m.config.Sound.(sound.Mute); muted || m.config.Sound == nil {
		stats = append(stats, "Sound off")
	} else {
		stats = append(stats, "Sound on")
	}
	if jobBadges := m.jobStatusBadges(); len(jobBadges) > 0 {
		stats = append(stats, jobBadges...)
	}
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

// jobStatusBadges lists the jobs still running.
func (m *model) jobStatusBadges() []string {
	ids := make([]string, 0, len(m.jobs))
	for id := range m.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var badges []string
	for _, id := range ids {
		job := m.jobs[id]
		if job.Status == jobStatusRunning {
			badges = append(badges, job.Kind.label()+"…")
		}
	}
	return badges
}

func (m *model) keyLegendView() string {
	groups := [][]key.Binding{
		m.screen.Keys(),
		{keys.NextStage, keys.PrevStage, keys.Help, keys.Quit},
	}
	rows := []string{sectionHeaderStyle.Render("Keys")}
	const columns = 3
	for _, group := range groups {
		for i := 0; i < len(group); i += columns {
			end := i + columns
			if end > len(group) {
				end = len(group)
			}
			var cells []string
			for _, b := range group[i:end] {
				h := b.Help()
				cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(h.Key), keyDescStyle.Render(" "+h.Desc+"  ")))
			}
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		}
	}
	rows = append(rows, helperStyle.Render("ctrl+c always quits, even while typing."))
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func joinNonEmpty(parts []string) string {
	var cb contentBuilder
	for _, part := range parts {
		cb.Section(part)
	}
	return strings.TrimSuffix(cb.String(), "\n")
}

// renderLogo draws the block-letter logo with a one-cell drop shadow.
func renderLogo() string {
	if len(logoArtLines) == 0 {
		return ""
	}
	width := 0
	lineRunes := make([][]rune, len(logoArtLines))
	for i, line := range logoArtLines {
		runes := []rune(line)
		lineRunes[i] = runes
		if len(runes) > width {
			width = len(runes)
		}
	}
	c := newCanvas(width+1, len(logoArtLines)+1)
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r != ' ' {
				c.set(x+1, y+1, r, logoShadowStyle)
			}
		}
	}
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r != ' ' {
				c.set(x, y, r, logoFaceStyle)
			}
		}
	}
	return logoContainerStyle.Render(c.String())
}
