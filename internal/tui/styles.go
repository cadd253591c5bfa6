package tui

import "github.com/charmbracelet/lipgloss"

var (
	neonCyan    = lipgloss.Color("#00f5d4")
	neonPurple  = lipgloss.Color("#7b2cbf")
	neonPink    = lipgloss.Color("#f72585")
	deepSpace   = lipgloss.Color("#0b0c1a")
	glassBorder = lipgloss.Color("#3a3f5c")
	mutedText   = lipgloss.Color("244")
	brightText  = lipgloss.Color("#e0def4")

	titleStyle         = lipgloss.NewStyle().Bold(true).Foreground(neonCyan)
	accentStyle        = lipgloss.NewStyle().Bold(true).Foreground(deepSpace).Background(neonCyan).Padding(0, 1)
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	helperStyle        = lipgloss.NewStyle().Foreground(mutedText)
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	taglineStyle       = lipgloss.NewStyle().Foreground(neonPurple).Italic(true)
	bodyStyle          = lipgloss.NewStyle().Foreground(brightText)

	panelStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(glassBorder).Padding(0, 1)
	activePanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(neonCyan).Padding(0, 1)
	ctaStyle         = lipgloss.NewStyle().Bold(true).Foreground(deepSpace).Background(neonCyan).Padding(0, 2)
	secondaryStyle   = lipgloss.NewStyle().Foreground(neonCyan).Border(lipgloss.NormalBorder(), false, false, true, false).BorderForeground(neonCyan)

	navItemStyle    = lipgloss.NewStyle().Foreground(mutedText).Padding(0, 1)
	navCurrentStyle = lipgloss.NewStyle().Bold(true).Foreground(deepSpace).Background(neonCyan).Padding(0, 1)
	statusBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)

	keyStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle   = lipgloss.NewStyle().Foreground(brightText)
	legendBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)

	stepActiveStyle  = lipgloss.NewStyle().Bold(true).Foreground(neonCyan)
	stepDoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#80ed99"))
	stepPendingStyle = lipgloss.NewStyle().Foreground(mutedText)

	wordStyle      = lipgloss.NewStyle().Foreground(brightText).Background(lipgloss.Color("#1f2340")).Padding(0, 1)
	flyingStyle    = lipgloss.NewStyle().Foreground(neonPurple).Italic(true)
	orbStyle       = lipgloss.NewStyle().Foreground(neonCyan).Bold(true)
	answerStyle    = lipgloss.NewStyle().Foreground(brightText)
	queryEchoStyle = lipgloss.NewStyle().Foreground(neonPink).Italic(true)
	codeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#c3e88d")).Background(lipgloss.Color("#11131f")).Padding(0, 1)

	pointStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7a9c"))
	selectedStyle   = lipgloss.NewStyle().Bold(true).Foreground(neonCyan)
	queryStyle      = lipgloss.NewStyle().Bold(true).Foreground(neonPink)
	similarityStyle = lipgloss.NewStyle().Foreground(neonPurple)
	gridStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#23263a"))
	labelStyle      = lipgloss.NewStyle().Foreground(brightText)

	logoFaceStyle      = lipgloss.NewStyle().Bold(true).Foreground(neonCyan)
	logoShadowStyle    = lipgloss.NewStyle().Foreground(neonPurple)
	logoContainerStyle = lipgloss.NewStyle().Padding(0, 1)
	logoArtLines       = []string{
		" ██████╗  ██╗        █████╗   ██████╗    █████╗   ",
		"██╔════╝  ██║       ██╔══██╗  ██╔══██╗  ██╔══██╗  ",
		"██║       ██║       ███████║  ██████╔╝  ███████║  ",
		"██║       ██║       ██╔══██║  ██╔══██╗  ██╔══██║  ",
		"╚██████╗  ███████╗  ██║  ██║  ██║  ██║  ██║  ██║  ",
		" ╚═════╝  ╚══════╝  ╚═╝  ╚═╝  ╚═╝  ╚═╝  ╚═╝  ╚═╝  ",
	}
)
