package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const (
	minBodyWidth          = 40
	maxBodyWidth          = 110
	bodyHorizontalPadding = 4
	minProjectorWidth     = 24
	minProjectorHeight    = 9
)

// pageLayout derives the widths and heights every screen renders against.
type pageLayout struct {
	windowWidth     int
	windowHeight    int
	bodyWidth       int
	projectorWidth  int
	projectorHeight int
	editorHeight    int
}

func newPageLayout() pageLayout {
	return pageLayout{
		bodyWidth:       80,
		projectorWidth:  44,
		projectorHeight: 15,
		editorHeight:    8,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	inner := width - bodyHorizontalPadding
	if inner < minBodyWidth {
		inner = minBodyWidth
	}
	if inner > maxBodyWidth {
		inner = maxBodyWidth
	}
	l.bodyWidth = inner

	// Header, nav, description and footer take roughly this many rows.
	const chrome = 14
	usable := height - chrome
	if usable < minProjectorHeight {
		usable = minProjectorHeight
	}
	l.projectorHeight = usable
	if l.projectorHeight > 21 {
		l.projectorHeight = 21
	}
	// Terminal cells are about twice as tall as wide.
	l.projectorWidth = l.projectorHeight * 3
	if half := inner / 2; l.projectorWidth > half {
		l.projectorWidth = half
	}
	if l.projectorWidth < minProjectorWidth {
		l.projectorWidth = minProjectorWidth
	}
	l.editorHeight = usable / 2
	if l.editorHeight < 4 {
		l.editorHeight = 4
	}
	if l.editorHeight > 12 {
		l.editorHeight = 12
	}
}

// contentBuilder collects screen sections separated by blank lines.
type contentBuilder struct {
	builder strings.Builder
	lines   int
}

func (cb *contentBuilder) WriteString(s string) {
	cb.builder.WriteString(s)
	cb.lines += strings.Count(s, "\n")
}

func (cb *contentBuilder) WriteRune(r rune) {
	cb.builder.WriteRune(r)
	if r == '\n' {
		cb.lines++
	}
}

// Section writes s followed by a newline, preceded by a blank line unless it
// is the first section.
func (cb *contentBuilder) Section(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	if cb.lines > 0 || cb.builder.Len() > 0 {
		cb.WriteRune('\n')
	}
	cb.WriteString(strings.TrimRight(s, "\n"))
	cb.WriteRune('\n')
}

func (cb *contentBuilder) String() string {
	return cb.builder.String()
}

func (cb *contentBuilder) Line() int {
	return cb.lines
}

func indentMultiline(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// hanging wraps text to width behind lead and aligns the continuation lines
// under the first character after it.
func hanging(text, lead string, width int) string {
	pad := strings.Repeat(" ", lipgloss.Width(lead))
	wrapped := wordwrap.String(text, width-len(pad))
	return lead + strings.TrimPrefix(indentMultiline(wrapped, pad), pad)
}
