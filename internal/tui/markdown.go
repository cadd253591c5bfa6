package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
	"go.uber.org/zap"
)

// markdown renders stage descriptions with glamour, caching the output per
// source and width so animation frames do not re-render it.
type markdown struct {
	plain bool
	log   *zap.Logger

	width    int
	renderer *glamour.TermRenderer
	cache    map[string]string
}

func newMarkdown(plain bool, log *zap.Logger) *markdown {
	return &markdown{plain: plain, log: log, cache: map[string]string{}}
}

func (md *markdown) Render(source string, width int) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return ""
	}
	if width != md.width || md.renderer == nil {
		md.width = width
		md.cache = map[string]string{}
		md.renderer = md.newRenderer(width)
	}
	if out, ok := md.cache[source]; ok {
		return out
	}
	out := wordwrap.String(source, width)
	if md.renderer != nil {
		rendered, err := md.renderer.Render(source)
		if err != nil {
			md.log.Debug("markdown render failed", zap.Error(err))
		} else {
			out = strings.Trim(rendered, "\n")
		}
	}
	md.cache[source] = out
	return out
}

func (md *markdown) newRenderer(width int) *glamour.TermRenderer {
	style := glamour.WithAutoStyle()
	if md.plain {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		md.log.Debug("markdown renderer unavailable", zap.Error(err))
		return nil
	}
	return r
}
