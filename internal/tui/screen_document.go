package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/clara-labs/walkthrough/internal/session"
	"github.com/clara-labs/walkthrough/internal/sound"
	"github.com/clara-labs/walkthrough/internal/viz"
)

// documentScreen lets the user edit the document text or load it from disk.
type documentScreen struct {
	base
	editor  textarea.Model
	path    textinput.Model
	spinner spinner.Model

	opening bool
	loading bool
	loaded  string
	err     error
}

func newDocumentScreen(e *env) *documentScreen {
	editor := textarea.New()
	editor.Placeholder = session.SampleDocument
	editor.ShowLineNumbers = false
	editor.CharLimit = 0
	editor.SetValue(e.sess.Document())
	editor.Blur()

	path := textinput.New()
	path.Prompt = "path › "
	path.Placeholder = "~/papers/clara.pdf"
	path.CharLimit = 512

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = orbStyle

	return &documentScreen{
		base:    base{env: e, stage: session.StageDocument},
		editor:  editor,
		path:    path,
		spinner: spin,
	}
}

func (s *documentScreen) Init() tea.Cmd { return nil }

func (s *documentScreen) Capturing() bool {
	return s.editor.Focused() || s.opening
}

func (s *documentScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case documentLoadedMsg:
		s.loading = false
		s.err = msg.err
		if msg.err == nil {
			s.loaded = filepath.Base(msg.path)
			s.editor.SetValue(msg.text)
		}
		return nil
	case spinner.TickMsg:
		if !s.loading {
			return nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd
	case tea.KeyMsg:
		switch {
		case s.opening:
			return s.updatePath(msg)
		case s.editor.Focused():
			return s.updateEditor(msg)
		}
		switch {
		case key.Matches(msg, keys.Edit):
			return s.editor.Focus()
		case key.Matches(msg, keys.Open):
			if s.loading {
				return nil
			}
			s.opening = true
			s.err = nil
			return s.path.Focus()
		case key.Matches(msg, keys.Confirm):
			s.env.cue(sound.Step)
			s.env.request(session.StageCompression)
		}
	}
	return nil
}

func (s *documentScreen) updateEditor(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.Leave) {
		s.editor.Blur()
		return nil
	}
	var cmd tea.Cmd
	s.editor, cmd = s.editor.Update(msg)
	s.env.sess.SetDocument(s.editor.Value())
	return cmd
}

func (s *documentScreen) updatePath(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Leave):
		s.closePath()
		return nil
	case key.Matches(msg, keys.Confirm):
		path := strings.TrimSpace(s.path.Value())
		s.closePath()
		if path == "" {
			return nil
		}
		s.loading = true
		return tea.Batch(s.env.jobs.Start(jobKindLoadDocument, loadDocumentJob(path)), s.spinner.Tick)
	}
	var cmd tea.Cmd
	s.path, cmd = s.path.Update(msg)
	return cmd
}

func (s *documentScreen) closePath() {
	s.opening = false
	s.path.Blur()
	s.path.SetValue("")
}

func (s *documentScreen) View(layout pageLayout) string {
	width := layout.bodyWidth
	s.editor.SetWidth(width - 4)
	s.editor.SetHeight(layout.editorHeight)

	frame := panelStyle
	if s.editor.Focused() {
		frame = activePanelStyle
	}

	doc := s.env.sess.EffectiveDocument()
	words := len(strings.Fields(doc))
	meta := fmt.Sprintf("%d words · ~%d tokens", words, viz.TokenEstimate(words))
	switch {
	case strings.TrimSpace(s.env.sess.Document()) == "":
		meta += " · sample text"
	case s.loaded != "":
		meta += " · " + s.loaded
	}

	var status string
	switch {
	case s.loading:
		status = s.spinner.View() + " Loading document…"
	case s.err != nil:
		status = errorStyle.Render("Could not load document: " + s.err.Error())
	case s.opening:
		status = s.path.View()
	}

	return joinNonEmpty([]string{
		s.header(width),
		frame.Render(s.editor.View()) + "\n" + helperStyle.Render(meta),
		status,
		ctaStyle.Render("enter  Compress it"),
	})
}

func (s *documentScreen) Keys() []key.Binding {
	switch {
	case s.opening:
		return []key.Binding{withHelp(keys.Confirm, "load file"), withHelp(keys.Leave, "cancel")}
	case s.editor.Focused():
		return []key.Binding{keys.Leave}
	}
	return []key.Binding{keys.Edit, keys.Open, withHelp(keys.Confirm, "compress")}
}
