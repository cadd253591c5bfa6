package tui

import (
	"math/rand"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/clara-labs/walkthrough/internal/content"
	"github.com/clara-labs/walkthrough/internal/sequence"
	"github.com/clara-labs/walkthrough/internal/session"
	"github.com/clara-labs/walkthrough/internal/sound"
	"github.com/clara-labs/walkthrough/internal/timeline"
)

// screen is one stage's view. The root model owns exactly one at a time and
// tears it down before building the next, which cancels its timers.
type screen interface {
	Stage() session.Stage
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(layout pageLayout) string
	Keys() []key.Binding
	// Capturing reports whether a text field has focus, in which case the
	// global navigation keys are passed through to the screen.
	Capturing() bool
	Teardown()
}

// env is what every screen shares with the root model.
type env struct {
	sess   *session.Session
	script *content.Content
	sound  sound.Player
	log    *zap.Logger
	pace   float64
	rng    *rand.Rand
	md     *markdown
	jobs   *jobBus

	// request asks the root model to move to a stage once the current
	// update returns; restart asks it to reset the whole session.
	request func(session.Stage)
	restart func()
}

func (e *env) newTimers() *timeline.Timers {
	return timeline.New(e.pace)
}

func (e *env) hooks() sequence.Hooks {
	return sequence.Hooks{
		Cue:     e.sound.Play,
		Advance: e.request,
		Answer:  e.sess.SetAnswer,
		Log:     e.log,
	}
}

func (e *env) cue(c sound.Cue) {
	e.sound.Play(c)
}

// base carries the parts every screen has in common. Animated screens set
// timers to the registry their sequencer arms.
type base struct {
	env    *env
	stage  session.Stage
	timers *timeline.Timers
}

func (b *base) Stage() session.Stage     { return b.stage }
func (b *base) Capturing() bool          { return false }
func (b *base) Teardown()                {}
func (b *base) Timers() *timeline.Timers { return b.timers }

// header renders the stage accent, title and markdown description.
func (b *base) header(width int) string {
	text := b.env.script.Stage(b.stage.String())
	title := text.Title
	if title == "" {
		title = b.stage.Label()
	}
	heading := titleStyle.Render(title)
	if text.Accent != "" {
		heading = accentStyle.Render(text.Accent) + " " + heading
	}
	return joinNonEmpty([]string{heading, b.env.md.Render(text.Description, width)})
}

type keyMap struct {
	Quit      key.Binding
	Help      key.Binding
	NextStage key.Binding
	PrevStage key.Binding

	Confirm  key.Binding
	Skip     key.Binding
	Edit     key.Binding
	Leave    key.Binding
	Open     key.Binding
	Less     key.Binding
	More     key.Binding
	Code     key.Binding
	Flow     key.Binding
	Prev     key.Binding
	Next     key.Binding
	Jump     key.Binding
	Autoplay key.Binding
	Speed    key.Binding
	Up       key.Binding
	Down     key.Binding
	Restart  key.Binding
}

var keys = keyMap{
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "keys")),
	NextStage: key.NewBinding(key.WithKeys("tab", "]"), key.WithHelp("tab/]", "next stage")),
	PrevStage: key.NewBinding(key.WithKeys("shift+tab", "["), key.WithHelp("shift+tab/[", "previous stage")),

	Confirm:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue")),
	Skip:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "skip to document")),
	Edit:     key.NewBinding(key.WithKeys("e", "i"), key.WithHelp("e", "edit")),
	Leave:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop editing")),
	Open:     key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "open file")),
	Less:     key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "decrease")),
	More:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "increase")),
	Code:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "show code")),
	Flow:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "full flow")),
	Prev:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev step")),
	Next:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next step")),
	Jump:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6"), key.WithHelp("1-6", "jump to step")),
	Autoplay: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto-play")),
	Speed:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "speed")),
	Up:       key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous suggestion")),
	Down:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next suggestion")),
	Restart:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "start over")),
}

// withHelp returns a copy of b with a screen-specific description.
func withHelp(b key.Binding, desc string) key.Binding {
	h := b.Help()
	b.SetHelp(h.Key, desc)
	return b
}
