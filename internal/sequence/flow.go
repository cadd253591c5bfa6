package sequence

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/clara-labs/walkthrough/internal/session"
	"github.com/clara-labs/walkthrough/internal/sound"
	"github.com/clara-labs/walkthrough/internal/timeline"
	"github.com/clara-labs/walkthrough/internal/viz"
)

// Speed is the flow autoplay pace.
type Speed int

const (
	SpeedSlow Speed = iota
	SpeedMedium
)

func (s Speed) String() string {
	if s == SpeedMedium {
		return "medium"
	}
	return "slow"
}

// Delay is the autoplay dwell per step.
func (s Speed) Delay() time.Duration {
	if s == SpeedMedium {
		return FlowMediumDelay
	}
	return FlowSlowDelay
}

// Flow steps through the six-step retrieval walkthrough. Steps move forward
// on autoplay or by explicit stepper controls, and the last step types out
// the answer.
type Flow struct {
	timers *timeline.Timers
	hooks  Hooks
	log    *zap.Logger

	step     int
	autoplay bool
	speed    Speed

	text   []rune
	shown  int
	typing bool
}

func NewFlow(timers *timeline.Timers, answer string, hooks Hooks) *Flow {
	return &Flow{
		timers: timers,
		hooks:  hooks,
		log:    hooks.logger().With(zap.String("component", "sequence")),
		step:   1,
		text:   []rune(answer),
	}
}

func (f *Flow) Step() int          { return f.step }
func (f *Flow) Autoplay() bool     { return f.autoplay }
func (f *Flow) Speed() Speed       { return f.speed }
func (f *Flow) Displayed() string  { return string(f.text[:f.shown]) }
func (f *Flow) Typing() bool       { return f.typing }
func (f *Flow) Answer() string     { return string(f.text) }
func (f *Flow) AtLastStep() bool   { return f.step >= FlowSteps }
func (f *Flow) Progress() float64  { return viz.Fraction(f.step, FlowSteps) }
func (f *Flow) Reached(n int) bool { return f.step >= n }

// Next moves one step forward. It is a no-op on the last step.
func (f *Flow) Next() tea.Cmd {
	if f.step >= FlowSteps {
		return nil
	}
	f.hooks.cue(sound.Step)
	return f.goTo(f.step + 1)
}

// Prev moves one step back. It is a no-op on the first step.
func (f *Flow) Prev() tea.Cmd {
	if f.step <= 1 {
		return nil
	}
	return f.goTo(f.step - 1)
}

// Jump moves straight to step n, cancelling whatever the abandoned step had
// in flight. Jumping to the current step changes nothing.
func (f *Flow) Jump(n int) tea.Cmd {
	if n < 1 || n > FlowSteps || n == f.step {
		return nil
	}
	return f.goTo(n)
}

// ToggleAutoplay starts or pauses autoplay.
func (f *Flow) ToggleAutoplay() tea.Cmd {
	f.autoplay = !f.autoplay
	f.timers.CancelKind(kindAdvance)
	return f.armAdvance()
}

// SetSpeed changes the autoplay pace. A pending autoplay step is re-armed.
func (f *Flow) SetSpeed(s Speed) tea.Cmd {
	if s == f.speed {
		return nil
	}
	f.speed = s
	f.timers.CancelKind(kindAdvance)
	return f.armAdvance()
}

// ToggleSpeed flips between slow and medium.
func (f *Flow) ToggleSpeed() tea.Cmd {
	if f.speed == SpeedSlow {
		return f.SetSpeed(SpeedMedium)
	}
	return f.SetSpeed(SpeedSlow)
}

// Continue hands over to the generation stage from the last step.
func (f *Flow) Continue() bool {
	if f.step < FlowSteps {
		return false
	}
	f.timers.CancelAll()
	f.typing = false
	f.hooks.advance(session.StageGeneration)
	return true
}

// Update advances the machine on one of its own timers.
func (f *Flow) Update(msg timeline.Fired) tea.Cmd {
	kind, ok := accept(f.timers, f.log, "flow", msg)
	if !ok {
		return nil
	}
	switch kind {
	case kindAdvance:
		if f.step >= FlowSteps {
			return nil
		}
		return f.goTo(f.step + 1)
	case kindType:
		f.shown++
		if f.shown%flowTickEvery == 0 {
			f.hooks.cue(sound.Tick)
		}
		if f.shown >= len(f.text) {
			f.finishTyping()
			return nil
		}
		_, cmd := f.timers.Arm(FlowTypeDelay, kindType)
		return cmd
	}
	return nil
}

// Teardown cancels every pending timer.
func (f *Flow) Teardown() {
	f.timers.CancelAll()
	f.typing = false
}

func (f *Flow) goTo(n int) tea.Cmd {
	f.timers.CancelAll()
	f.log.Debug("step", zap.String("machine", "flow"), zap.Int("from", f.step), zap.Int("to", n))
	f.step = n
	f.typing = false
	if n < FlowSteps {
		f.shown = 0
		return f.armAdvance()
	}
	return f.startTyping()
}

func (f *Flow) armAdvance() tea.Cmd {
	if !f.autoplay || f.step >= FlowSteps {
		return nil
	}
	f.hooks.cue(sound.Step)
	_, cmd := f.timers.Arm(f.speed.Delay(), kindAdvance)
	return cmd
}

func (f *Flow) startTyping() tea.Cmd {
	f.shown = 0
	if len(f.text) == 0 {
		f.finishTyping()
		return nil
	}
	f.typing = true
	_, cmd := f.timers.Arm(FlowTypeDelay, kindType)
	return cmd
}

func (f *Flow) finishTyping() {
	f.shown = len(f.text)
	f.typing = false
	f.hooks.cue(sound.Success)
}
