package sequence

import (
	"math"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/clara-labs/walkthrough/internal/session"
	"github.com/clara-labs/walkthrough/internal/sound"
	"github.com/clara-labs/walkthrough/internal/timeline"
	"github.com/clara-labs/walkthrough/internal/viz"
)

// CompressionPhase is the compression screen's animation phase.
type CompressionPhase int

const (
	CompressionWords CompressionPhase = iota
	CompressionThinking
	CompressionFlying
	CompressionOrbs
)

func (p CompressionPhase) String() string {
	switch p {
	case CompressionWords:
		return "words"
	case CompressionThinking:
		return "thinking"
	case CompressionFlying:
		return "flying"
	case CompressionOrbs:
		return "orbs"
	default:
		return "unknown"
	}
}

// Compression walks words → thinking → flying → orbs. Thinking advances on
// its own; flying and the final hand-off wait for the user.
type Compression struct {
	timers *timeline.Timers
	hooks  Hooks
	log    *zap.Logger

	phase  CompressionPhase
	step   int
	target int
	acc    float64
	orbs   int
}

// NewCompression builds the machine for a memory-token target.
func NewCompression(timers *timeline.Timers, target int, hooks Hooks) *Compression {
	return &Compression{
		timers: timers,
		hooks:  hooks,
		log:    hooks.logger().With(zap.String("component", "sequence")),
		target: target,
	}
}

func (c *Compression) Phase() CompressionPhase { return c.phase }

// ThinkingStep is the index of the active thinking step.
func (c *Compression) ThinkingStep() int { return c.step }

// Progress is the thinking progress in [0,1].
func (c *Compression) Progress() float64 {
	return viz.Fraction(c.step, CompressionThinkingSteps)
}

// Orbs is the number of memory tokens revealed so far.
func (c *Compression) Orbs() int { return c.orbs }

// Target is the number of memory tokens the ramp is heading for.
func (c *Compression) Target() int { return c.target }

// Start leaves the word cloud and begins thinking.
func (c *Compression) Start() tea.Cmd {
	if c.phase != CompressionWords {
		return nil
	}
	c.enter(CompressionThinking)
	c.step = 0
	return c.thinkStep()
}

// FormTokens turns the flying words into orbs.
func (c *Compression) FormTokens() tea.Cmd {
	if c.phase != CompressionFlying {
		return nil
	}
	c.hooks.cue(sound.Step)
	c.enter(CompressionOrbs)
	return c.startRamp()
}

// Continue hands over to the latent-space stage once orbs are showing.
func (c *Compression) Continue() bool {
	if c.phase != CompressionOrbs {
		return false
	}
	c.timers.CancelAll()
	c.hooks.cue(sound.Success)
	c.hooks.advance(session.StageLatent)
	return true
}

// SetTarget updates the memory-token target. A running ramp restarts.
func (c *Compression) SetTarget(n int) tea.Cmd {
	if n == c.target {
		return nil
	}
	c.target = n
	if c.phase != CompressionOrbs {
		return nil
	}
	c.timers.CancelKind(kindRamp)
	return c.startRamp()
}

// Update advances the machine on one of its own timers.
func (c *Compression) Update(msg timeline.Fired) tea.Cmd {
	kind, ok := accept(c.timers, c.log, "compression", msg)
	if !ok {
		return nil
	}
	switch kind {
	case kindThinking:
		c.step++
		return c.thinkStep()
	case kindRamp:
		return c.rampTick()
	}
	return nil
}

// Teardown cancels every pending timer.
func (c *Compression) Teardown() {
	c.timers.CancelAll()
}

func (c *Compression) thinkStep() tea.Cmd {
	if c.step >= CompressionThinkingSteps {
		c.hooks.cue(sound.Whoosh)
		c.enter(CompressionFlying)
		return nil
	}
	c.hooks.cue(sound.Step)
	_, cmd := c.timers.Arm(CompressionThinkDelay, kindThinking)
	return cmd
}

func (c *Compression) startRamp() tea.Cmd {
	c.acc = 0
	c.orbs = 0
	if c.target <= 0 {
		return nil
	}
	_, cmd := c.timers.Arm(OrbRampInterval, kindRamp)
	return cmd
}

func (c *Compression) rampTick() tea.Cmd {
	c.acc += float64(c.target) / OrbRampTicks
	c.orbs = int(math.Min(float64(c.target), math.Floor(c.acc)))
	if c.acc >= float64(c.target) {
		c.orbs = c.target
		return nil
	}
	_, cmd := c.timers.Arm(OrbRampInterval, kindRamp)
	return cmd
}

func (c *Compression) enter(p CompressionPhase) {
	c.log.Debug("phase", zap.String("machine", "compression"), zap.Stringer("from", c.phase), zap.Stringer("to", p))
	c.phase = p
}
