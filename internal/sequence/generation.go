package sequence

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/clara-labs/walkthrough/internal/sound"
	"github.com/clara-labs/walkthrough/internal/timeline"
)

// GenerationPhase is the generation screen's animation phase.
type GenerationPhase int

const (
	GenerationRetrieving GenerationPhase = iota
	GenerationGenerating
	GenerationDone
)

func (p GenerationPhase) String() string {
	switch p {
	case GenerationRetrieving:
		return "retrieving"
	case GenerationGenerating:
		return "generating"
	case GenerationDone:
		return "done"
	default:
		return "unknown"
	}
}

// Generation retrieves for a fixed dwell, then reveals the answer one rune
// per tick and settles in done, publishing the answer through Hooks.Answer.
type Generation struct {
	timers *timeline.Timers
	hooks  Hooks
	log    *zap.Logger

	phase GenerationPhase
	text  []rune
	shown int
}

func NewGeneration(timers *timeline.Timers, hooks Hooks) *Generation {
	return &Generation{
		timers: timers,
		hooks:  hooks,
		log:    hooks.logger().With(zap.String("component", "sequence")),
	}
}

func (g *Generation) Phase() GenerationPhase { return g.phase }

// Displayed is the part of the answer revealed so far.
func (g *Generation) Displayed() string { return string(g.text[:g.shown]) }

// Text is the full answer being revealed.
func (g *Generation) Text() string { return string(g.text) }

// Reset cancels anything in flight and restarts from retrieving with a new
// answer. It is called on entry and whenever the query or document changes.
func (g *Generation) Reset(answer string) tea.Cmd {
	g.timers.CancelAll()
	g.text = []rune(answer)
	g.shown = 0
	g.setPhase(GenerationRetrieving)
	g.hooks.cue(sound.Step)
	_, cmd := g.timers.Arm(RetrieveDelay, kindRetrieve)
	return cmd
}

// Update advances the machine on one of its own timers.
func (g *Generation) Update(msg timeline.Fired) tea.Cmd {
	kind, ok := accept(g.timers, g.log, "generation", msg)
	if !ok {
		return nil
	}
	switch kind {
	case kindRetrieve:
		g.hooks.cue(sound.Step)
		g.setPhase(GenerationGenerating)
		if len(g.text) == 0 {
			g.finish()
			return nil
		}
		_, cmd := g.timers.Arm(GenerationTypeDelay, kindType)
		return cmd
	case kindType:
		g.shown++
		if g.shown%generationTickEvery == 0 {
			g.hooks.cue(sound.Tick)
		}
		if g.shown >= len(g.text) {
			g.finish()
			return nil
		}
		_, cmd := g.timers.Arm(GenerationTypeDelay, kindType)
		return cmd
	}
	return nil
}

// Teardown cancels every pending timer.
func (g *Generation) Teardown() {
	g.timers.CancelAll()
}

func (g *Generation) finish() {
	g.shown = len(g.text)
	g.setPhase(GenerationDone)
	g.hooks.cue(sound.Success)
	if g.hooks.Answer != nil {
		g.hooks.Answer(string(g.text))
	}
}

func (g *Generation) setPhase(p GenerationPhase) {
	g.log.Debug("phase", zap.String("machine", "generation"), zap.Stringer("from", g.phase), zap.Stringer("to", p))
	g.phase = p
}
