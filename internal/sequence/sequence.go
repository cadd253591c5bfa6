// Package sequence implements the timed phase machines that run inside the
// walkthrough screens. Each machine owns a timeline.Timers registry, advances
// strictly forward on its own timers and reports back through Hooks.
package sequence

import (
	"time"

	"go.uber.org/zap"

	"github.com/clara-labs/walkthrough/internal/session"
	"github.com/clara-labs/walkthrough/internal/sound"
	"github.com/clara-labs/walkthrough/internal/timeline"
)

// Timing table. Only the relative ordering matters: query thinking is
// quicker than compression thinking, and typewriters run far faster than the
// flow autoplay.
const (
	CompressionThinkDelay = 700 * time.Millisecond
	OrbRampInterval       = 40 * time.Millisecond
	OrbRampTicks          = 30
	QueryThinkDelay       = 500 * time.Millisecond
	RetrieveDelay         = 800 * time.Millisecond
	GenerationTypeDelay   = 18 * time.Millisecond
	FlowTypeDelay         = 20 * time.Millisecond
	FlowSlowDelay         = 2200 * time.Millisecond
	FlowMediumDelay       = 1200 * time.Millisecond
)

// Step counts of the fixed thinking sequences.
const (
	CompressionThinkingSteps = 3
	QueryThinkingSteps       = 3
	FlowSteps                = 6
)

// Tick cue cadence for the two typewriters.
const (
	generationTickEvery = 6
	flowTickEvery       = 5
)

// Timer kinds.
const (
	kindThinking = "thinking"
	kindRamp     = "ramp"
	kindRetrieve = "retrieve"
	kindType     = "type"
	kindAdvance  = "advance"
)

// Hooks connect a machine to the rest of the program. Every field is optional.
type Hooks struct {
	Cue     func(sound.Cue)
	Advance func(session.Stage)
	Answer  func(string)
	Log     *zap.Logger
}

func (h Hooks) cue(c sound.Cue) {
	if h.Cue != nil {
		h.Cue(c)
	}
}

func (h Hooks) advance(s session.Stage) {
	if h.Advance != nil {
		h.Advance(s)
	}
}

func (h Hooks) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}

// accept consumes a fired timer, logging the ones that arrive stale.
func accept(timers *timeline.Timers, log *zap.Logger, machine string, msg timeline.Fired) (string, bool) {
	kind, ok := timers.Accept(msg)
	if !ok {
		log.Debug("stale timer rejected",
			zap.String("machine", machine),
			zap.String("kind", msg.Handle.Kind))
	}
	return kind, ok
}
