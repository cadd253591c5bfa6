// Package sound plays the optional audio cues that accompany phase changes.
// Audio is never essential: a player that cannot reach its output drops the
// cue and the walkthrough carries on unchanged.
package sound

import (
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Cue is one of the short feedback sounds.
type Cue int

const (
	Step Cue = iota
	Success
	Whoosh
	Tick
)

func (c Cue) String() string {
	switch c {
	case Step:
		return "step"
	case Success:
		return "success"
	case Whoosh:
		return "whoosh"
	case Tick:
		return "tick"
	default:
		return "unknown"
	}
}

// Player plays cues. Implementations must never block the caller for long
// and must swallow their own failures.
type Player interface {
	Play(Cue)
}

// Mute discards every cue.
type Mute struct{}

func (Mute) Play(Cue) {}

// Func adapts a function to Player.
type Func func(Cue)

func (f Func) Play(c Cue) {
	if f != nil {
		f(c)
	}
}

// Bell renders cues as terminal bells. Tick cues stay silent and rings are
// rate limited so a fast typewriter cannot flood the terminal.
type Bell struct {
	mu     sync.Mutex
	out    io.Writer
	log    *zap.Logger
	minGap time.Duration
	last   time.Time
	now    func() time.Time
}

// NewBell writes bells to out, usually os.Stderr so the TUI renderer keeps stdout.
func NewBell(out io.Writer, log *zap.Logger) *Bell {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bell{
		out:    out,
		log:    log.With(zap.String("component", "sound")),
		minGap: 150 * time.Millisecond,
		now:    time.Now,
	}
}

func rings(c Cue) int {
	switch c {
	case Success:
		return 2
	case Step, Whoosh:
		return 1
	default:
		return 0
	}
}

// Play rings the bell for c. Write errors are logged and otherwise ignored.
func (b *Bell) Play(c Cue) {
	n := rings(c)
	if n == 0 || b == nil || b.out == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	if !b.last.IsZero() && now.Sub(b.last) < b.minGap {
		return
	}
	b.last = now
	if _, err := io.WriteString(b.out, strings.Repeat("\a", n)); err != nil {
		b.log.Debug("audio cue dropped", zap.Stringer("cue", c), zap.Error(err))
	}
}

// Safe wraps a player so a panicking backend cannot interrupt a sequence.
func Safe(p Player, log *zap.Logger) Player {
	if p == nil {
		return Mute{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return Func(func(c Cue) {
		defer func() {
			if r := recover(); r != nil {
				log.Debug("audio backend panicked", zap.Stringer("cue", c), zap.Any("panic", r))
			}
		}()
		p.Play(c)
	})
}
