// Package timeline owns the timers armed by a single screen instance.
//
// Every timer is represented by an explicit Handle returned when it is armed.
// The owning screen keeps its Timers registry and cancels it on teardown or
// when its driving inputs change; a Fired message is only honoured while its
// handle is still pending in the registry that armed it.
package timeline

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var owners uint64

// Handle identifies one armed timer. The zero Handle is never live.
type Handle struct {
	owner uint64
	id    uint64
	Kind  string
	Delay time.Duration
}

// Fired is delivered to the Bubble Tea loop once an armed timer elapses.
type Fired struct {
	Handle Handle
}

// Timers is a registry of pending timers for one screen instance.
type Timers struct {
	owner   uint64
	next    uint64
	pace    float64
	pending map[uint64]Handle
}

// New returns an empty registry. Pace multiplies every delay: 1 keeps the
// nominal timing, 0.5 runs twice as fast and 0 fires immediately while still
// preserving arm order.
func New(pace float64) *Timers {
	if pace < 0 {
		pace = 0
	}
	return &Timers{
		owner:   atomic.AddUint64(&owners, 1),
		pace:    pace,
		pending: map[uint64]Handle{},
	}
}

// After arms a timer of the given kind.
func (t *Timers) After(delay time.Duration, kind string) Handle {
	t.next++
	h := Handle{
		owner: t.owner,
		id:    t.next,
		Kind:  kind,
		Delay: time.Duration(float64(delay) * t.pace),
	}
	t.pending[h.id] = h
	return h
}

// Cmd converts a handle into a command that emits Fired when the delay passes.
func Cmd(h Handle) tea.Cmd {
	if h.id == 0 {
		return nil
	}
	if h.Delay <= 0 {
		return func() tea.Msg { return Fired{Handle: h} }
	}
	return tea.Tick(h.Delay, func(time.Time) tea.Msg {
		return Fired{Handle: h}
	})
}

// Arm is After followed by Cmd.
func (t *Timers) Arm(delay time.Duration, kind string) (Handle, tea.Cmd) {
	h := t.After(delay, kind)
	return h, Cmd(h)
}

// Cancel drops a pending timer. Cancelling an unknown or fired handle is a no-op.
func (t *Timers) Cancel(h Handle) {
	if h.owner != t.owner {
		return
	}
	delete(t.pending, h.id)
}

// CancelKind drops every pending timer of the given kind.
func (t *Timers) CancelKind(kind string) {
	for id, h := range t.pending {
		if h.Kind == kind {
			delete(t.pending, id)
		}
	}
}

// CancelAll drops every pending timer.
func (t *Timers) CancelAll() {
	for id := range t.pending {
		delete(t.pending, id)
	}
}

// Accept consumes a fired timer. It reports false for timers armed by another
// registry, cancelled timers and timers that already fired.
func (t *Timers) Accept(msg Fired) (string, bool) {
	if !t.Owns(msg) || !t.Live(msg.Handle) {
		return "", false
	}
	delete(t.pending, msg.Handle.id)
	return msg.Handle.Kind, true
}

// Live reports whether the handle is still pending.
func (t *Timers) Live(h Handle) bool {
	if h.owner != t.owner {
		return false
	}
	_, ok := t.pending[h.id]
	return ok
}

// Len reports how many timers are pending.
func (t *Timers) Len() int {
	return len(t.pending)
}

// Next returns the earliest armed pending timer. Headless drivers use it to
// step a sequencer without a Bubble Tea program.
func (t *Timers) Next() (Handle, bool) {
	var best Handle
	for _, h := range t.pending {
		if best.id == 0 || h.id < best.id {
			best = h
		}
	}
	return best, best.id != 0
}

// Owns reports whether the message was armed by this registry.
func (t *Timers) Owns(msg Fired) bool {
	return msg.Handle.owner == t.owner
}
