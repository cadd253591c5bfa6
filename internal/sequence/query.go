package sequence

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/clara-labs/walkthrough/internal/session"
	"github.com/clara-labs/walkthrough/internal/sound"
	"github.com/clara-labs/walkthrough/internal/timeline"
	"github.com/clara-labs/walkthrough/internal/viz"
)

// QueryPhase is the query screen's animation phase.
type QueryPhase int

const (
	QueryIdle QueryPhase = iota
	QueryThinking
	QueryDone
)

func (p QueryPhase) String() string {
	switch p {
	case QueryIdle:
		return "idle"
	case QueryThinking:
		return "thinking"
	case QueryDone:
		return "done"
	default:
		return "unknown"
	}
}

// Query runs the three "system thinking" steps and then advances to the
// generation stage on its own.
type Query struct {
	timers *timeline.Timers
	hooks  Hooks
	log    *zap.Logger

	phase QueryPhase
	step  int
}

func NewQuery(timers *timeline.Timers, hooks Hooks) *Query {
	return &Query{
		timers: timers,
		hooks:  hooks,
		log:    hooks.logger().With(zap.String("component", "sequence")),
	}
}

func (q *Query) Phase() QueryPhase { return q.phase }
func (q *Query) Step() int         { return q.step }

// Progress is the thinking progress in [0,1].
func (q *Query) Progress() float64 {
	return viz.Fraction(q.step, QueryThinkingSteps)
}

// Start begins thinking about query. Blank queries are refused.
func (q *Query) Start(query string) (tea.Cmd, bool) {
	if strings.TrimSpace(query) == "" || q.phase != QueryIdle {
		return nil, false
	}
	q.setPhase(QueryThinking)
	q.step = 0
	return q.thinkStep(), true
}

// Update advances the machine on one of its own timers.
func (q *Query) Update(msg timeline.Fired) tea.Cmd {
	kind, ok := accept(q.timers, q.log, "query", msg)
	if !ok || kind != kindThinking {
		return nil
	}
	q.step++
	return q.thinkStep()
}

// Teardown cancels every pending timer.
func (q *Query) Teardown() {
	q.timers.CancelAll()
}

func (q *Query) thinkStep() tea.Cmd {
	if q.step >= QueryThinkingSteps {
		q.hooks.cue(sound.Whoosh)
		q.setPhase(QueryDone)
		q.hooks.advance(session.StageGeneration)
		return nil
	}
	q.hooks.cue(sound.Step)
	_, cmd := q.timers.Arm(QueryThinkDelay, kindThinking)
	return cmd
}

func (q *Query) setPhase(p QueryPhase) {
	q.log.Debug("phase", zap.String("machine", "query"), zap.Stringer("from", q.phase), zap.Stringer("to", p))
	q.phase = p
}
