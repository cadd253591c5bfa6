package sequence

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/clara-labs/walkthrough/internal/session"
	"github.com/clara-labs/walkthrough/internal/sound"
	"github.com/clara-labs/walkthrough/internal/timeline"
)

type recorder struct {
	cues     []sound.Cue
	advances []session.Stage
	answers  []string
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		Cue:     func(c sound.Cue) { r.cues = append(r.cues, c) },
		Advance: func(s session.Stage) { r.advances = append(r.advances, s) },
		Answer:  func(a string) { r.answers = append(r.answers, a) },
	}
}

// fire delivers the earliest pending timer and fails if none is armed.
func fire(t *testing.T, timers *timeline.Timers, update func(timeline.Fired)) timeline.Handle {
	t.Helper()
	h, ok := timers.Next()
	if !ok {
		t.Fatalf("no pending timer")
	}
	update(timeline.Fired{Handle: h})
	return h
}

func TestGenerationTypewriterRevealsInOrder(t *testing.T) {
	rec := &recorder{}
	timers := timeline.New(0)
	gen := NewGeneration(timers, rec.hooks())
	gen.Reset("CLaRa")

	if gen.Phase() != GenerationRetrieving {
		t.Fatalf("phase = %v, want retrieving", gen.Phase())
	}
	update := func(m timeline.Fired) { gen.Update(m) }
	fire(t, timers, update)
	if gen.Phase() != GenerationGenerating || gen.Displayed() != "" {
		t.Fatalf("after retrieve: phase=%v shown=%q", gen.Phase(), gen.Displayed())
	}

	var got []string
	for gen.Phase() == GenerationGenerating {
		fire(t, timers, update)
		got = append(got, gen.Displayed())
	}
	want := []string{"C", "CL", "CLa", "CLaR", "CLaRa"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("reveal mismatch (-want +got):\n%s", diff)
	}
	if gen.Phase() != GenerationDone {
		t.Fatalf("phase = %v, want done", gen.Phase())
	}
	if timers.Len() != 0 {
		t.Fatalf("pending timers after done = %d", timers.Len())
	}
	if diff := cmp.Diff([]string{"CLaRa"}, rec.answers); diff != "" {
		t.Fatalf("answers (-want +got):\n%s", diff)
	}
	if last := rec.cues[len(rec.cues)-1]; last != sound.Success {
		t.Fatalf("last cue = %v, want success", last)
	}
}

func TestGenerationResetMidRevealRestarts(t *testing.T) {
	rec := &recorder{}
	timers := timeline.New(0)
	gen := NewGeneration(timers, rec.hooks())
	gen.Reset("CLaRa")
	update := func(m timeline.Fired) { gen.Update(m) }
	fire(t, timers, update)
	fire(t, timers, update)
	fire(t, timers, update)
	if gen.Displayed() != "CL" {
		t.Fatalf("shown = %q, want CL", gen.Displayed())
	}

	stale, _ := timers.Next()
	gen.Reset("new")
	if timers.Live(stale) {
		t.Fatalf("old typewriter timer still pending")
	}
	if gen.Displayed() != "" || gen.Phase() != GenerationRetrieving {
		t.Fatalf("after reset: phase=%v shown=%q", gen.Phase(), gen.Displayed())
	}
	gen.Update(timeline.Fired{Handle: stale})
	if gen.Displayed() != "" || gen.Phase() != GenerationRetrieving {
		t.Fatalf("stale timer advanced the reveal")
	}

	for gen.Phase() != GenerationDone {
		fire(t, timers, update)
	}
	if gen.Displayed() != "new" {
		t.Fatalf("shown = %q, want new", gen.Displayed())
	}
	if diff := cmp.Diff([]string{"new"}, rec.answers); diff != "" {
		t.Fatalf("answers (-want +got):\n%s", diff)
	}
}

func TestGenerationEmptyAnswerFinishes(t *testing.T) {
	rec := &recorder{}
	timers := timeline.New(0)
	gen := NewGeneration(timers, rec.hooks())
	gen.Reset("")
	fire(t, timers, func(m timeline.Fired) { gen.Update(m) })
	if gen.Phase() != GenerationDone {
		t.Fatalf("phase = %v, want done", gen.Phase())
	}
	if len(rec.answers) != 1 || rec.answers[0] != "" {
		t.Fatalf("answers = %q", rec.answers)
	}
}

func TestGenerationTicksEveryFewRunes(t *testing.T) {
	rec := &recorder{}
	timers := timeline.New(0)
	gen := NewGeneration(timers, rec.hooks())
	gen.Reset("abcdefghijkl")
	for gen.Phase() != GenerationDone {
		fire(t, timers, func(m timeline.Fired) { gen.Update(m) })
	}
	ticks := 0
	for _, c := range rec.cues {
		if c == sound.Tick {
			ticks++
		}
	}
	if ticks != 2 {
		t.Fatalf("ticks = %d, want 2", ticks)
	}
}

func TestCompressionThinkingAdvancesOnItsOwn(t *testing.T) {
	rec := &recorder{}
	timers := timeline.New(0)
	c := NewCompression(timers, 5, rec.hooks())
	update := func(m timeline.Fired) { c.Update(m) }

	if c.FormTokens() != nil || c.Continue() {
		t.Fatalf("controls active before thinking")
	}
	c.Start()
	if c.Phase() != CompressionThinking {
		t.Fatalf("phase = %v, want thinking", c.Phase())
	}
	var progress []float64
	for c.Phase() == CompressionThinking {
		progress = append(progress, c.Progress())
		fire(t, timers, update)
	}
	if diff := cmp.Diff([]float64{0, 1.0 / 3, 2.0 / 3}, progress); diff != "" {
		t.Fatalf("progress (-want +got):\n%s", diff)
	}
	if c.Phase() != CompressionFlying {
		t.Fatalf("phase = %v, want flying", c.Phase())
	}
	if timers.Len() != 0 {
		t.Fatalf("flying must wait for the user, pending = %d", timers.Len())
	}
	if len(rec.advances) != 0 {
		t.Fatalf("advanced early: %v", rec.advances)
	}
}

func TestCompressionOrbRampReachesTarget(t *testing.T) {
	rec := &recorder{}
	timers := timeline.New(0)
	c := NewCompression(timers, 5, rec.hooks())
	update := func(m timeline.Fired) { c.Update(m) }
	c.Start()
	for c.Phase() == CompressionThinking {
		fire(t, timers, update)
	}
	c.FormTokens()
	if c.Phase() != CompressionOrbs || c.Orbs() != 0 {
		t.Fatalf("phase=%v orbs=%d", c.Phase(), c.Orbs())
	}

	last := 0
	ticks := 0
	for timers.Len() > 0 {
		fire(t, timers, update)
		ticks++
		if c.Orbs() < last || c.Orbs() > 5 {
			t.Fatalf("orbs went %d -> %d", last, c.Orbs())
		}
		last = c.Orbs()
	}
	if c.Orbs() != 5 {
		t.Fatalf("orbs = %d, want 5", c.Orbs())
	}
	if ticks < OrbRampTicks-1 || ticks > OrbRampTicks+1 {
		t.Fatalf("ramp ticks = %d", ticks)
	}

	if !c.Continue() {
		t.Fatalf("continue refused in orbs")
	}
	if diff := cmp.Diff([]session.Stage{session.StageLatent}, rec.advances); diff != "" {
		t.Fatalf("advances (-want +got):\n%s", diff)
	}
}

func TestCompressionSetTargetRestartsRamp(t *testing.T) {
	timers := timeline.New(0)
	c := NewCompression(timers, 8, Hooks{})
	update := func(m timeline.Fired) { c.Update(m) }
	c.Start()
	for c.Phase() == CompressionThinking {
		fire(t, timers, update)
	}
	c.FormTokens()
	for i := 0; i < 10; i++ {
		fire(t, timers, update)
	}
	stale, _ := timers.Next()
	c.SetTarget(3)
	if timers.Live(stale) {
		t.Fatalf("old ramp timer still pending")
	}
	if c.Orbs() != 0 {
		t.Fatalf("orbs = %d after restart", c.Orbs())
	}
	for timers.Len() > 0 {
		fire(t, timers, update)
	}
	if c.Orbs() != 3 {
		t.Fatalf("orbs = %d, want 3", c.Orbs())
	}
}

func TestCompressionTeardownDropsTimers(t *testing.T) {
	timers := timeline.New(0)
	c := NewCompression(timers, 4, Hooks{})
	c.Start()
	h, _ := timers.Next()
	c.Teardown()
	c.Update(timeline.Fired{Handle: h})
	if c.ThinkingStep() != 0 {
		t.Fatalf("torn-down machine advanced to step %d", c.ThinkingStep())
	}
}

func TestQueryRefusesBlank(t *testing.T) {
	q := NewQuery(timeline.New(0), Hooks{})
	if _, ok := q.Start("   "); ok {
		t.Fatalf("blank query started")
	}
	if q.Phase() != QueryIdle {
		t.Fatalf("phase = %v", q.Phase())
	}
}

func TestQueryThinkingAdvancesToGeneration(t *testing.T) {
	rec := &recorder{}
	timers := timeline.New(0)
	q := NewQuery(timers, rec.hooks())
	if _, ok := q.Start("What is CLaRa?"); !ok {
		t.Fatalf("start refused")
	}
	if _, ok := q.Start("again"); ok {
		t.Fatalf("second start accepted while thinking")
	}
	steps := 0
	for q.Phase() == QueryThinking {
		fire(t, timers, func(m timeline.Fired) { q.Update(m) })
		steps++
	}
	if steps != QueryThinkingSteps {
		t.Fatalf("steps = %d", steps)
	}
	if diff := cmp.Diff([]session.Stage{session.StageGeneration}, rec.advances); diff != "" {
		t.Fatalf("advances (-want +got):\n%s", diff)
	}
	want := []sound.Cue{sound.Step, sound.Step, sound.Step, sound.Whoosh}
	if diff := cmp.Diff(want, rec.cues); diff != "" {
		t.Fatalf("cues (-want +got):\n%s", diff)
	}
}

func TestFlowStepperBounds(t *testing.T) {
	f := NewFlow(timeline.New(0), "ok", Hooks{})
	f.Prev()
	if f.Step() != 1 {
		t.Fatalf("prev from 1 moved to %d", f.Step())
	}
	for i := 0; i < 10; i++ {
		f.Next()
	}
	if f.Step() != FlowSteps {
		t.Fatalf("step = %d, want %d", f.Step(), FlowSteps)
	}
	if f.Jump(0) != nil || f.Jump(7) != nil || f.Step() != FlowSteps {
		t.Fatalf("out of range jump moved to %d", f.Step())
	}
}

func TestFlowJumpCancelsInFlightTimers(t *testing.T) {
	timers := timeline.New(0)
	f := NewFlow(timers, "CLaRa", Hooks{})
	f.Jump(6)
	fire(t, timers, func(m timeline.Fired) { f.Update(m) })
	if f.Displayed() != "C" {
		t.Fatalf("shown = %q", f.Displayed())
	}
	stale, _ := timers.Next()

	f.Jump(3)
	if timers.Live(stale) {
		t.Fatalf("typewriter timer survived the jump")
	}
	if f.Displayed() != "" || f.Typing() {
		t.Fatalf("answer not cleared after leaving the last step")
	}
	f.Update(timeline.Fired{Handle: stale})
	if f.Displayed() != "" {
		t.Fatalf("stale timer revealed %q", f.Displayed())
	}
}

func TestFlowJumpToCurrentIsNoop(t *testing.T) {
	timers := timeline.New(0)
	f := NewFlow(timers, "CLaRa", Hooks{})
	f.ToggleAutoplay()
	before, _ := timers.Next()
	if f.Jump(1) != nil {
		t.Fatalf("jump to current step returned a command")
	}
	if !timers.Live(before) {
		t.Fatalf("jump to current step cancelled autoplay")
	}
}

func TestFlowAutoplayRunsToAnswer(t *testing.T) {
	rec := &recorder{}
	timers := timeline.New(0)
	f := NewFlow(timers, "CLaRa", rec.hooks())
	f.ToggleAutoplay()
	h, _ := timers.Next()
	if h.Delay != 0 {
		t.Fatalf("pace 0 delay = %v", h.Delay)
	}
	var steps []int
	for timers.Len() > 0 {
		fire(t, timers, func(m timeline.Fired) { f.Update(m) })
		if len(steps) == 0 || steps[len(steps)-1] != f.Step() {
			steps = append(steps, f.Step())
		}
	}
	if diff := cmp.Diff([]int{2, 3, 4, 5, 6}, steps); diff != "" {
		t.Fatalf("steps (-want +got):\n%s", diff)
	}
	if f.Displayed() != "CLaRa" || f.Typing() {
		t.Fatalf("shown = %q typing=%v", f.Displayed(), f.Typing())
	}
	if !f.Continue() {
		t.Fatalf("continue refused on last step")
	}
	if diff := cmp.Diff([]session.Stage{session.StageGeneration}, rec.advances); diff != "" {
		t.Fatalf("advances (-want +got):\n%s", diff)
	}
}

func TestFlowSpeedRearmsAutoplay(t *testing.T) {
	timers := timeline.New(1)
	f := NewFlow(timers, "x", Hooks{})
	f.ToggleAutoplay()
	slow, _ := timers.Next()
	if slow.Delay != FlowSlowDelay {
		t.Fatalf("slow delay = %v", slow.Delay)
	}
	f.ToggleSpeed()
	if timers.Live(slow) {
		t.Fatalf("slow timer survived speed change")
	}
	medium, _ := timers.Next()
	if medium.Delay != FlowMediumDelay {
		t.Fatalf("medium delay = %v", medium.Delay)
	}
	f.ToggleAutoplay()
	if timers.Len() != 0 {
		t.Fatalf("pause left %d timers", timers.Len())
	}
}

func TestFlowContinueOnlyFromLastStep(t *testing.T) {
	rec := &recorder{}
	f := NewFlow(timeline.New(0), "x", rec.hooks())
	if f.Continue() {
		t.Fatalf("continue accepted on step 1")
	}
	if len(rec.advances) != 0 {
		t.Fatalf("advances = %v", rec.advances)
	}
}
