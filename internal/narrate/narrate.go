// Package narrate runs the walkthrough without a terminal UI. It drives the
// same session and sequencers as the TUI, sleeping on their timers, and
// prints every phase as coloured text.
package narrate

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"go.uber.org/zap"

	"github.com/clara-labs/walkthrough/internal/content"
	"github.com/clara-labs/walkthrough/internal/sequence"
	"github.com/clara-labs/walkthrough/internal/session"
	"github.com/clara-labs/walkthrough/internal/sound"
	"github.com/clara-labs/walkthrough/internal/timeline"
	"github.com/clara-labs/walkthrough/internal/viz"
)

const defaultWidth = 72

// Options configure a narration run.
type Options struct {
	Out     io.Writer
	Session *session.Session
	Content *content.Content
	Sound   sound.Player
	Log     *zap.Logger

	// Pace scales every sequencer delay; 0 runs instantly.
	Pace float64
	// Flow takes the full-flow detour after the latent space.
	Flow    bool
	Width   int
	NoColor bool
}

type palette struct {
	stage  *color.Color
	phase  *color.Color
	detail *color.Color
	answer *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		stage:  color.New(color.FgCyan, color.Bold),
		phase:  color.New(color.FgYellow),
		detail: color.New(color.FgHiBlack),
		answer: color.New(color.FgGreen),
	}
	if noColor {
		for _, c := range []*color.Color{p.stage, p.phase, p.detail, p.answer} {
			c.DisableColor()
		}
	}
	return p
}

type narrator struct {
	ctx    context.Context
	opts   Options
	out    io.Writer
	sess   *session.Session
	script *content.Content
	log    *zap.Logger
	color  palette
	width  int

	next  session.Stage
	moved bool
}

// Run narrates from the session's current stage until the generated answer
// is printed or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Session == nil {
		return fmt.Errorf("narrate: session is required")
	}
	if opts.Content == nil {
		c, err := content.Default()
		if err != nil {
			return err
		}
		opts.Content = c
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Sound == nil {
		opts.Sound = sound.Mute{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}
	n := &narrator{
		ctx:    ctx,
		opts:   opts,
		out:    opts.Out,
		sess:   opts.Session,
		script: opts.Content,
		log:    opts.Log.With(zap.String("component", "narrate"), zap.String("session", opts.Session.ID())),
		color:  newPalette(opts.NoColor),
		width:  width,
	}
	return n.run()
}

func (n *narrator) run() error {
	for {
		if err := n.ctx.Err(); err != nil {
			return err
		}
		stage := n.sess.Current()
		n.log.Info("stage", zap.Stringer("stage", stage))
		n.moved = false

		var err error
		switch stage {
		case session.StageIntro:
			n.intro()
			n.request(session.StageSystem)
		case session.StageSystem:
			n.system()
			n.request(session.StageDocument)
		case session.StageDocument:
			n.document()
			n.request(session.StageCompression)
		case session.StageCompression:
			err = n.compression()
		case session.StageLatent:
			n.latent()
			if n.opts.Flow {
				n.request(session.StageFlow)
			} else {
				n.request(session.StageQuery)
			}
		case session.StageQuery:
			err = n.query()
		case session.StageFlow:
			err = n.flow()
		case session.StageGeneration:
			return n.generation()
		}
		if err != nil {
			return err
		}
		if !n.moved {
			return fmt.Errorf("narrate: stage %s did not advance", stage)
		}
		n.sess.GoTo(n.next)
	}
}

func (n *narrator) request(s session.Stage) {
	n.next = s
	n.moved = true
}

func (n *narrator) hooks() sequence.Hooks {
	return sequence.Hooks{
		Cue:     n.opts.Sound.Play,
		Advance: n.request,
		Answer:  n.sess.SetAnswer,
		Log:     n.opts.Log,
	}
}

// drive delivers pending timers to update in arm order, sleeping for each
// delay, until done reports true or nothing is left.
func (n *narrator) drive(timers *timeline.Timers, update func(timeline.Fired), done func() bool) error {
	for !done() {
		h, ok := timers.Next()
		if !ok {
			return nil
		}
		if err := sleep(n.ctx, h.Delay); err != nil {
			timers.CancelAll()
			return err
		}
		update(timeline.Fired{Handle: h})
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (n *narrator) heading(s session.Stage) {
	sc := n.script.Stage(s.String())
	title := sc.Title
	if title == "" {
		title = s.Label()
	}
	fmt.Fprintln(n.out)
	n.color.stage.Fprintf(n.out, "%s %s\n", sc.Accent, title)
	if sc.Description != "" {
		n.paragraph(plain(sc.Description))
	}
}

func (n *narrator) paragraph(s string) {
	fmt.Fprintln(n.out, wordwrap.String(strings.TrimSpace(s), n.width))
}

func (n *narrator) detail(format string, args ...any) {
	line := wordwrap.String(fmt.Sprintf(format, args...), n.width-2)
	n.color.detail.Fprintln(n.out, indent.String(line, 2))
}

func (n *narrator) phase(format string, args ...any) {
	n.color.phase.Fprintf(n.out, "› "+format+"\n", args...)
}

var markdown = strings.NewReplacer("**", "", "*", "", "\n", " ")

func plain(md string) string {
	return markdown.Replace(strings.TrimSpace(md))
}

func (n *narrator) intro() {
	n.color.stage.Fprintln(n.out, n.script.Title+": "+n.script.Subtitle)
	n.paragraph(n.script.Tagline)
}

func (n *narrator) system() {
	n.heading(session.StageSystem)
	for i, step := range n.script.Pipeline {
		n.detail("%2d. %s: %s", i+1, step.Label, step.Desc)
	}
	n.phase("%s", n.script.Embeddings.Title)
	n.paragraph(plain(n.script.Embeddings.Body))
}

func (n *narrator) document() {
	n.heading(session.StageDocument)
	doc := n.sess.EffectiveDocument()
	words := len(strings.Fields(doc))
	n.paragraph(excerpt(doc, 240))
	n.detail("%d words · ~%d tokens", words, viz.TokenEstimate(words))
}

func (n *narrator) compression() error {
	n.heading(session.StageCompression)
	words := viz.WordsOf(n.sess.Document(), viz.MaxCompressionWords)
	target := viz.TargetTokenCount(len(words), n.sess.CompressionRatio(), viz.CompressionFloor)
	n.detail("%d words at %dx compression → %d memory tokens", len(words), n.sess.CompressionRatio(), target)

	timers := timeline.New(n.opts.Pace)
	c := sequence.NewCompression(timers, target, n.hooks())
	defer c.Teardown()

	steps := n.script.CompressionThinking
	c.Start()
	shown := -1
	err := n.drive(timers, func(m timeline.Fired) { c.Update(m) }, func() bool {
		if c.Phase() == sequence.CompressionThinking && c.ThinkingStep() != shown {
			shown = c.ThinkingStep()
			if shown < len(steps) {
				n.phase("%s %s", steps[shown].Label, steps[shown].Desc)
			}
		}
		return c.Phase() != sequence.CompressionThinking
	})
	if err != nil {
		return err
	}

	fly := viz.WordsOf(n.sess.Document(), viz.FlyingWords)
	n.detail("%s …", strings.Join(fly, " "))
	c.FormTokens()
	if err := n.drive(timers, func(m timeline.Fired) { c.Update(m) }, func() bool { return false }); err != nil {
		return err
	}
	n.phase("%s (%d memory tokens)", strings.Repeat("●", c.Orbs()), c.Orbs())
	c.Continue()
	return nil
}

func (n *narrator) latent() {
	n.heading(session.StageLatent)
	count := viz.TargetTokenCount(n.sess.DocumentWordCount(), n.sess.CompressionRatio(), viz.LatentFloor)
	selected := viz.TopKIndices(n.sess.TopK(), count)
	n.detail("%d memory tokens in the latent space, top-%d selected", count, n.sess.TopK())
	labels := make([]string, 0, len(selected))
	for _, p := range viz.Points(make(viz.Layout, count), selected) {
		if p.Selected {
			labels = append(labels, p.Label)
		}
	}
	n.detail("selected: %s", strings.Join(labels, ", "))
}

func (n *narrator) query() error {
	n.heading(session.StageQuery)
	q := strings.TrimSpace(n.sess.Query())
	if q == "" && len(n.script.Suggestions) > 0 {
		q = n.script.Suggestions[0]
		n.sess.SetQuery(q)
	}
	n.phase("Q: %s", q)

	timers := timeline.New(n.opts.Pace)
	m := sequence.NewQuery(timers, n.hooks())
	defer m.Teardown()
	if _, ok := m.Start(q); !ok {
		return fmt.Errorf("narrate: query is empty")
	}
	steps := n.script.QueryThinking
	shown := -1
	return n.drive(timers, func(f timeline.Fired) { m.Update(f) }, func() bool {
		if m.Phase() == sequence.QueryThinking && m.Step() != shown {
			shown = m.Step()
			if shown < len(steps) {
				n.phase("%s", steps[shown].Label)
			}
		}
		return m.Phase() == sequence.QueryDone
	})
}

func (n *narrator) flow() error {
	n.heading(session.StageFlow)
	q := n.sess.Query()
	if strings.TrimSpace(q) == "" {
		q = n.script.DefaultFlowQuery
	}
	answer := n.script.Responder(content.ResponderBrief).Answer(q)

	timers := timeline.New(n.opts.Pace)
	f := sequence.NewFlow(timers, answer, n.hooks())
	defer f.Teardown()
	f.ToggleAutoplay()

	printed := 0
	step := 0
	announce := func() {
		if f.Step() != step {
			step = f.Step()
			s := n.script.FlowSteps[step-1]
			n.phase("%d/%d %s", step, sequence.FlowSteps, s.Label)
			n.detail("%s", s.Desc)
		}
	}
	announce()
	err := n.drive(timers, func(m timeline.Fired) { f.Update(m) }, func() bool {
		announce()
		printed = n.stream(f.Displayed(), printed)
		return f.AtLastStep() && !f.Typing()
	})
	if err != nil {
		return err
	}
	n.stream(f.Displayed(), printed)
	fmt.Fprintln(n.out)
	f.Continue()
	return nil
}

func (n *narrator) generation() error {
	n.heading(session.StageGeneration)
	answer := n.script.Responder(content.ResponderFull).Answer(n.sess.Query())

	timers := timeline.New(n.opts.Pace)
	g := sequence.NewGeneration(timers, n.hooks())
	defer g.Teardown()
	g.Reset(answer)

	n.phase("Retrieving…")
	printed := 0
	announced := false
	err := n.drive(timers, func(m timeline.Fired) { g.Update(m) }, func() bool {
		if g.Phase() != sequence.GenerationRetrieving && !announced {
			announced = true
			n.phase("Generating…")
		}
		printed = n.stream(g.Displayed(), printed)
		return g.Phase() == sequence.GenerationDone
	})
	if err != nil {
		return err
	}
	n.stream(g.Displayed(), printed)
	fmt.Fprintln(n.out)
	n.detail("%s", n.script.Grounding)
	return nil
}

// stream writes the runes of shown past the first printed ones.
func (n *narrator) stream(shown string, printed int) int {
	r := []rune(shown)
	if len(r) <= printed {
		return printed
	}
	n.color.answer.Fprint(n.out, string(r[printed:]))
	return len(r)
}

func excerpt(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "…"
}
