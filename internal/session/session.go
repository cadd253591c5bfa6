// Package session holds the walkthrough's single owned state record: the
// active stage plus the values entered by the user. Setters are the only
// mutation surface.
package session

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// SampleDocument stands in for the document whenever the user left it blank.
const SampleDocument = "CLaRa compresses documents into dense memory tokens. Instead of retrieving raw text chunks, both documents and queries live in a unified latent space. The generator can pass feedback to the retriever, so the system learns to retrieve what actually helps generate correct answers. Compression ratios of 16x to 128x are achievable."

// Range describes a slider: inclusive bounds, step and default.
type Range struct {
	Min     int
	Max     int
	Step    int
	Default int
}

var (
	CompressionRange = Range{Min: 8, Max: 64, Step: 4, Default: 16}
	TopKRange        = Range{Min: 1, Max: 8, Step: 1, Default: 4}
)

// Clamp bounds v to the range and snaps it onto the step grid.
func (r Range) Clamp(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	if r.Step > 1 {
		steps := math.Round(float64(v-r.Min) / float64(r.Step))
		v = r.Min + int(steps)*r.Step
		if v > r.Max {
			v = r.Max
		}
	}
	return v
}

// Options seeds a new session. Zero values fall back to the range defaults.
type Options struct {
	Document         string
	Query            string
	CompressionRatio int
	TopK             int
}

// Session is the top-level controller state shared by every screen.
type Session struct {
	id       string
	stage    Stage
	document string
	query    string
	answer   string
	ratio    int
	topK     int

	// OnTransition, when set, observes every stage change.
	OnTransition func(from, to Stage)
}

// New returns a session positioned on the intro stage.
func New(opts Options) *Session {
	ratio := opts.CompressionRatio
	if ratio == 0 {
		ratio = CompressionRange.Default
	}
	topK := opts.TopK
	if topK == 0 {
		topK = TopKRange.Default
	}
	return &Session{
		id:       uuid.NewString(),
		stage:    StageIntro,
		document: opts.Document,
		query:    opts.Query,
		ratio:    CompressionRange.Clamp(ratio),
		topK:     TopKRange.Clamp(topK),
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Current returns the active stage.
func (s *Session) Current() Stage { return s.stage }

// GoTo activates a stage unconditionally. Any stage is reachable from any other.
func (s *Session) GoTo(stage Stage) {
	from := s.stage
	s.stage = stage
	if s.OnTransition != nil {
		s.OnTransition(from, stage)
	}
}

// Restart returns to the intro stage and clears the generated answer. The
// document, query, compression ratio and top-K keep their values.
func (s *Session) Restart() {
	s.answer = ""
	s.GoTo(StageIntro)
}

func (s *Session) Document() string { return s.document }
func (s *Session) Query() string    { return s.query }
func (s *Session) Answer() string   { return s.answer }

// CompressionRatio returns the clamped compression ratio.
func (s *Session) CompressionRatio() int { return s.ratio }

// TopK returns the clamped top-K.
func (s *Session) TopK() int { return s.topK }

// EffectiveDocument is the text the document screen shows and counts: the
// stored document, or SampleDocument when it is blank. The visuals further
// down the walkthrough size themselves from the stored text instead.
func (s *Session) EffectiveDocument() string {
	if strings.TrimSpace(s.document) == "" {
		return SampleDocument
	}
	return s.document
}

// DocumentWordCount counts the words of the stored document, zero when blank.
func (s *Session) DocumentWordCount() int { return len(strings.Fields(s.document)) }

func (s *Session) SetDocument(text string) { s.document = text }
func (s *Session) SetQuery(text string)    { s.query = text }
func (s *Session) SetAnswer(text string)   { s.answer = text }

// SetCompressionRatio stores the ratio clamped to CompressionRange.
func (s *Session) SetCompressionRatio(v int) {
	s.ratio = CompressionRange.Clamp(v)
}

// SetTopK stores k clamped to TopKRange.
func (s *Session) SetTopK(v int) {
	s.topK = TopKRange.Clamp(v)
}

// StepCompressionRatio moves the ratio slider by delta steps.
func (s *Session) StepCompressionRatio(delta int) {
	s.SetCompressionRatio(s.ratio + delta*CompressionRange.Step)
}

// StepTopK moves the top-K slider by delta steps.
func (s *Session) StepTopK(delta int) {
	s.SetTopK(s.topK + delta*TopKRange.Step)
}
