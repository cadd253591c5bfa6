// Package viz derives the numbers each screen needs to size its visuals from
// the shared session values. Everything here is a pure function except the
// layouts, which take their randomness from an injected source.
package viz

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// FallbackSentence keeps word-driven visuals non-empty for blank input.
const FallbackSentence = "CLaRa compresses documents into memory tokens."

const (
	MaxCompressionWords = 80
	CloudWords          = 24
	FlyingWords         = 12

	CompressionFloor = 2
	LatentFloor      = 4

	// FlowCompressionRatio is the fixed ratio the full-flow projector uses
	// to size its point cloud, independent of the slider.
	FlowCompressionRatio = 16
)

// WordsOf splits text on whitespace and keeps at most max words. Blank input
// yields the words of FallbackSentence.
func WordsOf(text string, max int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		words = strings.Fields(FallbackSentence)
	}
	if max >= 0 && len(words) > max {
		words = words[:max]
	}
	return words
}

// TargetTokenCount is max(floor, ceil(wordCount / ratio)).
func TargetTokenCount(wordCount, ratio, floor int) int {
	if ratio <= 0 {
		ratio = 1
	}
	if wordCount < 0 {
		wordCount = 0
	}
	n := (wordCount + ratio - 1) / ratio
	if n < floor {
		return floor
	}
	return n
}

// TokenEstimate approximates subword tokens as 1.3 per word.
func TokenEstimate(wordCount int) int {
	return int(math.Ceil(float64(wordCount) * 1.3))
}

// Fraction is index/total clamped to [0,1].
func Fraction(index, total int) float64 {
	if total <= 0 {
		return 0
	}
	f := float64(index) / float64(total)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// DefaultCandidates is the fixed "closest points" list used by the demo.
var DefaultCandidates = []int{0, 1, 2, 3}

// SelectTopK returns the first k candidates, order preserved. This is a
// stand-in for retrieval: no similarity is computed, the candidate list is
// simply assumed to be ranked already.
func SelectTopK(candidates []int, k int) []int {
	if k < 0 {
		k = 0
	}
	if k > len(candidates) {
		k = len(candidates)
	}
	out := make([]int, k)
	copy(out, candidates[:k])
	return out
}

// TopKIndices selects from DefaultCandidates restricted to the points that
// actually exist.
func TopKIndices(k, pointCount int) []int {
	candidates := DefaultCandidates
	if pointCount < len(candidates) {
		if pointCount < 0 {
			pointCount = 0
		}
		candidates = candidates[:pointCount]
	}
	return SelectTopK(candidates, k)
}

// Vec3 is a position in the latent space. 2D layouts leave Z at zero.
type Vec3 struct {
	X, Y, Z float64
}

// Norm is the euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Layout is an ordered set of positions, one per point.
type Layout []Vec3

// LayoutFunc places n points using rng.
type LayoutFunc func(rng *rand.Rand, n int) Layout

// LayoutRing2D spreads n points around the origin at radius 0.55–0.95 with up
// to 0.4 rad of angular jitter, so every point lies inside the unit disk.
func LayoutRing2D(rng *rand.Rand, n int) Layout {
	if n <= 0 {
		return Layout{}
	}
	out := make(Layout, n)
	for i := range out {
		angle := float64(i)/float64(n)*2*math.Pi + rng.Float64()*0.4
		r := 0.55 + rng.Float64()*0.4
		out[i] = Vec3{X: math.Cos(angle) * r, Y: math.Sin(angle) * r}
	}
	return out
}

const sphereBound = 4.5

// LayoutSphere3D places n orbs on a jittered ring of radius 2–3.5 with some
// vertical spread, then scales everything into the unit sphere.
func LayoutSphere3D(rng *rand.Rand, n int) Layout {
	if n <= 0 {
		return Layout{}
	}
	out := make(Layout, n)
	for i := range out {
		theta := float64(i)/float64(n)*2*math.Pi + rng.Float64()*0.5
		r := 2 + rng.Float64()*1.5
		p := Vec3{
			X: math.Cos(theta)*r + (rng.Float64() - 0.5),
			Y: (rng.Float64() - 0.5) * 1.5,
			Z: math.Sin(theta)*r + (rng.Float64() - 0.5),
		}
		out[i] = Vec3{X: p.X / sphereBound, Y: p.Y / sphereBound, Z: p.Z / sphereBound}
	}
	return out
}

// Memo caches a layout for one screen instance and only recomputes it when
// the requested point count changes.
type Memo struct {
	place  LayoutFunc
	rng    *rand.Rand
	n      int
	layout Layout
	valid  bool
}

// NewMemo binds a layout function to its randomness source.
func NewMemo(place LayoutFunc, rng *rand.Rand) *Memo {
	return &Memo{place: place, rng: rng}
}

// Get returns the layout for n points.
func (m *Memo) Get(n int) Layout {
	if m.valid && m.n == n {
		return m.layout
	}
	m.layout = m.place(m.rng, n)
	m.n = n
	m.valid = true
	return m.layout
}

// Point is one rendered memory token.
type Point struct {
	ID       string
	Label    string
	Pos      Vec3
	Selected bool
}

// Points labels a layout and flags the selected indices.
func Points(layout Layout, selected []int) []Point {
	chosen := make(map[int]bool, len(selected))
	for _, idx := range selected {
		chosen[idx] = true
	}
	out := make([]Point, len(layout))
	for i, pos := range layout {
		out[i] = Point{
			ID:       "doc-" + strconv.Itoa(i),
			Label:    "Doc " + strconv.Itoa(i+1),
			Pos:      pos,
			Selected: chosen[i],
		}
	}
	return out
}
