package session

import "fmt"

// Stage is one screen of the walkthrough. Exactly one is active at a time.
type Stage int

const (
	StageIntro Stage = iota
	StageSystem
	StageDocument
	StageCompression
	StageLatent
	StageQuery
	StageFlow
	StageGeneration
)

var stageNames = [...]string{
	StageIntro:       "intro",
	StageSystem:      "system-overview",
	StageDocument:    "document",
	StageCompression: "compression",
	StageLatent:      "latent-space",
	StageQuery:       "query",
	StageFlow:        "flow",
	StageGeneration:  "generation",
}

var stageLabels = [...]string{
	StageIntro:       "Intro",
	StageSystem:      "System",
	StageDocument:    "Document",
	StageCompression: "Compression",
	StageLatent:      "Latent Space",
	StageQuery:       "Query",
	StageFlow:        "Full Flow",
	StageGeneration:  "Generation",
}

func (s Stage) String() string {
	if !s.Valid() {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Label is the name shown in the navigation bar.
func (s Stage) Label() string {
	if !s.Valid() {
		return s.String()
	}
	return stageLabels[s]
}

// Valid reports whether s belongs to the closed stage set.
func (s Stage) Valid() bool {
	return s >= StageIntro && s <= StageGeneration
}

// ParseStage maps an identifier such as "latent-space" back to its Stage.
func ParseStage(name string) (Stage, error) {
	for i, candidate := range stageNames {
		if candidate == name {
			return Stage(i), nil
		}
	}
	return StageIntro, fmt.Errorf("unknown stage %q", name)
}

// Stages lists every stage in walkthrough order.
func Stages() []Stage {
	out := make([]Stage, 0, len(stageNames))
	for i := range stageNames {
		out = append(out, Stage(i))
	}
	return out
}

// NavStages lists the stages shown in the persistent menu. The full-flow
// animation is reached from the latent-space screen instead.
func NavStages() []Stage {
	return []Stage{
		StageIntro,
		StageSystem,
		StageDocument,
		StageCompression,
		StageLatent,
		StageQuery,
		StageGeneration,
	}
}
