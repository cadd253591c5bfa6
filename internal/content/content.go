// Package content carries the walkthrough narrative: stage copy, thinking
// step labels, suggestions and the canned answer rules. It is embedded as
// YAML so the copy can be edited without touching the screens.
package content

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/clara-labs/walkthrough/internal/responder"
)

//go:embed content.yaml
var raw []byte

// StageCopy is the heading and markdown description of one screen.
type StageCopy struct {
	Accent      string `yaml:"accent"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Step is a labelled entry in one of the ordered step lists.
type Step struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	Desc  string `yaml:"desc"`
}

// Explainer is the "what are embeddings" panel.
type Explainer struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
	Note  string `yaml:"note"`
}

// RuleSet is one responder configuration.
type RuleSet struct {
	Rules    []responder.Rule `yaml:"rules"`
	Fallback string           `yaml:"fallback"`
}

// Content is the full narrative.
type Content struct {
	Title               string               `yaml:"title"`
	Subtitle            string               `yaml:"subtitle"`
	Tagline             string               `yaml:"tagline"`
	Stages              map[string]StageCopy `yaml:"stages"`
	Pipeline            []Step               `yaml:"pipeline"`
	Embeddings          Explainer            `yaml:"embeddings"`
	LLMCallouts         []string             `yaml:"llm_callouts"`
	CompressionThinking []Step               `yaml:"compression_thinking"`
	QueryThinking       []Step               `yaml:"query_thinking"`
	Suggestions         []string             `yaml:"suggestions"`
	FlowSteps           []Step               `yaml:"flow_steps"`
	CodeSnippet         string               `yaml:"code_snippet"`
	Grounding           string               `yaml:"grounding"`
	DefaultFlowQuery    string               `yaml:"default_flow_query"`
	Responders          map[string]RuleSet   `yaml:"responders"`
}

// Responder names used by the screens.
const (
	ResponderFull  = "full"
	ResponderBrief = "brief"
)

// Parse decodes and validates a content document.
func Parse(data []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Content) validate() error {
	for _, name := range []string{ResponderFull, ResponderBrief} {
		set, ok := c.Responders[name]
		if !ok {
			return fmt.Errorf("content: responder %q missing", name)
		}
		if strings.TrimSpace(set.Fallback) == "" {
			return fmt.Errorf("content: responder %q has no fallback", name)
		}
	}
	if len(c.FlowSteps) == 0 {
		return fmt.Errorf("content: flow steps missing")
	}
	return nil
}

var (
	defaultOnce    sync.Once
	defaultContent *Content
	defaultErr     error
)

// Default returns the embedded narrative, parsed once.
func Default() (*Content, error) {
	defaultOnce.Do(func() {
		defaultContent, defaultErr = Parse(raw)
	})
	return defaultContent, defaultErr
}

// Stage returns the copy for a stage identifier; missing entries yield a
// zero StageCopy.
func (c *Content) Stage(id string) StageCopy {
	return c.Stages[id]
}

// Responder builds the named responder.
func (c *Content) Responder(name string) *responder.Responder {
	set := c.Responders[name]
	return responder.New(set.Rules, set.Fallback)
}

// Snippet renders the differentiable top-k snippet for k.
func (c *Content) Snippet(k int) string {
	return strings.ReplaceAll(c.CodeSnippet, "{{k}}", strconv.Itoa(k))
}
