package content

import (
	"strings"
	"testing"
)

func TestDefaultContentParses(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if c.Title != "CLaRa" {
		t.Fatalf("title = %q", c.Title)
	}
	if len(c.Pipeline) != 10 {
		t.Fatalf("pipeline steps = %d, want 10", len(c.Pipeline))
	}
	if len(c.CompressionThinking) != 3 || len(c.QueryThinking) != 3 {
		t.Fatalf("thinking steps = %d/%d, want 3/3", len(c.CompressionThinking), len(c.QueryThinking))
	}
	if len(c.FlowSteps) != 6 {
		t.Fatalf("flow steps = %d, want 6", len(c.FlowSteps))
	}
	if len(c.Suggestions) != 3 {
		t.Fatalf("suggestions = %d, want 3", len(c.Suggestions))
	}
	for _, id := range []string{"system-overview", "document", "compression", "latent-space", "query", "flow", "generation"} {
		if c.Stage(id).Title == "" {
			t.Fatalf("stage %q has no title", id)
		}
	}
}

func TestSnippetEmbedsTopK(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if got := c.Snippet(6); !strings.Contains(got, "k=6)") {
		t.Fatalf("snippet missing k: %q", got)
	}
}

func TestRespondersFollowRuleOrder(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	full := c.Responder(ResponderFull)
	ratio := full.Answer("What is the compression ratio?")
	if !strings.HasPrefix(ratio, "CLaRa compresses documents") {
		t.Fatalf("compress rule should win over ratio, got %q", ratio)
	}
	if got := full.Answer("what ratio?"); !strings.HasPrefix(got, "CLaRa achieves compression ratios") {
		t.Fatalf("ratio rule not matched: %q", got)
	}
	if got := full.Answer("hello"); got != c.Responders[ResponderFull].Fallback {
		t.Fatalf("expected fallback, got %q", got)
	}
	brief := c.Responder(ResponderBrief)
	if got := brief.Answer("How is RETRIEVAL done?"); !strings.Contains(got, "differentiable top-k") {
		t.Fatalf("brief retrieval answer = %q", got)
	}
}

func TestParseRejectsMissingResponder(t *testing.T) {
	doc := []byte("title: x\nflow_steps:\n  - {id: \"1\", label: a}\nresponders:\n  full:\n    fallback: f\n")
	if _, err := Parse(doc); err == nil || !strings.Contains(err.Error(), "brief") {
		t.Fatalf("expected missing brief responder error, got %v", err)
	}
	if _, err := Parse([]byte("title: [")); err == nil {
		t.Fatal("expected decode error")
	}
}
