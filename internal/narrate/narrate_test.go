package narrate

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/clara-labs/walkthrough/internal/content"
	"github.com/clara-labs/walkthrough/internal/session"
	"github.com/clara-labs/walkthrough/internal/sound"
)

func runInstant(t *testing.T, sess *session.Session, flow bool) (string, []sound.Cue) {
	t.Helper()
	var buf bytes.Buffer
	var cues []sound.Cue
	err := Run(context.Background(), Options{
		Out:     &buf,
		Session: sess,
		Sound:   sound.Func(func(c sound.Cue) { cues = append(cues, c) }),
		Flow:    flow,
		NoColor: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return buf.String(), cues
}

func TestRunWalksEveryStageInOrder(t *testing.T) {
	sess := session.New(session.Options{})
	out, _ := runInstant(t, sess, false)

	order := []string{"CLaRa: Continuous Latent Reasoning", "System view", "Document", "Compression", "Latent space", "Query", "Generation"}
	pos := 0
	for _, marker := range order {
		i := strings.Index(out[pos:], marker)
		if i < 0 {
			t.Fatalf("missing %q after offset %d in:\n%s", marker, pos, out)
		}
		pos += i + len(marker)
	}
	if sess.Current() != session.StageGeneration {
		t.Fatalf("stage = %v, want generation", sess.Current())
	}
}

func TestRunStoresTheGeneratedAnswer(t *testing.T) {
	c, err := content.Default()
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	sess := session.New(session.Options{Query: "How is retrieval different?"})
	out, _ := runInstant(t, sess, false)

	want := c.Responder(content.ResponderFull).Answer("How is retrieval different?")
	if sess.Answer() != want {
		t.Fatalf("answer = %q, want %q", sess.Answer(), want)
	}
	if !strings.Contains(out, want) {
		t.Fatalf("answer not streamed to output:\n%s", out)
	}
}

func TestRunFillsBlankQueryWithSuggestion(t *testing.T) {
	c, _ := content.Default()
	sess := session.New(session.Options{})
	runInstant(t, sess, false)
	if sess.Query() != c.Suggestions[0] {
		t.Fatalf("query = %q, want first suggestion", sess.Query())
	}
}

func TestRunFlowDetour(t *testing.T) {
	c, _ := content.Default()
	sess := session.New(session.Options{})
	out, cues := runInstant(t, sess, true)

	if !strings.Contains(out, "6/6 Answer generated") {
		t.Fatalf("flow steps not narrated:\n%s", out)
	}
	brief := c.Responder(content.ResponderBrief).Answer(c.DefaultFlowQuery)
	if !strings.Contains(out, brief) {
		t.Fatalf("flow answer missing:\n%s", out)
	}
	if strings.Contains(out, "\n› Q: ") {
		t.Fatalf("flow detour should skip the query screen")
	}
	if sess.Answer() != c.Responders[content.ResponderFull].Fallback {
		t.Fatalf("answer = %q", sess.Answer())
	}
	if len(cues) == 0 || cues[len(cues)-1] != sound.Success {
		t.Fatalf("expected a closing success cue, got %v", cues)
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, Options{Session: session.New(session.Options{}), Pace: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunRequiresSession(t *testing.T) {
	if err := Run(context.Background(), Options{}); err == nil {
		t.Fatalf("expected error without a session")
	}
}
