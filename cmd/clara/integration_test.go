package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/clara-labs/walkthrough/internal/tuitest"
)

const testDocument = "CLaRa compresses each document into a handful of continuous memory tokens. " +
	"A query is encoded into the same latent space and the closest tokens are handed to the generator. " +
	"Retrieval and generation are trained together so the compressor learns what answers need."

func TestWalkthroughEndToEnd(t *testing.T) {
	t.Parallel()

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)
	doc := writeDocument(t)

	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "--no-alt-screen", "--doc", doc, "--seed", "7"},
		Dir:     cmdDir,
		Env:     []string{"CLARA_PACE=0.05", "CLARA_MUTE=true"},
		Width:   110,
		Height:  48,
		Steps: []tuitest.Step{
			{WaitFor: "See how it works", Input: tuitest.KeyEnter},
			{WaitFor: "Start with a document", Input: tuitest.KeyEnter},
			{WaitFor: "Compress it", Input: tuitest.KeyEnter},
			{WaitFor: "ratio", Input: tuitest.KeyEnter},
			{WaitFor: "Form memory tokens", Input: tuitest.KeyEnter},
			{WaitFor: "Into the latent space", Input: tuitest.KeyEnter},
			{WaitFor: "Ask a question", Input: tuitest.KeyEnter},
			{WaitFor: "Search the latent space", Input: tuitest.KeyDown},
			{Delay: 100 * time.Millisecond, Input: tuitest.KeyEnter},
			{WaitFor: "Start over", Input: tuitest.KeyCtrlC},
		},
		Timeout: 20 * time.Second,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}

	for _, want := range []string{"System view", "Latent space", "Answer ready", "Ratio 16x"} {
		if !rec.Contains(want) {
			t.Fatalf("recording never showed %q", want)
		}
	}
	if _, ok := rec.FrameContaining("Start over"); !ok {
		t.Fatalf("no frame with the finished answer")
	}
}

func TestFullFlowDetour(t *testing.T) {
	t.Parallel()

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)

	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "--no-alt-screen", "--stage", "latent-space", "--top-k", "3"},
		Dir:     cmdDir,
		Env:     []string{"CLARA_PACE=0.05", "CLARA_MUTE=true"},
		Width:   110,
		Height:  48,
		Steps: []tuitest.Step{
			{WaitFor: "Watch the full flow", Input: tuitest.Text("f")},
			{WaitFor: "1/6", Input: tuitest.Text("a")},
			{WaitFor: "See full generation", Input: tuitest.KeyEnter},
			{WaitFor: "Start over", Input: tuitest.KeyCtrlC},
		},
		Timeout: 20 * time.Second,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}
	if !rec.Contains("Top-3") {
		t.Fatalf("flow never highlighted the top-k tokens")
	}
	if _, ok := rec.FinalFrame(); !ok {
		t.Fatalf("no frames captured")
	}
}

func TestNarrateRunsHeadless(t *testing.T) {
	t.Parallel()

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)

	cmd := exec.Command(binary, "narrate", "--pace", "0", "--no-color", "--doc", writeDocument(t))
	cmd.Dir = cmdDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("narrate: %v\n%s", err, out)
	}
	text := string(out)
	for _, want := range []string{"CLaRa: Continuous Latent Reasoning", "System view", "Compression", "Latent space", "Generation"} {
		if !strings.Contains(text, want) {
			t.Fatalf("narration missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Full flow") {
		t.Fatalf("narration took the flow detour without --flow")
	}
	if strings.Contains(text, "\x1b[") {
		t.Fatalf("--no-color output contains escape codes")
	}
}

func TestRejectsUnknownStage(t *testing.T) {
	t.Parallel()

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)

	cmd := exec.Command(binary, "narrate", "--stage", "nowhere")
	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("expected failure, got:\n%s", out)
	}
	if !strings.Contains(string(out), `unknown stage "nowhere"`) {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func writeDocument(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clara.txt")
	if err := os.WriteFile(path, []byte(testDocument), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}
	return path
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	tmp := t.TempDir()
	name := "clara-integration"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(tmp, name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}

func TestStageFlagListsEveryStage(t *testing.T) {
	usage := newRootCmd().PersistentFlags().Lookup("stage").Usage
	for _, name := range []string{"intro", "latent-space", "flow", "generation"} {
		if !strings.Contains(usage, name) {
			t.Fatalf("stage help %q missing %q", usage, name)
		}
	}
}
