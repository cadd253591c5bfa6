package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/clara-labs/walkthrough/internal/document"
)

func TestLoadDocumentJob(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.md")
	if err := os.WriteFile(path, []byte("# Title\n\nSome   text\nhere."), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	msg, err := loadDocumentJob(path)(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	loaded, ok := msg.(documentLoadedMsg)
	if !ok {
		t.Fatalf("expected documentLoadedMsg, got %T", msg)
	}
	if loaded.text != "# Title Some text here." {
		t.Fatalf("text = %q", loaded.text)
	}
	if loaded.path != path {
		t.Fatalf("path = %q", loaded.path)
	}
}

func TestLoadDocumentJobReportsErrors(t *testing.T) {
	msg, err := loadDocumentJob(filepath.Join(t.TempDir(), "missing.txt"))(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v", err)
	}
	if loaded := msg.(documentLoadedMsg); loaded.err == nil {
		t.Fatal("message should carry the error")
	}

	_, err = loadDocumentJob(filepath.Join(t.TempDir(), "slides.pptx"))(context.Background())
	if !errors.Is(err, document.ErrUnsupported) {
		t.Fatalf("err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := loadDocumentJob("whatever.txt")(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled err = %v", err)
	}
}

func TestLoadDocumentJobGivesUpWhenContextEnds(t *testing.T) {
	release := make(chan struct{})
	orig := readDocument
	t.Cleanup(func() {
		close(release)
		readDocument = orig
	})
	readDocument = func(string) (string, error) {
		<-release
		return "too late", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	msg, err := loadDocumentJob("slow.pdf")(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("job waited %v for a stuck read", elapsed)
	}
	if loaded := msg.(documentLoadedMsg); loaded.text != "" || loaded.err == nil {
		t.Fatalf("msg = %+v", loaded)
	}
}

func TestExpandHome(t *testing.T) {
	orig := userHomeDir
	t.Cleanup(func() { userHomeDir = orig })
	userHomeDir = func() (string, error) { return "/home/tester", nil }

	if got := expandHome("~/docs/a.txt"); got != "/home/tester/docs/a.txt" {
		t.Fatalf("expand = %q", got)
	}
	if got := expandHome("/abs/a.txt"); got != "/abs/a.txt" {
		t.Fatalf("absolute path changed: %q", got)
	}

	userHomeDir = func() (string, error) { return "", errors.New("no home") }
	if got := expandHome("~/a.txt"); got != "~/a.txt" {
		t.Fatalf("unresolved home changed the path: %q", got)
	}
}

func TestJobBusNewestJobWins(t *testing.T) {
	bus := newJobBus(zap.NewNop())
	if cmd := bus.Start(jobKindLoadDocument, loadDocumentJob("a.txt")); cmd == nil {
		t.Fatal("Start returned nil")
	}
	bus.Start(jobKindLoadDocument, loadDocumentJob("b.txt"))

	if bus.finish(jobKindLoadDocument, "load-document-1") {
		t.Fatal("replaced job still reported as current")
	}
	if !bus.finish(jobKindLoadDocument, "load-document-2") {
		t.Fatal("newest job not current")
	}
	if bus.finish(jobKindLoadDocument, "load-document-2") {
		t.Fatal("job finished twice")
	}
	if got := jobKindLoadDocument.label(); got != "loading document" {
		t.Fatalf("label = %q", got)
	}
}
