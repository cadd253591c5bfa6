package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestEmptyPathIsNop(t *testing.T) {
	log, err := New("", "debug")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.Core().Enabled(zap.ErrorLevel) {
		t.Fatalf("expected a disabled logger")
	}
}

func TestWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clara.log")
	log, err := New(path, "info")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debug("hidden")
	log.Info("stage", zap.String("to", "document"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1: %q", len(lines), data)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry["message"] != "stage" || entry["to"] != "document" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestRejectsUnknownLevel(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "x.log"), "chatty"); err == nil {
		t.Fatalf("expected level error")
	}
}
