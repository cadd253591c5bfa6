package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	want := Config{CompressionRatio: 16, TopK: 4, Pace: 1, LogLevel: "info"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CLARA_COMPRESSION_RATIO", "33")
	t.Setenv("CLARA_TOP_K", "20")
	t.Setenv("CLARA_MUTE", "true")
	t.Setenv("CLARA_PACE", "0")
	t.Setenv("CLARA_DOCUMENT", "paper.pdf")
	t.Setenv("CLARA_LOG_LEVEL", "debug")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.CompressionRatio != 32 {
		t.Fatalf("ratio = %d, want snapped to 32", cfg.CompressionRatio)
	}
	if cfg.TopK != 8 {
		t.Fatalf("top-k = %d, want clamped to 8", cfg.TopK)
	}
	if !cfg.Mute || cfg.Pace != 0 || cfg.DocumentPath != "paper.pdf" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestFromEnvRejectsGarbage(t *testing.T) {
	t.Setenv("CLARA_TOP_K", "many")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected parse error")
	}
}
