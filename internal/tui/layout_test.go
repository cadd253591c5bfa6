package tui

import (
	"strings"
	"testing"
)

func TestPageLayoutUpdate(t *testing.T) {
	cases := []struct {
		name            string
		width           int
		height          int
		bodyWidth       int
		projectorWidth  int
		projectorHeight int
		editorHeight    int
	}{
		{name: "narrow", width: 80, height: 24, bodyWidth: 76, projectorWidth: 30, projectorHeight: 10, editorHeight: 5},
		{name: "wide", width: 200, height: 40, bodyWidth: 110, projectorWidth: 55, projectorHeight: 21, editorHeight: 12},
		{name: "tiny", width: 30, height: 10, bodyWidth: 40, projectorWidth: 24, projectorHeight: 9, editorHeight: 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			layout := newPageLayout()
			layout.Update(tc.width, tc.height)
			if layout.bodyWidth != tc.bodyWidth {
				t.Fatalf("body width mismatch: got %d want %d", layout.bodyWidth, tc.bodyWidth)
			}
			if layout.projectorWidth != tc.projectorWidth {
				t.Fatalf("projector width mismatch: got %d want %d", layout.projectorWidth, tc.projectorWidth)
			}
			if layout.projectorHeight != tc.projectorHeight {
				t.Fatalf("projector height mismatch: got %d want %d", layout.projectorHeight, tc.projectorHeight)
			}
			if layout.editorHeight != tc.editorHeight {
				t.Fatalf("editor height mismatch: got %d want %d", layout.editorHeight, tc.editorHeight)
			}
		})
	}
}

func TestContentBuilderSections(t *testing.T) {
	var cb contentBuilder
	cb.Section("first")
	cb.Section("   ")
	cb.Section("second\n")
	if got, want := cb.String(), "first\n\nsecond\n"; got != want {
		t.Fatalf("sections = %q, want %q", got, want)
	}
	if cb.Line() != 3 {
		t.Fatalf("line count = %d", cb.Line())
	}
	if got := indentMultiline("a\nb", "> "); !strings.HasPrefix(got, "> a\n> b") {
		t.Fatalf("indent = %q", got)
	}
	if got := joinNonEmpty([]string{"a", "", "b\n"}); got != "a\n\nb" {
		t.Fatalf("joinNonEmpty = %q", got)
	}
}

func TestHangingIndent(t *testing.T) {
	got := hanging("alpha beta gamma", "Q: ", 13)
	if want := "Q: alpha beta\n   gamma"; got != want {
		t.Fatalf("hanging = %q, want %q", got, want)
	}
}
