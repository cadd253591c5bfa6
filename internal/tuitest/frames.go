package tuitest

import (
	"regexp"
	"strings"
)

// Frame is one repaint of the screen with escape sequences removed from Plain.
type Frame struct {
	Index int
	ANSI  string
	Plain string
}

var (
	// A repaint starts after an erase-display, or after the cursor-up that
	// Bubble Tea's inline renderer emits to rewind over the previous frame.
	repaintPattern = regexp.MustCompile(`\x1b\[[0-9;]*J|\x1b\[[0-9]+A`)
	ansiPattern    = regexp.MustCompile(`\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)|\x1b\[[0-9;?]*[A-Za-z]|[\x0e\x0f]`)
)

func parseFrames(raw []byte) []Frame {
	stream := strings.ReplaceAll(string(raw), "\r", "")
	var frames []Frame
	for _, chunk := range repaintPattern.Split(stream, -1) {
		chunk = strings.TrimPrefix(strings.Trim(chunk, "\x00"), "\x1b[H")
		plain := tidy(stripANSI(chunk))
		if plain == "" {
			continue
		}
		frames = append(frames, Frame{Index: len(frames), ANSI: chunk, Plain: plain})
	}
	return frames
}

// FinalFrame returns the last captured frame. The second return value is false
// when no frames were recorded.
func (r *Recording) FinalFrame() (Frame, bool) {
	if r == nil || len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}

// FrameContaining returns the first frame whose plain text contains text.
func (r *Recording) FrameContaining(text string) (Frame, bool) {
	if r == nil {
		return Frame{}, false
	}
	for _, f := range r.Frames {
		if strings.Contains(f.Plain, text) {
			return f, true
		}
	}
	return Frame{}, false
}

// Contains reports whether text was drawn at any point in the session.
func (r *Recording) Contains(text string) bool {
	if r == nil {
		return false
	}
	return strings.Contains(stripANSI(strings.ReplaceAll(string(r.Raw), "\r", "")), text)
}

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// tidy drops trailing spaces on every line and trailing blank lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	end := 0
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
		if lines[i] != "" {
			end = i + 1
		}
	}
	return strings.Join(lines[:end], "\n")
}
