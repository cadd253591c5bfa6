package tuitest

import (
	"bytes"
	"io"
)

// terminalReplies answers the capability queries termenv and Bubble Tea send
// on startup, so programs under test do not stall waiting for a real
// terminal: cursor position, then foreground and background colour in both
// OSC terminator styles.
var terminalReplies = []struct {
	query []byte
	reply []byte
}{
	{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
	{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

// tailSize bounds how much output is kept to match queries split across reads.
const tailSize = 64

type terminalResponder struct {
	w   io.Writer
	buf []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, buf: make([]byte, 0, 4*tailSize)}
}

func (tr *terminalResponder) Process(chunk []byte) {
	tr.buf = append(tr.buf, chunk...)
	for tr.answerNext() {
	}
	if len(tr.buf) > 4*tailSize {
		tr.buf = append(tr.buf[:0], tr.buf[len(tr.buf)-tailSize:]...)
	}
}

// answerNext replies to the earliest pending query and drops everything up to
// and including it.
func (tr *terminalResponder) answerNext() bool {
	best, bestIdx := -1, -1
	for i, r := range terminalReplies {
		idx := bytes.Index(tr.buf, r.query)
		if idx >= 0 && (bestIdx < 0 || idx < bestIdx) {
			best, bestIdx = i, idx
		}
	}
	if best < 0 {
		return false
	}
	r := terminalReplies[best]
	tr.buf = tr.buf[bestIdx+len(r.query):]
	_, _ = tr.w.Write(r.reply)
	return true
}
