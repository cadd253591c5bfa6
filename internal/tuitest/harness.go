// Package tuitest drives a terminal program inside a pseudo terminal and
// records what it draws, so walkthrough scenarios can be replayed end to end.
package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

const (
	defaultWidth   = 120
	defaultHeight  = 40
	defaultTimeout = 10 * time.Second
	pollInterval   = 20 * time.Millisecond
)

// Step is one scripted interaction. The harness first waits Delay, then, if
// WaitFor is set, blocks until that text has appeared on screen since the
// previous step, and finally writes Input.
type Step struct {
	Delay   time.Duration
	WaitFor string
	Input   []byte
}

// Config configures how the harness spawns and drives the program.
type Config struct {
	Command          []string
	Dir              string
	Env              []string
	Width            int
	Height           int
	Steps            []Step
	Timeout          time.Duration
	AllowedExitCodes []int
	AllowInterrupt   bool
}

// Recording contains the raw terminal stream plus parsed frames.
type Recording struct {
	Raw      []byte
	Frames   []Frame
	Duration time.Duration
}

// WaitError reports a WaitFor step whose text never appeared. It carries what
// the screen showed so failures are readable.
type WaitError struct {
	Step   int
	Text   string
	Screen string
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("tuitest: step %d: %q never appeared; last screen:\n%s", e.Step, e.Text, e.Screen)
}

// transcript is the PTY output shared between the reader goroutine and the
// script.
type transcript struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	cursor int
}

func (t *transcript) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.Write(p)
}

func (t *transcript) Bytes() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]byte(nil), t.buf.Bytes()...)
}

// seen reports whether text appeared after the cursor and, if so, moves the
// cursor past the output inspected so far.
func (t *transcript) seen(text string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	fresh := stripANSI(strings.ReplaceAll(string(t.buf.Bytes()[t.cursor:]), "\r", ""))
	if !strings.Contains(fresh, text) {
		return false
	}
	t.cursor = t.buf.Len()
	return true
}

func (t *transcript) lastScreen() string {
	frames := parseFrames(t.Bytes())
	if len(frames) == 0 {
		return ""
	}
	return frames[len(frames)-1].Plain
}

func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = defaultWidth
	}
	if c.Height <= 0 {
		c.Height = defaultHeight
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// acceptable reports whether the program's exit error is one the config
// tolerates.
func (c Config) acceptable(err error) bool {
	if err == nil {
		return true
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		for _, code := range c.AllowedExitCodes {
			if exitErr.ExitCode() == code {
				return true
			}
		}
	}
	return c.AllowInterrupt && strings.Contains(err.Error(), "signal: interrupt")
}

// Run starts the command inside a PTY, plays the steps against it and
// returns everything it wrote to the terminal.
func Run(ctx context.Context, cfg Config) (*Recording, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	cfg = cfg.withDefaults()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = buildEnv(cfg.Env)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(cfg.Height), Cols: uint16(cfg.Width)})
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	output := &transcript{}
	drained := make(chan struct{})
	go pump(ptmx, output, drained)

	start := time.Now()
	if err := play(ctx, ptmx, output, cfg.Steps); err != nil {
		return nil, err
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()
	select {
	case err := <-exited:
		if !cfg.acceptable(err) {
			return nil, fmt.Errorf("tuitest: program exited with error: %w", err)
		}
	case <-ctx.Done():
		return nil, fmt.Errorf("tuitest: timeout waiting for program exit: %w", ctx.Err())
	}

	// Closing the PTY lets the reader goroutine finish draining.
	_ = ptmx.Close()
	<-drained

	raw := output.Bytes()
	return &Recording{Raw: raw, Frames: parseFrames(raw), Duration: time.Since(start)}, nil
}

// pump copies PTY output into the transcript and answers terminal queries
// until the PTY closes.
func pump(ptmx io.ReadWriter, output *transcript, done chan<- struct{}) {
	defer close(done)
	responder := newTerminalResponder(ptmx)
	buf := make([]byte, 4096)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			responder.Process(buf[:n])
			_, _ = output.Write(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

func play(ctx context.Context, w io.Writer, output *transcript, steps []Step) error {
	for i, step := range steps {
		if step.Delay > 0 {
			if err := sleep(ctx, step.Delay); err != nil {
				return fmt.Errorf("tuitest: context cancelled before script finished: %w", err)
			}
		}
		if step.WaitFor != "" {
			if err := waitFor(ctx, output, step.WaitFor); err != nil {
				return &WaitError{Step: i, Text: step.WaitFor, Screen: output.lastScreen()}
			}
		}
		if len(step.Input) > 0 {
			if _, err := w.Write(step.Input); err != nil {
				return fmt.Errorf("tuitest: write input: %w", err)
			}
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func waitFor(ctx context.Context, output *transcript, text string) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if output.seen(text) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func buildEnv(extra []string) []string {
	env := os.Environ()
	env = append(env, extra...)
	termSet := false
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			termSet = true
			break
		}
	}
	if !termSet {
		env = append(env, "TERM=xterm-256color")
	}
	return env
}

// Key sequences as a terminal sends them.
var (
	KeyEnter    = []byte{'\r'}
	KeyCtrlC    = []byte{3}
	KeyEsc      = []byte{27}
	KeyTab      = []byte{'\t'}
	KeyShiftTab = []byte("\x1b[Z")
	KeyUp       = []byte("\x1b[A")
	KeyDown     = []byte("\x1b[B")
	KeyRight    = []byte("\x1b[C")
	KeyLeft     = []byte("\x1b[D")
)

// Text returns the bytes of a typed string.
func Text(s string) []byte {
	return []byte(s)
}
