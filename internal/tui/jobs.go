package tui

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// documentLoadTimeout bounds how long the UI waits for one document load.
const documentLoadTimeout = 30 * time.Second

type jobKind string

const jobKindLoadDocument jobKind = "load-document"

// label is the footer badge text while a job of this kind runs.
func (k jobKind) label() string {
	switch k {
	case jobKindLoadDocument:
		return "loading document"
	default:
		return string(k)
	}
}

type jobStatus string

const (
	jobStatusRunning    jobStatus = "running"
	jobStatusSucceeded  jobStatus = "succeeded"
	jobStatusFailed     jobStatus = "failed"
	jobStatusSuperseded jobStatus = "superseded"
)

type jobSnapshot struct {
	ID      string
	Kind    jobKind
	Status  jobStatus
	Started time.Time
	Elapsed time.Duration
	Err     string
}

type jobSignalMsg struct {
	Snapshot jobSnapshot
}

// jobResultEnvelope carries a finished job. Payload is nil when a newer job
// of the same kind replaced this one.
type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

type runningJob struct {
	id     string
	cancel context.CancelFunc
}

// jobBus runs blocking work off the update loop. Only the newest job of each
// kind may deliver its payload: starting another cancels the previous one.
type jobBus struct {
	mu      sync.Mutex
	seq     int
	current map[jobKind]runningJob
	timeout time.Duration
	log     *zap.Logger
}

func newJobBus(log *zap.Logger) *jobBus {
	return &jobBus{
		current: map[jobKind]runningJob{},
		timeout: documentLoadTimeout,
		log:     log.With(zap.String("component", "jobs")),
	}
}

func (b *jobBus) nextID(kind jobKind) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	return fmt.Sprintf("%s-%d", kind, b.seq)
}

// Start runs runner off the update loop. The program first receives a
// running jobSignalMsg, then a jobResultEnvelope carrying the runner's message.
func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := b.nextID(kind)
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)

	b.mu.Lock()
	if prev, ok := b.current[kind]; ok {
		prev.cancel()
		b.log.Debug("job superseded", zap.String("id", prev.id), zap.String("by", id))
	}
	b.current[kind] = runningJob{id: id, cancel: cancel}
	b.mu.Unlock()

	started := time.Now()
	begin := jobSnapshot{ID: id, Kind: kind, Status: jobStatusRunning, Started: started}
	return tea.Sequence(
		func() tea.Msg { return jobSignalMsg{Snapshot: begin} },
		func() tea.Msg {
			payload, err := runner(ctx)
			snap := begin
			snap.Elapsed = time.Since(started)
			switch {
			case !b.finish(kind, id):
				snap.Status = jobStatusSuperseded
				payload = nil
			case err != nil:
				snap.Status = jobStatusFailed
				snap.Err = err.Error()
			default:
				snap.Status = jobStatusSucceeded
			}
			b.log.Info("job finished",
				zap.String("id", id),
				zap.String("kind", string(kind)),
				zap.String("status", string(snap.Status)),
				zap.Duration("elapsed", snap.Elapsed),
				zap.Error(err))
			return jobResultEnvelope{Snapshot: snap, Payload: payload}
		},
	)
}

// finish releases the job's context and reports whether it was still the
// newest of its kind.
func (b *jobBus) finish(kind jobKind, id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	cur, ok := b.current[kind]
	if !ok || cur.id != id {
		return false
	}
	cur.cancel()
	delete(b.current, kind)
	return true
}
