package api

import (
	"context"
	"errors"
	"sync"

	"github.com/david-erel/short-tube/internal/highlight"
)

// RunStatus is the lifecycle state of a highlight run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunComplete  RunStatus = "complete"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// ErrRunNotFound is returned when a run id does not exist in the registry.
var ErrRunNotFound = errors.New("run not found")

// subscriberBuffer is the per-subscriber event channel capacity. A subscriber
// that falls this far behind loses events rather than stalling the run.
const subscriberBuffer = 64

// Run is the in-memory state of one highlight run: its identity, lifecycle
// status, the final report once available, and the buffered progress events
// for replay to late subscribers.
type Run struct {
	ID       string
	VideoID  string
	Duration float64

	cancel context.CancelFunc

	mu     sync.Mutex
	status RunStatus
	report *highlight.Report
	errMsg string
	events []highlight.Event
	subs   map[chan highlight.Event]struct{}
	done   bool
}

// newRun returns a running Run whose context is aborted by cancel.
func newRun(id, videoID string, duration float64, cancel context.CancelFunc) *Run {
	return &Run{
		ID:       id,
		VideoID:  videoID,
		Duration: duration,
		cancel:   cancel,
		status:   RunRunning,
		subs:     make(map[chan highlight.Event]struct{}),
	}
}

// Snapshot returns the run's current status, report (nil until complete), and
// failure message (empty unless failed).
func (r *Run) Snapshot() (RunStatus, *highlight.Report, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status, r.report, r.errMsg
}

// Publish buffers ev and fans it out to live subscribers. Events published
// after the run has finished are dropped.
func (r *Run) Publish(ev highlight.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return
	}
	r.events = append(r.events, ev)
	for ch := range r.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe returns a copy of the events published so far and a channel for
// subsequent ones. The channel is closed when the run finishes; for a run
// that has already finished it is closed immediately, so consumers see the
// full replay followed by end-of-stream. unsubscribe is safe to call at any
// point, including after the run finished.
func (r *Run) Subscribe() (replay []highlight.Event, live <-chan highlight.Event, unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	replay = make([]highlight.Event, len(r.events))
	copy(replay, r.events)

	ch := make(chan highlight.Event, subscriberBuffer)
	if r.done {
		close(ch)
		return replay, ch, func() {}
	}

	r.subs[ch] = struct{}{}
	return replay, ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, ch)
	}
}

// Cancel aborts the run's context. The status flips to cancelled once the
// runner observes the cancellation.
func (r *Run) Cancel() {
	r.cancel()
}

// finish records the terminal state and closes every subscriber channel.
func (r *Run) finish(status RunStatus, report *highlight.Report, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return
	}
	r.done = true
	r.status = status
	r.report = report
	r.errMsg = errMsg
	for ch := range r.subs {
		close(ch)
	}
	r.subs = make(map[chan highlight.Event]struct{})
}

// Registry is a concurrency-safe in-memory collection of runs. Runs live for
// the process lifetime only; nothing is persisted.
type Registry struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{runs: make(map[string]*Run)}
}

// Add stores a run under its id.
func (g *Registry) Add(run *Run) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.runs[run.ID] = run
}

// Get looks a run up by id.
func (g *Registry) Get(id string) (*Run, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	run, ok := g.runs[id]
	return run, ok
}

// ActiveRunCount returns the number of runs still in flight. Used for metrics.
func (g *Registry) ActiveRunCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n := 0
	for _, run := range g.runs {
		if status, _, _ := run.Snapshot(); status == RunRunning {
			n++
		}
	}
	return n
}
