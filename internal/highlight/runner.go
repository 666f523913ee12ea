package highlight

import (
	"context"
	"log/slog"
)

// Engine is one independent analysis source of highlight candidates.
// Implementations should report their own failures by setting Error on the
// returned result; a non-nil error from Analyze is tolerated and treated the
// same way.
type Engine interface {
	Name() string
	Analyze(ctx context.Context, videoID string, duration float64) (EngineResult, error)
}

// EventType labels a progress event.
type EventType string

const (
	EventEngineStart    EventType = "engine_start"
	EventEngineComplete EventType = "engine_complete"
	EventConsolidating  EventType = "consolidating"
	EventComplete       EventType = "complete"
	EventError          EventType = "error"
)

// Event is one progress notification emitted during a run. Which fields are
// populated depends on Type; EngineIndex refers to the engine's position in
// declaration order, not settlement order.
type Event struct {
	Type         EventType        `json:"type"`
	EngineName   string           `json:"engineName,omitempty"`
	EngineIndex  int              `json:"engineIndex"`
	TotalEngines int              `json:"totalEngines"`
	EngineLog    *EngineLog       `json:"engineLog,omitempty"`
	Highlights   []Segment        `json:"highlights,omitempty"`
	EngineLogs   []EngineLog      `json:"engineLogs,omitempty"`
	ConsensusLog []ConsensusEntry `json:"consensusLog,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// ProgressFunc receives progress events as a run advances. It is called from
// the goroutine driving the run, never concurrently.
type ProgressFunc func(Event)

// Runner fans a video out to every engine concurrently and consolidates once
// all of them have settled.
type Runner struct {
	engines []Engine
	log     *slog.Logger
}

// NewRunner returns a Runner over the given engines. Engines are invoked in
// no particular order and never block one another.
func NewRunner(log *slog.Logger, engines ...Engine) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{engines: engines, log: log}
}

// Run analyzes one video. Every engine is launched concurrently; as each one
// settles, its engine log is derived and an engine_complete event is emitted,
// in settlement order. Only after all engines have settled does Run emit
// consolidating and invoke Consolidate exactly once with the complete set of
// results.
//
// An engine's failure never aborts the run; it settles as a zero-highlight
// result with status error. Cancellation of ctx before consolidation aborts
// the run with ctx.Err() — no report, no error event — and any engines still
// running are abandoned, their eventual results discarded.
func (r *Runner) Run(ctx context.Context, videoID string, duration float64, onProgress ProgressFunc) (Report, error) {
	if duration <= 0 {
		return Report{}, ErrInvalidDuration
	}
	if onProgress == nil {
		onProgress = func(Event) {}
	}

	total := len(r.engines)

	type settled struct {
		index  int
		result EngineResult
	}
	// Buffered so abandoned engines can still send and exit after cancellation.
	settledCh := make(chan settled, total)

	for i, eng := range r.engines {
		onProgress(Event{Type: EventEngineStart, EngineName: eng.Name(), EngineIndex: i, TotalEngines: total})
		go func(index int, eng Engine) {
			res, err := eng.Analyze(ctx, videoID, duration)
			if err != nil {
				res = EngineResult{EngineName: eng.Name(), Error: err.Error()}
			}
			if res.EngineName == "" {
				res.EngineName = eng.Name()
			}
			settledCh <- settled{index: index, result: res}
		}(i, eng)
	}

	results := make([]EngineResult, 0, total)
	logs := make([]EngineLog, 0, total)
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			r.log.Info("run cancelled", slog.String("video_id", videoID), slog.Int("settled", i))
			return Report{}, ctx.Err()
		case s := <-settledCh:
			engineLog := BuildEngineLog(s.result)
			results = append(results, s.result)
			logs = append(logs, engineLog)
			r.log.Info("engine settled",
				slog.String("video_id", videoID),
				slog.String("engine", engineLog.EngineName),
				slog.String("status", string(engineLog.Status)),
				slog.Int("segments", engineLog.SegmentsProduced),
			)
			onProgress(Event{
				Type:         EventEngineComplete,
				EngineName:   engineLog.EngineName,
				EngineIndex:  s.index,
				TotalEngines: total,
				EngineLog:    &engineLog,
			})
		}
	}

	// Engines unblocked by the cancellation itself may still have settled
	// above; cancellation before consolidation always aborts the run.
	if err := ctx.Err(); err != nil {
		r.log.Info("run cancelled", slog.String("video_id", videoID), slog.Int("settled", total))
		return Report{}, err
	}

	onProgress(Event{Type: EventConsolidating, TotalEngines: total})

	report, err := Consolidate(videoID, duration, results, logs)
	if err != nil {
		onProgress(Event{Type: EventError, Error: err.Error()})
		return Report{}, err
	}

	r.log.Info("run complete",
		slog.String("video_id", videoID),
		slog.Int("highlights", len(report.Highlights)),
	)
	onProgress(Event{
		Type:         EventComplete,
		TotalEngines: total,
		Highlights:   report.Highlights,
		EngineLogs:   report.EngineLogs,
		ConsensusLog: report.ConsensusLog,
	})
	return report, nil
}
