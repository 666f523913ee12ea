package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/david-erel/short-tube/internal/highlight"
	"github.com/david-erel/short-tube/internal/platform/metrics"
)

// Service owns the lifecycle of highlight runs: it starts the runner in the
// background, tracks each run in the registry, and maps runner outcomes to
// run states. Metrics may be nil to disable metric recording (e.g. in tests).
type Service struct {
	registry *Registry
	runner   *highlight.Runner
	log      *slog.Logger
	metrics  *metrics.Metrics
}

// NewService returns a Service over the given registry and runner.
func NewService(registry *Registry, runner *highlight.Runner, log *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{registry: registry, runner: runner, log: log, metrics: m}
}

// StartRun validates the request, registers a new run, and launches it in the
// background. The duration precondition is checked here so no engine is ever
// invoked for an invalid request.
func (s *Service) StartRun(videoID string, duration float64) (*Run, error) {
	if duration <= 0 {
		return nil, highlight.ErrInvalidDuration
	}

	ctx, cancel := context.WithCancel(context.Background())
	run := newRun(uuid.NewString(), videoID, duration, cancel)
	s.registry.Add(run)

	if s.metrics != nil {
		s.metrics.IncRunsStarted()
	}
	s.log.Info("run started",
		slog.String("run_id", run.ID),
		slog.String("video_id", videoID),
		slog.Float64("duration", duration),
	)

	go s.execute(ctx, cancel, run)
	return run, nil
}

func (s *Service) execute(ctx context.Context, cancel context.CancelFunc, run *Run) {
	defer cancel()

	report, err := s.runner.Run(ctx, run.VideoID, run.Duration, func(ev highlight.Event) {
		if s.metrics != nil && ev.Type == highlight.EventEngineComplete &&
			ev.EngineLog != nil && ev.EngineLog.Status == highlight.StatusError {
			s.metrics.IncEngineFailures()
		}
		run.Publish(ev)
	})

	switch {
	case errors.Is(err, context.Canceled):
		run.finish(RunCancelled, nil, "")
		if s.metrics != nil {
			s.metrics.IncRunsCancelled()
		}
		s.log.Info("run cancelled", slog.String("run_id", run.ID))
	case err != nil:
		run.finish(RunFailed, nil, err.Error())
		if s.metrics != nil {
			s.metrics.IncRunsFailed()
		}
		s.log.Error("run failed", slog.String("run_id", run.ID), slog.String("error", err.Error()))
	default:
		run.finish(RunComplete, &report, "")
		if s.metrics != nil {
			s.metrics.IncRunsCompleted()
		}
		s.log.Info("run complete",
			slog.String("run_id", run.ID),
			slog.Int("highlights", len(report.Highlights)),
		)
	}
}

// GetRun looks a run up by id.
func (s *Service) GetRun(id string) (*Run, error) {
	run, ok := s.registry.Get(id)
	if !ok {
		return nil, ErrRunNotFound
	}
	return run, nil
}

// CancelRun aborts a run's context. Cancelling a finished run is a no-op.
func (s *Service) CancelRun(id string) error {
	run, ok := s.registry.Get(id)
	if !ok {
		return ErrRunNotFound
	}
	run.Cancel()
	return nil
}

// ActiveRunCount reports the number of in-flight runs. Used for metrics.
func (s *Service) ActiveRunCount() int {
	return s.registry.ActiveRunCount()
}
