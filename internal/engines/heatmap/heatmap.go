// Package heatmap implements the replay-heatmap highlight engine: peaks in
// the "most replayed" intensity curve become candidate segments.
package heatmap

import (
	"context"
	"fmt"

	"github.com/david-erel/short-tube/internal/highlight"
)

// Marker is one bucket of the replay heatmap.
type Marker struct {
	Start     float64 `json:"start"`
	Duration  float64 `json:"duration"`
	Intensity float64 `json:"intensity"`
}

// MarkerSource supplies the replay heatmap for a video. Markers are expected
// in chronological order.
type MarkerSource interface {
	Fetch(ctx context.Context, videoID string) ([]Marker, error)
}

// peakThreshold is the normalized intensity above which a bucket counts as
// part of a peak.
const peakThreshold = 0.7

// Engine is the heatmap analysis engine.
type Engine struct {
	source MarkerSource
}

// New returns a heatmap engine over the given marker source.
func New(source MarkerSource) *Engine {
	return &Engine{source: source}
}

// Name implements highlight.Engine.
func (e *Engine) Name() string { return string(highlight.SourceHeatmap) }

// Analyze implements highlight.Engine. Failures are reported on the result's
// Error field; the returned error is always nil.
func (e *Engine) Analyze(ctx context.Context, videoID string, duration float64) (highlight.EngineResult, error) {
	result := highlight.EngineResult{EngineName: e.Name()}
	logf := func(format string, args ...any) {
		result.ProcessingLog = append(result.ProcessingLog, fmt.Sprintf(format, args...))
	}

	markers, err := e.source.Fetch(ctx, videoID)
	if err != nil {
		result.Error = fmt.Sprintf("fetch heatmap: %v", err)
		return result, nil
	}
	logf("fetched heatmap: %d markers", len(markers))

	peak := maxIntensity(markers)
	if peak <= 0 {
		logf("heatmap flat, no peaks")
		return result, nil
	}

	result.Highlights = peakSegments(markers, peak, duration)
	logf("found %d peaks above %.0f%% of max intensity", len(result.Highlights), peakThreshold*100)
	return result, nil
}

func maxIntensity(markers []Marker) float64 {
	peak := 0.0
	for _, m := range markers {
		if m.Intensity > peak {
			peak = m.Intensity
		}
	}
	return peak
}

// peakSegments groups consecutive markers whose normalized intensity clears
// the threshold into one segment each, scored by the group's highest
// normalized intensity and clamped to the video duration.
func peakSegments(markers []Marker, max, duration float64) []highlight.Segment {
	var segments []highlight.Segment

	var start, end, score float64
	open := false

	flush := func() {
		if !open {
			return
		}
		open = false
		if end > duration {
			end = duration
		}
		if start < 0 || start >= end {
			return
		}
		segments = append(segments, highlight.Segment{
			Start:     start,
			End:       end,
			Score:     score,
			Source:    highlight.SourceHeatmap,
			Reasoning: fmt.Sprintf("replay heatmap peak (intensity %.2f)", score),
		})
	}

	for _, m := range markers {
		norm := m.Intensity / max
		if norm < peakThreshold {
			flush()
			continue
		}
		if !open {
			open = true
			start = m.Start
			score = 0
		}
		end = m.Start + m.Duration
		if norm > score {
			score = norm
		}
	}
	flush()

	return segments
}
