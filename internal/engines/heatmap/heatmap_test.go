package heatmap

import (
	"context"
	"errors"
	"testing"

	"github.com/david-erel/short-tube/internal/highlight"
)

type fakeSource struct {
	markers []Marker
	err     error
}

func (f fakeSource) Fetch(ctx context.Context, videoID string) ([]Marker, error) {
	return f.markers, f.err
}

func TestAnalyze_groups_consecutive_peaks(t *testing.T) {
	// Max intensity 10, threshold 0.7 -> buckets with intensity >= 7 count.
	markers := []Marker{
		{Start: 0, Duration: 5, Intensity: 2},
		{Start: 5, Duration: 5, Intensity: 8},
		{Start: 10, Duration: 5, Intensity: 10},
		{Start: 15, Duration: 5, Intensity: 3},
		{Start: 20, Duration: 5, Intensity: 9},
	}
	e := New(fakeSource{markers: markers})

	res, err := e.Analyze(context.Background(), "v1", 100)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Highlights) != 2 {
		t.Fatalf("expected 2 peak segments, got %d", len(res.Highlights))
	}

	first := res.Highlights[0]
	if first.Start != 5 || first.End != 15 {
		t.Errorf("first peak should span [5,15], got [%v,%v]", first.Start, first.End)
	}
	if first.Score != 1.0 {
		t.Errorf("first peak score should be 1.0 (contains max), got %v", first.Score)
	}
	second := res.Highlights[1]
	if second.Start != 20 || second.End != 25 {
		t.Errorf("second peak should span [20,25], got [%v,%v]", second.Start, second.End)
	}
	if second.Score != 0.9 {
		t.Errorf("second peak score should be 0.9, got %v", second.Score)
	}
	for _, h := range res.Highlights {
		if h.Source != highlight.SourceHeatmap {
			t.Errorf("expected heatmap source, got %s", h.Source)
		}
		if h.Reasoning == "" {
			t.Error("peak segments should carry reasoning")
		}
	}
}

func TestAnalyze_flat_heatmap_yields_nothing(t *testing.T) {
	e := New(fakeSource{markers: []Marker{{Start: 0, Duration: 5, Intensity: 0}}})
	res, _ := e.Analyze(context.Background(), "v1", 100)
	if res.Error != "" {
		t.Errorf("flat heatmap is not a failure: %s", res.Error)
	}
	if len(res.Highlights) != 0 {
		t.Errorf("expected no highlights, got %d", len(res.Highlights))
	}

	e = New(fakeSource{})
	res, _ = e.Analyze(context.Background(), "v1", 100)
	if len(res.Highlights) != 0 || res.Error != "" {
		t.Error("empty heatmap should settle clean and empty")
	}
}

func TestAnalyze_clamps_peak_to_duration(t *testing.T) {
	markers := []Marker{{Start: 95, Duration: 10, Intensity: 5}}
	e := New(fakeSource{markers: markers})

	res, _ := e.Analyze(context.Background(), "v1", 100)
	if len(res.Highlights) != 1 {
		t.Fatalf("expected 1 highlight, got %d", len(res.Highlights))
	}
	if res.Highlights[0].End != 100 {
		t.Errorf("peak should clamp to duration 100, got %v", res.Highlights[0].End)
	}
}

func TestAnalyze_source_failure(t *testing.T) {
	e := New(fakeSource{err: errors.New("metadata service down")})
	res, err := e.Analyze(context.Background(), "v1", 100)
	if err != nil {
		t.Fatalf("engine must not return a hard error: %v", err)
	}
	if res.Error == "" {
		t.Error("source failure should be reported on the result")
	}
}
