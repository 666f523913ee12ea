package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/david-erel/short-tube/internal/highlight"
)

func writeResults(t *testing.T, results []highlight.EngineResult) string {
	t.Helper()
	data, err := json.Marshal(results)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "results.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func sampleResults() []highlight.EngineResult {
	return []highlight.EngineResult{
		{EngineName: "text", Highlights: []highlight.Segment{
			{Start: 10, End: 20, Score: 0.9, Source: highlight.SourceText, Reasoning: "big reveal"},
		}},
		{EngineName: "heatmap", Highlights: []highlight.Segment{
			{Start: 18, End: 30, Score: 0.5, Source: highlight.SourceHeatmap},
		}},
		{EngineName: "curation", Error: "file missing"},
	}
}

func TestRun_json_output(t *testing.T) {
	path := writeResults(t, sampleResults())

	// Test stdout is not a terminal, so output is JSON even without --json.
	out, err := execute(t, path, "--duration", "600", "--video", "v1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	var report highlight.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not a JSON report: %v\n%s", err, out)
	}
	if len(report.Highlights) != 1 {
		t.Fatalf("expected 1 merged highlight, got %d", len(report.Highlights))
	}
	if report.Highlights[0].Start != 10 || report.Highlights[0].End != 30 {
		t.Errorf("expected merged [10,30], got [%v,%v]", report.Highlights[0].Start, report.Highlights[0].End)
	}
	if len(report.EngineLogs) != 3 {
		t.Errorf("expected 3 engine logs, got %d", len(report.EngineLogs))
	}
}

func TestRun_invalid_duration(t *testing.T) {
	path := writeResults(t, sampleResults())
	if _, err := execute(t, path, "--duration", "0"); err == nil {
		t.Error("duration 0 must be rejected")
	}
}

func TestRun_missing_input_file(t *testing.T) {
	if _, err := execute(t, "does-not-exist.json", "--duration", "600"); err == nil {
		t.Error("missing input file must be an error")
	}
}

func TestRun_malformed_input(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, path, "--duration", "600"); err == nil {
		t.Error("malformed input must be an error")
	}
}

func TestRenderPlanTable(t *testing.T) {
	out := renderPlanTable([]highlight.Segment{
		{Start: 65, End: 90, Score: 0.8, Source: highlight.SourceConsensus, Reasoning: "peak"},
	})
	for _, want := range []string{"1:05", "1:30", "25.0s", "0.80", "peak"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		sec  float64
		want string
	}{
		{0, "0:00"},
		{65, "1:05"},
		{3599, "59:59"},
		{3661, "1:01:01"},
	}
	for _, tc := range cases {
		if got := formatTimestamp(tc.sec); got != tc.want {
			t.Errorf("formatTimestamp(%v) = %q, want %q", tc.sec, got, tc.want)
		}
	}
}
