// Package text implements the transcript-based highlight engine: it fetches
// the video's timed transcript, asks a language model to pick the most
// engaging passages, and maps the picks back to time ranges.
package text

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/david-erel/short-tube/internal/engines/llm"
	"github.com/david-erel/short-tube/internal/highlight"
)

// TranscriptSource supplies the timed transcript for a video.
type TranscriptSource interface {
	Fetch(ctx context.Context, videoID string) (highlight.Transcript, error)
}

// Completer is the single LLM call the engine needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// maxPicks is the most highlights the model is asked for in one pass.
const maxPicks = 8

// Engine is the text analysis engine.
type Engine struct {
	source TranscriptSource
	llm    Completer
}

// New returns a text engine over the given transcript source and model.
func New(source TranscriptSource, llm Completer) *Engine {
	return &Engine{source: source, llm: llm}
}

// Name implements highlight.Engine.
func (e *Engine) Name() string { return string(highlight.SourceText) }

// Analyze implements highlight.Engine. Failures are reported on the result's
// Error field; the returned error is always nil.
func (e *Engine) Analyze(ctx context.Context, videoID string, duration float64) (highlight.EngineResult, error) {
	result := highlight.EngineResult{EngineName: e.Name()}
	logf := func(format string, args ...any) {
		result.ProcessingLog = append(result.ProcessingLog, fmt.Sprintf(format, args...))
	}

	tr, err := e.source.Fetch(ctx, videoID)
	if err != nil {
		result.Error = fmt.Sprintf("fetch transcript: %v", err)
		return result, nil
	}
	result.Transcript = &tr
	logf("fetched transcript: %d lines", len(tr.Lines))

	if len(tr.Lines) == 0 {
		logf("transcript empty, nothing to rank")
		return result, nil
	}

	reply, err := e.llm.Complete(ctx, buildPrompt(tr))
	if err != nil {
		result.Error = fmt.Sprintf("llm: %v", err)
		return result, nil
	}

	picks, err := parsePicks(reply)
	if err != nil {
		result.Error = fmt.Sprintf("parse llm reply: %v", err)
		return result, nil
	}
	logf("llm returned %d picks", len(picks))

	for _, p := range picks {
		seg, ok := p.toSegment(tr, duration)
		if !ok {
			logf("discarded pick %d-%d: invalid range", p.StartIndex, p.EndIndex)
			continue
		}
		result.Highlights = append(result.Highlights, seg)
	}
	logf("kept %d highlights", len(result.Highlights))
	return result, nil
}

// pick is one highlight choice in the model's reply: a line index range into
// the prompted transcript.
type pick struct {
	StartIndex int     `json:"startIndex"`
	EndIndex   int     `json:"endIndex"`
	Score      float64 `json:"score"`
	Reasoning  string  `json:"reasoning"`
}

// toSegment maps a pick onto the transcript timeline, clamped to the video
// duration. ok is false when the pick does not describe a positive-length
// range inside the transcript.
func (p pick) toSegment(tr highlight.Transcript, duration float64) (highlight.Segment, bool) {
	if p.StartIndex < 0 || p.EndIndex >= len(tr.Lines) || p.StartIndex > p.EndIndex {
		return highlight.Segment{}, false
	}

	start := tr.Lines[p.StartIndex].Start
	end := tr.Lines[p.EndIndex].Start + tr.Lines[p.EndIndex].Dur
	if end > duration {
		end = duration
	}
	if start < 0 || start >= end {
		return highlight.Segment{}, false
	}

	score := p.Score
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	si, ei := p.StartIndex, p.EndIndex
	return highlight.Segment{
		Start:      start,
		End:        end,
		Score:      score,
		Source:     highlight.SourceText,
		Reasoning:  p.Reasoning,
		StartIndex: &si,
		EndIndex:   &ei,
	}, true
}

func buildPrompt(tr highlight.Transcript) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are given a video transcript as numbered lines.\n")
	fmt.Fprintf(&b, "Pick the %d most engaging moments. Reply with ONLY a JSON array of objects\n", maxPicks)
	fmt.Fprintf(&b, "{\"startIndex\": int, \"endIndex\": int, \"score\": number 0..1, \"reasoning\": string}.\n")
	fmt.Fprintf(&b, "Indexes refer to the lines below. Keep each moment under a minute.\n\n")
	for i, line := range tr.Lines {
		fmt.Fprintf(&b, "[%d] (%.1fs) %s\n", i, line.Start, line.Text)
	}
	return b.String()
}

func parsePicks(reply string) ([]pick, error) {
	var picks []pick
	if err := json.Unmarshal([]byte(llm.StripFences(reply)), &picks); err != nil {
		return nil, err
	}
	return picks, nil
}
