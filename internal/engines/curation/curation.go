// Package curation implements the editorial highlight engine: clips picked by
// human editors, kept in a YAML file keyed by video id.
package curation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/david-erel/short-tube/internal/highlight"
)

// File is the on-disk shape of the curated clips list.
type File struct {
	Videos map[string][]Clip `yaml:"videos"`
}

// Clip is one hand-picked highlight.
type Clip struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
	Score float64 `yaml:"score"`
	Note  string  `yaml:"note"`
}

// Engine is the curation analysis engine.
type Engine struct {
	path string
}

// New returns a curation engine reading clips from the YAML file at path.
func New(path string) *Engine {
	return &Engine{path: path}
}

// Name implements highlight.Engine.
func (e *Engine) Name() string { return string(highlight.SourceCuration) }

// Analyze implements highlight.Engine. An unreadable or malformed file is an
// engine failure; a video with no curated clips is simply an empty result.
func (e *Engine) Analyze(ctx context.Context, videoID string, duration float64) (highlight.EngineResult, error) {
	result := highlight.EngineResult{EngineName: e.Name()}
	logf := func(format string, args ...any) {
		result.ProcessingLog = append(result.ProcessingLog, fmt.Sprintf(format, args...))
	}

	data, err := os.ReadFile(e.path)
	if err != nil {
		result.Error = fmt.Sprintf("read curation file: %v", err)
		return result, nil
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		result.Error = fmt.Sprintf("parse curation file: %v", err)
		return result, nil
	}

	clips := file.Videos[videoID]
	logf("curation file lists %d clips for %s", len(clips), videoID)

	for i, clip := range clips {
		seg, ok := clip.toSegment(duration)
		if !ok {
			logf("discarded clip %d: invalid range [%.1f,%.1f]", i, clip.Start, clip.End)
			continue
		}
		result.Highlights = append(result.Highlights, seg)
	}
	logf("kept %d highlights", len(result.Highlights))
	return result, nil
}

// toSegment validates and clamps a clip to the video duration.
func (c Clip) toSegment(duration float64) (highlight.Segment, bool) {
	end := c.End
	if end > duration {
		end = duration
	}
	if c.Start < 0 || c.Start >= end {
		return highlight.Segment{}, false
	}

	score := c.Score
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	reasoning := c.Note
	if reasoning == "" {
		reasoning = "editor curated pick"
	}

	return highlight.Segment{
		Start:     c.Start,
		End:       end,
		Score:     score,
		Source:    highlight.SourceCuration,
		Reasoning: reasoning,
	}, true
}
