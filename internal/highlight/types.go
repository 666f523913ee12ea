package highlight

// Source identifies which analysis engine produced a segment. Once a segment
// has passed through the merge sweep its source becomes SourceConsensus.
type Source string

const (
	SourceText      Source = "text"
	SourceHeatmap   Source = "heatmap"
	SourceCuration  Source = "curation"
	SourceConsensus Source = "consensus"
)

// Segment is one candidate or final highlight: the interval [Start, End) in
// seconds within the source video. Start < End always holds for segments
// emitted by this package.
type Segment struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Score     float64 `json:"score"`
	Source    Source  `json:"source"`
	Reasoning string  `json:"reasoning,omitempty"`

	// StartIndex and EndIndex reference lines of the producing engine's
	// transcript, when it has one. They are passed through untouched for UI
	// traceability and play no part in merging or selection.
	StartIndex *int `json:"startIndex,omitempty"`
	EndIndex   *int `json:"endIndex,omitempty"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 { return s.End - s.Start }

// TranscriptLine is one timed line of a video transcript.
type TranscriptLine struct {
	Start float64 `json:"start"`
	Dur   float64 `json:"dur"`
	Text  string  `json:"text"`
}

// Transcript is the full timed transcript of a video. Only the text engine
// supplies one; it is carried through to the caller unread.
type Transcript struct {
	Lines []TranscriptLine `json:"lines"`
}

// EngineResult is the unit of engine output for one video.
type EngineResult struct {
	EngineName    string      `json:"engineName"`
	Highlights    []Segment   `json:"highlights"`
	Error         string      `json:"error,omitempty"`
	ProcessingLog []string    `json:"processingLog,omitempty"`
	Transcript    *Transcript `json:"transcript,omitempty"`
}

// EngineStatus classifies a settled engine.
type EngineStatus string

const (
	// StatusSuccess: the engine returned at least one highlight and no error.
	StatusSuccess EngineStatus = "success"
	// StatusPartial: the engine finished cleanly but found nothing.
	StatusPartial EngineStatus = "partial"
	// StatusError: the engine reported a failure.
	StatusError EngineStatus = "error"
)

// defaultReasoning fills the reasoning field of segments whose engine did not
// justify them.
const defaultReasoning = "no reasoning provided"

// EngineLog summarizes one settled engine for the final report.
type EngineLog struct {
	EngineName       string       `json:"engineName"`
	Status           EngineStatus `json:"status"`
	SegmentsProduced int          `json:"segmentsProduced"`
	ProcessingLog    []string     `json:"processingLog,omitempty"`
	Highlights       []Segment    `json:"highlights"`
	Error            string       `json:"error,omitempty"`
}

// BuildEngineLog derives the log for one settled engine. Status is error when
// the result carries an error, partial when it carries no highlights, and
// success otherwise. Absent scores stay at zero; absent reasoning is replaced
// by a fixed placeholder.
func BuildEngineLog(res EngineResult) EngineLog {
	status := StatusSuccess
	switch {
	case res.Error != "":
		status = StatusError
	case len(res.Highlights) == 0:
		status = StatusPartial
	}

	mapped := make([]Segment, len(res.Highlights))
	for i, seg := range res.Highlights {
		if seg.Reasoning == "" {
			seg.Reasoning = defaultReasoning
		}
		mapped[i] = seg
	}

	return EngineLog{
		EngineName:       res.EngineName,
		Status:           status,
		SegmentsProduced: len(res.Highlights),
		ProcessingLog:    res.ProcessingLog,
		Highlights:       mapped,
		Error:            res.Error,
	}
}

// ConsensusEntry is one line of the consolidation audit trail. Entries are
// append-only and purely observational; the algorithm never reads them back.
type ConsensusEntry struct {
	Step   string `json:"step"`
	Detail string `json:"detail"`
}

// Report is the terminal, immutable artifact of one run: the selected
// highlights in chronological order, one log per engine in settlement order,
// and the full consolidation audit trail.
type Report struct {
	Highlights   []Segment        `json:"highlights"`
	EngineLogs   []EngineLog      `json:"engineLogs"`
	ConsensusLog []ConsensusEntry `json:"consensusLog"`
}
