package highlight

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	// summaryRatio is the fraction of the video duration used as the soft
	// summary-length budget.
	summaryRatio = 0.10

	// mergeToleranceSec: a candidate starting within this many seconds of the
	// current accumulator's end is folded into it, so near-adjacent candidates
	// from different engines become one jump.
	mergeToleranceSec = 3.0

	// jumpsPerTargetMinute caps how many distinct jumps each minute of target
	// summary length may contain.
	jumpsPerTargetMinute = 10
)

// ErrInvalidDuration is returned when a run is requested for a video whose
// duration is zero, negative, or missing.
var ErrInvalidDuration = errors.New("video duration must be greater than zero")

// Consolidate merges every engine's candidates for one video into a bounded
// playback plan. results must be the complete set of settled engine outputs
// and logs their derived engine logs, both in settlement order; the returned
// report carries them through unchanged.
//
// The pass is sequential and runs exactly once per video: pool, sort by
// start, merge the sorted candidates left to right, then pick the
// highest-scoring merged segments under the duration and jump quotas and
// restore chronological order. Every decision is appended to the report's
// consensus log.
func Consolidate(videoID string, duration float64, results []EngineResult, logs []EngineLog) (Report, error) {
	if duration <= 0 {
		return Report{}, ErrInvalidDuration
	}

	audit := make([]ConsensusEntry, 0, 16)
	record := func(step, format string, args ...any) {
		audit = append(audit, ConsensusEntry{Step: step, Detail: fmt.Sprintf(format, args...)})
	}

	record("Start", "video %s: duration %.1fs (%.1f minutes)", videoID, duration, duration/60)

	target := duration * summaryRatio
	record("Target", "summary budget %.1fs (%.0f%% of video)", target, summaryRatio*100)

	names := make([]string, 0, len(results))
	for _, res := range results {
		names = append(names, res.EngineName)
	}
	record("Engines", "%s", strings.Join(names, ", "))

	pooled := make([]Segment, 0)
	for _, res := range results {
		if res.Error != "" {
			record("Pool", "%s: %d candidates (error: %s)", res.EngineName, len(res.Highlights), res.Error)
		} else {
			record("Pool", "%s: %d candidates", res.EngineName, len(res.Highlights))
		}
		pooled = append(pooled, res.Highlights...)
	}

	sort.SliceStable(pooled, func(i, j int) bool { return pooled[i].Start < pooled[j].Start })
	record("Pre-merge", "%d pooled candidates", len(pooled))

	merged := mergeCandidates(pooled)
	record("Post-merge", "%d merged segments", len(merged))

	maxJumps := maxJumpsFor(target)
	record("Quota", "target %.1fs, at most %d jumps", target, maxJumps)

	selected := selectWithinQuota(merged, target, maxJumps)
	sort.SliceStable(selected, func(i, j int) bool { return selected[i].Start < selected[j].Start })

	var total float64
	for _, seg := range selected {
		total += seg.Duration()
		record("Segment", "%.1fs-%.1fs (%.1fs, score %.2f)", seg.Start, seg.End, seg.Duration(), seg.Score)
	}
	record("Final", "%d jumps, %.1fs selected", len(selected), total)

	return Report{Highlights: selected, EngineLogs: logs, ConsensusLog: audit}, nil
}

// mergeCandidates folds start-sorted candidates into consensus segments with
// a single left-to-right sweep. A candidate starting at or before the current
// accumulator's end plus the tolerance extends the accumulator and boosts its
// score additively, capped at 1.0; agreement between engines compounds
// confidence rather than averaging it.
func mergeCandidates(sorted []Segment) []Segment {
	if len(sorted) == 0 {
		return []Segment{}
	}

	merged := make([]Segment, 0, len(sorted))

	cur := sorted[0]
	cur.Source = SourceConsensus
	reasons := appendReason(nil, cur.Reasoning)

	flush := func() {
		cur.Reasoning = strings.Join(reasons, "; ")
		if cur.Reasoning == "" {
			cur.Reasoning = defaultReasoning
		}
		merged = append(merged, cur)
	}

	for _, cand := range sorted[1:] {
		if cand.Start <= cur.End+mergeToleranceSec {
			if cand.End > cur.End {
				cur.End = cand.End
			}
			cur.Score = math.Min(1.0, cur.Score+cand.Score)
			reasons = appendReason(reasons, cand.Reasoning)
			if cur.StartIndex == nil {
				cur.StartIndex = cand.StartIndex
			}
			if cand.EndIndex != nil {
				cur.EndIndex = cand.EndIndex
			}
			continue
		}
		flush()
		cur = cand
		cur.Source = SourceConsensus
		reasons = appendReason(nil, cand.Reasoning)
	}
	flush()

	return merged
}

// appendReason adds a non-empty, not-yet-seen reasoning line.
func appendReason(reasons []string, reason string) []string {
	if reason == "" {
		return reasons
	}
	for _, r := range reasons {
		if r == reason {
			return reasons
		}
	}
	return append(reasons, reason)
}

// maxJumpsFor returns the jump quota for a target summary length: ten jumps
// per minute of target, never less than one.
func maxJumpsFor(target float64) int {
	jumps := int(math.Ceil(target / 60 * jumpsPerTargetMinute))
	if jumps < 1 {
		jumps = 1
	}
	return jumps
}

// selectWithinQuota greedily picks segments in descending score order until
// either the jump quota is filled or the running duration has reached the
// target. The duration quota is soft: a segment taken while the sum is still
// below target is kept whole, never truncated, even if it overshoots. The
// stable sort makes equal-score ties fall back to merged (chronological)
// order, so selection is deterministic.
func selectWithinQuota(merged []Segment, target float64, maxJumps int) []Segment {
	ranked := make([]Segment, len(merged))
	copy(ranked, merged)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	selected := make([]Segment, 0, maxJumps)
	var total float64
	for _, seg := range ranked {
		if len(selected) >= maxJumps || total >= target {
			break
		}
		selected = append(selected, seg)
		total += seg.Duration()
	}
	return selected
}
