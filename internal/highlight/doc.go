// Package highlight merges time-ranged highlight candidates for a single
// video into one bounded playback plan.
//
// Three independent analysis engines (text, heatmap, curation) each produce
// zero or more candidate segments for a video. The Runner fans out to all
// engines concurrently, reports each engine's settlement as it happens, and
// once every engine has settled hands the complete set of results to
// Consolidate exactly once.
//
// Consolidate pools all candidates, merges overlapping or near-adjacent
// ranges (within a 3 second tolerance) while compounding their confidence
// scores, then selects the highest-scoring merged segments under a dual
// quota: a soft duration budget of 10% of the video and a hard cap on the
// number of playback jumps. The result is returned chronologically together
// with a per-engine log and a full audit trail of every decision made.
//
// An engine failing or returning nothing never aborts a run; consolidation
// proceeds with whatever the remaining engines produced, down to a
// well-formed empty plan.
package highlight
