// Package workflow implements the bounded revision engine that drives
// write -> evaluate -> rewrite loops for generated artifacts, plus the
// registry that tracks in-flight and completed runs.
package workflow

// Phase is the lifecycle state of a workflow run.
type Phase string

// Run phases. Transitions are monotonic except Evaluating, which is
// re-entered once per successful rewrite.
const (
	PhasePending    Phase = "pending"
	PhaseWriting    Phase = "writing"
	PhaseEvaluating Phase = "evaluating"
	PhaseRewriting  Phase = "rewriting"
	PhaseDone       Phase = "done"
	PhaseFailed     Phase = "failed"
)

// Terminal reports whether the phase admits no further transitions.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed
}
