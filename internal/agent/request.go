package agent

import "fmt"

// Request bounds from the product contract.
const (
	MinDurationTargetSec = 8
	MaxDurationTargetSec = 60
	MinCandidates        = 3
	MaxCandidates        = 5

	DefaultTemplate  = "viral-hook-v1"
	DefaultObjective = "maximize watch-time and shares"
	DefaultTone      = "high-energy"
)

// Normalize fills defaults on a request without mutating the original.
// A zero SourceDurationSec means the source was not probed; the planner
// then assumes twice the target is workable and lets distinctness
// checks underfill if that turns out optimistic.
func (r ReelPlanRequest) Normalize() ReelPlanRequest {
	out := r
	if out.Template == "" {
		out.Template = DefaultTemplate
	}
	if out.Platform == "" {
		out.Platform = PlatformReels
	}
	if out.Objective == "" {
		out.Objective = DefaultObjective
	}
	if out.Tone == "" {
		out.Tone = DefaultTone
	}
	if out.DurationTargetSec == 0 {
		out.DurationTargetSec = 20
	}
	if out.Candidates < MinCandidates {
		out.Candidates = MinCandidates
	}
	if out.Candidates > MaxCandidates {
		out.Candidates = MaxCandidates
	}
	if out.SourceDurationSec <= 0 {
		out.SourceDurationSec = 2 * out.DurationTargetSec
	}
	return out
}

// Validate rejects requests no stage could act on.
func (r ReelPlanRequest) Validate() error {
	if r.SourceVideo == "" {
		return fmt.Errorf("%w: source_video is required", ErrInvalidRequest)
	}
	if r.DurationTargetSec <= 0 {
		return fmt.Errorf("%w: duration_target_sec must be positive", ErrInvalidRequest)
	}
	if r.DurationTargetSec < MinDurationTargetSec || r.DurationTargetSec > MaxDurationTargetSec {
		return fmt.Errorf("%w: duration_target_sec %.0f outside [%d,%d]",
			ErrInvalidRequest, r.DurationTargetSec, MinDurationTargetSec, MaxDurationTargetSec)
	}
	switch r.Platform {
	case PlatformReels, PlatformTikTok, PlatformShorts, "":
	default:
		return fmt.Errorf("%w: unknown platform %q", ErrInvalidRequest, r.Platform)
	}
	return nil
}
