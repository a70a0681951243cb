package agent

import "context"

// External collaborators are narrow capability interfaces. Each one
// may be unavailable; the orchestrator records that as a stage outcome
// instead of letting it abort the run.

// DurationSource reports how long synthesized narration will run for a
// script. Implementations may probe real audio or estimate from the
// text; unavailability is an explicit error, never a silent zero.
type DurationSource interface {
	EstimateDuration(ctx context.Context, text, tone string) (float64, error)
}

// PlanReview is a semantic read on a plan's creative strength.
type PlanReview struct {
	HookScore float64
	CTAScore  float64
	Notes     []string
}

// PlanReviewer is an optional model-backed second opinion on the
// chosen plan. It never changes deterministic scores; its notes are
// attached to the report.
type PlanReviewer interface {
	Review(ctx context.Context, plan ReelPlan) (PlanReview, error)
}

// Encoder renders the chosen plan with its sync adjustment applied and
// returns the output path. Dry runs never call it.
type Encoder interface {
	Encode(ctx context.Context, plan ReelPlan, adj SyncAdjustment) (string, error)
}
