package agent

import "errors"

// Error kinds for the planning pipeline. Recoverable conditions are
// absorbed by the stage that hits them and annotated in the execution
// report; only genuinely invalid input surfaces to the caller.
var (
	// ErrConfigInvalid marks malformed or inconsistent scoring weights.
	// Non-fatal: defaults are substituted and the run continues.
	ErrConfigInvalid = errors.New("scoring config invalid")

	// ErrGenerationUnderfilled marks a run that produced fewer distinct
	// candidates than requested. Non-fatal: ranking proceeds with what
	// exists.
	ErrGenerationUnderfilled = errors.New("fewer distinct candidates than requested")

	// ErrLowConfidence marks a winning score below the confidence gate.
	// Non-fatal: the safe default plan is selected instead.
	ErrLowConfidence = errors.New("best score below confidence threshold")

	// ErrCollaboratorUnavailable marks an external collaborator (model,
	// encoder, timing source) that is missing or timed out. The stage is
	// recorded as failed and the pipeline continues where possible.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

	// ErrInvalidDuration marks a non-positive video or narration
	// duration. Fatal for the sync stage: no adjustment is produced.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrInvalidRequest marks a request that fails validation before any
	// stage runs.
	ErrInvalidRequest = errors.New("invalid plan request")
)
