package agent

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Narration speed policy. Outside these bounds time-warping the voice
// becomes audible, so the reconciler pads the picture instead of
// pushing speed further.
const (
	SpeedLowerBound = 0.92
	SpeedUpperBound = 1.08
)

// Reconciler aligns a generated narration track against a fixed video
// track. Narration is never truncated and never sped or slowed beyond
// the policy bounds; when the picture is too short it is extended with
// trailing freeze-frame padding on the last beat.
type Reconciler struct {
	logger zerolog.Logger
	// preferNaturalVoice keeps the voice at 1.0x and absorbs the whole
	// gap as freeze padding instead of minimizing freeze length at the
	// 1.08 bound.
	preferNaturalVoice bool
}

// NewReconciler creates a sync reconciler with the freeze-minimizing
// policy.
func NewReconciler(logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		logger: logger.With().Str("component", "sync").Logger(),
	}
}

// NewNaturalVoiceReconciler creates a reconciler that never changes
// narration speed when freeze padding is already required.
func NewNaturalVoiceReconciler(logger zerolog.Logger) *Reconciler {
	r := NewReconciler(logger)
	r.preferNaturalVoice = true
	return r
}

// Reconcile computes the adjustment for a video track of videoSec
// seconds and a narration track of narrationSec seconds. Non-positive
// durations fail fast with ErrInvalidDuration rather than producing a
// degenerate adjustment.
func (r *Reconciler) Reconcile(videoSec, narrationSec float64) (SyncAdjustment, error) {
	if videoSec <= 0 {
		return SyncAdjustment{}, fmt.Errorf("%w: video duration %.3fs", ErrInvalidDuration, videoSec)
	}
	if narrationSec <= 0 {
		return SyncAdjustment{}, fmt.Errorf("%w: narration duration %.3fs", ErrInvalidDuration, narrationSec)
	}

	ratio := narrationSec / videoSec

	var adj SyncAdjustment
	switch {
	case ratio >= SpeedLowerBound && ratio <= SpeedUpperBound:
		adj = SyncAdjustment{
			SpeedFactor:  ratio,
			Strategy:     SyncSpeedOnly,
			WithinPolicy: true,
		}

	case ratio > SpeedUpperBound:
		// Narration is longer than the picture even at the maximum
		// allowed speed-up. Extend the picture with a trailing freeze
		// on the last beat so the voice is never cut off.
		speed := SpeedUpperBound
		strategy := SyncSpeedPlusFreeze
		if r.preferNaturalVoice {
			// Extension absorbs the whole gap; the voice stays at 1.0x.
			speed = 1.0
			strategy = SyncFreezeOnly
		}
		adj = SyncAdjustment{
			SpeedFactor:        speed,
			FreezeFrameSeconds: narrationSec/speed - videoSec,
			Strategy:           strategy,
			WithinPolicy:       false,
		}

	default: // ratio < SpeedLowerBound
		// Picture much longer than narration. Slow the voice only to
		// the bound and accept trailing silence; the picture is never
		// trimmed to fit the voice. No freeze is involved so the
		// strategy stays speed_only, but the clamp puts it outside
		// policy.
		adj = SyncAdjustment{
			SpeedFactor:  SpeedLowerBound,
			Strategy:     SyncSpeedOnly,
			WithinPolicy: false,
		}
	}

	r.logger.Debug().
		Float64("video_sec", videoSec).
		Float64("narration_sec", narrationSec).
		Float64("ratio", ratio).
		Float64("speed_factor", adj.SpeedFactor).
		Float64("freeze_sec", adj.FreezeFrameSeconds).
		Str("strategy", string(adj.Strategy)).
		Bool("within_policy", adj.WithinPolicy).
		Msg("sync reconciled")

	return adj, nil
}

// ApplyFreeze returns a copy of plan with the freeze padding from adj
// attached to the final beat.
func ApplyFreeze(plan ReelPlan, adj SyncAdjustment) ReelPlan {
	if adj.FreezeFrameSeconds <= 0 || len(plan.Beats) == 0 {
		return plan
	}
	beats := make([]Beat, len(plan.Beats))
	copy(beats, plan.Beats)
	beats[len(beats)-1].FreezeSeconds = adj.FreezeFrameSeconds
	plan.Beats = beats
	return plan
}
