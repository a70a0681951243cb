package agent

import (
	"fmt"
	"math"
)

// WeightSumTolerance is how close a weight group must be to 1.0.
const WeightSumTolerance = 1e-6

// Default top-level split between pre-publish quality and early
// performance.
const (
	DefaultPQSWeight = 0.55
	DefaultEPSWeight = 0.45
)

// ScoringConfig holds every tunable the scorer, selector and planner
// consume. It is built once per run and passed explicitly; there is no
// ambient lookup. FallbackNotes records every default substitution so
// the execution report can surface them.
type ScoringConfig struct {
	PQSWeight float64
	EPSWeight float64

	PQSSignalWeights map[Signal]float64
	EPSSignalWeights map[Signal]float64

	// PQSGate is the minimum PQS a plan must clear.
	PQSGate float64
	// ConfidenceThreshold is the minimum winning VPS before the
	// selector falls back to the safe default plan.
	ConfidenceThreshold float64
	// DurationTolerance is the allowed relative deviation between a
	// plan's total beat duration and the requested target.
	DurationTolerance float64
	// NeutralEPS is the prior used when no telemetry exists yet.
	NeutralEPS float64

	FallbackNotes []string
}

// DefaultScoringConfig returns the built-in weight set.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		PQSWeight:           DefaultPQSWeight,
		EPSWeight:           DefaultEPSWeight,
		PQSSignalWeights:    defaultPQSSignalWeights(),
		EPSSignalWeights:    defaultEPSSignalWeights(),
		PQSGate:             0.45,
		ConfidenceThreshold: 0.4,
		DurationTolerance:   0.10,
		NeutralEPS:          0.5,
	}
}

func defaultPQSSignalWeights() map[Signal]float64 {
	return map[Signal]float64{
		SignalHook:               0.22,
		SignalPacingDensity:      0.16,
		SignalCaptionReadability: 0.14,
		SignalAudioToneFit:       0.10,
		SignalCTAQuality:         0.14,
		SignalTechnicalQuality:   0.10,
		SignalOriginality:        0.08,
		SignalSafety:             0.06,
	}
}

func defaultEPSSignalWeights() map[Signal]float64 {
	return map[Signal]float64{
		SignalWatchRatio:     0.35,
		SignalCompletion:     0.30,
		SignalEngagementRate: 0.20,
		SignalShareVelocity:  0.15,
	}
}

// Sanitize validates weight groups and substitutes defaults for any
// group that does not sum to 1.0 within tolerance. Each substitution
// is appended to FallbackNotes rather than raised as an error.
func (c *ScoringConfig) Sanitize() {
	if math.Abs(c.PQSWeight+c.EPSWeight-1.0) > WeightSumTolerance {
		c.FallbackNotes = append(c.FallbackNotes, fmt.Sprintf(
			"%v: pqs_weight %.4f + eps_weight %.4f != 1.0, using default %.2f/%.2f split",
			ErrConfigInvalid, c.PQSWeight, c.EPSWeight, DefaultPQSWeight, DefaultEPSWeight))
		c.PQSWeight = DefaultPQSWeight
		c.EPSWeight = DefaultEPSWeight
	}

	if !weightsSumToOne(c.PQSSignalWeights, PQSSignals()) {
		c.FallbackNotes = append(c.FallbackNotes, fmt.Sprintf(
			"%v: pqs signal weights missing or unbalanced, using built-in defaults", ErrConfigInvalid))
		c.PQSSignalWeights = defaultPQSSignalWeights()
	}
	if !weightsSumToOne(c.EPSSignalWeights, EPSSignals()) {
		c.FallbackNotes = append(c.FallbackNotes, fmt.Sprintf(
			"%v: eps signal weights missing or unbalanced, using built-in defaults", ErrConfigInvalid))
		c.EPSSignalWeights = defaultEPSSignalWeights()
	}

	if c.PQSGate <= 0 || c.PQSGate >= 1 {
		c.PQSGate = 0.45
	}
	if c.ConfidenceThreshold <= 0 || c.ConfidenceThreshold >= 1 {
		c.ConfidenceThreshold = 0.4
	}
	if c.DurationTolerance <= 0 || c.DurationTolerance >= 1 {
		c.DurationTolerance = 0.10
	}
	if c.NeutralEPS <= 0 || c.NeutralEPS >= 1 {
		c.NeutralEPS = 0.5
	}
}

func weightsSumToOne(weights map[Signal]float64, signals []Signal) bool {
	if len(weights) == 0 {
		return false
	}
	var sum float64
	for _, sig := range signals {
		w, ok := weights[sig]
		if !ok || w < 0 {
			return false
		}
		sum += w
	}
	return math.Abs(sum-1.0) <= WeightSumTolerance
}
