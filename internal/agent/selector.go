package agent

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Selection is the ranking outcome: either the winning candidate or
// the safe default plan when nothing cleared the confidence gate.
type Selection struct {
	Plan     ReelPlan
	Score    PlanScore
	Winner   int // candidate index, -1 for the fallback plan
	Fallback bool
	Reason   string
}

// Selector orders scored candidates and picks a winner. It never
// fails: below-confidence runs fall back to a deterministic safe
// default so the pipeline always returns a usable plan.
type Selector struct {
	logger zerolog.Logger
	cfg    ScoringConfig
}

// NewSelector creates a ranking selector.
func NewSelector(logger zerolog.Logger, cfg ScoringConfig) *Selector {
	cfg.Sanitize()
	return &Selector{
		logger: logger.With().Str("component", "selector").Logger(),
		cfg:    cfg,
	}
}

// Select picks the candidate with maximum VPS. Ties break on fewer
// failed gates, then on lower candidate index, so the same scored set
// always yields the same winner regardless of scoring concurrency.
func (s *Selector) Select(req ReelPlanRequest, candidates []Candidate, scores []PlanScore) Selection {
	best := -1
	for i := range candidates {
		if i >= len(scores) {
			break
		}
		if best == -1 || betterThan(scores[i], candidates[i].Index, scores[best], candidates[best].Index) {
			best = i
		}
	}

	if best == -1 {
		s.logger.Warn().Msg("no scored candidates, selecting safe default plan")
		return Selection{
			Plan:     SafeDefaultPlan(req),
			Score:    PlanScore{FailedGates: []string{GateLowConfidenceFallback}},
			Winner:   -1,
			Fallback: true,
			Reason:   "no scored candidates available",
		}
	}

	winner := candidates[best]
	score := scores[best]

	if score.VPS < s.cfg.ConfidenceThreshold {
		s.logger.Info().
			Str("candidate", winner.ID).
			Float64("vps", score.VPS).
			Float64("threshold", s.cfg.ConfidenceThreshold).
			Msg("winning score below confidence gate, using safe default plan")
		score.FailedGates = append(score.FailedGates, GateLowConfidenceFallback)
		score.Notes = append(score.Notes,
			"scores describe the rejected best candidate; the returned plan is the safe default")
		return Selection{
			Plan:     SafeDefaultPlan(req),
			Score:    score,
			Winner:   -1,
			Fallback: true,
			Reason: fmt.Sprintf("%v: best vps %.3f below %.3f",
				ErrLowConfidence, score.VPS, s.cfg.ConfidenceThreshold),
		}
	}

	s.logger.Info().
		Str("candidate", winner.ID).
		Float64("vps", score.VPS).
		Msg("candidate selected")

	return Selection{
		Plan:   winner.Plan,
		Score:  score,
		Winner: winner.Index,
	}
}

// betterThan reports whether (a, aIdx) ranks above (b, bIdx).
func betterThan(a PlanScore, aIdx int, b PlanScore, bIdx int) bool {
	if a.VPS != b.VPS {
		return a.VPS > b.VPS
	}
	if len(a.FailedGates) != len(b.FailedGates) {
		return len(a.FailedGates) < len(b.FailedGates)
	}
	return aIdx < bIdx
}

// SafeDefaultPlan builds the deterministic fallback: minimal cuts,
// neutral captions, no risky pacing.
func SafeDefaultPlan(req ReelPlanRequest) ReelPlan {
	req = req.Normalize()
	target := req.DurationTargetSec
	if req.SourceDurationSec < target {
		target = req.SourceDurationSec
	}

	shares := [4]float64{0.2, 0.25, 0.35, 0.2}
	beats := make([]Beat, 0, len(beatOrder))
	cursor := 0.0
	for i, bt := range beatOrder {
		end := cursor + shares[i]*target
		beats = append(beats, Beat{
			Type:      bt,
			Start:     cursor,
			End:       end,
			Caption:   beatCaption(bt, "Watch this first", "Save this for later"),
			Narration: beatNarration(bt, req, "Watch this first", "Save this for later"),
		})
		cursor = end
	}

	return ReelPlan{
		ID:                "safe-default",
		Template:          req.Template,
		Platform:          req.Platform,
		Objective:         req.Objective,
		DurationTargetSec: req.DurationTargetSec,
		Hook: HookSpec{
			Text:        "Watch this first",
			Style:       "bold-top",
			DurationSec: shares[0] * target,
		},
		Captions: CaptionSpec{
			Strategy:     "static-subtitles",
			WordsPerLine: 4,
			Emphasis:     "none",
		},
		Beats: beats,
		Pace:  "medium",
		CTA:   "Save this for later",
	}
}
