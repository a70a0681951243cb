package agent

import (
	"fmt"
	"sort"
)

// BuildScoreReport assembles the versioned scoring contract consumed
// by the review UI.
func BuildScoreReport(plan ReelPlan, score PlanScore) ScoreReport {
	return ScoreReport{
		Version:              ScoreReportVersion,
		PQS:                  score.PQS,
		EPS:                  score.EPS,
		VPS:                  score.VPS,
		FeatureContributions: score.Contributions,
		FailedGates:          score.FailedGates,
		Recommendations:      buildRecommendations(plan, score),
	}
}

// buildRecommendations turns the weakest PQS signals into reviewer
// hints with an expected impact range.
func buildRecommendations(plan ReelPlan, score PlanScore) []Recommendation {
	weakest := weakestPQSSignals(score, 2)

	recs := make([]Recommendation, 0, len(weakest)+1)
	for i, fc := range weakest {
		recs = append(recs, Recommendation{
			Priority:          i + 1,
			Action:            signalAction(fc.Feature, plan),
			ExpectedLiftRange: liftRange(fc.Value),
		})
	}
	if score.EPSProvisional {
		recs = append(recs, Recommendation{
			Priority:          len(recs) + 1,
			Action:            "collect 30/60/120-minute engagement telemetry to replace the neutral eps prior",
			ExpectedLiftRange: "n/a",
		})
	}
	return recs
}

// BuildEditSuggestions derives the ordered edit list from failed gates
// and low-scoring contributions. Lower priority means more urgent.
func BuildEditSuggestions(plan ReelPlan, score PlanScore, adj *SyncAdjustment) []EditSuggestion {
	var out []EditSuggestion
	priority := 1

	for _, gate := range score.FailedGates {
		sug := EditSuggestion{Priority: priority, Action: gateAction(gate)}
		if hint, ok := gateTimestamp(gate, plan, adj); ok {
			sug.TimestampHint = &hint
		}
		out = append(out, sug)
		priority++
	}

	for _, fc := range weakestPQSSignals(score, 2) {
		if fc.Value >= 0.7 {
			continue
		}
		sug := EditSuggestion{Priority: priority, Action: signalAction(fc.Feature, plan)}
		if hint, ok := signalTimestamp(fc.Feature, plan); ok {
			sug.TimestampHint = &hint
		}
		out = append(out, sug)
		priority++
	}

	if len(out) == 0 {
		out = append(out, EditSuggestion{
			Priority: 1,
			Action:   "plan clears all gates; review pacing against the source footage before rendering",
		})
	}
	return out
}

// weakestPQSSignals returns up to n PQS contributions ordered by
// ascending normalized value, ties by canonical signal order.
func weakestPQSSignals(score PlanScore, n int) []FeatureContribution {
	var pqs []FeatureContribution
	for _, fc := range score.Contributions {
		if fc.Component == "pqs" {
			pqs = append(pqs, fc)
		}
	}
	sort.SliceStable(pqs, func(i, j int) bool { return pqs[i].Value < pqs[j].Value })
	if len(pqs) > n {
		pqs = pqs[:n]
	}
	return pqs
}

func gateAction(gate string) string {
	switch gate {
	case GateGenerationUnderfilled:
		return "source footage limited candidate variety; provide a longer source or relax the target duration"
	case GatePQSBelowThreshold:
		return "pre-publish quality below gate; strengthen the hook and tighten mid-section cuts"
	case GateCaptionOverflow:
		return "caption lines exceed readable width; drop to at most 4 words per line"
	case GateHeavySpeedDistortion:
		return "narration and picture lengths diverge beyond policy; shorten the script or extend the final beat"
	case GateLowConfidenceFallback:
		return "no candidate cleared the confidence gate; safe default plan in use, review the brief"
	default:
		return fmt.Sprintf("review failed gate %q", gate)
	}
}

func gateTimestamp(gate string, plan ReelPlan, adj *SyncAdjustment) (float64, bool) {
	switch gate {
	case GateHeavySpeedDistortion:
		if adj != nil && adj.FreezeFrameSeconds > 0 && len(plan.Beats) > 0 {
			return plan.Beats[len(plan.Beats)-1].End, true
		}
	case GateCaptionOverflow:
		if len(plan.Beats) > 0 {
			return plan.Beats[0].Start, true
		}
	}
	return 0, false
}

func signalAction(sig Signal, plan ReelPlan) string {
	switch sig {
	case SignalHook:
		return "rewrite the hook with a concrete number or outcome in the first line"
	case SignalPacingDensity:
		return fmt.Sprintf("add cut points in the middle section; current pace %q reads slow", plan.Pace)
	case SignalCaptionReadability:
		return "shorten caption lines; mobile viewers skim at 3-4 words per line"
	case SignalAudioToneFit:
		return "align narration tone with the cut pace or switch the pacing profile"
	case SignalCTAQuality:
		return "end on a single explicit action (save, comment, follow)"
	case SignalTechnicalQuality:
		return "total cut length drifts from the target duration; retrim the solution beat"
	case SignalOriginality:
		return "hook wording overlaps common templates; differentiate the first line"
	case SignalSafety:
		return "remove claim-heavy phrasing before publishing"
	default:
		return fmt.Sprintf("improve signal %q", sig)
	}
}

func signalTimestamp(sig Signal, plan ReelPlan) (float64, bool) {
	if len(plan.Beats) == 0 {
		return 0, false
	}
	switch sig {
	case SignalHook, SignalCaptionReadability, SignalOriginality, SignalSafety:
		return plan.Beats[0].Start, true
	case SignalCTAQuality:
		return plan.Beats[len(plan.Beats)-1].Start, true
	case SignalPacingDensity, SignalTechnicalQuality:
		mid := len(plan.Beats) / 2
		return plan.Beats[mid].Start, true
	}
	return 0, false
}

func liftRange(value float64) string {
	switch {
	case value < 0.4:
		return "+8-15% watch-time"
	case value < 0.7:
		return "+3-7% watch-time"
	default:
		return "+1-3% watch-time"
	}
}
