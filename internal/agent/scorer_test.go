package agent

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
)

const floatTolerance = 1e-6

func scoredCandidate(t *testing.T) Candidate {
	t.Helper()
	candidates, _ := NewPlanner(zerolog.Nop()).Generate(testRequest())
	if len(candidates) == 0 {
		t.Fatal("no candidates generated")
	}
	return candidates[0]
}

func TestContributionsSumToScores(t *testing.T) {
	scorer := NewScorer(zerolog.Nop(), DefaultScoringConfig())
	cand := scoredCandidate(t)

	tel := &Telemetry{
		WatchRatio:        0.62,
		CompletionRate:    0.41,
		EngagementRate:    0.05,
		SharesPerThousand: 3,
	}
	score := scorer.Score(cand, tel)

	var pqsSum, epsSum float64
	for _, fc := range score.Contributions {
		switch fc.Component {
		case "pqs":
			pqsSum += fc.Contribution
		case "eps":
			epsSum += fc.Contribution
		default:
			t.Fatalf("unknown component %q", fc.Component)
		}
	}

	if math.Abs(pqsSum-score.PQS) > floatTolerance {
		t.Errorf("pqs contributions sum %.9f != pqs %.9f", pqsSum, score.PQS)
	}
	if math.Abs(epsSum-score.EPS) > floatTolerance {
		t.Errorf("eps contributions sum %.9f != eps %.9f", epsSum, score.EPS)
	}

	wantVPS := DefaultPQSWeight*score.PQS + DefaultEPSWeight*score.EPS
	if math.Abs(score.VPS-wantVPS) > floatTolerance {
		t.Errorf("vps %.9f != weighted blend %.9f", score.VPS, wantVPS)
	}
}

func TestVPSLiteralCase(t *testing.T) {
	cfg := DefaultScoringConfig()

	// PQS=0.8, EPS=0.6 must blend to 0.71 with the default split.
	if got := cfg.VPS(0.8, 0.6); math.Abs(got-0.71) > floatTolerance {
		t.Fatalf("vps(0.8, 0.6) = %.9f, want 0.71", got)
	}
}

func TestSignalValuesClamped(t *testing.T) {
	scorer := NewScorer(zerolog.Nop(), DefaultScoringConfig())
	cand := scoredCandidate(t)

	// Raw telemetry way outside [0,1] must not push EPS past 1.
	tel := &Telemetry{
		WatchRatio:        3.5,
		CompletionRate:    2.0,
		EngagementRate:    1.0,
		SharesPerThousand: 5000,
	}
	score := scorer.Score(cand, tel)

	for _, fc := range score.Contributions {
		if fc.Value < 0 || fc.Value > 1 {
			t.Errorf("signal %s normalized value %.3f outside [0,1]", fc.Feature, fc.Value)
		}
	}
	if score.EPS > 1+floatTolerance {
		t.Errorf("eps %.3f exceeds 1", score.EPS)
	}
}

func TestMissingTelemetryUsesNeutralPrior(t *testing.T) {
	scorer := NewScorer(zerolog.Nop(), DefaultScoringConfig())
	cand := scoredCandidate(t)

	score := scorer.Score(cand, nil)

	if !score.EPSProvisional {
		t.Error("eps must be flagged provisional without telemetry")
	}
	if math.Abs(score.EPS-0.5) > floatTolerance {
		t.Errorf("neutral eps prior = %.3f, want 0.5", score.EPS)
	}
}

func TestUnbalancedWeightsFallBackToDefaults(t *testing.T) {
	cfg := DefaultScoringConfig()
	cfg.PQSWeight = 0.9
	cfg.EPSWeight = 0.9

	scorer := NewScorer(zerolog.Nop(), cfg)

	effective := scorer.Config()
	if effective.PQSWeight != DefaultPQSWeight || effective.EPSWeight != DefaultEPSWeight {
		t.Errorf("expected default split, got %.2f/%.2f", effective.PQSWeight, effective.EPSWeight)
	}
	if len(effective.FallbackNotes) == 0 {
		t.Error("weight substitution must be recorded in fallback notes")
	}
}

func TestCaptionOverflowGate(t *testing.T) {
	scorer := NewScorer(zerolog.Nop(), DefaultScoringConfig())
	cand := scoredCandidate(t)
	cand.Plan.Captions.WordsPerLine = 7

	score := scorer.Score(cand, nil)

	if !containsGate(score.FailedGates, GateCaptionOverflow) {
		t.Errorf("expected %s gate, got %v", GateCaptionOverflow, score.FailedGates)
	}
}

func TestPQSGateFlagged(t *testing.T) {
	cfg := DefaultScoringConfig()
	cfg.PQSGate = 0.99 // everything fails this gate

	scorer := NewScorer(zerolog.Nop(), cfg)
	score := scorer.Score(scoredCandidate(t), nil)

	if !containsGate(score.FailedGates, GatePQSBelowThreshold) {
		t.Errorf("expected %s gate, got %v", GatePQSBelowThreshold, score.FailedGates)
	}
}
