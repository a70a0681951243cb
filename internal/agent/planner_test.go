package agent

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
)

func testRequest() ReelPlanRequest {
	return ReelPlanRequest{
		SourceVideo:       "sample.mp4",
		SourceDurationSec: 120,
		Platform:          PlatformReels,
		DurationTargetSec: 20,
		Candidates:        3,
	}
}

func TestGenerateProducesRequestedCandidates(t *testing.T) {
	planner := NewPlanner(zerolog.Nop())

	for _, n := range []int{3, 4, 5} {
		req := testRequest()
		req.Candidates = n

		candidates, gates := planner.Generate(req)
		if len(candidates) != n {
			t.Fatalf("expected %d candidates, got %d", n, len(candidates))
		}
		if len(gates) != 0 {
			t.Errorf("unexpected gates for a long source: %v", gates)
		}
	}
}

func TestGeneratedPlansSatisfyBeatInvariants(t *testing.T) {
	planner := NewPlanner(zerolog.Nop())
	req := testRequest()
	req.Candidates = 5

	candidates, _ := planner.Generate(req)

	for _, c := range candidates {
		beats := c.Plan.Beats
		if len(beats) == 0 {
			t.Fatalf("candidate %s has no beats", c.ID)
		}
		for i, b := range beats {
			if b.End <= b.Start {
				t.Errorf("candidate %s beat %d: end %.2f <= start %.2f", c.ID, i, b.End, b.Start)
			}
			if i > 0 {
				prev := beats[i-1]
				if b.Start < prev.End {
					t.Errorf("candidate %s beat %d overlaps previous (start %.2f < prev end %.2f)",
						c.ID, i, b.Start, prev.End)
				}
				if b.Start < prev.Start {
					t.Errorf("candidate %s beats not ordered by start time", c.ID)
				}
			}
		}

		total := c.Plan.TotalBeatSeconds()
		tolerance := DefaultScoringConfig().DurationTolerance
		if math.Abs(total-req.DurationTargetSec)/req.DurationTargetSec > tolerance {
			t.Errorf("candidate %s total %.2fs outside tolerance of target %.2fs", c.ID, total, req.DurationTargetSec)
		}
	}
}

func TestGeneratedPlansAreStructurallyDistinct(t *testing.T) {
	planner := NewPlanner(zerolog.Nop())
	req := testRequest()
	req.Candidates = 5

	candidates, _ := planner.Generate(req)

	for i := range candidates {
		for j := i + 1; j < len(candidates); j++ {
			if samePlanStructure(candidates[i].Plan, candidates[j].Plan) {
				t.Errorf("candidates %s and %s share beat sequence and cut ranges",
					candidates[i].ID, candidates[j].ID)
			}
		}
	}
}

func TestGenerateUnderfillsOnShortSource(t *testing.T) {
	planner := NewPlanner(zerolog.Nop())
	req := testRequest()
	req.SourceDurationSec = 25 // only the zero-offset variant fits
	req.Candidates = 3

	candidates, gates := planner.Generate(req)

	if len(candidates) == 0 {
		t.Fatal("short source must still yield at least one candidate")
	}
	if len(candidates) >= req.Candidates {
		t.Fatalf("expected underfill, got %d candidates", len(candidates))
	}
	if !containsGate(gates, GateGenerationUnderfilled) {
		t.Errorf("expected %s gate, got %v", GateGenerationUnderfilled, gates)
	}
}

func TestGenerateClampsWhenSourceShorterThanTarget(t *testing.T) {
	planner := NewPlanner(zerolog.Nop())
	req := testRequest()
	req.SourceDurationSec = 12
	req.DurationTargetSec = 20

	candidates, gates := planner.Generate(req)

	if len(candidates) != 1 {
		t.Fatalf("expected one clamped candidate, got %d", len(candidates))
	}
	if !containsGate(gates, GateGenerationUnderfilled) {
		t.Errorf("expected %s gate, got %v", GateGenerationUnderfilled, gates)
	}
	if total := candidates[0].Plan.TotalBeatSeconds(); total > req.SourceDurationSec+1e-9 {
		t.Errorf("clamped plan total %.2fs exceeds source %.2fs", total, req.SourceDurationSec)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	planner := NewPlanner(zerolog.Nop())
	req := testRequest()

	first, _ := planner.Generate(req)
	second, _ := planner.Generate(req)

	if len(first) != len(second) {
		t.Fatalf("candidate counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Seed != second[i].Seed {
			t.Errorf("candidate %d differs between runs: %v vs %v", i, first[i].ID, second[i].ID)
		}
		if !samePlanStructure(first[i].Plan, second[i].Plan) {
			t.Errorf("candidate %d plan structure differs between runs", i)
		}
	}
}

func containsGate(gates []string, want string) bool {
	for _, g := range gates {
		if g == want {
			return true
		}
	}
	return false
}
