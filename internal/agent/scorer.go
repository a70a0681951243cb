package agent

import (
	"math"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
)

// Scorer computes PQS from static plan signals, EPS from engagement
// telemetry when present, and blends both into VPS. All signal values
// are clamped to [0,1] before weighting and every contribution is
// recorded so a score can be explained after the fact.
//
// Normalization curves are monotonic in their raw measurement; the
// exact shapes are a product choice documented per signal below.
type Scorer struct {
	logger zerolog.Logger
	cfg    ScoringConfig
}

// NewScorer creates a scorer. The config must already be sanitized;
// Score sanitizes defensively anyway so a raw config cannot produce an
// unbalanced blend.
func NewScorer(logger zerolog.Logger, cfg ScoringConfig) *Scorer {
	cfg.Sanitize()
	return &Scorer{
		logger: logger.With().Str("component", "scorer").Logger(),
		cfg:    cfg,
	}
}

// Config returns the sanitized config in effect, including any
// fallback notes recorded during sanitization.
func (s *Scorer) Config() ScoringConfig {
	return s.cfg
}

// Score evaluates one candidate. Telemetry may be nil pre-publish, in
// which case EPS is the neutral prior and flagged provisional.
func (s *Scorer) Score(c Candidate, tel *Telemetry) PlanScore {
	score := PlanScore{}

	for _, sig := range PQSSignals() {
		raw := s.rawPQSSignal(sig, c.Plan)
		value := clamp01(normalizePQSSignal(sig, raw, c.Plan))
		weight := s.cfg.PQSSignalWeights[sig]
		contrib := weight * value
		score.PQS += contrib
		score.Contributions = append(score.Contributions, FeatureContribution{
			Feature:      sig,
			Component:    "pqs",
			Raw:          raw,
			Value:        value,
			Weight:       weight,
			Contribution: contrib,
		})
	}

	if tel == nil {
		score.EPS = s.cfg.NeutralEPS
		score.EPSProvisional = true
		score.Notes = append(score.Notes, "eps is a neutral prior: no engagement telemetry yet")
	} else {
		for _, sig := range EPSSignals() {
			raw := rawEPSSignal(sig, *tel)
			value := clamp01(normalizeEPSSignal(sig, raw))
			weight := s.cfg.EPSSignalWeights[sig]
			contrib := weight * value
			score.EPS += contrib
			score.Contributions = append(score.Contributions, FeatureContribution{
				Feature:      sig,
				Component:    "eps",
				Raw:          raw,
				Value:        value,
				Weight:       weight,
				Contribution: contrib,
			})
		}
	}

	score.VPS = s.cfg.VPS(score.PQS, score.EPS)

	if score.PQS < s.cfg.PQSGate {
		score.FailedGates = append(score.FailedGates, GatePQSBelowThreshold)
	}
	if c.Plan.Captions.WordsPerLine > 5 {
		score.FailedGates = append(score.FailedGates, GateCaptionOverflow)
	}
	score.Notes = append(score.Notes, planNotes(c.Plan)...)

	s.logger.Debug().
		Str("candidate", c.ID).
		Float64("pqs", score.PQS).
		Float64("eps", score.EPS).
		Float64("vps", score.VPS).
		Bool("eps_provisional", score.EPSProvisional).
		Msg("candidate scored")

	return score
}

// VPS blends the two component scores with the configured split.
func (c ScoringConfig) VPS(pqs, eps float64) float64 {
	return c.PQSWeight*pqs + c.EPSWeight*eps
}

// rawPQSSignal extracts the raw measurement for one static signal.
func (s *Scorer) rawPQSSignal(sig Signal, plan ReelPlan) float64 {
	switch sig {
	case SignalHook:
		return hookStrengthPoints(plan.Hook.Text)
	case SignalPacingDensity:
		total := plan.TotalBeatSeconds()
		if total <= 0 {
			return 0
		}
		// cuts per 10 seconds
		return float64(len(plan.Beats)) / total * 10
	case SignalCaptionReadability:
		return float64(plan.Captions.WordsPerLine)
	case SignalAudioToneFit:
		return toneFit(plan.Pace, plan.Platform)
	case SignalCTAQuality:
		return ctaPoints(plan.CTA)
	case SignalTechnicalQuality:
		if plan.DurationTargetSec <= 0 {
			return 0
		}
		return math.Abs(plan.TotalBeatSeconds()-plan.DurationTargetSec) / plan.DurationTargetSec
	case SignalOriginality:
		return float64(distinctWords(plan.Hook.Text))
	case SignalSafety:
		return riskyTermCount(plan.Hook.Text + " " + plan.CTA)
	}
	return 0
}

// normalizePQSSignal maps a raw measurement onto [0,1].
func normalizePQSSignal(sig Signal, raw float64, plan ReelPlan) float64 {
	switch sig {
	case SignalHook:
		// points already on a 0-100 heuristic scale
		return raw / 100
	case SignalPacingDensity:
		// saturating: density d -> d/(d+2), rises with cut density
		return raw / (raw + 2)
	case SignalCaptionReadability:
		// linear decreasing in words per line: 3 -> .98, 4 -> .86, 5 -> .74
		return 1.34 - 0.12*raw
	case SignalAudioToneFit:
		return raw
	case SignalCTAQuality:
		return raw / 100
	case SignalTechnicalQuality:
		// raw is relative duration deviation; zero deviation is perfect
		return 1 - raw
	case SignalOriginality:
		// saturating in distinct word count
		return raw / 9
	case SignalSafety:
		// each risky term costs 0.4
		return 1 - 0.4*raw
	}
	return 0
}

func rawEPSSignal(sig Signal, tel Telemetry) float64 {
	switch sig {
	case SignalWatchRatio:
		return tel.WatchRatio
	case SignalCompletion:
		return tel.CompletionRate
	case SignalEngagementRate:
		return tel.EngagementRate
	case SignalShareVelocity:
		return tel.SharesPerThousand
	}
	return 0
}

func normalizeEPSSignal(sig Signal, raw float64) float64 {
	switch sig {
	case SignalWatchRatio, SignalCompletion:
		// already a ratio
		return raw
	case SignalEngagementRate:
		// 0.15 engagement per view is treated as ceiling
		return raw / 0.15
	case SignalShareVelocity:
		// saturating in shares per thousand views
		return raw / (raw + 5)
	}
	return 0
}

// hookStrengthPoints mirrors the product heuristic: length gives the
// base, a number in the hook adds a small bonus, capped at 95.
func hookStrengthPoints(hook string) float64 {
	points := 70.0
	if len(hook) >= 20 {
		points = 85
	}
	if strings.ContainsFunc(hook, unicode.IsDigit) {
		points = math.Min(95, points+4)
	}
	return points
}

func ctaPoints(cta string) float64 {
	lower := strings.ToLower(cta)
	points := 60.0
	for _, kw := range []string{"save", "comment", "follow", "share", "test"} {
		if strings.Contains(lower, kw) {
			points = 84
			break
		}
	}
	if points > 60 && len(cta) <= 60 {
		points += 6
	}
	return points
}

func toneFit(pace string, platform Platform) float64 {
	switch {
	case pace == "fast" && (platform == PlatformTikTok || platform == PlatformReels):
		return 0.9
	case pace == "fast":
		return 0.85
	case pace == "medium":
		return 0.75
	default:
		return 0.6
	}
}

func distinctWords(s string) int {
	seen := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		seen[strings.Trim(w, ".,!?'\"()—-")] = struct{}{}
	}
	return len(seen)
}

var riskyTerms = []string{"guaranteed", "hack the algorithm", "get rich", "shocking", "you won't believe"}

func riskyTermCount(s string) float64 {
	lower := strings.ToLower(s)
	var n float64
	for _, term := range riskyTerms {
		if strings.Contains(lower, term) {
			n++
		}
	}
	return n
}

func planNotes(plan ReelPlan) []string {
	var notes []string
	if plan.DurationTargetSec > 35 {
		notes = append(notes, "longer than typical viral short-form range; tighten to <=30s when possible")
	}
	if plan.Captions.WordsPerLine > 5 {
		notes = append(notes, "caption lines may feel dense on mobile")
	}
	lower := strings.ToLower(plan.CTA)
	if !strings.Contains(lower, "save") && !strings.Contains(lower, "comment") {
		notes = append(notes, "cta may be weak for engagement actions")
	}
	return notes
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
