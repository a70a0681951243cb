package agent

import (
	"fmt"
	"hash/fnv"

	"github.com/rs/zerolog"
)

// planVariant is one structural recipe for a candidate. Offsets and
// beat share profiles differ per variant so cut ranges and pacing are
// structurally distinct by construction.
type planVariant struct {
	tag          string
	hooks        map[Platform]string
	cta          string
	pace         string
	wordsPerLine int
	// startShare positions the first cut as a fraction of the target
	// duration into the source timeline.
	startShare float64
	// beatShares splits the target duration across hook, problem,
	// solution, cta. Must sum to 1.
	beatShares [4]float64
}

var planVariants = []planVariant{
	{
		tag: "hook-fast-cta",
		hooks: map[Platform]string{
			PlatformReels:  "Stop scrolling — watch this before your next post",
			PlatformTikTok: "POV: You fix your reel in 20 seconds",
			PlatformShorts: "This one tweak can double watch-time",
		},
		cta:          "Save this and try it on your next edit",
		pace:         "fast",
		wordsPerLine: 4,
		startShare:   0,
		beatShares:   [4]float64{0.15, 0.25, 0.40, 0.20},
	},
	{
		tag: "mistakes-callout",
		hooks: map[Platform]string{
			PlatformReels:  "3 mistakes killing your engagement (fix this now)",
			PlatformTikTok: "3 mistakes killing your engagement (fix this now)",
			PlatformShorts: "3 mistakes tanking your retention (fix this now)",
		},
		cta:          "Comment 'template' and I'll send the structure",
		pace:         "fast",
		wordsPerLine: 3,
		startShare:   0.5,
		beatShares:   [4]float64{0.20, 0.30, 0.35, 0.15},
	},
	{
		tag: "retention-first",
		hooks: map[Platform]string{
			PlatformReels:  "If your reel retention drops, do this first",
			PlatformTikTok: "If your retention drops, do this first",
			PlatformShorts: "If your viewers leave early, do this first",
		},
		cta:          "Save this checklist before your next post",
		pace:         "medium",
		wordsPerLine: 4,
		startShare:   1.0,
		beatShares:   [4]float64{0.125, 0.325, 0.375, 0.175},
	},
	{
		tag: "creator-loop",
		hooks: map[Platform]string{
			PlatformReels:  "The 20-second edit loop top creators repeat",
			PlatformTikTok: "The 20-second edit loop top creators repeat",
			PlatformShorts: "The edit loop top creators repeat every upload",
		},
		cta:          "Follow for part 2 with live examples",
		pace:         "fast",
		wordsPerLine: 5,
		startShare:   1.5,
		beatShares:   [4]float64{0.18, 0.22, 0.42, 0.18},
	},
	{
		tag: "one-hook-away",
		hooks: map[Platform]string{
			PlatformReels:  "You're one hook away from a better reel",
			PlatformTikTok: "You're one hook away from a better reel",
			PlatformShorts: "You're one hook away from a better short",
		},
		cta:          "Test this today and compare watch-time",
		pace:         "fast",
		wordsPerLine: 4,
		startShare:   2.0,
		beatShares:   [4]float64{0.15, 0.35, 0.30, 0.20},
	},
}

var beatOrder = [4]BeatType{BeatHook, BeatProblem, BeatSolution, BeatCTA}

// Planner generates structurally distinct candidate reel plans.
// Generation is a pure function of (request, template, seed): no I/O,
// so a run can be replayed exactly.
type Planner struct {
	logger zerolog.Logger
}

// NewPlanner creates a candidate generator.
func NewPlanner(logger zerolog.Logger) *Planner {
	return &Planner{
		logger: logger.With().Str("component", "planner").Logger(),
	}
}

// Generate produces up to req.Candidates distinct candidates. When the
// source is too short for the full set it returns what fits plus the
// underfilled gate instead of erroring.
func (p *Planner) Generate(req ReelPlanRequest) ([]Candidate, []string) {
	req = req.Normalize()

	var (
		candidates []Candidate
		gates      []string
	)

	for i, v := range planVariants {
		if len(candidates) >= req.Candidates {
			break
		}
		start := v.startShare * req.DurationTargetSec
		if start+req.DurationTargetSec > req.SourceDurationSec {
			continue
		}
		plan := p.buildPlan(req, v, i, start, req.DurationTargetSec)
		cand := Candidate{
			Index:    len(candidates),
			ID:       fmt.Sprintf("%s-v%d", req.Template, i+1),
			Strategy: v.tag,
			Seed:     planSeed(req.Template, i),
			Plan:     plan,
		}
		if !distinctFromAll(cand, candidates) {
			continue
		}
		candidates = append(candidates, cand)
	}

	// Source shorter than the target: emit one clamped plan over the
	// whole source rather than nothing.
	if len(candidates) == 0 && req.SourceDurationSec > 0 {
		v := planVariants[0]
		plan := p.buildPlan(req, v, 0, 0, req.SourceDurationSec)
		candidates = append(candidates, Candidate{
			Index:    0,
			ID:       fmt.Sprintf("%s-clamped", req.Template),
			Strategy: v.tag,
			Seed:     planSeed(req.Template, 0),
			Plan:     plan,
		})
	}

	if len(candidates) < req.Candidates {
		gates = append(gates, GateGenerationUnderfilled)
		p.logger.Warn().
			Err(ErrGenerationUnderfilled).
			Int("requested", req.Candidates).
			Int("generated", len(candidates)).
			Float64("source_sec", req.SourceDurationSec).
			Msg("source too short for full candidate set")
	}

	p.logger.Debug().
		Int("candidates", len(candidates)).
		Str("template", req.Template).
		Msg("candidate generation complete")

	return candidates, gates
}

func (p *Planner) buildPlan(req ReelPlanRequest, v planVariant, variant int, start, total float64) ReelPlan {
	hook := v.hooks[req.Platform]
	if hook == "" {
		hook = "Watch this first"
	}

	beats := make([]Beat, 0, len(beatOrder))
	cursor := start
	for bi, bt := range beatOrder {
		dur := v.beatShares[bi] * total
		beat := Beat{
			Type:      bt,
			Start:     cursor,
			End:       cursor + dur,
			Caption:   beatCaption(bt, hook, v.cta),
			Narration: beatNarration(bt, req, hook, v.cta),
		}
		cursor = beat.End
		beats = append(beats, beat)
	}

	return ReelPlan{
		ID:                fmt.Sprintf("%s-v%d", req.Template, variant+1),
		Template:          req.Template,
		Platform:          req.Platform,
		Objective:         req.Objective,
		DurationTargetSec: req.DurationTargetSec,
		Hook: HookSpec{
			Text:        hook,
			Style:       "bold-top",
			DurationSec: v.beatShares[0] * total,
		},
		Captions: CaptionSpec{
			Strategy:     "kinetic-subtitles",
			WordsPerLine: v.wordsPerLine,
			Emphasis:     "verbs+numbers",
		},
		Beats: beats,
		Pace:  v.pace,
		CTA:   v.cta,
	}
}

func beatCaption(bt BeatType, hook, cta string) string {
	switch bt {
	case BeatHook:
		return hook
	case BeatProblem:
		return "Most edits lose viewers right here"
	case BeatSolution:
		return "Tighten the cut, front-load the payoff"
	case BeatCTA:
		return cta
	}
	return ""
}

func beatNarration(bt BeatType, req ReelPlanRequest, hook, cta string) string {
	switch bt {
	case BeatHook:
		return hook
	case BeatProblem:
		return "Here's where most edits lose the viewer and the algorithm stops pushing."
	case BeatSolution:
		return fmt.Sprintf("Recut the middle at a %s pace so every second earns the next one.", req.Tone)
	case BeatCTA:
		return cta
	}
	return ""
}

// distinctFromAll enforces the distinctness policy: no two candidates
// may share both an ordered beat-type sequence and identical cut
// ranges.
func distinctFromAll(c Candidate, existing []Candidate) bool {
	for _, e := range existing {
		if samePlanStructure(c.Plan, e.Plan) {
			return false
		}
	}
	return true
}

func samePlanStructure(a, b ReelPlan) bool {
	if len(a.Beats) != len(b.Beats) {
		return false
	}
	for i := range a.Beats {
		if a.Beats[i].Type != b.Beats[i].Type {
			return false
		}
		if a.Beats[i].Start != b.Beats[i].Start || a.Beats[i].End != b.Beats[i].End {
			return false
		}
	}
	return true
}

func planSeed(template string, variant int) int64 {
	h := fnv.New64a()
	h.Write([]byte(template))
	return int64(h.Sum64()>>1) + int64(variant)
}
