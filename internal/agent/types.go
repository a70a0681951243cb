package agent

// Platform identifies the publishing target for a reel
type Platform string

const (
	PlatformReels  Platform = "reels"
	PlatformTikTok Platform = "tiktok"
	PlatformShorts Platform = "shorts"
)

// BeatType identifies the structural role of a plan segment
type BeatType string

const (
	BeatHook     BeatType = "hook"
	BeatProblem  BeatType = "problem"
	BeatSolution BeatType = "solution"
	BeatCTA      BeatType = "cta"
)

// Beat maps a structural segment to a cut range [Start,End) on the
// source timeline. Times are seconds.
type Beat struct {
	Type          BeatType `json:"type"`
	Start         float64  `json:"start"`
	End           float64  `json:"end"`
	Caption       string   `json:"caption,omitempty"`
	Narration     string   `json:"narration,omitempty"`
	FreezeSeconds float64  `json:"freeze_seconds,omitempty"`
}

// Duration returns the cut length in seconds.
func (b Beat) Duration() float64 {
	return b.End - b.Start
}

// HookSpec describes the opening hook treatment
type HookSpec struct {
	Text        string  `json:"text"`
	Style       string  `json:"style"`
	DurationSec float64 `json:"duration_sec"`
}

// CaptionSpec describes caption rendering strategy
type CaptionSpec struct {
	Strategy     string `json:"strategy"`
	WordsPerLine int    `json:"words_per_line"`
	Emphasis     string `json:"emphasis"`
}

// ReelPlanRequest is the immutable input to a planning run
type ReelPlanRequest struct {
	SourceVideo       string   `json:"source_video"`
	SourceDurationSec float64  `json:"source_duration_sec,omitempty"`
	Template          string   `json:"template"`
	Platform          Platform `json:"platform"`
	Objective         string   `json:"objective"`
	DurationTargetSec float64  `json:"duration_target_sec"`
	Tone              string   `json:"tone"`
	Candidates        int      `json:"candidates"`
}

// ReelPlan is an ordered beat sequence plus creative treatment
type ReelPlan struct {
	ID                string      `json:"id"`
	Template          string      `json:"template"`
	Platform          Platform    `json:"platform"`
	Objective         string      `json:"objective"`
	DurationTargetSec float64     `json:"duration_target_sec"`
	Hook              HookSpec    `json:"hook"`
	Captions          CaptionSpec `json:"captions"`
	Beats             []Beat      `json:"beats"`
	Pace              string      `json:"pace"`
	CTA               string      `json:"cta"`
}

// TotalBeatSeconds sums cut durations across all beats.
func (p ReelPlan) TotalBeatSeconds() float64 {
	var total float64
	for _, b := range p.Beats {
		total += b.Duration()
	}
	return total
}

// NarrationScript joins per-beat narration lines in beat order.
func (p ReelPlan) NarrationScript() string {
	script := ""
	for _, b := range p.Beats {
		if b.Narration == "" {
			continue
		}
		if script != "" {
			script += " "
		}
		script += b.Narration
	}
	return script
}

// Candidate is one generated plan under consideration. Candidates are
// value types and share no state; Index is generation order and the
// deterministic tie-break key.
type Candidate struct {
	Index    int      `json:"index"`
	ID       string   `json:"id"`
	Strategy string   `json:"strategy"`
	Seed     int64    `json:"seed"`
	Plan     ReelPlan `json:"plan"`
}

// Signal names one scored heuristic. The set is fixed; unknown weight
// keys in configuration are ignored rather than invented at runtime.
type Signal string

const (
	// PQS signals (static, pre-publish)
	SignalHook               Signal = "hook"
	SignalPacingDensity      Signal = "pacing_density"
	SignalCaptionReadability Signal = "caption_readability"
	SignalAudioToneFit       Signal = "audio_tone_fit"
	SignalCTAQuality         Signal = "cta_quality"
	SignalTechnicalQuality   Signal = "technical_quality"
	SignalOriginality        Signal = "originality"
	SignalSafety             Signal = "safety"

	// EPS signals (early engagement telemetry)
	SignalWatchRatio     Signal = "watch_ratio"
	SignalCompletion     Signal = "completion"
	SignalEngagementRate Signal = "engagement_rate"
	SignalShareVelocity  Signal = "share_velocity"
)

// PQSSignals lists PQS signals in canonical order.
func PQSSignals() []Signal {
	return []Signal{
		SignalHook, SignalPacingDensity, SignalCaptionReadability,
		SignalAudioToneFit, SignalCTAQuality, SignalTechnicalQuality,
		SignalOriginality, SignalSafety,
	}
}

// EPSSignals lists EPS signals in canonical order.
func EPSSignals() []Signal {
	return []Signal{
		SignalWatchRatio, SignalCompletion,
		SignalEngagementRate, SignalShareVelocity,
	}
}

// FeatureContribution records one signal's share of a score so every
// number in a report can be traced back to its inputs.
type FeatureContribution struct {
	Feature      Signal  `json:"feature"`
	Component    string  `json:"component"` // "pqs" or "eps"
	Raw          float64 `json:"raw"`
	Value        float64 `json:"value"` // normalized to [0,1]
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Quality gates appended to PlanScore.FailedGates.
const (
	GateGenerationUnderfilled = "generation_underfilled"
	GatePQSBelowThreshold     = "pqs_below_threshold"
	GateCaptionOverflow       = "caption_overflow"
	GateHeavySpeedDistortion  = "heavy_speed_distortion"
	GateLowConfidenceFallback = "low_confidence_fallback"
)

// PlanScore carries the two-stage heuristic result for one plan
type PlanScore struct {
	PQS            float64               `json:"pqs"`
	EPS            float64               `json:"eps"`
	EPSProvisional bool                  `json:"eps_provisional"`
	VPS            float64               `json:"vps"`
	Contributions  []FeatureContribution `json:"feature_contributions"`
	FailedGates    []string              `json:"failed_gates"`
	Notes          []string              `json:"notes,omitempty"`
}

// Telemetry is early engagement data observed after publishing.
// All fields are raw measurements, not normalized.
type Telemetry struct {
	WatchRatio        float64 `json:"watch_ratio"`         // avg watch / video length
	CompletionRate    float64 `json:"completion_rate"`     // fraction finishing
	EngagementRate    float64 `json:"engagement_rate"`     // (likes+comments)/views
	SharesPerThousand float64 `json:"shares_per_thousand"` // shares per 1k views
}

// Recommendation is a reviewer-facing improvement hint with an
// expected impact range.
type Recommendation struct {
	Priority          int    `json:"priority"`
	Action            string `json:"action"`
	ExpectedLiftRange string `json:"expected_lift_range"`
}

// ScoreReportVersion is bumped when the report shape changes.
const ScoreReportVersion = "v1"

// ScoreReport is the stable scoring contract consumed downstream
type ScoreReport struct {
	Version              string                `json:"version"`
	PQS                  float64               `json:"pqs"`
	EPS                  float64               `json:"eps"`
	VPS                  float64               `json:"vps"`
	FeatureContributions []FeatureContribution `json:"feature_contributions"`
	FailedGates          []string              `json:"failed_gates"`
	Recommendations      []Recommendation      `json:"recommendations"`
}

// EditSuggestion is one actionable edit, lower priority = more urgent
type EditSuggestion struct {
	Priority      int      `json:"priority"`
	Action        string   `json:"action"`
	TimestampHint *float64 `json:"timestamp_hint,omitempty"`
}

// StageStatus tags the outcome of one pipeline stage
type StageStatus string

const (
	StageOK      StageStatus = "ok"
	StageSkipped StageStatus = "skipped"
	StageFailed  StageStatus = "failed"
)

// StageResult records one attempted pipeline stage
type StageResult struct {
	Stage      string      `json:"stage"`
	Status     StageStatus `json:"status"`
	Detail     string      `json:"detail"`
	DurationMS int64       `json:"duration_ms"`
}

// ExecutionReport is the run-level audit trail, one entry per
// attempted stage. Never empty for a started run.
type ExecutionReport struct {
	RunID  string        `json:"run_id"`
	DryRun bool          `json:"dry_run"`
	Stages []StageResult `json:"stages"`
}

// SyncStrategy tags how narration and video timing were reconciled
type SyncStrategy string

const (
	SyncSpeedOnly       SyncStrategy = "speed_only"
	SyncSpeedPlusFreeze SyncStrategy = "speed_plus_freeze"
	SyncFreezeOnly      SyncStrategy = "freeze_only"
)

// SyncAdjustment is the reconciler output for one plan/render attempt
type SyncAdjustment struct {
	SpeedFactor        float64      `json:"speed_factor"`
	FreezeFrameSeconds float64      `json:"freeze_frame_seconds"`
	Strategy           SyncStrategy `json:"strategy"`
	WithinPolicy       bool         `json:"within_policy"`
}

// FailedGates returns the quality gates this adjustment trips. Only
// strategies that needed freeze padding count as heavy distortion; a
// clamped slowdown stays gate-free and is surfaced via WithinPolicy.
func (a SyncAdjustment) FailedGates() []string {
	if a.Strategy == SyncSpeedOnly {
		return nil
	}
	return []string{GateHeavySpeedDistortion}
}
