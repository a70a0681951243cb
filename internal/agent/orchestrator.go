package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Pipeline stage names, in execution order.
const (
	StageConfig          = "config"
	StageGenerate        = "generate"
	StageScore           = "score"
	StageRank            = "rank"
	StageSemanticReview  = "semantic-review"
	StageNarrationTiming = "narration-timing"
	StageSync            = "sync"
	StageEncode          = "encode"
	StageReport          = "report"
)

// OrchestratorOptions wires optional collaborators. Any of them may be
// nil; the corresponding stage is then skipped or reported failed, the
// run itself always completes.
type OrchestratorOptions struct {
	// Narration is the primary narration-duration collaborator.
	Narration DurationSource
	// NarrationFallback is consulted when the primary is missing or
	// fails, keeping the sync stage alive in degraded mode.
	NarrationFallback DurationSource
	Reviewer          PlanReviewer
	Encoder           Encoder
	// Workers bounds the parallel scoring batch. Zero means one worker
	// per candidate.
	Workers int
}

// RunOptions configures a single planning run.
type RunOptions struct {
	DryRun    bool
	Telemetry *Telemetry
	// NarrationDurationSec, when positive, bypasses the duration
	// collaborator entirely (e.g. the audio was already synthesized).
	NarrationDurationSec float64
}

// RunResult is everything one planning run produced.
type RunResult struct {
	Plan            ReelPlan         `json:"plan"`
	Candidates      []Candidate      `json:"candidates"`
	Score           PlanScore        `json:"score"`
	ScoreReport     ScoreReport      `json:"score_report"`
	EditSuggestions []EditSuggestion `json:"edit_suggestions"`
	Sync            *SyncAdjustment  `json:"sync,omitempty"`
	OutputPath      string           `json:"output_path,omitempty"`
	Execution       ExecutionReport  `json:"execution"`
}

// Orchestrator owns the lifecycle of one planning run: generate →
// score → rank → narration timing → sync → (encode) → report. A stage
// failure is recorded and the next stage runs on the best partial
// result; the only hard error is an invalid request.
type Orchestrator struct {
	logger     zerolog.Logger
	cfg        ScoringConfig
	planner    *Planner
	scorer     *Scorer
	selector   *Selector
	reconciler *Reconciler
	opts       OrchestratorOptions
}

// NewOrchestrator builds the full pipeline around one scoring config.
func NewOrchestrator(logger zerolog.Logger, cfg ScoringConfig, opts OrchestratorOptions) *Orchestrator {
	cfg.Sanitize()
	return &Orchestrator{
		logger:     logger.With().Str("component", "orchestrator").Logger(),
		cfg:        cfg,
		planner:    NewPlanner(logger),
		scorer:     NewScorer(logger, cfg),
		selector:   NewSelector(logger, cfg),
		reconciler: NewReconciler(logger),
		opts:       opts,
	}
}

// Run executes the pipeline for one request.
func (o *Orchestrator) Run(ctx context.Context, req ReelPlanRequest, opts RunOptions) (*RunResult, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	res := &RunResult{
		Execution: ExecutionReport{
			RunID:  uuid.NewString(),
			DryRun: opts.DryRun,
		},
	}
	log := o.logger.With().Str("run_id", res.Execution.RunID).Logger()
	log.Info().
		Str("source", req.SourceVideo).
		Str("platform", string(req.Platform)).
		Float64("target_sec", req.DurationTargetSec).
		Bool("dry_run", opts.DryRun).
		Msg("starting planning run")

	// Stage: config. A weight fallback is not an error, but it must be
	// visible in the report.
	o.runStage(ctx, res, StageConfig, func(context.Context) (string, error) {
		if len(o.cfg.FallbackNotes) == 0 {
			return fmt.Sprintf("scoring weights ok (pqs %.2f / eps %.2f)", o.cfg.PQSWeight, o.cfg.EPSWeight), nil
		}
		return "defaults substituted: " + strings.Join(o.cfg.FallbackNotes, "; "), nil
	})

	// Stage: generate.
	var genGates []string
	o.runStage(ctx, res, StageGenerate, func(context.Context) (string, error) {
		res.Candidates, genGates = o.planner.Generate(req)
		if len(res.Candidates) == 0 {
			return "", fmt.Errorf("no usable candidates for %.1fs source", req.SourceDurationSec)
		}
		detail := fmt.Sprintf("generated %d candidate reel plans", len(res.Candidates))
		if len(genGates) > 0 {
			detail += fmt.Sprintf(" (gates: %s)", strings.Join(genGates, ","))
		}
		return detail, nil
	})

	// Stage: score. Candidates are independent, so the batch runs in
	// parallel; results land at their candidate index so completion
	// order cannot affect ranking.
	var scores []PlanScore
	if len(res.Candidates) == 0 {
		o.skipStage(res, StageScore, "no candidates to score")
	} else {
		o.runStage(ctx, res, StageScore, func(sctx context.Context) (string, error) {
			batch := make([]PlanScore, len(res.Candidates))
			g, gctx := errgroup.WithContext(sctx)
			if o.opts.Workers > 0 {
				g.SetLimit(o.opts.Workers)
			}
			for i, cand := range res.Candidates {
				g.Go(func() error {
					if err := gctx.Err(); err != nil {
						return err
					}
					batch[i] = o.scorer.Score(cand, opts.Telemetry)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				// Cancelled mid-batch: completed scores are discarded
				// rather than leaking a partial batch into ranking.
				return "", fmt.Errorf("scoring batch aborted: %w", err)
			}
			scores = batch
			return fmt.Sprintf("scored %d candidates", len(scores)), nil
		})
	}

	// Stage: rank. Always yields a plan, falling back to the safe
	// default when nothing cleared the confidence gate.
	var sel Selection
	o.runStage(ctx, res, StageRank, func(context.Context) (string, error) {
		sel = o.selector.Select(req, res.Candidates, scores)
		sel.Score.FailedGates = append(append([]string{}, genGates...), sel.Score.FailedGates...)
		res.Plan = sel.Plan
		res.Score = sel.Score
		if sel.Fallback {
			return "fallback selection: " + sel.Reason, nil
		}
		return fmt.Sprintf("selected %s with vps %.3f", res.Plan.ID, res.Score.VPS), nil
	})

	// Stage: semantic review (optional model-backed second opinion).
	if o.opts.Reviewer == nil {
		o.skipStage(res, StageSemanticReview, "no reviewer configured")
	} else {
		o.runStage(ctx, res, StageSemanticReview, func(sctx context.Context) (string, error) {
			review, err := o.opts.Reviewer.Review(sctx, res.Plan)
			if err != nil {
				return "", fmt.Errorf("%w: %v", ErrCollaboratorUnavailable, err)
			}
			res.Score.Notes = append(res.Score.Notes, review.Notes...)
			return fmt.Sprintf("hook %.2f, cta %.2f (%d notes)", review.HookScore, review.CTAScore, len(review.Notes)), nil
		})
	}

	// Stage: narration timing.
	narrationSec := opts.NarrationDurationSec
	script := res.Plan.NarrationScript()
	switch {
	case narrationSec > 0:
		o.runStage(ctx, res, StageNarrationTiming, func(context.Context) (string, error) {
			return fmt.Sprintf("caller-supplied narration duration %.2fs", narrationSec), nil
		})
	case script == "":
		o.skipStage(res, StageNarrationTiming, "plan has no narration lines")
	default:
		o.runStage(ctx, res, StageNarrationTiming, func(sctx context.Context) (string, error) {
			sec, detail, err := o.narrationDuration(sctx, script, req.Tone)
			if err != nil {
				return "", err
			}
			narrationSec = sec
			return detail, nil
		})
	}

	// Stage: sync reconciliation.
	if narrationSec <= 0 {
		o.skipStage(res, StageSync, "no narration duration available")
	} else {
		o.runStage(ctx, res, StageSync, func(context.Context) (string, error) {
			adj, err := o.reconciler.Reconcile(res.Plan.TotalBeatSeconds(), narrationSec)
			if err != nil {
				return "", err
			}
			res.Sync = &adj
			res.Score.FailedGates = append(res.Score.FailedGates, adj.FailedGates()...)
			res.Plan = ApplyFreeze(res.Plan, adj)
			return fmt.Sprintf("strategy %s, speed %.3f, freeze %.2fs", adj.Strategy, adj.SpeedFactor, adj.FreezeFrameSeconds), nil
		})
	}

	// Stage: encode.
	switch {
	case opts.DryRun:
		o.skipStage(res, StageEncode, "dry run, no encoding call")
	case res.Sync == nil:
		o.skipStage(res, StageEncode, "no sync adjustment to render with")
	case o.opts.Encoder == nil:
		o.runStage(ctx, res, StageEncode, func(context.Context) (string, error) {
			return "", fmt.Errorf("%w: no encoder configured", ErrCollaboratorUnavailable)
		})
	default:
		o.runStage(ctx, res, StageEncode, func(sctx context.Context) (string, error) {
			out, err := o.opts.Encoder.Encode(sctx, res.Plan, *res.Sync)
			if err != nil {
				return "", fmt.Errorf("%w: %v", ErrCollaboratorUnavailable, err)
			}
			res.OutputPath = out
			return "rendered " + out, nil
		})
	}

	// Stage: report assembly. Built last so sync gates are included.
	o.runStage(ctx, res, StageReport, func(context.Context) (string, error) {
		res.ScoreReport = BuildScoreReport(res.Plan, res.Score)
		res.EditSuggestions = BuildEditSuggestions(res.Plan, res.Score, res.Sync)
		return fmt.Sprintf("%d suggestions, %d failed gates", len(res.EditSuggestions), len(res.Score.FailedGates)), nil
	})

	log.Info().
		Str("plan", res.Plan.ID).
		Float64("vps", res.Score.VPS).
		Int("stages", len(res.Execution.Stages)).
		Msg("planning run complete")

	return res, nil
}

// narrationDuration consults the primary duration source, degrading to
// the fallback estimator when the primary is missing or fails.
func (o *Orchestrator) narrationDuration(ctx context.Context, script, tone string) (float64, string, error) {
	if o.opts.Narration != nil {
		sec, err := o.opts.Narration.EstimateDuration(ctx, script, tone)
		if err == nil && sec > 0 {
			return sec, fmt.Sprintf("narration duration %.2fs", sec), nil
		}
		if o.opts.NarrationFallback != nil {
			fsec, ferr := o.opts.NarrationFallback.EstimateDuration(ctx, script, tone)
			if ferr == nil && fsec > 0 {
				return fsec, fmt.Sprintf("degraded mode: primary source failed (%v), estimated %.2fs", err, fsec), nil
			}
		}
		if err == nil {
			err = fmt.Errorf("non-positive duration %.2fs", sec)
		}
		return 0, "", fmt.Errorf("%w: %v", ErrCollaboratorUnavailable, err)
	}
	if o.opts.NarrationFallback != nil {
		sec, err := o.opts.NarrationFallback.EstimateDuration(ctx, script, tone)
		if err == nil && sec > 0 {
			return sec, fmt.Sprintf("estimated narration duration %.2fs", sec), nil
		}
		if err == nil {
			err = fmt.Errorf("non-positive duration %.2fs", sec)
		}
		return 0, "", fmt.Errorf("%w: %v", ErrCollaboratorUnavailable, err)
	}
	return 0, "", fmt.Errorf("%w: no narration duration source configured", ErrCollaboratorUnavailable)
}

// runStage times fn and records exactly one StageResult. Cancellation
// between stages records a skip so the report stays complete.
func (o *Orchestrator) runStage(ctx context.Context, res *RunResult, name string, fn func(context.Context) (string, error)) {
	if err := ctx.Err(); err != nil {
		o.skipStage(res, name, "run cancelled before stage")
		return
	}
	start := time.Now()
	detail, err := fn(ctx)
	sr := StageResult{
		Stage:      name,
		Status:     StageOK,
		Detail:     detail,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		sr.Status = StageFailed
		sr.Detail = err.Error()
		o.logger.Warn().Str("stage", name).Err(err).Msg("stage failed, continuing with partial result")
	}
	res.Execution.Stages = append(res.Execution.Stages, sr)
}

func (o *Orchestrator) skipStage(res *RunResult, name, reason string) {
	res.Execution.Stages = append(res.Execution.Stages, StageResult{
		Stage:  name,
		Status: StageSkipped,
		Detail: reason,
	})
}
