package ffmpeg

import (
	"context"
	"fmt"

	"github.com/mosif16/VidKit/internal/agent"
	"github.com/rs/zerolog"
)

// RenderOptions configures the encoder collaborator
type RenderOptions struct {
	SourcePath    string
	NarrationPath string
	OutputPath    string
	VoiceVolume   float64
	Preset        string
	CRF           int
}

// Encoder renders a chosen plan with its sync adjustment applied. It
// implements agent.Encoder; the planning core never shells out itself.
type Encoder struct {
	logger zerolog.Logger
	exec   *Executor
	opts   RenderOptions
}

// NewEncoder creates the render collaborator.
func NewEncoder(logger zerolog.Logger, exec *Executor, opts RenderOptions) *Encoder {
	if opts.VoiceVolume <= 0 {
		opts.VoiceVolume = 1.0
	}
	if opts.Preset == "" {
		opts.Preset = "medium"
	}
	if opts.CRF <= 0 {
		opts.CRF = 23
	}
	return &Encoder{
		logger: logger.With().Str("component", "encoder").Logger(),
		exec:   exec,
		opts:   opts,
	}
}

// RenderArgs builds the full ffmpeg argument list for a plan and its
// adjustment. Split out from Encode so command construction is
// testable without the binary.
func (e *Encoder) RenderArgs(plan agent.ReelPlan, adj agent.SyncAdjustment) ([]string, error) {
	if len(plan.Beats) == 0 {
		return nil, fmt.Errorf("plan has no beats to render")
	}
	if e.opts.SourcePath == "" || e.opts.OutputPath == "" {
		return nil, fmt.Errorf("source and output paths are required")
	}
	if e.opts.NarrationPath == "" {
		return nil, fmt.Errorf("narration audio path is required")
	}

	graph, videoLabel, audioLabel := BuildCutFilter(plan, adj, e.opts.VoiceVolume)
	targetSec := plan.TotalBeatSeconds() + adj.FreezeFrameSeconds

	args := []string{
		"-i", e.opts.SourcePath,
		"-i", e.opts.NarrationPath,
		"-filter_complex", graph,
		"-map", videoLabel,
		"-map", audioLabel,
		"-t", fmt.Sprintf("%.3f", targetSec),
		"-c:v", "libx264",
		"-preset", e.opts.Preset,
		"-crf", fmt.Sprintf("%d", e.opts.CRF),
		"-c:a", "aac", "-b:a", "192k",
		"-movflags", "+faststart",
		e.opts.OutputPath,
	}
	return args, nil
}

// Encode implements agent.Encoder.
func (e *Encoder) Encode(ctx context.Context, plan agent.ReelPlan, adj agent.SyncAdjustment) (string, error) {
	args, err := e.RenderArgs(plan, adj)
	if err != nil {
		return "", err
	}

	e.logger.Info().
		Str("plan", plan.ID).
		Str("output", e.opts.OutputPath).
		Float64("speed_factor", adj.SpeedFactor).
		Float64("freeze_sec", adj.FreezeFrameSeconds).
		Msg("rendering plan")

	if err := e.exec.Run(ctx, args); err != nil {
		return "", err
	}
	return e.opts.OutputPath, nil
}
