package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mosif16/VidKit/internal/agent"
	"github.com/mosif16/VidKit/internal/config"
	"github.com/mosif16/VidKit/internal/ffmpeg"
	"github.com/mosif16/VidKit/internal/logging"
	"github.com/mosif16/VidKit/internal/review"
	"github.com/mosif16/VidKit/internal/server"
	"github.com/mosif16/VidKit/internal/voice"
	"github.com/mosif16/VidKit/pkg/util"
)

var (
	cfgFile string
	verbose bool
	logger  zerolog.Logger
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vidkit",
	Short: "VidKit - agent reel planning and sync toolkit",
	Long:  "Plans, scores and ranks candidate reel edits, then reconciles narration timing against the picture without audible distortion.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(weightsCmd)
	rootCmd.AddCommand(serveCmd)
}

var (
	planPlatform  string
	planObjective string
	planTone      string
	planTemplate  string
	planTarget    float64
	planSourceDur string
	planNarration string
	planRender    bool
	planOutput    string
)

var planCmd = &cobra.Command{
	Use:   "plan [source video]",
	Short: "Generate, score and rank candidate reel plans",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		orch, err := buildOrchestrator(cfg, args[0])
		if err != nil {
			return err
		}

		req := agent.ReelPlanRequest{
			SourceVideo:       args[0],
			Template:          planTemplate,
			Platform:          agent.Platform(planPlatform),
			Objective:         planObjective,
			DurationTargetSec: planTarget,
			Tone:              planTone,
			Candidates:        cfg.Agent.Candidates,
		}
		if planSourceDur != "" {
			sec, err := util.ParseTimestamp(planSourceDur)
			if err != nil {
				return err
			}
			req.SourceDurationSec = sec
		}

		res, err := orch.Run(cmd.Context(), req, agent.RunOptions{DryRun: !planRender})
		if err != nil {
			return err
		}

		printRunResult(res)
		return nil
	},
}

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the agent planning API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		orch, err := buildOrchestrator(cfg, "")
		if err != nil {
			return err
		}
		return server.New(logger, orch).ListenAndServe(serveAddr)
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync [video duration] [narration duration]",
	Short: "Compute the narration/video sync adjustment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoSec, err := util.ParseTimestamp(args[0])
		if err != nil {
			return err
		}
		narrationSec, err := util.ParseTimestamp(args[1])
		if err != nil {
			return err
		}

		adj, err := agent.NewReconciler(logger).Reconcile(videoSec, narrationSec)
		if err != nil {
			return err
		}

		return json.NewEncoder(os.Stdout).Encode(adj)
	},
}

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Show the effective scoring weight configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		scoring := config.ScoringFromConfig(cfg)

		for _, note := range scoring.FallbackNotes {
			logger.Warn().Str("note", note).Msg("weights fallback")
		}

		out := map[string]any{
			"pqs_weight":           scoring.PQSWeight,
			"eps_weight":           scoring.EPSWeight,
			"pqs":                  scoring.PQSSignalWeights,
			"eps":                  scoring.EPSSignalWeights,
			"pqs_gate":             scoring.PQSGate,
			"confidence_threshold": scoring.ConfidenceThreshold,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	planCmd.Flags().StringVar(&planPlatform, "platform", "reels", "target platform (reels|tiktok|shorts)")
	planCmd.Flags().StringVar(&planObjective, "objective", "", "editing objective")
	planCmd.Flags().StringVar(&planTone, "tone", "", "narration tone")
	planCmd.Flags().StringVar(&planTemplate, "template", "", "editing template slug")
	planCmd.Flags().Float64Var(&planTarget, "target", 20, "target duration in seconds")
	planCmd.Flags().StringVar(&planSourceDur, "source-duration", "", "source duration (e.g. 1:30 or 90.5)")
	planCmd.Flags().StringVar(&planNarration, "narration", "", "synthesized narration audio to probe for timing")
	planCmd.Flags().BoolVar(&planRender, "render", false, "render the chosen plan instead of a dry run")
	planCmd.Flags().StringVar(&planOutput, "output", "reel.mp4", "render output path")

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
}

// buildOrchestrator assembles the pipeline with whatever collaborators
// the environment provides. Missing collaborators degrade stages, they
// never block planning.
func buildOrchestrator(cfg *config.Config, sourcePath string) (*agent.Orchestrator, error) {
	scoring := config.ScoringFromConfig(cfg)

	opts := agent.OrchestratorOptions{
		NarrationFallback: voice.NewWordCountEstimator(logger),
		Workers:           cfg.Concurrency,
	}

	exec, err := ffmpeg.New(logger, cfg.FFmpeg.Threads)
	if err != nil {
		logger.Warn().Err(err).Msg("ffmpeg unavailable, narration probing and rendering disabled")
	} else {
		if planNarration != "" {
			opts.Narration = voice.NewProbeSource(logger, exec, planNarration)
		}
		if sourcePath != "" && planNarration != "" {
			opts.Encoder = ffmpeg.NewEncoder(logger, exec, ffmpeg.RenderOptions{
				SourcePath:    sourcePath,
				NarrationPath: planNarration,
				OutputPath:    planOutput,
				VoiceVolume:   cfg.Voice.Volume,
				Preset:        cfg.FFmpeg.Preset,
				CRF:           cfg.FFmpeg.CRF,
			})
		}
	}

	if cfg.Review.Enabled {
		reviewer, err := review.New(logger, review.Options{
			Model:   cfg.Review.Model,
			BaseURL: cfg.Review.BaseURL,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("semantic review unavailable")
		} else {
			opts.Reviewer = reviewer
		}
	}

	return agent.NewOrchestrator(logger, scoring, opts), nil
}

func printRunResult(res *agent.RunResult) {
	fmt.Printf("plan: %s  vps=%.3f pqs=%.3f eps=%.3f\n", res.Plan.ID, res.Score.VPS, res.Score.PQS, res.Score.EPS)
	if res.Sync != nil {
		fmt.Printf("sync: strategy=%s speed=%.3f freeze=%.2fs within_policy=%v\n",
			res.Sync.Strategy, res.Sync.SpeedFactor, res.Sync.FreezeFrameSeconds, res.Sync.WithinPolicy)
	}
	for _, sug := range res.EditSuggestions {
		if sug.TimestampHint != nil {
			fmt.Printf("  [%d] %s (at %s)\n", sug.Priority, sug.Action, util.FormatSeconds(*sug.TimestampHint))
		} else {
			fmt.Printf("  [%d] %s\n", sug.Priority, sug.Action)
		}
	}
	for _, st := range res.Execution.Stages {
		fmt.Printf("stage %-17s %-7s %s\n", st.Stage, st.Status, st.Detail)
	}
	if res.OutputPath != "" {
		fmt.Printf("rendered: %s\n", res.OutputPath)
	}
}
