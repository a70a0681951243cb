// Package voice provides narration-duration sources for the sync
// reconciler: a word-count estimator that is always available, and a
// probe-backed source for already-synthesized audio.
package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ErrUnavailable marks a duration source that cannot serve right now
// (no audio file, probe tooling missing, empty script).
var ErrUnavailable = errors.New("narration duration source unavailable")

// Speaking rates in words per minute, keyed by tone. Derived from
// typical TTS output pacing.
var toneRates = map[string]float64{
	"high-energy":    175,
	"fast":           180,
	"calm":           150,
	"conversational": 160,
}

const defaultWordsPerMinute = 165

// WordCountEstimator estimates narration duration from the script
// text. Deterministic and dependency-free, so it doubles as the
// degraded-mode fallback when real synthesis timing is unavailable.
type WordCountEstimator struct {
	logger zerolog.Logger
}

// NewWordCountEstimator creates the heuristic estimator.
func NewWordCountEstimator(logger zerolog.Logger) *WordCountEstimator {
	return &WordCountEstimator{
		logger: logger.With().Str("component", "voice-estimator").Logger(),
	}
}

// EstimateDuration returns the expected spoken length of text in
// seconds at the tone's speaking rate.
func (e *WordCountEstimator) EstimateDuration(_ context.Context, text, tone string) (float64, error) {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0, fmt.Errorf("%w: empty narration script", ErrUnavailable)
	}
	rate := toneRates[strings.ToLower(tone)]
	if rate == 0 {
		rate = defaultWordsPerMinute
	}
	sec := float64(words) / rate * 60

	e.logger.Debug().
		Int("words", words).
		Float64("wpm", rate).
		Float64("estimated_sec", sec).
		Msg("narration duration estimated")

	return sec, nil
}

// AudioProber reports the duration of an audio file in seconds.
type AudioProber interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// ProbeSource reads the true duration of synthesized narration audio.
type ProbeSource struct {
	logger zerolog.Logger
	prober AudioProber
	path   string
}

// NewProbeSource wraps a prober around a synthesized audio file.
func NewProbeSource(logger zerolog.Logger, prober AudioProber, audioPath string) *ProbeSource {
	return &ProbeSource{
		logger: logger.With().Str("component", "voice-probe").Logger(),
		prober: prober,
		path:   audioPath,
	}
}

// EstimateDuration probes the audio file; the script text is ignored
// because the audio already exists.
func (p *ProbeSource) EstimateDuration(ctx context.Context, _, _ string) (float64, error) {
	if p.prober == nil || p.path == "" {
		return 0, fmt.Errorf("%w: no synthesized audio to probe", ErrUnavailable)
	}
	sec, err := p.prober.ProbeDuration(ctx, p.path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	p.logger.Debug().Str("path", p.path).Float64("sec", sec).Msg("narration audio probed")
	return sec, nil
}
