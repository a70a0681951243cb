package ffmpeg

import (
	"fmt"
	"strings"

	"github.com/mosif16/VidKit/internal/agent"
)

// atempo only accepts factors in [0.5, 2.0]; wider adjustments are
// expressed as a chain of filters whose product is the target speed.
func BuildAtempoChain(speed float64) []string {
	var filters []string
	remaining := speed
	for remaining > 2.0 {
		filters = append(filters, "atempo=2.0")
		remaining /= 2.0
	}
	for remaining < 0.5 {
		filters = append(filters, "atempo=0.5")
		remaining /= 0.5
	}
	if remaining != 1.0 {
		filters = append(filters, fmt.Sprintf("atempo=%.4f", remaining))
	}
	return filters
}

// BuildVideoSyncFilter produces the video-side filter for a sync
// adjustment: a trailing clone-freeze of the last frame when the
// picture must be extended for the narration.
func BuildVideoSyncFilter(adj agent.SyncAdjustment) string {
	if adj.FreezeFrameSeconds <= 0.03 {
		return ""
	}
	return fmt.Sprintf("tpad=stop_mode=clone:stop_duration=%.3f", adj.FreezeFrameSeconds)
}

// BuildVoiceSyncFilter produces the narration audio chain: gentle
// atempo within the policy window, then pad-and-trim so the track ends
// exactly with the (possibly extended) picture.
func BuildVoiceSyncFilter(adj agent.SyncAdjustment, targetSec, voiceVolume float64) string {
	chain := []string{fmt.Sprintf("volume=%.2f", voiceVolume)}
	// a factor within 1.5% of unity is inaudible, skip the resample
	if adj.SpeedFactor > 0 && absDiff(adj.SpeedFactor, 1.0) > 0.015 {
		chain = append(chain, BuildAtempoChain(adj.SpeedFactor)...)
	}
	chain = append(chain, "apad", fmt.Sprintf("atrim=0:%.3f", targetSec))
	return strings.Join(chain, ",")
}

// BuildCutFilter produces the filter_complex graph that assembles the
// plan's beats from the source, applies the freeze extension, and
// prepares the narration track (input 1). It returns the graph plus
// the output labels to map.
func BuildCutFilter(plan agent.ReelPlan, adj agent.SyncAdjustment, voiceVolume float64) (graph, videoLabel, audioLabel string) {
	var sb strings.Builder
	var segRefs []string

	for i, b := range plan.Beats {
		sb.WriteString(fmt.Sprintf("[0:v]trim=start=%.3f:end=%.3f,setpts=PTS-STARTPTS[v%d];", b.Start, b.End, i))
		segRefs = append(segRefs, fmt.Sprintf("[v%d]", i))
	}
	sb.WriteString(fmt.Sprintf("%sconcat=n=%d:v=1:a=0[vcut];", strings.Join(segRefs, ""), len(plan.Beats)))

	videoLabel = "[vcut]"
	if vf := BuildVideoSyncFilter(adj); vf != "" {
		sb.WriteString(fmt.Sprintf("[vcut]%s[vout];", vf))
		videoLabel = "[vout]"
	}

	targetSec := plan.TotalBeatSeconds() + adj.FreezeFrameSeconds
	sb.WriteString(fmt.Sprintf("[1:a]%s[aout]", BuildVoiceSyncFilter(adj, targetSec, voiceVolume)))

	return sb.String(), videoLabel, "[aout]"
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
