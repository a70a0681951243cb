package ffmpeg

import (
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mosif16/VidKit/internal/agent"
)

func TestBuildAtempoChain(t *testing.T) {
	cases := []struct {
		speed float64
		want  []string
	}{
		{1.0, nil},
		{1.08, []string{"atempo=1.0800"}},
		{0.92, []string{"atempo=0.9200"}},
		{2.0, []string{"atempo=2.0000"}},
		{2.5, []string{"atempo=2.0", "atempo=1.2500"}},
		{5.0, []string{"atempo=2.0", "atempo=2.0", "atempo=1.2500"}},
		{0.4, []string{"atempo=0.5", "atempo=0.8000"}},
	}
	for _, tc := range cases {
		got := BuildAtempoChain(tc.speed)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("chain(%.2f) = %v, want %v", tc.speed, got, tc.want)
		}
	}
}

func TestBuildVideoSyncFilter(t *testing.T) {
	if got := BuildVideoSyncFilter(agent.SyncAdjustment{FreezeFrameSeconds: 0}); got != "" {
		t.Errorf("no freeze should mean no filter, got %q", got)
	}
	// sub-frame extensions are noise, not a freeze
	if got := BuildVideoSyncFilter(agent.SyncAdjustment{FreezeFrameSeconds: 0.02}); got != "" {
		t.Errorf("tiny freeze should be dropped, got %q", got)
	}
	got := BuildVideoSyncFilter(agent.SyncAdjustment{FreezeFrameSeconds: 3.148})
	if got != "tpad=stop_mode=clone:stop_duration=3.148" {
		t.Errorf("freeze filter = %q", got)
	}
}

func TestBuildVoiceSyncFilterSkipsInaudibleResample(t *testing.T) {
	adj := agent.SyncAdjustment{SpeedFactor: 1.01, Strategy: agent.SyncSpeedOnly, WithinPolicy: true}
	got := BuildVoiceSyncFilter(adj, 20, 1.0)
	if strings.Contains(got, "atempo") {
		t.Errorf("1%% speed change should not resample: %q", got)
	}
	if !strings.HasPrefix(got, "volume=1.00") {
		t.Errorf("volume must lead the chain: %q", got)
	}
	if !strings.HasSuffix(got, "apad,atrim=0:20.000") {
		t.Errorf("chain must end padded and trimmed to target: %q", got)
	}
}

func TestBuildVoiceSyncFilterAppliesSpeed(t *testing.T) {
	adj := agent.SyncAdjustment{SpeedFactor: 1.08, Strategy: agent.SyncSpeedPlusFreeze}
	got := BuildVoiceSyncFilter(adj, 23.148, 0.8)
	want := "volume=0.80,atempo=1.0800,apad,atrim=0:23.148"
	if got != want {
		t.Errorf("chain = %q, want %q", got, want)
	}
}

func testPlan() agent.ReelPlan {
	return agent.ReelPlan{
		ID: "test-plan",
		Beats: []agent.Beat{
			{Type: agent.BeatHook, Start: 0, End: 4, Caption: "hook", Narration: "watch this"},
			{Type: agent.BeatProblem, Start: 10, End: 16, Caption: "problem", Narration: "most people miss it"},
			{Type: agent.BeatCTA, Start: 40, End: 50, Caption: "cta", Narration: "follow for part two"},
		},
	}
}

func TestBuildCutFilterGraph(t *testing.T) {
	adj := agent.SyncAdjustment{SpeedFactor: 1.08, FreezeFrameSeconds: 1.5, Strategy: agent.SyncSpeedPlusFreeze}
	graph, videoLabel, audioLabel := BuildCutFilter(testPlan(), adj, 1.0)

	for _, want := range []string{
		"[0:v]trim=start=0.000:end=4.000,setpts=PTS-STARTPTS[v0];",
		"[0:v]trim=start=10.000:end=16.000,setpts=PTS-STARTPTS[v1];",
		"[0:v]trim=start=40.000:end=50.000,setpts=PTS-STARTPTS[v2];",
		"[v0][v1][v2]concat=n=3:v=1:a=0[vcut];",
		"[vcut]tpad=stop_mode=clone:stop_duration=1.500[vout];",
		"[1:a]volume=1.00,atempo=1.0800,apad,atrim=0:21.500[aout]",
	} {
		if !strings.Contains(graph, want) {
			t.Errorf("graph missing %q:\n%s", want, graph)
		}
	}
	if videoLabel != "[vout]" {
		t.Errorf("video label = %q, want [vout]", videoLabel)
	}
	if audioLabel != "[aout]" {
		t.Errorf("audio label = %q, want [aout]", audioLabel)
	}
}

func TestBuildCutFilterWithoutFreezeKeepsCutLabel(t *testing.T) {
	adj := agent.SyncAdjustment{SpeedFactor: 1.025, Strategy: agent.SyncSpeedOnly, WithinPolicy: true}
	graph, videoLabel, _ := BuildCutFilter(testPlan(), adj, 1.0)

	if videoLabel != "[vcut]" {
		t.Errorf("video label = %q, want [vcut] with no freeze", videoLabel)
	}
	if strings.Contains(graph, "tpad") {
		t.Errorf("no freeze requested yet graph pads: %s", graph)
	}
}

func TestRenderArgs(t *testing.T) {
	enc := NewEncoder(zerolog.Nop(), nil, RenderOptions{
		SourcePath:    "in.mp4",
		NarrationPath: "voice.wav",
		OutputPath:    "out.mp4",
	})

	adj := agent.SyncAdjustment{SpeedFactor: 1.08, FreezeFrameSeconds: 1.5, Strategy: agent.SyncSpeedPlusFreeze}
	args, err := enc.RenderArgs(testPlan(), adj)
	if err != nil {
		t.Fatalf("render args: %v", err)
	}

	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-i in.mp4",
		"-i voice.wav",
		"-map [vout]",
		"-map [aout]",
		"-t 21.500",
		"-c:v libx264",
		"-preset medium",
		"-crf 23",
		"-c:a aac",
		"-movflags +faststart",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
	if args[len(args)-1] != "out.mp4" {
		t.Errorf("output path must be last arg, got %q", args[len(args)-1])
	}
}

func TestRenderArgsValidation(t *testing.T) {
	enc := NewEncoder(zerolog.Nop(), nil, RenderOptions{SourcePath: "in.mp4", OutputPath: "out.mp4"})
	if _, err := enc.RenderArgs(testPlan(), agent.SyncAdjustment{}); err == nil {
		t.Error("missing narration path must fail")
	}

	enc = NewEncoder(zerolog.Nop(), nil, RenderOptions{SourcePath: "in.mp4", NarrationPath: "v.wav", OutputPath: "out.mp4"})
	if _, err := enc.RenderArgs(agent.ReelPlan{}, agent.SyncAdjustment{}); err == nil {
		t.Error("empty plan must fail")
	}
}
