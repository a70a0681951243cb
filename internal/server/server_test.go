package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mosif16/VidKit/internal/agent"
)

func testServer() *Server {
	orch := agent.NewOrchestrator(zerolog.Nop(), agent.DefaultScoringConfig(), agent.OrchestratorOptions{})
	return New(zerolog.Nop(), orch)
}

func postReel(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/agent/reel", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestPlanReelHappyPath(t *testing.T) {
	rec := postReel(t, testServer(), `{
		"source_video": "clip.mp4",
		"source_duration_sec": 120,
		"platform": "reels",
		"duration_target_sec": 20,
		"candidates": 3
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Status     string                `json:"status"`
		Plan       agent.ReelPlan        `json:"plan"`
		Candidates []agent.Candidate     `json:"candidates"`
		Score      agent.PlanScore       `json:"score"`
		Report     agent.ScoreReport     `json:"score_report"`
		Execution  agent.ExecutionReport `json:"execution"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.Plan.ID == "" {
		t.Error("no plan in response")
	}
	if len(resp.Candidates) != 3 {
		t.Errorf("candidates = %d, want 3", len(resp.Candidates))
	}
	if resp.Report.Version != agent.ScoreReportVersion {
		t.Errorf("report version = %q", resp.Report.Version)
	}
	if len(resp.Execution.Stages) == 0 {
		t.Error("execution report empty")
	}
	if !resp.Execution.DryRun {
		t.Error("encoding must be opt-in for the endpoint")
	}
}

func TestPlanReelTelemetryFlowsThrough(t *testing.T) {
	rec := postReel(t, testServer(), `{
		"source_video": "clip.mp4",
		"source_duration_sec": 120,
		"platform": "tiktok",
		"duration_target_sec": 20,
		"telemetry": {
			"watch_ratio": 0.7,
			"completion_rate": 0.5,
			"engagement_rate": 0.08,
			"shares_per_thousand": 4
		}
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Score agent.PlanScore `json:"score"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Score.EPSProvisional {
		t.Error("eps still provisional with telemetry in payload")
	}
}

func TestPlanReelRejectsBadJSON(t *testing.T) {
	rec := postReel(t, testServer(), `{"source_video": `)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Status != "error" || resp.Error == "" {
		t.Errorf("error body = %+v", resp)
	}
}

func TestPlanReelRejectsInvalidRequest(t *testing.T) {
	cases := []string{
		`{}`,
		`{"source_video": "clip.mp4", "duration_target_sec": 5}`,
		`{"source_video": "clip.mp4", "platform": "myspace"}`,
	}
	for _, body := range cases {
		rec := postReel(t, testServer(), body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestPlanReelMethodNotAllowed(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/agent/reel", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
