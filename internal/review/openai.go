// Package review provides the optional model-backed second opinion on
// a chosen reel plan. The deterministic scoring pipeline never depends
// on it; when the model is unreachable the stage is reported and the
// run continues.
package review

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/mosif16/VidKit/internal/agent"
)

const defaultModel = "gpt-4.1-mini"

// ErrNoAPIKey means no credential was found in config or environment.
var ErrNoAPIKey = errors.New("no openai api key configured")

// Options configures the reviewer
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Reviewer implements agent.PlanReviewer on the chat completions API.
type Reviewer struct {
	logger zerolog.Logger
	client openai.Client
	model  string
}

// New creates a reviewer, resolving the API key from options or the
// OPENAI_API_KEY environment variable.
func New(logger zerolog.Logger, opts Options) (*Reviewer, error) {
	key := opts.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return nil, ErrNoAPIKey
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(key)}
	if strings.TrimSpace(opts.BaseURL) != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	model := opts.Model
	if model == "" {
		model = defaultModel
	}

	return &Reviewer{
		logger: logger.With().Str("component", "reviewer").Logger(),
		client: openai.NewClient(clientOpts...),
		model:  model,
	}, nil
}

const systemPrompt = "You are a short-form video edit director. " +
	"Rate the hook and CTA of the given reel plan for scroll-stopping strength. Output JSON only."

// Review implements agent.PlanReviewer.
func (r *Reviewer) Review(ctx context.Context, plan agent.ReelPlan) (agent.PlanReview, error) {
	userPrompt := fmt.Sprintf(
		"Plan for %s, objective %q, pace %q.\nHook: %q\nCTA: %q\n\n"+
			"Return {\"hook_score\":0.0,\"cta_score\":0.0,\"notes\":[\"...\"]} "+
			"with scores in [0,1] and at most three short notes.",
		plan.Platform, plan.Objective, plan.Pace, plan.Hook.Text, plan.CTA)

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model:       r.model,
		Temperature: openai.Float(0.2),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		},
	}

	resp, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return agent.PlanReview{}, err
	}
	if len(resp.Choices) == 0 {
		return agent.PlanReview{}, errors.New("model returned no choices")
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if raw == "" || !gjson.Valid(raw) {
		return agent.PlanReview{}, fmt.Errorf("model returned unparseable review: %q", raw)
	}

	doc := gjson.Parse(raw)
	out := agent.PlanReview{
		HookScore: doc.Get("hook_score").Float(),
		CTAScore:  doc.Get("cta_score").Float(),
	}
	for _, n := range doc.Get("notes").Array() {
		if s := strings.TrimSpace(n.String()); s != "" {
			out.Notes = append(out.Notes, s)
		}
	}

	r.logger.Debug().
		Str("plan", plan.ID).
		Float64("hook_score", out.HookScore).
		Float64("cta_score", out.CTAScore).
		Msg("plan reviewed")

	return out, nil
}
