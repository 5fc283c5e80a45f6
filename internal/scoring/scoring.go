// Package scoring turns completed applicant facts into a dealer-facing risk
// analysis, and generates coaching tips from funnel stats. The model output
// is treated as untrusted: everything is coerced into shape server-side.
package scoring

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/vetta-app/vetta/internal/errors"
)

// Risk buckets.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

const notProvided = "Not provided"

// AnalyzeInput carries everything the model sees about one applicant.
type AnalyzeInput struct {
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	Facts         map[string]any  `json:"facts"`
	Transcript    json.RawMessage `json:"transcript,omitempty"`
}

// Analysis is the cleaned-up model verdict.
type Analysis struct {
	RiskScore        string    `json:"risk_score"`
	RiskScoreNumeric float64   `json:"risk_score_numeric"` // 0-100, higher is safer
	ResultSummary    string    `json:"result_summary"`
	Pros             [2]string `json:"pros"`
	Cons             [2]string `json:"cons"`
	Reasoning        string    `json:"reasoning"`
}

// ReasoningText renders the analysis as the readable block stored in the
// assessment's reasoning column.
func (a Analysis) ReasoningText() string {
	return strings.Join([]string{
		"Summary: " + a.ResultSummary,
		"",
		"Pros:",
		"- " + a.Pros[0],
		"- " + a.Pros[1],
		"",
		"Cons:",
		"- " + a.Cons[0],
		"- " + a.Cons[1],
		"",
		"Details:",
		a.Reasoning,
	}, "\n")
}

// FunnelStats feeds the coaching prompt.
type FunnelStats struct {
	Scans     int `json:"scans"`
	Started   int `json:"started"`
	Completed int `json:"completed"`
	RiskLow   int `json:"risk_low"`
	RiskMed   int `json:"risk_med"`
	RiskHigh  int `json:"risk_high"`
}

// Scorer is the risk-analysis collaborator. The web handlers depend on this
// interface so tests can stub the model out.
type Scorer interface {
	Analyze(ctx context.Context, input AnalyzeInput) (Analysis, error)
	Coach(ctx context.Context, stats FunnelStats) (string, error)
}

// ErrInvalidModelOutput is returned when the model response contains no
// parseable JSON object.
var ErrInvalidModelOutput = errors.NewSentinel("model returned invalid JSON")

// Client is the OpenAI-backed Scorer.
type Client struct {
	client *openai.Client
	model  string
}

func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

const analyzeSystemPrompt = `You are Vetta's risk analyst for Buy Here Pay Here dealerships.
Return ONLY valid JSON (no markdown).

Goal: give a clear result summary + exactly 2 pros + exactly 2 cons based on the applicant facts and transcript.

JSON schema:
{
  "risk_score": "low" | "medium" | "high",
  "risk_score_numeric": number,        // 0-100 (higher = safer)
  "result_summary": string,            // 2-4 sentences, plain English
  "pros": [string, string],            // exactly 2, concise
  "cons": [string, string],            // exactly 2, concise
  "reasoning": string                  // 4-10 bullet lines or short paragraphs
}

CRITICAL RULES:
1) Pros must be NON-FINANCIAL ONLY.
   - Do NOT mention: income, paycheck, salary, wages, bills, affordability, PTI/BTI, debt, rent amount, utilities amounts,
     down payment, cash down, "can afford", "budget", "payment amount".
   - Pros should be about stability + responsibility + intent + communication + verification + trust signals.

2) Cons CAN be financial or non-financial.

3) If you do not have enough non-financial positives, write "Not provided" but still return exactly 2 pros.

STYLE:
- Pros/Cons must be grounded in facts/transcript.
- Pros/Cons must be <= 140 characters each.
- Keep language dealership-friendly.`

// Analyze sends the applicant payload to the model and coerces the response
// into a well-formed Analysis.
func (c *Client) Analyze(ctx context.Context, input AnalyzeInput) (Analysis, error) {
	payload, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return Analysis{}, errors.Wrap(err, "marshal analyze payload")
	}

	completion, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{ //nolint:exhaustruct
		Model:       c.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analyzeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
	})
	if err != nil {
		return Analysis{}, errors.Wrap(err, "create analyze completion")
	}

	raw := ""
	if len(completion.Choices) > 0 {
		raw = completion.Choices[0].Message.Content
	}
	parsed, ok := parseModelJSON(raw)
	if !ok {
		return Analysis{}, errors.Wrap(ErrInvalidModelOutput, "parse model output", slog.String("raw", raw))
	}
	return coerceAnalysis(parsed), nil
}

// Coach turns the funnel stats into a few short coaching tips. An empty
// string means no coaching is available; callers degrade gracefully.
func (c *Client) Coach(ctx context.Context, stats FunnelStats) (string, error) {
	payload, err := json.Marshal(stats)
	if err != nil {
		return "", errors.Wrap(err, "marshal funnel stats")
	}
	prompt := "Dealer funnel stats: " + string(payload) + "\n\n" +
		"Give 2-4 short, practical coaching tips to improve completion and lower high-risk outcomes for a BHPH dealer.\n" +
		"Be specific and tactical. Keep it concise."

	completion, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{ //nolint:exhaustruct
		Model:       c.model,
		Temperature: 0.4,
		MaxTokens:   220,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a concise, practical dealership operations coach."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "create coaching completion")
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
