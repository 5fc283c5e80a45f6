package scoring

import (
	"encoding/json"
	"strings"
)

// modelOutput mirrors the JSON the model is asked to return. All fields are
// loosely typed so a sloppy response still decodes.
type modelOutput struct {
	RiskScore        any      `json:"risk_score"`
	RiskScoreNumeric *float64 `json:"risk_score_numeric"`
	ResultSummary    string   `json:"result_summary"`
	Pros             []string `json:"pros"`
	Cons             []string `json:"cons"`
	Reasoning        string   `json:"reasoning"`
}

// parseModelJSON tries a direct parse and then falls back to the first
// {...} block in the response, for models that wrap JSON in prose.
func parseModelJSON(raw string) (modelOutput, bool) {
	var out modelOutput
	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		return out, true
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err == nil {
			return out, true
		}
	}
	return modelOutput{}, false
}

func coerceAnalysis(out modelOutput) Analysis {
	numeric := 50.0
	if out.RiskScoreNumeric != nil {
		numeric = clamp(*out.RiskScoreNumeric, 0, 100)
	}

	analysis := Analysis{
		RiskScore:        coerceRisk(out.RiskScore),
		RiskScoreNumeric: numeric,
		ResultSummary:    fallback(out.ResultSummary, notProvided),
		Pros:             coerceTwo(out.Pros),
		Cons:             coerceTwo(out.Cons),
		Reasoning:        fallback(out.Reasoning, notProvided),
	}

	analysis.Pros = enforceNonFinancialPros(analysis.Pros)
	analysis.Pros[0] = hardLimit(analysis.Pros[0], 140)
	analysis.Pros[1] = hardLimit(analysis.Pros[1], 140)
	analysis.Cons[0] = hardLimit(analysis.Cons[0], 140)
	analysis.Cons[1] = hardLimit(analysis.Cons[1], 140)
	return analysis
}

func coerceRisk(v any) string {
	s, _ := v.(string)
	switch t := strings.ToLower(strings.TrimSpace(s)); t {
	case RiskLow, RiskMedium, RiskHigh:
		return t
	default:
		return RiskMedium
	}
}

func coerceTwo(v []string) [2]string {
	out := [2]string{notProvided, notProvided}
	if len(v) > 0 {
		out[0] = fallback(v[0], notProvided)
	}
	if len(v) > 1 {
		out[1] = fallback(v[1], notProvided)
	}
	return out
}

func fallback(s, def string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return def
}

func clamp(n, lo, hi float64) float64 {
	return max(lo, min(hi, n))
}

// hardLimit caps s at maxRunes runes, replacing the tail with an ellipsis.
func hardLimit(s string, maxRunes int) string {
	t := strings.TrimSpace(s)
	runes := []rune(t)
	if len(runes) <= maxRunes {
		return t
	}
	return strings.TrimRight(string(runes[:maxRunes-1]), " ") + "…"
}

// financialWords disqualify a pro: pros must stand on non-financial signals.
var financialWords = []string{
	"income", "paycheck", "salary", "wages", "bills", "expenses",
	"afford", "affordability", "pti", "bti", "ratio", "budget",
	"payment", "down payment", "cash down", "rent", "utilities",
	"electric", "water", "wifi", "phone bill", "subscription",
	"groceries", "eat out",
}

func isFinancialText(s string) bool {
	t := strings.ToLower(s)
	for _, w := range financialWords {
		if strings.Contains(t, w) {
			return true
		}
	}
	return false
}

// enforceNonFinancialPros drops financial pros, padding with "Not provided"
// so exactly two remain.
func enforceNonFinancialPros(pros [2]string) [2]string {
	var kept []string
	for _, p := range pros {
		p = hardLimit(p, 140)
		if p == "" || isFinancialText(p) {
			continue
		}
		kept = append(kept, p)
	}
	switch len(kept) {
	case 2:
		return [2]string{kept[0], kept[1]}
	case 1:
		return [2]string{kept[0], notProvided}
	default:
		return [2]string{notProvided, notProvided}
	}
}
