package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthy(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t, nil)

	resp := ts.Get(t, "/api/healthy")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t, nil)

	t.Run("wrong API key is rejected", func(t *testing.T) {
		resp := ts.PostJSON(t, "/api/login", map[string]string{"api_key": "not-a-key"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		decodeBody(t, resp)
	})

	t.Run("dashboard requires a session", func(t *testing.T) {
		resp := ts.Get(t, "/api/dashboard-data")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		decodeBody(t, resp)
	})

	t.Run("valid API key opens a session", func(t *testing.T) {
		resp := ts.PostJSON(t, "/api/login", map[string]string{"api_key": ts.dealer.APIKey})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		dealer, ok := body["dealer"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "sunrise-auto", dealer["slug"])

		resp = ts.Get(t, "/api/dashboard-data")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		decodeBody(t, resp)
	})

	t.Run("logout closes the session", func(t *testing.T) {
		resp := ts.PostJSON(t, "/api/logout", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decodeBody(t, resp)

		resp = ts.Get(t, "/api/dashboard-data")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		decodeBody(t, resp)
	})
}

func TestApplicantFlow(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t, nil)

	// The applicant arrives over a QR link, without any session.
	resp := ts.PostJSON(t, "/api/log-scan", map[string]string{"dealer_key": "sunrise-auto"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp)

	resp = ts.PostJSON(t, "/api/start-assessment", map[string]string{
		"dealer_key": "sunrise-auto",
		"kind":       "qr",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	started := decodeBody(t, resp)
	assessmentID, _ := started["assessment_id"].(string)
	publicToken, _ := started["public_token"].(string)
	require.NotEmpty(t, assessmentID)
	require.NotEmpty(t, publicToken)
	assert.Equal(t, "qr", started["mode"])
	assert.Equal(t, "started", started["status"])

	resp = ts.PostJSON(t, "/api/assessments/intro", map[string]string{
		"assessment_id":  assessmentID,
		"customer_name":  "Jordan Diaz",
		"customer_phone": "555-0100",
		"vehicle_type":   "SUV",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp)

	// First chat turn: no previous question, the engine asks for the job title.
	resp = ts.PostJSON(t, "/api/chat/turn", map[string]any{
		"messages":          []map[string]string{{"role": "user", "content": "hi"}},
		"lastQuestionAsked": "",
		"memory":            map[string]any{"facts": map[string]any{}},
		"assessment_id":     assessmentID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	turn := decodeBody(t, resp)
	assert.Equal(t, "ask", turn["action"])
	assert.Equal(t, "job_title", turn["nextTopic"])

	// Second turn answers it; progress is persisted onto the assessment.
	resp = ts.PostJSON(t, "/api/chat/turn", map[string]any{
		"messages": []map[string]string{
			{"role": "user", "content": "hi"},
			{"role": "assistant", "content": turn["nextQuestion"].(string)},
			{"role": "user", "content": "Delivery driver"},
		},
		"lastTopic":     "job_title",
		"memory":        map[string]any{"facts": map[string]any{}},
		"assessment_id": assessmentID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	turn = decodeBody(t, resp)
	assert.Equal(t, "ask", turn["action"])
	assert.Equal(t, "employer_name", turn["nextTopic"])
	facts, ok := turn["facts"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Delivery driver", facts["job_title"])

	// Applicant submits over the public link. Wrong token is rejected.
	resp = ts.PostJSON(t, "/api/public/submit-applicant", map[string]any{
		"assessment_id": assessmentID,
		"token":         "wrong-token",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	decodeBody(t, resp)

	resp = ts.PostJSON(t, "/api/public/submit-applicant", map[string]any{
		"assessment_id": assessmentID,
		"token":         publicToken,
		"facts":         map[string]any{"down_payment": 500},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp)

	// The dealer picks the assessment up on the dashboard.
	ts.Login(t)

	resp = ts.Get(t, "/api/assessments/"+assessmentID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stored := decodeBody(t, resp)
	assert.Equal(t, "Jordan Diaz", stored["customer_name"])
	assert.NotNil(t, stored["applicant_submitted_at"])
	storedFacts, ok := stored["facts"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Delivery driver", storedFacts["job_title"])

	resp = ts.PostJSON(t, "/api/analyze-risk", map[string]any{"assessment_id": assessmentID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	analysis := decodeBody(t, resp)
	assert.Equal(t, "low", analysis["risk_score"])
	assert.Contains(t, analysis["reasoning"], "Summary: Applicant looks steady overall.")

	resp = ts.Get(t, "/api/assessments/"+assessmentID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	completed := decodeBody(t, resp)
	assert.Equal(t, "completed", completed["status"])
	assert.Equal(t, "low", completed["risk_score"])
	completedFacts, ok := completed["facts"].(map[string]any)
	require.True(t, ok)
	// The 500 down payment trips the dealer-fit rules on the way to the model.
	warnings, ok := completedFacts["warnings"].([]any)
	require.True(t, ok)
	assert.Contains(t, warnings, "fit_low_down_payment")
	assert.Contains(t, completedFacts, "analysis")

	// The funnel now shows one scan, one start, one completion.
	resp = ts.Get(t, "/api/dashboard-data")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dashboard := decodeBody(t, resp)
	assert.InDelta(t, 1, dashboard["scans"], 0.001)
	assert.InDelta(t, 1, dashboard["started"], 0.001)
	assert.InDelta(t, 1, dashboard["completed"], 0.001)
	assert.InDelta(t, 0, dashboard["drop_offs"], 0.001)
	recents, ok := dashboard["recent_assessments"].([]any)
	require.True(t, ok)
	assert.Len(t, recents, 1)

	resp = ts.Get(t, "/api/dealer-coaching")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	coaching := decodeBody(t, resp)
	assert.Equal(t, "Follow up with scanned leads within one day.", coaching["coaching"])
}

func TestChatTurnIdempotency(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t, nil)

	payload := map[string]any{
		"messages":          []map[string]string{{"role": "user", "content": "hi"}},
		"lastQuestionAsked": "",
		"memory":            map[string]any{"facts": map[string]any{}},
	}
	encoded, err := json.Marshal(payload)
	require.NoError(t, err)

	send := func() []byte {
		req, err := http.NewRequest(http.MethodPost, ts.url+"/api/chat/turn", bytes.NewReader(encoded))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "turn-1")
		resp, err := ts.client.Do(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		return body
	}

	first := send()
	second := send()
	assert.Equal(t, first, second)
}

func TestDealerSettings(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t, nil)

	t.Run("public view shows branding without thresholds", func(t *testing.T) {
		resp := ts.Get(t, "/api/dealer-settings?dealer=sunrise-auto")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Sunrise Auto", body["dealer_name"])
		assert.Equal(t, "#1E3A8A", body["theme_color"])
		assert.NotContains(t, body, "max_pti_ratio")
	})

	ts.Login(t)

	t.Run("defaults before first save", func(t *testing.T) {
		resp := ts.Get(t, "/api/dealer-settings")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.InDelta(t, 0.35, body["max_pti_ratio"], 0.001)
		assert.InDelta(t, 1000, body["min_down_payment"], 0.001)
		assert.Equal(t, true, body["require_valid_driver_license"])
	})

	t.Run("partial save keeps the other fields", func(t *testing.T) {
		resp := ts.PostJSON(t, "/api/dealer-settings", map[string]any{
			"theme_color":      "#0F766E",
			"min_down_payment": 1500,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "#0F766E", body["theme_color"])
		assert.InDelta(t, 1500, body["min_down_payment"], 0.001)
		assert.InDelta(t, 0.35, body["max_pti_ratio"], 0.001)

		resp = ts.Get(t, "/api/dealer-settings")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body = decodeBody(t, resp)
		assert.Equal(t, "#0F766E", body["theme_color"])
	})
}

func TestCustomQuestions(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t, nil)
	ts.Login(t)

	resp := ts.PostJSON(t, "/api/custom-questions", map[string]string{
		"question": "Do you have a trade-in?",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp)

	resp = ts.Get(t, "/api/custom-questions")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	questions, ok := body["questions"].([]any)
	require.True(t, ok)
	require.Len(t, questions, 1)
	first, ok := questions[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Do you have a trade-in?", first["question"])

	id := int(first["id"].(float64))
	resp = ts.Delete(t, "/api/custom-questions/"+strconv.Itoa(id))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp)

	resp = ts.Get(t, "/api/custom-questions")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	questions, ok = body["questions"].([]any)
	require.True(t, ok)
	assert.Empty(t, questions)
}

func TestRateLimit(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t, map[string]string{"VETTA_RATE_LIMIT": "3"})

	var lastStatus int
	for range 4 {
		resp := ts.PostJSON(t, "/api/log-scan", map[string]string{"dealer_key": "sunrise-auto"})
		lastStatus = resp.StatusCode
		if resp.StatusCode == http.StatusTooManyRequests {
			assert.NotEmpty(t, resp.Header.Get("Retry-After"))
		}
		decodeBody(t, resp)
	}
	assert.Equal(t, http.StatusTooManyRequests, lastStatus)
}
