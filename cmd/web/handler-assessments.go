package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"slices"

	"github.com/vetta-app/vetta/internal/errors"
	"github.com/vetta-app/vetta/internal/models"
	"github.com/vetta-app/vetta/internal/repositories"
	"github.com/vetta-app/vetta/internal/scoring"
)

// assessmentView is the dashboard-facing shape of an assessment row. Facts
// and answers are stored as JSON text and inlined as-is.
type assessmentView struct {
	ID                   string          `json:"id"`
	DealerID             string          `json:"dealer_id"`
	Status               string          `json:"status"`
	Mode                 string          `json:"mode"`
	Flow                 string          `json:"flow"`
	RiskScore            string          `json:"risk_score"`
	Reasoning            *string         `json:"reasoning"`
	CustomerName         *string         `json:"customer_name"`
	CustomerPhone        *string         `json:"customer_phone"`
	VehicleType          *string         `json:"vehicle_type"`
	VehicleSpecific      *string         `json:"vehicle_specific"`
	Facts                json.RawMessage `json:"facts"`
	Answers              json.RawMessage `json:"answers"`
	PublicToken          string          `json:"public_token"`
	ApplicantSubmittedAt *string         `json:"applicant_submitted_at"`
	CreatedAt            string          `json:"created_at"`
}

func newAssessmentView(a models.Assessment) assessmentView {
	return assessmentView{
		ID:                   a.ID,
		DealerID:             a.DealerID,
		Status:               a.Status,
		Mode:                 a.Mode,
		Flow:                 a.Flow,
		RiskScore:            a.RiskScore,
		Reasoning:            nullableString(a.Reasoning),
		CustomerName:         nullableString(a.CustomerName),
		CustomerPhone:        nullableString(a.CustomerPhone),
		VehicleType:          nullableString(a.VehicleType),
		VehicleSpecific:      nullableString(a.VehicleSpecific),
		Facts:                json.RawMessage(a.Facts),
		Answers:              json.RawMessage(a.Answers),
		PublicToken:          a.PublicToken,
		ApplicantSubmittedAt: nullableString(a.ApplicantSubmittedAt),
		CreatedAt:            a.CreatedAt,
	}
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func (app *application) listAssessments(w http.ResponseWriter, r *http.Request) {
	assessments, err := app.assessments.List(r.Context(), app.dealerID(r))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	views := make([]assessmentView, 0, len(assessments))
	for _, a := range assessments {
		views = append(views, newAssessmentView(a))
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"assessments": views})
}

// createAssessment starts a device-mode interview from the dashboard.
func (app *application) createAssessment(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Mode          string `json:"mode"`
		CustomerName  string `json:"customer_name"`
		CustomerPhone string `json:"customer_phone"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		app.errorJSON(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	dealerID := app.dealerID(r)
	assessment, err := app.assessments.Create(r.Context(), dealerID, payload.Mode, payload.CustomerName, payload.CustomerPhone)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.countEvent(r, dealerID, models.EventStarted)
	app.writeJSON(w, r, http.StatusOK, newAssessmentView(*assessment))
}

func (app *application) getAssessment(w http.ResponseWriter, r *http.Request) {
	assessment, err := app.assessments.Get(r.Context(), app.dealerID(r), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			app.errorJSON(w, r, http.StatusNotFound, "assessment not found")
			return
		}
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newAssessmentView(*assessment))
}

// analyzeRisk runs the risk model over an assessment's facts and transcript.
// Request-supplied facts and answers take precedence over what is stored, so
// the dashboard can re-score with corrections. Dealer-fit tags are appended
// to the warnings before the model sees them.
func (app *application) analyzeRisk(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		AssessmentID string          `json:"assessment_id"`
		Facts        map[string]any  `json:"facts"`
		Answers      json.RawMessage `json:"answers"`
	}
	if err := decodeJSON(r, &payload); err != nil || payload.AssessmentID == "" {
		app.errorJSON(w, r, http.StatusBadRequest, "assessment_id is required")
		return
	}

	dealerID := app.dealerID(r)
	assessment, err := app.assessments.Get(r.Context(), dealerID, payload.AssessmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			app.errorJSON(w, r, http.StatusNotFound, "assessment not found")
			return
		}
		app.serverError(w, r, err)
		return
	}

	facts := payload.Facts
	if len(facts) == 0 {
		facts = map[string]any{}
		if err = json.Unmarshal([]byte(assessment.Facts), &facts); err != nil {
			facts = map[string]any{}
		}
	}
	answers := payload.Answers
	if len(answers) == 0 {
		answers = json.RawMessage(assessment.Answers)
	}

	settings, err := app.settings.Get(r.Context(), dealerID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if tags := app.fitChecker.Evaluate(facts, settings); len(tags) > 0 {
		facts["warnings"] = appendWarnings(facts["warnings"], tags)
	}

	customerName := assessment.CustomerName.String
	if name, ok := facts["customer_name"].(string); ok && name != "" {
		customerName = name
	}

	analysis, err := app.scorer.Analyze(r.Context(), scoring.AnalyzeInput{
		CustomerName:  customerName,
		CustomerPhone: assessment.CustomerPhone.String,
		Facts:         facts,
		Transcript:    answers,
	})
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	facts["analysis"] = map[string]any{
		"result_summary":     analysis.ResultSummary,
		"pros":               analysis.Pros,
		"cons":               analysis.Cons,
		"risk_score_numeric": analysis.RiskScoreNumeric,
	}
	if err = app.assessments.Finish(r.Context(), assessment.ID, analysis.RiskScore, analysis.ReasoningText(), facts); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.countEvent(r, dealerID, models.EventCompleted)

	app.writeJSON(w, r, http.StatusOK, map[string]any{
		"assessment_id":      assessment.ID,
		"risk_score":         analysis.RiskScore,
		"risk_score_numeric": analysis.RiskScoreNumeric,
		"result_summary":     analysis.ResultSummary,
		"pros":               analysis.Pros,
		"cons":               analysis.Cons,
		"reasoning":          analysis.ReasoningText(),
	})
}

// appendWarnings merges new tags into a stored warnings value, preserving
// order and dropping duplicates. The stored value comes from JSON so it is an
// []any of strings when present.
func appendWarnings(stored any, tags []string) []string {
	var warnings []string
	if list, ok := stored.([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				warnings = append(warnings, s)
			}
		}
	} else if list, ok := stored.([]string); ok {
		warnings = append(warnings, list...)
	}
	for _, tag := range tags {
		if !slices.Contains(warnings, tag) {
			warnings = append(warnings, tag)
		}
	}
	return warnings
}
