package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vetta-app/vetta/internal/errors"
	"github.com/vetta-app/vetta/internal/interview"
	"github.com/vetta-app/vetta/internal/models"
)

// turnPayload is one chat turn plus the optional assessment the device is
// working through. The embedded request is the engine's contract.
type turnPayload struct {
	interview.TurnRequest
	AssessmentID string `json:"assessment_id,omitempty"`
}

// chatTurn advances the applicant interview by one step. The engine itself is
// pure; this handler adds idempotent retries and a best-effort progress save
// so a crashed device can resume mid-interview.
func (app *application) chatTurn(w http.ResponseWriter, r *http.Request) {
	idemKey := r.Header.Get("Idempotency-Key")
	if idemKey != "" {
		if cached, ok := app.idempotency.Get(idemKey); ok {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(cached)
			return
		}
	}

	var payload turnPayload
	if err := decodeJSON(r, &payload); err != nil {
		app.errorJSON(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	resp := interview.Turn(payload.TurnRequest)

	if payload.AssessmentID != "" {
		app.persistProgress(r, payload, resp)
	}

	body, err := json.Marshal(resp)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "marshal turn response"))
		return
	}
	if idemKey != "" {
		app.idempotency.Set(idemKey, body)
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// persistProgress saves the turn's facts and transcript onto the assessment.
// Failures are logged but never fail the turn: the chat must keep moving even
// when the save does not.
func (app *application) persistProgress(r *http.Request, payload turnPayload, resp interview.TurnResponse) {
	facts, err := factMap(resp.Facts)
	if err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "could not encode facts for progress save",
			slog.String("assessment_id", payload.AssessmentID), errors.SlogError(err))
		return
	}
	answers, err := json.Marshal(payload.Messages)
	if err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "could not encode transcript for progress save",
			slog.String("assessment_id", payload.AssessmentID), errors.SlogError(err))
		return
	}

	status := models.AssessmentStatusInProgress
	if resp.Action == interview.ActionStop {
		status = models.AssessmentStatusSubmitted
	}

	if err = app.assessments.MergeProgress(r.Context(), payload.AssessmentID, facts, answers, status); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "could not save interview progress",
			slog.String("assessment_id", payload.AssessmentID), errors.SlogError(err))
	}
}

// factMap flattens the engine's facts struct into the JSON object shape the
// assessments table stores.
func factMap(facts interview.Facts) (map[string]any, error) {
	encoded, err := json.Marshal(facts)
	if err != nil {
		return nil, errors.Wrap(err, "marshal facts")
	}
	out := map[string]any{}
	if err = json.Unmarshal(encoded, &out); err != nil {
		return nil, errors.Wrap(err, "unmarshal facts into map")
	}
	return out, nil
}
