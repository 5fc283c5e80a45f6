package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vetta-app/vetta/internal/errors"
	"github.com/vetta-app/vetta/internal/models"
	"github.com/vetta-app/vetta/internal/repositories"
)

// startAssessment opens a new interview. A logged-in dealer starts it on the
// showroom device; an applicant coming from a QR code or link identifies the
// dealership with its public key instead.
func (app *application) startAssessment(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		DealerKey     string `json:"dealer_key"`
		Kind          string `json:"kind"`
		CustomerName  string `json:"customer_name"`
		CustomerPhone string `json:"customer_phone"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		app.errorJSON(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	dealerID := app.dealerID(r)
	if dealerID == "" {
		if payload.DealerKey == "" {
			app.errorJSON(w, r, http.StatusBadRequest, "dealer_key is required")
			return
		}
		dealer, err := app.dealers.GetByKey(r.Context(), payload.DealerKey)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				app.errorJSON(w, r, http.StatusNotFound, "unknown dealer")
				return
			}
			app.serverError(w, r, err)
			return
		}
		dealerID = dealer.ID
	}

	mode := models.AssessmentModeDevice
	if payload.Kind == "link" || payload.Kind == "qr" {
		mode = models.AssessmentModeQR
	}

	assessment, err := app.assessments.Create(r.Context(), dealerID, mode, payload.CustomerName, payload.CustomerPhone)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.countEvent(r, dealerID, models.EventStarted)

	app.writeJSON(w, r, http.StatusOK, map[string]string{
		"assessment_id": assessment.ID,
		"dealer_id":     assessment.DealerID,
		"public_token":  assessment.PublicToken,
		"status":        assessment.Status,
		"mode":          assessment.Mode,
		"flow":          assessment.Flow,
	})
}

// assessmentIntro records who the applicant is and what they are shopping for.
func (app *application) assessmentIntro(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		AssessmentID    string `json:"assessment_id"`
		CustomerName    string `json:"customer_name"`
		CustomerPhone   string `json:"customer_phone"`
		VehicleType     string `json:"vehicle_type"`
		VehicleSpecific string `json:"vehicle_specific"`
	}
	if err := decodeJSON(r, &payload); err != nil || payload.AssessmentID == "" {
		app.errorJSON(w, r, http.StatusBadRequest, "assessment_id is required")
		return
	}

	err := app.assessments.SaveIntro(r.Context(), payload.AssessmentID,
		payload.CustomerName, payload.CustomerPhone, payload.VehicleType, payload.VehicleSpecific)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			app.errorJSON(w, r, http.StatusNotFound, "assessment not found")
			return
		}
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// assessmentProgress merges a facts snapshot and transcript onto an
// assessment mid-interview.
func (app *application) assessmentProgress(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		AssessmentID string          `json:"assessment_id"`
		Facts        map[string]any  `json:"facts"`
		Answers      json.RawMessage `json:"answers"`
		Status       string          `json:"status"`
	}
	if err := decodeJSON(r, &payload); err != nil || payload.AssessmentID == "" {
		app.errorJSON(w, r, http.StatusBadRequest, "assessment_id is required")
		return
	}
	switch payload.Status {
	case "", models.AssessmentStatusStarted, models.AssessmentStatusInProgress,
		models.AssessmentStatusSubmitted, models.AssessmentStatusCompleted:
	default:
		app.errorJSON(w, r, http.StatusBadRequest, "invalid status")
		return
	}

	err := app.assessments.MergeProgress(r.Context(), payload.AssessmentID, payload.Facts, payload.Answers, payload.Status)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			app.errorJSON(w, r, http.StatusNotFound, "assessment not found")
			return
		}
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// submitApplicant finalizes a QR-link interview. The public token scopes the
// write to the one assessment the link was minted for.
func (app *application) submitApplicant(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		AssessmentID    string         `json:"assessment_id"`
		Token           string         `json:"token"`
		CustomerName    string         `json:"customer_name"`
		CustomerPhone   string         `json:"customer_phone"`
		VehicleType     string         `json:"vehicle_type"`
		VehicleSpecific string         `json:"vehicle_specific"`
		Facts           map[string]any `json:"facts"`
	}
	if err := decodeJSON(r, &payload); err != nil || payload.AssessmentID == "" || payload.Token == "" {
		app.errorJSON(w, r, http.StatusBadRequest, "assessment_id and token are required")
		return
	}

	err := app.assessments.SubmitApplicant(r.Context(), payload.AssessmentID, payload.Token,
		payload.CustomerName, payload.CustomerPhone, payload.VehicleType, payload.VehicleSpecific, payload.Facts)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			app.errorJSON(w, r, http.StatusNotFound, "assessment not found")
		case errors.Is(err, repositories.ErrInvalidToken):
			app.errorJSON(w, r, http.StatusForbidden, "invalid or expired link token")
		default:
			app.serverError(w, r, err)
		}
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// logScan counts a funnel event against a dealership, typically a QR scan.
func (app *application) logScan(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		DealerKey string `json:"dealer_key"`
		Event     string `json:"event"`
	}
	if err := decodeJSON(r, &payload); err != nil || payload.DealerKey == "" {
		app.errorJSON(w, r, http.StatusBadRequest, "dealer_key is required")
		return
	}
	if payload.Event == "" {
		payload.Event = models.EventScanned
	}
	switch payload.Event {
	case models.EventScanned, models.EventStarted, models.EventCompleted:
	default:
		app.errorJSON(w, r, http.StatusBadRequest, "invalid event")
		return
	}

	dealer, err := app.dealers.GetByKey(r.Context(), payload.DealerKey)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			app.errorJSON(w, r, http.StatusNotFound, "unknown dealer")
			return
		}
		app.serverError(w, r, err)
		return
	}

	if err = app.events.Insert(r.Context(), dealer.ID, payload.Event); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// countEvent records a funnel event without failing the surrounding request.
func (app *application) countEvent(r *http.Request, dealerID, eventType string) {
	if err := app.events.Insert(r.Context(), dealerID, eventType); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "could not record funnel event",
			slog.String("event_type", eventType), errors.SlogError(err))
	}
}
