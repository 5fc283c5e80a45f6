package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vetta-app/vetta/internal/errors"
	"github.com/vetta-app/vetta/internal/models"
	"github.com/vetta-app/vetta/internal/repositories"
	"github.com/vetta-app/vetta/internal/scoring"
)

type settingsView struct {
	DealerID                  string  `json:"dealer_id"`
	LogoURL                   *string `json:"logo_url"`
	ThemeColor                string  `json:"theme_color"`
	ContactEmail              *string `json:"contact_email"`
	MaxPTIRatio               float64 `json:"max_pti_ratio"`
	RequireValidDriverLicense bool    `json:"require_valid_driver_license"`
	MinDownPayment            int     `json:"min_down_payment"`
	MinResidenceMonths        int     `json:"min_residence_months"`
	MinEmploymentMonths       int     `json:"min_employment_months"`
}

func newSettingsView(s models.DealerSettings) settingsView {
	return settingsView{
		DealerID:                  s.DealerID,
		LogoURL:                   nullableString(s.LogoURL),
		ThemeColor:                s.ThemeColor,
		ContactEmail:              nullableString(s.ContactEmail),
		MaxPTIRatio:               s.MaxPTIRatio,
		RequireValidDriverLicense: s.RequireValidDriverLicense,
		MinDownPayment:            s.MinDownPayment,
		MinResidenceMonths:        s.MinResidenceMonths,
		MinEmploymentMonths:       s.MinEmploymentMonths,
	}
}

// getDealerSettings serves two callers: the logged-in dashboard gets the full
// settings, and the applicant page identifies the dealership with a public
// key and gets branding only, never the fit thresholds.
func (app *application) getDealerSettings(w http.ResponseWriter, r *http.Request) {
	if dealerID := app.dealerID(r); dealerID != "" {
		settings, err := app.settings.Get(r.Context(), dealerID)
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		app.writeJSON(w, r, http.StatusOK, newSettingsView(*settings))
		return
	}

	key := r.URL.Query().Get("dealer")
	if key == "" {
		app.errorJSON(w, r, http.StatusUnauthorized, "login or dealer key required")
		return
	}
	dealer, err := app.dealers.GetByKey(r.Context(), key)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			app.errorJSON(w, r, http.StatusNotFound, "unknown dealer")
			return
		}
		app.serverError(w, r, err)
		return
	}
	settings, err := app.settings.Get(r.Context(), dealer.ID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{
		"dealer_name":   dealer.Name,
		"logo_url":      nullableString(settings.LogoURL),
		"theme_color":   settings.ThemeColor,
		"contact_email": nullableString(settings.ContactEmail),
	})
}

// saveDealerSettings patches the dealer's settings. Absent fields keep their
// current values so the dashboard can save one section at a time.
func (app *application) saveDealerSettings(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		LogoURL                   *string  `json:"logo_url"`
		ThemeColor                *string  `json:"theme_color"`
		ContactEmail              *string  `json:"contact_email"`
		MaxPTIRatio               *float64 `json:"max_pti_ratio"`
		RequireValidDriverLicense *bool    `json:"require_valid_driver_license"`
		MinDownPayment            *int     `json:"min_down_payment"`
		MinResidenceMonths        *int     `json:"min_residence_months"`
		MinEmploymentMonths       *int     `json:"min_employment_months"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		app.errorJSON(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	dealerID := app.dealerID(r)
	settings, err := app.settings.Get(r.Context(), dealerID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	if payload.LogoURL != nil {
		settings.LogoURL = sql.NullString{String: *payload.LogoURL, Valid: *payload.LogoURL != ""}
	}
	if payload.ThemeColor != nil {
		settings.ThemeColor = *payload.ThemeColor
	}
	if payload.ContactEmail != nil {
		settings.ContactEmail = sql.NullString{String: *payload.ContactEmail, Valid: *payload.ContactEmail != ""}
	}
	if payload.MaxPTIRatio != nil {
		settings.MaxPTIRatio = *payload.MaxPTIRatio
	}
	if payload.RequireValidDriverLicense != nil {
		settings.RequireValidDriverLicense = *payload.RequireValidDriverLicense
	}
	if payload.MinDownPayment != nil {
		settings.MinDownPayment = *payload.MinDownPayment
	}
	if payload.MinResidenceMonths != nil {
		settings.MinResidenceMonths = *payload.MinResidenceMonths
	}
	if payload.MinEmploymentMonths != nil {
		settings.MinEmploymentMonths = *payload.MinEmploymentMonths
	}

	if err = app.settings.Upsert(r.Context(), *settings); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newSettingsView(*settings))
}

func (app *application) listCustomQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := app.questions.List(r.Context(), app.dealerID(r))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	views := make([]map[string]any, 0, len(questions))
	for _, q := range questions {
		views = append(views, map[string]any{
			"id":         q.ID,
			"question":   q.Question,
			"created_at": q.CreatedAt,
		})
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"questions": views})
}

func (app *application) addCustomQuestion(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Question string `json:"question"`
	}
	if err := decodeJSON(r, &payload); err != nil || payload.Question == "" {
		app.errorJSON(w, r, http.StatusBadRequest, "question is required")
		return
	}
	if err := app.questions.Add(r.Context(), app.dealerID(r), payload.Question); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (app *application) deleteCustomQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		app.errorJSON(w, r, http.StatusBadRequest, "invalid question id")
		return
	}
	if err = app.questions.Delete(r.Context(), app.dealerID(r), id); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// dashboardData aggregates the funnel counts and the latest assessments.
func (app *application) dashboardData(w http.ResponseWriter, r *http.Request) {
	dealerID := app.dealerID(r)

	counts, err := app.events.Counts(r.Context(), dealerID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	recent, err := app.assessments.Recent(r.Context(), dealerID, 25)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	views := make([]assessmentView, 0, len(recent))
	for _, a := range recent {
		views = append(views, newAssessmentView(a))
	}

	dropOffs := counts[models.EventStarted] - counts[models.EventCompleted]
	if dropOffs < 0 {
		dropOffs = 0
	}

	app.writeJSON(w, r, http.StatusOK, map[string]any{
		"scans":              counts[models.EventScanned],
		"started":            counts[models.EventStarted],
		"completed":          counts[models.EventCompleted],
		"drop_offs":          dropOffs,
		"recent_assessments": views,
	})
}

// dealerCoaching asks the model for a few tips based on the dealer's funnel
// and recent risk mix. Model failures degrade to empty coaching rather than
// an error page.
func (app *application) dealerCoaching(w http.ResponseWriter, r *http.Request) {
	dealerID := app.dealerID(r)

	counts, err := app.events.Counts(r.Context(), dealerID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	risks, err := app.assessments.RecentRiskScores(r.Context(), dealerID, 50)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	stats := scoring.FunnelStats{
		Scans:     counts[models.EventScanned],
		Started:   counts[models.EventStarted],
		Completed: counts[models.EventCompleted],
	}
	for _, risk := range risks {
		switch risk {
		case scoring.RiskLow:
			stats.RiskLow++
		case scoring.RiskMedium:
			stats.RiskMed++
		case scoring.RiskHigh:
			stats.RiskHigh++
		}
	}

	coaching, err := app.scorer.Coach(r.Context(), stats)
	if err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "coaching unavailable", errors.SlogError(err))
		coaching = ""
	}

	app.writeJSON(w, r, http.StatusOK, map[string]any{
		"coaching": coaching,
		"stats":    stats,
	})
}
