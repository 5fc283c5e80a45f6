package main

import (
	"net/http"

	"github.com/vetta-app/vetta/internal/errors"
	"github.com/vetta-app/vetta/internal/repositories"
)

// login exchanges a dealer API key for a dashboard session cookie.
func (app *application) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		APIKey string `json:"api_key"`
	}
	if err := decodeJSON(r, &payload); err != nil || payload.APIKey == "" {
		app.errorJSON(w, r, http.StatusBadRequest, "api_key is required")
		return
	}

	dealer, err := app.dealers.GetByAPIKey(r.Context(), payload.APIKey)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			app.errorJSON(w, r, http.StatusUnauthorized, "invalid API key")
			return
		}
		app.serverError(w, r, err)
		return
	}

	// Renew the session token on privilege change to prevent fixation.
	if err = app.sessionManager.RenewToken(r.Context()); err != nil {
		app.serverError(w, r, errors.Wrap(err, "renew session token"))
		return
	}
	app.sessionManager.Put(r.Context(), sessionKeyDealerID, dealer.ID)

	app.writeJSON(w, r, http.StatusOK, map[string]any{
		"dealer": map[string]string{
			"id":   dealer.ID,
			"name": dealer.Name,
			"slug": dealer.Slug,
		},
	})
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		app.serverError(w, r, errors.Wrap(err, "destroy session"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
