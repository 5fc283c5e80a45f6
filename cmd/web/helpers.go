package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vetta-app/vetta/internal/errors"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// errorJSON writes a client error as a JSON body, matching what the applicant
// and dashboard frontends expect.
func (app *application) errorJSON(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.logger.Debug(http.StatusText(status),
		"method", r.Method, "uri", r.URL.RequestURI(), "message", message)
	app.writeJSON(w, r, status, map[string]string{"error": message})
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}

// dealerID returns the logged-in dealer's ID, or "" outside a dealer session.
func (app *application) dealerID(r *http.Request) string {
	return app.sessionManager.GetString(r.Context(), sessionKeyDealerID)
}
