package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthy", app.healthy)

	session := alice.New(app.sessionManager.LoadAndSave)
	// The applicant-facing routes are unauthenticated, so they sit behind the
	// per-IP limiter.
	public := session.Append(app.rateLimit)
	dealer := session.Append(app.requireDealer)

	mux.Handle("POST /api/chat/turn", public.ThenFunc(app.chatTurn))
	mux.Handle("POST /api/start-assessment", public.ThenFunc(app.startAssessment))
	mux.Handle("POST /api/assessments/intro", public.ThenFunc(app.assessmentIntro))
	mux.Handle("POST /api/assessments/progress", public.ThenFunc(app.assessmentProgress))
	mux.Handle("POST /api/public/submit-applicant", public.ThenFunc(app.submitApplicant))
	mux.Handle("POST /api/log-scan", public.ThenFunc(app.logScan))
	mux.Handle("GET /api/dealer-settings", public.ThenFunc(app.getDealerSettings))
	mux.Handle("POST /api/login", public.ThenFunc(app.login))

	mux.Handle("POST /api/logout", dealer.ThenFunc(app.logout))
	mux.Handle("GET /api/assessments", dealer.ThenFunc(app.listAssessments))
	mux.Handle("POST /api/assessments", dealer.ThenFunc(app.createAssessment))
	mux.Handle("GET /api/assessments/{id}", dealer.ThenFunc(app.getAssessment))
	mux.Handle("POST /api/analyze-risk", dealer.ThenFunc(app.analyzeRisk))
	mux.Handle("POST /api/dealer-settings", dealer.ThenFunc(app.saveDealerSettings))
	mux.Handle("GET /api/custom-questions", dealer.ThenFunc(app.listCustomQuestions))
	mux.Handle("POST /api/custom-questions", dealer.ThenFunc(app.addCustomQuestion))
	mux.Handle("DELETE /api/custom-questions/{id}", dealer.ThenFunc(app.deleteCustomQuestion))
	mux.Handle("GET /api/dashboard-data", dealer.ThenFunc(app.dashboardData))
	mux.Handle("GET /api/dealer-coaching", dealer.ThenFunc(app.dealerCoaching))

	return app.recoverPanic(app.logRequest(secureHeaders(mux)))
}
