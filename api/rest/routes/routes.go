package routes

import (
	"github.com/gorilla/mux"

	"github.com/Rehodra/AI-Youtube-Analyser/api/rest/handlers"
	"github.com/Rehodra/AI-Youtube-Analyser/api/rest/middleware"
	"github.com/Rehodra/AI-Youtube-Analyser/core/orchestrator"
	"github.com/Rehodra/AI-Youtube-Analyser/core/repository"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *mux.Router, engine *orchestrator.Engine, events repository.EventSource, jwtSecret string) {
	jobHandler := handlers.NewJobHandler(engine, events)
	reportHandler := handlers.NewReportHandler(engine)

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(middleware.RequireAuth(jwtSecret))

	// Job endpoints
	api.HandleFunc("/jobs", jobHandler.SubmitJob).Methods("POST")
	api.HandleFunc("/jobs", jobHandler.ListJobs).Methods("GET")
	api.HandleFunc("/jobs/{id}", jobHandler.GetJob).Methods("GET")
	api.HandleFunc("/jobs/{id}/cancel", jobHandler.CancelJob).Methods("POST")
	api.HandleFunc("/jobs/{id}/events", jobHandler.GetJobEvents).Methods("GET")
	api.HandleFunc("/jobs/{id}/report", reportHandler.GetReport).Methods("GET")
}
