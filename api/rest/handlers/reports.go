package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Rehodra/AI-Youtube-Analyser/api/rest/middleware"
	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
	"github.com/Rehodra/AI-Youtube-Analyser/core/orchestrator"
	"github.com/Rehodra/AI-Youtube-Analyser/storage"
)

// ReportHandler serves rendered analysis reports
type ReportHandler struct {
	engine *orchestrator.Engine
}

// NewReportHandler creates a new report handler
func NewReportHandler(engine *orchestrator.Engine) *ReportHandler {
	return &ReportHandler{engine: engine}
}

// GetReport handles GET /v1/jobs/{id}/report. Reports exist only for
// terminal jobs.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	jobID := mux.Vars(r)["id"]

	job, err := h.engine.GetJob(r.Context(), jobID, requester.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	if !job.Status.IsTerminal() || job.Status == models.JobStatusCancelled {
		http.Error(w, "Report not available for this job", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write(storage.RenderReport(job))
}
