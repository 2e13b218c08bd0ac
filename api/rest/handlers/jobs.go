package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Rehodra/AI-Youtube-Analyser/api/rest/middleware"
	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
	"github.com/Rehodra/AI-Youtube-Analyser/core/orchestrator"
	"github.com/Rehodra/AI-Youtube-Analyser/core/repository"
)

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	engine *orchestrator.Engine
	events repository.EventSource
}

// NewJobHandler creates a new job handler
func NewJobHandler(engine *orchestrator.Engine, events repository.EventSource) *JobHandler {
	return &JobHandler{engine: engine, events: events}
}

// SubmitJobRequest represents the request to submit an analysis job
type SubmitJobRequest struct {
	Channel     string   `json:"channel"`
	Modules     []string `json:"modules"`
	NotifyEmail string   `json:"notify_email"`
}

// SubmitJob handles POST /v1/jobs
func (h *JobHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req SubmitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	modules := make([]models.ModuleKind, len(req.Modules))
	for i, m := range req.Modules {
		modules[i] = models.ModuleKind(m)
	}

	notifyEmail := req.NotifyEmail
	if notifyEmail == "" {
		notifyEmail = requester.Email
	}

	job, err := h.engine.Submit(r.Context(), orchestrator.SubmitRequest{
		OwnerID:     requester.ID,
		Channel:     req.Channel,
		Modules:     modules,
		NotifyEmail: notifyEmail,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":         job.ID,
		"status":     job.Status,
		"created_at": job.CreatedAt,
	})
}

// GetJob handles GET /v1/jobs/{id}
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
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

	response := map[string]interface{}{
		"id":                job.ID,
		"channel":           job.Channel,
		"status":            job.Status,
		"requested_modules": job.RequestedModules,
		"modules":           slotSummaries(job),
		"timestamps": map[string]interface{}{
			"created_at": job.CreatedAt,
			"updated_at": job.UpdatedAt,
		},
	}
	if job.ReportURI != "" {
		response["report_uri"] = job.ReportURI
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ListJobs handles GET /v1/jobs
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	limit := 50
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		n, err := strconv.Atoi(limitParam)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		if n > 200 {
			n = 200
		}
		limit = n
	}

	jobs, err := h.engine.ListJobs(r.Context(), requester.ID, limit)
	if err != nil {
		http.Error(w, "Failed to list jobs: "+err.Error(), http.StatusInternalServerError)
		return
	}

	items := make([]map[string]interface{}, len(jobs))
	for i, job := range jobs {
		items[i] = map[string]interface{}{
			"id":         job.ID,
			"channel":    job.Channel,
			"status":     job.Status,
			"created_at": job.CreatedAt,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"items": items,
	})
}

// CancelJob handles POST /v1/jobs/{id}/cancel
func (h *JobHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	jobID := mux.Vars(r)["id"]

	if err := h.engine.Cancel(r.Context(), jobID, requester.ID); err != nil {
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":     jobID,
		"status": models.JobStatusCancelled,
	})
}

// GetJobEvents handles GET /v1/jobs/{id}/events
func (h *JobHandler) GetJobEvents(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	jobID := mux.Vars(r)["id"]

	if _, err := h.engine.GetJob(r.Context(), jobID, requester.ID); err != nil {
		writeEngineError(w, err)
		return
	}

	events, err := h.events.ListEvents(r.Context(), jobID, 100)
	if err != nil {
		http.Error(w, "Failed to fetch events: "+err.Error(), http.StatusInternalServerError)
		return
	}

	items := make([]map[string]interface{}, len(events))
	for i, event := range events {
		item := map[string]interface{}{
			"at":        event.At,
			"to_status": event.ToStatus,
			"reason":    event.Reason,
		}
		if event.FromStatus != nil {
			item["from_status"] = *event.FromStatus
		}
		items[i] = item
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"items": items,
	})
}

// slotSummaries builds the per-module view of a job: state plus either the
// payload or the failure detail
func slotSummaries(job *models.Job) map[string]interface{} {
	summaries := make(map[string]interface{}, len(job.Slots))
	for kind, slot := range job.Slots {
		item := map[string]interface{}{
			"state": slot.State,
		}
		switch slot.State {
		case models.SlotSucceeded:
			item["result"] = json.RawMessage(slot.Payload)
		case models.SlotFailed:
			item["error_kind"] = slot.ErrorKind
			item["error"] = slot.ErrorMessage
		}
		if slot.FinishedAt != nil {
			item["finished_at"] = slot.FinishedAt
		}
		summaries[string(kind)] = item
	}
	return summaries
}

// writeEngineError maps engine and repository errors onto HTTP statuses
func writeEngineError(w http.ResponseWriter, err error) {
	var validationErr *orchestrator.ValidationError
	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
	case errors.Is(err, orchestrator.ErrCapacityExceeded):
		http.Error(w, "Too many pending jobs, try again later", http.StatusTooManyRequests)
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "Job not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrConflict):
		http.Error(w, "Job is already in a terminal state", http.StatusConflict)
	default:
		http.Error(w, "Internal error: "+err.Error(), http.StatusInternalServerError)
	}
}
