package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
	"github.com/Rehodra/AI-Youtube-Analyser/core/repository"
)

// ErrCapacityExceeded indicates the submission queue hit its hard cap
var ErrCapacityExceeded = errors.New("job queue at capacity")

// ValidationError rejects a submission before any job record is created
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid submission: " + e.Reason
}

// channelPattern accepts handles ("@Example") and plain channel names
var channelPattern = regexp.MustCompile(`^@?[A-Za-z0-9][A-Za-z0-9._-]{2,63}$`)

// SubmitRequest is the submission boundary input
type SubmitRequest struct {
	OwnerID     string
	Channel     string
	Modules     []models.ModuleKind
	NotifyEmail string
}

// Engine accepts jobs and runs them on a fixed worker pool. The pool size
// bounds how many jobs execute simultaneously; submissions beyond that wait
// in the queue as queued jobs.
type Engine struct {
	store        repository.Store
	coordinator  *Coordinator
	lifecycle    *Lifecycle
	queue        *jobQueue
	workers      int
	capacity     int
	pollInterval time.Duration
}

// NewEngine creates a new orchestration engine
func NewEngine(store repository.Store, coordinator *Coordinator, lifecycle *Lifecycle, workers, capacity int) *Engine {
	if workers <= 0 {
		workers = 1
	}
	return &Engine{
		store:        store,
		coordinator:  coordinator,
		lifecycle:    lifecycle,
		queue:        newJobQueue(),
		workers:      workers,
		capacity:     capacity,
		pollInterval: 200 * time.Millisecond,
	}
}

// Start requeues jobs left queued by a previous run and launches the worker
// pool. Workers exit when ctx is cancelled.
func (e *Engine) Start(ctx context.Context) {
	e.loadQueuedJobs(ctx)
	for i := 0; i < e.workers; i++ {
		go e.runWorker(ctx)
	}
}

// Submit validates the request, creates the job record in queued state and
// enqueues it for execution. The returned snapshot carries the generated id
// callers poll with.
func (e *Engine) Submit(ctx context.Context, req SubmitRequest) (*models.Job, error) {
	if err := validateSubmit(req); err != nil {
		return nil, err
	}
	if e.capacity > 0 && e.queue.Len() >= e.capacity {
		return nil, ErrCapacityExceeded
	}

	job := &models.Job{
		ID:               uuid.New().String(),
		OwnerID:          req.OwnerID,
		Channel:          req.Channel,
		RequestedModules: dedupeModules(req.Modules),
		Status:           models.JobStatusQueued,
		NotifyEmail:      req.NotifyEmail,
	}
	job.Slots = models.NewJobSlots(job.RequestedModules)

	if err := e.store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	e.queue.Enqueue(job.ID)

	log.Printf("job %s: submitted by %s for channel %s (%d modules)",
		job.ID, job.OwnerID, job.Channel, len(job.RequestedModules))
	return job.Clone(), nil
}

// GetJob returns the job snapshot for the requesting owner. Jobs owned by
// someone else are reported as not found, never as forbidden.
func (e *Engine) GetJob(ctx context.Context, jobID, requesterID string) (*models.Job, error) {
	job, err := e.store.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.OwnerID != requesterID {
		return nil, repository.ErrNotFound
	}
	return job, nil
}

// ListJobs returns the requester's jobs, newest first
func (e *Engine) ListJobs(ctx context.Context, requesterID string, limit int) ([]*models.Job, error) {
	return e.store.ListByOwner(ctx, requesterID, limit)
}

// Cancel cancels a queued or running job owned by the requester
func (e *Engine) Cancel(ctx context.Context, jobID, requesterID string) error {
	if _, err := e.GetJob(ctx, jobID, requesterID); err != nil {
		return err
	}
	return e.lifecycle.Cancel(ctx, jobID)
}

// loadQueuedJobs re-enqueues jobs found queued in the store at startup
func (e *Engine) loadQueuedJobs(ctx context.Context) {
	jobs, err := e.store.ListByStatus(ctx, models.JobStatusQueued, e.capacity)
	if err != nil {
		log.Printf("failed to load queued jobs: %v", err)
		return
	}
	for _, job := range jobs {
		e.queue.Enqueue(job.ID)
	}
	if len(jobs) > 0 {
		log.Printf("requeued %d jobs from previous run", len(jobs))
	}
}

// runWorker pulls jobs off the queue and drives each to a terminal status
func (e *Engine) runWorker(ctx context.Context) {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				id := e.queue.Pop()
				if id == "" {
					break
				}
				e.process(ctx, id)
			}
		}
	}
}

func (e *Engine) process(ctx context.Context, jobID string) {
	// Re-fetch for the latest state; a job cancelled while queued is
	// skipped here.
	job, err := e.store.GetByID(ctx, jobID)
	if err != nil {
		log.Printf("job %s: failed to fetch: %v", jobID, err)
		return
	}
	if job.Status != models.JobStatusQueued {
		return
	}
	e.coordinator.Run(ctx, job)
}

func validateSubmit(req SubmitRequest) error {
	if req.OwnerID == "" {
		return &ValidationError{Reason: "missing requester"}
	}
	if !channelPattern.MatchString(req.Channel) {
		return &ValidationError{Reason: fmt.Sprintf("malformed channel identifier %q", req.Channel)}
	}
	if len(req.Modules) == 0 {
		return &ValidationError{Reason: "module set is empty"}
	}
	for _, kind := range req.Modules {
		if !kind.IsRequestable() {
			return &ValidationError{Reason: fmt.Sprintf("unknown module %q", kind)}
		}
	}
	return nil
}

func dedupeModules(modules []models.ModuleKind) []models.ModuleKind {
	seen := make(map[models.ModuleKind]bool, len(modules))
	out := make([]models.ModuleKind, 0, len(modules))
	for _, kind := range modules {
		if !seen[kind] {
			seen[kind] = true
			out = append(out, kind)
		}
	}
	return out
}
