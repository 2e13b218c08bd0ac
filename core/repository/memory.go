package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
)

// MemoryStore is an in-process job state store with the same per-job
// atomicity guarantees as the Postgres repository. Used when no DATABASE_URL
// is configured and throughout the test suite.
type MemoryStore struct {
	mu      sync.RWMutex
	jobs    map[string]*models.Job
	events  map[string][]models.JobEvent
	eventID int64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:   make(map[string]*models.Job),
		events: make(map[string][]models.JobEvent),
	}
}

var (
	_ Store       = (*MemoryStore)(nil)
	_ EventSource = (*MemoryStore)(nil)
)

// Create stores a new job record
func (s *MemoryStore) Create(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; ok {
		return ErrConflict
	}
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	s.jobs[job.ID] = job.Clone()
	s.appendEventLocked(job.ID, nil, job.Status, "job_submitted")
	return nil
}

// GetByID returns a snapshot of the job
func (s *MemoryStore) GetByID(_ context.Context, id string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return job.Clone(), nil
}

// UpdateSlot writes one result slot; slots are write-once
func (s *MemoryStore) UpdateSlot(_ context.Context, id string, kind models.ModuleKind, slot models.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	current, ok := job.Slots[kind]
	if !ok || current.State != models.SlotPending {
		return ErrConflict
	}
	if slot.Payload != nil {
		slot.Payload = append([]byte(nil), slot.Payload...)
	}
	job.Slots[kind] = slot
	job.UpdatedAt = time.Now()
	return nil
}

// UpdateStatus transitions the job status, guarded against stale writers
func (s *MemoryStore) UpdateStatus(_ context.Context, id string, from, to models.JobStatus, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status != from {
		return ErrConflict
	}
	job.Status = to
	job.UpdatedAt = time.Now()
	s.appendEventLocked(id, &from, to, reason)
	return nil
}

// ListByStatus lists jobs in a given status, oldest first
func (s *MemoryStore) ListByStatus(_ context.Context, status models.JobStatus, limit int) ([]*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var jobs []*models.Job
	for _, job := range s.jobs {
		if job.Status == status {
			jobs = append(jobs, job.Clone())
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })
	return capJobs(jobs, limit), nil
}

// ListByOwner lists a user's jobs, newest first
func (s *MemoryStore) ListByOwner(_ context.Context, ownerID string, limit int) ([]*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var jobs []*models.Job
	for _, job := range s.jobs {
		if job.OwnerID == ownerID {
			jobs = append(jobs, job.Clone())
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	return capJobs(jobs, limit), nil
}

// ListAwaitingDelivery lists terminal, undelivered jobs (cancelled excluded)
func (s *MemoryStore) ListAwaitingDelivery(_ context.Context, limit int) ([]*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var jobs []*models.Job
	for _, job := range s.jobs {
		if job.Status.IsTerminal() && job.Status != models.JobStatusCancelled && job.DeliveredAt == nil {
			jobs = append(jobs, job.Clone())
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].UpdatedAt.Before(jobs[j].UpdatedAt) })
	return capJobs(jobs, limit), nil
}

// MarkDelivered records delivery bookkeeping
func (s *MemoryStore) MarkDelivered(_ context.Context, id, reportURI string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	job.DeliveredAt = &now
	job.ReportURI = reportURI
	job.UpdatedAt = now
	return nil
}

// ListEvents retrieves the transition events for a job, newest first
func (s *MemoryStore) ListEvents(_ context.Context, jobID string, limit int) ([]models.JobEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.events[jobID]
	out := make([]models.JobEvent, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		out = append(out, events[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) appendEventLocked(jobID string, from *models.JobStatus, to models.JobStatus, reason string) {
	s.eventID++
	s.events[jobID] = append(s.events[jobID], models.JobEvent{
		ID:         s.eventID,
		JobID:      jobID,
		At:         time.Now(),
		FromStatus: from,
		ToStatus:   to,
		Reason:     reason,
	})
}

func capJobs(jobs []*models.Job, limit int) []*models.Job {
	if limit > 0 && len(jobs) > limit {
		return jobs[:limit]
	}
	return jobs
}
