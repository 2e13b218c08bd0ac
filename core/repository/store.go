package repository

import (
	"context"
	"errors"

	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
)

var (
	// ErrNotFound indicates the job id is unknown
	ErrNotFound = errors.New("job not found")

	// ErrConflict indicates a guarded write lost against the current state
	// (status transition from a stale status, or a second write to a
	// non-pending slot)
	ErrConflict = errors.New("job state conflict")
)

// Store is the job state store contract the orchestration core runs against.
// All operations are atomic per job id and reads observe the latest committed
// write. Implemented by JobRepository (Postgres) and MemoryStore.
type Store interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id string) (*models.Job, error)

	// UpdateSlot writes one result slot. Slots are write-once: a second
	// write to a non-pending slot fails with ErrConflict.
	UpdateSlot(ctx context.Context, id string, kind models.ModuleKind, slot models.Slot) error

	// UpdateStatus transitions status from -> to, failing with ErrConflict
	// when the stored status no longer matches from.
	UpdateStatus(ctx context.Context, id string, from, to models.JobStatus, reason string) error

	ListByStatus(ctx context.Context, status models.JobStatus, limit int) ([]*models.Job, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*models.Job, error)

	// Delivery bookkeeping, outside the orchestration core: terminal jobs
	// not yet picked up by the delivery path, and the mark that closes them.
	ListAwaitingDelivery(ctx context.Context, limit int) ([]*models.Job, error)
	MarkDelivered(ctx context.Context, id, reportURI string) error
}

// EventSource exposes the status transition log of a job
type EventSource interface {
	ListEvents(ctx context.Context, jobID string, limit int) ([]models.JobEvent, error)
}
