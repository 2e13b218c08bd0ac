package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
	"github.com/Rehodra/AI-Youtube-Analyser/core/repository"
)

// Lifecycle owns the job state machine. It is the only writer of job status;
// module tasks write only their own result slot.
//
//	queued -> running -> {completed, partially_completed, failed}
//	queued/running -> cancelled
type Lifecycle struct {
	store repository.Store
}

// NewLifecycle creates a new lifecycle manager
func NewLifecycle(store repository.Store) *Lifecycle {
	return &Lifecycle{store: store}
}

// MarkRunning transitions a job from queued to running as the metadata fetch
// begins
func (l *Lifecycle) MarkRunning(ctx context.Context, jobID string) error {
	return l.store.UpdateStatus(ctx, jobID, models.JobStatusQueued, models.JobStatusRunning, "metadata_fetch_started")
}

// Cancel transitions a job to cancelled. Only queued and running jobs may be
// cancelled; in-flight capability calls are not aborted, but no new module
// task is dispatched for a cancelled job.
func (l *Lifecycle) Cancel(ctx context.Context, jobID string) error {
	job, err := l.store.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		return repository.ErrConflict
	}
	if err := l.store.UpdateStatus(ctx, jobID, job.Status, models.JobStatusCancelled, "user_cancelled"); err != nil {
		return err
	}

	// Cancelled is terminal, so the slot map must still end up fully
	// resolved for pollers. Slots a task already wrote keep their result;
	// the write-once guard settles any race with in-flight tasks.
	l.resolveSkippedSlots(ctx, job)
	return nil
}

// resolveSkippedSlots fails every still-pending slot of a cancelled job with
// a stable skip cause
func (l *Lifecycle) resolveSkippedSlots(ctx context.Context, job *models.Job) {
	now := time.Now()
	for kind, slot := range job.Slots {
		if slot.State != models.SlotPending {
			continue
		}
		err := l.store.UpdateSlot(ctx, job.ID, kind, models.Slot{
			State:        models.SlotFailed,
			ErrorKind:    models.FailureExternalError,
			ErrorMessage: "skipped: job cancelled",
			FinishedAt:   &now,
		})
		if err != nil && !errors.Is(err, repository.ErrConflict) {
			log.Printf("job %s: failed to resolve %s slot on cancel: %v", job.ID, kind, err)
		}
	}
}

// Finalize computes the terminal status from the full set of slot outcomes
// and writes it exactly once. It must only be called after the join barrier,
// when every slot is non-pending.
func (l *Lifecycle) Finalize(ctx context.Context, jobID string) error {
	job, err := l.store.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		// Lost against a concurrent cancel; the terminal decision stands.
		return nil
	}
	if !job.AllSlotsResolved() {
		return fmt.Errorf("finalize called on job %s with pending slots", jobID)
	}

	status, reason := decideTerminal(job)
	err = l.store.UpdateStatus(ctx, jobID, job.Status, status, reason)
	if errors.Is(err, repository.ErrConflict) {
		// A cancel raced the finalize write. Terminal states never
		// transition again, so the stored state wins.
		log.Printf("job %s: finalize superseded by concurrent transition", jobID)
		return nil
	}
	return err
}

// decideTerminal aggregates slot outcomes into the terminal status
func decideTerminal(job *models.Job) (models.JobStatus, string) {
	if job.Slots[models.ModuleMetadata].State != models.SlotSucceeded {
		return models.JobStatusFailed, "metadata_fetch_failed"
	}

	succeeded := 0
	for _, kind := range job.RequestedModules {
		if job.Slots[kind].State == models.SlotSucceeded {
			succeeded++
		}
	}

	switch {
	case succeeded == len(job.RequestedModules):
		return models.JobStatusCompleted, "all_modules_succeeded"
	case succeeded == 0:
		return models.JobStatusFailed, "all_modules_failed"
	default:
		return models.JobStatusPartial, "some_modules_failed"
	}
}
