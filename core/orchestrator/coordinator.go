package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Rehodra/AI-Youtube-Analyser/core/analysis"
	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
	"github.com/Rehodra/AI-Youtube-Analyser/core/repository"
)

// ChannelProvider is the external channel-metadata capability
type ChannelProvider interface {
	FetchChannel(ctx context.Context, identifier string) (*models.ChannelContext, error)
}

// Coordinator executes one job: metadata fetch first, then one capability
// call per requested module with bounded concurrency, then a single finalize
// after all tasks resolve.
type Coordinator struct {
	store           repository.Store
	registry        *analysis.Registry
	channels        ChannelProvider
	lifecycle       *Lifecycle
	maxInFlight     int
	metadataTimeout time.Duration
}

// NewCoordinator creates a new fan-out coordinator
func NewCoordinator(
	store repository.Store,
	registry *analysis.Registry,
	channels ChannelProvider,
	lifecycle *Lifecycle,
	maxInFlight int,
	metadataTimeout time.Duration,
) *Coordinator {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	return &Coordinator{
		store:           store,
		registry:        registry,
		channels:        channels,
		lifecycle:       lifecycle,
		maxInFlight:     maxInFlight,
		metadataTimeout: metadataTimeout,
	}
}

// Run drives a queued job to a terminal status. It never returns before every
// dispatched task has resolved and the terminal decision is written.
func (c *Coordinator) Run(ctx context.Context, job *models.Job) {
	if err := c.lifecycle.MarkRunning(ctx, job.ID); err != nil {
		// Typically a cancel that won the race while the job sat queued.
		log.Printf("job %s: not started: %v", job.ID, err)
		return
	}

	channelCtx, metaFailure := c.fetchMetadata(ctx, job)
	if metaFailure != nil {
		c.skipModules(ctx, job, "skipped: channel metadata unavailable")
		c.finalize(ctx, job.ID)
		return
	}

	// Re-read for a cancel that arrived during the metadata fetch; a
	// cancelled job dispatches no module tasks.
	fresh, err := c.store.GetByID(ctx, job.ID)
	if err == nil && fresh.Status == models.JobStatusCancelled {
		c.skipModules(ctx, job, "skipped: job cancelled")
		return
	}

	sem := make(chan struct{}, c.maxInFlight)
	var wg sync.WaitGroup
	for _, kind := range job.RequestedModules {
		wg.Add(1)
		go func(kind models.ModuleKind) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			c.runModuleTask(ctx, job.ID, kind, channelCtx)
		}(kind)
	}
	wg.Wait()

	c.finalize(ctx, job.ID)
}

// fetchMetadata resolves the channel context and records the metadata slot.
// Every job runs this before any module task; on failure the job
// short-circuits to failed without dispatching modules.
func (c *Coordinator) fetchMetadata(ctx context.Context, job *models.Job) (*models.ChannelContext, *analysis.Failure) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.metadataTimeout)
	defer cancel()

	channelCtx, err := c.channels.FetchChannel(fetchCtx, job.Channel)
	if err != nil {
		kind := models.FailureExternalError
		if errors.Is(err, context.DeadlineExceeded) {
			kind = models.FailureTimeout
		}
		f := &analysis.Failure{Kind: kind, Cause: err.Error()}
		c.writeSlot(ctx, job.ID, models.ModuleMetadata, analysis.Outcome{Failure: f})
		return nil, f
	}

	payload, err := json.Marshal(channelCtx)
	if err != nil {
		f := &analysis.Failure{Kind: models.FailureInvalidResponse, Cause: err.Error()}
		c.writeSlot(ctx, job.ID, models.ModuleMetadata, analysis.Outcome{Failure: f})
		return nil, f
	}
	c.writeSlot(ctx, job.ID, models.ModuleMetadata, analysis.Outcome{Payload: payload})
	return channelCtx, nil
}

// runModuleTask executes one capability call in isolation: no fault here may
// affect a sibling task, so panics are contained and every path resolves the
// task's own slot.
func (c *Coordinator) runModuleTask(ctx context.Context, jobID string, kind models.ModuleKind, channelCtx *models.ChannelContext) {
	defer func() {
		if r := recover(); r != nil {
			c.writeSlot(ctx, jobID, kind, analysis.Outcome{Failure: &analysis.Failure{
				Kind:  models.FailureExternalError,
				Cause: fmt.Sprintf("adapter panic: %v", r),
			}})
		}
	}()

	adapter, err := c.registry.Lookup(kind)
	if err != nil {
		c.writeSlot(ctx, jobID, kind, analysis.Outcome{Failure: &analysis.Failure{
			Kind:  models.FailureExternalError,
			Cause: err.Error(),
		}})
		return
	}

	outcome := adapter.Invoke(ctx, channelCtx)
	c.writeSlot(ctx, jobID, kind, outcome)
}

// skipModules resolves all still-pending module slots of a job that will not
// be dispatched, so terminal jobs always present a fully resolved slot map.
func (c *Coordinator) skipModules(ctx context.Context, job *models.Job, cause string) {
	for _, kind := range job.RequestedModules {
		c.writeSlot(ctx, job.ID, kind, analysis.Outcome{Failure: &analysis.Failure{
			Kind:  models.FailureExternalError,
			Cause: cause,
		}})
	}
}

func (c *Coordinator) writeSlot(ctx context.Context, jobID string, kind models.ModuleKind, outcome analysis.Outcome) {
	now := time.Now()
	slot := models.Slot{State: models.SlotSucceeded, Payload: outcome.Payload, FinishedAt: &now}
	if !outcome.Succeeded() {
		slot = models.Slot{
			State:        models.SlotFailed,
			ErrorKind:    outcome.Failure.Kind,
			ErrorMessage: outcome.Failure.Cause,
			FinishedAt:   &now,
		}
		log.Printf("job %s: module %s failed: %s", jobID, kind, outcome.Failure)
	}
	err := c.store.UpdateSlot(ctx, jobID, kind, slot)
	if err != nil && !errors.Is(err, repository.ErrConflict) {
		// A conflict means the slot was already resolved, typically by the
		// cancel path; the first write stands.
		log.Printf("job %s: failed to record %s slot: %v", jobID, kind, err)
	}
}

func (c *Coordinator) finalize(ctx context.Context, jobID string) {
	if err := c.lifecycle.Finalize(ctx, jobID); err != nil {
		log.Printf("job %s: finalize failed: %v", jobID, err)
	}
}
