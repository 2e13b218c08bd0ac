package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
	"github.com/Rehodra/AI-Youtube-Analyser/core/repository"
)

func newTestEngine(store *repository.MemoryStore, capacity int) *Engine {
	provider := &stubProvider{channel: testChannel()}
	coordinator := newTestCoordinator(store, provider,
		succeedingAdapter(models.ModuleTitleEngine),
		succeedingAdapter(models.ModuleCTRAnalysis),
	)
	return NewEngine(store, coordinator, coordinator.lifecycle, 2, capacity)
}

func validRequest() SubmitRequest {
	return SubmitRequest{
		OwnerID: "user-1",
		Channel: "@testchannel",
		Modules: []models.ModuleKind{models.ModuleTitleEngine},
	}
}

func TestSubmit_Validation(t *testing.T) {
	store := repository.NewMemoryStore()
	engine := newTestEngine(store, 10)

	tests := []struct {
		name   string
		mutate func(*SubmitRequest)
	}{
		{"empty module set", func(r *SubmitRequest) { r.Modules = nil }},
		{"unknown module", func(r *SubmitRequest) { r.Modules = []models.ModuleKind{"sentiment"} }},
		{"malformed channel", func(r *SubmitRequest) { r.Channel = "bad channel!!" }},
		{"empty channel", func(r *SubmitRequest) { r.Channel = "" }},
		{"missing owner", func(r *SubmitRequest) { r.OwnerID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			_, err := engine.Submit(context.Background(), req)
			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}

	// Rejected submissions must leave no job record behind.
	jobs, err := store.ListByOwner(context.Background(), "user-1", 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestSubmit_CreatesQueuedJob(t *testing.T) {
	store := repository.NewMemoryStore()
	engine := newTestEngine(store, 10)

	req := validRequest()
	req.Modules = []models.ModuleKind{
		models.ModuleTitleEngine, models.ModuleCTRAnalysis, models.ModuleTitleEngine,
	}
	job, err := engine.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.JobStatusQueued, job.Status)

	// Duplicates collapse to one slot per module.
	assert.Equal(t, []models.ModuleKind{models.ModuleTitleEngine, models.ModuleCTRAnalysis},
		job.RequestedModules)
	assert.Len(t, job.Slots, 3) // metadata + two modules
	for _, slot := range job.Slots {
		assert.Equal(t, models.SlotPending, slot.State)
	}
}

func TestSubmit_CapacityExceeded(t *testing.T) {
	store := repository.NewMemoryStore()
	engine := newTestEngine(store, 1)

	_, err := engine.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = engine.Submit(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestGetJob_OwnershipHidesForeignJobs(t *testing.T) {
	store := repository.NewMemoryStore()
	engine := newTestEngine(store, 10)

	job, err := engine.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = engine.GetJob(context.Background(), job.ID, "someone-else")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := engine.GetJob(context.Background(), job.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
}

func TestCancel(t *testing.T) {
	store := repository.NewMemoryStore()
	engine := newTestEngine(store, 10)

	job, err := engine.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	t.Run("foreign job", func(t *testing.T) {
		err := engine.Cancel(context.Background(), job.ID, "someone-else")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("queued job", func(t *testing.T) {
		require.NoError(t, engine.Cancel(context.Background(), job.ID, "user-1"))
		got, err := engine.GetJob(context.Background(), job.ID, "user-1")
		require.NoError(t, err)
		assert.Equal(t, models.JobStatusCancelled, got.Status)

		// The never-dispatched slots resolve as skipped failures so the
		// terminal snapshot carries no pending slot.
		require.True(t, got.AllSlotsResolved())
		assert.Contains(t, got.Slots[models.ModuleTitleEngine].ErrorMessage, "skipped")
	})

	t.Run("already terminal", func(t *testing.T) {
		err := engine.Cancel(context.Background(), job.ID, "user-1")
		assert.ErrorIs(t, err, repository.ErrConflict)
	})
}

func TestEngine_RunsSubmittedJobToCompletion(t *testing.T) {
	store := repository.NewMemoryStore()
	engine := newTestEngine(store, 10)
	engine.pollInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine.Start(ctx)

	req := validRequest()
	req.Modules = []models.ModuleKind{models.ModuleTitleEngine, models.ModuleCTRAnalysis}
	job, err := engine.Submit(ctx, req)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := engine.GetJob(ctx, job.ID, "user-1")
		return err == nil && got.Status.IsTerminal()
	}, 2*time.Second, 20*time.Millisecond)

	got, err := engine.GetJob(ctx, job.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	assert.True(t, got.AllSlotsResolved())
}

func TestEngine_RequeuesQueuedJobsOnStart(t *testing.T) {
	store := repository.NewMemoryStore()

	// A job left queued by a previous process.
	orphan := newQueuedJob(t, store, models.ModuleTitleEngine)

	engine := newTestEngine(store, 10)
	engine.pollInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine.Start(ctx)

	require.Eventually(t, func() bool {
		got, err := store.GetByID(ctx, orphan.ID)
		return err == nil && got.Status.IsTerminal()
	}, 2*time.Second, 20*time.Millisecond)
}
