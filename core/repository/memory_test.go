package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
)

func createJob(t *testing.T, store *MemoryStore, owner string) *models.Job {
	t.Helper()
	modules := []models.ModuleKind{models.ModuleTitleEngine, models.ModuleCTRAnalysis}
	job := &models.Job{
		ID:               uuid.New().String(),
		OwnerID:          owner,
		Channel:          "@somechannel",
		RequestedModules: modules,
		Status:           models.JobStatusQueued,
		Slots:            models.NewJobSlots(modules),
	}
	require.NoError(t, store.Create(context.Background(), job))
	return job
}

func TestMemoryStore_SlotsAreWriteOnce(t *testing.T) {
	store := NewMemoryStore()
	job := createJob(t, store, "user-1")
	ctx := context.Background()

	slot := models.Slot{State: models.SlotSucceeded, Payload: []byte(`{"a":1}`)}
	require.NoError(t, store.UpdateSlot(ctx, job.ID, models.ModuleTitleEngine, slot))

	// A second write to the same slot loses, whatever it carries.
	overwrite := models.Slot{State: models.SlotFailed, ErrorKind: models.FailureTimeout}
	assert.ErrorIs(t, store.UpdateSlot(ctx, job.ID, models.ModuleTitleEngine, overwrite), ErrConflict)

	got, err := store.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SlotSucceeded, got.Slots[models.ModuleTitleEngine].State)
	assert.JSONEq(t, `{"a":1}`, string(got.Slots[models.ModuleTitleEngine].Payload))
}

func TestMemoryStore_UpdateSlot_UnknownSlot(t *testing.T) {
	store := NewMemoryStore()
	job := createJob(t, store, "user-1")

	err := store.UpdateSlot(context.Background(), job.ID, models.ModuleFairUse, models.Slot{State: models.SlotFailed})
	assert.ErrorIs(t, err, ErrConflict)

	err = store.UpdateSlot(context.Background(), "no-such-job", models.ModuleTitleEngine, models.Slot{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_UpdateStatus_CompareAndSwap(t *testing.T) {
	store := NewMemoryStore()
	job := createJob(t, store, "user-1")
	ctx := context.Background()

	require.NoError(t, store.UpdateStatus(ctx, job.ID, models.JobStatusQueued, models.JobStatusRunning, "started"))

	// A stale writer expecting the old status loses.
	err := store.UpdateStatus(ctx, job.ID, models.JobStatusQueued, models.JobStatusCancelled, "stale")
	assert.ErrorIs(t, err, ErrConflict)

	got, err := store.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusRunning, got.Status)
}

func TestMemoryStore_SnapshotsAreIsolated(t *testing.T) {
	store := NewMemoryStore()
	job := createJob(t, store, "user-1")

	got, err := store.GetByID(context.Background(), job.ID)
	require.NoError(t, err)

	// Mutating a snapshot must not leak into the store.
	got.Status = models.JobStatusFailed
	got.Slots[models.ModuleTitleEngine] = models.Slot{State: models.SlotFailed}

	fresh, err := store.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusQueued, fresh.Status)
	assert.Equal(t, models.SlotPending, fresh.Slots[models.ModuleTitleEngine].State)
}

func TestMemoryStore_ListByOwner(t *testing.T) {
	store := NewMemoryStore()
	createJob(t, store, "user-1")
	createJob(t, store, "user-1")
	createJob(t, store, "user-2")

	jobs, err := store.ListByOwner(context.Background(), "user-1", 10)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	jobs, err = store.ListByOwner(context.Background(), "user-1", 1)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestMemoryStore_DeliveryLifecycle(t *testing.T) {
	store := NewMemoryStore()
	job := createJob(t, store, "user-1")
	ctx := context.Background()

	pending, err := store.ListAwaitingDelivery(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "non-terminal jobs are not deliverable")

	require.NoError(t, store.UpdateStatus(ctx, job.ID, models.JobStatusQueued, models.JobStatusRunning, "started"))
	require.NoError(t, store.UpdateStatus(ctx, job.ID, models.JobStatusRunning, models.JobStatusCompleted, "done"))

	pending, err = store.ListAwaitingDelivery(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, job.ID, pending[0].ID)

	require.NoError(t, store.MarkDelivered(ctx, job.ID, "s3://bucket/reports/x.md"))

	pending, err = store.ListAwaitingDelivery(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	got, err := store.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/reports/x.md", got.ReportURI)
	assert.NotNil(t, got.DeliveredAt)
}

func TestMemoryStore_Events(t *testing.T) {
	store := NewMemoryStore()
	job := createJob(t, store, "user-1")
	ctx := context.Background()

	require.NoError(t, store.UpdateStatus(ctx, job.ID, models.JobStatusQueued, models.JobStatusRunning, "metadata_fetch_started"))
	require.NoError(t, store.UpdateStatus(ctx, job.ID, models.JobStatusRunning, models.JobStatusCompleted, "all_modules_succeeded"))

	events, err := store.ListEvents(ctx, job.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Newest first.
	assert.Equal(t, models.JobStatusCompleted, events[0].ToStatus)
	assert.Equal(t, "all_modules_succeeded", events[0].Reason)
	assert.Equal(t, models.JobStatusQueued, events[2].ToStatus)
	assert.Nil(t, events[2].FromStatus)
}
