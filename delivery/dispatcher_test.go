package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
	"github.com/Rehodra/AI-Youtube-Analyser/core/repository"
)

type fakeExporter struct {
	uri   string
	err   error
	calls int
}

func (e *fakeExporter) Export(_ context.Context, job *models.Job) (string, error) {
	e.calls++
	if e.err != nil {
		return "", e.err
	}
	return e.uri, nil
}

type fakeSender struct {
	to      string
	subject string
	body    string
	err     error
	calls   int
}

func (s *fakeSender) Send(to, subject, body string) error {
	s.calls++
	s.to, s.subject, s.body = to, subject, body
	return s.err
}

func terminalJob(t *testing.T, store *repository.MemoryStore, status models.JobStatus) *models.Job {
	t.Helper()
	modules := []models.ModuleKind{models.ModuleCTRAnalysis}
	job := &models.Job{
		ID:               uuid.New().String(),
		OwnerID:          "user-1",
		Channel:          "@somechannel",
		RequestedModules: modules,
		Status:           models.JobStatusQueued,
		Slots:            models.NewJobSlots(modules),
		NotifyEmail:      "creator@example.com",
	}
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, job))
	require.NoError(t, store.UpdateSlot(ctx, job.ID, models.ModuleMetadata,
		models.Slot{State: models.SlotSucceeded, Payload: []byte(`{"channel_id":"UC1"}`)}))
	require.NoError(t, store.UpdateSlot(ctx, job.ID, models.ModuleCTRAnalysis,
		models.Slot{State: models.SlotSucceeded, Payload: []byte(`{"score": 7.2, "reasoning": "solid thumbnails"}`)}))
	require.NoError(t, store.UpdateStatus(ctx, job.ID, models.JobStatusQueued, models.JobStatusRunning, "started"))
	require.NoError(t, store.UpdateStatus(ctx, job.ID, models.JobStatusRunning, status, "finished"))
	return job
}

func TestDeliverPending_ExportsAndNotifies(t *testing.T) {
	store := repository.NewMemoryStore()
	job := terminalJob(t, store, models.JobStatusCompleted)

	exporter := &fakeExporter{uri: "s3://reports/x.md"}
	sender := &fakeSender{}
	d := NewDispatcher(store, exporter, sender)

	d.deliverPending(context.Background())

	assert.Equal(t, 1, exporter.calls)
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "creator@example.com", sender.to)
	assert.Contains(t, sender.body, "s3://reports/x.md")
	assert.Contains(t, sender.body, "CTR potential score: 7.2/10")

	got, err := store.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.DeliveredAt)
	assert.Equal(t, "s3://reports/x.md", got.ReportURI)

	// A second sweep finds nothing to do.
	d.deliverPending(context.Background())
	assert.Equal(t, 1, exporter.calls)
}

func TestDeliverPending_FailedJobSkipsExport(t *testing.T) {
	store := repository.NewMemoryStore()
	job := terminalJob(t, store, models.JobStatusFailed)

	exporter := &fakeExporter{uri: "s3://reports/x.md"}
	sender := &fakeSender{}
	NewDispatcher(store, exporter, sender).deliverPending(context.Background())

	assert.Equal(t, 0, exporter.calls, "no report for a failed job")
	assert.Equal(t, 1, sender.calls, "the user still hears about the failure")

	got, err := store.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.DeliveredAt)
	assert.Empty(t, got.ReportURI)
}

func TestDeliverPending_ExportFailureRetriesLater(t *testing.T) {
	store := repository.NewMemoryStore()
	job := terminalJob(t, store, models.JobStatusCompleted)

	exporter := &fakeExporter{err: errors.New("bucket unavailable")}
	NewDispatcher(store, exporter, &fakeSender{}).deliverPending(context.Background())

	got, err := store.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DeliveredAt, "job stays pending for the next sweep")
}

func TestBuildNotificationBody(t *testing.T) {
	job := &models.Job{
		Channel:          "@somechannel",
		Status:           models.JobStatusPartial,
		RequestedModules: []models.ModuleKind{models.ModuleCopyrightScan, models.ModuleTitleEngine},
		Slots: map[models.ModuleKind]models.Slot{
			models.ModuleCopyrightScan: {
				State:   models.SlotSucceeded,
				Payload: []byte(`{"risk_level":"MEDIUM","assessment":"some flags"}`),
			},
			models.ModuleTitleEngine: {
				State:        models.SlotFailed,
				ErrorKind:    models.FailureTimeout,
				ErrorMessage: "timed out",
			},
		},
		ReportURI: "s3://reports/y.md",
	}

	body := buildNotificationBody(job)
	assert.Contains(t, body, "@somechannel")
	assert.Contains(t, body, "some modules completed")
	assert.Contains(t, body, "Copyright risk level: MEDIUM")
	assert.Contains(t, body, "s3://reports/y.md")
}
