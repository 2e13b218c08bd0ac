package delivery

import (
	"context"
	"log"
	"time"

	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
	"github.com/Rehodra/AI-Youtube-Analyser/core/repository"
	"github.com/Rehodra/AI-Youtube-Analyser/storage"
)

// Dispatcher watches for terminal jobs that have not been delivered, exports
// the report and sends the notification mail. Delivery is best-effort and
// never changes a job's status; a job is marked delivered even when the mail
// fails so it is not retried forever.
type Dispatcher struct {
	store    repository.Store
	exporter storage.ReportExporter
	sender   EmailSender
	interval time.Duration
}

// NewDispatcher creates a new delivery dispatcher
func NewDispatcher(store repository.Store, exporter storage.ReportExporter, sender EmailSender) *Dispatcher {
	return &Dispatcher{
		store:    store,
		exporter: exporter,
		sender:   sender,
		interval: 10 * time.Second,
	}
}

// Start runs the delivery loop until ctx is cancelled
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.deliverPending(ctx)
		}
	}
}

func (d *Dispatcher) deliverPending(ctx context.Context) {
	jobs, err := d.store.ListAwaitingDelivery(ctx, 20)
	if err != nil {
		log.Printf("failed to list jobs awaiting delivery: %v", err)
		return
	}
	for _, job := range jobs {
		d.deliver(ctx, job)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, job *models.Job) {
	// A failed job has no report worth exporting; mark it delivered so the
	// loop moves on.
	reportURI := ""
	if job.Status != models.JobStatusFailed {
		uri, err := d.exporter.Export(ctx, job)
		if err != nil {
			log.Printf("job %s: report export failed: %v", job.ID, err)
			return
		}
		reportURI = uri
		job.ReportURI = uri
	}

	if job.NotifyEmail != "" && d.sender != nil {
		if err := d.sender.Send(job.NotifyEmail, notificationSubject, buildNotificationBody(job)); err != nil {
			log.Printf("job %s: failed to send notification email: %v", job.ID, err)
		} else {
			log.Printf("job %s: notification sent to %s", job.ID, job.NotifyEmail)
		}
	}

	if err := d.store.MarkDelivered(ctx, job.ID, reportURI); err != nil {
		log.Printf("job %s: failed to mark delivered: %v", job.ID, err)
	}
}
