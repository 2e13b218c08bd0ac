package repository

import (
	"context"
	"database/sql"

	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
)

// EventRepository reads the job status transition log
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

var _ EventSource = (*EventRepository)(nil)

// ListEvents retrieves the transition events for a job, newest first
func (r *EventRepository) ListEvents(ctx context.Context, jobID string, limit int) ([]models.JobEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, job_id, at, from_status, to_status, reason
		FROM job_events
		WHERE job_id = $1
		ORDER BY at DESC, id DESC
		LIMIT $2
	`, jobID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.JobEvent
	for rows.Next() {
		var event models.JobEvent
		var fromStatus sql.NullString

		err := rows.Scan(
			&event.ID,
			&event.JobID,
			&event.At,
			&fromStatus,
			&event.ToStatus,
			&event.Reason,
		)
		if err != nil {
			return nil, err
		}
		if fromStatus.Valid {
			status := models.JobStatus(fromStatus.String)
			event.FromStatus = &status
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// insertEventTx appends a transition event inside the caller's transaction
func insertEventTx(ctx context.Context, tx *sql.Tx, jobID string, fromStatus *models.JobStatus, toStatus models.JobStatus, reason string) error {
	var from *string
	if fromStatus != nil {
		s := string(*fromStatus)
		from = &s
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO job_events (job_id, from_status, to_status, reason)
		VALUES ($1, $2, $3, $4)
	`, jobID, from, toStatus, reason)
	return err
}
