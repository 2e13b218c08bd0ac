package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
)

// JobRepository is the Postgres-backed job state store
type JobRepository struct {
	db *DB
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

var _ Store = (*JobRepository)(nil)

// Create inserts a new job record together with its initial event
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	slotsJSON, err := json.Marshal(job.Slots)
	if err != nil {
		return err
	}

	modules := make([]string, len(job.RequestedModules))
	for i, kind := range job.RequestedModules {
		modules[i] = string(kind)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO jobs (
			id, owner_id, channel, requested_modules, status, slots,
			notify_email, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	now := time.Now()
	_, err = tx.ExecContext(ctx, query,
		job.ID,
		job.OwnerID,
		job.Channel,
		pq.Array(modules),
		job.Status,
		slotsJSON,
		job.NotifyEmail,
		now,
		now,
	)
	if err != nil {
		return err
	}

	if err := insertEventTx(ctx, tx, job.ID, nil, job.Status, "job_submitted"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	job.CreatedAt = now
	job.UpdatedAt = now
	return nil
}

const jobColumns = `id, owner_id, channel, requested_modules, status, slots,
	notify_email, report_uri, created_at, updated_at, delivered_at`

// GetByID retrieves a job by id
func (r *JobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	return scanJob(row)
}

// UpdateSlot writes one result slot inside the slots document. The guard on
// the current slot state keeps slots write-once.
func (r *JobRepository) UpdateSlot(ctx context.Context, id string, kind models.ModuleKind, slot models.Slot) error {
	slotJSON, err := json.Marshal(slot)
	if err != nil {
		return err
	}

	query := `
		UPDATE jobs
		SET slots = jsonb_set(slots, ARRAY[$2], $3::jsonb), updated_at = NOW()
		WHERE id = $1 AND slots->$2->>'state' = 'pending'
	`
	res, err := r.db.ExecContext(ctx, query, id, string(kind), slotJSON)
	if err != nil {
		return err
	}
	return requireRow(ctx, r.db, res, id)
}

// UpdateStatus transitions the job status atomically with event logging
func (r *JobRepository) UpdateStatus(ctx context.Context, id string, from, to models.JobStatus, reason string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE jobs SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		to, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM jobs WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}

	if err := insertEventTx(ctx, tx, id, &from, to, reason); err != nil {
		return err
	}
	return tx.Commit()
}

// ListByStatus lists jobs in a given status, oldest first
func (r *JobRepository) ListByStatus(ctx context.Context, status models.JobStatus, limit int) ([]*models.Job, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status = $1 ORDER BY created_at ASC LIMIT $2`,
		status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// ListByOwner lists a user's jobs, newest first
func (r *JobRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*models.Job, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2`,
		ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// ListAwaitingDelivery lists terminal jobs (excluding cancelled) the delivery
// path has not processed yet
func (r *JobRepository) ListAwaitingDelivery(ctx context.Context, limit int) ([]*models.Job, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE status IN ($1, $2, $3) AND delivered_at IS NULL
		 ORDER BY updated_at ASC LIMIT $4`,
		models.JobStatusCompleted, models.JobStatusPartial, models.JobStatusFailed, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// MarkDelivered records delivery bookkeeping for a terminal job
func (r *JobRepository) MarkDelivered(ctx context.Context, id, reportURI string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET delivered_at = NOW(), report_uri = $2, updated_at = NOW() WHERE id = $1`,
		id, reportURI)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*models.Job, error) {
	var job models.Job
	var modules pq.StringArray
	var slotsJSON []byte
	var reportURI sql.NullString
	var deliveredAt sql.NullTime

	err := row.Scan(
		&job.ID,
		&job.OwnerID,
		&job.Channel,
		&modules,
		&job.Status,
		&slotsJSON,
		&job.NotifyEmail,
		&reportURI,
		&job.CreatedAt,
		&job.UpdatedAt,
		&deliveredAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	job.RequestedModules = make([]models.ModuleKind, len(modules))
	for i, m := range modules {
		job.RequestedModules[i] = models.ModuleKind(m)
	}
	if err := json.Unmarshal(slotsJSON, &job.Slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots for job %s: %w", job.ID, err)
	}
	if reportURI.Valid {
		job.ReportURI = reportURI.String
	}
	if deliveredAt.Valid {
		job.DeliveredAt = &deliveredAt.Time
	}
	return &job, nil
}

func scanJobs(rows *sql.Rows) ([]*models.Job, error) {
	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// requireRow distinguishes a missing job from a guarded write that lost
func requireRow(ctx context.Context, db *DB, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists bool
	if err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM jobs WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConflict
}
