package repository

import (
	"database/sql"
	"fmt"

	"github.com/craftbill/invoice-service/internal/models"
)

// CreateJob creates a new job for a client
func (r *Repository) CreateJob(job *models.Job) error {
	query := `
		INSERT INTO billing.jobs (client_id, title, description, status, rate, rate_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, job.ClientID, job.Title, job.Description, job.Status, job.Rate, job.RateType).
		Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// FindJobByID retrieves a job by ID
func (r *Repository) FindJobByID(id int64) (*models.Job, error) {
	job := &models.Job{}
	query := `
		SELECT id, client_id, title, description, status, rate, rate_type, created_at, updated_at
		FROM billing.jobs
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&job.ID, &job.ClientID, &job.Title, &job.Description, &job.Status,
			&job.Rate, &job.RateType, &job.CreatedAt, &job.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	return job, nil
}

// ListJobsByClient retrieves all jobs for a client, newest first
func (r *Repository) ListJobsByClient(clientID int64) ([]models.Job, error) {
	query := `
		SELECT id, client_id, title, description, status, rate, rate_type, created_at, updated_at
		FROM billing.jobs
		WHERE client_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var job models.Job
		if err := rows.Scan(&job.ID, &job.ClientID, &job.Title, &job.Description, &job.Status,
			&job.Rate, &job.RateType, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return jobs, nil
}

// UpdateJobStatus updates a job's status
func (r *Repository) UpdateJobStatus(id int64, status models.JobStatus) error {
	query := `
		UPDATE billing.jobs
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2`
	result, err := r.db.Exec(query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	return nil
}
