package service

import (
	"context"

	"github.com/craftbill/invoice-service/internal/models"
)

// CreateJob creates a new job under one of the user's clients
func (s *Service) CreateJob(ctx context.Context, clientID int64, title, description, rateType string, rate float64) (*models.Job, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.clientOwnedBy(userID, clientID); err != nil {
		return nil, err
	}

	job := &models.Job{
		ClientID:    clientID,
		Title:       title,
		Description: description,
		Status:      models.JobStatusActive,
		Rate:        rate,
		RateType:    rateType,
	}

	if err := s.repo.CreateJob(job); err != nil {
		return nil, err
	}

	s.log.Infof("Job created for client %d: %s", clientID, job.Title)
	return job, nil
}

// ListJobs returns all jobs for one of the user's clients
func (s *Service) ListJobs(ctx context.Context, clientID int64) ([]models.Job, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.clientOwnedBy(userID, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListJobsByClient(clientID)
}

// CompleteJob marks a job as completed
func (s *Service) CompleteJob(ctx context.Context, jobID int64) error {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return err
	}

	job, err := s.repo.FindJobByID(jobID)
	if err != nil {
		return err
	}
	if _, err := s.clientOwnedBy(userID, job.ClientID); err != nil {
		return err
	}

	if err := s.repo.UpdateJobStatus(jobID, models.JobStatusCompleted); err != nil {
		return err
	}

	s.log.Infof("Job %d completed", jobID)
	return nil
}
