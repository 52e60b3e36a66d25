package service

import (
	"context"

	"github.com/craftbill/invoice-service/internal/models"
)

// CreateClient creates a new client for the authenticated user
func (s *Service) CreateClient(ctx context.Context, name, email, phone, address string) (*models.Client, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	client := &models.Client{
		UserID:  userID,
		Name:    name,
		Email:   email,
		Phone:   phone,
		Address: address,
	}

	if err := s.repo.CreateClient(client); err != nil {
		return nil, err
	}

	s.log.Infof("Client created for user %d: %s", userID, client.Name)
	return client, nil
}

// ListClients returns the authenticated user's active clients
func (s *Service) ListClients(ctx context.Context) ([]models.Client, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListClientsByUser(userID)
}

// GetClient returns one of the authenticated user's clients
func (s *Service) GetClient(ctx context.Context, clientID int64) (*models.Client, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.clientOwnedBy(userID, clientID)
}

// UpdateClient updates a client's contact fields
func (s *Service) UpdateClient(ctx context.Context, clientID int64, name, email, phone, address string) (*models.Client, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	client, err := s.clientOwnedBy(userID, clientID)
	if err != nil {
		return nil, err
	}

	client.Name = name
	client.Email = email
	client.Phone = phone
	client.Address = address
	if err := s.repo.UpdateClient(client); err != nil {
		return nil, err
	}

	s.log.Infof("Client %d updated", client.ID)
	return client, nil
}

// ArchiveClient hides a client from listings without deleting its history
func (s *Service) ArchiveClient(ctx context.Context, clientID int64) error {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return err
	}

	if _, err := s.clientOwnedBy(userID, clientID); err != nil {
		return err
	}

	if err := s.repo.ArchiveClient(clientID); err != nil {
		return err
	}

	s.log.Infof("Client %d archived", clientID)
	return nil
}
