package service

import (
	"context"
	"time"

	"github.com/craftbill/invoice-service/internal/models"
)

// CreateContract creates a draft contract for one of the user's clients
func (s *Service) CreateContract(ctx context.Context, clientID int64, title, body string) (*models.Contract, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.clientOwnedBy(userID, clientID); err != nil {
		return nil, err
	}

	contract := &models.Contract{
		ClientID: clientID,
		Title:    title,
		Body:     body,
		Status:   models.ContractStatusDraft,
	}

	if err := s.repo.CreateContract(contract); err != nil {
		return nil, err
	}

	s.log.Infof("Contract created for client %d: %s", clientID, contract.Title)
	return contract, nil
}

// ListContracts returns all contracts for one of the user's clients
func (s *Service) ListContracts(ctx context.Context, clientID int64) ([]models.Contract, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.clientOwnedBy(userID, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListContractsByClient(clientID)
}

// SendContract transitions a draft contract to sent
func (s *Service) SendContract(ctx context.Context, contractID int64) (*models.Contract, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	contract, err := s.contractOwnedBy(userID, contractID)
	if err != nil {
		return nil, err
	}
	if contract.Status != models.ContractStatusDraft {
		return nil, failf("only draft contracts can be sent")
	}

	now := time.Now()
	if err := s.repo.MarkContractSent(contractID, now); err != nil {
		return nil, err
	}
	contract.Status = models.ContractStatusSent
	contract.SentAt = &now

	s.log.Infof("Contract %d sent", contractID)
	return contract, nil
}

// SignContract records a signature on a sent contract
func (s *Service) SignContract(ctx context.Context, contractID int64, signedBy string) (*models.Contract, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	contract, err := s.contractOwnedBy(userID, contractID)
	if err != nil {
		return nil, err
	}
	if contract.Status != models.ContractStatusSent {
		return nil, failf("only sent contracts can be signed")
	}
	if signedBy == "" {
		return nil, failf("signer name is required")
	}

	now := time.Now()
	if err := s.repo.MarkContractSigned(contractID, signedBy, now); err != nil {
		return nil, err
	}
	contract.Status = models.ContractStatusSigned
	contract.SignedBy = signedBy
	contract.SignedAt = &now

	s.log.Infof("Contract %d signed by %s", contractID, signedBy)
	return contract, nil
}

func (s *Service) contractOwnedBy(userID, contractID int64) (*models.Contract, error) {
	contract, err := s.repo.FindContractByID(contractID)
	if err != nil {
		return nil, err
	}
	if _, err := s.clientOwnedBy(userID, contract.ClientID); err != nil {
		return nil, err
	}
	return contract, nil
}
