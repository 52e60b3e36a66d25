package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/craftbill/invoice-service/internal/models"
)

// CreateContract creates a new contract for a client
func (r *Repository) CreateContract(contract *models.Contract) error {
	query := `
		INSERT INTO billing.contracts (client_id, title, body, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, contract.ClientID, contract.Title, contract.Body, contract.Status).
		Scan(&contract.ID, &contract.CreatedAt, &contract.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contract: %w", err)
	}
	return nil
}

// FindContractByID retrieves a contract by ID
func (r *Repository) FindContractByID(id int64) (*models.Contract, error) {
	contract := &models.Contract{}
	var signedBy sql.NullString
	query := `
		SELECT id, client_id, title, body, status, signed_by, sent_at, signed_at, created_at, updated_at
		FROM billing.contracts
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&contract.ID, &contract.ClientID, &contract.Title, &contract.Body, &contract.Status,
			&signedBy, &contract.SentAt, &contract.SignedAt, &contract.CreatedAt, &contract.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("contract %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find contract: %w", err)
	}
	contract.SignedBy = signedBy.String
	return contract, nil
}

// ListContractsByClient retrieves all contracts for a client, newest first
func (r *Repository) ListContractsByClient(clientID int64) ([]models.Contract, error) {
	query := `
		SELECT id, client_id, title, body, status, signed_by, sent_at, signed_at, created_at, updated_at
		FROM billing.contracts
		WHERE client_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []models.Contract
	for rows.Next() {
		var contract models.Contract
		var signedBy sql.NullString
		if err := rows.Scan(&contract.ID, &contract.ClientID, &contract.Title, &contract.Body, &contract.Status,
			&signedBy, &contract.SentAt, &contract.SignedAt, &contract.CreatedAt, &contract.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contract.SignedBy = signedBy.String
		contracts = append(contracts, contract)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contracts: %w", err)
	}
	return contracts, nil
}

// MarkContractSent stamps a contract as sent
func (r *Repository) MarkContractSent(id int64, sentAt time.Time) error {
	query := `
		UPDATE billing.contracts
		SET status = $1, sent_at = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3`
	result, err := r.db.Exec(query, models.ContractStatusSent, sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark contract sent: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark contract sent: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("contract %d: %w", id, ErrNotFound)
	}
	return nil
}

// MarkContractSigned stamps a contract as signed
func (r *Repository) MarkContractSigned(id int64, signedBy string, signedAt time.Time) error {
	query := `
		UPDATE billing.contracts
		SET status = $1, signed_by = $2, signed_at = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4`
	result, err := r.db.Exec(query, models.ContractStatusSigned, signedBy, signedAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark contract signed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark contract signed: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("contract %d: %w", id, ErrNotFound)
	}
	return nil
}
