package repository

import (
	"database/sql"
	"fmt"

	"github.com/craftbill/invoice-service/internal/models"
)

// CreateClient creates a new client in the database
func (r *Repository) CreateClient(client *models.Client) error {
	query := `
		INSERT INTO billing.clients (user_id, name, email, phone, address, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, client.UserID, client.Name, client.Email, client.Phone, client.Address).
		Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// FindClientByID retrieves a client by ID
func (r *Repository) FindClientByID(id int64) (*models.Client, error) {
	client := &models.Client{}
	query := `
		SELECT id, user_id, name, email, phone, address, archived, created_at, updated_at
		FROM billing.clients
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&client.ID, &client.UserID, &client.Name, &client.Email, &client.Phone,
			&client.Address, &client.Archived, &client.CreatedAt, &client.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("client %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return client, nil
}

// ListClientsByUser retrieves all non-archived clients owned by a user
func (r *Repository) ListClientsByUser(userID int64) ([]models.Client, error) {
	query := `
		SELECT id, user_id, name, email, phone, address, archived, created_at, updated_at
		FROM billing.clients
		WHERE user_id = $1 AND archived = FALSE
		ORDER BY name`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var client models.Client
		if err := rows.Scan(&client.ID, &client.UserID, &client.Name, &client.Email, &client.Phone,
			&client.Address, &client.Archived, &client.CreatedAt, &client.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clients: %w", err)
	}
	return clients, nil
}

// UpdateClient updates a client's contact fields
func (r *Repository) UpdateClient(client *models.Client) error {
	query := `
		UPDATE billing.clients
		SET name = $1, email = $2, phone = $3, address = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
		RETURNING updated_at`
	err := r.db.QueryRow(query, client.Name, client.Email, client.Phone, client.Address, client.ID).
		Scan(&client.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("client %d: %w", client.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return nil
}

// ArchiveClient marks a client as archived
func (r *Repository) ArchiveClient(id int64) error {
	query := `
		UPDATE billing.clients
		SET archived = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to archive client: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to archive client: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("client %d: %w", id, ErrNotFound)
	}
	return nil
}
