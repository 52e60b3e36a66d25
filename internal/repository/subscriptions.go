package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/craftbill/invoice-service/internal/models"
)

// CreateSubscription creates a new recurring billing plan
func (r *Repository) CreateSubscription(sub *models.Subscription) error {
	query := `
		INSERT INTO billing.subscriptions (client_id, title, amount, currency, frequency, next_run, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, sub.ClientID, sub.Title, sub.Amount, sub.Currency, sub.Frequency, sub.NextRun).
		Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// FindSubscriptionByID retrieves a subscription by ID
func (r *Repository) FindSubscriptionByID(id int64) (*models.Subscription, error) {
	sub := &models.Subscription{}
	query := `
		SELECT id, client_id, title, amount, currency, frequency, next_run, active, created_at, updated_at
		FROM billing.subscriptions
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&sub.ID, &sub.ClientID, &sub.Title, &sub.Amount, &sub.Currency, &sub.Frequency,
			&sub.NextRun, &sub.Active, &sub.CreatedAt, &sub.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("subscription %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}
	return sub, nil
}

// ListSubscriptionsByClient retrieves all subscriptions for a client
func (r *Repository) ListSubscriptionsByClient(clientID int64) ([]models.Subscription, error) {
	query := `
		SELECT id, client_id, title, amount, currency, frequency, next_run, active, created_at, updated_at
		FROM billing.subscriptions
		WHERE client_id = $1
		ORDER BY created_at DESC`
	return r.querySubscriptions(query, clientID)
}

// ListDueSubscriptions retrieves active subscriptions whose next run has
// passed.
func (r *Repository) ListDueSubscriptions(asOf time.Time) ([]models.Subscription, error) {
	query := `
		SELECT id, client_id, title, amount, currency, frequency, next_run, active, created_at, updated_at
		FROM billing.subscriptions
		WHERE active = TRUE AND next_run <= $1
		ORDER BY next_run`
	return r.querySubscriptions(query, asOf)
}

func (r *Repository) querySubscriptions(query string, args ...any) ([]models.Subscription, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		var sub models.Subscription
		if err := rows.Scan(&sub.ID, &sub.ClientID, &sub.Title, &sub.Amount, &sub.Currency, &sub.Frequency,
			&sub.NextRun, &sub.Active, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}
	return subs, nil
}

// AdvanceSubscription moves a subscription's next run forward
func (r *Repository) AdvanceSubscription(id int64, nextRun time.Time) error {
	query := `
		UPDATE billing.subscriptions
		SET next_run = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2`
	result, err := r.db.Exec(query, nextRun, id)
	if err != nil {
		return fmt.Errorf("failed to advance subscription: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to advance subscription: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("subscription %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeactivateSubscription stops a subscription from billing
func (r *Repository) DeactivateSubscription(id int64) error {
	query := `
		UPDATE billing.subscriptions
		SET active = FALSE, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate subscription: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to deactivate subscription: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("subscription %d: %w", id, ErrNotFound)
	}
	return nil
}
