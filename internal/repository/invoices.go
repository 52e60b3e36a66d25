package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/craftbill/invoice-service/internal/models"
)

// CreateInvoice creates a new invoice in the database
func (r *Repository) CreateInvoice(invoice *models.Invoice) error {
	query := `
		INSERT INTO billing.invoices (user_id, client_id, job_id, number, currency, amount, issue_date, due_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, invoice.UserID, invoice.ClientID, invoice.JobID, invoice.Number,
		invoice.Currency, invoice.Amount, invoice.IssueDate, invoice.DueDate, invoice.Status).
		Scan(&invoice.ID, &invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// FindInvoiceByID retrieves an invoice by ID
func (r *Repository) FindInvoiceByID(id int64) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	query := `
		SELECT id, user_id, client_id, job_id, number, currency, amount, issue_date::text, due_date::text, status, paid_at, created_at, updated_at
		FROM billing.invoices
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&invoice.ID, &invoice.UserID, &invoice.ClientID, &invoice.JobID, &invoice.Number,
			&invoice.Currency, &invoice.Amount, &invoice.IssueDate, &invoice.DueDate,
			&invoice.Status, &invoice.PaidAt, &invoice.CreatedAt, &invoice.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invoice %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice: %w", err)
	}
	return invoice, nil
}

// ListInvoicesByUser retrieves all invoices owned by a user, newest first
func (r *Repository) ListInvoicesByUser(userID int64) ([]models.Invoice, error) {
	query := `
		SELECT id, user_id, client_id, job_id, number, currency, amount, issue_date::text, due_date::text, status, paid_at, created_at, updated_at
		FROM billing.invoices
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		var invoice models.Invoice
		if err := rows.Scan(&invoice.ID, &invoice.UserID, &invoice.ClientID, &invoice.JobID, &invoice.Number,
			&invoice.Currency, &invoice.Amount, &invoice.IssueDate, &invoice.DueDate,
			&invoice.Status, &invoice.PaidAt, &invoice.CreatedAt, &invoice.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}
	return invoices, nil
}

// CountInvoicesByUser returns the number of invoices a user has ever created,
// used to derive the next invoice number.
func (r *Repository) CountInvoicesByUser(userID int64) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM billing.invoices WHERE user_id = $1`
	if err := r.db.QueryRow(query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	return count, nil
}

// UpdateInvoiceStatus updates an invoice's status, stamping paid_at when paid
func (r *Repository) UpdateInvoiceStatus(id int64, status models.InvoiceStatus, paidAt *time.Time) error {
	query := `
		UPDATE billing.invoices
		SET status = $1, paid_at = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3`
	result, err := r.db.Exec(query, status, paidAt, id)
	if err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("invoice %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteInvoice removes an invoice and its payment schedules in one
// transaction.
func (r *Repository) DeleteInvoice(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM billing.payment_schedules WHERE invoice_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete payment schedules: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM billing.invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("invoice %d: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListOverdueInvoiceIDs returns IDs of sent invoices whose due date has
// passed.
func (r *Repository) ListOverdueInvoiceIDs(asOf string) ([]int64, error) {
	query := `
		SELECT id
		FROM billing.invoices
		WHERE status = $1 AND due_date < $2`
	rows, err := r.db.Query(query, models.InvoiceStatusSent, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue invoices: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan invoice id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate overdue invoices: %w", err)
	}
	return ids, nil
}
