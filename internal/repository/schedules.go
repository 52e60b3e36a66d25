package repository

import (
	"database/sql"
	"fmt"

	"github.com/craftbill/invoice-service/internal/allocation"
	"github.com/craftbill/invoice-service/internal/models"
)

// ListSchedulesByInvoice retrieves an invoice's payment schedules in
// insertion order.
func (r *Repository) ListSchedulesByInvoice(invoiceID int64) ([]allocation.Schedule, error) {
	query := `
		SELECT id, description, due_date::text, percentage, amount, status, COALESCE(payment_date::text, '')
		FROM billing.payment_schedules
		WHERE invoice_id = $1
		ORDER BY position`
	rows, err := r.db.Query(query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment schedules: %w", err)
	}
	defer rows.Close()

	var schedules []allocation.Schedule
	for rows.Next() {
		var s allocation.Schedule
		if err := rows.Scan(&s.ID, &s.Description, &s.DueDate, &s.Percentage, &s.Amount, &s.Status, &s.PaymentDate); err != nil {
			return nil, fmt.Errorf("failed to scan payment schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment schedules: %w", err)
	}
	return schedules, nil
}

// ReplaceSchedulesForInvoice atomically replaces an invoice's payment
// schedules with the given list, preserving its order.
func (r *Repository) ReplaceSchedulesForInvoice(invoiceID int64, schedules []allocation.Schedule) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM billing.payment_schedules WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("failed to clear payment schedules: %w", err)
	}

	insert := `
		INSERT INTO billing.payment_schedules (id, invoice_id, position, description, due_date, percentage, amount, status, payment_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`
	for i, s := range schedules {
		if _, err := tx.Exec(insert, s.ID, invoiceID, i, s.Description, s.DueDate, s.Percentage, s.Amount, s.Status, s.PaymentDate); err != nil {
			return fmt.Errorf("failed to insert payment schedule %s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// FindScheduleByInvoice retrieves a single payment schedule belonging to an
// invoice.
func (r *Repository) FindScheduleByInvoice(invoiceID int64, scheduleID string) (*allocation.Schedule, error) {
	s := &allocation.Schedule{}
	query := `
		SELECT id, description, due_date::text, percentage, amount, status, COALESCE(payment_date::text, '')
		FROM billing.payment_schedules
		WHERE invoice_id = $1 AND id = $2`
	err := r.db.QueryRow(query, invoiceID, scheduleID).
		Scan(&s.ID, &s.Description, &s.DueDate, &s.Percentage, &s.Amount, &s.Status, &s.PaymentDate)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payment schedule %s: %w", scheduleID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment schedule: %w", err)
	}
	return s, nil
}

// UpdateSchedule writes back an edited payment schedule
func (r *Repository) UpdateSchedule(invoiceID int64, s *allocation.Schedule) error {
	query := `
		UPDATE billing.payment_schedules
		SET due_date = $1, percentage = $2, amount = $3, status = $4, payment_date = NULLIF($5, ''), updated_at = CURRENT_TIMESTAMP
		WHERE invoice_id = $6 AND id = $7`
	result, err := r.db.Exec(query, s.DueDate, s.Percentage, s.Amount, s.Status, s.PaymentDate, invoiceID, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update payment schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update payment schedule: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("payment schedule %s: %w", s.ID, ErrNotFound)
	}
	return nil
}

// DeleteSchedule removes a payment schedule from an invoice
func (r *Repository) DeleteSchedule(invoiceID int64, scheduleID string) error {
	query := `DELETE FROM billing.payment_schedules WHERE invoice_id = $1 AND id = $2`
	result, err := r.db.Exec(query, invoiceID, scheduleID)
	if err != nil {
		return fmt.Errorf("failed to delete payment schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete payment schedule: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("payment schedule %s: %w", scheduleID, ErrNotFound)
	}
	return nil
}

// ListUnpaidSchedulesDueBy returns unpaid installments on sent or overdue
// invoices whose due date is on or before the deadline, joined with the
// client contact data needed for reminder emails.
func (r *Repository) ListUnpaidSchedulesDueBy(deadline string) ([]models.PaymentReminder, error) {
	query := `
		SELECT ps.id, i.id, i.number, c.name, c.email, ps.description, ps.due_date::text, ps.amount, i.currency
		FROM billing.payment_schedules ps
		JOIN billing.invoices i ON i.id = ps.invoice_id
		JOIN billing.clients c ON c.id = i.client_id
		WHERE ps.status = $1 AND ps.due_date <= $2 AND i.status IN ($3, $4)
		ORDER BY ps.due_date`
	rows, err := r.db.Query(query, allocation.StatusUnpaid, deadline,
		models.InvoiceStatusSent, models.InvoiceStatusOverdue)
	if err != nil {
		return nil, fmt.Errorf("failed to list due payment schedules: %w", err)
	}
	defer rows.Close()

	var reminders []models.PaymentReminder
	for rows.Next() {
		var rem models.PaymentReminder
		if err := rows.Scan(&rem.ScheduleID, &rem.InvoiceID, &rem.InvoiceNumber, &rem.ClientName,
			&rem.ClientEmail, &rem.Description, &rem.DueDate, &rem.Amount, &rem.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan payment reminder: %w", err)
		}
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment reminders: %w", err)
	}
	return reminders, nil
}
