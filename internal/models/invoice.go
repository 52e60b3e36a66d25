package models

import "time"

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft    InvoiceStatus = "draft"
	InvoiceStatusSent     InvoiceStatus = "sent"
	InvoiceStatusPaid     InvoiceStatus = "paid"
	InvoiceStatusOverdue  InvoiceStatus = "overdue"
	InvoiceStatusWriteOff InvoiceStatus = "write-off"
)

// Invoice represents an invoice issued to a client. Its payment schedules
// divide the invoice amount into installments.
type Invoice struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	ClientID  int64         `json:"client_id"`
	JobID     *int64        `json:"job_id,omitempty"`
	Number    string        `json:"number"`
	Currency  string        `json:"currency"`
	Amount    float64       `json:"amount"`
	IssueDate string        `json:"issue_date"` // YYYY-MM-DD
	DueDate   string        `json:"due_date"`   // YYYY-MM-DD
	Status    InvoiceStatus `json:"status"`
	PaidAt    *time.Time    `json:"paid_at,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// InvoiceNotification pairs a newly issued invoice with the client contact
// data needed to announce it.
type InvoiceNotification struct {
	ClientName  string   `json:"client_name"`
	ClientEmail string   `json:"client_email"`
	Invoice     *Invoice `json:"invoice"`
}
