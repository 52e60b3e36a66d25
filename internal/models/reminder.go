package models

// PaymentReminder is a due or overdue installment joined with the data
// needed to notify the client.
type PaymentReminder struct {
	ScheduleID    string  `json:"schedule_id"`
	InvoiceID     int64   `json:"invoice_id"`
	InvoiceNumber string  `json:"invoice_number"`
	ClientName    string  `json:"client_name"`
	ClientEmail   string  `json:"client_email"`
	Description   string  `json:"description"`
	DueDate       string  `json:"due_date"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Overdue       bool    `json:"overdue"`
}
