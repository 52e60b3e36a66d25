package service

import (
	"context"
	"time"

	"github.com/craftbill/invoice-service/internal/models"
	"github.com/craftbill/invoice-service/internal/utils"
)

// CreateInvoice creates a draft invoice for one of the user's clients. The
// invoice number is derived from the user's invoice count.
func (s *Service) CreateInvoice(ctx context.Context, clientID int64, jobID *int64, currency string, amount float64, issueDate, dueDate string) (*models.Invoice, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.clientOwnedBy(userID, clientID); err != nil {
		return nil, err
	}
	if jobID != nil {
		job, err := s.repo.FindJobByID(*jobID)
		if err != nil {
			return nil, err
		}
		if job.ClientID != clientID {
			return nil, failf("job does not belong to client")
		}
	}
	if amount <= 0 {
		return nil, failf("invoice amount must be greater than 0")
	}

	count, err := s.repo.CountInvoicesByUser(userID)
	if err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		UserID:    userID,
		ClientID:  clientID,
		JobID:     jobID,
		Number:    utils.FormatInvoiceNumber(count + 1),
		Currency:  currency,
		Amount:    amount,
		IssueDate: issueDate,
		DueDate:   dueDate,
		Status:    models.InvoiceStatusDraft,
	}

	if err := s.repo.CreateInvoice(invoice); err != nil {
		return nil, err
	}

	s.log.Infof("Invoice %s created for client %d", invoice.Number, clientID)
	return invoice, nil
}

// GetInvoice returns one of the user's invoices
func (s *Service) GetInvoice(ctx context.Context, invoiceID int64) (*models.Invoice, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.invoiceOwnedBy(userID, invoiceID)
}

// ListInvoices returns all of the user's invoices
func (s *Service) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListInvoicesByUser(userID)
}

// SendInvoice transitions a draft invoice to sent
func (s *Service) SendInvoice(ctx context.Context, invoiceID int64) (*models.Invoice, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceOwnedBy(userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceStatusDraft {
		return nil, failf("only draft invoices can be sent")
	}

	if err := s.repo.UpdateInvoiceStatus(invoiceID, models.InvoiceStatusSent, nil); err != nil {
		return nil, err
	}
	invoice.Status = models.InvoiceStatusSent

	s.log.Infof("Invoice %s sent", invoice.Number)
	return invoice, nil
}

// MarkInvoicePaid transitions an invoice to paid and stamps the payment time
func (s *Service) MarkInvoicePaid(ctx context.Context, invoiceID int64) (*models.Invoice, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceOwnedBy(userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoiceStatusPaid {
		return nil, failf("invoice is already paid")
	}

	now := time.Now()
	if err := s.repo.UpdateInvoiceStatus(invoiceID, models.InvoiceStatusPaid, &now); err != nil {
		return nil, err
	}
	invoice.Status = models.InvoiceStatusPaid
	invoice.PaidAt = &now

	s.log.Infof("Invoice %s marked paid", invoice.Number)
	return invoice, nil
}

// WriteOffInvoice abandons collection on an invoice
func (s *Service) WriteOffInvoice(ctx context.Context, invoiceID int64) (*models.Invoice, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceOwnedBy(userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoiceStatusPaid {
		return nil, failf("paid invoices cannot be written off")
	}

	if err := s.repo.UpdateInvoiceStatus(invoiceID, models.InvoiceStatusWriteOff, nil); err != nil {
		return nil, err
	}
	invoice.Status = models.InvoiceStatusWriteOff

	s.log.Infof("Invoice %s written off", invoice.Number)
	return invoice, nil
}

// DeleteInvoice removes an invoice together with its payment schedules
func (s *Service) DeleteInvoice(ctx context.Context, invoiceID int64) error {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return err
	}

	invoice, err := s.invoiceOwnedBy(userID, invoiceID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteInvoice(invoiceID); err != nil {
		return err
	}

	s.log.Infof("Invoice %s deleted", invoice.Number)
	return nil
}

// MarkOverdueInvoices flips sent invoices past their due date to overdue.
// Called by the scheduler.
func (s *Service) MarkOverdueInvoices(now time.Time) (int, error) {
	ids, err := s.repo.ListOverdueInvoiceIDs(now.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		if err := s.repo.UpdateInvoiceStatus(id, models.InvoiceStatusOverdue, nil); err != nil {
			return 0, err
		}
	}

	if len(ids) > 0 {
		s.log.Infof("Marked %d invoices overdue", len(ids))
	}
	return len(ids), nil
}
