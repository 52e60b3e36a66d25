package service

import (
	"context"
	"time"

	"github.com/craftbill/invoice-service/internal/allocation"
	"github.com/craftbill/invoice-service/internal/models"
)

// ScheduleEdit carries field-level changes to an existing installment. When
// both Amount and Percentage are present the amount drives the edit, matching
// the reconciliation rule used on admission.
type ScheduleEdit struct {
	DueDate    *string  `json:"due_date,omitempty"`
	Percentage *float64 `json:"percentage,omitempty"`
	Amount     *float64 `json:"amount,omitempty"`
}

// AddPaymentSchedule admits a new installment against an invoice, persists
// the updated list and returns it together with any rebalancing notice.
func (s *Service) AddPaymentSchedule(ctx context.Context, invoiceID int64, draft allocation.Draft) (*allocation.Result, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceOwnedBy(userID, invoiceID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListSchedulesByInvoice(invoiceID)
	if err != nil {
		return nil, err
	}

	if err := allocation.Validate(draft, existing, invoice.Amount); err != nil {
		return nil, err
	}

	result := allocation.Admit(draft, existing, invoice.Amount, allocation.GenerateID)

	if total := allocation.TotalPercentage(result.Schedules); total > 100+allocation.Epsilon {
		// Single-target rebalancing clamped at zero without covering the
		// excess. Persist anyway and surface the condition in the logs.
		s.log.Warnf("Invoice %s schedules sum to %.2f%% after rebalancing", invoice.Number, total)
	}

	if err := s.repo.ReplaceSchedulesForInvoice(invoiceID, result.Schedules); err != nil {
		return nil, err
	}

	if result.Adjustment != nil {
		s.log.Infof("Invoice %s: %s reduced by %.2f%% to make room for a new payment",
			invoice.Number, result.Adjustment.Description, result.Adjustment.Reduction)
	}
	s.log.Infof("Payment schedule added to invoice %s", invoice.Number)
	return &result, nil
}

// ListPaymentSchedules returns an invoice's installments in order
func (s *Service) ListPaymentSchedules(ctx context.Context, invoiceID int64) ([]allocation.Schedule, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.invoiceOwnedBy(userID, invoiceID); err != nil {
		return nil, err
	}
	return s.repo.ListSchedulesByInvoice(invoiceID)
}

// EditPaymentSchedule applies field-level edits to an unpaid installment.
// The edited field is authoritative and its twin is recomputed from the
// invoice total; no cross-installment rebalancing happens here.
func (s *Service) EditPaymentSchedule(ctx context.Context, invoiceID int64, scheduleID string, edit ScheduleEdit) (*allocation.Schedule, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceOwnedBy(userID, invoiceID)
	if err != nil {
		return nil, err
	}

	schedule, err := s.repo.FindScheduleByInvoice(invoiceID, scheduleID)
	if err != nil {
		return nil, err
	}

	updated := *schedule
	switch {
	case edit.Amount != nil:
		updated, err = allocation.EditAmount(updated, *edit.Amount, invoice.Amount)
	case edit.Percentage != nil:
		updated, err = allocation.EditPercentage(updated, *edit.Percentage, invoice.Amount)
	}
	if err != nil {
		return nil, err
	}
	if edit.DueDate != nil {
		updated, err = allocation.EditDueDate(updated, *edit.DueDate)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateSchedule(invoiceID, &updated); err != nil {
		return nil, err
	}

	s.log.Infof("Payment schedule %s on invoice %s updated", scheduleID, invoice.Number)
	return &updated, nil
}

// MarkSchedulePaid records a payment against an installment. When every
// installment is paid the invoice itself is marked paid.
func (s *Service) MarkSchedulePaid(ctx context.Context, invoiceID int64, scheduleID string) (*allocation.Schedule, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceOwnedBy(userID, invoiceID)
	if err != nil {
		return nil, err
	}

	schedule, err := s.repo.FindScheduleByInvoice(invoiceID, scheduleID)
	if err != nil {
		return nil, err
	}

	updated, err := allocation.MarkPaid(*schedule, time.Now().Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateSchedule(invoiceID, &updated); err != nil {
		return nil, err
	}
	s.log.Infof("Payment schedule %s on invoice %s marked paid", scheduleID, invoice.Number)

	schedules, err := s.repo.ListSchedulesByInvoice(invoiceID)
	if err != nil {
		return nil, err
	}
	if allPaid(schedules) && invoice.Status != models.InvoiceStatusPaid {
		now := time.Now()
		if err := s.repo.UpdateInvoiceStatus(invoiceID, models.InvoiceStatusPaid, &now); err != nil {
			return nil, err
		}
		s.log.Infof("Invoice %s fully paid", invoice.Number)
	}

	return &updated, nil
}

// DeletePaymentSchedule removes an unpaid installment. Paid installments can
// only be removed through the admin override.
func (s *Service) DeletePaymentSchedule(ctx context.Context, invoiceID int64, scheduleID string) error {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return err
	}

	invoice, err := s.invoiceOwnedBy(userID, invoiceID)
	if err != nil {
		return err
	}

	schedule, err := s.repo.FindScheduleByInvoice(invoiceID, scheduleID)
	if err != nil {
		return err
	}
	if schedule.Status == allocation.StatusPaid {
		return allocation.ErrPaidImmutable
	}

	if err := s.repo.DeleteSchedule(invoiceID, scheduleID); err != nil {
		return err
	}

	s.log.Infof("Payment schedule %s removed from invoice %s", scheduleID, invoice.Number)
	return nil
}

// AdminDeletePaymentSchedule removes an installment regardless of its
// status. This is the out-of-band override reserved for administrators.
func (s *Service) AdminDeletePaymentSchedule(invoiceID int64, scheduleID string) error {
	if _, err := s.repo.FindInvoiceByID(invoiceID); err != nil {
		return err
	}
	if _, err := s.repo.FindScheduleByInvoice(invoiceID, scheduleID); err != nil {
		return err
	}

	if err := s.repo.DeleteSchedule(invoiceID, scheduleID); err != nil {
		return err
	}

	s.log.Warnf("Admin override: payment schedule %s removed from invoice %d", scheduleID, invoiceID)
	return nil
}

// DuePaymentReminders collects unpaid installments due within the lookahead
// window or already overdue, for the reminder job.
func (s *Service) DuePaymentReminders(now time.Time) ([]models.PaymentReminder, error) {
	deadline := now.AddDate(0, 0, s.config.ReminderLookaheadDays).Format("2006-01-02")
	reminders, err := s.repo.ListUnpaidSchedulesDueBy(deadline)
	if err != nil {
		return nil, err
	}

	today := now.Format("2006-01-02")
	for i := range reminders {
		reminders[i].Overdue = reminders[i].DueDate < today
	}
	return reminders, nil
}

func allPaid(schedules []allocation.Schedule) bool {
	if len(schedules) == 0 {
		return false
	}
	for _, s := range schedules {
		if s.Status != allocation.StatusPaid {
			return false
		}
	}
	return true
}
