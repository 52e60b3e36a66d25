package service

import (
	"context"
	"time"

	"github.com/craftbill/invoice-service/internal/models"
	"github.com/craftbill/invoice-service/internal/utils"
)

// CreateSubscription creates a recurring billing plan for one of the user's
// clients.
func (s *Service) CreateSubscription(ctx context.Context, clientID int64, title, currency string, amount float64, frequency models.Frequency, firstRun time.Time) (*models.Subscription, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.clientOwnedBy(userID, clientID); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, failf("subscription amount must be greater than 0")
	}
	switch frequency {
	case models.FrequencyMonthly, models.FrequencyQuarterly, models.FrequencyYearly:
	default:
		return nil, failf("unknown billing frequency: %s", frequency)
	}

	sub := &models.Subscription{
		ClientID:  clientID,
		Title:     title,
		Amount:    amount,
		Currency:  currency,
		Frequency: frequency,
		NextRun:   firstRun,
		Active:    true,
	}

	if err := s.repo.CreateSubscription(sub); err != nil {
		return nil, err
	}

	s.log.Infof("Subscription created for client %d: %s (%s)", clientID, sub.Title, sub.Frequency)
	return sub, nil
}

// ListSubscriptions returns all subscriptions for one of the user's clients
func (s *Service) ListSubscriptions(ctx context.Context, clientID int64) ([]models.Subscription, error) {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.clientOwnedBy(userID, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListSubscriptionsByClient(clientID)
}

// CancelSubscription stops a subscription from generating further invoices
func (s *Service) CancelSubscription(ctx context.Context, subscriptionID int64) error {
	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		return err
	}

	sub, err := s.repo.FindSubscriptionByID(subscriptionID)
	if err != nil {
		return err
	}
	if _, err := s.clientOwnedBy(userID, sub.ClientID); err != nil {
		return err
	}

	if err := s.repo.DeactivateSubscription(subscriptionID); err != nil {
		return err
	}

	s.log.Infof("Subscription %d cancelled", subscriptionID)
	return nil
}

// RunDueSubscriptions materializes an invoice for every active subscription
// whose next run has passed and advances its schedule. It returns the issued
// invoices with client contact data so the caller can notify clients. Called
// by the scheduler.
func (s *Service) RunDueSubscriptions(now time.Time) ([]models.InvoiceNotification, error) {
	subs, err := s.repo.ListDueSubscriptions(now)
	if err != nil {
		return nil, err
	}

	var issued []models.InvoiceNotification
	for _, sub := range subs {
		client, err := s.repo.FindClientByID(sub.ClientID)
		if err != nil {
			return issued, err
		}

		count, err := s.repo.CountInvoicesByUser(client.UserID)
		if err != nil {
			return issued, err
		}

		invoice := &models.Invoice{
			UserID:    client.UserID,
			ClientID:  sub.ClientID,
			Number:    utils.FormatInvoiceNumber(count + 1),
			Currency:  sub.Currency,
			Amount:    sub.Amount,
			IssueDate: now.Format("2006-01-02"),
			DueDate:   now.AddDate(0, 0, 14).Format("2006-01-02"),
			Status:    models.InvoiceStatusSent,
		}
		if err := s.repo.CreateInvoice(invoice); err != nil {
			return issued, err
		}
		issued = append(issued, models.InvoiceNotification{
			ClientName:  client.Name,
			ClientEmail: client.Email,
			Invoice:     invoice,
		})

		next := sub.NextRun.AddDate(0, sub.Frequency.Interval(), 0)
		if err := s.repo.AdvanceSubscription(sub.ID, next); err != nil {
			return issued, err
		}

		s.log.Infof("Subscription %d billed: invoice %s for %.2f %s", sub.ID, invoice.Number, invoice.Amount, invoice.Currency)
	}

	return issued, nil
}
