package email

import (
	"fmt"
	"net/smtp"

	"github.com/craftbill/invoice-service/internal/config"
	"github.com/craftbill/invoice-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendPaymentReminder sends a reminder for an upcoming or overdue
// installment.
func (s *Sender) SendPaymentReminder(reminder models.PaymentReminder) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{reminder.ClientEmail}
	if reminder.Overdue {
		e.Subject = fmt.Sprintf("Overdue payment on invoice %s", reminder.InvoiceNumber)
	} else {
		e.Subject = fmt.Sprintf("Upcoming payment on invoice %s", reminder.InvoiceNumber)
	}

	body := fmt.Sprintf(
		"Dear %s,\n\n", reminder.ClientName,
	)
	if reminder.Overdue {
		body += fmt.Sprintf(
			"The %s of %.2f %s on invoice %s was due on %s and is now overdue.\n"+
				"Please make the payment as soon as possible.\n",
			reminder.Description, reminder.Amount, reminder.Currency, reminder.InvoiceNumber, reminder.DueDate,
		)
	} else {
		body += fmt.Sprintf(
			"This is a reminder that the %s of %.2f %s on invoice %s is due on %s.\n",
			reminder.Description, reminder.Amount, reminder.Currency, reminder.InvoiceNumber, reminder.DueDate,
		)
	}
	body += "\nBest regards,\nYour billing team"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", reminder.ClientEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", reminder.ClientEmail, e.Subject)
	return nil
}

// SendInvoiceNotification notifies a client that an invoice was issued
func (s *Sender) SendInvoiceNotification(to, clientName string, invoice *models.Invoice) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Invoice %s", invoice.Number)

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Invoice %s for %.2f %s has been issued to you.\n"+
			"Payment is due on %s.\n"+
			"\nBest regards,\nYour billing team",
		clientName, invoice.Number, invoice.Amount, invoice.Currency, invoice.DueDate,
	)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send invoice notification to %s: %v", to, err)
		return fmt.Errorf("failed to send invoice notification: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
