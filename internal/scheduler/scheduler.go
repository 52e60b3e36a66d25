package scheduler

import (
	"time"

	"github.com/craftbill/invoice-service/internal/service"
	"github.com/craftbill/invoice-service/internal/utils/email"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs the recurring billing jobs: payment reminders, overdue
// detection and subscription invoicing.
type Scheduler struct {
	svc    *service.Service
	mailer *email.Sender
	log    *logrus.Logger
	cron   *cron.Cron
}

// NewScheduler initializes the cron jobs without starting them
func NewScheduler(svc *service.Service, mailer *email.Sender, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		svc:    svc,
		mailer: mailer,
		log:    log,
		cron:   cron.New(),
	}
}

// Start registers and starts the recurring jobs
func (s *Scheduler) Start() error {
	// Subscriptions bill shortly after midnight so the invoices exist
	// before the morning reminder run.
	if _, err := s.cron.AddFunc("0 1 * * *", s.runSubscriptions); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 8 * * *", s.runReminders); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("Scheduler started")
	return nil
}

// Stop halts the cron scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runReminders() {
	now := time.Now()

	flipped, err := s.svc.MarkOverdueInvoices(now)
	if err != nil {
		s.log.Errorf("Overdue scan failed: %v", err)
	} else if flipped > 0 {
		s.log.Infof("Overdue scan flipped %d invoices", flipped)
	}

	reminders, err := s.svc.DuePaymentReminders(now)
	if err != nil {
		s.log.Errorf("Reminder scan failed: %v", err)
		return
	}

	for _, reminder := range reminders {
		if reminder.ClientEmail == "" {
			continue
		}
		if err := s.mailer.SendPaymentReminder(reminder); err != nil {
			s.log.Errorf("Failed to remind %s about invoice %s: %v",
				reminder.ClientEmail, reminder.InvoiceNumber, err)
		}
	}
	s.log.Infof("Reminder run complete: %d reminders", len(reminders))
}

func (s *Scheduler) runSubscriptions() {
	issued, err := s.svc.RunDueSubscriptions(time.Now())
	if err != nil {
		s.log.Errorf("Subscription billing failed: %v", err)
		return
	}

	for _, n := range issued {
		if n.ClientEmail == "" {
			continue
		}
		if err := s.mailer.SendInvoiceNotification(n.ClientEmail, n.ClientName, n.Invoice); err != nil {
			s.log.Errorf("Failed to notify %s about invoice %s: %v",
				n.ClientEmail, n.Invoice.Number, err)
		}
	}
	if len(issued) > 0 {
		s.log.Infof("Subscription billing created %d invoices", len(issued))
	}
}
