package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/craftbill/invoice-service/internal/allocation"
	"github.com/craftbill/invoice-service/internal/config"
	"github.com/craftbill/invoice-service/internal/models"
	"github.com/craftbill/invoice-service/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	cfg := &config.Config{JWTSecret: "test-secret", ReminderLookaheadDays: 3}
	return NewService(repository.NewRepository(db), log, cfg), mock
}

func authedContext(userID string) context.Context {
	return context.WithValue(context.Background(), "userID", userID)
}

func userRow(t *testing.T, password string) *sqlmock.Rows {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "is_admin", "created_at", "updated_at"}).
		AddRow(int64(1), "ada", "ada@example.com", string(hash), false, now, now)
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, mock := newMockService(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO billing.users")).
		WithArgs("ada", "ada@example.com", sqlmock.AnyArg(), false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))

	user, err := svc.Register("ada", "ada@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPassword(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM billing.users")).
		WithArgs("ada@example.com").
		WillReturnRows(userRow(t, "correct-horse"))

	_, err := svc.Login("ada@example.com", "wrong")
	assert.EqualError(t, err, "invalid credentials")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginReturnsToken(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM billing.users")).
		WithArgs("ada@example.com").
		WillReturnRows(userRow(t, "correct-horse"))

	token, err := svc.Login("ada@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func invoiceRow(amount float64, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "user_id", "client_id", "job_id", "number", "currency", "amount",
		"issue_date", "due_date", "status", "paid_at", "created_at", "updated_at"}).
		AddRow(int64(7), int64(1), int64(2), nil, "INV-0001", "USD", amount,
			"2026-09-01", "2026-12-01", status, nil, now, now)
}

func scheduleRows(schedules []allocation.Schedule) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "description", "due_date", "percentage", "amount", "status", "payment_date"})
	for _, s := range schedules {
		rows.AddRow(s.ID, s.Description, s.DueDate, s.Percentage, s.Amount, string(s.Status), s.PaymentDate)
	}
	return rows
}

func TestAddPaymentScheduleRebalances(t *testing.T) {
	svc, mock := newMockService(t)

	existing := []allocation.Schedule{
		{ID: "s1", Description: "1st payment", DueDate: "2026-10-01", Percentage: 60, Amount: 600, Status: allocation.StatusUnpaid},
		{ID: "s2", Description: "2nd payment", DueDate: "2026-11-01", Percentage: 30, Amount: 300, Status: allocation.StatusPaid, PaymentDate: "2026-08-01"},
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM billing.invoices")).
		WithArgs(int64(7)).
		WillReturnRows(invoiceRow(1000, "sent"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM billing.payment_schedules")).
		WithArgs(int64(7)).
		WillReturnRows(scheduleRows(existing))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM billing.payment_schedules")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO billing.payment_schedules")).
		WithArgs("s1", int64(7), 0, "1st payment", "2026-10-01", 50.0, 500.0, allocation.StatusUnpaid, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO billing.payment_schedules")).
		WithArgs("s2", int64(7), 1, "2nd payment", "2026-11-01", 30.0, 300.0, allocation.StatusPaid, "2026-08-01").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO billing.payment_schedules")).
		WithArgs(sqlmock.AnyArg(), int64(7), 2, "3rd payment", "2026-12-01", 20.0, 200.0, allocation.StatusUnpaid, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	draft := allocation.Draft{DueDate: "2026-12-01", Percentage: 20}
	result, err := svc.AddPaymentSchedule(authedContext("1"), 7, draft)
	require.NoError(t, err)
	require.Len(t, result.Schedules, 3)
	require.NotNil(t, result.Adjustment)
	assert.Equal(t, "s1", result.Adjustment.ScheduleID)
	assert.InDelta(t, 10, result.Adjustment.Reduction, allocation.Epsilon)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPaymentScheduleOvercommitted(t *testing.T) {
	svc, mock := newMockService(t)

	existing := []allocation.Schedule{
		{ID: "s1", Description: "1st payment", DueDate: "2026-10-01", Percentage: 100, Amount: 1000, Status: allocation.StatusPaid, PaymentDate: "2026-08-01"},
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM billing.invoices")).
		WithArgs(int64(7)).
		WillReturnRows(invoiceRow(1000, "sent"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM billing.payment_schedules")).
		WithArgs(int64(7)).
		WillReturnRows(scheduleRows(existing))

	draft := allocation.Draft{DueDate: "2026-12-01", Percentage: 10}
	_, err := svc.AddPaymentSchedule(authedContext("1"), 7, draft)

	var verr *allocation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, allocation.ErrOvercommitted, verr.Kind)
	// No writes happen on a rejected draft.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddPaymentScheduleWrongOwner(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM billing.invoices")).
		WithArgs(int64(7)).
		WillReturnRows(invoiceRow(1000, "sent"))

	draft := allocation.Draft{DueDate: "2026-12-01", Percentage: 10}
	_, err := svc.AddPaymentSchedule(authedContext("99"), 7, draft)
	assert.EqualError(t, err, "invoice does not belong to user")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePaymentScheduleRejectsPaid(t *testing.T) {
	svc, mock := newMockService(t)

	paid := []allocation.Schedule{
		{ID: "s1", Description: "1st payment", DueDate: "2026-10-01", Percentage: 100, Amount: 1000, Status: allocation.StatusPaid, PaymentDate: "2026-08-01"},
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM billing.invoices")).
		WithArgs(int64(7)).
		WillReturnRows(invoiceRow(1000, "sent"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM billing.payment_schedules")).
		WithArgs(int64(7), "s1").
		WillReturnRows(scheduleRows(paid))

	err := svc.DeletePaymentSchedule(authedContext("1"), 7, "s1")
	assert.ErrorIs(t, err, allocation.ErrPaidImmutable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminDeletePaymentScheduleRemovesPaid(t *testing.T) {
	svc, mock := newMockService(t)

	paid := []allocation.Schedule{
		{ID: "s1", Description: "1st payment", DueDate: "2026-10-01", Percentage: 100, Amount: 1000, Status: allocation.StatusPaid, PaymentDate: "2026-08-01"},
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM billing.invoices")).
		WithArgs(int64(7)).
		WillReturnRows(invoiceRow(1000, "paid"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM billing.payment_schedules")).
		WithArgs(int64(7), "s1").
		WillReturnRows(scheduleRows(paid))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM billing.payment_schedules WHERE invoice_id = $1 AND id = $2")).
		WithArgs(int64(7), "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.AdminDeletePaymentSchedule(7, "s1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEditPaymentScheduleRecomputesTwin(t *testing.T) {
	svc, mock := newMockService(t)

	unpaid := []allocation.Schedule{
		{ID: "s1", Description: "1st payment", DueDate: "2026-10-01", Percentage: 40, Amount: 400, Status: allocation.StatusUnpaid},
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM billing.invoices")).
		WithArgs(int64(7)).
		WillReturnRows(invoiceRow(1000, "sent"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM billing.payment_schedules")).
		WithArgs(int64(7), "s1").
		WillReturnRows(scheduleRows(unpaid))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE billing.payment_schedules")).
		WithArgs("2026-10-01", 25.0, 250.0, allocation.StatusUnpaid, "", int64(7), "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	pct := 25.0
	schedule, err := svc.EditPaymentSchedule(authedContext("1"), 7, "s1", ScheduleEdit{Percentage: &pct})
	require.NoError(t, err)
	assert.InDelta(t, 250, schedule.Amount, allocation.Epsilon)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunDueSubscriptionsBillsAndAdvances(t *testing.T) {
	svc, mock := newMockService(t)
	now := time.Date(2026, 9, 1, 1, 0, 0, 0, time.UTC)
	nextRun := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	created := time.Now()

	subRows := sqlmock.NewRows([]string{"id", "client_id", "title", "amount", "currency", "frequency",
		"next_run", "active", "created_at", "updated_at"}).
		AddRow(int64(5), int64(2), "Retainer", 1500.0, "USD", "monthly", nextRun, true, created, created)
	mock.ExpectQuery(regexp.QuoteMeta("FROM billing.subscriptions")).
		WithArgs(now).
		WillReturnRows(subRows)

	clientRows := sqlmock.NewRows([]string{"id", "user_id", "name", "email", "phone", "address",
		"archived", "created_at", "updated_at"}).
		AddRow(int64(2), int64(1), "Acme", "billing@acme.test", "", "", false, created, created)
	mock.ExpectQuery(regexp.QuoteMeta("FROM billing.clients")).
		WithArgs(int64(2)).
		WillReturnRows(clientRows)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM billing.invoices")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO billing.invoices")).
		WithArgs(int64(1), int64(2), nil, "INV-0003", "USD", 1500.0, "2026-09-01", "2026-09-15", models.InvoiceStatusSent).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(9), created, created))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE billing.subscriptions")).
		WithArgs(nextRun.AddDate(0, 1, 0), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	issued, err := svc.RunDueSubscriptions(now)
	require.NoError(t, err)
	require.Len(t, issued, 1)
	assert.Equal(t, "Acme", issued[0].ClientName)
	assert.Equal(t, "billing@acme.test", issued[0].ClientEmail)
	assert.Equal(t, "INV-0003", issued[0].Invoice.Number)
	assert.Equal(t, models.InvoiceStatusSent, issued[0].Invoice.Status)
	assert.Equal(t, "2026-09-15", issued[0].Invoice.DueDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkOverdueInvoices(t *testing.T) {
	svc, mock := newMockService(t)
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM billing.invoices")).
		WithArgs(models.InvoiceStatusSent, "2026-09-01").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)).AddRow(int64(4)))
	for _, id := range []int64{3, 4} {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE billing.invoices")).
			WithArgs(models.InvoiceStatusOverdue, nil, id).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	flipped, err := svc.MarkOverdueInvoices(now)
	require.NoError(t, err)
	assert.Equal(t, 2, flipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDuePaymentRemindersFlagsOverdue(t *testing.T) {
	svc, mock := newMockService(t)
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "invoice_id", "number", "name", "email",
		"description", "due_date", "amount", "currency"}).
		AddRow("s1", int64(7), "INV-0001", "Acme", "billing@acme.test", "1st payment", "2026-08-28", 500.0, "USD").
		AddRow("s2", int64(8), "INV-0002", "Globex", "ap@globex.test", "2nd payment", "2026-09-03", 250.0, "USD")
	mock.ExpectQuery(regexp.QuoteMeta("FROM billing.payment_schedules")).
		WithArgs(allocation.StatusUnpaid, "2026-09-04", models.InvoiceStatusSent, models.InvoiceStatusOverdue).
		WillReturnRows(rows)

	reminders, err := svc.DuePaymentReminders(now)
	require.NoError(t, err)
	require.Len(t, reminders, 2)
	assert.True(t, reminders[0].Overdue)
	assert.False(t, reminders[1].Overdue)
	assert.NoError(t, mock.ExpectationsWereMet())
}
