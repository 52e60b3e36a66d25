package repository

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/craftbill/invoice-service/internal/allocation"
	"github.com/craftbill/invoice-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestCreateUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO billing.users")).
		WithArgs("ada", "ada@example.com", "hash", false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))

	user := &models.User{Username: "ada", Email: "ada@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(user))
	assert.Equal(t, int64(1), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindUserByEmailNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, email, password_hash, is_admin, created_at, updated_at")).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "is_admin", "created_at", "updated_at"}))

	_, err := repo.FindUserByEmail("ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceSchedulesForInvoice(t *testing.T) {
	repo, mock := newMockRepo(t)

	schedules := []allocation.Schedule{
		{ID: "s1", Description: "1st payment", DueDate: "2026-10-01", Percentage: 50, Amount: 500, Status: allocation.StatusUnpaid},
		{ID: "s2", Description: "2nd payment", DueDate: "2026-11-01", Percentage: 50, Amount: 500, Status: allocation.StatusUnpaid},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM billing.payment_schedules WHERE invoice_id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO billing.payment_schedules")).
		WithArgs("s1", int64(7), 0, "1st payment", "2026-10-01", 50.0, 500.0, allocation.StatusUnpaid, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO billing.payment_schedules")).
		WithArgs("s2", int64(7), 1, "2nd payment", "2026-11-01", 50.0, 500.0, allocation.StatusUnpaid, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceSchedulesForInvoice(7, schedules))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteInvoiceCascades(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM billing.payment_schedules WHERE invoice_id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM billing.invoices WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteInvoice(7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteInvoiceNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM billing.payment_schedules WHERE invoice_id = $1")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM billing.invoices WHERE id = $1")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.DeleteInvoice(9)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSchedulesByInvoice(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "description", "due_date", "percentage", "amount", "status", "payment_date"}).
		AddRow("s1", "1st payment", "2026-10-01", 60.0, 600.0, "unpaid", "").
		AddRow("s2", "2nd payment", "2026-11-01", 40.0, 400.0, "paid", "2026-08-20")
	mock.ExpectQuery(regexp.QuoteMeta("FROM billing.payment_schedules")).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	schedules, err := repo.ListSchedulesByInvoice(7)
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	assert.Equal(t, allocation.StatusPaid, schedules[1].Status)
	assert.Equal(t, "2026-08-20", schedules[1].PaymentDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
