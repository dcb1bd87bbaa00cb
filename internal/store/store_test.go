package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"rentalhub/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStoreWithDB(sqlx.NewDb(db, "postgres")), mock
}

func TestReserveStockDeductsUnderLock(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT quantity FROM products WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(10))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE products SET quantity = quantity - $1 WHERE id = $2")).
		WithArgs(4, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := st.WithTx(ctx, func(tx *sqlx.Tx) error {
		remaining, err := st.ReserveStock(ctx, tx, 7, 4)
		if err != nil {
			return err
		}
		assert.Equal(t, 6, remaining)
		return nil
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveStockInsufficientRollsBack(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT quantity FROM products WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(2))
	// no UPDATE may run: the deduction must not happen
	mock.ExpectRollback()

	err := st.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := st.ReserveStock(ctx, tx, 7, 5)
		return err
	})

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveStockUnknownProduct(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT quantity FROM products WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}))
	mock.ExpectRollback()

	err := st.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := st.ReserveStock(ctx, tx, 999, 1)
		return err
	})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := st.WithTx(context.Background(), func(tx *sqlx.Tx) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionOrderPaymentGuard(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	// already approved: the WHERE status clause matches nothing
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE order_payments SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3")).
		WithArgs(models.OrderPaymentApproved, int64(5), models.OrderPaymentPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := st.TransitionOrderPayment(ctx, 5, models.OrderPaymentPending, models.OrderPaymentApproved)
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE order_payments SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3")).
		WithArgs(models.OrderPaymentApproved, int64(6), models.OrderPaymentPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = st.TransitionOrderPayment(ctx, 6, models.OrderPaymentPending, models.OrderPaymentApproved)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmEventBookingScopedToOwner(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectExec("UPDATE event_bookings SET status = .+").
		WithArgs(models.EventBookingConfirmed, int64(3), int64(99), models.EventBookingReserved).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := st.ConfirmEventBooking(ctx, 3, 99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveTendersEmptyIDs(t *testing.T) {
	st, mock := newMockStore(t)

	count, err := st.ApproveTenders(context.Background(), 1, nil)

	assert.NoError(t, err)
	assert.Zero(t, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseStockRequiresExistingRow(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE products SET quantity = quantity + $1 WHERE id = $2")).
		WithArgs(3, int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := st.WithTx(ctx, func(tx *sqlx.Tx) error {
		return st.ReleaseStock(ctx, tx, 404, 3)
	})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
