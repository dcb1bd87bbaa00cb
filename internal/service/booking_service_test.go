package service

import (
	"context"
	"testing"
	"time"

	"rentalhub/internal/models"
	"rentalhub/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockBookingService(t *testing.T) (*BookingService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.NewStoreWithDB(sqlx.NewDb(db, "postgres"))
	return NewBookingService(st, nil), mock
}

func TestBookServiceRejectsPastEventDate(t *testing.T) {
	svc, mock := newMockBookingService(t)

	_, err := svc.BookService(context.Background(), 1, &BookServiceRequest{
		ServiceID:     3,
		EventDate:     time.Now().Add(-24 * time.Hour),
		PeopleCount:   50,
		Method:        MethodMpesa,
		ReferenceCode: "QAB12CD34E",
	})

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Contains(t, err.Error(), "future")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookServiceRejectsUnknownService(t *testing.T) {
	svc, mock := newMockBookingService(t)

	mock.ExpectQuery("SELECT \\* FROM services WHERE id = .+").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "fee", "booking_fee",
		}))

	_, err := svc.BookService(context.Background(), 1, &BookServiceRequest{
		ServiceID:     404,
		EventDate:     time.Now().Add(72 * time.Hour),
		PeopleCount:   50,
		Method:        MethodBank,
		ReferenceCode: "TRX12345678901",
	})

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitQuotationRejectsEmptyItems(t *testing.T) {
	svc, mock := newMockBookingService(t)

	_, err := svc.SubmitQuotation(context.Background(), 9, 3, nil)

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func newReleaseBookingService(t *testing.T) (*BookingService, sqlmock.Sqlmock, *publisherRecorder) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pub := &publisherRecorder{}
	st := store.NewStoreWithDB(sqlx.NewDb(db, "postgres"))
	return NewBookingService(st, pub), mock, pub
}

func servicePaymentRow(status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "booking_id", "customer_id", "amount", "method",
		"reference_code", "status", "created_at", "updated_at",
	}).AddRow(3, 9, 1, 800, "mpesa", "QAB12CD34E", status, now, now)
}

func TestReleaseMaterialsDeductsEachItemOnce(t *testing.T) {
	svc, mock, pub := newReleaseBookingService(t)

	mock.ExpectQuery("SELECT \\* FROM service_payments WHERE booking_id = .+").
		WithArgs(int64(9)).
		WillReturnRows(servicePaymentRow("approved"))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE service_payments SET status =").
		WithArgs(models.ServicePaymentReleased, int64(3), models.ServicePaymentApproved).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT \\* FROM quotation_items WHERE booking_id = .+").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "booking_id", "store_item_id", "quantity", "cost",
		}).
			AddRow(1, 9, 11, 3, 300).
			AddRow(2, 9, 12, 1, 100))

	mock.ExpectQuery("SELECT quantity FROM store_items WHERE id = .+ FOR UPDATE").
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(10))
	mock.ExpectExec("UPDATE store_items SET quantity = quantity -").
		WithArgs(3, int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery("SELECT quantity FROM store_items WHERE id = .+ FOR UPDATE").
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(4))
	mock.ExpectExec("UPDATE store_items SET quantity = quantity -").
		WithArgs(1, int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.ReleaseMaterials(context.Background(), 9))
	assert.Equal(t, []string{models.EventTypeMaterialsReleased}, pub.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseMaterialsSecondCallChangesNothing(t *testing.T) {
	svc, mock, pub := newReleaseBookingService(t)

	mock.ExpectQuery("SELECT \\* FROM service_payments WHERE booking_id = .+").
		WithArgs(int64(9)).
		WillReturnRows(servicePaymentRow("released"))

	// The status guard matches zero rows: the transaction rolls back
	// before any store_items statement runs.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE service_payments SET status =").
		WithArgs(models.ServicePaymentReleased, int64(3), models.ServicePaymentApproved).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := svc.ReleaseMaterials(context.Background(), 9)

	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, pub.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQuotationScopedToAssignedDealer(t *testing.T) {
	svc, mock := newMockBookingService(t)

	mock.ExpectQuery("SELECT \\* FROM dealer_assignments WHERE booking_id = .+").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "booking_id", "dealer_id", "service_id", "created_at",
		}).AddRow(1, 9, 5, 2, time.Now()))

	_, _, err := svc.GetQuotation(context.Background(), 6, 9)

	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
