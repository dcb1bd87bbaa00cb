package service

import (
	"context"
	"testing"
	"time"

	"rentalhub/internal/models"
	"rentalhub/internal/redisclient"
	"rentalhub/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v8"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockOrderService(t *testing.T) (*OrderService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.NewStoreWithDB(sqlx.NewDb(db, "postgres"))
	return NewOrderService(st, nil, nil), mock
}

func TestCheckoutRejectsBadReference(t *testing.T) {
	svc, mock := newMockOrderService(t)

	_, err := svc.Checkout(context.Background(), 1, &CheckoutRequest{
		Total:         1000,
		Method:        MethodMpesa,
		ReferenceCode: "too-short",
	})

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	svc, mock := newMockOrderService(t)

	mock.ExpectQuery("SELECT ci.id, ci.customer_id, .+ FROM cart_items ci").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "customer_id", "product_id", "quantity", "created_at",
			"product_name", "unit_price", "line_total",
		}))

	_, err := svc.Checkout(context.Background(), 1, &CheckoutRequest{
		Total:         1000,
		Method:        MethodMpesa,
		ReferenceCode: "QAB12CD34E",
	})

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Contains(t, err.Error(), "cart is empty")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutRejectsTotalMismatch(t *testing.T) {
	svc, mock := newMockOrderService(t)

	mock.ExpectQuery("SELECT ci.id, ci.customer_id, .+ FROM cart_items ci").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "customer_id", "product_id", "quantity", "created_at",
			"product_name", "unit_price", "line_total",
		}).AddRow(1, 1, 7, 2, time.Now(), "Tent", 250, 500))

	_, err := svc.Checkout(context.Background(), 1, &CheckoutRequest{
		Total:         999,
		Method:        MethodMpesa,
		ReferenceCode: "QAB12CD34E",
	})

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Contains(t, err.Error(), "does not match")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCartItemRejectsBadQuantity(t *testing.T) {
	svc, mock := newMockOrderService(t)

	_, err := svc.AddCartItem(context.Background(), 1, 7, 0)

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCartItemRejectsExcessQuantity(t *testing.T) {
	svc, mock := newMockOrderService(t)

	mock.ExpectQuery("SELECT \\* FROM products WHERE id = .+").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "quantity", "rental_price", "image_url", "created_at",
		}).AddRow(7, "Tent", 3, 250, "", time.Now()))

	_, err := svc.AddCartItem(context.Background(), 1, 7, 5)

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCartItemRejectsUnknownProduct(t *testing.T) {
	svc, mock := newMockOrderService(t)

	mock.ExpectQuery("SELECT \\* FROM products WHERE id = .+").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "quantity", "rental_price", "image_url", "created_at",
		}))

	_, err := svc.AddCartItem(context.Background(), 1, 404, 1)

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// publisherRecorder captures published event types in order.
type publisherRecorder struct {
	events []string
}

func (p *publisherRecorder) PublishOrderPayment(_ context.Context, e *models.OrderPaymentEvent) error {
	p.events = append(p.events, e.EventType)
	return nil
}

func (p *publisherRecorder) PublishItemsReserved(_ context.Context, e *models.ItemsReservedEvent) error {
	p.events = append(p.events, e.EventType)
	return nil
}

func (p *publisherRecorder) PublishBooking(_ context.Context, e *models.BookingEvent) error {
	p.events = append(p.events, e.EventType)
	return nil
}

func (p *publisherRecorder) PublishQuotation(_ context.Context, e *models.QuotationEvent) error {
	p.events = append(p.events, e.EventType)
	return nil
}

func (p *publisherRecorder) PublishRelease(_ context.Context, e *models.ReleaseEvent) error {
	p.events = append(p.events, e.EventType)
	return nil
}

func (p *publisherRecorder) PublishProcurement(_ context.Context, e *models.ProcurementEvent) error {
	p.events = append(p.events, e.EventType)
	return nil
}

func newLifecycleOrderService(t *testing.T) (*OrderService, sqlmock.Sqlmock, redismock.ClientMock, *publisherRecorder) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rdb, redisMock := redismock.NewClientMock()
	t.Cleanup(func() { rdb.Close() })

	pub := &publisherRecorder{}
	st := store.NewStoreWithDB(sqlx.NewDb(db, "postgres"))
	return NewOrderService(st, redisclient.NewClientWithRedis(rdb), pub), mock, redisMock, pub
}

func TestCheckoutRollsBackWhenAnyItemFails(t *testing.T) {
	svc, mock := newMockOrderService(t)
	now := time.Now()

	mock.ExpectQuery("SELECT ci.id, ci.customer_id, .+ FROM cart_items ci").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "customer_id", "product_id", "quantity", "created_at",
			"product_name", "unit_price", "line_total",
		}).
			AddRow(1, 1, 7, 2, now, "Tent", 250, 500).
			AddRow(2, 1, 8, 3, now, "Chair", 100, 300))

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO order_payments").
		WithArgs(int64(1), int64(800), MethodMpesa, "QAB12CD34E", models.OrderPaymentPending).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(42, now, now))

	// First line succeeds in full.
	mock.ExpectQuery("SELECT quantity FROM products WHERE id = .+ FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(5))
	mock.ExpectExec("UPDATE products SET quantity = quantity -").
		WithArgs(2, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO order_items").
		WithArgs(int64(42), int64(7), 2, int64(250)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Second line has insufficient stock: everything above rolls back
	// and no further statement runs.
	mock.ExpectQuery("SELECT quantity FROM products WHERE id = .+ FOR UPDATE").
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(1))
	mock.ExpectRollback()

	_, err := svc.Checkout(context.Background(), 1, &CheckoutRequest{
		Total:         800,
		Method:        MethodMpesa,
		ReferenceCode: "QAB12CD34E",
	})

	assert.ErrorIs(t, err, store.ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveItemsRejectsSecondReservation(t *testing.T) {
	svc, mock := newMockOrderService(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM order_payments WHERE id = .+ FOR UPDATE").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "customer_id", "total_amount", "method", "reference_code",
			"status", "created_at", "updated_at",
		}).AddRow(42, 1, 500, "mpesa", "QAB12CD34E", "approved", now, now))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := svc.ReserveItems(context.Background(), 42)

	assert.ErrorIs(t, err, store.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderPaymentLifecycle(t *testing.T) {
	svc, mock, redisMock, pub := newLifecycleOrderService(t)
	ctx := context.Background()
	now := time.Now()

	// Checkout: cart of 2x product 7 at 250 each, stock 5 -> 3.
	mock.ExpectQuery("SELECT ci.id, ci.customer_id, .+ FROM cart_items ci").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "customer_id", "product_id", "quantity", "created_at",
			"product_name", "unit_price", "line_total",
		}).AddRow(1, 1, 7, 2, now, "Tent", 250, 500))

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO order_payments").
		WithArgs(int64(1), int64(500), MethodMpesa, "QAB12CD34E", models.OrderPaymentPending).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(42, now, now))
	mock.ExpectQuery("SELECT quantity FROM products WHERE id = .+ FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(5))
	mock.ExpectExec("UPDATE products SET quantity = quantity -").
		WithArgs(2, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO order_items").
		WithArgs(int64(42), int64(7), 2, int64(250)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	redisMock.ExpectDel("products:all", "product:7").SetVal(2)

	payment, err := svc.Checkout(ctx, 1, &CheckoutRequest{
		Total:         500,
		Method:        MethodMpesa,
		ReferenceCode: "QAB12CD34E",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), payment.ID)
	assert.Equal(t, models.OrderPaymentPending, payment.Status)

	// Finance approval is the guarded pending -> approved flip.
	mock.ExpectExec("UPDATE order_payments SET status =").
		WithArgs(models.OrderPaymentApproved, int64(42), models.OrderPaymentPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, svc.ApprovePayment(ctx, 42))

	// Event manager reserves one booking per order item.
	approvedRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{
			"id", "customer_id", "total_amount", "method", "reference_code",
			"status", "created_at", "updated_at",
		}).AddRow(42, 1, 500, "mpesa", "QAB12CD34E", "approved", now, now)
	}
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM order_payments WHERE id = .+ FOR UPDATE").
		WithArgs(int64(42)).
		WillReturnRows(approvedRow())
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("SELECT \\* FROM order_items WHERE payment_id").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "payment_id", "product_id", "quantity", "unit_price",
		}).AddRow(1, 42, 7, 2, 250))
	mock.ExpectQuery("INSERT INTO event_bookings").
		WithArgs(int64(42), int64(1), int64(7), models.EventBookingReserved).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(77, now, now))
	mock.ExpectCommit()

	bookings, err := svc.ReserveItems(ctx, 42)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, models.EventBookingReserved, bookings[0].Status)

	// Customer confirms their own booking.
	mock.ExpectExec("UPDATE event_bookings SET status =").
		WithArgs(models.EventBookingConfirmed, int64(77), int64(1), models.EventBookingReserved).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, svc.ConfirmEventBooking(ctx, 77, 1))

	// Re-running the reservation finds the existing bookings and is
	// rejected without touching event_bookings again.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM order_payments WHERE id = .+ FOR UPDATE").
		WithArgs(int64(42)).
		WillReturnRows(approvedRow())
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err = svc.ReserveItems(ctx, 42)
	assert.ErrorIs(t, err, store.ErrConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
	assert.Equal(t, []string{
		models.EventTypeOrderPaymentCreated,
		models.EventTypeOrderPaymentApproved,
		models.EventTypeItemsReserved,
		models.EventTypeBookingConfirmed,
	}, pub.events)
}
