package store

import (
	"context"
	"database/sql"

	"rentalhub/internal/models"

	"github.com/jmoiron/sqlx"
)

// CreateOrderPaymentTx inserts a pending order payment inside the
// checkout transaction.
func (s *Store) CreateOrderPaymentTx(ctx context.Context, tx *sqlx.Tx, p *models.OrderPayment) error {
	query := `
		INSERT INTO order_payments (customer_id, total_amount, method, reference_code, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	return tx.GetContext(ctx, p, query,
		p.CustomerID, p.TotalAmount, p.Method, p.ReferenceCode, p.Status)
}

// GetOrderPaymentByID retrieves an order payment
func (s *Store) GetOrderPaymentByID(ctx context.Context, id int64) (*models.OrderPayment, error) {
	var p models.OrderPayment
	err := s.db.GetContext(ctx, &p, "SELECT * FROM order_payments WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOrderPaymentsByCustomer lists a customer's payments, newest first.
func (s *Store) GetOrderPaymentsByCustomer(ctx context.Context, customerID int64) ([]models.OrderPayment, error) {
	var payments []models.OrderPayment
	err := s.db.SelectContext(ctx, &payments,
		"SELECT * FROM order_payments WHERE customer_id = $1 ORDER BY created_at DESC", customerID)
	return payments, err
}

// TransitionOrderPayment flips status with the current status as an
// optimistic guard: zero matched rows means the payment is missing or
// already past the expected state.
func (s *Store) TransitionOrderPayment(ctx context.Context, id int64, from, to models.OrderPaymentStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE order_payments SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		to, id, from)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// TransitionOrderPaymentTx is TransitionOrderPayment inside a transaction.
func (s *Store) TransitionOrderPaymentTx(ctx context.Context, tx *sqlx.Tx, id int64, from, to models.OrderPaymentStatus) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE order_payments SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		to, id, from)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CreateOrderItemTx inserts an order item inside the checkout transaction.
func (s *Store) CreateOrderItemTx(ctx context.Context, tx *sqlx.Tx, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (payment_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return tx.GetContext(ctx, &item.ID, query,
		item.PaymentID, item.ProductID, item.Quantity, item.UnitPrice)
}

// GetOrderItemsByPaymentID retrieves all items of a payment
func (s *Store) GetOrderItemsByPaymentID(ctx context.Context, paymentID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE payment_id = $1", paymentID)
	return items, err
}

// GetOrderItemsByPaymentIDTx reads order items inside a transaction; the
// rejection flow releases stock from these persisted rows only.
func (s *Store) GetOrderItemsByPaymentIDTx(ctx context.Context, tx *sqlx.Tx, paymentID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := tx.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE payment_id = $1", paymentID)
	return items, err
}

// GetOrderPaymentForUpdate locks the payment row inside the reservation
// transaction so concurrent reserves on the same payment serialize.
func (s *Store) GetOrderPaymentForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*models.OrderPayment, error) {
	var p models.OrderPayment
	err := tx.GetContext(ctx, &p, "SELECT * FROM order_payments WHERE id = $1 FOR UPDATE", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// HasEventBookingsTx reports whether a payment has already been reserved
// by the event manager (the anti-duplicate absence check). Runs under the
// payment row lock taken by GetOrderPaymentForUpdate.
func (s *Store) HasEventBookingsTx(ctx context.Context, tx *sqlx.Tx, paymentID int64) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM event_bookings WHERE payment_id = $1)", paymentID)
	return exists, err
}

// CreateEventBookingTx inserts a reserved event booking inside the
// reserve-items transaction.
func (s *Store) CreateEventBookingTx(ctx context.Context, tx *sqlx.Tx, b *models.EventBooking) error {
	query := `
		INSERT INTO event_bookings (payment_id, customer_id, product_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	return tx.GetContext(ctx, b, query, b.PaymentID, b.CustomerID, b.ProductID, b.Status)
}

// GetEventBookingByID retrieves an event booking
func (s *Store) GetEventBookingByID(ctx context.Context, id int64) (*models.EventBooking, error) {
	var b models.EventBooking
	err := s.db.GetContext(ctx, &b, "SELECT * FROM event_bookings WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ConfirmEventBooking flips reserved -> confirmed, scoped to the owning
// customer. A mismatched owner matches zero rows and reads as not found,
// leaking nothing about other customers' bookings.
func (s *Store) ConfirmEventBooking(ctx context.Context, bookingID, customerID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE event_bookings SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND customer_id = $3 AND status = $4`,
		models.EventBookingConfirmed, bookingID, customerID, models.EventBookingReserved)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
