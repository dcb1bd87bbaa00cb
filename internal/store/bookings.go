package store

import (
	"context"
	"database/sql"

	"rentalhub/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// GetServiceByID retrieves a service
func (s *Store) GetServiceByID(ctx context.Context, id int64) (*models.Service, error) {
	var svc models.Service
	err := s.db.GetContext(ctx, &svc, "SELECT * FROM services WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// GetServices retrieves all services
func (s *Store) GetServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	err := s.db.SelectContext(ctx, &services, "SELECT * FROM services ORDER BY id")
	return services, err
}

// CreateServiceBooking inserts a pending service booking.
func (s *Store) CreateServiceBooking(ctx context.Context, b *models.ServiceBooking) error {
	query := `
		INSERT INTO service_bookings
			(customer_id, service_id, event_date, people_count, booking_fee, method, reference_code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, b, query,
		b.CustomerID, b.ServiceID, b.EventDate, b.PeopleCount,
		b.BookingFee, b.Method, b.ReferenceCode, b.Status)
}

// GetServiceBookingByID retrieves a service booking
func (s *Store) GetServiceBookingByID(ctx context.Context, id int64) (*models.ServiceBooking, error) {
	var b models.ServiceBooking
	err := s.db.GetContext(ctx, &b, "SELECT * FROM service_bookings WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetServiceBookingsByCustomer lists a customer's bookings, newest first.
func (s *Store) GetServiceBookingsByCustomer(ctx context.Context, customerID int64) ([]models.ServiceBooking, error) {
	var bookings []models.ServiceBooking
	err := s.db.SelectContext(ctx, &bookings,
		"SELECT * FROM service_bookings WHERE customer_id = $1 ORDER BY created_at DESC", customerID)
	return bookings, err
}

// GetServiceBookingsByStatus lists bookings in a given state for staff views.
func (s *Store) GetServiceBookingsByStatus(ctx context.Context, status models.ServiceBookingStatus) ([]models.ServiceBooking, error) {
	var bookings []models.ServiceBooking
	err := s.db.SelectContext(ctx, &bookings,
		"SELECT * FROM service_bookings WHERE status = $1 ORDER BY created_at", status)
	return bookings, err
}

// TransitionServiceBooking flips status with an optimistic current-status guard.
func (s *Store) TransitionServiceBooking(ctx context.Context, id int64, from, to models.ServiceBookingStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE service_bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		to, id, from)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// TransitionServiceBookingTx is TransitionServiceBooking inside a transaction.
func (s *Store) TransitionServiceBookingTx(ctx context.Context, tx *sqlx.Tx, id int64, from, to models.ServiceBookingStatus) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE service_bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		to, id, from)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// HasDealerAssignment reports whether a booking already has a dealer.
func (s *Store) HasDealerAssignment(ctx context.Context, bookingID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM dealer_assignments WHERE booking_id = $1)", bookingID)
	return exists, err
}

// CreateDealerAssignmentTx inserts the one-to-one dealer assignment; the
// unique booking_id constraint backs up the existence check under races.
func (s *Store) CreateDealerAssignmentTx(ctx context.Context, tx *sqlx.Tx, a *models.DealerAssignment) error {
	query := `
		INSERT INTO dealer_assignments (booking_id, dealer_id, service_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := tx.GetContext(ctx, a, query, a.BookingID, a.DealerID, a.ServiceID)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
		return ErrConflict
	}
	return err
}

// GetDealerAssignment retrieves the assignment for a booking
func (s *Store) GetDealerAssignment(ctx context.Context, bookingID int64) (*models.DealerAssignment, error) {
	var a models.DealerAssignment
	err := s.db.GetContext(ctx, &a,
		"SELECT * FROM dealer_assignments WHERE booking_id = $1", bookingID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetBookingsByDealer lists service bookings assigned to a dealer.
func (s *Store) GetBookingsByDealer(ctx context.Context, dealerID int64) ([]models.ServiceBooking, error) {
	query := `
		SELECT sb.* FROM service_bookings sb
		JOIN dealer_assignments da ON da.booking_id = sb.id
		WHERE da.dealer_id = $1
		ORDER BY sb.created_at DESC`

	var bookings []models.ServiceBooking
	err := s.db.SelectContext(ctx, &bookings, query, dealerID)
	return bookings, err
}

// DeleteQuotationItemsTx clears a booking's quotation so a resubmission
// replaces it wholesale rather than accumulating rows.
func (s *Store) DeleteQuotationItemsTx(ctx context.Context, tx *sqlx.Tx, bookingID int64) error {
	_, err := tx.ExecContext(ctx,
		"DELETE FROM quotation_items WHERE booking_id = $1", bookingID)
	return err
}

// CreateQuotationItemTx inserts one dealer-selected material row.
func (s *Store) CreateQuotationItemTx(ctx context.Context, tx *sqlx.Tx, q *models.QuotationItem) error {
	query := `
		INSERT INTO quotation_items (booking_id, store_item_id, quantity, cost)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return tx.GetContext(ctx, &q.ID, query, q.BookingID, q.StoreItemID, q.Quantity, q.Cost)
}

// GetQuotationItemsByBookingID retrieves a booking's quotation items
func (s *Store) GetQuotationItemsByBookingID(ctx context.Context, bookingID int64) ([]models.QuotationItem, error) {
	var items []models.QuotationItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM quotation_items WHERE booking_id = $1", bookingID)
	return items, err
}

// GetQuotationItemsByBookingIDTx reads quotation items inside the
// material-release transaction.
func (s *Store) GetQuotationItemsByBookingIDTx(ctx context.Context, tx *sqlx.Tx, bookingID int64) ([]models.QuotationItem, error) {
	var items []models.QuotationItem
	err := tx.SelectContext(ctx, &items,
		"SELECT * FROM quotation_items WHERE booking_id = $1", bookingID)
	return items, err
}

// UpsertServicePaymentTx creates the pending quotation payment for a
// booking, or refreshes its amount while still pending.
func (s *Store) UpsertServicePaymentTx(ctx context.Context, tx *sqlx.Tx, p *models.ServicePayment) error {
	query := `
		INSERT INTO service_payments (booking_id, customer_id, amount, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (booking_id) DO UPDATE
			SET amount = EXCLUDED.amount, updated_at = NOW()
			WHERE service_payments.status = $4
		RETURNING id, created_at, updated_at`

	err := tx.GetContext(ctx, p, query, p.BookingID, p.CustomerID, p.Amount, models.ServicePaymentPending)
	if err == sql.ErrNoRows {
		// Conflict row exists but is past pending, so the quotation is locked.
		return ErrConflict
	}
	return err
}

// GetServicePaymentByID retrieves a service payment
func (s *Store) GetServicePaymentByID(ctx context.Context, id int64) (*models.ServicePayment, error) {
	var p models.ServicePayment
	err := s.db.GetContext(ctx, &p, "SELECT * FROM service_payments WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetServicePaymentByBookingID retrieves the service payment of a booking
func (s *Store) GetServicePaymentByBookingID(ctx context.Context, bookingID int64) (*models.ServicePayment, error) {
	var p models.ServicePayment
	err := s.db.GetContext(ctx, &p, "SELECT * FROM service_payments WHERE booking_id = $1", bookingID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetServicePaymentReference records the customer's payment method and
// reference, only while the payment is still pending and owned by them.
func (s *Store) SetServicePaymentReference(ctx context.Context, id, customerID int64, method, reference string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE service_payments SET method = $1, reference_code = $2, updated_at = NOW()
		 WHERE id = $3 AND customer_id = $4 AND status = $5`,
		method, reference, id, customerID, models.ServicePaymentPending)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// TransitionServicePayment flips status with an optimistic current-status guard.
func (s *Store) TransitionServicePayment(ctx context.Context, id int64, from, to models.ServicePaymentStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE service_payments SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		to, id, from)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// TransitionServicePaymentTx is TransitionServicePayment inside a transaction.
func (s *Store) TransitionServicePaymentTx(ctx context.Context, tx *sqlx.Tx, id int64, from, to models.ServicePaymentStatus) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE service_payments SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		to, id, from)
	if err != nil {
		return err
	}
	return requireRow(res)
}
