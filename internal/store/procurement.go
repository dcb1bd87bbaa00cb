package store

import (
	"context"
	"database/sql"

	"rentalhub/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// CreateProcurementItemTx inserts one storekeeper material request.
func (s *Store) CreateProcurementItemTx(ctx context.Context, tx *sqlx.Tx, item *models.ProcurementItem) error {
	query := `
		INSERT INTO procurement_items
			(storekeeper_id, supplier_id, store_item_id, quantity, total_cost, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	return tx.GetContext(ctx, item, query,
		item.StorekeeperID, item.SupplierID, item.StoreItemID,
		item.Quantity, item.TotalCost, item.Status)
}

// GetProcurementItemByID retrieves a procurement item
func (s *Store) GetProcurementItemByID(ctx context.Context, id int64) (*models.ProcurementItem, error) {
	var item models.ProcurementItem
	err := s.db.GetContext(ctx, &item, "SELECT * FROM procurement_items WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetProcurementItemsBySupplier lists a supplier's items, optionally by status.
func (s *Store) GetProcurementItemsBySupplier(ctx context.Context, supplierID int64, status models.ProcurementStatus) ([]models.ProcurementItem, error) {
	var items []models.ProcurementItem
	if status == "" {
		err := s.db.SelectContext(ctx, &items,
			"SELECT * FROM procurement_items WHERE supplier_id = $1 ORDER BY created_at", supplierID)
		return items, err
	}
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM procurement_items WHERE supplier_id = $1 AND status = $2 ORDER BY created_at",
		supplierID, status)
	return items, err
}

// ApproveTenders bulk-flips pending -> approved for the supplier's own
// items among the given ids, returning how many rows changed. Zero is a
// legitimate no-op, not an error.
func (s *Store) ApproveTenders(ctx context.Context, supplierID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE procurement_items SET status = $1, updated_at = NOW()
		 WHERE supplier_id = $2 AND status = $3 AND id = ANY($4)`,
		models.ProcurementApproved, supplierID, models.ProcurementPending, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// TransitionProcurementItemTx flips a single item's status inside a transaction.
func (s *Store) TransitionProcurementItemTx(ctx context.Context, tx *sqlx.Tx, id int64, from, to models.ProcurementStatus) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE procurement_items SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		to, id, from)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CreateSupplierPayment inserts a pending supplier payment; the unique
// procurement_item_id keeps settlements 1:1 with items.
func (s *Store) CreateSupplierPayment(ctx context.Context, p *models.SupplierPayment) error {
	query := `
		INSERT INTO supplier_payments
			(procurement_item_id, supplier_id, amount, method, reference_code, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := s.db.GetContext(ctx, p, query,
		p.ProcurementItemID, p.SupplierID, p.Amount, p.Method, p.ReferenceCode, p.Status)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
		return ErrConflict
	}
	return err
}

// GetSupplierPaymentByID retrieves a supplier payment
func (s *Store) GetSupplierPaymentByID(ctx context.Context, id int64) (*models.SupplierPayment, error) {
	var p models.SupplierPayment
	err := s.db.GetContext(ctx, &p, "SELECT * FROM supplier_payments WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ConfirmSupplierPaymentTx flips the payment pending -> approved, scoped
// to the owning supplier, inside the confirm transaction.
func (s *Store) ConfirmSupplierPaymentTx(ctx context.Context, tx *sqlx.Tx, paymentID, supplierID int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE supplier_payments SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND supplier_id = $3 AND status = $4`,
		models.SupplierPaymentApproved, paymentID, supplierID, models.SupplierPaymentPending)
	if err != nil {
		return err
	}
	return requireRow(res)
}
