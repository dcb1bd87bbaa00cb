package store

import (
	"context"

	"rentalhub/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// AddCartItem inserts a cart entry; the unique (customer_id, product_id)
// constraint turns a duplicate add into ErrConflict.
func (s *Store) AddCartItem(ctx context.Context, item *models.CartItem) error {
	query := `
		INSERT INTO cart_items (customer_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := s.db.GetContext(ctx, item, query, item.CustomerID, item.ProductID, item.Quantity)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
		return ErrConflict
	}
	return err
}

// GetCartLines lists the customer's cart joined with product prices.
func (s *Store) GetCartLines(ctx context.Context, customerID int64) ([]models.CartLine, error) {
	query := `
		SELECT ci.id, ci.customer_id, ci.product_id, ci.quantity, ci.created_at,
		       p.name AS product_name, p.rental_price AS unit_price,
		       p.rental_price * ci.quantity AS line_total
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.customer_id = $1
		ORDER BY ci.created_at`

	var lines []models.CartLine
	err := s.db.SelectContext(ctx, &lines, query, customerID)
	return lines, err
}

// UpdateCartItemQuantity sets the quantity on an existing cart entry.
func (s *Store) UpdateCartItemQuantity(ctx context.Context, customerID, productID int64, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $1 WHERE customer_id = $2 AND product_id = $3",
		quantity, customerID, productID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveCartItem deletes a single cart entry.
func (s *Store) RemoveCartItem(ctx context.Context, customerID, productID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE customer_id = $1 AND product_id = $2",
		customerID, productID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCartItemTx removes a cart entry inside the checkout transaction.
func (s *Store) DeleteCartItemTx(ctx context.Context, tx *sqlx.Tx, customerID, productID int64) error {
	res, err := tx.ExecContext(ctx,
		"DELETE FROM cart_items WHERE customer_id = $1 AND product_id = $2",
		customerID, productID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
