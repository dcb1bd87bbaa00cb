package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rentalhub/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStoreWithDB wraps an existing connection (used by tests).
func NewStoreWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn inside a transaction. The transaction is rolled back
// whenever fn returns an error, so multi-row workflows are all-or-nothing.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback failed: %v (after: %w)", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts retrieves all products
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY id")
	return products, err
}

// ReserveStock locks the product row and deducts quantity within the
// caller's transaction. This row lock is the single concurrency-critical
// section of the system: without it two simultaneous checkouts could
// both read sufficient stock and both deduct.
func (s *Store) ReserveStock(ctx context.Context, tx *sqlx.Tx, productID int64, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("quantity must be positive: %d", quantity)
	}

	var available int
	err := tx.GetContext(ctx, &available,
		"SELECT quantity FROM products WHERE id = $1 FOR UPDATE", productID)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock product: %w", err)
	}

	if available < quantity {
		return available, ErrInsufficientStock
	}

	remaining := available - quantity
	_, err = tx.ExecContext(ctx,
		"UPDATE products SET quantity = quantity - $1 WHERE id = $2",
		quantity, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to reserve stock: %w", err)
	}

	return remaining, nil
}

// ReleaseStock restores previously deducted product quantity within the
// caller's transaction. The quantity must come from a persisted order
// item row, never from client input, so a release can never exceed what
// was deducted.
func (s *Store) ReleaseStock(ctx context.Context, tx *sqlx.Tx, productID int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive: %d", quantity)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE products SET quantity = quantity + $1 WHERE id = $2",
		quantity, productID)
	if err != nil {
		return fmt.Errorf("failed to release stock: %w", err)
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

// GetStoreItemByID retrieves a warehouse store item
func (s *Store) GetStoreItemByID(ctx context.Context, id int64) (*models.StoreItem, error) {
	var item models.StoreItem
	err := s.db.GetContext(ctx, &item, "SELECT * FROM store_items WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetStoreItemsByIDs retrieves multiple store items by IDs
func (s *Store) GetStoreItemsByIDs(ctx context.Context, ids []int64) ([]models.StoreItem, error) {
	if len(ids) == 0 {
		return []models.StoreItem{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM store_items WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var items []models.StoreItem
	err = s.db.SelectContext(ctx, &items, query, args...)
	return items, err
}

// ReserveStoreItem mirrors ReserveStock against the store_items table;
// used by the storekeeper material release.
func (s *Store) ReserveStoreItem(ctx context.Context, tx *sqlx.Tx, itemID int64, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("quantity must be positive: %d", quantity)
	}

	var available int
	err := tx.GetContext(ctx, &available,
		"SELECT quantity FROM store_items WHERE id = $1 FOR UPDATE", itemID)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock store item: %w", err)
	}

	if available < quantity {
		return available, ErrInsufficientStock
	}

	remaining := available - quantity
	_, err = tx.ExecContext(ctx,
		"UPDATE store_items SET quantity = quantity - $1 WHERE id = $2",
		quantity, itemID)
	if err != nil {
		return 0, fmt.Errorf("failed to deduct store item: %w", err)
	}

	return remaining, nil
}
