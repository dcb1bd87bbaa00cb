package store

import (
	"context"
	"database/sql"

	"rentalhub/internal/models"

	"github.com/lib/pq"
)

// CreateCustomer inserts a new customer; duplicate email yields ErrConflict.
func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO customers (name, email, phone, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := s.db.GetContext(ctx, c, query, c.Name, c.Email, c.Phone, c.PasswordHash)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
		return ErrConflict
	}
	return err
}

// GetCustomerByEmail retrieves a customer by email
func (s *Store) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var c models.Customer
	err := s.db.GetContext(ctx, &c, "SELECT * FROM customers WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CustomerExists reports whether the customer id is live; tokens are
// re-checked against this on every authenticated customer request.
func (s *Store) CustomerExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)", id)
	return exists, err
}

// GetStaffByEmail retrieves a staff member by email
func (s *Store) GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error) {
	var st models.Staff
	err := s.db.GetContext(ctx, &st, "SELECT * FROM staff WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// StaffExists reports whether a staff member with the given id and role exists.
func (s *Store) StaffExists(ctx context.Context, id int64, role string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM staff WHERE id = $1 AND role = $2)", id, role)
	return exists, err
}
