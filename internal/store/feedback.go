package store

import (
	"context"
	"database/sql"

	"rentalhub/internal/models"
)

// CreateFeedback inserts a pending feedback row addressed to a specific
// staff member via explicit (staff_role, staff_id).
func (s *Store) CreateFeedback(ctx context.Context, f *models.Feedback) error {
	query := `
		INSERT INTO feedback (customer_id, staff_role, staff_id, message, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, f, query,
		f.CustomerID, f.StaffRole, f.StaffID, f.Message, f.Status)
}

// GetFeedbackByID retrieves a feedback row
func (s *Store) GetFeedbackByID(ctx context.Context, id int64) (*models.Feedback, error) {
	var f models.Feedback
	err := s.db.GetContext(ctx, &f, "SELECT * FROM feedback WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetFeedbackForStaff lists feedback addressed to one staff member.
func (s *Store) GetFeedbackForStaff(ctx context.Context, role string, staffID int64) ([]models.Feedback, error) {
	var rows []models.Feedback
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM feedback WHERE staff_role = $1 AND staff_id = $2 ORDER BY created_at DESC",
		role, staffID)
	return rows, err
}

// GetFeedbackByCustomer lists a customer's own feedback.
func (s *Store) GetFeedbackByCustomer(ctx context.Context, customerID int64) ([]models.Feedback, error) {
	var rows []models.Feedback
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM feedback WHERE customer_id = $1 ORDER BY created_at DESC", customerID)
	return rows, err
}

// ReplyFeedback records the single staff reply and resolves the feedback.
// The pending guard makes a second reply read as not found.
func (s *Store) ReplyFeedback(ctx context.Context, id, staffID int64, reply string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE feedback SET reply = $1, replied_by = $2, status = $3, updated_at = NOW()
		 WHERE id = $4 AND status = $5`,
		reply, staffID, models.FeedbackResolved, id, models.FeedbackPending)
	if err != nil {
		return err
	}
	return requireRow(res)
}
