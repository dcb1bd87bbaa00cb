package service

import (
	"context"
	"strings"

	"rentalhub/internal/models"
	"rentalhub/internal/store"
	"rentalhub/internal/util"

	"go.uber.org/zap"
)

// FeedbackService handles customer feedback and the single staff reply.
type FeedbackService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(st *store.Store) *FeedbackService {
	return &FeedbackService{
		store:  st,
		logger: util.GetLogger(),
	}
}

var staffRoles = map[string]bool{
	models.RoleFinance:        true,
	models.RoleEventManager:   true,
	models.RoleServiceManager: true,
	models.RoleDealer:         true,
	models.RoleStorekeeper:    true,
	models.RoleSupplier:       true,
}

// SubmitFeedbackRequest addresses a message to one staff member by
// explicit role and id; no name matching is involved.
type SubmitFeedbackRequest struct {
	StaffRole string `json:"staff_role" binding:"required"`
	StaffID   int64  `json:"staff_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// SubmitFeedback creates a pending feedback row after checking the
// addressee exists.
func (s *FeedbackService) SubmitFeedback(ctx context.Context, customerID int64, req *SubmitFeedbackRequest) (*models.Feedback, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, validationf("message must not be empty")
	}
	if !staffRoles[req.StaffRole] {
		return nil, validationf("unknown staff role: %q", req.StaffRole)
	}

	exists, err := s.store.StaffExists(ctx, req.StaffID, req.StaffRole)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, validationf("no %s with id %d", req.StaffRole, req.StaffID)
	}

	feedback := &models.Feedback{
		CustomerID: customerID,
		StaffRole:  req.StaffRole,
		StaffID:    req.StaffID,
		Message:    req.Message,
		Status:     models.FeedbackPending,
	}
	if err := s.store.CreateFeedback(ctx, feedback); err != nil {
		return nil, err
	}

	s.logger.Info("Feedback submitted",
		zap.Int64("feedback_id", feedback.ID),
		zap.String("staff_role", req.StaffRole),
		zap.Int64("staff_id", req.StaffID))

	return feedback, nil
}

// GetFeedback retrieves one feedback thread, scoped to its author.
func (s *FeedbackService) GetFeedback(ctx context.Context, customerID, feedbackID int64) (*models.Feedback, error) {
	fb, err := s.store.GetFeedbackByID(ctx, feedbackID)
	if err != nil {
		return nil, err
	}
	if fb.CustomerID != customerID {
		return nil, store.ErrNotFound
	}
	return fb, nil
}

// ListCustomerFeedback lists a customer's own feedback.
func (s *FeedbackService) ListCustomerFeedback(ctx context.Context, customerID int64) ([]models.Feedback, error) {
	return s.store.GetFeedbackByCustomer(ctx, customerID)
}

// ListStaffFeedback lists feedback addressed to one staff member.
func (s *FeedbackService) ListStaffFeedback(ctx context.Context, role string, staffID int64) ([]models.Feedback, error) {
	return s.store.GetFeedbackForStaff(ctx, role, staffID)
}

// Reply records the single staff reply and resolves the feedback. The
// identity comes from the verified token only; a feedback already
// resolved reads as not found.
func (s *FeedbackService) Reply(ctx context.Context, staffID int64, feedbackID int64, reply string) error {
	if strings.TrimSpace(reply) == "" {
		return validationf("reply must not be empty")
	}

	if err := s.store.ReplyFeedback(ctx, feedbackID, staffID, reply); err != nil {
		return err
	}

	util.FeedbackResolvedTotal.Inc()
	s.logger.Info("Feedback resolved",
		zap.Int64("feedback_id", feedbackID),
		zap.Int64("staff_id", staffID))
	return nil
}
