package service

import (
	"context"
	"errors"
	"regexp"

	"rentalhub/internal/auth"
	"rentalhub/internal/models"
	"rentalhub/internal/store"
	"rentalhub/internal/util"

	"go.uber.org/zap"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)
)

// ErrBadCredentials is returned for unknown accounts and wrong passwords
// alike, so login failures do not reveal which one it was.
var ErrBadCredentials = errors.New("invalid email or password")

// AccountService handles registration and login for customers and staff.
type AccountService struct {
	store  *store.Store
	tokens *auth.Manager
	logger *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(st *store.Store, tokens *auth.Manager) *AccountService {
	return &AccountService{
		store:  st,
		tokens: tokens,
		logger: util.GetLogger(),
	}
}

// RegisterRequest is a customer registration submission.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// RegisterCustomer creates a customer account.
func (s *AccountService) RegisterCustomer(ctx context.Context, req *RegisterRequest) (*models.Customer, error) {
	if !emailPattern.MatchString(req.Email) {
		return nil, validationf("invalid email address")
	}
	if !phonePattern.MatchString(req.Phone) {
		return nil, validationf("invalid phone number")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	customer := &models.Customer{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
	}
	if err := s.store.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}

	s.logger.Info("Customer registered", zap.Int64("customer_id", customer.ID))
	return customer, nil
}

// LoginCustomer verifies credentials and issues a customer bearer token.
func (s *AccountService) LoginCustomer(ctx context.Context, email, password string) (string, *models.Customer, error) {
	customer, err := s.store.GetCustomerByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, ErrBadCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if !auth.CheckPassword(customer.PasswordHash, password) {
		return "", nil, ErrBadCredentials
	}

	token, err := s.tokens.IssueToken(customer.ID, customer.Name, models.RoleCustomer)
	if err != nil {
		return "", nil, err
	}
	return token, customer, nil
}

// LoginStaff verifies credentials and issues a role-scoped staff token.
func (s *AccountService) LoginStaff(ctx context.Context, email, password string) (string, *models.Staff, error) {
	staff, err := s.store.GetStaffByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, ErrBadCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if !auth.CheckPassword(staff.PasswordHash, password) {
		return "", nil, ErrBadCredentials
	}

	token, err := s.tokens.IssueToken(staff.ID, staff.Name, staff.Role)
	if err != nil {
		return "", nil, err
	}
	return token, staff, nil
}

// VerifyCustomer checks that a customer token still maps to a live
// account; this runs on every authenticated customer request.
func (s *AccountService) VerifyCustomer(ctx context.Context, customerID int64) (bool, error) {
	return s.store.CustomerExists(ctx, customerID)
}

// VerifyStaff checks that a staff token still maps to a live account
// with the claimed role.
func (s *AccountService) VerifyStaff(ctx context.Context, staffID int64, role string) (bool, error) {
	return s.store.StaffExists(ctx, staffID, role)
}
