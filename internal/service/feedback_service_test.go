package service

import (
	"context"
	"testing"

	"rentalhub/internal/models"
	"rentalhub/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockFeedbackService(t *testing.T) (*FeedbackService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.NewStoreWithDB(sqlx.NewDb(db, "postgres"))
	return NewFeedbackService(st), mock
}

func TestSubmitFeedbackRejectsBlankMessage(t *testing.T) {
	svc, mock := newMockFeedbackService(t)

	_, err := svc.SubmitFeedback(context.Background(), 1, &SubmitFeedbackRequest{
		StaffRole: models.RoleDealer,
		StaffID:   9,
		Message:   "   ",
	})

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitFeedbackRejectsUnknownRole(t *testing.T) {
	svc, mock := newMockFeedbackService(t)

	_, err := svc.SubmitFeedback(context.Background(), 1, &SubmitFeedbackRequest{
		StaffRole: "janitor",
		StaffID:   9,
		Message:   "where is my tent",
	})

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitFeedbackRejectsCustomerAsAddressee(t *testing.T) {
	svc, mock := newMockFeedbackService(t)

	// feedback goes to staff, never to another customer
	_, err := svc.SubmitFeedback(context.Background(), 1, &SubmitFeedbackRequest{
		StaffRole: models.RoleCustomer,
		StaffID:   2,
		Message:   "hello",
	})

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplyRejectsBlankReply(t *testing.T) {
	svc, mock := newMockFeedbackService(t)

	err := svc.Reply(context.Background(), 9, 1, "")

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
