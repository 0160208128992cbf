package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tomstradingroom/funnel-server/internal/logger"
	"github.com/tomstradingroom/funnel-server/internal/model"
)

func TestMailing_Unsubscribe(t *testing.T) {
	users := &MockUserStore{}
	users.On("GetByEmail", mock.Anything, "jane@example.com").Return(model.User{
		Email:       "jane@example.com",
		EmailStatus: model.EmailStatusActive,
	}, nil)
	users.On("SetEmailStatus", mock.Anything, "jane@example.com", model.EmailStatusUnsubscribed).Return(nil)

	svc := NewMailing(users, &MockMailingList{}, &MockEmailSender{}, logger.New(0))

	result, err := svc.Unsubscribe(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, Unsubscribed, result)
	users.AssertExpectations(t)
}

func TestMailing_Unsubscribe_AlreadyUnsubscribed(t *testing.T) {
	users := &MockUserStore{}
	users.On("GetByEmail", mock.Anything, "gone@example.com").Return(model.User{
		Email:       "gone@example.com",
		EmailStatus: model.EmailStatusUnsubscribed,
	}, nil)

	svc := NewMailing(users, &MockMailingList{}, &MockEmailSender{}, logger.New(0))

	result, err := svc.Unsubscribe(context.Background(), "gone@example.com")
	require.NoError(t, err)
	assert.Equal(t, AlreadyUnsubscribed, result)
	users.AssertNotCalled(t, "SetEmailStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestMailing_Unsubscribe_NotFound(t *testing.T) {
	users := &MockUserStore{}
	users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(model.User{}, model.ErrNotFound)

	svc := NewMailing(users, &MockMailingList{}, &MockEmailSender{}, logger.New(0))

	_, err := svc.Unsubscribe(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestMailing_MarkBounced(t *testing.T) {
	users := &MockUserStore{}
	users.On("SetEmailStatus", mock.Anything, "bounce@example.com", model.EmailStatusBounced).Return(nil)

	svc := NewMailing(users, &MockMailingList{}, &MockEmailSender{}, logger.New(0))

	require.NoError(t, svc.MarkBounced(context.Background(), "bounce@example.com"))
	users.AssertExpectations(t)
}

func TestMailing_MemberCount(t *testing.T) {
	users := &MockUserStore{}
	users.On("CountByStatus", mock.Anything, model.EmailStatusActive).Return(int64(42), nil)

	svc := NewMailing(users, &MockMailingList{}, &MockEmailSender{}, logger.New(0))

	count, err := svc.MemberCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
}

func TestMailing_TestSend(t *testing.T) {
	list := &MockMailingList{}
	list.On("AddContact", mock.Anything, "check@example.com", "Test", "User", "test-endpoint").Return(nil)

	emails := &MockEmailSender{}
	emails.On("SendWelcome", mock.Anything, "check@example.com", "Test User").Return(assert.AnError)

	svc := NewMailing(&MockUserStore{}, list, emails, logger.New(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // skip the rate-limit pause

	result := svc.TestSend(ctx, "check@example.com")
	assert.NoError(t, result.ContactErr)
	assert.ErrorIs(t, result.EmailErr, assert.AnError)
}
