package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tomstradingroom/funnel-server/internal/logger"
	"github.com/tomstradingroom/funnel-server/internal/model"
)

// UnsubscribeResult reports which page the unsubscribe endpoint should show.
type UnsubscribeResult int

const (
	Unsubscribed UnsubscribeResult = iota
	AlreadyUnsubscribed
)

// Mailing serves the subscription-management operations: unsubscribe links,
// the public member counter and the mail-delivery diagnostics check.
type Mailing struct {
	users  model.UserStore
	list   MailingList
	emails EmailSender
	logger *logger.Logger
}

func NewMailing(users model.UserStore, list MailingList, emails EmailSender, logger *logger.Logger) *Mailing {
	return &Mailing{
		users:  users,
		list:   list,
		emails: emails,
		logger: logger,
	}
}

// Unsubscribe flips a stored address to unsubscribed. An address that is
// already unsubscribed is left untouched, preserving its original
// unsubscribed-at timestamp. Unknown addresses return model.ErrNotFound.
func (s *Mailing) Unsubscribe(ctx context.Context, email string) (UnsubscribeResult, error) {
	s.logger.Info("Mailing service: unsubscribe request",
		"email", email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return 0, fmt.Errorf("failed to look up user by email: %w", err)
	}

	if user.EmailStatus == model.EmailStatusUnsubscribed {
		s.logger.Info("Mailing service: already unsubscribed",
			"email", email)
		return AlreadyUnsubscribed, nil
	}

	if err := s.users.SetEmailStatus(ctx, email, model.EmailStatusUnsubscribed); err != nil {
		return 0, fmt.Errorf("failed to unsubscribe: %w", err)
	}

	s.logger.Info("Mailing service: unsubscribed",
		"email", email)

	return Unsubscribed, nil
}

// MarkBounced records a delivery bounce for an address.
func (s *Mailing) MarkBounced(ctx context.Context, email string) error {
	if err := s.users.SetEmailStatus(ctx, email, model.EmailStatusBounced); err != nil {
		return fmt.Errorf("failed to mark bounced: %w", err)
	}
	return nil
}

// MemberCount returns the number of active subscribers, which the site shows
// as the community member count.
func (s *Mailing) MemberCount(ctx context.Context) (int64, error) {
	count, err := s.users.CountByStatus(ctx, model.EmailStatusActive)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

// TestSendResult reports the outcome of each delivery check step.
type TestSendResult struct {
	ContactErr error
	EmailErr   error
}

// TestSend exercises the mail pipeline end to end for a given address:
// mailing-list add, a pause for the provider rate limit, then a welcome
// email. Used by the diagnostics endpoint only.
func (s *Mailing) TestSend(ctx context.Context, email string) TestSendResult {
	var result TestSendResult

	result.ContactErr = s.list.AddContact(ctx, email, "Test", "User", "test-endpoint")

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
	}

	result.EmailErr = s.emails.SendWelcome(ctx, email, "Test User")

	return result
}
