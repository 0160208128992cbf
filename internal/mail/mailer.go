// Package mail composes the funnel's transactional emails and mailing-list
// sync on top of the Resend API client.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/tomstradingroom/funnel-server/internal/logger"
	"github.com/tomstradingroom/funnel-server/internal/mail/resend"
)

// Mailer sends the funnel's templated emails and maintains the mailing list.
type Mailer struct {
	client                 *resend.Client
	from                   string
	audienceID             string
	cancellationTemplateID string
	appBaseURL             string
	logger                 *logger.Logger
}

func NewMailer(
	client *resend.Client,
	from string,
	audienceID string,
	cancellationTemplateID string,
	appBaseURL string,
	logger *logger.Logger,
) *Mailer {
	return &Mailer{
		client:                 client,
		from:                   from,
		audienceID:             audienceID,
		cancellationTemplateID: cancellationTemplateID,
		appBaseURL:             appBaseURL,
		logger:                 logger,
	}
}

// AddContact creates or updates a mailing-list contact. An already-existing
// contact is success. The source tag records which event produced the entry.
func (m *Mailer) AddContact(ctx context.Context, email, firstName, lastName, source string) error {
	if email == "" {
		return fmt.Errorf("missing email")
	}

	m.logger.Debug("Mailer: adding contact to mailing list",
		"email", email,
		"source", source)

	contactID, err := m.client.CreateContact(ctx, resend.Contact{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		Unsubscribed: false,
	})
	if errors.Is(err, resend.ErrContactExists) {
		m.logger.Info("Mailer: contact already exists",
			"email", email)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to add contact: %w", err)
	}

	if m.audienceID != "" && contactID != "" {
		if err := m.client.AddToAudience(ctx, contactID, m.audienceID); err != nil {
			// The contact itself was created; audience attachment is best-effort.
			m.logger.Error("Mailer: failed to add contact to audience",
				"email", email,
				"audience_id", m.audienceID,
				"error", err.Error())
		}
	}

	m.logger.Info("Mailer: contact added to mailing list",
		"email", email,
		"source", source)

	return nil
}

// SendWelcome sends the welcome email after a successful payment.
func (m *Mailer) SendWelcome(ctx context.Context, to, name string) error {
	return m.client.SendEmail(ctx, resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: "Welcome to Tom's Trading Room!",
		HTML:    welcomeHTML(orThere(name)),
	})
}

// SendCancellation sends the cancellation email via the stored template,
// including a personalised unsubscribe link.
func (m *Mailer) SendCancellation(ctx context.Context, to, name string) error {
	if m.cancellationTemplateID == "" {
		return fmt.Errorf("missing cancellation template id")
	}

	unsubscribeURL := fmt.Sprintf("%s/api/unsubscribe?email=%s", m.appBaseURL, url.QueryEscape(to))

	return m.client.SendEmail(ctx, resend.SendEmailRequest{
		From: m.from,
		To:   []string{to},
		Template: &resend.Template{
			ID: m.cancellationTemplateID,
			Variables: map[string]string{
				"whopName":        orThere(name),
				"UNSUBSCRIBE_URL": unsubscribeURL,
			},
		},
	})
}

// SendRefund confirms a processed refund. amount is already formatted for
// display ("USD 99.00").
func (m *Mailer) SendRefund(ctx context.Context, to, name, amount string) error {
	return m.client.SendEmail(ctx, resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: "Your Refund Has Been Processed",
		HTML:    refundHTML(orThere(name), amount),
	})
}

// SendMembershipExpired nudges an expired member to reactivate.
func (m *Mailer) SendMembershipExpired(ctx context.Context, to, name string) error {
	return m.client.SendEmail(ctx, resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: "Your Membership Has Expired - Reactivate Now",
		HTML:    membershipExpiredHTML(orThere(name)),
	})
}

func orThere(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
