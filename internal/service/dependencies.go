package service

import (
	"context"

	"github.com/tomstradingroom/funnel-server/internal/model"
	"github.com/tomstradingroom/funnel-server/internal/notify/discord"
	"github.com/tomstradingroom/funnel-server/internal/track/aurea"
)

// Notifier posts a message to a chat channel webhook.
type Notifier interface {
	Send(ctx context.Context, webhookURL string, msg discord.Message) error
}

// MailingList maintains the remarketing contact list.
type MailingList interface {
	AddContact(ctx context.Context, email, firstName, lastName, source string) error
}

// EmailSender sends the funnel's transactional emails.
type EmailSender interface {
	SendWelcome(ctx context.Context, to, name string) error
	SendCancellation(ctx context.Context, to, name string) error
	SendRefund(ctx context.Context, to, name, amount string) error
	SendMembershipExpired(ctx context.Context, to, name string) error
}

// Tracker records funnel events in the CRM.
type Tracker interface {
	Track(ctx context.Context, name string, properties map[string]any, ids aurea.ContextIDs) error
	Identify(ctx context.Context, email, anonymousID string, traits map[string]any) error
}

// UserDirectory looks up member details at the payment provider.
type UserDirectory interface {
	GetUserEmail(ctx context.Context, userID string) (string, error)
}

// StatsScraper fetches trading statistics for a DARWIN code.
type StatsScraper interface {
	Scrape(ctx context.Context, code string) (model.DarwinexStats, error)
}
