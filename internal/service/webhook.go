package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomstradingroom/funnel-server/internal/logger"
	"github.com/tomstradingroom/funnel-server/internal/model"
	"github.com/tomstradingroom/funnel-server/internal/notify/discord"
	"github.com/tomstradingroom/funnel-server/internal/track/aurea"
)

const (
	defaultProduct = "TTR Membership"

	// Assumed revenue in cents when the event carries no amount.
	defaultRevenueCents int64 = 9900

	// Pause between consecutive Resend calls; the free tier allows 2 req/s.
	rateLimitPause = 600 * time.Millisecond
)

// WebhookConfig holds the notification channels used by the webhook service.
type WebhookConfig struct {
	PaymentsWebhookURL    string
	MembershipsWebhookURL string
}

// Webhook reconciles verified provider events into the identity store and
// dispatches side effects: Discord notifications, CRM tracking, mailing-list
// sync and transactional emails. Every effect is best-effort; failures are
// logged and never surfaced to the provider, whose only retry trigger is a
// non-2xx response.
type Webhook struct {
	users     model.UserStore
	checkouts model.CheckoutStore
	purchases model.PurchaseStore
	notifier  Notifier
	list      MailingList
	emails    EmailSender
	tracker   Tracker
	directory UserDirectory
	config    WebhookConfig
	pause     time.Duration
	logger    *logger.Logger
}

func NewWebhook(
	users model.UserStore,
	checkouts model.CheckoutStore,
	purchases model.PurchaseStore,
	notifier Notifier,
	list MailingList,
	emails EmailSender,
	tracker Tracker,
	directory UserDirectory,
	config WebhookConfig,
	logger *logger.Logger,
) *Webhook {
	return &Webhook{
		users:     users,
		checkouts: checkouts,
		purchases: purchases,
		notifier:  notifier,
		list:      list,
		emails:    emails,
		tracker:   tracker,
		directory: directory,
		config:    config,
		pause:     rateLimitPause,
		logger:    logger,
	}
}

// Process routes a verified event to its handling branch. Unknown types are
// logged and ignored. There is no event-level de-duplication: a re-delivered
// event converges to the same stored identity but re-sends notifications.
func (s *Webhook) Process(ctx context.Context, event model.Event) {
	s.logger.Info("Webhook service: processing event",
		"type", event.Type,
		"user_id", event.Data.UserID())

	switch event.Type {
	case model.EventPaymentSucceeded:
		s.paymentSucceeded(ctx, event.Data)
	case model.EventPaymentFailed:
		s.paymentFailed(ctx, event.Data)
	case model.EventPaymentPending:
		s.paymentPending(ctx, event.Data)
	case model.EventPaymentRefunded:
		s.paymentRefunded(ctx, event.Data)
	case model.EventPaymentAccountOnHold:
		s.accountOnHold(ctx, event.Data)
	case model.EventMembershipActivated:
		s.membershipNotice(ctx, event.Data, "Membership Activated", "A new member has joined!", discord.ColorSuccess)
	case model.EventMembershipWentValid:
		s.membershipNotice(ctx, event.Data, "Membership Went Valid", "A trial has ended and membership is now active!", discord.ColorSuccess)
	case model.EventMembershipDeactivated:
		s.membershipDeactivated(ctx, event.Data)
	case model.EventMembershipCancelled:
		s.membershipCancelled(ctx, event.Data)
	case model.EventMembershipWentInvalid:
		s.membershipWentInvalid(ctx, event.Data)
	default:
		s.logger.Info("Webhook service: unhandled event type",
			"type", event.Type)
	}
}

func (s *Webhook) paymentSucceeded(ctx context.Context, data model.EventData) {
	email := data.BestEmail()
	product := productOrDefault(data)

	fields := []discord.Field{
		{Name: "User", Value: userField(data), Inline: true},
		{Name: "Product", Value: data.ProductTitle(), Inline: true},
	}
	if data.FinalAmount != nil {
		fields = append(fields, discord.Field{Name: "Amount", Value: formatAmount(data.Currency, data.FinalAmount), Inline: true})
		if data.Subtotal == nil || *data.Subtotal != *data.FinalAmount {
			fields = append(fields, discord.Field{Name: "Subtotal", Value: formatAmount(data.Currency, data.Subtotal), Inline: true})
		}
	}
	s.notify(ctx, s.config.PaymentsWebhookURL, discord.NewEmbed(
		"Payment succeeded",
		"A new payment has been successfully processed!",
		discord.ColorSuccess,
		fields...,
	))

	ids := s.trackingIDs(data, email)

	if email != "" && data.AnonymousID() != "" {
		err := s.tracker.Identify(ctx, email, data.AnonymousID(), map[string]any{
			"name":         firstNonEmpty(data.UserName(), data.Username(), "Unknown"),
			"email":        email,
			"username":     data.Username(),
			"product":      product,
			"whopUserId":   data.UserID(),
			"purchaseDate": time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			s.logger.Error("Webhook service: failed to identify user in CRM",
				"error", err.Error())
		}
	}

	props := map[string]any{
		"conversionType": "purchase",
		"revenue":        float64(revenueCents(data)) / 100,
		"currency":       currencyOrDefault(data),
		"orderId":        data.ID,
		"funnelStage":    data.FunnelStage(),
		"product":        product,
		"username":       data.Username(),
		"email":          email,
		"source":         "whop_webhook",
		"isConversion":   true,
	}
	if started, ok := data.CheckoutStartedAt(); ok {
		props["checkoutDuration"] = int(time.Since(started).Seconds())
	}
	s.track(ctx, "checkout_completed", props, ids)

	s.track(ctx, "membership_activated", map[string]any{
		"product":     product,
		"username":    data.Username(),
		"email":       email,
		"activatedAt": time.Now().UTC().Format(time.RFC3339),
	}, ids)

	if anonymousID := data.AnonymousID(); anonymousID != "" {
		if err := s.purchases.Mark(ctx, anonymousID); err != nil {
			s.logger.Error("Webhook service: failed to mark purchase flag",
				"anonymous_id", anonymousID,
				"error", err.Error())
		}
		if err := s.checkouts.Complete(ctx, anonymousID); err != nil {
			s.logger.Error("Webhook service: failed to complete checkout session",
				"anonymous_id", anonymousID,
				"error", err.Error())
		}
	}

	if email == "" {
		return
	}

	user := s.captureIdentity(ctx, data, email, model.EventPaymentSucceeded)

	s.sleep(ctx)
	if err := s.emails.SendWelcome(ctx, email, user.DisplayName()); err != nil {
		s.logger.Error("Webhook service: failed to send welcome email",
			"email", email,
			"error", err.Error())
	}
}

func (s *Webhook) paymentFailed(ctx context.Context, data model.EventData) {
	email := data.BestEmail()

	s.notify(ctx, s.config.PaymentsWebhookURL, discord.NewEmbed(
		"Payment Failed",
		"A payment attempt has failed.",
		discord.ColorError,
		discord.Field{Name: "User", Value: userField(data), Inline: true},
		discord.Field{Name: "Product", Value: data.ProductTitle(), Inline: true},
	))

	s.track(ctx, "payment_failed", map[string]any{
		"attemptedRevenue": float64(revenueCents(data)) / 100,
		"currency":         currencyOrDefault(data),
		"failureReason":    firstNonEmpty(data.FailureReason, "unknown"),
		"product":          productOrDefault(data),
		"username":         data.Username(),
		"email":            email,
	}, s.trackingIDs(data, email))

	if email != "" {
		s.captureIdentity(ctx, data, email, model.EventPaymentFailed)
	}
}

func (s *Webhook) paymentPending(ctx context.Context, data model.EventData) {
	email := data.BestEmail()

	s.notify(ctx, s.config.PaymentsWebhookURL, discord.NewEmbed(
		"Payment Pending",
		"A payment is pending confirmation.",
		discord.ColorPending,
		discord.Field{Name: "User", Value: userField(data), Inline: true},
		discord.Field{Name: "Product", Value: data.ProductTitle(), Inline: true},
	))

	s.track(ctx, "payment_pending", map[string]any{
		"pendingRevenue": float64(revenueCents(data)) / 100,
		"currency":       currencyOrDefault(data),
		"paymentMethod":  firstNonEmpty(data.PaymentMethod, "unknown"),
		"product":        productOrDefault(data),
		"username":       data.Username(),
		"email":          email,
	}, s.trackingIDs(data, email))

	if email != "" {
		s.captureIdentity(ctx, data, email, model.EventPaymentPending)
	}
}

func (s *Webhook) paymentRefunded(ctx context.Context, data model.EventData) {
	email := data.BestEmail()

	refundAmount := data.RefundedAmount
	if refundAmount == nil {
		refundAmount = data.FinalAmount
	}

	s.notify(ctx, s.config.PaymentsWebhookURL, discord.NewEmbed(
		"Payment Refunded",
		"A payment has been refunded.",
		discord.ColorWarning,
		discord.Field{Name: "User", Value: userField(data), Inline: true},
		discord.Field{Name: "Product", Value: data.ProductTitle(), Inline: true},
		discord.Field{Name: "Refund Amount", Value: formatAmount(data.Currency, refundAmount), Inline: true},
	))

	var refundCents int64
	if refundAmount != nil {
		refundCents = *refundAmount
	}
	s.track(ctx, "payment_refunded", map[string]any{
		"refundAmount": float64(refundCents) / 100,
		"currency":     currencyOrDefault(data),
		"refundReason": firstNonEmpty(data.RefundReason, "unknown"),
		"orderId":      data.ID,
		"product":      productOrDefault(data),
		"username":     data.Username(),
		"email":        email,
	}, s.trackingIDs(data, email))

	if email == "" {
		return
	}

	user := s.captureIdentity(ctx, data, email, model.EventPaymentRefunded)

	s.sleep(ctx)
	if err := s.emails.SendRefund(ctx, email, user.Name, formatAmount(data.Currency, refundAmount)); err != nil {
		s.logger.Error("Webhook service: failed to send refund email",
			"email", email,
			"error", err.Error())
	}
}

func (s *Webhook) accountOnHold(ctx context.Context, data model.EventData) {
	s.notify(ctx, s.config.PaymentsWebhookURL, discord.NewEmbed(
		"Account On Hold",
		"Payment method has failed repeatedly. Member needs to update payment.",
		discord.ColorWarning,
		discord.Field{Name: "User", Value: userField(data), Inline: true},
		discord.Field{Name: "Product", Value: data.ProductTitle(), Inline: true},
	))
}

func (s *Webhook) membershipNotice(ctx context.Context, data model.EventData, title, description string, color discord.Color) {
	s.notify(ctx, s.config.MembershipsWebhookURL, discord.NewEmbed(
		title,
		description,
		color,
		discord.Field{Name: "User", Value: "@" + data.Username(), Inline: true},
		discord.Field{Name: "Product", Value: data.ProductTitle(), Inline: true},
	))
}

func (s *Webhook) membershipDeactivated(ctx context.Context, data model.EventData) {
	s.membershipNotice(ctx, data, "Membership Deactivated", "A membership has been deactivated.", discord.ColorWarning)

	s.track(ctx, "membership_deactivated", map[string]any{
		"deactivationReason": firstNonEmpty(data.DeactivationReason, "unknown"),
		"product":            productOrDefault(data),
		"username":           data.Username(),
	}, s.trackingIDs(data, ""))

	s.sendMembershipEmail(ctx, data, model.EventMembershipDeactivated, s.emails.SendCancellation)
}

func (s *Webhook) membershipCancelled(ctx context.Context, data model.EventData) {
	reason := firstNonEmpty(data.CancellationReason, "Not specified")

	s.notify(ctx, s.config.MembershipsWebhookURL, discord.NewEmbed(
		"Membership Cancelled",
		"A member has cancelled their subscription.",
		discord.ColorWarning,
		discord.Field{Name: "User", Value: "@" + data.Username(), Inline: true},
		discord.Field{Name: "Product", Value: data.ProductTitle(), Inline: true},
		discord.Field{Name: "Reason", Value: reason},
	))

	s.track(ctx, "membership_cancelled", map[string]any{
		"cancellationReason": reason,
		"cancelledAt":        time.Now().UTC().Format(time.RFC3339),
		"product":            productOrDefault(data),
		"username":           data.Username(),
	}, s.trackingIDs(data, ""))

	s.sendMembershipEmail(ctx, data, model.EventMembershipCancelled, s.emails.SendCancellation)
}

func (s *Webhook) membershipWentInvalid(ctx context.Context, data model.EventData) {
	s.membershipNotice(ctx, data, "Membership Went Invalid", "A membership has expired or been cancelled.", discord.ColorError)

	s.sendMembershipEmail(ctx, data, model.EventMembershipWentInvalid, s.emails.SendMembershipExpired)
}

// sendMembershipEmail resolves a member's email for an event that carries
// none, syncs the mailing list, and sends the given email. Membership events
// only carry the provider user id, so the stored identity is consulted
// first, then the provider directory.
func (s *Webhook) sendMembershipEmail(
	ctx context.Context,
	data model.EventData,
	source string,
	send func(ctx context.Context, to, name string) error,
) {
	userID := data.UserID()
	if userID == "" {
		return
	}

	user, ok := s.lookupMember(ctx, userID)
	if !ok {
		s.logger.Info("Webhook service: no email known for member, skipping email",
			"user_id", userID,
			"event", source)
		return
	}

	if err := s.list.AddContact(ctx, user.Email, user.FirstName(), user.LastName(), source); err != nil {
		s.logger.Error("Webhook service: failed to sync mailing list",
			"email", user.Email,
			"error", err.Error())
	}

	s.sleep(ctx)
	if err := send(ctx, user.Email, user.DisplayName()); err != nil {
		s.logger.Error("Webhook service: failed to send email",
			"email", user.Email,
			"event", source,
			"error", err.Error())
	}
}

// captureIdentity upserts the identity record and adds the email to the
// mailing list. Both are best-effort.
func (s *Webhook) captureIdentity(ctx context.Context, data model.EventData, email, source string) model.User {
	user := model.User{
		WhopUserID: data.UserID(),
		Email:      email,
		Username:   data.Username(),
		Name:       data.UserName(),
	}

	if user.WhopUserID != "" {
		saved, err := s.users.Upsert(ctx, user)
		if err != nil {
			s.logger.Error("Webhook service: failed to store user identity",
				"user_id", user.WhopUserID,
				"error", err.Error())
		} else {
			user = saved
		}
	}

	if err := s.list.AddContact(ctx, email, user.FirstName(), user.LastName(), source); err != nil {
		s.logger.Error("Webhook service: failed to sync mailing list",
			"email", email,
			"error", err.Error())
	}

	return user
}

// lookupMember finds a member's identity by provider id, falling back to the
// provider directory when the store has no record.
func (s *Webhook) lookupMember(ctx context.Context, userID string) (model.User, bool) {
	user, err := s.users.GetByID(ctx, userID)
	if err == nil {
		return user, true
	}
	if !errors.Is(err, model.ErrNotFound) {
		s.logger.Error("Webhook service: failed to look up user",
			"user_id", userID,
			"error", err.Error())
		return model.User{}, false
	}

	email, err := s.directory.GetUserEmail(ctx, userID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			s.logger.Error("Webhook service: failed to fetch user from provider",
				"user_id", userID,
				"error", err.Error())
		}
		return model.User{}, false
	}

	return model.User{WhopUserID: userID, Email: email}, true
}

func (s *Webhook) notify(ctx context.Context, webhookURL string, msg discord.Message) {
	if err := s.notifier.Send(ctx, webhookURL, msg); err != nil {
		s.logger.Error("Webhook service: failed to send notification",
			"error", err.Error())
	}
}

func (s *Webhook) track(ctx context.Context, name string, properties map[string]any, ids aurea.ContextIDs) {
	if err := s.tracker.Track(ctx, name, properties, ids); err != nil {
		s.logger.Error("Webhook service: failed to track event",
			"event", name,
			"error", err.Error())
	}
}

func (s *Webhook) trackingIDs(data model.EventData, email string) aurea.ContextIDs {
	anonymousID := firstNonEmpty(data.AnonymousID(), data.UserID())
	return aurea.ContextIDs{
		AnonymousID: anonymousID,
		SessionID:   firstNonEmpty(data.SessionID(), anonymousID),
		UserID:      email,
	}
}

func (s *Webhook) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(s.pause):
	}
}

func userField(data model.EventData) string {
	return fmt.Sprintf("%s (@%s)", data.UserName(), data.Username())
}

func formatAmount(currency string, cents *int64) string {
	if cents == nil || *cents == 0 {
		return "N/A"
	}
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("%s %.2f", strings.ToUpper(currency), float64(*cents)/100)
}

func revenueCents(data model.EventData) int64 {
	if data.FinalAmount != nil && *data.FinalAmount != 0 {
		return *data.FinalAmount
	}
	if data.Subtotal != nil && *data.Subtotal != 0 {
		return *data.Subtotal
	}
	return defaultRevenueCents
}

func currencyOrDefault(data model.EventData) string {
	if data.Currency == "" {
		return "USD"
	}
	return strings.ToUpper(data.Currency)
}

func productOrDefault(data model.EventData) string {
	return firstNonEmpty(data.ProductTitle(), defaultProduct)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
