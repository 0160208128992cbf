package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/tomstradingroom/funnel-server/internal/logger"
	"github.com/tomstradingroom/funnel-server/internal/model"
	"github.com/tomstradingroom/funnel-server/internal/notify/discord"
	"github.com/tomstradingroom/funnel-server/internal/track/aurea"
)

// Sessions untouched for this long count as abandoned.
const abandonAfter = 30 * time.Minute

// Checkout tracks checkout sessions and purchase flags for the funnel's
// client-side polling and abandonment reporting.
type Checkout struct {
	checkouts   model.CheckoutStore
	purchases   model.PurchaseStore
	notifier    Notifier
	tracker     Tracker
	initiateURL string
	secret      string
	logger      *logger.Logger
}

func NewCheckout(
	checkouts model.CheckoutStore,
	purchases model.PurchaseStore,
	notifier Notifier,
	tracker Tracker,
	initiateURL string,
	secret string,
	logger *logger.Logger,
) *Checkout {
	return &Checkout{
		checkouts:   checkouts,
		purchases:   purchases,
		notifier:    notifier,
		tracker:     tracker,
		initiateURL: initiateURL,
		secret:      secret,
		logger:      logger,
	}
}

// Init records a new checkout session for the given attribution id.
func (s *Checkout) Init(ctx context.Context, anonymousID string) error {
	if anonymousID == "" {
		return fmt.Errorf("missing anonymous id")
	}

	if err := s.checkouts.Track(ctx, anonymousID); err != nil {
		return fmt.Errorf("failed to track checkout session: %w", err)
	}

	s.logger.Info("Checkout service: session tracked",
		"anonymous_id", anonymousID)

	return nil
}

// NotifyInitiated pings the notification channel that someone opened the
// checkout. Fire-and-forget.
func (s *Checkout) NotifyInitiated(ctx context.Context) {
	err := s.notifier.Send(ctx, s.initiateURL, discord.NewEmbed(
		"Checkout initiated",
		"Someone's started a checkout!",
		discord.ColorInfo,
	))
	if err != nil {
		s.logger.Error("Checkout service: failed to send initiate notification",
			"error", err.Error())
	}
}

// MarkPurchased flags an attribution id as recently purchased. Guarded by a
// shared secret since the endpoint is reachable from outside.
func (s *Checkout) MarkPurchased(ctx context.Context, anonymousID, secret string) error {
	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.secret)) != 1 {
		return model.ErrUnauthorized
	}
	if anonymousID == "" {
		return fmt.Errorf("missing anonymous id")
	}

	if err := s.purchases.Mark(ctx, anonymousID); err != nil {
		return fmt.Errorf("failed to mark purchase: %w", err)
	}

	s.logger.Info("Checkout service: marked as purchased",
		"anonymous_id", anonymousID)

	return nil
}

// CheckPurchase reports whether the attribution id recently purchased. The
// flag is consumed by the check.
func (s *Checkout) CheckPurchase(ctx context.Context, anonymousID string) (bool, error) {
	if anonymousID == "" {
		return false, nil
	}
	return s.purchases.CheckAndClear(ctx, anonymousID)
}

// ScanAbandoned reports checkout sessions older than 30 minutes to the CRM
// and marks them notified. Returns the number of sessions reported.
func (s *Checkout) ScanAbandoned(ctx context.Context) (int, error) {
	s.logger.Info("Checkout service: scanning for abandoned checkouts")

	abandoned, err := s.checkouts.ListAbandoned(ctx, abandonAfter)
	if err != nil {
		return 0, fmt.Errorf("failed to list abandoned checkouts: %w", err)
	}

	for _, session := range abandoned {
		err := s.tracker.Track(ctx, "checkout_abandoned", map[string]any{
			"reason":            "timeout_30min",
			"checkoutStartedAt": session.StartedAt.UTC().Format(time.RFC3339),
			"abandonedAt":       time.Now().UTC().Format(time.RFC3339),
			"anonymousId":       session.AnonymousID,
		}, aurea.ContextIDs{
			AnonymousID: session.AnonymousID,
			SessionID:   session.AnonymousID,
		})
		if err != nil {
			s.logger.Error("Checkout service: failed to report abandoned checkout",
				"anonymous_id", session.AnonymousID,
				"error", err.Error())
			continue
		}

		if err := s.checkouts.MarkNotified(ctx, session.AnonymousID); err != nil {
			s.logger.Error("Checkout service: failed to mark session notified",
				"anonymous_id", session.AnonymousID,
				"error", err.Error())
		}
	}

	s.logger.Info("Checkout service: abandoned scan complete",
		"abandoned", len(abandoned))

	return len(abandoned), nil
}
