package model

import (
	"context"
	"time"
)

// Checkout tracks an initiated checkout session for abandonment detection.
type Checkout struct {
	AnonymousID string    `json:"anonymous_id"`
	StartedAt   time.Time `json:"started_at"`
	Notified    bool      `json:"notified"`
}

// CheckoutStore persists checkout sessions with a bounded lifetime.
type CheckoutStore interface {
	Track(ctx context.Context, anonymousID string) error
	Complete(ctx context.Context, anonymousID string) error
	MarkNotified(ctx context.Context, anonymousID string) error
	ListAbandoned(ctx context.Context, olderThan time.Duration) ([]Checkout, error)
}

// PurchaseStore holds short-lived purchase flags polled by the client after
// a completed checkout.
type PurchaseStore interface {
	Mark(ctx context.Context, anonymousID string) error
	CheckAndClear(ctx context.Context, anonymousID string) (bool, error)
}
