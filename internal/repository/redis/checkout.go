package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tomstradingroom/funnel-server/internal/model"
)

const (
	checkoutPrefix = "checkout:"
	checkoutTTL    = 24 * time.Hour
)

var _ model.CheckoutStore = (*CheckoutRepository)(nil)

// CheckoutRepository tracks initiated checkout sessions for abandonment
// detection. Sessions expire after 24 hours.
type CheckoutRepository struct {
	client *redis.Client
}

func NewCheckoutRepository(client *redis.Client) *CheckoutRepository {
	return &CheckoutRepository{
		client: client,
	}
}

func (r *CheckoutRepository) key(anonymousID string) string {
	return checkoutPrefix + anonymousID
}

func (r *CheckoutRepository) Track(ctx context.Context, anonymousID string) error {
	if anonymousID == "" {
		return fmt.Errorf("checkout: missing anonymous id")
	}

	data, err := json.Marshal(model.Checkout{
		AnonymousID: anonymousID,
		StartedAt:   time.Now(),
		Notified:    false,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal checkout session: %w", err)
	}

	return r.client.Set(ctx, r.key(anonymousID), data, checkoutTTL).Err()
}

func (r *CheckoutRepository) Complete(ctx context.Context, anonymousID string) error {
	return r.client.Del(ctx, r.key(anonymousID)).Err()
}

func (r *CheckoutRepository) MarkNotified(ctx context.Context, anonymousID string) error {
	val, err := r.client.Get(ctx, r.key(anonymousID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get checkout session: %w", err)
	}

	var session model.Checkout
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}
	session.Notified = true

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout session: %w", err)
	}

	return r.client.Set(ctx, r.key(anonymousID), data, redis.KeepTTL).Err()
}

// ListAbandoned returns sessions started more than olderThan ago that have
// not been reported yet.
func (r *CheckoutRepository) ListAbandoned(ctx context.Context, olderThan time.Duration) ([]model.Checkout, error) {
	cutoff := time.Now().Add(-olderThan)
	var abandoned []model.Checkout

	iter := r.client.Scan(ctx, 0, checkoutPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		val, err := r.client.Get(ctx, iter.Val()).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get checkout session: %w", err)
		}

		var session model.Checkout
		if err := json.Unmarshal([]byte(val), &session); err != nil {
			continue
		}
		if session.Notified || session.StartedAt.After(cutoff) {
			continue
		}
		abandoned = append(abandoned, session)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan checkout sessions: %w", err)
	}

	return abandoned, nil
}
