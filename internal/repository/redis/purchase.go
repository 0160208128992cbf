package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tomstradingroom/funnel-server/internal/model"
)

const (
	purchasePrefix = "purchase:"
	purchaseTTL    = time.Hour
)

var _ model.PurchaseStore = (*PurchaseRepository)(nil)

// PurchaseRepository holds one-shot purchase flags consumed by client-side
// polling after checkout. Flags expire after an hour.
type PurchaseRepository struct {
	client *redis.Client
}

func NewPurchaseRepository(client *redis.Client) *PurchaseRepository {
	return &PurchaseRepository{
		client: client,
	}
}

func (r *PurchaseRepository) key(anonymousID string) string {
	return purchasePrefix + anonymousID
}

func (r *PurchaseRepository) Mark(ctx context.Context, anonymousID string) error {
	if anonymousID == "" {
		return fmt.Errorf("purchase: missing anonymous id")
	}
	return r.client.Set(ctx, r.key(anonymousID), "1", purchaseTTL).Err()
}

// CheckAndClear reports whether a purchase flag exists and removes it, so a
// flag is only ever observed once.
func (r *PurchaseRepository) CheckAndClear(ctx context.Context, anonymousID string) (bool, error) {
	err := r.client.GetDel(ctx, r.key(anonymousID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check purchase flag: %w", err)
	}
	return true, nil
}
