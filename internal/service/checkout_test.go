package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tomstradingroom/funnel-server/internal/logger"
	"github.com/tomstradingroom/funnel-server/internal/model"
)

func newCheckoutService(checkouts *MockCheckoutStore, purchases *MockPurchaseStore, notifier *MockNotifier, tracker *MockTracker) *Checkout {
	return NewCheckout(checkouts, purchases, notifier, tracker, "https://discord.test/initiate", "cron-secret", logger.New(0))
}

func TestCheckout_Init(t *testing.T) {
	checkouts := &MockCheckoutStore{}
	checkouts.On("Track", mock.Anything, "anon_1").Return(nil)

	svc := newCheckoutService(checkouts, &MockPurchaseStore{}, &MockNotifier{}, &MockTracker{})

	require.NoError(t, svc.Init(context.Background(), "anon_1"))
	checkouts.AssertExpectations(t)
}

func TestCheckout_Init_MissingID(t *testing.T) {
	checkouts := &MockCheckoutStore{}
	svc := newCheckoutService(checkouts, &MockPurchaseStore{}, &MockNotifier{}, &MockTracker{})

	require.Error(t, svc.Init(context.Background(), ""))
	checkouts.AssertNotCalled(t, "Track", mock.Anything, mock.Anything)
}

func TestCheckout_MarkPurchased(t *testing.T) {
	tests := []struct {
		name        string
		anonymousID string
		secret      string
		wantErr     error
	}{
		{
			name:        "valid secret",
			anonymousID: "anon_1",
			secret:      "cron-secret",
		},
		{
			name:        "wrong secret",
			anonymousID: "anon_1",
			secret:      "nope",
			wantErr:     model.ErrUnauthorized,
		},
		{
			name:        "empty secret",
			anonymousID: "anon_1",
			secret:      "",
			wantErr:     model.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			purchases := &MockPurchaseStore{}
			purchases.On("Mark", mock.Anything, tt.anonymousID).Return(nil)

			svc := newCheckoutService(&MockCheckoutStore{}, purchases, &MockNotifier{}, &MockTracker{})

			err := svc.MarkPurchased(context.Background(), tt.anonymousID, tt.secret)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				purchases.AssertNotCalled(t, "Mark", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				purchases.AssertExpectations(t)
			}
		})
	}
}

func TestCheckout_CheckPurchase(t *testing.T) {
	purchases := &MockPurchaseStore{}
	purchases.On("CheckAndClear", mock.Anything, "anon_1").Return(true, nil)

	svc := newCheckoutService(&MockCheckoutStore{}, purchases, &MockNotifier{}, &MockTracker{})

	has, err := svc.CheckPurchase(context.Background(), "anon_1")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = svc.CheckPurchase(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestCheckout_ScanAbandoned(t *testing.T) {
	started := time.Now().Add(-time.Hour)

	checkouts := &MockCheckoutStore{}
	checkouts.On("ListAbandoned", mock.Anything, abandonAfter).Return([]model.Checkout{
		{AnonymousID: "anon_1", StartedAt: started},
		{AnonymousID: "anon_2", StartedAt: started},
	}, nil)
	checkouts.On("MarkNotified", mock.Anything, "anon_1").Return(nil)
	checkouts.On("MarkNotified", mock.Anything, "anon_2").Return(nil)

	tracker := &MockTracker{}
	tracker.On("Track", mock.Anything, "checkout_abandoned", mock.MatchedBy(func(props map[string]any) bool {
		return props["reason"] == "timeout_30min"
	}), mock.Anything).Return(nil).Twice()

	svc := newCheckoutService(checkouts, &MockPurchaseStore{}, &MockNotifier{}, tracker)

	n, err := svc.ScanAbandoned(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	checkouts.AssertExpectations(t)
	tracker.AssertExpectations(t)
}

func TestCheckout_ScanAbandoned_TrackFailureSkipsMark(t *testing.T) {
	checkouts := &MockCheckoutStore{}
	checkouts.On("ListAbandoned", mock.Anything, abandonAfter).Return([]model.Checkout{
		{AnonymousID: "anon_1", StartedAt: time.Now().Add(-time.Hour)},
	}, nil)

	tracker := &MockTracker{}
	tracker.On("Track", mock.Anything, "checkout_abandoned", mock.Anything, mock.Anything).Return(assert.AnError)

	svc := newCheckoutService(checkouts, &MockPurchaseStore{}, &MockNotifier{}, tracker)

	n, err := svc.ScanAbandoned(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	checkouts.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything)
}

func TestCheckout_NotifyInitiated(t *testing.T) {
	notifier := &MockNotifier{}
	notifier.On("Send", mock.Anything, "https://discord.test/initiate", mock.Anything).Return(nil)

	svc := newCheckoutService(&MockCheckoutStore{}, &MockPurchaseStore{}, notifier, &MockTracker{})
	svc.NotifyInitiated(context.Background())

	notifier.AssertExpectations(t)
}
