package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/tomstradingroom/funnel-server/internal/model"
	"github.com/tomstradingroom/funnel-server/internal/notify/discord"
	"github.com/tomstradingroom/funnel-server/internal/track/aurea"
)

// MockUserStore mocks the model.UserStore interface
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Upsert(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, whopUserID string) (model.User, error) {
	args := m.Called(ctx, whopUserID)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) SetEmailStatus(ctx context.Context, email string, status model.EmailStatus) error {
	args := m.Called(ctx, email, status)
	return args.Error(0)
}

func (m *MockUserStore) CountByStatus(ctx context.Context, status model.EmailStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockCheckoutStore mocks the model.CheckoutStore interface
type MockCheckoutStore struct {
	mock.Mock
}

func (m *MockCheckoutStore) Track(ctx context.Context, anonymousID string) error {
	args := m.Called(ctx, anonymousID)
	return args.Error(0)
}

func (m *MockCheckoutStore) Complete(ctx context.Context, anonymousID string) error {
	args := m.Called(ctx, anonymousID)
	return args.Error(0)
}

func (m *MockCheckoutStore) MarkNotified(ctx context.Context, anonymousID string) error {
	args := m.Called(ctx, anonymousID)
	return args.Error(0)
}

func (m *MockCheckoutStore) ListAbandoned(ctx context.Context, olderThan time.Duration) ([]model.Checkout, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).([]model.Checkout), args.Error(1)
}

// MockPurchaseStore mocks the model.PurchaseStore interface
type MockPurchaseStore struct {
	mock.Mock
}

func (m *MockPurchaseStore) Mark(ctx context.Context, anonymousID string) error {
	args := m.Called(ctx, anonymousID)
	return args.Error(0)
}

func (m *MockPurchaseStore) CheckAndClear(ctx context.Context, anonymousID string) (bool, error) {
	args := m.Called(ctx, anonymousID)
	return args.Bool(0), args.Error(1)
}

// MockStatsCache mocks the model.StatsCache interface
type MockStatsCache struct {
	mock.Mock
}

func (m *MockStatsCache) Get(ctx context.Context, code string) (model.DarwinexStats, bool, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(model.DarwinexStats), args.Bool(1), args.Error(2)
}

func (m *MockStatsCache) Set(ctx context.Context, code string, stats model.DarwinexStats) error {
	args := m.Called(ctx, code, stats)
	return args.Error(0)
}

// MockNotifier mocks the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, webhookURL string, msg discord.Message) error {
	args := m.Called(ctx, webhookURL, msg)
	return args.Error(0)
}

// MockMailingList mocks the MailingList interface
type MockMailingList struct {
	mock.Mock
}

func (m *MockMailingList) AddContact(ctx context.Context, email, firstName, lastName, source string) error {
	args := m.Called(ctx, email, firstName, lastName, source)
	return args.Error(0)
}

// MockEmailSender mocks the EmailSender interface
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendWelcome(ctx context.Context, to, name string) error {
	args := m.Called(ctx, to, name)
	return args.Error(0)
}

func (m *MockEmailSender) SendCancellation(ctx context.Context, to, name string) error {
	args := m.Called(ctx, to, name)
	return args.Error(0)
}

func (m *MockEmailSender) SendRefund(ctx context.Context, to, name, amount string) error {
	args := m.Called(ctx, to, name, amount)
	return args.Error(0)
}

func (m *MockEmailSender) SendMembershipExpired(ctx context.Context, to, name string) error {
	args := m.Called(ctx, to, name)
	return args.Error(0)
}

// MockTracker mocks the Tracker interface
type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) Track(ctx context.Context, name string, properties map[string]any, ids aurea.ContextIDs) error {
	args := m.Called(ctx, name, properties, ids)
	return args.Error(0)
}

func (m *MockTracker) Identify(ctx context.Context, email, anonymousID string, traits map[string]any) error {
	args := m.Called(ctx, email, anonymousID, traits)
	return args.Error(0)
}

// MockUserDirectory mocks the UserDirectory interface
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetUserEmail(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

// MockStatsScraper mocks the StatsScraper interface
type MockStatsScraper struct {
	mock.Mock
}

func (m *MockStatsScraper) Scrape(ctx context.Context, code string) (model.DarwinexStats, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(model.DarwinexStats), args.Error(1)
}
