package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tomstradingroom/funnel-server/internal/model"
	"github.com/tomstradingroom/funnel-server/internal/testutil"
)

// MockCheckoutService mocks the CheckoutService interface
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Init(ctx context.Context, anonymousID string) error {
	args := m.Called(ctx, anonymousID)
	return args.Error(0)
}

func (m *MockCheckoutService) NotifyInitiated(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockCheckoutService) MarkPurchased(ctx context.Context, anonymousID, secret string) error {
	args := m.Called(ctx, anonymousID, secret)
	return args.Error(0)
}

func (m *MockCheckoutService) CheckPurchase(ctx context.Context, anonymousID string) (bool, error) {
	args := m.Called(ctx, anonymousID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCheckoutService) ScanAbandoned(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func newCheckoutRouter(service *MockCheckoutService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewCheckout(service, "cron-secret", testutil.MakeNoopLogger())

	engine := gin.New()
	engine.POST("/api/checkout/init", h.Init)
	engine.GET("/api/check-purchase", h.CheckPurchase)
	engine.POST("/api/check-purchase", h.MarkPurchased)
	engine.GET("/api/purchase-redirect", h.PurchaseRedirect)
	engine.GET("/api/cron/check-abandoned", h.CheckAbandoned)
	return engine
}

func TestCheckoutHandler_Init(t *testing.T) {
	service := &MockCheckoutService{}
	service.On("Init", mock.Anything, "anon_1").Return(nil)

	engine := newCheckoutRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout/init", bytes.NewReader([]byte(`{"anonymousId":"anon_1"}`)))
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	service.AssertExpectations(t)
}

func TestCheckoutHandler_Init_MissingID(t *testing.T) {
	service := &MockCheckoutService{}
	engine := newCheckoutRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout/init", bytes.NewReader([]byte(`{}`)))
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	service.AssertNotCalled(t, "Init", mock.Anything, mock.Anything)
}

func TestCheckoutHandler_CheckPurchase(t *testing.T) {
	service := &MockCheckoutService{}
	service.On("CheckPurchase", mock.Anything, "anon_1").Return(true, nil)

	engine := newCheckoutRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/check-purchase?anonymousId=anon_1", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hasPurchased":true}`, w.Body.String())
}

func TestCheckoutHandler_CheckPurchase_MissingIDOrError(t *testing.T) {
	service := &MockCheckoutService{}
	service.On("CheckPurchase", mock.Anything, "anon_err").Return(false, assert.AnError)

	engine := newCheckoutRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/check-purchase", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hasPurchased":false}`, w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/check-purchase?anonymousId=anon_err", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hasPurchased":false}`, w.Body.String())
}

func TestCheckoutHandler_MarkPurchased_Unauthorized(t *testing.T) {
	service := &MockCheckoutService{}
	service.On("MarkPurchased", mock.Anything, "anon_1", "wrong").Return(model.ErrUnauthorized)

	engine := newCheckoutRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/check-purchase", bytes.NewReader([]byte(`{"anonymousId":"anon_1","secret":"wrong"}`)))
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheckoutHandler_PurchaseRedirect(t *testing.T) {
	engine := newCheckoutRouter(&MockCheckoutService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/purchase-redirect", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "aurea_just_purchased")
	assert.Contains(t, w.Body.String(), "/thank-you")
}

func TestCheckoutHandler_CheckAbandoned(t *testing.T) {
	service := &MockCheckoutService{}
	service.On("ScanAbandoned", mock.Anything).Return(3, nil)

	engine := newCheckoutRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cron/check-abandoned", nil)
	req.Header.Set("Authorization", "Bearer cron-secret")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"abandoned":3}`, w.Body.String())
}

func TestCheckoutHandler_CheckAbandoned_Unauthorized(t *testing.T) {
	service := &MockCheckoutService{}
	engine := newCheckoutRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cron/check-abandoned", nil)
	req.Header.Set("Authorization", "Bearer nope")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	service.AssertNotCalled(t, "ScanAbandoned", mock.Anything)
}
