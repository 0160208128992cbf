package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tomstradingroom/funnel-server/internal/logger"
	"github.com/tomstradingroom/funnel-server/internal/model"
)

// CheckoutService defines checkout tracking and purchase-flag operations.
type CheckoutService interface {
	Init(ctx context.Context, anonymousID string) error
	NotifyInitiated(ctx context.Context)
	MarkPurchased(ctx context.Context, anonymousID, secret string) error
	CheckPurchase(ctx context.Context, anonymousID string) (bool, error)
	ScanAbandoned(ctx context.Context) (int, error)
}

// Checkout handles the checkout-tracking endpoints used by the site's
// client-side attribution.
type Checkout struct {
	service    CheckoutService
	cronSecret string
	logger     *logger.Logger
}

// NewCheckout creates a new Checkout handler.
func NewCheckout(service CheckoutService, cronSecret string, logger *logger.Logger) *Checkout {
	return &Checkout{
		service:    service,
		cronSecret: cronSecret,
		logger:     logger,
	}
}

// Init records a started checkout session.
func (h *Checkout) Init(c *gin.Context) {
	var req struct {
		AnonymousID string `json:"anonymousId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.AnonymousID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anonymousId is required"})
		return
	}

	if err := h.service.Init(c.Request.Context(), req.AnonymousID); err != nil {
		h.logger.Error("Checkout handler: failed to store session",
			"error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// NotifyInitiated pings the notification channel that a checkout started.
func (h *Checkout) NotifyInitiated(c *gin.Context) {
	h.service.NotifyInitiated(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// CheckPurchase reports and consumes the purchase flag for an attribution
// id. Polled by the client after checkout.
func (h *Checkout) CheckPurchase(c *gin.Context) {
	anonymousID := c.Query("anonymousId")
	if anonymousID == "" {
		c.JSON(http.StatusOK, gin.H{"hasPurchased": false})
		return
	}

	purchased, err := h.service.CheckPurchase(c.Request.Context(), anonymousID)
	if err != nil {
		h.logger.Error("Checkout handler: failed to check purchase flag",
			"error", err.Error())
		c.JSON(http.StatusOK, gin.H{"hasPurchased": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"hasPurchased": purchased})
}

// MarkPurchased flags an attribution id as purchased. Secret-guarded.
func (h *Checkout) MarkPurchased(c *gin.Context) {
	var req struct {
		AnonymousID string `json:"anonymousId"`
		Secret      string `json:"secret"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing anonymousId"})
		return
	}

	err := h.service.MarkPurchased(c.Request.Context(), req.AnonymousID, req.Secret)
	if errors.Is(err, model.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if err != nil {
		if req.AnonymousID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing anonymousId"})
			return
		}
		h.logger.Error("Checkout handler: failed to mark purchase",
			"error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PurchaseRedirect serves the page that records the purchase client-side and
// forwards to the thank-you page.
func (h *Checkout) PurchaseRedirect(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(purchaseRedirectPage))
}

// CheckAbandoned runs the abandoned-checkout scan. Meant to be hit by a
// scheduler and protected by a bearer secret.
func (h *Checkout) CheckAbandoned(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+h.cronSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	abandoned, err := h.service.ScanAbandoned(c.Request.Context())
	if err != nil {
		h.logger.Error("Checkout handler: abandoned scan failed",
			"error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"abandoned": abandoned,
	})
}
