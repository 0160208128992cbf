package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tomstradingroom/funnel-server/internal/logger"
	"github.com/tomstradingroom/funnel-server/internal/model"
	"github.com/tomstradingroom/funnel-server/internal/service"
)

// MailingService defines subscription-management operations.
type MailingService interface {
	Unsubscribe(ctx context.Context, email string) (service.UnsubscribeResult, error)
	MemberCount(ctx context.Context) (int64, error)
	TestSend(ctx context.Context, email string) service.TestSendResult
}

// Mailing handles unsubscribe links, the member counter and mail
// diagnostics.
type Mailing struct {
	service     MailingService
	checkoutURL string
	logger      *logger.Logger
}

// NewMailing creates a new Mailing handler. checkoutURL is the rejoin link
// shown on unsubscribe pages.
func NewMailing(service MailingService, checkoutURL string, logger *logger.Logger) *Mailing {
	return &Mailing{
		service:     service,
		checkoutURL: checkoutURL,
		logger:      logger,
	}
}

// Unsubscribe serves the email unsubscribe link. It always answers with a
// human-readable HTML page since the link is opened in a browser.
func (h *Mailing) Unsubscribe(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		h.html(c, http.StatusBadRequest, invalidRequestPage())
		return
	}

	result, err := h.service.Unsubscribe(c.Request.Context(), email)
	if errors.Is(err, model.ErrNotFound) {
		h.html(c, http.StatusNotFound, userNotFoundPage())
		return
	}
	if err != nil {
		h.logger.Error("Mailing handler: unsubscribe failed",
			"email", email,
			"error", err.Error())
		h.html(c, http.StatusInternalServerError, errorPage())
		return
	}

	if result == service.AlreadyUnsubscribed {
		h.html(c, http.StatusOK, alreadyUnsubscribedPage(h.checkoutURL))
		return
	}

	h.html(c, http.StatusOK, unsubscribedPage(email, h.checkoutURL))
}

// MemberCount returns the number of active subscribers.
func (h *Mailing) MemberCount(c *gin.Context) {
	count, err := h.service.MemberCount(c.Request.Context())
	if err != nil {
		h.logger.Error("Mailing handler: failed to fetch member count",
			"error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"count": 0})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// TestSend exercises the mail pipeline for a given address.
func (h *Mailing) TestSend(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Please provide email as query param: ?email=test@example.com",
		})
		return
	}

	result := h.service.TestSend(c.Request.Context(), email)

	c.JSON(http.StatusOK, gin.H{
		"success": result.ContactErr == nil && result.EmailErr == nil,
		"results": gin.H{
			"contact": errString(result.ContactErr),
			"email":   errString(result.EmailErr),
		},
	})
}

func (h *Mailing) html(c *gin.Context, status int, page string) {
	c.Data(status, "text/html; charset=utf-8", []byte(page))
}

func errString(err error) string {
	if err == nil {
		return "ok"
	}
	return err.Error()
}
