package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tomstradingroom/funnel-server/internal/logger"
	"github.com/tomstradingroom/funnel-server/internal/model"
)

// EventUnwrapper verifies a raw webhook payload and decodes its envelope.
type EventUnwrapper interface {
	Unwrap(body []byte, header http.Header) (model.Event, error)
}

// WebhookService routes a verified event to its side effects.
type WebhookService interface {
	Process(ctx context.Context, event model.Event)
}

// Webhook handles the inbound provider webhook endpoint.
type Webhook struct {
	unwrapper EventUnwrapper
	service   WebhookService
	logger    *logger.Logger
}

// NewWebhook creates a new Webhook handler.
func NewWebhook(unwrapper EventUnwrapper, service WebhookService, logger *logger.Logger) *Webhook {
	return &Webhook{
		unwrapper: unwrapper,
		service:   service,
		logger:    logger,
	}
}

// Handle verifies and processes one provider event. It answers 200 whenever
// the payload itself was valid, regardless of downstream failures, because
// the provider retries on any non-2xx and the effects are not idempotent.
func (h *Webhook) Handle(c *gin.Context) {
	h.logger.Debug("Webhook handler: event received")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("Webhook handler: failed to read request body",
			"error", err.Error())
		c.String(http.StatusBadRequest, "Bad request")
		return
	}

	event, err := h.unwrapper.Unwrap(body, c.Request.Header)
	if err != nil {
		h.logger.Error("Webhook handler: rejected event",
			"error", err.Error())
		c.String(http.StatusBadRequest, "Invalid signature")
		return
	}

	h.service.Process(c.Request.Context(), event)

	c.String(http.StatusOK, "OK")
}
