package router

import (
	"github.com/gin-gonic/gin"

	"github.com/tomstradingroom/funnel-server/internal/api/http/handler"
	"github.com/tomstradingroom/funnel-server/internal/api/http/middleware"
	"github.com/tomstradingroom/funnel-server/internal/logger"
	"github.com/tomstradingroom/funnel-server/internal/service"
	"github.com/tomstradingroom/funnel-server/internal/whop"
)

// Router wires HTTP handlers and middleware for the funnel API.
type Router struct {
	webhook         *whop.Webhook
	webhookService  *service.Webhook
	checkoutService *service.Checkout
	mailingService  *service.Mailing
	statsService    *service.Stats
	checkoutURL     string
	cronSecret      string
	logger          *logger.Logger
}

// New creates a new Router instance.
func New(
	webhook *whop.Webhook,
	webhookService *service.Webhook,
	checkoutService *service.Checkout,
	mailingService *service.Mailing,
	statsService *service.Stats,
	checkoutURL string,
	cronSecret string,
	logger *logger.Logger,
) *Router {
	return &Router{
		webhook:         webhook,
		webhookService:  webhookService,
		checkoutService: checkoutService,
		mailingService:  mailingService,
		statsService:    statsService,
		checkoutURL:     checkoutURL,
		cronSecret:      cronSecret,
		logger:          logger,
	}
}

// Register sets up the gin engine with request logging and all routes.
func (r *Router) Register() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.NewLogging(r.logger).Handle())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.registerWebhookRoutes(engine)
	r.registerCheckoutRoutes(engine)
	r.registerMailingRoutes(engine)
	r.registerStatsRoutes(engine)

	return engine
}

func (r *Router) registerWebhookRoutes(engine *gin.Engine) {
	webhookHandler := handler.NewWebhook(r.webhook, r.webhookService, r.logger)
	engine.POST("/api/webhooks/whop", webhookHandler.Handle)
}

func (r *Router) registerCheckoutRoutes(engine *gin.Engine) {
	checkoutHandler := handler.NewCheckout(r.checkoutService, r.cronSecret, r.logger)
	engine.POST("/api/checkout/init", checkoutHandler.Init)
	engine.POST("/api/events/initiate-checkout", checkoutHandler.NotifyInitiated)
	engine.GET("/api/check-purchase", checkoutHandler.CheckPurchase)
	engine.POST("/api/check-purchase", checkoutHandler.MarkPurchased)
	engine.GET("/api/purchase-redirect", checkoutHandler.PurchaseRedirect)
	engine.GET("/api/cron/check-abandoned", checkoutHandler.CheckAbandoned)
}

func (r *Router) registerMailingRoutes(engine *gin.Engine) {
	mailingHandler := handler.NewMailing(r.mailingService, r.checkoutURL, r.logger)
	engine.GET("/api/unsubscribe", mailingHandler.Unsubscribe)
	engine.GET("/api/member-count", mailingHandler.MemberCount)
	engine.GET("/api/test-resend", mailingHandler.TestSend)
}

func (r *Router) registerStatsRoutes(engine *gin.Engine) {
	statsHandler := handler.NewStats(r.statsService, r.logger)
	engine.GET("/api/darwinex-stats", statsHandler.Get)
}
