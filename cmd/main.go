package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tomstradingroom/funnel-server/internal/api/http/router"
	httpServer "github.com/tomstradingroom/funnel-server/internal/api/http/server"
	"github.com/tomstradingroom/funnel-server/internal/config"
	"github.com/tomstradingroom/funnel-server/internal/logger"
	"github.com/tomstradingroom/funnel-server/internal/mail"
	"github.com/tomstradingroom/funnel-server/internal/mail/resend"
	"github.com/tomstradingroom/funnel-server/internal/model"
	"github.com/tomstradingroom/funnel-server/internal/notify/discord"
	"github.com/tomstradingroom/funnel-server/internal/repository/postgres"
	redisrepo "github.com/tomstradingroom/funnel-server/internal/repository/redis"
	"github.com/tomstradingroom/funnel-server/internal/scraper/darwinex"
	"github.com/tomstradingroom/funnel-server/internal/server"
	"github.com/tomstradingroom/funnel-server/internal/service"
	"github.com/tomstradingroom/funnel-server/internal/track/aurea"
	"github.com/tomstradingroom/funnel-server/internal/whop"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	_ = godotenv.Load() // load .env if present (ok if missing in prod)

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	redisClient, err := redisrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("failed to initialize redis", "error", err)
	}
	defer redisClient.Close()

	userRepo := postgres.NewUserRepository(db)
	checkoutRepo := redisrepo.NewCheckoutRepository(redisClient)
	purchaseRepo := redisrepo.NewPurchaseRepository(redisClient)
	statsCacheRepo := redisrepo.NewStatsCacheRepository(redisClient)

	discordClient := discord.NewClient(logger)
	resendClient := resend.NewClient(cfg.Resend.APIKey, logger)
	mailer := mail.NewMailer(
		resendClient,
		cfg.Resend.From,
		cfg.Resend.AudienceID,
		cfg.Resend.CancellationTemplateID,
		cfg.App.BaseURL,
		logger,
	)
	tracker := aurea.NewClient(cfg.Aurea.APIURL, cfg.Aurea.APIKey, cfg.Aurea.FunnelID, logger)
	whopClient := whop.NewClient(cfg.Whop.APIBaseURL, cfg.Whop.APIKey, logger)
	whopWebhook := whop.NewWebhook(cfg.Whop.WebhookSecret)
	scraper := darwinex.NewScraper(logger)

	webhookService := service.NewWebhook(
		userRepo,
		checkoutRepo,
		purchaseRepo,
		discordClient,
		mailer,
		mailer,
		tracker,
		whopClient,
		service.WebhookConfig{
			PaymentsWebhookURL:    cfg.Discord.PaymentsWebhookURL,
			MembershipsWebhookURL: cfg.Discord.MembershipsWebhookURL,
		},
		logger,
	)
	checkoutService := service.NewCheckout(
		checkoutRepo,
		purchaseRepo,
		discordClient,
		tracker,
		cfg.Discord.InitiateWebhookURL,
		cfg.App.PurchaseCheckSecret,
		logger,
	)
	mailingService := service.NewMailing(userRepo, mailer, mailer, logger)
	statsService := service.NewStats(statsCacheRepo, scraper, logger)

	r := router.New(
		whopWebhook,
		webhookService,
		checkoutService,
		mailingService,
		statsService,
		cfg.Whop.CheckoutURL,
		cfg.Cron.Secret,
		logger,
	)
	srv := httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
