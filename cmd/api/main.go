package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hpol369/gold-ira-platform-sub026/internal/config"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/http/handlers"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/http/middleware"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/integration/augusta"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/integration/googleads"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/integration/telegram"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/logger"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/mail"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/worker"
	"github.com/hpol369/gold-ira-platform-sub026/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	format := "json"
	if cfg.IsDevelopment() {
		format = "text"
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: format, File: cfg.LogFile})
	if err != nil {
		logrus.WithError(err).Fatal("logger setup failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Storage and coordination
	store, err := openStorage(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("storage setup failed")
	}
	defer store.Close()

	locker, rdb, err := openLocker(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("redis setup failed")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// 2. Integrations
	channel := notificationChannel(telegram.NewClient(telegram.Config{
		BotToken: cfg.TelegramBotToken,
		ChatID:   cfg.TelegramChatID,
		Timeout:  cfg.ExternalTimeout,
	}, log), log)

	partner := augusta.NewClient(augusta.Config{
		Endpoint:   cfg.AugustaEndpoint,
		ReferralID: cfg.AugustaReferralID,
		Timeout:    cfg.ExternalTimeout,
	}, log)

	ads := googleads.NewClient(googleads.Config{
		DeveloperToken:     cfg.GoogleAds.DeveloperToken,
		ClientID:           cfg.GoogleAds.ClientID,
		ClientSecret:       cfg.GoogleAds.ClientSecret,
		RefreshToken:       cfg.GoogleAds.RefreshToken,
		CustomerID:         cfg.GoogleAds.CustomerID,
		LoginCustomerID:    cfg.GoogleAds.LoginCustomerID,
		ConversionActionID: cfg.GoogleAds.ConversionActionID,
		Timeout:            cfg.ExternalTimeout,
	}, log)

	var alerter usecase.OpsAlerter
	sender := mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Pass, cfg.Mail.From, cfg.Mail.OpsAlertTo)
	if sender.Enabled() {
		alerter = sender
	} else {
		log.Info("Ops alert email disabled")
	}

	conversions, rabbit, err := openConversions(ctx, cfg, ads, log)
	if err != nil {
		log.WithError(err).Fatal("conversion queue setup failed")
	}
	if rabbit != nil {
		defer rabbit.Close()
	}

	// 3. Use cases
	lifecycle := usecase.NewLeadLifecycle(store.Leads, channel, partner, locker, alerter, log)
	quizUC := usecase.NewQuizLeadUseCase(store.Quiz, channel, log)
	postbackUC := usecase.NewPostbackUseCase(store.Postbacks, lifecycle, conversions, log)
	clickUC := usecase.NewClickTrackingUseCase(channel, conversions, cfg.AdsClickValue, log)

	if channel != nil {
		go worker.NewNotificationRetryWorker(lifecycle, log).Start(ctx)
	}

	// 4. HTTP
	if cfg.AdminAPIKey == "" {
		log.Warn("⚠️ ADMIN_API_KEY not set, admin routes are closed")
	}
	limiter := middleware.NewIPRateLimiter(cfg.RateLimitPerMinute)
	go limiter.RunCleanup(5*time.Minute, ctx.Done())

	var health *handlers.HealthHandler
	if rabbit != nil {
		health = handlers.NewHealthHandler(cfg.StorageDriver, store.DB, rdb, rabbit.Conn)
	} else {
		health = handlers.NewHealthHandler(cfg.StorageDriver, store.DB, rdb, nil)
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		RateLimiter: limiter,
		AdminKey:    cfg.AdminAPIKey,
		Leads:       handlers.NewLeadHandler(lifecycle, log),
		Quiz:        handlers.NewQuizHandler(quizUC, log),
		Postbacks:   handlers.NewPostbackHandler(postbackUC, log),
		Clicks:      handlers.NewClickHandler(clickUC),
		Health:      health,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.HTTPAddr, "storage": cfg.StorageDriver}).Info("🔥 Lead coordinator listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
