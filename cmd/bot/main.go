package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"telegram_docbot/internal/bot"
	"telegram_docbot/internal/config"
	"telegram_docbot/internal/db"
	httpServer "telegram_docbot/internal/http"
	"telegram_docbot/internal/logger"
	"telegram_docbot/internal/repository"
	"telegram_docbot/internal/scheduler"
	"telegram_docbot/internal/service"
	"telegram_docbot/internal/session"

	"github.com/gin-gonic/gin"
)

var version = "dev"

func main() {
	cfg := config.MustLoad()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool := db.Connect(ctx, cfg.DatabaseURL)
	defer dbPool.Close()

	rdb := db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
	}

	var sessions session.Store
	if rdb != nil {
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
	} else {
		mem := session.NewMemoryStore(cfg.SessionTTL)
		mem.StartCleanup(ctx, time.Minute)
		sessions = mem
	}

	userRepo := repository.NewUserRepository(dbPool)
	audit := service.NewAuditService(repository.NewAuditRepository(dbPool))
	svc := bot.Services{
		Users:         service.NewUserService(userRepo),
		Ledger:        service.NewLedgerService(repository.NewBalanceRepository(dbPool), repository.NewTransactionRepository(dbPool)),
		Payments:      service.NewPaymentService(repository.NewPaymentCodeRepository(dbPool), audit, cfg.CoinPacks, cfg.PaymentCodeTTL, cfg.AdminTelegramID),
		Referrals:     service.NewReferralService(repository.NewReferralRepository(dbPool)),
		Subscriptions: service.NewSubscriptionService(userRepo, audit, cfg.SubscriptionBonus, cfg.ReferralBonus),
		Orders:        service.NewOrderService(repository.NewOrderRepository(dbPool), audit, cfg.PagePrices),
		Admin:         service.NewAdminService(repository.NewStatsRepository(dbPool)),
		Audit:         audit,
	}

	gw, err := bot.NewTelegramGateway(cfg.BotToken)
	if err != nil {
		logger.Fatal("failed to start telegram gateway", "error", err)
	}

	sched := scheduler.New()
	b := bot.New(gw, svc, sessions, sched, bot.NewRateLimiter(rdb, cfg.RateLimit, cfg.RateWindow), bot.Options{
		ChannelID:       cfg.ChannelID,
		ChannelUsername: cfg.ChannelUsername,
		Workers:         cfg.BotWorkers,
		CompletionDelay: cfg.CompletionDelay,
	})

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	deps := httpServer.Deps{
		DB:         dbPool,
		Redis:      rdb,
		Version:    version,
		Payments:   svc.Payments,
		Admin:      svc.Admin,
		OnRedeemed: b.NotifyRedemption,
	}
	if cfg.JWTSecret != "" {
		deps.Tokens = service.NewAdminTokens(cfg.JWTSecret, 24*time.Hour)
	} else {
		logger.Info("JWT_SECRET not set, admin API disabled")
	}
	httpServer.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("ops server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		b.Run(ctx, gw.Updates(ctx))
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	<-runDone
	b.Stop(10 * time.Second)
	sched.Stop(shutdownCtx)

	logger.Info("bot exited")
}
