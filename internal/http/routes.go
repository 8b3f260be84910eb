package http

import (
	"time"

	"telegram_docbot/internal/http/handlers"
	"telegram_docbot/internal/http/middleware"
	"telegram_docbot/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// Deps is everything the ops server exposes. Tokens nil leaves the admin API
// unregistered.
type Deps struct {
	DB      handlers.Pinger
	Redis   *redis.Client
	Version string

	Payments   *service.PaymentService
	Admin      *service.AdminService
	Tokens     *service.AdminTokens
	OnRedeemed handlers.RedeemedFunc

	RateLimit  int
	RateWindow time.Duration
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	healthHandler := handlers.NewHealthHandler(d.DB, d.Redis, d.Version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if d.Tokens == nil {
		return
	}

	rateLimit := d.RateLimit
	if rateLimit <= 0 {
		rateLimit = 10
	}
	rateWindow := d.RateWindow
	if rateWindow <= 0 {
		rateWindow = time.Minute
	}

	adminHandler := handlers.NewAdminHandler(d.Payments, d.Admin)
	adminHandler.OnRedeemed = d.OnRedeemed

	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.RedisRateLimit(d.Redis, rateLimit, rateWindow))
	admin.Use(middleware.AdminAuth(d.Tokens, d.Payments.IsAdmin))
	{
		admin.POST("/payment-codes/verify", adminHandler.VerifyCode)
		admin.GET("/stats", adminHandler.GetStats)
	}
}
