// Command admin_token prints a bearer token for the admin HTTP API.
package main

import (
	"flag"
	"fmt"
	"time"

	"telegram_docbot/internal/config"
	"telegram_docbot/internal/logger"
	"telegram_docbot/internal/service"
)

func main() {
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.MustLoad()
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET not set")
	}

	token, err := service.NewAdminTokens(cfg.JWTSecret, *ttl).Generate(cfg.AdminTelegramID)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}
	fmt.Println(token)
}
