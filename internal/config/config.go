package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"telegram_docbot/internal/domain"
	"telegram_docbot/internal/logger"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	LogLevel    string
	LogJSON     bool

	BotToken        string
	AdminTelegramID int64
	ChannelID       string // numeric id or @username, used for membership lookups
	ChannelUsername string // without @, used for the join link
	JWTSecret       string // empty disables the admin HTTP API

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	BotWorkers int
	RateLimit  int
	RateWindow time.Duration

	SubscriptionBonus int64
	ReferralBonus     int64
	PaymentCodeTTL    time.Duration
	CompletionDelay   time.Duration

	PagePrices []domain.PagePrice
	CoinPacks  []domain.CoinPack
}

// DefaultPagePrices is the fixed page-range price table
var DefaultPagePrices = []domain.PagePrice{
	{Range: "6-8", Pages: 6, Coins: 130},
	{Range: "9-10", Pages: 9, Coins: 150},
	{Range: "11-15", Pages: 11, Coins: 200},
}

// DefaultCoinPacks is the fixed coin-amount price table
var DefaultCoinPacks = []domain.CoinPack{
	{Coins: 100, USD: decimal.NewFromInt(10)},
	{Coins: 500, USD: decimal.NewFromInt(45)},
	{Coins: 1000, USD: decimal.NewFromInt(80)},
}

var required = []string{
	"TELEGRAM_BOT_TOKEN",
	"ADMIN_TELEGRAM_ID",
	"CHANNEL_ID",
	"CHANNEL_USERNAME",
	"DATABASE_URL",
}

// Load reads .env (if present) and the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", false)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("BOT_WORKERS", 8)
	v.SetDefault("RATE_LIMIT", 30)
	v.SetDefault("RATE_WINDOW", 10*time.Second)
	v.SetDefault("SUBSCRIPTION_BONUS", 200)
	v.SetDefault("REFERRAL_BONUS", 50)
	v.SetDefault("PAYMENT_CODE_TTL", 24*time.Hour)
	v.SetDefault("COMPLETION_DELAY", 2*time.Second)

	var missing []string
	for _, key := range required {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required env not set: %s", strings.Join(missing, ", "))
	}

	adminID, err := strconv.ParseInt(strings.TrimSpace(v.GetString("ADMIN_TELEGRAM_ID")), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg := &Config{
		AppPort:     v.GetString("APP_PORT"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogJSON:     v.GetBool("LOG_JSON"),

		BotToken:        v.GetString("TELEGRAM_BOT_TOKEN"),
		AdminTelegramID: adminID,
		ChannelID:       v.GetString("CHANNEL_ID"),
		ChannelUsername: strings.TrimPrefix(v.GetString("CHANNEL_USERNAME"), "@"),
		JWTSecret:       v.GetString("JWT_SECRET"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		SessionTTL:    v.GetDuration("SESSION_TTL"),

		BotWorkers: v.GetInt("BOT_WORKERS"),
		RateLimit:  v.GetInt("RATE_LIMIT"),
		RateWindow: v.GetDuration("RATE_WINDOW"),

		SubscriptionBonus: v.GetInt64("SUBSCRIPTION_BONUS"),
		ReferralBonus:     v.GetInt64("REFERRAL_BONUS"),
		PaymentCodeTTL:    v.GetDuration("PAYMENT_CODE_TTL"),
		CompletionDelay:   v.GetDuration("COMPLETION_DELAY"),

		PagePrices: DefaultPagePrices,
		CoinPacks:  DefaultCoinPacks,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is Load that exits the process on error
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}
	return cfg
}

func (c *Config) validate() error {
	if c.BotWorkers <= 0 {
		return errors.New("BOT_WORKERS must be positive")
	}
	if c.SubscriptionBonus <= 0 || c.ReferralBonus <= 0 {
		return errors.New("reward amounts must be positive")
	}
	if c.PaymentCodeTTL <= 0 {
		return errors.New("PAYMENT_CODE_TTL must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}
