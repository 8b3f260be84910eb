package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_TELEGRAM_ID", "42")
	t.Setenv("CHANNEL_ID", "@docs_channel")
	t.Setenv("CHANNEL_USERNAME", "@docs_channel")
	t.Setenv("DATABASE_URL", "postgres://localhost/docbot")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.AdminTelegramID)
	assert.Equal(t, "docs_channel", cfg.ChannelUsername)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, int64(200), cfg.SubscriptionBonus)
	assert.Equal(t, int64(50), cfg.ReferralBonus)
	assert.Equal(t, 24*time.Hour, cfg.PaymentCodeTTL)
	assert.Equal(t, 2*time.Second, cfg.CompletionDelay)
	assert.Len(t, cfg.PagePrices, 3)
	assert.Len(t, cfg.CoinPacks, 3)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("REFERRAL_BONUS", "75")
	t.Setenv("COMPLETION_DELAY", "5s")
	t.Setenv("BOT_WORKERS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(75), cfg.ReferralBonus)
	assert.Equal(t, 5*time.Second, cfg.CompletionDelay)
	assert.Equal(t, 3, cfg.BotWorkers)
}

func TestLoad_MissingRequired(t *testing.T) {
	for _, key := range required {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_BadAdminID(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_TELEGRAM_ID", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
