package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token-123")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "token-123", cfg.BotToken)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "credentials.json", cfg.SheetsCredentialsFile)
	require.Equal(t, "Sheet1!A:F", cfg.SheetsRange)
	require.Equal(t, defaultFormURL, cfg.FormURL)
	require.Equal(t, defaultGroupURL, cfg.GroupURL)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.False(t, cfg.TelegramPollingEnabled)
}

func TestLoadLegacyTokenFallback(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TOKEN", "legacy-token")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "legacy-token", cfg.BotToken)
}

func TestLoadPrefersNewTokenVar(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "new-token")
	t.Setenv("TOKEN", "legacy-token")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "new-token", cfg.BotToken)
}

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("TELEGRAM_POLLING_ENABLED", "true")
	t.Setenv("SHEETS_SPREADSHEET_ID", "sheet-9")
	t.Setenv("TELEGRAM_INBOUND_RATE_LIMIT_PER_MIN", "5")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 2*time.Hour, cfg.SessionTTL)
	require.True(t, cfg.TelegramPollingEnabled)
	require.Equal(t, "sheet-9", cfg.SheetsSpreadsheetID)
	require.Equal(t, 5, cfg.TelegramInboundRateLimit)
}

func TestLoadInvalidSessionTTL(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("SESSION_TTL", "-1h")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "SESSION_TTL")
}
