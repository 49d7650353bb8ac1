package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Ссылки по умолчанию, которые бот отдает кандидатам.
const (
	defaultFormURL  = "https://forms.gle/aKBVuH9BHvwQYf4v9"
	defaultGroupURL = "https://t.me/Gebeta_Tutors_Circle"
)

// Config хранит конфигурацию времени выполнения бота анкеты.
type Config struct {
	Port     string
	LogLevel string

	BotToken                   string
	TelegramTimeout            time.Duration
	TelegramWebhookURL         string
	TelegramWebhookSecret      string
	TelegramWebhookDropPending bool
	TelegramPollingEnabled     bool
	TelegramPollingTimeout     time.Duration
	TelegramPollingInterval    time.Duration
	TelegramPollingLimit       int
	TelegramPollingDropPending bool
	TelegramPollingDropWebhook bool
	TelegramInboundRateLimit   int

	SheetsCredentialsFile string
	SheetsSpreadsheetID   string
	SheetsRange           string

	FormURL  string
	GroupURL string

	SessionTTL  time.Duration
	RedisURL    string
	DatabaseURL string
}

// Load читает конфигурацию из переменных окружения. Файл .env, если он
// есть рядом с процессом, подхватывается до чтения переменных.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:                       envOr("PORT", "8080"),
		LogLevel:                   envOr("LOG_LEVEL", "info"),
		TelegramTimeout:            durationOr("TELEGRAM_TIMEOUT", 5*time.Second),
		TelegramWebhookURL:         envOr("TELEGRAM_WEBHOOK_URL", ""),
		TelegramWebhookDropPending: boolOr("TELEGRAM_WEBHOOK_DROP_PENDING", false),
		TelegramPollingEnabled:     boolOr("TELEGRAM_POLLING_ENABLED", false),
		TelegramPollingTimeout:     durationOr("TELEGRAM_POLLING_TIMEOUT", 25*time.Second),
		TelegramPollingInterval:    durationOr("TELEGRAM_POLLING_INTERVAL", time.Second),
		TelegramPollingLimit:       intOr("TELEGRAM_POLLING_LIMIT", 50),
		TelegramPollingDropPending: boolOr("TELEGRAM_POLLING_DROP_PENDING", true),
		TelegramPollingDropWebhook: boolOr("TELEGRAM_POLLING_DROP_WEBHOOK", true),
		TelegramInboundRateLimit:   intOr("TELEGRAM_INBOUND_RATE_LIMIT_PER_MIN", 30),
		SheetsCredentialsFile:      envOr("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		SheetsRange:                envOr("SHEETS_RANGE", "Sheet1!A:F"),
		FormURL:                    envOr("FORM_URL", defaultFormURL),
		GroupURL:                   envOr("GROUP_URL", defaultGroupURL),
		SessionTTL:                 durationOr("SESSION_TTL", 24*time.Hour),
		RedisURL:                   envOr("REDIS_URL", ""),
		DatabaseURL:                strings.TrimSpace(os.Getenv("DATABASE_URL")),
	}

	cfg.BotToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	if cfg.BotToken == "" {
		// TOKEN — имя переменной, которое выставляет хостинг; оставлено
		// как запасной источник при переезде на TELEGRAM_BOT_TOKEN.
		cfg.BotToken = strings.TrimSpace(os.Getenv("TOKEN"))
	}
	cfg.TelegramWebhookSecret = strings.TrimSpace(os.Getenv("TELEGRAM_WEBHOOK_SECRET"))
	cfg.SheetsSpreadsheetID = strings.TrimSpace(os.Getenv("SHEETS_SPREADSHEET_ID"))

	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("missing required env vars: TELEGRAM_BOT_TOKEN")
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive")
	}
	if cfg.TelegramInboundRateLimit < 0 {
		return Config{}, fmt.Errorf("rate limit values must be positive: TELEGRAM_INBOUND_RATE_LIMIT_PER_MIN")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func durationOr(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return duration
}

func intOr(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func boolOr(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
