package applybot

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"apply_bot/internal/config"
	"apply_bot/internal/conversation"
	"apply_bot/internal/logging"
	"apply_bot/internal/metrics"
	"apply_bot/internal/observability"
	"apply_bot/internal/ratelimit"
	"apply_bot/internal/sheets"
	pgstore "apply_bot/internal/store/postgres"
	redisstore "apply_bot/internal/store/redis"
	"apply_bot/internal/telegram"
)

// Run запускает сервис бота анкеты и блокирует выполнение до остановки.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("redis url parse failed", slog.String("error", err.Error()))
		} else {
			redisClient = redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				logger.Error("redis ping failed", slog.String("error", err.Error()))
				_ = redisClient.Close()
				redisClient = nil
			}
		}
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("redis close failed", slog.String("error", err.Error()))
			}
		}()
	}

	var sessionStore conversation.SessionStore
	if redisClient != nil {
		sessionStore = redisstore.NewSessionStore(redisClient, cfg.SessionTTL)
	} else {
		memoryStore := conversation.NewMemorySessionStore(cfg.SessionTTL)
		defer memoryStore.Close()
		sessionStore = memoryStore
	}

	sheetsAppender := sheets.NewAppender(context.Background(), sheets.Config{
		CredentialsFile: cfg.SheetsCredentialsFile,
		SpreadsheetID:   cfg.SheetsSpreadsheetID,
		WriteRange:      cfg.SheetsRange,
	}, logger)
	sinks := []conversation.Sink{sheetsAppender}

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database connect failed: %w", err)
		}
		defer db.Close()
		sinks = append(sinks, pgstore.NewApplicationStore(db))
	}

	flow := conversation.NewFlow(sessionStore, multiSink{sinks: sinks, logger: logger}, conversation.Links{
		FormURL:  cfg.FormURL,
		GroupURL: cfg.GroupURL,
	}, logger)

	telegramClient := telegram.NewClient(cfg.BotToken, &http.Client{Timeout: cfg.TelegramTimeout})
	pollerClient := telegramClient
	if cfg.TelegramPollingEnabled {
		pollTimeout := cfg.TelegramPollingTimeout + 5*time.Second
		if pollTimeout < cfg.TelegramTimeout {
			pollTimeout = cfg.TelegramTimeout
		}
		pollerClient = telegram.NewClient(cfg.BotToken, &http.Client{Timeout: pollTimeout})
	}

	var inboundLimiter ratelimit.Limiter
	if cfg.TelegramInboundRateLimit > 0 {
		if redisClient != nil {
			inboundLimiter = ratelimit.NewRedisLimiter(redisClient, cfg.TelegramInboundRateLimit, time.Minute, "apply:inbound")
		} else {
			inboundLimiter = ratelimit.NewMemoryLimiter(cfg.TelegramInboundRateLimit, time.Minute)
		}
	}

	bot := telegram.NewBot(telegramClient, flow, inboundLimiter, logger)
	webhookHandler := telegram.NewWebhookHandler(bot, cfg.TelegramWebhookSecret, logger)

	var poller *telegram.Poller
	if cfg.TelegramPollingEnabled {
		poller = telegram.NewPoller(pollerClient, bot, logger, cfg.TelegramPollingTimeout, cfg.TelegramPollingInterval, cfg.TelegramPollingLimit, cfg.TelegramPollingDropPending, cfg.TelegramPollingDropWebhook)
	} else {
		if cfg.TelegramWebhookURL == "" {
			logger.Warn("telegram webhook url missing; bot will not receive updates")
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telegramClient.SetWebhook(ctx, cfg.TelegramWebhookURL, cfg.TelegramWebhookSecret, cfg.TelegramWebhookDropPending); err != nil {
				return fmt.Errorf("telegram set webhook failed: %w", err)
			}
			logger.Info("telegram webhook configured", slog.String("url", cfg.TelegramWebhookURL))
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/telegram/webhook", webhookHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	handler := withMetrics(withRequestID(logger, mux))
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("apply bot listening", slog.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("apply bot server error", slog.String("error", err.Error()))
		}
	}()
	if poller != nil {
		go poller.Run(ctx)
		logger.Info("telegram polling enabled", slog.Duration("timeout", cfg.TelegramPollingTimeout))
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("apply bot shutdown error", slog.String("error", err.Error()))
	}

	return nil
}

func withRequestID(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = observability.NewRequestID()
		}
		ctx := observability.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-ID", requestID)
		logger.Debug("request received", slog.String("path", r.URL.Path), slog.String("method", r.Method), slog.String("request_id", requestID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		metrics.HTTPRequests.Inc()
		next.ServeHTTP(recorder, r)
		if recorder.status >= http.StatusInternalServerError {
			metrics.HTTPErrors.Inc()
		}
	})
}
