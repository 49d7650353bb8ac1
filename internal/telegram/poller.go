package telegram

import (
	"context"
	"log/slog"
	"time"
)

// Poller получает обновления Telegram длинным опросом; используется в
// разработке вместо webhook.
type Poller struct {
	client      *Client
	bot         *Bot
	logger      *slog.Logger
	timeout     time.Duration
	interval    time.Duration
	limit       int
	dropPending bool
	dropWebhook bool
}

// NewPoller создает цикл длинного опроса поверх клиента и бота.
func NewPoller(client *Client, bot *Bot, logger *slog.Logger, timeout, interval time.Duration, limit int, dropPending, dropWebhook bool) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		client:      client,
		bot:         bot,
		logger:      logger,
		timeout:     timeout,
		interval:    interval,
		limit:       limit,
		dropPending: dropPending,
		dropWebhook: dropWebhook,
	}
}

// Run блокируется до отмены контекста. Обновления обрабатываются по
// одному в порядке получения, что сериализует события каждого чата.
func (p *Poller) Run(ctx context.Context) {
	if p.dropWebhook {
		if err := p.client.DeleteWebhook(ctx, p.dropPending); err != nil {
			p.logger.Error("telegram delete webhook failed", slog.String("error", err.Error()))
		}
	}

	var offset int64
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := p.client.GetUpdates(ctx, offset, p.timeout, p.limit)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("telegram get updates failed", slog.String("error", err.Error()))
			if !p.sleep(ctx) {
				return
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			if err := p.bot.HandleUpdate(ctx, update); err != nil {
				p.logger.Error("telegram update failed", slog.Int64("update_id", update.UpdateID), slog.String("error", err.Error()))
			}
		}

		if len(updates) == 0 && !p.sleep(ctx) {
			return
		}
	}
}

func (p *Poller) sleep(ctx context.Context) bool {
	if p.interval <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(p.interval):
		return true
	}
}
