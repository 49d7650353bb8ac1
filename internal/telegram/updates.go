package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// allowedUpdates — типы обновлений, которые бот запрашивает у Telegram.
var allowedUpdates = []string{"message", "callback_query"}

// GetUpdates получает пачку обновлений длинным опросом.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration, limit int) ([]Update, error) {
	payload := map[string]any{
		"allowed_updates": allowedUpdates,
	}
	if offset > 0 {
		payload["offset"] = offset
	}
	if timeout > 0 {
		seconds := int(timeout.Round(time.Second).Seconds())
		if seconds < 0 {
			seconds = 0
		}
		if seconds > 50 {
			seconds = 50
		}
		payload["timeout"] = seconds
	}
	if limit > 0 {
		if limit > 100 {
			limit = 100
		}
		payload["limit"] = limit
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SetWebhook регистрирует URL для доставки обновлений.
func (c *Client) SetWebhook(ctx context.Context, url, secretToken string, dropPending bool) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("telegram set webhook: url is required")
	}
	payload := map[string]any{
		"url":             url,
		"allowed_updates": allowedUpdates,
	}
	if secretToken != "" {
		payload["secret_token"] = secretToken
	}
	if dropPending {
		payload["drop_pending_updates"] = true
	}
	return c.call(ctx, "setWebhook", payload, nil)
}

// DeleteWebhook снимает регистрацию webhook; нужен перед длинным опросом.
func (c *Client) DeleteWebhook(ctx context.Context, dropPending bool) error {
	payload := map[string]any{}
	if dropPending {
		payload["drop_pending_updates"] = true
	}
	return c.call(ctx, "deleteWebhook", payload, nil)
}
