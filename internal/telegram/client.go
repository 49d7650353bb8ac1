package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Service отправляет сообщения пользователям Telegram.
type Service interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// MarkupSender отправляет сообщения с клавиатурой.
type MarkupSender interface {
	SendMessageWithMarkup(ctx context.Context, chatID int64, text string, replyMarkup any) error
}

// MessageEditor редактирует ранее отправленные сообщения.
type MessageEditor interface {
	EditMessageText(ctx context.Context, chatID, messageID int64, text string, replyMarkup any) error
}

// CallbackAnswerer подтверждает получение callback-запроса.
type CallbackAnswerer interface {
	AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error
}

// InlineKeyboardButton — кнопка inline-клавиатуры Bot API.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
}

// InlineKeyboardMarkup — inline-клавиатура Bot API.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// APIError описывает ответ Telegram с кодом вне диапазона 2xx.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api status %d: %s", e.StatusCode, e.Body)
}

// Client — минимальный клиент Telegram Bot API поверх net/http.
type Client struct {
	baseURL    string
	botToken   string
	httpClient *http.Client
}

// NewClient создает клиента Bot API.
func NewClient(botToken string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    "https://api.telegram.org",
		botToken:   botToken,
		httpClient: httpClient,
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
}

// call выполняет один метод Bot API и декодирует result в out, если out не nil.
func (c *Client) call(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram %s encode: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &APIError{StatusCode: resp.StatusCode, Body: string(payload)}
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("telegram %s decode: %w", method, err)
	}
	if !parsed.OK {
		return fmt.Errorf("telegram %s error: %s", method, parsed.Description)
	}
	if out != nil && parsed.Result != nil {
		if err := json.Unmarshal(parsed.Result, out); err != nil {
			return fmt.Errorf("telegram %s result decode: %w", method, err)
		}
	}
	return nil
}

// SendMessage отправляет текстовое сообщение в чат.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	return c.call(ctx, "sendMessage", payload, nil)
}

// SendMessageWithMarkup отправляет сообщение с клавиатурой и Markdown-разметкой.
func (c *Client) SendMessageWithMarkup(ctx context.Context, chatID int64, text string, replyMarkup any) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	if replyMarkup != nil {
		payload["reply_markup"] = replyMarkup
	}
	return c.call(ctx, "sendMessage", payload, nil)
}

// EditMessageText заменяет текст и клавиатуру ранее отправленного сообщения.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string, replyMarkup any) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	if replyMarkup != nil {
		payload["reply_markup"] = replyMarkup
	}
	return c.call(ctx, "editMessageText", payload, nil)
}

// AnswerCallbackQuery подтверждает callback, чтобы клиент убрал индикатор ожидания.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error {
	payload := map[string]any{
		"callback_query_id": callbackQueryID,
	}
	return c.call(ctx, "answerCallbackQuery", payload, nil)
}
