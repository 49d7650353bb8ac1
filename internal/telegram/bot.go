package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"apply_bot/internal/conversation"
	"apply_bot/internal/metrics"
	"apply_bot/internal/ratelimit"
)

// Update представляет payload обновления Telegram.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
	From      User   `json:"from"`
	Date      int64  `json:"date"`
}

type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// CallbackQuery — нажатие inline-кнопки; Data содержит идентификатор кнопки.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data"`
}

const helpText = "I collect tutor applications for Gebeta Tutors. Use /start to begin a new application and /cancel to abandon it."

// Bot обрабатывает входящие обновления Telegram и ведет диалог анкеты.
type Bot struct {
	sender  Service
	flow    *conversation.Flow
	limiter ratelimit.Limiter
	logger  *slog.Logger
}

// NewBot создает обработчик бота Telegram.
func NewBot(sender Service, flow *conversation.Flow, limiter ratelimit.Limiter, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		sender:  sender,
		flow:    flow,
		limiter: limiter,
		logger:  logger,
	}
}

// HandleUpdate маршрутизирует поддерживаемые обновления Telegram.
// Обновления одного чата транспорт доставляет последовательно; эта
// предпосылка позволяет машине состояний обходиться без блокировок.
func (b *Bot) HandleUpdate(ctx context.Context, update Update) error {
	if update.CallbackQuery != nil {
		return b.handleCallback(ctx, update.CallbackQuery)
	}

	if update.Message == nil {
		return nil
	}
	msg := update.Message
	if msg.Chat.ID <= 0 {
		return nil
	}
	if msg.Chat.Type != "" && msg.Chat.Type != "private" {
		return nil
	}
	if b.limiter != nil && !b.limiter.Allow(strconv.FormatInt(msg.Chat.ID, 10)) {
		b.logger.Warn("inbound rate limit exceeded", slog.Int64("chat_id", msg.Chat.ID))
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil
	}

	command, _ := parseCommand(text)
	switch command {
	case "/start":
		metrics.UpdatesReceived.WithLabelValues("command").Inc()
		reply, err := b.flow.Start(ctx, msg.Chat.ID)
		if err != nil {
			return err
		}
		return b.sendReply(ctx, msg.Chat.ID, reply)
	case "/cancel":
		metrics.UpdatesReceived.WithLabelValues("command").Inc()
		reply, err := b.flow.Cancel(ctx, msg.Chat.ID)
		if err != nil {
			return err
		}
		return b.sendReply(ctx, msg.Chat.ID, reply)
	case "/help":
		metrics.UpdatesReceived.WithLabelValues("command").Inc()
		return b.sendMessage(ctx, msg.Chat.ID, helpText, nil)
	default:
		if strings.HasPrefix(text, "/") {
			metrics.UpdatesReceived.WithLabelValues("command").Inc()
			return b.sendMessage(ctx, msg.Chat.ID, "I did not understand. Use /start or /help.", nil)
		}
		metrics.UpdatesReceived.WithLabelValues("text").Inc()
		// Текст передается дословно, без TrimSpace: анкета хранит ответы как есть.
		reply, err := b.flow.Text(ctx, msg.Chat.ID, msg.Text)
		if err != nil {
			return err
		}
		return b.sendReply(ctx, msg.Chat.ID, reply)
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *CallbackQuery) error {
	if query.Message == nil || query.Message.Chat.ID <= 0 {
		return nil
	}
	chatID := query.Message.Chat.ID
	metrics.UpdatesReceived.WithLabelValues("callback_query").Inc()

	if b.limiter != nil && !b.limiter.Allow(strconv.FormatInt(chatID, 10)) {
		b.logger.Warn("inbound rate limit exceeded", slog.Int64("chat_id", chatID))
		return nil
	}

	if answerer, ok := b.sender.(CallbackAnswerer); ok {
		if err := answerer.AnswerCallbackQuery(ctx, query.ID); err != nil {
			b.logger.Warn("answer callback query", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		}
	}

	at := time.Unix(query.Message.Date, 0).UTC()
	reply, err := b.flow.Button(ctx, chatID, query.Data, at)
	if err != nil {
		return err
	}
	if reply.IsZero() {
		return nil
	}

	// Как и исходный диалог, ответ на кнопку заменяет сообщение с клавиатурой.
	if editor, ok := b.sender.(MessageEditor); ok {
		var editMarkup any
		if markup := markupFor(reply); markup != nil {
			editMarkup = markup
		}
		if err := editor.EditMessageText(ctx, chatID, query.Message.MessageID, reply.Text, editMarkup); err == nil {
			return nil
		} else {
			b.logger.Warn("edit message failed, sending new one", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		}
	}
	return b.sendReply(ctx, chatID, reply)
}

func parseCommand(text string) (string, string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", ""
	}
	command := fields[0]
	if idx := strings.Index(command, "@"); idx != -1 {
		command = command[:idx]
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}
	return command, arg
}

func (b *Bot) sendReply(ctx context.Context, chatID int64, reply conversation.Reply) error {
	if reply.IsZero() {
		return nil
	}
	return b.sendMessage(ctx, chatID, reply.Text, markupFor(reply))
}

func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string, markup *InlineKeyboardMarkup) error {
	if markup != nil {
		if sender, ok := b.sender.(MarkupSender); ok {
			return sender.SendMessageWithMarkup(ctx, chatID, text, markup)
		}
	}
	return b.sender.SendMessage(ctx, chatID, text)
}

func markupFor(reply conversation.Reply) *InlineKeyboardMarkup {
	if len(reply.Buttons) == 0 {
		return nil
	}
	rows := make([][]InlineKeyboardButton, 0, len(reply.Buttons))
	for _, row := range reply.Buttons {
		buttons := make([]InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			buttons = append(buttons, InlineKeyboardButton{Text: button.Label, CallbackData: button.Data})
		}
		rows = append(rows, buttons)
	}
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}
