package applybot

import (
	"context"
	"log/slog"

	"apply_bot/internal/conversation"
)

// multiSink выгружает заявку во все настроенные стоки. Отказ одного стока
// логируется и не мешает остальным: доступность диалога важнее гарантий
// сохранности.
type multiSink struct {
	sinks  []conversation.Sink
	logger *slog.Logger
}

func (m multiSink) Append(ctx context.Context, record conversation.Record) error {
	for _, sink := range m.sinks {
		if err := sink.Append(ctx, record); err != nil {
			m.logger.Error("sink append failed",
				slog.Int64("chat_id", record.ChatID),
				slog.String("error", err.Error()))
		}
	}
	return nil
}
