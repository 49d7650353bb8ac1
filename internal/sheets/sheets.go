package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"apply_bot/internal/conversation"
	"apply_bot/internal/metrics"
)

const sinkName = "sheets"

// Config описывает подключение к таблице заявок.
type Config struct {
	CredentialsFile string
	SpreadsheetID   string
	// WriteRange — лист и колонки, куда добавляются строки, например "Sheet1!A:F".
	WriteRange string
}

// Appender выгружает завершенные заявки в Google Sheets. Клиент создается
// один раз на старте процесса; при ошибке подключения Appender остается
// недоступным до перезапуска, и каждая выгрузка становится no-op.
type Appender struct {
	service       *sheets.Service
	spreadsheetID string
	writeRange    string
	logger        *slog.Logger
}

// NewAppender подключается к Google Sheets. Ошибка подключения не фатальна:
// о деградации сообщается единожды, бот продолжает работать без выгрузки.
func NewAppender(ctx context.Context, cfg Config, logger *slog.Logger, opts ...option.ClientOption) *Appender {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Appender{
		spreadsheetID: cfg.SpreadsheetID,
		writeRange:    cfg.WriteRange,
		logger:        logger,
	}
	if a.writeRange == "" {
		a.writeRange = "Sheet1!A:F"
	}
	if cfg.SpreadsheetID == "" {
		logger.Error("sheets spreadsheet id missing; applications will not be saved externally")
		return a
	}
	if len(opts) == 0 {
		opts = []option.ClientOption{
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(sheets.SpreadsheetsScope),
		}
	}
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		logger.Error("sheets connect failed; applications will not be saved externally", slog.String("error", err.Error()))
		return a
	}
	a.service = service
	logger.Info("connected to google sheets", slog.String("spreadsheet_id", cfg.SpreadsheetID))
	return a
}

// Available сообщает, готов ли сток принимать строки.
func (a *Appender) Available() bool {
	return a != nil && a.service != nil
}

// Append добавляет одну строку в фиксированном порядке колонок:
// timestamp, chat_id, full_name, position, location, experience.
// В недоступном режиме вызов молча пропускается.
func (a *Appender) Append(ctx context.Context, record conversation.Record) error {
	if !a.Available() {
		return nil
	}

	values := &sheets.ValueRange{
		Values: [][]any{{
			record.SubmittedAt.UTC().Format(time.RFC3339),
			strconv.FormatInt(record.ChatID, 10),
			orNA(record.FullName),
			orNA(record.Position),
			orNA(record.Location),
			orNA(record.Experience),
		}},
	}
	call := a.service.Spreadsheets.Values.Append(a.spreadsheetID, a.writeRange, values).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)
	if _, err := call.Do(); err != nil {
		metrics.SinkAppendFailures.WithLabelValues(sinkName).Inc()
		return fmt.Errorf("sheets append: %w", err)
	}
	metrics.SinkAppends.WithLabelValues(sinkName).Inc()
	return nil
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}
