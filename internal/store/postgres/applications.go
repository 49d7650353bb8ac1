package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"apply_bot/internal/conversation"
	"apply_bot/internal/metrics"
)

const sinkName = "postgres"

// ApplicationStore хранит завершенные заявки в Postgres как дополнение к
// выгрузке в таблицу.
type ApplicationStore struct {
	db *sql.DB
}

// NewApplicationStore создает новый ApplicationStore.
func NewApplicationStore(db *sql.DB) *ApplicationStore {
	return &ApplicationStore{db: db}
}

// Append добавляет одну завершенную заявку. Повторная доставка того же
// терминального события (тот же чат и та же отметка времени) не создает
// дубликата строки.
func (s *ApplicationStore) Append(ctx context.Context, record conversation.Record) error {
	const query = `
		INSERT INTO applications (chat_id, full_name, position, location, experience, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.db.ExecContext(ctx, query,
		record.ChatID,
		record.FullName,
		record.Position,
		record.Location,
		record.Experience,
		record.SubmittedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		metrics.SinkAppendFailures.WithLabelValues(sinkName).Inc()
		return fmt.Errorf("insert application: %w", err)
	}
	metrics.SinkAppends.WithLabelValues(sinkName).Inc()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
