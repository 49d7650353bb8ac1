package observability

import (
	"context"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// NewRequestID возвращает новый идентификатор запроса.
func NewRequestID() string {
	return uuid.NewString()
}

// WithRequestID кладет идентификатор запроса в контекст.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext извлекает идентификатор запроса из контекста.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	return requestID
}
