package sheets

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"apply_bot/internal/conversation"
)

type capturedAppend struct {
	path string
	body []byte
}

func newTestAppender(t *testing.T, captured *[]capturedAppend) *Appender {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*captured = append(*captured, capturedAppend{path: r.URL.Path, body: body})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	return NewAppender(context.Background(), Config{
		SpreadsheetID: "sheet-123",
		WriteRange:    "Sheet1!A:F",
	}, slog.Default(),
		option.WithEndpoint(server.URL),
		option.WithoutAuthentication(),
		option.WithHTTPClient(server.Client()),
	)
}

func TestAppenderWritesRowInColumnOrder(t *testing.T) {
	var captured []capturedAppend
	appender := newTestAppender(t, &captured)
	require.True(t, appender.Available())

	record := conversation.Record{
		ChatID:      42,
		FullName:    "Jane Doe",
		Position:    "GT-1023",
		Location:    "Living: X; Working: Y",
		Experience:  "3 years",
		SubmittedAt: time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, appender.Append(context.Background(), record))
	require.Len(t, captured, 1)
	require.Contains(t, captured[0].path, "sheet-123")

	var payload struct {
		Values [][]any `json:"values"`
	}
	require.NoError(t, json.Unmarshal(captured[0].body, &payload))
	require.Len(t, payload.Values, 1)
	require.Equal(t, []any{
		"2025-11-03T09:30:00Z",
		"42",
		"Jane Doe",
		"GT-1023",
		"Living: X; Working: Y",
		"3 years",
	}, payload.Values[0])
}

func TestAppenderFillsMissingFields(t *testing.T) {
	var captured []capturedAppend
	appender := newTestAppender(t, &captured)

	record := conversation.Record{ChatID: 7, FullName: "Jane Doe", SubmittedAt: time.Unix(0, 0)}
	require.NoError(t, appender.Append(context.Background(), record))
	require.Len(t, captured, 1)

	var payload struct {
		Values [][]any `json:"values"`
	}
	require.NoError(t, json.Unmarshal(captured[0].body, &payload))
	require.Equal(t, "N/A", payload.Values[0][3])
	require.Equal(t, "N/A", payload.Values[0][4])
	require.Equal(t, "N/A", payload.Values[0][5])
}

func TestAppenderAppendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	appender := NewAppender(context.Background(), Config{SpreadsheetID: "sheet-123"}, slog.Default(),
		option.WithEndpoint(server.URL),
		option.WithoutAuthentication(),
		option.WithHTTPClient(server.Client()),
	)

	err := appender.Append(context.Background(), conversation.Record{ChatID: 1})
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "sheets append:"))
}

func TestAppenderDegradedModeIsNoop(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	t.Cleanup(server.Close)

	// Без идентификатора таблицы клиент не создается: выгрузка молча пропускается.
	appender := NewAppender(context.Background(), Config{}, slog.Default(),
		option.WithEndpoint(server.URL),
		option.WithoutAuthentication(),
		option.WithHTTPClient(server.Client()),
	)
	require.False(t, appender.Available())

	for i := 0; i < 3; i++ {
		require.NoError(t, appender.Append(context.Background(), conversation.Record{ChatID: 1}))
	}
	require.Zero(t, requests)
}
