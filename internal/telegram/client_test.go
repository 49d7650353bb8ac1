package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient("test-token", server.Client())
	client.baseURL = server.URL
	return client
}

func TestClientSendMessageWithMarkup(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottest-token/sendMessage" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	markup := &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{{
		{Text: "Yes, I have.", CallbackData: "yes_form"},
	}}}
	if err := client.SendMessageWithMarkup(context.Background(), 42, "hello", markup); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got["chat_id"] != float64(42) {
		t.Fatalf("unexpected chat_id: %v", got["chat_id"])
	}
	if got["parse_mode"] != "Markdown" {
		t.Fatalf("expected markdown parse mode, got %v", got["parse_mode"])
	}
	if _, ok := got["reply_markup"]; !ok {
		t.Fatalf("expected reply_markup in payload")
	}
}

func TestClientGetUpdates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"result":[{"update_id":10,"message":{"message_id":1,"chat":{"id":5,"type":"private"},"text":"hi"}}]}`))
	})

	updates, err := client.GetUpdates(context.Background(), 0, 25*time.Second, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updates) != 1 || updates[0].UpdateID != 10 {
		t.Fatalf("unexpected updates: %+v", updates)
	}
	if updates[0].Message == nil || updates[0].Message.Chat.ID != 5 {
		t.Fatalf("unexpected message: %+v", updates[0].Message)
	}
}

func TestClientAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	})

	err := client.SendMessage(context.Background(), 1, "hi")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("unexpected status: %d", apiErr.StatusCode)
	}
}

func TestClientNotOK(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	})

	if err := client.SendMessage(context.Background(), 1, "hi"); err == nil {
		t.Fatalf("expected error")
	}
}
