package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"apply_bot/internal/conversation"
)

const keyPrefix = "apply:session:"

// SessionStore хранит сессии диалога в Redis; вытеснение по TTL делает
// сам Redis, так что заброшенные анкеты исчезают без уборщика.
type SessionStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewSessionStore создает хранилище сессий поверх клиента Redis.
func NewSessionStore(client *goredis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(chatID int64) string {
	return keyPrefix + strconv.FormatInt(chatID, 10)
}

func (s *SessionStore) Get(ctx context.Context, chatID int64) (conversation.Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(chatID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return conversation.Session{}, conversation.ErrSessionNotFound
		}
		return conversation.Session{}, fmt.Errorf("redis get session: %w", err)
	}
	var session conversation.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return conversation.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func (s *SessionStore) Put(ctx context.Context, session conversation.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(session.ChatID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis put session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, chatID int64) error {
	if err := s.client.Del(ctx, sessionKey(chatID)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}
