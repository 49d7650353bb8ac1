package conversation

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Record — накопленные поля заявки, предназначенные для выгрузки в сток.
type Record struct {
	ChatID      int64     `json:"chat_id"`
	FullName    string    `json:"full_name"`
	Position    string    `json:"position"`
	Location    string    `json:"location"`
	Experience  string    `json:"experience"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Session — состояние диалога одного чата.
type Session struct {
	ChatID    int64     `json:"chat_id"`
	Stage     Stage     `json:"stage"`
	Record    Record    `json:"record"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrSessionNotFound сообщает об отсутствии активной сессии для чата.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore хранит сессии диалогов по ID чата.
type SessionStore interface {
	Get(ctx context.Context, chatID int64) (Session, error)
	Put(ctx context.Context, session Session) error
	Delete(ctx context.Context, chatID int64) error
}

// MemorySessionStore хранит сессии в памяти с вытеснением по TTL.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[int64]memorySession
	stop     chan struct{}
	stopOnce sync.Once
	clock    func() time.Time
}

type memorySession struct {
	session   Session
	expiresAt time.Time
}

// NewMemorySessionStore создает хранилище сессий в памяти. При ttl > 0
// просроченные сессии вытесняются при чтении и фоновой уборкой.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	s := &MemorySessionStore{
		ttl:      ttl,
		sessions: make(map[int64]memorySession),
		stop:     make(chan struct{}),
		clock:    time.Now,
	}
	if ttl > 0 {
		go s.janitor()
	}
	return s
}

func (s *MemorySessionStore) Get(_ context.Context, chatID int64) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[chatID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if !stored.expiresAt.IsZero() && s.clock().After(stored.expiresAt) {
		delete(s.sessions, chatID)
		return Session{}, ErrSessionNotFound
	}
	return stored.session, nil
}

func (s *MemorySessionStore) Put(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = s.clock().Add(s.ttl)
	}
	s.sessions[session.ChatID] = memorySession{session: session, expiresAt: expiresAt}
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
	return nil
}

// Close останавливает фоновую уборку.
func (s *MemorySessionStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *MemorySessionStore) janitor() {
	interval := s.ttl
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemorySessionStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	for chatID, stored := range s.sessions {
		if !stored.expiresAt.IsZero() && now.After(stored.expiresAt) {
			delete(s.sessions, chatID)
		}
	}
}
