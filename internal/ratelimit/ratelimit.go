package ratelimit

import (
	"sync"
	"time"
)

// Limiter ограничивает число событий для одного субъекта.
type Limiter interface {
	Allow(key string) bool
}

// NoopLimiter пропускает все события.
type NoopLimiter struct{}

func (NoopLimiter) Allow(string) bool { return true }

// MemoryLimiter — token bucket в памяти для разработки и одиночного процесса.
type MemoryLimiter struct {
	mu       sync.Mutex
	capacity int
	refill   time.Duration
	buckets  map[string]*bucket
	clock    func() time.Time
}

type bucket struct {
	remaining int
	resetAt   time.Time
}

// NewMemoryLimiter разрешает не более capacity событий за интервал пополнения.
func NewMemoryLimiter(capacity int, refill time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		capacity: capacity,
		refill:   refill,
		buckets:  make(map[string]*bucket),
		clock:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	b, ok := l.buckets[key]
	if !ok {
		l.buckets[key] = &bucket{remaining: l.capacity - 1, resetAt: now.Add(l.refill)}
		return true
	}

	if now.After(b.resetAt) {
		b.remaining = l.capacity - 1
		b.resetAt = now.Add(l.refill)
		return true
	}

	if b.remaining <= 0 {
		return false
	}

	b.remaining--
	return true
}
