package conversation

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemorySessionStoreLifecycle(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	if _, err := store.Get(ctx, 1); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	session := Session{ChatID: 1, Stage: StageName, Record: Record{ChatID: 1, FullName: "Jane"}}
	if err := store.Put(ctx, session); err != nil {
		t.Fatalf("put: %v", err)
	}

	loaded, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Stage != StageName || loaded.Record.FullName != "Jane" {
		t.Fatalf("unexpected session: %+v", loaded)
	}

	if err := store.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, 1); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	if err := store.Put(ctx, Session{ChatID: 2, Stage: StagePosition}); err != nil {
		t.Fatalf("put: %v", err)
	}

	store.clock = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := store.Get(ctx, 2); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expired session to be evicted, got %v", err)
	}
}

func TestMemorySessionStoreSweep(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	if err := store.Put(ctx, Session{ChatID: 3}); err != nil {
		t.Fatalf("put: %v", err)
	}
	store.clock = func() time.Time { return time.Now().Add(2 * time.Minute) }
	store.sweep()

	store.mu.Lock()
	_, ok := store.sessions[3]
	store.mu.Unlock()
	if ok {
		t.Fatalf("expected sweep to evict expired session")
	}
}
