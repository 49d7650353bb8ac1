package ratelimit

import (
	"testing"
	"time"
)

func TestMemoryLimiterAllowsUpToCapacity(t *testing.T) {
	limiter := NewMemoryLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("chat:42") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if limiter.Allow("chat:42") {
		t.Fatalf("request above capacity should be denied")
	}
}

func TestMemoryLimiterIsolatesKeys(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Minute)

	if !limiter.Allow("chat:1") {
		t.Fatalf("first key should be allowed")
	}
	if !limiter.Allow("chat:2") {
		t.Fatalf("second key should have its own bucket")
	}
	if limiter.Allow("chat:1") {
		t.Fatalf("first key should be exhausted")
	}
}

func TestMemoryLimiterRefillsAfterWindow(t *testing.T) {
	now := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(1, time.Minute)
	limiter.clock = func() time.Time { return now }

	if !limiter.Allow("chat:42") {
		t.Fatalf("first request should be allowed")
	}
	if limiter.Allow("chat:42") {
		t.Fatalf("second request in window should be denied")
	}

	now = now.Add(61 * time.Second)
	if !limiter.Allow("chat:42") {
		t.Fatalf("request after window should be allowed")
	}
}

func TestNoopLimiterAlwaysAllows(t *testing.T) {
	limiter := NoopLimiter{}
	for i := 0; i < 100; i++ {
		if !limiter.Allow("any") {
			t.Fatalf("noop limiter must never deny")
		}
	}
}
