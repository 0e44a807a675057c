package server

import (
	"testing"
	"time"
)

// TestRateLimiterDisabledByDefault tests that a non-positive burst yields no
// limiter at all.
func TestRateLimiterDisabledByDefault(t *testing.T) {
	if rl := newRateLimiter(RateLimitConfig{Burst: 0}); rl != nil {
		t.Error("Expected nil limiter for zero burst")
	}
	if rl := newRateLimiter(RateLimitConfig{Burst: -5}); rl != nil {
		t.Error("Expected nil limiter for negative burst")
	}
}

// TestRateLimiterAllowsBurst tests that the configured burst passes and the
// next request is denied.
func TestRateLimiterAllowsBurst(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Burst: 3, RefillInterval: time.Minute})
	if rl == nil {
		t.Fatal("Expected a limiter for positive burst")
	}

	for i := 0; i < 3; i++ {
		if !rl.allow() {
			t.Fatalf("Expected request %d within burst to be allowed", i+1)
		}
	}
	if rl.allow() {
		t.Error("Expected request beyond burst to be denied")
	}
}

// TestRateLimiterRefills tests that tokens return after the refill interval
// elapses.
func TestRateLimiterRefills(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Burst: 2, RefillInterval: 100 * time.Millisecond})

	rl.allow()
	rl.allow()
	if rl.allow() {
		t.Fatal("Expected bucket to be empty")
	}

	time.Sleep(120 * time.Millisecond)
	if !rl.allow() {
		t.Error("Expected a token after the refill interval")
	}
}

// TestRateLimiterDefaultsRefillInterval tests that a non-positive interval
// falls back to one second instead of dividing by zero.
func TestRateLimiterDefaultsRefillInterval(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Burst: 1, RefillInterval: 0})
	if rl == nil {
		t.Fatal("Expected a limiter")
	}
	if !rl.allow() {
		t.Error("Expected first request to be allowed")
	}
}
