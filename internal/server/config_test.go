package server

import (
	"testing"
	"time"
)

// TestNewConfigDefaults tests the default configuration values.
func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.ListenAddr != ":8888" {
		t.Errorf("Expected listen addr :8888, got %q", cfg.ListenAddr)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("Expected HTTP addr :8080, got %q", cfg.HTTPAddr)
	}
	if cfg.UploadDir != "uploads" {
		t.Errorf("Expected upload dir uploads, got %q", cfg.UploadDir)
	}
	if cfg.MaxFrameSize != 1<<20 {
		t.Errorf("Expected max frame size 1MiB, got %d", cfg.MaxFrameSize)
	}
	if cfg.RateLimit.Burst != 0 {
		t.Errorf("Expected rate limiting disabled by default, got burst %d", cfg.RateLimit.Burst)
	}
}

// TestNewConfigFromEnv tests that environment variables override defaults.
func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("CHAT_LISTEN_ADDR", ":9999")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("UPLOAD_DIR", "/tmp/relay-uploads")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("MAX_FRAME_SIZE", "2048")
	t.Setenv("RATE_LIMIT_BURST", "10")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "5")

	cfg := NewConfigFromEnv()

	if cfg.ListenAddr != ":9999" {
		t.Errorf("Expected listen addr :9999, got %q", cfg.ListenAddr)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("Expected HTTP addr :9090, got %q", cfg.HTTPAddr)
	}
	if cfg.UploadDir != "/tmp/relay-uploads" {
		t.Errorf("Expected upload dir override, got %q", cfg.UploadDir)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://a.example" || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("Unexpected origins: %v", cfg.AllowedOrigins)
	}
	if cfg.MaxFrameSize != 2048 {
		t.Errorf("Expected max frame size 2048, got %d", cfg.MaxFrameSize)
	}
	if cfg.RateLimit.Burst != 10 {
		t.Errorf("Expected burst 10, got %d", cfg.RateLimit.Burst)
	}
	if cfg.RateLimit.RefillInterval != 5*time.Second {
		t.Errorf("Expected refill interval 5s, got %v", cfg.RateLimit.RefillInterval)
	}
}

// TestNewConfigFromEnvIgnoresInvalidValues tests that malformed numeric
// settings fall back to defaults.
func TestNewConfigFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("MAX_FRAME_SIZE", "not-a-number")
	t.Setenv("RATE_LIMIT_BURST", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "0")

	cfg := NewConfigFromEnv()

	if cfg.MaxFrameSize != 1<<20 {
		t.Errorf("Expected default max frame size, got %d", cfg.MaxFrameSize)
	}
	if cfg.RateLimit.Burst != 0 {
		t.Errorf("Expected default burst, got %d", cfg.RateLimit.Burst)
	}
	if cfg.RateLimit.RefillInterval != time.Second {
		t.Errorf("Expected default refill interval, got %v", cfg.RateLimit.RefillInterval)
	}
}

// TestSanitizeClampsInvalidSettings tests that sanitize restores safe values
// for every field.
func TestSanitizeClampsInvalidSettings(t *testing.T) {
	cfg := Config{
		ListenAddr:   "",
		HTTPAddr:     "",
		UploadDir:    "",
		MaxFrameSize: -1,
		RateLimit:    RateLimitConfig{Burst: -1, RefillInterval: -time.Second},
	}
	cfg.sanitize()

	if cfg.ListenAddr != ":8888" || cfg.HTTPAddr != ":8080" || cfg.UploadDir != "uploads" {
		t.Errorf("Expected address defaults restored, got %+v", cfg)
	}
	if cfg.MaxFrameSize != 1<<20 {
		t.Errorf("Expected frame size clamped, got %d", cfg.MaxFrameSize)
	}
	if cfg.RateLimit.Burst != 0 || cfg.RateLimit.RefillInterval != time.Second {
		t.Errorf("Expected rate limit clamped, got %+v", cfg.RateLimit)
	}
}
