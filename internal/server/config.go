// Package server provides configuration helpers that define runtime defaults,
// validation, and rate-limiting parameters for the chat relay.
package server

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig defines the parameters for per-connection message rate
// limiting. A Burst of zero disables the limiter entirely.
type RateLimitConfig struct {
	Burst          int
	RefillInterval time.Duration
}

// Config holds the relay configuration settings.
type Config struct {
	ListenAddr     string
	HTTPAddr       string
	UploadDir      string
	AllowedOrigins []string
	MaxFrameSize   int64
	RateLimit      RateLimitConfig
}

// NewConfig creates a Config instance populated with default values for all
// settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

func defaultConfig() Config {
	return Config{
		ListenAddr: ":8888",
		HTTPAddr:   ":8080",
		UploadDir:  "uploads",
		AllowedOrigins: []string{
			"http://localhost:8080",
		},
		MaxFrameSize: 1 << 20,
		RateLimit: RateLimitConfig{
			Burst:          0,
			RefillInterval: time.Second,
		},
	}
}

// NewConfigFromEnv creates a Config instance from environment variables.
// Falls back to default values if environment variables are not set.
func NewConfigFromEnv() *Config {
	cfg := defaultConfig()

	if addr := os.Getenv("CHAT_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}

	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}

	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		cfg.UploadDir = dir
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = parseOrigins(origins)
	}

	if maxSize := os.Getenv("MAX_FRAME_SIZE"); maxSize != "" {
		cfg.MaxFrameSize = parseFrameSize(maxSize, cfg.MaxFrameSize)
	}

	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		cfg.RateLimit.Burst = parseIntValue(burst, cfg.RateLimit.Burst)
	}

	if interval := os.Getenv("RATE_LIMIT_REFILL_INTERVAL"); interval != "" {
		cfg.RateLimit.RefillInterval = parseRefillInterval(interval, cfg.RateLimit.RefillInterval)
	}

	cfg.sanitize()
	return &cfg
}

// sanitize clamps invalid settings back to safe defaults.
func (c *Config) sanitize() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8888"
	}

	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}

	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}

	if c.MaxFrameSize <= 0 {
		c.MaxFrameSize = 1 << 20
	}

	if c.RateLimit.Burst < 0 {
		c.RateLimit.Burst = 0
	}

	if c.RateLimit.RefillInterval <= 0 {
		c.RateLimit.RefillInterval = time.Second
	}
}

func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	out := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseFrameSize(value string, defaultValue int64) int64 {
	if size, err := strconv.ParseInt(value, 10, 64); err == nil && size > 0 {
		return size
	}
	return defaultValue
}

func parseIntValue(value string, defaultValue int) int {
	if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
		return parsed
	}
	return defaultValue
}

func parseRefillInterval(value string, defaultValue time.Duration) time.Duration {
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
