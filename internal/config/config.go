// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

var channelIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Config holds the application configuration.
type Config struct {
	ChannelID        string
	ListenAddr       string
	LogLevel         string
	CacheBackend     string
	DatabasePath     string
	RedisURL         string
	FeedCacheTTL     time.Duration
	HTTPTimeout      time.Duration
	FeedWarmInterval time.Duration
	FetchRateLimit   float64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	channelID := os.Getenv("YOUTUBE_CHANNEL_ID")
	if channelID == "" {
		return nil, fmt.Errorf("YOUTUBE_CHANNEL_ID is required")
	}
	if !channelIDRe.MatchString(channelID) {
		return nil, fmt.Errorf("invalid YOUTUBE_CHANNEL_ID %q", channelID)
	}

	backend := envOrDefault("CACHE_BACKEND", BackendMemory)
	switch backend {
	case BackendMemory, BackendSQLite, BackendRedis:
	default:
		return nil, fmt.Errorf("invalid CACHE_BACKEND %q: want %s, %s or %s", backend, BackendMemory, BackendSQLite, BackendRedis)
	}

	ttl, err := durationEnv("FEED_CACHE_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("FEED_CACHE_TTL must be positive, got %s", ttl)
	}

	timeout, err := durationEnv("HTTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	warm, err := durationEnv("FEED_WARM_INTERVAL", 0)
	if err != nil {
		return nil, err
	}

	rateLimit := 5.0
	if raw := os.Getenv("FETCH_RATE_LIMIT"); raw != "" {
		rateLimit, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid FETCH_RATE_LIMIT %q: %w", raw, err)
		}
		if rateLimit < 0 {
			return nil, fmt.Errorf("FETCH_RATE_LIMIT must not be negative, got %v", rateLimit)
		}
	}

	return &Config{
		ChannelID:        channelID,
		ListenAddr:       envOrDefault("LISTEN_ADDR", ":8080"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		CacheBackend:     backend,
		DatabasePath:     envOrDefault("DATABASE_PATH", "./data/cache.db"),
		RedisURL:         envOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		FeedCacheTTL:     ttl,
		HTTPTimeout:      timeout,
		FeedWarmInterval: warm,
		FetchRateLimit:   rateLimit,
	}, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q in %s: %w", raw, key, err)
	}
	return d, nil
}
