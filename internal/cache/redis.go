package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "video_resolver:"
	redisDialTimeout = 3 * time.Second
)

// Redis implements Store on a Redis server, so several service instances
// share one feed cache.
type Redis struct {
	rdb *redis.Client
	now func() time.Time
}

type redisEntry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewRedis connects to the server at url (redis://host:port/db) and
// checks it is reachable.
func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}

	return &Redis{rdb: rdb, now: time.Now}, nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.rdb.Close()
}

// Get returns the entry stored under key.
func (r *Redis) Get(ctx context.Context, key string) (Entry, bool, error) {
	data, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get: %w", err)
	}
	e, err := decodeRedisEntry(data)
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// Set stores the entry under key. Redis drops it once it expires.
func (r *Redis) Set(ctx context.Context, key string, e Entry) error {
	ttl := e.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	data, err := encodeRedisEntry(e)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func encodeRedisEntry(e Entry) ([]byte, error) {
	data, err := json.Marshal(redisEntry{Value: e.Value, ExpiresAt: e.ExpiresAt.UTC()})
	if err != nil {
		return nil, fmt.Errorf("encode cache entry: %w", err)
	}
	return data, nil
}

func decodeRedisEntry(data []byte) (Entry, error) {
	var re redisEntry
	if err := json.Unmarshal(data, &re); err != nil {
		return Entry{}, fmt.Errorf("decode cache entry: %w", err)
	}
	return Entry{Value: re.Value, ExpiresAt: re.ExpiresAt}, nil
}
