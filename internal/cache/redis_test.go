package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRedisEntryCodec(t *testing.T) {
	in := Entry{
		Value:     "<feed/>",
		ExpiresAt: time.Date(2024, 3, 1, 13, 0, 0, 500, time.UTC),
	}

	data, err := encodeRedisEntry(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := decodeRedisEntry(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}

	if _, err := decodeRedisEntry([]byte("not json")); err == nil {
		t.Error("expected error for corrupt entry, got nil")
	}
}

func TestNewRedisInvalidURL(t *testing.T) {
	if _, err := NewRedis("http://localhost:6379"); err == nil {
		t.Fatal("expected error for non-redis scheme, got nil")
	}
}

// Runs against a live server only when REDIS_TEST_URL is set.
func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	s, err := NewRedis(url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	key := "test:" + t.Name()
	want := Entry{Value: "doc", ExpiresAt: time.Now().Add(time.Minute).UTC().Truncate(time.Millisecond)}

	if err := s.Set(ctx, key, want); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}

	if err := s.Set(ctx, "test:expired", Entry{Value: "old", ExpiresAt: time.Now().Add(-time.Minute)}); err != nil {
		t.Fatalf("set expired: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "test:expired"); ok {
		t.Error("expected expired entry not to be stored")
	}
}
