package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	return NewClientFromRedis(rc), mr
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Host != "localhost" {
		t.Errorf("Expected host 'localhost', got '%s'", cfg.Host)
	}
	if cfg.Port != 6379 {
		t.Errorf("Expected port 6379, got %d", cfg.Port)
	}
	if cfg.PoolSize != 100 {
		t.Errorf("Expected pool size 100, got %d", cfg.PoolSize)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("Expected max retries 3, got %d", cfg.MaxRetries)
	}
}

func TestConfigAddr(t *testing.T) {
	cfg := &Config{Host: "redis.internal", Port: 6380}
	if got := cfg.Addr(); got != "redis.internal:6380" {
		t.Errorf("Addr() = %s, want redis.internal:6380", got)
	}
}

func TestClientSetGet(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	if err := client.Set(ctx, "greeting", "hello", time.Minute).Err(); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	val, err := client.Get(ctx, "greeting").Result()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if val != "hello" {
		t.Errorf("Get() = %s, want hello", val)
	}
}

func TestClientDel(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	if err := client.Set(ctx, "temp", "1", 0).Err(); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := client.Del(ctx, "temp").Err(); err != nil {
		t.Fatalf("Del() error = %v", err)
	}

	n, err := client.Exists(ctx, "temp").Result()
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Exists() = %d, want 0", n)
	}
}

func TestClientPing(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	if err := client.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if err := client.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}

	mr.Close()
	if err := client.Ping(ctx); err == nil {
		t.Error("Ping() after server close should fail")
	}
}
