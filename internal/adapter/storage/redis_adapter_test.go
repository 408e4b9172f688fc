package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestGet_Miss(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	client.Del(ctx, "artikel:id:missing")

	_, ok, err := adapter.Get(ctx, "artikel:id:missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected miss for absent key")
	}
}

func TestSetAndGet(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	client.Del(ctx, "artikel:id:42")

	if err := adapter.Set(ctx, "artikel:id:42", `{"id":42}`, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, ok, err := adapter.Get(ctx, "artikel:id:42")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected hit")
	}
	if val != `{"id":42}` {
		t.Errorf("expected stored value, got %s", val)
	}

	ttl, _ := client.TTL(ctx, "artikel:id:42").Result()
	if ttl <= 0 {
		t.Error("expected key to carry an expiry")
	}
}

func TestDelete_MultipleKeys(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	adapter.Set(ctx, "artikel:id:1", "a", time.Minute)
	adapter.Set(ctx, "artikel:nr:A-1", "a", time.Minute)

	if err := adapter.Delete(ctx, "artikel:id:1", "artikel:nr:A-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	for _, key := range []string{"artikel:id:1", "artikel:nr:A-1"} {
		if _, ok, _ := adapter.Get(ctx, key); ok {
			t.Errorf("expected %s to be removed", key)
		}
	}
}

func TestDelete_NoKeys(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	adapter := NewRedisAdapter(client)
	if err := adapter.Delete(context.Background()); err != nil {
		t.Errorf("delete with no keys must be a no-op, got: %v", err)
	}
}

func TestDelete_MissingKey(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	client.Del(ctx, "artikel:id:void")
	if err := adapter.Delete(ctx, "artikel:id:void"); err != nil {
		t.Errorf("deleting a missing key must not fail, got: %v", err)
	}
}
