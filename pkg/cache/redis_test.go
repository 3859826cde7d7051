package cache

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}

	opErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	err := classify(opErr)
	if !IsRetryable(err) {
		t.Errorf("classify(net error) = %v, want retryable", err)
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("classify(net error) = %v, want ErrUnavailable", err)
	}

	other := errors.New("WRONGTYPE")
	if got := classify(other); got != other {
		t.Errorf("classify(other) = %v, want unchanged", got)
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), RedisConfig{URL: "http://not-redis"})
	if err == nil {
		t.Error("NewRedisCache() with a non-redis URL should fail")
	}
}

// TestRedisCache runs against a live server named by FLOWVIZ_TEST_REDIS.
func TestRedisCache(t *testing.T) {
	url := os.Getenv("FLOWVIZ_TEST_REDIS")
	if url == "" {
		t.Skip("FLOWVIZ_TEST_REDIS not set")
	}

	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisConfig{URL: url})
	if err != nil {
		t.Fatalf("NewRedisCache() error: %v", err)
	}
	defer c.Close()

	key := "flowviz:test:" + Hash([]byte(t.Name()))
	defer c.Delete(ctx, key)

	if _, hit, err := c.Get(ctx, key); hit || err != nil {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, key, []byte("svg"), time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "svg" {
		t.Errorf("Get() = %q, %v, %v", data, hit, err)
	}
}
