package feed

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestPayloadCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewPayloadCache(client, time.Hour)
	ctx := context.Background()

	if err := cache.Store(ctx, "outdoorsy", sampleICS); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload, ok := cache.Load(ctx, "outdoorsy")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if payload != sampleICS {
		t.Error("payload mismatch")
	}
}

func TestPayloadCacheMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewPayloadCache(client, time.Hour)

	if _, ok := cache.Load(context.Background(), "rvshare"); ok {
		t.Error("expected miss for never-stored platform")
	}
}

func TestPayloadCacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewPayloadCache(client, time.Minute)
	ctx := context.Background()

	if err := cache.Store(ctx, "rvezy", sampleICS); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, ok := cache.Load(ctx, "rvezy"); ok {
		t.Error("expected payload to have expired")
	}
}

func TestPayloadCacheNilClient(t *testing.T) {
	cache := NewPayloadCache(nil, time.Hour)
	ctx := context.Background()

	if err := cache.Store(ctx, "outdoorsy", sampleICS); err != nil {
		t.Errorf("nil-client Store should be a no-op, got %v", err)
	}
	if _, ok := cache.Load(ctx, "outdoorsy"); ok {
		t.Error("nil-client Load should always miss")
	}

	var nilCache *PayloadCache
	if err := nilCache.Store(ctx, "outdoorsy", sampleICS); err != nil {
		t.Errorf("nil cache Store should be a no-op, got %v", err)
	}
}
