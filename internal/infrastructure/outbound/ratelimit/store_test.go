package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fabiorvs/fake-requests/internal/infrastructure/outbound/ratelimit"
	"github.com/fabiorvs/fake-requests/internal/testutil"
)

func newStore(t *testing.T, ttl time.Duration) (*ratelimit.TokenBucketStore, *testutil.ManualClock) {
	t.Helper()
	clk := testutil.NewManualClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	store := ratelimit.NewTokenBucketStore(ttl, clk)
	t.Cleanup(store.Stop)
	return store, clk
}

func TestTokenBucketStore_AllowWithinBurst(t *testing.T) {
	store, _ := newStore(t, time.Minute)
	ctx := context.Background()

	for i := range 3 {
		if !store.Allow(ctx, "mock-1", 1, 3) {
			t.Errorf("request %d should be allowed within burst", i+1)
		}
	}
}

func TestTokenBucketStore_DeniedOverBurst(t *testing.T) {
	store, _ := newStore(t, time.Minute)
	ctx := context.Background()

	for range 5 {
		store.Allow(ctx, "mock-1", 1, 5)
	}

	if store.Allow(ctx, "mock-1", 1, 5) {
		t.Error("request over burst should be denied")
	}
}

func TestTokenBucketStore_RefillsWithClock(t *testing.T) {
	store, clk := newStore(t, time.Minute)
	ctx := context.Background()

	if !store.Allow(ctx, "mock-1", 2, 1) {
		t.Fatal("first request should be allowed")
	}
	if store.Allow(ctx, "mock-1", 2, 1) {
		t.Fatal("second request should be denied before refill")
	}

	clk.Advance(500 * time.Millisecond)

	if !store.Allow(ctx, "mock-1", 2, 1) {
		t.Error("expected a token after 500ms at 2/s")
	}
}

func TestTokenBucketStore_ZeroRateDisablesLimit(t *testing.T) {
	store, _ := newStore(t, time.Minute)
	ctx := context.Background()

	for range 100 {
		if !store.Allow(ctx, "mock-1", 0, 0) {
			t.Fatal("zero rate should never limit")
		}
	}
	if store.Len() != 0 {
		t.Errorf("expected no limiter to be created, got %d", store.Len())
	}
}

func TestTokenBucketStore_PerKeyIsolation(t *testing.T) {
	store, _ := newStore(t, time.Minute)
	ctx := context.Background()

	for range 2 {
		store.Allow(ctx, "mock-1", 1, 2)
	}

	if !store.Allow(ctx, "mock-2", 1, 2) {
		t.Error("mock-2 should be allowed (separate from mock-1)")
	}
}

func TestTokenBucketStore_Evict(t *testing.T) {
	store, clk := newStore(t, time.Minute)
	ctx := context.Background()

	store.Allow(ctx, "old", 1, 1)
	clk.Advance(2 * time.Minute)
	store.Allow(ctx, "fresh", 1, 1)
	store.Evict()

	if store.Len() != 1 {
		t.Errorf("expected 1 limiter after eviction, got %d", store.Len())
	}
}

func TestTokenBucketStore_StopIdempotent(t *testing.T) {
	store, _ := newStore(t, time.Minute)
	store.Stop()
	store.Stop()
}

func TestTokenBucketStore_Concurrent(t *testing.T) {
	store, _ := newStore(t, time.Minute)
	ctx := context.Background()
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Allow(ctx, "concurrent", 100, 100)
		}()
	}

	wg.Wait()

	if store.Len() != 1 {
		t.Errorf("expected 1 limiter, got %d", store.Len())
	}
}
