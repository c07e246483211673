package redisstore

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/safetrip/travel-circle/internal/store"
	"github.com/safetrip/travel-circle/internal/store/storetest"
)

// newTestStore connects to Redis on localhost:6379, DB 15, and flushes it.
// Tests are skipped if Redis is unavailable.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	rdb := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("skipping: Redis not available: %v", err)
	}
	rdb.FlushDB(ctx)

	t.Cleanup(func() {
		rdb.FlushDB(ctx)
		rdb.Close()
	})
	return &Store{rdb: rdb}
}

func TestBackendConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Backend {
		return newTestStore(t)
	})
}

func TestKeysArePrefixed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	type circle struct {
		ID string `json:"id"`
	}
	seq := store.NewSequence[circle](s, store.KeyTravelCircles)
	if _, err := seq.Append(ctx, circle{ID: "circle_1"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	exists, err := s.rdb.Exists(ctx, KeyPrefix+store.KeyTravelCircles).Result()
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists != 1 {
		t.Errorf("expected key %s to exist", KeyPrefix+store.KeyTravelCircles)
	}
}

func TestMalformedValueReplaced(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.rdb.Set(ctx, KeyPrefix+store.KeyMatchRequests, "{broken", 0)

	type req struct {
		ID string `json:"id"`
	}
	seq := store.NewSequence[req](s, store.KeyMatchRequests)
	n, err := seq.Append(ctx, req{ID: "match_1"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if n != 1 {
		t.Errorf("expected length 1, got %d", n)
	}
}
