package store_test

import (
	"context"
	"testing"

	"github.com/safetrip/travel-circle/internal/store"
	"github.com/safetrip/travel-circle/internal/store/storetest"
)

type request struct {
	ID     string `json:"id"`
	ToUser string `json:"toUser"`
}

func TestMemoryBackend(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Backend {
		return store.NewMemoryBackend()
	})
}

func TestSequence_EmptyList(t *testing.T) {
	seq := store.NewSequence[request](store.NewMemoryBackend(), store.KeyMatchRequests)

	got, err := seq.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil list, got %v", got)
	}
}

func TestSequence_MalformedValueReplacedOnAppend(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "not json at all"},
		{"object instead of array", `{"id":"x"}`},
		{"truncated array", `[{"id":"a"},`},
		{"wrong element type", `[1, 2, 3]`},
		{"null", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := store.NewMemoryBackend()
			backend.Set(store.KeyMatchRequests, []byte(tt.raw))
			seq := store.NewSequence[request](backend, store.KeyMatchRequests)
			ctx := context.Background()

			before, err := seq.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(before) != 0 {
				t.Fatalf("expected malformed value to read as empty, got %v", before)
			}

			n, err := seq.Append(ctx, request{ID: "match_1", ToUser: "Arjun"})
			if err != nil {
				t.Fatalf("append: %v", err)
			}
			if n != 1 {
				t.Errorf("expected length 1, got %d", n)
			}

			after, _ := seq.List(ctx)
			if len(after) != 1 || after[0].ToUser != "Arjun" {
				t.Errorf("expected one-element sequence, got %v", after)
			}
		})
	}
}

func TestSequence_KeysAreIndependent(t *testing.T) {
	backend := store.NewMemoryBackend()
	ctx := context.Background()
	matches := store.NewSequence[request](backend, store.KeyMatchRequests)
	joins := store.NewSequence[request](backend, store.KeyJoinRequests)

	matches.Append(ctx, request{ID: "m1"})
	matches.Append(ctx, request{ID: "m2"})
	joins.Append(ctx, request{ID: "j1"})

	m, _ := matches.List(ctx)
	j, _ := joins.List(ctx)
	if len(m) != 2 || len(j) != 1 {
		t.Errorf("expected 2 matches and 1 join, got %d and %d", len(m), len(j))
	}
}

func TestSequence_NilBackend(t *testing.T) {
	seq := store.NewSequence[request](nil, store.KeyMatchRequests)
	if _, err := seq.Append(context.Background(), request{}); err != store.ErrNotConfigured {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestMemoryBackend_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	seq := store.NewSequence[request](store.NewMemoryBackend(), store.KeyMatchRequests)
	if _, err := seq.Append(ctx, request{ID: "x"}); err == nil {
		t.Error("expected error on cancelled context")
	}
}
