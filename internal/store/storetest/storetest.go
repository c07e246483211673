// Package storetest holds conformance checks shared by every store.Backend
// implementation.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/safetrip/travel-circle/internal/store"
)

type record struct {
	ID  string `json:"id"`
	Seq int    `json:"seq"`
}

// Run exercises a backend. newBackend must return a backend with no data
// under the keys used here; each subtest uses its own key.
func Run(t *testing.T, newBackend func(t *testing.T) store.Backend) {
	t.Helper()

	t.Run("GetMissingKey", func(t *testing.T) {
		b := newBackend(t)
		data, err := b.Get(context.Background(), "storetest_missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if data != nil {
			t.Errorf("expected nil for missing key, got %q", data)
		}
	})

	t.Run("AppendInOrder", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		seq := store.NewSequence[record](b, "storetest_order")

		for i := 1; i <= 5; i++ {
			n, err := seq.Append(ctx, record{ID: fmt.Sprintf("r%d", i), Seq: i})
			if err != nil {
				t.Fatalf("append %d: %v", i, err)
			}
			if n != i {
				t.Errorf("append %d: expected length %d, got %d", i, i, n)
			}
		}

		got, err := seq.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 5 {
			t.Fatalf("expected 5 records, got %d", len(got))
		}
		for i, r := range got {
			if r.Seq != i+1 {
				t.Errorf("index %d: expected seq %d, got %d", i, i+1, r.Seq)
			}
		}
	})

	t.Run("FailedUpdateWritesNothing", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		key := "storetest_failed"
		boom := errors.New("boom")

		err := b.Update(ctx, key, func([]byte) ([]byte, error) { return nil, boom })
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		data, err := b.Get(ctx, key)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if data != nil {
			t.Errorf("expected nothing written, got %q", data)
		}
	})

	t.Run("ConcurrentAppendsKeepEveryRecord", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		seq := store.NewSequence[record](b, "storetest_concurrent")

		const writers, perWriter = 8, 10
		var wg sync.WaitGroup
		errs := make(chan error, writers*perWriter)
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < perWriter; i++ {
					if _, err := seq.Append(ctx, record{ID: fmt.Sprintf("w%d-%d", w, i)}); err != nil {
						errs <- err
					}
				}
			}(w)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Fatalf("concurrent append: %v", err)
		}

		got, err := seq.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != writers*perWriter {
			t.Errorf("expected %d records, got %d", writers*perWriter, len(got))
		}
	})
}
