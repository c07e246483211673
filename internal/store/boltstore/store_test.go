package boltstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/safetrip/travel-circle/internal/store"
	"github.com/safetrip/travel-circle/internal/store/storetest"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func TestBackendConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Backend {
		s := openTestStore(t, filepath.Join(t.TempDir(), "circle.db"))
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestOpen_RequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestSequenceSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "circle.db")
	ctx := context.Background()

	type joinRequest struct {
		ID      string `json:"id"`
		GroupID string `json:"groupId"`
	}

	s := openTestStore(t, path)
	seq := store.NewSequence[joinRequest](s, store.KeyJoinRequests)
	if _, err := seq.Append(ctx, joinRequest{ID: "join_1", GroupID: "group_1"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := seq.Append(ctx, joinRequest{ID: "join_2", GroupID: "group_3"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openTestStore(t, path)
	defer reopened.Close()

	got, err := store.NewSequence[joinRequest](reopened, store.KeyJoinRequests).List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "join_1" || got[1].GroupID != "group_3" {
		t.Errorf("unexpected records after reopen: %+v", got)
	}
}
