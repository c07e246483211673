package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/safetrip/travel-circle/internal/circle"
	"github.com/safetrip/travel-circle/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		StoreBackend:    config.BackendMemory,
		CandidateSource: config.SourceFixture,
		UserID:          "current_user",
		UserName:        "Current User",
	}
}

func TestNew_Memory(t *testing.T) {
	a, err := New(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/groups", nil)
	w := httptest.NewRecorder()
	a.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestNew_BoltPersistsAcrossRestarts(t *testing.T) {
	cfg := testConfig()
	cfg.StoreBackend = config.BackendBolt
	cfg.BoltPath = filepath.Join(t.TempDir(), "circle.db")
	ctx := context.Background()

	a, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.Circles.Save(ctx, 1, []circle.Member{{Name: "Asha", Phone: "1"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	a, err = New(ctx, cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer a.Close()
	circles, err := a.Circles.Circles(ctx)
	if err != nil {
		t.Fatalf("Circles: %v", err)
	}
	if len(circles) != 1 || circles[0].Members[0].Name != "Asha" {
		t.Errorf("expected the saved circle after reopen, got %+v", circles)
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.StoreBackend = "sqlite"

	_, err := New(context.Background(), cfg)
	if err == nil || !strings.Contains(err.Error(), "unknown store backend") {
		t.Errorf("expected unknown backend error, got %v", err)
	}
}
