package jobs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"webgrab.dev/telegram-bot/internal/features/access"
	"webgrab.dev/telegram-bot/internal/features/download"
)

func TestSweepScratchRemovesOnlyStaleDirs(t *testing.T) {
	parent := t.TempDir()

	stale := filepath.Join(parent, download.ScratchPrefix+"stale")
	fresh := filepath.Join(parent, download.ScratchPrefix+"fresh")
	foreign := filepath.Join(parent, "unrelated-dir")
	for _, d := range []string{stale, fresh, foreign} {
		if err := os.Mkdir(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	// Состарим один каталог.
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	store, err := access.NewStore(filepath.Join(t.TempDir(), "s.json"), 1)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s := NewScheduler(store, download.NewSessions(), parent, 10*time.Minute)

	if removed := s.SweepScratch(); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("stale scratch dir must be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatal("fresh scratch dir must survive")
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Fatal("foreign dir must never be touched")
	}
}
