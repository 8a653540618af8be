package access

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

const testAdminID int64 = 7278872449

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bot_settings.json")
	s, err := NewStore(path, testAdminID)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestStoreCreatesDefaultFile(t *testing.T) {
	s := newTestStore(t)

	if _, err := os.Stat(s.Path()); err != nil {
		t.Fatalf("settings file not created: %v", err)
	}

	set := s.Snapshot()
	if !set.IsAllowed(testAdminID) {
		t.Fatal("admin must be in allowed_users after creation")
	}
	if set.Maintenance {
		t.Fatal("maintenance must default to false")
	}
	if set.UserLimit != nil {
		t.Fatal("user_limit must default to nil")
	}
	if set.StartTime == 0 {
		t.Fatal("start_time must be set on creation")
	}
}

func TestStoreLoadForcesAdminAllowed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_settings.json")
	// Файл без админа в allowlist и с админом в banlist.
	raw := `{"maintenance":true,"allowed_users":[111],"banned_users":[7278872449,222],"downloads_count":3,"start_time":1700000000}`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := NewStore(path, testAdminID)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	set := s.Snapshot()

	if !set.IsAllowed(testAdminID) {
		t.Fatal("admin must be re-inserted into allowed_users on load")
	}
	if set.IsBanned(testAdminID) {
		t.Fatal("admin must never stay in banned_users")
	}
	if !set.Maintenance {
		t.Fatal("stored maintenance flag lost on load")
	}
	if set.DownloadsCount != 3 {
		t.Fatalf("downloads_count = %d, want 3", set.DownloadsCount)
	}
	if set.StartTime != 1700000000 {
		t.Fatalf("start_time = %d, want 1700000000", set.StartTime)
	}
}

func TestStoreLoadCorruptFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := NewStore(path, testAdminID)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	set := s.Snapshot()
	if !set.IsAllowed(testAdminID) || set.Maintenance {
		t.Fatalf("expected defaults, got %+v", set)
	}
}

func TestStoreLoadEnforcesDisjointness(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_settings.json")
	raw := `{"allowed_users":[7278872449,333],"banned_users":[333]}`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := NewStore(path, testAdminID)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	set := s.Snapshot()
	if set.IsAllowed(333) {
		t.Fatal("user in both lists must end up banned only")
	}
	if !set.IsBanned(333) {
		t.Fatal("ban must survive disjointness repair")
	}
}

func TestMutatePersistsAndRoundTrips(t *testing.T) {
	s := newTestStore(t)

	err := s.Mutate(func(set *Settings) error {
		set.AllowedUsers = append(set.AllowedUsers, 42)
		set.DownloadsCount++
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	// Перечитываем файл новым Store — мутация должна пережить рестарт.
	s2, err := NewStore(s.Path(), testAdminID)
	if err != nil {
		t.Fatalf("NewStore (reload): %v", err)
	}
	set := s2.Snapshot()
	if !set.IsAllowed(42) {
		t.Fatal("granted user lost after reload")
	}
	if set.DownloadsCount != 1 {
		t.Fatalf("downloads_count = %d, want 1", set.DownloadsCount)
	}
}

func TestMutateRollsBackOnSaveFailure(t *testing.T) {
	s := newTestStore(t)

	// Ломаем запись: подменяем путь на каталог, rename в него упадёт.
	dir := t.TempDir()
	s.path = filepath.Join(dir, "как_каталог")
	if err := os.Mkdir(s.path, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	err := s.Mutate(func(set *Settings) error {
		set.DownloadsCount = 99
		return nil
	})
	if err == nil {
		t.Fatal("expected save error")
	}
	if got := s.Snapshot().DownloadsCount; got != 0 {
		t.Fatalf("in-memory state leaked failed mutation: downloads_count = %d", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestStore(t)

	snap := s.Snapshot()
	snap.AllowedUsers[0] = 1
	snap.Maintenance = true

	fresh := s.Snapshot()
	if !fresh.IsAllowed(testAdminID) || fresh.Maintenance {
		t.Fatal("snapshot mutation leaked into store")
	}
}

func TestSavedFileIsHumanReadableJSON(t *testing.T) {
	s := newTestStore(t)

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("settings file is not valid JSON: %v", err)
	}
	for _, key := range []string{"maintenance", "user_limit", "allowed_users", "banned_users", "downloads_count", "start_time"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("settings file missing key %q", key)
		}
	}
}
