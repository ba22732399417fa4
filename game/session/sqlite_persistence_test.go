package session

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLite(t *testing.T) *SQLitePersistence {
	t.Helper()
	p, err := NewSQLitePersistence(filepath.Join(t.TempDir(), "data", "rooms.db"), newTestConfigManager(t))
	if err != nil {
		t.Fatalf("Failed to open sqlite persistence: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestSQLitePersistence(t *testing.T) {
	testPersistence(t, newTestSQLite(t))
}

func TestSQLitePersistence_SchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.db")

	first, err := NewSQLitePersistence(path, nil)
	if err != nil {
		t.Fatalf("First open failed: %v", err)
	}
	first.Save(playedSession("KEEP"))
	first.Close()

	second, err := NewSQLitePersistence(path, nil)
	if err != nil {
		t.Fatalf("Second open failed: %v", err)
	}
	defer second.Close()
	if !second.Exists("KEEP") {
		t.Error("Rows should survive reopening the database")
	}
}

func TestSQLitePersistence_Purge(t *testing.T) {
	p := newTestSQLite(t)

	old := playedSession("OLD")
	old.LastAccessedAt = time.Now().Add(-48 * time.Hour)
	p.Save(old)
	p.Save(playedSession("NEW"))

	manager := NewManagerWithPersistence(p)
	n, err := manager.PurgePersisted(24 * time.Hour)
	if err != nil || n != 1 {
		t.Fatalf("Expected 1 purged room, got %d %v", n, err)
	}
	if p.Exists("OLD") || !p.Exists("NEW") {
		t.Error("Only the stale room should be purged")
	}

	ids, _ := p.ListAll()
	if len(ids) != 1 || ids[0] != "NEW" {
		t.Errorf("Expected [NEW], got %v", ids)
	}
}
