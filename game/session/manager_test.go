package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/ludo-server/game/engine"
	"github.com/wricardo/ludo-server/game/service"
)

func createTestPreset() *service.Preset {
	p := service.DefaultPreset()
	p.RoomCodeLength = 5
	return p
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()

	t.Run("generated code follows preset length", func(t *testing.T) {
		session, err := manager.Create("classic", createTestPreset())
		if err != nil {
			t.Fatalf("Failed to create room: %v", err)
		}
		if len(session.ID) != 5 {
			t.Errorf("Expected a 5 character code, got %q", session.ID)
		}
		if session.ID != strings.ToUpper(session.ID) {
			t.Errorf("Expected an upper-case code, got %q", session.ID)
		}
		if session.Game == nil || session.Game.RoomID != session.ID || session.Game.Status != engine.StatusLobby {
			t.Errorf("Expected an empty lobby for %s, got %+v", session.ID, session.Game)
		}
		if session.PresetID != "classic" {
			t.Errorf("Expected preset id classic, got %s", session.PresetID)
		}
	})

	t.Run("explicit code", func(t *testing.T) {
		session, err := manager.CreateWithID("abcd", "classic", nil)
		if err != nil {
			t.Fatalf("Failed to create room: %v", err)
		}
		if session.ID != "ABCD" {
			t.Errorf("Expected normalised code ABCD, got %s", session.ID)
		}
		if session.Preset == nil {
			t.Error("Expected the default preset when none is given")
		}
	})

	t.Run("duplicate code", func(t *testing.T) {
		_, err := manager.CreateWithID("ABCD", "classic", nil)
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("empty code", func(t *testing.T) {
		_, err := manager.CreateWithID("  ", "classic", nil)
		if !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, _ := manager.CreateWithID("ROOM42", "classic", nil)

	for _, id := range []string{"ROOM42", "room42", " Room42 "} {
		session, err := manager.Get(id)
		if err != nil {
			t.Errorf("Get(%q) failed: %v", id, err)
			continue
		}
		if session != created {
			t.Errorf("Get(%q) returned a different room", id)
		}
	}

	if _, err := manager.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	manager.CreateWithID("GONE", "classic", nil)

	if err := manager.Delete("gone"); err != nil {
		t.Fatalf("Failed to delete room: %v", err)
	}
	if _, err := manager.Get("GONE"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Room should be gone after Delete")
	}
	if err := manager.Delete("GONE"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := manager.DeleteFromMemory("GONE"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	for _, id := range []string{"AAAA", "BBBB", "CCCC"} {
		manager.CreateWithID(id, "classic", nil)
	}

	if got := len(manager.List()); got != 3 {
		t.Errorf("Expected 3 rooms, got %d", got)
	}
	if manager.Count() != 3 {
		t.Errorf("Expected count 3, got %d", manager.Count())
	}
}

func TestManager_Cleanup(t *testing.T) {
	manager := NewManager()

	stale, _ := manager.CreateWithID("STALE", "classic", nil)
	stale.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	done, _ := manager.CreateWithID("DONE", "classic", nil)
	done.Game.Status = engine.StatusFinished
	done.LastAccessedAt = time.Now().Add(-10 * time.Minute)

	manager.CreateWithID("FRESH", "classic", nil)

	if removed := manager.CleanupFinishedSessions(5 * time.Minute); removed != 1 {
		t.Errorf("Expected 1 finished room removed, got %d", removed)
	}
	if _, err := manager.Get("DONE"); err == nil {
		t.Error("Finished room should be removed")
	}

	if removed := manager.CleanupExpiredSessions(time.Hour); removed != 1 {
		t.Errorf("Expected 1 expired room removed, got %d", removed)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected only FRESH left, got %d rooms", manager.Count())
	}

	if n, err := manager.PurgePersisted(time.Hour); n != 0 || err != nil {
		t.Errorf("Purge without persistence should be a no-op, got %d %v", n, err)
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, _ := manager.CreateWithID("TICK", "classic", nil)
	before := session.LastAccessedAt

	time.Sleep(2 * time.Millisecond)
	if err := manager.UpdateLastAccessed("tick"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !session.LastAccessedAt.After(before) {
		t.Error("Expected LastAccessedAt to move forward")
	}
	if err := manager.UpdateLastAccessed("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	preset := createTestPreset()

	var wg sync.WaitGroup
	codes := make(chan string, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := manager.Create("classic", preset)
			if err != nil {
				t.Errorf("Failed to create room: %v", err)
				return
			}
			codes <- session.ID
			if _, err := manager.Get(session.ID); err != nil {
				t.Errorf("Failed to get room: %v", err)
			}
		}()
	}

	wg.Wait()
	close(codes)

	seen := make(map[string]bool)
	for code := range codes {
		if seen[code] {
			t.Errorf("Duplicate room code %s", code)
		}
		seen[code] = true
	}
	if manager.Count() != 50 {
		t.Errorf("Expected 50 rooms, got %d", manager.Count())
	}
}

func TestGenerateRoomCode(t *testing.T) {
	for n := 4; n <= 8; n++ {
		code := generateRoomCode(n)
		if len(code) != n {
			t.Errorf("Expected length %d, got %q", n, code)
		}
		for _, r := range code {
			if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
				t.Errorf("Unexpected character %q in %s", r, code)
			}
		}
	}
}

// brokenStore rejects every write and stores nothing.
type brokenStore struct{}

func (brokenStore) Save(*service.Session) error { return errors.New("disk full") }
func (brokenStore) Load(string) (*service.Session, error) { return nil, ErrSessionNotFound }
func (brokenStore) Delete(string) error { return nil }
func (brokenStore) ListAll() ([]string, error) { return nil, nil }
func (brokenStore) Exists(string) bool { return false }

func TestManager_UnsavedRooms(t *testing.T) {
	manager := NewManagerWithPersistence(brokenStore{})

	session, err := manager.Create("", createTestPreset())
	if err != nil {
		t.Fatalf("Create should not fail on a save error: %v", err)
	}
	if !manager.Unsaved(session.ID) {
		t.Error("Expected the room to be marked unsaved")
	}
	if !manager.Unsaved(strings.ToLower(session.ID)) {
		t.Error("Expected Unsaved to be case-insensitive")
	}

	// memory is the only copy, so idle eviction must keep it
	if removed := manager.CleanupExpiredSessions(-time.Second); removed != 0 {
		t.Errorf("Expected unsaved rooms to survive idle eviction, removed %d", removed)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 room in memory, got %d", manager.Count())
	}

	if err := manager.DeleteFromMemory(session.ID); err != nil {
		t.Fatalf("DeleteFromMemory failed: %v", err)
	}
	if manager.Unsaved(session.ID) {
		t.Error("Expected the unsaved mark to be dropped with the room")
	}
}
