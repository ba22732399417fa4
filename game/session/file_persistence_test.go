package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/ludo-server/game/config"
	"github.com/wricardo/ludo-server/game/engine"
	"github.com/wricardo/ludo-server/game/service"
)

func newTestConfigManager(t *testing.T) *config.Manager {
	t.Helper()
	cm, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	return cm
}

// playedSession builds a room with two players and some history.
func playedSession(id string) *service.Session {
	red := engine.InitialPlayer(engine.Red, "Ana", "conn-a")
	red.UserID = "u-ana"
	pos := 7
	red.Tokens[0] = engine.Token{State: engine.TokenTrack, Pos: &pos, RelSteps: 6}
	green := engine.InitialPlayer(engine.Green, "Bo", "conn-b")
	green.UserID = "u-bo"
	dice := 4

	return &service.Session{
		ID:       id,
		PresetID: "quick",
		Preset:   service.DefaultPreset(),
		Game: &engine.Game{
			RoomID:    id,
			Players:   []engine.Player{red, green},
			HostID:    "u-ana",
			Status:    engine.StatusPlaying,
			DiceValue: &dice,
			ActiveIdx: 1,
			Message:   "Bo rolled a 4.",
		},
		History: []service.HistoryEntry{
			{Seq: 1, Action: service.ActionRoll, UserID: "u-ana", Color: engine.Red, Dice: 6},
		},
		CreatedAt:      time.Now().Add(-time.Minute).Truncate(time.Millisecond),
		LastAccessedAt: time.Now().Truncate(time.Millisecond),
	}
}

// testPersistence runs the contract every SessionPersistence must satisfy.
func testPersistence(t *testing.T, p SessionPersistence) {
	t.Run("save and load", func(t *testing.T) {
		original := playedSession("SAVE1")
		if err := p.Save(original); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}
		if !p.Exists("SAVE1") || !p.Exists("save1") {
			t.Error("Room should exist after save, in any case")
		}

		loaded, err := p.Load("save1")
		if err != nil {
			t.Fatalf("Failed to load: %v", err)
		}
		if loaded.ID != "SAVE1" || loaded.PresetID != "quick" {
			t.Errorf("Unexpected identity %s/%s", loaded.ID, loaded.PresetID)
		}
		g := loaded.Game
		if len(g.Players) != 2 || g.Players[1].UserID != "u-bo" {
			t.Fatalf("Players not restored: %+v", g.Players)
		}
		if tok := g.Players[0].Tokens[0]; tok.State != engine.TokenTrack || tok.Pos == nil || *tok.Pos != 7 || tok.RelSteps != 6 {
			t.Errorf("Token not restored: %+v", tok)
		}
		if g.DiceValue == nil || *g.DiceValue != 4 || g.ActiveIdx != 1 || g.Status != engine.StatusPlaying {
			t.Errorf("Turn state not restored: %+v", g)
		}
		if len(loaded.History) != 1 || loaded.History[0].Dice != 6 {
			t.Errorf("History not restored: %+v", loaded.History)
		}
		if !loaded.CreatedAt.Equal(original.CreatedAt) {
			t.Errorf("CreatedAt mismatch: %v vs %v", loaded.CreatedAt, original.CreatedAt)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		s := playedSession("SAVE2")
		p.Save(s)
		s.Game.Status = engine.StatusFinished
		if err := p.Save(s); err != nil {
			t.Fatalf("Failed to overwrite: %v", err)
		}
		loaded, _ := p.Load("SAVE2")
		if loaded.Game.Status != engine.StatusFinished {
			t.Errorf("Expected finished after overwrite, got %s", loaded.Game.Status)
		}
	})

	t.Run("list and delete", func(t *testing.T) {
		ids, err := p.ListAll()
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		sort.Strings(ids)
		if strings.Join(ids, ",") != "SAVE1,SAVE2" {
			t.Errorf("Expected SAVE1,SAVE2 got %v", ids)
		}

		if err := p.Delete("SAVE1"); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if p.Exists("SAVE1") {
			t.Error("Room should be gone after delete")
		}
		if err := p.Delete("SAVE1"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
		if _, err := p.Load("SAVE1"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("nil session", func(t *testing.T) {
		if err := p.Save(nil); err == nil {
			t.Error("Expected error saving nil session")
		}
	})
}

func TestFilePersistence(t *testing.T) {
	p, err := NewFilePersistence(t.TempDir(), newTestConfigManager(t))
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	testPersistence(t, p)
}

func TestFilePersistenceFileStructure(t *testing.T) {
	dir := t.TempDir()
	p, err := NewFilePersistence(dir, newTestConfigManager(t))
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	if err := p.Save(playedSession("SHAPE")); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "SHAPE.json"))
	if err != nil {
		t.Fatalf("Expected SHAPE.json: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("Room file is not JSON: %v", err)
	}
	for _, key := range []string{"id", "preset_id", "created_at", "last_accessed_at", "game", "history"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("Missing key %q in room document", key)
		}
	}
	game := doc["game"].(map[string]any)
	for _, key := range []string{"roomId", "players", "hostId", "status", "diceValue", "activeIdx", "sixChain", "extraTurn", "winner", "message"} {
		if _, ok := game[key]; !ok {
			t.Errorf("Missing key %q in game document", key)
		}
	}
	if !strings.Contains(string(raw), "\n  ") {
		t.Error("Room file should be indented")
	}
}

func TestFilePersistencePresetFallback(t *testing.T) {
	dir := t.TempDir()
	p, err := NewFilePersistence(dir, newTestConfigManager(t))
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	s := playedSession("OLD1")
	s.Preset = nil
	p.Save(s)

	loaded, err := p.Load("OLD1")
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if loaded.Preset == nil || loaded.Preset.Name != "Quick" {
		t.Errorf("Expected the quick preset from configs, got %+v", loaded.Preset)
	}

	s = playedSession("OLD2")
	s.Preset = nil
	s.PresetID = "vanished"
	p.Save(s)
	if _, err := p.Load("OLD2"); !errors.Is(err, service.ErrPresetNotFound) {
		t.Errorf("Expected ErrPresetNotFound, got %v", err)
	}
}

func TestFilePersistencePurge(t *testing.T) {
	dir := t.TempDir()
	p, _ := NewFilePersistence(dir, nil)
	p.Save(playedSession("OLD"))
	p.Save(playedSession("NEW"))

	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "OLD.json"), past, past); err != nil {
		t.Fatal(err)
	}

	n, err := p.PurgeOlderThan(time.Now().Add(-24 * time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("Expected 1 purged room, got %d %v", n, err)
	}
	if p.Exists("OLD") || !p.Exists("NEW") {
		t.Error("Only the old room should be purged")
	}
}

func TestManagerWithPersistence(t *testing.T) {
	persistence, err := NewFilePersistence(t.TempDir(), newTestConfigManager(t))
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	manager := NewManagerWithPersistence(persistence)

	t.Run("create auto-saves", func(t *testing.T) {
		session, err := manager.CreateWithID("AUTO1", "classic", service.DefaultPreset())
		if err != nil {
			t.Fatalf("Failed to create room: %v", err)
		}
		if !persistence.Exists(session.ID) {
			t.Error("Room should be saved on creation")
		}
		if _, err := manager.CreateWithID("AUTO1", "classic", nil); !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("save persists changes", func(t *testing.T) {
		session, _ := manager.Get("AUTO1")
		session.Lock()
		session.Game.Players = append(session.Game.Players, engine.InitialPlayer(engine.Red, "Ana", "c1"))
		err := manager.Save("AUTO1")
		session.Unlock()
		if err != nil {
			t.Fatalf("Failed to save: %v", err)
		}

		fresh := NewManagerWithPersistence(persistence)
		loaded, err := fresh.Get("auto1")
		if err != nil {
			t.Fatalf("Failed to load from persistence: %v", err)
		}
		if len(loaded.Game.Players) != 1 {
			t.Errorf("Expected the saved player, got %d players", len(loaded.Game.Players))
		}
		again, _ := fresh.Get("AUTO1")
		if again != loaded {
			t.Error("Room should be cached after the first load")
		}
	})

	t.Run("load persisted rooms at startup", func(t *testing.T) {
		manager.CreateWithID("AUTO2", "classic", nil)

		fresh := NewManagerWithPersistence(persistence)
		if err := fresh.LoadPersistedSessions(); err != nil {
			t.Fatalf("Failed to load persisted rooms: %v", err)
		}
		if fresh.Count() != 2 {
			t.Errorf("Expected 2 rooms, got %d", fresh.Count())
		}
		if err := fresh.SaveAllSessions(); err != nil {
			t.Errorf("Failed to save all rooms: %v", err)
		}
	})

	t.Run("expired rooms stay on disk", func(t *testing.T) {
		session, _ := manager.Get("AUTO2")
		session.LastAccessedAt = time.Now().Add(-time.Hour)

		if removed := manager.CleanupExpiredSessions(time.Minute); removed != 1 {
			t.Errorf("Expected 1 room evicted, got %d", removed)
		}
		if _, err := manager.Get("AUTO2"); err != nil {
			t.Errorf("Evicted room should reload from disk: %v", err)
		}
	})

	t.Run("delete removes from disk", func(t *testing.T) {
		if err := manager.Delete("AUTO1"); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if persistence.Exists("AUTO1") {
			t.Error("Room file should be deleted")
		}
	})
}

func TestRestartResumesTurnPass(t *testing.T) {
	ctx := context.Background()
	cm := newTestConfigManager(t)
	dir := t.TempDir()

	fp, err := NewFilePersistence(dir, cm)
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}
	manager := NewManagerWithPersistence(fp)
	svc := service.NewGameService(manager, cm, service.WithDiceRoller(service.NewSequenceDice(3)))

	room, err := svc.CreateRoom(ctx, service.CreateRoomRequest{PlayerName: "Ana", UserID: "u-ana", PresetID: "quick"})
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if _, err := svc.JoinRoom(ctx, room.Code, service.JoinRoomRequest{PlayerName: "Bo", UserID: "u-bo"}); err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	if _, err := svc.StartGame(ctx, room.Code, "u-ana"); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	roll, err := svc.RollDice(ctx, room.Code, "u-ana")
	if err != nil || !roll.NoMoves {
		t.Fatalf("Expected a roll without moves, got %+v, %v", roll, err)
	}

	if err := manager.SaveAllSessions(); err != nil {
		t.Fatalf("SaveAllSessions failed: %v", err)
	}
	svc.Close()

	fp2, err := NewFilePersistence(dir, cm)
	if err != nil {
		t.Fatalf("Failed to reopen persistence: %v", err)
	}
	manager2 := NewManagerWithPersistence(fp2)
	if err := manager2.LoadPersistedSessions(); err != nil {
		t.Fatalf("LoadPersistedSessions failed: %v", err)
	}
	svc2 := service.NewGameService(manager2, cm, service.WithDiceRoller(service.NewSequenceDice(5)))
	defer svc2.Close()

	if _, err := svc2.RollDice(ctx, room.Code, "u-ana"); !errors.Is(err, service.ErrNotYourTurn) {
		t.Errorf("Expected the turn to have passed to Bo, got %v", err)
	}
	res, err := svc2.RollDice(ctx, room.Code, "u-bo")
	if err != nil {
		t.Fatalf("Expected Bo to roll after restart, got %v", err)
	}
	if res.Dice != 5 {
		t.Errorf("Expected a 5, got %d", res.Dice)
	}
}
