package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wricardo/ludo-server/api"
	"github.com/wricardo/ludo-server/game/service"
	"github.com/wricardo/ludo-server/game/session"
	"github.com/wricardo/ludo-server/transport/mcp"
)

func testOptions(t *testing.T, store string) serverOptions {
	t.Helper()
	dir := t.TempDir()
	return serverOptions{
		ConfigDir:       "configs",
		Store:           store,
		SessionsDir:     filepath.Join(dir, "sessions"),
		SQLitePath:      filepath.Join(dir, "data", "rooms.db"),
		IdleTimeout:     time.Hour,
		FinishedTimeout: time.Hour,
		PurgeAfter:      24 * time.Hour,
		SyncInterval:    time.Second,
	}
}

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Ludo Server" {
		t.Errorf("Expected app name 'Ludo Server', got %s", AppName)
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf

	if err := app.Run(context.Background(), []string{"ludo-server", "version"}); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Ludo Server v"+Version) {
		t.Errorf("Unexpected version output: %q", buf.String())
	}
}

func TestFlagDefaults(t *testing.T) {
	app := newApp()

	defaults := map[string]bool{}
	for _, f := range app.Flags {
		for _, name := range f.Names() {
			defaults[name] = true
		}
	}
	for _, name := range []string{"port", "host", "config-dir", "store", "sessions-dir", "sqlite-path", "debug", "ngrok"} {
		if !defaults[name] {
			t.Errorf("Expected flag --%s", name)
		}
	}

	var commands []string
	for _, c := range app.Commands {
		commands = append(commands, c.Name)
	}
	if strings.Join(commands, ",") != "serve,stdio-mcp,version" {
		t.Errorf("Unexpected commands %v", commands)
	}
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		level string
		debug bool
		want  zerolog.Level
	}{
		{"warn", false, zerolog.WarnLevel},
		{"bogus", false, zerolog.InfoLevel},
		{"", false, zerolog.InfoLevel},
		{"error", true, zerolog.DebugLevel},
	}
	for _, tt := range tests {
		setupLogging(tt.level, "json", tt.debug)
		if got := zerolog.GlobalLevel(); got != tt.want {
			t.Errorf("setupLogging(%q, %v): expected %s, got %s", tt.level, tt.debug, tt.want, got)
		}
	}
}

func TestInitializeServices(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	for _, store := range []string{storeFile, storeSQLite} {
		t.Run(store, func(t *testing.T) {
			svcs, err := initializeServices(testOptions(t, store))
			if err != nil {
				t.Fatalf("Failed to initialize services: %v", err)
			}
			defer svcs.Close()

			if svcs.Game == nil || svcs.Hub == nil || svcs.Sessions == nil || svcs.Store == nil {
				t.Fatal("Expected every service to be wired")
			}

			room, err := svcs.Game.CreateRoom(context.Background(), service.CreateRoomRequest{PlayerName: "Ana", PresetID: "quick"})
			if err != nil {
				t.Fatalf("CreateRoom failed: %v", err)
			}
			if !svcs.Store.Exists(room.Code) {
				t.Errorf("Expected room %s to be persisted", room.Code)
			}
		})
	}
}

func TestInitializeServices_Errors(t *testing.T) {
	opts := testOptions(t, storeFile)
	opts.ConfigDir = "/non/existent/path"
	if _, err := initializeServices(opts); err == nil {
		t.Error("Expected error for non-existent config directory")
	}

	opts = testOptions(t, "postgres")
	if _, err := initializeServices(opts); err == nil || !strings.Contains(err.Error(), "unknown store") {
		t.Errorf("Expected unknown store error, got %v", err)
	}
}

func TestPruneOrphans(t *testing.T) {
	svcs, err := initializeServices(testOptions(t, storeFile))
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svcs.Close()

	keep, _ := svcs.Sessions.Create("quick", nil)
	gone, _ := svcs.Sessions.Create("quick", nil)
	if err := svcs.Store.Delete(gone.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if pruned := pruneOrphans(svcs.Sessions, svcs.Store); pruned != 1 {
		t.Errorf("Expected 1 pruned room, got %d", pruned)
	}
	if _, err := svcs.Sessions.Get(keep.ID); err != nil {
		t.Errorf("Expected %s to survive: %v", keep.ID, err)
	}
	if _, err := svcs.Sessions.Get(gone.ID); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("Expected %s to be gone, got %v", gone.ID, err)
	}
}

// failingStore wraps a store and fails every Save while failSaves is set.
type failingStore struct {
	session.SessionPersistence
	failSaves bool
}

func (f *failingStore) Save(s *service.Session) error {
	if f.failSaves {
		return errors.New("disk full")
	}
	return f.SessionPersistence.Save(s)
}

func TestPruneOrphans_UnsavedRoom(t *testing.T) {
	svcs, err := initializeServices(testOptions(t, storeFile))
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svcs.Close()

	store := &failingStore{SessionPersistence: svcs.Store, failSaves: true}
	manager := session.NewManagerWithPersistence(store)

	room, err := manager.Create("quick", nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !manager.Unsaved(room.ID) {
		t.Fatal("Expected the failed save to be tracked")
	}

	if pruned := pruneOrphans(manager, store); pruned != 0 {
		t.Errorf("Expected the unsaved room to stay in memory, pruned %d", pruned)
	}
	if _, err := manager.Get(room.ID); err != nil {
		t.Fatalf("Expected %s to stay live: %v", room.ID, err)
	}

	store.failSaves = false
	pruneOrphans(manager, store)
	if manager.Unsaved(room.ID) {
		t.Error("Expected the room to be saved on the next sync")
	}
	if !store.Exists(room.ID) {
		t.Errorf("Expected %s in the store after the retry", room.ID)
	}
}

func TestRunCleanup(t *testing.T) {
	svcs, err := initializeServices(testOptions(t, storeSQLite))
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svcs.Close()

	if _, err := svcs.Sessions.Create("quick", nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	opts := testOptions(t, storeSQLite)
	opts.IdleTimeout = -time.Second
	opts.PurgeAfter = -time.Second
	runCleanup(svcs.Sessions, opts)

	if svcs.Sessions.Count() != 0 {
		t.Errorf("Expected idle rooms evicted from memory, got %d", svcs.Sessions.Count())
	}
	ids, err := svcs.Store.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected stored rooms purged, got %v", ids)
	}
}

func TestMCPHandler(t *testing.T) {
	svcs, err := initializeServices(testOptions(t, storeFile))
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svcs.Close()
	go svcs.Hub.Run()

	apiServer := httptest.NewServer(api.NewServer(svcs.Game, svcs.Hub))
	defer apiServer.Close()

	root := httptest.NewServer(newRootHandler(api.NewServer(svcs.Game, svcs.Hub), mcp.NewClient(apiServer.URL)))
	defer root.Close()

	resp, err := http.Get(root.URL + "/mcp")
	if err != nil {
		t.Fatalf("GET /mcp failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET /mcp, got %d", resp.StatusCode)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_presets","arguments":{}}}`
	resp, err = http.Post(root.URL+"/mcp", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /mcp failed: %v", err)
	}
	defer resp.Body.Close()

	var rpc struct {
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rpc); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(rpc.Result.Content) == 0 || !strings.Contains(rpc.Result.Content[0].Text, "quick") {
		t.Errorf("Expected the preset list, got %+v", rpc.Result)
	}

	health, err := http.Get(root.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Errorf("Expected API mounted at root, got %d", health.StatusCode)
	}
	if !apiAvailable(root.URL) {
		t.Error("Expected apiAvailable to see the server")
	}
}
