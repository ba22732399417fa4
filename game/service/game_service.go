package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/ludo-server/game/engine"
)

// GameService defines all room and game operations
type GameService interface {
	// Room lifecycle
	CreateRoom(ctx context.Context, req CreateRoomRequest) (*RoomInfo, error)
	JoinRoom(ctx context.Context, code string, req JoinRoomRequest) (*RoomInfo, error)
	StartGame(ctx context.Context, code, userID string) (*RoomInfo, error)
	Reconnect(ctx context.Context, code, userID, connID string) (*RoomInfo, error)
	LeaveGame(ctx context.Context, code, userID string) (*RoomInfo, error)
	GetRoom(ctx context.Context, code string) (*RoomInfo, error)
	ListRooms(ctx context.Context, opts ListOptions) ([]*RoomInfo, error)
	DeleteRoom(ctx context.Context, code string) error

	// Turn actions
	RollDice(ctx context.Context, code, userID string) (*RollResult, error)
	LegalMoves(ctx context.Context, code, userID string) ([]engine.Move, error)
	MakeMove(ctx context.Context, code, userID string, token int, moveType engine.MoveType) (*MoveResult, error)

	GetHistory(ctx context.Context, code string, opts HistoryOptions) (*HistoryResponse, error)

	// Presets
	ListPresets(ctx context.Context) ([]*PresetInfo, error)
	LoadPreset(ctx context.Context, id string) (*Preset, error)
	SavePreset(ctx context.Context, id string, preset *Preset) error

	// Close cancels pending turn transitions.
	Close()
}

// SessionManager defines room storage operations
type SessionManager interface {
	Create(presetID string, preset *Preset) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles preset loading
type ConfigManager interface {
	LoadPreset(id string) (*Preset, error)
	ListPresets() ([]*PresetInfo, error)
	GetDefault() *Preset
	SavePreset(id string, preset *Preset) error
}

// Session is one room: the authoritative game record plus bookkeeping.
type Session struct {
	ID             string
	PresetID       string
	Preset         *Preset
	Game           *engine.Game
	History        []HistoryEntry
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu     sync.Mutex
	closed bool
	// turn is bumped on every turn transition so stale timers can tell
	// they no longer apply.
	turn uint64
	// pending is set while a delayed transition is scheduled. It is never
	// persisted, so a reloaded room that still shows an unplayable die has
	// lost its timer.
	pending bool
}

// Lock serialises all state changes to the room.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the room lock.
func (s *Session) Unlock() { s.mu.Unlock() }
