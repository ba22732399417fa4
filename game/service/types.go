package service

import (
	"time"

	"github.com/wricardo/ludo-server/game/engine"
)

// CreateRoomRequest opens a new room with the caller seated as host.
type CreateRoomRequest struct {
	PlayerName   string `json:"player_name"`
	UserID       string `json:"user_id,omitempty"`
	ConnectionID string `json:"connection_id,omitempty"`
	PresetID     string `json:"preset_id,omitempty"`
}

// JoinRoomRequest seats the caller in an existing lobby.
type JoinRoomRequest struct {
	PlayerName   string `json:"player_name"`
	UserID       string `json:"user_id,omitempty"`
	ConnectionID string `json:"connection_id,omitempty"`
}

// RoomInfo provides information about a room
type RoomInfo struct {
	Code           string       `json:"code"`
	PresetID       string       `json:"preset_id"`
	CreatedAt      time.Time    `json:"created_at"`
	LastAccessedAt time.Time    `json:"last_accessed_at"`
	Game           *engine.Game `json:"game"`
	UserID         string       `json:"user_id,omitempty"` // identity assigned to the caller
	Deleted        bool         `json:"deleted,omitempty"`
}

// RollResult is the outcome of a dice roll
type RollResult struct {
	Dice      int           `json:"dice"`
	SixChain  int           `json:"six_chain"`
	Forfeited bool          `json:"forfeited,omitempty"`
	NoMoves   bool          `json:"no_moves,omitempty"`
	Moves     []engine.Move `json:"moves"`
	Game      *engine.Game  `json:"game"`
}

// MoveResult is the outcome of a token move
type MoveResult struct {
	Move      engine.Move      `json:"move"`
	Captures  []engine.Capture `json:"captures,omitempty"`
	ExtraTurn bool             `json:"extra_turn"`
	Winner    *engine.Player   `json:"winner,omitempty"`
	Game      *engine.Game     `json:"game"`
}

// Event names published through the Notifier.
const (
	EventRoomCreated    = "room_created"
	EventPlayerJoined   = "player_joined"
	EventGameStarted    = "game_started"
	EventDiceRolled     = "dice_rolled"
	EventTokenMoved     = "token_moved"
	EventTokenCaptured  = "token_captured"
	EventTurnChanged    = "turn_changed"
	EventGameOver       = "game_over"
	EventPlayerLeft     = "player_left"
	EventReconnected    = "player_reconnected"
	EventRoomDeleted    = "room_deleted"
	EventTurnForfeited  = "turn_forfeited"
	EventNoMovesPending = "no_moves"
)

// History actions.
const (
	ActionRoll    = "roll"
	ActionMove    = "move"
	ActionForfeit = "forfeit"
	ActionPass    = "pass"
)

// HistoryEntry records one roll or move in a room
type HistoryEntry struct {
	Seq       int              `json:"seq"`
	Timestamp time.Time        `json:"timestamp"`
	Action    string           `json:"action"`
	UserID    string           `json:"user_id,omitempty"`
	Color     engine.Color     `json:"color,omitempty"`
	Dice      int              `json:"dice,omitempty"`
	Move      *engine.Move     `json:"move,omitempty"`
	Captures  []engine.Capture `json:"captures,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// HistoryOptions configures history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated room history
type HistoryResponse struct {
	Entries      []HistoryEntry `json:"entries"`
	TotalEntries int            `json:"total_entries"`
	Page         int            `json:"page"`
	PageSize     int            `json:"page_size"`
	TotalPages   int            `json:"total_pages"`
	HasNext      bool           `json:"has_next"`
	HasPrevious  bool           `json:"has_previous"`
}

// ListOptions orders and limits ListRooms
type ListOptions struct {
	Sort   string `json:"sort"`  // "created" or "accessed"
	Order  string `json:"order"` // "asc" or "desc"
	Limit  int    `json:"limit"`
	Status string `json:"status,omitempty"`
}

// PresetInfo provides information about a stored preset
type PresetInfo struct {
	Filename    string `json:"filename"`
	PresetID    string `json:"preset_id"` // The identifier to use for room creation
	Name        string `json:"name"`
	Description string `json:"description"`
	MinPlayers  int    `json:"min_players"`
	MaxPlayers  int    `json:"max_players"`
	TurnDelayMs int    `json:"turn_delay_ms"`
}
