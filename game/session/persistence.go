package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/wricardo/ludo-server/game/engine"
	"github.com/wricardo/ludo-server/game/service"
)

// SessionPersistence defines the interface for persisting rooms
type SessionPersistence interface {
	// Save persists a room to storage
	Save(session *service.Session) error

	// Load retrieves a room from storage by code
	Load(id string) (*service.Session, error)

	// Delete removes a room from storage
	Delete(id string) error

	// ListAll returns all persisted room codes
	ListAll() ([]string, error)

	// Exists checks if a room exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the JSON document stored for each room
type PersistedSessionData struct {
	ID             string                 `json:"id"`
	PresetID       string                 `json:"preset_id"`
	Preset         *service.Preset        `json:"preset,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	LastAccessedAt time.Time              `json:"last_accessed_at"`
	Game           *engine.Game           `json:"game"`
	History        []service.HistoryEntry `json:"history,omitempty"`
}

func toDocument(s *service.Session) PersistedSessionData {
	return PersistedSessionData{
		ID:             s.ID,
		PresetID:       s.PresetID,
		Preset:         s.Preset,
		CreatedAt:      s.CreatedAt,
		LastAccessedAt: s.LastAccessedAt,
		Game:           s.Game,
		History:        s.History,
	}
}

// fromDocument rebuilds a room. Documents without an embedded preset get
// theirs from configs.
func fromDocument(data PersistedSessionData, configs service.ConfigManager) (*service.Session, error) {
	if data.Game == nil {
		return nil, fmt.Errorf("room %s has no game state", data.ID)
	}

	preset := data.Preset
	if preset == nil {
		switch {
		case configs == nil:
			preset = service.DefaultPreset()
		case data.PresetID == "":
			preset = configs.GetDefault()
		default:
			p, err := configs.LoadPreset(data.PresetID)
			if err != nil {
				return nil, fmt.Errorf("failed to load preset '%s': %w", data.PresetID, err)
			}
			preset = p
		}
	}

	return &service.Session{
		ID:             data.ID,
		PresetID:       data.PresetID,
		Preset:         preset.WithDefaults(),
		Game:           data.Game,
		History:        data.History,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
