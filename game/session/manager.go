package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/ludo-server/game/engine"
	"github.com/wricardo/ludo-server/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

const (
	defaultCodeLength = 6
	maxCodeAttempts   = 10
)

// Purger is implemented by stores that can drop stale rooms in bulk.
type Purger interface {
	PurgeOlderThan(cutoff time.Time) (int, error)
}

// Manager is the room registry. It owns the map from room code to room and
// mirrors every change to the configured persistence.
//
// Save and UpdateLastAccessed read the room without taking its lock; callers
// must hold it. Background operations (SaveAllSessions, cleanups) take each
// room's lock themselves and never while holding the registry lock.
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	mu          sync.RWMutex

	// unsaved holds rooms whose last write to persistence failed.
	unsaved   map[string]bool
	unsavedMu sync.Mutex
}

// NewManager creates an in-memory room registry
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		unsaved:  make(map[string]bool),
	}
}

// NewManagerWithPersistence creates a room registry backed by persistence
func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	return &Manager{
		sessions:    make(map[string]*service.Session),
		persistence: persistence,
		unsaved:     make(map[string]bool),
	}
}

// Create registers a new lobby under a fresh room code
func (m *Manager) Create(presetID string, preset *service.Preset) (*service.Session, error) {
	length := defaultCodeLength
	if preset != nil && preset.RoomCodeLength > 0 {
		length = preset.RoomCodeLength
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		session, err := m.CreateWithID(generateRoomCode(length), presetID, preset)
		if errors.Is(err, ErrSessionAlreadyExists) {
			continue
		}
		return session, err
	}
	return nil, fmt.Errorf("could not allocate a room code of length %d", length)
}

// CreateWithID registers a new lobby under the given code
func (m *Manager) CreateWithID(id, presetID string, preset *service.Preset) (*service.Session, error) {
	id = normalizeID(id)
	if id == "" {
		return nil, ErrInvalidSessionID
	}
	if preset == nil {
		preset = service.DefaultPreset()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; exists {
		return nil, ErrSessionAlreadyExists
	}
	if m.persistence != nil && m.persistence.Exists(id) {
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	session := &service.Session{
		ID:       id,
		PresetID: presetID,
		Preset:   preset,
		Game: &engine.Game{
			RoomID:  id,
			Players: []engine.Player{},
			Status:  engine.StatusLobby,
		},
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	m.sessions[id] = session

	// Auto-save if persistence is enabled
	if m.persistence != nil {
		if err := m.write(session); err != nil {
			// Log error but don't fail the creation
			log.Warn().Err(err).Str("room", id).Msg("failed to persist room")
		}
	}

	return session, nil
}

// Get retrieves a room by code (case-insensitive), loading it from
// persistence when it is not in memory
func (m *Manager) Get(id string) (*service.Session, error) {
	id = normalizeID(id)

	m.mu.RLock()
	session, exists := m.sessions[id]
	m.mu.RUnlock()

	if exists {
		return session, nil
	}

	if m.persistence != nil && m.persistence.Exists(id) {
		loaded, err := m.persistence.Load(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted session: %w", err)
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		// Another caller may have loaded it first
		if session, exists := m.sessions[id]; exists {
			return session, nil
		}
		m.sessions[id] = loaded
		return loaded, nil
	}

	return nil, ErrSessionNotFound
}

// List returns all rooms in memory
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}

	return result
}

// Delete removes a room from memory and persistence
func (m *Manager) Delete(id string) error {
	id = normalizeID(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	_, inMemory := m.sessions[id]
	delete(m.sessions, id)
	m.markUnsaved(id, false)

	if m.persistence != nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory removes a room from memory only (not from persistence)
func (m *Manager) DeleteFromMemory(id string) error {
	id = normalizeID(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	m.markUnsaved(id, false)
	return nil
}

// UpdateLastAccessed stamps the room and persists it
func (m *Manager) UpdateLastAccessed(id string) error {
	id = normalizeID(id)

	m.mu.RLock()
	session, exists := m.sessions[id]
	m.mu.RUnlock()
	if !exists {
		return ErrSessionNotFound
	}

	session.LastAccessedAt = time.Now()

	if m.persistence != nil {
		return m.write(session)
	}
	return nil
}

// Save writes a room to persistence
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil // No persistence configured
	}

	m.mu.RLock()
	session, exists := m.sessions[normalizeID(id)]
	m.mu.RUnlock()
	if !exists {
		return ErrSessionNotFound
	}

	return m.write(session)
}

// Unsaved reports whether the last write of a room to persistence failed.
// Such a room is missing or stale in the store but still live in memory.
func (m *Manager) Unsaved(id string) bool {
	m.unsavedMu.Lock()
	defer m.unsavedMu.Unlock()
	return m.unsaved[normalizeID(id)]
}

func (m *Manager) write(session *service.Session) error {
	err := m.persistence.Save(session)
	m.markUnsaved(session.ID, err != nil)
	return err
}

func (m *Manager) markUnsaved(id string, failed bool) {
	m.unsavedMu.Lock()
	defer m.unsavedMu.Unlock()
	if failed {
		m.unsaved[normalizeID(id)] = true
	} else {
		delete(m.unsaved, normalizeID(id))
	}
}

// CleanupExpiredSessions drops rooms idle for longer than maxAge from memory.
// They stay in persistence and are reloaded on access.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	return m.evict(func(s *service.Session) bool {
		return s.LastAccessedAt.Before(cutoff)
	}, false)
}

// CleanupFinishedSessions removes finished rooms idle for longer than maxAge
// from memory and persistence.
func (m *Manager) CleanupFinishedSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	return m.evict(func(s *service.Session) bool {
		return s.Game != nil && s.Game.Status == engine.StatusFinished && s.LastAccessedAt.Before(cutoff)
	}, true)
}

// PurgePersisted drops stored rooms idle for longer than maxAge when the
// store supports it.
func (m *Manager) PurgePersisted(maxAge time.Duration) (int, error) {
	p, ok := m.persistence.(Purger)
	if !ok {
		return 0, nil
	}
	return p.PurgeOlderThan(time.Now().Add(-maxAge))
}

func (m *Manager) evict(match func(*service.Session) bool, fromStore bool) int {
	var victims []string
	for _, s := range m.List() {
		// memory is the only copy of an unsaved room
		if !fromStore && m.Unsaved(s.ID) {
			continue
		}
		s.Lock()
		if match(s) {
			victims = append(victims, s.ID)
		}
		s.Unlock()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range victims {
		delete(m.sessions, id)
		m.markUnsaved(id, false)
		if fromStore && m.persistence != nil && m.persistence.Exists(id) {
			if err := m.persistence.Delete(id); err != nil {
				log.Warn().Err(err).Str("room", id).Msg("failed to delete persisted room")
			}
		}
	}
	return len(victims)
}

// Count returns the number of rooms in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// LoadPersistedSessions loads all persisted rooms into memory
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil // No persistence configured
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loadedCount := 0
	for _, id := range ids {
		id = normalizeID(id)
		if _, exists := m.sessions[id]; exists {
			continue
		}

		session, err := m.persistence.Load(id)
		if err != nil {
			log.Warn().Err(err).Str("room", id).Msg("failed to load persisted room")
			continue
		}

		m.sessions[id] = session
		loadedCount++
	}

	if loadedCount > 0 {
		log.Info().Int("count", loadedCount).Msg("loaded persisted rooms")
	}

	return nil
}

// SaveAllSessions saves all in-memory rooms to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil // No persistence configured
	}

	errorCount := 0
	for _, session := range m.List() {
		session.Lock()
		err := m.write(session)
		session.Unlock()
		if err != nil {
			log.Warn().Err(err).Str("room", session.ID).Msg("failed to save room")
			errorCount++
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("failed to save %d sessions", errorCount)
	}

	return nil
}

// generateRoomCode returns n random characters from A-Z and 2-7.
func generateRoomCode(n int) string {
	return rand.Text()[:n]
}
