package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/ludo-server/game/service"
)

// Manager handles preset loading and caching
type Manager struct {
	configDir     string
	defaultPreset *service.Preset
	presets       map[string]*service.Preset
	mu            sync.RWMutex
}

// NewManager creates a new preset manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		presets:   make(map[string]*service.Preset),
	}

	m.loadDefaultPreset()
	return m, nil
}

// LoadPreset loads a preset by id (file name without .json)
func (m *Manager) LoadPreset(id string) (*service.Preset, error) {
	id = strings.TrimSuffix(id, ".json")
	if err := checkID(id); err != nil {
		return nil, err
	}

	m.mu.RLock()
	if p, exists := m.presets[id]; exists {
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if p, exists := m.presets[id]; exists {
		return p, nil
	}

	data, err := os.ReadFile(filepath.Join(m.configDir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			if id == service.DefaultPresetID {
				return service.DefaultPreset(), nil
			}
			return nil, fmt.Errorf("%w: %s", service.ErrPresetNotFound, id)
		}
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, err
	}

	m.presets[id] = p
	return p, nil
}

// Parse decodes and validates a preset document. Missing message templates
// are filled with the defaults.
func Parse(data []byte) (*service.Preset, error) {
	var p service.Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse preset: %w", err)
	}
	if err := service.ValidatePreset(&p); err != nil {
		return nil, err
	}
	return p.WithDefaults(), nil
}

// ListPresets returns information about all available presets
func (m *Manager) ListPresets() ([]*service.PresetInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var presets []*service.PresetInfo
	seenDefault := false

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		p, err := m.LoadPreset(id)
		if err != nil {
			log.Debug().Err(err).Str("file", entry.Name()).Msg("skipping invalid preset")
			continue
		}
		if id == service.DefaultPresetID {
			seenDefault = true
		}
		presets = append(presets, info(entry.Name(), id, p))
	}

	if !seenDefault {
		presets = append(presets, info("", service.DefaultPresetID, m.GetDefault()))
	}

	sort.Slice(presets, func(i, j int) bool { return presets[i].PresetID < presets[j].PresetID })
	return presets, nil
}

// GetDefault returns the default preset
func (m *Manager) GetDefault() *service.Preset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultPreset
}

// SetDefault sets the default preset by id
func (m *Manager) SetDefault(id string) error {
	p, err := m.LoadPreset(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultPreset = p
	return nil
}

// RefreshCache drops cached presets so they are read from disk again
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.presets = make(map[string]*service.Preset)
	m.mu.Unlock()

	m.loadDefaultPreset()
}

// SavePreset writes a preset to disk
func (m *Manager) SavePreset(id string, p *service.Preset) error {
	id = strings.TrimSuffix(id, ".json")
	if err := checkID(id); err != nil {
		return err
	}
	if err := service.ValidatePreset(p); err != nil {
		return err
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.configDir, id+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write preset file: %w", err)
	}

	m.mu.Lock()
	m.presets[id] = p.WithDefaults()
	m.mu.Unlock()

	return nil
}

// loadDefaultPreset uses classic.json when present and the built-in preset otherwise
func (m *Manager) loadDefaultPreset() {
	p, err := m.LoadPreset(service.DefaultPresetID)
	if err != nil {
		log.Warn().Err(err).Msg("using built-in classic preset")
		p = service.DefaultPreset()
	}

	m.mu.Lock()
	m.defaultPreset = p
	m.mu.Unlock()
}

func info(filename, id string, p *service.Preset) *service.PresetInfo {
	return &service.PresetInfo{
		Filename:    filename,
		PresetID:    id,
		Name:        p.Name,
		Description: p.Description,
		MinPlayers:  p.MinPlayers,
		MaxPlayers:  p.MaxPlayers,
		TurnDelayMs: p.TurnDelayMs,
	}
}

func checkID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: bad preset id %q", service.ErrInvalidPreset, id)
	}
	return nil
}

// Count returns the number of cached presets
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.presets)
}
