package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errors for config management
var (
	ErrPresetNotFound = errors.New("preset not found")
	ErrDuplicateKey   = errors.New("key already exists")
)

// ConfigManager provides CRUD operations for config entries
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Preset represents a named preset entry
type Preset struct {
	Name string
	PresetConfig
}

func presetKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AddPreset adds a new preset to config
func (m *ConfigManager) AddPreset(name string, preset PresetConfig) error {
	key := presetKey(name)
	if key == "" {
		return fmt.Errorf("preset name is required")
	}
	if err := preset.Validate(); err != nil {
		return fmt.Errorf("preset %q: %w", key, err)
	}

	if m.config.Presets == nil {
		m.config.Presets = make(map[string]PresetConfig)
	}

	if _, exists := m.config.Presets[key]; exists {
		return fmt.Errorf("%w: preset %q", ErrDuplicateKey, key)
	}

	m.config.Presets[key] = preset
	return Save(m.config, m.configPath)
}

// ListPresets returns all presets sorted by name
func (m *ConfigManager) ListPresets() []Preset {
	result := make([]Preset, 0, len(m.config.Presets))
	for name, pc := range m.config.Presets {
		result = append(result, Preset{Name: name, PresetConfig: pc})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// GetPreset gets a preset by name (case-insensitive)
func (m *ConfigManager) GetPreset(name string) (Preset, error) {
	key := presetKey(name)
	if pc, exists := m.config.Presets[key]; exists {
		return Preset{Name: key, PresetConfig: pc}, nil
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrPresetNotFound, key)
}

// RemovePreset removes a preset by name
func (m *ConfigManager) RemovePreset(name string) error {
	key := presetKey(name)
	if _, exists := m.config.Presets[key]; !exists {
		return fmt.Errorf("%w: %q", ErrPresetNotFound, key)
	}

	delete(m.config.Presets, key)
	return Save(m.config, m.configPath)
}
