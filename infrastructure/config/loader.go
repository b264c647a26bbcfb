package config

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"videoxt/domain/extraction"
)

// DefaultPath is where the CLI looks for its configuration
const DefaultPath = "config/config.yaml"

// Frame writer backends
const (
	BackendFFmpeg = "ffmpeg"
	BackendOpenCV = "opencv"
)

// Config represents the complete application configuration
type Config struct {
	FFmpeg   FFmpegConfig            `yaml:"ffmpeg"`
	Frames   FramesConfig            `yaml:"frames"`
	Defaults DefaultsConfig          `yaml:"defaults"`
	Google   GoogleConfig            `yaml:"google"`
	Email    EmailConfig             `yaml:"email"`
	Logging  LoggingConfig           `yaml:"logging"`
	Presets  map[string]PresetConfig `yaml:"presets,omitempty"`
}

// FFmpegConfig contains ffmpeg and ffprobe settings
type FFmpegConfig struct {
	Path                string `yaml:"path"`
	ProbeTimeoutSeconds int    `yaml:"probe_timeout_seconds"`
}

// FramesConfig selects how frames are read from a video
type FramesConfig struct {
	Backend string `yaml:"backend"`
}

// DefaultsConfig holds values used when a flag is not given
type DefaultsConfig struct {
	DestDir     string `yaml:"destdir"`
	AudioFormat string `yaml:"audio_format"`
	ImageFormat string `yaml:"image_format"`
	Overwrite   bool   `yaml:"overwrite"`
}

// GoogleConfig contains Google Drive settings for uploads
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	FolderID        string `yaml:"folder_id"`
}

// EmailConfig contains the Gmail sender used to email share links. Sending
// needs an OAuth token (google.token_file).
type EmailConfig struct {
	FromName    string `yaml:"from_name"`
	FromAddress string `yaml:"from_address"`
	SenderName  string `yaml:"sender_name"`
}

// Enabled reports whether share links can be emailed
func (e EmailConfig) Enabled() bool {
	return e.FromAddress != ""
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		FFmpeg:   FFmpegConfig{Path: "ffmpeg", ProbeTimeoutSeconds: 10},
		Frames:   FramesConfig{Backend: BackendFFmpeg},
		Defaults: DefaultsConfig{AudioFormat: "mp3", ImageFormat: "jpg"},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load reads and parses the configuration from the specified YAML file.
// Fields the file leaves out keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := normalizePresetNames(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalizePresetNames rekeys hand-edited presets the way the manager stores
// them, so "Thumbs:" in the file is found as "thumbs"
func normalizePresetNames(cfg *Config) error {
	if len(cfg.Presets) == 0 {
		return nil
	}
	presets := make(map[string]PresetConfig, len(cfg.Presets))
	for name, pc := range cfg.Presets {
		key := presetKey(name)
		if key == "" {
			return fmt.Errorf("preset with an empty name in config file")
		}
		if _, exists := presets[key]; exists {
			return fmt.Errorf("%w: preset %q appears more than once in config file", ErrDuplicateKey, key)
		}
		presets[key] = pc
	}
	cfg.Presets = presets
	return nil
}

// LoadOrDefault loads path, falling back to Default when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for values the CLI cannot use
func (c *Config) Validate() error {
	if c.FFmpeg.ProbeTimeoutSeconds < 0 {
		return fmt.Errorf("ffmpeg.probe_timeout_seconds must not be negative, got %d", c.FFmpeg.ProbeTimeoutSeconds)
	}

	switch c.Frames.Backend {
	case "", BackendFFmpeg, BackendOpenCV:
	default:
		return fmt.Errorf("frames.backend must be %q or %q, got %q", BackendFFmpeg, BackendOpenCV, c.Frames.Backend)
	}

	if c.Defaults.AudioFormat != "" {
		if _, err := extraction.ValidAudioFormat(c.Defaults.AudioFormat); err != nil {
			return fmt.Errorf("defaults.audio_format: %w", err)
		}
	}
	if c.Defaults.ImageFormat != "" {
		if _, err := extraction.ValidImageFormat(c.Defaults.ImageFormat); err != nil {
			return fmt.Errorf("defaults.image_format: %w", err)
		}
	}

	if c.Email.Enabled() {
		if _, err := mail.ParseAddress(c.Email.FromAddress); err != nil {
			return fmt.Errorf("email.from_address: %w", err)
		}
		if c.Google.TokenFile == "" {
			return fmt.Errorf("email.from_address requires google.token_file: Gmail sends with your OAuth sign-in")
		}
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}

	for name, preset := range c.Presets {
		if _, err := preset.Request(); err != nil {
			return fmt.Errorf("preset %q: %w", name, err)
		}
	}

	return nil
}

// LogLevel parses logging.level, defaulting to info
func (c *Config) LogLevel() (zapcore.Level, error) {
	if c.Logging.Level == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}
