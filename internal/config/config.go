package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"quickmenu/internal/domain"
	"quickmenu/internal/eventbus"
)

// Defaults
const (
	DefaultMaxResults       = 50
	DefaultMaxDepth         = 64
	DefaultCaptureTimeoutMs = 5000
	DefaultActionDelayMs    = 120
	DefaultActionTimeoutMs  = 5000
)

// Config represents the application configuration
type Config struct {
	SkipFirstTopLevel bool       `toml:"skip_first_top_level"`
	MaxResults        int        `toml:"max_results"`
	MaxDepth          int        `toml:"max_depth"`
	CaptureTimeoutMs  int        `toml:"capture_timeout_ms"`
	ActionDelayMs     int        `toml:"action_delay_ms"`
	ActionTimeoutMs   int        `toml:"action_timeout_ms"`
	Exclude           []string   `toml:"exclude"`
	LogLevel          string     `toml:"log_level"`
	UISettings        UISettings `toml:"ui"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowDisabled bool `toml:"show_disabled"`
	ShowPaths    bool `toml:"show_paths"`
}

// CaptureTimeout is the bounded wait for one capture
func (c Config) CaptureTimeout() time.Duration {
	return time.Duration(c.CaptureTimeoutMs) * time.Millisecond
}

// ActionTimeout bounds how long one menu action may run
func (c Config) ActionTimeout() time.Duration {
	return time.Duration(c.ActionTimeoutMs) * time.Millisecond
}

// ActionDelay is the pause before a menu action is performed
func (c Config) ActionDelay() time.Duration {
	return time.Duration(c.ActionDelayMs) * time.Millisecond
}

// Normalize replaces out-of-range values with defaults
func (c *Config) Normalize() {
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.CaptureTimeoutMs <= 0 {
		c.CaptureTimeoutMs = DefaultCaptureTimeoutMs
	}
	if c.ActionTimeoutMs <= 0 {
		c.ActionTimeoutMs = DefaultActionTimeoutMs
	}
	if c.ActionDelayMs < 0 {
		c.ActionDelayMs = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxResults:       DefaultMaxResults,
		MaxDepth:         DefaultMaxDepth,
		CaptureTimeoutMs: DefaultCaptureTimeoutMs,
		ActionDelayMs:    DefaultActionDelayMs,
		ActionTimeoutMs:  DefaultActionTimeoutMs,
		LogLevel:         "info",
		UISettings: UISettings{
			ShowDisabled: true,
		},
	}
}

// LoadedEvent is emitted when configuration is loaded
type LoadedEvent struct {
	Path   string
	Config Config
}

func (e LoadedEvent) Type() domain.EventType { return domain.EventConfigLoaded }

// ChangedEvent is emitted when the configuration file changed on disk
type ChangedEvent struct {
	Path   string
	Config Config
}

func (e ChangedEvent) Type() domain.EventType { return domain.EventConfigChanged }

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// DefaultPath returns the config location inside the user config directory
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "quickmenu", "config.toml")
}

// NewConfigService creates a config service for path; an empty path selects
// DefaultPath. bus may be nil.
func NewConfigService(path string, bus eventbus.EventBus) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{
		bus:      bus,
		filePath: path,
	}
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file, falling back to defaults when the
// file does not exist
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.LoadFromPath(cs.filePath)
	if errors.Is(err, os.ErrNotExist) {
		cfg = DefaultConfig()
	} else if err != nil {
		return nil, err
	}

	if cs.bus != nil {
		cs.bus.Publish(LoadedEvent{Path: cs.filePath, Config: *cfg})
	}
	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(domain.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path. Keys missing from
// the file keep their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Normalize()

	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
