// Package config handles configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/eachlabs/chattabs/internal/router"
)

// DefaultTimeLayout is used when timestamps are on but no format is set.
const DefaultTimeLayout = "3:04PM"

// Config represents the chattabs configuration.
type Config struct {
	Player   PlayerConfig    `toml:"player"`
	Chat     ChatConfig      `toml:"chat"`
	Settings map[string]bool `toml:"settings"`
	Logging  LoggingConfig   `toml:"logging"`
}

// PlayerConfig identifies the logged-in character.
type PlayerConfig struct {
	Name string `toml:"name"`
}

// ChatConfig holds chat display settings.
type ChatConfig struct {
	Timestamps      bool   `toml:"timestamps"`
	TimestampFormat string `toml:"timestamp_format"`
	// Peers that answer private messages in the local client.
	EchoPeers []string `toml:"echo_peers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile reads configuration from path and environment. A missing file
// yields defaults.
func LoadFile(path string) (*Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	cfg.applyEnv()

	// Expand paths
	cfg.expandPaths()

	return cfg, nil
}

// ReadFile reads only what is stored at path, without environment overrides
// or path expansion. Use it when the config is going to be saved back.
func ReadFile(path string) (*Config, error) {
	cfg := defaultConfig()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if cfg.Settings == nil {
		cfg.Settings = make(map[string]bool)
	}
	return cfg, nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	if p := os.Getenv("CHATTABS_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(StateDir(), "config.toml")
}

// StateDir returns the chattabs state directory.
func StateDir() string {
	if p := os.Getenv("CHATTABS_STATE_DIR"); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".chattabs")
}

// LogsDir returns the logs directory.
func LogsDir() string {
	return filepath.Join(StateDir(), "logs")
}

// TimeLayout returns the timestamp layout for chat lines, or "" when
// timestamps are off.
func (c *Config) TimeLayout() string {
	if !c.Chat.Timestamps {
		return ""
	}
	if c.Chat.TimestampFormat == "" {
		return DefaultTimeLayout
	}
	return c.Chat.TimestampFormat
}

func defaultConfig() *Config {
	return &Config{
		Player: PlayerConfig{
			Name: "Adventurer",
		},
		Chat: ChatConfig{
			Timestamps:      true,
			TimestampFormat: DefaultTimeLayout,
			EchoPeers:       []string{"Bill Dipperly"},
		},
		Settings: make(map[string]bool),
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func (c *Config) applyEnv() {
	if name := os.Getenv("CHATTABS_PLAYER"); name != "" {
		c.Player.Name = name
	}

	// Messaging toggle
	if v := os.Getenv("CHATTABS_ENABLE"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Settings[router.SettingEnable] = enabled
		}
	}

	if level := os.Getenv("CHATTABS_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

func (c *Config) expandPaths() {
	home, _ := os.UserHomeDir()

	expand := func(p string) string {
		if strings.HasPrefix(p, "~/") {
			return filepath.Join(home, p[2:])
		}
		if strings.HasPrefix(p, "$HOME/") {
			return filepath.Join(home, p[6:])
		}
		return p
	}

	c.Logging.File = expand(c.Logging.File)
}

// Save writes the config to the default path.
func (c *Config) Save() error {
	return c.SaveFile(ConfigPath())
}

// SaveFile writes the config to path.
func (c *Config) SaveFile(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}

// EnsureDirs creates necessary directories.
func EnsureDirs() error {
	dirs := []string{
		StateDir(),
		LogsDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	return nil
}
