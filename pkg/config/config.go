/*
Package config manages TOML config for shellpredict.

InitConfig handles automatic config file creation and loading with fallback to defaults.
LoadConfig and SaveConfig provide direct fs for runtime changes.
Update allows targeted parameter changes with persistence.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure.
type Config struct {
	Log   LogConfig   `toml:"log"`
	LM    LMConfig    `toml:"lm"`
	State StateConfig `toml:"state"`
	CLI   CliConfig   `toml:"cli"`
}

// LogConfig controls structured log verbosity.
type LogConfig struct {
	Level string `toml:"level"` // debug|info|warning|error
}

// LMConfig points at the background prediction service.
type LMConfig struct {
	Endpoint string `toml:"endpoint"`
	Model    string `toml:"model"`
}

// StateConfig locates persisted snapshots and telemetry logs.
type StateConfig struct {
	Dir string `toml:"dir"`
}

// CliConfig holds cli debug-shell options.
type CliConfig struct {
	DefaultLimit int `toml:"default_limit"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		LM: LMConfig{
			Endpoint: "http://localhost:11434",
			Model:    "tinyllama",
		},
		State: StateConfig{
			Dir: "", // resolved at runtime by internal/utils.PathResolver.GetStateDir
		},
		CLI: CliConfig{
			DefaultLimit: 8,
		},
	}
}

// InitConfig loads config from file or creates default if missing.
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, err
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			return nil, err
		}
		log.Debugf("Created default config file at: ( %s )", configPath)
		return config, nil
	}
	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config, using defaults: %v", err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file.
func LoadConfig(configPath string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		log.Errorf("Failed to decode config file: %v", err)
		return nil, err
	}
	return &config, nil
}

// SaveConfig saves into a TOML file.
func SaveConfig(config *Config, configPath string) error {
	file, err := os.Create(configPath)
	if err != nil {
		log.Errorf("Failed to create config file: %v", err)
		return err
	}
	defer file.Close()
	encoder := toml.NewEncoder(file)
	return encoder.Encode(config)
}

// Update changes the config values and saves to file.
func (c *Config) Update(configPath string, logLevel *string, lmEndpoint, lmModel *string) error {
	if logLevel != nil {
		c.Log.Level = *logLevel
	}
	if lmEndpoint != nil {
		c.LM.Endpoint = *lmEndpoint
	}
	if lmModel != nil {
		c.LM.Model = *lmModel
	}
	return SaveConfig(c, configPath)
}
