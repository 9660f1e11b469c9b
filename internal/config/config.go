// Package config handles PulseMind configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration
type Config struct {
	// Paths
	DataDir string `json:"data_dir"`

	// Server
	Server ServerConfig `json:"server"`

	// Companion device bridge
	Bridge BridgeConfig `json:"bridge"`

	// Scoring pipeline
	Scoring ScoringConfig `json:"scoring"`

	// Journal reminder
	Reminder ReminderConfig `json:"reminder"`

	// Features
	Features FeatureConfig `json:"features"`
}

// ServerConfig for the HTTP API server
type ServerConfig struct {
	Port int    `json:"port"`
	Host string `json:"host"`
}

// BridgeConfig for the companion-device WebSocket bridge
type BridgeConfig struct {
	Port int `json:"port"`
}

// ScoringConfig for the stress-score pipeline
type ScoringConfig struct {
	// SettleDelay is how long the pipeline waits after the last channel
	// update before committing a snapshot to a score computation.
	SettleDelay time.Duration `json:"settle_delay"`

	// OxygenPenaltyCap bounds the low-SpO2 penalty, in score points.
	OxygenPenaltyCap float64 `json:"oxygen_penalty_cap"`
}

// ReminderConfig for the daily journal reminder
type ReminderConfig struct {
	Enabled bool   `json:"enabled"`
	At      string `json:"at"` // "HH:MM" local time
}

// FeatureConfig for feature flags
type FeatureConfig struct {
	EnableBridge   bool `json:"enable_bridge"`
	EnableReminder bool `json:"enable_reminder"`
	DebugMode      bool `json:"debug_mode"`
}

// Default returns default configuration
func Default() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		DataDir: filepath.Join(home, ".pulsemind"),
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Bridge: BridgeConfig{
			Port: 8090,
		},
		Scoring: ScoringConfig{
			SettleDelay:      1200 * time.Millisecond,
			OxygenPenaltyCap: 7.5,
		},
		Reminder: ReminderConfig{
			Enabled: true,
			At:      "20:00",
		},
		Features: FeatureConfig{
			EnableBridge:   true,
			EnableReminder: true,
			DebugMode:      false,
		},
	}
}

// Load loads config from file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = filepath.Join(cfg.DataDir, "config.json")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves config to file
func (c *Config) Save(path string) error {
	if path == "" {
		path = filepath.Join(c.DataDir, "config.json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
