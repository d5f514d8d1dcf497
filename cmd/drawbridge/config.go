package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all drawbridge server configuration.
// Priority: env vars > settings.json > defaults.
type Config struct {
	DBPath   string `json:"db_path"`
	LogLevel string `json:"log_level"`
	Model    string `json:"model"`

	// RetentionDays prunes archived sessions older than this many days at
	// startup. Zero keeps everything.
	RetentionDays int `json:"retention_days"`
}

func defaultConfig() Config {
	return Config{
		DBPath:   filepath.Join(drawbridgeDir(), "history.db"),
		LogLevel: "info",
	}
}

func drawbridgeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".drawbridge"
	}
	return filepath.Join(home, ".drawbridge")
}

func settingsPath() string {
	return filepath.Join(drawbridgeDir(), "settings.json")
}

func loadConfig() Config {
	cfg := defaultConfig()

	// Layer 2: settings.json (ignore if missing).
	if data, err := os.ReadFile(settingsPath()); err == nil {
		_ = json.Unmarshal(data, &cfg)
	}

	// Layer 3: env vars override.
	if v := os.Getenv("DRAWBRIDGE_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("DRAWBRIDGE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DRAWBRIDGE_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("DRAWBRIDGE_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days >= 0 {
			cfg.RetentionDays = days
		}
	}

	return cfg
}
