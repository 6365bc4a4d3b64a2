package main

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds flowctl configuration.
// Priority: env vars > settings.json > defaults.
type Config struct {
	DBPath      string `json:"db_path"`
	PostgresDSN string `json:"postgres_dsn"` // when set, Postgres is used instead of libSQL
	LogLevel    string `json:"log_level"`
	LogFormat   string `json:"log_format"` // "text" or "json"
}

func defaultConfig() Config {
	return Config{
		DBPath:    filepath.Join(flowDir(), "flows.db"),
		LogLevel:  "info",
		LogFormat: "text",
	}
}

func flowDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nurtureflow"
	}
	return filepath.Join(home, ".nurtureflow")
}

func settingsPath() string {
	return filepath.Join(flowDir(), "settings.json")
}

func loadConfig() Config {
	cfg := defaultConfig()

	// Layer 2: settings.json (ignore if missing).
	if data, err := os.ReadFile(settingsPath()); err == nil {
		_ = json.Unmarshal(data, &cfg)
	}

	// Layer 3: env vars override.
	if v := os.Getenv("NURTUREFLOW_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("NURTUREFLOW_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("NURTUREFLOW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("NURTUREFLOW_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}
