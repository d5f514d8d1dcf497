package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DRAWBRIDGE_DB_PATH", "")
	t.Setenv("DRAWBRIDGE_LOG_LEVEL", "")
	t.Setenv("DRAWBRIDGE_MODEL", "")

	cfg := loadConfig()
	assert.NotEmpty(t, cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Zero(t, cfg.RetentionDays)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("DRAWBRIDGE_DB_PATH", "/tmp/custom.db")
	t.Setenv("DRAWBRIDGE_LOG_LEVEL", "debug")
	t.Setenv("DRAWBRIDGE_MODEL", "gemini-2.5-pro")
	t.Setenv("DRAWBRIDGE_RETENTION_DAYS", "30")

	cfg := loadConfig()
	assert.Equal(t, "/tmp/custom.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
	assert.Equal(t, 30, cfg.RetentionDays)
}

func TestLoadConfigBadRetentionIgnored(t *testing.T) {
	t.Setenv("DRAWBRIDGE_RETENTION_DAYS", "soon")

	cfg := loadConfig()
	assert.Zero(t, cfg.RetentionDays)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "WARN", parseLevel("warn").String())
	assert.Equal(t, "ERROR", parseLevel("error").String())
	assert.Equal(t, "INFO", parseLevel("").String())
	assert.Equal(t, "INFO", parseLevel("verbose").String())
}
