package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileGivesDefaults(t *testing.T) {
	t.Setenv("EASYMAIL_HOST", "")
	t.Setenv("EASYMAIL_API_URL", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.API.Host)
	assert.Empty(t, cfg.API.BaseURL)
	assert.Equal(t, 60, cfg.API.TimeoutSec)
	assert.Equal(t, 10, cfg.Inbox.PageSize)
	assert.Equal(t, 120, cfg.Inbox.PollIntervalSec)
	assert.Equal(t, 10, cfg.Contacts.PerPage)
	assert.Equal(t, 10, cfg.Chats.PerPage)
	assert.Equal(t, "normal", cfg.Compose.DefaultTone)
	assert.Equal(t, "medium", cfg.Compose.DefaultLength)
	assert.Equal(t, 2, cfg.Compose.RevealIntervalMs)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`api:
  host: mail.example.com
  timeout_sec: 15
contacts:
  per_page: 0
compose:
  default_tone: friendly
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	t.Setenv("EASYMAIL_HOST", "")
	t.Setenv("EASYMAIL_API_URL", "")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "mail.example.com", cfg.API.Host)
	assert.Equal(t, 15, cfg.API.TimeoutSec)
	assert.Equal(t, 10, cfg.Contacts.PerPage, "non-positive page size falls back")
	assert.Equal(t, "friendly", cfg.Compose.DefaultTone)
	assert.Equal(t, "medium", cfg.Compose.DefaultLength)

	t.Setenv("EASYMAIL_API_URL", "http://127.0.0.1:9000/api")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/api", cfg.API.BaseURL)
}

func TestLoadConfigRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	t.Setenv("EASYMAIL_HOST", "")
	t.Setenv("EASYMAIL_API_URL", "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultAppConfig()
	cfg.API.Host = "mail.example.com"
	cfg.Inbox.PageSize = 25
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "mail.example.com", loaded.API.Host)
	assert.Equal(t, 25, loaded.Inbox.PageSize)
	assert.Equal(t, cfg.Compose, loaded.Compose)
}
