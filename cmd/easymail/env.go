package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/nhle/easymail/internal/api"
	"github.com/nhle/easymail/internal/app"
	"github.com/nhle/easymail/internal/credential"
	"github.com/nhle/easymail/internal/model"
	"github.com/nhle/easymail/internal/store"
)

// env holds everything a command needs to talk to the backend.
type env struct {
	cfg    *model.AppConfig
	client *api.Client
	store  *store.SQLiteStore
	vault  *credential.Vault
	log    zerolog.Logger
}

// openEnv loads the configuration, opens the local state and restores a
// remembered session.
func openEnv(flags *rootFlags, logger zerolog.Logger) (*env, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := model.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.host != "" {
		cfg.API.Host = flags.host
		cfg.API.BaseURL = ""
	}

	baseURL := cfg.API.BaseURL
	if baseURL == "" {
		baseURL = api.BaseURLForHost(cfg.API.Host)
	}
	client, err := api.NewClient(baseURL, time.Duration(cfg.API.TimeoutSec)*time.Second)
	if err != nil {
		return nil, err
	}

	dir := model.ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory %s: %w", dir, err)
	}
	s, err := store.NewSQLiteStore(filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, client: client, store: s, log: logger}

	vault, err := credential.Open(dir)
	if err != nil {
		logger.Warn().Err(err).Msg("Keyring unavailable, sessions will not be remembered")
		return e, nil
	}
	e.vault = vault

	cookies, err := vault.LoadSession(client.BaseURL())
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to restore session")
	} else if len(cookies) > 0 {
		client.SetCookies(cookies)
	}
	return e, nil
}

// Close releases the local state database.
func (e *env) Close() error {
	return e.store.Close()
}

// consoleLogger writes human readable log lines to stderr for the
// one-shot commands.
func consoleLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zerolog.WarnLevel).
		With().Timestamp().Logger()
}

// runTUI starts the terminal UI. Logs go to a file because the terminal
// belongs to the UI.
func runTUI(flags *rootFlags) error {
	dir := model.ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory %s: %w", dir, err)
	}
	f, err := tea.LogToFile(filepath.Join(dir, "easymail.log"), "easymail")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	logger := zerolog.New(f).With().Timestamp().Logger()
	logger.Info().Str("config", flags.configPath).Msg("Starting easymail")

	e, err := openEnv(flags, logger)
	if err != nil {
		return err
	}
	defer e.Close()

	m := app.New(app.Deps{
		Config: e.cfg,
		Client: e.client,
		Store:  e.store,
		Vault:  e.vault,
		Logger: &logger,
	})

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
