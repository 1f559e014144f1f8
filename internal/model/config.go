package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// APIConfig holds the connection settings for the backend REST API.
type APIConfig struct {
	// Host is the public hostname the API is served from. The base URL
	// is derived from it when BaseURL is empty.
	Host string `mapstructure:"host" yaml:"host"`

	// BaseURL overrides the derived base URL when set.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds a single request. Zero disables the timeout.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// InboxConfig holds inbox paging and refresh settings.
type InboxConfig struct {
	PageSize        int `mapstructure:"page_size" yaml:"page_size"`
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// ListConfig holds the page size of a paginated backend list.
type ListConfig struct {
	PerPage int `mapstructure:"per_page" yaml:"per_page"`
}

// ComposeConfig holds defaults for the email generation flow.
type ComposeConfig struct {
	DefaultTone      string `mapstructure:"default_tone" yaml:"default_tone"`
	DefaultLength    string `mapstructure:"default_length" yaml:"default_length"`
	RevealIntervalMs int    `mapstructure:"reveal_interval_ms" yaml:"reveal_interval_ms"`
	ExportDir        string `mapstructure:"export_dir" yaml:"export_dir"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API      APIConfig     `mapstructure:"api" yaml:"api"`
	Inbox    InboxConfig   `mapstructure:"inbox" yaml:"inbox"`
	Contacts ListConfig    `mapstructure:"contacts" yaml:"contacts"`
	Chats    ListConfig    `mapstructure:"chats" yaml:"chats"`
	Compose  ComposeConfig `mapstructure:"compose" yaml:"compose"`
}

// ConfigDir returns ~/.config/easymail, the directory holding the
// config file, the state database and the log file.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "easymail")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/easymail/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

func defaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "easymail-drafts"
	}
	return filepath.Join(home, "easymail-drafts")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			Host:       "localhost",
			TimeoutSec: 60,
		},
		Inbox: InboxConfig{
			PageSize:        10,
			PollIntervalSec: 120,
		},
		Contacts: ListConfig{PerPage: 10},
		Chats:    ListConfig{PerPage: 10},
		Compose: ComposeConfig{
			DefaultTone:      "normal",
			DefaultLength:    "medium",
			RevealIntervalMs: 2,
			ExportDir:        defaultExportDir(),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
// Environment overrides are applied in both cases.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	def := DefaultAppConfig()
	v.SetDefault("api.host", def.API.Host)
	v.SetDefault("api.timeout_sec", def.API.TimeoutSec)
	v.SetDefault("inbox.page_size", def.Inbox.PageSize)
	v.SetDefault("inbox.poll_interval_sec", def.Inbox.PollIntervalSec)
	v.SetDefault("contacts.per_page", def.Contacts.PerPage)
	v.SetDefault("chats.per_page", def.Chats.PerPage)
	v.SetDefault("compose.default_tone", def.Compose.DefaultTone)
	v.SetDefault("compose.default_length", def.Compose.DefaultLength)
	v.SetDefault("compose.reveal_interval_ms", def.Compose.RevealIntervalMs)
	v.SetDefault("compose.export_dir", def.Compose.ExportDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			ApplyEnv(def)
			return def, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			ApplyEnv(def)
			return def, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Inbox.PageSize <= 0 {
		cfg.Inbox.PageSize = def.Inbox.PageSize
	}
	if cfg.Contacts.PerPage <= 0 {
		cfg.Contacts.PerPage = def.Contacts.PerPage
	}
	if cfg.Chats.PerPage <= 0 {
		cfg.Chats.PerPage = def.Chats.PerPage
	}

	ApplyEnv(cfg)
	return cfg, nil
}

// ApplyEnv overlays EASYMAIL_HOST and EASYMAIL_API_URL onto cfg.
func ApplyEnv(cfg *AppConfig) {
	if host := strings.TrimSpace(os.Getenv("EASYMAIL_HOST")); host != "" {
		cfg.API.Host = host
	}
	if url := strings.TrimSpace(os.Getenv("EASYMAIL_API_URL")); url != "" {
		cfg.API.BaseURL = url
	}
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("inbox", cfg.Inbox)
	v.Set("contacts", cfg.Contacts)
	v.Set("chats", cfg.Chats)
	v.Set("compose", cfg.Compose)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
