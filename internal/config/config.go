package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures quotebook's runtime settings.
type Config struct {
	DataDir        string
	Endpoint       string
	PublishURL     string
	Publish        bool
	SyncInterval   time.Duration
	RequestTimeout time.Duration
	RemoteCategory string
}

const (
	defaultConfigPath     = "~/.config/quotebook/config.toml"
	defaultDataDir        = "~/.local/share/quotebook"
	defaultEndpoint       = "https://jsonplaceholder.typicode.com/posts?_limit=5"
	defaultPublishURL     = "https://jsonplaceholder.typicode.com/posts"
	defaultSyncInterval   = 20 * time.Second
	defaultRequestTimeout = 5 * time.Second
	defaultRemoteCategory = "Server"
)

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.DataDir = mustExpand(cfg.DataDir)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		DataDir        string `toml:"data_dir"`
		Endpoint       string `toml:"endpoint"`
		PublishURL     string `toml:"publish_url"`
		Publish        *bool  `toml:"publish"`
		SyncInterval   string `toml:"sync_interval"`
		RequestTimeout string `toml:"request_timeout"`
		RemoteCategory string `toml:"remote_category"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.DataDir); v != "" {
		cfg.DataDir = v
	}
	cfg.DataDir = mustExpand(cfg.DataDir)

	if v := strings.TrimSpace(raw.Endpoint); v != "" {
		cfg.Endpoint = v
	}
	if v := strings.TrimSpace(raw.PublishURL); v != "" {
		cfg.PublishURL = v
	}
	if raw.Publish != nil {
		cfg.Publish = *raw.Publish
	}
	if v := strings.TrimSpace(raw.RemoteCategory); v != "" {
		cfg.RemoteCategory = v
	}

	if cfg.SyncInterval, err = parseDuration("sync_interval", raw.SyncInterval, defaultSyncInterval); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = parseDuration("request_timeout", raw.RequestTimeout, defaultRequestTimeout); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// DBPath returns the path to the durable quote database.
func (c Config) DBPath() string {
	return filepath.Join(c.dataDir(), "quotes.db")
}

// LogPath returns the path to the application log file.
func (c Config) LogPath() string {
	return filepath.Join(c.dataDir(), "quotebook.log")
}

func (c Config) dataDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir)
	}
	return c.DataDir
}

func defaults() Config {
	return Config{
		DataDir:        defaultDataDir,
		Endpoint:       defaultEndpoint,
		PublishURL:     defaultPublishURL,
		SyncInterval:   defaultSyncInterval,
		RequestTimeout: defaultRequestTimeout,
		RemoteCategory: defaultRemoteCategory,
	}
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse config: %s must be positive, got %s", field, trimmed)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
