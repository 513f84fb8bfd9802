// Package config loads scribe configuration from file, environment, and
// defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for scribe.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Session SessionConfig `mapstructure:"session"`
	OCR     OCRConfig     `mapstructure:"ocr"`
	Render  RenderConfig  `mapstructure:"render"`
}

// StorageConfig holds the document store settings.
type StorageConfig struct {
	DataDir     string        `mapstructure:"data_dir"`
	MaxBlobSize int64         `mapstructure:"max_blob_size"`
	LockWait    time.Duration `mapstructure:"lock_wait"`
}

// SessionConfig holds the in-memory arena settings.
type SessionConfig struct {
	ArenaSize int `mapstructure:"arena_size"`
}

// OCRConfig holds text recognition settings.
type OCRConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	Language string        `mapstructure:"language"`
}

// RenderConfig holds preview rendering settings.
type RenderConfig struct {
	DefaultZoom float64 `mapstructure:"default_zoom"`
}

// Load loads configuration from file, env, and defaults. An empty
// configPath means defaults plus environment only; an empty dataDir
// falls back to the platform data directory.
func Load(configPath, dataDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if dataDir == "" {
		dataDir = defaultDataDir()
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	v.Set("storage.data_dir", dataDir)

	if configPath == "" {
		configPath = filepath.Join(dataDir, "scribe.yaml")
	}
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// Environment variables (SCRIBE_STORAGE_MAX_BLOB_SIZE, ...)
	v.SetEnvPrefix("SCRIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.max_blob_size", int64(50*1024*1024))
	v.SetDefault("storage.lock_wait", 5*time.Second)

	v.SetDefault("session.arena_size", 16)

	v.SetDefault("ocr.timeout", 60*time.Second)
	v.SetDefault("ocr.language", "eng")

	v.SetDefault("render.default_zoom", 2.0)
}

func validate(cfg *Config) error {
	if cfg.Session.ArenaSize < 1 {
		return fmt.Errorf("session.arena_size must be at least 1, got %d", cfg.Session.ArenaSize)
	}
	if cfg.Render.DefaultZoom <= 0 {
		return fmt.Errorf("render.default_zoom must be positive, got %g", cfg.Render.DefaultZoom)
	}
	if cfg.Storage.LockWait <= 0 {
		return fmt.Errorf("storage.lock_wait must be positive, got %s", cfg.Storage.LockWait)
	}
	return nil
}

func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "scribe")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".local", "share", "scribe")
}
