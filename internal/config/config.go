package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/notifyd/internal/history"
)

const appName = "notifyd"

// Config is the notifyd configuration.
type Config struct {
	Notifications NotificationsConfig `koanf:"notifications"`
	History       HistoryConfig       `koanf:"history"`
	Log           LogConfig           `koanf:"log"`
}

// NotificationsConfig holds the popup behaviour.
type NotificationsConfig struct {
	PopupTimeout   int32 `koanf:"popup_timeout"`    // ms used when a sender asks for the default (default: 5000)
	MaxPopupsCount int   `koanf:"max_popups_count"` // 0 = unlimited (default: 3)
	DND            bool  `koanf:"dnd"`              // do not disturb: no new popups
	AutoDismiss    bool  `koanf:"auto_dismiss"`     // dismiss popups when their timeout elapses
	MaxIconSize    int   `koanf:"max_icon_size"`    // inline images are downscaled to fit (default: 256, 0 = keep)
}

// HistoryConfig holds the persistence locations.
type HistoryConfig struct {
	Path     string `koanf:"path"`      // history file (default: $XDG_CACHE_HOME/notifyd/notifications.json)
	ImageDir string `koanf:"image_dir"` // decoded inline images (default: $XDG_CACHE_HOME/notifyd/images)
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `koanf:"level"`       // debug, info, warn, error (default: info)
	Development bool   `koanf:"development"` // human readable console output
}

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	return &Config{
		Notifications: NotificationsConfig{
			PopupTimeout:   5000,
			MaxPopupsCount: 3,
			MaxIconSize:    256,
		},
		History: HistoryConfig{
			Path:     history.DefaultPath(),
			ImageDir: history.DefaultImageDir(),
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the configuration from the standard locations.
func Load() (*Config, error) {
	return LoadFrom(Paths()...)
}

// LoadFrom reads the given files in order (last wins). Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.History.Path = expandPath(cfg.History.Path)
	cfg.History.ImageDir = expandPath(cfg.History.ImageDir)

	if cfg.Notifications.PopupTimeout < 0 {
		cfg.Notifications.PopupTimeout = Default().Notifications.PopupTimeout
	}
	if cfg.Notifications.MaxPopupsCount < 0 {
		cfg.Notifications.MaxPopupsCount = 0
	}
	if cfg.Notifications.MaxIconSize < 0 {
		cfg.Notifications.MaxIconSize = 0
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Paths returns the configuration files in order of priority (last wins).
func Paths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/notifyd/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

// ActivePath returns the highest priority file that exists, or "".
func ActivePath(paths []string) string {
	for i := len(paths) - 1; i >= 0; i-- {
		if _, err := os.Stat(paths[i]); err == nil {
			return paths[i]
		}
	}
	return ""
}

// Watch reloads the configuration from paths whenever the active file
// changes. The returned function stops watching.
func Watch(paths []string, onChange func(*Config, error)) (func() error, error) {
	active := ActivePath(paths)
	if active == "" {
		return func() error { return nil }, nil
	}

	fp := file.Provider(active)
	err := fp.Watch(func(_ any, err error) {
		if err != nil {
			onChange(nil, err)
			return
		}
		onChange(LoadFrom(paths...))
	})
	if err != nil {
		return nil, err
	}
	return fp.Unwatch, nil
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
