package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Log formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// ParseLevel parses a log level name.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level: unknown level %q", s)
	}
}

// NewLogger returns a logger writing to w. Its level is held by the
// returned LevelVar and may be changed while the logger is in use.
func NewLogger(c LogConfig, w io.Writer) (*slog.Logger, *slog.LevelVar, error) {
	lvl, err := ParseLevel(c.Level)
	if err != nil {
		return nil, nil, err
	}
	level := new(slog.LevelVar)
	level.Set(lvl)
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch c.Format {
	case FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	case FormatText:
		h = slog.NewTextHandler(w, opts)
	default:
		return nil, nil, fmt.Errorf("log.format: unknown format %q", c.Format)
	}
	return slog.New(h), level, nil
}

// WatchLevel re-reads the config file of v whenever it changes and applies
// a changed log.level to level. Other keys are not reloaded.
func WatchLevel(v *viper.Viper, level *slog.LevelVar, logger *slog.Logger) {
	v.OnConfigChange(func(fsnotify.Event) {
		ReloadLevel(v, level, logger)
	})
	v.WatchConfig()
}

// ReloadLevel applies the log.level currently held by v. An invalid level
// is logged and ignored.
func ReloadLevel(v *viper.Viper, level *slog.LevelVar, logger *slog.Logger) {
	lvl, err := ParseLevel(v.GetString("log.level"))
	if err != nil {
		logger.Warn("config reload ignored", "error", err)
		return
	}
	if lvl == level.Level() {
		return
	}
	level.Set(lvl)
	logger.Info("log level changed", "level", lvl.String())
}

// WriteYAML writes c as YAML.
func WriteYAML(w io.Writer, c *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("config: encoding yaml: %w", err)
	}
	return enc.Close()
}
