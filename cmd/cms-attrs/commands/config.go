// Package commands implements the cms-attrs CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cmsattr/cmsattr-go/pkg/log"
)

// Config holds settings shared by all commands. Values come from the YAML
// file named by -config and may be overridden by flags.
type Config struct {
	// LogLevel is the minimum level for operational and event logging.
	LogLevel string `yaml:"log_level"`

	// EventLog is the path of the CBOR event log (empty disables it).
	EventLog string `yaml:"event_log"`

	// StorePath is the bbolt database used by the store command.
	StorePath string `yaml:"store_path"`

	// TemplateDir is searched when a template is given by name.
	TemplateDir string `yaml:"default_template_dir"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		StorePath: "cms-attrs.db",
	}
}

// LoadConfig reads the YAML config at path over the defaults.
// An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured event level, defaulting to info.
func (c Config) Level() log.Level {
	l, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.LevelInfo
	}
	return l
}

// SlogLevel returns the slog level matching LogLevel.
func (c Config) SlogLevel() slog.Level {
	switch c.Level() {
	case log.LevelDebug:
		return slog.LevelDebug
	case log.LevelWarn:
		return slog.LevelWarn
	case log.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the slog logger for operational output on w.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.SlogLevel()}))
}

// EventLogger returns the event logger for builder events: the slog
// adapter, plus the CBOR file logger when EventLog is set, behind a level
// filter. The returned close function releases the file.
func (c Config) EventLogger(sl *slog.Logger) (log.Logger, func() error, error) {
	loggers := []log.Logger{log.NewSlogAdapter(sl)}
	closeFn := func() error { return nil }

	if c.EventLog != "" {
		fl, err := log.NewFileLogger(c.EventLog)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open event log: %w", err)
		}
		loggers = append(loggers, fl)
		closeFn = fl.Close
	}

	return log.NewLevelFilter(c.Level(), log.NewMultiLogger(loggers...)), closeFn, nil
}

var errMissingArg = errors.New("missing argument")
