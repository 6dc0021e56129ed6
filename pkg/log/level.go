package log

import (
	"fmt"
	"strings"
)

// Level is the severity of an event.
type Level uint8

const (
	LevelDebug Level = 0
	LevelInfo  Level = 1
	LevelWarn  Level = 2
	LevelError Level = 3
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name (case-insensitive).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level %q (valid: debug, info, warn, error)", s)
	}
}

// LevelFilter forwards events at or above a minimum level to another logger.
type LevelFilter struct {
	min  Level
	next Logger
}

// NewLevelFilter creates a LevelFilter. A nil next logger discards everything.
func NewLevelFilter(min Level, next Logger) *LevelFilter {
	if next == nil {
		next = NoopLogger{}
	}
	return &LevelFilter{min: min, next: next}
}

// Enabled reports whether events at level l are forwarded.
func (f *LevelFilter) Enabled(l Level) bool {
	return l >= f.min
}

// Log forwards the event if its level is enabled.
func (f *LevelFilter) Log(event Event) {
	if f.Enabled(event.Level) {
		f.next.Log(event)
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*LevelFilter)(nil)
