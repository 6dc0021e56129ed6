package commands

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmsattr/cmsattr-go/pkg/log"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, log.LevelInfo, cfg.Level())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cms-attrs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
event_log: /tmp/events.alog
default_template_dir: /etc/cms-attrs/templates
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/events.alog", cfg.EventLog)
	assert.Equal(t, "/etc/cms-attrs/templates", cfg.TemplateDir)
	assert.Equal(t, "cms-attrs.db", cfg.StorePath, "unset keys keep defaults")
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("log_level: loud\n"), 0644))
	_, err = LoadConfig(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown level")

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("log_level: [\n"), 0644))
	_, err = LoadConfig(broken)
	assert.Error(t, err)
}

func TestEventLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.alog")
	cfg := Config{LogLevel: "warn", EventLog: path}

	var buf bytes.Buffer
	logger, closeFn, err := cfg.EventLogger(cfg.NewLogger(&buf))
	require.NoError(t, err)

	ts := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	logger.Log(log.Event{Timestamp: ts, SetID: "s", Level: log.LevelInfo, Category: log.CategoryMutation,
		Mutation: &log.MutationEvent{OID: "1.2.3"}})
	logger.Log(log.Event{Timestamp: ts, SetID: "s", Level: log.LevelError, Category: log.CategoryError,
		Error: &log.ErrorEventData{Message: "boom"}})
	require.NoError(t, closeFn())

	assert.True(t, strings.Contains(buf.String(), "boom"))
	assert.False(t, strings.Contains(buf.String(), "1.2.3"))

	r, err := log.NewReader(path)
	require.NoError(t, err)
	defer r.Close()
	e, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, log.CategoryError, e.Category)
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}
