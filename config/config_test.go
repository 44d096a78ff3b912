package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().HTTPPort, cfg.HTTPPort)
}

func TestLoad_ReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_port: 9090
database_dsn: "postgres://example/paymentflow"
log_level: "debug"
metrics:
  enabled: false
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "postgres://example/paymentflow", cfg.DatabaseDSN)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_port: 9090\n"), 0644))

	t.Setenv("PAYMENTFLOW_HTTP_PORT", "7070")
	t.Setenv("PAYMENTFLOW_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.HTTPPort)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestWatcher_ReloadsLogLevelOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: \"info\"\n"), 0644))

	changes := make(chan string, 1)
	w, err := NewWatcher(path, "info", func(level string) {
		changes <- level
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("log_level: \"debug\"\n"), 0644))

	select {
	case level := <-changes:
		assert.Equal(t, "debug", level)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher to observe the change")
	}
}
