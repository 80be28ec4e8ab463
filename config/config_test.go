package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whzard/punybuf/internal/bytesize"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)

	assert.Equal(t, uint64(maxUIntDefault), cfg.Limits.MaxUInt)
	assert.Equal(t, 64*bytesize.MiB, cfg.Limits.MaxBytesLen)
	assert.Equal(t, uint32(1<<20), cfg.Limits.MaxArrayItems)
	assert.Equal(t, 4*bytesize.MiB, cfg.Limits.MaxFrameSize)

	assert.Equal(t, "localhost:4317", cfg.Telemetry.Endpoint)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRate)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.NotEmpty(t, cfg.Telemetry.Profiling.ProfileTypes)

	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestApplyDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{Level: "debug", Format: "json", Output: "/var/log/punybuf.log"},
		Limits:  LimitsConfig{MaxUInt: 42, MaxArrayItems: 7},
	}
	ApplyDefaults(cfg)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/var/log/punybuf.log", cfg.Logging.Output)
	assert.Equal(t, uint64(42), cfg.Limits.MaxUInt)
	assert.Equal(t, uint32(7), cfg.Limits.MaxArrayItems)
	// Unset fields still get defaults.
	assert.NotZero(t, cfg.Limits.MaxBytesLen)
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "TRACE"
	err := Validate(cfg)
	require.Error(t, err)
}

func TestValidateRejectsZeroShutdownTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShutdownTimeout = 0
	err := Validate(cfg)
	require.Error(t, err)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "INFO", cfg.Logging.Level)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte(`
logging:
  level: warn
  format: json
  output: stderr
limits:
  max_bytes_len: "8MiB"
  max_frame_size: "2MiB"
telemetry:
  enabled: true
  sample_rate: 0.5
shutdown_timeout: 5s
`)
	require.NoError(t, os.WriteFile(path, yaml, 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "WARN", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, 8*bytesize.MiB, cfg.Limits.MaxBytesLen)
	assert.Equal(t, 2*bytesize.MiB, cfg.Limits.MaxFrameSize)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 0.5, cfg.Telemetry.SampleRate)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Logging.Level = "ERROR"

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ERROR", loaded.Logging.Level)
}
