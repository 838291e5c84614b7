package devframe

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devframe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
memory_limit_bytes: 1048576
gc_threshold_bytes: -1
parallelism: 4
log:
  level: debug
  format: json
`), 0o600))

	t.Setenv("DEVFRAME_PARALLELISM", "8")
	t.Setenv("DEVFRAME_LOG_LEVEL", "warn")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20), cfg.MemoryLimitBytes)
	assert.Equal(t, int64(-1), cfg.GCThresholdBytes)
	assert.Equal(t, 8, cfg.Parallelism)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	s, err := NewFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20), s.Stats().MemoryLimit)
	assert.Equal(t, 8, s.Engine().Parallelism())
	assert.True(t, s.Logger().Enabled(t.Context(), slog.LevelWarn))
	assert.False(t, s.Logger().Enabled(t.Context(), slog.LevelInfo))
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("DEVFRAME_MEMORY_LIMIT_BYTES", "-5")
	_, err = LoadConfig("")
	assert.ErrorIs(t, err, ErrArgument)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"text info", Config{Log: LogConfig{Level: "info", Format: "text"}}, false},
		{"bad level", Config{Log: LogConfig{Level: "loud"}}, true},
		{"bad format", Config{Log: LogConfig{Level: "info", Format: "xml"}}, true},
		{"negative transfer", Config{TransferLimitBytesPerSec: -1}, true},
		{"negative capacity", Config{DeviceCapacityBytes: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrArgument)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_DeviceCapacity(t *testing.T) {
	s, err := NewFromConfig(Config{DeviceCapacityBytes: 128, GCThresholdBytes: -1})
	require.NoError(t, err)
	assert.Equal(t, "host", s.Device().Runtime().Name())

	_, err = s.Allocate(t.Context(), 256)
	assert.ErrorIs(t, err, ErrAllocation)
	assert.Zero(t, s.Stats().MemoryUsage)
}
