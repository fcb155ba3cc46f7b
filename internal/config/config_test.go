package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 10*time.Second, cfg.Engine.CheckTimeout.Duration())
	assert.InDelta(t, 0.80, cfg.Engine.ConfidenceThreshold, 0.001)
	assert.Equal(t, "main", cfg.Engine.ProtectedBranch)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 9180, cfg.Server.Port)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Engine.CheckTimeout.Duration())
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
engine:
  check_timeout: 5s
  confidence_threshold: 0.9
  cache_ttl: 15m
  protected_branch: master
gap_log:
  path: /tmp/readygate/gaps.jsonl
logging:
  level: debug
  format: console
server:
  port: 9999
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Engine.CheckTimeout.Duration())
	assert.InDelta(t, 0.9, cfg.Engine.ConfidenceThreshold, 0.001)
	assert.Equal(t, 15*time.Minute, cfg.Engine.CacheTTL.Duration())
	assert.Equal(t, "master", cfg.Engine.ProtectedBranch)
	assert.Equal(t, "/tmp/readygate/gaps.jsonl", cfg.GapLog.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  check_timeout: 5s\n"), 0644))

	t.Setenv("READYGATE_ENGINE_CHECK_TIMEOUT", "3s")
	t.Setenv("READYGATE_ENGINE_PROTECTED_BRANCH", "trunk")
	t.Setenv("READYGATE_GAP_LOG_PATH", "/tmp/override.jsonl")
	t.Setenv("READYGATE_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Engine.CheckTimeout.Duration())
	assert.Equal(t, "trunk", cfg.Engine.ProtectedBranch)
	assert.Equal(t, "/tmp/override.jsonl", cfg.GapLog.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [broken\n"), 0644))

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  confidence_threshold: 1.5\n"), 0644))

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Engine.CheckTimeout = 0 },
			wantErr: "check_timeout",
		},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.Engine.ConfidenceThreshold = 1.2 },
			wantErr: "confidence_threshold",
		},
		{
			name:    "negative cache ttl",
			mutate:  func(c *Config) { c.Engine.CacheTTL = Duration(-time.Second) },
			wantErr: "cache_ttl",
		},
		{
			name:    "empty protected branch",
			mutate:  func(c *Config) { c.Engine.ProtectedBranch = "" },
			wantErr: "protected_branch",
		},
		{
			name:    "empty gap log path",
			mutate:  func(c *Config) { c.GapLog.Path = "" },
			wantErr: "gap_log.path",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	require.Error(t, d.UnmarshalText([]byte("not-a-duration")))
}
