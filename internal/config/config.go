// Package config provides configuration loading for readygate.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the full readygate configuration.
type Config struct {
	Engine  EngineConfig  `koanf:"engine"`
	Catalog CatalogConfig `koanf:"catalog"`
	GapLog  GapLogConfig  `koanf:"gap_log"`
	Logging LoggingConfig `koanf:"logging"`
	Server  ServerConfig  `koanf:"server"`
}

// EngineConfig tunes the readiness engine.
type EngineConfig struct {
	// CheckTimeout bounds a full readiness check.
	CheckTimeout Duration `koanf:"check_timeout"`

	// ConfidenceThreshold is the critical-junction confidence bound.
	ConfidenceThreshold float64 `koanf:"confidence_threshold"`

	// CacheTTL bounds result cache entries; zero caches for the process
	// lifetime.
	CacheTTL Duration `koanf:"cache_ttl"`

	// ProtectedBranch is the branch git operations must not target.
	ProtectedBranch string `koanf:"protected_branch"`
}

// CatalogConfig locates pattern, agent, and task definitions.
type CatalogConfig struct {
	PatternsDir string `koanf:"patterns_dir"`
	AgentsDir   string `koanf:"agents_dir"`
	TasksDir    string `koanf:"tasks_dir"`

	// Watch re-indexes catalogs on directory changes.
	Watch bool `koanf:"watch"`
}

// GapLogConfig locates the append-only gap log.
type GapLogConfig struct {
	Path string `koanf:"path"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// Default returns the built-in defaults. Paths are rooted under the user
// config directory (~/.config/readygate).
func Default() *Config {
	base := defaultBaseDir()
	return &Config{
		Engine: EngineConfig{
			CheckTimeout:        Duration(10 * time.Second),
			ConfidenceThreshold: 0.80,
			CacheTTL:            0,
			ProtectedBranch:     "main",
		},
		Catalog: CatalogConfig{
			PatternsDir: filepath.Join(base, "patterns"),
			AgentsDir:   filepath.Join(base, "agents"),
			TasksDir:    filepath.Join(base, "tasks"),
		},
		GapLog: GapLogConfig{
			Path: filepath.Join(base, "gaps.jsonl"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 9180,
		},
	}
}

func defaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".readygate")
	}
	return filepath.Join(home, ".config", "readygate")
}

// Validate checks invariants that would otherwise surface deep inside the
// engine.
func (c *Config) Validate() error {
	if c.Engine.CheckTimeout <= 0 {
		return fmt.Errorf("engine.check_timeout must be positive")
	}
	if c.Engine.ConfidenceThreshold <= 0 || c.Engine.ConfidenceThreshold > 1 {
		return fmt.Errorf("engine.confidence_threshold must be in (0, 1]")
	}
	if c.Engine.CacheTTL < 0 {
		return fmt.Errorf("engine.cache_ttl must not be negative")
	}
	if c.Engine.ProtectedBranch == "" {
		return fmt.Errorf("engine.protected_branch must not be empty")
	}
	if c.GapLog.Path == "" {
		return fmt.Errorf("gap_log.path must not be empty")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535")
	}
	return nil
}
