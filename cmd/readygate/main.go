// Package main implements the readygate CLI for workflow readiness checks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aetherlight/readygate/internal/catalog"
	"github.com/aetherlight/readygate/internal/config"
	"github.com/aetherlight/readygate/internal/engine"
	"github.com/aetherlight/readygate/internal/gaplog"
	"github.com/aetherlight/readygate/internal/gitprobe"
	"github.com/aetherlight/readygate/internal/logging"
	"github.com/aetherlight/readygate/internal/scoring"
	"github.com/aetherlight/readygate/internal/validator"
)

var (
	// configPath is the --config flag value.
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "readygate",
	Short: "Workflow readiness and gap detection engine",
	Long: `readygate gates development operations behind readiness checks.

Before an operation proceeds (writing code, planning a sprint, publishing a
release, pushing, running tests) readygate evaluates its prerequisites,
scores task confidence, detects systemic gaps, and decides whether the
operation needs explicit human approval.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/readygate/config.yaml)")
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(gapsCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup loads configuration and builds the logger.
func setup() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(&logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// appDeps holds the wired collaborators a command may need beyond the
// engine itself.
type appDeps struct {
	patterns *catalog.Catalog
	agents   *catalog.Catalog
	sink     *gaplog.Logger
}

// buildEngine wires the engine with its filesystem-backed collaborators.
// The returned deps' gap logger must be closed by the caller.
func buildEngine(cfg *config.Config, log *logging.Logger, workingDir string) (*engine.Engine, *appDeps, error) {
	patterns, err := catalog.New(cfg.Catalog.PatternsDir, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load pattern catalog: %w", err)
	}
	agents, err := catalog.New(cfg.Catalog.AgentsDir, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load agent catalog: %w", err)
	}

	sink, err := gaplog.Open(cfg.GapLog.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open gap log: %w", err)
	}

	if workingDir == "" {
		workingDir, _ = os.Getwd()
	}

	eng := engine.New(engine.Options{
		Scorer:              scoring.New(cfg.Catalog.TasksDir, patterns, agents, cfg.Engine.ConfidenceThreshold),
		Validator:           validator.New(),
		Git:                 gitprobe.New(workingDir),
		Patterns:            patterns,
		Agents:              agents,
		GapSink:             sink,
		Logger:              log,
		CheckTimeout:        cfg.Engine.CheckTimeout.Duration(),
		ConfidenceThreshold: cfg.Engine.ConfidenceThreshold,
		CacheTTL:            cfg.Engine.CacheTTL.Duration(),
		ProtectedBranch:     cfg.Engine.ProtectedBranch,
	})
	return eng, &appDeps{patterns: patterns, agents: agents, sink: sink}, nil
}
