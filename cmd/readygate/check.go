package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aetherlight/readygate/internal/engine"
)

var (
	checkType        string
	checkContextPath string
	checkWorkingDir  string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a workflow readiness check",
	Long: `Run a readiness check for a workflow type and print the result as JSON.

The workflow context is read from a JSON file, or from stdin with "-".
Exits 2 when the check signals a critical junction.

Examples:
  # Check code readiness with context from a file
  readygate check --type code --context ctx.json

  # Check publish readiness with context from stdin
  echo '{"tests_passing":true}' | readygate check --type publish --context -`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkType, "type", "", "workflow type (code|sprint|publish|docs|git|test)")
	checkCmd.Flags().StringVar(&checkContextPath, "context", "", "context JSON file, or - for stdin")
	checkCmd.Flags().StringVar(&checkWorkingDir, "dir", "", "working directory for git and test checks (default cwd)")
	_ = checkCmd.MarkFlagRequired("type")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	wctx, err := loadContext(checkContextPath)
	if err != nil {
		return err
	}
	if wctx.WorkingDir == "" {
		wctx.WorkingDir = checkWorkingDir
	}

	eng, deps, err := buildEngine(cfg, log, checkWorkingDir)
	if err != nil {
		return err
	}
	defer func() { _ = deps.sink.Close() }()

	result, err := eng.CheckWorkflow(cmd.Context(), engine.WorkflowType(checkType), wctx)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if result.CriticalJunction {
		os.Exit(2)
	}
	return nil
}

// loadContext reads the workflow context from a JSON file or stdin. An empty
// path yields an empty context.
func loadContext(path string) (*engine.Context, error) {
	if path == "" {
		return &engine.Context{}, nil
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read context: %w", err)
	}

	var wctx engine.Context
	if err := json.Unmarshal(data, &wctx); err != nil {
		return nil, fmt.Errorf("failed to parse context JSON: %w", err)
	}
	return &wctx, nil
}
