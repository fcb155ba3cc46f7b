package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aetherlight/readygate/internal/gaplog"
)

var gapsLimit int

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Print recent entries from the gap log",
	Long: `Print the most recent gap records as JSON lines.

Examples:
  # Last 50 gaps (default)
  readygate gaps

  # Last 10 gaps
  readygate gaps --limit 10`,
	RunE: runGaps,
}

func init() {
	gapsCmd.Flags().IntVar(&gapsLimit, "limit", 50, "maximum number of records to print")
}

func runGaps(_ *cobra.Command, _ []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	records, err := gaplog.Tail(cfg.GapLog.Path, gapsLimit)
	if err != nil {
		return err
	}
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		fmt.Println(string(line))
	}
	return nil
}
