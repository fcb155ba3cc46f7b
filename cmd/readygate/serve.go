package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aetherlight/readygate/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the readiness engine over HTTP",
	Long: `Start the HTTP API.

Endpoints:
  POST /api/v1/checks   run a readiness check
  GET  /api/v1/gaps     read recent gap records
  GET  /health          liveness probe`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	eng, deps, err := buildEngine(cfg, log, "")
	if err != nil {
		return err
	}
	defer func() { _ = deps.sink.Close() }()

	server, err := httpapi.NewServer(eng, cfg.GapLog.Path, log, &httpapi.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Catalog.Watch {
		go func() { _ = deps.patterns.Watch(ctx) }()
		go func() { _ = deps.agents.Watch(ctx) }()
	}

	return server.Start(ctx)
}
