// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/pdiddy/coauthor-graph/internal/config"
	"github.com/pdiddy/coauthor-graph/internal/graphml"
	"github.com/pdiddy/coauthor-graph/internal/loader"
	"github.com/pdiddy/coauthor-graph/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive graph viewer over HTTP",
	Long: `Serve loads the graph from the configured source and serves the viewer
page, the graph as JSON, node search, connection summaries and Prometheus
metrics. With --watch a local source file is reloaded when it changes;
POST /api/reload reloads on demand.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	cfg.Log.Format, _ = cmd.Flags().GetString("log-format")
	log := config.NewLogger(cfg.Log, os.Stderr)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	l := loader.New(loader.Options{
		Fetch:   loader.SourceFetcher(nil, cfg.Source, log),
		Parser:  graphml.Parser{Logger: log},
		Metrics: loader.NewMetrics(reg),
		Logger:  log,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(l, reg, cfg, log).Run(ctx)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8090)")
	serveCmd.Flags().Bool("watch", false, "reload when the local source file changes")
	serveCmd.Flags().String("log-format", "json", "log format: text or json")

	v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	v.BindPFlag("source.watch", serveCmd.Flags().Lookup("watch"))

	rootCmd.AddCommand(serveCmd)
}
