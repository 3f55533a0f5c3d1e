// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the coauthor-graph CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/coauthor-graph/internal/config"
	"github.com/pdiddy/coauthor-graph/internal/graphml"
	"github.com/pdiddy/coauthor-graph/internal/secrets"
	"github.com/pdiddy/coauthor-graph/internal/source"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// v holds settings from the config file, .env, the environment and
	// bound flags.
	v = viper.New()

	// appConfig is the validated configuration for the running command.
	appConfig types.Config

	logger = slog.New(slog.DiscardHandler)
)

// rootCmd is the base command for the coauthor-graph CLI.
var rootCmd = &cobra.Command{
	Use:   "coauthor-graph",
	Short: "Parse, store and serve co-authorship graphs from GraphML",
	Long: `coauthor-graph loads a co-authorship graph (researchers, publications and
publishers) from a GraphML document, repairing truncated or malformed input,
and serves it to an interactive force-directed viewer.

The source is a local file or an http(s) URL, optionally gzipped. Parsed
graphs can be inspected, searched, rendered to a standalone HTML page, or
imported into a local SQLite store for full-text search.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./coauthor-graph.yaml or ~/.config/coauthor-graph/coauthor-graph.yaml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of secret files")
	rootCmd.PersistentFlags().String("source", "", "GraphML source: file path or http(s) URL (default from config)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	v.BindPFlag("source.location", rootCmd.PersistentFlags().Lookup("source"))
	v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// setup loads configuration, builds the logger and resolves secrets.
func setup(cmd *cobra.Command) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	used, err := config.Init(v, cfgFile)
	if err != nil {
		return err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	logger = config.NewLogger(cfg.Log, cmd.ErrOrStderr())
	if used != "" {
		logger.Debug("using config file", "path", used)
	}

	secretsDir, _ := cmd.Flags().GetString("secrets-dir")
	s, err := secrets.Load(secretsDir, logger)
	if err != nil {
		return err
	}
	if len(s) > 0 {
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		logger.Debug("loaded secrets", "keys", keys)
	}
	if cfg.Source.Token == "" {
		cfg.Source.Token = s.Get(secrets.SourceToken, "")
	}

	appConfig = cfg
	return nil
}

// sourceConfig returns the configured source, with location overriding
// the configured location when set.
func sourceConfig(location string) types.SourceConfig {
	cfg := appConfig.Source
	if location != "" {
		cfg.Location = location
	}
	return cfg
}

// readSource fetches the GraphML text at location (or the configured source).
func readSource(ctx context.Context, location string) ([]byte, error) {
	return source.Fetch(ctx, nil, sourceConfig(location), logger)
}

// loadGraph fetches and parses the GraphML text at location.
func loadGraph(ctx context.Context, location string) (types.GraphDocument, error) {
	text, err := readSource(ctx, location)
	if err != nil {
		return types.GraphDocument{}, err
	}
	doc, err := parser().Parse(string(text))
	if err != nil {
		return types.GraphDocument{}, fmt.Errorf("parsing %s: %w", sourceConfig(location).Location, err)
	}
	return doc, nil
}

func parser() graphml.Parser {
	return graphml.Parser{Logger: logger}
}

// locationArg returns the first positional argument, or "".
func locationArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
