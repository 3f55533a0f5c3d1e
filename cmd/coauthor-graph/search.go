// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coauthor-graph/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find nodes by label in the loaded graph",
	Long: `Search loads the graph from --source (or the configured source) and
ranks nodes by how well their display label matches the query: exact
matches first, then prefixes, then substrings. Matching ignores case.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Search
	if cmd.Flags().Changed("max-results") {
		cfg.MaxResults, _ = cmd.Flags().GetInt("max-results")
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	doc, err := loadGraph(cmd.Context(), "")
	if err != nil {
		return err
	}

	results := search.Search(doc, args[0], cfg)
	if jsonOutput {
		return search.FormatJSON(results, cmd.OutOrStdout())
	}
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No results found.")
		return nil
	}
	search.FormatTable(results, cmd.OutOrStdout())
	return nil
}

func init() {
	searchCmd.Flags().Int("max-results", 0, "maximum results (default from config)")
	searchCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(searchCmd)
}
