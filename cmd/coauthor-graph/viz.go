// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdiddy/coauthor-graph/internal/viz"
)

var vizCmd = &cobra.Command{
	Use:   "viz [file|url]",
	Short: "Render the graph to a standalone interactive HTML page",
	Long: `Viz parses the graph and writes a self-contained HTML page with the
graph data embedded. The page draws a force-directed layout; hover a node
for its details and a link for the shared publications.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runViz,
}

func runViz(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	title, _ := cmd.Flags().GetString("title")

	view := appConfig.View
	if cmd.Flags().Changed("layout") {
		view.Layout, _ = cmd.Flags().GetString("layout")
	}
	if cmd.Flags().Changed("researchers-only") {
		view.ResearchersOnly, _ = cmd.Flags().GetBool("researchers-only")
	}

	doc, err := loadGraph(cmd.Context(), locationArg(args))
	if err != nil {
		return err
	}
	if view.ResearchersOnly {
		doc = viz.ResearcherView(doc)
	}

	page, err := viz.GenerateHTML(doc, viz.HTMLOptions{Title: title, View: view})
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, []byte(page), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %d nodes, %d edges)\n",
		output, humanize.Bytes(uint64(len(page))), len(doc.Nodes), len(doc.Links))
	return nil
}

func init() {
	vizCmd.Flags().StringP("output", "o", "graph.html", "output HTML file")
	vizCmd.Flags().String("title", "", "page title")
	vizCmd.Flags().String("layout", "", "initial layout: force, circle, grid")
	vizCmd.Flags().Bool("researchers-only", false, "render researchers and the links between them only")

	rootCmd.AddCommand(vizCmd)
}
