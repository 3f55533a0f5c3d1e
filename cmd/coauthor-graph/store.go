// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdiddy/coauthor-graph/internal/graphstore"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the local graph store (import, list, search, export, delete)",
	Long: `Store keeps parsed graphs in a local SQLite database under
<data_dir>/index/graphs.db with an FTS5 index over node labels and details.
Use subcommands to import graphs, list them, search nodes, or export.`,
}

func openStore() (*graphstore.Store, error) {
	return graphstore.NewStore(appConfig.Store)
}

// resolveGraphID maps "latest" (or "") to the newest imported graph.
func resolveGraphID(ctx context.Context, store *graphstore.Store, id string) (string, error) {
	if id != "" && id != "latest" {
		return id, nil
	}
	rec, err := store.Latest(ctx)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// --- import subcommand ---

var storeImportCmd = &cobra.Command{
	Use:   "import [file|url]",
	Short: "Parse a GraphML document and import it into the store",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStoreImport,
}

func runStoreImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	location := sourceConfig(locationArg(args)).Location

	doc, err := loadGraph(ctx, location)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Import(ctx, location, doc)
	if err != nil {
		return err
	}
	logger.Info("imported graph", "id", rec.ID, "nodes", rec.NodeCount, "edges", rec.EdgeCount)
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %d nodes, %d edges\n", rec.ID, rec.NodeCount, rec.EdgeCount)
	return nil
}

// --- list subcommand ---

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported graphs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runStoreList,
}

func runStoreList(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	graphs, err := store.Graphs(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput {
		if graphs == nil {
			graphs = []graphstore.GraphRecord{}
		}
		return encodeJSON(cmd.OutOrStdout(), graphs)
	}
	formatGraphs(cmd.OutOrStdout(), graphs)
	return nil
}

func formatGraphs(w io.Writer, graphs []graphstore.GraphRecord) {
	if len(graphs) == 0 {
		fmt.Fprintln(w, "No graphs imported.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-14s  %7s  %7s  %s\n", "ID", "Imported", "Nodes", "Edges", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, g := range graphs {
		fmt.Fprintf(w, "%-36s  %-14s  %7d  %7d  %s\n",
			g.ID, humanize.Time(g.ImportedAt), g.NodeCount, g.EdgeCount, g.Source)
	}
	fmt.Fprintf(w, "\n%d graphs\n", len(graphs))
}

// --- search subcommand ---

var storeSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over stored nodes",
	Long: `Search matches each word of the query as a prefix against node labels
and details (names, titles, institutions, keywords) in every stored graph,
or in one graph with --graph. Results are ranked by FTS5 bm25.`,
	Args: cobra.ExactArgs(1),
	RunE: runStoreSearch,
}

func runStoreSearch(cmd *cobra.Command, args []string) error {
	nodeType, _ := cmd.Flags().GetString("type")
	graphID, _ := cmd.Flags().GetString("graph")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if graphID == "latest" {
		if graphID, err = resolveGraphID(ctx, store, graphID); err != nil {
			return err
		}
	}

	hits, err := store.SearchNodes(ctx, graphstore.NodeQuery{
		Query:      args[0],
		Type:       types.NodeType(nodeType),
		GraphID:    graphID,
		MaxResults: maxResults,
	})
	if err != nil {
		return err
	}
	if jsonOutput {
		if hits == nil {
			hits = []graphstore.NodeHit{}
		}
		return encodeJSON(cmd.OutOrStdout(), hits)
	}
	formatHits(cmd.OutOrStdout(), hits)
	return nil
}

func formatHits(w io.Writer, hits []graphstore.NodeHit) {
	if len(hits) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-12s  %-40s  %-20s  %s\n", "Rank", "Type", "Label", "Node", "Graph")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for i, h := range hits {
		label := h.Label
		if len(label) > 40 {
			label = label[:37] + "..."
		}
		id := h.ID
		if len(id) > 20 {
			id = id[:17] + "..."
		}
		fmt.Fprintf(w, "%-4d  %-12s  %-40s  %-20s  %s\n", i+1, h.Type, label, id, h.GraphID[:min(8, len(h.GraphID))])
	}
	fmt.Fprintf(w, "\n%d results\n", len(hits))
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export [graph-id|latest]",
	Short: "Export a stored graph to YAML or JSON",
	Long: `Export writes a stored graph (the latest import by default) with its
import record to <data_dir>/index/<id>.yaml or <id>.json.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	id, err := resolveGraphID(ctx, store, locationArg(args))
	if err != nil {
		return err
	}

	var path string
	switch format {
	case "yaml":
		path, err = store.ExportYAML(ctx, id)
	case "json":
		path, err = store.ExportJSON(ctx, id)
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", id, path)
	return nil
}

// --- delete subcommand ---

var storeDeleteCmd = &cobra.Command{
	Use:   "delete <graph-id>",
	Short: "Delete a stored graph and its nodes and links",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreDelete,
}

func runStoreDelete(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	storeListCmd.Flags().Bool("json", false, "output as JSON")

	storeSearchCmd.Flags().String("type", "", "filter by node type: Researcher, Publication, Publisher")
	storeSearchCmd.Flags().String("graph", "", "restrict to one graph ID (or latest)")
	storeSearchCmd.Flags().Int("max-results", 0, "maximum results (default from config)")
	storeSearchCmd.Flags().Bool("json", false, "output as JSON")

	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	storeCmd.AddCommand(storeImportCmd)
	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeSearchCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeDeleteCmd)
	rootCmd.AddCommand(storeCmd)
}
