// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/coauthor-graph/internal/graphml"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// --- parse ---

var parseCmd = &cobra.Command{
	Use:   "parse [file|url]",
	Short: "Parse GraphML into the normalized graph document",
	Long: `Parse fetches a GraphML document (the configured source when no
argument is given), repairs truncated input, and prints the normalized
graph as JSON or YAML, or a one-line summary.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	doc, err := loadGraph(cmd.Context(), locationArg(args))
	if err != nil {
		return err
	}

	return withOutput(cmd, output, func(w io.Writer) error {
		return writeDocument(w, doc, format)
	})
}

// writeDocument renders doc in format: json, yaml or summary.
func writeDocument(w io.Writer, doc types.GraphDocument, format string) error {
	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case "summary":
		_, err := fmt.Fprintln(w, graphml.Summarize(doc))
		return err
	default:
		return fmt.Errorf("unknown format %q (want json, yaml or summary)", format)
	}
}

// withOutput runs fn against the file at path, or stdout when path is empty.
func withOutput(cmd *cobra.Command, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	logger.Info("wrote output", "path", path)
	return nil
}

// --- repair ---

var repairCmd = &cobra.Command{
	Use:   "repair [file|url]",
	Short: "Truncate a damaged GraphML document to its last complete element",
	Long: `Repair cuts the document back to the last complete node or edge and
appends the missing closing tags. Complete documents are printed unchanged.
The structure before and after repair is reported on stderr.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRepair,
}

func runRepair(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	raw, err := readSource(cmd.Context(), locationArg(args))
	if err != nil {
		return err
	}
	text := string(raw)
	repaired := graphml.Repair(text)

	before, after := graphml.Inspect(text), graphml.Inspect(repaired)
	errOut := cmd.ErrOrStderr()
	fmt.Fprintf(errOut, "before: %s, %d nodes, %d edges, complete=%t\n",
		humanize.Bytes(uint64(before.Length)), before.NodeTags, before.EdgeTags, before.Complete())
	fmt.Fprintf(errOut, "after:  %s, %d nodes, %d edges, complete=%t\n",
		humanize.Bytes(uint64(after.Length)), after.NodeTags, after.EdgeTags, after.Complete())

	return withOutput(cmd, output, func(w io.Writer) error {
		_, err := io.WriteString(w, repaired)
		return err
	})
}

// --- inspect ---

var inspectCmd = &cobra.Command{
	Use:   "inspect <file|url>...",
	Short: "Report structure and parse results for one or more GraphML documents",
	Long: `Inspect fetches each document concurrently, reports its raw structure
(size, tag counts, closing tags) and whether it parses, and prints one row
per document. It fails when any document cannot be fetched or parsed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

// inspection is one row of inspect output.
type inspection struct {
	Location  string            `json:"location"`
	Structure graphml.Structure `json:"structure"`
	Summary   *graphml.Summary  `json:"summary,omitempty"`
	Error     string            `json:"error,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	results := inspectAll(cmd, args, concurrency)

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		formatInspections(cmd.OutOrStdout(), results)
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d document(s) failed", failed, len(results))
	}
	return nil
}

// inspectAll inspects every location with at most concurrency in flight.
// Per-document failures are recorded in the result, not returned.
func inspectAll(cmd *cobra.Command, locations []string, concurrency int) []inspection {
	results := make([]inspection, len(locations))

	g, ctx := errgroup.WithContext(cmd.Context())
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, loc := range locations {
		g.Go(func() error {
			r := inspection{Location: loc}
			raw, err := readSource(ctx, loc)
			if err != nil {
				r.Error = err.Error()
			} else {
				text := string(raw)
				r.Structure = graphml.Inspect(text)
				if doc, err := parser().Parse(text); err != nil {
					r.Error = err.Error()
				} else {
					s := graphml.Summarize(doc)
					r.Summary = &s
				}
			}
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func formatInspections(w io.Writer, results []inspection) {
	fmt.Fprintf(w, "%-40s  %10s  %6s  %6s  %-8s  %s\n",
		"Document", "Size", "Nodes", "Edges", "Complete", "Result")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, r := range results {
		loc := r.Location
		if len(loc) > 40 {
			loc = "..." + loc[len(loc)-37:]
		}
		result := r.Error
		if r.Summary != nil {
			result = r.Summary.String()
		}
		fmt.Fprintf(w, "%-40s  %10s  %6d  %6d  %-8t  %s\n",
			loc,
			humanize.Bytes(uint64(r.Structure.Length)),
			r.Structure.NodeTags,
			r.Structure.EdgeTags,
			r.Structure.Complete(),
			result)
	}
}

func init() {
	parseCmd.Flags().String("format", "json", "output format: json, yaml, summary")
	parseCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")

	repairCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")

	inspectCmd.Flags().Int("concurrency", 4, "documents fetched in parallel")
	inspectCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(inspectCmd)
}
