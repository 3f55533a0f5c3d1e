// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search matches graph nodes against a free-text query the way the
// viewer's search box does and formats the matches for the terminal.
package search

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// Match scores.
const (
	ScoreExact     = 1.0
	ScorePrefix    = 0.8
	ScoreSubstring = 0.5
)

const (
	defaultMinQueryLength = 2
	defaultMaxResults     = 10
)

// rawFields are the source attributes a query is matched against.
var rawFields = []string{"name", "title", "type", "id", "label"}

// Search returns the nodes of doc matching query, best matches first. Ties
// keep document order. Queries that are blank or shorter than
// cfg.MinQueryLength return nil.
func Search(doc types.GraphDocument, query string, cfg types.SearchConfig) []types.SearchResult {
	minLen := cfg.MinQueryLength
	if minLen <= 0 {
		minLen = defaultMinQueryLength
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	query = strings.TrimSpace(query)
	if query == "" || len([]rune(query)) < minLen {
		return nil
	}

	fold := cases.Fold()
	q := fold.String(query)

	var results []types.SearchResult
	for _, n := range doc.Nodes {
		label := DisplayLabel(n)
		score := matchScore(fold, q, n, label)
		if score == 0 {
			continue
		}
		results = append(results, types.SearchResult{
			ID:         n.ID,
			Label:      label,
			Type:       n.Type,
			MatchScore: score,
		})
	}

	slices.SortStableFunc(results, func(a, b types.SearchResult) int {
		switch {
		case a.MatchScore > b.MatchScore:
			return -1
		case a.MatchScore < b.MatchScore:
			return 1
		}
		return 0
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

// DisplayLabel is the name shown for a node in result lists: a
// researcher's name, a publication's title, or the node label.
func DisplayLabel(n types.Node) string {
	switch n.Type {
	case types.NodeResearcher:
		if n.Data.Name != "" {
			return n.Data.Name
		}
	case types.NodePublication:
		if n.Data.Title != "" {
			return n.Data.Title
		}
	}
	return n.Label
}

func matchScore(fold cases.Caser, q string, n types.Node, label string) float64 {
	candidates := searchable(n, label)

	best := 0.0
	for _, c := range []string{n.ID, n.Label, label} {
		if c != "" && fold.String(c) == q {
			return ScoreExact
		}
	}
	for _, c := range candidates {
		f := fold.String(c)
		switch {
		case strings.HasPrefix(f, q):
			best = max(best, ScorePrefix)
		case strings.Contains(f, q):
			best = max(best, ScoreSubstring)
		}
	}
	if best == 0 && strings.Contains(fold.String(strings.Join(candidates, " ")), q) {
		best = ScoreSubstring
	}
	return best
}

// searchable collects the non-empty text a node can be found by.
func searchable(n types.Node, label string) []string {
	var out []string
	for _, key := range rawFields {
		if s, ok := n.Raw[key].(string); ok && s != "" {
			out = append(out, s)
		}
	}
	for _, s := range []string{n.ID, n.Label, string(n.Type), label} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FormatTable writes results as a human-readable table to w.
func FormatTable(results []types.SearchResult, w io.Writer) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-50s  %-12s  %-20s  %s\n", "Rank", "Label", "Type", "ID", "Score")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, r := range results {
		fmt.Fprintf(w, "%-4d  %-50s  %-12s  %-20s  %.1f\n",
			i+1, truncate(r.Label, 50), r.Type, truncate(r.ID, 20), r.MatchScore)
	}
	fmt.Fprintf(w, "\n%d results\n", len(results))
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(results []types.SearchResult, w io.Writer) error {
	if results == nil {
		results = []types.SearchResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
