// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package viz prepares parsed graphs for display: it filters views, writes
// connection summaries, and renders the interactive HTML page.
package viz

import (
	"fmt"
	"strings"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// ResearcherView returns the researcher nodes of doc and the links whose
// endpoints are both researchers. Nodes and links keep their order.
func ResearcherView(doc types.GraphDocument) types.GraphDocument {
	kept := make(map[string]bool)
	out := types.GraphDocument{Nodes: []types.Node{}, Links: []types.Edge{}}
	for _, n := range doc.Nodes {
		if n.Type == types.NodeResearcher {
			out.Nodes = append(out.Nodes, n)
			kept[n.ID] = true
		}
	}
	for _, e := range doc.Links {
		if kept[e.Source] && kept[e.Target] {
			out.Links = append(out.Links, e)
		}
	}
	return out
}

// EdgeSummary is the one-line description shown for a connection, or ""
// when the edge carries nothing to summarize.
func EdgeSummary(e types.Edge) string {
	switch e.Type {
	case types.EdgeResearcher:
		if places := Unique(e.Data.SharedAffiliations); len(places) > 0 {
			return "Worked together at " + strings.Join(places, ", ")
		}
	case types.EdgeCoauthor:
		if pubs := Unique(e.Data.Publications); len(pubs) > 0 {
			suffix := ""
			if len(pubs) > 1 {
				suffix = "s"
			}
			return fmt.Sprintf("Co-authored %d publication%s", len(pubs), suffix)
		}
	case types.EdgePublisher:
		if places := Unique(e.Data.SharedAffiliations); len(places) > 0 {
			return "Published in " + strings.Join(places, ", ")
		}
	}
	return ""
}

// Unique drops empty strings and repeats, keeping first occurrences in order.
func Unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// FindEdge returns the first link between source and target in either
// direction.
func FindEdge(doc types.GraphDocument, source, target string) (types.Edge, bool) {
	for _, e := range doc.Links {
		if (e.Source == source && e.Target == target) || (e.Source == target && e.Target == source) {
			return e, true
		}
	}
	return types.Edge{}, false
}
