// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphml

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// Summary holds structural statistics of a parsed graph. It is used for
// verification and logging only.
type Summary struct {
	NodeCount int                    `json:"nodeCount" yaml:"node_count"`
	EdgeCount int                    `json:"edgeCount" yaml:"edge_count"`
	NodeTypes map[types.NodeType]int `json:"nodeTypeDistribution" yaml:"node_type_distribution"`
	EdgeTypes map[types.EdgeType]int `json:"edgeTypeDistribution" yaml:"edge_type_distribution"`
}

// Summarize counts the nodes and links of doc by type.
func Summarize(doc types.GraphDocument) Summary {
	s := Summary{
		NodeCount: len(doc.Nodes),
		EdgeCount: len(doc.Links),
		NodeTypes: map[types.NodeType]int{},
		EdgeTypes: map[types.EdgeType]int{},
	}
	for _, n := range doc.Nodes {
		s.NodeTypes[n.Type]++
	}
	for _, e := range doc.Links {
		s.EdgeTypes[e.Type]++
	}
	return s
}

// String renders the summary on one line, types in sorted order.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d nodes, %d edges", s.NodeCount, s.EdgeCount)
	if len(s.NodeTypes) > 0 {
		b.WriteString(" | nodes:")
		for _, k := range sortedKeys(s.NodeTypes) {
			fmt.Fprintf(&b, " %s=%d", k, s.NodeTypes[types.NodeType(k)])
		}
	}
	if len(s.EdgeTypes) > 0 {
		b.WriteString(" | edges:")
		for _, k := range sortedKeys(s.EdgeTypes) {
			fmt.Fprintf(&b, " %s=%d", k, s.EdgeTypes[types.EdgeType(k)])
		}
	}
	return b.String()
}

func sortedKeys[K ~string, V any](m map[K]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

// Structure describes raw GraphML text before decoding.
type Structure struct {
	Length          int  `json:"length" yaml:"length"`
	HasDeclaration  bool `json:"hasDeclaration" yaml:"has_declaration"`
	HasGraphML      bool `json:"hasGraphml" yaml:"has_graphml"`
	HasGraph        bool `json:"hasGraph" yaml:"has_graph"`
	HasNodes        bool `json:"hasNodes" yaml:"has_nodes"`
	HasEdges        bool `json:"hasEdges" yaml:"has_edges"`
	HasGraphMLClose bool `json:"hasGraphmlClose" yaml:"has_graphml_close"`
	HasGraphClose   bool `json:"hasGraphClose" yaml:"has_graph_close"`
	NodeTags        int  `json:"nodeTags" yaml:"node_tags"`
	EdgeTags        int  `json:"edgeTags" yaml:"edge_tags"`
}

// Inspect reports the structural markers of raw text.
func Inspect(raw string) Structure {
	nodes := countTags(raw, "node")
	edges := countTags(raw, "edge")
	return Structure{
		Length:          len(raw),
		HasDeclaration:  strings.HasPrefix(strings.TrimSpace(strings.TrimPrefix(raw, byteOrderMark)), "<?xml"),
		HasGraphML:      countTags(raw, "graphml") > 0,
		HasGraph:        hasOpenGraph(raw),
		HasNodes:        nodes > 0,
		HasEdges:        edges > 0,
		HasGraphMLClose: strings.Contains(raw, "</graphml>"),
		HasGraphClose:   strings.Contains(raw, "</graph>"),
		NodeTags:        nodes,
		EdgeTags:        edges,
	}
}

// Complete reports whether both closing tags are present.
func (s Structure) Complete() bool {
	return s.HasGraphMLClose && s.HasGraphClose
}
