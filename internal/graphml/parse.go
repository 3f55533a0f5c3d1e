// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graphml turns GraphML text into a typed co-authorship graph. The
// pipeline repairs truncated input, decodes it into a generic element tree,
// locates the graph container, and normalizes every node and edge into
// types.Node and types.Edge records with field defaults applied.
package graphml

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// Parser runs the GraphML pipeline. The zero value is ready to use and safe
// for concurrent calls; it holds no state between parses.
type Parser struct {
	// Logger receives debug progress; nil discards it.
	Logger *slog.Logger

	// Year substitutes for missing year fields; 0 means the current year.
	Year int
}

// Parse parses text with a zero Parser.
func Parse(text string) (types.GraphDocument, error) {
	return Parser{}.Parse(text)
}

func (p Parser) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Parse repairs, decodes and normalizes text. Errors are
// *StructuralParseError, *MissingStructureError or *EmptyGraphError.
func (p Parser) Parse(text string) (types.GraphDocument, error) {
	log := p.logger()

	before := Inspect(text)
	repaired := Repair(text)
	log.Debug("repaired GraphML",
		"input_length", before.Length,
		"output_length", len(repaired),
		"complete", before.Complete(),
	)

	tree, err := Decode(repaired)
	if err != nil {
		return types.GraphDocument{}, err
	}

	container, err := Locate(tree)
	if err != nil {
		return types.GraphDocument{}, err
	}
	log.Debug("located graph",
		"strategy", container.Strategy,
		"nodes", len(container.Nodes),
		"edges", len(container.Edges),
		"keys", len(container.Keys),
	)

	norm := Normalizer{Keys: container.Keys, Year: p.Year}
	doc := types.GraphDocument{
		Nodes: make([]types.Node, 0, len(container.Nodes)),
		Links: make([]types.Edge, 0, len(container.Edges)),
	}
	for _, raw := range container.Nodes {
		doc.Nodes = append(doc.Nodes, norm.Node(raw))
	}
	for _, raw := range container.Edges {
		doc.Links = append(doc.Links, norm.Edge(raw))
	}

	summary := Summarize(doc)
	log.Debug("normalized graph",
		"nodes", summary.NodeCount,
		"edges", summary.EdgeCount,
		"node_types", summary.NodeTypes,
		"edge_types", summary.EdgeTypes,
	)

	if doc.IsEmpty() {
		return types.GraphDocument{}, &EmptyGraphError{}
	}
	return doc, nil
}

// ParseReader reads all of r and parses it.
func (p Parser) ParseReader(r io.Reader) (types.GraphDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return types.GraphDocument{}, fmt.Errorf("reading GraphML: %w", err)
	}
	return p.Parse(string(data))
}
