// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// NodeQuery holds parameters for SearchNodes.
type NodeQuery struct {
	// Query is matched as a prefix against each word of the node label and
	// indexed content.
	Query string

	// Type filters by node type.
	Type types.NodeType

	// GraphID restricts results to one graph.
	GraphID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// NodeHit is one node matched by SearchNodes.
type NodeHit struct {
	GraphID string         `json:"graph_id" yaml:"graph_id"`
	ID      string         `json:"id" yaml:"id"`
	Label   string         `json:"label" yaml:"label"`
	Type    types.NodeType `json:"type" yaml:"type"`
	Rank    float64        `json:"rank" yaml:"rank"`
}

// Graphs lists imported graphs, newest first.
func (s *Store) Graphs(ctx context.Context) ([]GraphRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, imported_at, node_count, edge_count
		 FROM graphs ORDER BY imported_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing graphs: %w", err)
	}
	defer rows.Close()

	var out []GraphRecord
	for rows.Next() {
		rec, err := scanGraph(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Latest returns the most recently imported graph.
func (s *Store) Latest(ctx context.Context) (GraphRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, imported_at, node_count, edge_count
		 FROM graphs ORDER BY imported_at DESC, rowid DESC LIMIT 1`)
	rec, err := scanGraph(row)
	if errors.Is(err, sql.ErrNoRows) {
		return GraphRecord{}, ErrNotFound
	}
	return rec, err
}

// Graph returns the record for id.
func (s *Store) Graph(ctx context.Context, id string) (GraphRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, imported_at, node_count, edge_count FROM graphs WHERE id = ?`, id)
	rec, err := scanGraph(row)
	if errors.Is(err, sql.ErrNoRows) {
		return GraphRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGraph(row scanner) (GraphRecord, error) {
	var (
		rec        GraphRecord
		importedAt string
	)
	if err := row.Scan(&rec.ID, &rec.Source, &importedAt, &rec.NodeCount, &rec.EdgeCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GraphRecord{}, err
		}
		return GraphRecord{}, fmt.Errorf("scanning graph: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, importedAt)
	if err != nil {
		return GraphRecord{}, fmt.Errorf("parsing import time %q: %w", importedAt, err)
	}
	rec.ImportedAt = t
	return rec, nil
}

// Load rebuilds the document stored under id, including each node's raw
// attributes.
func (s *Store) Load(ctx context.Context, id string) (types.GraphDocument, error) {
	if _, err := s.Graph(ctx, id); err != nil {
		return types.GraphDocument{}, err
	}

	doc := types.GraphDocument{Nodes: []types.Node{}, Links: []types.Edge{}}

	nodeRows, err := s.db.QueryContext(ctx,
		`SELECT id, label, type, data, raw FROM nodes WHERE graph_id = ? ORDER BY position`, id)
	if err != nil {
		return types.GraphDocument{}, fmt.Errorf("loading nodes: %w", err)
	}
	defer nodeRows.Close()

	for nodeRows.Next() {
		var (
			n        types.Node
			nodeType string
			dataJSON string
			rawJSON  sql.NullString
		)
		if err := nodeRows.Scan(&n.ID, &n.Label, &nodeType, &dataJSON, &rawJSON); err != nil {
			return types.GraphDocument{}, fmt.Errorf("scanning node: %w", err)
		}
		n.Type = types.NodeType(nodeType)
		if err := json.Unmarshal([]byte(dataJSON), &n.Data); err != nil {
			return types.GraphDocument{}, fmt.Errorf("decoding node %s: %w", n.ID, err)
		}
		if rawJSON.Valid {
			if err := json.Unmarshal([]byte(rawJSON.String), &n.Raw); err != nil {
				return types.GraphDocument{}, fmt.Errorf("decoding node %s attributes: %w", n.ID, err)
			}
		}
		doc.Nodes = append(doc.Nodes, n)
	}
	if err := nodeRows.Err(); err != nil {
		return types.GraphDocument{}, err
	}

	linkRows, err := s.db.QueryContext(ctx,
		`SELECT source, target, label, type, data FROM links WHERE graph_id = ? ORDER BY position`, id)
	if err != nil {
		return types.GraphDocument{}, fmt.Errorf("loading links: %w", err)
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var (
			e        types.Edge
			edgeType string
			dataJSON string
		)
		if err := linkRows.Scan(&e.Source, &e.Target, &e.Label, &edgeType, &dataJSON); err != nil {
			return types.GraphDocument{}, fmt.Errorf("scanning link: %w", err)
		}
		e.Type = types.EdgeType(edgeType)
		if err := json.Unmarshal([]byte(dataJSON), &e.Data); err != nil {
			return types.GraphDocument{}, fmt.Errorf("decoding link %s-%s: %w", e.Source, e.Target, err)
		}
		doc.Links = append(doc.Links, e)
	}
	return doc, linkRows.Err()
}

// SearchNodes runs a full-text query over stored nodes. Results are ranked
// by relevance when Query is set and by graph then position otherwise.
func (s *Store) SearchNodes(ctx context.Context, q NodeQuery) ([]NodeHit, error) {
	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	match := ftsQuery(q.Query)
	var (
		qb     strings.Builder
		args   []any
		useFTS = match != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT n.graph_id, n.id, n.label, n.type, nodes_fts.rank
			FROM nodes_fts
			JOIN nodes n ON n.rowid = nodes_fts.rowid
			WHERE nodes_fts MATCH ?`)
		args = append(args, match)
	} else {
		qb.WriteString(
			`SELECT n.graph_id, n.id, n.label, n.type, 0 AS rank
			FROM nodes n
			WHERE 1=1`)
	}

	if q.Type != "" {
		qb.WriteString(` AND n.type = ?`)
		args = append(args, string(q.Type))
	}
	if q.GraphID != "" {
		qb.WriteString(` AND n.graph_id = ?`)
		args = append(args, q.GraphID)
	}

	if useFTS {
		qb.WriteString(` ORDER BY nodes_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY n.graph_id, n.position`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("searching nodes: %w", err)
	}
	defer rows.Close()

	var hits []NodeHit
	for rows.Next() {
		var (
			h        NodeHit
			nodeType string
		)
		if err := rows.Scan(&h.GraphID, &h.ID, &h.Label, &nodeType, &h.Rank); err != nil {
			return nil, fmt.Errorf("scanning node hit: %w", err)
		}
		h.Type = types.NodeType(nodeType)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// ftsQuery turns free text into an FTS5 expression that prefix-matches
// every word. Each word is quoted so punctuation is taken literally.
func ftsQuery(text string) string {
	words := strings.Fields(text)
	terms := make([]string, 0, len(words))
	for _, w := range words {
		terms = append(terms, `"`+strings.ReplaceAll(w, `"`, `""`)+`"*`)
	}
	return strings.Join(terms, " ")
}
