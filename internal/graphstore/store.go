// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graphstore persists parsed graphs in SQLite and indexes their
// nodes for full-text search. The FTS5 index needs the sqlite_fts5 build
// tag on mattn/go-sqlite3.
package graphstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "graphs.db"
)

// ErrNotFound is returned when a graph ID (or the latest graph) does not
// exist.
var ErrNotFound = errors.New("graph not found")

// GraphRecord describes one imported graph.
type GraphRecord struct {
	ID         string    `json:"id" yaml:"id"`
	Source     string    `json:"source" yaml:"source"`
	ImportedAt time.Time `json:"imported_at" yaml:"imported_at"`
	NodeCount  int       `json:"node_count" yaml:"node_count"`
	EdgeCount  int       `json:"edge_count" yaml:"edge_count"`
}

// Store manages the graph SQLite database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int

	// now stamps imports; tests replace it.
	now func() time.Time
}

// NewStore opens or creates the database at dataDir/index/graphs.db and
// creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dataDir:    cfg.DataDir,
		maxResults: maxResults,
		now:        time.Now,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS graphs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			imported_at TEXT NOT NULL,
			node_count INTEGER NOT NULL,
			edge_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS nodes (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			graph_id TEXT NOT NULL REFERENCES graphs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			label TEXT NOT NULL,
			type TEXT NOT NULL,
			data TEXT NOT NULL,
			raw TEXT,
			content TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_graph ON nodes(graph_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(type)`,
		`CREATE TABLE IF NOT EXISTS links (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			graph_id TEXT NOT NULL REFERENCES graphs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			label TEXT NOT NULL,
			type TEXT NOT NULL,
			data TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_links_graph ON links(graph_id, position)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='nodes_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE nodes_fts USING fts5(label, content, content=nodes, content_rowid=rowid)`,
			`CREATE TRIGGER nodes_ai AFTER INSERT ON nodes BEGIN
				INSERT INTO nodes_fts(rowid, label, content) VALUES (new.rowid, new.label, new.content);
			END`,
			`CREATE TRIGGER nodes_ad AFTER DELETE ON nodes BEGIN
				INSERT INTO nodes_fts(nodes_fts, rowid, label, content) VALUES('delete', old.rowid, old.label, old.content);
			END`,
			`CREATE TRIGGER nodes_au AFTER UPDATE ON nodes BEGIN
				INSERT INTO nodes_fts(nodes_fts, rowid, label, content) VALUES('delete', old.rowid, old.label, old.content);
				INSERT INTO nodes_fts(rowid, label, content) VALUES (new.rowid, new.label, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// Import stores doc under a new graph ID in a single transaction.
func (s *Store) Import(ctx context.Context, source string, doc types.GraphDocument) (GraphRecord, error) {
	rec := GraphRecord{
		ID:         uuid.NewString(),
		Source:     source,
		ImportedAt: s.now().UTC(),
		NodeCount:  len(doc.Nodes),
		EdgeCount:  len(doc.Links),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return GraphRecord{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO graphs (id, source, imported_at, node_count, edge_count) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Source, rec.ImportedAt.Format(time.RFC3339Nano), rec.NodeCount, rec.EdgeCount,
	)
	if err != nil {
		return GraphRecord{}, fmt.Errorf("inserting graph: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO nodes (graph_id, position, id, label, type, data, raw, content)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return GraphRecord{}, fmt.Errorf("preparing node insert: %w", err)
	}
	defer nodeStmt.Close()

	for i, n := range doc.Nodes {
		dataJSON, err := json.Marshal(n.Data)
		if err != nil {
			return GraphRecord{}, fmt.Errorf("encoding node %s: %w", n.ID, err)
		}
		var rawJSON sql.NullString
		if n.Raw != nil {
			b, err := json.Marshal(n.Raw)
			if err != nil {
				return GraphRecord{}, fmt.Errorf("encoding node %s attributes: %w", n.ID, err)
			}
			rawJSON = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := nodeStmt.ExecContext(ctx,
			rec.ID, i, n.ID, n.Label, string(n.Type), string(dataJSON), rawJSON, searchContent(n),
		); err != nil {
			return GraphRecord{}, fmt.Errorf("inserting node %s: %w", n.ID, err)
		}
	}

	linkStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO links (graph_id, position, source, target, label, type, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return GraphRecord{}, fmt.Errorf("preparing link insert: %w", err)
	}
	defer linkStmt.Close()

	for i, e := range doc.Links {
		dataJSON, err := json.Marshal(e.Data)
		if err != nil {
			return GraphRecord{}, fmt.Errorf("encoding link %s-%s: %w", e.Source, e.Target, err)
		}
		if _, err := linkStmt.ExecContext(ctx,
			rec.ID, i, e.Source, e.Target, e.Label, string(e.Type), string(dataJSON),
		); err != nil {
			return GraphRecord{}, fmt.Errorf("inserting link %s-%s: %w", e.Source, e.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return GraphRecord{}, fmt.Errorf("committing import: %w", err)
	}
	return rec, nil
}

// Delete removes a graph with its nodes and links.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM graphs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting graph: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// searchContent is the text indexed for a node besides its label.
func searchContent(n types.Node) string {
	d := n.Data
	parts := []string{n.ID, string(n.Type), d.Name, d.Title, d.Specialization, d.Journal, d.Location}
	parts = append(parts, d.Affiliations...)
	parts = append(parts, d.ResearchInterests...)
	parts = append(parts, d.Specialties...)
	parts = append(parts, d.Authors...)

	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
