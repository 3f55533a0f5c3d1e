// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// Export is a stored graph together with its import record.
type Export struct {
	Graph               GraphRecord `json:"graph" yaml:"graph"`
	types.GraphDocument `yaml:",inline"`
}

// ExportYAML writes graph id to <data_dir>/index/<id>.yaml and returns the
// path written.
func (s *Store) ExportYAML(ctx context.Context, id string) (string, error) {
	exp, err := s.export(ctx, id)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(exp)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.dataDir, indexDir, id+".yaml")
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes graph id to <data_dir>/index/<id>.json and returns the
// path written.
func (s *Store) ExportJSON(ctx context.Context, id string) (string, error) {
	exp, err := s.export(ctx, id)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	path := filepath.Join(s.dataDir, indexDir, id+".json")
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) export(ctx context.Context, id string) (Export, error) {
	rec, err := s.Graph(ctx, id)
	if err != nil {
		return Export{}, err
	}
	doc, err := s.Load(ctx, id)
	if err != nil {
		return Export{}, fmt.Errorf("loading graph for export: %w", err)
	}
	return Export{Graph: rec, GraphDocument: doc}, nil
}
