package graphstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.StoreConfig{DataDir: t.TempDir(), MaxResults: 20})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	store.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	return store
}

func sampleDoc() types.GraphDocument {
	end := 2020
	return types.GraphDocument{
		Nodes: []types.Node{
			{
				ID: "r1", Label: "Dr. Ada Lovelace", Type: types.NodeResearcher,
				Data: types.NodeData{
					Name:              "Ada Lovelace",
					Specialization:    "Cardiology",
					Affiliations:      []string{"Analytical Hospital"},
					ResearchInterests: []string{"arrhythmia"},
					Experience: []types.Experience{
						{Organization: "Analytical Hospital", Position: "Fellow", StartYear: 2010, EndYear: &end},
					},
				},
				Raw: map[string]any{"name": "Ada Lovelace", "type": "author"},
			},
			{
				ID: "p1", Label: "Cardiac Rhythm Study", Type: types.NodePublication,
				Data: types.NodeData{Title: "Cardiac Rhythm Study", Journal: "Heart", Year: 2019},
			},
			{
				ID: "j1", Label: "Heart Journal", Type: types.NodePublisher,
				Data: types.NodeData{Name: "Heart Journal", Type: "Journal"},
			},
		},
		Links: []types.Edge{
			{Source: "r1", Target: "p1", Label: "authored", Type: types.EdgeResearcher,
				Data: types.EdgeData{Strength: 1, StartYear: 2019, Publications: []string{}, SharedAffiliations: []string{}}},
			{Source: "p1", Target: "j1", Label: "published in", Type: types.EdgePublisher,
				Data: types.EdgeData{Strength: 0.5, StartYear: 2019, Publications: []string{}, SharedAffiliations: []string{}}},
		},
	}
}

// --- tests ---

func TestNewStoreCreatesIndexDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(types.StoreConfig{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(dir, indexDir, dbFile)); err != nil {
		t.Errorf("database file missing: %v", err)
	}
	if store.maxResults != 20 {
		t.Errorf("maxResults = %d, want default 20", store.maxResults)
	}
}

func TestNewStoreReopen(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		store, err := NewStore(types.StoreConfig{DataDir: dir})
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		store.Close()
	}
}

func TestImportAndLoad(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	rec, err := store.Import(ctx, "sample.graphml", sampleDoc())
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID == "" {
		t.Fatal("expected a graph ID")
	}
	if rec.NodeCount != 3 || rec.EdgeCount != 2 {
		t.Errorf("counts = %d/%d, want 3/2", rec.NodeCount, rec.EdgeCount)
	}

	doc, err := store.Load(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := sampleDoc()
	if len(doc.Nodes) != len(want.Nodes) || len(doc.Links) != len(want.Links) {
		t.Fatalf("loaded %d nodes, %d links", len(doc.Nodes), len(doc.Links))
	}
	for i, n := range doc.Nodes {
		if n.ID != want.Nodes[i].ID || n.Type != want.Nodes[i].Type || n.Label != want.Nodes[i].Label {
			t.Errorf("node %d = %s/%s/%s, want order preserved", i, n.ID, n.Type, n.Label)
		}
	}

	r1 := doc.Nodes[0]
	if r1.Data.Name != "Ada Lovelace" || r1.Data.Specialization != "Cardiology" {
		t.Errorf("researcher data not restored: %+v", r1.Data)
	}
	if len(r1.Data.Experience) != 1 || r1.Data.Experience[0].EndYear == nil || *r1.Data.Experience[0].EndYear != 2020 {
		t.Errorf("experience not restored: %+v", r1.Data.Experience)
	}
	if r1.Raw["name"] != "Ada Lovelace" {
		t.Errorf("raw attributes not restored: %v", r1.Raw)
	}
	if doc.Nodes[1].Raw != nil {
		t.Errorf("node without raw attributes got %v", doc.Nodes[1].Raw)
	}
	if doc.Links[1].Type != types.EdgePublisher || doc.Links[1].Data.Strength != 0.5 {
		t.Errorf("link not restored: %+v", doc.Links[1])
	}
}

func TestLoadUnknownGraph(t *testing.T) {
	store := testStore(t)
	_, err := store.Load(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGraphsAndLatest(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if _, err := store.Latest(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Latest on empty store: %v, want ErrNotFound", err)
	}

	first, err := store.Import(ctx, "a.graphml", sampleDoc())
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.Import(ctx, "b.graphml", types.GraphDocument{})
	if err != nil {
		t.Fatal(err)
	}

	graphs, err := store.Graphs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(graphs) != 2 {
		t.Fatalf("got %d graphs, want 2", len(graphs))
	}
	if graphs[0].ID != second.ID || graphs[1].ID != first.ID {
		t.Errorf("graphs not newest first: %v", graphs)
	}
	if !graphs[1].ImportedAt.Equal(first.ImportedAt) {
		t.Errorf("imported_at = %v, want %v", graphs[1].ImportedAt, first.ImportedAt)
	}

	latest, err := store.Latest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if latest.Source != "b.graphml" {
		t.Errorf("latest source = %q", latest.Source)
	}
}

func TestDeleteCascades(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	rec, err := store.Import(ctx, "a.graphml", sampleDoc())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, rec.ID); err != nil {
		t.Fatal(err)
	}

	hits, err := store.SearchNodes(ctx, NodeQuery{Query: "Lovelace"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("deleted graph still searchable: %v", hits)
	}
	if err := store.Delete(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: %v, want ErrNotFound", err)
	}
}

func TestSearchNodes(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	rec, err := store.Import(ctx, "a.graphml", sampleDoc())
	if err != nil {
		t.Fatal(err)
	}
	other, err := store.Import(ctx, "b.graphml", sampleDoc())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		query NodeQuery
		want  int
	}{
		{"prefix on label", NodeQuery{Query: "Lovel"}, 2},
		{"indexed content", NodeQuery{Query: "arrhythmia"}, 2},
		{"type filter", NodeQuery{Query: "heart", Type: types.NodePublisher}, 2},
		{"graph filter", NodeQuery{Query: "cardiac", GraphID: rec.ID}, 1},
		{"no fts, graph filter", NodeQuery{GraphID: other.ID}, 3},
		{"max results", NodeQuery{Query: "heart", MaxResults: 1}, 1},
		{"stray quote", NodeQuery{Query: `"ada`}, 2},
		{"no match", NodeQuery{Query: "oncology"}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hits, err := store.SearchNodes(ctx, tc.query)
			if err != nil {
				t.Fatal(err)
			}
			if len(hits) != tc.want {
				t.Errorf("got %d hits, want %d: %v", len(hits), tc.want, hits)
			}
		})
	}

	hits, err := store.SearchNodes(ctx, NodeQuery{GraphID: rec.ID, MaxResults: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "r1" || hits[0].Type != types.NodeResearcher {
		t.Errorf("structured search should return first node: %v", hits)
	}
}

func TestFTSQuery(t *testing.T) {
	tests := map[string]string{
		"":             "",
		"ada":          `"ada"*`,
		"  ada  love ": `"ada"* "love"*`,
		`say "hi"`:     `"say"* """hi"""*`,
	}
	for in, want := range tests {
		if got := ftsQuery(in); got != want {
			t.Errorf("ftsQuery(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExport(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	rec, err := store.Import(ctx, "a.graphml", sampleDoc())
	if err != nil {
		t.Fatal(err)
	}

	jsonPath, err := store.ExportJSON(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON struct {
		Graph GraphRecord  `json:"graph"`
		Nodes []types.Node `json:"nodes"`
		Links []types.Edge `json:"links"`
	}
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		t.Fatal(err)
	}
	if fromJSON.Graph.ID != rec.ID || len(fromJSON.Nodes) != 3 || len(fromJSON.Links) != 2 {
		t.Errorf("unexpected JSON export: %+v", fromJSON.Graph)
	}

	yamlPath, err := store.ExportYAML(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(yamlPath) != filepath.Join(store.dataDir, indexDir) {
		t.Errorf("yaml written to %s", yamlPath)
	}
	data, err = os.ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	var fromYAML map[string]any
	if err := yaml.Unmarshal(data, &fromYAML); err != nil {
		t.Fatal(err)
	}
	nodes, ok := fromYAML["nodes"].([]any)
	if !ok || len(nodes) != 3 {
		t.Errorf("yaml nodes = %v", fromYAML["nodes"])
	}

	if _, err := store.ExportJSON(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("export of missing graph: %v", err)
	}
}
