// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package loader holds the graph currently served to the viewer. It fetches
// and parses the configured source, keeps the latest result, and exports
// load metrics.
package loader

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/coauthor-graph/internal/graphml"
	"github.com/pdiddy/coauthor-graph/internal/source"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// ErrNotLoaded is returned by Current before the first load completes.
var ErrNotLoaded = errors.New("graph not loaded")

// Snapshot is the outcome of one load. A failed load carries Err and an
// empty document.
type Snapshot struct {
	Doc      types.GraphDocument
	Summary  graphml.Summary
	Err      error
	LoadedAt time.Time
}

// FetchFunc returns the GraphML text to parse.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Metrics are the loader's Prometheus collectors.
type Metrics struct {
	loads      *prometheus.CounterVec
	duration   prometheus.Histogram
	nodes      prometheus.Gauge
	edges      prometheus.Gauge
	lastLoaded prometheus.Gauge
}

// NewMetrics registers the loader collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		loads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coauthor_graph",
			Subsystem: "loader",
			Name:      "loads_total",
			Help:      "Graph loads by result (ok, fetch_error, parse_error)",
		}, []string{"result"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "coauthor_graph",
			Subsystem: "loader",
			Name:      "load_duration_seconds",
			Help:      "Time to fetch and parse the graph source",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		nodes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "coauthor_graph",
			Subsystem: "graph",
			Name:      "nodes",
			Help:      "Nodes in the current graph",
		}),
		edges: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "coauthor_graph",
			Subsystem: "graph",
			Name:      "edges",
			Help:      "Edges in the current graph",
		}),
		lastLoaded: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "coauthor_graph",
			Subsystem: "loader",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful load",
		}),
	}
}

// Options configures a Loader.
type Options struct {
	Fetch   FetchFunc
	Parser  graphml.Parser
	Metrics *Metrics
	Logger  *slog.Logger
}

// Loader owns the current graph snapshot. It is safe for concurrent use.
type Loader struct {
	fetch   FetchFunc
	parser  graphml.Parser
	metrics *Metrics
	log     *slog.Logger

	current atomic.Pointer[Snapshot]
	flight  singleflight.Group
	now     func() time.Time
}

// New creates a Loader. Metrics may be nil.
func New(opts Options) *Loader {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.Parser.Logger == nil {
		opts.Parser.Logger = log
	}
	return &Loader{
		fetch:   opts.Fetch,
		parser:  opts.Parser,
		metrics: opts.Metrics,
		log:     log,
		now:     time.Now,
	}
}

// SourceFetcher adapts source.Fetch to a FetchFunc.
func SourceFetcher(client *http.Client, cfg types.SourceConfig, log *slog.Logger) FetchFunc {
	return func(ctx context.Context) ([]byte, error) {
		return source.Fetch(ctx, client, cfg, log)
	}
}

// Current returns the latest snapshot, or ErrNotLoaded.
func (l *Loader) Current() (*Snapshot, error) {
	snap := l.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Document returns the current graph, or the error of the last load.
func (l *Loader) Document() (types.GraphDocument, error) {
	snap, err := l.Current()
	if err != nil {
		return types.GraphDocument{}, err
	}
	return snap.Doc, snap.Err
}

// Load fetches and parses the source and replaces the current snapshot.
// Concurrent calls share one load. A failed load replaces the snapshot too,
// so a broken source is never served as a stale or partial graph.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	v, _, _ := l.flight.Do("load", func() (any, error) {
		return l.load(ctx), nil
	})
	snap := v.(*Snapshot)
	return snap, snap.Err
}

func (l *Loader) load(ctx context.Context) *Snapshot {
	start := l.now()

	snap := &Snapshot{Doc: types.GraphDocument{Nodes: []types.Node{}, Links: []types.Edge{}}}
	result := "ok"

	text, err := l.fetch(ctx)
	if err != nil {
		result = "fetch_error"
		snap.Err = err
	} else {
		doc, err := l.parser.Parse(string(text))
		if err != nil {
			result = "parse_error"
			snap.Err = err
		} else {
			snap.Doc = doc
		}
	}
	snap.Summary = graphml.Summarize(snap.Doc)
	snap.LoadedAt = l.now()
	elapsed := snap.LoadedAt.Sub(start)

	if snap.Err != nil {
		l.log.Error("graph load failed", "result", result, "error", snap.Err, "duration", elapsed)
	} else {
		l.log.Info("graph loaded",
			"nodes", snap.Summary.NodeCount,
			"edges", snap.Summary.EdgeCount,
			"duration", elapsed,
		)
	}

	if m := l.metrics; m != nil {
		m.loads.WithLabelValues(result).Inc()
		m.duration.Observe(elapsed.Seconds())
		m.nodes.Set(float64(snap.Summary.NodeCount))
		m.edges.Set(float64(snap.Summary.EdgeCount))
		if snap.Err == nil {
			m.lastLoaded.Set(float64(snap.LoadedAt.Unix()))
		}
	}

	l.current.Store(snap)
	return snap
}
