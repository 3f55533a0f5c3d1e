// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/coauthor-graph/internal/graphml"
	"github.com/pdiddy/coauthor-graph/internal/loader"
	"github.com/pdiddy/coauthor-graph/internal/search"
	"github.com/pdiddy/coauthor-graph/internal/viz"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	dataURL := "/api/graph"
	if s.cfg.View.ResearchersOnly {
		dataURL += "?view=researchers"
	}
	page, err := viz.GenerateHTML(types.GraphDocument{}, viz.HTMLOptions{DataURL: dataURL, View: s.cfg.View})
	if err != nil {
		s.log.Error("rendering page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	switch r.URL.Query().Get("view") {
	case "", "all":
	case "researchers":
		doc = viz.ResearcherView(doc)
	default:
		jsonError(w, "unknown view", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type summaryResponse struct {
	graphml.Summary
	LoadedAt time.Time `json:"loadedAt"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Summary: snap.Summary, LoadedAt: snap.LoadedAt})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	results := search.Search(doc, r.URL.Query().Get("q"), s.cfg.Search)
	if results == nil {
		results = []types.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	node, found := doc.NodeByID(chi.URLParam(r, "id"))
	if !found {
		jsonError(w, "node not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

type edgeSummaryResponse struct {
	Edge    types.Edge `json:"edge"`
	Summary string     `json:"summary"`
}

func (s *Server) handleEdgeSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	src, dst := q.Get("source"), q.Get("target")
	if src == "" || dst == "" {
		jsonError(w, "source and target are required", http.StatusBadRequest)
		return
	}
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	edge, found := viz.FindEdge(doc, src, dst)
	if !found {
		jsonError(w, "edge not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, edgeSummaryResponse{Edge: edge, Summary: viz.EdgeSummary(edge)})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loader.Load(context.WithoutCancel(r.Context()))
	if err != nil {
		s.log.Warn("manual reload failed", "error", err)
		jsonError(w, LoadFailedMessage, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Summary: snap.Summary, LoadedAt: snap.LoadedAt})
}

// snapshot returns the current load, loading on first use. A failed load
// answers 503 and reports false.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (*loader.Snapshot, bool) {
	snap, err := s.loader.Current()
	if errors.Is(err, loader.ErrNotLoaded) {
		snap, err = s.loader.Load(context.WithoutCancel(r.Context()))
	}
	if err == nil {
		err = snap.Err
	}
	if err != nil {
		jsonError(w, LoadFailedMessage, http.StatusServiceUnavailable)
		return nil, false
	}
	return snap, true
}

func (s *Server) document(w http.ResponseWriter, r *http.Request) (types.GraphDocument, bool) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return types.GraphDocument{}, false
	}
	return snap.Doc, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
