// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package viz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))

// ForceGraphURL is the script the page loads the force-graph library from.
const ForceGraphURL = "https://unpkg.com/force-graph@1/dist/force-graph.min.js"

// LoadFailedMessage is shown when the page cannot fetch its data.
const LoadFailedMessage = "Failed to load graph data"

// ValidLayouts lists the supported layout names.
var ValidLayouts = []string{"force", "circle", "grid"}

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Title string

	// DataURL, when set, makes the page fetch its graph from that URL
	// instead of embedding it.
	DataURL string

	// View supplies the layout and the node and edge styling.
	View types.ViewConfig
}

type templateData struct {
	Title         string
	ScriptURL     string
	DataURL       string
	GraphJSON     template.JS
	StyleJSON     template.JS
	Layout        string
	FailedMessage string
}

// pageStyle is handed to the page script.
type pageStyle struct {
	NodeColors map[types.NodeType]string `json:"nodeColors"`
	NodeRadius map[types.NodeType]int    `json:"nodeRadius"`
	EdgeColors map[types.EdgeType]string `json:"edgeColors"`
}

// GenerateHTML renders a self-contained page showing doc on a
// force-directed layout. With opts.DataURL set the graph is fetched by the
// page and doc is ignored.
func GenerateHTML(doc types.GraphDocument, opts HTMLOptions) (string, error) {
	if err := validateLayout(opts.View.Layout); err != nil {
		return "", err
	}
	if opts.DataURL == "" && doc.IsEmpty() {
		return generateEmptyHTML(), nil
	}

	graphJSON := []byte("null")
	if opts.DataURL == "" {
		var err error
		graphJSON, err = json.Marshal(doc)
		if err != nil {
			return "", fmt.Errorf("encoding graph: %w", err)
		}
	}
	style := pageStyle{
		NodeColors: opts.View.NodeColors,
		NodeRadius: opts.View.NodeRadius,
		EdgeColors: opts.View.EdgeColors,
	}
	if style.NodeColors == nil {
		style.NodeColors = map[types.NodeType]string{}
	}
	if style.NodeRadius == nil {
		style.NodeRadius = map[types.NodeType]int{}
	}
	if style.EdgeColors == nil {
		style.EdgeColors = map[types.EdgeType]string{}
	}
	styleJSON, err := json.Marshal(style)
	if err != nil {
		return "", fmt.Errorf("encoding style: %w", err)
	}

	title := opts.Title
	if title == "" {
		title = "Co-authorship Graph"
	}
	layout := opts.View.Layout
	if layout == "" {
		layout = "force"
	}

	data := templateData{
		Title:         title,
		ScriptURL:     ForceGraphURL,
		DataURL:       opts.DataURL,
		GraphJSON:     template.JS(graphJSON),
		StyleJSON:     template.JS(styleJSON),
		Layout:        layout,
		FailedMessage: LoadFailedMessage,
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func validateLayout(layout string) error {
	switch layout {
	case "", "force", "circle", "grid":
		return nil
	default:
		return fmt.Errorf("invalid layout %q: must be force, circle, or grid", layout)
	}
}

func generateEmptyHTML() string {
	return `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Co-authorship Graph - Empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #1a1a1a;
      color: #ccc;
    }
    .empty-state { text-align: center; }
    .empty-state code { background: #333; padding: 2px 6px; border-radius: 3px; }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No graph data</h2>
    <p>The GraphML source has no nodes or edges.</p>
    <p>Check the file with <code>coauthor-graph inspect</code></p>
  </div>
</body>
</html>`
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="{{.ScriptURL}}"></script>
  <style>
    * { box-sizing: border-box; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      background: #1a1a1a;
    }
    #graph { width: 100%; height: 100vh; }
    #search {
      position: absolute; top: 12px; left: 12px; z-index: 10;
      width: 320px; padding: 8px 12px; border-radius: 20px; border: none;
      box-shadow: 0 2px 8px rgba(0,0,0,0.3);
    }
    #results {
      position: absolute; top: 48px; left: 12px; z-index: 10; width: 320px;
      background: #fff; border-radius: 8px; list-style: none; margin: 0; padding: 0;
    }
    #results li { padding: 6px 12px; cursor: pointer; }
    #results li span { display: block; font-size: 0.8em; color: #777; }
    #details {
      position: absolute; top: 12px; right: 12px; z-index: 10; width: 360px;
      max-height: calc(100vh - 24px); overflow-y: auto; display: none;
      background: rgba(255,255,255,0.98); border-radius: 12px; padding: 16px 20px;
      box-shadow: 0 6px 32px rgba(0,0,0,0.18); font-size: 14px;
    }
    #details h3 { margin: 0 0 4px 0; }
    #details .type { font-size: 11px; text-transform: uppercase; color: #888; }
    #details .summary { font-weight: 600; color: #1976d2; margin: 10px 0; }
    #error {
      display: none; position: absolute; inset: 0; color: #eee;
      flex-direction: column; justify-content: center; align-items: center;
    }
    #error button { margin-top: 12px; padding: 6px 16px; }
  </style>
</head>
<body>
  <div id="graph"></div>
  <input id="search" type="search" placeholder="Search researchers, publications, or organizations...">
  <ul id="results"></ul>
  <div id="details"></div>
  <div id="error">
    <p id="error-message">{{.FailedMessage}}</p>
    <button id="retry" type="button">Retry</button>
  </div>
  <script>
    (function() {
      const embedded = {{.GraphJSON}};
      const dataURL = "{{.DataURL}}";
      const style = {{.StyleJSON}};
      const layout = "{{.Layout}}";
      const minSearch = 2, maxResults = 10;

      let graphData = null;
      let selected = null;
      let chart = null;

      function escapeHtml(str) {
        if (str === undefined || str === null) return '';
        return String(str).replace(/&/g, '&amp;')
                          .replace(/</g, '&lt;')
                          .replace(/>/g, '&gt;')
                          .replace(/"/g, '&quot;');
      }

      function nodeId(end) { return typeof end === 'object' ? end.id : end; }

      function unique(arr) {
        return Array.from(new Set((arr || []).filter(Boolean)));
      }

      function edgeSummary(edge) {
        const d = edge.data || {};
        if (edge.type === 'researcher' && unique(d.sharedAffiliations).length > 0) {
          return 'Worked together at ' + unique(d.sharedAffiliations).join(', ');
        }
        if (edge.type === 'coauthor' && unique(d.publications).length > 0) {
          const n = unique(d.publications).length;
          return 'Co-authored ' + n + ' publication' + (n > 1 ? 's' : '');
        }
        if (edge.type === 'publisher' && unique(d.sharedAffiliations).length > 0) {
          return 'Published in ' + unique(d.sharedAffiliations).join(', ');
        }
        return '';
      }

      function placeNodes(nodes) {
        if (layout === 'circle') {
          const r = Math.max(200, nodes.length * 12);
          nodes.forEach(function(n, i) {
            const a = 2 * Math.PI * i / nodes.length;
            n.fx = r * Math.cos(a);
            n.fy = r * Math.sin(a);
          });
        } else if (layout === 'grid') {
          const cols = Math.ceil(Math.sqrt(nodes.length));
          nodes.forEach(function(n, i) {
            n.fx = (i % cols) * 80;
            n.fy = Math.floor(i / cols) * 80;
          });
        }
      }

      function showNode(node) {
        const d = node.data || {};
        let html = '<div class="type">' + escapeHtml(node.type) + '</div>';
        html += '<h3>' + escapeHtml(d.name || d.title || node.label) + '</h3>';
        if (d.specialization) html += '<div>' + escapeHtml(d.specialization) + '</div>';
        if (d.journal) html += '<div>' + escapeHtml(d.journal) + (d.year ? ' (' + d.year + ')' : '') + '</div>';
        if (d.location) html += '<div>' + escapeHtml(d.location) + '</div>';
        if (d.affiliations && d.affiliations.length) html += '<p>Affiliations: ' + d.affiliations.map(escapeHtml).join(', ') + '</p>';
        if (d.education && d.education.length) {
          html += '<p><b>Education</b></p><ul>' + d.education.map(function(e) {
            return '<li>' + escapeHtml(e.degree) + ', ' + escapeHtml(e.field) + ' - ' + escapeHtml(e.institution) + (e.year ? ' (' + e.year + ')' : '') + '</li>';
          }).join('') + '</ul>';
        }
        if (d.experience && d.experience.length) {
          html += '<p><b>Experience</b></p><ul>' + d.experience.map(function(e) {
            return '<li>' + escapeHtml(e.position) + ' - ' + escapeHtml(e.organization) + (e.startYear ? ' (' + e.startYear + '-' + (e.current ? 'present' : (e.endYear || '')) + ')' : '') + '</li>';
          }).join('') + '</ul>';
        }
        if (d.publications && d.publications.length) {
          html += '<p><b>Publications</b></p><ul>' + d.publications.map(function(p) {
            return '<li>' + escapeHtml(p.title) + (p.year ? ' (' + p.year + ')' : '') + '</li>';
          }).join('') + '</ul>';
        }
        showDetails(html);
      }

      function showEdge(edge) {
        const d = edge.data || {};
        let html = '<div class="type">' + escapeHtml(edge.type) + '</div>';
        html += '<h3>Connection Details</h3><div>' + escapeHtml(edge.label) + '</div>';
        const summary = edgeSummary(edge);
        if (summary) html += '<div class="summary">' + escapeHtml(summary) + '</div>';
        if (unique(d.sharedAffiliations).length) html += '<p>Shared affiliations: ' + unique(d.sharedAffiliations).map(escapeHtml).join(', ') + '</p>';
        if (unique(d.publications).length) html += '<p>Publications: ' + unique(d.publications).map(escapeHtml).join(', ') + '</p>';
        if (d.startYear) html += '<p>Since ' + d.startYear + (d.endYear ? ' until ' + d.endYear : '') + '</p>';
        showDetails(html);
      }

      function showDetails(html) {
        const el = document.getElementById('details');
        el.innerHTML = html;
        el.style.display = 'block';
      }

      function search(query) {
        const list = document.getElementById('results');
        list.innerHTML = '';
        const q = query.trim().toLowerCase();
        if (!graphData || q.length < minSearch) return;
        graphData.nodes.filter(function(n) {
          const d = n.data || {};
          return [d.name, d.title, n.type, n.id, n.label].filter(Boolean).join(' ').toLowerCase().includes(q);
        }).slice(0, maxResults).forEach(function(n) {
          const li = document.createElement('li');
          const d = n.data || {};
          const label = n.type === 'Researcher' ? (d.name || n.label) : n.type === 'Publication' ? (d.title || n.label) : n.label;
          li.innerHTML = escapeHtml(label) + '<span>' + escapeHtml(n.type) + '</span>';
          li.onclick = function() {
            list.innerHTML = '';
            document.getElementById('search').value = '';
            select(n);
            if (chart && n.x !== undefined) {
              chart.centerAt(n.x, n.y, 600);
              chart.zoom(3, 600);
            }
          };
          list.appendChild(li);
        });
      }

      function select(node) {
        selected = node;
        showNode(node);
      }

      function render(data) {
        graphData = data;
        placeNodes(data.nodes);
        chart = ForceGraph()(document.getElementById('graph'))
          .graphData(data)
          .backgroundColor('#1a1a1a')
          .nodeId('id')
          .nodeLabel(function(n) { return escapeHtml(n.label); })
          .nodeVal(function(n) { return style.nodeRadius[n.type] || 6; })
          .nodeColor(function(n) { return selected && selected.id === n.id ? '#2979FF' : (style.nodeColors[n.type] || '#999'); })
          .linkColor(function(l) {
            if (selected && (nodeId(l.source) === selected.id || nodeId(l.target) === selected.id)) return '#FFD700';
            return style.edgeColors[l.type] || '#757575';
          })
          .linkWidth(function(l) { return 1 + ((l.data && l.data.strength) || 0); })
          .onNodeClick(select)
          .onLinkClick(showEdge)
          .onBackgroundClick(function() {
            selected = null;
            document.getElementById('details').style.display = 'none';
          });
        chart.d3Force('charge').strength(-1200);
        chart.d3Force('link').distance(260);
      }

      function fail(message) {
        const el = document.getElementById('error');
        document.getElementById('error-message').textContent = message;
        el.style.display = 'flex';
      }

      function load() {
        document.getElementById('error').style.display = 'none';
        if (!dataURL) {
          render(embedded);
          return;
        }
        fetch(dataURL)
          .then(function(resp) {
            if (!resp.ok) throw new Error('HTTP error! status: ' + resp.status);
            return resp.json();
          })
          .then(render)
          .catch(function(err) {
            console.error('Error loading graph data:', err);
            fail({{.FailedMessage}});
          });
      }

      document.getElementById('retry').onclick = function() { window.location.reload(); };
      document.getElementById('search').addEventListener('input', function(e) { search(e.target.value); });
      load();
    })();
  </script>
</body>
</html>`
