// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the coauthor-graph tool:
// the normalized graph model produced by the GraphML parser, node search
// results, and configuration.
package types

// NodeType classifies a graph vertex.
type NodeType string

const (
	NodeResearcher  NodeType = "Researcher"
	NodePublication NodeType = "Publication"
	NodePublisher   NodeType = "Publisher"
)

// NodeTypes lists every node type in display order.
var NodeTypes = []NodeType{NodeResearcher, NodePublication, NodePublisher}

// EdgeType classifies a connection between two nodes.
type EdgeType string

const (
	EdgeCoauthor   EdgeType = "coauthor"
	EdgePublisher  EdgeType = "publisher"
	EdgeResearcher EdgeType = "researcher"
)

// EdgeTypes lists every edge type in display order.
var EdgeTypes = []EdgeType{EdgeCoauthor, EdgePublisher, EdgeResearcher}

// Education is one degree entry on a node.
type Education struct {
	Institution string `json:"institution" yaml:"institution"`
	Degree      string `json:"degree" yaml:"degree"`
	Field       string `json:"field" yaml:"field"`
	Year        int    `json:"year" yaml:"year"`
}

// Experience is one position held at an organization.
type Experience struct {
	Organization string `json:"organization" yaml:"organization"`
	Position     string `json:"position" yaml:"position"`
	StartYear    int    `json:"startYear" yaml:"start_year"`

	// EndYear is nil for open-ended or unparseable end years.
	EndYear *int `json:"endYear,omitempty" yaml:"end_year,omitempty"`

	Current bool `json:"current" yaml:"current"`
}

// Publication is a paper listed on a node's publication record.
type Publication struct {
	Title   string   `json:"title" yaml:"title"`
	Journal string   `json:"journal,omitempty" yaml:"journal,omitempty"`
	Year    int      `json:"year" yaml:"year"`
	DOI     string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	Authors []string `json:"authors" yaml:"authors"`
}

// NodeData is the typed attribute bag of a node. Which of the variant fields
// are populated depends on the node type; Education, Experience and
// Publications are present for every type. The list and map fields of the
// node's own type are always encoded, as [] or {} when empty.
type NodeData struct {
	// Name is the researcher's full name or the publisher's name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Researcher fields.
	Specialization    string            `json:"specialization,omitempty" yaml:"specialization,omitempty"`
	Credentials       []string          `json:"credentials,omitzero" yaml:"credentials,omitempty"`
	Affiliations      []string          `json:"affiliations,omitzero" yaml:"affiliations,omitempty"`
	ResearchInterests []string          `json:"researchInterests,omitzero" yaml:"research_interests,omitempty"`
	ContactInfo       map[string]string `json:"contactInfo,omitzero" yaml:"contact_info,omitempty"`

	// Publication fields.
	Title   string   `json:"title,omitempty" yaml:"title,omitempty"`
	Journal string   `json:"journal,omitempty" yaml:"journal,omitempty"`
	Year    int      `json:"year,omitempty" yaml:"year,omitempty"`
	DOI     string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	Authors []string `json:"authors,omitzero" yaml:"authors,omitempty"`

	// Publisher fields.
	Type        string   `json:"type,omitempty" yaml:"type,omitempty"`
	Location    string   `json:"location,omitempty" yaml:"location,omitempty"`
	Specialties []string `json:"specialties,omitzero" yaml:"specialties,omitempty"`

	Education    []Education   `json:"education" yaml:"education"`
	Experience   []Experience  `json:"experience" yaml:"experience"`
	Publications []Publication `json:"publications" yaml:"publications"`
}

// Node is a normalized graph vertex.
type Node struct {
	ID    string   `json:"id" yaml:"id"`
	Label string   `json:"label" yaml:"label"`
	Type  NodeType `json:"type" yaml:"type"`
	Data  NodeData `json:"data" yaml:"data"`

	// Raw holds the merged source attributes the node was built from. Search
	// matches against it; it is never serialized.
	Raw map[string]any `json:"-" yaml:"-"`

	// X and Y are screen positions owned by the layout engine.
	X *float64 `json:"x,omitempty" yaml:"-"`
	Y *float64 `json:"y,omitempty" yaml:"-"`
}

// EdgeData is the typed attribute bag of an edge.
type EdgeData struct {
	ConnectionType     EdgeType `json:"connectionType,omitempty" yaml:"connection_type,omitempty"`
	Strength           float64  `json:"strength" yaml:"strength"`
	StartYear          int      `json:"startYear" yaml:"start_year"`
	EndYear            *int     `json:"endYear,omitempty" yaml:"end_year,omitempty"`
	Publications       []string `json:"publications" yaml:"publications"`
	SharedAffiliations []string `json:"sharedAffiliations" yaml:"shared_affiliations"`
}

// Edge is a normalized connection. Source and Target are node IDs; they are
// not checked against the node set.
type Edge struct {
	Source string   `json:"source" yaml:"source"`
	Target string   `json:"target" yaml:"target"`
	Label  string   `json:"label" yaml:"label"`
	Type   EdgeType `json:"type" yaml:"type"`
	Data   EdgeData `json:"data" yaml:"data"`
}

// GraphDocument is the parsed graph handed to the rendering layer.
type GraphDocument struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Links []Edge `json:"links" yaml:"links"`
}

// IsEmpty reports whether the document has neither nodes nor links.
func (d GraphDocument) IsEmpty() bool {
	return len(d.Nodes) == 0 && len(d.Links) == 0
}

// NodeByID returns the first node with the given ID.
func (d GraphDocument) NodeByID(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
