// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphml

import (
	"time"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// Defaults substituted for missing sub-collection fields.
const (
	defaultInstitution  = "Unknown Institution"
	defaultDegree       = "Unknown Degree"
	defaultField        = "Unknown Field"
	defaultOrganization = "Unknown Organization"
	defaultPosition     = "Unknown Position"
	defaultTitle        = "Unknown Title"
	defaultPublisher    = "Medical Institution"
	defaultEdgeLabel    = "unknown"
	defaultStrength     = 1.0
)

// nodeTypes maps the raw type tag to a node type. Lookup is case-sensitive;
// anything else is a Researcher.
var nodeTypes = map[string]types.NodeType{
	"author":      types.NodeResearcher,
	"paper":       types.NodePublication,
	"venue":       types.NodePublisher,
	"institution": types.NodePublisher,
}

// edgeTypes maps the raw type tag to an edge type; anything else is coauthor.
var edgeTypes = map[string]types.EdgeType{
	"coauthor":   types.EdgeCoauthor,
	"publisher":  types.EdgePublisher,
	"researcher": types.EdgeResearcher,
}

// Normalizer converts raw node and edge elements into typed records. The
// zero value is ready to use.
type Normalizer struct {
	// Keys resolves GraphML <data key="..."> entries to attribute names.
	Keys KeySet

	// Year substitutes for missing year fields; 0 means the current year.
	Year int
}

// NormalizeNode converts a raw node element with a zero Normalizer.
func NormalizeNode(raw Element) types.Node {
	return Normalizer{}.Node(raw)
}

// NormalizeEdge converts a raw edge element with a zero Normalizer.
func NormalizeEdge(raw Element) types.Edge {
	return Normalizer{}.Edge(raw)
}

func (n Normalizer) year() int {
	if n.Year != 0 {
		return n.Year
	}
	return time.Now().Year()
}

// Node converts a raw node element. It never fails: missing or malformed
// fields fall back to defaults.
func (n Normalizer) Node(raw Element) types.Node {
	if raw == nil {
		raw = Element{}
	}
	bag, keyed := n.attributeBag(raw, "node")

	id := field(raw, "id")
	label := field(raw, "label")
	tag := field(raw, "type")
	name := field(raw, "name")
	tagFromBag := false
	if keyed {
		if label == "" {
			label = field(bag, "label")
		}
		if tag == "" {
			tag = field(bag, "type")
			tagFromBag = tag != ""
		}
		if name == "" {
			name = field(bag, "name")
		}
	}
	if label == "" {
		label = id
	}

	nodeType, ok := nodeTypes[tag]
	if !ok {
		nodeType = types.NodeResearcher
	}

	data := types.NodeData{
		Education:    n.education(bag),
		Experience:   n.experience(bag),
		Publications: n.publications(bag),
	}
	switch nodeType {
	case types.NodeResearcher:
		data.Name = firstNonEmpty(field(bag, "fullName"), name, label)
		data.Specialization = field(bag, "specialization")
		data.Credentials = seqField(bag, "credentials")
		data.Affiliations = seqField(bag, "affiliations")
		data.ResearchInterests = seqField(bag, "researchInterests")
		v, _ := lookup(bag, "contactInfo")
		data.ContactInfo = stringMap(v)

	case types.NodePublication:
		data.Title = firstNonEmpty(field(bag, "title"), label)
		data.Journal = field(bag, "journal")
		data.Year = yearOr(field(bag, "year"), n.year())
		data.DOI = field(bag, "doi")
		data.Authors = seqField(bag, "authors")

	case types.NodePublisher:
		data.Name = firstNonEmpty(field(bag, "name"), label)
		data.Type = defaultPublisher
		if !tagFromBag {
			data.Type = firstNonEmpty(field(bag, "type"), defaultPublisher)
		}
		data.Location = field(bag, "location")
		data.Specialties = seqField(bag, "specialties")
	}

	return types.Node{
		ID:    id,
		Label: label,
		Type:  nodeType,
		Data:  data,
		Raw:   rawCopy(raw, bag, keyed),
	}
}

// Edge converts a raw edge element. It never fails.
func (n Normalizer) Edge(raw Element) types.Edge {
	if raw == nil {
		raw = Element{}
	}
	bag, keyed := n.attributeBag(raw, "edge")

	label := field(raw, "label")
	tag := field(raw, "type")
	if keyed {
		if label == "" {
			label = field(bag, "label")
		}
		if tag == "" {
			tag = field(bag, "type")
		}
	}
	if label == "" {
		label = defaultEdgeLabel
	}
	edgeType, ok := edgeTypes[tag]
	if !ok {
		edgeType = types.EdgeCoauthor
	}

	return types.Edge{
		Source: field(raw, "source"),
		Target: field(raw, "target"),
		Label:  label,
		Type:   edgeType,
		Data: types.EdgeData{
			ConnectionType:     types.EdgeType(field(bag, "connectionType")),
			Strength:           strengthOr(field(bag, "strength"), defaultStrength),
			StartYear:          yearOr(field(bag, "startYear"), n.year()),
			EndYear:            optionalYear(field(bag, "endYear")),
			Publications:       seqField(bag, "publications"),
			SharedAffiliations: seqField(bag, "sharedAffiliations"),
		},
	}
}

// attributeBag returns the typed attributes of a node or edge: its <data>
// child when that is a plain mapping, or the GraphML keyed <data key="...">
// entries resolved through the key declarations. keyed reports the latter,
// including when only key defaults contributed.
func (n Normalizer) attributeBag(raw Element, domain string) (Element, bool) {
	bag := Element{}
	keyed := false

	v, _ := lookup(raw, "data")
	for _, entry := range asSequence(v) {
		id := text(entry["key"])
		if id == "" {
			for k, val := range entry {
				if k != TextKey {
					bag[k] = val
				}
			}
			continue
		}
		keyed = true
		bag[n.keyName(id)] = dataValue(entry)
	}

	for _, decl := range n.Keys {
		if decl.Default == "" || (decl.For != domain && decl.For != "all" && decl.For != "") {
			continue
		}
		name := decl.Name
		if name == "" {
			name = decl.ID
		}
		if _, ok := bag[name]; !ok {
			bag[name] = decl.Default
			keyed = true
		}
	}
	return bag, keyed
}

func (n Normalizer) keyName(id string) string {
	if decl, ok := n.Keys[id]; ok && decl.Name != "" {
		return decl.Name
	}
	return id
}

// dataValue is a keyed <data> element's payload: its text, or its children
// when it has any.
func dataValue(entry Element) any {
	out := Element{}
	for k, v := range entry {
		if k != "key" {
			out[k] = v
		}
	}
	switch {
	case len(out) == 0:
		return ""
	case len(out) == 1 && out[TextKey] != nil:
		return out[TextKey]
	}
	return out
}

func (n Normalizer) education(bag Element) []types.Education {
	v, _ := lookup(bag, "education")
	records := recordSeq(v)
	out := make([]types.Education, 0, len(records))
	for _, r := range records {
		out = append(out, types.Education{
			Institution: firstNonEmpty(field(r, "institution"), defaultInstitution),
			Degree:      firstNonEmpty(field(r, "degree"), defaultDegree),
			Field:       firstNonEmpty(field(r, "field"), defaultField),
			Year:        yearOr(field(r, "year"), n.year()),
		})
	}
	return out
}

func (n Normalizer) experience(bag Element) []types.Experience {
	v, _ := lookup(bag, "experience")
	records := recordSeq(v)
	out := make([]types.Experience, 0, len(records))
	for _, r := range records {
		out = append(out, types.Experience{
			Organization: firstNonEmpty(field(r, "organization"), defaultOrganization),
			Position:     firstNonEmpty(field(r, "position"), defaultPosition),
			StartYear:    yearOr(field(r, "startYear"), n.year()),
			EndYear:      optionalYear(field(r, "endYear")),
			Current:      boolValue(field(r, "current")),
		})
	}
	return out
}

func (n Normalizer) publications(bag Element) []types.Publication {
	v, _ := lookup(bag, "publications")
	records := recordSeq(v)
	out := make([]types.Publication, 0, len(records))
	for _, r := range records {
		out = append(out, types.Publication{
			Title:   firstNonEmpty(field(r, "title"), defaultTitle),
			Journal: field(r, "journal"),
			Year:    yearOr(field(r, "year"), n.year()),
			DOI:     field(r, "doi"),
			Authors: seqField(r, "authors"),
		})
	}
	return out
}

func seqField(e Element, key string) []string {
	v, _ := lookup(e, key)
	return stringSeq(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// rawCopy flattens the source attributes a node was built from. Keyed data
// entries are lifted to the top level so search sees their names.
func rawCopy(raw, bag Element, keyed bool) map[string]any {
	out := make(map[string]any, len(raw)+len(bag))
	if keyed {
		for k, v := range bag {
			out[k] = v
		}
	} else if len(bag) > 0 {
		out["data"] = map[string]any(bag)
	}
	for k, v := range raw {
		if k == "data" {
			continue
		}
		out[k] = v
	}
	return out
}
