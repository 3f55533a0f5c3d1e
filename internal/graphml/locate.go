// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphml

// KeyDecl is a GraphML <key> declaration mapping a data key id to an
// attribute name.
type KeyDecl struct {
	ID      string
	Name    string
	For     string
	Type    string
	Default string
}

// KeySet indexes key declarations by id.
type KeySet map[string]KeyDecl

// Container is the located graph element with its node and edge
// collections normalized to sequences.
type Container struct {
	Nodes []Element
	Edges []Element

	// Keys are the <key> declarations found on the graph and its ancestors.
	Keys KeySet

	// Attrs holds the graph element's own attributes (id, edgedefault).
	Attrs Element

	// Strategy names the lookup that found the graph.
	Strategy string
}

// locateStrategy finds the graph element within a decoded tree. scopes are
// the ancestors searched for <key> declarations.
type locateStrategy struct {
	name string
	find func(tree Element) (graph Element, scopes []Element, ok bool)
}

// strategies are tried in order; the first hit wins.
var strategies = []locateStrategy{
	{name: "graphml.graph", find: graphUnderGraphML},
	{name: "graph", find: graphAtRoot},
	{name: "root.graph", find: graphUnderAnyRoot},
	{name: "graphml.wrapper.graph", find: graphUnderWrapper},
}

// Locate finds the graph container in a decoded tree.
func Locate(tree Element) (Container, error) {
	for _, s := range strategies {
		graph, scopes, ok := s.find(tree)
		if !ok {
			continue
		}
		return newContainer(graph, scopes, s.name), nil
	}
	return Container{}, &MissingStructureError{Keys: tree.Keys()}
}

func graphUnderGraphML(tree Element) (Element, []Element, bool) {
	gm, ok := asElement(tree["graphml"])
	if !ok {
		return nil, nil, false
	}
	g, ok := gm["graph"]
	if !ok {
		return nil, nil, false
	}
	return graphValue(g), []Element{gm}, true
}

func graphAtRoot(tree Element) (Element, []Element, bool) {
	g, ok := tree["graph"]
	if !ok {
		return nil, nil, false
	}
	return graphValue(g), nil, true
}

func graphUnderAnyRoot(tree Element) (Element, []Element, bool) {
	for _, key := range tree.Keys() {
		el, ok := asElement(tree[key])
		if !ok {
			continue
		}
		if g, ok := el["graph"]; ok {
			return graphValue(g), []Element{el}, true
		}
	}
	return nil, nil, false
}

func graphUnderWrapper(tree Element) (Element, []Element, bool) {
	gm, ok := asElement(tree["graphml"])
	if !ok {
		return nil, nil, false
	}
	for _, key := range gm.Keys() {
		for _, wrapper := range asSequence(gm[key]) {
			if g, ok := wrapper["graph"]; ok {
				return graphValue(g), []Element{gm, wrapper}, true
			}
		}
	}
	return nil, nil, false
}

func newContainer(graph Element, scopes []Element, strategy string) Container {
	c := Container{
		Nodes:    asSequence(graph["node"]),
		Edges:    asSequence(graph["edge"]),
		Keys:     KeySet{},
		Attrs:    Element{},
		Strategy: strategy,
	}
	for _, scope := range append(scopes, graph) {
		for _, k := range asSequence(scope["key"]) {
			id := text(k["id"])
			if id == "" {
				continue
			}
			c.Keys[id] = KeyDecl{
				ID:      id,
				Name:    text(k["attr.name"]),
				For:     text(k["for"]),
				Type:    text(k["attr.type"]),
				Default: text(k["default"]),
			}
		}
	}
	for k, v := range graph {
		switch k {
		case "node", "edge", "key":
			continue
		}
		if s, ok := v.(string); ok {
			c.Attrs[k] = s
		}
	}
	return c
}

// graphValue picks the graph mapping out of whatever the decoder produced:
// the first of several graphs, or an empty mapping for a bare <graph/>.
func graphValue(v any) Element {
	switch t := v.(type) {
	case Element:
		return t
	case []any:
		for _, item := range t {
			if el, ok := item.(Element); ok {
				return el
			}
		}
	case string:
		if t != "" {
			return Element{TextKey: t}
		}
	}
	return Element{}
}

// asElement returns v when it is a mapping.
func asElement(v any) (Element, bool) {
	el, ok := v.(Element)
	return el, ok
}

// asSequence normalizes a decoded value to a slice of mappings: a lone
// mapping is wrapped, a scalar becomes a mapping holding only its text, and
// an absent value yields an empty slice.
func asSequence(v any) []Element {
	switch t := v.(type) {
	case nil:
		return []Element{}
	case Element:
		return []Element{t}
	case []any:
		out := make([]Element, 0, len(t))
		for _, item := range t {
			out = append(out, scalarElement(item))
		}
		return out
	default:
		return []Element{scalarElement(t)}
	}
}

func scalarElement(v any) Element {
	switch t := v.(type) {
	case Element:
		return t
	case string:
		if t == "" {
			return Element{}
		}
		return Element{TextKey: t}
	}
	return Element{}
}
