// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_RepeatedChildrenBecomeSequence(t *testing.T) {
	tree, err := Decode(`<root><item a="1"/><item a="2"/><name>  Bob </name></root>`)
	require.NoError(t, err)

	root, ok := tree["root"].(Element)
	require.True(t, ok)

	items, ok := root["item"].([]any)
	require.True(t, ok, "repeated tag should decode to a sequence")
	require.Len(t, items, 2)
	assert.Equal(t, Element{"a": "1"}, items[0])
	assert.Equal(t, Element{"a": "2"}, items[1])
	assert.Equal(t, "Bob", root["name"])
}

func TestDecode_SingleChildStaysMapping(t *testing.T) {
	tree, err := Decode(`<graph><node id="a"/></graph>`)
	require.NoError(t, err)
	graph := tree["graph"].(Element)
	assert.Equal(t, Element{"id": "a"}, graph["node"])
}

func TestDecode_LowercasesTagsKeepsAttributeCase(t *testing.T) {
	tree, err := Decode(`<GraphML><Graph><Node startYear=" 2020 "/></Graph></GraphML>`)
	require.NoError(t, err)

	graph := tree["graphml"].(Element)["graph"].(Element)
	assert.Equal(t, Element{"startYear": "2020"}, graph["node"])
}

func TestDecode_TextAlongsideAttributes(t *testing.T) {
	tree, err := Decode(`<data key="d0">  Alice  </data>`)
	require.NoError(t, err)
	assert.Equal(t, Element{"key": "d0", TextKey: "Alice"}, tree["data"])
}

func TestDecode_EmptyElementIsEmptyString(t *testing.T) {
	tree, err := Decode(`<graphml><graph/></graphml>`)
	require.NoError(t, err)
	assert.Equal(t, "", tree["graphml"].(Element)["graph"])
}

func TestDecode_HTMLEntities(t *testing.T) {
	tree, err := Decode(`<name>Caf&eacute; &amp; Bar</name>`)
	require.NoError(t, err)
	assert.Equal(t, "Café & Bar", tree["name"])
}

func TestDecode_NamespaceDeclarationKept(t *testing.T) {
	tree, err := Decode(`<graphml xmlns="http://graphml.graphdrawing.org/xmlns" xmlns:y="urn:y"><graph/></graphml>`)
	require.NoError(t, err)
	gm := tree["graphml"].(Element)
	assert.Equal(t, "http://graphml.graphdrawing.org/xmlns", gm["xmlns"])
	assert.Equal(t, "urn:y", gm["xmlns:y"])
}

func TestDecode_StructuralErrors(t *testing.T) {
	tests := map[string]string{
		"plain text":     "not xml at all",
		"empty":          "",
		"two roots":      `<a/><b/>`,
		"truncated":      `<a><b>`,
		"truncated tag":  `<a><b id="x`,
		"only prolog":    `<?xml version="1.0"?>`,
		"trailing text":  `<a/>tail`,
		"stray end only": `</a>`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrStructural)

			var spe *StructuralParseError
			require.ErrorAs(t, err, &spe)
			assert.NotNil(t, spe.Err)
		})
	}
}

func TestStructuralParseError_Context(t *testing.T) {
	_, err := Decode("<a>\n<b>\n")
	var spe *StructuralParseError
	require.ErrorAs(t, err, &spe)
	assert.Contains(t, spe.Error(), "failed to parse GraphML")
	assert.LessOrEqual(t, len(spe.Context), 100)
}

func TestElementKeysSorted(t *testing.T) {
	e := Element{"b": "1", "a": "2", "c": "3"}
	assert.Equal(t, []string{"a", "b", "c"}, e.Keys())
}
