// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphml

import (
	"encoding/xml"
	"errors"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html/charset"
)

// TextKey is the reserved key holding the text of an element that also has
// attributes or child elements.
const TextKey = "_"

// Element is a decoded XML element. Attributes and child elements share the
// map, keyed by name (element names lowercased). A value is a string, an
// Element, or a []any when a child name repeats under the same parent.
type Element map[string]any

// add stores v under name, turning the slot into a sequence on repeats.
func (e Element) add(name string, v any) {
	existing, ok := e[name]
	if !ok {
		e[name] = v
		return
	}
	if seq, ok := existing.([]any); ok {
		e[name] = append(seq, v)
		return
	}
	e[name] = []any{existing, v}
}

// Keys returns the element's keys in sorted order.
func (e Element) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Decode converts XML text into a tree keyed by the root element's name.
//
// Decoding is lenient: unknown entities, unquoted attribute values and
// mismatched end tags are tolerated the way encoding/xml's non-strict mode
// tolerates them. Truncation inside an open element, text outside the root,
// a second root, or no root at all yield a *StructuralParseError.
func Decode(text string) (Element, error) {
	dec := xml.NewDecoder(strings.NewReader(text))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel

	var (
		stack    []*frame
		root     = Element{}
		rootSeen bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, newStructuralError(text, dec.InputOffset(), err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && rootSeen {
				return nil, newStructuralError(text, dec.InputOffset(), errors.New("multiple root elements"))
			}
			f := &frame{name: strings.ToLower(t.Name.Local), el: Element{}}
			for _, a := range t.Attr {
				f.el[attrName(a.Name)] = strings.TrimSpace(a.Value)
			}
			stack = append(stack, f)

		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, newStructuralError(text, dec.InputOffset(), errors.New("text outside the root element"))
				}
				continue
			}
			stack[len(stack)-1].text.Write(t)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, newStructuralError(text, dec.InputOffset(), errors.New("unexpected end element"))
			}
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				root[f.name] = f.value()
				rootSeen = true
				continue
			}
			stack[len(stack)-1].el.add(f.name, f.value())
		}
	}

	if len(stack) > 0 {
		return nil, newStructuralError(text, dec.InputOffset(), io.ErrUnexpectedEOF)
	}
	if !rootSeen {
		return nil, newStructuralError(text, dec.InputOffset(), errors.New("no root element"))
	}
	return root, nil
}

// frame accumulates one open element while decoding.
type frame struct {
	name string
	el   Element
	text strings.Builder
}

// value collapses the frame: a bare element becomes its trimmed text,
// anything with attributes or children stays a map.
func (f *frame) value() any {
	text := strings.TrimSpace(f.text.String())
	if len(f.el) == 0 {
		return text
	}
	if text != "" {
		f.el[TextKey] = text
	}
	return f.el
}

func attrName(n xml.Name) string {
	if n.Space == "xmlns" {
		return "xmlns:" + n.Local
	}
	return n.Local
}
