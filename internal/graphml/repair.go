// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphml

import "strings"

const (
	xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>`
	graphMLOpen    = `<graphml xmlns="http://graphml.graphdrawing.org/xmlns">`
	byteOrderMark  = "\uFEFF"
)

// Repair patches GraphML that was cut off or emitted without its wrapper
// elements. It never fails: text it cannot fix is returned for the decoder
// to reject.
//
// The document is truncated after the last complete node or edge element
// when either closing tag is missing, and the closers are appended. Content
// after that point is discarded even if it contains complete elements of the
// other kind further back. Repair(Repair(x)) == Repair(x).
func Repair(raw string) string {
	s := strings.TrimPrefix(raw, byteOrderMark)

	if !strings.HasPrefix(strings.TrimSpace(s), "<?xml") {
		s = xmlDeclaration + "\n" + s
	}

	if !strings.Contains(s, "</graphml>") || !strings.Contains(s, "</graph>") {
		if end := lastCompleteElementEnd(s); end > 0 {
			s = s[:end]
			if hasOpenGraph(s) && !strings.Contains(s, "</graph>") {
				s += "\n</graph>"
			}
			if !strings.Contains(s, "</graphml>") {
				s += "\n</graphml>"
			}
		}
	}

	if !strings.Contains(s, "<graphml") {
		if i := strings.Index(s, "<graph"); i >= 0 {
			s = s[:i] + graphMLOpen + s[i:]
		}
	}
	return s
}

// lastCompleteElementEnd returns the offset just past the rightmost complete
// node or edge element, or -1 when there is none. Both closing tags and
// self-closing start tags count.
func lastCompleteElementEnd(s string) int {
	end := -1
	for _, closer := range []string{"</node>", "</edge>"} {
		if i := strings.LastIndex(s, closer); i >= 0 && i+len(closer) > end {
			end = i + len(closer)
		}
	}
	for _, name := range []string{"node", "edge"} {
		if e := lastSelfClosingEnd(s, name); e > end {
			end = e
		}
	}
	return end
}

// lastSelfClosingEnd returns the offset just past the rightmost complete
// <name .../> tag, or -1.
func lastSelfClosingEnd(s, name string) int {
	open := "<" + name
	limit := len(s)
	for {
		i := strings.LastIndex(s[:limit], open)
		if i < 0 {
			return -1
		}
		limit = i
		if !isTagBoundary(s, i+len(open)) {
			continue
		}
		end := tagEnd(s, i+len(open))
		if end > 0 && s[end-2] == '/' {
			return end
		}
	}
}

// tagEnd scans from inside a start tag to its closing '>' and returns the
// offset after it. Quoted attribute values are skipped. It returns -1 when
// the tag is truncated or another tag opens first.
func tagEnd(s string, from int) int {
	var quote byte
	for i := from; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i + 1
		case c == '<':
			return -1
		}
	}
	return -1
}

// isTagBoundary reports whether the tag name ends at offset i.
func isTagBoundary(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	switch s[i] {
	case ' ', '\t', '\n', '\r', '/', '>':
		return true
	}
	return false
}

// hasOpenGraph reports whether s contains a <graph start tag (not <graphml).
func hasOpenGraph(s string) bool {
	return countTags(s, "graph") > 0
}

// countTags counts <name start tags, excluding longer names sharing the prefix.
func countTags(s, name string) int {
	open := "<" + name
	n := 0
	for i := 0; ; {
		j := strings.Index(s[i:], open)
		if j < 0 {
			return n
		}
		i += j + len(open)
		if isTagBoundary(s, i) {
			n++
		}
	}
}
