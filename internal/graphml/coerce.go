// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphml

import (
	"strconv"
	"strings"
)

// lookup finds key in e, trying an exact match before a case-insensitive
// one so that lowercased element names and camelCase attributes both
// resolve.
func lookup(e Element, key string) (any, bool) {
	if v, ok := e[key]; ok {
		return v, true
	}
	for _, k := range e.Keys() {
		if strings.EqualFold(k, key) {
			return e[k], true
		}
	}
	return nil, false
}

// field returns the text of key in e, or "".
func field(e Element, key string) string {
	v, _ := lookup(e, key)
	return text(v)
}

// text flattens a decoded value to a string: mappings yield their text
// content and sequences their first non-empty entry.
func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case Element:
		s, _ := t[TextKey].(string)
		return s
	case []any:
		for _, item := range t {
			if s := text(item); s != "" {
				return s
			}
		}
	}
	return ""
}

// leadingInt parses the integer prefix of s after leading whitespace.
// "2019-05" yields 2019; "n/a" fails.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// leadingFloat parses the decimal prefix of s after leading whitespace,
// accepting an optional fraction and exponent.
func leadingFloat(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	mantissa := 0
	for end < len(s) && isDigit(s[end]) {
		end++
		mantissa++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && isDigit(s[end]) {
			end++
			mantissa++
		}
	}
	if mantissa == 0 {
		return 0, false
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		if exp < len(s) && isDigit(s[exp]) {
			for exp < len(s) && isDigit(s[exp]) {
				exp++
			}
			end = exp
		}
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// yearOr parses a year, substituting def when it is missing, unparseable or 0.
func yearOr(s string, def int) int {
	if n, ok := leadingInt(s); ok && n != 0 {
		return n
	}
	return def
}

// optionalYear parses a year that may legitimately be absent.
func optionalYear(s string) *int {
	if s == "" {
		return nil
	}
	n, ok := leadingInt(s)
	if !ok {
		return nil
	}
	return &n
}

// strengthOr parses a connection strength; 0 is a valid value.
func strengthOr(s string, def float64) float64 {
	if f, ok := leadingFloat(s); ok {
		return f
	}
	return def
}

// boolValue accepts the usual spellings of true.
func boolValue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	}
	return false
}

// stringSeq coerces a decoded value to a string slice: sequences are kept,
// a scalar becomes a one-element slice, and absent or empty values give an
// empty (non-nil) slice. A wrapper element holding a single child name
// (<authors><author>A</author></authors>, or the same with repeats) unwraps
// to that child's values.
func stringSeq(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, text(item))
		}
		return out
	case Element:
		if child, ok := soleChild(t); ok {
			return stringSeq(child)
		}
		if s := text(t); s != "" {
			return []string{s}
		}
	case string:
		if t != "" {
			return []string{t}
		}
	}
	return []string{}
}

// recordSeq coerces a decoded value to a slice of mappings, unwrapping a
// single-child wrapper element the same way stringSeq does.
func recordSeq(v any) []Element {
	if el, ok := v.(Element); ok {
		if child, ok := soleChild(el); ok {
			switch child.(type) {
			case Element, []any:
				return asSequence(child)
			}
		}
	}
	if v == nil {
		return []Element{}
	}
	return asSequence(v)
}

// soleChild returns the only value of a text-less element with exactly one
// key.
func soleChild(e Element) (any, bool) {
	if len(e) != 1 {
		return nil, false
	}
	for k, v := range e {
		if k == TextKey {
			return nil, false
		}
		return v, true
	}
	return nil, false
}

// stringMap flattens a mapping to string values; anything else yields an
// empty map.
func stringMap(v any) map[string]string {
	out := map[string]string{}
	el, ok := v.(Element)
	if !ok {
		return out
	}
	for k, val := range el {
		if k == TextKey {
			continue
		}
		if s := text(val); s != "" {
			out[k] = s
		}
	}
	return out
}
