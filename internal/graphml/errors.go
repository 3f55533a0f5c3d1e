// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrStructural       = errors.New("malformed GraphML")
	ErrMissingStructure = errors.New("invalid GraphML structure: missing graph element")
	ErrEmptyGraph       = errors.New("no nodes or edges found in the graph")
)

// StructuralParseError reports text that is not well-formed XML even after
// repair.
type StructuralParseError struct {
	// Line is the 1-based line of the failure, 0 when unknown.
	Line int

	// Offset is the byte offset the decoder had reached.
	Offset int64

	// Context is up to 50 bytes either side of Offset.
	Context string

	Err error
}

func (e *StructuralParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("failed to parse GraphML: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("failed to parse GraphML: %v", e.Err)
}

func (e *StructuralParseError) Unwrap() error { return e.Err }

func (e *StructuralParseError) Is(target error) bool { return target == ErrStructural }

// MissingStructureError reports a well-formed document with no locatable
// graph element.
type MissingStructureError struct {
	// Keys are the top-level element names that were searched.
	Keys []string
}

func (e *MissingStructureError) Error() string {
	if len(e.Keys) == 0 {
		return ErrMissingStructure.Error()
	}
	return fmt.Sprintf("%v (top-level elements: %s)", ErrMissingStructure, strings.Join(e.Keys, ", "))
}

func (e *MissingStructureError) Is(target error) bool { return target == ErrMissingStructure }

// EmptyGraphError reports a graph that normalized to zero nodes and zero edges.
type EmptyGraphError struct{}

func (e *EmptyGraphError) Error() string { return ErrEmptyGraph.Error() }

func (e *EmptyGraphError) Is(target error) bool { return target == ErrEmptyGraph }

// IsLoadFailure reports whether err is one of the parse failures that the
// viewer surfaces as "failed to load graph data".
func IsLoadFailure(err error) bool {
	return errors.Is(err, ErrStructural) ||
		errors.Is(err, ErrMissingStructure) ||
		errors.Is(err, ErrEmptyGraph)
}

// newStructuralError builds a StructuralParseError with a context window
// around offset.
func newStructuralError(text string, offset int64, err error) *StructuralParseError {
	e := &StructuralParseError{Offset: offset, Err: err}
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		e.Line = syn.Line
	}
	if offset >= 0 && int(offset) <= len(text) {
		start := max(0, int(offset)-50)
		end := min(len(text), int(offset)+50)
		e.Context = text[start:end]
	}
	return e
}
