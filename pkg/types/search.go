// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SearchResult is a node matched by a search query.
type SearchResult struct {
	// ID is the matched node's identifier.
	ID string `json:"id" yaml:"id"`

	// Label is the display label: the researcher's name, the publication's
	// title, or the node label.
	Label string `json:"label" yaml:"label"`

	// Type is the matched node's type.
	Type NodeType `json:"type" yaml:"type"`

	// MatchScore is 1.0 for an exact id or label match, 0.8 for a prefix
	// match and 0.5 for a substring match.
	MatchScore float64 `json:"matchScore" yaml:"match_score"`
}
