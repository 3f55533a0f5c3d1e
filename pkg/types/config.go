// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used when fetching the graph source.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "coauthor-graph/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429/503 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0"`
}

// SourceConfig locates the GraphML document.
type SourceConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Location is an http(s) URL or a local file path. Gzipped content is
	// accepted in both cases.
	Location string `json:"location" yaml:"location" mapstructure:"location"`

	// Token is sent as a bearer token when Location is a URL.
	Token string `json:"-" yaml:"-" mapstructure:"token"`

	// MaxBytes caps the size of a fetched document (default 256 MiB).
	MaxBytes int64 `json:"max_bytes" yaml:"max_bytes" mapstructure:"max_bytes" validate:"gte=0"`

	// Watch reloads the graph when a local source file changes.
	Watch bool `json:"watch" yaml:"watch" mapstructure:"watch"`
}

// StoreConfig holds settings for the SQLite graph store.
type StoreConfig struct {
	// DataDir is the base directory for the store (contains index/).
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir" validate:"required"`

	// MaxResults is the default maximum number of node search hits (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results" validate:"gte=0"`
}

// SearchConfig holds settings for in-memory node search.
type SearchConfig struct {
	// MinQueryLength is the shortest query that produces results (default 2).
	MinQueryLength int `json:"min_query_length" yaml:"min_query_length" mapstructure:"min_query_length" validate:"gte=0"`

	// MaxResults limits the number of results (default 10).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results" validate:"gte=0"`
}

// ViewConfig holds presentation settings for the rendered graph.
type ViewConfig struct {
	// Layout selects the initial layout: force, circle, or grid.
	Layout string `json:"layout" yaml:"layout" mapstructure:"layout" validate:"omitempty,oneof=force circle grid"`

	// ResearchersOnly renders only researcher nodes and the links between them.
	ResearchersOnly bool `json:"researchers_only" yaml:"researchers_only" mapstructure:"researchers_only"`

	// NodeColors maps a node type to a CSS color.
	NodeColors map[NodeType]string `json:"node_colors" yaml:"node_colors" mapstructure:"node_colors"`

	// NodeRadius maps a node type to a circle radius in pixels.
	NodeRadius map[NodeType]int `json:"node_radius" yaml:"node_radius" mapstructure:"node_radius"`

	// EdgeColors maps an edge type to a CSS color.
	EdgeColors map[EdgeType]string `json:"edge_colors" yaml:"edge_colors" mapstructure:"edge_colors"`
}

// ServerConfig holds settings for the HTTP viewer.
type ServerConfig struct {
	// Addr is the listen address (default ":8090").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr" validate:"required"`

	// RequestsPerSecond rate-limits /api routes (0 disables limiting).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"`

	// Burst is the rate limiter bucket size.
	Burst int `json:"burst" yaml:"burst" mapstructure:"burst" validate:"gte=0"`

	// ReloadDebounce is the quiet period before a watched file change
	// triggers a reload (default 500ms).
	ReloadDebounce time.Duration `json:"reload_debounce" yaml:"reload_debounce" mapstructure:"reload_debounce" validate:"gte=0"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`

	// Format is text or json.
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"omitempty,oneof=text json"`
}

// Config groups every component configuration.
type Config struct {
	Source SourceConfig `json:"source" yaml:"source" mapstructure:"source"`
	Store  StoreConfig  `json:"store" yaml:"store" mapstructure:"store"`
	Search SearchConfig `json:"search" yaml:"search" mapstructure:"search"`
	View   ViewConfig   `json:"view" yaml:"view" mapstructure:"view"`
	Server ServerConfig `json:"server" yaml:"server" mapstructure:"server"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
}
