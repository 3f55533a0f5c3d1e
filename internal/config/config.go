// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads coauthor-graph settings from a YAML file, a .env
// file and COAUTHOR_GRAPH_* environment variables, in increasing order of
// precedence, and validates the result.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

const (
	// FileName is the config file base name looked up in . and
	// ~/.config/coauthor-graph/.
	FileName = "coauthor-graph"

	// EnvPrefix prefixes every environment override, e.g.
	// COAUTHOR_GRAPH_SOURCE_LOCATION.
	EnvPrefix = "COAUTHOR_GRAPH"

	// DefaultLocation is the graph source used when none is configured.
	DefaultLocation = "interesting_candidates_v5.graphml"
)

// defaults mirrors the viewer's built-in constants.
var defaults = map[string]any{
	"source.location":    DefaultLocation,
	"source.timeout":     30 * time.Second,
	"source.user_agent":  "coauthor-graph/0.1",
	"source.max_retries": 5,
	"source.max_bytes":   int64(256 << 20),
	"source.token":       "",
	"source.watch":       false,

	"store.data_dir":    "data",
	"store.max_results": 20,

	"search.min_query_length": 2,
	"search.max_results":      10,

	"view.layout":           "force",
	"view.researchers_only": false,
	"view.node_colors": map[string]any{
		string(types.NodeResearcher):  "#4CAF50",
		string(types.NodePublication): "#2196F3",
		string(types.NodePublisher):   "#FF9800",
	},
	"view.node_radius": map[string]any{
		string(types.NodeResearcher):  8,
		string(types.NodePublication): 6,
		string(types.NodePublisher):   6,
	},
	"view.edge_colors": map[string]any{
		string(types.EdgeCoauthor):   "#757575",
		string(types.EdgePublisher):  "#9C27B0",
		string(types.EdgeResearcher): "#607D8B",
	},

	"server.addr":                ":8090",
	"server.requests_per_second": 20.0,
	"server.burst":               40,
	"server.reload_debounce":     500 * time.Millisecond,

	"log.level":  "info",
	"log.format": "text",
}

var validate = validator.New()

// Init points v at the config file (cfgFile, or the default search paths),
// binds environment variables and registers defaults. It returns the config
// file used, or "" when none was found.
func Init(v *viper.Viper, cfgFile string) (string, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		if cfgFile == "" && errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// LoadDotEnv loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.View.NodeColors = canonicalKeys(cfg.View.NodeColors, types.NodeTypes)
	cfg.View.NodeRadius = canonicalKeys(cfg.View.NodeRadius, types.NodeTypes)
	cfg.View.EdgeColors = canonicalKeys(cfg.View.EdgeColors, types.EdgeTypes)

	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration produced by the built-in defaults alone.
func Default() types.Config {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	cfg, err := Load(v)
	if err != nil {
		panic(fmt.Sprintf("config: built-in defaults are invalid: %v", err))
	}
	return cfg
}

// Validate checks cfg against its struct tags.
func Validate(cfg types.Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// canonicalKeys restores the spelling of known keys; viper lowercases every
// map key it reads.
func canonicalKeys[K ~string, V any](m map[K]V, known []K) map[K]V {
	out := make(map[K]V, len(m))
	for k, val := range m {
		key := k
		for _, c := range known {
			if strings.EqualFold(string(c), string(k)) {
				key = c
				break
			}
		}
		out[key] = val
	}
	return out
}

// NewLogger builds the process logger from cfg, writing to w.
func NewLogger(cfg types.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
