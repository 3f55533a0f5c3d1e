// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source reads the GraphML document from a URL or a local file,
// writes compressed copies of it, and watches local copies for changes.
package source

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/pdiddy/coauthor-graph/internal/httputil"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// ErrTooLarge is returned when a document exceeds SourceConfig.MaxBytes.
var ErrTooLarge = errors.New("graph source exceeds size limit")

// gzipMagic starts every gzip stream.
var gzipMagic = []byte{0x1f, 0x8b}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Fetch returns the GraphML text at cfg.Location. URLs are fetched through
// httputil.DoWithRetry; anything else is read from disk. Gzipped content
// is decompressed. A zero MaxBytes means no limit.
func Fetch(ctx context.Context, client *http.Client, cfg types.SourceConfig, log *slog.Logger) ([]byte, error) {
	if cfg.Location == "" {
		return nil, errors.New("no graph source configured")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	var (
		data []byte
		err  error
	)
	if IsRemote(cfg.Location) {
		data, err = fetchRemote(ctx, client, cfg, log)
	} else {
		data, err = readFile(cfg.Location, cfg.MaxBytes)
	}
	if err != nil {
		return nil, err
	}

	if bytes.HasPrefix(data, gzipMagic) {
		var truncated bool
		data, truncated, err = gunzip(data, cfg.MaxBytes)
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", cfg.Location, err)
		}
		if truncated {
			log.Warn("gzip stream truncated, keeping partial document", "location", cfg.Location, "bytes", len(data))
		}
	}
	log.Debug("fetched graph source", "location", cfg.Location, "bytes", len(data))
	return data, nil
}

func fetchRemote(ctx context.Context, client *http.Client, cfg types.SourceConfig, log *slog.Logger) ([]byte, error) {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.Location, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/xml, application/gzip, */*")
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries, log)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
	}
	data, err := readLimited(resp.Body, cfg.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", req.URL.Redacted(), err)
	}
	return data, nil
}

func readFile(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening graph source: %w", err)
	}
	defer f.Close()

	data, err := readLimited(f, limit)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// gunzip decompresses data. A stream cut off mid-way yields the bytes
// recovered so far with truncated set; the GraphML repair stage deals with
// the rest.
func gunzip(data []byte, limit int64) (out []byte, truncated bool, err error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, false, err
	}
	defer zr.Close()

	var r io.Reader = zr
	if limit > 0 {
		r = io.LimitReader(zr, limit+1)
	}
	out, err = io.ReadAll(r)
	if limit > 0 && int64(len(out)) > limit {
		return nil, false, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}
	if errors.Is(err, io.ErrUnexpectedEOF) && len(out) > 0 {
		return out, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return out, false, nil
}

// readLimited reads all of r, failing with ErrTooLarge past limit bytes.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}
	return data, nil
}
