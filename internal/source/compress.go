// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/pdiddy/coauthor-graph/internal/graphml"
)

// CompressResult reports what Compress wrote.
type CompressResult struct {
	Source         string
	Dest           string
	OriginalSize   int64
	CompressedSize int64

	// Before describes the source text; After the repaired text read back
	// from the compressed file.
	Before graphml.Structure
	After  graphml.Structure
}

// Ratio is the compressed size as a percentage of the original.
func (r CompressResult) Ratio() float64 {
	if r.OriginalSize == 0 {
		return 0
	}
	return float64(r.CompressedSize) / float64(r.OriginalSize) * 100
}

// Summary renders the sizes for humans.
func (r CompressResult) Summary() string {
	return fmt.Sprintf("%s -> %s (%s, %.2f%%), %d nodes, %d edges",
		humanize.Bytes(uint64(r.OriginalSize)),
		humanize.Bytes(uint64(r.CompressedSize)),
		filepath.Base(r.Dest),
		r.Ratio(),
		r.After.NodeTags,
		r.After.EdgeTags,
	)
}

// Compress validates the GraphML file at src, repairs it, and writes a
// gzip copy to dst (src + ".gz" when dst is empty). The written file is
// read back and inspected before the result is returned.
func Compress(src, dst string) (CompressResult, error) {
	if dst == "" {
		dst = src + ".gz"
	}
	raw, err := os.ReadFile(src)
	if err != nil {
		return CompressResult{}, fmt.Errorf("reading %s: %w", src, err)
	}

	before := graphml.Inspect(string(raw))
	if !before.HasGraphML {
		return CompressResult{}, errors.New("not a GraphML file (missing <graphml> tag)")
	}
	if !before.HasGraph {
		return CompressResult{}, errors.New("not a GraphML file (missing <graph> tag)")
	}

	repaired := graphml.Repair(string(raw))
	after := graphml.Inspect(repaired)
	if !after.Complete() {
		return CompressResult{}, errors.New("could not find complete node or edge tags")
	}

	if err := writeGzip(dst, []byte(repaired)); err != nil {
		return CompressResult{}, err
	}

	check, err := readGzipFile(dst)
	if err != nil {
		return CompressResult{}, fmt.Errorf("verifying %s: %w", dst, err)
	}
	if check != repaired {
		return CompressResult{}, fmt.Errorf("verifying %s: content mismatch after decompression", dst)
	}

	info, err := os.Stat(dst)
	if err != nil {
		return CompressResult{}, fmt.Errorf("stat %s: %w", dst, err)
	}
	return CompressResult{
		Source:         src,
		Dest:           dst,
		OriginalSize:   int64(len(raw)),
		CompressedSize: info.Size(),
		Before:         before,
		After:          graphml.Inspect(check),
	}, nil
}

// writeGzip writes data to path through a temporary file, renaming it into
// place on success.
func writeGzip(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".compress-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	zw, err := gzip.NewWriterLevel(tmpFile, gzip.BestCompression)
	if err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	_, writeErr := zw.Write(data)
	zipErr := zw.Close()
	closeErr := tmpFile.Close()
	if err := errors.Join(writeErr, zipErr, closeErr); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func readGzipFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
