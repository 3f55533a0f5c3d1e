// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/coauthor-graph/internal/graphml"
	"github.com/pdiddy/coauthor-graph/internal/httputil"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

const sampleGraphML = `<?xml version="1.0" encoding="UTF-8"?>
<graphml xmlns="http://graphml.graphdrawing.org/xmlns">
<graph id="G">
<node id="a" type="author" label="Dr A"></node>
<node id="b" type="paper" label="Paper B"></node>
<edge source="a" target="b" type="coauthor"></edge>
</graph>
</graphml>`

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.org/g.graphml"))
	assert.True(t, IsRemote("HTTP://example.org/g.graphml"))
	assert.False(t, IsRemote("data/g.graphml"))
	assert.False(t, IsRemote("/abs/https/g.graphml"))
}

func TestFetch_Remote(t *testing.T) {
	var gotAuth, gotAgent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(sampleGraphML))
	}))
	defer ts.Close()

	cfg := types.SourceConfig{Location: ts.URL + "/graph.graphml", Token: "tok"}
	cfg.UserAgent = "coauthor-graph-test"

	data, err := Fetch(context.Background(), ts.Client(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, sampleGraphML, string(data))
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "coauthor-graph-test", gotAgent)
}

func TestFetch_RemoteGzip(t *testing.T) {
	body := gzipBytes(t, sampleGraphML)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/gzip")
		w.Write(body)
	}))
	defer ts.Close()

	data, err := Fetch(context.Background(), ts.Client(), types.SourceConfig{Location: ts.URL}, nil)
	require.NoError(t, err)
	assert.Equal(t, sampleGraphML, string(data))
}

func TestFetch_RemoteStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	defer ts.Close()

	_, err := Fetch(context.Background(), ts.Client(), types.SourceConfig{Location: ts.URL}, nil)
	require.Error(t, err)
	assert.Equal(t, "HTTP error! status: 404", err.Error())
}

func TestFetch_RemoteRetriesUnavailable(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sampleGraphML))
	}))
	defer ts.Close()

	cfg := types.SourceConfig{Location: ts.URL}
	cfg.MaxRetries = 2
	data, err := Fetch(context.Background(), ts.Client(), cfg, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, 2, calls)
}

func TestFetch_LocalFiles(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "g.graphml")
	zipped := filepath.Join(dir, "g.graphml.gz")
	require.NoError(t, os.WriteFile(plain, []byte(sampleGraphML), 0o644))
	require.NoError(t, os.WriteFile(zipped, gzipBytes(t, sampleGraphML), 0o644))

	for _, path := range []string{plain, zipped} {
		data, err := Fetch(context.Background(), nil, types.SourceConfig{Location: path}, nil)
		require.NoError(t, err, path)
		assert.Equal(t, sampleGraphML, string(data), path)
	}
}

func TestFetch_TruncatedGzipKeepsPrefix(t *testing.T) {
	var big strings.Builder
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(&big, `<node id="n%d" label="Node %d"></node>`, i, i*7919)
	}
	full := gzipBytes(t, "<graphml><graph>"+big.String())
	path := filepath.Join(t.TempDir(), "cut.gz")
	require.NoError(t, os.WriteFile(path, full[:len(full)/2], 0o644))

	data, err := Fetch(context.Background(), nil, types.SourceConfig{Location: path}, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<graphml><graph>"))

	doc, err := graphml.Parse(string(data))
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Nodes)
}

func TestFetch_MaxBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.graphml")
	require.NoError(t, os.WriteFile(path, []byte(sampleGraphML), 0o644))

	_, err := Fetch(context.Background(), nil, types.SourceConfig{Location: path, MaxBytes: 10}, nil)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestFetch_Errors(t *testing.T) {
	_, err := Fetch(context.Background(), nil, types.SourceConfig{}, nil)
	assert.Error(t, err)

	_, err = Fetch(context.Background(), nil, types.SourceConfig{Location: filepath.Join(t.TempDir(), "missing")}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCompress(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "g.graphml")
	truncated := strings.TrimSuffix(sampleGraphML, "</graph>\n</graphml>")
	require.NoError(t, os.WriteFile(src, []byte(truncated), 0o644))

	res, err := Compress(src, "")
	require.NoError(t, err)
	assert.Equal(t, src+".gz", res.Dest)
	assert.False(t, res.Before.Complete())
	assert.True(t, res.After.Complete())
	assert.Equal(t, 2, res.After.NodeTags)
	assert.Equal(t, 1, res.After.EdgeTags)
	assert.Equal(t, int64(len(truncated)), res.OriginalSize)
	assert.Greater(t, res.CompressedSize, int64(0))
	assert.Contains(t, res.Summary(), "2 nodes, 1 edges")

	data, err := Fetch(context.Background(), nil, types.SourceConfig{Location: res.Dest}, nil)
	require.NoError(t, err)
	doc, err := graphml.Parse(string(data))
	require.NoError(t, err)
	assert.Len(t, doc.Nodes, 2)
	assert.Len(t, doc.Links, 1)
}

func TestCompress_RejectsNonGraphML(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"no graphml": `<graph><node id="a"></node></graph>`,
		"no graph":   `<graphml></graphml>`,
		"no nodes":   `<graphml><graph>`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			src := filepath.Join(dir, strings.ReplaceAll(name, " ", "-")+".graphml")
			require.NoError(t, os.WriteFile(src, []byte(content), 0o644))
			_, err := Compress(src, "")
			assert.Error(t, err)
		})
	}
}

func TestCompressResultRatio(t *testing.T) {
	assert.Equal(t, 0.0, CompressResult{}.Ratio())
	assert.InDelta(t, 25.0, CompressResult{OriginalSize: 400, CompressedSize: 100}.Ratio(), 0.001)
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "g.graphml")
	require.NoError(t, os.WriteFile(path, []byte(sampleGraphML), 0o644))

	fired := make(chan string, 10)
	w, err := NewWatcher(path, func(p string) { fired <- p }, WatcherOptions{Debounce: 50 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(sampleGraphML), 0o644))
	}

	select {
	case p := <-fired:
		assert.Equal(t, w.Path(), p)
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
	}

	select {
	case <-fired:
		t.Fatal("burst of writes should produce a single callback")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "g.graphml"), nil, WatcherOptions{})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}
