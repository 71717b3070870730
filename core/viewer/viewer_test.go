package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedricrupb/dataviewer/core/cache"
	"github.com/cedricrupb/dataviewer/core/config"
	"github.com/cedricrupb/dataviewer/core/dataset"
	"github.com/cedricrupb/dataviewer/core/generator"
	"github.com/cedricrupb/dataviewer/core/provider"
)

// countingProvider plays back a canned script and counts invocations
type countingProvider struct {
	calls    int
	response string
}

func (p *countingProvider) GenerateCode(ctx context.Context, req *provider.CodeRequest) (*provider.CodeResponse, error) {
	p.calls++
	return &provider.CodeResponse{
		ID:      fmt.Sprintf("gen-%d", p.calls),
		Model:   "mock-model",
		Content: p.response,
		Created: time.Now(),
	}, nil
}

func (p *countingProvider) Name() string    { return "mock" }
func (p *countingProvider) Available() bool { return true }

// newDatasetServer fakes the Hub and datasets-server for dataset "mnist"
// with splits train/test
func newDatasetServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/api/datasets/mnist", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"mnist"}`)
	})
	mux.HandleFunc("/api/datasets/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/splits", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"splits": []map[string]string{
				{"dataset": "mnist", "config": "mnist", "split": "train"},
				{"dataset": "mnist", "config": "mnist", "split": "test"},
			},
		})
	})
	mux.HandleFunc("/rows", func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		length, _ := strconv.Atoi(r.URL.Query().Get("length"))

		rows := make([]map[string]interface{}, 0, length)
		for i := offset; i < offset+length && i < 100; i++ {
			rows = append(rows, map[string]interface{}{
				"row_idx": i,
				"row":     map[string]interface{}{"image": map[string]interface{}{"src": "x"}, "label": i % 10},
			})
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"features": []map[string]interface{}{
				{"feature_idx": 0, "name": "image", "type": map[string]string{"_type": "Image"}},
				{"feature_idx": 1, "name": "label", "type": map[string]interface{}{"_type": "ClassLabel"}},
			},
			"rows":           rows,
			"num_rows_total": 100,
		})
	})
	mux.HandleFunc("/datasets/mnist/raw/main/README.md", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "# MNIST")
	})

	return httptest.NewServer(mux)
}

// newTestViewer wires a DataViewer against the fake server, a temp cache
// and a stub runner
func newTestViewer(t *testing.T, srv *httptest.Server, p provider.Provider) *DataViewer {
	t.Helper()

	tmpDir := t.TempDir()
	stub := filepath.Join(tmpDir, "runner.sh")
	require.NoError(t, os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0755))

	cfg := config.DefaultConfig()
	cfg.Dataset.HubURL = srv.URL
	cfg.Dataset.ServerURL = srv.URL
	cfg.Cache.Dir = filepath.Join(tmpDir, "viewers")
	cfg.Launcher.Command = stub

	return New(p, cfg)
}

const mockScript = "```python\ndef display_instance(instance):\n    st.write(instance)\n```"

func TestDataViewer_GenerateViewer(t *testing.T) {
	srv := newDatasetServer(t)
	defer srv.Close()

	ctx := context.Background()

	t.Run("miss generates once then hits", func(t *testing.T) {
		p := &countingProvider{response: mockScript}
		v := newTestViewer(t, srv, p)

		require.NoError(t, v.LoadDataset(ctx, "mnist"))

		// First run: empty cache, one generation call, entry written
		info, err := v.GenerateViewer(ctx, Options{Split: "test"})
		require.NoError(t, err)
		assert.False(t, info.Cached)
		assert.Equal(t, "mock", info.Provider)
		assert.NotEmpty(t, info.RequestID)
		assert.Equal(t, 1, p.calls)

		script, err := os.ReadFile(info.Path)
		require.NoError(t, err)
		assert.Contains(t, string(script), "def display_instance(instance):")
		assert.Contains(t, string(script), `load_dataset("mnist")`)

		// Second run: cache hit, provider never called again
		again, err := v.GenerateViewer(ctx, Options{Split: "test"})
		require.NoError(t, err)
		assert.True(t, again.Cached)
		assert.Equal(t, info.Key, again.Key)
		assert.Equal(t, info.Path, again.Path)
		assert.Empty(t, again.RequestID)
		assert.Equal(t, 1, p.calls)
	})

	t.Run("force always regenerates and overwrites", func(t *testing.T) {
		p := &countingProvider{response: mockScript}
		v := newTestViewer(t, srv, p)

		require.NoError(t, v.LoadDataset(ctx, "mnist"))

		first, err := v.GenerateViewer(ctx, Options{Split: "test"})
		require.NoError(t, err)
		require.Equal(t, 1, p.calls)

		p.response = "```python\ndef display_instance(instance):\n    st.json(instance)\n```"
		second, err := v.GenerateViewer(ctx, Options{Split: "test", Force: true})
		require.NoError(t, err)
		assert.Equal(t, 2, p.calls)
		assert.False(t, second.Cached)
		assert.Equal(t, first.Key, second.Key)

		script, err := os.ReadFile(second.Path)
		require.NoError(t, err)
		assert.Contains(t, string(script), "st.json(instance)")
	})

	t.Run("cache key is stable across viewers", func(t *testing.T) {
		p := &countingProvider{response: mockScript}
		v1 := newTestViewer(t, srv, p)
		v2 := newTestViewer(t, srv, p)

		require.NoError(t, v1.LoadDataset(ctx, "mnist"))
		require.NoError(t, v2.LoadDataset(ctx, "mnist"))

		a, err := v1.GenerateViewer(ctx, Options{Split: "test"})
		require.NoError(t, err)
		b, err := v2.GenerateViewer(ctx, Options{Split: "test"})
		require.NoError(t, err)

		assert.Equal(t, a.Key, b.Key)
	})

	t.Run("different prompt changes the key", func(t *testing.T) {
		p := &countingProvider{response: mockScript}
		v := newTestViewer(t, srv, p)

		require.NoError(t, v.LoadDataset(ctx, "mnist"))

		plain, err := v.GenerateViewer(ctx, Options{Split: "test"})
		require.NoError(t, err)
		themed, err := v.GenerateViewer(ctx, Options{Split: "test", ExtraPrompt: "dark theme"})
		require.NoError(t, err)

		assert.NotEqual(t, plain.Key, themed.Key)
		assert.Equal(t, 2, p.calls)
	})

	t.Run("unknown split fails without touching the cache", func(t *testing.T) {
		p := &countingProvider{response: mockScript}
		v := newTestViewer(t, srv, p)

		require.NoError(t, v.LoadDataset(ctx, "mnist"))

		_, err := v.GenerateViewer(ctx, Options{Split: "doesnotexist"})
		require.Error(t, err)
		assert.ErrorIs(t, err, dataset.ErrSplitNotFound)

		var stageErr *StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, StageLoading, stageErr.Stage)

		// No generation, no cache entry
		assert.Equal(t, 0, p.calls)
		entries, listErr := v.store.(*cache.DiskCache).List()
		require.NoError(t, listErr)
		assert.Empty(t, entries)
	})

	t.Run("generate before load", func(t *testing.T) {
		p := &countingProvider{response: mockScript}
		v := newTestViewer(t, srv, p)

		_, err := v.GenerateViewer(ctx, Options{Split: "test"})
		assert.ErrorIs(t, err, ErrNoDatasetLoaded)
	})

	t.Run("unknown dataset", func(t *testing.T) {
		p := &countingProvider{response: mockScript}
		v := newTestViewer(t, srv, p)

		err := v.LoadDataset(ctx, "does/notexist")
		require.Error(t, err)
		assert.ErrorIs(t, err, dataset.ErrDatasetNotFound)

		var stageErr *StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, StageLoading, stageErr.Stage)
	})
}

func TestDataViewer_RunViewer(t *testing.T) {
	srv := newDatasetServer(t)
	defer srv.Close()

	ctx := context.Background()
	p := &countingProvider{response: mockScript}
	v := newTestViewer(t, srv, p)

	require.NoError(t, v.LoadDataset(ctx, "mnist"))

	var stages []Stage
	v.SetProgressCallback(func(s Stage) { stages = append(stages, s) })

	require.NoError(t, v.RunViewer(ctx, Options{Split: "test"}))

	assert.Equal(t, []Stage{
		StageLoading,
		StageSummarizing,
		StageCacheLookup,
		StageGenerating,
		StageCacheWrite,
		StageLaunching,
	}, stages)

	// Cached second run skips generation and cache write
	stages = nil
	require.NoError(t, v.RunViewer(ctx, Options{Split: "test"}))
	assert.Equal(t, []Stage{
		StageLoading,
		StageSummarizing,
		StageCacheLookup,
		StageLaunching,
	}, stages)
	assert.Equal(t, 1, p.calls)
}

func TestFromEnvironment_NoKeys(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := FromEnvironment()
	assert.ErrorIs(t, err, provider.ErrNoProviderConfigured)
}

func TestStageError(t *testing.T) {
	err := failAt(StageGenerating, generator.ErrEmptyGeneration)
	assert.ErrorIs(t, err, generator.ErrEmptyGeneration)
	assert.Contains(t, err.Error(), "generating")
}
