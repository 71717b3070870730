// Package viewer orchestrates the full pipeline: load a dataset, summarize
// its schema, resolve the viewer cache, generate missing scripts through an
// LLM provider, and launch the result as a Streamlit app.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cedricrupb/dataviewer/core/cache"
	"github.com/cedricrupb/dataviewer/core/config"
	"github.com/cedricrupb/dataviewer/core/dataset"
	"github.com/cedricrupb/dataviewer/core/generator"
	"github.com/cedricrupb/dataviewer/core/launcher"
	"github.com/cedricrupb/dataviewer/core/provider"
	"github.com/cedricrupb/dataviewer/core/provider/registry"
)

// Stage identifies one step of a run_viewer invocation
type Stage string

const (
	StageLoading     Stage = "loading"
	StageSummarizing Stage = "summarizing-schema"
	StageCacheLookup Stage = "cache-lookup"
	StageGenerating  Stage = "generating"
	StageCacheWrite  Stage = "cache-write"
	StageLaunching   Stage = "launching"
)

// ErrNoDatasetLoaded is returned when the pipeline runs before LoadDataset
var ErrNoDatasetLoaded = errors.New("no dataset loaded")

// StageError tags a pipeline failure with the stage it originated from
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// failAt wraps an error with its originating stage
func failAt(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// Options control one viewer generation/run
type Options struct {
	Split       string // Dataset split, empty means the canonical default
	ExtraPrompt string // Additional requirements appended to the prompt
	Force       bool   // Regenerate and overwrite any cached entry
}

// Info describes a resolved viewer script
type Info struct {
	Key       string // Cache key
	Path      string // Script location on disk
	Cached    bool   // True when the script came from the cache
	Provider  string // Provider name, empty on a cache hit
	RequestID string // Generation request id, empty on a cache hit
}

// DataViewer drives the pipeline for one dataset at a time
type DataViewer struct {
	datasets *dataset.Client
	gen      *generator.Service
	store    cache.Cache
	launcher *launcher.Launcher

	sampleSize  int
	datasetName string

	progress func(Stage)
}

// New creates a DataViewer bound to an explicit provider. The provider is
// decided once by the caller and threaded through every generation; the
// pipeline never consults the environment again.
func New(p provider.Provider, cfg *config.Config) *DataViewer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	return &DataViewer{
		datasets:   dataset.NewClient(cfg.Dataset),
		gen:        generator.NewService(p),
		store:      cache.NewDiskCache(cfg.CacheDir()),
		launcher:   launcher.New(cfg.Launcher.Command),
		sampleSize: cfg.Dataset.SampleSize,
	}
}

// FromEnvironment creates a DataViewer with the provider resolved from the
// environment: ANTHROPIC_API_KEY is preferred, OPENAI_API_KEY is the
// fallback. Fails with ErrNoProviderConfigured when neither is set.
func FromEnvironment() (*DataViewer, error) {
	p, err := registry.FromEnvironment()
	if err != nil {
		return nil, err
	}
	return New(p, config.DefaultConfig()), nil
}

// SetProgressCallback registers a callback invoked as each stage begins
func (v *DataViewer) SetProgressCallback(fn func(Stage)) {
	v.progress = fn
}

// SetTimeout bounds each generation call
func (v *DataViewer) SetTimeout(timeout time.Duration) {
	v.gen.SetTimeout(timeout)
}

// Provider returns the configured provider, nil when none is set
func (v *DataViewer) Provider() provider.Provider {
	return v.gen.Provider()
}

// Cache returns the underlying viewer cache
func (v *DataViewer) Cache() cache.Cache {
	return v.store
}

// LoadDataset resolves the dataset identifier on the Hub. The per-split
// handle is opened lazily when a viewer is generated.
func (v *DataViewer) LoadDataset(ctx context.Context, name string) error {
	v.enter(StageLoading)
	if err := v.datasets.Exists(ctx, name); err != nil {
		return failAt(StageLoading, err)
	}
	v.datasetName = name
	return nil
}

// GenerateViewer resolves the viewer script for the loaded dataset: cache
// hits are reused unless Force is set, misses run one generation call and
// persist the result. Returns where the runnable script lives.
func (v *DataViewer) GenerateViewer(ctx context.Context, opts Options) (*Info, error) {
	if v.datasetName == "" {
		return nil, ErrNoDatasetLoaded
	}

	v.enter(StageLoading)
	handle, err := v.datasets.Load(ctx, v.datasetName, opts.Split)
	if err != nil {
		return nil, failAt(StageLoading, err)
	}

	v.enter(StageSummarizing)
	summary, err := dataset.Summarize(ctx, handle, v.sampleSize)
	if err != nil {
		return nil, failAt(StageSummarizing, err)
	}

	v.enter(StageCacheLookup)
	key := cache.Key(handle.Name(), handle.Split(), summary, opts.ExtraPrompt)
	if !opts.Force {
		if _, hit, err := v.store.Lookup(key); err != nil {
			return nil, failAt(StageCacheLookup, err)
		} else if hit {
			return &Info{Key: key, Path: v.store.Path(key), Cached: true}, nil
		}
	}

	v.enter(StageGenerating)
	result, err := v.gen.Generate(ctx, &generator.Request{
		Summary: summary,
		Card:    handle.Card(ctx),
		Extra:   opts.ExtraPrompt,
	})
	if err != nil {
		return nil, failAt(StageGenerating, err)
	}

	script, err := launcher.ComposeScript(handle.Name(), handle.Split(), result.Script)
	if err != nil {
		return nil, failAt(StageGenerating, err)
	}

	v.enter(StageCacheWrite)
	if err := v.store.Store(key, script); err != nil {
		return nil, failAt(StageCacheWrite, err)
	}

	return &Info{
		Key:       key,
		Path:      v.store.Path(key),
		Cached:    false,
		Provider:  result.Provider,
		RequestID: result.RequestID,
	}, nil
}

// RunViewer resolves the viewer script and launches it, blocking until the
// Streamlit process exits.
func (v *DataViewer) RunViewer(ctx context.Context, opts Options) error {
	info, err := v.GenerateViewer(ctx, opts)
	if err != nil {
		return err
	}
	return v.LaunchViewer(ctx, info)
}

// LaunchViewer starts the Streamlit process for an already resolved script
func (v *DataViewer) LaunchViewer(ctx context.Context, info *Info) error {
	v.enter(StageLaunching)
	if err := v.launcher.Launch(ctx, info.Path); err != nil {
		return failAt(StageLaunching, err)
	}
	return nil
}

// enter reports stage transitions to the progress callback
func (v *DataViewer) enter(stage Stage) {
	if v.progress != nil {
		v.progress(stage)
	}
}
