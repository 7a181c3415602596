// Package search builds the site-wide full-text index once every page of a
// build has been written, and queries persisted index artifacts.
package search

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"git.home.luguber.info/inful/docpost/internal/bench"
	"git.home.luguber.info/inful/docpost/internal/foundation/errors"
	"git.home.luguber.info/inful/docpost/internal/fsutil"
	"git.home.luguber.info/inful/docpost/internal/logfields"
	"git.home.luguber.info/inful/docpost/internal/metrics"
	"git.home.luguber.info/inful/docpost/internal/site"
)

//go:embed assets/search.js
var runtimeJS []byte

// Boosts are the field relevance multipliers.
type Boosts struct {
	Title    float64 `yaml:"title"`
	Headings float64 `yaml:"headings"`
	Body     float64 `yaml:"body"`
}

// Config locates the artifact and controls extraction.
type Config struct {
	OutputDir       string
	AssetsDir       string
	IndexFile       string
	ScriptDir       string
	ScriptName      string
	ContentSelector string
	Boosts          Boosts
}

// DefaultConfig returns the defaults for outputDir.
func DefaultConfig(outputDir string) Config {
	return Config{
		OutputDir:       outputDir,
		AssetsDir:       "assets",
		IndexFile:       "search-index.json",
		ScriptDir:       "js",
		ScriptName:      "search.js",
		ContentSelector: "main",
		Boosts:          Boosts{Title: 10, Headings: 5, Body: 1},
	}
}

// Validate checks paths and the strict title > headings > body > 0 order.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.ConfigError("search output directory is required").Build()
	}
	for key, v := range map[string]string{"assets_dir": c.AssetsDir, "index_file": c.IndexFile, "script_name": c.ScriptName} {
		if v == "" {
			return errors.ConfigError("search setting must not be empty").WithContext("key", key).Build()
		}
	}
	if filepath.Base(c.IndexFile) != c.IndexFile || filepath.Base(c.ScriptName) != c.ScriptName {
		return errors.ConfigError("search file names must not contain path separators").Build()
	}
	b := c.Boosts
	if !(b.Title > b.Headings && b.Headings > b.Body && b.Body > 0) {
		return errors.ConfigError("search boosts must satisfy title > headings > body > 0").
			WithContext("boosts", fmt.Sprintf("%g/%g/%g", b.Title, b.Headings, b.Body)).
			Build()
	}
	return nil
}

// Fields returns the indexed fields with their boosts.
func (c Config) Fields() []Field {
	return []Field{
		{Name: FieldTitle, Boost: c.Boosts.Title},
		{Name: FieldHeadings, Boost: c.Boosts.Headings},
		{Name: FieldBody, Boost: c.Boosts.Body},
	}
}

// IndexPath is where the artifact is written.
func (c Config) IndexPath() string {
	return filepath.Join(c.OutputDir, c.AssetsDir, c.IndexFile)
}

// ScriptPath is where the query runtime is copied.
func (c Config) ScriptPath() string {
	return filepath.Join(c.OutputDir, c.AssetsDir, c.ScriptDir, c.ScriptName)
}

// Builder indexes a finished site exactly once per process. The first
// successful OnBuildComplete sets the gate; later calls are no-ops, because
// they may carry only the pages touched by an incremental rebuild.
type Builder struct {
	cfg      Config
	acc      *bench.Accumulator
	logger   *slog.Logger
	recorder metrics.Recorder

	mu    sync.Mutex
	built bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithRecorder reports index build durations to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) {
		if r != nil {
			b.recorder = r
		}
	}
}

// NewBuilder validates cfg and returns a builder with the gate unset. The
// accumulator's timing report is emitted after the first successful build.
func NewBuilder(cfg Config, acc *bench.Accumulator, logger *slog.Logger, opts ...Option) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if acc == nil {
		acc = bench.NewAccumulator()
	}
	b := &Builder{cfg: cfg, acc: acc, logger: logger, recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Built reports whether the gate is set.
func (b *Builder) Built() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.built
}

// Config returns the builder's configuration.
func (b *Builder) Config() Config { return b.cfg }

// OnBuildComplete indexes results, in order, as ids 0..n-1. It must only be
// called once every page in results has been written. On failure nothing is
// marked built, so a later signal may retry.
func (b *Builder) OnBuildComplete(results []site.RenderResult) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ctx := context.Background()
	if b.built {
		b.logger.LogAttrs(ctx, slog.LevelDebug, "search index already built, ignoring signal",
			logfields.Pages(len(results)))
		b.recorder.ObserveIndexBuild(0, 0, metrics.ResultSkipped)
		return nil
	}

	start := time.Now()
	n, err := b.build(results)
	d := time.Since(start)
	if err != nil {
		b.recorder.ObserveIndexBuild(d, n, metrics.ResultFailed)
		return err
	}
	b.recorder.ObserveIndexBuild(d, n, metrics.ResultSuccess)

	b.built = true
	b.logger.LogAttrs(ctx, slog.LevelInfo, "search index built",
		logfields.Entries(n),
		logfields.Path(b.cfg.IndexPath()),
		logfields.Duration(d))
	b.acc.Report(b.logger)
	return nil
}

func (b *Builder) build(results []site.RenderResult) (int, error) {
	ix := NewIndex(b.cfg.Fields())
	refs := make(map[int]Ref, len(results))

	for id, r := range results {
		e, err := extract(id, r, b.cfg.ContentSelector)
		if err != nil {
			return id, indexFailure(err, "extract page").WithContext("indexed_page", r.OutputPath).Build()
		}
		if err := ix.Add(e); err != nil {
			return id, indexFailure(err, "add page").WithContext("indexed_page", r.OutputPath).Build()
		}
		refs[id] = Ref{Title: e.Title, URL: e.URL}
	}

	artifact := &Artifact{SearchIndex: ix.Serialize(), Map: refs}
	data, err := artifact.Marshal()
	if err != nil {
		return len(results), indexFailure(err, "encode artifact").Build()
	}
	if err := fsutil.WriteFileAtomic(b.cfg.IndexPath(), data, 0o644); err != nil {
		return len(results), indexFailure(err, "write artifact").WithContext("path", b.cfg.IndexPath()).Build()
	}
	if err := fsutil.WriteFileAtomic(b.cfg.ScriptPath(), runtimeJS, 0o644); err != nil {
		return len(results), indexFailure(err, "copy query runtime").WithContext("path", b.cfg.ScriptPath()).Build()
	}
	return len(results), nil
}

func indexFailure(err error, msg string) *errors.ErrorBuilder {
	return errors.WrapError(err, errors.CategoryIndex, msg).
		WithRetry(errors.RetryNextSignal).
		WithContext("scope", "search index")
}
