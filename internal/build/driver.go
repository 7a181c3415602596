package build

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docpost/internal/chain"
	"git.home.luguber.info/inful/docpost/internal/config"
	"git.home.luguber.info/inful/docpost/internal/format"
	"git.home.luguber.info/inful/docpost/internal/foundation/errors"
	"git.home.luguber.info/inful/docpost/internal/fsutil"
	"git.home.luguber.info/inful/docpost/internal/logfields"
	"git.home.luguber.info/inful/docpost/internal/site"
	"git.home.luguber.info/inful/docpost/internal/transforms"
	"git.home.luguber.info/inful/docpost/internal/transforms/builtin"
)

// StylesheetPath is the chroma stylesheet location relative to the assets
// directory.
const StylesheetPath = "css/chroma.css"

// Driver runs builds for one configuration.
type Driver struct {
	cfg     *config.Config
	bc      *Context
	engine  *site.Engine
	exec    *chain.Executor
	workers int

	// mu serializes builds; the watch session may trigger one while another
	// is still writing.
	mu sync.Mutex
}

// NewDriver resolves the transform chain and prepares the site engine.
// Chain validation errors surface here, before any page is processed.
func NewDriver(cfg *config.Config, bc *Context) (*Driver, error) {
	list, err := builtin.Chain(cfg.TransformSettings())
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid transform selection").Build()
	}
	return NewDriverWithTransforms(cfg, bc, list)
}

// NewDriverWithTransforms is NewDriver with an explicit transform list, for
// embedding custom transforms.
func NewDriverWithTransforms(cfg *config.Config, bc *Context, list []transforms.Transformer) (*Driver, error) {
	engine, err := site.New(site.Config{
		SourceDir:     cfg.Source.Dir,
		SiteTitle:     cfg.Site.Title,
		Lang:          cfg.Site.Lang,
		AssetBase:     "/" + filepath.ToSlash(cfg.Output.AssetsDir),
		UnsafeHTML:    cfg.Site.UnsafeHTML,
		IncludeDrafts: cfg.Site.IncludeDrafts,
	})
	if err != nil {
		return nil, err
	}
	exec, err := chain.New(list, formatterFor(cfg.Build.Format), bc.Accumulator,
		chain.WithRecorder(bc.Recorder),
		chain.WithLogger(bc.Logger),
		chain.WithScope(cfg.Transforms.ContentSelector),
	)
	if err != nil {
		return nil, err
	}
	return &Driver{cfg: cfg, bc: bc, engine: engine, exec: exec, workers: cfg.WorkerCount()}, nil
}

func formatterFor(kind config.FormatterKind) format.Formatter {
	if kind == config.FormatterNone {
		return format.Noop{}
	}
	return format.Whitespace{}
}

// Executor exposes the resolved chain, e.g. for visualization.
func (d *Driver) Executor() *chain.Executor { return d.exec }

// Build renders and processes every page, then fires the index builder with
// the full result set.
func (d *Driver) Build(ctx context.Context) (*Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cfg.Output.Clean {
		if err := os.RemoveAll(d.cfg.Output.Dir); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "clean output directory").
				WithContext("path", d.cfg.Output.Dir).
				Build()
		}
	}
	return d.run(ctx, func(ctx context.Context) ([]site.RenderResult, error) {
		return d.engine.RenderAll(ctx)
	})
}

// Rebuild re-renders and rewrites only the pages whose source paths changed.
// Until the search index has been built once, a rebuild is a full build, so
// the index never covers only a subset of the site.
func (d *Driver) Rebuild(ctx context.Context, changed []string) (*Result, error) {
	if d.bc.Index != nil && !d.bc.Index.Built() {
		return d.Build(ctx)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.run(ctx, func(ctx context.Context) ([]site.RenderResult, error) {
		return d.engine.RenderPaths(ctx, changed)
	})
}

func (d *Driver) run(ctx context.Context, render func(context.Context) ([]site.RenderResult, error)) (*Result, error) {
	res := &Result{
		BuildID:   uuid.NewString(),
		OutputDir: d.cfg.Output.Dir,
		StartTime: time.Now(),
	}
	logger := d.bc.Logger.With(logfields.BuildID(res.BuildID))

	rendered, err := render(ctx)
	if err != nil {
		return res.finish(statusFor(ctx)), err
	}
	if len(rendered) == 0 {
		logger.Info("Nothing to build")
		return res.finish(StatusSkipped), nil
	}
	logger.Info("Processing pages", logfields.Pages(len(rendered)), slog.Int("workers", d.workers))

	finals, err := d.process(ctx, rendered)
	if err != nil {
		return res.finish(statusFor(ctx)), err
	}
	for _, f := range finals {
		res.Pages = append(res.Pages, f.OutputPath)
	}
	if err := d.writeStylesheet(); err != nil {
		return res.finish(StatusFailed), err
	}

	if d.bc.Index != nil {
		wasBuilt := d.bc.Index.Built()
		if err := d.bc.Index.OnBuildComplete(finals); err != nil {
			logger.Error("Search index failed", logfields.Error(err))
			return res.finish(StatusFailed), err
		}
		res.Indexed = !wasBuilt && d.bc.Index.Built()
	} else {
		// The index builder owns the timing report; without it the first
		// successful build emits it.
		d.bc.Accumulator.Report(logger)
	}

	res.finish(StatusSuccess)
	logger.Info("Build complete",
		logfields.Pages(len(finals)),
		logfields.Duration(res.Duration),
		slog.Bool("indexed", res.Indexed))
	return res, nil
}

// process runs the chain over every page on a bounded worker pool and writes
// each final page. The returned slice keeps the input order. Any page error
// cancels the remaining work.
func (d *Driver) process(ctx context.Context, rendered []site.RenderResult) ([]site.RenderResult, error) {
	finals := make([]site.RenderResult, len(rendered))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, r := range rendered {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			page := transforms.Page{OutputPath: r.OutputPath, URL: site.URLFor(r.OutputPath)}
			out, err := d.exec.Run(page, r.Content)
			if err != nil {
				return err
			}
			dst := filepath.Join(d.cfg.Output.Dir, filepath.FromSlash(r.OutputPath))
			if err := fsutil.WriteFileAtomic(dst, []byte(out), 0o644); err != nil {
				return errors.WrapError(err, errors.CategoryFileSystem, "write page").
					WithContext("page", r.OutputPath).
					Build()
			}
			finals[i] = site.RenderResult{OutputPath: r.OutputPath, Content: out}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return finals, nil
}

// writeStylesheet emits the chroma classes used by highlighted listings.
func (d *Driver) writeStylesheet() error {
	var buf bytes.Buffer
	style := styles.Get(d.cfg.Transforms.HighlightStyle)
	if err := html.New(html.WithClasses(true)).WriteCSS(&buf, style); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "generate highlight stylesheet").Build()
	}
	dst := filepath.Join(d.cfg.Output.Dir, d.cfg.Output.AssetsDir, filepath.FromSlash(StylesheetPath))
	if err := fsutil.WriteFileAtomic(dst, buf.Bytes(), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write highlight stylesheet").
			WithContext("path", dst).
			Build()
	}
	return nil
}

func statusFor(ctx context.Context) Status {
	if ctx.Err() != nil {
		return StatusCancelled
	}
	return StatusFailed
}
