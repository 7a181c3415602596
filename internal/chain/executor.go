// Package chain runs the resolved transform chain over one page at a time:
// parse, transforms in fixed order, serialize, format.
package chain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docpost/internal/bench"
	"git.home.luguber.info/inful/docpost/internal/dom"
	"git.home.luguber.info/inful/docpost/internal/format"
	"git.home.luguber.info/inful/docpost/internal/foundation/errors"
	"git.home.luguber.info/inful/docpost/internal/logfields"
	"git.home.luguber.info/inful/docpost/internal/metrics"
	"git.home.luguber.info/inful/docpost/internal/transforms"
)

// Executor applies a validated transform order to pages. It holds no
// per-page state and is safe for concurrent use as long as the transforms
// themselves are.
type Executor struct {
	order     []transforms.Transformer
	formatter format.Formatter
	acc       *bench.Accumulator
	recorder  metrics.Recorder
	logger    *slog.Logger
	scope     string
}

// Option configures an Executor.
type Option func(*Executor)

// WithRecorder forwards per-transform and per-page timings to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(e *Executor) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithLogger sets the logger used for per-page debug output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithScope sets the content selector passed to every transform.
func WithScope(selector string) Option {
	return func(e *Executor) { e.scope = selector }
}

// New resolves list into its execution order. Validation problems are
// reported here, once, before any page is processed.
func New(list []transforms.Transformer, f format.Formatter, acc *bench.Accumulator, opts ...Option) (*Executor, error) {
	order, err := transforms.Resolve(list)
	if err != nil {
		return nil, err
	}
	if f == nil {
		f = format.Noop{}
	}
	if acc == nil {
		acc = bench.NewAccumulator()
	}
	e := &Executor{
		order:     order,
		formatter: f,
		acc:       acc,
		recorder:  metrics.NoopRecorder{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Transforms returns the execution order.
func (e *Executor) Transforms() []transforms.Transformer {
	out := make([]transforms.Transformer, len(e.order))
	copy(out, e.order)
	return out
}

// Run produces the final content of one page. Any failure aborts the page;
// the returned error is classified and names the page and, where relevant,
// the transform.
func (e *Executor) Run(page transforms.Page, content string) (string, error) {
	start := time.Now()
	out, err := e.run(page, content)
	e.recorder.ObservePageDuration(time.Since(start))
	if err != nil {
		e.recorder.IncPageResult(metrics.ResultFailed)
		return "", err
	}
	e.recorder.IncPageResult(metrics.ResultSuccess)
	return out, nil
}

func (e *Executor) run(page transforms.Page, content string) (string, error) {
	doc, err := dom.Parse(content)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryParse, "parse page").
			WithContext("page", page.OutputPath).
			Build()
	}

	opts := transforms.Options{Page: page, Scope: e.scope}
	for _, t := range e.order {
		name := t.Name()
		d, err := e.acc.Time(name, func() error { return apply(t, doc, opts) })
		e.recorder.ObserveTransformDuration(name, d)
		if err != nil {
			e.recorder.IncTransformResult(name, metrics.ResultFailed)
			e.logger.LogAttrs(context.Background(), slog.LevelDebug, "transform failed",
				logfields.Page(page.OutputPath), logfields.Transform(name), logfields.Error(err))
			return "", errors.WrapError(err, errors.CategoryTransform, "transform failed").
				WithContext("page", page.OutputPath).
				WithContext("transform", name).
				WithContext("stage", string(t.Stage())).
				Build()
		}
		e.recorder.IncTransformResult(name, metrics.ResultSuccess)
	}

	serialized, err := doc.Serialize()
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryFormat, "serialize page").
			WithContext("page", page.OutputPath).
			Build()
	}

	formatted, err := e.formatter.Format(serialized)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryFormat, "format page").
			WithContext("page", page.OutputPath).
			Build()
	}

	e.logger.LogAttrs(context.Background(), slog.LevelDebug, "page processed",
		logfields.Page(page.OutputPath), logfields.URL(page.URL))
	return formatted, nil
}

// apply runs one transform. A panic fails the page rather than the worker.
func apply(t transforms.Transformer, doc *dom.Document, opts transforms.Options) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.TransformError("transform panicked").
				WithContext("panic", fmt.Sprint(r)).
				Build()
		}
	}()
	return t.Transform(doc, opts)
}
