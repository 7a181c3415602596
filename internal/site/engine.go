// Package site is a minimal stand-in for the site generation engine. It
// renders a directory of markdown files into complete HTML pages so the
// post-render pipeline has real input. Routing and markdown rendering live
// here and nowhere else.
package site

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/docpost/internal/foundation/errors"
)

//go:embed layout.html.tmpl
var layoutSource string

// Config controls rendering.
type Config struct {
	// SourceDir holds the markdown tree.
	SourceDir string
	SiteTitle string
	Lang      string
	// AssetBase is the URL prefix of the asset directory, e.g. "/assets".
	AssetBase string
	// UnsafeHTML passes raw HTML in markdown through unchanged.
	UnsafeHTML bool
	// IncludeDrafts renders pages marked draft.
	IncludeDrafts bool
}

// Engine renders markdown sources into pages.
type Engine struct {
	cfg    Config
	md     goldmark.Markdown
	layout *template.Template
}

// Source is one discovered markdown file.
type Source struct {
	// Path is relative to the source directory, with forward slashes.
	Path       string
	OutputPath string
	URL        string
	Title      string
	Weight     int
	Draft      bool
	body       []byte
}

type navItem struct {
	Title   string
	URL     string
	Current bool
}

type layoutData struct {
	Lang      string
	Title     string
	SiteTitle string
	AssetBase string
	Nav       []navItem
	Content   template.HTML
}

// New returns an engine for cfg.
func New(cfg Config) (*Engine, error) {
	if cfg.Lang == "" {
		cfg.Lang = "en"
	}
	if cfg.AssetBase == "" {
		cfg.AssetBase = "/assets"
	}
	cfg.AssetBase = strings.TrimSuffix(cfg.AssetBase, "/")

	tmpl, err := template.New("layout").Parse(layoutSource)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "parse page layout").Build()
	}

	var rendererOpts []goldmark.Option
	if cfg.UnsafeHTML {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(gmhtml.WithUnsafe()))
	}
	md := goldmark.New(append([]goldmark.Option{goldmark.WithExtensions(extension.GFM)}, rendererOpts...)...)

	return &Engine{cfg: cfg, md: md, layout: tmpl}, nil
}

// Discover walks the source directory and returns every markdown page,
// ordered by weight and then output path.
func (e *Engine) Discover() ([]Source, error) {
	root := e.cfg.SourceDir
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "source directory not accessible").
			WithContext("path", root).
			Build()
	}
	if !info.IsDir() {
		return nil, errors.FileSystemError("source path is not a directory").
			WithContext("path", root).
			UserAction().
			Build()
	}

	var sources []Source
	seen := make(map[string]string)
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if p != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(name), ".md") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		src, err := e.load(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if src.Draft && !e.cfg.IncludeDrafts {
			return nil
		}
		if other, dup := seen[src.OutputPath]; dup {
			return errors.ValidationError("two sources map to the same output path").
				WithContext("path", src.OutputPath).
				WithContext("sources", other+", "+src.Path).
				Build()
		}
		seen[src.OutputPath] = src.Path
		sources = append(sources, src)
		return nil
	})
	if err != nil {
		if errors.IsClassified(err) {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "walk source directory").
			WithContext("path", root).
			Build()
	}

	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].Weight != sources[j].Weight {
			return sources[i].Weight < sources[j].Weight
		}
		return sources[i].OutputPath < sources[j].OutputPath
	})
	return sources, nil
}

func (e *Engine) load(rel string) (Source, error) {
	raw, err := os.ReadFile(filepath.Join(e.cfg.SourceDir, filepath.FromSlash(rel)))
	if err != nil {
		return Source{}, errors.WrapError(err, errors.CategoryFileSystem, "read source").
			WithContext("page", rel).
			Build()
	}
	fm, body, err := splitFrontMatter(raw)
	if err != nil {
		return Source{}, errors.WrapError(err, errors.CategoryParse, "front matter").
			WithContext("page", rel).
			Build()
	}
	out := OutputPathFor(rel)
	title := fm.Title
	if title == "" {
		title = firstHeading(body)
	}
	return Source{
		Path:       rel,
		OutputPath: out,
		URL:        URLFor(out),
		Title:      title,
		Weight:     fm.Weight,
		Draft:      fm.Draft,
		body:       body,
	}, nil
}

// RenderAll renders every discovered page. Results are ordered by output
// path.
func (e *Engine) RenderAll(ctx context.Context) ([]RenderResult, error) {
	sources, err := e.Discover()
	if err != nil {
		return nil, err
	}
	results := make([]RenderResult, 0, len(sources))
	for i := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := e.render(sources, i)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].OutputPath < results[j].OutputPath })
	return results, nil
}

// RenderPaths renders only the pages whose source paths (relative to the
// source directory) are listed. Unknown or removed paths are skipped.
func (e *Engine) RenderPaths(ctx context.Context, paths []string) ([]RenderResult, error) {
	sources, err := e.Discover()
	if err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(paths))
	for _, p := range paths {
		want[path.Clean(filepath.ToSlash(p))] = true
	}
	var results []RenderResult
	for i, s := range sources {
		if !want[s.Path] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := e.render(sources, i)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].OutputPath < results[j].OutputPath })
	return results, nil
}

func (e *Engine) render(sources []Source, i int) (RenderResult, error) {
	src := sources[i]
	var body bytes.Buffer
	if err := e.md.Convert(src.body, &body); err != nil {
		return RenderResult{}, errors.WrapError(err, errors.CategoryRender, "render markdown").
			WithContext("page", src.Path).
			Build()
	}

	nav := make([]navItem, 0, len(sources))
	for j, s := range sources {
		nav = append(nav, navItem{Title: navTitle(s), URL: s.URL, Current: j == i})
	}

	var page bytes.Buffer
	err := e.layout.Execute(&page, layoutData{
		Lang:      e.cfg.Lang,
		Title:     src.Title,
		SiteTitle: e.cfg.SiteTitle,
		AssetBase: e.cfg.AssetBase,
		Nav:       nav,
		// #nosec G203 -- goldmark output, raw HTML is escaped unless UnsafeHTML is set
		Content: template.HTML(body.String()),
	})
	if err != nil {
		return RenderResult{}, errors.WrapError(err, errors.CategoryRender, "execute page layout").
			WithContext("page", src.Path).
			Build()
	}
	return RenderResult{OutputPath: src.OutputPath, Content: page.String()}, nil
}

func navTitle(s Source) string {
	if s.Title != "" {
		return s.Title
	}
	return FallbackTitle(s.OutputPath)
}
