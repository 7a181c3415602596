// Package config loads docpost.yaml: defaults, .env files, ${VAR} expansion,
// enum normalization and validation, in that order.
package config

import (
	"runtime"
	"time"

	"git.home.luguber.info/inful/docpost/internal/search"
	"git.home.luguber.info/inful/docpost/internal/transforms/builtin"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "docpost.yaml"

// Config is the complete docpost configuration.
type Config struct {
	Source     SourceConfig     `yaml:"source"`
	Output     OutputConfig     `yaml:"output"`
	Site       SiteConfig       `yaml:"site"`
	Transforms TransformsConfig `yaml:"transforms"`
	Search     SearchConfig     `yaml:"search"`
	Build      BuildConfig      `yaml:"build"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Serve      ServeConfig      `yaml:"serve"`
}

// SourceConfig locates the markdown tree.
type SourceConfig struct {
	Dir string `yaml:"dir"`
}

// OutputConfig locates the generated site.
type OutputConfig struct {
	Dir       string `yaml:"dir"`
	AssetsDir string `yaml:"assets_dir"`
	// Clean removes the output directory before a full build.
	Clean bool `yaml:"clean"`
}

// SiteConfig configures the stand-in site engine.
type SiteConfig struct {
	Title         string `yaml:"title"`
	Lang          string `yaml:"lang"`
	UnsafeHTML    bool   `yaml:"unsafe_html"`
	IncludeDrafts bool   `yaml:"include_drafts"`
}

// TransformsConfig configures the post-render transform chain.
type TransformsConfig struct {
	// ContentSelector scopes every transform to a container.
	ContentSelector    string   `yaml:"content_selector"`
	AnchorLevels       []int    `yaml:"anchor_levels"`
	AnchorSymbol       string   `yaml:"anchor_symbol"`
	ExternalLinkTarget string   `yaml:"external_link_target"`
	ExternalLinkRel    []string `yaml:"external_link_rel"`
	HighlightStyle     string   `yaml:"highlight_style"`
	CopyButtonLabel    string   `yaml:"copy_button_label"`
	Disabled           []string `yaml:"disabled"`
}

// SearchConfig configures the search index.
type SearchConfig struct {
	Enabled         bool          `yaml:"enabled"`
	ContentSelector string        `yaml:"content_selector"`
	IndexFile       string        `yaml:"index_file"`
	ScriptDir       string        `yaml:"script_dir"`
	ScriptName      string        `yaml:"script_name"`
	Boosts          search.Boosts `yaml:"boosts"`
}

// BuildConfig controls the page workers and the formatter.
type BuildConfig struct {
	// Workers bounds parallel page processing; 0 means one per CPU.
	Workers int           `yaml:"workers"`
	Format  FormatterKind `yaml:"format"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig exposes Prometheus metrics while serving.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ServeConfig configures the watch session and preview server.
type ServeConfig struct {
	Listen   string        `yaml:"listen"`
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns the built-in configuration.
func Default() *Config {
	ts := builtin.DefaultSettings()
	sc := search.DefaultConfig("public")
	return &Config{
		Source: SourceConfig{Dir: "docs"},
		Output: OutputConfig{Dir: "public", AssetsDir: sc.AssetsDir},
		Site:   SiteConfig{Title: "Documentation", Lang: "en"},
		Transforms: TransformsConfig{
			ContentSelector:    "main",
			AnchorLevels:       ts.AnchorLevels,
			AnchorSymbol:       ts.AnchorSymbol,
			ExternalLinkTarget: ts.ExternalLinkTarget,
			ExternalLinkRel:    ts.ExternalLinkRel,
			HighlightStyle:     ts.HighlightStyle,
			CopyButtonLabel:    ts.CopyButtonLabel,
		},
		Search: SearchConfig{
			Enabled:         true,
			ContentSelector: sc.ContentSelector,
			IndexFile:       sc.IndexFile,
			ScriptDir:       sc.ScriptDir,
			ScriptName:      sc.ScriptName,
			Boosts:          sc.Boosts,
		},
		Build:   BuildConfig{Format: FormatterWhitespace},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Metrics: MetricsConfig{Path: "/metrics"},
		Serve:   ServeConfig{Listen: "127.0.0.1:1313", Debounce: 300 * time.Millisecond},
	}
}

// TransformSettings returns the reference transform settings.
func (c *Config) TransformSettings() builtin.Settings {
	t := c.Transforms
	return builtin.Settings{
		AnchorLevels:       t.AnchorLevels,
		AnchorSymbol:       t.AnchorSymbol,
		ExternalLinkTarget: t.ExternalLinkTarget,
		ExternalLinkRel:    t.ExternalLinkRel,
		HighlightStyle:     t.HighlightStyle,
		CopyButtonLabel:    t.CopyButtonLabel,
		Disabled:           t.Disabled,
	}
}

// SearchSettings returns the index builder configuration.
func (c *Config) SearchSettings() search.Config {
	s := c.Search
	return search.Config{
		OutputDir:       c.Output.Dir,
		AssetsDir:       c.Output.AssetsDir,
		IndexFile:       s.IndexFile,
		ScriptDir:       s.ScriptDir,
		ScriptName:      s.ScriptName,
		ContentSelector: s.ContentSelector,
		Boosts:          s.Boosts,
	}
}

// WorkerCount resolves Build.Workers.
func (c *Config) WorkerCount() int {
	if c.Build.Workers > 0 {
		return c.Build.Workers
	}
	return runtime.NumCPU()
}
