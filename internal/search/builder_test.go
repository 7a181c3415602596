package search

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpost/internal/bench"
	"git.home.luguber.info/inful/docpost/internal/foundation/errors"
	"git.home.luguber.info/inful/docpost/internal/site"
)

func htmlPage(title, main string) string {
	return fmt.Sprintf(`<!DOCTYPE html><html><head><title>%s</title></head>
<body><nav><a href="/">Home</a> navigation words</nav><main>%s</main></body></html>`, title, main)
}

func exampleSite() []site.RenderResult {
	return []site.RenderResult{
		{OutputPath: "components/button/index.html", Content: htmlPage("Button",
			`<h1>Button</h1><h2>Usage</h2><p>Click the button to submit.</p>`)},
		{OutputPath: "components/alert/index.html", Content: htmlPage("Alert",
			`<h1>Alert</h1><h2>Usage</h2><p>Alerts notify the user.</p>`)},
		{OutputPath: "index.html", Content: htmlPage("Overview",
			`<p>This library ships a button and other widgets.</p>`)},
	}
}

func newTestBuilder(t *testing.T, dir string) (*Builder, *bytes.Buffer, *bench.Accumulator) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	acc := bench.NewAccumulator()
	acc.Add("syntax_highlight", 12*time.Millisecond)
	b, err := NewBuilder(DefaultConfig(dir), acc, logger)
	require.NoError(t, err)
	return b, &logs, acc
}

func titles(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Title)
	}
	return out
}

func TestButtonAlertOverviewExample(t *testing.T) {
	dir := t.TempDir()
	b, _, _ := newTestBuilder(t, dir)
	require.NoError(t, b.OnBuildComplete(exampleSite()))

	a, err := LoadArtifact(filepath.Join(dir, "assets", "search-index.json"))
	require.NoError(t, err)

	results, err := a.Search("button", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Button", "Overview"}, titles(results),
		"title match beats body-only match and Alert does not match at all")
	assert.Equal(t, "/components/button/", results[0].URL)
	assert.Equal(t, "/", results[1].URL)
}

func TestDenseIDsAndURLs(t *testing.T) {
	dir := t.TempDir()
	b, _, _ := newTestBuilder(t, dir)
	results := append(exampleSite(),
		site.RenderResult{OutputPath: `docs\legacy.html`, Content: htmlPage("", "<p>old</p>")},
		site.RenderResult{OutputPath: "guide/index.html", Content: "<p>no title, no main</p>"},
	)
	require.NoError(t, b.OnBuildComplete(results))

	a, err := LoadArtifact(b.Config().IndexPath())
	require.NoError(t, err)
	assert.Equal(t, map[int]Ref{
		0: {Title: "Button", URL: "/components/button/"},
		1: {Title: "Alert", URL: "/components/alert/"},
		2: {Title: "Overview", URL: "/"},
		3: {Title: "legacy", URL: "/docs/legacy.html"},
		4: {Title: "guide", URL: "/guide/"},
	}, a.Map)
	assert.Equal(t, 5, a.SearchIndex.DocCount)

	hits, err := a.Search("title", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 4, hits[0].ID, "body falls back to <body> without a main element")
}

func TestExtractExcludesCode(t *testing.T) {
	page := site.RenderResult{
		OutputPath: "api/index.html",
		Content: htmlPage("API", `
<h2>Install   the
 client</h2>
<p>Run the installer.</p>
<div class="code-block"><button class="copy-button">Copy</button><pre class="chroma language-go" data-lang="go"><code class="language-go">func frobnicate() {}</code></pre></div>
<pre><code class="language-sh">apt-get install quuxlib</code></pre>
<p>Inline <code>plainword</code> stays.</p>
<h5>Deep heading</h5>`),
	}
	e, err := extract(7, page, "main")
	require.NoError(t, err)

	assert.Equal(t, 7, e.ID)
	assert.Equal(t, "API", e.Title)
	assert.Equal(t, "Install the client", e.Headings, "h5 is not a heading field")
	assert.Equal(t, "/api/", e.URL)
	assert.Contains(t, e.Body, "Run the installer.")
	assert.Contains(t, e.Body, "plainword")
	assert.NotContains(t, e.Body, "frobnicate")
	assert.NotContains(t, e.Body, "quuxlib")
	assert.NotContains(t, e.Body, "Copy")
	assert.NotContains(t, e.Body, "navigation", "text outside the content region is ignored")
	assert.Equal(t, strings.TrimSpace(e.Body), e.Body)
	assert.NotContains(t, e.Body, "  ")
}

func TestExtractCountsNestedRegionsOnce(t *testing.T) {
	page := site.RenderResult{
		OutputPath: "index.html",
		Content:    `<html><head><title>Z</title></head><body><main><article><p>unique zebra</p></article></main></body></html>`,
	}
	e, err := extract(0, page, "main, article")
	require.NoError(t, err)
	assert.Equal(t, "unique zebra", e.Body)

	page.Content = `<html><head><title>Z</title></head><body><main><h2>Zebra</h2></main><article><h2>Okapi</h2><p>striped</p></article></body></html>`
	e, err = extract(0, page, "main > h2, article")
	require.NoError(t, err)
	assert.Equal(t, "Zebra Okapi", e.Headings)
	assert.Equal(t, "Zebra Okapi striped", e.Body)
}

func TestBuildOnceGate(t *testing.T) {
	dir := t.TempDir()
	b, logs, _ := newTestBuilder(t, dir)
	require.NoError(t, b.OnBuildComplete(exampleSite()))
	assert.True(t, b.Built())

	first, err := os.ReadFile(b.Config().IndexPath())
	require.NoError(t, err)

	// A watch-session rebuild only carries the edited page.
	subset := []site.RenderResult{{OutputPath: "index.html", Content: htmlPage("Changed", "<p>only page</p>")}}
	require.NoError(t, b.OnBuildComplete(subset))

	second, err := os.ReadFile(b.Config().IndexPath())
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second), "the first artifact is kept")

	assert.Equal(t, 1, strings.Count(logs.String(), "transform=total"), "timing report is emitted once")
	assert.Contains(t, logs.String(), "transform=syntax_highlight ms=12")
	assert.Contains(t, logs.String(), "already built")
}

func TestRuntimeScriptIsCopied(t *testing.T) {
	dir := t.TempDir()
	b, _, _ := newTestBuilder(t, dir)
	require.NoError(t, b.OnBuildComplete(exampleSite()))

	got, err := os.ReadFile(filepath.Join(dir, "assets", "js", "search.js"))
	require.NoError(t, err)
	assert.Equal(t, runtimeJS, got)
	assert.Contains(t, string(got), "docpostSearch")
}

func TestFailureLeavesGateUnset(t *testing.T) {
	dir := t.TempDir()
	// A file where the assets directory should be makes the write fail.
	blocker := filepath.Join(dir, "assets")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	b, logs, _ := newTestBuilder(t, dir)
	err := b.OnBuildComplete(exampleSite())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryIndex))
	assert.False(t, b.Built())
	assert.NotContains(t, logs.String(), "transform=total")

	adapter := errors.NewCLIErrorAdapter(false, nil)
	assert.Contains(t, adapter.FormatError(err), "search index")

	require.NoError(t, os.Remove(blocker))
	require.NoError(t, b.OnBuildComplete(exampleSite()))
	assert.True(t, b.Built())
	assert.Contains(t, logs.String(), "transform=total")
}

func TestConfigValidate(t *testing.T) {
	good := DefaultConfig("public")
	require.NoError(t, good.Validate())

	tests := map[string]func(*Config){
		"no output":          func(c *Config) { c.OutputDir = "" },
		"no index file":      func(c *Config) { c.IndexFile = "" },
		"nested index file":  func(c *Config) { c.IndexFile = "a/b.json" },
		"equal boosts":       func(c *Config) { c.Boosts.Headings = c.Boosts.Title },
		"body above heading": func(c *Config) { c.Boosts.Body = 6 },
		"zero body":          func(c *Config) { c.Boosts.Body = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := DefaultConfig("public")
			mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
		})
	}

	_, err := NewBuilder(Config{}, nil, nil)
	assert.Error(t, err)
}
