package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpost/internal/foundation/errors"
	"git.home.luguber.info/inful/docpost/internal/search"
)

// run parses args like main does and returns what the command printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var (
		cli CLI
		out bytes.Buffer
	)
	g := &Global{Out: &out}
	parser, err := kong.New(&cli,
		kong.Name("docpost"),
		kong.Vars{"version": "test"},
		kong.Bind(g, &cli),
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
	)
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	err = kctx.Run()
	return out.String(), err
}

func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	docs := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(filepath.Join(docs, "components"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "index.md"),
		[]byte("---\ntitle: Overview\n---\nThis library ships a button and other widgets.\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "components", "button.md"),
		[]byte("---\ntitle: Button\n---\n## Usage\n\nClick the button to submit.\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "components", "alert.md"),
		[]byte("---\ntitle: Alert\n---\n## Usage\n\nAlerts notify the user.\n"), 0o600))

	cfg := fmt.Sprintf("source:\n  dir: %s\noutput:\n  dir: %s\n", docs, filepath.Join(dir, "public"))
	path := filepath.Join(dir, "docpost.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func TestBuildThenSearch(t *testing.T) {
	cfgPath := project(t)

	out, err := run(t, "-c", cfgPath, "build")
	require.NoError(t, err)
	assert.Contains(t, out, "Built 3 pages")
	assert.Contains(t, out, "search-index.json")

	out, err = run(t, "-c", cfgPath, "search", "button")
	require.NoError(t, err)
	assert.Contains(t, out, " 1. Button")
	assert.Contains(t, out, " 2. Overview")
	assert.NotContains(t, out, "Alert")

	out, err = run(t, "-c", cfgPath, "search", "--json", "-n", "1", "button")
	require.NoError(t, err)
	var results []search.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "/components/button/", results[0].URL)

	out, err = run(t, "-c", cfgPath, "search", "zebra")
	require.NoError(t, err)
	assert.Equal(t, "No results\n", out)
}

func TestBuildOutputOverride(t *testing.T) {
	cfgPath := project(t)
	alt := filepath.Join(t.TempDir(), "site")

	_, err := run(t, "-c", cfgPath, "build", "-o", alt)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(alt, "components", "button", "index.html"))
	assert.FileExists(t, filepath.Join(alt, "assets", "search-index.json"))
}

func TestSearchMissingIndex(t *testing.T) {
	_, err := run(t, "search", "--index", filepath.Join(t.TempDir(), "none.json"), "button")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}

func TestExplicitMissingConfig(t *testing.T) {
	_, err := run(t, "-c", filepath.Join(t.TempDir(), "custom.yaml"), "build")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestVisualize(t *testing.T) {
	cfgPath := project(t)

	out, err := run(t, "-c", cfgPath, "visualize")
	require.NoError(t, err)
	assert.Contains(t, out, "syntax_highlight")
	assert.Contains(t, out, "Total: 6 transforms")

	out, err = run(t, "visualize", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "mermaid")

	file := filepath.Join(t.TempDir(), "chain.dot")
	_, err = run(t, "-c", cfgPath, "visualize", "-f", "dot", "-o", file)
	require.NoError(t, err)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph")
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "init", "-o", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "docpost.yaml")
	assert.FileExists(t, filepath.Join(dir, "docpost.yaml"))

	_, err = run(t, "init", "-o", dir)
	require.Error(t, err)

	_, err = run(t, "init", "-o", dir, "--force")
	require.NoError(t, err)
}
