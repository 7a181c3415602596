package transforms

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChain(t *testing.T) []Transformer {
	t.Helper()
	resolved, err := Resolve([]Transformer{
		mock("external_links", StageNormalize, nil, nil),
		mock("syntax_highlight", StageHighlight, nil, nil),
		mock("copy_button", StageDecorate, []string{"syntax_highlight"}, nil),
	})
	require.NoError(t, err)
	return resolved
}

func TestVisualizeText(t *testing.T) {
	out, err := Visualize(sampleChain(t), FormatText)
	require.NoError(t, err)
	assert.Contains(t, out, "Stage 1: normalize")
	assert.Contains(t, out, "3. copy_button")
	assert.Contains(t, out, "runs after: syntax_highlight")
	assert.Contains(t, out, "Total: 3 transforms across 3 stages")
}

func TestVisualizeMermaidAndDOT(t *testing.T) {
	chain := sampleChain(t)

	mermaid, err := Visualize(chain, FormatMermaid)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(mermaid, "```mermaid"))
	assert.Contains(t, mermaid, "syntaxhighlight --> copybutton")

	dot, err := Visualize(chain, FormatDOT)
	require.NoError(t, err)
	assert.Contains(t, dot, `"syntax_highlight" -> "copy_button";`)
}

func TestVisualizeJSON(t *testing.T) {
	out, err := Visualize(sampleChain(t), FormatJSON)
	require.NoError(t, err)

	var parsed jsonChain
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, 3, parsed.TotalTransforms)
	assert.Equal(t, 3, parsed.TotalStages)
	assert.Equal(t, "copy_button", parsed.Transforms[2].Name)
	assert.Equal(t, []string{"syntax_highlight"}, parsed.Transforms[2].MustRunAfter)
	assert.Equal(t, []string{}, parsed.Transforms[0].MustRunBefore)
}

func TestVisualizeUnsupported(t *testing.T) {
	_, err := Visualize(nil, VisualizationFormat("png"))
	assert.Error(t, err)
}
