package chain

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpost/internal/bench"
	"git.home.luguber.info/inful/docpost/internal/dom"
	"git.home.luguber.info/inful/docpost/internal/format"
	"git.home.luguber.info/inful/docpost/internal/foundation/errors"
	"git.home.luguber.info/inful/docpost/internal/metrics"
	"git.home.luguber.info/inful/docpost/internal/transforms"
	"git.home.luguber.info/inful/docpost/internal/transforms/builtin"
)

const samplePage = `<!DOCTYPE html>
<html><head><title>Button</title></head>
<body><nav><a href="/">Home</a></nav>
<main>
<h2>Usage</h2>
<p>See <a href="https://example.com/">example</a>.</p>
<pre><code class="language-go">fmt.Println("hi")</code></pre>
<table><tr><td>x</td></tr></table>
</main>
</body></html>`

var testPage = transforms.Page{OutputPath: "button/index.html", URL: "/button/"}

// recorder counts calls; tests run sequentially so no locking is needed.
type recorder struct {
	metrics.NoopRecorder
	transforms map[string]int
	results    map[metrics.ResultLabel]int
}

func newRecorder() *recorder {
	return &recorder{transforms: map[string]int{}, results: map[metrics.ResultLabel]int{}}
}

func (r *recorder) ObserveTransformDuration(name string, _ time.Duration) { r.transforms[name]++ }
func (r *recorder) IncPageResult(l metrics.ResultLabel)                   { r.results[l]++ }

func appendMarker(name string, stage transforms.Stage, after ...string) transforms.Transformer {
	return transforms.Func{
		ID:   name,
		In:   stage,
		Deps: transforms.Dependencies{MustRunAfter: after},
		Apply: func(doc *dom.Document, _ transforms.Options) error {
			p := dom.NewElement("p", "class", "marker")
			p.AppendChild(dom.NewText(name))
			doc.Body().AppendChild(p)
			return nil
		},
	}
}

func TestRunAppliesTransformsInResolvedOrder(t *testing.T) {
	list := []transforms.Transformer{
		appendMarker("c", transforms.StageDecorate),
		appendMarker("b", transforms.StageEnrich, "a"),
		appendMarker("a", transforms.StageEnrich),
	}
	e, err := New(list, format.Noop{}, nil)
	require.NoError(t, err)

	out, err := e.Run(testPage, samplePage)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, dom.Doctype))

	ia := strings.Index(out, `<p class="marker">a</p>`)
	ib := strings.Index(out, `<p class="marker">b</p>`)
	ic := strings.Index(out, `<p class="marker">c</p>`)
	require.True(t, ia >= 0 && ib >= 0 && ic >= 0)
	assert.Less(t, ia, ib)
	assert.Less(t, ib, ic)
}

func TestRunIsDeterministic(t *testing.T) {
	list, err := builtin.Chain(builtin.DefaultSettings())
	require.NoError(t, err)
	e, err := New(list, format.Whitespace{}, nil, WithScope("main"))
	require.NoError(t, err)

	first, err := e.Run(testPage, samplePage)
	require.NoError(t, err)
	second, err := e.Run(testPage, samplePage)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Contains(t, first, `class="copy-button"`)
	assert.Contains(t, first, `<div class="table-wrapper">`)
	assert.Contains(t, first, `target="_blank"`)
	assert.True(t, strings.HasSuffix(first, "</html>\n"))
}

func TestRunRecordsTiming(t *testing.T) {
	acc := bench.NewAccumulator()
	rec := newRecorder()
	list := []transforms.Transformer{
		appendMarker("one", transforms.StageNormalize),
		appendMarker("two", transforms.StageFinalize),
	}
	e, err := New(list, nil, acc, WithRecorder(rec))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := e.Run(testPage, samplePage)
		require.NoError(t, err)
	}

	snap := acc.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "one", snap[0].Name)
	assert.Equal(t, 3, snap[0].Calls)
	assert.Equal(t, 3, snap[1].Calls)
	assert.Equal(t, 3, rec.transforms["two"])
	assert.Equal(t, 3, rec.results[metrics.ResultSuccess])
}

func TestRunAbortsOnTransformError(t *testing.T) {
	ran := false
	list := []transforms.Transformer{
		transforms.Func{ID: "boom", In: transforms.StageEnrich, Apply: func(*dom.Document, transforms.Options) error {
			return fmt.Errorf("no luck")
		}},
		transforms.Func{ID: "later", In: transforms.StageDecorate, Apply: func(*dom.Document, transforms.Options) error {
			ran = true
			return nil
		}},
	}
	rec := newRecorder()
	e, err := New(list, nil, nil, WithRecorder(rec))
	require.NoError(t, err)

	out, err := e.Run(testPage, samplePage)
	require.Error(t, err)
	assert.Empty(t, out)
	assert.False(t, ran, "later transforms must not run after a failure")
	assert.True(t, errors.HasCategory(err, errors.CategoryTransform))

	page, ok := errors.ContextString(err, "page")
	require.True(t, ok)
	assert.Equal(t, "button/index.html", page)
	name, _ := errors.ContextString(err, "transform")
	assert.Equal(t, "boom", name)
	assert.Contains(t, err.Error(), "no luck")
	assert.Equal(t, 1, rec.results[metrics.ResultFailed])
}

func TestRunTurnsTransformPanicIntoPageError(t *testing.T) {
	list := []transforms.Transformer{
		transforms.Func{ID: "nil_deref", In: transforms.StageEnrich, Apply: func(*dom.Document, transforms.Options) error {
			var n *dom.Document
			_ = n.Body()
			return nil
		}},
	}
	rec := newRecorder()
	e, err := New(list, nil, nil, WithRecorder(rec))
	require.NoError(t, err)

	_, err = e.Run(testPage, samplePage)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryTransform))
	assert.Contains(t, err.Error(), "transform panicked")
	name, _ := errors.ContextString(err, "transform")
	assert.Equal(t, "nil_deref", name)
	assert.Equal(t, 1, rec.results[metrics.ResultFailed])
}

func TestRunFormatError(t *testing.T) {
	failing := format.Func(func(string) (string, error) { return "", fmt.Errorf("bad output") })
	e, err := New(nil, failing, nil)
	require.NoError(t, err)

	_, err = e.Run(testPage, samplePage)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFormat))
}

func TestNewRejectsMisorderedChain(t *testing.T) {
	list := []transforms.Transformer{
		builtin.CopyButton{},
		transforms.Func{
			ID:   builtin.NameSyntaxHighlight,
			In:   transforms.StageFinalize,
			Deps: transforms.Dependencies{},
		},
		builtin.CodePreview{},
	}
	_, err := New(list, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestTransformsReturnsCopy(t *testing.T) {
	e, err := New([]transforms.Transformer{appendMarker("a", transforms.StageEnrich)}, nil, nil)
	require.NoError(t, err)
	got := e.Transforms()
	got[0] = nil
	assert.NotNil(t, e.Transforms()[0])
}
