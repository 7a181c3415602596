package builtin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpost/internal/dom"
	"git.home.luguber.info/inful/docpost/internal/transforms"
)

func page(body string) string {
	return `<!DOCTYPE html><html><head><title>T</title></head><body><nav><a href="https://nav.example.com/">n</a><h2>Nav</h2></nav><main>` +
		body + `</main></body></html>`
}

func parse(t *testing.T, markup string) *dom.Document {
	t.Helper()
	doc, err := dom.Parse(markup)
	require.NoError(t, err)
	return doc
}

func run(t *testing.T, doc *dom.Document, list ...transforms.Transformer) {
	t.Helper()
	opts := transforms.Options{Page: transforms.Page{OutputPath: "index.html", URL: "/"}, Scope: "main"}
	for _, tr := range list {
		require.NoError(t, tr.Transform(doc, opts), tr.Name())
	}
}

func serialize(t *testing.T, doc *dom.Document) string {
	t.Helper()
	out, err := doc.Serialize()
	require.NoError(t, err)
	return out
}
