package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docpost/internal/dom"
)

func TestExternalLinks(t *testing.T) {
	doc := parse(t, page(`
<a id="rel" href="../guide/">guide</a>
<a id="abs" href="/api/">api</a>
<a id="frag" href="#top">top</a>
<a id="ext" href="https://go.dev/doc" rel="external">go</a>
<a id="proto" href="//cdn.example.com/x.js">cdn</a>
<a id="mail" href="mailto:a@b.c">mail</a>`))

	run(t, doc, ExternalLinks{Target: "_blank", Rel: []string{"noopener", "noreferrer"}})

	byID := map[string]map[string]string{}
	for _, a := range dom.FindAll(doc.Root(), dom.ByAtom(atom.A)) {
		byID[dom.Attr(a, "id")] = map[string]string{"target": dom.Attr(a, "target"), "rel": dom.Attr(a, "rel")}
	}

	for _, id := range []string{"rel", "abs", "frag", "mail"} {
		assert.Empty(t, byID[id]["target"], id)
	}
	assert.Equal(t, "_blank", byID["ext"]["target"])
	assert.Equal(t, "external noopener noreferrer", byID["ext"]["rel"])
	assert.Equal(t, "_blank", byID["proto"]["target"])
	assert.Empty(t, byID[""]["target"], "nav link is outside the content scope")
}

func TestExternalLinksWithoutTarget(t *testing.T) {
	doc := parse(t, page(`<a href="https://go.dev/">go</a>`))
	run(t, doc, ExternalLinks{Rel: []string{"noopener"}})

	a := dom.FindFirst(doc.Body(), dom.And(dom.ByAtom(atom.A), func(n *html.Node) bool { return dom.Attr(n, "href") == "https://go.dev/" }))
	_, hasTarget := dom.LookupAttr(a, "target")
	assert.False(t, hasTarget)
	assert.Equal(t, "noopener", dom.Attr(a, "rel"))
}
