package builtin

import (
	"fmt"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docpost/internal/dom"
	"git.home.luguber.info/inful/docpost/internal/textutil"
	"git.home.luguber.info/inful/docpost/internal/transforms"
)

// HeadingAnchors gives headings a stable id and appends a self link.
type HeadingAnchors struct {
	Levels []int
	// Symbol is the text of the appended anchor.
	Symbol string
}

func (HeadingAnchors) Name() string                          { return NameHeadingAnchors }
func (HeadingAnchors) Stage() transforms.Stage               { return transforms.StageEnrich }
func (HeadingAnchors) Dependencies() transforms.Dependencies { return transforms.Dependencies{} }

func (t HeadingAnchors) Transform(doc *dom.Document, opts transforms.Options) error {
	if len(t.Levels) == 0 {
		return nil
	}
	scope, err := doc.ScopeOrBody(opts.Scope)
	if err != nil {
		return err
	}

	// ids already present anywhere in the page must not be reused.
	used := make(map[string]bool)
	for _, n := range dom.FindAll(doc.Element(), dom.WithAttr("id")) {
		used[dom.Attr(n, "id")] = true
	}

	symbol := t.Symbol
	if symbol == "" {
		symbol = "#"
	}

	for _, h := range dom.FindAllIn(scope, dom.Headings(t.Levels...)) {
		id := dom.Attr(h, "id")
		if id == "" {
			id = uniqueID(textutil.Slug(dom.Text(h)), used)
			dom.SetAttr(h, "id", id)
		}
		if hasAnchor(h) {
			continue
		}
		a := dom.NewElement("a", "class", "heading-anchor", "href", "#"+id, "aria-hidden", "true")
		a.AppendChild(dom.NewText(symbol))
		h.AppendChild(a)
	}
	return nil
}

func uniqueID(base string, used map[string]bool) string {
	if base == "" {
		base = "section"
	}
	id := base
	for i := 1; used[id]; i++ {
		id = fmt.Sprintf("%s-%d", base, i)
	}
	used[id] = true
	return id
}

func hasAnchor(h *html.Node) bool {
	return dom.FindFirst(h, dom.WithClass("heading-anchor")) != nil
}
