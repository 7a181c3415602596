package search

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docpost/internal/dom"
	"git.home.luguber.info/inful/docpost/internal/site"
)

// codeWrapperClasses mark elements added around highlighted listings.
var codeWrapperClasses = []string{"code-block"}

// extract builds the index entry for one finished page.
func extract(id int, r site.RenderResult, selector string) (Entry, error) {
	doc, err := dom.Parse(r.Content)
	if err != nil {
		return Entry{}, err
	}
	region, err := doc.ScopeOrBody(selector)
	if err != nil {
		return Entry{}, err
	}

	title := doc.Title()
	if title == "" {
		title = site.FallbackTitle(r.OutputPath)
	}

	var headings []string
	for _, h := range dom.FindAllIn(region, dom.Headings(1, 2, 3, 4)) {
		if t := dom.CollapseWhitespace(dom.Text(h)); t != "" {
			headings = append(headings, t)
		}
	}

	removeCode(region)

	var body []string
	for _, n := range dom.TopLevel(region) {
		body = append(body, dom.BlockText(n))
	}

	return Entry{
		ID:       id,
		Title:    title,
		Headings: strings.Join(headings, " "),
		Body:     dom.CollapseWhitespace(strings.Join(body, " ")),
		URL:      site.URLFor(r.OutputPath),
	}, nil
}

// removeCode detaches language-tagged listings from the region, together
// with any wrapper a transform placed around them.
func removeCode(region []*html.Node) {
	tagged := dom.And(dom.ByAtom(atom.Pre, atom.Code), dom.WithClassPrefix("language-"))
	for _, n := range dom.FindAllIn(region, tagged) {
		if n.Parent == nil {
			continue // already gone with an ancestor
		}
		target := n
		if n.DataAtom == atom.Code {
			if pre := n.Parent; pre.Type == html.ElementNode && pre.DataAtom == atom.Pre {
				target = pre
			}
		}
		if w := target.Parent; w != nil && isCodeWrapper(w) {
			target = w
		}
		dom.Remove(target)
	}
}

func isCodeWrapper(n *html.Node) bool {
	for _, c := range codeWrapperClasses {
		if dom.HasClass(n, c) {
			return true
		}
	}
	return false
}
