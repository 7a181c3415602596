// Package dom wraps golang.org/x/net/html with the mutable, queryable document
// tree used by the transform chain and the search indexer.
//
// Every document is anchored at a synthetic base address. Links resolve
// against it, so a transform can tell a link to another page of the site from
// a link to the outside web by comparing hostnames, without any site
// configuration.
package dom

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docpost/internal/foundation/errors"
)

// SyntheticBase is the base address every document is resolved against.
const SyntheticBase = "https://docpost.invalid/"

// Doctype is the literal prefix written by Serialize.
const Doctype = "<!DOCTYPE html>"

var syntheticBaseURL = mustParseURL(SyntheticBase)

// ErrMalformedMarkup is returned when no document tree could be produced.
var ErrMalformedMarkup = errors.ParseError("malformed markup").Build()

// Document is a parsed page. It is owned by the pass that created it and must
// not be shared across pages.
type Document struct {
	root *html.Node
	elem *html.Node
}

// Parse builds a document tree from raw markup.
func Parse(markup string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryParse, ErrMalformedMarkup.Message()).Build()
	}
	elem := FindFirst(root, ByAtom(atom.Html))
	if elem == nil {
		return nil, ErrMalformedMarkup
	}
	return &Document{root: root, elem: elem}, nil
}

// Root returns the document node.
func (d *Document) Root() *html.Node { return d.root }

// Element returns the <html> element.
func (d *Document) Element() *html.Node { return d.elem }

// Body returns the <body> element, or nil.
func (d *Document) Body() *html.Node { return FindFirst(d.elem, ByAtom(atom.Body)) }

// Title returns the trimmed text of the <title> element.
func (d *Document) Title() string {
	t := FindFirst(d.elem, ByAtom(atom.Title))
	if t == nil {
		return ""
	}
	return strings.TrimSpace(Text(t))
}

// Scope returns the outermost elements matching selector in document order.
// An empty selector scopes to <body>.
func (d *Document) Scope(selector string) ([]*html.Node, error) {
	if strings.TrimSpace(selector) == "" {
		if b := d.Body(); b != nil {
			return []*html.Node{b}, nil
		}
		return nil, nil
	}
	m, err := Compile(selector)
	if err != nil {
		return nil, err
	}
	return TopLevel(FindAll(d.elem, m)), nil
}

// ScopeOrBody is Scope with a fallback to <body> when nothing matches.
func (d *Document) ScopeOrBody(selector string) ([]*html.Node, error) {
	nodes, err := d.Scope(selector)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		if b := d.Body(); b != nil {
			return []*html.Node{b}, nil
		}
	}
	return nodes, nil
}

// Serialize renders the doctype followed by the root element's markup.
func (d *Document) Serialize() (string, error) {
	var buf bytes.Buffer
	buf.WriteString(Doctype)
	if err := html.Render(&buf, d.elem); err != nil {
		return "", errors.WrapError(err, errors.CategoryFormat, "serialize document").Build()
	}
	return buf.String(), nil
}

// Resolve resolves href against the synthetic base. A <base> element in the
// page is ignored.
func (d *Document) Resolve(href string) (*url.URL, error) {
	return ResolveHref(href)
}

// IsInternal reports whether href points to this site.
func (d *Document) IsInternal(href string) bool {
	return IsInternalHref(href)
}

// ResolveHref resolves href against the synthetic base.
func ResolveHref(href string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil, err
	}
	return syntheticBaseURL.ResolveReference(ref), nil
}

// IsInternalHref reports whether href resolves to the synthetic host.
// Unparseable hrefs and non-http schemes (mailto:, tel:) are not internal.
func IsInternalHref(href string) bool {
	u, err := ResolveHref(href)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return strings.EqualFold(u.Hostname(), syntheticBaseURL.Hostname())
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}
