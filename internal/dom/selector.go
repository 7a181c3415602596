package dom

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Matcher reports whether a node matches.
type Matcher func(n *html.Node) bool

// ByAtom matches elements by atom.
func ByAtom(atoms ...atom.Atom) Matcher {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, a := range atoms {
			if n.DataAtom == a {
				return true
			}
		}
		return false
	}
}

// ByTag matches elements by tag name, case-insensitively.
func ByTag(tags ...string) Matcher {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, t := range tags {
			if strings.EqualFold(n.Data, t) {
				return true
			}
		}
		return false
	}
}

// And matches when every matcher matches.
func And(ms ...Matcher) Matcher {
	return func(n *html.Node) bool {
		for _, m := range ms {
			if !m(n) {
				return false
			}
		}
		return true
	}
}

// Or matches when any matcher matches.
func Or(ms ...Matcher) Matcher {
	return func(n *html.Node) bool {
		for _, m := range ms {
			if m(n) {
				return true
			}
		}
		return false
	}
}

// WithClass matches elements carrying class.
func WithClass(class string) Matcher {
	return func(n *html.Node) bool { return n.Type == html.ElementNode && HasClass(n, class) }
}

// WithClassPrefix matches elements carrying a class starting with prefix.
func WithClassPrefix(prefix string) Matcher {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		_, ok := ClassWithPrefix(n, prefix)
		return ok
	}
}

// WithAttr matches elements that carry key.
func WithAttr(key string) Matcher {
	return func(n *html.Node) bool {
		_, ok := LookupAttr(n, key)
		return n.Type == html.ElementNode && ok
	}
}

// Compile turns a CSS selector group into a Matcher.
func Compile(selector string) (Matcher, error) {
	if strings.TrimSpace(selector) == "" {
		return nil, fmt.Errorf("empty selector %q", selector)
	}
	group, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return group.Match, nil
}

// FindAll returns every descendant of root (root included) matching m, in
// document order.
func FindAll(root *html.Node, m Matcher) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) bool {
		if m(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FindAllIn applies FindAll to each top-level root so overlapping scopes do
// not yield duplicates.
func FindAllIn(roots []*html.Node, m Matcher) []*html.Node {
	var out []*html.Node
	for _, r := range TopLevel(roots) {
		out = append(out, FindAll(r, m)...)
	}
	return out
}

// TopLevel drops every root nested inside an earlier one.
func TopLevel(roots []*html.Node) []*html.Node {
	out := make([]*html.Node, 0, len(roots))
	for i, r := range roots {
		if !nestedInAny(r, roots[:i]) {
			out = append(out, r)
		}
	}
	return out
}

// FindFirst returns the first node under root matching m.
func FindFirst(root *html.Node, m Matcher) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if m(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// Closest returns the nearest ancestor of n (n included) matching m.
func Closest(n *html.Node, m Matcher) *html.Node {
	for c := n; c != nil; c = c.Parent {
		if m(c) {
			return c
		}
	}
	return nil
}

func nestedInAny(n *html.Node, roots []*html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		for _, r := range roots {
			if p == r {
				return true
			}
		}
	}
	return false
}

// walk visits n and its descendants depth-first. Children are snapshotted so
// visit may detach the node it is given.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}
	for _, c := range children {
		walk(c, visit)
	}
}
