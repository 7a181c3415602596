package builtin

import (
	"strings"

	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docpost/internal/dom"
	"git.home.luguber.info/inful/docpost/internal/transforms"
)

// ExternalLinks marks links that leave the site. A link is external when its
// host, resolved against the synthetic base, is not the synthetic host.
type ExternalLinks struct {
	// Target is written to the target attribute; empty leaves it untouched.
	Target string
	// Rel tokens merged into the rel attribute.
	Rel []string
}

func (ExternalLinks) Name() string                          { return NameExternalLinks }
func (ExternalLinks) Stage() transforms.Stage               { return transforms.StageNormalize }
func (ExternalLinks) Dependencies() transforms.Dependencies { return transforms.Dependencies{} }

func (t ExternalLinks) Transform(doc *dom.Document, opts transforms.Options) error {
	scope, err := doc.ScopeOrBody(opts.Scope)
	if err != nil {
		return err
	}
	for _, a := range dom.FindAllIn(scope, dom.And(dom.ByAtom(atom.A), dom.WithAttr("href"))) {
		href := dom.Attr(a, "href")
		u, err := doc.Resolve(href)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			continue
		}
		if doc.IsInternal(href) {
			continue
		}
		if t.Target != "" {
			dom.SetAttr(a, "target", t.Target)
		}
		if len(t.Rel) > 0 {
			dom.SetAttr(a, "rel", mergeTokens(dom.Attr(a, "rel"), t.Rel))
		}
	}
	return nil
}

func mergeTokens(existing string, add []string) string {
	tokens := strings.Fields(existing)
	seen := make(map[string]bool, len(tokens)+len(add))
	for _, tok := range tokens {
		seen[tok] = true
	}
	for _, tok := range add {
		if tok != "" && !seen[tok] {
			seen[tok] = true
			tokens = append(tokens, tok)
		}
	}
	return strings.Join(tokens, " ")
}
