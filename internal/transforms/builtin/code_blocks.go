package builtin

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docpost/internal/dom"
)

// codeBlock is a <pre><code class="language-x"> listing.
type codeBlock struct {
	pre  *html.Node
	code *html.Node
	lang string
}

// findCodeBlocks returns language-tagged listings in scope, in document order.
func findCodeBlocks(scope []*html.Node) []codeBlock {
	var out []codeBlock
	for _, pre := range dom.FindAllIn(scope, dom.ByAtom(atom.Pre)) {
		code := firstElementChild(pre)
		if code == nil || code.DataAtom != atom.Code {
			continue
		}
		class, ok := dom.ClassWithPrefix(code, languagePrefix)
		if !ok {
			continue
		}
		lang := strings.TrimPrefix(class, languagePrefix)
		if lang == "" {
			continue
		}
		out = append(out, codeBlock{pre: pre, code: code, lang: lang})
	}
	return out
}

func firstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			return c
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return nil
			}
		}
	}
	return nil
}
