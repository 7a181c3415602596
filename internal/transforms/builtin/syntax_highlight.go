package builtin

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"git.home.luguber.info/inful/docpost/internal/dom"
	"git.home.luguber.info/inful/docpost/internal/transforms"
)

// SyntaxHighlight replaces the text of language-tagged listings with chroma
// class-based markup. Highlighted <pre> elements get the "chroma" class and a
// data-lang attribute, which later transforms use to find them.
//
// Listings whose language ends in "-preview" are left for CodePreview.
type SyntaxHighlight struct {
	// Style names the chroma style. Only class names are emitted, so the
	// style matters for the generated stylesheet, not the markup.
	Style string
}

func (SyntaxHighlight) Name() string                          { return NameSyntaxHighlight }
func (SyntaxHighlight) Stage() transforms.Stage               { return transforms.StageHighlight }
func (SyntaxHighlight) Dependencies() transforms.Dependencies { return transforms.Dependencies{} }

func (t SyntaxHighlight) Transform(doc *dom.Document, opts transforms.Options) error {
	scope, err := doc.ScopeOrBody(opts.Scope)
	if err != nil {
		return err
	}
	formatter := chromahtml.New(chromahtml.WithClasses(true), chromahtml.PreventSurroundingPre(true))
	style := styles.Get(t.Style)

	for _, b := range findCodeBlocks(scope) {
		if strings.HasSuffix(b.lang, previewSuffix) {
			continue
		}
		if _, done := dom.LookupAttr(b.pre, attrLang); done {
			continue
		}
		lexer := lexers.Get(b.lang)
		if lexer == nil {
			lexer = lexers.Fallback
		}
		lexer = chroma.Coalesce(lexer)

		source := dom.Text(b.code)
		it, err := lexer.Tokenise(nil, source)
		if err != nil {
			return fmt.Errorf("tokenise %s listing: %w", b.lang, err)
		}
		var buf bytes.Buffer
		if err := formatter.Format(&buf, style, it); err != nil {
			return fmt.Errorf("format %s listing: %w", b.lang, err)
		}
		nodes, err := dom.ParseFragment(buf.String(), b.code)
		if err != nil {
			return fmt.Errorf("parse highlighted %s listing: %w", b.lang, err)
		}
		dom.ReplaceChildren(b.code, nodes...)
		dom.AddClass(b.pre, "chroma")
		dom.AddClass(b.pre, languagePrefix+b.lang)
		dom.SetAttr(b.pre, attrLang, b.lang)
	}
	return nil
}
