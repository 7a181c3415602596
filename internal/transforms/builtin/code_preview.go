package builtin

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"git.home.luguber.info/inful/docpost/internal/dom"
	"git.home.luguber.info/inful/docpost/internal/transforms"
)

// CodePreview turns "html-preview" listings into a rendered example followed
// by the source. The rendered copy is sanitized. Every "<lang>-preview"
// listing is retagged as plain "<lang>" so SyntaxHighlight picks it up; only
// html gets a rendered example.
type CodePreview struct {
	// Policy sanitizes the rendered example. Nil uses bluemonday's UGC policy.
	Policy *bluemonday.Policy
}

func (CodePreview) Name() string            { return NameCodePreview }
func (CodePreview) Stage() transforms.Stage { return transforms.StageHighlight }
func (CodePreview) Dependencies() transforms.Dependencies {
	return transforms.Dependencies{MustRunBefore: []string{NameSyntaxHighlight}}
}

func (t CodePreview) Transform(doc *dom.Document, opts transforms.Options) error {
	scope, err := doc.ScopeOrBody(opts.Scope)
	if err != nil {
		return err
	}
	policy := t.Policy
	if policy == nil {
		policy = bluemonday.UGCPolicy()
	}

	for _, b := range findCodeBlocks(scope) {
		if !strings.HasSuffix(b.lang, previewSuffix) {
			continue
		}
		lang := strings.TrimSuffix(b.lang, previewSuffix)
		dom.RemoveClass(b.code, languagePrefix+b.lang)
		dom.AddClass(b.code, languagePrefix+lang)
		if lang != "html" {
			continue
		}

		preview := dom.NewElement("div", "class", "code-preview", "data-lang", lang)
		nodes, err := dom.ParseFragment(policy.Sanitize(dom.Text(b.code)), preview)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			preview.AppendChild(n)
		}
		dom.InsertBefore(b.pre, preview)
		dom.AddClass(b.pre, "has-preview")
	}
	return nil
}
