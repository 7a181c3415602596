package builtin

import (
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docpost/internal/dom"
	"git.home.luguber.info/inful/docpost/internal/transforms"
)

const codeBlockClass = "code-block"

// CopyButton attaches a copy button to every highlighted listing. It only
// sees <pre> elements that SyntaxHighlight marked with data-lang, which is
// why it must run after both SyntaxHighlight and CodePreview.
type CopyButton struct {
	Label string
}

func (CopyButton) Name() string            { return NameCopyButton }
func (CopyButton) Stage() transforms.Stage { return transforms.StageDecorate }
func (CopyButton) Dependencies() transforms.Dependencies {
	return transforms.Dependencies{MustRunAfter: []string{NameSyntaxHighlight, NameCodePreview}}
}

func (t CopyButton) Transform(doc *dom.Document, opts transforms.Options) error {
	scope, err := doc.ScopeOrBody(opts.Scope)
	if err != nil {
		return err
	}
	label := t.Label
	if label == "" {
		label = "Copy"
	}
	for _, pre := range dom.FindAllIn(scope, dom.And(dom.ByAtom(atom.Pre), dom.WithAttr(attrLang))) {
		if p := pre.Parent; p != nil && dom.HasClass(p, codeBlockClass) {
			continue
		}
		wrapper := dom.NewElement("div", "class", codeBlockClass)
		dom.Wrap(pre, wrapper)
		button := dom.NewElement("button",
			"type", "button",
			"class", "copy-button",
			"aria-label", "Copy code to clipboard")
		button.AppendChild(dom.NewText(label))
		wrapper.InsertBefore(button, pre)
	}
	return nil
}
