package builtin

import (
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docpost/internal/dom"
	"git.home.luguber.info/inful/docpost/internal/transforms"
)

const tableWrapperClass = "table-wrapper"

// TableWrapper wraps tables so wide ones scroll instead of overflowing.
type TableWrapper struct{}

func (TableWrapper) Name() string                          { return NameTableWrapper }
func (TableWrapper) Stage() transforms.Stage               { return transforms.StageEnrich }
func (TableWrapper) Dependencies() transforms.Dependencies { return transforms.Dependencies{} }

func (TableWrapper) Transform(doc *dom.Document, opts transforms.Options) error {
	scope, err := doc.ScopeOrBody(opts.Scope)
	if err != nil {
		return err
	}
	for _, table := range dom.FindAllIn(scope, dom.ByAtom(atom.Table)) {
		if p := table.Parent; p != nil && dom.HasClass(p, tableWrapperClass) {
			continue
		}
		dom.Wrap(table, dom.NewElement("div", "class", tableWrapperClass))
	}
	return nil
}
