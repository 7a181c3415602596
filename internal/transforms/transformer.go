// Package transforms defines the contract shared by every per-page mutation
// and resolves a set of transforms into a validated, fixed execution order.
package transforms

import (
	"git.home.luguber.info/inful/docpost/internal/dom"
)

// Stage represents a major phase of the per-page chain.
// Stages execute in the order defined by StageOrder.
type Stage string

const (
	// StageNormalize fixes up generator output (e.g., external link attributes).
	StageNormalize Stage = "normalize"

	// StageEnrich adds structure to prose (e.g., heading anchors, table wrappers).
	StageEnrich Stage = "enrich"

	// StageHighlight rewrites code listings (e.g., code previews, syntax highlighting).
	StageHighlight Stage = "highlight"

	// StageDecorate attaches UI to elements produced by earlier stages (e.g., copy buttons).
	StageDecorate Stage = "decorate"

	// StageFinalize performs last-moment cleanup before serialization.
	StageFinalize Stage = "finalize"
)

// StageOrder defines the execution order of stages.
var StageOrder = []Stage{
	StageNormalize,
	StageEnrich,
	StageHighlight,
	StageDecorate,
	StageFinalize,
}

// Page is the routing context of the page being transformed.
type Page struct {
	// OutputPath is the page's path relative to the output directory.
	OutputPath string
	// URL is the site-relative URL the page is served at.
	URL string
}

// Options is everything a transform may read besides the tree itself.
// Transform-specific configuration lives on the transformer value.
type Options struct {
	Page Page
	// Scope is the selector of the container each DOM query is limited to.
	Scope string
}

// Transformer is a named, in-place mutation of a parsed page.
//
// Transform must only read and write doc and opts. It is invoked once per page
// per build and does not need to be safe to re-run on an already mutated tree.
type Transformer interface {
	// Name returns the unique identifier for this transformer (lowercase snake_case).
	Name() string

	// Stage returns the stage this transform executes in.
	Stage() Stage

	// Dependencies declares ordering constraints.
	Dependencies() Dependencies

	// Transform mutates doc.
	Transform(doc *dom.Document, opts Options) error
}

// Dependencies declares explicit ordering constraints between transforms.
type Dependencies struct {
	// MustRunAfter lists transforms that must complete before this one.
	MustRunAfter []string

	// MustRunBefore lists transforms that must run after this one.
	MustRunBefore []string
}

// StageIndex returns the position of stage in StageOrder, or -1.
func StageIndex(stage Stage) int {
	for i, s := range StageOrder {
		if s == stage {
			return i
		}
	}
	return -1
}

// IsValidStage returns true if the stage is defined in StageOrder.
func IsValidStage(stage Stage) bool {
	return StageIndex(stage) >= 0
}

// Func adapts a plain function into a Transformer. Used for small transforms
// and test harnesses.
type Func struct {
	ID    string
	In    Stage
	Deps  Dependencies
	Apply func(doc *dom.Document, opts Options) error
}

func (f Func) Name() string               { return f.ID }
func (f Func) Stage() Stage               { return f.In }
func (f Func) Dependencies() Dependencies { return f.Deps }
func (f Func) Transform(doc *dom.Document, opts Options) error {
	if f.Apply == nil {
		return nil
	}
	return f.Apply(doc, opts)
}
