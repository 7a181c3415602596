package builtin

import (
	"fmt"
	"sort"

	"git.home.luguber.info/inful/docpost/internal/transforms"
)

// Settings configures the reference transforms.
type Settings struct {
	AnchorLevels       []int
	AnchorSymbol       string
	ExternalLinkTarget string
	ExternalLinkRel    []string
	HighlightStyle     string
	CopyButtonLabel    string
	// Disabled lists transform names to leave out of the chain.
	Disabled []string
}

// DefaultSettings mirrors the configuration defaults.
func DefaultSettings() Settings {
	return Settings{
		AnchorLevels:       []int{2, 3, 4},
		AnchorSymbol:       "#",
		ExternalLinkTarget: "_blank",
		ExternalLinkRel:    []string{"noopener", "noreferrer"},
		HighlightStyle:     "github",
		CopyButtonLabel:    "Copy",
	}
}

// All returns every reference transform configured from s, regardless of
// Disabled.
func All(s Settings) []transforms.Transformer {
	return []transforms.Transformer{
		ExternalLinks{Target: s.ExternalLinkTarget, Rel: s.ExternalLinkRel},
		HeadingAnchors{Levels: s.AnchorLevels, Symbol: s.AnchorSymbol},
		TableWrapper{},
		CodePreview{},
		SyntaxHighlight{Style: s.HighlightStyle},
		CopyButton{Label: s.CopyButtonLabel},
	}
}

// Names lists the reference transform names, sorted.
func Names() []string {
	var out []string
	for _, t := range All(DefaultSettings()) {
		out = append(out, t.Name())
	}
	sort.Strings(out)
	return out
}

// Chain returns the enabled reference transforms. Unknown names in Disabled
// are an error so typos do not go unnoticed. Disabling a transform that others
// depend on is caught later by transforms.Resolve.
func Chain(s Settings) ([]transforms.Transformer, error) {
	all := All(s)
	known := make(map[string]bool, len(all))
	for _, t := range all {
		known[t.Name()] = true
	}
	disabled := make(map[string]bool, len(s.Disabled))
	for _, name := range s.Disabled {
		if !known[name] {
			return nil, fmt.Errorf("unknown transform %q in disabled list (known: %v)", name, Names())
		}
		disabled[name] = true
	}
	out := make([]transforms.Transformer, 0, len(all))
	for _, t := range all {
		if !disabled[t.Name()] {
			out = append(out, t)
		}
	}
	return out, nil
}
