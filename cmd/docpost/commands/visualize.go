package commands

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/docpost/internal/foundation/errors"
	"git.home.luguber.info/inful/docpost/internal/fsutil"
	"git.home.luguber.info/inful/docpost/internal/transforms"
	"git.home.luguber.info/inful/docpost/internal/transforms/builtin"
)

// VisualizeCmd implements the 'visualize' command.
type VisualizeCmd struct {
	Format string `short:"f" help:"Output format: text, mermaid, dot, json" default:"text" enum:"text,mermaid,dot,json"`
	Output string `short:"o" help:"Output file path (optional, prints to stdout if not specified)"`
	List   bool   `short:"l" help:"List available formats and exit"`
}

var formatDescriptions = map[transforms.VisualizationFormat]string{
	transforms.FormatText:    "Stages and transforms in execution order",
	transforms.FormatMermaid: "Mermaid flowchart",
	transforms.FormatDOT:     "Graphviz DOT graph",
	transforms.FormatJSON:    "Machine readable chain description",
}

// Run executes the visualize command.
func (cmd *VisualizeCmd) Run(g *Global, root *CLI) error {
	out := g.out()
	if cmd.List {
		_, _ = fmt.Fprintln(out, "Available visualization formats:")
		for _, f := range transforms.SupportedFormats() {
			_, _ = fmt.Fprintf(out, "  %-10s %s\n", f, formatDescriptions[f])
		}
		return nil
	}

	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	list, err := builtin.Chain(cfg.TransformSettings())
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid transform selection").Build()
	}
	ordered, err := transforms.Resolve(list)
	if err != nil {
		return err
	}
	rendered, err := transforms.Visualize(ordered, transforms.VisualizationFormat(cmd.Format))
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "failed to visualize chain").Build()
	}

	if cmd.Output == "" {
		_, _ = fmt.Fprint(out, rendered)
		return nil
	}
	if err := fsutil.WriteFileAtomic(cmd.Output, []byte(rendered), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output file").
			WithContext("path", cmd.Output).
			Build()
	}
	g.Logger.Info("Chain visualization written", slog.String("file", cmd.Output), slog.String("format", cmd.Format))
	return nil
}
