package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/docpost/internal/build"
	"git.home.luguber.info/inful/docpost/internal/config"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory (overrides output.dir)"`
	Clean  bool   `help:"Remove the output directory before building"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if err := b.apply(cfg); err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	_, err = RunBuild(ctx, g, cfg)
	return err
}

func (b *BuildCmd) apply(cfg *config.Config) error {
	if b.Output != "" {
		cfg.Output.Dir = b.Output
	}
	if b.Clean {
		cfg.Output.Clean = true
	}
	return cfg.Validate()
}

// RunBuild performs one full build and prints a summary.
func RunBuild(ctx context.Context, g *Global, cfg *config.Config) (*build.Result, error) {
	bc, err := build.NewContext(cfg, g.Logger, nil)
	if err != nil {
		return nil, err
	}
	d, err := build.NewDriver(cfg, bc)
	if err != nil {
		return nil, err
	}
	res, err := d.Build(ctx)
	if err != nil {
		return res, err
	}
	out := g.out()
	_, _ = fmt.Fprintf(out, "Built %d pages into %s in %s\n", len(res.Pages), res.OutputDir, res.Duration.Round(time.Millisecond))
	if res.Indexed {
		_, _ = fmt.Fprintf(out, "Search index written to %s\n", cfg.SearchSettings().IndexPath())
	}
	return res, nil
}
