// Package commands implements the docpost subcommands.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docpost/internal/config"
)

// Global is shared by all subcommands.
type Global struct {
	Logger *slog.Logger
	// Out receives user-facing output; defaults to stdout.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docpost.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build     BuildCmd     `cmd:"" help:"Render, transform and index the site"`
	Serve     ServeCmd     `cmd:"" help:"Build, then serve the site and rebuild on changes"`
	Search    SearchCmd    `cmd:"" help:"Query a built search index"`
	Visualize VisualizeCmd `cmd:"" help:"Visualize the transform chain (text, mermaid, dot, json)"`
	Init      InitCmd      `cmd:"" help:"Write a default configuration file"`
}

// AfterApply runs after flag parsing and installs a provisional logger; the
// configured handler replaces it once the configuration is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig reads the configuration and switches to the configured log
// handler. A missing docpost.yaml is fine; a missing file named with
// --config is not.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	explicit := c.Config != "" && !sameFile(c.Config, config.DefaultPath)
	cfg, err := config.LoadOrDefault(c.Config, explicit)
	if err != nil {
		return nil, err
	}
	g.Logger = cfg.Logging.NewLogger(os.Stderr, c.Verbose)
	slog.SetDefault(g.Logger)
	return cfg, nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
