package commands

import (
	"context"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docpost/internal/build"
	"git.home.luguber.info/inful/docpost/internal/logfields"
	"git.home.luguber.info/inful/docpost/internal/metrics"
	"git.home.luguber.info/inful/docpost/internal/server"
	"git.home.luguber.info/inful/docpost/internal/watch"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Listen  string `short:"l" help:"Listen address (overrides serve.listen)"`
	NoWatch bool   `name:"no-watch" help:"Serve the initial build without watching for changes"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if s.Listen != "" {
		cfg.Serve.Listen = s.Listen
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	var (
		recorder metrics.Recorder
		gatherer prom.Gatherer
	)
	if cfg.Metrics.Enabled {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		gatherer = reg
	}
	bc, err := build.NewContext(cfg, g.Logger, recorder)
	if err != nil {
		return err
	}
	d, err := build.NewDriver(cfg, bc)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	state := &server.BuildState{}
	res, err := d.Build(ctx)
	state.Record(res, err)
	if err != nil {
		// Keep serving: the watch session rebuilds once the page is fixed.
		g.Logger.Warn("initial build failed", logfields.Error(err))
	}

	srv := server.New(server.Options{
		Addr:        cfg.Serve.Listen,
		SiteDir:     cfg.Output.Dir,
		Logger:      g.Logger,
		Gatherer:    gatherer,
		MetricsPath: cfg.Metrics.Path,
		State:       state,
	})
	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		if err := srv.Stop(stopCtx); err != nil {
			g.Logger.Warn("HTTP server shutdown error", logfields.Error(err))
		}
	}()

	if s.NoWatch {
		<-ctx.Done()
		return nil
	}
	session, err := watch.New(cfg.Source.Dir, cfg.Serve.Debounce, d, g.Logger)
	if err != nil {
		return err
	}
	session.OnResult = state.Record
	return session.Run(ctx)
}
