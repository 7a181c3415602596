package config

import (
	"net"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docpost/internal/dom"
	"git.home.luguber.info/inful/docpost/internal/foundation/errors"
	"git.home.luguber.info/inful/docpost/internal/transforms"
	"git.home.luguber.info/inful/docpost/internal/transforms/builtin"
)

// Validate normalizes enum fields and checks the configuration as a whole.
func (c *Config) Validate() error {
	if err := c.normalize(); err != nil {
		return err
	}
	for _, check := range []func() error{
		c.validatePaths,
		c.validateTransforms,
		c.validateSearch,
		c.validateBuild,
		c.validateServe,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func invalid(key, msg string) *errors.ErrorBuilder {
	return errors.ConfigError(msg).WithContext("key", key)
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Source.Dir) == "" {
		return invalid("source.dir", "source directory is required").Build()
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		return invalid("output.dir", "output directory is required").Build()
	}
	if a := c.Output.AssetsDir; a == "" || filepath.IsAbs(a) || strings.HasPrefix(filepath.Clean(a), "..") {
		return invalid("output.assets_dir", "assets directory must be a relative path inside the output directory").
			WithContext("value", a).
			Build()
	}
	src, _ := filepath.Abs(c.Source.Dir)
	out, _ := filepath.Abs(c.Output.Dir)
	if src == out {
		return invalid("output.dir", "output directory must differ from the source directory").Build()
	}
	return nil
}

func (c *Config) validateTransforms() error {
	t := c.Transforms
	if t.ContentSelector != "" {
		if _, err := dom.Compile(t.ContentSelector); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid content selector").
				WithContext("key", "transforms.content_selector").
				Build()
		}
	}
	for _, l := range t.AnchorLevels {
		if l < 1 || l > 6 {
			return invalid("transforms.anchor_levels", "heading levels must be between 1 and 6").
				WithContext("value", l).
				Build()
		}
	}
	list, err := builtin.Chain(c.TransformSettings())
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid transform selection").
			WithContext("key", "transforms.disabled").
			Build()
	}
	if _, err := transforms.Resolve(list); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSearch() error {
	if !c.Search.Enabled {
		return nil
	}
	if c.Search.ContentSelector != "" {
		if _, err := dom.Compile(c.Search.ContentSelector); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid content selector").
				WithContext("key", "search.content_selector").
				Build()
		}
	}
	return c.SearchSettings().Validate()
}

func (c *Config) validateBuild() error {
	if c.Build.Workers < 0 {
		return invalid("build.workers", "workers must not be negative").Build()
	}
	return nil
}

func (c *Config) validateServe() error {
	if _, _, err := net.SplitHostPort(c.Serve.Listen); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid listen address").
			WithContext("key", "serve.listen").
			Build()
	}
	if c.Serve.Debounce < 0 {
		return invalid("serve.debounce", "debounce must not be negative").Build()
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid("metrics.path", "metrics path must start with /").Build()
	}
	return nil
}
