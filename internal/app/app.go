// Package app implements the plugin layer for kiln.
package app

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"

	"go.trai.ch/kiln/internal/adapters/cas" //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/filter"
	"go.trai.ch/kiln/internal/engine/minify"
	"go.trai.ch/kiln/internal/engine/refresh"
	"go.trai.ch/kiln/internal/engine/resolution"
	"go.trai.ch/kiln/internal/engine/transform"
	"go.trai.ch/zerr"
)

// PluginName is the name the plugin registers with its host.
const PluginName = "kiln"

// Deps are the engines and services a Plugin runs on.
// Tracer and Metrics are optional.
type Deps struct {
	Transformer ports.Transformer
	Resolvers   ports.ResolverFactory
	Minifiers   ports.MinifierLoader
	Logger      ports.Logger
	Tracer      ports.Tracer
	Metrics     ports.Metrics
}

// Plugin wires the transform, resolve and minify stages into the host's lifecycle hooks.
// It is safe for concurrent use once ConfigResolved has returned.
type Plugin struct {
	options domain.Options
	deps    Deps

	mu      sync.Mutex
	session atomic.Pointer[session]
}

// session is everything derived from the host configuration. It is built once and never mutated.
type session struct {
	config    domain.HostConfig
	options   domain.ResolvedOptions
	filter    *filter.Filter
	resolver  *resolution.Adapter
	transform *transform.Adapter
	minifier  *minify.Minifier
}

// NewPlugin creates a Plugin for the given user options.
func NewPlugin(opts domain.Options, deps Deps) *Plugin {
	return &Plugin{options: opts, deps: deps}
}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return PluginName
}

// Enforce returns the ordering hint.
func (p *Plugin) Enforce() domain.Enforce {
	return p.options.Enforce
}

// Resolved returns the options of the configured build.
func (p *Plugin) Resolved() (domain.ResolvedOptions, bool) {
	s := p.session.Load()
	if s == nil {
		return domain.ResolvedOptions{}, false
	}
	return s.options, true
}

// ConfigFinalize returns the changes the host must make to its own configuration:
// the host's built-in transform only sees plain scripts and dependency pre-bundling
// compiles JSX with the automatic runtime.
func (p *Plugin) ConfigFinalize(_ domain.HostConfig) domain.ConfigOverride {
	return domain.ConfigOverride{
		HostTransformInclude: domain.MustRegex(`\.js$`),
		OptimizeDepsJSX:      domain.JSXAutomatic,
	}
}

// ConfigResolved builds the per-build session. It must run exactly once, before any
// hook that transforms, resolves or minifies.
func (p *Plugin) ConfigResolved(ctx context.Context, cfg domain.HostConfig) (err error) {
	_, run := p.track(ctx, "config_resolved")
	defer func() { run.done(ports.OutcomeHandled, err) }()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session.Load() != nil {
		return domain.ErrAlreadyConfigured
	}

	if cfg.Root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return zerr.Wrap(err, "failed to get working directory")
		}
		cfg.Root = cwd
	}

	opts := domain.ResolveOptions(p.options, cfg.Dev())
	s := &session{
		config:   cfg,
		options:  opts,
		filter:   filter.New(opts.Include, opts.Exclude),
		minifier: minify.New(p.deps.Minifiers, opts),
	}

	if opts.Resolve.Enabled() {
		resolverOpts := resolution.MergeOptions(resolution.DefaultOptions(), opts.Resolve.Config())
		resolver, err := p.deps.Resolvers.NewResolver(resolverOpts)
		if err != nil {
			return errors.Join(domain.ErrResolverInit, err)
		}
		s.resolver = resolution.New(resolver, opts.ResolveNodeModules, cfg.Root, p.deps.Logger)
	}

	transformer := p.deps.Transformer
	if opts.CacheSize > 0 {
		cache, err := cas.NewTransformCache(transformer, opts.CacheSize)
		if err != nil {
			return err
		}
		transformer = cache
	}
	s.transform = transform.New(transformer, opts, cfg.Dev())

	p.session.Store(s)
	return nil
}

// TransformIndexHTML injects the fast refresh preamble into the served HTML entry.
// Production builds and builds without fast refresh get the document back unchanged.
func (p *Plugin) TransformIndexHTML(ctx context.Context, document string) (out string, err error) {
	_, run := p.track(ctx, "transform_index_html")
	outcome := ports.OutcomeSkipped
	defer func() { run.done(outcome, err) }()

	s, err := p.current()
	if err != nil {
		return "", err
	}
	if !s.config.Dev() || !s.options.ReactRefresh {
		return document, nil
	}

	outcome = ports.OutcomeHandled
	return refresh.InjectPreamble(document)
}

// ResolveID resolves specifier as imported from importer, which is empty for entry points.
// A nil result defers to the host.
func (p *Plugin) ResolveID(ctx context.Context, importer, specifier string) (res *domain.Resolution, err error) {
	_, run := p.track(ctx, "resolve_id")
	defer func() { run.done(outcomeOf(res != nil), err) }()

	if specifier == refresh.ModuleID {
		return &domain.Resolution{ID: refresh.ModuleID}, nil
	}

	s, err := p.current()
	if err != nil {
		return nil, err
	}
	if s.resolver == nil {
		return nil, nil
	}

	return s.resolver.Resolve(importer, specifier), nil
}

// Load serves the virtual refresh runtime. Every other id is left to the host.
func (p *Plugin) Load(ctx context.Context, id string) (*domain.LoadResult, bool) {
	_, run := p.track(ctx, "load")

	if id != refresh.ModuleID {
		run.done(ports.OutcomeSkipped, nil)
		return nil, false
	}

	run.done(ports.OutcomeHandled, nil)
	return &domain.LoadResult{Code: refresh.Runtime}, true
}

// Transform compiles one module. A nil output means the module is not handled here.
func (p *Plugin) Transform(
	ctx context.Context,
	id, code string,
	hint domain.FormatHint,
) (out *domain.TransformOutput, err error) {
	ctx, run := p.track(ctx, "transform")
	defer func() { run.done(outcomeOf(out != nil), err) }()
	run.attr("id", id)

	s, err := p.current()
	if err != nil {
		return nil, err
	}
	if !s.options.Transform.Enabled() || !s.filter.Match(id) {
		return nil, nil
	}

	return s.transform.Transform(ctx, id, code, hint)
}

// GenerateBundle minifies the finished bundle in place.
func (p *Plugin) GenerateBundle(ctx context.Context, bundle domain.Bundle, reporter ports.Reporter) (err error) {
	ctx, run := p.track(ctx, "generate_bundle")

	s, err := p.current()
	if err != nil {
		run.done(ports.OutcomeError, err)
		return err
	}

	outcome := outcomeOf(s.minifier.Enabled())
	defer func() { run.done(outcome, err) }()

	return s.minifier.Process(ctx, bundle, reporter)
}

func (p *Plugin) current() (*session, error) {
	s := p.session.Load()
	if s == nil {
		return nil, domain.ErrNotConfigured
	}
	return s, nil
}

func outcomeOf(handled bool) string {
	if handled {
		return ports.OutcomeHandled
	}
	return ports.OutcomeSkipped
}
