package domain

// ToggleState tells whether an optional pipeline stage runs and with which options.
type ToggleState int

const (
	// Disabled turns the stage off.
	Disabled ToggleState = iota
	// DefaultEnabled turns the stage on with engine defaults.
	DefaultEnabled
	// Configured turns the stage on with user-supplied options.
	Configured
)

func (s ToggleState) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case DefaultEnabled:
		return "default"
	case Configured:
		return "configured"
	default:
		return "unknown"
	}
}

// Toggle is a stage setting that is either disabled, enabled with defaults, or configured.
type Toggle[T any] struct {
	State   ToggleState
	Options T
}

// Off returns a disabled toggle.
func Off[T any]() Toggle[T] {
	return Toggle[T]{State: Disabled}
}

// On returns a toggle enabled with engine defaults.
func On[T any]() Toggle[T] {
	return Toggle[T]{State: DefaultEnabled}
}

// With returns a toggle configured with opts.
func With[T any](opts T) Toggle[T] {
	return Toggle[T]{State: Configured, Options: opts}
}

// Enabled reports whether the stage runs.
func (t Toggle[T]) Enabled() bool {
	return t.State != Disabled
}

// Config returns the user options when configured and the zero value otherwise.
func (t Toggle[T]) Config() T {
	if t.State == Configured {
		return t.Options
	}
	var zero T
	return zero
}

// Enforce is the ordering hint relative to the host's default stages.
type Enforce string

const (
	// EnforceNone leaves ordering to the host.
	EnforceNone Enforce = ""
	// EnforcePre runs before the host's default stages.
	EnforcePre Enforce = "pre"
	// EnforcePost runs after the host's default stages.
	EnforcePost Enforce = "post"
)

// JSXRuntime selects how JSX elements are compiled.
type JSXRuntime string

const (
	// JSXAutomatic imports the JSX factory from the configured import source.
	JSXAutomatic JSXRuntime = "automatic"
	// JSXClassic calls the configured factory in scope.
	JSXClassic JSXRuntime = "classic"
)

// JSXOptions configures JSX compilation.
type JSXOptions struct {
	Runtime      JSXRuntime
	ImportSource string
	Factory      string
	Fragment     string
}

// TransformOptions are passed through to the transformer engine.
type TransformOptions struct {
	JSX    JSXOptions
	Target string
	Define map[string]string
}

// MinifyOptions are passed through to the minifier engine.
// Nil booleans use the engine default, which is on.
type MinifyOptions struct {
	Whitespace    *bool
	Identifiers   *bool
	Syntax        *bool
	KeepNames     bool
	LegalComments string
	Target        string
	Drop          []string
}

// ResolverOptions are passed through to the resolver engine.
type ResolverOptions struct {
	Extensions     []string
	ConditionNames []string
	MainFields     []string
	Alias          map[string]string
	Builtins       *bool
	ModuleType     *bool
	Symlinks       *bool
}

// Options is the partial configuration supplied by the user.
// Nil fields fall back to their defaults in ResolveOptions.
type Options struct {
	Include            []Pattern
	Exclude            []Pattern
	Enforce            Enforce
	Transform          *Toggle[TransformOptions]
	Resolve            *Toggle[ResolverOptions]
	ResolveNodeModules *bool
	Minify             *Toggle[MinifyOptions]
	Sourcemap          *bool
	ReactRefresh       *bool
	CacheSize          int
}

// ResolvedOptions is the materialized configuration of one build. It is never mutated.
type ResolvedOptions struct {
	Include            []Pattern
	Exclude            []Pattern
	Enforce            Enforce
	Transform          Toggle[TransformOptions]
	Resolve            Toggle[ResolverOptions]
	ResolveNodeModules bool
	Minify             Toggle[MinifyOptions]
	Sourcemap          bool
	ReactRefresh       bool
	CacheSize          int
}

// DefaultInclude matches JavaScript and TypeScript sources, with or without JSX.
func DefaultInclude() []Pattern {
	return []Pattern{MustRegex(`\.[cm]?[jt]sx?$`)}
}

// DefaultExclude skips installed dependencies.
func DefaultExclude() []Pattern {
	return []Pattern{MustRegex(`node_modules`)}
}

// ResolveOptions fills in defaults for a development (dev) or production build.
func ResolveOptions(opts Options, dev bool) ResolvedOptions {
	resolved := ResolvedOptions{
		Include:      opts.Include,
		Exclude:      opts.Exclude,
		Enforce:      opts.Enforce,
		Transform:    On[TransformOptions](),
		Resolve:      On[ResolverOptions](),
		Minify:       Off[MinifyOptions](),
		Sourcemap:    dev,
		ReactRefresh: true,
		CacheSize:    opts.CacheSize,
	}

	if resolved.Include == nil {
		resolved.Include = DefaultInclude()
	}
	if resolved.Exclude == nil {
		resolved.Exclude = DefaultExclude()
	}
	if opts.Transform != nil {
		resolved.Transform = *opts.Transform
	}
	if opts.Resolve != nil {
		resolved.Resolve = *opts.Resolve
	}
	if opts.Minify != nil {
		resolved.Minify = *opts.Minify
	}
	if opts.ResolveNodeModules != nil {
		resolved.ResolveNodeModules = *opts.ResolveNodeModules
	}
	if opts.Sourcemap != nil {
		resolved.Sourcemap = *opts.Sourcemap
	}
	if opts.ReactRefresh != nil {
		resolved.ReactRefresh = *opts.ReactRefresh
	}

	return resolved
}
