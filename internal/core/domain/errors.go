package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrTransformFailed is returned when the transformer reports one or more errors for a file.
	ErrTransformFailed = zerr.New("transform failed")

	// ErrMinifyFailed is returned when the minifier rejects a chunk.
	ErrMinifyFailed = zerr.New("minify failed")

	// ErrMinifierUnavailable is returned when the minifier engine cannot be loaded.
	ErrMinifierUnavailable = zerr.New("minifier engine unavailable")

	// ErrResolverInit is returned when the resolver engine rejects its options.
	ErrResolverInit = zerr.New("failed to initialize resolver")

	// ErrModuleNotFound is returned by resolver engines when a specifier has no match.
	ErrModuleNotFound = zerr.New("module not found")

	// ErrPackageExportsMismatch is returned when a package exports map has no entry for a subpath.
	ErrPackageExportsMismatch = zerr.New("package exports do not match subpath")

	// ErrNotConfigured is returned when a hook that needs the build session runs before ConfigResolved.
	ErrNotConfigured = zerr.New("plugin is not configured")

	// ErrAlreadyConfigured is returned when ConfigResolved runs more than once for the same plugin.
	ErrAlreadyConfigured = zerr.New("plugin is already configured")

	// ErrInvalidPattern is returned when a regular expression pattern fails to compile.
	ErrInvalidPattern = zerr.New("invalid filter pattern")

	// ErrInvalidSourceMap is returned when a source map cannot be parsed.
	ErrInvalidSourceMap = zerr.New("invalid source map")

	// ErrInvalidMappings is returned when a VLQ mappings string is malformed.
	ErrInvalidMappings = zerr.New("invalid source map mappings")

	// ErrConfigRead is returned when the configuration file cannot be read.
	ErrConfigRead = zerr.New("failed to read config file")

	// ErrConfigParse is returned when the configuration file cannot be parsed.
	ErrConfigParse = zerr.New("failed to parse config file")

	// ErrInvalidOption is returned when a configuration value has the wrong shape.
	ErrInvalidOption = zerr.New("invalid option")

	// ErrBuildFailed is returned when the bundler host reports errors.
	ErrBuildFailed = zerr.New("build failed")

	// ErrNoEntryPoints is returned when the build command has nothing to bundle.
	ErrNoEntryPoints = zerr.New("no entry points specified")

	// ErrWatcherInit is returned when the file watcher cannot be started.
	ErrWatcherInit = zerr.New("failed to start file watcher")
)

// BuiltinModuleMarker prefixes every resolver error that signals a platform built-in module.
const BuiltinModuleMarker = "Builtin module"

// BuiltinModuleError is reported by resolver engines when a specifier names a platform built-in.
type BuiltinModuleError struct {
	Specifier string
}

func (e *BuiltinModuleError) Error() string {
	return BuiltinModuleMarker + " " + e.Specifier
}

// TransformError carries every message the transformer reported for a single file.
type TransformError struct {
	ID       string
	Messages []string
}

func (e *TransformError) Error() string {
	return strings.Join(e.Messages, "\n")
}

// Unwrap lets errors.Is match ErrTransformFailed.
func (e *TransformError) Unwrap() error {
	return ErrTransformFailed
}
