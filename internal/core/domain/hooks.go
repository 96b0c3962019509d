package domain

// Command is the host command a build runs under.
type Command string

const (
	// CommandServe is a development session.
	CommandServe Command = "serve"
	// CommandBuild is a production build.
	CommandBuild Command = "build"
)

// HostConfig is the finalized host configuration handed to the plugin.
type HostConfig struct {
	Command Command
	// Root is the directory entry points without an importer resolve from.
	Root string
}

// Dev reports whether the host is serving a development session.
func (c HostConfig) Dev() bool {
	return c.Command == CommandServe
}

// ConfigOverride is what the plugin asks the host to change in its own configuration.
type ConfigOverride struct {
	// HostTransformInclude limits the host's built-in transform to plain scripts.
	HostTransformInclude Pattern
	// OptimizeDepsJSX is the JSX runtime used while pre-bundling dependencies.
	OptimizeDepsJSX JSXRuntime
}

// LoadResult is the content served for a module id.
type LoadResult struct {
	Code string
	Map  *SourceMap
}

// TransformOutput is the transformed code of one module.
type TransformOutput struct {
	Code string
	Map  *SourceMap
}
