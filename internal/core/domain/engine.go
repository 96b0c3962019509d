package domain

// TransformRequest is a single call into the transformer engine.
type TransformRequest struct {
	ID        string
	Code      string
	Options   TransformOptions
	Dialect   Dialect
	Sourcemap bool
	// Refresh asks the engine to emit fast-refresh registration calls.
	Refresh bool
	// JSXDev asks the engine for development JSX output.
	JSXDev bool
}

// TransformResult is the transformer engine's answer.
// A non-empty Errors means Code and Map must be ignored.
type TransformResult struct {
	Code   string
	Map    *SourceMap
	Errors []string
}

// MinifyRequest is a single call into the minifier engine.
type MinifyRequest struct {
	FileName  string
	Code      string
	Options   MinifyOptions
	Sourcemap bool
}

// MinifyResult is the minifier engine's answer.
type MinifyResult struct {
	Code string
	Map  *SourceMap
}
