package domain

// ModuleFormat is the module system a file is written for.
type ModuleFormat string

const (
	// FormatUnknown means the format could not be determined.
	FormatUnknown ModuleFormat = ""
	// FormatModule is an ECMAScript module.
	FormatModule ModuleFormat = "module"
	// FormatCommonJS is a CommonJS module.
	FormatCommonJS ModuleFormat = "commonjs"
	// FormatJSON is a JSON document.
	FormatJSON ModuleFormat = "json"
)

// Dialect is how the top-level body of a file is parsed.
type Dialect string

const (
	// DialectUnspecified leaves the choice to the transformer.
	DialectUnspecified Dialect = ""
	// DialectModule parses the body as an ECMAScript module.
	DialectModule Dialect = "module"
	// DialectScript parses the body as a plain script.
	DialectScript Dialect = "script"
)

// FormatHint is the host's per-file format knowledge, if any.
type FormatHint string

// Host format hints.
const (
	HintNone               FormatHint = ""
	HintModule             FormatHint = "module"
	HintModuleTypeScript   FormatHint = "module-typescript"
	HintCommonJS           FormatHint = "commonjs"
	HintCommonJSTypeScript FormatHint = "commonjs-typescript"
)
