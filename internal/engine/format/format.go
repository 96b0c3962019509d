// Package format infers module formats and source dialects from file ids.
package format

import (
	"path"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
)

// Infer returns the module format implied by the extension of id,
// or domain.FormatUnknown when the extension says nothing.
func Infer(id string) domain.ModuleFormat {
	switch path.Ext(stripQuery(id)) {
	case ".mjs", ".mts":
		return domain.FormatModule
	case ".cjs", ".cts":
		return domain.FormatCommonJS
	case ".json":
		return domain.FormatJSON
	case ".jsx", ".tsx":
		return domain.FormatModule
	default:
		return domain.FormatUnknown
	}
}

// InferDialect picks the parse dialect for id. The host hint wins when it names a format;
// otherwise the extension decides, and an unknown extension leaves the dialect unspecified.
func InferDialect(id string, hint domain.FormatHint) domain.Dialect {
	switch hint {
	case domain.HintModule, domain.HintModuleTypeScript:
		return domain.DialectModule
	case domain.HintCommonJS, domain.HintCommonJSTypeScript:
		return domain.DialectScript
	}

	switch Infer(id) {
	case domain.FormatUnknown:
		return domain.DialectUnspecified
	case domain.FormatModule:
		return domain.DialectModule
	default:
		return domain.DialectScript
	}
}

func stripQuery(id string) string {
	if i := strings.IndexByte(id, '?'); i >= 0 {
		return id[:i]
	}
	return id
}
