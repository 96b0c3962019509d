package format_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/format"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		id   string
		want domain.ModuleFormat
	}{
		{"/src/a.mjs", domain.FormatModule},
		{"/src/a.mts", domain.FormatModule},
		{"/src/a.cjs", domain.FormatCommonJS},
		{"/src/a.cts", domain.FormatCommonJS},
		{"/src/data.json", domain.FormatJSON},
		{"/src/App.jsx", domain.FormatModule},
		{"/src/App.tsx", domain.FormatModule},
		{"/src/App.tsx?v=123", domain.FormatModule},
		{"/src/a.js", domain.FormatUnknown},
		{"/src/a.ts", domain.FormatUnknown},
		{"/src/style.css", domain.FormatUnknown},
		{"/src/Makefile", domain.FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, format.Infer(tt.id))
			assert.Equal(t, tt.want, format.Infer(tt.id))
		})
	}
}

func TestInferDialect(t *testing.T) {
	tests := []struct {
		name string
		id   string
		hint domain.FormatHint
		want domain.Dialect
	}{
		{"module hint beats cjs extension", "/src/a.cjs", domain.HintModule, domain.DialectModule},
		{"typescript module hint", "/src/a.ts", domain.HintModuleTypeScript, domain.DialectModule},
		{"commonjs hint beats mjs extension", "/src/a.mjs", domain.HintCommonJS, domain.DialectScript},
		{"typescript commonjs hint", "/src/a.ts", domain.HintCommonJSTypeScript, domain.DialectScript},
		{"module extension", "/src/a.mts", domain.HintNone, domain.DialectModule},
		{"jsx extension", "/src/App.jsx", domain.HintNone, domain.DialectModule},
		{"commonjs extension", "/src/a.cts", domain.HintNone, domain.DialectScript},
		{"json extension", "/src/a.json", domain.HintNone, domain.DialectScript},
		{"unknown extension", "/src/a.ts", domain.HintNone, domain.DialectUnspecified},
		{"unrecognised hint falls through", "/src/a.js", domain.FormatHint("wasm"), domain.DialectUnspecified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, format.InferDialect(tt.id, tt.hint))
		})
	}
}
