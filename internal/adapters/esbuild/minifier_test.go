package esbuild_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/esbuild"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

func loadMinifier(t *testing.T) ports.Minifier {
	t.Helper()
	loader := esbuild.NewMinifierLoader()

	first, err := loader.Load(context.Background())
	require.NoError(t, err)
	second, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Same(t, first, second)

	return first
}

func ptr[T any](v T) *T { return &v }

func TestMinifier_Defaults(t *testing.T) {
	res, err := loadMinifier(t).Minify(context.Background(), domain.MinifyRequest{
		FileName: "index.js",
		Code:     "function hello() {\n  console.log('hi');\n}\nhello();\n",
	})
	require.NoError(t, err)
	assert.Contains(t, res.Code, `console.log("hi")`)
	assert.NotContains(t, res.Code, "\n  ")
	assert.Nil(t, res.Map)
}

func TestMinifier_Options(t *testing.T) {
	code := "function hello() {\n  debugger;\n  console.log('hi');\n  return 1;\n}\nhello();\n"

	tests := []struct {
		name    string
		opts    domain.MinifyOptions
		want    []string
		notWant []string
	}{
		{
			name:    "drop console and debugger",
			opts:    domain.MinifyOptions{Drop: []string{"console", "debugger"}},
			notWant: []string{"console.log", "debugger"},
		},
		{
			name: "whitespace kept",
			opts: domain.MinifyOptions{Whitespace: ptr(false)},
			want: []string{"\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := loadMinifier(t).Minify(context.Background(), domain.MinifyRequest{
				FileName: "index.js",
				Code:     code,
				Options:  tt.opts,
			})
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, res.Code, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, res.Code, w)
			}
		})
	}
}

func TestMinifier_Sourcemap(t *testing.T) {
	res, err := loadMinifier(t).Minify(context.Background(), domain.MinifyRequest{
		FileName:  "index.js",
		Code:      "const message = 'hi';\nconsole.log(message);\n",
		Sourcemap: true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Map)
	assert.Equal(t, []string{"index.js"}, res.Map.Sources)
}

func TestMinifier_Errors(t *testing.T) {
	m := loadMinifier(t)

	_, err := m.Minify(context.Background(), domain.MinifyRequest{FileName: "index.js", Code: "function ("})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index.js:1:")

	_, err = m.Minify(context.Background(), domain.MinifyRequest{
		FileName: "index.js",
		Options:  domain.MinifyOptions{Drop: []string{"alert"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOption)

	_, err = m.Minify(context.Background(), domain.MinifyRequest{
		FileName: "index.js",
		Options:  domain.MinifyOptions{LegalComments: "sometimes"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOption)
}
