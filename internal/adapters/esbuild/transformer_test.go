package esbuild_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/esbuild"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestTransformer_TypeScript(t *testing.T) {
	res, err := esbuild.NewTransformer().Transform(context.Background(), domain.TransformRequest{
		ID:   "/src/main.ts",
		Code: "const a: number = 1;\nexport { a };\n",
	})
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Contains(t, res.Code, "const a = 1;")
	assert.NotContains(t, res.Code, "number")
	assert.Nil(t, res.Map)
}

func TestTransformer_JSX(t *testing.T) {
	tests := []struct {
		name    string
		req     domain.TransformRequest
		want    string
		notWant string
	}{
		{
			name: "automatic runtime",
			req:  domain.TransformRequest{ID: "/src/App.jsx", Code: "export const el = <div />;"},
			want: `from "react/jsx-runtime"`,
		},
		{
			name: "development runtime",
			req:  domain.TransformRequest{ID: "/src/App.jsx", Code: "export const el = <div />;", JSXDev: true},
			want: `from "react/jsx-dev-runtime"`,
		},
		{
			name: "import source",
			req: domain.TransformRequest{
				ID:      "/src/App.tsx",
				Code:    "export const el = <div />;",
				Options: domain.TransformOptions{JSX: domain.JSXOptions{ImportSource: "preact"}},
			},
			want: `from "preact/jsx-runtime"`,
		},
		{
			name: "classic runtime",
			req: domain.TransformRequest{
				ID:   "/src/App.jsx",
				Code: "export const el = <div />;",
				Options: domain.TransformOptions{JSX: domain.JSXOptions{
					Runtime: domain.JSXClassic,
					Factory: "h",
				}},
			},
			want:    `h("div"`,
			notWant: "jsx-runtime",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := esbuild.NewTransformer().Transform(context.Background(), tt.req)
			require.NoError(t, err)
			require.Empty(t, res.Errors)
			assert.Contains(t, res.Code, tt.want)
			if tt.notWant != "" {
				assert.NotContains(t, res.Code, tt.notWant)
			}
		})
	}
}

func TestTransformer_Dialect(t *testing.T) {
	res, err := esbuild.NewTransformer().Transform(context.Background(), domain.TransformRequest{
		ID:      "/src/lib.cts",
		Code:    "export const a = 1;",
		Dialect: domain.DialectScript,
	})
	require.NoError(t, err)
	assert.Contains(t, res.Code, "module.exports")
}

func TestTransformer_Define(t *testing.T) {
	res, err := esbuild.NewTransformer().Transform(context.Background(), domain.TransformRequest{
		ID:      "/src/env.ts",
		Code:    "export const dev = __DEV__;",
		Options: domain.TransformOptions{Define: map[string]string{"__DEV__": "false"}},
	})
	require.NoError(t, err)
	assert.Contains(t, res.Code, "const dev = false;")
}

func TestTransformer_Sourcemap(t *testing.T) {
	res, err := esbuild.NewTransformer().Transform(context.Background(), domain.TransformRequest{
		ID:        "/src/main.ts",
		Code:      "const a: number = 1;\nconsole.log(a);\n",
		Sourcemap: true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Map)
	assert.Equal(t, 3, res.Map.Version)
	assert.Equal(t, []string{"/src/main.ts"}, res.Map.Sources)
	assert.NotEmpty(t, res.Map.Mappings)
	assert.NotContains(t, res.Code, "sourceMappingURL")
}

func TestTransformer_Errors(t *testing.T) {
	res, err := esbuild.NewTransformer().Transform(context.Background(), domain.TransformRequest{
		ID:   "/src/broken.ts",
		Code: "let x = ;",
	})
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.HasPrefix(res.Errors[0], "/src/broken.ts:1:"), res.Errors[0])
	assert.Empty(t, res.Code)
}

func TestTransformer_InvalidTarget(t *testing.T) {
	_, err := esbuild.NewTransformer().Transform(context.Background(), domain.TransformRequest{
		ID:      "/src/a.ts",
		Code:    "1",
		Options: domain.TransformOptions{Target: "es1999"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOption)
}

func TestTransformer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := esbuild.NewTransformer().Transform(ctx, domain.TransformRequest{ID: "/a.ts"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTransformer_RefreshRegistrations(t *testing.T) {
	code := `export function App() { return <Header />; }
function Header() { return <h1 />; }
export const Footer = () => <footer />;
const helper = () => 1;
export default function Page() { return null; }
`
	res, err := esbuild.NewTransformer().Transform(context.Background(), domain.TransformRequest{
		ID:      "/src/App.tsx",
		Code:    code,
		Refresh: true,
		JSXDev:  true,
	})
	require.NoError(t, err)
	require.Empty(t, res.Errors)

	assert.Contains(t, res.Code, `$RefreshReg$(App, "App");`)
	assert.Contains(t, res.Code, `$RefreshReg$(Header, "Header");`)
	assert.Contains(t, res.Code, `$RefreshReg$(Footer, "Footer");`)
	assert.Contains(t, res.Code, `$RefreshReg$(Page, "Page");`)
	assert.NotContains(t, res.Code, `$RefreshReg$(helper`)
	assert.Equal(t, 1, strings.Count(res.Code, `$RefreshReg$(App,`))

	plain, err := esbuild.NewTransformer().Transform(context.Background(), domain.TransformRequest{
		ID:   "/src/App.tsx",
		Code: code,
	})
	require.NoError(t, err)
	assert.NotContains(t, plain.Code, "$RefreshReg$")
}
