package transform_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/refresh"
	"go.trai.ch/kiln/internal/engine/transform"
	"go.uber.org/mock/gomock"
)

func TestAdapter_RequestShape(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockTransformer(ctrl)

	jsx := domain.TransformOptions{JSX: domain.JSXOptions{Runtime: domain.JSXAutomatic}}
	opts := domain.ResolveOptions(domain.Options{Transform: ptr(domain.With(jsx))}, false)

	engine.EXPECT().
		Transform(gomock.Any(), domain.TransformRequest{
			ID:        "/src/lib.cts",
			Code:      "export {}",
			Options:   jsx,
			Dialect:   domain.DialectScript,
			Sourcemap: false,
		}).
		Return(domain.TransformResult{Code: "module.exports = {}"}, nil)

	out, err := transform.New(engine, opts, false).
		Transform(context.Background(), "/src/lib.cts", "export {}", domain.HintNone)
	require.NoError(t, err)
	assert.Equal(t, "module.exports = {}", out.Code)
	assert.Nil(t, out.Map)
}

func TestAdapter_HintWinsOverExtension(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockTransformer(ctrl)

	engine.EXPECT().
		Transform(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req domain.TransformRequest) (domain.TransformResult, error) {
			assert.Equal(t, domain.DialectModule, req.Dialect)
			return domain.TransformResult{Code: req.Code}, nil
		})

	_, err := transform.New(engine, domain.ResolveOptions(domain.Options{}, false), false).
		Transform(context.Background(), "/src/a.cjs", "x", domain.HintModule)
	require.NoError(t, err)
}

func TestAdapter_ErrorsAreJoined(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockTransformer(ctrl)

	engine.EXPECT().
		Transform(gomock.Any(), gomock.Any()).
		Return(domain.TransformResult{
			Code:   "partial output",
			Errors: []string{"src/a.ts:1:5: Expected \";\"", "src/a.ts:3:1: Unexpected \"}\""},
		}, nil)

	out, err := transform.New(engine, domain.ResolveOptions(domain.Options{}, false), false).
		Transform(context.Background(), "src/a.ts", "let x y", domain.HintNone)

	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, "src/a.ts:1:5: Expected \";\"\nsrc/a.ts:3:1: Unexpected \"}\"", err.Error())
	assert.ErrorIs(t, err, domain.ErrTransformFailed)

	var terr *domain.TransformError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "src/a.ts", terr.ID)
}

func TestAdapter_EngineFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockTransformer(ctrl)

	boom := errors.New("engine crashed")
	engine.EXPECT().Transform(gomock.Any(), gomock.Any()).Return(domain.TransformResult{}, boom)

	_, err := transform.New(engine, domain.ResolveOptions(domain.Options{}, false), false).
		Transform(context.Background(), "src/a.ts", "x", domain.HintNone)
	assert.ErrorIs(t, err, boom)
}

func TestAdapter_Refresh(t *testing.T) {
	const registered = "function App() {}\n$RefreshReg$(App, \"App\");\n"

	tests := []struct {
		name        string
		id          string
		dev         bool
		refreshOpt  bool
		engineCode  string
		wantRefresh bool
		wantFooter  bool
	}{
		{"dev tsx with registrations", "/src/App.tsx", true, true, registered, true, true},
		{"dev jsx without registrations", "/src/App.jsx", true, true, "export const x = 1;\n", true, false},
		{"dev plain ts", "/src/util.ts", true, true, registered, false, false},
		{"production build", "/src/App.tsx", false, true, registered, false, false},
		{"refresh disabled", "/src/App.tsx", true, false, registered, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			engine := mocks.NewMockTransformer(ctrl)

			engine.EXPECT().
				Transform(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, req domain.TransformRequest) (domain.TransformResult, error) {
					assert.Equal(t, tt.wantRefresh, req.Refresh)
					assert.Equal(t, tt.wantRefresh, req.JSXDev)
					return domain.TransformResult{Code: tt.engineCode}, nil
				})

			opts := domain.ResolveOptions(domain.Options{ReactRefresh: ptr(tt.refreshOpt)}, tt.dev)
			out, err := transform.New(engine, opts, tt.dev).
				Transform(context.Background(), tt.id, "source", domain.HintNone)
			require.NoError(t, err)

			if tt.wantFooter {
				assert.Equal(t, tt.engineCode+refresh.Footer(tt.id), out.Code)
			} else {
				assert.Equal(t, tt.engineCode, out.Code)
			}
		})
	}
}

func TestAdapter_RefreshScenario(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockTransformer(ctrl)

	engine.EXPECT().
		Transform(gomock.Any(), gomock.Any()).
		Return(domain.TransformResult{Code: "var _c;\n$RefreshReg$(_c, \"App\");\n"}, nil)

	opts := domain.ResolveOptions(domain.Options{ReactRefresh: ptr(true)}, true)
	out, err := transform.New(engine, opts, true).
		Transform(context.Background(), "app.tsx", "export function App() { return <div/> }", domain.HintNone)
	require.NoError(t, err)

	footer := refresh.Footer("app.tsx")
	assert.True(t, strings.HasSuffix(out.Code, footer))
	assert.Equal(t, 2, strings.Count(footer, `"app.tsx"`))

	// The registration call precedes the footer, so the hook it calls must be a
	// hoisted declaration of this module, keyed by its id.
	assert.Less(t, strings.Index(out.Code, `$RefreshReg$(_c, "App")`), strings.Index(out.Code, "function $RefreshReg$("))
	assert.Contains(t, out.Code, `__kilnRefresh.register(type, "app.tsx " + id);`)
	assert.NotContains(t, out.Code, "window.$RefreshReg$ =")
}

func ptr[T any](v T) *T { return &v }
