package resolution_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/resolution"
	"go.uber.org/mock/gomock"
)

func TestAdapter_BareSpecifierPolicy(t *testing.T) {
	t.Run("skipped when node_modules resolution is off", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		resolver := mocks.NewMockResolver(ctrl)
		resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).Times(0)

		a := resolution.New(resolver, false, "/project", nil)
		assert.Nil(t, a.Resolve("/project/src/main.ts", "react"))
	})

	t.Run("attempted when node_modules resolution is on", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		resolver := mocks.NewMockResolver(ctrl)
		resolver.EXPECT().
			Resolve("/project/src", "react").
			Return(domain.ResolvedModule{Path: "/project/node_modules/react/index.js"}, nil)

		a := resolution.New(resolver, true, "/project", nil)
		got := a.Resolve("/project/src/main.ts", "react")
		require.NotNil(t, got)
		assert.Equal(t, "/project/node_modules/react/index.js", got.ID)
	})
}

func TestAdapter_Directory(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)

	gomock.InOrder(
		resolver.EXPECT().Resolve("/project/src/components", "./Button").
			Return(domain.ResolvedModule{Path: "/project/src/components/Button.tsx"}, nil),
		resolver.EXPECT().Resolve("/project", "./src/main.ts").
			Return(domain.ResolvedModule{Path: "/project/src/main.ts"}, nil),
	)

	a := resolution.New(resolver, false, "/project", nil)
	require.NotNil(t, a.Resolve("/project/src/components/App.tsx", "./Button"))
	require.NotNil(t, a.Resolve("", "./src/main.ts"))
}

func TestAdapter_Builtin(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	resolver.EXPECT().Resolve(gomock.Any(), "node:fs").
		Return(domain.ResolvedModule{}, &domain.BuiltinModuleError{Specifier: "node:fs"})

	a := resolution.New(resolver, true, "/project", nil)
	got := a.Resolve("/project/a.ts", "node:fs")

	require.NotNil(t, got)
	assert.Equal(t, &domain.Resolution{ID: "node:fs", External: true, SideEffects: false}, got)
}

func TestAdapter_BuiltinMarkerFromForeignEngine(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	resolver.EXPECT().Resolve(gomock.Any(), "/abs/path").
		Return(domain.ResolvedModule{}, errors.New("Builtin module \"path\""))

	got := resolution.New(resolver, false, "/project", nil).Resolve("", "/abs/path")
	require.NotNil(t, got)
	assert.True(t, got.External)
	assert.Equal(t, "/abs/path", got.ID)
}

func TestAdapter_ErrorsAreSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	logger := mocks.NewMockLogger(ctrl)

	resolver.EXPECT().Resolve(gomock.Any(), "./missing").
		Return(domain.ResolvedModule{}, domain.ErrModuleNotFound)
	logger.EXPECT().Debug(gomock.Any())

	a := resolution.New(resolver, false, "/project", logger)
	assert.Nil(t, a.Resolve("/project/a.ts", "./missing"))
}

func TestAdapter_Format(t *testing.T) {
	tests := []struct {
		name     string
		resolved domain.ResolvedModule
		want     domain.ModuleFormat
	}{
		{"extension wins", domain.ResolvedModule{Path: "/p/a.mjs", ModuleType: domain.FormatCommonJS}, domain.FormatModule},
		{"json extension", domain.ResolvedModule{Path: "/p/a.json"}, domain.FormatJSON},
		{"resolver module type", domain.ResolvedModule{Path: "/p/a.js", ModuleType: domain.FormatModule}, domain.FormatModule},
		{"commonjs fallback", domain.ResolvedModule{Path: "/p/a.js"}, domain.FormatCommonJS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			resolver := mocks.NewMockResolver(ctrl)
			resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(tt.resolved, nil)

			got := resolution.New(resolver, false, "/p", nil).Resolve("", "./a")
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Format)
			assert.False(t, got.External)
			assert.Equal(t, tt.resolved.Path, got.ID)
		})
	}
}

func TestIsBare(t *testing.T) {
	tests := map[string]bool{
		"react":           true,
		"@scope/pkg":      true,
		"node:fs":         true,
		".hidden-package": true,
		".":               false,
		"..":              false,
		"./a":             false,
		"../a":            false,
		"/abs/a":          false,
	}

	for spec, want := range tests {
		t.Run(spec, func(t *testing.T) {
			assert.Equal(t, want, resolution.IsBare(spec))
		})
	}
}

func TestMergeOptions(t *testing.T) {
	off := false
	user := domain.ResolverOptions{
		Extensions: []string{".ts"},
		Builtins:   &off,
		Alias:      map[string]string{"@": "./src"},
	}

	merged := resolution.MergeOptions(resolution.DefaultOptions(), user)

	assert.Equal(t, []string{".ts"}, merged.Extensions)
	assert.Equal(t, []string{"import", "require", "browser", "node", "default"}, merged.ConditionNames)
	require.NotNil(t, merged.Builtins)
	assert.False(t, *merged.Builtins)
	require.NotNil(t, merged.ModuleType)
	assert.True(t, *merged.ModuleType)
	assert.Equal(t, "./src", merged.Alias["@"])
}

func TestDefaultOptions(t *testing.T) {
	opts := resolution.DefaultOptions()
	assert.Equal(t, []string{".mjs", ".js", ".ts", ".jsx", ".tsx", ".json", ".node"}, opts.Extensions)
}
