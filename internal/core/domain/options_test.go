package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/core/domain"
)

func ptr[T any](v T) *T { return &v }

func TestResolveOptions_Defaults(t *testing.T) {
	t.Run("production", func(t *testing.T) {
		got := domain.ResolveOptions(domain.Options{}, false)

		assert.Equal(t, domain.DefaultInclude(), got.Include)
		assert.Equal(t, domain.DefaultExclude(), got.Exclude)
		assert.Equal(t, domain.EnforceNone, got.Enforce)
		assert.Equal(t, domain.DefaultEnabled, got.Transform.State)
		assert.Equal(t, domain.DefaultEnabled, got.Resolve.State)
		assert.Equal(t, domain.Disabled, got.Minify.State)
		assert.False(t, got.ResolveNodeModules)
		assert.False(t, got.Sourcemap)
		assert.True(t, got.ReactRefresh)
	})

	t.Run("development enables source maps", func(t *testing.T) {
		got := domain.ResolveOptions(domain.Options{}, true)
		assert.True(t, got.Sourcemap)
	})
}

func TestResolveOptions_UserValuesWin(t *testing.T) {
	minify := domain.On[domain.MinifyOptions]()
	transform := domain.Off[domain.TransformOptions]()
	opts := domain.Options{
		Include:            []domain.Pattern{domain.Substring(".ts")},
		Exclude:            []domain.Pattern{},
		Enforce:            domain.EnforcePre,
		Transform:          &transform,
		Minify:             &minify,
		ResolveNodeModules: ptr(true),
		Sourcemap:          ptr(false),
		ReactRefresh:       ptr(false),
	}

	got := domain.ResolveOptions(opts, true)

	assert.Equal(t, opts.Include, got.Include)
	assert.Empty(t, got.Exclude)
	assert.NotNil(t, got.Exclude, "an explicit empty exclude list must not fall back to defaults")
	assert.Equal(t, domain.EnforcePre, got.Enforce)
	assert.False(t, got.Transform.Enabled())
	assert.Equal(t, domain.DefaultEnabled, got.Minify.State)
	assert.True(t, got.ResolveNodeModules)
	assert.False(t, got.Sourcemap)
	assert.False(t, got.ReactRefresh)
}

func TestToggle_Config(t *testing.T) {
	target := domain.TransformOptions{Target: "es2020"}

	assert.Equal(t, target, domain.With(target).Config())
	assert.Equal(t, domain.TransformOptions{}, domain.On[domain.TransformOptions]().Config())
	assert.Equal(t, domain.TransformOptions{}, domain.Toggle[domain.TransformOptions]{
		State:   domain.Disabled,
		Options: target,
	}.Config())
}

func TestPattern_Match(t *testing.T) {
	tests := []struct {
		name    string
		pattern domain.Pattern
		id      string
		want    bool
	}{
		{"substring hit", domain.Substring("src/"), "/app/src/main.ts", true},
		{"substring miss", domain.Substring("lib/"), "/app/src/main.ts", false},
		{"regex hit", domain.MustRegex(`\.tsx$`), "/app/App.tsx", true},
		{"regex miss", domain.MustRegex(`\.tsx$`), "/app/App.tsx.map", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pattern.Match(tt.id))
		})
	}
}

func TestRegex_Invalid(t *testing.T) {
	_, err := domain.Regex("(")
	assert.ErrorIs(t, err, domain.ErrInvalidPattern)
}
