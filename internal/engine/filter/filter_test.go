package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/filter"
)

func TestFilter_Match(t *testing.T) {
	tests := []struct {
		name    string
		include []domain.Pattern
		exclude []domain.Pattern
		id      string
		want    bool
	}{
		{
			name:    "defaults accept typescript",
			include: domain.DefaultInclude(),
			exclude: domain.DefaultExclude(),
			id:      "/app/src/main.ts",
			want:    true,
		},
		{
			name:    "defaults accept cjs and mjs",
			include: domain.DefaultInclude(),
			exclude: domain.DefaultExclude(),
			id:      "/app/src/config.mjs",
			want:    true,
		},
		{
			name:    "defaults reject dependencies",
			include: domain.DefaultInclude(),
			exclude: domain.DefaultExclude(),
			id:      "/app/node_modules/react/index.js",
			want:    false,
		},
		{
			name:    "defaults reject stylesheets",
			include: domain.DefaultInclude(),
			exclude: domain.DefaultExclude(),
			id:      "/app/src/main.css",
			want:    false,
		},
		{
			name:    "exclude wins over include",
			include: []domain.Pattern{domain.Substring("src")},
			exclude: []domain.Pattern{domain.Substring("generated")},
			id:      "/app/src/generated/api.ts",
			want:    false,
		},
		{
			name: "empty include accepts everything not excluded",
			id:   "/anything/at/all.txt",
			want: true,
		},
		{
			name:    "empty include still honours exclude",
			exclude: []domain.Pattern{domain.MustRegex(`\.txt$`)},
			id:      "/anything/at/all.txt",
			want:    false,
		},
		{
			name:    "include patterns are or-ed",
			include: []domain.Pattern{domain.Substring("/lib/"), domain.MustRegex(`\.tsx$`)},
			id:      "/app/src/App.tsx",
			want:    true,
		},
		{
			name:    "no include matches",
			include: []domain.Pattern{domain.Substring("/lib/")},
			id:      "/app/src/App.tsx",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := filter.New(tt.include, tt.exclude)
			assert.Equal(t, tt.want, f.Match(tt.id))
			assert.Equal(t, tt.want, f.Match(tt.id), "repeated calls must agree")
		})
	}
}

func TestFilter_CopiesPatterns(t *testing.T) {
	include := []domain.Pattern{domain.Substring(".ts")}
	f := filter.New(include, nil)

	include[0] = domain.Substring(".css")

	assert.True(t, f.Match("main.ts"))
	assert.False(t, f.Match("main.css"))
}
