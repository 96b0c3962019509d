package domain_test

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestSourceMap_ToURL(t *testing.T) {
	m := &domain.SourceMap{
		Version:  3,
		Sources:  []string{"app.tsx"},
		Names:    []string{},
		Mappings: "AAAA",
	}

	url := m.ToURL()
	require.True(t, strings.HasPrefix(url, domain.SourceMapURLPrefix))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, domain.SourceMapURLPrefix))
	require.NoError(t, err)

	decoded, err := domain.ParseSourceMap(raw)
	require.NoError(t, err)
	assert.Equal(t, m, decoded)
}

func TestParseSourceMap_Errors(t *testing.T) {
	_, err := domain.ParseSourceMap([]byte("{"))
	assert.ErrorIs(t, err, domain.ErrInvalidSourceMap)

	_, err = domain.ParseSourceMap([]byte(`{"version":2,"sources":[],"mappings":""}`))
	assert.ErrorIs(t, err, domain.ErrInvalidSourceMap)
}

func TestTransformError(t *testing.T) {
	err := &domain.TransformError{ID: "app.tsx", Messages: []string{"first", "second"}}

	assert.Equal(t, "first\nsecond", err.Error())
	assert.True(t, errors.Is(err, domain.ErrTransformFailed))
}

func TestBuiltinModuleError(t *testing.T) {
	err := &domain.BuiltinModuleError{Specifier: "node:fs"}
	assert.True(t, strings.HasPrefix(err.Error(), domain.BuiltinModuleMarker))
}

func TestBundle_ChunkNames(t *testing.T) {
	b := domain.Bundle{
		"b.js":      &domain.Chunk{FileName: "b.js"},
		"a.js":      &domain.Chunk{FileName: "a.js"},
		"style.css": &domain.Asset{FileName: "style.css"},
	}
	assert.Equal(t, []string{"a.js", "b.js"}, b.ChunkNames())
}
