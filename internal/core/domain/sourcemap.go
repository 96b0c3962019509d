package domain

import (
	"encoding/base64"
	"encoding/json"
	"errors"

	"go.trai.ch/zerr"
)

// SourceMapURLPrefix starts every inline source map data URI.
const SourceMapURLPrefix = "data:application/json;charset=utf-8;base64,"

// SourceMap is a revision 3 source map.
type SourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// ParseSourceMap decodes a JSON source map.
func ParseSourceMap(data []byte) (*SourceMap, error) {
	var m SourceMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Join(ErrInvalidSourceMap, err)
	}
	if m.Version != 3 {
		return nil, zerr.With(zerr.Wrap(ErrInvalidSourceMap, "unsupported version"), "version", m.Version)
	}
	if m.Sources == nil {
		m.Sources = []string{}
	}
	if m.Names == nil {
		m.Names = []string{}
	}
	return &m, nil
}

// JSON encodes the map.
func (m *SourceMap) JSON() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode source map")
	}
	return data, nil
}

func (m *SourceMap) String() string {
	data, err := m.JSON()
	if err != nil {
		return ""
	}
	return string(data)
}

// ToURL encodes the map as a base64 data URI suitable for a sourceMappingURL comment.
func (m *SourceMap) ToURL() string {
	return SourceMapURLPrefix + base64.StdEncoding.EncodeToString([]byte(m.String()))
}
