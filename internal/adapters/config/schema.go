package config

import (
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Kilnfile represents the structure of the kiln.yaml configuration file.
type Kilnfile struct {
	Include            []PatternDTO             `yaml:"include"`
	Exclude            []PatternDTO             `yaml:"exclude"`
	Enforce            string                   `yaml:"enforce"`
	Transform          *ToggleDTO[TransformDTO] `yaml:"transform"`
	Resolve            *ToggleDTO[ResolverDTO]  `yaml:"resolve"`
	ResolveNodeModules *bool                    `yaml:"resolveNodeModules"`
	Minify             *ToggleDTO[MinifyDTO]    `yaml:"minify"`
	Sourcemap          *bool                    `yaml:"sourcemap"`
	ReactRefresh       *bool                    `yaml:"reactRefresh"`
	CacheSize          int                      `yaml:"cacheSize"`
}

// PatternDTO is a filter pattern: a plain string for a substring match or
// a {regex: "..."} mapping for a regular expression.
type PatternDTO struct {
	Substring string
	Regex     string
	IsRegex   bool
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *PatternDTO) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		p.IsRegex = false
		return node.Decode(&p.Substring)
	case yaml.MappingNode:
		var raw struct {
			Regex string `yaml:"regex"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		p.IsRegex = true
		p.Regex = raw.Regex
		return nil
	default:
		return zerr.With(zerr.Wrap(domain.ErrInvalidOption, "pattern must be a string or a {regex} mapping"), "line", node.Line)
	}
}

// ToggleDTO is an optional stage: a boolean or a mapping of options.
type ToggleDTO[T any] struct {
	Enabled bool
	Options *T
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *ToggleDTO[T]) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		t.Options = nil
		if err := node.Decode(&t.Enabled); err != nil {
			return zerr.With(zerr.Wrap(domain.ErrInvalidOption, "expected a boolean"), "line", node.Line)
		}
		return nil
	case yaml.MappingNode:
		var opts T
		if err := node.Decode(&opts); err != nil {
			return err
		}
		t.Enabled = true
		t.Options = &opts
		return nil
	default:
		return zerr.With(zerr.Wrap(domain.ErrInvalidOption, "expected a boolean or a mapping"), "line", node.Line)
	}
}

// TransformDTO represents the transform options.
type TransformDTO struct {
	JSX    JSXDTO            `yaml:"jsx"`
	Target string            `yaml:"target"`
	Define map[string]string `yaml:"define"`
}

// JSXDTO represents the JSX compilation options.
type JSXDTO struct {
	Runtime      string `yaml:"runtime"`
	ImportSource string `yaml:"importSource"`
	Factory      string `yaml:"factory"`
	Fragment     string `yaml:"fragment"`
}

// ResolverDTO represents the resolver options.
type ResolverDTO struct {
	Extensions     []string          `yaml:"extensions"`
	ConditionNames []string          `yaml:"conditionNames"`
	MainFields     []string          `yaml:"mainFields"`
	Alias          map[string]string `yaml:"alias"`
	Builtins       *bool             `yaml:"builtins"`
	ModuleType     *bool             `yaml:"moduleType"`
	Symlinks       *bool             `yaml:"symlinks"`
}

// MinifyDTO represents the minify options.
type MinifyDTO struct {
	Whitespace    *bool    `yaml:"whitespace"`
	Identifiers   *bool    `yaml:"identifiers"`
	Syntax        *bool    `yaml:"syntax"`
	KeepNames     bool     `yaml:"keepNames"`
	LegalComments string   `yaml:"legalComments"`
	Target        string   `yaml:"target"`
	Drop          []string `yaml:"drop"`
}
