// Package esbuild implements the transformer and minifier engines on esbuild.
package esbuild

import (
	"context"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Transformer implements ports.Transformer with api.Transform.
type Transformer struct{}

var _ ports.Transformer = (*Transformer)(nil)

// NewTransformer creates a new Transformer.
func NewTransformer() *Transformer {
	return &Transformer{}
}

// Transform compiles one file. Syntax errors come back in the result.
func (t *Transformer) Transform(ctx context.Context, req domain.TransformRequest) (domain.TransformResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.TransformResult{}, err
	}

	opts, err := transformOptions(req)
	if err != nil {
		return domain.TransformResult{}, zerr.With(err, "id", req.ID)
	}

	res := api.Transform(req.Code, opts)
	if len(res.Errors) > 0 {
		return domain.TransformResult{Errors: FormatMessages(res.Errors)}, nil
	}

	out := domain.TransformResult{Code: string(res.Code)}
	if req.Refresh {
		out.Code += registrations(out.Code)
	}

	if req.Sourcemap && len(res.Map) > 0 {
		sm, err := domain.ParseSourceMap(res.Map)
		if err != nil {
			return domain.TransformResult{}, zerr.With(err, "id", req.ID)
		}
		out.Map = sm
	}

	return out, nil
}

func transformOptions(req domain.TransformRequest) (api.TransformOptions, error) {
	target, err := parseTarget(req.Options.Target)
	if err != nil {
		return api.TransformOptions{}, err
	}

	opts := api.TransformOptions{
		Loader:     loaderFor(req.ID),
		Format:     formatFor(req.Dialect),
		Target:     target,
		Sourcefile: req.ID,
		Define:     req.Options.Define,
		LogLevel:   api.LogLevelSilent,
	}

	if req.Sourcemap {
		opts.Sourcemap = api.SourceMapExternal
		opts.SourcesContent = api.SourcesContentInclude
	}

	jsx := req.Options.JSX
	switch jsx.Runtime {
	case domain.JSXClassic:
		opts.JSX = api.JSXTransform
		opts.JSXFactory = jsx.Factory
		opts.JSXFragment = jsx.Fragment
	default:
		opts.JSX = api.JSXAutomatic
		opts.JSXImportSource = jsx.ImportSource
		opts.JSXDev = req.JSXDev
	}

	return opts, nil
}
