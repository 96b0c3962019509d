package esbuild

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// MinifierLoader creates the Minifier on first use.
type MinifierLoader struct {
	once     sync.Once
	minifier *Minifier
}

var _ ports.MinifierLoader = (*MinifierLoader)(nil)

// NewMinifierLoader creates a new MinifierLoader.
func NewMinifierLoader() *MinifierLoader {
	return &MinifierLoader{}
}

// Load returns the shared Minifier.
func (l *MinifierLoader) Load(ctx context.Context) (ports.Minifier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.once.Do(func() {
		l.minifier = &Minifier{}
	})
	return l.minifier, nil
}

// Minifier implements ports.Minifier with api.Transform.
type Minifier struct{}

var _ ports.Minifier = (*Minifier)(nil)

// Minify compresses one chunk. Whitespace, identifier and syntax minification
// default to on.
func (m *Minifier) Minify(ctx context.Context, req domain.MinifyRequest) (domain.MinifyResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.MinifyResult{}, err
	}

	opts, err := minifyOptions(req)
	if err != nil {
		return domain.MinifyResult{}, err
	}

	res := api.Transform(req.Code, opts)
	if len(res.Errors) > 0 {
		return domain.MinifyResult{}, errors.New(strings.Join(FormatMessages(res.Errors), "\n"))
	}

	out := domain.MinifyResult{Code: string(res.Code)}
	if req.Sourcemap && len(res.Map) > 0 {
		sm, err := domain.ParseSourceMap(res.Map)
		if err != nil {
			return domain.MinifyResult{}, err
		}
		out.Map = sm
	}

	return out, nil
}

func minifyOptions(req domain.MinifyRequest) (api.TransformOptions, error) {
	o := req.Options

	target, err := parseTarget(o.Target)
	if err != nil {
		return api.TransformOptions{}, err
	}
	legal, err := parseLegalComments(o.LegalComments)
	if err != nil {
		return api.TransformOptions{}, err
	}
	drop, err := parseDrop(o.Drop)
	if err != nil {
		return api.TransformOptions{}, zerr.With(err, "chunk", req.FileName)
	}

	opts := api.TransformOptions{
		Loader:            api.LoaderJS,
		Sourcefile:        req.FileName,
		Target:            target,
		MinifyWhitespace:  boolOr(o.Whitespace, true),
		MinifyIdentifiers: boolOr(o.Identifiers, true),
		MinifySyntax:      boolOr(o.Syntax, true),
		KeepNames:         o.KeepNames,
		LegalComments:     legal,
		Drop:              drop,
		LogLevel:          api.LogLevelSilent,
	}
	if req.Sourcemap {
		opts.Sourcemap = api.SourceMapExternal
	}

	return opts, nil
}
