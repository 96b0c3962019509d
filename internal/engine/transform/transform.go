// Package transform runs module sources through the transformer engine.
package transform

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/format"
	"go.trai.ch/kiln/internal/engine/refresh"
	"go.trai.ch/zerr"
)

// Adapter builds transformer requests for one build and interprets the results.
type Adapter struct {
	engine    ports.Transformer
	options   domain.TransformOptions
	sourcemap bool
	refresh   bool
}

// New returns an Adapter. Fast refresh is only ever applied when dev is set.
func New(engine ports.Transformer, opts domain.ResolvedOptions, dev bool) *Adapter {
	return &Adapter{
		engine:    engine,
		options:   opts.Transform.Config(),
		sourcemap: opts.Sourcemap,
		refresh:   dev && opts.ReactRefresh,
	}
}

// Transform compiles code for id. Engine-reported errors come back as a
// *domain.TransformError holding every message.
func (a *Adapter) Transform(ctx context.Context, id, code string, hint domain.FormatHint) (*domain.TransformOutput, error) {
	withRefresh := a.refresh && refresh.Applies(id)

	res, err := a.engine.Transform(ctx, domain.TransformRequest{
		ID:        id,
		Code:      code,
		Options:   a.options,
		Dialect:   format.InferDialect(id, hint),
		Sourcemap: a.sourcemap,
		Refresh:   withRefresh,
		JSXDev:    withRefresh,
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "transformer engine failed"), "id", id)
	}

	if len(res.Errors) > 0 {
		return nil, &domain.TransformError{ID: id, Messages: res.Errors}
	}

	out := &domain.TransformOutput{Code: res.Code, Map: res.Map}
	if withRefresh && refresh.HasRegistrations(out.Code) {
		out.Code += refresh.Footer(id)
	}

	return out, nil
}
