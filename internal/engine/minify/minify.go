// Package minify runs generated chunks through the minifier engine.
package minify

import (
	"context"
	"errors"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/sourcemap"
	"go.trai.ch/zerr"
)

// Minifier post-processes the chunks of a bundle.
type Minifier struct {
	loader    ports.MinifierLoader
	toggle    domain.Toggle[domain.MinifyOptions]
	sourcemap bool

	mu     sync.Mutex
	engine ports.Minifier
}

// New returns a Minifier. The engine is not loaded until a bundle needs it.
func New(loader ports.MinifierLoader, opts domain.ResolvedOptions) *Minifier {
	return &Minifier{
		loader:    loader,
		toggle:    opts.Minify,
		sourcemap: opts.Sourcemap,
	}
}

// Enabled reports whether Process does any work.
func (m *Minifier) Enabled() bool {
	return m.toggle.Enabled()
}

// Process minifies every chunk of bundle in place. Assets are left untouched.
// A failing chunk is handed to reporter; processing only stops if the reporter
// returns an error.
func (m *Minifier) Process(ctx context.Context, bundle domain.Bundle, reporter ports.Reporter) error {
	if !m.Enabled() {
		return nil
	}

	engine, err := m.load(ctx)
	if err != nil {
		return err
	}

	for _, name := range bundle.ChunkNames() {
		chunk, _ := bundle[name].(*domain.Chunk)
		if err := m.processChunk(ctx, engine, chunk); err != nil {
			if abort := reporter.Report(err); abort != nil {
				return abort
			}
		}
	}

	return nil
}

func (m *Minifier) processChunk(ctx context.Context, engine ports.Minifier, chunk *domain.Chunk) error {
	res, err := engine.Minify(ctx, domain.MinifyRequest{
		FileName:  chunk.FileName,
		Code:      chunk.Code,
		Options:   m.toggle.Config(),
		Sourcemap: m.sourcemap,
	})
	if err != nil {
		return chunkError(chunk.FileName, err)
	}

	chunkMap := chunk.Map
	if res.Map != nil && chunkMap != nil {
		chunkMap, err = sourcemap.Merge(res.Map, chunkMap)
		if err != nil {
			return chunkError(chunk.FileName, err)
		}
	}

	chunk.Code = res.Code
	chunk.Map = chunkMap

	return nil
}

// load returns the engine, loading it on first use. Only a successful load is kept,
// so a failed or cancelled load is retried by the next bundle.
func (m *Minifier) load(ctx context.Context) (ports.Minifier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.engine != nil {
		return m.engine, nil
	}

	engine, err := m.loader.Load(ctx)
	if err != nil {
		return nil, errors.Join(domain.ErrMinifierUnavailable, err)
	}
	m.engine = engine
	return engine, nil
}

func chunkError(fileName string, err error) error {
	return zerr.With(zerr.Wrap(errors.Join(domain.ErrMinifyFailed, err), fileName), "chunk", fileName)
}
