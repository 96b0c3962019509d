package esbuild

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/core/ports"
)

const (
	// TransformerNodeID is the unique identifier for the transformer engine Graft node.
	TransformerNodeID graft.ID = "adapter.esbuild.transformer"
	// MinifierNodeID is the unique identifier for the minifier loader Graft node.
	MinifierNodeID graft.ID = "adapter.esbuild.minifier"
)

func init() {
	graft.Register(graft.Node[ports.Transformer]{
		ID:        TransformerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Transformer, error) {
			return NewTransformer(), nil
		},
	})

	graft.Register(graft.Node[ports.MinifierLoader]{
		ID:        MinifierNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.MinifierLoader, error) {
			return NewMinifierLoader(), nil
		},
	})
}
